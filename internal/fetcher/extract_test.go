package fetcher

import (
	"testing"
)

func TestTradePricePriority(t *testing.T) {
	cases := []struct {
		name string
		raw  string
		want *float64
	}{
		{"top level string", `{"price":"3100.5","trades":[{"price":"1"}]}`, ptr(3100.5)},
		{"top level number", `{"price":3100.5}`, ptr(3100.5)},
		{"empty falls through", `{"price":"","trades":[{"price":"3099.9"}]}`, ptr(3099.9)},
		{"garbage falls through", `{"price":"n/a","trades":[{"price":"3099.9"}]}`, ptr(3099.9)},
		{"non-finite falls through", `{"price":"Infinity","trades":[{"price":"3099.9"}]}`, ptr(3099.9)},
		{"null falls through", `{"price":null,"trades":[{"price":3098}]}`, ptr(3098)},
		{"nothing usable", `{"trades":[]}`, nil},
		{"bool is not a number", `{"price":true}`, nil},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := FirstNumber([]byte(tc.raw), TradePriceFields)
			if (got == nil) != (tc.want == nil) {
				t.Fatalf("want %v, got %v", deref(tc.want), deref(got))
			}
			if got != nil && *got != *tc.want {
				t.Fatalf("want %v, got %v", *tc.want, *got)
			}
		})
	}
}

func TestServerTimePriority(t *testing.T) {
	payload := []byte(`{"time":"","trade_time":"2025-01-01T00:00:01Z","timestamp":"2025-01-01T00:00:02Z"}`)
	got := FirstString(payload, ServerTimeFields)
	if got == nil || *got != "2025-01-01T00:00:01Z" {
		t.Fatalf("empty time should fall through to trade_time, got %v", got)
	}

	payload = []byte(`{"timestamp":1735689600}`)
	got = FirstString(payload, ServerTimeFields)
	if got == nil || *got != "1735689600" {
		t.Fatalf("numeric timestamp should be kept as text, got %v", got)
	}

	if got := FirstString([]byte(`{}`), ServerTimeFields); got != nil {
		t.Fatalf("missing timestamps should yield nil, got %q", *got)
	}
}

func TestCrossPricePriority(t *testing.T) {
	payload := []byte(`{"last":"3101","bid":"3100","ask":"3102"}`)
	got := FirstNumber(payload, CrossPriceFields)
	if got == nil || *got != 3101 {
		t.Fatalf("last should win when price is missing, got %v", deref(got))
	}

	payload = []byte(`{"ask":"3102"}`)
	got = FirstNumber(payload, CrossPriceFields)
	if got == nil || *got != 3102 {
		t.Fatalf("ask is the final candidate, got %v", deref(got))
	}
}

func TestBookFields(t *testing.T) {
	payload := []byte(`{"pricebook":{"bids":[{"price":"3098"}],"asks":[{"price":"3102"}]}}`)
	bid := FirstNumber(payload, BookBidFields)
	ask := FirstNumber(payload, BookAskFields)
	if bid == nil || ask == nil || *bid != 3098 || *ask != 3102 {
		t.Fatalf("unexpected book %v/%v", deref(bid), deref(ask))
	}

	payload = []byte(`{"pricebooks":[{"bids":[{"price":"1"}],"asks":[]}]}`)
	if bid := FirstNumber(payload, BookBidFields); bid == nil || *bid != 1 {
		t.Fatalf("pricebooks list should be read")
	}
	if ask := FirstNumber(payload, BookAskFields); ask != nil {
		t.Fatalf("empty asks should yield nil")
	}
}

func ptr(v float64) *float64 { return &v }

func deref(v *float64) any {
	if v == nil {
		return nil
	}
	return *v
}

func TestExtractorsIgnoreNonObjectRoots(t *testing.T) {
	for _, raw := range []string{`[]`, `[{"price":"1"}]`, `"3100"`, `null`} {
		if got := FirstNumber([]byte(raw), TradePriceFields); got != nil {
			t.Fatalf("root %s should not yield a price, got %v", raw, *got)
		}
		if got := FirstString([]byte(raw), ServerTimeFields); got != nil {
			t.Fatalf("root %s should not yield a timestamp, got %q", raw, *got)
		}
	}
}

func TestHugeExponentIsNotFinite(t *testing.T) {
	if got := FirstNumber([]byte(`{"price":1e999,"trades":[{"price":"3100"}]}`), TradePriceFields); got == nil || *got != 3100 {
		t.Fatalf("overflowing number should fall through, got %v", deref(got))
	}
}
