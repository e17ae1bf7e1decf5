package fetcher

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func noopLogger() zerolog.Logger {
	return zerolog.Nop()
}

func TestAdvancedFetchLastTrade(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/products/ETH-USD/ticker" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if r.Header.Get("Cache-Control") != "no-cache" {
			t.Errorf("cache bypass header missing")
		}
		if r.Header.Get("User-Agent") != "test-agent" {
			t.Errorf("user agent not forwarded: %q", r.Header.Get("User-Agent"))
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"trades":[{"price":"3100.10","time":"2025-01-01T00:00:00Z"}],"best_bid":"3100","best_ask":"3100.2"}`))
	}))
	defer srv.Close()

	adv := NewAdvanced(AdvancedOptions{BaseURL: srv.URL, Timeout: time.Second, UserAgent: "test-agent"}, noopLogger())
	sample, err := adv.FetchLastTrade(context.Background(), "ETH-USD")
	if err != nil {
		t.Fatalf("fetch should succeed: %v", err)
	}
	if sample.Price == nil || *sample.Price != 3100.10 {
		t.Fatalf("nested trade price not extracted: %v", deref(sample.Price))
	}
	if sample.Bid == nil || *sample.Bid != 3100 || sample.Ask == nil || *sample.Ask != 3100.2 {
		t.Fatalf("bid/ask not extracted")
	}
	if sample.Server == nil || *sample.Server != "2025-01-01T00:00:00Z" {
		t.Fatalf("server time not extracted")
	}
}

func TestAdvancedFetchStatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte(`{"error":"UNAVAILABLE","message":"try later"}`))
	}))
	defer srv.Close()

	adv := NewAdvanced(AdvancedOptions{BaseURL: srv.URL}, noopLogger())
	_, err := adv.FetchLastTrade(context.Background(), "ETH-USD")
	var statusErr *StatusError
	if !errors.As(err, &statusErr) {
		t.Fatalf("expected StatusError, got %v", err)
	}
	if statusErr.Code != http.StatusServiceUnavailable || statusErr.Message != "try later" {
		t.Fatalf("unexpected status error %+v", statusErr)
	}
}

func TestAdvancedFetchBestBidAsk(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/products/ETH-USD/best_bid_ask" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		_, _ = w.Write([]byte(`{"pricebook":{"product_id":"ETH-USD","bids":[{"price":"3098","size":"1"}],"asks":[{"price":"3102","size":"2"}]}}`))
	}))
	defer srv.Close()

	adv := NewAdvanced(AdvancedOptions{BaseURL: srv.URL}, noopLogger())
	quote, err := adv.FetchBestBidAsk(context.Background(), "ETH-USD")
	if err != nil {
		t.Fatalf("fetch should succeed: %v", err)
	}
	if quote.Bid == nil || *quote.Bid != 3098 || quote.Ask == nil || *quote.Ask != 3102 {
		t.Fatalf("unexpected quote %v/%v", deref(quote.Bid), deref(quote.Ask))
	}
}

func TestExchangeFetchTicker(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/products/ETH-USD/ticker" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		_, _ = w.Write([]byte(`{"trade_id":1,"price":"3101.25","bid":"3101","ask":"3101.5","time":"2025-01-01T00:00:00.123Z"}`))
	}))
	defer srv.Close()

	ex := NewExchange(ExchangeOptions{BaseURL: srv.URL}, noopLogger())
	ticker, err := ex.FetchTicker(context.Background(), "ETH-USD")
	if err != nil {
		t.Fatalf("fetch should succeed: %v", err)
	}
	if ticker.Price == nil || *ticker.Price != 3101.25 {
		t.Fatalf("price not extracted: %v", deref(ticker.Price))
	}
	if ticker.Server == nil || *ticker.Server != "2025-01-01T00:00:00.123Z" {
		t.Fatalf("server time not extracted")
	}
}

func TestExchangeFetchMalformedBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`not json`))
	}))
	defer srv.Close()

	ex := NewExchange(ExchangeOptions{BaseURL: srv.URL}, noopLogger())
	if _, err := ex.FetchTicker(context.Background(), "ETH-USD"); err == nil {
		t.Fatal("malformed body should fail")
	}
}

func TestFetchNonObjectBodyYieldsEmptyObservation(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	adv := NewAdvanced(AdvancedOptions{BaseURL: srv.URL}, noopLogger())
	sample, err := adv.FetchLastTrade(context.Background(), "ETH-USD")
	if err != nil {
		t.Fatalf("array body should not fail: %v", err)
	}
	if sample.Price != nil || sample.Bid != nil || sample.Ask != nil || sample.Server != nil {
		t.Fatalf("array body should yield an empty sample, got %+v", sample)
	}

	ex := NewExchange(ExchangeOptions{BaseURL: srv.URL}, noopLogger())
	ticker, err := ex.FetchTicker(context.Background(), "ETH-USD")
	if err != nil {
		t.Fatalf("array body should not fail: %v", err)
	}
	if ticker.Price != nil {
		t.Fatalf("array body should yield no cross price, got %v", deref(ticker.Price))
	}
}
