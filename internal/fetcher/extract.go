package fetcher

import (
	"math"
	"strconv"
	"strings"

	"github.com/tidwall/gjson"
)

// NumberExtractor pulls a finite number out of a raw JSON body.
type NumberExtractor func(body []byte) (float64, bool)

// StringExtractor pulls a non-empty string out of a raw JSON body.
type StringExtractor func(body []byte) (string, bool)

// Candidate field lists, highest priority first.
var (
	TradePriceFields = []NumberExtractor{
		NumberAt("price"),
		NumberAt("trades", "0", "price"),
	}
	BidFields = []NumberExtractor{
		NumberAt("best_bid"),
		NumberAt("bid"),
	}
	AskFields = []NumberExtractor{
		NumberAt("best_ask"),
		NumberAt("ask"),
	}
	ServerTimeFields = []StringExtractor{
		StringAt("time"),
		StringAt("trade_time"),
		StringAt("timestamp"),
		StringAt("trades", "0", "time"),
	}
	BookBidFields = []NumberExtractor{
		NumberAt("pricebook", "bids", "0", "price"),
		NumberAt("pricebooks", "0", "bids", "0", "price"),
	}
	BookAskFields = []NumberExtractor{
		NumberAt("pricebook", "asks", "0", "price"),
		NumberAt("pricebooks", "0", "asks", "0", "price"),
	}
	CrossPriceFields = []NumberExtractor{
		NumberAt("price"),
		NumberAt("last"),
		NumberAt("bid"),
		NumberAt("ask"),
	}
)

// NumberAt returns an extractor for the value at path. Numeric path segments
// index into arrays.
func NumberAt(path ...string) NumberExtractor {
	query := strings.Join(path, ".")
	return func(body []byte) (float64, bool) {
		return finite(gjson.GetBytes(body, query))
	}
}

// StringAt returns an extractor for a non-empty scalar at path. Numbers are
// kept in their raw textual form.
func StringAt(path ...string) StringExtractor {
	query := strings.Join(path, ".")
	return func(body []byte) (string, bool) {
		res := gjson.GetBytes(body, query)
		switch res.Type {
		case gjson.String:
			if strings.TrimSpace(res.Str) == "" {
				return "", false
			}
			return res.Str, true
		case gjson.Number:
			return res.Raw, true
		default:
			return "", false
		}
	}
}

// FirstNumber returns the first extractor hit, or nil.
func FirstNumber(body []byte, extractors []NumberExtractor) *float64 {
	for _, extract := range extractors {
		if v, ok := extract(body); ok {
			return &v
		}
	}
	return nil
}

// FirstString returns the first extractor hit, or nil.
func FirstString(body []byte, extractors []StringExtractor) *string {
	for _, extract := range extractors {
		if v, ok := extract(body); ok {
			return &v
		}
	}
	return nil
}

// finite accepts JSON numbers and numeric strings that parse to a finite value.
func finite(res gjson.Result) (float64, bool) {
	var f float64
	switch res.Type {
	case gjson.Number:
		f = res.Num
	case gjson.String:
		trimmed := strings.TrimSpace(res.Str)
		if trimmed == "" {
			return 0, false
		}
		parsed, err := strconv.ParseFloat(trimmed, 64)
		if err != nil {
			return 0, false
		}
		f = parsed
	default:
		return 0, false
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}
