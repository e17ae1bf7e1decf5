package anchor

import (
	"math"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"eth-anchor/internal/fetcher"
)

// Median of values. Even lengths average the two middle elements. Returns NaN
// for an empty slice.
func Median(values []float64) float64 {
	if len(values) == 0 {
		return math.NaN()
	}
	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	mid := len(sorted) / 2
	if len(sorted)%2 == 1 {
		return sorted[mid]
	}
	return (sorted[mid-1] + sorted[mid]) / 2
}

// DiffPct is the absolute difference relative to the pair's mean, in percent.
func DiffPct(a, b float64) float64 {
	return math.Abs(a-b) / ((a + b) / 2) * 100
}

// Round2 rounds half away from zero to two decimal places.
func Round2(v float64) float64 {
	return decimal.NewFromFloat(v).Round(2).InexactFloat64()
}

// Ratio divides two optional prices.
func Ratio(num, den *float64) *float64 {
	if !isFinite(num) || !isFinite(den) || *den == 0 {
		return nil
	}
	v := *num / *den
	if math.IsInf(v, 0) || math.IsNaN(v) {
		return nil
	}
	return &v
}

// TradePrices returns the finite last-trade prices in sample order.
func TradePrices(samples []fetcher.Sample) []float64 {
	out := make([]float64, 0, len(samples))
	for _, s := range samples {
		if isFinite(s.Price) {
			out = append(out, *s.Price)
		}
	}
	return out
}

// Mids returns (bid+ask)/2 for every sample carrying both sides.
func Mids(samples []fetcher.Sample) []float64 {
	out := make([]float64, 0, len(samples))
	for _, s := range samples {
		if mid, ok := midOf(s.Bid, s.Ask); ok {
			out = append(out, mid)
		}
	}
	return out
}

// AgeSeconds is the freshest sample age relative to now, clamped at zero and
// rounded to whole seconds. Unparseable timestamps are ignored; nil means no
// sample carried a usable timestamp.
func AgeSeconds(now time.Time, timestamps []*string) *int64 {
	var (
		minAge float64
		found  bool
	)
	for _, ts := range timestamps {
		if ts == nil {
			continue
		}
		at, err := time.Parse(time.RFC3339Nano, *ts)
		if err != nil {
			continue
		}
		age := math.Max(0, now.Sub(at).Seconds())
		if !found || age < minAge {
			minAge = age
			found = true
		}
	}
	if !found {
		return nil
	}
	rounded := int64(math.Round(minAge))
	return &rounded
}

func midOf(bid, ask *float64) (float64, bool) {
	if !isFinite(bid) || !isFinite(ask) {
		return 0, false
	}
	return (*bid + *ask) / 2, true
}

func isFinite(v *float64) bool {
	return v != nil && !math.IsNaN(*v) && !math.IsInf(*v, 0)
}
