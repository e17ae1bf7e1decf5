package anchor

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"eth-anchor/internal/fetcher"
)

func TestMedian(t *testing.T) {
	assert.Equal(t, 3101.0, Median([]float64{3100, 3102, 3101}))
	assert.Equal(t, 3102.0, Median([]float64{3100, 3104}))
	assert.Equal(t, 3100.10, Median([]float64{3100.10, 3101.50, 3099.90}))
	assert.Equal(t, 7.0, Median([]float64{7}))
	assert.True(t, math.IsNaN(Median(nil)))
}

func TestMedianDoesNotReorderInput(t *testing.T) {
	in := []float64{3, 1, 2}
	Median(in)
	assert.Equal(t, []float64{3, 1, 2}, in)
}

func TestClassifyBoundaries(t *testing.T) {
	cases := []struct {
		diff float64
		want Level
	}{
		{0, LevelNone},
		{0.05, LevelNone},
		{0.06, LevelMinor},
		{0.20, LevelMinor},
		{0.21, LevelMaterial},
		{5, LevelMaterial},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, DefaultThresholds.Classify(tc.diff), "diff %v", tc.diff)
	}
}

func TestDiffPct(t *testing.T) {
	assert.InDelta(t, 0.0, DiffPct(3100, 3100), 1e-12)
	assert.InDelta(t, 200.0/3100*100, DiffPct(3000, 3200), 1e-9)
	assert.Equal(t, DiffPct(3000, 3200), DiffPct(3200, 3000))
}

func TestRatio(t *testing.T) {
	assert.Nil(t, Ratio(num(3100), num(0)))
	assert.Nil(t, Ratio(nil, num(60000)))
	assert.Nil(t, Ratio(num(3100), nil))
	assert.Nil(t, Ratio(num(math.Inf(1)), num(60000)))

	got := Ratio(num(3000), num(60000))
	require.NotNil(t, got)
	assert.InDelta(t, 0.05, *got, 1e-12)
}

func TestRound2(t *testing.T) {
	assert.Equal(t, 3100.1, Round2(3100.1))
	assert.Equal(t, 3100.13, Round2(3100.125))
	assert.Equal(t, 3100.0, Round2(3099.999))
}

func TestAgeSeconds(t *testing.T) {
	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)

	assert.Nil(t, AgeSeconds(now, []*string{nil, nil}))
	assert.Nil(t, AgeSeconds(now, []*string{str("not a time")}))

	got := AgeSeconds(now, []*string{
		str(now.Add(-15 * time.Second).Format(time.RFC3339Nano)),
		nil,
		str(now.Add(-2400 * time.Millisecond).Format(time.RFC3339Nano)),
	})
	require.NotNil(t, got)
	assert.Equal(t, int64(2), *got)

	future := AgeSeconds(now, []*string{str(now.Add(5 * time.Second).Format(time.RFC3339))})
	require.NotNil(t, future)
	assert.Equal(t, int64(0), *future)

	half := AgeSeconds(now, []*string{str(now.Add(-10500 * time.Millisecond).Format(time.RFC3339Nano))})
	require.NotNil(t, half)
	assert.Equal(t, int64(11), *half)
}

func TestTradePricesAndMids(t *testing.T) {
	samples := []fetcher.Sample{
		{Price: num(3100), Bid: num(3099), Ask: num(3101)},
		{},
		{Price: num(math.NaN()), Bid: num(3098)},
		{Bid: num(3090), Ask: num(3110)},
	}
	assert.Equal(t, []float64{3100}, TradePrices(samples))
	assert.Equal(t, []float64{3100, 3100}, Mids(samples))
}
