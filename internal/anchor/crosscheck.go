package anchor

import (
	"context"
	"fmt"
	"math"

	"github.com/rs/zerolog"

	"eth-anchor/internal/fetcher"
)

// Thresholds are exclusive lower bounds in percentage points.
type Thresholds struct {
	MinorPct    float64 `mapstructure:"minor_pct"`
	MaterialPct float64 `mapstructure:"material_pct"`
}

// DefaultThresholds flag >0.05% as minor and >0.20% as material. Callers pass
// them explicitly; a zero Thresholds classifies any difference as material.
var DefaultThresholds = Thresholds{MinorPct: 0.05, MaterialPct: 0.20}

// Classify maps a percentage difference to a tier.
func (t Thresholds) Classify(diffPct float64) Level {
	switch {
	case diffPct > t.MaterialPct:
		return LevelMaterial
	case diffPct > t.MinorPct:
		return LevelMinor
	default:
		return LevelNone
	}
}

// CrossCheckOptions parameterise a CrossChecker.
type CrossCheckOptions struct {
	// Required makes a venue failure fatal instead of LevelUnavailable.
	Required   bool
	Thresholds Thresholds
}

// CrossChecker compares the anchor with an independent venue.
type CrossChecker struct {
	opts   CrossCheckOptions
	venue  fetcher.TickerFetcher
	logger zerolog.Logger
}

// NewCrossChecker constructs a CrossChecker.
func NewCrossChecker(opts CrossCheckOptions, venue fetcher.TickerFetcher, logger zerolog.Logger) *CrossChecker {
	return &CrossChecker{
		opts:   opts,
		venue:  venue,
		logger: logger.With().Str("component", "cross_check").Logger(),
	}
}

// Check fetches one ticker and classifies its distance from anchor.
func (c *CrossChecker) Check(ctx context.Context, product string, anchor float64) (CrossCheckResult, error) {
	ticker, err := c.venue.FetchTicker(ctx, product)
	if err != nil {
		if c.opts.Required {
			return CrossCheckResult{}, fmt.Errorf("cross check %s: %w", product, err)
		}
		c.logger.Warn().Err(err).Str("product", product).Msg("cross-check venue failed; reporting unavailable")
		return CrossCheckResult{Level: LevelUnavailable}, nil
	}

	res := CrossCheckResult{
		Price:           ticker.Price,
		ServerTimestamp: ticker.Server,
		Level:           LevelUnavailable,
	}
	if !isFinite(ticker.Price) {
		return res, nil
	}

	diff := DiffPct(anchor, *ticker.Price)
	if math.IsNaN(diff) || math.IsInf(diff, 0) {
		return res, nil
	}
	res.DiffPct = &diff
	res.Level = c.opts.Thresholds.Classify(diff)

	c.logger.Debug().Str("product", product).Float64("diff_pct", diff).Str("level", string(res.Level)).Msg("cross-check classified")
	return res, nil
}
