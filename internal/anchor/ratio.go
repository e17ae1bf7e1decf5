package anchor

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"eth-anchor/internal/fetcher"
)

// RatioDeriver computes numerator/denominator from two last-trade tickers.
type RatioDeriver struct {
	trades fetcher.TradeFetcher
	logger zerolog.Logger
}

// NewRatioDeriver constructs a RatioDeriver.
func NewRatioDeriver(trades fetcher.TradeFetcher, logger zerolog.Logger) *RatioDeriver {
	return &RatioDeriver{trades: trades, logger: logger.With().Str("component", "ratio").Logger()}
}

// Derive fetches both legs concurrently. A fetch failure on either leg is
// returned; unusable prices yield a nil value.
func (d *RatioDeriver) Derive(ctx context.Context, numerator, denominator string) (RatioResult, error) {
	var num, den fetcher.Sample

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		s, err := d.trades.FetchLastTrade(gctx, numerator)
		if err != nil {
			return fmt.Errorf("ratio leg %s: %w", numerator, err)
		}
		num = s
		return nil
	})
	g.Go(func() error {
		s, err := d.trades.FetchLastTrade(gctx, denominator)
		if err != nil {
			return fmt.Errorf("ratio leg %s: %w", denominator, err)
		}
		den = s
		return nil
	})
	if err := g.Wait(); err != nil {
		return RatioResult{}, err
	}

	res := RatioResult{Value: Ratio(num.Price, den.Price)}
	if res.Value == nil {
		d.logger.Debug().Str("numerator", numerator).Str("denominator", denominator).Msg("ratio unavailable")
	}
	return res, nil
}
