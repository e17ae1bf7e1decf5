package anchor

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"eth-anchor/internal/fetcher"
	"eth-anchor/internal/scheduler"
)

// SamplerOptions tune how many samples are taken and how far apart.
type SamplerOptions struct {
	Count    int
	Interval time.Duration
}

// Sampler takes a short time series of last-trade tickers, one after another.
type Sampler struct {
	opts   SamplerOptions
	trades fetcher.TradeFetcher
	waiter scheduler.Waiter
	logger zerolog.Logger
}

// NewSampler constructs a Sampler, defaulting to 3 samples 1s apart.
func NewSampler(opts SamplerOptions, trades fetcher.TradeFetcher, waiter scheduler.Waiter, logger zerolog.Logger) *Sampler {
	if opts.Count <= 0 {
		opts.Count = 3
	}
	if opts.Interval <= 0 {
		opts.Interval = time.Second
	}
	return &Sampler{
		opts:   opts,
		trades: trades,
		waiter: waiter,
		logger: logger.With().Str("component", "sampler").Logger(),
	}
}

// Collect returns exactly Count samples or the first error encountered.
func (s *Sampler) Collect(ctx context.Context, product string) ([]fetcher.Sample, error) {
	samples := make([]fetcher.Sample, 0, s.opts.Count)
	for i := 0; i < s.opts.Count; i++ {
		if i > 0 {
			if err := s.waiter.Wait(ctx, s.opts.Interval); err != nil {
				return nil, err
			}
		}

		sample, err := s.trades.FetchLastTrade(ctx, product)
		if err != nil {
			return nil, fmt.Errorf("sample %d/%d: %w", i+1, s.opts.Count, err)
		}
		samples = append(samples, sample)
	}

	s.logger.Debug().Str("product", product).Int("samples", len(samples)).Msg("sampling complete")
	return samples, nil
}
