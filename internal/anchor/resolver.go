package anchor

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"eth-anchor/internal/fetcher"
)

// PolicyKind selects when the mid-price fallback applies.
type PolicyKind string

const (
	// PolicyStaleness requires trade prices and switches to a fresh best
	// bid/ask mid when the newest sample is older than the threshold.
	PolicyStaleness PolicyKind = "staleness"
	// PolicyAbsence uses sample mids only when no trade price was sampled.
	PolicyAbsence PolicyKind = "absence"
)

// FallbackPolicy configures the Resolver.
type FallbackPolicy struct {
	Kind             PolicyKind `mapstructure:"kind"`
	ThresholdSeconds int64      `mapstructure:"threshold_seconds"`
}

// StalenessPolicy falls back to the book mid when age exceeds threshold seconds.
func StalenessPolicy(threshold int64) FallbackPolicy {
	return FallbackPolicy{Kind: PolicyStaleness, ThresholdSeconds: threshold}
}

// AbsencePolicy falls back to sample mids when no trade was seen.
func AbsencePolicy() FallbackPolicy {
	return FallbackPolicy{Kind: PolicyAbsence}
}

// Validate rejects unknown kinds and negative thresholds.
func (p FallbackPolicy) Validate() error {
	switch p.Kind {
	case PolicyStaleness:
		if p.ThresholdSeconds < 0 {
			return fmt.Errorf("staleness threshold cannot be negative")
		}
		return nil
	case PolicyAbsence:
		return nil
	default:
		return fmt.Errorf("unknown fallback policy %q", p.Kind)
	}
}

// ResolverOptions parameterise a Resolver.
type ResolverOptions struct {
	Policy FallbackPolicy
	Now    func() time.Time
}

// Resolver reduces a sample set to one AnchorResult.
type Resolver struct {
	policy FallbackPolicy
	book   fetcher.BookFetcher
	now    func() time.Time
	logger zerolog.Logger
}

// NewResolver constructs a Resolver. book may be nil for the absence policy.
func NewResolver(opts ResolverOptions, book fetcher.BookFetcher, logger zerolog.Logger) *Resolver {
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	return &Resolver{
		policy: opts.Policy,
		book:   book,
		now:    now,
		logger: logger.With().Str("component", "resolver").Str("policy", string(opts.Policy.Kind)).Logger(),
	}
}

// Resolve applies the configured policy.
func (r *Resolver) Resolve(ctx context.Context, product string, samples []fetcher.Sample) (AnchorResult, error) {
	timestamps := make([]*string, len(samples))
	for i, s := range samples {
		timestamps[i] = s.Server
	}

	res := AnchorResult{
		Timestamps: timestamps,
		AgeSeconds: AgeSeconds(r.now(), timestamps),
	}

	trades := TradePrices(samples)
	switch r.policy.Kind {
	case PolicyAbsence:
		if len(trades) > 0 {
			res.Value, res.Method = Median(trades), MethodLastTrade
			return res, nil
		}
		mids := Mids(samples)
		if len(mids) == 0 {
			return AnchorResult{}, fmt.Errorf("%s: %w: no trades or quotes sampled", product, ErrNoPrice)
		}
		res.Value, res.Method = Median(mids), MethodMidBidAsk
		return res, nil

	case PolicyStaleness:
		if len(trades) == 0 {
			return AnchorResult{}, fmt.Errorf("%s: %w: no last-trade prices", product, ErrNoPrice)
		}
		res.Value, res.Method = Median(trades), MethodLastTrade
		if res.AgeSeconds != nil && *res.AgeSeconds > r.policy.ThresholdSeconds {
			r.applyBookMid(ctx, product, &res)
		}
		return res, nil

	default:
		return AnchorResult{}, fmt.Errorf("unknown fallback policy %q", r.policy.Kind)
	}
}

// applyBookMid swaps in the live mid when the book has both sides. Failure
// leaves the trade median in place.
func (r *Resolver) applyBookMid(ctx context.Context, product string, res *AnchorResult) {
	if r.book == nil {
		return
	}
	quote, err := r.book.FetchBestBidAsk(ctx, product)
	if err != nil {
		r.logger.Warn().Err(err).Str("product", product).Int64("age_seconds", *res.AgeSeconds).Msg("best bid/ask fallback failed; keeping trade median")
		return
	}
	mid, ok := midOf(quote.Bid, quote.Ask)
	if !ok {
		r.logger.Warn().Str("product", product).Msg("best bid/ask incomplete; keeping trade median")
		return
	}
	res.Value, res.Method = mid, MethodMidBidAsk
}
