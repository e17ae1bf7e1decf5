package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"eth-anchor/internal/alerting"
	"eth-anchor/internal/anchor"
	"eth-anchor/internal/config"
	"eth-anchor/internal/fetcher"
	"eth-anchor/internal/metrics"
	"eth-anchor/internal/scheduler"
)

// Service computes anchor snapshots and simple samples per request. It holds
// no state between calls.
type Service struct {
	product     string
	numerator   string
	denominator string
	anchorVenue string
	crossVenue  string
	location    *time.Location

	sampler          *anchor.Sampler
	snapshotResolver *anchor.Resolver
	sampleResolver   *anchor.Resolver
	crossCheck       *anchor.CrossChecker
	ratio            *anchor.RatioDeriver
	thresholds       anchor.Thresholds

	notifier alerting.Notifier
	channels []string
	alertsOn bool

	metrics *metrics.Metrics
	now     func() time.Time
	logger  zerolog.Logger
}

// New wires the anchor engine from configuration.
func New(cfg *config.Config, primary fetcher.PrimaryVenue, cross fetcher.TickerFetcher, waiter scheduler.Waiter, notifier alerting.Notifier, m *metrics.Metrics, logger zerolog.Logger) (*Service, error) {
	loc, err := cfg.Location()
	if err != nil {
		return nil, fmt.Errorf("load time zone: %w", err)
	}

	s := &Service{
		product:     cfg.Sampling.Product,
		numerator:   cfg.Ratio.Numerator,
		denominator: cfg.Ratio.Denominator,
		anchorVenue: cfg.Venues.Advanced.Label,
		crossVenue:  cfg.Venues.Exchange.Label,
		location:    loc,
		thresholds:  cfg.CrossCheck.Thresholds(),
		notifier:    notifier,
		channels:    cfg.Alerting.Channels,
		alertsOn:    cfg.Alerting.Enabled,
		metrics:     m,
		now:         time.Now,
		logger:      logger.With().Str("component", "service").Logger(),
	}

	clock := func() time.Time { return s.now() }
	s.sampler = anchor.NewSampler(anchor.SamplerOptions{
		Count:    cfg.Sampling.Count,
		Interval: cfg.Sampling.Interval,
	}, primary, waiter, logger)
	s.snapshotResolver = anchor.NewResolver(anchor.ResolverOptions{Policy: cfg.Anchor.SnapshotPolicy, Now: clock}, primary, logger)
	s.sampleResolver = anchor.NewResolver(anchor.ResolverOptions{Policy: cfg.Anchor.SamplePolicy, Now: clock}, primary, logger)
	s.crossCheck = anchor.NewCrossChecker(anchor.CrossCheckOptions{
		Required:   cfg.CrossCheck.Required,
		Thresholds: s.thresholds,
	}, cross, logger)
	s.ratio = anchor.NewRatioDeriver(primary, logger)

	return s, nil
}

// Evaluation is the unrounded outcome of one snapshot computation.
type Evaluation struct {
	StartedAt  time.Time
	Anchor     anchor.AnchorResult
	CrossCheck anchor.CrossCheckResult
	Ratio      anchor.RatioResult
}

// Evaluate runs sampling, resolution, cross-check and ratio in that order.
// Any required step failing aborts the whole evaluation.
func (s *Service) Evaluate(ctx context.Context) (Evaluation, error) {
	ev := Evaluation{StartedAt: s.now()}

	samples, err := s.sampler.Collect(ctx, s.product)
	if err != nil {
		return Evaluation{}, fmt.Errorf("sample %s: %w", s.product, err)
	}

	ev.Anchor, err = s.snapshotResolver.Resolve(ctx, s.product, samples)
	if err != nil {
		return Evaluation{}, fmt.Errorf("resolve anchor: %w", err)
	}

	ev.CrossCheck, err = s.crossCheck.Check(ctx, s.product, ev.Anchor.Value)
	if err != nil {
		return Evaluation{}, err
	}

	ev.Ratio, err = s.ratio.Derive(ctx, s.numerator, s.denominator)
	if err != nil {
		return Evaluation{}, err
	}

	s.metrics.ObserveAnchor("snapshot", string(ev.Anchor.Method))
	s.metrics.ObserveDiscrepancy(string(ev.CrossCheck.Level))

	logEvent := s.logger.Info().
		Str("product", s.product).
		Str("method", string(ev.Anchor.Method)).
		Float64("anchor", ev.Anchor.Value).
		Str("level", string(ev.CrossCheck.Level))
	if ev.Anchor.AgeSeconds != nil {
		logEvent = logEvent.Int64("age_seconds", *ev.Anchor.AgeSeconds)
	}
	logEvent.Msg("snapshot computed")

	return ev, nil
}

// Snapshot computes the cross-checked anchor payload.
func (s *Service) Snapshot(ctx context.Context) (SnapshotResponse, error) {
	ev, err := s.Evaluate(ctx)
	if err != nil {
		return SnapshotResponse{}, err
	}
	return s.composeSnapshot(ev), nil
}

// Check computes a snapshot and alerts when the cross-check is material.
// Alert delivery failures are logged, not returned.
func (s *Service) Check(ctx context.Context) (SnapshotResponse, bool, error) {
	ev, err := s.Evaluate(ctx)
	if err != nil {
		return SnapshotResponse{}, false, err
	}
	resp := s.composeSnapshot(ev)

	if ev.CrossCheck.Level != anchor.LevelMaterial {
		return resp, false, nil
	}
	if !s.alertsOn || s.notifier == nil {
		s.logger.Warn().Str("product", s.product).Msg("material discrepancy detected but alerting is disabled")
		return resp, false, nil
	}

	note := alerting.Notification{
		ObservedAt:   ev.StartedAt,
		Product:      s.product,
		AnchorVenue:  s.anchorVenue,
		CrossVenue:   s.crossVenue,
		Method:       string(ev.Anchor.Method),
		AnchorPrice:  decimal.NewFromFloat(ev.Anchor.Value),
		CrossPrice:   decimal.NewFromFloat(*ev.CrossCheck.Price),
		DiffPct:      decimal.NewFromFloat(*ev.CrossCheck.DiffPct),
		ThresholdPct: decimal.NewFromFloat(s.thresholds.MaterialPct),
		Level:        string(ev.CrossCheck.Level),
		Channels:     s.channels,
	}
	note.AdditionalMsg = fallbackNote(ev.Anchor)
	if err := s.notifier.Notify(ctx, note); err != nil {
		s.logger.Error().Err(err).Str("product", s.product).Msg("failed to dispatch alert")
		return resp, false, nil
	}
	return resp, true, nil
}

// Sample runs the simple sampler: sampling plus the sample-endpoint policy,
// with no cross-check or ratio.
func (s *Service) Sample(ctx context.Context) (SampleResponse, error) {
	samples, err := s.sampler.Collect(ctx, s.product)
	if err != nil {
		return SampleResponse{}, fmt.Errorf("sample %s: %w", s.product, err)
	}

	res, err := s.sampleResolver.Resolve(ctx, s.product, samples)
	if err != nil {
		return SampleResponse{}, fmt.Errorf("resolve anchor: %w", err)
	}
	s.metrics.ObserveAnchor("sample", string(res.Method))

	return s.composeSample(res, samples), nil
}

// fallbackNote explains a best bid/ask anchor in the alert body.
func fallbackNote(res anchor.AnchorResult) string {
	if res.Method != anchor.MethodMidBidAsk {
		return ""
	}
	if res.AgeSeconds == nil {
		return "Anchor taken from best bid/ask mid; no usable last trades."
	}
	return fmt.Sprintf("Anchor taken from best bid/ask mid; last trades were %ds old.", *res.AgeSeconds)
}
