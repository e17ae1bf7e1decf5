package service

import (
	"eth-anchor/internal/anchor"
	"eth-anchor/internal/fetcher"
)

const (
	// SampleSource identifies the venue family in simple sampler payloads.
	SampleSource = "coinbase_rest_public"

	sampleTypeLastTrade   = "last_trade"
	sampleTypeMidFallback = "mid_fallback"

	localTimestampLayout = "1/2/2006, 3:04:05 PM"
	requestTSLayout      = "2006-01-02T15:04:05.000Z07:00"
)

// SnapshotResponse is the cross-checked snapshot payload.
type SnapshotResponse struct {
	Anchor     AnchorView     `json:"anchor"`
	CrossCheck CrossCheckView `json:"cross_check"`
	Ratios     RatiosView     `json:"ratios"`
}

// AnchorView reports the anchor price and how it was obtained.
type AnchorView struct {
	Venue            string        `json:"venue"`
	Product          string        `json:"product"`
	Used             anchor.Method `json:"used"`
	Price            float64       `json:"price"`
	LocalTimestamp   string        `json:"local_timestamp"`
	ServerTimestamps []*string     `json:"server_timestamps"`
	AgeSeconds       *int64        `json:"anchor_age_seconds"`
}

// CrossCheckView reports the second venue observation.
type CrossCheckView struct {
	Venue           string          `json:"venue"`
	Product         string          `json:"product"`
	Price           *float64        `json:"price"`
	ServerTimestamp *string         `json:"server_timestamp"`
	Discrepancy     DiscrepancyView `json:"discrepancy"`
}

// DiscrepancyView is the classified difference.
type DiscrepancyView struct {
	Level   anchor.Level `json:"level"`
	DiffPct *float64     `json:"diff_pct"`
}

// RatiosView carries derived ratios.
type RatiosView struct {
	ETHBTC *float64 `json:"eth_btc"`
}

// SampleResponse is the simple sampler payload.
type SampleResponse struct {
	Product   string           `json:"product"`
	Source    string           `json:"source"`
	Type      string           `json:"type"`
	Price     float64          `json:"price"`
	Samples   []fetcher.Sample `json:"samples"`
	RequestTS string           `json:"request_ts"`
}

func (s *Service) composeSnapshot(ev Evaluation) SnapshotResponse {
	timestamps := ev.Anchor.Timestamps
	if timestamps == nil {
		timestamps = []*string{}
	}

	var crossPrice *float64
	if ev.CrossCheck.Price != nil {
		rounded := anchor.Round2(*ev.CrossCheck.Price)
		crossPrice = &rounded
	}

	return SnapshotResponse{
		Anchor: AnchorView{
			Venue:            s.anchorVenue,
			Product:          s.product,
			Used:             ev.Anchor.Method,
			Price:            anchor.Round2(ev.Anchor.Value),
			LocalTimestamp:   ev.StartedAt.In(s.location).Format(localTimestampLayout),
			ServerTimestamps: timestamps,
			AgeSeconds:       ev.Anchor.AgeSeconds,
		},
		CrossCheck: CrossCheckView{
			Venue:           s.crossVenue,
			Product:         s.product,
			Price:           crossPrice,
			ServerTimestamp: ev.CrossCheck.ServerTimestamp,
			Discrepancy: DiscrepancyView{
				Level:   ev.CrossCheck.Level,
				DiffPct: ev.CrossCheck.DiffPct,
			},
		},
		Ratios: RatiosView{ETHBTC: ev.Ratio.Value},
	}
}

func (s *Service) composeSample(res anchor.AnchorResult, samples []fetcher.Sample) SampleResponse {
	kind := sampleTypeLastTrade
	if res.Method == anchor.MethodMidBidAsk {
		kind = sampleTypeMidFallback
	}
	return SampleResponse{
		Product:   s.product,
		Source:    SampleSource,
		Type:      kind,
		Price:     res.Value,
		Samples:   samples,
		RequestTS: s.now().UTC().Format(requestTSLayout),
	}
}
