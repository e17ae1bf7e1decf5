package fetcher

import (
	"context"
	"net/url"
	"time"

	"github.com/rs/zerolog"

	"eth-anchor/internal/metrics"
)

const (
	// VenueAdvanced labels Coinbase Advanced Trade in metrics and errors.
	VenueAdvanced = "coinbase_advanced"

	defaultAdvancedBaseURL = "https://api.coinbase.com/api/v3/brokerage/market"
)

// AdvancedOptions parameterise the Coinbase Advanced Trade fetcher.
type AdvancedOptions struct {
	BaseURL   string
	Timeout   time.Duration
	UserAgent string
	Metrics   *metrics.Metrics
}

// Advanced reads the public Coinbase Advanced Trade market endpoints.
type Advanced struct {
	http getter
}

// NewAdvanced constructs the primary venue fetcher.
func NewAdvanced(opts AdvancedOptions, logger zerolog.Logger) *Advanced {
	baseURL := opts.BaseURL
	if baseURL == "" {
		baseURL = defaultAdvancedBaseURL
	}
	log := logger.With().Str("component", "advanced_fetcher").Logger()
	return &Advanced{http: newGetter(VenueAdvanced, baseURL, opts.UserAgent, opts.Timeout, opts.Metrics, log)}
}

// FetchLastTrade reads the product ticker and normalises it into a Sample.
func (a *Advanced) FetchLastTrade(ctx context.Context, product string) (Sample, error) {
	payload, err := a.http.getJSON(ctx, "ticker", product, "/products/"+url.PathEscape(product)+"/ticker")
	if err != nil {
		return Sample{}, err
	}
	return Sample{
		Price:  FirstNumber(payload, TradePriceFields),
		Bid:    FirstNumber(payload, BidFields),
		Ask:    FirstNumber(payload, AskFields),
		Server: FirstString(payload, ServerTimeFields),
	}, nil
}

// FetchBestBidAsk reads the top of the product's book.
func (a *Advanced) FetchBestBidAsk(ctx context.Context, product string) (BookQuote, error) {
	payload, err := a.http.getJSON(ctx, "best_bid_ask", product, "/products/"+url.PathEscape(product)+"/best_bid_ask")
	if err != nil {
		return BookQuote{}, err
	}
	return BookQuote{
		Bid: FirstNumber(payload, BookBidFields),
		Ask: FirstNumber(payload, BookAskFields),
	}, nil
}

var _ PrimaryVenue = (*Advanced)(nil)
