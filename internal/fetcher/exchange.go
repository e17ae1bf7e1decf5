package fetcher

import (
	"context"
	"net/url"
	"time"

	"github.com/rs/zerolog"

	"eth-anchor/internal/metrics"
)

const (
	// VenueExchange labels the Coinbase Exchange public API.
	VenueExchange = "coinbase_exchange"

	defaultExchangeBaseURL = "https://api.exchange.coinbase.com"
)

// ExchangeOptions parameterise the Coinbase Exchange fetcher.
type ExchangeOptions struct {
	BaseURL   string
	Timeout   time.Duration
	UserAgent string
	Metrics   *metrics.Metrics
}

// Exchange reads the Coinbase Exchange public ticker, used as the
// independent cross-check venue.
type Exchange struct {
	http getter
}

// NewExchange constructs the cross-check venue fetcher.
func NewExchange(opts ExchangeOptions, logger zerolog.Logger) *Exchange {
	baseURL := opts.BaseURL
	if baseURL == "" {
		baseURL = defaultExchangeBaseURL
	}
	log := logger.With().Str("component", "exchange_fetcher").Logger()
	return &Exchange{http: newGetter(VenueExchange, baseURL, opts.UserAgent, opts.Timeout, opts.Metrics, log)}
}

// FetchTicker reads one ticker snapshot.
func (e *Exchange) FetchTicker(ctx context.Context, product string) (Ticker, error) {
	payload, err := e.http.getJSON(ctx, "ticker", product, "/products/"+url.PathEscape(product)+"/ticker")
	if err != nil {
		return Ticker{}, err
	}
	return Ticker{
		Price:  FirstNumber(payload, CrossPriceFields),
		Server: FirstString(payload, ServerTimeFields),
	}, nil
}

var _ TickerFetcher = (*Exchange)(nil)
