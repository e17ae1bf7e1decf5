package fetcher

import (
	"context"
)

// Sample is one normalised last-trade ticker observation. Every field is
// optional; a sample with nothing usable is still a valid sample.
type Sample struct {
	Price  *float64 `json:"price"`
	Bid    *float64 `json:"bid"`
	Ask    *float64 `json:"ask"`
	Server *string  `json:"server"`
}

// BookQuote is the top of book reported by a best bid/ask query.
type BookQuote struct {
	Bid *float64
	Ask *float64
}

// Ticker is a single observation from the cross-check venue.
type Ticker struct {
	Price  *float64
	Server *string
}

// TradeFetcher retrieves the last-trade ticker for a product.
type TradeFetcher interface {
	FetchLastTrade(ctx context.Context, product string) (Sample, error)
}

// BookFetcher retrieves the best bid/ask for a product.
type BookFetcher interface {
	FetchBestBidAsk(ctx context.Context, product string) (BookQuote, error)
}

// TickerFetcher retrieves a ticker from an independent venue.
type TickerFetcher interface {
	FetchTicker(ctx context.Context, product string) (Ticker, error)
}

// PrimaryVenue serves both the trade ticker and the order book top.
type PrimaryVenue interface {
	TradeFetcher
	BookFetcher
}
