package fetcher

import (
	"context"
	"sync"
)

// Static serves canned observations without touching the network. Trades for
// a product are replayed in order, repeating the last one once exhausted.
type Static struct {
	Trades map[string][]Sample
	Book   BookQuote
	Ticker Ticker
	// Err, when set, is returned by every call.
	Err    error

	mu    sync.Mutex
	calls map[string]int
}

// FetchLastTrade returns the next canned trade for product.
func (s *Static) FetchLastTrade(ctx context.Context, product string) (Sample, error) {
	n := s.record("trade:" + product)
	if s.Err != nil {
		return Sample{}, s.Err
	}
	queued := s.Trades[product]
	if len(queued) == 0 {
		return Sample{}, nil
	}
	if n > len(queued) {
		n = len(queued)
	}
	return queued[n-1], nil
}

// FetchBestBidAsk returns the canned book.
func (s *Static) FetchBestBidAsk(ctx context.Context, product string) (BookQuote, error) {
	s.record("book:" + product)
	if s.Err != nil {
		return BookQuote{}, s.Err
	}
	return s.Book, nil
}

// FetchTicker returns the canned cross-venue ticker.
func (s *Static) FetchTicker(ctx context.Context, product string) (Ticker, error) {
	s.record("ticker:" + product)
	if s.Err != nil {
		return Ticker{}, s.Err
	}
	return s.Ticker, nil
}

// Calls reports the total number of fetches served.
func (s *Static) Calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	total := 0
	for _, n := range s.calls {
		total += n
	}
	return total
}

// CallsFor reports fetches of one kind ("trade", "book" or "ticker") for product.
func (s *Static) CallsFor(kind, product string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[kind+":"+product]
}

func (s *Static) record(key string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.calls == nil {
		s.calls = make(map[string]int)
	}
	s.calls[key]++
	return s.calls[key]
}

var (
	_ PrimaryVenue  = (*Static)(nil)
	_ TickerFetcher = (*Static)(nil)
)
