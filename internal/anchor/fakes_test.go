package anchor

import (
	"context"
	"errors"
	"sync"

	"eth-anchor/internal/fetcher"
)

var errUpstream = errors.New("upstream down")

type fakeTrades struct {
	mu       sync.Mutex
	samples  map[string][]fetcher.Sample
	failOn   map[string]int
	calls    map[string]int
	products []string
}

func newFakeTrades() *fakeTrades {
	return &fakeTrades{
		samples: map[string][]fetcher.Sample{},
		failOn:  map[string]int{},
		calls:   map[string]int{},
	}
}

func (f *fakeTrades) queue(product string, samples ...fetcher.Sample) *fakeTrades {
	f.samples[product] = append(f.samples[product], samples...)
	return f
}

func (f *fakeTrades) FetchLastTrade(ctx context.Context, product string) (fetcher.Sample, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls[product]++
	f.products = append(f.products, product)
	if n, ok := f.failOn[product]; ok && f.calls[product] == n {
		return fetcher.Sample{}, errUpstream
	}
	queued := f.samples[product]
	if len(queued) == 0 {
		return fetcher.Sample{}, nil
	}
	idx := f.calls[product] - 1
	if idx >= len(queued) {
		idx = len(queued) - 1
	}
	return queued[idx], nil
}

func (f *fakeTrades) count(product string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[product]
}

type fakeBook struct {
	quote fetcher.BookQuote
	err   error
	calls int
}

func (f *fakeBook) FetchBestBidAsk(ctx context.Context, product string) (fetcher.BookQuote, error) {
	f.calls++
	return f.quote, f.err
}

type fakeTicker struct {
	ticker fetcher.Ticker
	err    error
	calls  int
}

func (f *fakeTicker) FetchTicker(ctx context.Context, product string) (fetcher.Ticker, error) {
	f.calls++
	return f.ticker, f.err
}

func num(v float64) *float64 { return &v }

func str(v string) *string { return &v }
