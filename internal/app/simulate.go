package app

import (
	"context"
	"errors"
	"io"
	"time"

	"github.com/shopspring/decimal"

	"eth-anchor/internal/fetcher"
	"eth-anchor/internal/scheduler"
	"eth-anchor/internal/service"
)

// SimulateAlert runs the check flow against fixed anchor and cross prices,
// dispatching through the configured notifier.
func (a *App) SimulateAlert(ctx context.Context, out io.Writer, anchorPrice, crossPrice decimal.Decimal) error {
	if !a.Config.Alerting.Enabled {
		return errors.New("alerting is not enabled")
	}

	notifier := a.newNotifier()
	if notifier == nil {
		return errors.New("no alert channel configured")
	}

	primary, cross := simulatedVenues(a.Config.Sampling.Product, a.Config.Ratio.Denominator, anchorPrice, crossPrice, time.Now())
	svc, err := service.New(a.Config, primary, cross, &scheduler.Instant{}, notifier, nil, a.Logger)
	if err != nil {
		return err
	}
	return a.check(ctx, svc, out)
}

func simulatedVenues(product, denominator string, anchorPrice, crossPrice decimal.Decimal, now time.Time) (*fetcher.Static, *fetcher.Static) {
	ts := now.UTC().Format(time.RFC3339Nano)
	anchorValue := anchorPrice.InexactFloat64()
	crossValue := crossPrice.InexactFloat64()
	one := 1.0

	primary := &fetcher.Static{
		Trades: map[string][]fetcher.Sample{
			product:     {{Price: &anchorValue, Bid: &anchorValue, Ask: &anchorValue, Server: &ts}},
			denominator: {{Price: &one, Server: &ts}},
		},
		Book: fetcher.BookQuote{Bid: &anchorValue, Ask: &anchorValue},
	}
	cross := &fetcher.Static{
		Ticker: fetcher.Ticker{Price: &crossValue, Server: &ts},
	}
	return primary, cross
}
