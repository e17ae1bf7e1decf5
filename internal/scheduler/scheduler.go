package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Waiter suspends the caller between timed steps.
type Waiter interface {
	Wait(ctx context.Context, d time.Duration) error
}

// WaiterFunc adapts a function to Waiter.
type WaiterFunc func(ctx context.Context, d time.Duration) error

// Wait calls f.
func (f WaiterFunc) Wait(ctx context.Context, d time.Duration) error {
	return f(ctx, d)
}

// TimerWaiter blocks on a real timer.
type TimerWaiter struct {
	logger zerolog.Logger
}

// NewTimerWaiter constructs a wall-clock waiter.
func NewTimerWaiter(logger zerolog.Logger) *TimerWaiter {
	return &TimerWaiter{logger: logger.With().Str("component", "scheduler").Logger()}
}

// Wait blocks for d or until ctx is cancelled.
func (w *TimerWaiter) Wait(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}

	timer := time.NewTimer(d)
	defer timer.Stop()
	w.logger.Debug().Dur("delay", d).Msg("waiting before next sample")

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// Instant records requested delays and returns immediately. It stands in for
// TimerWaiter wherever wall-clock spacing is irrelevant.
type Instant struct {
	mu    sync.Mutex
	waits []time.Duration
}

// Wait records d.
func (i *Instant) Wait(ctx context.Context, d time.Duration) error {
	i.mu.Lock()
	i.waits = append(i.waits, d)
	i.mu.Unlock()
	return ctx.Err()
}

// Waits returns the recorded delays in call order.
func (i *Instant) Waits() []time.Duration {
	i.mu.Lock()
	defer i.mu.Unlock()
	out := make([]time.Duration, len(i.waits))
	copy(out, i.waits)
	return out
}

var (
	_ Waiter = (*TimerWaiter)(nil)
	_ Waiter = (*Instant)(nil)
	_ Waiter = WaiterFunc(nil)
)
