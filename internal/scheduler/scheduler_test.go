package scheduler

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTimerWaiterElapses(t *testing.T) {
	w := NewTimerWaiter(zerolog.Nop())
	start := time.Now()
	require.NoError(t, w.Wait(context.Background(), 20*time.Millisecond))
	assert.GreaterOrEqual(t, time.Since(start), 20*time.Millisecond)
}

func TestTimerWaiterCancelled(t *testing.T) {
	w := NewTimerWaiter(zerolog.Nop())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := w.Wait(ctx, time.Hour)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestTimerWaiterZeroDelay(t *testing.T) {
	w := NewTimerWaiter(zerolog.Nop())
	assert.NoError(t, w.Wait(context.Background(), 0))
}

func TestInstantRecords(t *testing.T) {
	var w Instant
	require.NoError(t, w.Wait(context.Background(), time.Second))
	require.NoError(t, w.Wait(context.Background(), 2*time.Second))
	assert.Equal(t, []time.Duration{time.Second, 2 * time.Second}, w.Waits())
}
