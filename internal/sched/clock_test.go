package sched_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"corun/internal/sched"
)

func TestManualClock(t *testing.T) {
	c := sched.NewManualClock(epoch)
	ctx := context.Background()

	assert.NoError(t, c.SleepUntil(ctx, epoch.Add(time.Second)))
	assert.Equal(t, epoch.Add(time.Second), c.Now())
	assert.Equal(t, int64(1), c.Waits())

	// past deadlines do not move the clock back
	assert.NoError(t, c.SleepUntil(ctx, epoch))
	assert.Equal(t, epoch.Add(time.Second), c.Now())
	assert.Equal(t, int64(1), c.Waits())

	c.Advance(time.Minute)
	assert.Equal(t, epoch.Add(time.Minute+time.Second), c.Now())

	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	assert.ErrorIs(t, c.SleepUntil(cancelled, c.Now().Add(time.Hour)), context.Canceled)
}

func TestRealClockSleepUntil(t *testing.T) {
	var c sched.RealClock
	start := time.Now()

	assert.NoError(t, c.SleepUntil(context.Background(), start.Add(15*time.Millisecond)))
	assert.GreaterOrEqual(t, time.Since(start), 15*time.Millisecond)

	// already passed
	assert.NoError(t, c.SleepUntil(context.Background(), start))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, c.SleepUntil(ctx, time.Now().Add(time.Hour)), context.DeadlineExceeded)
}
