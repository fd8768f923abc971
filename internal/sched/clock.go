// internal/sched/clock.go

package sched

import (
	"context"
	"sync"
	"sync/atomic"
	"time"
)

// Clock is the scheduler's only source of time and its only way to block.
type Clock interface {
	Now() time.Time
	// SleepUntil blocks until deadline or until ctx is done.
	SleepUntil(ctx context.Context, deadline time.Time) error
}

// RealClock reads the wall clock and blocks with a timer.
type RealClock struct{}

func (RealClock) Now() time.Time { return time.Now() }

func (RealClock) SleepUntil(ctx context.Context, deadline time.Time) error {
	d := time.Until(deadline)
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// ManualClock is a virtual clock: SleepUntil jumps straight to the deadline.
// It counts the waits it served atomically so tests can assert on them.
type ManualClock struct {
	mu    sync.Mutex
	now   time.Time
	waits atomic.Int64
}

// NewManualClock creates a clock starting at start.
func NewManualClock(start time.Time) *ManualClock {
	return &ManualClock{now: start}
}

func (c *ManualClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *ManualClock) SleepUntil(ctx context.Context, deadline time.Time) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	c.mu.Lock()
	if deadline.After(c.now) {
		c.now = deadline
		c.waits.Add(1)
	}
	c.mu.Unlock()
	return nil
}

// Advance moves the clock forward by d.
func (c *ManualClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

// Waits returns how many SleepUntil calls actually moved the clock.
func (c *ManualClock) Waits() int64 {
	return c.waits.Load()
}
