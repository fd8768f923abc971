package job

import (
	"time"

	"corun/internal/sched"
)

// SleepWork returns a task body that just sleeps for the given duration.
func SleepWork(ms int64) sched.Func {
	d := time.Duration(ms) * time.Millisecond
	return func(t *sched.Task) error {
		// If the time is up, we just return nil.
		return t.Sleep(d)
	}
}
