package job

import (
	"fmt"
	"io"
	"time"

	"corun/internal/sched"
)

// Countdown prints "Down n" .. "Down 1", sleeping interval between lines.
func Countdown(w io.Writer, n int, interval time.Duration) sched.Func {
	return func(t *sched.Task) error {
		for ; n > 0; n-- {
			fmt.Fprintln(w, "Down", n)
			if err := t.Sleep(interval); err != nil {
				return err
			}
		}
		return nil
	}
}

// Countup prints "Up 0" .. "Up stop-1", sleeping interval between lines.
func Countup(w io.Writer, stop int, interval time.Duration) sched.Func {
	return func(t *sched.Task) error {
		for x := 0; x < stop; x++ {
			fmt.Fprintln(w, "Up", x)
			if err := t.Sleep(interval); err != nil {
				return err
			}
		}
		return nil
	}
}

// CallbackCountdown is Countdown written against CallLater only: every step
// schedules the next one instead of suspending.
func CallbackCountdown(s *sched.Scheduler, w io.Writer, n int, interval time.Duration) {
	if n <= 0 {
		return
	}
	fmt.Fprintln(w, "Down", n)
	s.CallLater(interval, func() {
		CallbackCountdown(s, w, n-1, interval)
	})
}
