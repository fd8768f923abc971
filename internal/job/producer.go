package job

import (
	"errors"
	"fmt"
	"io"
	"time"

	"corun/internal/sched"
)

// Producer puts 0..count-1 into q, sleeping interval after each item, then
// closes q.
func Producer(q *sched.Queue[int], w io.Writer, count int, interval time.Duration) sched.Func {
	return func(t *sched.Task) error {
		defer q.Close()
		for n := 0; n < count; n++ {
			fmt.Fprintln(w, "Producing", n)
			if err := q.Put(n); err != nil {
				return fmt.Errorf("put %d: %w", n, err)
			}
			if err := t.Sleep(interval); err != nil {
				return err
			}
		}
		fmt.Fprintln(w, "Producer done")
		return nil
	}
}

// Consumer takes items from q until it is closed and drained.
func Consumer(q *sched.Queue[int], w io.Writer, name string) sched.Func {
	return func(t *sched.Task) error {
		for {
			item, err := q.Get(t)
			if errors.Is(err, sched.ErrQueueClosed) {
				fmt.Fprintln(w, name, "done")
				return nil
			}
			if err != nil {
				return err
			}
			fmt.Fprintln(w, name, "consuming", item)
		}
	}
}
