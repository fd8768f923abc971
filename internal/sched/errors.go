package sched

import (
	"errors"
	"fmt"
)

var (
	// ErrQueueClosed is returned by Queue.Get once a closed queue is drained,
	// and by Queue.Put on a closed queue. It is the end-of-stream signal.
	ErrQueueClosed = errors.New("queue closed")

	// ErrCancelled is returned by a suspension primitive of a cancelled task.
	ErrCancelled = errors.New("task cancelled")

	// ErrNotCurrent is returned when a suspension primitive is invoked with a
	// task that the scheduler is not currently resuming.
	ErrNotCurrent = errors.New("task is not the running task")

	// ErrRunning is returned by RunContext when the loop is already running.
	ErrRunning = errors.New("scheduler already running")
)

// PanicError is the failure recorded for a task whose computation panicked.
type PanicError struct {
	Value any
	Stack []byte
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("task panicked: %v\n\n%s", e.Value, e.Stack)
}

// Unwrap exposes the panic value when it is itself an error.
func (e *PanicError) Unwrap() error {
	if err, ok := e.Value.(error); ok {
		return err
	}
	return nil
}
