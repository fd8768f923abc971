package sched

import (
	"fmt"
	"iter"
	"runtime/debug"
	"time"
)

// TaskID uniquely identifies a task in the scheduler.
type TaskID uint64

// State is where a task currently lives. A task is in exactly one state.
type State int

const (
	StateReady State = iota
	StateRunning
	StateSleeping
	StateWaiting
	StateDone
)

func (s State) String() string {
	switch s {
	case StateReady:
		return "Ready"
	case StateRunning:
		return "Running"
	case StateSleeping:
		return "Sleeping"
	case StateWaiting:
		return "Waiting"
	case StateDone:
		return "Done"
	default:
		return "Unknown"
	}
}

// Func is the computation a task runs. It receives its own task handle,
// which every suspension primitive needs.
type Func func(t *Task) error

// waiter is a structure holding parked tasks that can give one back on
// cancellation.
type waiter interface {
	removeWaiter(t *Task) bool
}

// Task represents one cooperatively scheduled computation.
type Task struct {
	ID TaskID

	name  string
	sched *Scheduler
	fn    Func
	state State

	next  func() (struct{}, bool) // resume until the next suspension point
	stop  func()
	yield func(struct{}) bool

	timer     *timerKey // set while Sleeping
	waitingOn waiter    // set while Waiting

	started   bool
	cancelled bool
	err       error
	resumes   int64
}

func newTask(s *Scheduler, id TaskID, name string, fn Func) *Task {
	if name == "" {
		name = fmt.Sprintf("task-%d", id)
	}
	return &Task{
		ID:    id,
		name:  name,
		sched: s,
		fn:    fn,
		state: StateReady,
	}
}

func (t *Task) Name() string          { return t.name }
func (t *Task) State() State          { return t.state }
func (t *Task) Done() bool            { return t.state == StateDone }
func (t *Task) Resumes() int64        { return t.resumes }
func (t *Task) Scheduler() *Scheduler { return t.sched }
func (t *Task) Cancelled() bool       { return t.cancelled }
func (t *Task) String() string        { return fmt.Sprintf("%s(#%d,%s)", t.name, t.ID, t.state) }

// Err returns the error the computation ended with, or nil. It is only
// meaningful once the task is done.
func (t *Task) Err() error { return t.err }

// resume runs the computation until it suspends or returns. It reports
// whether the computation has returned.
func (t *Task) resume() (finished bool) {
	if t.next == nil {
		t.next, t.stop = iter.Pull(iter.Seq[struct{}](t.body))
	}
	t.started = true
	_, more := t.next()
	return !more
}

func (t *Task) body(yield func(struct{}) bool) {
	t.yield = yield
	t.err = t.call()
}

// call runs fn, turning a panic into a *PanicError so that only this task
// ends.
func (t *Task) call() (err error) {
	defer func() {
		if v := recover(); v != nil {
			err = &PanicError{Value: v, Stack: debug.Stack()}
		}
	}()
	return t.fn(t)
}

// suspend hands control back to the scheduler. The caller has already
// recorded where the task goes next.
func (t *Task) suspend() {
	if !t.yield(struct{}{}) {
		// Pull was stopped; nothing will resume us again.
		t.cancelled = true
	}
}

// checkRunnable is the entry check of every suspension primitive.
func (t *Task) checkRunnable() error {
	if t.sched.current != t {
		return ErrNotCurrent
	}
	if t.cancelled {
		return ErrCancelled
	}
	return nil
}

// Sleep suspends t for at least d, scaled by the configured time scale.
// It returns ErrCancelled if t is cancelled before or while sleeping.
func (t *Task) Sleep(d time.Duration) error {
	if err := t.checkRunnable(); err != nil {
		return err
	}
	t.sched.addTimer(t, d)
	t.suspend()
	if t.cancelled {
		return ErrCancelled
	}
	return nil
}

// Yield puts t at the back of the ready queue and lets every task ahead of
// it run once.
func (t *Task) Yield() error {
	if err := t.checkRunnable(); err != nil {
		return err
	}
	t.sched.emit(StatusYield, t, "")
	t.suspend()
	if t.cancelled {
		return ErrCancelled
	}
	return nil
}

// Cancel asks t to stop. See Scheduler.Cancel.
func (t *Task) Cancel() bool {
	return t.sched.Cancel(t)
}
