// internal/sched/scheduler.go

package sched

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/emirpasic/gods/queues/linkedlistqueue"
	"github.com/emirpasic/gods/trees/redblacktree"
	"github.com/hashicorp/go-multierror"
	"github.com/spf13/afero"

	"corun/internal/logger"
)

// Scheduler is a single-threaded cooperative event loop. Tasks run one at a
// time and only give up control at suspension points (Sleep, Yield,
// Queue.Get). None of its methods are safe for use from other goroutines.
type Scheduler struct {
	cfg   Config
	clock Clock
	log   logger.Logger
	fs    afero.Fs

	ready   *linkedlistqueue.Queue // FIFO of *Task eligible to run now
	timers  *redblacktree.Tree     // timerKey -> *Task, earliest deadline first
	seq     uint64                 // timer tie-breaker
	nextID  TaskID                 // last assigned task ID
	tasks   map[TaskID]*Task       // every task not yet done
	current *Task
	running bool

	stats       Stats
	failures    *multierror.Error
	subscribers []func(StatusEvent)
	trace       *csvTrace
}

// Stats are cumulative counters over the scheduler's lifetime.
type Stats struct {
	Spawned    int64
	Finished   int64
	Failed     int64
	Cancelled  int64
	Dispatches int64
	TimerWaits int64 // times the loop blocked on the clock
}

// Option customizes a Scheduler.
type Option func(*Scheduler)

// WithClock replaces the wall clock, e.g. with a ManualClock in tests.
func WithClock(c Clock) Option {
	return func(s *Scheduler) { s.clock = c }
}

// WithLogger sets the logger for failures, stranded tasks and events.
func WithLogger(l logger.Logger) Option {
	return func(s *Scheduler) { s.log = l }
}

// WithFs sets the filesystem the CSV trace is written to.
func WithFs(fs afero.Fs) Option {
	return func(s *Scheduler) { s.fs = fs }
}

// New creates a new Scheduler instance with the given configuration.
func New(cfg Config, opts ...Option) *Scheduler {
	if cfg.Scheduler.TimeScale <= 0 {
		cfg.Scheduler.TimeScale = 1.0
	}
	s := &Scheduler{
		cfg:    cfg,
		clock:  RealClock{},
		log:    logger.NewNopLogger(),
		fs:     afero.NewOsFs(),
		ready:  linkedlistqueue.New(),
		timers: newTimerTree(),
		tasks:  make(map[TaskID]*Task),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// NewTask registers fn as a new Ready task. It does not run it.
func (s *Scheduler) NewTask(fn Func) *Task {
	return s.NewNamedTask("", fn)
}

// NewNamedTask is NewTask with a name used in logs and traces.
func (s *Scheduler) NewNamedTask(name string, fn Func) *Task {
	t := s.spawn(name, fn)
	s.makeReady(t)
	return t
}

func (s *Scheduler) spawn(name string, fn Func) *Task {
	s.nextID++
	t := newTask(s, s.nextID, name, fn)
	s.tasks[t.ID] = t
	s.stats.Spawned++
	s.emit(StatusSpawn, t, "")
	return t
}

// CallSoon runs fn as a task on the next pass of the loop.
func (s *Scheduler) CallSoon(fn func()) *Task {
	return s.NewNamedTask("call-soon", func(*Task) error {
		fn()
		return nil
	})
}

// CallLater runs fn as a task once d has elapsed. The deadline is taken
// now, not when the loop first gets to the task.
func (s *Scheduler) CallLater(d time.Duration, fn func()) *Task {
	t := s.spawn("call-later", func(*Task) error {
		fn()
		return nil
	})
	s.addTimer(t, d)
	return t
}

// Current returns the task being resumed, or nil outside of a task.
func (s *Scheduler) Current() *Task { return s.current }

// Stats returns a snapshot of the counters.
func (s *Scheduler) Stats() Stats { return s.stats }

// Failures aggregates every task failure seen so far, or returns nil.
// Cancellation is not a failure.
func (s *Scheduler) Failures() error { return s.failures.ErrorOrNil() }

// Len returns the number of tasks that are not done.
func (s *Scheduler) Len() int { return len(s.tasks) }

// Run drives all tasks until both the ready queue and the timer tree are
// empty.
func (s *Scheduler) Run() {
	if err := s.RunContext(context.Background()); err != nil {
		s.log.Error("run: %v", err)
	}
}

// RunContext is Run with a way out: if ctx is done while the loop is
// blocked waiting for a timer, it returns ctx.Err() and leaves every task
// where it was, so a later call picks up again.
func (s *Scheduler) RunContext(ctx context.Context) error {
	if s.running {
		return ErrRunning
	}
	s.running = true
	defer func() { s.running = false }()

	for !s.ready.Empty() || !s.timers.Empty() {
		// 1) nothing ready: block until the nearest deadline
		if s.ready.Empty() {
			key, t, _ := s.nextTimer()
			if key.deadline.After(s.clock.Now()) {
				s.emit(StatusIdle, t, key.deadline.Format(time.RFC3339Nano))
				if err := s.clock.SleepUntil(ctx, key.deadline); err != nil {
					return err
				}
				s.stats.TimerWaits++
			}
			s.timers.Remove(key)
			if t.state != StateSleeping || t.timer == nil || cmp(*t.timer, key) != 0 {
				// stale entry, never resume it
				continue
			}
			t.timer = nil
			s.emit(StatusWake, t, "timer")
			s.makeReady(t)
		}

		// 2) drain the ready queue, including tasks made ready meanwhile
		for !s.ready.Empty() {
			v, _ := s.ready.Dequeue()
			s.step(v.(*Task))
		}
	}

	for _, t := range s.Stranded() {
		s.log.Warning("task %s is still waiting on a queue after the loop went idle", t)
	}
	return nil
}

// step resumes t once and files it according to the state it left itself
// in.
func (s *Scheduler) step(t *Task) {
	if t.state != StateReady {
		return
	}
	if t.cancelled && !t.started {
		t.err = ErrCancelled
		s.finish(t)
		return
	}

	s.current = t
	t.state = StateRunning
	t.resumes++
	s.stats.Dispatches++
	s.emit(StatusDispatch, t, "")

	finished := t.resume()
	s.current = nil

	switch {
	case finished:
		s.finish(t)
	case t.state == StateRunning:
		// suspended without registering anywhere: a plain yield
		s.makeReady(t)
	}
}

func (s *Scheduler) finish(t *Task) {
	t.state = StateDone
	if t.stop != nil {
		t.stop()
	}
	t.fn, t.next, t.stop, t.yield = nil, nil, nil, nil
	delete(s.tasks, t.ID)

	switch {
	case t.err != nil && !errors.Is(t.err, ErrCancelled):
		s.stats.Failed++
		s.failures = multierror.Append(s.failures, fmt.Errorf("%s: %w", t.name, t.err))
		s.log.Error("task %s failed: %v", t, t.err)
		s.emit(StatusFail, t, t.err.Error())
	case t.cancelled:
		s.stats.Cancelled++
		s.emit(StatusCancel, t, "")
	default:
		s.stats.Finished++
		s.emit(StatusFinish, t, "")
	}
}

func (s *Scheduler) makeReady(t *Task) {
	t.state = StateReady
	s.ready.Enqueue(t)
}

// Cancel asks t to stop. A sleeping or waiting task is taken out of the
// timer tree or wait list and made ready; its pending Sleep or Get returns
// ErrCancelled. A ready or running task is only flagged: its next
// suspension primitive returns ErrCancelled. A task that never started does
// not run at all. Cancel reports whether the request was new.
func (s *Scheduler) Cancel(t *Task) bool {
	if t.sched != s || t.state == StateDone || t.cancelled {
		return false
	}
	t.cancelled = true
	s.log.Debug("cancel %s", t)

	switch t.state {
	case StateSleeping:
		s.removeTimer(t)
		s.makeReady(t)
	case StateWaiting:
		if t.waitingOn != nil {
			t.waitingOn.removeWaiter(t)
			t.waitingOn = nil
		}
		s.makeReady(t)
	}
	return true
}

// Stranded returns the tasks still parked on a queue, in ID order. After
// Run returns these can only be woken from outside the loop.
func (s *Scheduler) Stranded() []*Task {
	var out []*Task
	for _, t := range s.tasks {
		if t.state == StateWaiting {
			out = append(out, t)
		}
	}
	slices.SortFunc(out, func(a, b *Task) int {
		switch {
		case a.ID < b.ID:
			return -1
		case a.ID > b.ID:
			return 1
		}
		return 0
	})
	return out
}

// Shutdown cancels every task that is not done and runs the loop until
// they have all unwound.
func (s *Scheduler) Shutdown() {
	live := make([]*Task, 0, len(s.tasks))
	for _, t := range s.tasks {
		live = append(live, t)
	}
	for _, t := range live {
		s.Cancel(t)
	}
	s.Run()
}

// Subscribe registers fn to receive every status event synchronously.
// fn must not call suspension primitives.
func (s *Scheduler) Subscribe(fn func(StatusEvent)) {
	s.subscribers = append(s.subscribers, fn)
}

func (s *Scheduler) emit(kind StatusKind, t *Task, detail string) {
	if len(s.subscribers) == 0 && s.trace == nil && !s.cfg.Scheduler.LogEvents {
		return
	}
	ev := StatusEvent{
		Time:   s.clock.Now(),
		Kind:   kind,
		Detail: detail,
	}
	if t != nil {
		ev.TaskID = t.ID
		ev.Name = t.name
		ev.Resumes = t.resumes
	}

	for _, fn := range s.subscribers {
		fn(ev)
	}
	if s.trace != nil {
		if err := s.trace.write(ev); err != nil {
			s.log.Warning("csv trace disabled: %v", err)
			_ = s.trace.close()
			s.trace = nil
		}
	}
	if s.cfg.Scheduler.LogEvents {
		s.log.Debug("[%s] task=%d name=%s resumes=%d %s", kind, ev.TaskID, ev.Name, ev.Resumes, detail)
	}
}

// Close flushes and closes the CSV trace, if any.
func (s *Scheduler) Close() error {
	if s.trace == nil {
		return nil
	}
	err := s.trace.close()
	s.trace = nil
	return err
}
