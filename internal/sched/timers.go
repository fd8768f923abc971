package sched

import (
	"time"

	"github.com/emirpasic/gods/trees/redblacktree"
)

// timerKey is used as a key in the timer tree. seq breaks ties between
// equal deadlines in registration order.
type timerKey struct {
	deadline time.Time
	seq      uint64
}

// cmp implements the Comparator for timer tree ordering.
func cmp(a, b any) int {
	ka, kb := a.(timerKey), b.(timerKey)
	switch {
	case ka.deadline.Before(kb.deadline):
		return -1
	case ka.deadline.After(kb.deadline):
		return 1
	case ka.seq < kb.seq:
		return -1
	case ka.seq > kb.seq:
		return 1
	default:
		return 0
	}
}

func newTimerTree() *redblacktree.Tree {
	return redblacktree.NewWith(cmp)
}

// addTimer registers t in the timer tree and marks it Sleeping.
func (s *Scheduler) addTimer(t *Task, d time.Duration) {
	if s.cfg.Scheduler.TimeScale != 1.0 {
		d = time.Duration(float64(d) * s.cfg.Scheduler.TimeScale)
	}
	s.seq++
	key := timerKey{deadline: s.clock.Now().Add(d), seq: s.seq}
	s.timers.Put(key, t)
	t.timer = &key
	t.state = StateSleeping
	s.emit(StatusSleep, t, key.deadline.Format(time.RFC3339Nano))
}

// removeTimer takes t out of the timer tree. It reports whether t had an
// entry.
func (s *Scheduler) removeTimer(t *Task) bool {
	if t.timer == nil {
		return false
	}
	s.timers.Remove(*t.timer)
	t.timer = nil
	return true
}

// nextTimer returns the earliest entry without removing it.
func (s *Scheduler) nextTimer() (timerKey, *Task, bool) {
	node := s.timers.Left()
	if node == nil {
		return timerKey{}, nil, false
	}
	return node.Key.(timerKey), node.Value.(*Task), true
}
