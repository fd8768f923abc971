package sched

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTimerTreeOrdering(t *testing.T) {
	tree := newTimerTree()
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	tree.Put(timerKey{deadline: base.Add(3 * time.Second), seq: 1}, "late")
	tree.Put(timerKey{deadline: base.Add(1 * time.Second), seq: 2}, "early")
	tree.Put(timerKey{deadline: base.Add(2 * time.Second), seq: 3}, "middle")

	var got []string
	for !tree.Empty() {
		node := tree.Left()
		got = append(got, node.Value.(string))
		tree.Remove(node.Key)
	}
	assert.Equal(t, []string{"early", "middle", "late"}, got)
}

func TestTimerTreeTieBreak(t *testing.T) {
	tree := newTimerTree()
	same := time.Date(2024, 1, 1, 0, 0, 1, 0, time.UTC)

	// inserted out of sequence order on purpose
	tree.Put(timerKey{deadline: same, seq: 3}, "c")
	tree.Put(timerKey{deadline: same, seq: 1}, "a")
	tree.Put(timerKey{deadline: same, seq: 2}, "b")

	require.Equal(t, 3, tree.Size())
	var got []string
	for !tree.Empty() {
		node := tree.Left()
		got = append(got, node.Value.(string))
		tree.Remove(node.Key)
	}
	assert.Equal(t, []string{"a", "b", "c"}, got)
}

func TestTimerTreeRemove(t *testing.T) {
	tree := newTimerTree()
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	mid := timerKey{deadline: base.Add(2 * time.Second), seq: 2}

	tree.Put(timerKey{deadline: base.Add(1 * time.Second), seq: 1}, "a")
	tree.Put(mid, "b")
	tree.Put(timerKey{deadline: base.Add(3 * time.Second), seq: 3}, "c")

	tree.Remove(mid)
	_, found := tree.Get(mid)
	assert.False(t, found)
	assert.Equal(t, []interface{}{"a", "c"}, tree.Values())
}

func TestCmp(t *testing.T) {
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	a := timerKey{deadline: base, seq: 1}
	b := timerKey{deadline: base, seq: 2}
	c := timerKey{deadline: base.Add(time.Nanosecond), seq: 0}

	assert.Equal(t, -1, cmp(a, b))
	assert.Equal(t, 1, cmp(b, a))
	assert.Equal(t, 0, cmp(a, a))
	assert.Equal(t, -1, cmp(b, c), "deadline wins over sequence")
}

func TestSleepRegistersTimer(t *testing.T) {
	clock := NewManualClock(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
	s := New(DefaultConfig(), WithClock(clock))

	var during State
	var entries int
	task := s.NewTask(func(task *Task) error {
		return task.Sleep(time.Second)
	})
	s.NewTask(func(*Task) error {
		during = task.State()
		entries = s.timers.Size()
		return nil
	})
	s.Run()

	assert.Equal(t, StateSleeping, during)
	assert.Equal(t, 1, entries)
	assert.True(t, s.timers.Empty())
	assert.Nil(t, task.timer)
}

func TestCancelRemovesTimerEntry(t *testing.T) {
	clock := NewManualClock(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
	s := New(DefaultConfig(), WithClock(clock))

	sleeper := s.NewTask(func(task *Task) error {
		return task.Sleep(time.Hour)
	})
	s.NewTask(func(*Task) error {
		require.Equal(t, 1, s.timers.Size())
		assert.True(t, sleeper.Cancel())
		assert.Equal(t, 0, s.timers.Size())
		return nil
	})
	s.Run()

	assert.ErrorIs(t, sleeper.Err(), ErrCancelled)
	assert.Equal(t, int64(0), clock.Waits(), "a removed entry must never be waited on")
}
