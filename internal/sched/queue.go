package sched

import (
	"github.com/emirpasic/gods/lists/doublylinkedlist"
	"github.com/emirpasic/gods/queues/linkedlistqueue"
)

// Queue is an unbounded, closable FIFO channel between tasks of one
// Scheduler. Put never suspends; Get suspends the calling task while the
// queue is empty and open.
//
// Close is one-way. Items put before Close are still delivered; after
// that, Get returns ErrQueueClosed for good.
type Queue[T any] struct {
	sched   *Scheduler
	items   *linkedlistqueue.Queue
	waiting *doublylinkedlist.List // consumers parked in Get, longest-waiting first
	closed  bool
}

// NewQueue creates an open, empty queue bound to s.
func NewQueue[T any](s *Scheduler) *Queue[T] {
	return &Queue[T]{
		sched:   s,
		items:   linkedlistqueue.New(),
		waiting: doublylinkedlist.New(),
	}
}

// Put appends item and wakes the longest-waiting consumer, if any. On a
// closed queue the item is dropped and ErrQueueClosed returned.
func (q *Queue[T]) Put(item T) error {
	if q.closed {
		return ErrQueueClosed
	}
	q.items.Enqueue(item)
	q.wakeOne()
	return nil
}

// Get removes and returns the front item. When the queue is empty and open
// the calling task t waits for a Put or a Close. A wake-up is only a hint:
// another consumer may have taken the item first, so Get checks again.
func (q *Queue[T]) Get(t *Task) (T, error) {
	var zero T
	for q.items.Empty() {
		if q.closed {
			return zero, ErrQueueClosed
		}
		if err := t.checkRunnable(); err != nil {
			return zero, err
		}
		q.park(t)
		t.suspend()
		if t.cancelled {
			// a Put may have woken us for an item we won't take
			q.wakeOne()
			return zero, ErrCancelled
		}
	}

	v, _ := q.items.Dequeue()
	if q.closed && q.items.Empty() {
		// last item of a closed queue: nobody parked can ever be served
		q.wakeAll()
	}
	return v.(T), nil
}

// Close marks the queue closed. If nothing is buffered every waiting
// consumer is woken to observe ErrQueueClosed. Calling it again does
// nothing.
func (q *Queue[T]) Close() {
	if q.closed {
		return
	}
	q.closed = true
	if q.items.Empty() {
		q.wakeAll()
	}
}

// Closed reports whether Close has been called.
func (q *Queue[T]) Closed() bool { return q.closed }

// Len returns the number of buffered items.
func (q *Queue[T]) Len() int { return q.items.Size() }

// Waiting returns the number of consumers parked in Get.
func (q *Queue[T]) Waiting() int { return q.waiting.Size() }

func (q *Queue[T]) park(t *Task) {
	q.waiting.Add(t)
	t.waitingOn = q
	t.state = StateWaiting
	q.sched.emit(StatusWait, t, "")
}

func (q *Queue[T]) wakeOne() {
	if q.items.Empty() && !q.closed {
		return
	}
	v, ok := q.waiting.Get(0)
	if !ok {
		return
	}
	q.waiting.Remove(0)
	q.wake(v.(*Task))
}

func (q *Queue[T]) wakeAll() {
	waiters := q.waiting.Values()
	q.waiting.Clear()
	for _, v := range waiters {
		q.wake(v.(*Task))
	}
}

func (q *Queue[T]) wake(t *Task) {
	t.waitingOn = nil
	q.sched.emit(StatusWake, t, "queue")
	q.sched.makeReady(t)
}

func (q *Queue[T]) removeWaiter(t *Task) bool {
	i := q.waiting.IndexOf(t)
	if i < 0 {
		return false
	}
	q.waiting.Remove(i)
	return true
}
