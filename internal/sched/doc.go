// Package sched is a single-threaded cooperative scheduler.
//
// Tasks are plain functions that receive their own *Task. They run one at a
// time and give up control only at suspension points: Task.Sleep,
// Task.Yield and Queue.Get. Each task runs as an iter.Pull coroutine, so a
// suspension is a direct switch back to the loop in Scheduler.Run and no
// two tasks ever execute at once. Nothing in this package takes a lock.
//
// When no task is ready the loop blocks on its Clock until the earliest
// timer deadline. Run returns once no task is ready or sleeping; tasks left
// parked on a Queue are reported by Scheduler.Stranded and can be unwound
// with Scheduler.Shutdown.
package sched
