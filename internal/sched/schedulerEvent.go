// internal/sched/schedulerEvent.go

package sched

import (
	"time"
)

// StatusKind represents the type of scheduler event
type StatusKind int

const (
	StatusSpawn StatusKind = iota
	StatusDispatch
	StatusYield
	StatusSleep
	StatusWait
	StatusWake
	StatusIdle
	StatusFinish
	StatusFail
	StatusCancel
)

// StatusEvent is emitted synchronously on every state change of a task
type StatusEvent struct {
	Time    time.Time
	Kind    StatusKind
	TaskID  TaskID
	Name    string
	Resumes int64
	Detail  string
}

func (sk StatusKind) String() string {
	switch sk {
	case StatusSpawn:
		return "Spawn"
	case StatusDispatch:
		return "Dispatch"
	case StatusYield:
		return "Yield"
	case StatusSleep:
		return "Sleep"
	case StatusWait:
		return "Wait"
	case StatusWake:
		return "Wake"
	case StatusIdle:
		return "Idle"
	case StatusFinish:
		return "Finish"
	case StatusFail:
		return "Fail"
	case StatusCancel:
		return "Cancel"
	default:
		return "Unknown"
	}
}
