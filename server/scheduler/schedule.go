package scheduler

import (
	"errors"
	"time"
)

// ErrInvalidSchedule is returned by Tick when constructed with a non-positive
// tick delta. The failure happens synchronously in the constructor, not at
// interpretation time, so a task body can decide what to do (typically Stop)
// before ever returning the bad value to the engine.
var ErrInvalidSchedule = errors.New("scheduler: invalid schedule")

// Future is satisfied by any external completion signal. Notify must call f
// exactly once, with a nil error on success or the failure reason otherwise.
// Implementations may call f synchronously, from within Notify itself, if
// the future has already settled.
type Future interface {
	Notify(f func(err error))
}

type scheduleKind uint8

const (
	kindDuration scheduleKind = iota
	kindTick
	kindFuture
	kindPark
	kindStop
)

// Schedule is the tagged value a task body returns to describe its next
// resume condition. The zero value is equivalent to Duration(0); always
// build one with a constructor below.
type Schedule struct {
	kind     scheduleKind
	duration time.Duration
	ticks    int64
	future   Future
}

// Duration resumes the task once d has elapsed on the wall clock. Negative
// durations are treated as zero (resume on the next processing pass).
func Duration(d time.Duration) Schedule {
	if d < 0 {
		d = 0
	}
	return Schedule{kind: kindDuration, duration: d}
}

// Tick resumes the task on tick current+n, where current is the tick active
// when the schedule is interpreted. n must be >= 1; n <= 0 would never be
// revisited in the same processing pass and is rejected here rather than
// silently stalling the task forever.
func Tick(n int64) (Schedule, error) {
	if n <= 0 {
		return Schedule{}, ErrInvalidSchedule
	}
	return Schedule{kind: kindTick, ticks: n}, nil
}

// ScheduleFuture resumes the task when f fires successfully. If f fails, the
// error is reported to the scheduler's ExceptionSink and the task is left
// registered but not resumed; callers that want to give up on a failed
// dependency must call Stop explicitly.
func ScheduleFuture(f Future) Schedule {
	return Schedule{kind: kindFuture, future: f}
}

// Park moves the task to the parked set, where it remains until an external
// Unpark call.
func Park() Schedule {
	return Schedule{kind: kindPark}
}

// Stop is terminal: the task is removed from the liveness registry and will
// never be dispatched again.
func Stop() Schedule {
	return Schedule{kind: kindStop}
}
