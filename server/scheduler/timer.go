package scheduler

import "time"

// TimerHandle lets a caller cancel an armed timer callback before it fires.
type TimerHandle interface {
	Stop() bool
}

// TimerService is the wall-clock timer collaborator: any monotonic timer
// that fires a callback once, after at least d has elapsed, is a valid
// implementation. A hashed-wheel timer is equally valid; RealTimer below is
// simply the cheapest correct one.
type TimerService interface {
	AfterFunc(d time.Duration, f func()) TimerHandle
}

// RealTimer is the production TimerService, backed by the runtime's own
// timer heap via time.AfterFunc — the same primitive the world's tick loop
// (server/world/tick.go) already uses for its own cadence via time.Ticker.
type RealTimer struct{}

// AfterFunc arms f to run after d elapses, on its own goroutine.
func (RealTimer) AfterFunc(d time.Duration, f func()) TimerHandle {
	return time.AfterFunc(d, f)
}
