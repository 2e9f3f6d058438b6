package scheduler

// TaskID identifies a task for the lifetime of the process. IDs are assigned
// from a shared, monotonically increasing counter and are never reused.
type TaskID int64

// ExecutionMode fixes where a task's body runs. It is chosen at Submit and
// never changes afterwards.
type ExecutionMode uint8

const (
	// ModeSync runs the body inline, on the goroutine that called Process or
	// ProcessTick (or Submit, for the first execution).
	ModeSync ExecutionMode = iota
	// ModeAsync hands the body to the Scheduler's WorkerPool.
	ModeAsync
)

// String returns a human-readable name for the mode, used in logging.
func (m ExecutionMode) String() string {
	switch m {
	case ModeSync:
		return "sync"
	case ModeAsync:
		return "async"
	default:
		return "unknown"
	}
}

// Body is the callable a task supplies. It is invoked at most once per
// dispatch and returns the Schedule describing when, if ever, it should run
// again. self gives the body its own handle, so it can inspect or control
// itself (e.g. Stop) without capturing anything from the call-site.
type Body func(self Handle) Schedule

// task is the record shared between the liveness registry, the tick wheel,
// the ready queue, and the parked set. It is logically immutable after
// creation: the collections it moves between are what change, not the
// record itself. owner is a non-owning back-reference — the Scheduler
// outlives every task it creates, so this is a plain pointer, never shared
// ownership.
type task struct {
	id    TaskID
	mode  ExecutionMode
	body  Body
	owner *Scheduler
}

// Handle is returned by Submit and lets a caller observe and control a
// submitted task. Handles are comparable and compare equal by id.
type Handle struct {
	t *task
}

// ID returns the task's identifier.
func (h Handle) ID() TaskID { return h.t.id }

// ExecutionType returns the mode the task was submitted with.
func (h Handle) ExecutionType() ExecutionMode { return h.t.mode }

// Owner returns the Scheduler that owns this task.
func (h Handle) Owner() *Scheduler { return h.t.owner }

// IsAlive reports whether the task's liveness bit is still set.
func (h Handle) IsAlive() bool { return h.t.owner.isAlive(h.t.id) }

// Stop clears the task's liveness bit, preventing any further dispatch. It
// returns ErrNotScheduled if the task was already stopped.
func (h Handle) Stop() error { return h.t.owner.stop(h.t.id) }

// Unpark removes the task from the parked set and dispatches it immediately.
// It returns ErrNotParked if the task was not parked.
func (h Handle) Unpark() error { return h.t.owner.unpark(h.t.id) }
