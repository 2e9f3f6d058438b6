package scheduler

import (
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
)

// ErrNotParked is returned by Unpark when the task is not present in the
// parked set.
var ErrNotParked = errors.New("scheduler: task is not parked")

// ErrSchedulerClosed is returned by Submit once the Scheduler has been
// closed.
var ErrSchedulerClosed = errors.New("scheduler: scheduler is closed")

// Scheduler multiplexes tick, duration, and future-based deferrals onto a
// single processing step invoked by the host loop. Tasks submitted on any
// goroutine are registered in the liveness registry and immediately given
// their first execution; Process and ProcessTick drain whatever has since
// become ready.
//
// Construct one with New; the zero value is not ready for use.
type Scheduler struct {
	log   *slog.Logger
	timer TimerService
	pool  WorkerPool
	sink  ExceptionSink

	nextID atomic.Int64

	live   *liveness
	wheel  *wheel
	ready  *readyQueue
	parked *parkedSet

	tick atomic.Int64

	// processMu serialises Process/ProcessTick against themselves. A Sync
	// task body must never call back into Process or ProcessTick: that
	// would deadlock against this same mutex, a contract violation, not a
	// bug here.
	processMu sync.Mutex

	closed atomic.Bool
}

// Stats is a point-in-time snapshot of the scheduler's internal queue
// depths.
type Stats struct {
	Live       int
	Parked     int
	WheelDepth int
	ReadyDepth int
}

// Stats returns the current queue depths.
func (s *Scheduler) Stats() Stats {
	return Stats{
		Live:       s.live.count(),
		Parked:     s.parked.depth(),
		WheelDepth: s.wheel.depth(),
		ReadyDepth: s.ready.depth(),
	}
}

// Submit allocates a fresh TaskID, registers body under mode, and dispatches
// its first execution immediately. It fails only if the Scheduler has been
// closed, resource exhaustion aside.
func (s *Scheduler) Submit(body Body, mode ExecutionMode) (Handle, error) {
	if s.closed.Load() {
		return Handle{}, ErrSchedulerClosed
	}
	id := TaskID(s.nextID.Add(1))
	t := &task{id: id, mode: mode, body: body, owner: s}
	s.live.register(t)
	s.dispatch(t)
	return Handle{t: t}, nil
}

// CurrentTick returns the tick the scheduler currently considers "now".
func (s *Scheduler) CurrentTick() int64 { return s.tick.Load() }

// ScheduledTasks returns a read-only snapshot of the live task set.
// Iteration safety is weakly consistent: concurrent submits/stops may or may
// not appear in the result.
func (s *Scheduler) ScheduledTasks() []Handle { return s.live.snapshot() }

// Process drains the tick wheel up to the current tick and the ready queue,
// dispatching every task found, without advancing the tick counter. Use this
// for sub-tick precision passes (e.g. draining Duration/Future resumptions
// between ticks). It must not be called re-entrantly from a Sync task body.
func (s *Scheduler) Process() {
	s.processMu.Lock()
	defer s.processMu.Unlock()
	s.processLocked()
}

// ProcessTick atomically increments the tick counter, then processes against
// the new tick as Process does, returning the new current tick. It must not
// be called re-entrantly from a Sync task body.
func (s *Scheduler) ProcessTick() int64 {
	s.processMu.Lock()
	defer s.processMu.Unlock()
	current := s.tick.Add(1)
	s.processLocked()
	return current
}

func (s *Scheduler) processLocked() {
	current := s.tick.Load()
	// Wheel first, then the ready queue. A task re-scheduled with Tick(1)
	// while draining the wheel at tick==current targets current+1 and so
	// will not be revisited until next pass, guaranteeing termination.
	for _, t := range s.wheel.drain(current) {
		s.dispatch(t)
	}
	for _, t := range s.ready.drain() {
		s.dispatch(t)
	}
}

// dispatch drops a dead task silently, runs a Sync task inline, and hands an
// Async task to the pool.
func (s *Scheduler) dispatch(t *task) {
	if !s.live.isAlive(t.id) {
		s.log.Debug("scheduler: dropped dead task", "task", t.id)
		return
	}
	switch t.mode {
	case ModeAsync:
		s.pool.Submit(func() { s.runAsync(t) })
	default:
		s.run(t)
	}
}

// runAsync wraps run with a recover so a panicking body logs a warning and
// releases its worker slot before the panic continues to unwind into the
// pool's own goroutine, rather than being silently swallowed.
func (s *Scheduler) runAsync(t *task) {
	defer func() {
		if r := recover(); r != nil {
			s.log.Warn("scheduler: task body panicked", "task", t.id, "error", r)
			panic(r)
		}
	}()
	s.run(t)
}

// run invokes the body exactly once and interprets the returned Schedule.
// Body panics propagate to the caller: the goroutine running Process (Sync)
// or the pool (Async).
func (s *Scheduler) run(t *task) {
	if !s.live.isAlive(t.id) {
		return
	}
	s.interpret(t, t.body(Handle{t: t}))
}

func (s *Scheduler) interpret(t *task, sched Schedule) {
	switch sched.kind {
	case kindDuration:
		s.timer.AfterFunc(sched.duration, func() { s.ready.push(t) })
	case kindTick:
		s.wheel.insert(s.tick.Load()+sched.ticks, t)
	case kindFuture:
		sched.future.Notify(func(err error) {
			if err != nil {
				s.sink.HandleException(err)
				return
			}
			s.dispatch(t)
		})
	case kindPark:
		s.parked.park(t)
	case kindStop:
		// Self-issued Stop; ignore the error, the task is by definition
		// still alive here (run only reaches this far past the isAlive
		// check above).
		_ = s.live.clear(t.id)
	}
}

// isAlive reports whether id's liveness bit is still set.
func (s *Scheduler) isAlive(id TaskID) bool { return s.live.isAlive(id) }

// stop clears id's liveness bit. Stopping an already-absent task is an
// error; auxiliary structures are not purged here, they observe the cleared
// bit at their own next dispatch.
func (s *Scheduler) stop(id TaskID) error { return s.live.clear(id) }

// unpark removes id from the parked set and dispatches it immediately, via
// the same path as a fresh Submit.
func (s *Scheduler) unpark(id TaskID) error {
	t, ok := s.parked.unpark(id)
	if !ok {
		return ErrNotParked
	}
	s.dispatch(t)
	return nil
}

// Close stops the scheduler from accepting new Submit calls. It does not
// cancel work already scheduled: armed timers, in-flight future callbacks,
// and wheel/ready entries still fire and are filtered at dispatch by the
// liveness bit, exactly like an individual Stop. Close is idempotent.
func (s *Scheduler) Close() {
	s.closed.Store(true)
}
