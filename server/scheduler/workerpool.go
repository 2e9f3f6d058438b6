package scheduler

import (
	"context"
	"runtime"

	"golang.org/x/sync/semaphore"
)

// WorkerPool is the asynchronous-dispatch collaborator: it must run a body
// off the processing thread, in parallel with other Async bodies. The
// contract makes no promise about ordering between tasks; any shared
// work-stealing pool satisfying it is acceptable.
type WorkerPool interface {
	Submit(f func())
}

// Pool is the default WorkerPool: a fixed number of concurrent slots guarded
// by a weighted semaphore, rather than an unbounded goroutine-per-task fan
// out. Submit blocks the caller only long enough to acquire a slot; the body
// itself always runs on its own goroutine, never on the caller.
type Pool struct {
	sem *semaphore.Weighted
}

// NewPool creates a Pool allowing up to parallelism bodies to run at once.
// parallelism <= 0 defaults to runtime.GOMAXPROCS(0).
func NewPool(parallelism int64) *Pool {
	if parallelism <= 0 {
		parallelism = int64(runtime.GOMAXPROCS(0))
	}
	return &Pool{sem: semaphore.NewWeighted(parallelism)}
}

// Submit runs f on a goroutine once a slot is free.
func (p *Pool) Submit(f func()) {
	// context.Background never cancels, so Acquire only ever blocks on slot
	// availability, never returns an error.
	_ = p.sem.Acquire(context.Background(), 1)
	go func() {
		defer p.sem.Release(1)
		f()
	}()
}

// InlinePool is a WorkerPool that runs bodies synchronously on the calling
// goroutine. It exists for deterministic tests that want Async semantics
// (dispatch-via-pool) without real concurrency.
type InlinePool struct{}

// Submit runs f immediately, on the caller's goroutine.
func (InlinePool) Submit(f func()) { f() }
