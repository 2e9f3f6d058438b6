package scheduler

import "sync"

// Promise is a minimal settable Future: exactly one of Resolve or Reject may
// take effect, after which every registered (and any later) Notify callback
// runs with that outcome. It is grounded on the subscriber-list pattern used
// by promise/future implementations elsewhere in the ecosystem: a
// mutex-guarded list of waiters that either fires immediately, if the
// promise already settled, or is replayed once it does.
//
// Promise is the bridge a task body hands to ScheduleFuture when it needs to
// wait on something outside the scheduler's own time model — a database
// write, an HTTP call, another goroutine's result.
type Promise struct {
	mu      sync.Mutex
	settled bool
	err     error
	waiters []func(error)
}

// NewPromise returns an unsettled Promise satisfying Future.
func NewPromise() *Promise {
	return &Promise{}
}

// Notify implements Future.
func (p *Promise) Notify(f func(err error)) {
	p.mu.Lock()
	if p.settled {
		err := p.err
		p.mu.Unlock()
		f(err)
		return
	}
	p.waiters = append(p.waiters, f)
	p.mu.Unlock()
}

// Resolve settles the promise successfully. Calls after the first Resolve
// or Reject are no-ops.
func (p *Promise) Resolve() { p.settle(nil) }

// Reject settles the promise with a failure reason. Calls after the first
// Resolve or Reject are no-ops.
func (p *Promise) Reject(err error) { p.settle(err) }

func (p *Promise) settle(err error) {
	p.mu.Lock()
	if p.settled {
		p.mu.Unlock()
		return
	}
	p.settled = true
	p.err = err
	waiters := p.waiters
	p.waiters = nil
	p.mu.Unlock()

	for _, f := range waiters {
		f(err)
	}
}
