package scheduler

import "sync"

// parkedSet holds tasks awaiting an external Unpark call. Membership checks
// for unpark are atomic with respect to removal, so an unpark of a
// non-parked task is always an error, with no race between two concurrent
// Unpark calls on the same task.
type parkedSet struct {
	mu    sync.Mutex
	tasks map[TaskID]*task
}

func newParkedSet() *parkedSet {
	return &parkedSet{tasks: make(map[TaskID]*task)}
}

// park adds t to the set.
func (p *parkedSet) park(t *task) {
	p.mu.Lock()
	p.tasks[t.id] = t
	p.mu.Unlock()
}

// unpark removes id from the set if present, returning the task and true;
// otherwise returns (nil, false). The check-and-remove is a single critical
// section, so two concurrent Unpark calls on the same id can never both
// succeed.
func (p *parkedSet) unpark(id TaskID) (*task, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	t, ok := p.tasks[id]
	if ok {
		delete(p.tasks, id)
	}
	return t, ok
}

// depth returns the number of parked tasks, for Scheduler.Stats.
func (p *parkedSet) depth() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.tasks)
}
