package scheduler

import (
	"errors"
	"sync"

	"github.com/brentp/intintmap"
)

// ErrNotScheduled is returned by stop when the task is not (or is no longer)
// present in the liveness registry.
var ErrNotScheduled = errors.New("scheduler: task is not scheduled")

const (
	liveValue     = int64(1)
	notLiveValue  = int64(0)
	bitmapInitCap = 64
	bitmapFill    = 0.75
)

// liveness is a reader/writer-locked registry: a task is alive iff its id
// has a set bit in bitmap, and the two collections (the task-record map and
// the bitmap) are mutated together, only under the writer lock, so the two
// can never be observed out of sync.
//
// The bitmap is intintmap.Map, a sparse open-addressing int64->int64 map:
// it keeps isAlive cheap without touching the task map, and scales to ids
// in the millions better than a dense bool slice would. intintmap has no
// delete primitive for this layout, so a cleared id is tombstoned by
// overwriting its value with notLiveValue rather than removed — isAlive
// treats "absent" and "present with notLiveValue" as the same answer, which
// also means a cleared id can never come back to life: clear never removes
// the tombstone, so a later Get always finds it and register always
// overwrites a fresh set bit explicitly.
type liveness struct {
	mu     sync.RWMutex
	tasks  map[TaskID]*task
	bitmap *intintmap.Map
}

func newLiveness() *liveness {
	return &liveness{
		tasks:  make(map[TaskID]*task),
		bitmap: intintmap.New(bitmapInitCap, bitmapFill),
	}
}

// register adds t to the registry and sets its liveness bit.
func (l *liveness) register(t *task) {
	l.mu.Lock()
	l.tasks[t.id] = t
	l.bitmap.Put(int64(t.id), liveValue)
	l.mu.Unlock()
}

// isAlive reports liveness using only the bitmap, under the reader lock.
func (l *liveness) isAlive(id TaskID) bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	v, ok := l.bitmap.Get(int64(id))
	return ok && v == liveValue
}

// clear removes id from the task map and tombstones its bitmap entry. It
// returns ErrNotScheduled if id was not currently alive.
func (l *liveness) clear(id TaskID) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	v, ok := l.bitmap.Get(int64(id))
	if !ok || v != liveValue {
		return ErrNotScheduled
	}
	delete(l.tasks, id)
	l.bitmap.Put(int64(id), notLiveValue)
	return nil
}

// snapshot returns a weakly-consistent read-only view of every live task.
func (l *liveness) snapshot() []Handle {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]Handle, 0, len(l.tasks))
	for _, t := range l.tasks {
		out = append(out, Handle{t: t})
	}
	return out
}

// count returns the number of currently live tasks.
func (l *liveness) count() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.tasks)
}
