package scheduler

import (
	"sync"
	"time"
)

// manualTimer is a deterministic TimerService for tests: nothing fires on a
// background goroutine. Callbacks accumulate when armed and are released by
// advance, which fires every callback whose deadline has elapsed, in
// deadline order.
type manualTimer struct {
	mu    sync.Mutex
	now   time.Duration
	armed []*manualTimerEntry
}

type manualTimerEntry struct {
	deadline time.Duration
	f        func()
	fired    bool
}

type manualTimerHandle struct {
	entry *manualTimerEntry
}

func (h *manualTimerHandle) Stop() bool {
	if h.entry.fired {
		return false
	}
	h.entry.fired = true
	return true
}

func newManualTimer() *manualTimer { return &manualTimer{} }

func (m *manualTimer) AfterFunc(d time.Duration, f func()) TimerHandle {
	m.mu.Lock()
	defer m.mu.Unlock()
	e := &manualTimerEntry{deadline: m.now + d, f: f}
	m.armed = append(m.armed, e)
	return &manualTimerHandle{entry: e}
}

// advance moves the fake clock forward by d and fires, in deadline order,
// every callback whose deadline has now elapsed.
func (m *manualTimer) advance(d time.Duration) {
	m.mu.Lock()
	m.now += d
	var ready, remaining []*manualTimerEntry
	for _, e := range m.armed {
		if !e.fired && e.deadline <= m.now {
			e.fired = true
			ready = append(ready, e)
		} else {
			remaining = append(remaining, e)
		}
	}
	m.armed = remaining
	m.mu.Unlock()

	for _, e := range ready {
		e.f()
	}
}
