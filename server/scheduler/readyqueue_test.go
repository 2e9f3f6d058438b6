package scheduler

import (
	"sync"
	"testing"
)

func TestReadyQueueFIFO(t *testing.T) {
	q := newReadyQueue()
	a, b, c := &task{id: 1}, &task{id: 2}, &task{id: 3}
	q.push(a)
	q.push(b)
	q.push(c)

	out := q.drain()
	if len(out) != 3 || out[0] != a || out[1] != b || out[2] != c {
		t.Fatalf("drain: got %v, want [a b c]", out)
	}
	if out := q.drain(); out != nil {
		t.Fatalf("second drain: got %v, want nil", out)
	}
}

func TestReadyQueueConcurrentProducers(t *testing.T) {
	q := newReadyQueue()
	const n = 500

	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(id TaskID) {
			defer wg.Done()
			q.push(&task{id: id})
		}(TaskID(i))
	}
	wg.Wait()

	if got := len(q.drain()); got != n {
		t.Fatalf("got %d drained tasks, want %d", got, n)
	}
}

func TestParkedSetUnparkOnce(t *testing.T) {
	p := newParkedSet()
	tk := &task{id: 7}
	p.park(tk)

	got, ok := p.unpark(7)
	if !ok || got != tk {
		t.Fatalf("first unpark: got (%v, %v), want (tk, true)", got, ok)
	}
	if _, ok := p.unpark(7); ok {
		t.Fatal("second unpark: expected not-parked")
	}
}
