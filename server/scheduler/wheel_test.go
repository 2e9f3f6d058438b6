package scheduler

import "testing"

func TestWheelDrainOrdering(t *testing.T) {
	w := newWheel()
	a, b, c := &task{id: 1}, &task{id: 2}, &task{id: 3}

	w.insert(5, a)
	w.insert(3, b)
	w.insert(3, c)

	out := w.drain(4)
	if len(out) != 2 || out[0] != b || out[1] != c {
		t.Fatalf("drain(4): got %v, want [b c] (ascending tick, insertion order within tick)", out)
	}
	if w.depth() != 1 {
		t.Fatalf("depth after drain(4): got %d, want 1", w.depth())
	}

	out = w.drain(5)
	if len(out) != 1 || out[0] != a {
		t.Fatalf("drain(5): got %v, want [a]", out)
	}
	if w.depth() != 0 {
		t.Fatalf("depth after drain(5): got %d, want 0", w.depth())
	}
}

func TestWheelDrainLeavesFutureKeysAlone(t *testing.T) {
	w := newWheel()
	w.insert(10, &task{id: 1})

	if out := w.drain(9); len(out) != 0 {
		t.Fatalf("drain(9): got %d tasks, want 0", len(out))
	}
	if w.depth() != 1 {
		t.Fatalf("depth: got %d, want 1", w.depth())
	}
}
