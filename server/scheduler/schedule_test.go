package scheduler

import "testing"

func TestTickRejectsNonPositive(t *testing.T) {
	for _, n := range []int64{0, -1, -100} {
		if _, err := Tick(n); err != ErrInvalidSchedule {
			t.Fatalf("Tick(%d): expected ErrInvalidSchedule, got %v", n, err)
		}
	}
}

func TestTickAccepted(t *testing.T) {
	sched, err := Tick(3)
	if err != nil {
		t.Fatalf("Tick(3): unexpected error %v", err)
	}
	if sched.kind != kindTick || sched.ticks != 3 {
		t.Fatalf("Tick(3): got kind=%v ticks=%d", sched.kind, sched.ticks)
	}
}

func TestDurationClampsNegative(t *testing.T) {
	if d := Duration(-5); d.duration != 0 {
		t.Fatalf("Duration(-5): expected clamped to 0, got %v", d.duration)
	}
}
