package stepper

import (
	"sync/atomic"
	"testing"
	"time"
)

func newCounting() (*Repeater, *atomic.Int32) {
	var count atomic.Int32
	r := NewRepeater(func() { count.Add(1) })
	r.Delay = 40 * time.Millisecond
	r.Interval = 10 * time.Millisecond
	return r, &count
}

func TestPressFiresImmediately(t *testing.T) {
	r, count := newCounting()
	defer r.Stop()

	r.Press()
	if got := count.Load(); got != 1 {
		t.Fatalf("steps = %d, want 1 immediately after press", got)
	}
	if r.State() != StateArmed {
		t.Fatalf("state = %s, want armed", r.State())
	}
}

func TestQuickTapStepsExactlyOnce(t *testing.T) {
	r, count := newCounting()

	r.Press()
	r.Release()
	time.Sleep(100 * time.Millisecond)
	if got := count.Load(); got != 1 {
		t.Fatalf("steps = %d, want exactly 1 for a quick tap", got)
	}
	if r.State() != StateIdle {
		t.Fatalf("state = %s, want idle", r.State())
	}
}

func TestHoldRepeats(t *testing.T) {
	r, count := newCounting()
	defer r.Stop()

	r.Press()
	time.Sleep(120 * time.Millisecond)
	if r.State() != StateRepeating {
		t.Fatalf("state = %s, want repeating while held", r.State())
	}
	if got := count.Load(); got < 3 {
		t.Fatalf("steps = %d, want at least 3 after holding past the delay", got)
	}

	r.Release()
	settled := count.Load()
	time.Sleep(60 * time.Millisecond)
	if got := count.Load(); got != settled {
		t.Fatalf("steps advanced from %d to %d after release", settled, got)
	}
}

func TestPressWhileHeldIgnored(t *testing.T) {
	r, count := newCounting()
	defer r.Stop()

	r.Press()
	r.Press()
	if got := count.Load(); got != 1 {
		t.Fatalf("steps = %d, want 1 (second press while held is ignored)", got)
	}
}

func TestReleaseIsIdempotentAndReusable(t *testing.T) {
	r, count := newCounting()

	r.Release()
	r.Press()
	r.Release()
	r.Release()

	r.Press()
	if got := count.Load(); got != 2 {
		t.Fatalf("steps = %d, want 2 after two presses", got)
	}
	r.Stop()
	if r.State() != StateIdle {
		t.Fatalf("state = %s, want idle after stop", r.State())
	}
}
