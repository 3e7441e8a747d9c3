package resilience

import (
	"testing"
	"time"
)

func TestBreakerOpensOnFailureRatio(t *testing.T) {
	b := NewBreaker(4, 0.5, 50*time.Millisecond)

	b.Report(true)
	b.Report(false)
	b.Report(false)
	if !b.Allow() {
		t.Fatal("breaker should stay closed below the minimum request count")
	}
	b.Report(false)
	if b.Allow() {
		t.Fatal("breaker should open once the failure ratio is exceeded")
	}
}

func TestBreakerHalfOpenProbe(t *testing.T) {
	b := NewBreaker(1, 0.5, 10*time.Millisecond)
	b.Report(false)
	if b.Allow() {
		t.Fatal("breaker should be open immediately after tripping")
	}

	time.Sleep(15 * time.Millisecond)
	if !b.Allow() {
		t.Fatal("breaker should permit a probe after the cool-off")
	}
	b.Report(true)
	if !b.Allow() {
		t.Fatal("breaker should close after a successful probe")
	}
}

func TestBreakerReopensOnFailedProbe(t *testing.T) {
	b := NewBreaker(1, 0.5, 10*time.Millisecond)
	b.Report(false)
	time.Sleep(15 * time.Millisecond)
	if !b.Allow() {
		t.Fatal("expected probe to be permitted")
	}
	b.Report(false)
	if b.Allow() {
		t.Fatal("breaker should reopen after a failed probe")
	}
}

func TestBackoffGrowsExponentially(t *testing.T) {
	base := 100 * time.Millisecond
	if got := Backoff(base, 1, 0); got != base {
		t.Fatalf("attempt 1 = %s, want %s", got, base)
	}
	if got := Backoff(base, 3, 0); got != 4*base {
		t.Fatalf("attempt 3 = %s, want %s", got, 4*base)
	}
}
