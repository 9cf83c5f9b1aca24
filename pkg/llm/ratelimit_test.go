package llm

import (
	"context"
	"testing"
	"time"
)

// fakeClock drives the limiter deterministically: each wait() observes the
// current fake time, and sleeps advance it instead of blocking.
type fakeClock struct {
	now   time.Time
	slept []time.Duration
}

func (f *fakeClock) Now() time.Time { return f.now }

func (f *fakeClock) Sleep(_ context.Context, d time.Duration) {
	f.slept = append(f.slept, d)
	f.now = f.now.Add(d)
}

func newTestLimiter(clock *fakeClock) *windowLimiter {
	l := newWindowLimiter(5, time.Second)
	l.now = clock.Now
	l.sleep = clock.Sleep
	return l
}

func TestWindowLimiter_UnderLimitNoSleep(t *testing.T) {
	clock := &fakeClock{now: time.Unix(1000, 0)}
	l := newTestLimiter(clock)

	for i := 0; i < 5; i++ {
		l.wait(context.Background())
		clock.now = clock.now.Add(10 * time.Millisecond)
	}

	if len(clock.slept) != 0 {
		t.Fatalf("expected no sleeps under the limit, got %v", clock.slept)
	}
}

func TestWindowLimiter_SixthCallWaitsForWindow(t *testing.T) {
	clock := &fakeClock{now: time.Unix(1000, 0)}
	l := newTestLimiter(clock)

	start := clock.now
	for i := 0; i < 6; i++ {
		l.wait(context.Background())
	}

	if len(clock.slept) == 0 {
		t.Fatal("expected the sixth back-to-back call to sleep")
	}
	elapsed := clock.now.Sub(start)
	if elapsed < time.Second {
		t.Errorf("expected at least 1s between 1st and 6th call, got %v", elapsed)
	}
}

func TestWindowLimiter_SlowCallersNeverSleep(t *testing.T) {
	clock := &fakeClock{now: time.Unix(1000, 0)}
	l := newTestLimiter(clock)

	for i := 0; i < 20; i++ {
		l.wait(context.Background())
		clock.now = clock.now.Add(300 * time.Millisecond)
	}

	if len(clock.slept) != 0 {
		t.Fatalf("expected no sleeps at 300ms spacing, got %d", len(clock.slept))
	}
}
