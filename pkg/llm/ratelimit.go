package llm

import (
	"context"
	"time"
)

// windowLimiter throttles calls to at most `limit` per rolling `window`.
// It keeps the timestamps of the last `limit` calls; when the window is full,
// the caller sleeps for the remainder of the window before proceeding.
// One limiter per client instance, not shared globally.
type windowLimiter struct {
	limit  int
	window time.Duration
	stamps []time.Time
	now    func() time.Time
	sleep  func(context.Context, time.Duration)
}

func newWindowLimiter(limit int, window time.Duration) *windowLimiter {
	return &windowLimiter{
		limit:  limit,
		window: window,
		now:    time.Now,
		sleep:  sleepCtx,
	}
}

// wait blocks until a new call is allowed, then records it.
func (l *windowLimiter) wait(ctx context.Context) {
	now := l.now()
	if len(l.stamps) == l.limit {
		elapsed := now.Sub(l.stamps[0])
		if elapsed < l.window {
			l.sleep(ctx, l.window-elapsed)
		}
		l.stamps = l.stamps[1:]
	}
	l.stamps = append(l.stamps, l.now())
}

func sleepCtx(ctx context.Context, d time.Duration) {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}
