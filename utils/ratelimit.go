package utils

import (
	"context"
	"sync"
	"time"
)

// QuotaLimiter enforces a rolling-window call quota: at most `limit` calls in
// any window of `window` duration. Callers over budget are blocked, never
// rejected. Safe for concurrent use.
type QuotaLimiter struct {
	mu     sync.Mutex
	limit  int
	window time.Duration
	calls  []time.Time
}

// NewQuotaLimiter creates a limiter allowing `limit` calls per rolling
// `window`.
func NewQuotaLimiter(limit int, window time.Duration) *QuotaLimiter {
	return &QuotaLimiter{
		limit:  limit,
		window: window,
		calls:  make([]time.Time, 0, limit),
	}
}

// Wait blocks until a call slot is available inside the rolling window, then
// consumes it. It returns early only if the context is cancelled.
func (q *QuotaLimiter) Wait(ctx context.Context) error {
	for {
		q.mu.Lock()
		now := time.Now()
		q.prune(now)

		if len(q.calls) < q.limit {
			q.calls = append(q.calls, now)
			q.mu.Unlock()
			return nil
		}

		// Oldest call leaving the window frees the next slot.
		wait := q.calls[0].Add(q.window).Sub(now)
		q.mu.Unlock()

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
}

// Remaining returns how many calls are still available in the current window.
func (q *QuotaLimiter) Remaining() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.prune(time.Now())
	return q.limit - len(q.calls)
}

func (q *QuotaLimiter) prune(now time.Time) {
	cutoff := now.Add(-q.window)
	i := 0
	for i < len(q.calls) && !q.calls[i].After(cutoff) {
		i++
	}
	if i > 0 {
		q.calls = append(q.calls[:0], q.calls[i:]...)
	}
}
