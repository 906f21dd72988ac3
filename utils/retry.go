package utils

import (
	"context"
	"fmt"
	"time"
)

// RetryPolicy makes the retry choice explicit: MaxAttempts <= 0 retries
// without bound, otherwise the operation is attempted at most MaxAttempts
// times with exponentially growing delays capped at MaxDelay.
type RetryPolicy struct {
	MaxAttempts int
	BaseDelay   time.Duration
	MaxDelay    time.Duration
	Logger      *Logger
}

// Do executes fn under the policy. Unbounded policies only stop on success
// or context cancellation.
func (r *RetryPolicy) Do(ctx context.Context, operationName string, fn func() error) error {
	var lastErr error
	delay := r.BaseDelay

	for attempt := 1; r.MaxAttempts <= 0 || attempt <= r.MaxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		lastErr = fn()
		if lastErr == nil {
			return nil
		}

		if r.MaxAttempts > 0 && attempt == r.MaxAttempts {
			break
		}

		if r.Logger != nil {
			r.Logger.Warn("[retry] %s failed (attempt %d): %v — retrying in %v",
				operationName, attempt, lastErr, delay)
		}

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}

		delay *= 2
		if r.MaxDelay > 0 && delay > r.MaxDelay {
			delay = r.MaxDelay
		}
	}

	return fmt.Errorf("%s failed after %d attempts: %w", operationName, r.MaxAttempts, lastErr)
}
