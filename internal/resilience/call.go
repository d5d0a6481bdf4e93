package resilience

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// Policy bounds a single external call
type Policy struct {
	Timeout time.Duration // Per-attempt deadline
	Retries int           // Extra attempts after the first; at most one is ever made
	Backoff time.Duration // Pause before the retry

	// ShouldRetry overrides IsTransient when set
	ShouldRetry func(err error) bool
}

// DefaultPolicy allows one retry after a short pause
func DefaultPolicy(timeout time.Duration) Policy {
	return Policy{
		Timeout: timeout,
		Retries: 1,
		Backoff: 500 * time.Millisecond,
	}
}

// sleepFunc is replaced in tests
var sleepFunc = func(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// Call runs fn under p. Each attempt gets its own deadline; a transient
// failure is retried once. A final failure is tagged KindDependencyUnavailable
// unless fn already tagged it.
func Call[T any](ctx context.Context, p Policy, op string, fn func(ctx context.Context) (T, error)) (T, error) {
	shouldRetry := p.ShouldRetry
	if shouldRetry == nil {
		shouldRetry = IsTransient
	}
	attempts := 1
	if p.Retries > 0 {
		attempts = 2
	}

	var zero T
	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		val, err := runAttempt(ctx, p.Timeout, fn)
		if err == nil {
			return val, nil
		}
		lastErr = err

		if ctx.Err() != nil || !shouldRetry(err) || attempt == attempts {
			break
		}

		zap.L().Warn("retrying external call",
			zap.String("operation", op),
			zap.Int("attempt", attempt),
			zap.Error(err),
		)
		if err := sleepFunc(ctx, p.Backoff); err != nil {
			break
		}
	}

	if KindOf(lastErr) != KindUnknown {
		return zero, lastErr
	}
	return zero, Wrap(KindDependencyUnavailable, op, lastErr)
}

func runAttempt[T any](ctx context.Context, timeout time.Duration, fn func(ctx context.Context) (T, error)) (T, error) {
	if timeout <= 0 {
		return fn(ctx)
	}
	attemptCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	return fn(attemptCtx)
}
