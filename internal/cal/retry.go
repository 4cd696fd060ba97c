package cal

import (
	"context"
	"math/rand"
	"time"

	"golang.org/x/time/rate"
)

// RetryConfig mirrors spec §4.1's retry policy: up to three retries after
// the initial attempt, base delay one second, exponential factor two, jitter twenty percent either way.
type RetryConfig struct {
	MaxRetries int
	BaseDelay  time.Duration
	Factor     float64
	Jitter     float64
}

// DefaultRetryConfig returns the policy spec §4.1 specifies.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxRetries: 3,
		BaseDelay:  1 * time.Second,
		Factor:     2,
		Jitter:     0.2,
	}
}

// backoff computes the delay before the given retry attempt (1-indexed),
// with jitter applied symmetrically around the exponential base.
func (c RetryConfig) backoff(attempt int) time.Duration {
	delay := float64(c.BaseDelay)
	for i := 1; i < attempt; i++ {
		delay *= c.Factor
	}
	if c.Jitter > 0 {
		spread := delay * c.Jitter
		delay += (rand.Float64()*2 - 1) * spread
	}
	if delay < 0 {
		delay = 0
	}
	return time.Duration(delay)
}

// withRetry runs fn, retrying per RetryConfig only when the returned error
// is a *Failure classified as retryable. The retry budget is per-call, not
// per-run, so one flaky operation cannot starve the rest of the run.
func withRetry[T any](ctx context.Context, limiter *rate.Limiter, cfg RetryConfig, fn func(ctx context.Context) (T, error)) (T, error) {
	var zero T
	var lastErr error

	for attempt := 1; attempt <= cfg.MaxRetries+1; attempt++ {
		if limiter != nil {
			if err := limiter.Wait(ctx); err != nil {
				return zero, err
			}
		}

		result, err := fn(ctx)
		if err == nil {
			return result, nil
		}
		lastErr = err

		failure, ok := err.(*Failure)
		if !ok || !failure.Retryable() || attempt > cfg.MaxRetries {
			return zero, err
		}

		select {
		case <-ctx.Done():
			return zero, ctx.Err()
		case <-time.After(cfg.backoff(attempt)):
		}
	}

	return zero, lastErr
}
