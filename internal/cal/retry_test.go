package cal

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWithRetrySucceedsAfterTransientFailures(t *testing.T) {
	cfg := RetryConfig{MaxRetries: 3, BaseDelay: 0, Factor: 2, Jitter: 0}

	attempts := 0
	fn := func(ctx context.Context) (string, error) {
		attempts++
		if attempts < 3 {
			return "", NewTransient("vm-sku", "cause", errors.New("boom"))
		}
		return "ok", nil
	}

	result, err := withRetry(context.Background(), nil, cfg, fn)
	require.NoError(t, err)
	assert.Equal(t, "ok", result)
	assert.Equal(t, 3, attempts)
}

func TestWithRetryGivesUpAfterMaxRetries(t *testing.T) {
	cfg := RetryConfig{MaxRetries: 3, BaseDelay: 0, Factor: 2, Jitter: 0}

	attempts := 0
	fn := func(ctx context.Context) (string, error) {
		attempts++
		return "", NewTransient("vm-sku", "cause", errors.New("boom"))
	}

	_, err := withRetry(context.Background(), nil, cfg, fn)
	require.Error(t, err)
	assert.Equal(t, 4, attempts) // initial attempt + 3 retries
}

func TestWithRetryDoesNotRetryNonRetryableFailure(t *testing.T) {
	cfg := RetryConfig{MaxRetries: 3, BaseDelay: 0, Factor: 2, Jitter: 0}

	attempts := 0
	fn := func(ctx context.Context) (string, error) {
		attempts++
		return "", NewForbidden("rg", "cause")
	}

	_, err := withRetry(context.Background(), nil, cfg, fn)
	require.Error(t, err)
	assert.Equal(t, 1, attempts)
}

func TestWithRetryHonorsCancellation(t *testing.T) {
	cfg := RetryConfig{MaxRetries: 3, BaseDelay: 0, Factor: 2, Jitter: 0}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	fn := func(ctx context.Context) (string, error) {
		return "", NewTransient("vm-sku", "cause", errors.New("boom"))
	}

	_, err := withRetry(ctx, nil, cfg, fn)
	require.Error(t, err)
}

func TestBackoffGrowsExponentially(t *testing.T) {
	cfg := RetryConfig{BaseDelay: 0, Factor: 2, Jitter: 0}
	cfg.BaseDelay = 1_000_000_000 // 1s in nanoseconds, expressed as time.Duration below
	d1 := cfg.backoff(1)
	d2 := cfg.backoff(2)
	d3 := cfg.backoff(3)
	assert.Less(t, d1, d2)
	assert.Less(t, d2, d3)
}
