package resilience

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appErrors "ledgerchat-backend/pkg/errors"
)

var errTransient = errors.New("transient")

func fastRetryConfig(attempts int) RetryConfig {
	return RetryConfig{
		MaxAttempts:   attempts,
		BaseDelay:     time.Millisecond,
		MaxDelay:      5 * time.Millisecond,
		BackoffFactor: 2.0,
	}
}

func TestRetrySucceedsAfterTransientFailures(t *testing.T) {
	calls := 0
	err := Retry(context.Background(), fastRetryConfig(3), func(error) bool { return true },
		func(ctx context.Context) error {
			calls++
			if calls < 3 {
				return errTransient
			}
			return nil
		})

	require.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestRetryExhaustsAttempts(t *testing.T) {
	calls := 0
	err := Retry(context.Background(), fastRetryConfig(3), func(error) bool { return true },
		func(ctx context.Context) error {
			calls++
			return errTransient
		})

	assert.ErrorIs(t, err, errTransient)
	assert.Equal(t, 3, calls)
}

func TestRetryStopsOnPermanentError(t *testing.T) {
	permanent := errors.New("permanent")
	calls := 0
	err := Retry(context.Background(), fastRetryConfig(5),
		func(err error) bool { return !errors.Is(err, permanent) },
		func(ctx context.Context) error {
			calls++
			return permanent
		})

	assert.ErrorIs(t, err, permanent)
	assert.Equal(t, 1, calls)
}

func TestRetryHonorsContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cfg := RetryConfig{MaxAttempts: 10, BaseDelay: time.Hour, BackoffFactor: 1}

	calls := 0
	err := Retry(ctx, cfg, func(error) bool { return true },
		func(ctx context.Context) error {
			calls++
			cancel()
			return errTransient
		})

	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, calls)
}

func TestBackoffDelayGrowsAndCaps(t *testing.T) {
	cfg := RetryConfig{
		BaseDelay:     100 * time.Millisecond,
		MaxDelay:      time.Second,
		BackoffFactor: 2.0,
	}

	assert.Equal(t, 100*time.Millisecond, backoffDelay(cfg, 1))
	assert.Equal(t, 200*time.Millisecond, backoffDelay(cfg, 2))
	assert.Equal(t, 400*time.Millisecond, backoffDelay(cfg, 3))
	// Attempt 6 would be 3.2s; capped.
	assert.Equal(t, time.Second, backoffDelay(cfg, 6))
}

func TestBackoffDelayJitterStaysInBounds(t *testing.T) {
	cfg := RetryConfig{
		BaseDelay:     100 * time.Millisecond,
		MaxDelay:      time.Second,
		BackoffFactor: 2.0,
		JitterFactor:  0.25,
	}

	for i := 0; i < 100; i++ {
		d := backoffDelay(cfg, 2)
		assert.GreaterOrEqual(t, d, 150*time.Millisecond)
		assert.LessOrEqual(t, d, 250*time.Millisecond)
	}
}

func TestWithTimeoutReturnsResultBeforeDeadline(t *testing.T) {
	err := WithTimeout(context.Background(), time.Second, func(ctx context.Context) error {
		return nil
	})
	assert.NoError(t, err)
}

func TestWithTimeoutExpires(t *testing.T) {
	err := WithTimeout(context.Background(), 10*time.Millisecond, func(ctx context.Context) error {
		select {
		case <-time.After(time.Second):
			return nil
		case <-ctx.Done():
			return ctx.Err()
		}
	})

	assert.True(t, appErrors.IsTimeout(err))
}

func TestWithTimeoutPropagatesOperationError(t *testing.T) {
	err := WithTimeout(context.Background(), time.Second, func(ctx context.Context) error {
		return errTransient
	})
	assert.ErrorIs(t, err, errTransient)
}
