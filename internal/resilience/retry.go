// Package resilience provides the primitives every outbound call depends on:
// bounded retry with backoff and jitter, a timeout wrapper, a fixed-window
// rate limiter, and a circuit breaker.
package resilience

import (
	"context"
	"math"
	"math/rand"
	"time"

	appErrors "ledgerchat-backend/pkg/errors"
)

// RetryConfig defines retry behavior configuration
type RetryConfig struct {
	MaxAttempts   int           // Maximum number of attempts including the first
	BaseDelay     time.Duration // Base delay between retries
	MaxDelay      time.Duration // Maximum delay between retries
	BackoffFactor float64       // Exponential backoff multiplier
	JitterFactor  float64       // Jitter factor to prevent thundering herd
}

// DefaultRetryConfig returns default retry configuration
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxAttempts:   3,
		BaseDelay:     200 * time.Millisecond,
		MaxDelay:      5 * time.Second,
		BackoffFactor: 2.0,
		JitterFactor:  0.25,
	}
}

// Retryable is the caller-supplied predicate selecting which error classes
// are worth another attempt (network, timeout, transient unavailability).
type Retryable func(error) bool

// Retry runs op up to cfg.MaxAttempts times. Between attempts it sleeps for
// an exponentially growing delay with +-JitterFactor jitter, honoring context
// cancellation. Non-retryable errors abort immediately.
func Retry(ctx context.Context, cfg RetryConfig, retryable Retryable, op func(ctx context.Context) error) error {
	if cfg.MaxAttempts < 1 {
		cfg.MaxAttempts = 1
	}

	var lastErr error
	for attempt := 1; attempt <= cfg.MaxAttempts; attempt++ {
		lastErr = op(ctx)
		if lastErr == nil {
			return nil
		}
		if retryable != nil && !retryable(lastErr) {
			return lastErr
		}
		if attempt == cfg.MaxAttempts {
			break
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(backoffDelay(cfg, attempt)):
		}
	}
	return lastErr
}

// backoffDelay computes the sleep before the given (1-based) attempt's retry.
func backoffDelay(cfg RetryConfig, attempt int) time.Duration {
	delay := float64(cfg.BaseDelay) * math.Pow(cfg.BackoffFactor, float64(attempt-1))
	if maxDelay := float64(cfg.MaxDelay); cfg.MaxDelay > 0 && delay > maxDelay {
		delay = maxDelay
	}
	if cfg.JitterFactor > 0 {
		// Spread the delay over [1-jitter, 1+jitter].
		jitter := (rand.Float64()*2 - 1) * cfg.JitterFactor
		delay *= 1 + jitter
	}
	if delay < 0 {
		delay = 0
	}
	return time.Duration(delay)
}

// WithTimeout races op against the delay, returning a timeout error if the
// delay elapses first. The operation receives a context that is canceled on
// timeout, but a misbehaving op may keep running; its eventual result is
// discarded.
func WithTimeout(ctx context.Context, timeout time.Duration, op func(ctx context.Context) error) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	done := make(chan error, 1)
	go func() {
		done <- op(ctx)
	}()

	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		if ctx.Err() == context.DeadlineExceeded {
			return appErrors.NewTimeout("operation timed out after " + timeout.String())
		}
		return ctx.Err()
	}
}
