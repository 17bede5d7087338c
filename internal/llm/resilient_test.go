package llm

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"ledgerchat-backend/internal/resilience"
	appErrors "ledgerchat-backend/pkg/errors"
)

// flakyProvider fails a fixed number of times before succeeding.
type flakyProvider struct {
	failures int
	err      error
	calls    int
}

func (f *flakyProvider) Complete(ctx context.Context, req CompletionRequest) (string, error) {
	f.calls++
	if f.calls <= f.failures {
		return "", f.err
	}
	return "hola", nil
}

func newResilient(inner Provider, failures uint32) *ResilientProvider {
	breaker := resilience.NewBreaker(resilience.BreakerConfig{
		Name:                "test",
		ConsecutiveFailures: failures,
		Cooldown:            time.Minute,
		HalfOpenMaxRequests: 1,
	}, zap.NewNop())
	retryCfg := resilience.RetryConfig{
		MaxAttempts:   3,
		BaseDelay:     time.Millisecond,
		MaxDelay:      5 * time.Millisecond,
		BackoffFactor: 2.0,
	}
	return NewResilientProvider(inner, retryCfg, time.Second, breaker, zap.NewNop())
}

func TestResilientProviderRetriesTransientErrors(t *testing.T) {
	inner := &flakyProvider{failures: 2, err: appErrors.NewTimeout("slow backend")}
	p := newResilient(inner, 5)

	text, err := p.Complete(context.Background(), CompletionRequest{})
	require.NoError(t, err)
	assert.Equal(t, "hola", text)
	assert.Equal(t, 3, inner.calls)
}

func TestResilientProviderDoesNotRetryPermanentErrors(t *testing.T) {
	inner := &flakyProvider{failures: 10, err: assert.AnError}
	p := newResilient(inner, 5)

	_, err := p.Complete(context.Background(), CompletionRequest{})
	require.Error(t, err)
	assert.True(t, appErrors.IsProvider(err))
	assert.Equal(t, 1, inner.calls)
}

func TestResilientProviderTimesOutSlowCalls(t *testing.T) {
	slow := &MockProvider{Responses: []string{"tarde"}}
	breaker := resilience.NewBreaker(resilience.BreakerConfig{
		Name:                "test",
		ConsecutiveFailures: 5,
		Cooldown:            time.Minute,
		HalfOpenMaxRequests: 1,
	}, zap.NewNop())
	p := NewResilientProvider(slowProvider{inner: slow, delay: 100 * time.Millisecond},
		resilience.RetryConfig{MaxAttempts: 1}, 10*time.Millisecond, breaker, zap.NewNop())

	_, err := p.Complete(context.Background(), CompletionRequest{})
	assert.True(t, appErrors.IsTimeout(err))
}

type slowProvider struct {
	inner Provider
	delay time.Duration
}

func (s slowProvider) Complete(ctx context.Context, req CompletionRequest) (string, error) {
	select {
	case <-time.After(s.delay):
	case <-ctx.Done():
		return "", ctx.Err()
	}
	return s.inner.Complete(ctx, req)
}

func TestResilientProviderFailsFastWhenCircuitOpen(t *testing.T) {
	inner := &flakyProvider{failures: 100, err: assert.AnError}
	p := newResilient(inner, 1)

	_, err := p.Complete(context.Background(), CompletionRequest{})
	require.Error(t, err)

	callsBefore := inner.calls
	_, err = p.Complete(context.Background(), CompletionRequest{})
	assert.True(t, appErrors.IsUnavailable(err))
	assert.Equal(t, callsBefore, inner.calls)
}
