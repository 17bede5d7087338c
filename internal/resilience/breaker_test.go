package resilience

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/sony/gobreaker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	appErrors "ledgerchat-backend/pkg/errors"
)

func newTestBreaker(failures uint32, cooldown time.Duration) *Breaker {
	return NewBreaker(BreakerConfig{
		Name:                "test",
		ConsecutiveFailures: failures,
		Cooldown:            cooldown,
		HalfOpenMaxRequests: 1,
	}, zap.NewNop())
}

func TestBreakerOpensAfterConsecutiveFailures(t *testing.T) {
	b := newTestBreaker(3, time.Minute)
	boom := errors.New("boom")
	fail := func(ctx context.Context) error { return boom }

	for i := 0; i < 3; i++ {
		err := b.Execute(context.Background(), fail)
		assert.ErrorIs(t, err, boom)
	}
	assert.Equal(t, gobreaker.StateOpen, b.State())

	// Open circuit fails fast with the unavailable taxonomy, without
	// invoking the operation.
	called := false
	err := b.Execute(context.Background(), func(ctx context.Context) error {
		called = true
		return nil
	})
	assert.True(t, appErrors.IsUnavailable(err))
	assert.False(t, called)
}

func TestBreakerSuccessResetsFailureCount(t *testing.T) {
	b := newTestBreaker(3, time.Minute)
	boom := errors.New("boom")

	for i := 0; i < 2; i++ {
		_ = b.Execute(context.Background(), func(ctx context.Context) error { return boom })
	}
	require.NoError(t, b.Execute(context.Background(), func(ctx context.Context) error { return nil }))

	for i := 0; i < 2; i++ {
		_ = b.Execute(context.Background(), func(ctx context.Context) error { return boom })
	}
	assert.Equal(t, gobreaker.StateClosed, b.State())
}

func TestBreakerHalfOpensAfterCooldown(t *testing.T) {
	b := newTestBreaker(1, 20*time.Millisecond)

	_ = b.Execute(context.Background(), func(ctx context.Context) error { return errors.New("boom") })
	require.Equal(t, gobreaker.StateOpen, b.State())

	time.Sleep(30 * time.Millisecond)

	// A successful probe closes the circuit again.
	err := b.Execute(context.Background(), func(ctx context.Context) error { return nil })
	require.NoError(t, err)
	assert.Equal(t, gobreaker.StateClosed, b.State())
}
