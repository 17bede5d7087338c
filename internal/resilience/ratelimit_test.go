package resilience

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appErrors "ledgerchat-backend/pkg/errors"
)

func newTestLimiter(maxRequests int) (*RateLimiter, *time.Time) {
	rl := NewRateLimiter(RateLimiterConfig{
		Window:      time.Minute,
		MaxRequests: maxRequests,
	})
	now := time.Date(2026, 8, 27, 12, 0, 0, 0, time.UTC)
	rl.now = func() time.Time { return now }
	return rl, &now
}

func TestRateLimiterAllowsUpToCap(t *testing.T) {
	rl, _ := newTestLimiter(3)
	defer rl.Stop()

	for i := 0; i < 3; i++ {
		_, err := rl.Allow("u1:/api/chat")
		require.NoError(t, err)
	}

	retryAfter, err := rl.Allow("u1:/api/chat")
	assert.True(t, appErrors.IsRateLimited(err))
	assert.Equal(t, time.Minute, retryAfter)
}

func TestRateLimiterKeysAreIndependent(t *testing.T) {
	rl, _ := newTestLimiter(1)
	defer rl.Stop()

	_, err := rl.Allow("u1:/api/chat")
	require.NoError(t, err)
	_, err = rl.Allow("u1:/api/chat")
	require.Error(t, err)

	// Same user, different endpoint; different user, same endpoint.
	_, err = rl.Allow("u1:/api/jobs")
	assert.NoError(t, err)
	_, err = rl.Allow("u2:/api/chat")
	assert.NoError(t, err)
}

func TestRateLimiterWindowResets(t *testing.T) {
	rl, now := newTestLimiter(1)
	defer rl.Stop()

	_, err := rl.Allow("u1:/api/chat")
	require.NoError(t, err)
	_, err = rl.Allow("u1:/api/chat")
	require.Error(t, err)

	*now = now.Add(time.Minute)
	_, err = rl.Allow("u1:/api/chat")
	assert.NoError(t, err)
}

func TestRateLimiterRetryAfterShrinksWithinWindow(t *testing.T) {
	rl, now := newTestLimiter(1)
	defer rl.Stop()

	_, err := rl.Allow("u1:/api/chat")
	require.NoError(t, err)

	*now = now.Add(40 * time.Second)
	retryAfter, err := rl.Allow("u1:/api/chat")
	require.Error(t, err)
	assert.Equal(t, 20*time.Second, retryAfter)
}

func TestRateLimiterSweepDropsExpiredWindows(t *testing.T) {
	rl, now := newTestLimiter(5)
	defer rl.Stop()

	_, err := rl.Allow("u1:/api/chat")
	require.NoError(t, err)
	require.Len(t, rl.windows, 1)

	*now = now.Add(2 * time.Minute)
	rl.sweep()
	assert.Empty(t, rl.windows)
}
