package resilience

import (
	"fmt"
	"sync"
	"time"

	appErrors "ledgerchat-backend/pkg/errors"
)

// RateLimiterConfig defines the fixed-window limiter behavior.
type RateLimiterConfig struct {
	Window        time.Duration // Window size
	MaxRequests   int           // Request cap per key per window
	SweepInterval time.Duration // How often stale windows are removed
}

// DefaultRateLimiterConfig returns default limiter configuration.
func DefaultRateLimiterConfig() RateLimiterConfig {
	return RateLimiterConfig{
		Window:        time.Minute,
		MaxRequests:   30,
		SweepInterval: 5 * time.Minute,
	}
}

type window struct {
	start time.Time
	count int
}

// RateLimiter is a fixed-window, in-process rate limiter keyed by an opaque
// string (typically "userID:endpoint"). State is process-local; a
// multi-instance deployment needs an externally shared store instead.
type RateLimiter struct {
	mu       sync.Mutex
	cfg      RateLimiterConfig
	windows  map[string]*window
	now      func() time.Time
	stopCh   chan struct{}
	stopOnce sync.Once
}

// NewRateLimiter creates a limiter and starts its background sweep.
func NewRateLimiter(cfg RateLimiterConfig) *RateLimiter {
	if cfg.Window <= 0 {
		cfg.Window = time.Minute
	}
	if cfg.MaxRequests <= 0 {
		cfg.MaxRequests = 1
	}
	rl := &RateLimiter{
		cfg:     cfg,
		windows: make(map[string]*window),
		now:     time.Now,
		stopCh:  make(chan struct{}),
	}
	if cfg.SweepInterval > 0 {
		go rl.sweepLoop()
	}
	return rl
}

// Allow records one request for key. It returns a rate-limited error with a
// computed retry-after when the window cap is exceeded.
func (rl *RateLimiter) Allow(key string) (time.Duration, error) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	w, ok := rl.windows[key]
	if !ok || now.Sub(w.start) >= rl.cfg.Window {
		rl.windows[key] = &window{start: now, count: 1}
		return 0, nil
	}

	if w.count >= rl.cfg.MaxRequests {
		retryAfter := rl.cfg.Window - now.Sub(w.start)
		return retryAfter, appErrors.NewRateLimited(
			fmt.Sprintf("rate limit exceeded, retry after %s", retryAfter.Round(time.Second)))
	}

	w.count++
	return 0, nil
}

// Stop terminates the background sweep.
func (rl *RateLimiter) Stop() {
	rl.stopOnce.Do(func() { close(rl.stopCh) })
}

func (rl *RateLimiter) sweepLoop() {
	ticker := time.NewTicker(rl.cfg.SweepInterval)
	defer ticker.Stop()
	for {
		select {
		case <-rl.stopCh:
			return
		case <-ticker.C:
			rl.sweep()
		}
	}
}

// sweep drops windows whose period has fully elapsed.
func (rl *RateLimiter) sweep() {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	now := rl.now()
	for key, w := range rl.windows {
		if now.Sub(w.start) >= rl.cfg.Window {
			delete(rl.windows, key)
		}
	}
}
