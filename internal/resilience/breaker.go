package resilience

import (
	"context"
	"errors"
	"time"

	"github.com/sony/gobreaker"
	"go.uber.org/zap"

	appErrors "ledgerchat-backend/pkg/errors"
)

// BreakerConfig holds configuration for the circuit breaker.
type BreakerConfig struct {
	Name                string
	ConsecutiveFailures uint32        // Failures in a row before the circuit opens
	Cooldown            time.Duration // How long the circuit stays open
	HalfOpenMaxRequests uint32        // Probe requests allowed while half-open
}

// Breaker wraps sony/gobreaker with the application error taxonomy: an open
// circuit surfaces as an UNAVAILABLE error the handlers can map directly.
type Breaker struct {
	cb     *gobreaker.CircuitBreaker
	logger *zap.Logger
}

// NewBreaker creates a circuit breaker that opens after the configured number
// of consecutive failures, rejects immediately during the cooldown, and
// half-opens to probe afterwards.
func NewBreaker(cfg BreakerConfig, logger *zap.Logger) *Breaker {
	settings := gobreaker.Settings{
		Name:        cfg.Name,
		MaxRequests: cfg.HalfOpenMaxRequests,
		Timeout:     cfg.Cooldown,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= cfg.ConsecutiveFailures
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			logger.Warn("circuit breaker state changed",
				zap.String("breaker", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)
		},
	}
	return &Breaker{cb: gobreaker.NewCircuitBreaker(settings), logger: logger}
}

// Execute runs op through the breaker.
func (b *Breaker) Execute(ctx context.Context, op func(ctx context.Context) error) error {
	_, err := b.cb.Execute(func() (any, error) {
		return nil, op(ctx)
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return appErrors.NewUnavailable("model backend temporarily unavailable: " + err.Error())
		}
		return err
	}
	return nil
}

// State exposes the underlying breaker state for health reporting.
func (b *Breaker) State() gobreaker.State {
	return b.cb.State()
}
