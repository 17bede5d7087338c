package llm

import (
	"context"
	"time"

	"go.uber.org/zap"

	"ledgerchat-backend/internal/resilience"
	appErrors "ledgerchat-backend/pkg/errors"
)

// ResilientProvider decorates a Provider with the full resilience chain:
// circuit breaker outermost, then retry, then a per-attempt timeout. The
// breaker counts a whole call (including its retries) as one failure, so a
// flapping backend does not trip it on the first transient error.
type ResilientProvider struct {
	inner       Provider
	retryCfg    resilience.RetryConfig
	callTimeout time.Duration
	breaker     *resilience.Breaker
	logger      *zap.Logger
}

// NewResilientProvider wraps inner with retry, timeout, and circuit breaking.
func NewResilientProvider(
	inner Provider,
	retryCfg resilience.RetryConfig,
	callTimeout time.Duration,
	breaker *resilience.Breaker,
	logger *zap.Logger,
) *ResilientProvider {
	return &ResilientProvider{
		inner:       inner,
		retryCfg:    retryCfg,
		callTimeout: callTimeout,
		breaker:     breaker,
		logger:      logger,
	}
}

var _ Provider = (*ResilientProvider)(nil)

// Complete implements Provider.
func (p *ResilientProvider) Complete(ctx context.Context, req CompletionRequest) (string, error) {
	var result string

	err := p.breaker.Execute(ctx, func(ctx context.Context) error {
		attempt := 0
		return resilience.Retry(ctx, p.retryCfg, IsRetryable, func(ctx context.Context) error {
			attempt++
			if attempt > 1 {
				p.logger.Debug("retrying model call", zap.Int("attempt", attempt))
			}
			return resilience.WithTimeout(ctx, p.callTimeout, func(ctx context.Context) error {
				text, err := p.inner.Complete(ctx, req)
				if err != nil {
					return err
				}
				result = text
				return nil
			})
		})
	})
	if err != nil {
		if appErrors.IsUnavailable(err) || appErrors.IsTimeout(err) {
			return "", err
		}
		return "", appErrors.NewProvider("model call failed", err)
	}
	return result, nil
}
