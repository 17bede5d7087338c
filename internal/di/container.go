// Package di assembles the application object graph. Wiring is explicit:
// every dependency is constructed here, in order, from configuration.
package di

import (
	"context"
	"fmt"
	"net/http"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/eventbridge"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"ledgerchat-backend/internal/chat"
	"ledgerchat-backend/internal/config"
	"ledgerchat-backend/internal/handlers"
	"ledgerchat-backend/internal/llm"
	"ledgerchat-backend/internal/messaging"
	ebpublisher "ledgerchat-backend/internal/messaging/eventbridge"
	"ledgerchat-backend/internal/observability"
	"ledgerchat-backend/internal/repository"
	"ledgerchat-backend/internal/repository/ddb"
	"ledgerchat-backend/internal/repository/memory"
	"ledgerchat-backend/internal/resilience"
	"ledgerchat-backend/internal/service/ledger"
)

// Container holds the fully wired application.
type Container struct {
	Config       *config.Config
	Logger       *zap.Logger
	Store        repository.Store
	Ledger       *ledger.Service
	Provider     llm.Provider
	Orchestrator *chat.Orchestrator
	Metrics      *observability.Metrics
	RateLimiter  *resilience.RateLimiter
	Router       http.Handler
}

// New builds the container from configuration.
func New(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*Container, error) {
	store, err := newStore(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}

	publisher, err := newPublisher(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}

	ledgerSvc := ledger.NewService(store, publisher, logger.Named("ledger"))

	provider, err := newProvider(cfg, logger)
	if err != nil {
		return nil, err
	}

	metrics := observability.New(prometheus.DefaultRegisterer)
	orchestrator := chat.NewOrchestrator(ledgerSvc, provider, cfg.Model, metrics, logger.Named("chat"))

	limiter := resilience.NewRateLimiter(resilience.RateLimiterConfig{
		Window:        cfg.Resilience.RateLimit.Window,
		MaxRequests:   cfg.Resilience.RateLimit.MaxRequests,
		SweepInterval: cfg.Resilience.RateLimit.SweepInterval,
	})

	handler := handlers.New(ledgerSvc, orchestrator, logger.Named("http"))
	router := handlers.NewRouter(handler, limiter, metrics, logger.Named("http"))

	return &Container{
		Config:       cfg,
		Logger:       logger,
		Store:        store,
		Ledger:       ledgerSvc,
		Provider:     provider,
		Orchestrator: orchestrator,
		Metrics:      metrics,
		RateLimiter:  limiter,
		Router:       router,
	}, nil
}

// Shutdown releases background resources.
func (c *Container) Shutdown() {
	c.RateLimiter.Stop()
}

func newStore(ctx context.Context, cfg *config.Config, logger *zap.Logger) (repository.Store, error) {
	switch cfg.Store.Driver {
	case "memory":
		logger.Info("using in-memory store")
		return memory.NewStore(), nil
	case "dynamodb":
		client, err := ddb.NewClient(ctx, cfg.Store)
		if err != nil {
			return nil, fmt.Errorf("failed to create dynamodb client: %w", err)
		}
		logger.Info("using dynamodb store", zap.String("table", cfg.Store.TableName))
		return ddb.NewStore(client, cfg.Store.TableName, logger.Named("ddb")), nil
	}
	return nil, fmt.Errorf("unknown store driver: %q", cfg.Store.Driver)
}

func newPublisher(ctx context.Context, cfg *config.Config, logger *zap.Logger) (messaging.Publisher, error) {
	if !cfg.Events.Enabled {
		return messaging.NoopPublisher{}, nil
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.Store.Region))
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config for eventbridge: %w", err)
	}
	client := eventbridge.NewFromConfig(awsCfg)
	logger.Info("event publishing enabled", zap.String("bus", cfg.Events.EventBusName))
	return ebpublisher.NewPublisher(client, cfg.Events.EventBusName, cfg.Events.Source, logger.Named("events")), nil
}

func newProvider(cfg *config.Config, logger *zap.Logger) (llm.Provider, error) {
	var inner llm.Provider
	switch cfg.Model.Provider {
	case "mock":
		logger.Warn("using mock model provider")
		inner = &llm.MockProvider{Responses: []string{mockReply}}
	case "openai":
		p, err := llm.NewOpenAIProvider(cfg.Model, logger.Named("openai"))
		if err != nil {
			return nil, err
		}
		inner = p
	default:
		return nil, fmt.Errorf("unknown model provider: %q", cfg.Model.Provider)
	}

	breaker := resilience.NewBreaker(resilience.BreakerConfig{
		Name:                "model-backend",
		ConsecutiveFailures: cfg.Resilience.Breaker.ConsecutiveFailures,
		Cooldown:            cfg.Resilience.Breaker.Cooldown,
		HalfOpenMaxRequests: cfg.Resilience.Breaker.HalfOpenMaxRequests,
	}, logger.Named("breaker"))

	retryCfg := resilience.RetryConfig{
		MaxAttempts:   cfg.Resilience.Retry.MaxAttempts,
		BaseDelay:     cfg.Resilience.Retry.BaseDelay,
		MaxDelay:      cfg.Resilience.Retry.MaxDelay,
		BackoffFactor: cfg.Resilience.Retry.BackoffFactor,
		JitterFactor:  cfg.Resilience.Retry.JitterFactor,
	}

	return llm.NewResilientProvider(inner, retryCfg, cfg.Model.CallTimeout, breaker, logger.Named("model")), nil
}

const mockReply = `{"text": "Hola, soy tu asistente de prueba. ¿En qué te ayudo?", "actions": [{"action": "query", "data": {}}]}`
