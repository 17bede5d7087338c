// Command server runs the ledgerchat backend as a standalone HTTP server.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"ledgerchat-backend/internal/config"
	"ledgerchat-backend/internal/di"
)

func main() {
	configPath := flag.String("config", "", "path to the YAML configuration file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger := newLogger(cfg.Environment)
	defer logger.Sync()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	container, err := di.New(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("failed to build application", zap.Error(err))
	}
	defer container.Shutdown()

	watcher, err := config.NewWatcher(cfg, *configPath, logger.Named("config"))
	if err != nil {
		logger.Fatal("failed to start config watcher", zap.Error(err))
	}
	defer watcher.Stop()
	watcher.OnReload(func(next *config.Config) {
		logger.Info("configuration changed; resilience settings apply on restart",
			zap.Int("rate_limit_max_requests", next.Resilience.RateLimit.MaxRequests))
	})

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           container.Router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("server listening",
			zap.Int("port", cfg.Server.Port),
			zap.String("environment", string(cfg.Environment)),
		)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logger.Info("shutdown signal received")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", zap.Error(err))
	}
	logger.Info("server stopped")
}

func newLogger(env config.Environment) *zap.Logger {
	if env == config.Production {
		logger, err := zap.NewProduction()
		if err != nil {
			panic(err)
		}
		return logger
	}
	logger, err := zap.NewDevelopment()
	if err != nil {
		panic(err)
	}
	return logger
}
