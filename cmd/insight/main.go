package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"insighthunter/internal/amqp"
	"insighthunter/internal/backend"
	"insighthunter/internal/cache"
	"insighthunter/internal/config"
	"insighthunter/internal/core"
	apphttp "insighthunter/internal/http"
	applog "insighthunter/internal/log"
	"insighthunter/internal/services"

	"github.com/joho/godotenv"
)

func main() {
	// Load .env file for local development (ignore errors in production/docker)
	_ = godotenv.Load()

	cfg := config.Load()
	logger := applog.Setup(cfg.LogLevel, applog.ComponentApp)

	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	backendCfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		logger.Error("Invalid backend configuration", "error", err)
		os.Exit(1)
	}
	result, err := backend.NewFactory(logger.WithComponent(applog.ComponentBackend).Logger).CreateBackend(ctx, backendCfg)
	if err != nil {
		logger.Error("Failed to initialize backend", "error", err, "backend", cfg.DataBackend)
		os.Exit(1)
	}
	if result.Cleanup != nil {
		defer func() {
			if err := result.Cleanup(); err != nil {
				logger.Error("Backend cleanup failed", "error", err)
			}
		}()
	}

	// Publisher is optional: without AMQP reports are only stored
	var publisher services.ReportPublisher
	if cfg.AMQPURL != "" {
		client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Error("Failed to initialize AMQP client", "error", err)
			os.Exit(1)
		}
		defer client.Close()
		publisher = client
		logger.Info("AMQP publisher enabled", "exchange", cfg.AMQPExchange, "queue", cfg.AMQPQueue)
	} else {
		logger.Info("AMQP disabled - no AMQP_URL provided")
	}

	history, stopCache := newHistoryCache(ctx, cfg, logger)
	defer stopCache()

	finance := services.NewFinanceService(result.Store, publisher, history)

	srv := apphttp.NewServer(":"+cfg.Port, finance, apphttp.Options{
		RateLimitPerMinute: cfg.RateLimitPerMinute,
		Ready:              result.Ready,
		Logger:             logger.WithComponent(applog.ComponentHTTP),
	})

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		sig := <-sigChan
		logger.Info("Shutdown signal received", "signal", sig.String())

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("Server shutdown error", "error", err)
		}
		cancel()
	}()

	logger.Info("Starting insighthunter server", "port", cfg.Port, "backend", cfg.DataBackend)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("Server error", "error", err, "port", cfg.Port)
		os.Exit(1)
	}

	<-ctx.Done()
	logger.Info("Server stopped gracefully")
}

// newHistoryCache picks Redis when REDIS_URL is set and an in-process LRU
// otherwise. The returned func releases whatever was started.
func newHistoryCache(ctx context.Context, cfg *config.Config, logger *applog.Logger) (cache.Cache[core.TimeSeries], func()) {
	log := logger.WithComponent(applog.ComponentCache)

	if cfg.RedisURL != "" {
		client, err := cache.NewRedisClient(ctx, cfg.RedisURL)
		if err == nil {
			log.Info("Using Redis forecast history cache", "ttl", cfg.CacheTTL)
			return cache.NewRedisCache[core.TimeSeries](client, "insighthunter:history:", cfg.CacheTTL), func() { _ = client.Close() }
		}
		log.Warn("Redis unavailable, falling back to in-process cache", "error", err)
	}

	lru := cache.NewLRUCache[core.TimeSeries](256, cfg.CacheTTL)
	manager := cache.NewManager()
	manager.Register(lru)
	manager.StartCleanup(cfg.CacheTTL)
	log.Info("Using in-process forecast history cache", "ttl", cfg.CacheTTL)
	return lru, manager.Stop
}
