package main

import (
	"context"
	"fmt"
	"os"

	"insighthunter/internal/amqp"
	"insighthunter/internal/backend"
	"insighthunter/internal/config"
	applog "insighthunter/internal/log"
	"insighthunter/internal/services"

	"github.com/google/subcommands"
)

var commands = []subcommands.Command{
	&importCmd{},
	&reportCmd{},
	&reportsCmd{},
	&forecastCmd{},
	&transactionsCmd{},
}

// openService wires the configured backend, and the AMQP publisher when
// configured, behind a FinanceService. closeFn releases both.
func openService(ctx context.Context) (svc *services.FinanceService, closeFn func(), err error) {
	cfg := config.Load()
	// keep the CLI output clean unless LOG_LEVEL asks for more
	level := cfg.LogLevel
	if os.Getenv("LOG_LEVEL") == "" {
		level = "warn"
	}
	logger := applog.Setup(level, applog.ComponentCLI)

	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}

	backendCfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		return nil, nil, err
	}
	result, err := backend.NewFactory(logger.Logger).CreateBackend(ctx, backendCfg)
	if err != nil {
		return nil, nil, fmt.Errorf("create %s backend: %w", cfg.DataBackend, err)
	}

	closers := []func(){}
	if result.Cleanup != nil {
		closers = append(closers, func() { _ = result.Cleanup() })
	}

	var publisher services.ReportPublisher
	if cfg.AMQPURL != "" {
		client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Warn("AMQP unavailable, reports will not be published", "error", err)
		} else {
			publisher = client
			closers = append(closers, func() { _ = client.Close() })
		}
	}

	closeFn = func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}
	return services.NewFinanceService(result.Store, publisher, nil), closeFn, nil
}

func fail(format string, args ...any) subcommands.ExitStatus {
	fmt.Fprintf(os.Stderr, "Error: "+format+"\n", args...)
	return subcommands.ExitFailure
}
