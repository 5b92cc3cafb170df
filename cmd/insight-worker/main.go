package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"insighthunter/internal/amqp"
	"insighthunter/internal/cache"
	"insighthunter/internal/config"
	applog "insighthunter/internal/log"
	"insighthunter/internal/sheets"
	gsheet "insighthunter/internal/sheets/google"
	memsheet "insighthunter/internal/sheets/memory"
	"insighthunter/internal/worker"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"
)

// A report id is held for claimInFlightTTL while it is being appended and
// for claimDoneTTL once the append succeeded.
const (
	claimInFlightTTL = 2 * time.Minute
	claimDoneTTL     = 24 * time.Hour
)

func main() {
	// Load .env file for local development (ignore errors in production/docker)
	_ = godotenv.Load()

	cfg := config.Load()
	logger := applog.Setup(cfg.LogLevel, applog.ComponentWorker)
	logger.Info("Starting insight-worker")

	if err := cfg.ValidateWorker(); err != nil {
		logger.Error("Configuration validation failed", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	appender, err := newAppender(ctx, cfg, logger)
	if err != nil {
		logger.Error("Failed to initialize Google Sheets client", "error", err)
		os.Exit(1)
	}

	var claimer worker.Claimer
	if cfg.RedisURL != "" {
		client, err := cache.NewRedisClient(ctx, cfg.RedisURL)
		if err != nil {
			logger.Error("Failed to connect to Redis", "error", err)
			os.Exit(1)
		}
		defer client.Close()
		claimer = worker.NewRedisClaimer(client, "insighthunter:report-sync:", claimInFlightTTL, claimDoneTTL)
		logger.Info("Report claims enabled", "in_flight_ttl", claimInFlightTTL, "done_ttl", claimDoneTTL)
	} else {
		logger.Info("Report claims disabled - no REDIS_URL provided")
	}

	amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		logger.Error("Failed to initialize AMQP client", "error", err)
		os.Exit(1)
	}
	defer amqpClient.Close()

	syncWorker := worker.NewReportSyncWorker(appender, claimer)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return amqpClient.ConsumeReportGenerated(gctx, syncWorker.HandleReportMessage)
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("Shutting down worker...")
		return nil
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("Message consumption failed", "error", err)
		os.Exit(1)
	}
	logger.Info("Worker shutdown complete")
}

// newAppender uses the Sheets API when a spreadsheet is configured and an
// in-memory sheet otherwise.
func newAppender(ctx context.Context, cfg *config.Config, logger *applog.Logger) (sheets.ReportAppender, error) {
	if cfg.GoogleSpreadsheetID == "" {
		logger.Info("Google Sheets disabled - no GOOGLE_SPREADSHEET_ID provided, using in-memory sheet")
		return memsheet.New(), nil
	}

	client, err := gsheet.New(ctx, gsheet.Config{
		SpreadsheetID:   cfg.GoogleSpreadsheetID,
		SheetName:       cfg.GoogleSheetName,
		CredentialsJSON: cfg.GoogleServiceAccountJSON,
		CredentialsFile: cfg.GoogleServiceAccountFile,
	})
	if err != nil {
		return nil, err
	}
	logger.Info("Google Sheets client initialized",
		"spreadsheet_id", cfg.GoogleSpreadsheetID,
		"sheet", cfg.GoogleSheetName)
	return client, nil
}
