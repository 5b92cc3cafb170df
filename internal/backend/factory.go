package backend

import (
	"context"
	"fmt"
	"log/slog"

	"insighthunter/internal/storage"
	"insighthunter/internal/store/gateway"
	"insighthunter/internal/store/memory"
)

// DefaultFactory implements the Factory interface
type DefaultFactory struct {
	logger *slog.Logger
}

// NewFactory creates a new backend factory
func NewFactory(logger *slog.Logger) Factory {
	if logger == nil {
		logger = slog.Default()
	}
	return &DefaultFactory{
		logger: logger,
	}
}

// CreateBackend implements Factory.CreateBackend
func (f *DefaultFactory) CreateBackend(ctx context.Context, config Config) (*BackendResult, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	switch config.Type {
	case SQLiteBackend:
		return f.createSQLiteBackend(config)
	case GatewayBackend:
		return f.createGatewayBackend(config)
	case MemoryBackend:
		return f.createMemoryBackend(config)
	default:
		return nil, fmt.Errorf("unsupported backend type: %s", config.Type)
	}
}

func (f *DefaultFactory) createSQLiteBackend(config Config) (*BackendResult, error) {
	repo, err := storage.NewSQLiteRepository(config.SQLiteDBPath)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize SQLite repository: %w", err)
	}

	f.logger.Info("Initialized SQLite backend", "db_path", config.SQLiteDBPath)

	return &BackendResult{
		Store:   repo,
		Cleanup: repo.Close,
		Ready:   repo.Ping,
	}, nil
}

func (f *DefaultFactory) createGatewayBackend(config Config) (*BackendResult, error) {
	cli, err := gateway.New(gateway.Config{
		BaseURL:    config.GatewayURL,
		APIKey:     config.GatewayAPIKey,
		DataSource: config.GatewayDataSource,
		Database:   config.GatewayDatabase,
		Timeout:    config.GatewayTimeout,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize gateway client: %w", err)
	}

	f.logger.Info("Initialized document gateway backend",
		"base_url", config.GatewayURL,
		"database", config.GatewayDatabase)

	return &BackendResult{
		Store: cli,
		Ready: cli.Ping,
	}, nil
}

func (f *DefaultFactory) createMemoryBackend(config Config) (*BackendResult, error) {
	dataDir := config.DataDirectory
	if dataDir == "" {
		dataDir = "data"
	}

	st := memory.NewFromFiles(dataDir)

	f.logger.Info("Initialized memory backend", "data_directory", dataDir)

	return &BackendResult{Store: st}, nil
}
