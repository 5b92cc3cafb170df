package backend

import (
	"context"
	"time"

	"insighthunter/internal/store"
)

// CleanupFunc represents a cleanup function for resources
type CleanupFunc func() error

// ReadyFunc reports whether the backend can serve requests.
type ReadyFunc func(ctx context.Context) error

// BackendResult contains the store instance and optional lifecycle hooks
type BackendResult struct {
	Store   store.Store
	Cleanup CleanupFunc
	Ready   ReadyFunc
}

// Factory creates backends based on configuration
type Factory interface {
	CreateBackend(ctx context.Context, config Config) (*BackendResult, error)
}

// Config holds configuration for backend creation
type Config struct {
	Type BackendType

	// SQLite specific
	SQLiteDBPath string

	// Document gateway specific
	GatewayURL        string
	GatewayAPIKey     string
	GatewayDataSource string
	GatewayDatabase   string
	GatewayTimeout    time.Duration

	// Memory backend seed directory
	DataDirectory string
}

// BackendType represents the type of backend
type BackendType string

const (
	SQLiteBackend  BackendType = "sqlite"
	GatewayBackend BackendType = "gateway"
	MemoryBackend  BackendType = "memory"
)

// String implements fmt.Stringer
func (bt BackendType) String() string {
	return string(bt)
}

// IsValid returns true if the backend type is valid
func (bt BackendType) IsValid() bool {
	switch bt {
	case SQLiteBackend, GatewayBackend, MemoryBackend:
		return true
	default:
		return false
	}
}
