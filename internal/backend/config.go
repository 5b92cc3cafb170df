package backend

import (
	"fmt"

	"insighthunter/internal/config"
)

// FromAppConfig converts the application config to backend config
func FromAppConfig(appConfig *config.Config) (Config, error) {
	if appConfig == nil {
		return Config{}, fmt.Errorf("app config is nil")
	}

	backendType := BackendType(appConfig.DataBackend)
	if !backendType.IsValid() {
		return Config{}, fmt.Errorf("invalid backend type in config: %s", appConfig.DataBackend)
	}

	return Config{
		Type: backendType,

		SQLiteDBPath: appConfig.SQLiteDBPath,

		GatewayURL:        appConfig.GatewayURL,
		GatewayAPIKey:     appConfig.GatewayAPIKey,
		GatewayDataSource: appConfig.GatewayDataSource,
		GatewayDatabase:   appConfig.GatewayDatabase,
		GatewayTimeout:    appConfig.GatewayTimeout,

		DataDirectory: appConfig.DataDirectory,
	}, nil
}

// Validate validates the backend configuration
func (c Config) Validate() error {
	if !c.Type.IsValid() {
		return fmt.Errorf("invalid backend type: %s", c.Type)
	}

	switch c.Type {
	case SQLiteBackend:
		if c.SQLiteDBPath == "" {
			return fmt.Errorf("SQLite database path is required for sqlite backend")
		}
	case GatewayBackend:
		if c.GatewayURL == "" || c.GatewayAPIKey == "" || c.GatewayDataSource == "" || c.GatewayDatabase == "" {
			return fmt.Errorf("gateway URL, API key, data source and database are required for gateway backend")
		}
	case MemoryBackend:
		// DataDirectory defaults to "data"
	}

	return nil
}

// GetBackendTypes returns all valid backend types
func GetBackendTypes() []BackendType {
	return []BackendType{SQLiteBackend, GatewayBackend, MemoryBackend}
}
