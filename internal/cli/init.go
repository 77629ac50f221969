// Package cli provides common bootstrap utilities for cmd/ledgerd.
package cli

import (
	"os"

	"github.com/joho/godotenv"

	"ledger/internal/backend"
	"ledger/internal/config"
	applog "ledger/internal/log"
)

// SetupLogger initializes structured logging with default settings and sets
// it as the process default.
func SetupLogger() *applog.Logger {
	logger := applog.New(applog.DefaultConfig())
	applog.SetDefault(logger)
	return logger
}

// LoadEnvFile loads the .env file for local development.
// Errors are ignored silently as this is optional in production.
func LoadEnvFile() {
	_ = godotenv.Load()
}

// LoadAndValidateConfig loads configuration and validates it.
// Returns the config or exits the process on validation failure.
func LoadAndValidateConfig(logger *applog.Logger) *config.Config {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", "error", err)
		os.Exit(1)
	}
	return cfg
}

// OpenStore opens the configured store through the backend factory.
// A store that cannot be opened is fatal to startup by contract, so this
// exits the process on failure.
func OpenStore(logger *applog.Logger, cfg *config.Config) *backend.Result {
	factory := backend.NewFactory(logger.WithComponent(applog.ComponentBackend).Logger)
	result, err := factory.Open(backend.Config{
		Kind:         backend.Kind(cfg.Backend),
		SQLiteDBPath: cfg.SQLiteDBPath,
	})
	if err != nil {
		logger.Error("Failed to open store", "error", err, "backend", cfg.Backend)
		os.Exit(1)
	}
	return result
}
