package backend

import (
	"fmt"
	"log/slog"

	"ledger/internal/storage"
	"ledger/internal/storage/memory"
)

// Factory opens stores based on configuration.
type Factory struct {
	logger *slog.Logger
}

func NewFactory(logger *slog.Logger) *Factory {
	if logger == nil {
		logger = slog.Default()
	}
	return &Factory{logger: logger}
}

// Open creates the store named by the config. A SQLite store that cannot be
// opened or migrated fails here, which is fatal to startup by contract.
func (f *Factory) Open(cfg Config) (*Result, error) {
	switch cfg.Kind {
	case SQLiteKind:
		repo, err := storage.NewSQLiteRepository(cfg.SQLiteDBPath)
		if err != nil {
			return nil, fmt.Errorf("initialize sqlite store: %w", err)
		}
		f.logger.Info("Initialized SQLite store", "path", cfg.SQLiteDBPath)
		return &Result{Store: repo, Cleanup: repo.Close}, nil
	case MemoryKind:
		store := memory.New()
		f.logger.Info("Initialized memory store")
		return &Result{Store: store, Cleanup: store.Close}, nil
	default:
		return nil, fmt.Errorf("unsupported store kind: %s", cfg.Kind)
	}
}
