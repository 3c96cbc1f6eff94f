package backend

import (
	"context"
	"fmt"
	"log/slog"

	"expensed/internal/storage/postgres"
	"expensed/internal/storage/sqlite"
)

// Factory creates stores based on configuration.
type Factory struct {
	logger *slog.Logger
}

// NewFactory creates a new store factory.
func NewFactory(logger *slog.Logger) *Factory {
	if logger == nil {
		logger = slog.Default()
	}
	return &Factory{logger: logger}
}

// CreateStore constructs the configured store. A store whose pool could not
// be built is still returned; it reports the captured failure on every call
// rather than crashing the process at startup.
func (f *Factory) CreateStore(ctx context.Context, cfg Config) (*Result, error) {
	switch cfg.Type {
	case SQLiteBackend:
		store := sqlite.New(sqlite.Config{Path: cfg.SQLiteDBPath}, f.logger)
		f.logger.Info("initialized sqlite backend", "db_path", cfg.SQLiteDBPath)
		return &Result{Store: store, Cleanup: store.Close}, nil

	case PostgresBackend:
		store := postgres.New(ctx, postgres.Config{
			DSN:        cfg.PostgresDSN,
			MinConns:   cfg.PGMinConns,
			MaxConns:   cfg.PGMaxConns,
			RequireSSL: cfg.PGRequireSSL,
		}, f.logger)
		f.logger.Info("initialized postgres backend",
			"min_conns", cfg.PGMinConns,
			"max_conns", cfg.PGMaxConns)
		return &Result{Store: store, Cleanup: store.Close}, nil

	default:
		return nil, fmt.Errorf("unsupported backend type: %s", cfg.Type)
	}
}
