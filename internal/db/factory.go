// Package db selects and opens the storage backend.
package db

import (
	"context"
	"fmt"

	"github.com/erselk/ugur-sahan-website/internal/db/backends/memory"
	"github.com/erselk/ugur-sahan-website/internal/db/backends/postgres"
	"github.com/erselk/ugur-sahan-website/internal/db/interfaces"
	"go.uber.org/zap"
)

const (
	BackendMemory   = "memory"
	BackendPostgres = "postgres"
)

// Config holds database configuration
type Config struct {
	Backend     string // "memory" or "postgres"
	DSN         string
	MaxConns    int32
	AutoMigrate bool
}

// Open creates the configured backend. Postgres is migrated first when
// AutoMigrate is set.
func Open(ctx context.Context, cfg Config, logger *zap.SugaredLogger) (interfaces.Database, error) {
	switch cfg.Backend {
	case "", BackendMemory:
		logger.Infow("Using in-memory database")
		return memory.NewDatabase(), nil
	case BackendPostgres:
		if cfg.DSN == "" {
			return nil, fmt.Errorf("postgres backend requires a DSN")
		}
		pg, err := postgres.Open(ctx, postgres.Config{DSN: cfg.DSN, MaxConns: cfg.MaxConns}, logger)
		if err != nil {
			return nil, err
		}
		if cfg.AutoMigrate {
			if err := pg.Migrate(ctx); err != nil {
				pg.Close()
				return nil, err
			}
		}
		return pg, nil
	default:
		return nil, fmt.Errorf("unsupported database backend: %s", cfg.Backend)
	}
}

// NewInMemoryDatabase creates a new in-memory database instance
func NewInMemoryDatabase() interfaces.Database {
	return memory.NewDatabase()
}
