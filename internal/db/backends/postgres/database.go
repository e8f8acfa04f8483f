// Package postgres is the Postgres storage backend built on a pgx pool.
package postgres

import (
	"context"
	"fmt"

	"github.com/erselk/ugur-sahan-website/internal/db/interfaces"
	"github.com/erselk/ugur-sahan-website/migrations"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	"go.uber.org/zap"
)

type Config struct {
	DSN      string
	MaxConns int32
}

// Database implements interfaces.Database on a pgx connection pool.
type Database struct {
	pool   *pgxpool.Pool
	logger *zap.SugaredLogger
}

var _ interfaces.Database = (*Database)(nil)

func Open(ctx context.Context, cfg Config, logger *zap.SugaredLogger) (*Database, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("parse postgres dsn: %w", err)
	}
	if cfg.MaxConns > 0 {
		poolCfg.MaxConns = cfg.MaxConns
	}
	poolCfg.ConnConfig.DefaultQueryExecMode = pgx.QueryExecModeCacheStatement
	poolCfg.ConnConfig.StatementCacheCapacity = 128

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	logger.Infow("Connected to Postgres",
		"host", poolCfg.ConnConfig.Host,
		"database", poolCfg.ConnConfig.Database,
		"max_conns", poolCfg.MaxConns,
	)
	return &Database{pool: pool, logger: logger}, nil
}

// NewFromPool wraps an existing pool.
func NewFromPool(pool *pgxpool.Pool, logger *zap.SugaredLogger) *Database {
	return &Database{pool: pool, logger: logger}
}

func (db *Database) Posts() interfaces.PostStore       { return &PostStore{pool: db.pool} }
func (db *Database) Messages() interfaces.MessageStore { return &MessageStore{pool: db.pool} }
func (db *Database) Profiles() interfaces.ProfileStore { return &ProfileStore{pool: db.pool} }

func (db *Database) Backend() string { return "postgres" }

func (db *Database) Ping(ctx context.Context) error {
	return mapError("ping", db.pool.Ping(ctx))
}

func (db *Database) Close() error {
	db.pool.Close()
	return nil
}

// Migrate applies the embedded goose migrations.
func (db *Database) Migrate(ctx context.Context) error {
	sqlDB := stdlib.OpenDBFromPool(db.pool)
	defer sqlDB.Close()

	goose.SetBaseFS(migrations.FS)
	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("set goose dialect: %w", err)
	}
	if err := goose.UpContext(ctx, sqlDB, "."); err != nil {
		return fmt.Errorf("apply migrations: %w", err)
	}

	version, err := goose.GetDBVersionContext(ctx, sqlDB)
	if err != nil {
		return fmt.Errorf("read migration version: %w", err)
	}
	db.logger.Infow("Database migrated", "version", version)
	return nil
}
