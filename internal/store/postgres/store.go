// Package postgres implements the store contract over a PostgreSQL
// database, for deployments that already run one instead of the
// default single-file store.
package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/retailsight/retailsight/internal/migrations"
	"github.com/retailsight/retailsight/internal/store"
)

type Config struct {
	DSN             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxIdleTime time.Duration
	ConnMaxLifetime time.Duration
}

type Store struct {
	db *sql.DB
}

func Open(ctx context.Context, cfg Config) (*Store, error) {
	if cfg.DSN == "" {
		return nil, fmt.Errorf("store dsn is required")
	}

	db, err := sql.Open("pgx", cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("open postgres store: %w", err)
	}

	if cfg.MaxOpenConns > 0 {
		db.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns > 0 {
		db.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	if cfg.ConnMaxIdleTime > 0 {
		db.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)
	}
	if cfg.ConnMaxLifetime > 0 {
		db.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping postgres store: %w", err)
	}

	return &Store{db: db}, nil
}

// NewStore wraps an existing handle. Used by tests.
func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

// DB exposes the underlying handle for the migration runner.
func (s *Store) DB() *sql.DB {
	return s.db
}

func (s *Store) Schema(ctx context.Context) ([]store.TableSchema, error) {
	rows, err := s.db.QueryContext(ctx, `
SELECT table_name, column_name, data_type
FROM information_schema.columns
WHERE table_schema = 'public'
  AND table_name <> $1
ORDER BY table_name ASC, ordinal_position ASC`, migrations.VersionTable)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}
	defer func() { _ = rows.Close() }()

	return store.GroupCatalogRows(rows)
}

func (s *Store) Query(ctx context.Context, sqlText string) (store.RowSet, error) {
	rows, err := s.db.QueryContext(ctx, sqlText)
	if err != nil {
		return store.RowSet{}, fmt.Errorf("execute query: %w", err)
	}
	defer func() { _ = rows.Close() }()

	return store.Collect(rows)
}

func (s *Store) HealthCheck(ctx context.Context) error {
	if err := s.db.PingContext(ctx); err != nil {
		return fmt.Errorf("ping postgres store: %w", err)
	}
	return nil
}

func (s *Store) Close() error {
	return s.db.Close()
}
