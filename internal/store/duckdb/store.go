// Package duckdb implements the store contract over a single DuckDB
// database file, created on first open.
package duckdb

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	_ "github.com/marcboeker/go-duckdb/v2"

	"github.com/retailsight/retailsight/internal/migrations"
	"github.com/retailsight/retailsight/internal/store"
)

type Store struct {
	db *sql.DB
}

func Open(ctx context.Context, path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("store path is required")
	}

	db, err := sql.Open("duckdb", path)
	if err != nil {
		return nil, fmt.Errorf("open duckdb store: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping duckdb store: %w", err)
	}
	return &Store{db: db}, nil
}

// DB exposes the underlying handle for the migration runner.
func (s *Store) DB() *sql.DB {
	return s.db
}

func (s *Store) Schema(ctx context.Context) ([]store.TableSchema, error) {
	rows, err := s.db.QueryContext(ctx, `
SELECT table_name, column_name, data_type
FROM information_schema.columns
WHERE table_schema = 'main'
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
		return fmt.Errorf("ping duckdb store: %w", err)
	}
	return nil
}

func (s *Store) Close() error {
	return s.db.Close()
}
