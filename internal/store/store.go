// Package store defines the relational store contract the analysis
// pipeline depends on: catalog introspection and ad hoc SQL execution.
package store

import (
	"context"
	"database/sql"
	"fmt"
)

// Column is one declared column of a table.
type Column struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

// TableSchema is the declared shape of one table, columns in declaration order.
type TableSchema struct {
	Name    string   `json:"table_name"`
	Columns []Column `json:"columns"`
}

// RowSet is the full result of executing a statement, columns as returned
// by the engine and rows in result order.
type RowSet struct {
	Columns []string
	Rows    [][]any
}

type Store interface {
	// Schema lists every user table with its columns, in catalog order.
	// Any catalog read error aborts the call; partial results are never
	// returned.
	Schema(ctx context.Context) ([]TableSchema, error)
	// Query executes an ad hoc statement and collects the complete row set.
	Query(ctx context.Context, sqlText string) (RowSet, error)
	HealthCheck(ctx context.Context) error
	Close() error
}

// Collect drains rows into a RowSet, normalizing []byte values to string.
func Collect(rows *sql.Rows) (RowSet, error) {
	columns, err := rows.Columns()
	if err != nil {
		return RowSet{}, fmt.Errorf("result columns: %w", err)
	}

	collected := make([][]any, 0)
	for rows.Next() {
		values := make([]any, len(columns))
		scanTargets := make([]any, len(columns))
		for i := range values {
			scanTargets[i] = &values[i]
		}
		if err := rows.Scan(scanTargets...); err != nil {
			return RowSet{}, fmt.Errorf("scan row: %w", err)
		}
		collected = append(collected, normalizeValues(values))
	}
	if err := rows.Err(); err != nil {
		return RowSet{}, fmt.Errorf("iterate rows: %w", err)
	}

	return RowSet{Columns: columns, Rows: collected}, nil
}

func normalizeValues(values []any) []any {
	normalized := make([]any, len(values))
	for i, value := range values {
		switch typed := value.(type) {
		case []byte:
			normalized[i] = string(typed)
		default:
			normalized[i] = typed
		}
	}
	return normalized
}

// GroupCatalogRows folds (table, column, type) catalog rows, ordered by
// table then ordinal position, into per-table schemas.
func GroupCatalogRows(rows *sql.Rows) ([]TableSchema, error) {
	tables := make([]TableSchema, 0)
	index := map[string]int{}

	for rows.Next() {
		var tableName, columnName, dataType string
		if err := rows.Scan(&tableName, &columnName, &dataType); err != nil {
			return nil, fmt.Errorf("scan catalog row: %w", err)
		}
		at, ok := index[tableName]
		if !ok {
			at = len(tables)
			index[tableName] = at
			tables = append(tables, TableSchema{Name: tableName})
		}
		tables[at].Columns = append(tables[at].Columns, Column{Name: columnName, Type: dataType})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate catalog rows: %w", err)
	}
	return tables, nil
}
