// Package warehouse contains the storage-agnostic contract for SQL
// warehouses plus the batched shard loader and the table registrar that
// drives stage 4.
//
// Backends (sqlite, postgres, mssql) register a Factory for their kind at
// init time; importing kddprep/internal/warehouse/all wires in every
// built-in backend.
package warehouse

import (
	"context"
	"fmt"
	"sync"

	"kddprep/internal/schema"
	"kddprep/internal/warehouse/ddl"
)

// Repository is the minimal surface stage 4 needs from a SQL warehouse:
// bulk insert, full scan, and raw DDL.
type Repository interface {
	// CopyFrom bulk-inserts rows (aligned to columns order) into table and
	// returns the number of rows inserted.
	CopyFrom(ctx context.Context, table string, columns []string, rows [][]any) (int64, error)

	// SelectAll scans every row of table in the given column order, invoking
	// fn once per row. fn must not retain the slice.
	SelectAll(ctx context.Context, table string, columns []string, fn func(row []any) error) error

	// Exec executes an arbitrary SQL statement, typically DDL.
	Exec(ctx context.Context, sql string) error

	// Close releases the underlying connections.
	Close() error
}

// Config selects and configures a backend.
type Config struct {
	// Kind selects the registered backend ("sqlite", "postgres", "mssql").
	Kind string

	// DSN is passed to the backend's driver as-is.
	DSN string
}

// Factory opens a Repository for the given configuration.
type Factory func(ctx context.Context, cfg Config) (Repository, error)

// Dialect bundles the SQL rendering hooks that differ per backend: the
// logical-to-SQL type map and the CREATE/DROP statement builders.
type Dialect struct {
	MapKind        func(k schema.Kind) string
	CreateTableSQL func(t ddl.TableDef) (string, error)
	DropTableSQL   func(table string) string
}

type backend struct {
	factory Factory
	dialect Dialect
}

var (
	mu       sync.RWMutex
	backends = map[string]backend{}
)

// Register registers (or replaces) the Factory and Dialect for a backend
// kind. It is typically called from backend packages' init() functions.
func Register(kind string, fn Factory, d Dialect) {
	mu.Lock()
	defer mu.Unlock()
	backends[kind] = backend{factory: fn, dialect: d}
}

// New opens a Repository using the factory registered for cfg.Kind and
// returns it together with the backend's Dialect.
func New(ctx context.Context, cfg Config) (Repository, Dialect, error) {
	mu.RLock()
	b, ok := backends[cfg.Kind]
	mu.RUnlock()
	if !ok {
		return nil, Dialect{}, fmt.Errorf("warehouse: no backend registered for kind=%q", cfg.Kind)
	}
	repo, err := b.factory(ctx, cfg)
	if err != nil {
		return nil, Dialect{}, err
	}
	return repo, b.dialect, nil
}
