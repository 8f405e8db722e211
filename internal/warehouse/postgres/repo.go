// Package postgres implements a Postgres-backed warehouse.Repository using
// pgx v5. Bulk inserts go through the COPY protocol, which is the fastest
// path for loading shard files.
package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"kddprep/internal/warehouse"
)

func init() {
	warehouse.Register("postgres",
		func(ctx context.Context, cfg warehouse.Config) (warehouse.Repository, error) {
			return NewRepository(ctx, cfg.DSN)
		},
		warehouse.Dialect{
			MapKind:        MapKind,
			CreateTableSQL: CreateTableSQL,
			DropTableSQL:   DropTableSQL,
		})
}

// Repository is a Postgres-backed warehouse.Repository.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository opens a connection pool for the given DSN.
func NewRepository(ctx context.Context, dsn string) (*Repository, error) {
	if strings.TrimSpace(dsn) == "" {
		return nil, fmt.Errorf("postgres: DSN must not be empty")
	}
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("postgres: pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("postgres: ping: %w", err)
	}
	return &Repository{pool: pool}, nil
}

// CopyFrom bulk-inserts rows into table via the COPY protocol.
func (r *Repository) CopyFrom(ctx context.Context, table string, columns []string, rows [][]any) (int64, error) {
	if len(columns) == 0 {
		return 0, fmt.Errorf("postgres: CopyFrom: columns must not be empty")
	}
	if len(rows) == 0 {
		return 0, nil
	}

	n, err := r.pool.CopyFrom(ctx, splitFQN(table), columns, pgx.CopyFromRows(rows))
	if err != nil {
		return n, fmt.Errorf("postgres: copy into %s: %w", table, err)
	}
	return n, nil
}

// SelectAll scans every row of table in the given column order, sorted by
// the first column for deterministic output.
func (r *Repository) SelectAll(ctx context.Context, table string, columns []string, fn func(row []any) error) error {
	if len(columns) == 0 {
		return fmt.Errorf("postgres: SelectAll: columns must not be empty")
	}

	query := fmt.Sprintf("SELECT %s FROM %s ORDER BY %s",
		strings.Join(quoteAll(columns), ", "),
		pgFQN(table),
		quoteIdent(columns[0]),
	)

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return fmt.Errorf("postgres: select %s: %w", table, err)
	}
	defer rows.Close()

	for rows.Next() {
		vals, err := rows.Values()
		if err != nil {
			return fmt.Errorf("postgres: scan %s: %w", table, err)
		}
		if err := fn(vals); err != nil {
			return err
		}
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("postgres: select %s: %w", table, err)
	}
	return nil
}

// Exec executes an arbitrary SQL statement, typically DDL.
func (r *Repository) Exec(ctx context.Context, sql string) error {
	if strings.TrimSpace(sql) == "" {
		return nil
	}
	if _, err := r.pool.Exec(ctx, sql); err != nil {
		return fmt.Errorf("postgres: exec: %w", err)
	}
	return nil
}

// Close releases the pool.
func (r *Repository) Close() error {
	r.pool.Close()
	return nil
}

func quoteIdent(id string) string {
	return `"` + strings.ReplaceAll(id, `"`, `""`) + `"`
}

func quoteAll(ids []string) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = quoteIdent(id)
	}
	return out
}

// pgFQN quotes a possibly schema-qualified name like "public.kdd" into
// "public"."kdd".
func pgFQN(name string) string {
	parts := strings.Split(name, ".")
	for i, p := range parts {
		parts[i] = quoteIdent(p)
	}
	return strings.Join(parts, ".")
}

// splitFQN converts "schema.table" into a pgx.Identifier.
func splitFQN(fqn string) pgx.Identifier {
	parts := strings.Split(fqn, ".")
	id := make(pgx.Identifier, 0, len(parts))
	for _, p := range parts {
		if p != "" {
			id = append(id, p)
		}
	}
	return id
}
