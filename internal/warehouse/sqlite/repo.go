// Package sqlite implements a SQLite-backed warehouse.Repository using
// database/sql. Bulk inserts run as prepared statements inside one
// transaction; SQLite has no COPY-style primitive, but transactions keep
// shard loads fast enough for this data volume.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"kddprep/internal/warehouse"
)

func init() {
	warehouse.Register("sqlite",
		func(ctx context.Context, cfg warehouse.Config) (warehouse.Repository, error) {
			return NewRepository(ctx, cfg.DSN)
		},
		warehouse.Dialect{
			MapKind:        MapKind,
			CreateTableSQL: CreateTableSQL,
			DropTableSQL:   DropTableSQL,
		})
}

// Repository is a SQLite-backed warehouse.Repository.
type Repository struct {
	db *sql.DB
}

// NewRepository opens a SQLite database. The DSN is passed to database/sql
// as-is, e.g. "file:kddprep.db?cache=shared" or a plain path.
func NewRepository(ctx context.Context, dsn string) (*Repository, error) {
	if strings.TrimSpace(dsn) == "" {
		return nil, fmt.Errorf("sqlite: DSN must not be empty")
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("sqlite: open: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("sqlite: ping: %w", err)
	}

	return &Repository{db: db}, nil
}

// CopyFrom inserts rows into table using one transaction and a prepared
// statement. len(row) must equal len(columns) for every row.
func (r *Repository) CopyFrom(ctx context.Context, table string, columns []string, rows [][]any) (int64, error) {
	if len(columns) == 0 {
		return 0, fmt.Errorf("sqlite: CopyFrom: columns must not be empty")
	}
	if len(rows) == 0 {
		return 0, nil
	}

	placeholders := make([]string, len(columns))
	for i := range placeholders {
		placeholders[i] = "?"
	}
	stmtSQL := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		quoteIdent(table),
		strings.Join(quoteAll(columns), ", "),
		strings.Join(placeholders, ", "),
	)

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("sqlite: begin tx: %w", err)
	}
	stmt, err := tx.PrepareContext(ctx, stmtSQL)
	if err != nil {
		_ = tx.Rollback()
		return 0, fmt.Errorf("sqlite: prepare insert: %w", err)
	}
	defer stmt.Close()

	var inserted int64
	for _, row := range rows {
		if len(row) != len(columns) {
			_ = tx.Rollback()
			return 0, fmt.Errorf("sqlite: CopyFrom: row length %d != columns length %d", len(row), len(columns))
		}
		if _, err := stmt.ExecContext(ctx, row...); err != nil {
			_ = tx.Rollback()
			return 0, fmt.Errorf("sqlite: insert: %w", err)
		}
		inserted++
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("sqlite: commit: %w", err)
	}
	return inserted, nil
}

// SelectAll scans every row of table in the given column order, sorted by
// the first column so scans are deterministic across runs.
func (r *Repository) SelectAll(ctx context.Context, table string, columns []string, fn func(row []any) error) error {
	if len(columns) == 0 {
		return fmt.Errorf("sqlite: SelectAll: columns must not be empty")
	}

	query := fmt.Sprintf("SELECT %s FROM %s ORDER BY %s",
		strings.Join(quoteAll(columns), ", "),
		quoteIdent(table),
		quoteIdent(columns[0]),
	)

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return fmt.Errorf("sqlite: select %s: %w", table, err)
	}
	defer rows.Close()

	vals := make([]any, len(columns))
	ptrs := make([]any, len(columns))
	for i := range vals {
		ptrs[i] = &vals[i]
	}
	for rows.Next() {
		if err := rows.Scan(ptrs...); err != nil {
			return fmt.Errorf("sqlite: scan %s: %w", table, err)
		}
		if err := fn(vals); err != nil {
			return err
		}
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("sqlite: select %s: %w", table, err)
	}
	return nil
}

// Exec executes an arbitrary SQL statement, typically DDL.
func (r *Repository) Exec(ctx context.Context, sqlText string) error {
	if strings.TrimSpace(sqlText) == "" {
		return nil
	}
	if _, err := r.db.ExecContext(ctx, sqlText); err != nil {
		return fmt.Errorf("sqlite: exec: %w", err)
	}
	return nil
}

// Close releases the database handle.
func (r *Repository) Close() error {
	return r.db.Close()
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
