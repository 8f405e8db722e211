// Package ddl holds the backend-agnostic table model rendered by the
// dialect-specific builders under the warehouse backends.
//
// It stays deliberately generic: identifiers are unquoted here (quoting is a
// dialect concern), and SQLType strings are whatever the target dialect's
// type mapper produced.
package ddl

import (
	"fmt"
	"strings"

	"kddprep/internal/schema"
)

// ColumnDef describes a single column.
type ColumnDef struct {
	Name       string
	SQLType    string
	Nullable   bool
	PrimaryKey bool
}

// TableDef holds a table name and its ordered columns.
type TableDef struct {
	Name    string
	Columns []ColumnDef
}

// Validate checks the definition is renderable.
func (t TableDef) Validate() error {
	if strings.TrimSpace(t.Name) == "" {
		return fmt.Errorf("ddl: table name must not be empty")
	}
	if len(t.Columns) == 0 {
		return fmt.Errorf("ddl: at least one column is required")
	}
	for _, c := range t.Columns {
		if strings.TrimSpace(c.Name) == "" {
			return fmt.Errorf("ddl: column with empty name in table %s", t.Name)
		}
		if strings.TrimSpace(c.SQLType) == "" {
			return fmt.Errorf("ddl: column %s missing SQLType", c.Name)
		}
	}
	return nil
}

// FromSchema builds the connection-record table definition for one dataset.
// typeFor maps logical column kinds onto the dialect's SQL types. The id
// column is the primary key and not nullable; feature and label columns stay
// nullable, matching the loose typing of the raw data.
func FromSchema(table string, labeled bool, typeFor func(schema.Kind) string) TableDef {
	cols := schema.Columns(labeled)
	def := TableDef{
		Name:    table,
		Columns: make([]ColumnDef, len(cols)),
	}
	for i, col := range cols {
		def.Columns[i] = ColumnDef{
			Name:       col.Name,
			SQLType:    typeFor(col.Kind),
			Nullable:   col.Name != schema.IDColumn,
			PrimaryKey: col.Name == schema.IDColumn,
		}
	}
	return def
}
