package postgres

import (
	"fmt"
	"strings"

	"kddprep/internal/schema"
	"kddprep/internal/warehouse/ddl"
)

// MapKind maps a logical column kind onto a Postgres column type. REAL
// matches the single-precision FLOAT the source data declares; SMALLINT
// covers the 0/1 flag columns.
func MapKind(k schema.Kind) string {
	switch k {
	case schema.Float:
		return "REAL"
	case schema.Short:
		return "SMALLINT"
	default:
		return "TEXT"
	}
}

// CreateTableSQL renders a Postgres CREATE TABLE IF NOT EXISTS statement
// with double-quoted identifiers.
func CreateTableSQL(t ddl.TableDef) (string, error) {
	if err := t.Validate(); err != nil {
		return "", fmt.Errorf("postgres ddl: %w", err)
	}

	cols := make([]string, 0, len(t.Columns)+1)
	pks := make([]string, 0, 1)
	for _, c := range t.Columns {
		var sb strings.Builder
		sb.WriteString(quoteIdent(c.Name))
		sb.WriteByte(' ')
		sb.WriteString(c.SQLType)
		if !c.Nullable {
			sb.WriteString(" NOT NULL")
		}
		cols = append(cols, sb.String())
		if c.PrimaryKey {
			pks = append(pks, quoteIdent(c.Name))
		}
	}
	if len(pks) > 0 {
		cols = append(cols, fmt.Sprintf("PRIMARY KEY (%s)", strings.Join(pks, ", ")))
	}

	return fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (\n  %s\n);",
		pgFQN(t.Name), strings.Join(cols, ",\n  ")), nil
}

// DropTableSQL renders a DROP TABLE IF EXISTS statement.
func DropTableSQL(table string) string {
	return "DROP TABLE IF EXISTS " + pgFQN(table) + ";"
}
