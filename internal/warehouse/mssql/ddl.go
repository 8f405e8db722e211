package mssql

import (
	"fmt"
	"strings"

	"kddprep/internal/schema"
	"kddprep/internal/warehouse/ddl"
)

// MapKind maps a logical column kind onto a SQL Server column type. The id
// column needs a sized type because TEXT-ish MAX types cannot carry a
// primary key index.
func MapKind(k schema.Kind) string {
	switch k {
	case schema.Float:
		return "REAL"
	case schema.Short:
		return "SMALLINT"
	default:
		return "NVARCHAR(255)"
	}
}

// CreateTableSQL renders a SQL Server CREATE TABLE statement with bracketed
// identifiers. Staging tables are dropped before creation, so no existence
// guard is emitted.
func CreateTableSQL(t ddl.TableDef) (string, error) {
	if err := t.Validate(); err != nil {
		return "", fmt.Errorf("mssql ddl: %w", err)
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

	return fmt.Sprintf("CREATE TABLE %s (\n  %s\n);",
		quoteIdent(t.Name), strings.Join(cols, ",\n  ")), nil
}

// DropTableSQL renders a DROP TABLE IF EXISTS statement (SQL Server 2016+).
func DropTableSQL(table string) string {
	return "DROP TABLE IF EXISTS " + quoteIdent(table) + ";"
}
