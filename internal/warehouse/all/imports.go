// Package all wires in every built-in warehouse backend via side-effect
// imports. Import it from main (or a test) to make warehouse.New usable for
// all kinds.
package all

import (
	_ "kddprep/internal/warehouse/mssql"
	_ "kddprep/internal/warehouse/postgres"
	_ "kddprep/internal/warehouse/sqlite"
)
