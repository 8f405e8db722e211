package postgres

import (
	"strings"
	"testing"

	"kddprep/internal/schema"
	"kddprep/internal/warehouse/ddl"
)

func TestCreateTableSQL(t *testing.T) {
	t.Parallel()

	def := ddl.FromSchema("public.kdd_staging", false, MapKind)
	got, err := CreateTableSQL(def)
	if err != nil {
		t.Fatalf("CreateTableSQL: %v", err)
	}

	for _, want := range []string{
		`CREATE TABLE IF NOT EXISTS "public"."kdd_staging"`,
		`"id" TEXT NOT NULL`,
		`"duration" REAL`,
		`"land" SMALLINT`,
		`PRIMARY KEY ("id")`,
	} {
		if !strings.Contains(got, want) {
			t.Errorf("statement missing %q:\n%s", want, got)
		}
	}
	if strings.Contains(got, "label") {
		t.Error("unlabeled table must not carry a label column")
	}
}

func TestDropTableSQL(t *testing.T) {
	t.Parallel()

	if got := DropTableSQL("public.kdd_staging"); got != `DROP TABLE IF EXISTS "public"."kdd_staging";` {
		t.Fatalf("DropTableSQL = %q", got)
	}
}

func TestMapKind(t *testing.T) {
	t.Parallel()

	cases := map[schema.Kind]string{
		schema.String: "TEXT",
		schema.Float:  "REAL",
		schema.Short:  "SMALLINT",
	}
	for kind, want := range cases {
		if got := MapKind(kind); got != want {
			t.Errorf("MapKind(%s) = %q, want %q", kind, got, want)
		}
	}
}

func TestSplitFQN(t *testing.T) {
	t.Parallel()

	id := splitFQN("public.kdd")
	if len(id) != 2 || id[0] != "public" || id[1] != "kdd" {
		t.Fatalf("splitFQN = %v", id)
	}
	id = splitFQN("kdd")
	if len(id) != 1 || id[0] != "kdd" {
		t.Fatalf("splitFQN = %v", id)
	}
}
