package stream

import (
	"context"
	"encoding/csv"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"kddprep/internal/config"
	"kddprep/internal/datasource/file"
	"kddprep/internal/schema"
)

// rawRow builds one synthetic connection record with the right field count.
func rawRow(i int, labeled bool) string {
	fields := make([]string, 0, schema.RawWidth(labeled))
	fields = append(fields, strconv.Itoa(i), "tcp", "http", "SF")
	for len(fields) < schema.NumFeatures() {
		fields = append(fields, "0")
	}
	if labeled {
		fields = append(fields, "normal.")
	}
	return strings.Join(fields, ",")
}

func writeRaw(t *testing.T, lines []string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "kddcup.data")
	if err := os.WriteFile(p, []byte(strings.Join(lines, "\n")+"\n"), 0o644); err != nil {
		t.Fatalf("write raw: %v", err)
	}
	return p
}

func readShards(t *testing.T, dir string) [][]string {
	t.Helper()
	parts, err := file.Parts(dir)
	if err != nil {
		t.Fatalf("Parts: %v", err)
	}
	var rows [][]string
	for _, p := range parts {
		f, err := os.Open(p)
		if err != nil {
			t.Fatalf("open %s: %v", p, err)
		}
		recs, err := csv.NewReader(f).ReadAll()
		f.Close()
		if err != nil {
			t.Fatalf("read %s: %v", p, err)
		}
		rows = append(rows, recs...)
	}
	return rows
}

// TestPrepare_ShardsAndIDs covers the core contract: every input row comes
// out exactly once, carries a unique prefixed id in column 0, and lands on
// the shard its id hashes to.
func TestPrepare_ShardsAndIDs(t *testing.T) {
	t.Parallel()

	const n = 100
	lines := make([]string, n)
	for i := range lines {
		lines[i] = rawRow(i, true)
	}
	raw := writeRaw(t, lines)

	ds := config.Dataset{Name: "kdd", IDPrefix: "a", Labeled: true}
	dest := filepath.Join(t.TempDir(), "streams", "kdd")

	s := New(Config{Shards: 4})
	res, err := s.Prepare(context.Background(), ds, file.NewLocal(raw), dest)
	if err != nil {
		t.Fatalf("Prepare: %v", err)
	}
	if res.Rows != n || res.BadRows != 0 {
		t.Fatalf("Rows=%d BadRows=%d, want %d/0", res.Rows, res.BadRows, n)
	}

	parts, err := file.Parts(dest)
	if err != nil {
		t.Fatalf("Parts: %v", err)
	}
	if len(parts) != 4 {
		t.Fatalf("got %d part files, want 4", len(parts))
	}

	seen := map[string]bool{}
	for shard, p := range parts {
		f, err := os.Open(p)
		if err != nil {
			t.Fatalf("open %s: %v", p, err)
		}
		recs, err := csv.NewReader(f).ReadAll()
		f.Close()
		if err != nil {
			t.Fatalf("read %s: %v", p, err)
		}
		for _, rec := range recs {
			if len(rec) != schema.RawWidth(true)+1 {
				t.Fatalf("row width %d, want %d", len(rec), schema.RawWidth(true)+1)
			}
			id := rec[0]
			if !strings.HasPrefix(id, "a") {
				t.Fatalf("id %q missing prefix", id)
			}
			if seen[id] {
				t.Fatalf("duplicate id %q", id)
			}
			seen[id] = true
			if got := ShardFor(id, 4); got != shard {
				t.Fatalf("id %q in shard %d, hashes to %d", id, shard, got)
			}
		}
	}
	if len(seen) != n {
		t.Fatalf("got %d rows across shards, want %d", len(seen), n)
	}
}

// TestPrepare_MalformedRowsFailSoft verifies wrong-width rows are counted
// and sampled but never written and never abort the run.
func TestPrepare_MalformedRowsFailSoft(t *testing.T) {
	t.Parallel()

	lines := []string{
		rawRow(0, false),
		"too,short",
		rawRow(1, false),
		rawRow(2, false) + ",extra",
		rawRow(3, false),
	}
	raw := writeRaw(t, lines)

	ds := config.Dataset{Name: "kdd_unlabeled", IDPrefix: "b", Labeled: false}
	dest := filepath.Join(t.TempDir(), "streams", "kdd_unlabeled")

	res, err := New(Config{Shards: 3}).Prepare(context.Background(), ds, file.NewLocal(raw), dest)
	if err != nil {
		t.Fatalf("Prepare: %v", err)
	}
	if res.Rows != 3 {
		t.Fatalf("Rows = %d, want 3", res.Rows)
	}
	if res.BadRows != 2 {
		t.Fatalf("BadRows = %d, want 2", res.BadRows)
	}
	if len(res.ErrSamples) != 2 {
		t.Fatalf("ErrSamples = %v, want 2 entries", res.ErrSamples)
	}
	if got := len(readShards(t, dest)); got != 3 {
		t.Fatalf("wrote %d rows, want 3", got)
	}
}

// TestPrepare_ReplacesPreviousShardSet verifies a re-run removes stale part
// files from an earlier, wider sharding.
func TestPrepare_ReplacesPreviousShardSet(t *testing.T) {
	t.Parallel()

	raw := writeRaw(t, []string{rawRow(0, true), rawRow(1, true)})
	ds := config.Dataset{Name: "kdd", IDPrefix: "a", Labeled: true}
	dest := filepath.Join(t.TempDir(), "streams", "kdd")

	if err := os.MkdirAll(dest, 0o755); err != nil {
		t.Fatalf("MkdirAll: %v", err)
	}
	stale := filepath.Join(dest, "part-00099.csv")
	if err := os.WriteFile(stale, []byte("stale\n"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	if _, err := New(Config{Shards: 2}).Prepare(context.Background(), ds, file.NewLocal(raw), dest); err != nil {
		t.Fatalf("Prepare: %v", err)
	}

	if _, err := os.Stat(stale); !os.IsNotExist(err) {
		t.Fatal("stale part file survived the re-run")
	}
	parts, err := file.Parts(dest)
	if err != nil {
		t.Fatalf("Parts: %v", err)
	}
	if len(parts) != 2 {
		t.Fatalf("got %d part files, want 2", len(parts))
	}
}

// TestPrepare_SourceError verifies a missing raw file aborts with no shard
// set and no temp directory left behind.
func TestPrepare_SourceError(t *testing.T) {
	t.Parallel()

	ds := config.Dataset{Name: "kdd", IDPrefix: "a", Labeled: true}
	base := t.TempDir()
	dest := filepath.Join(base, "streams", "kdd")

	_, err := New(Config{Shards: 2}).Prepare(context.Background(), ds,
		file.NewLocal(filepath.Join(base, "absent")), dest)
	if err == nil {
		t.Fatal("expected error for missing source, got nil")
	}
	if _, serr := os.Stat(dest); !os.IsNotExist(serr) {
		t.Fatal("dest dir created despite failure")
	}
	if _, serr := os.Stat(dest + ".tmp"); !os.IsNotExist(serr) {
		t.Fatal("temp dir left behind")
	}
}
