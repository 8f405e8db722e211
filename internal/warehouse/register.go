package warehouse

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"golang.org/x/sync/errgroup"

	"kddprep/internal/config"
	"kddprep/internal/datasource/file"
	"kddprep/internal/parquet"
	"kddprep/internal/schema"
	"kddprep/internal/warehouse/ddl"
)

// Registrar turns a dataset's shard set into a registered table: it loads
// the shards into a staging table, materializes the table as a parquet file,
// and drops the staging table again. The parquet file is the durable,
// columnar form of the table; the staging table exists only to give the
// load a typed, SQL-checked funnel.
type Registrar struct {
	repo      Repository
	dialect   Dialect
	tableDir  string
	batchSize int
	chanBuf   int
}

// RegistrarConfig configures a Registrar. Zero values get defaults:
// batch size 500, channel buffer 256.
type RegistrarConfig struct {
	// TableDir is where parquet files are written, one per table.
	TableDir string

	// BatchSize is how many rows go into each bulk insert.
	BatchSize int

	// ChannelBuffer is the depth of the shard-reader to loader channel.
	ChannelBuffer int
}

// NewRegistrar returns a Registrar writing parquet files under cfg.TableDir.
func NewRegistrar(repo Repository, dialect Dialect, cfg RegistrarConfig) (*Registrar, error) {
	if repo == nil {
		return nil, fmt.Errorf("warehouse: registrar needs a repository")
	}
	if dialect.MapKind == nil || dialect.CreateTableSQL == nil || dialect.DropTableSQL == nil {
		return nil, fmt.Errorf("warehouse: registrar needs a complete dialect")
	}
	if cfg.TableDir == "" {
		return nil, fmt.Errorf("warehouse: registrar needs a table dir")
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 500
	}
	if cfg.ChannelBuffer <= 0 {
		cfg.ChannelBuffer = 256
	}
	return &Registrar{
		repo:      repo,
		dialect:   dialect,
		tableDir:  cfg.TableDir,
		batchSize: cfg.BatchSize,
		chanBuf:   cfg.ChannelBuffer,
	}, nil
}

// TableResult summarizes one registered table.
type TableResult struct {
	Dataset     string
	Table       string
	Loaded      int64
	Batches     int64
	BadRows     int64
	ParquetPath string
	ParquetRows int64
	Elapsed     time.Duration
}

// Register materializes one dataset's shard set at shardDir as the table
// named by ds.Table. Rows whose values cannot be coerced to their declared
// column types are counted and skipped, mirroring the fail-soft stance of
// the stream stage.
func (g *Registrar) Register(ctx context.Context, ds config.Dataset, shardDir string) (TableResult, error) {
	start := time.Now()
	staging := ds.Table + "_staging"
	cols := schema.Columns(ds.Labeled)
	names := schema.ColumnNames(ds.Labeled)

	// Fresh staging table per run.
	if err := g.repo.Exec(ctx, g.dialect.DropTableSQL(staging)); err != nil {
		return TableResult{}, fmt.Errorf("register %s: drop staging: %w", ds.Name, err)
	}
	create, err := g.dialect.CreateTableSQL(ddl.FromSchema(staging, ds.Labeled, g.dialect.MapKind))
	if err != nil {
		return TableResult{}, fmt.Errorf("register %s: %w", ds.Name, err)
	}
	if err := g.repo.Exec(ctx, create); err != nil {
		return TableResult{}, fmt.Errorf("register %s: create staging: %w", ds.Name, err)
	}

	parts, err := file.Parts(shardDir)
	if err != nil {
		return TableResult{}, fmt.Errorf("register %s: %w", ds.Name, err)
	}
	if len(parts) == 0 {
		return TableResult{}, fmt.Errorf("register %s: no shard files in %s", ds.Name, shardDir)
	}

	rows := make(chan []any, g.chanBuf)
	var (
		loaded  int64
		batches int64
		badRows int64
	)

	eg, gctx := errgroup.WithContext(ctx)
	eg.Go(func() error {
		defer close(rows)
		for _, part := range parts {
			n, err := readPart(gctx, part, cols, rows)
			badRows += n
			if err != nil {
				return err
			}
		}
		return nil
	})
	eg.Go(func() error {
		n, err := LoadBatches(gctx, names, rows, g.batchSize, func(ctx context.Context, columns []string, batch [][]any) (int64, error) {
			batches++
			return g.repo.CopyFrom(ctx, staging, columns, batch)
		})
		loaded = n
		return err
	})
	if err := eg.Wait(); err != nil {
		return TableResult{}, fmt.Errorf("register %s: load: %w", ds.Name, err)
	}

	// Materialize the staging table as parquet, scanning in id order.
	if err := os.MkdirAll(g.tableDir, 0o755); err != nil {
		return TableResult{}, fmt.Errorf("register %s: %w", ds.Name, err)
	}
	path := filepath.Join(g.tableDir, ds.Table+".parquet")
	pw, err := parquet.NewFileWriter(path, ds.Labeled)
	if err != nil {
		return TableResult{}, fmt.Errorf("register %s: %w", ds.Name, err)
	}
	if err := g.repo.SelectAll(ctx, staging, names, pw.WriteRow); err != nil {
		pw.Close()
		os.Remove(path)
		return TableResult{}, fmt.Errorf("register %s: scan staging: %w", ds.Name, err)
	}
	written := pw.Rows()
	if err := pw.Close(); err != nil {
		os.Remove(path)
		return TableResult{}, fmt.Errorf("register %s: %w", ds.Name, err)
	}

	if err := g.repo.Exec(ctx, g.dialect.DropTableSQL(staging)); err != nil {
		return TableResult{}, fmt.Errorf("register %s: drop staging: %w", ds.Name, err)
	}

	res := TableResult{
		Dataset:     ds.Name,
		Table:       ds.Table,
		Loaded:      loaded,
		Batches:     batches,
		BadRows:     badRows,
		ParquetPath: path,
		ParquetRows: written,
		Elapsed:     time.Since(start),
	}
	log.Printf("register: %s -> %s (%d loaded, %d bad, %d rows in %s, %s)",
		ds.Name, ds.Table, loaded, badRows, written, path, res.Elapsed.Round(time.Millisecond))
	return res, nil
}

// readPart streams one shard file into out, coercing values to their column
// kinds. It returns the number of rows skipped for coercion failures.
func readPart(ctx context.Context, path string, cols []schema.Field, out chan<- []any) (int64, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	var bad int64
	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	r.ReuseRecord = true

	for {
		rec, err := r.Read()
		if err == io.EOF {
			return bad, nil
		}
		if err != nil {
			return bad, fmt.Errorf("read %s: %w", path, err)
		}

		row, err := coerceRow(rec, cols)
		if err != nil {
			bad++
			continue
		}

		select {
		case out <- row:
		case <-ctx.Done():
			return bad, ctx.Err()
		}
	}
}

// coerceRow converts one CSV record into typed values in column order.
func coerceRow(rec []string, cols []schema.Field) ([]any, error) {
	if len(rec) != len(cols) {
		return nil, fmt.Errorf("row has %d fields, want %d", len(rec), len(cols))
	}
	row := make([]any, len(cols))
	for i, col := range cols {
		switch col.Kind {
		case schema.Float:
			f, err := strconv.ParseFloat(rec[i], 32)
			if err != nil {
				return nil, fmt.Errorf("column %s: %w", col.Name, err)
			}
			row[i] = float32(f)
		case schema.Short:
			n, err := strconv.ParseInt(rec[i], 10, 16)
			if err != nil {
				return nil, fmt.Errorf("column %s: %w", col.Name, err)
			}
			row[i] = int16(n)
		default:
			row[i] = rec[i]
		}
	}
	return row, nil
}
