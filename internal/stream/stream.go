// Package stream turns a raw dataset file into sharded CSV part files with
// an injected leading id column.
//
// One reader goroutine parses the raw file and assigns each row an id of the
// form <prefix><counter>; the id hashes onto one of N shard channels, each
// drained by its own writer goroutine into part-NNNNN.csv. Writers fan out
// under an errgroup, and the finished shard set replaces any previous one
// atomically (write to a sibling temp dir, then rename).
//
// Malformed rows are fail-soft: they are counted and sampled, never written,
// and never abort the run. Everything else aborts on first error.
package stream

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
	"kddprep/internal/datasource"
	"kddprep/internal/schema"
)

// Config tunes the streamer. Zero values get defaults: 20 shards, channel
// buffer 256, 5 error samples.
type Config struct {
	// Shards is the number of part files to produce.
	Shards int

	// ChannelBuffer is the per-shard channel depth between the reader and
	// each writer.
	ChannelBuffer int

	// MaxErrorSamples caps how many malformed rows are kept verbatim for the
	// run summary.
	MaxErrorSamples int
}

// Streamer shards datasets according to its Config.
type Streamer struct {
	shards     int
	chanBuf    int
	maxSamples int
}

// New returns a Streamer, applying defaults for zero config values.
func New(cfg Config) *Streamer {
	if cfg.Shards <= 0 {
		cfg.Shards = 20
	}
	if cfg.ChannelBuffer <= 0 {
		cfg.ChannelBuffer = 256
	}
	if cfg.MaxErrorSamples <= 0 {
		cfg.MaxErrorSamples = 5
	}
	return &Streamer{
		shards:     cfg.Shards,
		chanBuf:    cfg.ChannelBuffer,
		maxSamples: cfg.MaxErrorSamples,
	}
}

// Result summarizes one sharded dataset.
type Result struct {
	Dataset    string
	Rows       int64
	BadRows    int64
	Shards     int
	OutDir     string
	Elapsed    time.Duration
	ErrSamples []string
}

// Prepare reads the dataset from src, injects ids, and writes the shard set
// to destDir. An existing shard set at destDir is replaced only after the
// new one is complete.
func (s *Streamer) Prepare(ctx context.Context, ds config.Dataset, src datasource.Source, destDir string) (Result, error) {
	start := time.Now()
	width := schema.RawWidth(ds.Labeled)

	rc, err := src.Open(ctx)
	if err != nil {
		return Result{}, fmt.Errorf("stream %s: %w", ds.Name, err)
	}
	defer rc.Close()

	tmpDir := destDir + ".tmp"
	if err := os.RemoveAll(tmpDir); err != nil {
		return Result{}, fmt.Errorf("stream %s: %w", ds.Name, err)
	}
	if err := os.MkdirAll(tmpDir, 0o755); err != nil {
		return Result{}, fmt.Errorf("stream %s: %w", ds.Name, err)
	}

	chans := make([]chan []string, s.shards)
	for i := range chans {
		chans[i] = make(chan []string, s.chanBuf)
	}

	g, gctx := errgroup.WithContext(ctx)

	// One writer per shard. Every part file is created even when no row
	// hashes into it, so downstream loaders always see a full shard set.
	for i := range chans {
		i := i
		g.Go(func() error {
			return writeShard(gctx, filepath.Join(tmpDir, partName(i)), chans[i])
		})
	}

	var (
		nexter  Nexter
		rows    int64
		badRows int64
		samples []string
	)

	g.Go(func() error {
		defer func() {
			for _, ch := range chans {
				close(ch)
			}
		}()

		r := csv.NewReader(rc)
		r.FieldsPerRecord = -1
		r.ReuseRecord = true

		for {
			rec, err := r.Read()
			if err == io.EOF {
				return nil
			}
			if err != nil {
				return fmt.Errorf("read raw row: %w", err)
			}

			if len(rec) != width {
				badRows++
				if len(samples) < s.maxSamples {
					samples = append(samples, fmt.Sprintf("row %d: %d fields, want %d",
						rows+badRows, len(rec), width))
				}
				continue
			}

			id := ds.IDPrefix + strconv.FormatUint(nexter.Next(), 10)
			row := make([]string, 0, width+1)
			row = append(row, id)
			row = append(row, rec...)

			select {
			case chans[ShardFor(id, s.shards)] <- row:
				rows++
			case <-gctx.Done():
				return gctx.Err()
			}
		}
	})

	if err := g.Wait(); err != nil {
		os.RemoveAll(tmpDir)
		return Result{}, fmt.Errorf("stream %s: %w", ds.Name, err)
	}

	if err := os.RemoveAll(destDir); err != nil {
		os.RemoveAll(tmpDir)
		return Result{}, fmt.Errorf("stream %s: %w", ds.Name, err)
	}
	if err := os.Rename(tmpDir, destDir); err != nil {
		os.RemoveAll(tmpDir)
		return Result{}, fmt.Errorf("stream %s: %w", ds.Name, err)
	}

	res := Result{
		Dataset:    ds.Name,
		Rows:       rows,
		BadRows:    badRows,
		Shards:     s.shards,
		OutDir:     destDir,
		Elapsed:    time.Since(start),
		ErrSamples: samples,
	}
	log.Printf("stream: %s -> %s (%d rows, %d bad, %d shards in %s)",
		ds.Name, destDir, rows, badRows, s.shards, res.Elapsed.Round(time.Millisecond))
	return res, nil
}

// writeShard drains rows into one CSV part file.
func writeShard(ctx context.Context, path string, rows <-chan []string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}

	w := csv.NewWriter(f)
	for row := range rows {
		if err := ctx.Err(); err != nil {
			f.Close()
			return err
		}
		if err := w.Write(row); err != nil {
			f.Close()
			return fmt.Errorf("write %s: %w", path, err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		f.Close()
		return fmt.Errorf("flush %s: %w", path, err)
	}
	return f.Close()
}

func partName(i int) string {
	return fmt.Sprintf("part-%05d.csv", i)
}
