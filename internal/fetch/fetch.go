// Package fetch downloads dataset archives and lands them as raw files
// under the mount staging directory. Archives ending in .gz are decompressed
// on the fly while streaming, so the compressed form never touches disk.
//
// Downloads land in a temp file next to the destination and are renamed into
// place only on success, so an interrupted run never leaves a truncated raw
// file that a later stage would happily stream.
package fetch

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/klauspost/compress/gzip"
	"golang.org/x/sync/errgroup"

	"kddprep/internal/config"
	"kddprep/internal/datasource"
	"kddprep/internal/datasource/httpds"
)

// Fetcher downloads datasets through an HTTP client into a base directory.
type Fetcher struct {
	client  *httpds.Client
	baseDir string

	// open is injectable so tests can substitute a local source.
	open func(url string) datasource.Source
}

// New returns a Fetcher writing raw files under baseDir.
func New(client *httpds.Client, baseDir string) *Fetcher {
	f := &Fetcher{
		client:  client,
		baseDir: baseDir,
	}
	f.open = func(url string) datasource.Source {
		return httpds.NewSource(f.client, url)
	}
	return f
}

// Result describes one landed dataset.
type Result struct {
	Dataset string
	Path    string
	Bytes   int64
	Elapsed time.Duration
}

// Fetch downloads one dataset and lands it at its configured raw file path.
// Existing raw files are replaced; re-running the pipeline refreshes the data.
func (f *Fetcher) Fetch(ctx context.Context, ds config.Dataset) (Result, error) {
	start := time.Now()

	dest := filepath.Join(f.baseDir, filepath.FromSlash(ds.RawFile))
	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return Result{}, fmt.Errorf("fetch %s: %w", ds.Name, err)
	}

	rc, err := f.open(ds.URL).Open(ctx)
	if err != nil {
		return Result{}, fmt.Errorf("fetch %s: open %s: %w", ds.Name, ds.URL, err)
	}
	defer rc.Close()

	var src io.Reader = rc
	if strings.HasSuffix(ds.URL, ".gz") {
		gz, err := gzip.NewReader(rc)
		if err != nil {
			return Result{}, fmt.Errorf("fetch %s: gzip: %w", ds.Name, err)
		}
		defer gz.Close()
		src = gz
	}

	n, err := writeAtomic(dest, src)
	if err != nil {
		return Result{}, fmt.Errorf("fetch %s: %w", ds.Name, err)
	}

	res := Result{
		Dataset: ds.Name,
		Path:    dest,
		Bytes:   n,
		Elapsed: time.Since(start),
	}
	log.Printf("fetch: %s -> %s (%d bytes in %s)", ds.Name, dest, n, res.Elapsed.Round(time.Millisecond))
	return res, nil
}

// FetchAll downloads every dataset concurrently. The first failure cancels
// the remaining downloads; a half-fetched run is not worth streaming.
func (f *Fetcher) FetchAll(ctx context.Context, datasets []config.Dataset) ([]Result, error) {
	results := make([]Result, len(datasets))

	g, ctx := errgroup.WithContext(ctx)
	for i, ds := range datasets {
		i, ds := i, ds
		g.Go(func() error {
			res, err := f.Fetch(ctx, ds)
			if err != nil {
				return err
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// writeAtomic streams src into dest via a sibling temp file and rename.
func writeAtomic(dest string, src io.Reader) (int64, error) {
	tmp, err := os.CreateTemp(filepath.Dir(dest), filepath.Base(dest)+".tmp-*")
	if err != nil {
		return 0, err
	}
	tmpName := tmp.Name()

	w := bufio.NewWriterSize(tmp, 1<<20)
	n, err := io.Copy(w, src)
	if err == nil {
		err = w.Flush()
	}
	if cerr := tmp.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		os.Remove(tmpName)
		return 0, err
	}

	if err := os.Rename(tmpName, dest); err != nil {
		os.Remove(tmpName)
		return 0, err
	}
	return n, nil
}
