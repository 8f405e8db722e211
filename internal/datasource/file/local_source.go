// Package file implements the local filesystem datasource backing the
// stream stage: raw dataset files land on disk first, then get read back
// row by row. It also lists finished shard part files for the load stage.
package file

import (
	"context"
	"fmt"
	"io"
	"os"
)

// Local opens a single file from the local disk.
type Local struct{ path string }

// NewLocal returns a Local datasource bound to path. Concurrent Opens are
// fine; each returns its own descriptor.
func NewLocal(path string) *Local { return &Local{path: path} }

// Open opens the configured path for reading. A canceled context returns
// immediately without touching the filesystem; filesystem errors are wrapped
// with the path while keeping errors.Is(err, os.ErrNotExist) usable.
func (l *Local) Open(ctx context.Context) (io.ReadCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f, err := os.Open(l.path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", l.path, err)
	}
	return f, nil
}
