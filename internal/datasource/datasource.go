// Package datasource defines the byte-stream source contract shared by the
// fetch and stream stages. Sources hide where the bytes come from (HTTP
// mirror, local file) so stage code and tests stay interchangeable.
package datasource

import (
	"context"
	"io"
)

type Source interface {
	Open(ctx context.Context) (io.ReadCloser, error)
}
