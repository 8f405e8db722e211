// Package blob defines the storage-agnostic contract for remote blob
// containers and a small factory so callers can select a backend by kind
// without importing driver packages directly.
//
// Backends (S3, in-memory, etc.) register a Factory for their kind at init
// time; importing kddprep/internal/blob/all wires in every built-in backend.
// This mirrors the registration pattern used by the warehouse package.
package blob

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
)

// ErrNotFound is returned by Download for keys absent from the container.
// Backends wrap their driver-specific "no such key" conditions into this
// sentinel so callers can use errors.Is.
var ErrNotFound = errors.New("blob: key not found")

// Store is a remote blob container. Keys use forward slashes regardless of
// the local OS.
type Store interface {
	// List returns the keys under prefix, in unspecified order.
	List(ctx context.Context, prefix string) ([]string, error)

	// Download opens the blob at key for reading. The caller must close the
	// returned reader. A missing key yields ErrNotFound.
	Download(ctx context.Context, key string) (io.ReadCloser, error)

	// Upload writes the blob at key, replacing any existing content.
	Upload(ctx context.Context, key string, r io.Reader) error

	// Delete removes the blob at key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
}

// Config carries everything a backend needs to open a container.
type Config struct {
	// Kind selects the registered backend ("s3", "mem").
	Kind string

	// Container is the bucket/container name.
	Container string

	// Account and Key are the storage credentials resolved from the secret
	// scope. Their interpretation is backend-specific.
	Account string
	Key     string

	// Region is used by backends that require one.
	Region string

	// Endpoint optionally overrides the service endpoint (S3-compatible
	// stores, local test stacks).
	Endpoint string
}

// Factory opens a Store for the given configuration.
type Factory func(ctx context.Context, cfg Config) (Store, error)

var (
	mu        sync.RWMutex
	factories = map[string]Factory{}
)

// Register registers (or replaces) the Factory for a store kind. It is
// typically called from backend packages' init() functions.
func Register(kind string, fn Factory) {
	mu.Lock()
	defer mu.Unlock()
	factories[kind] = fn
}

// New opens a Store using the factory registered for cfg.Kind.
func New(ctx context.Context, cfg Config) (Store, error) {
	mu.RLock()
	fn, ok := factories[cfg.Kind]
	mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("blob: no store registered for kind=%q", cfg.Kind)
	}
	return fn(ctx, cfg)
}
