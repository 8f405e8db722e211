// Package memblob implements an in-memory blob.Store. It backs the "mem"
// mount kind used by tests and local dry runs where no real object store is
// reachable.
package memblob

import (
	"bytes"
	"context"
	"io"
	"sort"
	"strings"
	"sync"

	"kddprep/internal/blob"
)

func init() {
	blob.Register("mem", func(ctx context.Context, cfg blob.Config) (blob.Store, error) {
		return New(), nil
	})
}

// Store is a concurrency-safe, map-backed blob.Store.
type Store struct {
	mu    sync.RWMutex
	blobs map[string][]byte
}

// New returns an empty in-memory store.
func New() *Store {
	return &Store{blobs: map[string][]byte{}}
}

// List implements blob.Store. Keys are returned sorted for deterministic
// tests.
func (s *Store) List(ctx context.Context, prefix string) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	var keys []string
	for k := range s.blobs {
		if strings.HasPrefix(k, prefix) {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	return keys, nil
}

// Download implements blob.Store.
func (s *Store) Download(ctx context.Context, key string) (io.ReadCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	data, ok := s.blobs[key]
	s.mu.RUnlock()
	if !ok {
		return nil, blob.ErrNotFound
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

// Upload implements blob.Store.
func (s *Store) Upload(ctx context.Context, key string, r io.Reader) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	data, err := io.ReadAll(r)
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.blobs[key] = data
	s.mu.Unlock()
	return nil
}

// Delete implements blob.Store.
func (s *Store) Delete(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	delete(s.blobs, key)
	s.mu.Unlock()
	return nil
}

// Len reports the number of stored blobs. Test helper.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.blobs)
}

// Bytes returns a copy of the blob at key, or nil when absent. Test helper.
func (s *Store) Bytes(key string) []byte {
	s.mu.RLock()
	defer s.mu.RUnlock()
	data, ok := s.blobs[key]
	if !ok {
		return nil
	}
	out := make([]byte, len(data))
	copy(out, data)
	return out
}
