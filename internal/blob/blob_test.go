package blob

import (
	"context"
	"io"
	"strings"
	"testing"
)

type stubStore struct{}

func (stubStore) List(context.Context, string) ([]string, error)          { return nil, nil }
func (stubStore) Download(context.Context, string) (io.ReadCloser, error) { return nil, ErrNotFound }
func (stubStore) Upload(context.Context, string, io.Reader) error         { return nil }
func (stubStore) Delete(context.Context, string) error                    { return nil }

func TestNewUnknownKind(t *testing.T) {
	t.Parallel()

	_, err := New(context.Background(), Config{Kind: "bogus"})
	if err == nil {
		t.Fatal("expected error for unregistered kind, got nil")
	}
	if !strings.Contains(err.Error(), "bogus") {
		t.Errorf("error %q does not name the kind", err)
	}
}

func TestRegisterAndNew(t *testing.T) {
	t.Parallel()

	Register("stub", func(ctx context.Context, cfg Config) (Store, error) {
		return stubStore{}, nil
	})

	s, err := New(context.Background(), Config{Kind: "stub"})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if _, ok := s.(stubStore); !ok {
		t.Fatalf("New returned %T, want stubStore", s)
	}
}
