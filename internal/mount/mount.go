// Package mount binds remote blob containers to local staging directories.
//
// A Binding is the unit other stages work against: they write files under
// LocalDir and call Sync to push them to the container, or Pull to fetch a
// single remote object down. Mounting the same local path twice replaces the
// previous binding, so re-running the pipeline against a fresh container is
// a plain remount rather than an error.
package mount

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"kddprep/internal/blob"
)

// Binding is an established mount of one container at one local path.
type Binding struct {
	// Path is the logical mount point, unique per Manager.
	Path string

	// Container names the bound remote container.
	Container string

	// LocalDir is the staging directory backing the mount point.
	LocalDir string

	store blob.Store
}

// Manager tracks active bindings keyed by mount path.
type Manager struct {
	baseDir string

	mu       sync.Mutex
	bindings map[string]*Binding
}

// NewManager returns a Manager that places staging directories under baseDir.
func NewManager(baseDir string) *Manager {
	return &Manager{
		baseDir:  baseDir,
		bindings: map[string]*Binding{},
	}
}

// Mount binds the container behind store at the given mount path. An existing
// binding at the same path is unmounted first, so repeated runs converge on
// the new container. The store is probed with a List call before the binding
// is recorded; a container we cannot reach is not worth mounting.
func (m *Manager) Mount(ctx context.Context, path, container string, store blob.Store) (*Binding, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("mount: path must not be empty")
	}
	if store == nil {
		return nil, fmt.Errorf("mount: store must not be nil")
	}

	if _, err := store.List(ctx, ""); err != nil {
		return nil, fmt.Errorf("mount: probe container %s: %w", container, err)
	}

	localDir := filepath.Join(m.baseDir, pathToDir(path))
	if err := os.MkdirAll(localDir, 0o755); err != nil {
		return nil, fmt.Errorf("mount: create staging dir: %w", err)
	}

	b := &Binding{
		Path:      path,
		Container: container,
		LocalDir:  localDir,
		store:     store,
	}

	m.mu.Lock()
	if old, ok := m.bindings[path]; ok {
		log.Printf("mount: replacing binding at %s (was container %s)", path, old.Container)
	}
	m.bindings[path] = b
	m.mu.Unlock()

	return b, nil
}

// Unmount removes the binding at path. Unmounting a path that is not mounted
// is not an error. The staging directory is left in place; its contents may
// still be syncing or useful for inspection.
func (m *Manager) Unmount(path string) {
	m.mu.Lock()
	delete(m.bindings, path)
	m.mu.Unlock()
}

// Lookup returns the binding at path, if any.
func (m *Manager) Lookup(path string) (*Binding, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.bindings[path]
	return b, ok
}

// Mounts returns the active mount paths, for logging and diagnostics.
func (m *Manager) Mounts() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	paths := make([]string, 0, len(m.bindings))
	for p := range m.bindings {
		paths = append(paths, p)
	}
	return paths
}

// Sync uploads every regular file under LocalDir/relDir to the container,
// keyed by the slash-separated path relative to LocalDir. It returns the
// number of files uploaded.
func (b *Binding) Sync(ctx context.Context, relDir string) (int, error) {
	root := filepath.Join(b.LocalDir, filepath.FromSlash(relDir))

	var uploaded int
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}

		rel, err := filepath.Rel(b.LocalDir, path)
		if err != nil {
			return err
		}
		key := filepath.ToSlash(rel)

		f, err := os.Open(path)
		if err != nil {
			return err
		}
		defer f.Close()

		if err := b.store.Upload(ctx, key, f); err != nil {
			return fmt.Errorf("upload %s: %w", key, err)
		}
		uploaded++
		return nil
	})
	if err != nil {
		return uploaded, fmt.Errorf("mount: sync %s: %w", relDir, err)
	}
	return uploaded, nil
}

// Pull downloads the remote object at key into the matching path under
// LocalDir, creating parent directories as needed.
func (b *Binding) Pull(ctx context.Context, key string) (string, error) {
	rc, err := b.store.Download(ctx, key)
	if err != nil {
		return "", fmt.Errorf("mount: pull %s: %w", key, err)
	}
	defer rc.Close()

	dest := filepath.Join(b.LocalDir, filepath.FromSlash(key))
	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return "", fmt.Errorf("mount: pull %s: %w", key, err)
	}

	f, err := os.Create(dest)
	if err != nil {
		return "", fmt.Errorf("mount: pull %s: %w", key, err)
	}
	if _, err := io.Copy(f, rc); err != nil {
		f.Close()
		return "", fmt.Errorf("mount: pull %s: %w", key, err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("mount: pull %s: %w", key, err)
	}
	return dest, nil
}

// pathToDir maps a mount path like "/mnt/kdd" onto a directory name that is
// safe on every filesystem.
func pathToDir(path string) string {
	trimmed := strings.Trim(path, "/")
	if trimmed == "" {
		return "root"
	}
	return strings.ReplaceAll(trimmed, "/", "_")
}
