// Package secrets resolves named secrets from a scope, mirroring the
// scope/key lookup shape of managed secret stores.
//
// Resolution order for Get(scope, key):
//
//  1. Environment variable <SCOPE>_<KEY> (upper-cased, non-alphanumerics
//     mapped to underscores). This is the 12-factor path used in CI and
//     containers.
//  2. A JSON scope file <dir>/<scope>.json containing a flat string map,
//     when the resolver was constructed with a directory.
//
// Secrets never pass through the pipeline config file itself; the config
// names the scope and keys, and this package fetches the values.
package secrets

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Resolver resolves secrets from the environment and an optional directory
// of JSON scope files.
type Resolver struct {
	dir string

	// lookupEnv is injectable to make tests deterministic.
	lookupEnv func(string) (string, bool)
}

// Option is a functional option for NewResolver.
type Option func(*Resolver)

// WithLookupEnv overrides the environment lookup function. Intended for tests.
func WithLookupEnv(fn func(string) (string, bool)) Option {
	return func(r *Resolver) { r.lookupEnv = fn }
}

// NewResolver returns a Resolver backed by the environment and, when dir is
// non-empty, by JSON scope files under dir.
func NewResolver(dir string, opts ...Option) *Resolver {
	r := &Resolver{
		dir:       dir,
		lookupEnv: os.LookupEnv,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Get resolves the secret named key in the given scope. A missing secret is
// an error; stage 1 of the pipeline treats it as fatal.
func (r *Resolver) Get(scope, key string) (string, error) {
	if strings.TrimSpace(scope) == "" {
		return "", fmt.Errorf("secrets: scope must not be empty")
	}
	if strings.TrimSpace(key) == "" {
		return "", fmt.Errorf("secrets: key must not be empty")
	}

	if v, ok := r.lookupEnv(EnvName(scope, key)); ok && v != "" {
		return v, nil
	}

	if r.dir != "" {
		v, err := r.fromScopeFile(scope, key)
		if err != nil {
			return "", err
		}
		if v != "" {
			return v, nil
		}
	}

	return "", fmt.Errorf("secrets: %s/%s not found (env %s unset, no scope file entry)",
		scope, key, EnvName(scope, key))
}

// EnvName maps a scope/key pair onto the environment variable consulted
// first during resolution, e.g. ("storage_scope", "storage-key") →
// "STORAGE_SCOPE_STORAGE_KEY".
func EnvName(scope, key string) string {
	return sanitize(scope) + "_" + sanitize(key)
}

func sanitize(s string) string {
	var b strings.Builder
	for _, r := range strings.ToUpper(s) {
		if (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
			continue
		}
		b.WriteByte('_')
	}
	return b.String()
}

func (r *Resolver) fromScopeFile(scope, key string) (string, error) {
	path := filepath.Join(r.dir, scope+".json")
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", nil
		}
		return "", fmt.Errorf("secrets: read scope file %s: %w", path, err)
	}

	var m map[string]string
	if err := json.Unmarshal(data, &m); err != nil {
		return "", fmt.Errorf("secrets: parse scope file %s: %w", path, err)
	}
	return m[key], nil
}
