package secrets

import (
	"os"
	"path/filepath"
	"testing"
)

// TestGet_EnvFirst verifies that an environment variable wins over a scope
// file entry for the same scope/key.
func TestGet_EnvFirst(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeScopeFile(t, dir, "storage_scope", `{"storage_account":"from-file"}`)

	env := map[string]string{"STORAGE_SCOPE_STORAGE_ACCOUNT": "from-env"}
	r := NewResolver(dir, WithLookupEnv(func(k string) (string, bool) {
		v, ok := env[k]
		return v, ok
	}))

	got, err := r.Get("storage_scope", "storage_account")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got != "from-env" {
		t.Fatalf("got %q, want from-env", got)
	}
}

// TestGet_ScopeFileFallback verifies resolution from a JSON scope file when
// the environment does not provide the secret.
func TestGet_ScopeFileFallback(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeScopeFile(t, dir, "storage_scope", `{"storage_key":"s3cret"}`)

	r := NewResolver(dir, WithLookupEnv(func(string) (string, bool) { return "", false }))

	got, err := r.Get("storage_scope", "storage_key")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got != "s3cret" {
		t.Fatalf("got %q, want s3cret", got)
	}
}

// TestGet_Missing verifies that a secret absent from both sources is an error.
func TestGet_Missing(t *testing.T) {
	t.Parallel()

	r := NewResolver(t.TempDir(), WithLookupEnv(func(string) (string, bool) { return "", false }))

	if _, err := r.Get("storage_scope", "nope"); err == nil {
		t.Fatal("expected error for missing secret, got nil")
	}
}

// TestGet_MalformedScopeFile verifies that a broken scope file surfaces as an
// error rather than being treated as missing.
func TestGet_MalformedScopeFile(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeScopeFile(t, dir, "storage_scope", `{not json`)

	r := NewResolver(dir, WithLookupEnv(func(string) (string, bool) { return "", false }))

	if _, err := r.Get("storage_scope", "storage_key"); err == nil {
		t.Fatal("expected error for malformed scope file, got nil")
	}
}

func TestEnvName(t *testing.T) {
	t.Parallel()

	cases := []struct {
		scope, key, want string
	}{
		{"storage_scope", "storage_account", "STORAGE_SCOPE_STORAGE_ACCOUNT"},
		{"storage-scope", "access.key", "STORAGE_SCOPE_ACCESS_KEY"},
	}
	for _, c := range cases {
		if got := EnvName(c.scope, c.key); got != c.want {
			t.Errorf("EnvName(%q,%q) = %q, want %q", c.scope, c.key, got, c.want)
		}
	}
}

func writeScopeFile(t *testing.T, dir, scope, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, scope+".json"), []byte(content), 0o600); err != nil {
		t.Fatalf("write scope file: %v", err)
	}
}
