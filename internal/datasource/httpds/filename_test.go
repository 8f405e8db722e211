package httpds

import (
	"strings"
	"testing"
)

func TestSafeFilenameFromURL(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		url  string
		want string
	}{
		{
			name: "archive path",
			url:  "http://kdd.ics.uci.edu/databases/kddcup99/kddcup.data.gz",
			want: "kddcup.data.gz",
		},
		{
			name: "unlabeled archive",
			url:  "http://kdd.ics.uci.edu/databases/kddcup99/kddcup.testdata.unlabeled.gz",
			want: "kddcup.testdata.unlabeled.gz",
		},
		{
			name: "unsafe characters collapsed",
			url:  "http://example.com/data%20set(v2).gz",
			want: "data_set_v2_.gz",
		},
	}
	for _, c := range cases {
		c := c
		t.Run(c.name, func(t *testing.T) {
			t.Parallel()
			if got := SafeFilenameFromURL(c.url); got != c.want {
				t.Fatalf("SafeFilenameFromURL(%q) = %q, want %q", c.url, got, c.want)
			}
		})
	}
}

// TestSafeFilenameFromURL_FallsBackToHash verifies that URLs without a usable
// path segment hash the whole URL instead.
func TestSafeFilenameFromURL_FallsBackToHash(t *testing.T) {
	t.Parallel()

	got := SafeFilenameFromURL("http://example.com/")
	if got != HashString("http://example.com/") {
		t.Fatalf("got %q, want hash fallback", got)
	}
	if len(got) != 40 || strings.ContainsAny(got, "/:") {
		t.Fatalf("hash fallback %q is not a sha1 hex digest", got)
	}
}

func TestHashString_Stable(t *testing.T) {
	t.Parallel()

	a := HashString("kddcup.data.gz")
	b := HashString("kddcup.data.gz")
	if a != b {
		t.Fatalf("HashString not deterministic: %q vs %q", a, b)
	}
	if a == HashString("kddcup.testdata.unlabeled.gz") {
		t.Fatal("distinct inputs hashed equal")
	}
}
