package httpds

import (
	"crypto/sha1"
	"encoding/hex"
	"net/url"
	"path"
	"regexp"
)

// filenameCleaner replaces runs of characters outside [a-zA-Z0-9._-] with "_".
var filenameCleaner = regexp.MustCompile(`[^a-zA-Z0-9._-]+`)

// HashString returns a stable SHA1 hex digest of s, used as a deterministic
// filename when the URL carries no usable name.
func HashString(s string) string {
	h := sha1.Sum([]byte(s))
	return hex.EncodeToString(h[:])
}

// SafeFilenameFromURL derives a filesystem-safe filename from a raw URL.
// Dataset URLs name their archive in the last path segment (kddcup.data.gz),
// so that segment is preferred; when the URL cannot be parsed or the segment
// is empty, the whole URL is hashed instead.
func SafeFilenameFromURL(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return HashString(rawURL)
	}

	base := path.Base(u.Path)
	if base == "." || base == "/" || base == "" {
		return HashString(rawURL)
	}

	clean := filenameCleaner.ReplaceAllString(base, "_")
	if clean == "" || clean == "." {
		return HashString(rawURL)
	}
	return clean
}
