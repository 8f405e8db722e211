package file

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Parts lists the shard part files under dir in lexical order. Only names of
// the form part-NNNNN.csv are returned; temp files and stray artifacts are
// ignored so a half-finished writer run cannot leak into a load.
func Parts(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("list parts in %s: %w", dir, err)
	}

	var parts []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		if strings.HasPrefix(name, "part-") && strings.HasSuffix(name, ".csv") {
			parts = append(parts, filepath.Join(dir, name))
		}
	}
	sort.Strings(parts)
	return parts, nil
}
