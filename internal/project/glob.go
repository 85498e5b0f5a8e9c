package project

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// ErrNoMatch is returned when a glob pattern matches no files
var ErrNoMatch = errors.New("pattern matched no files")

// Expand resolves patterns into file paths. Patterns without glob
// metacharacters are kept as-is; globs support ** and are expanded in sorted
// order. The result preserves pattern order and drops duplicates.
func Expand(patterns ...string) ([]string, error) {
	seen := make(map[string]bool)
	var paths []string

	add := func(path string) {
		if !seen[path] {
			seen[path] = true
			paths = append(paths, path)
		}
	}

	for _, pattern := range patterns {
		if !strings.ContainsAny(pattern, "*?[{") {
			add(pattern)
			continue
		}

		if !doublestar.ValidatePathPattern(pattern) {
			return nil, fmt.Errorf("invalid pattern %q: %w", pattern, doublestar.ErrBadPattern)
		}

		matches, err := doublestar.FilepathGlob(pattern, doublestar.WithFilesOnly())
		if err != nil {
			return nil, fmt.Errorf("failed to expand %q: %w", pattern, err)
		}
		if len(matches) == 0 {
			return nil, fmt.Errorf("%w: %s", ErrNoMatch, pattern)
		}

		sort.Strings(matches)
		for _, match := range matches {
			add(match)
		}
	}

	return paths, nil
}
