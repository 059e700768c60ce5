package s3

import (
	"sort"
	"strings"
)

// dirEntry is one immediate child derived from the flat key space.
// For directories key carries the trailing slash.
type dirEntry struct {
	key   string
	isDir bool
}

// dirEntries derives the immediate children of prefix from the keys nested
// under it. A key "a/b/c.txt" under prefix "a/" contributes a single "a/b/"
// directory entry regardless of how many keys share that segment; a key
// "a/x.txt" contributes a file entry. The prefix's own marker is skipped.
// Results are sorted by key.
func dirEntries(prefix string, keys []string) []dirEntry {
	seen := make(map[string]bool)
	var entries []dirEntry

	for _, key := range keys {
		if key == prefix || !strings.HasPrefix(key, prefix) {
			continue
		}
		rest := key[len(prefix):]

		if i := strings.Index(rest, "/"); i >= 0 {
			// Nested key; the first segment is an immediate subdirectory.
			child := prefix + rest[:i+1]
			if !seen[child] {
				seen[child] = true
				entries = append(entries, dirEntry{key: child, isDir: true})
			}
			continue
		}

		if !seen[key] {
			seen[key] = true
			entries = append(entries, dirEntry{key: key, isDir: false})
		}
	}

	sort.Slice(entries, func(i, j int) bool { return entries[i].key < entries[j].key })
	return entries
}
