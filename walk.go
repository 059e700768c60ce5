package crossfs

import (
	"context"
	"sort"
	"strings"

	"github.com/gobwas/glob"
)

// SortByPath orders entries lexicographically by normalized path. List
// results pass through here so callers see the same order regardless of
// backend page order.
func SortByPath(entries []FileInfo) {
	sort.Slice(entries, func(i, j int) bool {
		a, aerr := ParsePath(entries[i].Path)
		b, berr := ParsePath(entries[j].Path)
		if aerr != nil || berr != nil {
			return entries[i].Path < entries[j].Path
		}
		return a.Compare(b) < 0
	})
}

// ListFiles returns every file whose path starts with prefix, directories
// excluded, sorted. The prefix need not name a directory: "logs/app" matches
// "logs/app.log" and "logs/app/2024.log" alike.
func ListFiles(ctx context.Context, fs FileReader, prefix string) ([]FileInfo, error) {
	p, err := ParsePath(prefix)
	if err != nil {
		return nil, WrapPathErr("list", prefix, err)
	}

	// Walk from the deepest directory that certainly contains all matches:
	// the prefix itself when it names a directory, its parent otherwise.
	start := p
	if !p.IsRoot() && !p.IsDir() {
		start, _ = p.Parent()
	}

	if !start.IsRoot() {
		ok, err := fs.DirExists(ctx, start.AsFile().String())
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, nil
		}
	}

	entries, err := fs.ListContents(ctx, start.AsFile().String(), true)
	if err != nil {
		return nil, err
	}

	want := p.AsFile().String()
	var out []FileInfo
	for _, e := range entries {
		if e.IsDir {
			continue
		}
		ep, err := ParsePath(e.Path)
		if err != nil {
			continue
		}
		if strings.HasPrefix(ep.AsFile().String(), want) {
			out = append(out, e)
		}
	}
	SortByPath(out)
	return out, nil
}

// Glob returns every file under dir whose path matches pattern. Patterns use
// gobwas/glob syntax with '/' as the separator, so "*" stays within one
// directory level and "**" crosses levels.
func Glob(ctx context.Context, fs FileReader, dir, pattern string) ([]FileInfo, error) {
	g, err := glob.Compile(pattern, '/')
	if err != nil {
		return nil, WrapPathErr("glob", pattern, ErrInvalidPath)
	}

	p, perr := ParsePath(dir)
	if perr != nil {
		return nil, WrapPathErr("glob", dir, perr)
	}

	entries, err := fs.ListContents(ctx, p.AsFile().String(), true)
	if err != nil {
		return nil, err
	}

	var out []FileInfo
	for _, e := range entries {
		if e.IsDir {
			continue
		}
		ep, err := ParsePath(e.Path)
		if err != nil {
			continue
		}
		// Match against the path relative to dir.
		rel := ep.AsFile().String()
		if !p.IsRoot() {
			rel = strings.TrimPrefix(rel, p.AsFile().String()+Separator)
		}
		if g.Match(rel) {
			out = append(out, e)
		}
	}
	SortByPath(out)
	return out, nil
}
