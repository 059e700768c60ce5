package crossfs

import (
	"strings"
)

// Separator is the canonical path separator. Backends with other separators
// translate at their own boundary.
const Separator = "/"

// Path is a normalized, backend-independent path: a slice of segments plus a
// flag recording whether the raw form carried a trailing separator (directory
// intent). The zero value is the root.
type Path struct {
	segments []string
	dir      bool
}

// ParsePath normalizes raw into a Path. Empty segments and "." are dropped,
// ".." consumes the previous segment, and a path that resolves above the root
// fails with ErrInvalidPath. Segments containing NUL or other control bytes
// are rejected. Parsing is idempotent: ParsePath(p.String()) yields p.
func ParsePath(raw string) (Path, error) {
	dir := strings.HasSuffix(raw, Separator) || raw == "" || raw == "."

	var segments []string
	for _, seg := range strings.Split(raw, Separator) {
		switch seg {
		case "", ".":
			continue
		case "..":
			if len(segments) == 0 {
				return Path{}, &PathError{Op: "parse", Path: raw, Err: ErrInvalidPath}
			}
			segments = segments[:len(segments)-1]
		default:
			if !validSegment(seg) {
				return Path{}, &PathError{Op: "parse", Path: raw, Err: ErrInvalidPath}
			}
			segments = append(segments, seg)
		}
	}

	if len(segments) == 0 {
		return Path{dir: true}, nil
	}
	return Path{segments: segments, dir: dir}, nil
}

// MustParsePath is ParsePath for statically known inputs; it panics on error.
func MustParsePath(raw string) Path {
	p, err := ParsePath(raw)
	if err != nil {
		panic(err)
	}
	return p
}

func validSegment(seg string) bool {
	for i := 0; i < len(seg); i++ {
		if seg[i] < 0x20 || seg[i] == 0x7f {
			return false
		}
	}
	return true
}

// String renders the canonical form: segments joined by the separator, with a
// trailing separator when the path is a directory. The root renders as "".
func (p Path) String() string {
	if len(p.segments) == 0 {
		return ""
	}
	s := strings.Join(p.segments, Separator)
	if p.dir {
		s += Separator
	}
	return s
}

// IsRoot reports whether p has no segments.
func (p Path) IsRoot() bool {
	return len(p.segments) == 0
}

// IsDir reports whether the raw form carried directory intent.
func (p Path) IsDir() bool {
	return p.dir
}

// AsDir returns p with directory intent set.
func (p Path) AsDir() Path {
	p.dir = true
	return p
}

// AsFile returns p with directory intent cleared. The root keeps it.
func (p Path) AsFile() Path {
	if len(p.segments) == 0 {
		return p
	}
	p.dir = false
	return p
}

// Base returns the final segment, or "" for the root.
func (p Path) Base() string {
	if len(p.segments) == 0 {
		return ""
	}
	return p.segments[len(p.segments)-1]
}

// Segments returns a copy of the segment slice.
func (p Path) Segments() []string {
	out := make([]string, len(p.segments))
	copy(out, p.segments)
	return out
}

// Parent returns the containing directory. The root has no parent.
func (p Path) Parent() (Path, error) {
	if len(p.segments) == 0 {
		return Path{}, &PathError{Op: "parent", Path: p.String(), Err: ErrInvalidPath}
	}
	return Path{segments: p.segments[:len(p.segments)-1], dir: true}, nil
}

// Join parses extra relative to p. ".." in extra may consume p's segments but
// never escapes the root.
func (p Path) Join(extra string) (Path, error) {
	return ParsePath(p.String() + Separator + extra)
}

// Equal reports whether the two paths name the same node. Directory intent is
// ignored: "a/b" and "a/b/" are the same node.
func (p Path) Equal(other Path) bool {
	return p.Compare(other) == 0
}

// Compare orders paths lexicographically segment by segment. It is the total
// order behind deterministic listings.
func (p Path) Compare(other Path) int {
	a, b := p.segments, other.segments
	for i := 0; i < len(a) && i < len(b); i++ {
		if a[i] != b[i] {
			if a[i] < b[i] {
				return -1
			}
			return 1
		}
	}
	switch {
	case len(a) < len(b):
		return -1
	case len(a) > len(b):
		return 1
	default:
		return 0
	}
}

// HasPrefix reports whether p is other or lies beneath it.
func (p Path) HasPrefix(other Path) bool {
	if len(other.segments) > len(p.segments) {
		return false
	}
	for i, seg := range other.segments {
		if p.segments[i] != seg {
			return false
		}
	}
	return true
}
