package crossfs

import (
	"errors"
	"testing"
)

func TestParsePath(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{"empty is root", "", ""},
		{"slash is root", "/", ""},
		{"dot is root", ".", ""},
		{"simple", "a/b", "a/b"},
		{"leading slash dropped", "/a/b", "a/b"},
		{"trailing slash kept as dir", "a/b/", "a/b/"},
		{"double slashes collapsed", "a//b", "a/b"},
		{"dot segments dropped", "a/./b", "a/b"},
		{"dotdot consumes previous", "a/../b", "b"},
		{"dotdot mid path", "a/b/../c", "a/c"},
		{"dotdot to root then down", "a/../b/c", "b/c"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := ParsePath(tt.raw)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got := p.String(); got != tt.want {
				t.Errorf("ParsePath(%q).String() = %q, want %q", tt.raw, got, tt.want)
			}
		})
	}
}

func TestParsePathIdempotent(t *testing.T) {
	for _, raw := range []string{"", "/", "a", "a/b/", "x//y/./z", "a/../b"} {
		p, err := ParsePath(raw)
		if err != nil {
			t.Fatalf("ParsePath(%q): %v", raw, err)
		}
		again, err := ParsePath(p.String())
		if err != nil {
			t.Fatalf("re-parse of %q: %v", p.String(), err)
		}
		if again.String() != p.String() {
			t.Errorf("not idempotent: %q -> %q -> %q", raw, p.String(), again.String())
		}
	}
}

func TestParsePathRejectsEscape(t *testing.T) {
	for _, raw := range []string{"..", "../a", "a/../..", "a/../../b"} {
		_, err := ParsePath(raw)
		if !errors.Is(err, ErrInvalidPath) {
			t.Errorf("ParsePath(%q): expected ErrInvalidPath, got %v", raw, err)
		}
	}
}

func TestParsePathRejectsControlBytes(t *testing.T) {
	for _, raw := range []string{"a\x00b", "dir/\x01name", "a\x7fb"} {
		_, err := ParsePath(raw)
		if !errors.Is(err, ErrInvalidPath) {
			t.Errorf("ParsePath(%q): expected ErrInvalidPath, got %v", raw, err)
		}
	}
}

func TestPathParentBaseJoin(t *testing.T) {
	p := MustParsePath("a/b/c")

	if p.Base() != "c" {
		t.Errorf("Base = %q, want c", p.Base())
	}

	parent, err := p.Parent()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if parent.String() != "a/b/" {
		t.Errorf("Parent = %q, want a/b/", parent.String())
	}

	joined, err := p.Join("../d")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if joined.String() != "a/b/d" {
		t.Errorf("Join(../d) = %q, want a/b/d", joined.String())
	}

	if _, err := MustParsePath("").Parent(); !errors.Is(err, ErrInvalidPath) {
		t.Errorf("root Parent: expected ErrInvalidPath, got %v", err)
	}
	if _, err := p.Join("../../../../x"); !errors.Is(err, ErrInvalidPath) {
		t.Errorf("escaping Join: expected ErrInvalidPath, got %v", err)
	}
}

func TestPathCompare(t *testing.T) {
	tests := []struct {
		a, b string
		want int
	}{
		{"a", "a", 0},
		{"a", "a/", 0}, // dir intent ignored
		{"a", "b", -1},
		{"b", "a", 1},
		{"a", "a/b", -1},
		{"a/b", "a", 1},
		{"a/b", "a/c", -1},
		{"a2/x", "a10/x", 1}, // plain lexicographic, not numeric
	}
	for _, tt := range tests {
		pa, pb := MustParsePath(tt.a), MustParsePath(tt.b)
		if got := pa.Compare(pb); got != tt.want {
			t.Errorf("Compare(%q, %q) = %d, want %d", tt.a, tt.b, got, tt.want)
		}
	}

	if !MustParsePath("a/b").Equal(MustParsePath("a/b/")) {
		t.Error("expected a/b and a/b/ to be equal")
	}
}

func TestPathHasPrefix(t *testing.T) {
	tests := []struct {
		p, prefix string
		want      bool
	}{
		{"a/b/c", "a/b", true},
		{"a/b", "a/b", true},
		{"a/b", "a/b/c", false},
		{"ab/c", "a", false}, // segment boundary, not string prefix
		{"a/b", "", true},    // everything is under the root
	}
	for _, tt := range tests {
		p, prefix := MustParsePath(tt.p), MustParsePath(tt.prefix)
		if got := p.HasPrefix(prefix); got != tt.want {
			t.Errorf("HasPrefix(%q, %q) = %t, want %t", tt.p, tt.prefix, got, tt.want)
		}
	}
}

func TestPathDirFile(t *testing.T) {
	p := MustParsePath("a/b/")
	if !p.IsDir() {
		t.Error("expected dir intent")
	}
	if p.AsFile().String() != "a/b" {
		t.Errorf("AsFile = %q, want a/b", p.AsFile().String())
	}
	if p.AsFile().AsDir().String() != "a/b/" {
		t.Errorf("AsDir = %q, want a/b/", p.AsFile().AsDir().String())
	}

	root := MustParsePath("/")
	if !root.IsRoot() || !root.IsDir() {
		t.Error("expected root to be a directory")
	}
	if root.AsFile().String() != "" {
		t.Errorf("root AsFile = %q, want empty", root.AsFile().String())
	}
}
