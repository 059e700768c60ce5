package crossfs_test

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/crossfs/crossfs"
	"github.com/crossfs/crossfs/driver/memory"
)

func newMemRoot(t *testing.T) *crossfs.Root {
	t.Helper()
	return crossfs.NewRoot("test", memory.New())
}

func TestRootRoundTrip(t *testing.T) {
	ctx := context.Background()
	root := newMemRoot(t)

	if err := root.Write(ctx, "docs/readme.md", strings.NewReader("# hello")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	data, err := root.Read(ctx, "docs/readme.md")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(data) != "# hello" {
		t.Errorf("unexpected content: %q", data)
	}

	// Raw path variants resolve to the same node.
	for _, variant := range []string{"/docs/readme.md", "docs//readme.md", "docs/./readme.md", "docs/x/../readme.md"} {
		data, err := root.Read(ctx, variant)
		if err != nil {
			t.Fatalf("Read(%q): %v", variant, err)
		}
		if string(data) != "# hello" {
			t.Errorf("Read(%q): unexpected content %q", variant, data)
		}
	}
}

func TestRootRejectsEscapingPaths(t *testing.T) {
	ctx := context.Background()
	root := newMemRoot(t)

	err := root.Write(ctx, "../outside.txt", strings.NewReader("x"))
	if !errors.Is(err, crossfs.ErrInvalidPath) {
		t.Errorf("expected ErrInvalidPath, got: %v", err)
	}
	_, err = root.Read(ctx, "a/../../b")
	if !errors.Is(err, crossfs.ErrInvalidPath) {
		t.Errorf("expected ErrInvalidPath, got: %v", err)
	}
}

func TestRootExists(t *testing.T) {
	ctx := context.Background()
	root := newMemRoot(t)

	if err := root.Write(ctx, "dir/file.txt", strings.NewReader("x")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	tests := []struct {
		path string
		want bool
	}{
		{"dir/file.txt", true},
		{"dir", true}, // implicit directory
		{"dir/", true},
		{"missing.txt", false},
		{"dir/missing", false},
	}
	for _, tt := range tests {
		got, err := root.Exists(ctx, tt.path)
		if err != nil {
			t.Fatalf("Exists(%q): %v", tt.path, err)
		}
		if got != tt.want {
			t.Errorf("Exists(%q) = %t, want %t", tt.path, got, tt.want)
		}
	}
}

func TestRootReadRange(t *testing.T) {
	ctx := context.Background()
	root := newMemRoot(t)

	if err := root.Write(ctx, "data.bin", strings.NewReader("abcdefgh")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	data, err := root.ReadRange(ctx, "data.bin", 2, 4)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(data) != "cdef" {
		t.Errorf("expected 'cdef', got %q", data)
	}

	data, err = root.ReadRange(ctx, "data.bin", 5, -1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(data) != "fgh" {
		t.Errorf("expected 'fgh', got %q", data)
	}
}

func TestRootListSorted(t *testing.T) {
	ctx := context.Background()
	root := newMemRoot(t)

	for _, f := range []string{"b.txt", "a.txt", "c/nested.txt"} {
		if err := root.Write(ctx, f, strings.NewReader("x")); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	entries, err := root.List(ctx, "/")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var got []string
	for _, e := range entries {
		got = append(got, e.Path)
	}
	want := []string{"a.txt", "b.txt", "c"}
	if len(got) != len(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, got)
		}
	}
}

func TestRootDelete(t *testing.T) {
	ctx := context.Background()
	root := newMemRoot(t)

	if err := root.Write(ctx, "dir/file.txt", strings.NewReader("x")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	t.Run("file", func(t *testing.T) {
		if err := root.Delete(ctx, "dir/file.txt", false); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		exists, _ := root.Exists(ctx, "dir/file.txt")
		if exists {
			t.Error("expected file to be gone")
		}
	})

	t.Run("non-empty dir requires recursive", func(t *testing.T) {
		if err := root.Write(ctx, "tree/a.txt", strings.NewReader("x")); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		err := root.Delete(ctx, "tree", false)
		if !errors.Is(err, crossfs.ErrNotEmpty) {
			t.Errorf("expected ErrNotEmpty, got: %v", err)
		}
		if err := root.Delete(ctx, "tree", true); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	})
}

func TestRootMkdir(t *testing.T) {
	ctx := context.Background()
	root := newMemRoot(t)

	t.Run("without parents requires existing parent", func(t *testing.T) {
		err := root.Mkdir(ctx, "a/b", false)
		if !crossfs.IsNotExist(err) {
			t.Errorf("expected not-exist error, got: %v", err)
		}
	})

	t.Run("with parents creates chain", func(t *testing.T) {
		if err := root.Mkdir(ctx, "a/b/c", true); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		for _, dir := range []string{"a", "a/b", "a/b/c"} {
			exists, err := root.Exists(ctx, dir)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !exists {
				t.Errorf("expected %q to exist", dir)
			}
		}
	})

	t.Run("rmdir requires empty", func(t *testing.T) {
		if err := root.Write(ctx, "a/b/c/f.txt", strings.NewReader("x")); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		err := root.Rmdir(ctx, "a/b/c")
		if !errors.Is(err, crossfs.ErrNotEmpty) {
			t.Errorf("expected ErrNotEmpty, got: %v", err)
		}
	})
}

func TestRootCopyMove(t *testing.T) {
	ctx := context.Background()
	root := newMemRoot(t)

	if err := root.Write(ctx, "src.txt", strings.NewReader("payload")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if err := root.Copy(ctx, "src.txt", "copy.txt"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	data, err := root.Read(ctx, "copy.txt")
	if err != nil || string(data) != "payload" {
		t.Fatalf("copy content = %q, err = %v", data, err)
	}

	if err := root.Move(ctx, "copy.txt", "moved.txt"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	exists, _ := root.Exists(ctx, "copy.txt")
	if exists {
		t.Error("expected moved source to be gone")
	}
}

// plainFS hides the optional capability methods of the wrapped driver so the
// facade has to fall back to stream copy.
type plainFS struct {
	crossfs.FileSystem
}

// failWriteFS rejects all writes; reads pass through.
type failWriteFS struct {
	crossfs.FileSystem
}

var errInjected = errors.New("injected write failure")

func (f *failWriteFS) Write(ctx context.Context, path string, r io.Reader, opts ...crossfs.Option) error {
	return errInjected
}

func TestRootMoveFallbackPreservesSource(t *testing.T) {
	ctx := context.Background()

	t.Run("fallback copy then delete", func(t *testing.T) {
		root := crossfs.NewRoot("plain", &plainFS{memory.New()})
		if err := root.Write(ctx, "src.txt", strings.NewReader("payload")); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if err := root.Move(ctx, "src.txt", "dst.txt"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		exists, _ := root.Exists(ctx, "src.txt")
		if exists {
			t.Error("expected source to be deleted after successful move")
		}
		data, err := root.Read(ctx, "dst.txt")
		if err != nil || string(data) != "payload" {
			t.Fatalf("dst content = %q, err = %v", data, err)
		}
	})

	t.Run("failed copy leaves source intact", func(t *testing.T) {
		root := crossfs.NewRoot("failing", &failWriteFS{memory.New()})

		mem := memory.New()
		if err := mem.Write(ctx, "src.txt", strings.NewReader("payload")); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		srcRoot := crossfs.NewRoot("src", mem)

		err := crossfs.MoveBetween(ctx, srcRoot, "src.txt", root, "dst.txt")
		if !errors.Is(err, errInjected) {
			t.Fatalf("expected injected failure, got: %v", err)
		}

		// The source must survive a failed destination write.
		data, rerr := srcRoot.Read(ctx, "src.txt")
		if rerr != nil || string(data) != "payload" {
			t.Fatalf("source after failed move = %q, err = %v", data, rerr)
		}
	})
}

func TestCopyBetweenRoots(t *testing.T) {
	ctx := context.Background()

	srcRoot := crossfs.NewRoot("src", memory.New())
	dstRoot := crossfs.NewRoot("dst", memory.New())

	if err := srcRoot.Write(ctx, "file.txt", strings.NewReader("cross")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if err := crossfs.CopyBetween(ctx, srcRoot, "file.txt", dstRoot, "copied.txt"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	data, err := dstRoot.Read(ctx, "copied.txt")
	if err != nil || string(data) != "cross" {
		t.Fatalf("dst content = %q, err = %v", data, err)
	}
	// Source untouched.
	if data, err := srcRoot.Read(ctx, "file.txt"); err != nil || string(data) != "cross" {
		t.Fatalf("src content = %q, err = %v", data, err)
	}

	if err := crossfs.MoveBetween(ctx, srcRoot, "file.txt", dstRoot, "moved.txt"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	exists, _ := srcRoot.Exists(ctx, "file.txt")
	if exists {
		t.Error("expected source to be gone after MoveBetween")
	}
}

func TestRootOpenWrite(t *testing.T) {
	ctx := context.Background()
	root := newMemRoot(t)

	h, err := root.OpenWrite(ctx, "stream.txt")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := io.WriteString(h, "streamed"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := h.Close(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	data, err := root.Read(ctx, "stream.txt")
	if err != nil || string(data) != "streamed" {
		t.Fatalf("content = %q, err = %v", data, err)
	}
}

func TestRootStat(t *testing.T) {
	ctx := context.Background()
	root := newMemRoot(t)

	if err := root.Write(ctx, "info.json", strings.NewReader(`{}`)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	info, err := root.Stat(ctx, "info.json")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if info.IsDir {
		t.Error("expected file, got directory")
	}
	if info.Size != 2 {
		t.Errorf("expected size=2, got %d", info.Size)
	}

	_, err = root.Stat(ctx, "missing")
	if !crossfs.IsNotExist(err) {
		t.Errorf("expected not-exist error, got: %v", err)
	}
}
