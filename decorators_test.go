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

func TestReadOnlyFileSystem(t *testing.T) {
	ctx := context.Background()

	backing := memory.New()
	if err := backing.Write(ctx, "file.txt", strings.NewReader("content")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	ro := crossfs.NewReadOnlyFileSystem(backing)

	t.Run("reads pass through", func(t *testing.T) {
		data, err := ro.ReadAll(ctx, "file.txt")
		if err != nil || string(data) != "content" {
			t.Fatalf("content = %q, err = %v", data, err)
		}
		exists, err := ro.FileExists(ctx, "file.txt")
		if err != nil || !exists {
			t.Fatalf("exists = %t, err = %v", exists, err)
		}
	})

	t.Run("writes fail with ErrReadOnly", func(t *testing.T) {
		if err := ro.Write(ctx, "new.txt", strings.NewReader("x")); !crossfs.IsReadOnlyError(err) {
			t.Errorf("Write: expected read-only error, got %v", err)
		}
		if _, err := ro.OpenWrite(ctx, "new.txt"); !crossfs.IsReadOnlyError(err) {
			t.Errorf("OpenWrite: expected read-only error, got %v", err)
		}
		if err := ro.Delete(ctx, "file.txt"); !crossfs.IsReadOnlyError(err) {
			t.Errorf("Delete: expected read-only error, got %v", err)
		}
		if err := ro.CreateDir(ctx, "dir"); !crossfs.IsReadOnlyError(err) {
			t.Errorf("CreateDir: expected read-only error, got %v", err)
		}
		if err := ro.DeleteDir(ctx, "dir", true); !crossfs.IsReadOnlyError(err) {
			t.Errorf("DeleteDir: expected read-only error, got %v", err)
		}
	})

	t.Run("backing untouched", func(t *testing.T) {
		data, err := backing.ReadAll(ctx, "file.txt")
		if err != nil || string(data) != "content" {
			t.Fatalf("content = %q, err = %v", data, err)
		}
	})

	t.Run("unwrap returns backing", func(t *testing.T) {
		if ro.Unwrap() != crossfs.FileSystem(backing) {
			t.Error("expected Unwrap to return the wrapped filesystem")
		}
	})
}

func TestWriteOnceFileSystem(t *testing.T) {
	ctx := context.Background()

	wo := crossfs.NewWriteOnceFileSystem(memory.New())

	t.Run("first write succeeds", func(t *testing.T) {
		if err := wo.Write(ctx, "immutable.txt", strings.NewReader("v1")); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	})

	t.Run("second write fails even with overwrite", func(t *testing.T) {
		err := wo.Write(ctx, "immutable.txt", strings.NewReader("v2"), crossfs.WithOverwrite(true))
		if !crossfs.IsExist(err) {
			t.Errorf("expected ErrExist, got: %v", err)
		}

		data, rerr := wo.ReadAll(ctx, "immutable.txt")
		if rerr != nil || string(data) != "v1" {
			t.Fatalf("content = %q, err = %v", data, rerr)
		}
	})

	t.Run("delete is blocked", func(t *testing.T) {
		if err := wo.Delete(ctx, "immutable.txt"); !crossfs.IsReadOnlyError(err) {
			t.Errorf("expected read-only error, got: %v", err)
		}
		if err := wo.DeleteDir(ctx, "dir", true); !crossfs.IsReadOnlyError(err) {
			t.Errorf("expected read-only error, got: %v", err)
		}
	})

	t.Run("directories may be created", func(t *testing.T) {
		if err := wo.CreateDir(ctx, "archive"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	})
}

func TestCachingFileSystem(t *testing.T) {
	ctx := context.Background()

	front := memory.New()
	back := memory.New()
	if err := back.Write(ctx, "origin.txt", strings.NewReader("from back")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	cache := crossfs.NewCachingFileSystem(front, back)

	t.Run("first read fills front", func(t *testing.T) {
		data, err := cache.ReadAll(ctx, "origin.txt")
		if err != nil || string(data) != "from back" {
			t.Fatalf("content = %q, err = %v", data, err)
		}

		cached, err := front.ReadAll(ctx, "origin.txt")
		if err != nil || string(cached) != "from back" {
			t.Fatalf("front content = %q, err = %v", cached, err)
		}
	})

	t.Run("subsequent reads hit front", func(t *testing.T) {
		// Change the back; the cached copy must win.
		if err := back.Write(ctx, "origin.txt", strings.NewReader("changed"), crossfs.WithOverwrite(true)); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		data, err := cache.ReadAll(ctx, "origin.txt")
		if err != nil || string(data) != "from back" {
			t.Fatalf("content = %q, err = %v", data, err)
		}
	})

	t.Run("writes are rejected", func(t *testing.T) {
		if err := cache.Write(ctx, "new.txt", strings.NewReader("x")); !crossfs.IsReadOnlyError(err) {
			t.Errorf("expected read-only error, got: %v", err)
		}
	})

	t.Run("metadata comes from back", func(t *testing.T) {
		if err := back.Write(ctx, "only-back.txt", strings.NewReader("yy")); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		exists, err := cache.FileExists(ctx, "only-back.txt")
		if err != nil || !exists {
			t.Fatalf("exists = %t, err = %v", exists, err)
		}
	})
}

func TestMirrorFileSystem(t *testing.T) {
	ctx := context.Background()

	t.Run("write lands on both sides", func(t *testing.T) {
		front, back := memory.New(), memory.New()
		mirror := crossfs.NewMirrorFileSystem(front, back)

		if err := mirror.Write(ctx, "doc.txt", strings.NewReader("both")); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		for name, fs := range map[string]*memory.Adapter{"front": front, "back": back} {
			data, err := fs.ReadAll(ctx, "doc.txt")
			if err != nil || string(data) != "both" {
				t.Fatalf("%s content = %q, err = %v", name, data, err)
			}
		}
	})

	t.Run("read clones back to front", func(t *testing.T) {
		front, back := memory.New(), memory.New()
		mirror := crossfs.NewMirrorFileSystem(front, back)

		if err := back.Write(ctx, "cold.txt", strings.NewReader("warm me")); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		data, err := mirror.ReadAll(ctx, "cold.txt")
		if err != nil || string(data) != "warm me" {
			t.Fatalf("content = %q, err = %v", data, err)
		}
		cloned, err := front.ReadAll(ctx, "cold.txt")
		if err != nil || string(cloned) != "warm me" {
			t.Fatalf("front content = %q, err = %v", cloned, err)
		}
	})

	t.Run("delete removes from both sides", func(t *testing.T) {
		front, back := memory.New(), memory.New()
		mirror := crossfs.NewMirrorFileSystem(front, back)

		if err := mirror.Write(ctx, "gone.txt", strings.NewReader("x")); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if err := mirror.Delete(ctx, "gone.txt"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		for name, fs := range map[string]*memory.Adapter{"front": front, "back": back} {
			exists, _ := fs.FileExists(ctx, "gone.txt")
			if exists {
				t.Errorf("expected %s copy to be gone", name)
			}
		}
	})

	t.Run("streamed write commits on close", func(t *testing.T) {
		front, back := memory.New(), memory.New()
		mirror := crossfs.NewMirrorFileSystem(front, back)

		h, err := mirror.OpenWrite(ctx, "stream.txt")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if _, err := io.WriteString(h, "streamed"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if err := h.Close(); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		data, err := back.ReadAll(ctx, "stream.txt")
		if err != nil || string(data) != "streamed" {
			t.Fatalf("back content = %q, err = %v", data, err)
		}

		// Reuse after Close is an error.
		if _, err := h.Write([]byte("more")); !errors.Is(err, crossfs.ErrClosed) {
			t.Errorf("expected ErrClosed, got: %v", err)
		}
	})
}
