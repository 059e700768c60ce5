package crossfs_test

import (
	"context"
	"testing"

	"github.com/crossfs/crossfs"
)

func TestListWithSelector(t *testing.T) {
	ctx := context.Background()
	fs := seedFS(t,
		"images/logo.png",
		"images/photo.jpg",
		"images/raw/scan.jpg",
		"images/raw/deep/old.jpg",
		"notes.txt",
	)

	t.Run("nil selector matches everything", func(t *testing.T) {
		entries, err := crossfs.ListWithSelector(ctx, fs, "", nil, true)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(entries) != 5 {
			t.Errorf("expected 5 files, got %v", paths(entries))
		}
	})

	t.Run("wildcard on names", func(t *testing.T) {
		entries, err := crossfs.ListWithSelector(ctx, fs, "images", crossfs.Wildcard("*.jpg"), true)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		want := []string{"images/photo.jpg", "images/raw/deep/old.jpg", "images/raw/scan.jpg"}
		if !equalStrings(paths(entries), want) {
			t.Errorf("got %v, want %v", paths(entries), want)
		}
	})

	t.Run("malformed wildcard matches nothing", func(t *testing.T) {
		entries, err := crossfs.ListWithSelector(ctx, fs, "images", crossfs.Wildcard("["), true)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(entries) != 0 {
			t.Errorf("expected no matches, got %v", paths(entries))
		}
	})

	t.Run("depth stops traversal", func(t *testing.T) {
		entries, err := crossfs.ListWithSelector(ctx, fs, "images", crossfs.Depth(1, "images"), true)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		want := []string{"images/logo.png", "images/photo.jpg"}
		if !equalStrings(paths(entries), want) {
			t.Errorf("got %v, want %v", paths(entries), want)
		}
	})

	t.Run("non-recursive skips directories", func(t *testing.T) {
		entries, err := crossfs.ListWithSelector(ctx, fs, "images", crossfs.All(), false)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		want := []string{"images/logo.png", "images/photo.jpg"}
		if !equalStrings(paths(entries), want) {
			t.Errorf("got %v, want %v", paths(entries), want)
		}
	})
}

func TestSelectorComposition(t *testing.T) {
	jpg := &crossfs.FileInfo{Name: "photo.jpg", Path: "photo.jpg", Size: 100}
	png := &crossfs.FileInfo{Name: "logo.png", Path: "logo.png", Size: 5000}

	isJPG := crossfs.Wildcard("*.jpg")
	small := crossfs.FuncSelector(func(f *crossfs.FileInfo) bool { return f.Size < 1000 })

	t.Run("and", func(t *testing.T) {
		sel := crossfs.And(isJPG, small)
		if !sel.Match(jpg) {
			t.Error("expected small jpg to match")
		}
		if sel.Match(png) {
			t.Error("expected large png not to match")
		}
	})

	t.Run("or", func(t *testing.T) {
		sel := crossfs.Or(isJPG, crossfs.Wildcard("*.png"))
		if !sel.Match(jpg) || !sel.Match(png) {
			t.Error("expected both to match")
		}
	})

	t.Run("not", func(t *testing.T) {
		sel := crossfs.Not(isJPG)
		if sel.Match(jpg) {
			t.Error("expected jpg not to match")
		}
		if !sel.Match(png) {
			t.Error("expected png to match")
		}
	})
}
