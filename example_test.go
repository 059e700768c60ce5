package crossfs_test

import (
	"context"
	"fmt"
	"strings"

	"github.com/crossfs/crossfs"
	"github.com/crossfs/crossfs/driver/memory"
)

func ExampleRoot() {
	ctx := context.Background()

	// Memory keeps the example self-contained; any driver works the same.
	root := crossfs.NewRoot("docs", memory.New())

	_ = root.Write(ctx, "guides/intro.md", strings.NewReader("# Intro"))

	// Raw paths are normalized before they reach the backend.
	data, _ := root.Read(ctx, "/guides/./intro.md")
	fmt.Println(string(data))
	// Output:
	// # Intro
}

func ExampleMountManager() {
	ctx := context.Background()

	mounts := crossfs.NewMountManager()

	// Mount different backends under virtual paths.
	_ = mounts.Mount("/local", memory.New())
	_ = mounts.Mount("/cloud", memory.New())

	_ = mounts.Write(ctx, "/local/file.txt", strings.NewReader("local content"))
	_ = mounts.Write(ctx, "/cloud/file.txt", strings.NewReader("cloud content"))

	localData, _ := mounts.ReadAll(ctx, "/local/file.txt")
	cloudData, _ := mounts.ReadAll(ctx, "/cloud/file.txt")

	fmt.Println(string(localData))
	fmt.Println(string(cloudData))
	// Output:
	// local content
	// cloud content
}

func ExampleMountManager_move() {
	ctx := context.Background()

	mounts := crossfs.NewMountManager()
	_ = mounts.Mount("/staging", memory.New())
	_ = mounts.Mount("/archive", memory.New())

	_ = mounts.Write(ctx, "/staging/report.pdf", strings.NewReader("%PDF-1.7"))

	// Cross-mount move copies first and deletes the source only after the
	// destination write succeeded.
	_ = mounts.Move(ctx, "/staging/report.pdf", "/archive/2026/report.pdf")

	gone, _ := mounts.FileExists(ctx, "/staging/report.pdf")
	there, _ := mounts.FileExists(ctx, "/archive/2026/report.pdf")
	fmt.Println(gone, there)
	// Output:
	// false true
}

func ExampleListWithSelector() {
	ctx := context.Background()

	fs := memory.New()
	_ = fs.Write(ctx, "images/logo.png", strings.NewReader("png"))
	_ = fs.Write(ctx, "images/photo.jpg", strings.NewReader("jpg"))
	_ = fs.Write(ctx, "images/raw/scan.jpg", strings.NewReader("jpg"))

	files, _ := crossfs.ListWithSelector(ctx, fs, "images", crossfs.Wildcard("*.jpg"), true)
	for _, f := range files {
		fmt.Println(f.Path)
	}
	// Output:
	// images/photo.jpg
	// images/raw/scan.jpg
}

func ExampleChecksumOf() {
	ctx := context.Background()

	fs := memory.New()
	_ = fs.Write(ctx, "data.txt", strings.NewReader("hello"))

	sum, _ := crossfs.ChecksumOf(ctx, fs, "data.txt", crossfs.ChecksumSHA256)
	fmt.Println(sum)
	// Output:
	// 2cf24dba5fb0a30e26e83b2ac5b9e29e1b161e5c1fa7425e73043362938b9824
}
