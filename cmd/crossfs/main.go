// Command crossfs is a small CLI over the configured storage backend. The
// driver and its settings come from CROSSFS_* environment variables (a .env
// file is honored when present).
//
// Usage:
//
//	crossfs ls [path]
//	crossfs tree [path]
//	crossfs cat <path>
//	crossfs put <path> <local-file>
//	crossfs rm [-r] <path>
//	crossfs mkdir <path>
//	crossfs stat <path>
//	crossfs cp <src> <dst>
//	crossfs mv <src> <dst>
//	crossfs find <dir> <pattern>
//	crossfs sum <path>
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/lmittmann/tint"

	"github.com/crossfs/crossfs"
	_ "github.com/crossfs/crossfs/driver/ftp"
	_ "github.com/crossfs/crossfs/driver/local"
	_ "github.com/crossfs/crossfs/driver/memory"
	_ "github.com/crossfs/crossfs/driver/s3"
	_ "github.com/crossfs/crossfs/driver/sftp"
)

var verbose = flag.Bool("v", false, "enable debug logging")

func setupLogging() {
	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(
		tint.NewHandler(os.Stderr, &tint.Options{
			Level:      level,
			TimeFormat: time.Kitchen,
		}),
	))
}

func main() {
	flag.Usage = usage
	flag.Parse()

	// Missing .env is fine; the environment may already be set.
	_ = godotenv.Load()
	setupLogging()

	args := flag.Args()
	if len(args) == 0 {
		usage()
		os.Exit(2)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer cancel()

	if err := run(ctx, args[0], args[1:]); err != nil {
		slog.Error("command failed", "command", args[0], "err", err)
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, "usage: crossfs [-v] <ls|tree|cat|put|rm|mkdir|stat|cp|mv|find|sum> [args]")
}

func run(ctx context.Context, command string, args []string) error {
	cfg, err := crossfs.GetConfig()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	root, err := crossfs.OpenRoot(cfg.Driver, cfg)
	if err != nil {
		return err
	}
	defer root.Close()

	switch command {
	case "ls":
		return runList(ctx, root, args, false)
	case "tree":
		return runList(ctx, root, args, true)
	case "cat":
		return runCat(ctx, root, args)
	case "put":
		return runPut(ctx, root, args)
	case "rm":
		return runRemove(ctx, root, args)
	case "mkdir":
		return runMkdir(ctx, root, args)
	case "stat":
		return runStat(ctx, root, args)
	case "cp":
		return runTransfer(ctx, root, args, root.Copy)
	case "mv":
		return runTransfer(ctx, root, args, root.Move)
	case "find":
		return runFind(ctx, root, args)
	case "sum":
		return runChecksum(ctx, root, args)
	default:
		usage()
		return fmt.Errorf("unknown command %q", command)
	}
}

func runList(ctx context.Context, root *crossfs.Root, args []string, recursive bool) error {
	dir := "/"
	if len(args) > 0 {
		dir = args[0]
	}

	var entries []crossfs.FileInfo
	var err error
	if recursive {
		entries, err = root.ListAll(ctx, dir)
	} else {
		entries, err = root.List(ctx, dir)
	}
	if err != nil {
		return err
	}

	for _, entry := range entries {
		if entry.IsDir {
			fmt.Printf("%12s  %s/\n", "-", entry.Path)
			continue
		}
		fmt.Printf("%12d  %s\n", entry.Size, entry.Path)
	}
	return nil
}

func runCat(ctx context.Context, root *crossfs.Root, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: crossfs cat <path>")
	}

	reader, err := root.OpenRead(ctx, args[0])
	if err != nil {
		return err
	}
	defer reader.Close()

	_, err = os.Stdout.ReadFrom(reader)
	return err
}

func runPut(ctx context.Context, root *crossfs.Root, args []string) error {
	if len(args) != 2 {
		return fmt.Errorf("usage: crossfs put <path> <local-file>")
	}

	file, err := os.Open(args[1])
	if err != nil {
		return err
	}
	defer file.Close()

	size := int64(-1)
	if info, err := file.Stat(); err == nil {
		size = info.Size()
	}

	progress := func(transferred, total int64) {
		slog.Debug("uploading", "path", args[0], "transferred", transferred, "total", total)
	}
	opts := []crossfs.Option{
		crossfs.WithOverwrite(true),
		crossfs.WithContentType(crossfs.GuessContentType(args[0], nil)),
	}
	if err := crossfs.WriteWithProgress(ctx, root.FS(), args[0], file, size, progress, opts...); err != nil {
		return err
	}
	slog.Info("uploaded", "path", args[0], "bytes", size)
	return nil
}

func runRemove(ctx context.Context, root *crossfs.Root, args []string) error {
	fs := flag.NewFlagSet("rm", flag.ContinueOnError)
	recursive := fs.Bool("r", false, "remove directories recursively")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return fmt.Errorf("usage: crossfs rm [-r] <path>")
	}
	return root.Delete(ctx, fs.Arg(0), *recursive)
}

func runMkdir(ctx context.Context, root *crossfs.Root, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: crossfs mkdir <path>")
	}
	return root.Mkdir(ctx, args[0], true)
}

func runStat(ctx context.Context, root *crossfs.Root, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: crossfs stat <path>")
	}

	info, err := root.Stat(ctx, args[0])
	if err != nil {
		return err
	}

	fmt.Printf("path:         %s\n", info.Path)
	fmt.Printf("size:         %d\n", info.Size)
	fmt.Printf("dir:          %t\n", info.IsDir)
	if !info.ModTime.IsZero() {
		fmt.Printf("modified:     %s\n", info.ModTime.Format(time.RFC3339))
	}
	if info.ContentType != "" {
		fmt.Printf("content-type: %s\n", info.ContentType)
	}
	return nil
}

func runTransfer(ctx context.Context, root *crossfs.Root, args []string, op func(context.Context, string, string) error) error {
	if len(args) != 2 {
		return fmt.Errorf("usage: crossfs <cp|mv> <src> <dst>")
	}
	return op(ctx, args[0], args[1])
}

func runFind(ctx context.Context, root *crossfs.Root, args []string) error {
	if len(args) != 2 {
		return fmt.Errorf("usage: crossfs find <dir> <pattern>")
	}

	entries, err := crossfs.ListWithSelector(ctx, root.FS(), args[0], crossfs.Wildcard(args[1]), true)
	if err != nil {
		return err
	}
	for _, entry := range entries {
		fmt.Printf("%12d  %s\n", entry.Size, entry.Path)
	}
	return nil
}

func runChecksum(ctx context.Context, root *crossfs.Root, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: crossfs sum <path>")
	}

	sum, err := crossfs.ChecksumOf(ctx, root.FS(), args[0], crossfs.ChecksumSHA256)
	if err != nil {
		return err
	}
	fmt.Printf("%s  %s\n", sum, args[0])
	return nil
}
