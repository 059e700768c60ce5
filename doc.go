// Package crossfs provides a unified filesystem abstraction over
// heterogeneous storage backends: local disk, in-memory, S3-compatible object
// stores, SFTP, and FTP.
//
// crossfs follows interface segregation principles, providing separate
// interfaces for read-only ([FileReader]) and write ([FileWriter]) operations,
// combined in the full [FileSystem] interface. This allows compile-time
// enforcement of access patterns.
//
// # Storage Backends
//
//   - Local filesystem (github.com/crossfs/crossfs/driver/local)
//   - In-memory (github.com/crossfs/crossfs/driver/memory)
//   - S3-compatible object stores (github.com/crossfs/crossfs/driver/s3)
//   - SFTP (github.com/crossfs/crossfs/driver/sftp)
//   - FTP (github.com/crossfs/crossfs/driver/ftp)
//
// Every driver implements the same operation set with the same error
// contract, so code written against [FileSystem] or [Root] runs unchanged on
// any backend. Backend-native failures are translated into the package's
// sentinel errors; match them with errors.Is.
//
// # Basic Usage
//
//	import "github.com/crossfs/crossfs/driver/local"
//
//	fs, err := local.New("./storage")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer fs.Close()
//
//	ctx := context.Background()
//
//	// Write a file
//	err = fs.Write(ctx, "hello.txt", strings.NewReader("Hello, World!"))
//
//	// Read a file
//	data, err := fs.ReadAll(ctx, "hello.txt")
//
//	// Check existence
//	exists, err := fs.FileExists(ctx, "hello.txt")
//
//	// List directory contents
//	files, err := fs.ListContents(ctx, "", false)
//
// # Roots
//
// A [Root] fronts a driver with path normalization: "./a//b/../c" and "a/c"
// name the same file, and paths that resolve above the root are rejected with
// [ErrInvalidPath]. Roots also provide Copy and Move with a hard guarantee:
// a move never removes the source until the destination write has succeeded.
// [CopyBetween] and [MoveBetween] stream files between roots backed by
// different drivers.
//
//	root, err := crossfs.OpenRoot("archive", cfg)
//	err = root.Move(ctx, "incoming/report.pdf", "2024/report.pdf")
//
// # Optional Capabilities
//
// Drivers may implement optional capability interfaces. Use type assertions
// to check for support:
//
//	// Check for native copy support
//	if copier, ok := fs.(crossfs.CanCopy); ok {
//	    err := copier.Copy(ctx, "source.txt", "dest.txt")
//	}
//
//	// Calculate checksums
//	if cs, ok := fs.(crossfs.CanChecksum); ok {
//	    hash, err := cs.Checksum(ctx, "file.txt", crossfs.ChecksumSHA256)
//	}
//
// # Mount Manager
//
// The [MountManager] provides virtual path namespacing, allowing multiple
// storage backends to be combined under a unified path structure:
//
//	mounts := crossfs.NewMountManager()
//	mounts.Mount("/local", localDriver)
//	mounts.Mount("/cloud", s3Driver)
//
//	// Transparent access - routes to correct backend
//	mounts.Write(ctx, "/local/file.txt", reader)
//	mounts.Read(ctx, "/cloud/image.png")
//
//	// Cross-mount operations work automatically
//	mounts.Copy(ctx, "/local/file.txt", "/cloud/backup/file.txt")
//
// # Decorators
//
// crossfs provides stackable decorators for cross-cutting concerns:
//
//	// Read-only protection
//	readOnly := crossfs.NewReadOnlyFileSystem(fs)
//
//	// Write-once (immutable archive)
//	archive := crossfs.NewWriteOnceFileSystem(fs)
//
//	// Read-through content cache (fast front, slow back)
//	cached := crossfs.NewCachingFileSystem(memoryFS, s3FS)
//
//	// Lazy replication with mirrored writes
//	mirror := crossfs.NewMirrorFileSystem(localFS, sftpFS)
//
// # Error Handling
//
// Sentinel errors and helper functions:
//
//	_, err := fs.Read(ctx, "nonexistent.txt")
//	if crossfs.IsNotExist(err) {
//	    // File does not exist
//	}
//
//	var pathErr *crossfs.PathError
//	if errors.As(err, &pathErr) {
//	    fmt.Printf("Operation: %s, Path: %s\n", pathErr.Op, pathErr.Path)
//	}
//
// # Configuration
//
// Configuration comes from environment variables with the CROSSFS_ prefix, or
// programmatically via the [Config] struct:
//
//	cfg := &crossfs.Config{
//	    Driver:   "s3",
//	    S3Bucket: "my-bucket",
//	    S3Region: "us-west-2",
//	}
//	fs, err := crossfs.New(cfg)
package crossfs
