package crossfs

import (
	"context"
	"io"
	"time"
)

// FileInfo describes one file or directory entry. Entries are snapshots taken
// at call time; on eventually consistent backends they may be stale by the
// time the caller inspects them.
type FileInfo struct {
	Name        string
	Path        string
	Size        int64
	ModTime     time.Time
	IsDir       bool
	ContentType string
	Metadata    map[string]string
}

// ============================================================================
// Core Interfaces (Interface Segregation)
// ============================================================================

// FileReader provides read-only filesystem access.
// Use this type in function signatures to enforce read-only at compile time.
type FileReader interface {
	// Read returns a stream for reading file content.
	Read(ctx context.Context, path string) (io.ReadCloser, error)

	// ReadAll reads entire file into memory. Use for small files only.
	ReadAll(ctx context.Context, path string) ([]byte, error)

	// ReadRange reads length bytes starting at offset. A negative length
	// reads from offset to the end of the file.
	ReadRange(ctx context.Context, path string, offset, length int64) ([]byte, error)

	// FileExists checks if a file exists at path. Absence is not an error.
	FileExists(ctx context.Context, path string) (bool, error)

	// DirExists checks if a directory exists at path. Absence is not an error.
	DirExists(ctx context.Context, path string) (bool, error)

	// Stat returns file/directory metadata.
	Stat(ctx context.Context, path string) (*FileInfo, error)

	// ListContents lists directory contents.
	// If recursive is true, includes all descendants.
	ListContents(ctx context.Context, path string, recursive bool) ([]FileInfo, error)
}

// FileWriter provides write filesystem operations.
type FileWriter interface {
	// Write writes content from reader to path. Missing parent directories
	// are created. Without WithOverwrite(true) an existing target fails
	// with ErrExist.
	Write(ctx context.Context, path string, r io.Reader, opts ...Option) error

	// OpenWrite opens a streaming write handle for path. Bytes become
	// visible only when the handle is closed; Abort discards them.
	OpenWrite(ctx context.Context, path string, opts ...Option) (WriteHandle, error)

	// Delete removes a file.
	Delete(ctx context.Context, path string) error

	// CreateDir creates a directory (and parents if needed).
	CreateDir(ctx context.Context, path string) error

	// DeleteDir removes a directory. When recursive is false and the
	// directory still has children, it fails with ErrNotEmpty.
	DeleteDir(ctx context.Context, path string, recursive bool) error
}

// FileSystem provides full read-write access against one backend.
// Implementations are safe for concurrent use or serialize internally;
// callers may invoke operations from any goroutine.
type FileSystem interface {
	FileReader
	FileWriter

	// Close releases backend resources. The filesystem must not be used
	// after Close returns.
	Close() error
}

// WriteHandle is a streaming write in progress. A handle is owned by a single
// caller and is not safe for concurrent use. Exactly one of Close or Abort
// must be called.
type WriteHandle interface {
	io.Writer

	// Close commits all written bytes to the target.
	io.Closer

	// Abort discards written bytes and leaves the target untouched.
	Abort() error
}

// ============================================================================
// Optional Capability Interfaces
// ============================================================================
// These interfaces allow drivers to expose optional capabilities.
// Use type assertion to check if a driver supports a capability:
//
//	if mover, ok := fs.(CanMove); ok {
//	    mover.Move(ctx, src, dst)
//	}

// CanCopy indicates the filesystem supports native copy operations.
// Native copy is more efficient than read+write for same-backend operations.
type CanCopy interface {
	Copy(ctx context.Context, src, dst string) error
}

// CanMove indicates the filesystem supports native move/rename operations.
// A failed native move must leave the source intact.
type CanMove interface {
	Move(ctx context.Context, src, dst string) error
}

// ============================================================================
// Checksum Interface
// ============================================================================

// ChecksumAlgorithm represents a supported checksum algorithm
type ChecksumAlgorithm string

const (
	// ChecksumMD5 is the MD5 hash algorithm (128-bit, fast but not cryptographically secure)
	ChecksumMD5 ChecksumAlgorithm = "md5"
	// ChecksumSHA1 is the SHA-1 hash algorithm (160-bit, legacy)
	ChecksumSHA1 ChecksumAlgorithm = "sha1"
	// ChecksumSHA256 is the SHA-256 hash algorithm (256-bit, recommended)
	ChecksumSHA256 ChecksumAlgorithm = "sha256"
	// ChecksumSHA512 is the SHA-512 hash algorithm (512-bit, most secure)
	ChecksumSHA512 ChecksumAlgorithm = "sha512"
	// ChecksumCRC32 is the CRC32 checksum (32-bit, fastest, for integrity only)
	ChecksumCRC32 ChecksumAlgorithm = "crc32"
	// ChecksumXXHash is the xxHash algorithm (64-bit, extremely fast)
	ChecksumXXHash ChecksumAlgorithm = "xxhash"
)

// CanChecksum indicates the filesystem supports integrity verification.
//
// Example:
//
//	if cs, ok := fs.(CanChecksum); ok {
//	    hash, err := cs.Checksum(ctx, "file.txt", ChecksumSHA256)
//	    fmt.Printf("SHA256: %s\n", hash)
//	}
type CanChecksum interface {
	// Checksum calculates the checksum of a file using the specified algorithm.
	// Returns the checksum as a hex-encoded string.
	Checksum(ctx context.Context, path string, algorithm ChecksumAlgorithm) (string, error)

	// Checksums calculates multiple checksums in a single read pass.
	// Returns a map of algorithm to hex-encoded checksum.
	Checksums(ctx context.Context, path string, algorithms []ChecksumAlgorithm) (map[ChecksumAlgorithm]string, error)
}
