package crossfs

import (
	"context"
	"errors"
	"io"
)

// ============================================================================
// ReadOnlyFileSystem Decorator
// ============================================================================

// ReadOnlyFileSystem wraps a FileSystem to prevent all write operations.
// This is useful for:
// - Providing safe read-only access to sensitive data
// - Creating temporary read-only views of filesystems
// - Exposing filesystems to untrusted code
//
// Example:
//
//	fs := local.New("/data")
//	readOnly := crossfs.NewReadOnlyFileSystem(fs)
//
//	// Read operations work normally
//	reader, _ := readOnly.Read(ctx, "file.txt")
//
//	// Write operations return ErrReadOnly
//	err := readOnly.Write(ctx, "file.txt", reader)
//	// err wraps ErrReadOnly
type ReadOnlyFileSystem struct {
	fs FileSystem
}

// NewReadOnlyFileSystem creates a read-only wrapper around a FileSystem.
// All write operations fail with ErrReadOnly.
func NewReadOnlyFileSystem(fs FileSystem) *ReadOnlyFileSystem {
	return &ReadOnlyFileSystem{fs: fs}
}

// Unwrap returns the underlying FileSystem.
func (r *ReadOnlyFileSystem) Unwrap() FileSystem {
	return r.fs
}

// IsReadOnly returns true, indicating this is a read-only filesystem.
func (r *ReadOnlyFileSystem) IsReadOnly() bool {
	return true
}

func (r *ReadOnlyFileSystem) readOnlyError(op, path string) error {
	return &PathError{Op: op, Path: path, Err: ErrReadOnly}
}

// ============================================================================
// Read Operations (Delegated)
// ============================================================================

// Read delegates to the underlying filesystem.
func (r *ReadOnlyFileSystem) Read(ctx context.Context, path string) (io.ReadCloser, error) {
	return r.fs.Read(ctx, path)
}

// ReadAll delegates to the underlying filesystem.
func (r *ReadOnlyFileSystem) ReadAll(ctx context.Context, path string) ([]byte, error) {
	return r.fs.ReadAll(ctx, path)
}

// ReadRange delegates to the underlying filesystem.
func (r *ReadOnlyFileSystem) ReadRange(ctx context.Context, path string, offset, length int64) ([]byte, error) {
	return r.fs.ReadRange(ctx, path, offset, length)
}

// FileExists delegates to the underlying filesystem.
func (r *ReadOnlyFileSystem) FileExists(ctx context.Context, path string) (bool, error) {
	return r.fs.FileExists(ctx, path)
}

// DirExists delegates to the underlying filesystem.
func (r *ReadOnlyFileSystem) DirExists(ctx context.Context, path string) (bool, error) {
	return r.fs.DirExists(ctx, path)
}

// Stat delegates to the underlying filesystem.
func (r *ReadOnlyFileSystem) Stat(ctx context.Context, path string) (*FileInfo, error) {
	return r.fs.Stat(ctx, path)
}

// ListContents delegates to the underlying filesystem.
func (r *ReadOnlyFileSystem) ListContents(ctx context.Context, path string, recursive bool) ([]FileInfo, error) {
	return r.fs.ListContents(ctx, path, recursive)
}

// ============================================================================
// Write Operations (Blocked)
// ============================================================================

// Write returns ErrReadOnly.
func (r *ReadOnlyFileSystem) Write(ctx context.Context, path string, content io.Reader, options ...Option) error {
	return r.readOnlyError("write", path)
}

// OpenWrite returns ErrReadOnly.
func (r *ReadOnlyFileSystem) OpenWrite(ctx context.Context, path string, options ...Option) (WriteHandle, error) {
	return nil, r.readOnlyError("write", path)
}

// Delete returns ErrReadOnly.
func (r *ReadOnlyFileSystem) Delete(ctx context.Context, path string) error {
	return r.readOnlyError("delete", path)
}

// CreateDir returns ErrReadOnly.
func (r *ReadOnlyFileSystem) CreateDir(ctx context.Context, path string) error {
	return r.readOnlyError("createdir", path)
}

// DeleteDir returns ErrReadOnly.
func (r *ReadOnlyFileSystem) DeleteDir(ctx context.Context, path string, recursive bool) error {
	return r.readOnlyError("deletedir", path)
}

// Close closes the underlying filesystem.
func (r *ReadOnlyFileSystem) Close() error {
	return r.fs.Close()
}

// ============================================================================
// Optional Interface Delegation
// ============================================================================

// Copy returns ErrReadOnly: the destination is a write.
func (r *ReadOnlyFileSystem) Copy(ctx context.Context, src, dst string) error {
	return r.readOnlyError("copy", dst)
}

// Move returns ErrReadOnly.
func (r *ReadOnlyFileSystem) Move(ctx context.Context, src, dst string) error {
	return r.readOnlyError("move", dst)
}

// Checksum delegates to the underlying filesystem if supported.
func (r *ReadOnlyFileSystem) Checksum(ctx context.Context, path string, algorithm ChecksumAlgorithm) (string, error) {
	if checksummer, ok := r.fs.(CanChecksum); ok {
		return checksummer.Checksum(ctx, path, algorithm)
	}
	return "", &PathError{Op: "checksum", Path: path, Err: ErrNotSupported}
}

// Checksums delegates to the underlying filesystem if supported.
func (r *ReadOnlyFileSystem) Checksums(ctx context.Context, path string, algorithms []ChecksumAlgorithm) (map[ChecksumAlgorithm]string, error) {
	if checksummer, ok := r.fs.(CanChecksum); ok {
		return checksummer.Checksums(ctx, path, algorithms)
	}
	return nil, &PathError{Op: "checksums", Path: path, Err: ErrNotSupported}
}

// Ensure ReadOnlyFileSystem implements FileSystem and optional interfaces
var (
	_ FileSystem  = (*ReadOnlyFileSystem)(nil)
	_ CanCopy     = (*ReadOnlyFileSystem)(nil)
	_ CanMove     = (*ReadOnlyFileSystem)(nil)
	_ CanChecksum = (*ReadOnlyFileSystem)(nil)
)

// IsReadOnlyError checks if an error is due to read-only restrictions.
func IsReadOnlyError(err error) bool {
	return errors.Is(err, ErrReadOnly)
}
