package crossfs

import (
	"context"
	"io"
)

// ============================================================================
// WriteOnceFileSystem Decorator
// ============================================================================

// WriteOnceFileSystem wraps a FileSystem so every path can be written at most
// once: writes to an existing target fail with ErrExist regardless of the
// overwrite option, and deletes are blocked. Reads pass through unchanged.
// Useful for append-only archives and audit trails.
type WriteOnceFileSystem struct {
	fs FileSystem
}

// NewWriteOnceFileSystem creates a write-once wrapper around fs.
func NewWriteOnceFileSystem(fs FileSystem) *WriteOnceFileSystem {
	return &WriteOnceFileSystem{fs: fs}
}

// Unwrap returns the underlying FileSystem.
func (w *WriteOnceFileSystem) Unwrap() FileSystem {
	return w.fs
}

// Read delegates to the underlying filesystem.
func (w *WriteOnceFileSystem) Read(ctx context.Context, path string) (io.ReadCloser, error) {
	return w.fs.Read(ctx, path)
}

// ReadAll delegates to the underlying filesystem.
func (w *WriteOnceFileSystem) ReadAll(ctx context.Context, path string) ([]byte, error) {
	return w.fs.ReadAll(ctx, path)
}

// ReadRange delegates to the underlying filesystem.
func (w *WriteOnceFileSystem) ReadRange(ctx context.Context, path string, offset, length int64) ([]byte, error) {
	return w.fs.ReadRange(ctx, path, offset, length)
}

// FileExists delegates to the underlying filesystem.
func (w *WriteOnceFileSystem) FileExists(ctx context.Context, path string) (bool, error) {
	return w.fs.FileExists(ctx, path)
}

// DirExists delegates to the underlying filesystem.
func (w *WriteOnceFileSystem) DirExists(ctx context.Context, path string) (bool, error) {
	return w.fs.DirExists(ctx, path)
}

// Stat delegates to the underlying filesystem.
func (w *WriteOnceFileSystem) Stat(ctx context.Context, path string) (*FileInfo, error) {
	return w.fs.Stat(ctx, path)
}

// ListContents delegates to the underlying filesystem.
func (w *WriteOnceFileSystem) ListContents(ctx context.Context, path string, recursive bool) ([]FileInfo, error) {
	return w.fs.ListContents(ctx, path, recursive)
}

// Write writes only when the target does not exist yet. The overwrite option
// is stripped before delegation so the underlying driver enforces ErrExist.
func (w *WriteOnceFileSystem) Write(ctx context.Context, path string, content io.Reader, options ...Option) error {
	exists, err := w.fs.FileExists(ctx, path)
	if err != nil {
		return err
	}
	if exists {
		return &PathError{Op: "write", Path: path, Err: ErrExist}
	}
	opts := ApplyOptions(options...)
	rebuilt := []Option{WithOverwrite(false)}
	if opts.ContentType != "" {
		rebuilt = append(rebuilt, WithContentType(opts.ContentType))
	}
	if opts.Metadata != nil {
		rebuilt = append(rebuilt, WithMetadata(opts.Metadata))
	}
	return w.fs.Write(ctx, path, content, rebuilt...)
}

// OpenWrite opens a handle only when the target does not exist yet.
func (w *WriteOnceFileSystem) OpenWrite(ctx context.Context, path string, options ...Option) (WriteHandle, error) {
	exists, err := w.fs.FileExists(ctx, path)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, &PathError{Op: "write", Path: path, Err: ErrExist}
	}
	return w.fs.OpenWrite(ctx, path, options...)
}

// Delete returns ErrReadOnly; written data is immutable.
func (w *WriteOnceFileSystem) Delete(ctx context.Context, path string) error {
	return &PathError{Op: "delete", Path: path, Err: ErrReadOnly}
}

// CreateDir delegates to the underlying filesystem.
func (w *WriteOnceFileSystem) CreateDir(ctx context.Context, path string) error {
	return w.fs.CreateDir(ctx, path)
}

// DeleteDir returns ErrReadOnly.
func (w *WriteOnceFileSystem) DeleteDir(ctx context.Context, path string, recursive bool) error {
	return &PathError{Op: "deletedir", Path: path, Err: ErrReadOnly}
}

// Close closes the underlying filesystem.
func (w *WriteOnceFileSystem) Close() error {
	return w.fs.Close()
}

var _ FileSystem = (*WriteOnceFileSystem)(nil)
