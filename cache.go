package crossfs

import (
	"bytes"
	"context"
	"io"
)

// ============================================================================
// CachingFileSystem Decorator
// ============================================================================

// CachingFileSystem is a read-only view of a slow back filesystem with a fast
// front filesystem acting as a content cache. Reads are served from the front
// when present; a miss fills the front from the back. Metadata and listings
// always come from the back, which stays the source of truth.
//
// Typical use: an S3 or SFTP back with a local or memory front.
//
//	cached := crossfs.NewCachingFileSystem(localFront, s3Back)
//	data, _ := cached.ReadAll(ctx, "datasets/2024.csv") // fills the front
//	data, _ = cached.ReadAll(ctx, "datasets/2024.csv")  // served locally
type CachingFileSystem struct {
	front FileSystem
	back  FileSystem
}

// NewCachingFileSystem creates a read-through cache with front caching back.
func NewCachingFileSystem(front, back FileSystem) *CachingFileSystem {
	return &CachingFileSystem{front: front, back: back}
}

// Front returns the cache filesystem.
func (c *CachingFileSystem) Front() FileSystem {
	return c.front
}

// Back returns the source-of-truth filesystem.
func (c *CachingFileSystem) Back() FileSystem {
	return c.back
}

// fill copies path from back to front and returns the content.
func (c *CachingFileSystem) fill(ctx context.Context, path string) ([]byte, error) {
	data, err := c.back.ReadAll(ctx, path)
	if err != nil {
		return nil, err
	}
	if err := c.front.Write(ctx, path, bytes.NewReader(data), WithOverwrite(true)); err != nil {
		return nil, err
	}
	return data, nil
}

// ReadAll serves from the front, filling it from the back on miss.
func (c *CachingFileSystem) ReadAll(ctx context.Context, path string) ([]byte, error) {
	ok, err := c.front.FileExists(ctx, path)
	if err == nil && ok {
		return c.front.ReadAll(ctx, path)
	}
	return c.fill(ctx, path)
}

// Read serves from the front, filling it from the back on miss.
func (c *CachingFileSystem) Read(ctx context.Context, path string) (io.ReadCloser, error) {
	ok, err := c.front.FileExists(ctx, path)
	if err == nil && ok {
		return c.front.Read(ctx, path)
	}
	if _, err := c.fill(ctx, path); err != nil {
		return nil, err
	}
	return c.front.Read(ctx, path)
}

// ReadRange serves from the front, filling it from the back on miss.
func (c *CachingFileSystem) ReadRange(ctx context.Context, path string, offset, length int64) ([]byte, error) {
	ok, err := c.front.FileExists(ctx, path)
	if err == nil && ok {
		return c.front.ReadRange(ctx, path, offset, length)
	}
	if _, err := c.fill(ctx, path); err != nil {
		return nil, err
	}
	return c.front.ReadRange(ctx, path, offset, length)
}

// FileExists consults the back; the front may lag behind.
func (c *CachingFileSystem) FileExists(ctx context.Context, path string) (bool, error) {
	return c.back.FileExists(ctx, path)
}

// DirExists consults the back.
func (c *CachingFileSystem) DirExists(ctx context.Context, path string) (bool, error) {
	return c.back.DirExists(ctx, path)
}

// Stat consults the back.
func (c *CachingFileSystem) Stat(ctx context.Context, path string) (*FileInfo, error) {
	return c.back.Stat(ctx, path)
}

// ListContents consults the back.
func (c *CachingFileSystem) ListContents(ctx context.Context, path string, recursive bool) ([]FileInfo, error) {
	return c.back.ListContents(ctx, path, recursive)
}

// ============================================================================
// Write Operations (Blocked)
// ============================================================================
// The cache is a read-only view: allowing writes would let the front and back
// drift apart silently.

// Write returns ErrReadOnly.
func (c *CachingFileSystem) Write(ctx context.Context, path string, content io.Reader, options ...Option) error {
	return &PathError{Op: "write", Path: path, Err: ErrReadOnly}
}

// OpenWrite returns ErrReadOnly.
func (c *CachingFileSystem) OpenWrite(ctx context.Context, path string, options ...Option) (WriteHandle, error) {
	return nil, &PathError{Op: "write", Path: path, Err: ErrReadOnly}
}

// Delete returns ErrReadOnly.
func (c *CachingFileSystem) Delete(ctx context.Context, path string) error {
	return &PathError{Op: "delete", Path: path, Err: ErrReadOnly}
}

// CreateDir returns ErrReadOnly.
func (c *CachingFileSystem) CreateDir(ctx context.Context, path string) error {
	return &PathError{Op: "createdir", Path: path, Err: ErrReadOnly}
}

// DeleteDir returns ErrReadOnly.
func (c *CachingFileSystem) DeleteDir(ctx context.Context, path string, recursive bool) error {
	return &PathError{Op: "deletedir", Path: path, Err: ErrReadOnly}
}

// Close closes both filesystems; the back error wins.
func (c *CachingFileSystem) Close() error {
	ferr := c.front.Close()
	berr := c.back.Close()
	if berr != nil {
		return berr
	}
	return ferr
}

var _ FileSystem = (*CachingFileSystem)(nil)
