package crossfs

import (
	"bytes"
	"context"
	"io"
)

// ============================================================================
// MirrorFileSystem Decorator
// ============================================================================

// MirrorFileSystem lazily replicates a back filesystem onto a front one.
// Reads clone missing content from back to front and then serve from the
// front; writes and deletes apply to both so the two stay in step for every
// path this decorator has touched. Listings and metadata come from the back,
// the authoritative side.
//
// This is the piece used for warm standby copies: point front at cheap local
// disk, back at the remote store, and the mirror builds itself as data is
// accessed.
type MirrorFileSystem struct {
	front FileSystem
	back  FileSystem
}

// NewMirrorFileSystem creates a mirror with front tracking back.
func NewMirrorFileSystem(front, back FileSystem) *MirrorFileSystem {
	return &MirrorFileSystem{front: front, back: back}
}

// Front returns the replica filesystem.
func (m *MirrorFileSystem) Front() FileSystem {
	return m.front
}

// Back returns the authoritative filesystem.
func (m *MirrorFileSystem) Back() FileSystem {
	return m.back
}

func (m *MirrorFileSystem) clone(ctx context.Context, path string) ([]byte, error) {
	data, err := m.back.ReadAll(ctx, path)
	if err != nil {
		return nil, err
	}
	if err := m.front.Write(ctx, path, bytes.NewReader(data), WithOverwrite(true)); err != nil {
		return nil, err
	}
	return data, nil
}

// ReadAll clones back to front on miss, then serves from the front.
func (m *MirrorFileSystem) ReadAll(ctx context.Context, path string) ([]byte, error) {
	ok, err := m.front.FileExists(ctx, path)
	if err == nil && ok {
		return m.front.ReadAll(ctx, path)
	}
	return m.clone(ctx, path)
}

// Read clones back to front on miss, then serves from the front.
func (m *MirrorFileSystem) Read(ctx context.Context, path string) (io.ReadCloser, error) {
	ok, err := m.front.FileExists(ctx, path)
	if err == nil && ok {
		return m.front.Read(ctx, path)
	}
	if _, err := m.clone(ctx, path); err != nil {
		return nil, err
	}
	return m.front.Read(ctx, path)
}

// ReadRange clones back to front on miss, then serves from the front.
func (m *MirrorFileSystem) ReadRange(ctx context.Context, path string, offset, length int64) ([]byte, error) {
	ok, err := m.front.FileExists(ctx, path)
	if err == nil && ok {
		return m.front.ReadRange(ctx, path, offset, length)
	}
	if _, err := m.clone(ctx, path); err != nil {
		return nil, err
	}
	return m.front.ReadRange(ctx, path, offset, length)
}

// FileExists consults the back.
func (m *MirrorFileSystem) FileExists(ctx context.Context, path string) (bool, error) {
	return m.back.FileExists(ctx, path)
}

// DirExists consults the back.
func (m *MirrorFileSystem) DirExists(ctx context.Context, path string) (bool, error) {
	return m.back.DirExists(ctx, path)
}

// Stat consults the back.
func (m *MirrorFileSystem) Stat(ctx context.Context, path string) (*FileInfo, error) {
	return m.back.Stat(ctx, path)
}

// ListContents consults the back.
func (m *MirrorFileSystem) ListContents(ctx context.Context, path string, recursive bool) ([]FileInfo, error) {
	return m.back.ListContents(ctx, path, recursive)
}

// Write applies to the back first, then replicates to the front. The content
// is buffered so both sides receive the same bytes.
func (m *MirrorFileSystem) Write(ctx context.Context, path string, content io.Reader, options ...Option) error {
	data, err := io.ReadAll(content)
	if err != nil {
		return WrapPathErr("write", path, err)
	}
	if err := m.back.Write(ctx, path, bytes.NewReader(data), options...); err != nil {
		return err
	}
	return m.front.Write(ctx, path, bytes.NewReader(data), WithOverwrite(true))
}

// OpenWrite buffers locally and applies Write on Close.
func (m *MirrorFileSystem) OpenWrite(ctx context.Context, path string, options ...Option) (WriteHandle, error) {
	return &mirrorWriteHandle{ctx: ctx, fs: m, path: path, opts: options}, nil
}

// Delete removes the path from both sides. The front side tolerates absence,
// since it only holds paths that have been read or written through here.
func (m *MirrorFileSystem) Delete(ctx context.Context, path string) error {
	if err := m.back.Delete(ctx, path); err != nil {
		return err
	}
	if ok, err := m.front.FileExists(ctx, path); err == nil && ok {
		return m.front.Delete(ctx, path)
	}
	return nil
}

// CreateDir applies to both sides.
func (m *MirrorFileSystem) CreateDir(ctx context.Context, path string) error {
	if err := m.back.CreateDir(ctx, path); err != nil {
		return err
	}
	return m.front.CreateDir(ctx, path)
}

// DeleteDir applies to both sides.
func (m *MirrorFileSystem) DeleteDir(ctx context.Context, path string, recursive bool) error {
	if err := m.back.DeleteDir(ctx, path, recursive); err != nil {
		return err
	}
	if ok, err := m.front.DirExists(ctx, path); err == nil && ok {
		return m.front.DeleteDir(ctx, path, true)
	}
	return nil
}

// Close closes both filesystems; the back error wins.
func (m *MirrorFileSystem) Close() error {
	ferr := m.front.Close()
	berr := m.back.Close()
	if berr != nil {
		return berr
	}
	return ferr
}

type mirrorWriteHandle struct {
	ctx  context.Context
	fs   *MirrorFileSystem
	path string
	opts []Option
	buf  bytes.Buffer
	done bool
}

func (h *mirrorWriteHandle) Write(p []byte) (int, error) {
	if h.done {
		return 0, ErrClosed
	}
	return h.buf.Write(p)
}

func (h *mirrorWriteHandle) Close() error {
	if h.done {
		return ErrClosed
	}
	h.done = true
	return h.fs.Write(h.ctx, h.path, bytes.NewReader(h.buf.Bytes()), h.opts...)
}

func (h *mirrorWriteHandle) Abort() error {
	if h.done {
		return ErrClosed
	}
	h.done = true
	h.buf.Reset()
	return nil
}

var _ FileSystem = (*MirrorFileSystem)(nil)
