package crossfs

import (
	"context"
	"io"
)

// Root binds a name to one FileSystem driver and fronts it with path
// normalization. Every path argument is parsed through ParsePath before it
// reaches the driver, so drivers only ever see canonical rooted paths.
type Root struct {
	name string
	fs   FileSystem
}

// NewRoot creates a Root named name over fs.
func NewRoot(name string, fs FileSystem) *Root {
	return &Root{name: name, fs: fs}
}

// Name returns the root's name.
func (r *Root) Name() string {
	return r.name
}

// FS exposes the underlying driver, mainly for capability assertions.
func (r *Root) FS() FileSystem {
	return r.fs
}

// Close closes the underlying driver.
func (r *Root) Close() error {
	return r.fs.Close()
}

func (r *Root) normalize(op, raw string) (string, error) {
	p, err := ParsePath(raw)
	if err != nil {
		return "", WrapPathErr(op, raw, err)
	}
	return p.AsFile().String(), nil
}

// Exists reports whether a file or directory exists at path. Absence is never
// an error; transport failures surface as ErrConnection.
func (r *Root) Exists(ctx context.Context, path string) (bool, error) {
	np, err := r.normalize("exists", path)
	if err != nil {
		return false, err
	}
	ok, err := r.fs.FileExists(ctx, np)
	if err != nil {
		return false, err
	}
	if ok {
		return true, nil
	}
	return r.fs.DirExists(ctx, np)
}

// Stat returns metadata for the file or directory at path.
func (r *Root) Stat(ctx context.Context, path string) (*FileInfo, error) {
	np, err := r.normalize("stat", path)
	if err != nil {
		return nil, err
	}
	return r.fs.Stat(ctx, np)
}

// Read returns the whole content of the file at path.
func (r *Root) Read(ctx context.Context, path string) ([]byte, error) {
	np, err := r.normalize("read", path)
	if err != nil {
		return nil, err
	}
	return r.fs.ReadAll(ctx, np)
}

// ReadRange reads length bytes starting at offset. Negative length reads to
// the end of the file.
func (r *Root) ReadRange(ctx context.Context, path string, offset, length int64) ([]byte, error) {
	np, err := r.normalize("read", path)
	if err != nil {
		return nil, err
	}
	return r.fs.ReadRange(ctx, np, offset, length)
}

// OpenRead returns a stream over the file at path.
func (r *Root) OpenRead(ctx context.Context, path string) (io.ReadCloser, error) {
	np, err := r.normalize("open", path)
	if err != nil {
		return nil, err
	}
	return r.fs.Read(ctx, np)
}

// Write stores content at path, creating parent directories transparently.
func (r *Root) Write(ctx context.Context, path string, content io.Reader, opts ...Option) error {
	np, err := r.normalize("write", path)
	if err != nil {
		return err
	}
	return r.fs.Write(ctx, np, content, opts...)
}

// OpenWrite opens a streaming write handle at path.
func (r *Root) OpenWrite(ctx context.Context, path string, opts ...Option) (WriteHandle, error) {
	np, err := r.normalize("write", path)
	if err != nil {
		return nil, err
	}
	return r.fs.OpenWrite(ctx, np, opts...)
}

// Delete removes the entry at path. Directories require recursive unless
// empty.
func (r *Root) Delete(ctx context.Context, path string, recursive bool) error {
	np, err := r.normalize("delete", path)
	if err != nil {
		return err
	}
	isDir, err := r.fs.DirExists(ctx, np)
	if err != nil {
		return err
	}
	if isDir {
		return r.fs.DeleteDir(ctx, np, recursive)
	}
	return r.fs.Delete(ctx, np)
}

// List returns the direct children of the directory at path, sorted by
// normalized path regardless of backend ordering. The listing is a snapshot;
// concurrent mutations may or may not appear.
func (r *Root) List(ctx context.Context, path string) ([]FileInfo, error) {
	np, err := r.normalize("list", path)
	if err != nil {
		return nil, err
	}
	entries, err := r.fs.ListContents(ctx, np, false)
	if err != nil {
		return nil, err
	}
	SortByPath(entries)
	return entries, nil
}

// ListAll returns all descendants of the directory at path, sorted.
func (r *Root) ListAll(ctx context.Context, path string) ([]FileInfo, error) {
	np, err := r.normalize("list", path)
	if err != nil {
		return nil, err
	}
	entries, err := r.fs.ListContents(ctx, np, true)
	if err != nil {
		return nil, err
	}
	SortByPath(entries)
	return entries, nil
}

// Mkdir creates the directory at path. Without parents the parent directory
// must already exist.
func (r *Root) Mkdir(ctx context.Context, path string, parents bool) error {
	np, err := r.normalize("mkdir", path)
	if err != nil {
		return err
	}
	if !parents {
		p := MustParsePath(np)
		if parent, perr := p.Parent(); perr == nil && !parent.IsRoot() {
			ok, err := r.fs.DirExists(ctx, parent.AsFile().String())
			if err != nil {
				return err
			}
			if !ok {
				return NewPathError("mkdir", path, ErrNotExist)
			}
		}
	}
	return r.fs.CreateDir(ctx, np)
}

// Rmdir removes the directory at path; it must be empty.
func (r *Root) Rmdir(ctx context.Context, path string) error {
	np, err := r.normalize("rmdir", path)
	if err != nil {
		return err
	}
	return r.fs.DeleteDir(ctx, np, false)
}

// Copy duplicates the file at src to dst within this root. The driver's
// native copy is used when available, otherwise the content is streamed.
func (r *Root) Copy(ctx context.Context, src, dst string) error {
	nsrc, err := r.normalize("copy", src)
	if err != nil {
		return err
	}
	ndst, err := r.normalize("copy", dst)
	if err != nil {
		return err
	}
	if copier, ok := r.fs.(CanCopy); ok {
		return copier.Copy(ctx, nsrc, ndst)
	}
	return streamCopy(ctx, r.fs, nsrc, r.fs, ndst)
}

// Move relocates the file at src to dst within this root. The driver's native
// move is used when available; otherwise copy-then-delete, and the source is
// never removed until the destination write has succeeded.
func (r *Root) Move(ctx context.Context, src, dst string) error {
	nsrc, err := r.normalize("move", src)
	if err != nil {
		return err
	}
	ndst, err := r.normalize("move", dst)
	if err != nil {
		return err
	}
	if mover, ok := r.fs.(CanMove); ok {
		return mover.Move(ctx, nsrc, ndst)
	}
	if err := streamCopy(ctx, r.fs, nsrc, r.fs, ndst); err != nil {
		return err
	}
	return r.fs.Delete(ctx, nsrc)
}

// CopyBetween streams the file at srcPath on src to dstPath on dst. The two
// roots may be backed by different drivers.
func CopyBetween(ctx context.Context, src *Root, srcPath string, dst *Root, dstPath string) error {
	nsrc, err := src.normalize("copy", srcPath)
	if err != nil {
		return err
	}
	ndst, err := dst.normalize("copy", dstPath)
	if err != nil {
		return err
	}
	return streamCopy(ctx, src.fs, nsrc, dst.fs, ndst)
}

// MoveBetween copies the file from src to dst and deletes the source only
// after the destination write has succeeded.
func MoveBetween(ctx context.Context, src *Root, srcPath string, dst *Root, dstPath string) error {
	nsrc, err := src.normalize("move", srcPath)
	if err != nil {
		return err
	}
	ndst, err := dst.normalize("move", dstPath)
	if err != nil {
		return err
	}
	if err := streamCopy(ctx, src.fs, nsrc, dst.fs, ndst); err != nil {
		return err
	}
	return src.fs.Delete(ctx, nsrc)
}

// streamCopy reads src from sfs and writes it to dst on dfs, preserving the
// source's content type. The destination is overwritten.
func streamCopy(ctx context.Context, sfs FileSystem, src string, dfs FileSystem, dst string) error {
	info, err := sfs.Stat(ctx, src)
	if err != nil {
		return err
	}
	if info.IsDir {
		return NewPathError("copy", src, ErrIsDir)
	}

	reader, err := sfs.Read(ctx, src)
	if err != nil {
		return err
	}
	defer reader.Close()

	opts := []Option{WithOverwrite(true)}
	if info.ContentType != "" {
		opts = append(opts, WithContentType(info.ContentType))
	}
	return dfs.Write(ctx, dst, reader, opts...)
}
