// Package local provides a local-disk implementation of crossfs.FileSystem.
// All paths are confined to the configured root directory.
package local

import (
	"context"
	"errors"
	"io"
	"io/fs"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/crossfs/crossfs"
)

// Adapter provides a local filesystem implementation of crossfs.FileSystem
type Adapter struct {
	root string
}

// New creates a new local filesystem adapter rooted at root. The directory is
// created if it does not exist.
func New(root string) (*Adapter, error) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, err
	}

	if err := os.MkdirAll(absRoot, 0755); err != nil {
		return nil, err
	}

	return &Adapter{
		root: absRoot,
	}, nil
}

// rooted resolves path beneath the adapter root, rejecting escapes.
func (a *Adapter) rooted(op, path string) (string, error) {
	fullPath := filepath.Join(a.root, filepath.Clean("/"+path))
	if !isPathUnderRoot(a.root, fullPath) {
		return "", &crossfs.PathError{Op: op, Path: path, Err: crossfs.ErrInvalidPath}
	}
	return fullPath, nil
}

// Write implements crossfs.FileWriter
func (a *Adapter) Write(ctx context.Context, path string, content io.Reader, options ...crossfs.Option) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	fullPath, err := a.rooted("write", path)
	if err != nil {
		return err
	}

	opts := crossfs.ApplyOptions(options...)
	if info, err := os.Stat(fullPath); err == nil {
		if info.IsDir() {
			return &crossfs.PathError{Op: "write", Path: path, Err: crossfs.ErrIsDir}
		}
		if !opts.Overwrite {
			return &crossfs.PathError{Op: "write", Path: path, Err: crossfs.ErrExist}
		}
	}

	if err := os.MkdirAll(filepath.Dir(fullPath), 0755); err != nil {
		return mapLocalError("write", path, err)
	}

	// Stage in a temp file in the same directory so the final rename is
	// atomic and a failed write never leaves a partial target.
	tmp, err := os.CreateTemp(filepath.Dir(fullPath), ".crossfs-*")
	if err != nil {
		return mapLocalError("write", path, err)
	}
	tmpName := tmp.Name()

	if _, err := io.Copy(tmp, content); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return mapLocalError("write", path, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return mapLocalError("write", path, err)
	}
	if err := os.Chmod(tmpName, 0644); err != nil {
		os.Remove(tmpName)
		return mapLocalError("write", path, err)
	}
	if err := os.Rename(tmpName, fullPath); err != nil {
		os.Remove(tmpName)
		return mapLocalError("write", path, err)
	}

	return nil
}

// OpenWrite implements crossfs.FileWriter. The handle stages content in a
// temp file and renames it into place on Close; Abort removes the temp file.
func (a *Adapter) OpenWrite(ctx context.Context, path string, options ...crossfs.Option) (crossfs.WriteHandle, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	fullPath, err := a.rooted("write", path)
	if err != nil {
		return nil, err
	}

	opts := crossfs.ApplyOptions(options...)
	if info, err := os.Stat(fullPath); err == nil {
		if info.IsDir() {
			return nil, &crossfs.PathError{Op: "write", Path: path, Err: crossfs.ErrIsDir}
		}
		if !opts.Overwrite {
			return nil, &crossfs.PathError{Op: "write", Path: path, Err: crossfs.ErrExist}
		}
	}

	if err := os.MkdirAll(filepath.Dir(fullPath), 0755); err != nil {
		return nil, mapLocalError("write", path, err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(fullPath), ".crossfs-*")
	if err != nil {
		return nil, mapLocalError("write", path, err)
	}

	return &writeHandle{file: tmp, target: fullPath, path: path}, nil
}

// writeHandle commits a staged temp file on Close.
type writeHandle struct {
	file   *os.File
	target string
	path   string
	done   bool
}

func (h *writeHandle) Write(p []byte) (int, error) {
	if h.done {
		return 0, crossfs.ErrClosed
	}
	return h.file.Write(p)
}

func (h *writeHandle) Close() error {
	if h.done {
		return crossfs.ErrClosed
	}
	h.done = true

	tmpName := h.file.Name()
	if err := h.file.Close(); err != nil {
		os.Remove(tmpName)
		return mapLocalError("write", h.path, err)
	}
	if err := os.Chmod(tmpName, 0644); err != nil {
		os.Remove(tmpName)
		return mapLocalError("write", h.path, err)
	}
	if err := os.Rename(tmpName, h.target); err != nil {
		os.Remove(tmpName)
		return mapLocalError("write", h.path, err)
	}
	return nil
}

func (h *writeHandle) Abort() error {
	if h.done {
		return crossfs.ErrClosed
	}
	h.done = true

	tmpName := h.file.Name()
	h.file.Close()
	return os.Remove(tmpName)
}

// Read implements crossfs.FileReader
func (a *Adapter) Read(ctx context.Context, path string) (io.ReadCloser, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	fullPath, err := a.rooted("read", path)
	if err != nil {
		return nil, err
	}

	info, err := os.Stat(fullPath)
	if err != nil {
		return nil, mapLocalError("read", path, err)
	}
	if info.IsDir() {
		return nil, &crossfs.PathError{Op: "read", Path: path, Err: crossfs.ErrIsDir}
	}

	f, err := os.Open(fullPath)
	if err != nil {
		return nil, mapLocalError("read", path, err)
	}

	return f, nil
}

// ReadAll implements crossfs.FileReader
func (a *Adapter) ReadAll(ctx context.Context, path string) ([]byte, error) {
	rc, err := a.Read(ctx, path)
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	return io.ReadAll(rc)
}

// ReadRange implements crossfs.FileReader
func (a *Adapter) ReadRange(ctx context.Context, path string, offset, length int64) ([]byte, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	if offset < 0 {
		return nil, &crossfs.PathError{Op: "read", Path: path, Err: crossfs.ErrInvalidPath}
	}

	fullPath, err := a.rooted("read", path)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(fullPath)
	if err != nil {
		return nil, mapLocalError("read", path, err)
	}
	defer f.Close()

	if _, err := f.Seek(offset, io.SeekStart); err != nil {
		return nil, mapLocalError("read", path, err)
	}

	var r io.Reader = f
	if length >= 0 {
		r = io.LimitReader(f, length)
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, mapLocalError("read", path, err)
	}
	return data, nil
}

// Delete implements crossfs.FileWriter
func (a *Adapter) Delete(ctx context.Context, path string) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	fullPath, err := a.rooted("delete", path)
	if err != nil {
		return err
	}

	info, err := os.Stat(fullPath)
	if err != nil {
		return mapLocalError("delete", path, err)
	}
	if info.IsDir() {
		return &crossfs.PathError{Op: "delete", Path: path, Err: crossfs.ErrIsDir}
	}

	if err := os.Remove(fullPath); err != nil {
		return mapLocalError("delete", path, err)
	}

	return nil
}

// FileExists implements crossfs.FileReader
func (a *Adapter) FileExists(ctx context.Context, path string) (bool, error) {
	select {
	case <-ctx.Done():
		return false, ctx.Err()
	default:
	}

	fullPath, err := a.rooted("fileexists", path)
	if err != nil {
		return false, err
	}

	info, err := os.Stat(fullPath)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, mapLocalError("fileexists", path, err)
	}

	return !info.IsDir(), nil
}

// DirExists implements crossfs.FileReader
func (a *Adapter) DirExists(ctx context.Context, path string) (bool, error) {
	select {
	case <-ctx.Done():
		return false, ctx.Err()
	default:
	}

	fullPath, err := a.rooted("direxists", path)
	if err != nil {
		return false, err
	}

	info, err := os.Stat(fullPath)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, mapLocalError("direxists", path, err)
	}

	return info.IsDir(), nil
}

// Stat implements crossfs.FileReader
func (a *Adapter) Stat(ctx context.Context, path string) (*crossfs.FileInfo, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	fullPath, err := a.rooted("stat", path)
	if err != nil {
		return nil, err
	}

	info, err := os.Stat(fullPath)
	if err != nil {
		return nil, mapLocalError("stat", path, err)
	}

	contentType := ""
	if !info.IsDir() {
		contentType = getContentType(fullPath)
	}

	return &crossfs.FileInfo{
		Name:        filepath.Base(fullPath),
		Path:        path,
		Size:        info.Size(),
		ModTime:     info.ModTime(),
		IsDir:       info.IsDir(),
		ContentType: contentType,
	}, nil
}

// ListContents implements crossfs.FileReader
func (a *Adapter) ListContents(ctx context.Context, path string, recursive bool) ([]crossfs.FileInfo, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	fullPath, err := a.rooted("listcontents", path)
	if err != nil {
		return nil, err
	}

	info, err := os.Stat(fullPath)
	if err != nil {
		return nil, mapLocalError("listcontents", path, err)
	}
	if !info.IsDir() {
		return nil, &crossfs.PathError{Op: "listcontents", Path: path, Err: crossfs.ErrNotDir}
	}

	var files []crossfs.FileInfo

	if recursive {
		err = filepath.Walk(fullPath, func(walkPath string, info os.FileInfo, err error) error {
			if err != nil {
				return err
			}
			if walkPath == fullPath {
				return nil
			}

			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}

			relPath, err := filepath.Rel(a.root, walkPath)
			if err != nil {
				return err
			}

			contentType := ""
			if !info.IsDir() {
				contentType = getContentType(walkPath)
			}

			files = append(files, crossfs.FileInfo{
				Name:        info.Name(),
				Path:        filepath.ToSlash(relPath),
				Size:        info.Size(),
				ModTime:     info.ModTime(),
				IsDir:       info.IsDir(),
				ContentType: contentType,
			})

			return nil
		})
		if err != nil {
			return nil, mapLocalError("listcontents", path, err)
		}
	} else {
		entries, err := os.ReadDir(fullPath)
		if err != nil {
			return nil, mapLocalError("listcontents", path, err)
		}

		files = make([]crossfs.FileInfo, 0, len(entries))
		for _, entry := range entries {
			info, err := entry.Info()
			if err != nil {
				continue
			}

			entryFull := filepath.Join(fullPath, entry.Name())
			relPath, err := filepath.Rel(a.root, entryFull)
			if err != nil {
				continue
			}

			contentType := ""
			if !info.IsDir() {
				contentType = getContentType(entryFull)
			}

			files = append(files, crossfs.FileInfo{
				Name:        entry.Name(),
				Path:        filepath.ToSlash(relPath),
				Size:        info.Size(),
				ModTime:     info.ModTime(),
				IsDir:       info.IsDir(),
				ContentType: contentType,
			})
		}
	}

	return files, nil
}

// CreateDir implements crossfs.FileWriter
func (a *Adapter) CreateDir(ctx context.Context, path string) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	fullPath, err := a.rooted("createdir", path)
	if err != nil {
		return err
	}

	if info, err := os.Stat(fullPath); err == nil && !info.IsDir() {
		return &crossfs.PathError{Op: "createdir", Path: path, Err: crossfs.ErrNotDir}
	}

	if err := os.MkdirAll(fullPath, 0755); err != nil {
		return mapLocalError("createdir", path, err)
	}

	return nil
}

// DeleteDir implements crossfs.FileWriter
func (a *Adapter) DeleteDir(ctx context.Context, path string, recursive bool) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	fullPath, err := a.rooted("deletedir", path)
	if err != nil {
		return err
	}

	info, err := os.Stat(fullPath)
	if err != nil {
		return mapLocalError("deletedir", path, err)
	}
	if !info.IsDir() {
		return &crossfs.PathError{Op: "deletedir", Path: path, Err: crossfs.ErrNotDir}
	}

	if recursive {
		if err := os.RemoveAll(fullPath); err != nil {
			return mapLocalError("deletedir", path, err)
		}
		return nil
	}

	// os.Remove on a non-empty directory fails, but with a platform
	// dependent error; check first so the failure maps to ErrNotEmpty.
	entries, err := os.ReadDir(fullPath)
	if err != nil {
		return mapLocalError("deletedir", path, err)
	}
	if len(entries) > 0 {
		return &crossfs.PathError{Op: "deletedir", Path: path, Err: crossfs.ErrNotEmpty}
	}

	if err := os.Remove(fullPath); err != nil {
		return mapLocalError("deletedir", path, err)
	}
	return nil
}

// Close implements crossfs.FileSystem. The local adapter holds no
// long-lived resources.
func (a *Adapter) Close() error {
	return nil
}

// ============================================================================
// Optional Capability Interfaces
// ============================================================================

// Copy implements crossfs.CanCopy for native file copying.
func (a *Adapter) Copy(ctx context.Context, src, dst string) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	srcPath, err := a.rooted("copy", src)
	if err != nil {
		return err
	}
	dstPath, err := a.rooted("copy", dst)
	if err != nil {
		return err
	}

	srcFile, err := os.Open(srcPath)
	if err != nil {
		return mapLocalError("copy", src, err)
	}
	defer srcFile.Close()

	if info, err := srcFile.Stat(); err == nil && info.IsDir() {
		return &crossfs.PathError{Op: "copy", Path: src, Err: crossfs.ErrIsDir}
	}

	if err := os.MkdirAll(filepath.Dir(dstPath), 0755); err != nil {
		return mapLocalError("copy", dst, err)
	}

	dstFile, err := os.Create(dstPath)
	if err != nil {
		return mapLocalError("copy", dst, err)
	}
	defer dstFile.Close()

	if _, err := io.Copy(dstFile, srcFile); err != nil {
		return mapLocalError("copy", dst, err)
	}

	if srcInfo, err := os.Stat(srcPath); err == nil {
		os.Chmod(dstPath, srcInfo.Mode())
	}

	return nil
}

// Move implements crossfs.CanMove. Rename is tried first; on cross-device
// failure it falls back to copy+delete, and the source survives any copy
// failure.
func (a *Adapter) Move(ctx context.Context, src, dst string) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	srcPath, err := a.rooted("move", src)
	if err != nil {
		return err
	}
	dstPath, err := a.rooted("move", dst)
	if err != nil {
		return err
	}

	if _, err := os.Stat(srcPath); err != nil {
		return mapLocalError("move", src, err)
	}

	if err := os.MkdirAll(filepath.Dir(dstPath), 0755); err != nil {
		return mapLocalError("move", dst, err)
	}

	if err := os.Rename(srcPath, dstPath); err != nil {
		if err := a.Copy(ctx, src, dst); err != nil {
			return err
		}
		if err := os.Remove(srcPath); err != nil {
			return mapLocalError("move", src, err)
		}
	}

	return nil
}

// Checksum implements crossfs.CanChecksum for local files.
func (a *Adapter) Checksum(ctx context.Context, path string, algorithm crossfs.ChecksumAlgorithm) (string, error) {
	select {
	case <-ctx.Done():
		return "", ctx.Err()
	default:
	}

	fullPath, err := a.rooted("checksum", path)
	if err != nil {
		return "", err
	}

	file, err := os.Open(fullPath)
	if err != nil {
		return "", mapLocalError("checksum", path, err)
	}
	defer file.Close()

	checksum, err := crossfs.CalculateChecksum(file, algorithm)
	if err != nil {
		return "", crossfs.WrapPathErr("checksum", path, err)
	}

	return checksum, nil
}

// Checksums implements crossfs.CanChecksum for multi-hash calculation.
func (a *Adapter) Checksums(ctx context.Context, path string, algorithms []crossfs.ChecksumAlgorithm) (map[crossfs.ChecksumAlgorithm]string, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	fullPath, err := a.rooted("checksums", path)
	if err != nil {
		return nil, err
	}

	file, err := os.Open(fullPath)
	if err != nil {
		return nil, mapLocalError("checksums", path, err)
	}
	defer file.Close()

	checksums, err := crossfs.CalculateChecksums(file, algorithms)
	if err != nil {
		return nil, crossfs.WrapPathErr("checksums", path, err)
	}

	return checksums, nil
}

// ============================================================================
// Helpers
// ============================================================================

// mapLocalError translates an os error into a crossfs PathError.
func mapLocalError(op, path string, err error) error {
	switch {
	case os.IsNotExist(err):
		return &crossfs.PathError{Op: op, Path: path, Err: crossfs.ErrNotExist}
	case os.IsExist(err):
		return &crossfs.PathError{Op: op, Path: path, Err: crossfs.ErrExist}
	case os.IsPermission(err):
		return &crossfs.PathError{Op: op, Path: path, Err: crossfs.ErrPermission}
	case errors.Is(err, fs.ErrInvalid):
		return &crossfs.PathError{Op: op, Path: path, Err: crossfs.ErrInvalidPath}
	default:
		return crossfs.WrapPathErr(op, path, err)
	}
}

// isPathUnderRoot checks if a path is under a given root directory
func isPathUnderRoot(root, path string) bool {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return false
	}

	return !filepath.IsAbs(rel) && rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

// getContentType tries to determine the content type of a file
func getContentType(path string) string {
	ext := filepath.Ext(path)
	if ext != "" {
		if contentType := mime.TypeByExtension(ext); contentType != "" {
			return contentType
		}
	}

	file, err := os.Open(path)
	if err != nil {
		return ""
	}
	defer file.Close()

	buffer := make([]byte, 512)
	n, err := file.Read(buffer)
	if err != nil && !errors.Is(err, io.EOF) {
		return ""
	}

	return http.DetectContentType(buffer[:n])
}

// Ensure Adapter implements interfaces
var (
	_ crossfs.FileSystem  = (*Adapter)(nil)
	_ crossfs.FileReader  = (*Adapter)(nil)
	_ crossfs.FileWriter  = (*Adapter)(nil)
	_ crossfs.CanCopy     = (*Adapter)(nil)
	_ crossfs.CanMove     = (*Adapter)(nil)
	_ crossfs.CanChecksum = (*Adapter)(nil)
)
