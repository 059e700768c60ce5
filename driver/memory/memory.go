// Package memory provides an in-memory implementation of crossfs.FileSystem.
// Useful for testing and ephemeral storage roots.
package memory

import (
	"bytes"
	"context"
	"io"
	"mime"
	"net/http"
	gopath "path"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/crossfs/crossfs"
)

// memoryFile represents a file stored in memory
type memoryFile struct {
	content     []byte
	contentType string
	metadata    map[string]string
	modTime     time.Time
}

// memoryDir represents a directory in memory
type memoryDir struct {
	modTime time.Time
}

// Adapter provides an in-memory implementation of crossfs.FileSystem
type Adapter struct {
	mu      sync.RWMutex
	files   map[string]*memoryFile
	dirs    map[string]*memoryDir
	maxSize int64 // Maximum total storage size (0 = unlimited)
	size    int64 // Current total size
}

// Config holds configuration for the memory adapter
type Config struct {
	// MaxSize is the maximum total storage size in bytes (0 = unlimited)
	MaxSize int64
}

// New creates a new in-memory filesystem adapter
func New(cfg ...Config) *Adapter {
	var maxSize int64
	if len(cfg) > 0 {
		maxSize = cfg[0].MaxSize
	}

	a := &Adapter{
		files:   make(map[string]*memoryFile),
		dirs:    make(map[string]*memoryDir),
		maxSize: maxSize,
	}

	a.dirs[""] = &memoryDir{modTime: time.Now()}

	return a
}

// Write implements crossfs.FileWriter
func (a *Adapter) Write(ctx context.Context, path string, content io.Reader, options ...crossfs.Option) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	path = normalizePath(path)
	if !isValidPath(path) {
		return &crossfs.PathError{Op: "write", Path: path, Err: crossfs.ErrInvalidPath}
	}

	data, err := io.ReadAll(content)
	if err != nil {
		return &crossfs.PathError{Op: "write", Path: path, Err: err}
	}

	opts := crossfs.ApplyOptions(options...)

	a.mu.Lock()
	defer a.mu.Unlock()

	if _, isDir := a.dirs[path]; isDir && path != "" {
		return &crossfs.PathError{Op: "write", Path: path, Err: crossfs.ErrIsDir}
	}

	if existing, exists := a.files[path]; exists {
		if !opts.Overwrite {
			return &crossfs.PathError{Op: "write", Path: path, Err: crossfs.ErrExist}
		}
		a.size -= int64(len(existing.content))
	}

	newSize := a.size + int64(len(data))
	if a.maxSize > 0 && newSize > a.maxSize {
		return &crossfs.PathError{Op: "write", Path: path, Err: crossfs.ErrNotSupported}
	}

	a.ensureParentDirs(path)

	contentType := opts.ContentType
	if contentType == "" {
		contentType = detectContentType(path, data)
	}

	a.files[path] = &memoryFile{
		content:     data,
		contentType: contentType,
		metadata:    opts.Metadata,
		modTime:     time.Now(),
	}
	a.size = newSize

	return nil
}

// OpenWrite implements crossfs.FileWriter. Content is buffered and committed
// with Write on Close.
func (a *Adapter) OpenWrite(ctx context.Context, path string, options ...crossfs.Option) (crossfs.WriteHandle, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	np := normalizePath(path)
	if !isValidPath(np) {
		return nil, &crossfs.PathError{Op: "write", Path: path, Err: crossfs.ErrInvalidPath}
	}

	opts := crossfs.ApplyOptions(options...)

	a.mu.RLock()
	_, exists := a.files[np]
	a.mu.RUnlock()
	if exists && !opts.Overwrite {
		return nil, &crossfs.PathError{Op: "write", Path: path, Err: crossfs.ErrExist}
	}

	return &writeHandle{ctx: ctx, fs: a, path: np, opts: options}, nil
}

type writeHandle struct {
	ctx  context.Context
	fs   *Adapter
	path string
	opts []crossfs.Option
	buf  bytes.Buffer
	done bool
}

func (h *writeHandle) Write(p []byte) (int, error) {
	if h.done {
		return 0, crossfs.ErrClosed
	}
	return h.buf.Write(p)
}

func (h *writeHandle) Close() error {
	if h.done {
		return crossfs.ErrClosed
	}
	h.done = true
	return h.fs.Write(h.ctx, h.path, bytes.NewReader(h.buf.Bytes()), h.opts...)
}

func (h *writeHandle) Abort() error {
	if h.done {
		return crossfs.ErrClosed
	}
	h.done = true
	h.buf.Reset()
	return nil
}

// Read implements crossfs.FileReader
func (a *Adapter) Read(ctx context.Context, path string) (io.ReadCloser, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	path = normalizePath(path)

	a.mu.RLock()
	defer a.mu.RUnlock()

	file, exists := a.files[path]
	if !exists {
		if _, isDir := a.dirs[path]; isDir {
			return nil, &crossfs.PathError{Op: "read", Path: path, Err: crossfs.ErrIsDir}
		}
		return nil, &crossfs.PathError{Op: "read", Path: path, Err: crossfs.ErrNotExist}
	}

	// Reader over a snapshot so later writes don't affect it.
	return io.NopCloser(bytes.NewReader(file.content)), nil
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

	path = normalizePath(path)

	a.mu.RLock()
	defer a.mu.RUnlock()

	file, exists := a.files[path]
	if !exists {
		return nil, &crossfs.PathError{Op: "read", Path: path, Err: crossfs.ErrNotExist}
	}

	if offset >= int64(len(file.content)) {
		return []byte{}, nil
	}
	end := int64(len(file.content))
	if length >= 0 && offset+length < end {
		end = offset + length
	}

	out := make([]byte, end-offset)
	copy(out, file.content[offset:end])
	return out, nil
}

// Delete implements crossfs.FileWriter
func (a *Adapter) Delete(ctx context.Context, path string) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	path = normalizePath(path)

	a.mu.Lock()
	defer a.mu.Unlock()

	file, exists := a.files[path]
	if !exists {
		if _, isDir := a.dirs[path]; isDir {
			return &crossfs.PathError{Op: "delete", Path: path, Err: crossfs.ErrIsDir}
		}
		return &crossfs.PathError{Op: "delete", Path: path, Err: crossfs.ErrNotExist}
	}

	a.size -= int64(len(file.content))
	delete(a.files, path)

	return nil
}

// FileExists implements crossfs.FileReader
func (a *Adapter) FileExists(ctx context.Context, path string) (bool, error) {
	select {
	case <-ctx.Done():
		return false, ctx.Err()
	default:
	}

	path = normalizePath(path)

	a.mu.RLock()
	defer a.mu.RUnlock()

	_, fileExists := a.files[path]

	return fileExists, nil
}

// DirExists implements crossfs.FileReader
func (a *Adapter) DirExists(ctx context.Context, path string) (bool, error) {
	select {
	case <-ctx.Done():
		return false, ctx.Err()
	default:
	}

	path = normalizePath(path)

	a.mu.RLock()
	defer a.mu.RUnlock()

	_, dirExists := a.dirs[path]

	return dirExists, nil
}

// Stat implements crossfs.FileReader
func (a *Adapter) Stat(ctx context.Context, path string) (*crossfs.FileInfo, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	path = normalizePath(path)

	a.mu.RLock()
	defer a.mu.RUnlock()

	if file, exists := a.files[path]; exists {
		return &crossfs.FileInfo{
			Name:        gopath.Base(path),
			Path:        path,
			Size:        int64(len(file.content)),
			ModTime:     file.modTime,
			IsDir:       false,
			ContentType: file.contentType,
			Metadata:    file.metadata,
		}, nil
	}

	if dir, exists := a.dirs[path]; exists {
		return &crossfs.FileInfo{
			Name:    gopath.Base(path),
			Path:    path,
			Size:    0,
			ModTime: dir.modTime,
			IsDir:   true,
		}, nil
	}

	return nil, &crossfs.PathError{Op: "stat", Path: path, Err: crossfs.ErrNotExist}
}

// ListContents implements crossfs.FileReader
func (a *Adapter) ListContents(ctx context.Context, path string, recursive bool) ([]crossfs.FileInfo, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	path = normalizePath(path)

	a.mu.RLock()
	defer a.mu.RUnlock()

	if _, exists := a.dirs[path]; !exists {
		if _, isFile := a.files[path]; isFile {
			return nil, &crossfs.PathError{Op: "listcontents", Path: path, Err: crossfs.ErrNotDir}
		}
		return nil, &crossfs.PathError{Op: "listcontents", Path: path, Err: crossfs.ErrNotExist}
	}

	var files []crossfs.FileInfo

	if recursive {
		prefixWithSlash := path
		if path != "" {
			prefixWithSlash = path + "/"
		}
		isRoot := path == ""

		for filePath, file := range a.files {
			if isRoot || strings.HasPrefix(filePath, prefixWithSlash) {
				files = append(files, crossfs.FileInfo{
					Name:        gopath.Base(filePath),
					Path:        filePath,
					Size:        int64(len(file.content)),
					ModTime:     file.modTime,
					IsDir:       false,
					ContentType: file.contentType,
					Metadata:    file.metadata,
				})
			}
		}

		for dirPath, dir := range a.dirs {
			if dirPath == path || dirPath == "" {
				continue
			}
			if isRoot || strings.HasPrefix(dirPath, prefixWithSlash) {
				files = append(files, crossfs.FileInfo{
					Name:    gopath.Base(dirPath),
					Path:    dirPath,
					Size:    0,
					ModTime: dir.modTime,
					IsDir:   true,
				})
			}
		}
	} else {
		seen := make(map[string]bool)
		isRoot := path == ""

		for filePath, file := range a.files {
			var relPath string
			if isRoot {
				relPath = filePath
			} else {
				if !strings.HasPrefix(filePath, path+"/") {
					continue
				}
				relPath = strings.TrimPrefix(filePath, path+"/")
			}
			if relPath == "" {
				continue
			}

			parts := strings.SplitN(relPath, "/", 2)
			childName := parts[0]
			if seen[childName] {
				continue
			}
			// Nested file; its directory gets listed instead.
			if len(parts) > 1 {
				continue
			}

			seen[childName] = true
			files = append(files, crossfs.FileInfo{
				Name:        childName,
				Path:        gopath.Join(path, childName),
				Size:        int64(len(file.content)),
				ModTime:     file.modTime,
				IsDir:       false,
				ContentType: file.contentType,
				Metadata:    file.metadata,
			})
		}

		for dirPath, dir := range a.dirs {
			if dirPath == path || dirPath == "" {
				continue
			}

			var relPath string
			if isRoot {
				relPath = dirPath
			} else {
				if !strings.HasPrefix(dirPath, path+"/") {
					continue
				}
				relPath = strings.TrimPrefix(dirPath, path+"/")
			}
			if relPath == "" {
				continue
			}

			parts := strings.SplitN(relPath, "/", 2)
			childName := parts[0]
			if seen[childName] {
				continue
			}
			if len(parts) > 1 {
				continue
			}

			seen[childName] = true
			files = append(files, crossfs.FileInfo{
				Name:    childName,
				Path:    gopath.Join(path, childName),
				Size:    0,
				ModTime: dir.modTime,
				IsDir:   true,
			})
		}
	}

	sort.Slice(files, func(i, j int) bool {
		return files[i].Path < files[j].Path
	})

	return files, nil
}

// CreateDir implements crossfs.FileWriter
func (a *Adapter) CreateDir(ctx context.Context, path string) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	path = normalizePath(path)
	if !isValidPath(path) {
		return &crossfs.PathError{Op: "createdir", Path: path, Err: crossfs.ErrInvalidPath}
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	if _, exists := a.files[path]; exists {
		return &crossfs.PathError{Op: "createdir", Path: path, Err: crossfs.ErrNotDir}
	}

	a.ensureParentDirs(path)
	a.dirs[path] = &memoryDir{modTime: time.Now()}

	return nil
}

// DeleteDir implements crossfs.FileWriter
func (a *Adapter) DeleteDir(ctx context.Context, path string, recursive bool) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	path = normalizePath(path)

	a.mu.Lock()
	defer a.mu.Unlock()

	if _, exists := a.dirs[path]; !exists {
		if _, isFile := a.files[path]; isFile {
			return &crossfs.PathError{Op: "deletedir", Path: path, Err: crossfs.ErrNotDir}
		}
		return &crossfs.PathError{Op: "deletedir", Path: path, Err: crossfs.ErrNotExist}
	}

	prefixWithSlash := path + "/"
	if path == "" {
		prefixWithSlash = ""
	}

	if !recursive {
		for filePath := range a.files {
			if strings.HasPrefix(filePath, prefixWithSlash) {
				return &crossfs.PathError{Op: "deletedir", Path: path, Err: crossfs.ErrNotEmpty}
			}
		}
		for dirPath := range a.dirs {
			if dirPath != path && dirPath != "" && strings.HasPrefix(dirPath, prefixWithSlash) {
				return &crossfs.PathError{Op: "deletedir", Path: path, Err: crossfs.ErrNotEmpty}
			}
		}
	}

	for filePath, file := range a.files {
		if strings.HasPrefix(filePath, prefixWithSlash) {
			a.size -= int64(len(file.content))
			delete(a.files, filePath)
		}
	}

	for dirPath := range a.dirs {
		if dirPath == "" {
			continue
		}
		if strings.HasPrefix(dirPath, prefixWithSlash) || dirPath == path {
			delete(a.dirs, dirPath)
		}
	}

	return nil
}

// Close implements crossfs.FileSystem.
func (a *Adapter) Close() error {
	return nil
}

// Clear removes all files and directories from the memory filesystem
// Useful for testing cleanup
func (a *Adapter) Clear() {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.files = make(map[string]*memoryFile)
	a.dirs = make(map[string]*memoryDir)
	a.size = 0

	a.dirs[""] = &memoryDir{modTime: time.Now()}
}

// Size returns the current total size of all stored files
func (a *Adapter) Size() int64 {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.size
}

// FileCount returns the number of files stored
func (a *Adapter) FileCount() int {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return len(a.files)
}

// ensureParentDirs creates all parent directories for a given path
// Must be called with lock held
func (a *Adapter) ensureParentDirs(path string) {
	dir := gopath.Dir(path)
	for dir != "" && dir != "." && dir != "/" {
		if _, exists := a.dirs[dir]; !exists {
			a.dirs[dir] = &memoryDir{modTime: time.Now()}
		}
		dir = gopath.Dir(dir)
	}
}

// normalizePath normalizes a file path
func normalizePath(path string) string {
	path = strings.Trim(path, "/")
	if path == "" || path == "." {
		return ""
	}
	return gopath.Clean(path)
}

// isValidPath checks if a path is valid (no directory traversal)
func isValidPath(path string) bool {
	return !strings.Contains(path, "..")
}

// detectContentType determines the content type of a file
func detectContentType(path string, data []byte) string {
	ext := gopath.Ext(path)
	if ext != "" {
		if contentType := mime.TypeByExtension(ext); contentType != "" {
			return contentType
		}
	}

	if len(data) > 0 {
		return http.DetectContentType(data)
	}

	return "application/octet-stream"
}

// ============================================================================
// Optional Capability Interfaces
// ============================================================================

// Copy implements crossfs.CanCopy for in-memory file copying.
func (a *Adapter) Copy(ctx context.Context, src, dst string) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	src = normalizePath(src)
	dst = normalizePath(dst)

	if !isValidPath(src) || !isValidPath(dst) {
		return &crossfs.PathError{Op: "copy", Path: src, Err: crossfs.ErrInvalidPath}
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	srcFile, exists := a.files[src]
	if !exists {
		return &crossfs.PathError{Op: "copy", Path: src, Err: crossfs.ErrNotExist}
	}

	if a.maxSize > 0 && a.size+int64(len(srcFile.content)) > a.maxSize {
		return &crossfs.PathError{Op: "copy", Path: dst, Err: crossfs.ErrNotSupported}
	}

	a.ensureParentDirs(dst)

	content := make([]byte, len(srcFile.content))
	copy(content, srcFile.content)

	metadata := make(map[string]string, len(srcFile.metadata))
	for k, v := range srcFile.metadata {
		metadata[k] = v
	}

	if existing, ok := a.files[dst]; ok {
		a.size -= int64(len(existing.content))
	}

	a.files[dst] = &memoryFile{
		content:     content,
		contentType: srcFile.contentType,
		modTime:     time.Now(),
		metadata:    metadata,
	}
	a.size += int64(len(content))

	return nil
}

// Move implements crossfs.CanMove for in-memory file moving.
func (a *Adapter) Move(ctx context.Context, src, dst string) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	src = normalizePath(src)
	dst = normalizePath(dst)

	if !isValidPath(src) || !isValidPath(dst) {
		return &crossfs.PathError{Op: "move", Path: src, Err: crossfs.ErrInvalidPath}
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	srcFile, exists := a.files[src]
	if !exists {
		return &crossfs.PathError{Op: "move", Path: src, Err: crossfs.ErrNotExist}
	}

	a.ensureParentDirs(dst)

	if existing, ok := a.files[dst]; ok {
		a.size -= int64(len(existing.content))
	}

	a.files[dst] = srcFile
	srcFile.modTime = time.Now()
	delete(a.files, src)

	return nil
}

// Checksum implements crossfs.CanChecksum for in-memory files.
func (a *Adapter) Checksum(ctx context.Context, path string, algorithm crossfs.ChecksumAlgorithm) (string, error) {
	select {
	case <-ctx.Done():
		return "", ctx.Err()
	default:
	}

	path = normalizePath(path)

	a.mu.RLock()
	defer a.mu.RUnlock()

	file, exists := a.files[path]
	if !exists {
		return "", &crossfs.PathError{Op: "checksum", Path: path, Err: crossfs.ErrNotExist}
	}

	checksum, err := crossfs.CalculateChecksum(bytes.NewReader(file.content), algorithm)
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

	path = normalizePath(path)

	a.mu.RLock()
	defer a.mu.RUnlock()

	file, exists := a.files[path]
	if !exists {
		return nil, &crossfs.PathError{Op: "checksums", Path: path, Err: crossfs.ErrNotExist}
	}

	checksums, err := crossfs.CalculateChecksums(bytes.NewReader(file.content), algorithms)
	if err != nil {
		return nil, crossfs.WrapPathErr("checksums", path, err)
	}

	return checksums, nil
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
