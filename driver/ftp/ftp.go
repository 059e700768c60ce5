// Package ftp implements crossfs.FileSystem over the FTP protocol using a
// single serialized control connection. The connection is refreshed after a
// configurable idle age because many servers drop control channels that stay
// open too long. Transient transfer failures are retried after a reconnect.
package ftp

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"net"
	"net/textproto"
	"path"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/jlaffaye/ftp"

	"github.com/crossfs/crossfs"
	"github.com/crossfs/crossfs/internal/retrier"
)

// Config holds FTP connection configuration.
type Config struct {
	Host     string
	Port     int
	Username string
	Password string
	BasePath string

	// Timeout bounds dialing and individual protocol commands.
	Timeout time.Duration
	// Refresh forces a reconnect once the control connection reaches this
	// age. Zero means 60 seconds.
	Refresh time.Duration

	RetryAttempts int
	RetryDelay    time.Duration
}

// Adapter provides an FTP implementation of crossfs.FileSystem. The control
// connection handles one command at a time, so all operations serialize on
// an internal mutex.
type Adapter struct {
	mu          sync.Mutex
	conn        *ftp.ServerConn
	connectedAt time.Time
	closed      bool

	basePath string
	config   Config
	retry    *retrier.Retrier
}

// New creates an FTP filesystem adapter and establishes the connection.
func New(cfg Config) (*Adapter, error) {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	if cfg.Refresh <= 0 {
		cfg.Refresh = 60 * time.Second
	}

	adapter := &Adapter{
		config:   cfg,
		basePath: strings.TrimSuffix(cfg.BasePath, "/"),
	}
	adapter.retry = retrier.New(cfg.RetryAttempts, cfg.RetryDelay, isTransientFTP)
	adapter.retry.OnRetry = func(error) { adapter.dropConnection() }

	if err := adapter.connect(); err != nil {
		return nil, err
	}
	return adapter, nil
}

func (a *Adapter) connect() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.connectLocked()
}

func (a *Adapter) connectLocked() error {
	port := a.config.Port
	if port == 0 {
		port = 21
	}

	addr := fmt.Sprintf("%s:%d", a.config.Host, port)
	conn, err := ftp.Dial(addr, ftp.DialWithTimeout(a.config.Timeout))
	if err != nil {
		return fmt.Errorf("failed to connect to FTP server: %w", err)
	}

	user := a.config.Username
	if user == "" {
		user = "anonymous"
	}
	if err := conn.Login(user, a.config.Password); err != nil {
		conn.Quit()
		return fmt.Errorf("FTP login failed: %w", err)
	}

	a.conn = conn
	a.connectedAt = time.Now()
	return nil
}

func (a *Adapter) closeLocked() {
	if a.conn != nil {
		a.conn.Quit()
		a.conn = nil
	}
}

// dropConnection discards the control connection so the next operation
// reconnects. The retrier calls it between attempts.
func (a *Adapter) dropConnection() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.closeLocked()
}

// session returns a live control connection, reconnecting when the current
// one is missing or past its refresh age. Callers must hold a.mu.
func (a *Adapter) session() (*ftp.ServerConn, error) {
	if a.closed {
		return nil, crossfs.ErrClosed
	}
	if a.conn != nil && time.Since(a.connectedAt) > a.config.Refresh {
		a.closeLocked()
	}
	if a.conn == nil {
		if err := a.connectLocked(); err != nil {
			return nil, err
		}
	}
	return a.conn, nil
}

// do runs fn against a live session under the connection mutex, retrying
// transient failures with a fresh connection.
func (a *Adapter) do(ctx context.Context, op string, fn func(conn *ftp.ServerConn) error) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	return a.retry.Do(ctx, op, func() error {
		a.mu.Lock()
		defer a.mu.Unlock()

		conn, err := a.session()
		if err != nil {
			return err
		}
		return fn(conn)
	})
}

// Close shuts down the control connection.
func (a *Adapter) Close() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.closed = true
	a.closeLocked()
	return nil
}

// fullPath maps a logical path onto the remote filesystem under basePath.
func (a *Adapter) fullPath(relativePath string) (string, error) {
	clean := path.Clean("/" + strings.Trim(relativePath, "/"))
	if strings.HasPrefix(clean, "/..") {
		return "", crossfs.ErrInvalidPath
	}
	if clean == "/" {
		clean = ""
	}
	if a.basePath == "" {
		return strings.TrimPrefix(clean, "/"), nil
	}
	return a.basePath + clean, nil
}

// findEntry locates the directory entry for remotePath by listing its
// parent. FTP has no portable stat command, so this is the reliable way to
// distinguish files from directories.
func findEntry(conn *ftp.ServerConn, remotePath string) (*ftp.Entry, error) {
	if remotePath == "" {
		return &ftp.Entry{Name: "", Type: ftp.EntryTypeFolder}, nil
	}

	parent := path.Dir(remotePath)
	if parent == "." || parent == "/" {
		parent = ""
	}
	base := path.Base(remotePath)

	entries, err := conn.List(parent)
	if err != nil {
		return nil, err
	}
	for _, entry := range entries {
		if entry.Name == base {
			return entry, nil
		}
	}
	return nil, crossfs.ErrNotExist
}

// makeDirs creates remotePath and any missing parents. Already-existing
// segments are ignored.
func makeDirs(conn *ftp.ServerConn, remotePath string) error {
	if remotePath == "" {
		return nil
	}
	segments := strings.Split(remotePath, "/")
	current := ""
	for _, seg := range segments {
		if seg == "" {
			continue
		}
		if current == "" {
			current = seg
		} else {
			current = current + "/" + seg
		}
		if err := conn.MakeDir(current); err != nil {
			// Most servers answer 550 when the directory already exists.
			var tpErr *textproto.Error
			if errors.As(err, &tpErr) && tpErr.Code == ftp.StatusFileUnavailable {
				continue
			}
			return err
		}
	}
	return nil
}

// ============================================================================
// FileReader
// ============================================================================

// Read implements crossfs.FileReader. The transfer is drained into memory
// under the connection lock; the control channel cannot serve other commands
// while a data transfer is open.
func (a *Adapter) Read(ctx context.Context, filePath string) (io.ReadCloser, error) {
	data, err := a.ReadAll(ctx, filePath)
	if err != nil {
		return nil, err
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

// ReadAll implements crossfs.FileReader.
func (a *Adapter) ReadAll(ctx context.Context, filePath string) ([]byte, error) {
	fullPath, err := a.fullPath(filePath)
	if err != nil {
		return nil, crossfs.WrapPathErr("readall", filePath, err)
	}

	var data []byte
	err = a.do(ctx, "readall", func(conn *ftp.ServerConn) error {
		resp, rerr := conn.Retr(fullPath)
		if rerr != nil {
			return rerr
		}
		defer resp.Close()
		data, rerr = io.ReadAll(resp)
		return rerr
	})
	if err != nil {
		return nil, mapFTPError("readall", filePath, err)
	}
	return data, nil
}

// ReadRange implements crossfs.FileReader using a REST-offset transfer.
// A negative length reads from offset to the end of the file.
func (a *Adapter) ReadRange(ctx context.Context, filePath string, offset, length int64) ([]byte, error) {
	if offset < 0 {
		return nil, crossfs.WrapPathErr("readrange", filePath, crossfs.ErrInvalidPath)
	}
	if length == 0 {
		return []byte{}, nil
	}

	fullPath, err := a.fullPath(filePath)
	if err != nil {
		return nil, crossfs.WrapPathErr("readrange", filePath, err)
	}

	var data []byte
	err = a.do(ctx, "readrange", func(conn *ftp.ServerConn) error {
		resp, rerr := conn.RetrFrom(fullPath, uint64(offset))
		if rerr != nil {
			return rerr
		}
		defer resp.Close()

		var src io.Reader = resp
		if length > 0 {
			src = io.LimitReader(resp, length)
		}
		data, rerr = io.ReadAll(src)
		if rerr != nil {
			return rerr
		}
		// Drain the rest so the data connection closes cleanly.
		_, _ = io.Copy(io.Discard, resp)
		return nil
	})
	if err != nil {
		return nil, mapFTPError("readrange", filePath, err)
	}
	return data, nil
}

// FileExists implements crossfs.FileReader. Absence is not an error.
func (a *Adapter) FileExists(ctx context.Context, filePath string) (bool, error) {
	fullPath, err := a.fullPath(filePath)
	if err != nil {
		return false, crossfs.WrapPathErr("fileexists", filePath, err)
	}

	var exists bool
	err = a.do(ctx, "fileexists", func(conn *ftp.ServerConn) error {
		entry, ferr := findEntry(conn, fullPath)
		if ferr != nil {
			return ferr
		}
		exists = entry.Type == ftp.EntryTypeFile
		return nil
	})
	if err != nil {
		if crossfs.IsNotExist(err) || errors.Is(err, crossfs.ErrNotExist) {
			return false, nil
		}
		return false, mapFTPError("fileexists", filePath, err)
	}
	return exists, nil
}

// DirExists implements crossfs.FileReader. Absence is not an error.
func (a *Adapter) DirExists(ctx context.Context, dirPath string) (bool, error) {
	fullPath, err := a.fullPath(dirPath)
	if err != nil {
		return false, crossfs.WrapPathErr("direxists", dirPath, err)
	}
	if fullPath == "" || fullPath == a.basePath {
		return true, nil
	}

	var exists bool
	err = a.do(ctx, "direxists", func(conn *ftp.ServerConn) error {
		entry, ferr := findEntry(conn, fullPath)
		if ferr != nil {
			return ferr
		}
		exists = entry.Type == ftp.EntryTypeFolder
		return nil
	})
	if err != nil {
		if crossfs.IsNotExist(err) || errors.Is(err, crossfs.ErrNotExist) {
			return false, nil
		}
		return false, mapFTPError("direxists", dirPath, err)
	}
	return exists, nil
}

// Stat implements crossfs.FileReader.
func (a *Adapter) Stat(ctx context.Context, filePath string) (*crossfs.FileInfo, error) {
	fullPath, err := a.fullPath(filePath)
	if err != nil {
		return nil, crossfs.WrapPathErr("stat", filePath, err)
	}
	logical := strings.Trim(filePath, "/")

	var info *crossfs.FileInfo
	err = a.do(ctx, "stat", func(conn *ftp.ServerConn) error {
		entry, ferr := findEntry(conn, fullPath)
		if ferr != nil {
			return ferr
		}
		info = entryInfo(entry, logical)
		return nil
	})
	if err != nil {
		return nil, mapFTPError("stat", filePath, err)
	}
	return info, nil
}

// ListContents implements crossfs.FileReader.
func (a *Adapter) ListContents(ctx context.Context, dirPath string, recursive bool) ([]crossfs.FileInfo, error) {
	fullPath, err := a.fullPath(dirPath)
	if err != nil {
		return nil, crossfs.WrapPathErr("listcontents", dirPath, err)
	}
	logical := strings.Trim(dirPath, "/")

	var files []crossfs.FileInfo
	err = a.do(ctx, "listcontents", func(conn *ftp.ServerConn) error {
		if fullPath != "" {
			entry, ferr := findEntry(conn, fullPath)
			if ferr != nil {
				return ferr
			}
			if entry.Type != ftp.EntryTypeFolder {
				return crossfs.ErrNotDir
			}
		}
		files = files[:0]
		return listDir(conn, fullPath, logical, recursive, &files)
	})
	if err != nil {
		return nil, mapFTPError("listcontents", dirPath, err)
	}
	return files, nil
}

// listDir appends the entries under remotePath, descending when recursive.
func listDir(conn *ftp.ServerConn, remotePath, relPath string, recursive bool, results *[]crossfs.FileInfo) error {
	entries, err := conn.List(remotePath)
	if err != nil {
		return err
	}

	for _, entry := range entries {
		if entry.Name == "." || entry.Name == ".." {
			continue
		}
		entryRelPath := path.Join(relPath, entry.Name)
		*results = append(*results, *entryInfo(entry, entryRelPath))

		if recursive && entry.Type == ftp.EntryTypeFolder {
			entryRemotePath := path.Join(remotePath, entry.Name)
			if err := listDir(conn, entryRemotePath, entryRelPath, recursive, results); err != nil {
				return err
			}
		}
	}
	return nil
}

// entryInfo converts a directory listing entry to a FileInfo at logicalPath.
func entryInfo(entry *ftp.Entry, logicalPath string) *crossfs.FileInfo {
	isDir := entry.Type == ftp.EntryTypeFolder
	contentType := ""
	if !isDir {
		contentType = detectContentType(entry.Name)
	}
	size := int64(entry.Size) //nolint:gosec // listing sizes fit in int64
	return &crossfs.FileInfo{
		Name:        path.Base("/" + logicalPath),
		Path:        logicalPath,
		Size:        size,
		ModTime:     entry.Time,
		IsDir:       isDir,
		ContentType: contentType,
	}
}

// ============================================================================
// FileWriter
// ============================================================================

// Write implements crossfs.FileWriter. The content is buffered when the
// reader cannot seek so a retried attempt uploads the full body again.
func (a *Adapter) Write(ctx context.Context, filePath string, content io.Reader, options ...crossfs.Option) error {
	fullPath, err := a.fullPath(filePath)
	if err != nil {
		return crossfs.WrapPathErr("write", filePath, err)
	}

	opts := crossfs.ApplyOptions(options...)
	if !opts.Overwrite {
		exists, eerr := a.FileExists(ctx, filePath)
		if eerr != nil {
			return eerr
		}
		if exists {
			return crossfs.WrapPathErr("write", filePath, crossfs.ErrExist)
		}
	}

	body, err := rewindable(content)
	if err != nil {
		return crossfs.NewPathError("write", filePath, err)
	}
	start, err := body.Seek(0, io.SeekCurrent)
	if err != nil {
		return crossfs.NewPathError("write", filePath, err)
	}

	err = a.do(ctx, "write", func(conn *ftp.ServerConn) error {
		if _, serr := body.Seek(start, io.SeekStart); serr != nil {
			return serr
		}
		if dir := path.Dir(fullPath); dir != "." && dir != "/" {
			if derr := makeDirs(conn, dir); derr != nil {
				return derr
			}
		}
		return conn.Stor(fullPath, body)
	})
	if err != nil {
		return mapFTPError("write", filePath, err)
	}
	return nil
}

// OpenWrite implements crossfs.FileWriter. Bytes are buffered locally and
// flushed as one upload when the handle is closed.
func (a *Adapter) OpenWrite(ctx context.Context, filePath string, options ...crossfs.Option) (crossfs.WriteHandle, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	opts := crossfs.ApplyOptions(options...)
	if !opts.Overwrite {
		exists, err := a.FileExists(ctx, filePath)
		if err != nil {
			return nil, err
		}
		if exists {
			return nil, crossfs.WrapPathErr("openwrite", filePath, crossfs.ErrExist)
		}
	}

	return &writeHandle{
		adapter: a,
		ctx:     ctx,
		path:    filePath,
		options: options,
	}, nil
}

type writeHandle struct {
	adapter *Adapter
	ctx     context.Context
	path    string
	options []crossfs.Option
	buf     bytes.Buffer
	done    bool
}

func (h *writeHandle) Write(p []byte) (int, error) {
	if h.done {
		return 0, crossfs.WrapPathErr("write", h.path, crossfs.ErrClosed)
	}
	return h.buf.Write(p)
}

func (h *writeHandle) Close() error {
	if h.done {
		return crossfs.WrapPathErr("close", h.path, crossfs.ErrClosed)
	}
	h.done = true
	opts := append([]crossfs.Option{crossfs.WithOverwrite(true)}, h.options...)
	return h.adapter.Write(h.ctx, h.path, bytes.NewReader(h.buf.Bytes()), opts...)
}

func (h *writeHandle) Abort() error {
	if h.done {
		return crossfs.WrapPathErr("abort", h.path, crossfs.ErrClosed)
	}
	h.done = true
	h.buf.Reset()
	return nil
}

// Delete implements crossfs.FileWriter. Directories are refused with ErrIsDir.
func (a *Adapter) Delete(ctx context.Context, filePath string) error {
	fullPath, err := a.fullPath(filePath)
	if err != nil {
		return crossfs.WrapPathErr("delete", filePath, err)
	}

	err = a.do(ctx, "delete", func(conn *ftp.ServerConn) error {
		entry, ferr := findEntry(conn, fullPath)
		if ferr != nil {
			return ferr
		}
		if entry.Type == ftp.EntryTypeFolder {
			return crossfs.ErrIsDir
		}
		return conn.Delete(fullPath)
	})
	if err != nil {
		return mapFTPError("delete", filePath, err)
	}
	return nil
}

// CreateDir implements crossfs.FileWriter, creating parents as needed.
func (a *Adapter) CreateDir(ctx context.Context, dirPath string) error {
	fullPath, err := a.fullPath(dirPath)
	if err != nil {
		return crossfs.WrapPathErr("createdir", dirPath, err)
	}

	err = a.do(ctx, "createdir", func(conn *ftp.ServerConn) error {
		return makeDirs(conn, fullPath)
	})
	if err != nil {
		return mapFTPError("createdir", dirPath, err)
	}
	return nil
}

// DeleteDir implements crossfs.FileWriter. Without recursive a non-empty
// directory fails with ErrNotEmpty.
func (a *Adapter) DeleteDir(ctx context.Context, dirPath string, recursive bool) error {
	fullPath, err := a.fullPath(dirPath)
	if err != nil {
		return crossfs.WrapPathErr("deletedir", dirPath, err)
	}
	if fullPath == "" {
		return crossfs.WrapPathErr("deletedir", dirPath, crossfs.ErrInvalidPath)
	}

	err = a.do(ctx, "deletedir", func(conn *ftp.ServerConn) error {
		entry, ferr := findEntry(conn, fullPath)
		if ferr != nil {
			return ferr
		}
		if entry.Type != ftp.EntryTypeFolder {
			return crossfs.ErrNotDir
		}

		if recursive {
			return conn.RemoveDirRecur(fullPath)
		}
		entries, lerr := conn.List(fullPath)
		if lerr != nil {
			return lerr
		}
		for _, child := range entries {
			if child.Name != "." && child.Name != ".." {
				return crossfs.ErrNotEmpty
			}
		}
		return conn.RemoveDir(fullPath)
	})
	if err != nil {
		return mapFTPError("deletedir", dirPath, err)
	}
	return nil
}

// ============================================================================
// Optional Capability Interfaces
// ============================================================================

// Move implements crossfs.CanMove using the protocol's RNFR/RNTO rename. A
// failed rename leaves the source untouched.
func (a *Adapter) Move(ctx context.Context, src, dst string) error {
	srcPath, err := a.fullPath(src)
	if err != nil {
		return crossfs.WrapPathErr("move", src, err)
	}
	dstPath, err := a.fullPath(dst)
	if err != nil {
		return crossfs.WrapPathErr("move", dst, err)
	}

	err = a.do(ctx, "move", func(conn *ftp.ServerConn) error {
		if dir := path.Dir(dstPath); dir != "." && dir != "/" {
			if derr := makeDirs(conn, dir); derr != nil {
				return derr
			}
		}
		return conn.Rename(srcPath, dstPath)
	})
	if err != nil {
		return mapFTPError("move", src, err)
	}
	return nil
}

// Checksum implements crossfs.CanChecksum by streaming the file through the
// hasher.
func (a *Adapter) Checksum(ctx context.Context, filePath string, algorithm crossfs.ChecksumAlgorithm) (string, error) {
	reader, err := a.Read(ctx, filePath)
	if err != nil {
		return "", err
	}
	defer reader.Close()

	checksum, err := crossfs.CalculateChecksum(reader, algorithm)
	if err != nil {
		return "", crossfs.WrapPathErr("checksum", filePath, err)
	}
	return checksum, nil
}

// Checksums implements crossfs.CanChecksum in a single read pass.
func (a *Adapter) Checksums(ctx context.Context, filePath string, algorithms []crossfs.ChecksumAlgorithm) (map[crossfs.ChecksumAlgorithm]string, error) {
	reader, err := a.Read(ctx, filePath)
	if err != nil {
		return nil, err
	}
	defer reader.Close()

	checksums, err := crossfs.CalculateChecksums(reader, algorithms)
	if err != nil {
		return nil, crossfs.WrapPathErr("checksums", filePath, err)
	}
	return checksums, nil
}

// ============================================================================
// Helpers
// ============================================================================

// rewindable returns content as a seekable reader, buffering when needed.
func rewindable(content io.Reader) (io.ReadSeeker, error) {
	if rs, ok := content.(io.ReadSeeker); ok {
		return rs, nil
	}
	data, err := io.ReadAll(content)
	if err != nil {
		return nil, err
	}
	return bytes.NewReader(data), nil
}

// detectContentType determines the content type from the file extension.
func detectContentType(filePath string) string {
	if ext := path.Ext(filePath); ext != "" {
		if contentType := mime.TypeByExtension(ext); contentType != "" {
			return contentType
		}
	}
	return "application/octet-stream"
}

// isTransientFTP classifies errors worth a reconnect-and-retry. 4xx replies
// are temporary by protocol definition; 5xx replies (including 550 file
// unavailable) are permanent and never retried.
func isTransientFTP(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, crossfs.ErrClosed) || errors.Is(err, crossfs.ErrNotExist) ||
		errors.Is(err, crossfs.ErrIsDir) || errors.Is(err, crossfs.ErrNotDir) ||
		errors.Is(err, crossfs.ErrNotEmpty) {
		return false
	}

	var tpErr *textproto.Error
	if errors.As(err, &tpErr) {
		return tpErr.Code >= 400 && tpErr.Code < 500
	}

	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return true
	}
	if errors.Is(err, syscall.ECONNRESET) || errors.Is(err, syscall.ECONNABORTED) ||
		errors.Is(err, syscall.EPIPE) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr)
}

// mapFTPError translates protocol errors into the crossfs error taxonomy.
func mapFTPError(op, logicalPath string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}

	var tpErr *textproto.Error
	if errors.As(err, &tpErr) {
		switch {
		case tpErr.Code == ftp.StatusFileUnavailable:
			return crossfs.WrapPathErr(op, logicalPath, crossfs.ErrNotExist)
		case tpErr.Code == ftp.StatusNotLoggedIn || tpErr.Code == 532:
			return crossfs.WrapPathErr(op, logicalPath, crossfs.ErrPermission)
		case tpErr.Code >= 400 && tpErr.Code < 500:
			return crossfs.WrapPathErr(op, logicalPath, fmt.Errorf("%w: %v", crossfs.ErrConnection, tpErr))
		}
		return crossfs.WrapPathErr(op, logicalPath, err)
	}

	if isTransientFTP(err) {
		return crossfs.WrapPathErr(op, logicalPath, fmt.Errorf("%w: %v", crossfs.ErrConnection, err))
	}
	return crossfs.WrapPathErr(op, logicalPath, err)
}

// Ensure Adapter implements required and optional interfaces
var (
	_ crossfs.FileSystem  = (*Adapter)(nil)
	_ crossfs.FileReader  = (*Adapter)(nil)
	_ crossfs.FileWriter  = (*Adapter)(nil)
	_ crossfs.CanMove     = (*Adapter)(nil)
	_ crossfs.CanChecksum = (*Adapter)(nil)
)
