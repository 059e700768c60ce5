// Package sftp implements crossfs.FileSystem over an SSH file transfer
// connection. Operations that fail with connection-level errors are retried
// after a reconnect; permission and not-found failures surface immediately.
package sftp

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"net"
	"os"
	"path"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/pkg/sftp"
	"golang.org/x/crypto/ssh"

	"github.com/crossfs/crossfs"
	"github.com/crossfs/crossfs/internal/retrier"
)

// Config holds SFTP connection configuration.
type Config struct {
	Host       string
	Port       int
	Username   string
	Password   string
	PrivateKey []byte // PEM encoded private key
	BasePath   string

	RetryAttempts int
	RetryDelay    time.Duration
}

// Adapter provides an SFTP implementation of crossfs.FileSystem.
type Adapter struct {
	mu      sync.Mutex
	client  *sftp.Client
	sshConn *ssh.Client
	closed  bool

	basePath string
	config   Config
	retry    *retrier.Retrier
}

// New creates an SFTP filesystem adapter and establishes the connection.
func New(cfg Config) (*Adapter, error) {
	adapter := &Adapter{
		config:   cfg,
		basePath: strings.TrimSuffix(cfg.BasePath, "/"),
	}
	adapter.retry = retrier.New(cfg.RetryAttempts, cfg.RetryDelay, isTransientSFTP)
	adapter.retry.OnRetry = func(error) { adapter.dropConnection() }

	if err := adapter.connect(); err != nil {
		return nil, err
	}
	return adapter, nil
}

// connect establishes the SSH and SFTP connections.
func (a *Adapter) connect() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.connectLocked()
}

func (a *Adapter) connectLocked() error {
	sshConfig := &ssh.ClientConfig{
		User:            a.config.Username,
		HostKeyCallback: ssh.InsecureIgnoreHostKey(), // TODO: support known_hosts verification
	}

	if len(a.config.PrivateKey) > 0 {
		signer, err := ssh.ParsePrivateKey(a.config.PrivateKey)
		if err != nil {
			return fmt.Errorf("failed to parse private key: %w", err)
		}
		sshConfig.Auth = append(sshConfig.Auth, ssh.PublicKeys(signer))
	}
	if a.config.Password != "" {
		sshConfig.Auth = append(sshConfig.Auth, ssh.Password(a.config.Password))
	}
	if len(sshConfig.Auth) == 0 {
		return errors.New("no authentication method provided")
	}

	port := a.config.Port
	if port == 0 {
		port = 22
	}

	addr := fmt.Sprintf("%s:%d", a.config.Host, port)
	sshConn, err := ssh.Dial("tcp", addr, sshConfig)
	if err != nil {
		return fmt.Errorf("failed to connect to SSH: %w", err)
	}

	sftpClient, err := sftp.NewClient(sshConn)
	if err != nil {
		sshConn.Close()
		return fmt.Errorf("failed to create SFTP client: %w", err)
	}

	a.sshConn = sshConn
	a.client = sftpClient
	return nil
}

func (a *Adapter) closeLocked() {
	if a.client != nil {
		a.client.Close()
		a.client = nil
	}
	if a.sshConn != nil {
		a.sshConn.Close()
		a.sshConn = nil
	}
}

// dropConnection discards the current connection so the next operation
// reconnects. The retrier calls it between attempts.
func (a *Adapter) dropConnection() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.closeLocked()
}

// conn returns a live SFTP client, reconnecting if the session went away.
func (a *Adapter) conn() (*sftp.Client, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.closed {
		return nil, crossfs.ErrClosed
	}
	if a.client != nil {
		if _, err := a.client.Getwd(); err == nil {
			return a.client, nil
		}
		a.closeLocked()
	}
	if err := a.connectLocked(); err != nil {
		return nil, err
	}
	return a.client, nil
}

// Close shuts down the SFTP and SSH connections.
func (a *Adapter) Close() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.closed = true
	a.closeLocked()
	return nil
}

// fullPath maps a logical path onto the remote filesystem under basePath.
// Paths that would escape the base resolve to an error.
func (a *Adapter) fullPath(relativePath string) (string, error) {
	clean := path.Clean("/" + strings.Trim(relativePath, "/"))
	if clean == "/" {
		clean = ""
	}
	if strings.HasPrefix(clean, "/..") || clean == "/.." {
		return "", crossfs.ErrInvalidPath
	}
	if a.basePath == "" {
		return strings.TrimPrefix(clean, "/"), nil
	}
	return a.basePath + clean, nil
}

// ============================================================================
// FileReader
// ============================================================================

// Read implements crossfs.FileReader. Only the open is retried; a stream
// interrupted mid-read surfaces the error to the caller.
func (a *Adapter) Read(ctx context.Context, filePath string) (io.ReadCloser, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	fullPath, err := a.fullPath(filePath)
	if err != nil {
		return nil, crossfs.WrapPathErr("read", filePath, err)
	}

	var file *sftp.File
	err = a.retry.Do(ctx, "read", func() error {
		client, cerr := a.conn()
		if cerr != nil {
			return cerr
		}
		file, cerr = client.Open(fullPath)
		return cerr
	})
	if err != nil {
		return nil, mapSFTPError("read", filePath, err)
	}
	return file, nil
}

// ReadAll implements crossfs.FileReader.
func (a *Adapter) ReadAll(ctx context.Context, filePath string) ([]byte, error) {
	var data []byte
	fullPath, err := a.fullPath(filePath)
	if err != nil {
		return nil, crossfs.WrapPathErr("readall", filePath, err)
	}

	err = a.retry.Do(ctx, "readall", func() error {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		client, cerr := a.conn()
		if cerr != nil {
			return cerr
		}
		file, cerr := client.Open(fullPath)
		if cerr != nil {
			return cerr
		}
		defer file.Close()
		data, cerr = io.ReadAll(file)
		return cerr
	})
	if err != nil {
		return nil, mapSFTPError("readall", filePath, err)
	}
	return data, nil
}

// ReadRange implements crossfs.FileReader. A negative length reads from
// offset to the end of the file.
func (a *Adapter) ReadRange(ctx context.Context, filePath string, offset, length int64) ([]byte, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}
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
	err = a.retry.Do(ctx, "readrange", func() error {
		client, cerr := a.conn()
		if cerr != nil {
			return cerr
		}
		file, cerr := client.Open(fullPath)
		if cerr != nil {
			return cerr
		}
		defer file.Close()

		if _, cerr = file.Seek(offset, io.SeekStart); cerr != nil {
			return cerr
		}
		var src io.Reader = file
		if length > 0 {
			src = io.LimitReader(file, length)
		}
		data, cerr = io.ReadAll(src)
		return cerr
	})
	if err != nil {
		return nil, mapSFTPError("readrange", filePath, err)
	}
	return data, nil
}

// FileExists implements crossfs.FileReader. Absence is not an error.
func (a *Adapter) FileExists(ctx context.Context, filePath string) (bool, error) {
	info, err := a.statRemote(ctx, "fileexists", filePath)
	if err != nil {
		if crossfs.IsNotExist(err) {
			return false, nil
		}
		return false, err
	}
	return !info.IsDir(), nil
}

// DirExists implements crossfs.FileReader. Absence is not an error.
func (a *Adapter) DirExists(ctx context.Context, dirPath string) (bool, error) {
	if strings.Trim(dirPath, "/") == "" {
		return true, nil
	}
	info, err := a.statRemote(ctx, "direxists", dirPath)
	if err != nil {
		if crossfs.IsNotExist(err) {
			return false, nil
		}
		return false, err
	}
	return info.IsDir(), nil
}

// statRemote runs a retried Stat against the remote path.
func (a *Adapter) statRemote(ctx context.Context, op, logicalPath string) (os.FileInfo, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	fullPath, err := a.fullPath(logicalPath)
	if err != nil {
		return nil, crossfs.WrapPathErr(op, logicalPath, err)
	}

	var info os.FileInfo
	err = a.retry.Do(ctx, op, func() error {
		client, cerr := a.conn()
		if cerr != nil {
			return cerr
		}
		info, cerr = client.Stat(fullPath)
		return cerr
	})
	if err != nil {
		return nil, mapSFTPError(op, logicalPath, err)
	}
	return info, nil
}

// Stat implements crossfs.FileReader.
func (a *Adapter) Stat(ctx context.Context, filePath string) (*crossfs.FileInfo, error) {
	info, err := a.statRemote(ctx, "stat", filePath)
	if err != nil {
		return nil, err
	}

	contentType := ""
	if !info.IsDir() {
		contentType = detectContentType(filePath)
	}

	logical := strings.Trim(filePath, "/")
	return &crossfs.FileInfo{
		Name:        path.Base("/" + logical),
		Path:        logical,
		Size:        info.Size(),
		ModTime:     info.ModTime(),
		IsDir:       info.IsDir(),
		ContentType: contentType,
	}, nil
}

// ListContents implements crossfs.FileReader.
func (a *Adapter) ListContents(ctx context.Context, dirPath string, recursive bool) ([]crossfs.FileInfo, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	fullPath, err := a.fullPath(dirPath)
	if err != nil {
		return nil, crossfs.WrapPathErr("listcontents", dirPath, err)
	}
	logical := strings.Trim(dirPath, "/")

	var files []crossfs.FileInfo
	err = a.retry.Do(ctx, "listcontents", func() error {
		client, cerr := a.conn()
		if cerr != nil {
			return cerr
		}

		info, cerr := client.Stat(fullPath)
		if cerr != nil {
			return cerr
		}
		if !info.IsDir() {
			return crossfs.ErrNotDir
		}

		files = files[:0]
		return a.listDir(client, fullPath, logical, recursive, &files)
	})
	if err != nil {
		return nil, mapSFTPError("listcontents", dirPath, err)
	}
	return files, nil
}

// listDir appends the entries under fullPath, descending when recursive.
func (a *Adapter) listDir(client *sftp.Client, fullPath, relPath string, recursive bool, results *[]crossfs.FileInfo) error {
	entries, err := client.ReadDir(fullPath)
	if err != nil {
		return err
	}

	for _, entry := range entries {
		entryRelPath := path.Join(relPath, entry.Name())
		entryFullPath := path.Join(fullPath, entry.Name())

		contentType := ""
		if !entry.IsDir() {
			contentType = detectContentType(entry.Name())
		}

		*results = append(*results, crossfs.FileInfo{
			Name:        entry.Name(),
			Path:        entryRelPath,
			Size:        entry.Size(),
			ModTime:     entry.ModTime(),
			IsDir:       entry.IsDir(),
			ContentType: contentType,
		})

		if recursive && entry.IsDir() {
			if err := a.listDir(client, entryFullPath, entryRelPath, recursive, results); err != nil {
				return err
			}
		}
	}
	return nil
}

// ============================================================================
// FileWriter
// ============================================================================

// Write implements crossfs.FileWriter. The content is buffered when the
// reader cannot seek so a retried attempt uploads the full body again.
func (a *Adapter) Write(ctx context.Context, filePath string, content io.Reader, options ...crossfs.Option) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

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

	err = a.retry.Do(ctx, "write", func() error {
		if _, serr := body.Seek(start, io.SeekStart); serr != nil {
			return serr
		}
		client, cerr := a.conn()
		if cerr != nil {
			return cerr
		}

		if derr := client.MkdirAll(path.Dir(fullPath)); derr != nil {
			return derr
		}
		file, cerr := client.Create(fullPath)
		if cerr != nil {
			return cerr
		}
		if _, cerr = io.Copy(file, body); cerr != nil {
			file.Close()
			return cerr
		}
		return file.Close()
	})
	if err != nil {
		return mapSFTPError("write", filePath, err)
	}
	return nil
}

// OpenWrite implements crossfs.FileWriter. Bytes are buffered locally and
// flushed as one upload when the handle is closed, keeping partial writes
// invisible on the remote side.
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
	info, err := a.statRemote(ctx, "delete", filePath)
	if err != nil {
		return err
	}
	if info.IsDir() {
		return crossfs.WrapPathErr("delete", filePath, crossfs.ErrIsDir)
	}

	fullPath, err := a.fullPath(filePath)
	if err != nil {
		return crossfs.WrapPathErr("delete", filePath, err)
	}

	err = a.retry.Do(ctx, "delete", func() error {
		client, cerr := a.conn()
		if cerr != nil {
			return cerr
		}
		return client.Remove(fullPath)
	})
	if err != nil {
		return mapSFTPError("delete", filePath, err)
	}
	return nil
}

// CreateDir implements crossfs.FileWriter, creating parents as needed.
func (a *Adapter) CreateDir(ctx context.Context, dirPath string) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	fullPath, err := a.fullPath(dirPath)
	if err != nil {
		return crossfs.WrapPathErr("createdir", dirPath, err)
	}

	err = a.retry.Do(ctx, "createdir", func() error {
		client, cerr := a.conn()
		if cerr != nil {
			return cerr
		}
		return client.MkdirAll(fullPath)
	})
	if err != nil {
		return mapSFTPError("createdir", dirPath, err)
	}
	return nil
}

// DeleteDir implements crossfs.FileWriter. Without recursive a non-empty
// directory fails with ErrNotEmpty.
func (a *Adapter) DeleteDir(ctx context.Context, dirPath string, recursive bool) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	fullPath, err := a.fullPath(dirPath)
	if err != nil {
		return crossfs.WrapPathErr("deletedir", dirPath, err)
	}

	err = a.retry.Do(ctx, "deletedir", func() error {
		client, cerr := a.conn()
		if cerr != nil {
			return cerr
		}

		info, cerr := client.Stat(fullPath)
		if cerr != nil {
			return cerr
		}
		if !info.IsDir() {
			return crossfs.ErrNotDir
		}

		if !recursive {
			entries, lerr := client.ReadDir(fullPath)
			if lerr != nil {
				return lerr
			}
			if len(entries) > 0 {
				return crossfs.ErrNotEmpty
			}
			return client.RemoveDirectory(fullPath)
		}
		return removeAll(client, fullPath)
	})
	if err != nil {
		return mapSFTPError("deletedir", dirPath, err)
	}
	return nil
}

// removeAll removes a directory tree bottom-up.
func removeAll(client *sftp.Client, dirPath string) error {
	entries, err := client.ReadDir(dirPath)
	if err != nil {
		return err
	}
	for _, entry := range entries {
		entryPath := path.Join(dirPath, entry.Name())
		if entry.IsDir() {
			if err := removeAll(client, entryPath); err != nil {
				return err
			}
		} else if err := client.Remove(entryPath); err != nil {
			return err
		}
	}
	return client.RemoveDirectory(dirPath)
}

// ============================================================================
// Optional Capability Interfaces
// ============================================================================

// Copy implements crossfs.CanCopy. SFTP has no server-side copy, so this
// streams the content through the client.
func (a *Adapter) Copy(ctx context.Context, src, dst string) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	srcPath, err := a.fullPath(src)
	if err != nil {
		return crossfs.WrapPathErr("copy", src, err)
	}
	dstPath, err := a.fullPath(dst)
	if err != nil {
		return crossfs.WrapPathErr("copy", dst, err)
	}

	err = a.retry.Do(ctx, "copy", func() error {
		client, cerr := a.conn()
		if cerr != nil {
			return cerr
		}

		srcFile, cerr := client.Open(srcPath)
		if cerr != nil {
			return cerr
		}
		defer srcFile.Close()

		if derr := client.MkdirAll(path.Dir(dstPath)); derr != nil {
			return derr
		}
		dstFile, cerr := client.Create(dstPath)
		if cerr != nil {
			return cerr
		}
		if _, cerr = io.Copy(dstFile, srcFile); cerr != nil {
			dstFile.Close()
			return cerr
		}
		return dstFile.Close()
	})
	if err != nil {
		return mapSFTPError("copy", src, err)
	}
	return nil
}

// Move implements crossfs.CanMove using the protocol's native rename. A
// failed rename leaves the source untouched.
func (a *Adapter) Move(ctx context.Context, src, dst string) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	srcPath, err := a.fullPath(src)
	if err != nil {
		return crossfs.WrapPathErr("move", src, err)
	}
	dstPath, err := a.fullPath(dst)
	if err != nil {
		return crossfs.WrapPathErr("move", dst, err)
	}

	err = a.retry.Do(ctx, "move", func() error {
		client, cerr := a.conn()
		if cerr != nil {
			return cerr
		}
		if derr := client.MkdirAll(path.Dir(dstPath)); derr != nil {
			return derr
		}
		return client.Rename(srcPath, dstPath)
	})
	if err != nil {
		return mapSFTPError("move", src, err)
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

// isTransientSFTP classifies connection-level failures as retryable.
// Not-found and permission errors are definitive.
func isTransientSFTP(err error) bool {
	if err == nil || os.IsNotExist(err) || os.IsPermission(err) {
		return false
	}
	if errors.Is(err, crossfs.ErrClosed) || errors.Is(err, crossfs.ErrNotDir) ||
		errors.Is(err, crossfs.ErrNotEmpty) {
		return false
	}

	var statusErr *sftp.StatusError
	if errors.As(err, &statusErr) {
		code := statusErr.FxCode()
		return code == sftp.ErrSSHFxConnectionLost || code == sftp.ErrSSHFxNoConnection
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

// mapSFTPError translates remote errors into the crossfs error taxonomy.
func mapSFTPError(op, logicalPath string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	if os.IsNotExist(err) {
		return crossfs.WrapPathErr(op, logicalPath, crossfs.ErrNotExist)
	}
	if os.IsPermission(err) {
		return crossfs.WrapPathErr(op, logicalPath, crossfs.ErrPermission)
	}
	if isTransientSFTP(err) {
		return crossfs.WrapPathErr(op, logicalPath, fmt.Errorf("%w: %v", crossfs.ErrConnection, err))
	}
	return crossfs.WrapPathErr(op, logicalPath, err)
}

// Ensure Adapter implements required and optional interfaces
var (
	_ crossfs.FileSystem  = (*Adapter)(nil)
	_ crossfs.FileReader  = (*Adapter)(nil)
	_ crossfs.FileWriter  = (*Adapter)(nil)
	_ crossfs.CanCopy     = (*Adapter)(nil)
	_ crossfs.CanMove     = (*Adapter)(nil)
	_ crossfs.CanChecksum = (*Adapter)(nil)
)
