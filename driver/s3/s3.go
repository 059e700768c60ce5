// Package s3 implements crossfs.FileSystem on top of an S3-compatible object
// store. Directories are emulated: a directory exists when a zero-length
// marker object with a trailing slash exists, or when at least one key is
// strictly nested under the path.
package s3

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"path"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"

	"github.com/crossfs/crossfs"
	"github.com/crossfs/crossfs/internal/retrier"
)

const dirContentType = "application/x-directory"

// deleteBatchSize is the S3 DeleteObjects limit per request.
const deleteBatchSize = 1000

// s3API is the subset of the S3 client the adapter uses. Tests substitute an
// in-memory fake.
type s3API interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, opts ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	GetObject(ctx context.Context, in *s3.GetObjectInput, opts ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	HeadObject(ctx context.Context, in *s3.HeadObjectInput, opts ...func(*s3.Options)) (*s3.HeadObjectOutput, error)
	DeleteObject(ctx context.Context, in *s3.DeleteObjectInput, opts ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
	DeleteObjects(ctx context.Context, in *s3.DeleteObjectsInput, opts ...func(*s3.Options)) (*s3.DeleteObjectsOutput, error)
	ListObjectsV2(ctx context.Context, in *s3.ListObjectsV2Input, opts ...func(*s3.Options)) (*s3.ListObjectsV2Output, error)
	CopyObject(ctx context.Context, in *s3.CopyObjectInput, opts ...func(*s3.Options)) (*s3.CopyObjectOutput, error)
}

// Adapter provides an S3 implementation of crossfs.FileSystem.
type Adapter struct {
	client s3API
	bucket string
	prefix string
	retry  *retrier.Retrier
}

// AdapterOption configures an Adapter.
type AdapterOption func(*Adapter)

// WithPrefix scopes all keys under the given prefix.
func WithPrefix(prefix string) AdapterOption {
	return func(a *Adapter) {
		a.prefix = strings.Trim(prefix, "/")
	}
}

// WithRetry overrides the default retry policy for transient backend errors.
func WithRetry(attempts int, delay time.Duration) AdapterOption {
	return func(a *Adapter) {
		a.retry = retrier.New(attempts, delay, isTransientS3)
	}
}

// New creates an S3 filesystem adapter over the given bucket.
func New(client s3API, bucket string, options ...AdapterOption) *Adapter {
	adapter := &Adapter{
		client: client,
		bucket: bucket,
		retry:  retrier.New(5, 500*time.Millisecond, isTransientS3),
	}
	for _, option := range options {
		option(adapter)
	}
	return adapter
}

// key maps a normalized file path to its object key.
func (a *Adapter) key(filePath string) string {
	return path.Join(a.prefix, strings.Trim(filePath, "/"))
}

// dirKey maps a normalized directory path to its marker key (trailing slash).
// The root of the bucket/prefix has no marker; it always exists.
func (a *Adapter) dirKey(dirPath string) string {
	k := a.key(dirPath)
	if k == "" || k == "." {
		return ""
	}
	return k + "/"
}

// relPath strips the adapter prefix from an object key.
func (a *Adapter) relPath(key string) string {
	if a.prefix != "" {
		key = strings.TrimPrefix(key, a.prefix+"/")
	}
	return strings.TrimSuffix(key, "/")
}

// ============================================================================
// FileReader
// ============================================================================

// Read implements crossfs.FileReader.
func (a *Adapter) Read(ctx context.Context, filePath string) (io.ReadCloser, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	var out *s3.GetObjectOutput
	err := a.retry.Do(ctx, "read", func() error {
		var err error
		out, err = a.client.GetObject(ctx, &s3.GetObjectInput{
			Bucket: aws.String(a.bucket),
			Key:    aws.String(a.key(filePath)),
		})
		return err
	})
	if err != nil {
		return nil, mapS3Error("read", filePath, err)
	}
	return out.Body, nil
}

// ReadAll implements crossfs.FileReader.
func (a *Adapter) ReadAll(ctx context.Context, filePath string) ([]byte, error) {
	rc, err := a.Read(ctx, filePath)
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, mapS3Error("readall", filePath, err)
	}
	return data, nil
}

// ReadRange implements crossfs.FileReader using the HTTP Range header.
// A negative length reads from offset to the end of the object.
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

	rng := fmt.Sprintf("bytes=%d-", offset)
	if length > 0 {
		rng = fmt.Sprintf("bytes=%d-%d", offset, offset+length-1)
	}

	var out *s3.GetObjectOutput
	err := a.retry.Do(ctx, "readrange", func() error {
		var err error
		out, err = a.client.GetObject(ctx, &s3.GetObjectInput{
			Bucket: aws.String(a.bucket),
			Key:    aws.String(a.key(filePath)),
			Range:  aws.String(rng),
		})
		return err
	})
	if err != nil {
		return nil, mapS3Error("readrange", filePath, err)
	}
	defer out.Body.Close()

	data, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, mapS3Error("readrange", filePath, err)
	}
	return data, nil
}

// FileExists implements crossfs.FileReader. Absence is not an error.
func (a *Adapter) FileExists(ctx context.Context, filePath string) (bool, error) {
	select {
	case <-ctx.Done():
		return false, ctx.Err()
	default:
	}

	err := a.retry.Do(ctx, "fileexists", func() error {
		_, err := a.client.HeadObject(ctx, &s3.HeadObjectInput{
			Bucket: aws.String(a.bucket),
			Key:    aws.String(a.key(filePath)),
		})
		return err
	})
	if err != nil {
		if isNotFoundS3(err) {
			return false, nil
		}
		return false, mapS3Error("fileexists", filePath, err)
	}
	return true, nil
}

// DirExists implements crossfs.FileReader. A directory exists when its marker
// object exists or any key is strictly nested under it.
func (a *Adapter) DirExists(ctx context.Context, dirPath string) (bool, error) {
	select {
	case <-ctx.Done():
		return false, ctx.Err()
	default:
	}

	marker := a.dirKey(dirPath)
	if marker == "" {
		return true, nil
	}

	var out *s3.ListObjectsV2Output
	err := a.retry.Do(ctx, "direxists", func() error {
		var err error
		out, err = a.client.ListObjectsV2(ctx, &s3.ListObjectsV2Input{
			Bucket:  aws.String(a.bucket),
			Prefix:  aws.String(marker),
			MaxKeys: aws.Int32(1),
		})
		return err
	})
	if err != nil {
		return false, mapS3Error("direxists", dirPath, err)
	}
	return len(out.Contents) > 0, nil
}

// Stat implements crossfs.FileReader. A path that only exists as an emulated
// directory yields a synthetic directory entry.
func (a *Adapter) Stat(ctx context.Context, filePath string) (*crossfs.FileInfo, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	var out *s3.HeadObjectOutput
	err := a.retry.Do(ctx, "stat", func() error {
		var err error
		out, err = a.client.HeadObject(ctx, &s3.HeadObjectInput{
			Bucket: aws.String(a.bucket),
			Key:    aws.String(a.key(filePath)),
		})
		return err
	})
	if err != nil {
		if isNotFoundS3(err) {
			// The object is absent; the path may still exist as a directory.
			exists, derr := a.DirExists(ctx, filePath)
			if derr != nil {
				return nil, derr
			}
			if exists {
				return &crossfs.FileInfo{
					Name:        path.Base(strings.Trim(filePath, "/")),
					Path:        strings.Trim(filePath, "/"),
					IsDir:       true,
					ContentType: dirContentType,
				}, nil
			}
		}
		return nil, mapS3Error("stat", filePath, err)
	}

	metadata := make(map[string]string, len(out.Metadata))
	for k, v := range out.Metadata {
		metadata[k] = v
	}

	return &crossfs.FileInfo{
		Name:        path.Base(strings.Trim(filePath, "/")),
		Path:        strings.Trim(filePath, "/"),
		Size:        aws.ToInt64(out.ContentLength),
		ModTime:     aws.ToTime(out.LastModified),
		ContentType: aws.ToString(out.ContentType),
		Metadata:    metadata,
	}, nil
}

// ListContents implements crossfs.FileReader by listing the key space and
// deriving directory entries from key structure.
func (a *Adapter) ListContents(ctx context.Context, dirPath string, recursive bool) ([]crossfs.FileInfo, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	listPrefix := a.dirKey(dirPath)
	objects, err := a.listAllObjects(ctx, "listcontents", dirPath, listPrefix)
	if err != nil {
		return nil, err
	}
	if listPrefix != "" && len(objects) == 0 {
		return nil, crossfs.WrapPathErr("listcontents", dirPath, crossfs.ErrNotExist)
	}

	if recursive {
		files := make([]crossfs.FileInfo, 0, len(objects))
		for _, obj := range objects {
			key := aws.ToString(obj.Key)
			if key == listPrefix {
				continue
			}
			files = append(files, crossfs.FileInfo{
				Name:    path.Base(strings.TrimSuffix(key, "/")),
				Path:    a.relPath(key),
				Size:    aws.ToInt64(obj.Size),
				ModTime: aws.ToTime(obj.LastModified),
				IsDir:   strings.HasSuffix(key, "/"),
			})
		}
		return files, nil
	}

	keys := make([]string, 0, len(objects))
	byKey := make(map[string]types.Object, len(objects))
	for _, obj := range objects {
		key := aws.ToString(obj.Key)
		keys = append(keys, key)
		byKey[key] = obj
	}

	var files []crossfs.FileInfo
	for _, entry := range dirEntries(listPrefix, keys) {
		info := crossfs.FileInfo{
			Name:  path.Base(strings.TrimSuffix(entry.key, "/")),
			Path:  a.relPath(entry.key),
			IsDir: entry.isDir,
		}
		if obj, ok := byKey[entry.key]; ok && !entry.isDir {
			info.Size = aws.ToInt64(obj.Size)
			info.ModTime = aws.ToTime(obj.LastModified)
		}
		files = append(files, info)
	}
	return files, nil
}

// listAllObjects pages through every object under listPrefix.
func (a *Adapter) listAllObjects(ctx context.Context, op, logicalPath, listPrefix string) ([]types.Object, error) {
	var objects []types.Object
	var continuation *string
	for {
		var out *s3.ListObjectsV2Output
		err := a.retry.Do(ctx, op, func() error {
			var err error
			out, err = a.client.ListObjectsV2(ctx, &s3.ListObjectsV2Input{
				Bucket:            aws.String(a.bucket),
				Prefix:            aws.String(listPrefix),
				ContinuationToken: continuation,
			})
			return err
		})
		if err != nil {
			return nil, mapS3Error(op, logicalPath, err)
		}
		objects = append(objects, out.Contents...)
		if !aws.ToBool(out.IsTruncated) {
			break
		}
		continuation = out.NextContinuationToken
	}
	return objects, nil
}

// ============================================================================
// FileWriter
// ============================================================================

// Write implements crossfs.FileWriter. Content for non-seekable readers is
// buffered so the upload can be replayed on a transient failure.
func (a *Adapter) Write(ctx context.Context, filePath string, content io.Reader, options ...crossfs.Option) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	opts := crossfs.ApplyOptions(options...)
	if !opts.Overwrite {
		exists, err := a.FileExists(ctx, filePath)
		if err != nil {
			return err
		}
		if exists {
			return crossfs.WrapPathErr("write", filePath, crossfs.ErrExist)
		}
	}

	body, size, err := seekableBody(content)
	if err != nil {
		return crossfs.NewPathError("write", filePath, err)
	}
	start, err := body.Seek(0, io.SeekCurrent)
	if err != nil {
		return crossfs.NewPathError("write", filePath, err)
	}

	input := &s3.PutObjectInput{
		Bucket:        aws.String(a.bucket),
		Key:           aws.String(a.key(filePath)),
		Body:          body,
		ContentLength: aws.Int64(size),
	}
	if opts.ContentType != "" {
		input.ContentType = aws.String(opts.ContentType)
	}
	if len(opts.Metadata) > 0 {
		metadata := make(map[string]string, len(opts.Metadata))
		for k, v := range opts.Metadata {
			metadata[k] = v
		}
		input.Metadata = metadata
	}

	err = a.retry.Do(ctx, "write", func() error {
		// Rewind so a retried attempt uploads the full body again.
		if _, serr := body.Seek(start, io.SeekStart); serr != nil {
			return serr
		}
		_, perr := a.client.PutObject(ctx, input)
		return perr
	})
	if err != nil {
		return mapS3Error("write", filePath, err)
	}
	return nil
}

// OpenWrite implements crossfs.FileWriter. Bytes are buffered locally and
// uploaded as a single object when the handle is closed.
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

// Close uploads the buffered bytes. Nothing is visible until it returns nil.
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

// Delete implements crossfs.FileWriter. Deleting a missing file fails with
// ErrNotExist even though the backend treats it as a no-op.
func (a *Adapter) Delete(ctx context.Context, filePath string) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	exists, err := a.FileExists(ctx, filePath)
	if err != nil {
		return err
	}
	if !exists {
		return crossfs.WrapPathErr("delete", filePath, crossfs.ErrNotExist)
	}

	err = a.retry.Do(ctx, "delete", func() error {
		_, derr := a.client.DeleteObject(ctx, &s3.DeleteObjectInput{
			Bucket: aws.String(a.bucket),
			Key:    aws.String(a.key(filePath)),
		})
		return derr
	})
	if err != nil {
		return mapS3Error("delete", filePath, err)
	}
	return nil
}

// CreateDir implements crossfs.FileWriter by writing a zero-length marker
// object with a trailing slash.
func (a *Adapter) CreateDir(ctx context.Context, dirPath string) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	marker := a.dirKey(dirPath)
	if marker == "" {
		return nil
	}

	err := a.retry.Do(ctx, "createdir", func() error {
		_, perr := a.client.PutObject(ctx, &s3.PutObjectInput{
			Bucket:        aws.String(a.bucket),
			Key:           aws.String(marker),
			Body:          bytes.NewReader(nil),
			ContentLength: aws.Int64(0),
			ContentType:   aws.String(dirContentType),
		})
		return perr
	})
	if err != nil {
		return mapS3Error("createdir", dirPath, err)
	}
	return nil
}

// DeleteDir implements crossfs.FileWriter. Without recursive it refuses to
// remove a directory that still holds anything besides its own marker.
func (a *Adapter) DeleteDir(ctx context.Context, dirPath string, recursive bool) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	marker := a.dirKey(dirPath)
	if marker == "" {
		return crossfs.WrapPathErr("deletedir", dirPath, crossfs.ErrInvalidPath)
	}

	objects, err := a.listAllObjects(ctx, "deletedir", dirPath, marker)
	if err != nil {
		return err
	}
	if len(objects) == 0 {
		return crossfs.WrapPathErr("deletedir", dirPath, crossfs.ErrNotExist)
	}
	if !recursive {
		for _, obj := range objects {
			if aws.ToString(obj.Key) != marker {
				return crossfs.WrapPathErr("deletedir", dirPath, crossfs.ErrNotEmpty)
			}
		}
	}

	for start := 0; start < len(objects); start += deleteBatchSize {
		end := start + deleteBatchSize
		if end > len(objects) {
			end = len(objects)
		}
		batch := make([]types.ObjectIdentifier, 0, end-start)
		for _, obj := range objects[start:end] {
			batch = append(batch, types.ObjectIdentifier{Key: obj.Key})
		}

		err = a.retry.Do(ctx, "deletedir", func() error {
			_, derr := a.client.DeleteObjects(ctx, &s3.DeleteObjectsInput{
				Bucket: aws.String(a.bucket),
				Delete: &types.Delete{
					Objects: batch,
					Quiet:   aws.Bool(true),
				},
			})
			return derr
		})
		if err != nil {
			return mapS3Error("deletedir", dirPath, err)
		}
	}
	return nil
}

// Close implements crossfs.FileSystem. The S3 client holds no connection
// state of its own.
func (a *Adapter) Close() error {
	return nil
}

// ============================================================================
// Optional Capability Interfaces
// ============================================================================

// Copy implements crossfs.CanCopy using the backend's native CopyObject,
// avoiding a download+upload round trip.
func (a *Adapter) Copy(ctx context.Context, src, dst string) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	copySource := fmt.Sprintf("%s/%s", a.bucket, a.key(src))
	err := a.retry.Do(ctx, "copy", func() error {
		_, cerr := a.client.CopyObject(ctx, &s3.CopyObjectInput{
			Bucket:     aws.String(a.bucket),
			CopySource: aws.String(copySource),
			Key:        aws.String(a.key(dst)),
		})
		return cerr
	})
	if err != nil {
		return mapS3Error("copy", src, err)
	}
	return nil
}

// Move implements crossfs.CanMove as copy-then-delete. The source is only
// removed after the copy has succeeded, so a failed move never loses data.
func (a *Adapter) Move(ctx context.Context, src, dst string) error {
	if err := a.Copy(ctx, src, dst); err != nil {
		return err
	}

	err := a.retry.Do(ctx, "move", func() error {
		_, derr := a.client.DeleteObject(ctx, &s3.DeleteObjectInput{
			Bucket: aws.String(a.bucket),
			Key:    aws.String(a.key(src)),
		})
		return derr
	})
	if err != nil {
		return mapS3Error("move", src, err)
	}
	return nil
}

// Checksum implements crossfs.CanChecksum by streaming the object through
// the hasher.
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

// seekableBody returns a rewindable reader over content plus its remaining
// size, buffering when the reader cannot seek.
func seekableBody(content io.Reader) (io.ReadSeeker, int64, error) {
	if rs, ok := content.(io.ReadSeeker); ok {
		pos, err := rs.Seek(0, io.SeekCurrent)
		if err == nil {
			end, err := rs.Seek(0, io.SeekEnd)
			if err == nil {
				if _, err = rs.Seek(pos, io.SeekStart); err == nil {
					return rs, end - pos, nil
				}
			}
		}
	}

	data, err := io.ReadAll(content)
	if err != nil {
		return nil, 0, err
	}
	return bytes.NewReader(data), int64(len(data)), nil
}

// isNotFoundS3 reports whether err means the key or bucket does not exist.
func isNotFoundS3(err error) bool {
	var nsk *types.NoSuchKey
	var nsb *types.NoSuchBucket
	var notFound *types.NotFound
	if errors.As(err, &nsk) || errors.As(err, &nsb) || errors.As(err, &notFound) {
		return true
	}
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case "NoSuchKey", "NoSuchBucket", "NotFound", "404":
			return true
		}
	}
	return false
}

// isTransientS3 classifies errors worth retrying. Not-found and access
// failures are definitive and never retried.
func isTransientS3(err error) bool {
	if err == nil || isNotFoundS3(err) {
		return false
	}
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case "SlowDown", "InternalError", "ServiceUnavailable", "RequestTimeout", "RequestTimeTooSkewed", "503":
			return true
		}
		return false
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}
	return errors.Is(err, io.ErrUnexpectedEOF)
}

// mapS3Error translates backend errors into the crossfs error taxonomy.
func mapS3Error(op, filePath string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	if isNotFoundS3(err) {
		return crossfs.WrapPathErr(op, filePath, crossfs.ErrNotExist)
	}

	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case "AccessDenied", "Forbidden", "InvalidAccessKeyId", "SignatureDoesNotMatch":
			return crossfs.WrapPathErr(op, filePath, fmt.Errorf("%w: %s", crossfs.ErrPermission, apiErr.ErrorCode()))
		case "SlowDown", "InternalError", "ServiceUnavailable", "RequestTimeout":
			return crossfs.WrapPathErr(op, filePath, fmt.Errorf("%w: %s", crossfs.ErrConnection, apiErr.ErrorCode()))
		}
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return crossfs.WrapPathErr(op, filePath, fmt.Errorf("%w: %v", crossfs.ErrConnection, netErr))
	}

	return crossfs.WrapPathErr(op, filePath, err)
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
