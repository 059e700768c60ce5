package crossfs

import (
	"context"
	"io"
)

// ProgressFunc receives transfer progress updates. totalBytes is -1 when the
// total size is unknown.
type ProgressFunc func(bytesTransferred int64, totalBytes int64)

// WriteWithProgress writes content to the filesystem, reporting transfer
// progress through fn as the reader is consumed.
func WriteWithProgress(ctx context.Context, fs FileWriter, path string, r io.Reader, size int64, fn ProgressFunc, options ...Option) error {
	if fn != nil {
		r = &progressReader{reader: r, progress: fn, size: size}
	}
	return fs.Write(ctx, path, r, options...)
}

// progressReader reports bytes read through the wrapped reader.
type progressReader struct {
	reader    io.Reader
	progress  ProgressFunc
	size      int64
	bytesRead int64
}

func (r *progressReader) Read(p []byte) (int, error) {
	n, err := r.reader.Read(p)
	if n > 0 {
		r.bytesRead += int64(n)
		r.progress(r.bytesRead, r.size)
	}
	return n, err
}
