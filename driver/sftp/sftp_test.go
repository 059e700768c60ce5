package sftp

import (
	"context"
	"errors"
	"io"
	"net"
	"os"
	"syscall"
	"testing"

	"github.com/crossfs/crossfs"
)

func TestFullPath(t *testing.T) {
	tests := []struct {
		name     string
		basePath string
		in       string
		want     string
		wantErr  bool
	}{
		{"no base", "", "docs/readme.md", "docs/readme.md", false},
		{"no base root", "", "", "", false},
		{"leading slash stripped", "", "/docs/readme.md", "docs/readme.md", false},
		{"with base", "/srv/files", "docs/readme.md", "/srv/files/docs/readme.md", false},
		{"with base root", "/srv/files", "/", "/srv/files", false},
		{"dot segments resolved", "/srv/files", "a/./b/../c.txt", "/srv/files/a/c.txt", false},
		{"escape rejected", "/srv/files", "../outside", "", true},
		{"escape via traversal", "/srv/files", "a/../../outside", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := &Adapter{basePath: tt.basePath}
			got, err := a.fullPath(tt.in)
			if tt.wantErr {
				if !errors.Is(err, crossfs.ErrInvalidPath) {
					t.Errorf("expected ErrInvalidPath, got: %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("fullPath(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

type fakeNetError struct{}

func (fakeNetError) Error() string   { return "net down" }
func (fakeNetError) Timeout() bool   { return true }
func (fakeNetError) Temporary() bool { return true }

var _ net.Error = fakeNetError{}

func TestIsTransientSFTP(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"not exist", os.ErrNotExist, false},
		{"permission", os.ErrPermission, false},
		{"eof", io.EOF, true},
		{"unexpected eof", io.ErrUnexpectedEOF, true},
		{"connection reset", syscall.ECONNRESET, true},
		{"broken pipe", syscall.EPIPE, true},
		{"net error", fakeNetError{}, true},
		{"plain error", errors.New("boom"), false},
		{"closed handle", crossfs.ErrClosed, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := isTransientSFTP(tt.err); got != tt.want {
				t.Errorf("isTransientSFTP(%v) = %t, want %t", tt.err, got, tt.want)
			}
		})
	}
}

func TestMapSFTPError(t *testing.T) {
	t.Run("not exist", func(t *testing.T) {
		err := mapSFTPError("read", "x.txt", os.ErrNotExist)
		if !crossfs.IsNotExist(err) {
			t.Errorf("expected not-exist, got: %v", err)
		}
	})

	t.Run("permission", func(t *testing.T) {
		err := mapSFTPError("write", "x.txt", os.ErrPermission)
		if !crossfs.IsPermission(err) {
			t.Errorf("expected permission, got: %v", err)
		}
	})

	t.Run("connection", func(t *testing.T) {
		err := mapSFTPError("read", "x.txt", fakeNetError{})
		if !crossfs.IsConnection(err) {
			t.Errorf("expected connection, got: %v", err)
		}
	})

	t.Run("context errors pass through", func(t *testing.T) {
		err := mapSFTPError("read", "x.txt", context.Canceled)
		if !errors.Is(err, context.Canceled) {
			t.Errorf("expected context.Canceled, got: %v", err)
		}
		var pe *crossfs.PathError
		if errors.As(err, &pe) {
			t.Error("context errors must not be wrapped")
		}
	})

	t.Run("other errors keep their identity", func(t *testing.T) {
		cause := errors.New("boom")
		err := mapSFTPError("read", "x.txt", cause)
		if !errors.Is(err, cause) {
			t.Errorf("expected wrapped cause, got: %v", err)
		}
	})
}
