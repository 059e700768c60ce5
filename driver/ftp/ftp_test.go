package ftp

import (
	"context"
	"errors"
	"io"
	"net/textproto"
	"syscall"
	"testing"
	"time"

	"github.com/jlaffaye/ftp"

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
		{"no base", "", "pub/file.txt", "pub/file.txt", false},
		{"no base root", "", "/", "", false},
		{"with base", "/srv", "pub/file.txt", "/srv/pub/file.txt", false},
		{"with base root", "/srv", "", "/srv", false},
		{"dot segments resolved", "/srv", "a/./b/../c.txt", "/srv/a/c.txt", false},
		{"escape rejected", "/srv", "../outside", "", true},
		{"escape via traversal", "", "a/../../outside", "", true},
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

func TestIsTransientFTP(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"4xx is transient", &textproto.Error{Code: 421, Msg: "service not available"}, true},
		{"450 busy", &textproto.Error{Code: 450, Msg: "file busy"}, true},
		{"550 not found is definitive", &textproto.Error{Code: 550, Msg: "no such file"}, false},
		{"5xx is definitive", &textproto.Error{Code: 530, Msg: "not logged in"}, false},
		{"eof", io.EOF, true},
		{"connection reset", syscall.ECONNRESET, true},
		{"mapped not-exist", crossfs.ErrNotExist, false},
		{"plain error", errors.New("boom"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := isTransientFTP(tt.err); got != tt.want {
				t.Errorf("isTransientFTP(%v) = %t, want %t", tt.err, got, tt.want)
			}
		})
	}
}

func TestMapFTPError(t *testing.T) {
	t.Run("550 maps to not exist", func(t *testing.T) {
		err := mapFTPError("read", "x.txt", &textproto.Error{Code: ftp.StatusFileUnavailable, Msg: "no such file"})
		if !crossfs.IsNotExist(err) {
			t.Errorf("expected not-exist, got: %v", err)
		}
	})

	t.Run("530 maps to permission", func(t *testing.T) {
		err := mapFTPError("write", "x.txt", &textproto.Error{Code: ftp.StatusNotLoggedIn, Msg: "not logged in"})
		if !crossfs.IsPermission(err) {
			t.Errorf("expected permission, got: %v", err)
		}
	})

	t.Run("421 maps to connection", func(t *testing.T) {
		err := mapFTPError("read", "x.txt", &textproto.Error{Code: 421, Msg: "timeout"})
		if !crossfs.IsConnection(err) {
			t.Errorf("expected connection, got: %v", err)
		}
	})

	t.Run("context errors pass through", func(t *testing.T) {
		err := mapFTPError("read", "x.txt", context.DeadlineExceeded)
		if !errors.Is(err, context.DeadlineExceeded) {
			t.Errorf("expected context.DeadlineExceeded, got: %v", err)
		}
		var pe *crossfs.PathError
		if errors.As(err, &pe) {
			t.Error("context errors must not be wrapped")
		}
	})

	t.Run("other errors keep their identity", func(t *testing.T) {
		cause := errors.New("boom")
		err := mapFTPError("read", "x.txt", cause)
		if !errors.Is(err, cause) {
			t.Errorf("expected wrapped cause, got: %v", err)
		}
	})
}

func TestEntryInfo(t *testing.T) {
	now := time.Now()

	t.Run("file", func(t *testing.T) {
		info := entryInfo(&ftp.Entry{
			Name: "report.pdf",
			Type: ftp.EntryTypeFile,
			Size: 2048,
			Time: now,
		}, "docs/report.pdf")

		if info.IsDir {
			t.Error("expected file")
		}
		if info.Name != "report.pdf" || info.Path != "docs/report.pdf" {
			t.Errorf("unexpected identity: %q %q", info.Name, info.Path)
		}
		if info.Size != 2048 {
			t.Errorf("size = %d", info.Size)
		}
		if info.ContentType != "application/pdf" {
			t.Errorf("content type = %q", info.ContentType)
		}
	})

	t.Run("directory", func(t *testing.T) {
		info := entryInfo(&ftp.Entry{
			Name: "sub",
			Type: ftp.EntryTypeFolder,
			Time: now,
		}, "docs/sub")

		if !info.IsDir {
			t.Error("expected directory")
		}
		if info.ContentType != "" {
			t.Errorf("directories carry no content type, got %q", info.ContentType)
		}
	})
}
