package crossfs

import (
	"errors"
	"fmt"
)

// Common filesystem errors. Drivers translate backend-native failures into
// exactly one of these; callers match with errors.Is.
var (
	ErrInvalidPath  = errors.New("invalid path")
	ErrNotExist     = errors.New("file does not exist")
	ErrExist        = errors.New("file already exists")
	ErrIsDir        = errors.New("is a directory")
	ErrNotDir       = errors.New("not a directory")
	ErrNotEmpty     = errors.New("directory not empty")
	ErrPermission   = errors.New("permission denied")
	ErrConnection   = errors.New("connection failed")
	ErrNotSupported = errors.New("operation not supported")
	ErrReadOnly     = errors.New("filesystem is read-only")
	ErrClosed       = errors.New("file already closed")
)

// PathError records an error and the operation and file path that caused it
type PathError struct {
	Op   string
	Path string
	Err  error
}

// Error implements the error interface
func (e *PathError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

// Unwrap returns the underlying error
func (e *PathError) Unwrap() error {
	return e.Err
}

// NewPathError creates a PathError for the given operation and path.
func NewPathError(op, path string, err error) *PathError {
	return &PathError{Op: op, Path: path, Err: err}
}

// WrapPathErr wraps err in a PathError unless it already is one.
func WrapPathErr(op, path string, err error) error {
	if err == nil {
		return nil
	}
	var pe *PathError
	if errors.As(err, &pe) {
		return err
	}
	return &PathError{Op: op, Path: path, Err: err}
}

// IsNotExist reports whether an error indicates that a file or directory
// does not exist
func IsNotExist(err error) bool {
	return errors.Is(err, ErrNotExist)
}

// IsExist reports whether an error indicates that a file or directory
// already exists
func IsExist(err error) bool {
	return errors.Is(err, ErrExist)
}

// IsPermission reports whether an error indicates that permission is denied
func IsPermission(err error) bool {
	return errors.Is(err, ErrPermission)
}

// IsConnection reports whether an error indicates a transport failure rather
// than a state of the filesystem itself.
func IsConnection(err error) bool {
	return errors.Is(err, ErrConnection)
}
