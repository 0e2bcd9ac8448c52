package fs

import (
	"errors"
	"fmt"
	"os"
	"syscall"
)

// Error wraps view errors with the operation and affected host path.
type Error struct {
	Op   string // operation that failed (e.g. "lookup", "readdir")
	Path string // host path the operation targeted
	Err  error  // underlying error
}

// Error implements the error interface
func (e *Error) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("operation %s failed: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("operation %s on %s failed: %v", e.Op, e.Path, e.Err)
}

// Unwrap implements error unwrapping for errors.Is/As
func (e *Error) Unwrap() error {
	return e.Err
}

// NewError creates an Error for the given operation and path
func NewError(op, path string, err error) *Error {
	return &Error{Op: op, Path: path, Err: err}
}

// ToFuseError maps an error to the errno FUSE should report. Underlying
// syscall errors pass through unchanged; anything unrecognized becomes
// EIO.
func ToFuseError(err error) error {
	if err == nil {
		return nil
	}

	var errno syscall.Errno
	if errors.As(err, &errno) {
		return errno
	}

	switch {
	case errors.Is(err, os.ErrNotExist):
		return syscall.ENOENT
	case errors.Is(err, os.ErrPermission):
		return syscall.EACCES
	default:
		return syscall.EIO
	}
}

// Operation names for error reporting
const (
	OpLookup  = "lookup"
	OpReadDir = "readdir"
	OpOpen    = "open"
	OpRead    = "read"
	OpGetattr = "getattr"
)
