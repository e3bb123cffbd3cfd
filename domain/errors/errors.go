// Package errors provides the typed errors of the job runtime.
// All error types support unwrapping via errors.As() and errors.Is().
package errors

import (
	stdErrors "errors"
	"fmt"

	"github.com/magnolia-os/magnolia-go/domain/entities"
)

var (
	// ErrShortWrite is reported when the host accepted zero bytes of a
	// non-empty write. It is always carried inside an EIO SysError.
	ErrShortWrite = stdErrors.New("short write")

	// ErrEmbeddedNul is reported when a path contains a NUL byte and can
	// not be handed to the host without truncation.
	ErrEmbeddedNul = stdErrors.New("path contains NUL byte")

	// ErrClosed is carried by operations on a file handle that was already
	// closed or released. No host call is made.
	ErrClosed = stdErrors.New("file already closed")

	// ErrInvalidUTF8 is reported when an argument is not valid text.
	ErrInvalidUTF8 = stdErrors.New("invalid UTF-8")

	// ErrUnreported marks a host failure that left the error register at zero.
	ErrUnreported = stdErrors.New("host reported failure without errno")

	// ErrNotInstalled is returned when no process-wide runtime is installed.
	ErrNotInstalled = stdErrors.New("runtime not installed")

	// ErrAlreadyInstalled is returned when a second runtime is installed.
	ErrAlreadyInstalled = stdErrors.New("runtime already installed")
)

// SysError is a failed host call together with the error code captured
// right after it.
type SysError struct {
	Err   error
	Op    string
	Path  string
	Name  string
	Errno entities.Errno
}

func (e *SysError) Error() string {
	msg := e.Op
	if e.Path != "" {
		msg += " " + e.Path
	}
	code := fmt.Sprintf("errno %d", int32(e.Errno))
	if e.Name != "" {
		code = fmt.Sprintf("%s (errno %d)", e.Name, int32(e.Errno))
	}
	msg += ": " + code
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Unwrap exposes both the errno and the optional cause.
func (e *SysError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Errno}
	}
	return []error{e.Errno, e.Err}
}

// NewSysError builds a SysError, naming the code through table.
func NewSysError(op, path string, code entities.Errno, table entities.ErrnoTable) *SysError {
	return &SysError{Op: op, Path: path, Errno: code, Name: table.Name(code)}
}

// DecodeError reports an argument that could not be decoded as text.
type DecodeError struct {
	Err   error
	Value []byte
	Index int
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("argument %d: %v", e.Index, e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// ProfileError represents a host profile validation failure.
type ProfileError struct {
	Err   error
	Field string
}

func (e *ProfileError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("host profile validation failed for field '%s': %v", e.Field, e.Err)
	}
	return fmt.Sprintf("host profile validation failed: %v", e.Err)
}

func (e *ProfileError) Unwrap() error {
	return e.Err
}

// ErrnoOf extracts the captured error code from err.
func ErrnoOf(err error) (entities.Errno, bool) {
	var sysErr *SysError
	if stdErrors.As(err, &sysErr) {
		return sysErr.Errno, true
	}
	var code entities.Errno
	if stdErrors.As(err, &code) {
		return code, true
	}
	return 0, false
}

// IsErrno reports whether err carries the given error code.
func IsErrno(err error, code entities.Errno) bool {
	got, ok := ErrnoOf(err)
	return ok && got == code
}
