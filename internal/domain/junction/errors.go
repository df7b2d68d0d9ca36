package junction

import (
	"errors"
	"fmt"
	"strings"
	"syscall"

	"github.com/containerd/errdefs"
)

// Error codes for categorization.
const (
	ErrCodeNotSupported            = "NOT_SUPPORTED"
	ErrCodeDirectoryNotFound       = "DIRECTORY_NOT_FOUND"
	ErrCodeAlreadyExists           = "ALREADY_EXISTS"
	ErrCodeNotAJunctionOrDirectory = "NOT_A_JUNCTION_OR_DIRECTORY"
	ErrCodeOperationFailed         = "OPERATION_FAILED"
)

// Operations named in errors and log fields.
const (
	OpCreate  = "create"
	OpDelete  = "delete"
	OpExists  = "exists"
	OpTarget  = "target"
	OpInspect = "inspect"
)

// Sentinels for errors.Is. Any *Error with the same code matches.
var (
	ErrNotSupported            = &Error{Code: ErrCodeNotSupported}
	ErrDirectoryNotFound       = &Error{Code: ErrCodeDirectoryNotFound}
	ErrAlreadyExists           = &Error{Code: ErrCodeAlreadyExists}
	ErrNotAJunctionOrDirectory = &Error{Code: ErrCodeNotAJunctionOrDirectory}
	ErrOperationFailed         = &Error{Code: ErrCodeOperationFailed}
)

// Error is returned by every Manager operation that fails.
type Error struct {
	Code       string // one of the ErrCode constants
	Op         string // operation that failed, e.g. "create"
	Path       string // link or target path involved
	Message    string // user-facing message
	Suggestion string
	Underlying error // OS or codec error, if any
}

// Error returns the formatted error message.
func (e *Error) Error() string {
	var b strings.Builder

	b.WriteString(e.Message)
	if e.Message == "" {
		b.WriteString(strings.ToLower(strings.ReplaceAll(e.Code, "_", " ")))
	}
	if e.Path != "" {
		fmt.Fprintf(&b, " (at %s)", e.Path)
	}
	if e.Underlying != nil {
		fmt.Fprintf(&b, ": %v", e.Underlying)
	}

	return b.String()
}

// Unwrap returns the underlying error for error chain support.
func (e *Error) Unwrap() error {
	return e.Underlying
}

// Is matches other *Error values by code and the containerd/errdefs
// category the code belongs to, so errdefs.IsNotFound and friends work.
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Code == t.Code
	}
	if cat := e.category(); cat != nil {
		return errors.Is(cat, target)
	}
	return false
}

func (e *Error) category() error {
	switch e.Code {
	case ErrCodeNotSupported:
		return errdefs.ErrNotImplemented
	case ErrCodeDirectoryNotFound:
		return errdefs.ErrNotFound
	case ErrCodeAlreadyExists:
		return errdefs.ErrAlreadyExists
	case ErrCodeNotAJunctionOrDirectory:
		return errdefs.ErrInvalidArgument
	case ErrCodeOperationFailed:
		return errdefs.ErrUnknown
	default:
		return nil
	}
}

// Errno returns the OS error code carried by the error chain, if any.
func (e *Error) Errno() (syscall.Errno, bool) {
	return Errno(e)
}

// Detail returns a multi-line rendering with code, path, OS error and suggestion.
func (e *Error) Detail() string {
	var b strings.Builder

	fmt.Fprintf(&b, "[%s] %s", e.Code, e.Message)
	if e.Path != "" {
		fmt.Fprintf(&b, "\n  Path: %s", e.Path)
	}
	if errno, ok := e.Errno(); ok {
		fmt.Fprintf(&b, "\n  OS error: %d (%v)", uint32(errno), errno)
	} else if e.Underlying != nil {
		fmt.Fprintf(&b, "\n  Cause: %v", e.Underlying)
	}
	if e.Suggestion != "" {
		fmt.Fprintf(&b, "\n  Suggestion: %s", e.Suggestion)
	}

	return b.String()
}

// Errno extracts the OS error code from err's chain.
func Errno(err error) (syscall.Errno, bool) {
	var errno syscall.Errno
	if errors.As(err, &errno) {
		return errno, true
	}
	return 0, false
}

func newError(code, op, path, message string, err error) *Error {
	return &Error{
		Code:       code,
		Op:         op,
		Path:       path,
		Message:    message,
		Suggestion: suggestions[code],
		Underlying: err,
	}
}

var suggestions = map[string]string{
	ErrCodeNotSupported:            "Junctions need NTFS on Windows 2000 or later; run the Windows build of this tool",
	ErrCodeDirectoryNotFound:       "Create the target directory first or fix the target path",
	ErrCodeAlreadyExists:           "Pass --force to turn the existing directory into a junction",
	ErrCodeNotAJunctionOrDirectory: "Remove the file yourself; only junctions and directories are deleted",
}
