package ports

import (
	"errors"
	"fmt"
)

// ErrNotSupported is returned when the host cannot manipulate reparse points.
var ErrNotSupported = errors.New("reparse points are not supported on this platform")

// Access selects the rights a reparse handle is opened with.
type Access int

const (
	// AccessRead opens the reparse point for querying.
	AccessRead Access = iota
	// AccessWrite opens the reparse point for setting or clearing.
	AccessWrite
)

// String returns the string representation of the access mode.
func (a Access) String() string {
	switch a {
	case AccessRead:
		return "read"
	case AccessWrite:
		return "write"
	default:
		return "unknown"
	}
}

// Command is a filesystem control code understood by the reparse driver.
type Command uint32

const (
	// CommandSet is FSCTL_SET_REPARSE_POINT.
	CommandSet Command = 0x000900A4
	// CommandGet is FSCTL_GET_REPARSE_POINT.
	CommandGet Command = 0x000900A8
	// CommandDelete is FSCTL_DELETE_REPARSE_POINT.
	CommandDelete Command = 0x000900AC
)

// String returns the control code name.
func (c Command) String() string {
	switch c {
	case CommandSet:
		return "FSCTL_SET_REPARSE_POINT"
	case CommandGet:
		return "FSCTL_GET_REPARSE_POINT"
	case CommandDelete:
		return "FSCTL_DELETE_REPARSE_POINT"
	default:
		return fmt.Sprintf("FSCTL(0x%08X)", uint32(c))
	}
}

// Status is the non-error outcome of a control exchange.
type Status int

const (
	// StatusOK means the driver accepted the command. For CommandGet,
	// Reply.Data holds the returned reparse buffer.
	StatusOK Status = iota
	// StatusNotReparsePoint means CommandGet found no reparse data on the path.
	StatusNotReparsePoint
)

// String returns the string representation of the status.
func (s Status) String() string {
	switch s {
	case StatusOK:
		return "ok"
	case StatusNotReparsePoint:
		return "not-a-reparse-point"
	default:
		return "unknown"
	}
}

// Reply is the result of Handle.Send. Hard failures are reported through the
// accompanying error, never through Status.
type Reply struct {
	Status Status
	Data   []byte
}

// DeviceControl opens paths as reparse points.
type DeviceControl interface {
	// Supported returns an error wrapping ErrNotSupported when the host
	// cannot hold reparse points at all.
	Supported() error
	// Open opens path itself, not what it points to. The returned handle
	// must be closed by the caller.
	Open(path string, access Access) (Handle, error)
}

// Handle is an open reparse point.
type Handle interface {
	// Send issues cmd. For CommandSet and CommandDelete the first size bytes
	// of buf are the input; for CommandGet buf receives the output.
	Send(cmd Command, buf []byte, size int) (Reply, error)
	Close() error
}
