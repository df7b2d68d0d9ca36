package mocks

import (
	"os"
	"sync"
	"syscall"

	"github.com/felixgeelhaar/junction/internal/domain/reparse"
	"github.com/felixgeelhaar/junction/internal/ports"
)

// Windows error codes the double reports. They are plain errno values so
// tests can match them with errors.As on any OS.
const (
	ErrnoAccessDenied       syscall.Errno = 5
	ErrnoInvalidParameter   syscall.Errno = 87
	ErrnoDirNotEmpty        syscall.Errno = 145
	ErrnoMoreData           syscall.Errno = 234
	ErrnoDirectory          syscall.Errno = 267
	ErrnoNotAReparsePoint   syscall.Errno = 4390
	ErrnoInvalidReparseData syscall.Errno = 4392
	ErrnoReparseTagMismatch syscall.Errno = 4394
)

// SentCommand records one control request.
type SentCommand struct {
	Path    string
	Command ports.Command
	Input   []byte // set and delete payloads, nil for get
}

// DeviceControl is a test double for ports.DeviceControl that keeps reparse
// data on a FileSystem double and validates requests like NTFS does.
type DeviceControl struct {
	fs *FileSystem

	mu       sync.Mutex
	open     int
	opened   []string
	sent     []SentCommand
	openErr  error
	support  error
	sendErrs map[ports.Command]error
}

// NewDeviceControl creates a DeviceControl double backed by fs.
func NewDeviceControl(fs *FileSystem) *DeviceControl {
	return &DeviceControl{
		fs:       fs,
		sendErrs: make(map[ports.Command]error),
	}
}

// FailOpen makes every Open return err. Pass nil to clear.
func (d *DeviceControl) FailOpen(err error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.openErr = err
}

// Unsupported makes Supported and Open return err. Pass nil to clear.
func (d *DeviceControl) Unsupported(err error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.support = err
}

// Supported returns the error set with Unsupported.
func (d *DeviceControl) Supported() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.support
}

// FailCommand makes every request with cmd fail with err. Pass nil to clear.
func (d *DeviceControl) FailCommand(cmd ports.Command, err error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err == nil {
		delete(d.sendErrs, cmd)
		return
	}
	d.sendErrs[cmd] = err
}

// OpenHandles returns the number of handles opened and not yet closed.
func (d *DeviceControl) OpenHandles() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.open
}

// Opened returns the paths passed to successful Open calls, in order.
func (d *DeviceControl) Opened() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]string(nil), d.opened...)
}

// Sent returns the requests received so far, in order.
func (d *DeviceControl) Sent() []SentCommand {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]SentCommand(nil), d.sent...)
}

// Open opens an existing path.
func (d *DeviceControl) Open(path string, access ports.Access) (ports.Handle, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.support != nil {
		return nil, d.support
	}
	if d.openErr != nil {
		return nil, d.openErr
	}
	if !d.fs.Exists(path) {
		return nil, &os.PathError{Op: "open", Path: path, Err: syscall.ENOENT}
	}
	d.open++
	d.opened = append(d.opened, path)
	return &handle{dc: d, path: path, access: access}, nil
}

type handle struct {
	dc     *DeviceControl
	path   string
	access ports.Access
	closed bool
}

func (h *handle) Send(cmd ports.Command, buf []byte, size int) (ports.Reply, error) {
	if h.closed {
		return ports.Reply{}, os.ErrClosed
	}
	if err := h.dc.record(h.path, cmd, buf, size); err != nil {
		return ports.Reply{}, h.fail(cmd, err)
	}

	switch cmd {
	case ports.CommandGet:
		data, ok := h.dc.fs.ReparseData(h.path)
		if !ok {
			return ports.Reply{Status: ports.StatusNotReparsePoint}, nil
		}
		if len(buf) < len(data) {
			return ports.Reply{}, h.fail(cmd, ErrnoMoreData)
		}
		n := copy(buf, data)
		return ports.Reply{Status: ports.StatusOK, Data: buf[:n]}, nil

	case ports.CommandSet:
		if err := h.checkWrite(buf, size); err != nil {
			return ports.Reply{}, h.fail(cmd, err)
		}
		hdr, err := reparse.ParseHeader(buf[:size])
		if err != nil || int(hdr.DataLength)+reparse.HeaderSize != size {
			return ports.Reply{}, h.fail(cmd, ErrnoInvalidReparseData)
		}
		if err := h.dc.fs.setReparse(h.path, buf[:size], hdr.Tag); err != nil {
			return ports.Reply{}, h.fail(cmd, err)
		}
		return ports.Reply{Status: ports.StatusOK}, nil

	case ports.CommandDelete:
		if err := h.checkWrite(buf, size); err != nil {
			return ports.Reply{}, h.fail(cmd, err)
		}
		tag, ok := reparse.Tag(buf[:size])
		if !ok || size != reparse.HeaderSize {
			return ports.Reply{}, h.fail(cmd, ErrnoInvalidReparseData)
		}
		if err := h.dc.fs.clearReparse(h.path, tag); err != nil {
			return ports.Reply{}, h.fail(cmd, err)
		}
		return ports.Reply{Status: ports.StatusOK}, nil
	}

	return ports.Reply{}, h.fail(cmd, ErrnoInvalidParameter)
}

func (h *handle) checkWrite(buf []byte, size int) error {
	if h.access != ports.AccessWrite {
		return ErrnoAccessDenied
	}
	if size <= 0 || size > len(buf) {
		return ErrnoInvalidParameter
	}
	return nil
}

func (h *handle) fail(cmd ports.Command, err error) error {
	return &os.PathError{Op: cmd.String(), Path: h.path, Err: err}
}

func (h *handle) Close() error {
	if h.closed {
		return nil
	}
	h.closed = true
	h.dc.mu.Lock()
	defer h.dc.mu.Unlock()
	h.dc.open--
	return nil
}

// record logs the request and returns any injected failure for cmd.
func (d *DeviceControl) record(path string, cmd ports.Command, buf []byte, size int) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	sc := SentCommand{Path: path, Command: cmd}
	if cmd != ports.CommandGet && size > 0 && size <= len(buf) {
		sc.Input = append([]byte(nil), buf[:size]...)
	}
	d.sent = append(d.sent, sc)
	return d.sendErrs[cmd]
}

func tagOf(data []byte) (uint32, bool) {
	return reparse.Tag(data)
}

// Ensure DeviceControl implements ports.DeviceControl.
var _ ports.DeviceControl = (*DeviceControl)(nil)
