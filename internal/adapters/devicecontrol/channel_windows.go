//go:build windows

package devicecontrol

import (
	"errors"
	"fmt"
	"os"

	"github.com/felixgeelhaar/junction/internal/ports"
	"golang.org/x/sys/windows"
)

type handle struct {
	h    windows.Handle
	path string
}

func open(path string, access ports.Access) (ports.Handle, error) {
	name, err := windows.UTF16PtrFromString(path)
	if err != nil {
		return nil, &os.PathError{Op: "open", Path: path, Err: err}
	}

	desired := uint32(windows.GENERIC_READ)
	if access == ports.AccessWrite {
		desired = windows.GENERIC_WRITE
	}

	h, err := windows.CreateFile(
		name,
		desired,
		windows.FILE_SHARE_READ|windows.FILE_SHARE_WRITE|windows.FILE_SHARE_DELETE,
		nil,
		windows.OPEN_EXISTING,
		windows.FILE_FLAG_BACKUP_SEMANTICS|windows.FILE_FLAG_OPEN_REPARSE_POINT,
		0,
	)
	if err != nil {
		return nil, &os.PathError{Op: "open", Path: path, Err: err}
	}

	return &handle{h: h, path: path}, nil
}

func (h *handle) Send(cmd ports.Command, buf []byte, size int) (ports.Reply, error) {
	if h.h == windows.InvalidHandle {
		return ports.Reply{}, &os.PathError{Op: cmd.String(), Path: h.path, Err: os.ErrClosed}
	}

	var returned uint32
	switch cmd {
	case ports.CommandGet:
		if len(buf) == 0 {
			return ports.Reply{}, fmt.Errorf("%s: empty output buffer", cmd)
		}
		err := windows.DeviceIoControl(h.h, uint32(cmd), nil, 0, &buf[0], uint32(len(buf)), &returned, nil)
		if errors.Is(err, windows.ERROR_NOT_A_REPARSE_POINT) {
			return ports.Reply{Status: ports.StatusNotReparsePoint}, nil
		}
		if err != nil {
			return ports.Reply{}, &os.PathError{Op: cmd.String(), Path: h.path, Err: err}
		}
		return ports.Reply{Status: ports.StatusOK, Data: buf[:returned]}, nil

	case ports.CommandSet, ports.CommandDelete:
		if size <= 0 || size > len(buf) {
			return ports.Reply{}, fmt.Errorf("%s: input size %d out of range for %d byte buffer", cmd, size, len(buf))
		}
		err := windows.DeviceIoControl(h.h, uint32(cmd), &buf[0], uint32(size), nil, 0, &returned, nil)
		if err != nil {
			return ports.Reply{}, &os.PathError{Op: cmd.String(), Path: h.path, Err: err}
		}
		return ports.Reply{Status: ports.StatusOK}, nil

	default:
		return ports.Reply{}, fmt.Errorf("unsupported control code %s", cmd)
	}
}

func (h *handle) Close() error {
	if h.h == windows.InvalidHandle {
		return nil
	}
	err := windows.CloseHandle(h.h)
	h.h = windows.InvalidHandle
	return err
}
