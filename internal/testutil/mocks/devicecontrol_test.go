package mocks

import (
	"errors"
	"os"
	"syscall"
	"testing"

	"github.com/felixgeelhaar/junction/internal/domain/reparse"
	"github.com/felixgeelhaar/junction/internal/ports"
)

func openWrite(t *testing.T, dc *DeviceControl, path string) ports.Handle {
	t.Helper()
	h, err := dc.Open(path, ports.AccessWrite)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	return h
}

func TestDeviceControl_SetGetDelete(t *testing.T) {
	fs := NewFileSystem()
	fs.AddDir("/work/link")
	dc := NewDeviceControl(fs)

	buf, err := reparse.Encode(`C:\target`)
	if err != nil {
		t.Fatalf("Encode() error = %v", err)
	}

	h := openWrite(t, dc, "/work/link")
	if _, err := h.Send(ports.CommandSet, buf.Bytes(), buf.Size()); err != nil {
		t.Fatalf("Send(Set) error = %v", err)
	}

	out := make([]byte, reparse.BufferSize)
	reply, err := h.Send(ports.CommandGet, out, len(out))
	if err != nil {
		t.Fatalf("Send(Get) error = %v", err)
	}
	if reply.Status != ports.StatusOK || len(reply.Data) != buf.Size() {
		t.Errorf("Send(Get) = %v with %d bytes, want ok with %d", reply.Status, len(reply.Data), buf.Size())
	}

	if _, err := h.Send(ports.CommandDelete, reparse.EmptyHeader(), reparse.HeaderSize); err != nil {
		t.Fatalf("Send(Delete) error = %v", err)
	}
	reply, err = h.Send(ports.CommandGet, out, len(out))
	if err != nil || reply.Status != ports.StatusNotReparsePoint {
		t.Errorf("Send(Get) after delete = %v, %v", reply.Status, err)
	}

	if err := h.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if dc.OpenHandles() != 0 {
		t.Errorf("OpenHandles() = %d, want 0", dc.OpenHandles())
	}
	if got := len(dc.Sent()); got != 4 {
		t.Errorf("Sent() has %d commands, want 4", got)
	}
}

func TestDeviceControl_OpenMissing(t *testing.T) {
	dc := NewDeviceControl(NewFileSystem())

	_, err := dc.Open("/missing", ports.AccessRead)
	if !errors.Is(err, syscall.ENOENT) {
		t.Errorf("Open() error = %v, want ENOENT", err)
	}
	if dc.OpenHandles() != 0 {
		t.Error("failed Open() should not count a handle")
	}
}

func TestDeviceControl_SetRejections(t *testing.T) {
	buf, _ := reparse.Encode(`C:\target`)

	tests := []struct {
		name  string
		setup func(fs *FileSystem)
		path  string
		want  syscall.Errno
	}{
		{
			name:  "non-empty directory",
			setup: func(fs *FileSystem) { fs.AddFile("/work/link/child", "x") },
			path:  "/work/link",
			want:  ErrnoDirNotEmpty,
		},
		{
			name:  "file",
			setup: func(fs *FileSystem) { fs.AddFile("/work/link", "x") },
			path:  "/work/link",
			want:  ErrnoDirectory,
		},
		{
			name: "foreign tag",
			setup: func(fs *FileSystem) {
				fs.AddDir("/work/link")
				fs.SetReparseData("/work/link", []byte{0x0C, 0x00, 0x00, 0xA0, 0, 0, 0, 0})
			},
			path: "/work/link",
			want: ErrnoReparseTagMismatch,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fs := NewFileSystem()
			tt.setup(fs)
			dc := NewDeviceControl(fs)
			h := openWrite(t, dc, tt.path)
			defer h.Close()

			_, err := h.Send(ports.CommandSet, buf.Bytes(), buf.Size())
			var errno syscall.Errno
			if !errors.As(err, &errno) || errno != tt.want {
				t.Errorf("Send(Set) error = %v, want errno %d", err, tt.want)
			}
		})
	}
}

func TestDeviceControl_SetWrongSize(t *testing.T) {
	fs := NewFileSystem()
	fs.AddDir("/work/link")
	dc := NewDeviceControl(fs)
	buf, _ := reparse.Encode(`C:\target`)
	h := openWrite(t, dc, "/work/link")
	defer h.Close()

	_, err := h.Send(ports.CommandSet, buf.Bytes(), buf.Size()-2)
	if !errors.Is(err, ErrnoInvalidReparseData) {
		t.Errorf("Send(Set) error = %v, want invalid reparse data", err)
	}
}

func TestDeviceControl_ReadHandleCannotWrite(t *testing.T) {
	fs := NewFileSystem()
	fs.AddDir("/work/link")
	dc := NewDeviceControl(fs)
	h, err := dc.Open("/work/link", ports.AccessRead)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer h.Close()

	_, err = h.Send(ports.CommandDelete, reparse.EmptyHeader(), reparse.HeaderSize)
	if !errors.Is(err, ErrnoAccessDenied) {
		t.Errorf("Send(Delete) error = %v, want access denied", err)
	}
}

func TestDeviceControl_DeletePlainDirectory(t *testing.T) {
	fs := NewFileSystem()
	fs.AddDir("/work/dir")
	dc := NewDeviceControl(fs)
	h := openWrite(t, dc, "/work/dir")
	defer h.Close()

	_, err := h.Send(ports.CommandDelete, reparse.EmptyHeader(), reparse.HeaderSize)
	var pe *os.PathError
	if !errors.As(err, &pe) || pe.Err != ErrnoNotAReparsePoint {
		t.Errorf("Send(Delete) error = %v, want not a reparse point", err)
	}
}

func TestDeviceControl_InjectedFailures(t *testing.T) {
	fs := NewFileSystem()
	fs.AddDir("/work/link")
	dc := NewDeviceControl(fs)
	boom := errors.New("boom")

	dc.FailOpen(boom)
	if _, err := dc.Open("/work/link", ports.AccessRead); !errors.Is(err, boom) {
		t.Errorf("Open() error = %v, want injected", err)
	}
	dc.FailOpen(nil)

	dc.FailCommand(ports.CommandGet, ErrnoAccessDenied)
	h := openWrite(t, dc, "/work/link")
	defer h.Close()
	out := make([]byte, reparse.BufferSize)
	if _, err := h.Send(ports.CommandGet, out, len(out)); !errors.Is(err, ErrnoAccessDenied) {
		t.Errorf("Send(Get) error = %v, want injected", err)
	}
	if got := dc.Opened(); len(got) != 1 || got[0] != "/work/link" {
		t.Errorf("Opened() = %v", got)
	}
}

func TestDeviceControl_ClosedHandle(t *testing.T) {
	fs := NewFileSystem()
	fs.AddDir("/work/link")
	dc := NewDeviceControl(fs)
	h := openWrite(t, dc, "/work/link")

	if err := h.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if err := h.Close(); err != nil {
		t.Errorf("second Close() error = %v", err)
	}
	if dc.OpenHandles() != 0 {
		t.Errorf("OpenHandles() = %d after double close", dc.OpenHandles())
	}
	if _, err := h.Send(ports.CommandGet, make([]byte, 16), 16); !errors.Is(err, os.ErrClosed) {
		t.Errorf("Send() on closed handle error = %v", err)
	}
}

func TestDeviceControl_Unsupported(t *testing.T) {
	fs := NewFileSystem()
	fs.AddDir("/work/link")
	dc := NewDeviceControl(fs)
	if err := dc.Supported(); err != nil {
		t.Fatalf("Supported() = %v, want nil", err)
	}

	dc.Unsupported(ports.ErrNotSupported)
	if err := dc.Supported(); !errors.Is(err, ports.ErrNotSupported) {
		t.Errorf("Supported() = %v, want not supported", err)
	}
	if _, err := dc.Open("/work/link", ports.AccessRead); !errors.Is(err, ports.ErrNotSupported) {
		t.Errorf("Open() error = %v, want not supported", err)
	}
	if dc.OpenHandles() != 0 || len(dc.Opened()) != 0 {
		t.Errorf("no handle should be opened, got %v", dc.Opened())
	}

	dc.Unsupported(nil)
	if err := dc.Supported(); err != nil {
		t.Errorf("Supported() after clearing = %v", err)
	}
}
