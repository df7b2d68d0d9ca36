package junction

import (
	"context"
	"errors"
	"os"

	"github.com/felixgeelhaar/junction/internal/domain/reparse"
	"github.com/felixgeelhaar/junction/internal/ports"
)

const placeholderPerm os.FileMode = 0o755

const (
	msgCreateFailed = "unable to create junction link"
	msgDeleteFailed = "unable to delete junction link"
	msgReadFailed   = "unable to read junction link"
	msgNotSupported = "junctions are not supported on this platform"
)

// Manager creates, deletes and inspects junctions. On a host without
// reparse points every operation fails with ErrNotSupported.
type Manager struct {
	fs  ports.FileSystem
	dc  ports.DeviceControl
	log ports.Logger
}

// Option configures a Manager.
type Option func(*Manager)

// WithLogger sets the logger. Operations log at debug level and report
// successful changes at info.
func WithLogger(l ports.Logger) Option {
	return func(m *Manager) {
		m.log = l
	}
}

// NewManager creates a Manager over a filesystem and a device-control channel.
func NewManager(fs ports.FileSystem, dc ports.DeviceControl, opts ...Option) *Manager {
	m := &Manager{fs: fs, dc: dc}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Create makes link a junction to target. A missing link is created as an
// empty directory first. An existing directory is converted only when
// overwrite is set, and only if the filesystem accepts it (it must be empty
// or already a junction). A placeholder created here is left behind if the
// kernel rejects the request.
func (m *Manager) Create(link, target string, overwrite bool) error {
	if err := m.supported(OpCreate, link); err != nil {
		return err
	}

	absTarget, err := m.fs.Abs(target)
	if err != nil || !m.fs.IsDir(absTarget) {
		return newError(ErrCodeDirectoryNotFound, OpCreate, target,
			"target path does not exist or is not a directory", err)
	}

	buf, err := reparse.Encode(absTarget)
	if err != nil {
		return newError(ErrCodeOperationFailed, OpCreate, link, msgCreateFailed, err)
	}

	if m.fs.IsDir(link) {
		if !overwrite {
			return newError(ErrCodeAlreadyExists, OpCreate, link,
				"directory already exists and overwrite was not requested", nil)
		}
		m.debug("converting existing directory", ports.F("link", link))
	} else if err := m.fs.MkdirAll(link, placeholderPerm); err != nil {
		return newError(ErrCodeOperationFailed, OpCreate, link, msgCreateFailed, err)
	}

	if _, err := m.exchange(link, ports.AccessWrite, ports.CommandSet, buf.Bytes(), buf.Size()); err != nil {
		return m.failure(OpCreate, link, msgCreateFailed, err)
	}

	m.info("junction created",
		ports.F("link", link),
		ports.F("target", absTarget),
		ports.F("overwrite", overwrite),
	)
	return nil
}

// Delete removes the junction at link and the directory entry itself.
// Nothing at link is a no-op. A plain directory makes the kernel refuse the
// clear request, which surfaces as an operation failure carrying the OS
// error. A file is rejected with ErrNotAJunctionOrDirectory.
func (m *Manager) Delete(link string) error {
	if err := m.supported(OpDelete, link); err != nil {
		return err
	}

	if !m.fs.IsDir(link) {
		if m.fs.Exists(link) {
			return newError(ErrCodeNotAJunctionOrDirectory, OpDelete, link,
				"path is not a junction or directory", nil)
		}
		m.debug("nothing to delete", ports.F("link", link))
		return nil
	}

	if _, err := m.exchange(link, ports.AccessWrite, ports.CommandDelete, reparse.EmptyHeader(), reparse.HeaderSize); err != nil {
		return m.failure(OpDelete, link, msgDeleteFailed, err)
	}

	if err := m.fs.Remove(link); err != nil {
		return newError(ErrCodeOperationFailed, OpDelete, link, msgDeleteFailed, err)
	}

	m.info("junction deleted", ports.F("link", link))
	return nil
}

// Exists reports whether link is a junction. Absent paths, files, plain
// directories and other reparse types report false without error.
func (m *Manager) Exists(link string) (bool, error) {
	raw, ok, err := m.query(OpExists, link)
	if err != nil || !ok {
		return false, err
	}
	tag, ok := reparse.Tag(raw)
	return ok && tag == reparse.TagMountPoint, nil
}

// GetTarget returns the target of the junction at link. ok is false when
// link is not a junction.
func (m *Manager) GetTarget(link string) (target string, ok bool, err error) {
	raw, ok, err := m.query(OpTarget, link)
	if err != nil || !ok {
		return "", false, err
	}

	target, ok, err = reparse.Decode(raw)
	if err != nil {
		return "", false, newError(ErrCodeOperationFailed, OpTarget, link, msgReadFailed, err)
	}
	return target, ok, nil
}

// Inspect classifies link into one of the four states and resolves the
// target of a junction.
func (m *Manager) Inspect(link string) (Link, error) {
	l := Link{Path: link}
	if err := m.supported(OpInspect, link); err != nil {
		return l, err
	}

	switch {
	case !m.fs.Exists(link):
		l.State = StateAbsent
	case !m.fs.IsDir(link):
		l.State = StateFile
	default:
		target, ok, err := m.GetTarget(link)
		if err != nil {
			var jerr *Error
			if errors.As(err, &jerr) {
				jerr.Op = OpInspect
			}
			return l, err
		}
		if ok {
			l.State = StateJunction
			l.Target = target
		} else {
			l.State = StatePlainDirectory
		}
	}

	m.debug("inspected link", ports.F("link", link), ports.F("state", l.State.String()))
	return l, nil
}

// query fetches the raw reparse data at link. ok is false when link is not
// a directory or carries no reparse point.
func (m *Manager) query(op, link string) ([]byte, bool, error) {
	if err := m.supported(op, link); err != nil {
		return nil, false, err
	}
	if !m.fs.IsDir(link) {
		return nil, false, nil
	}

	out := make([]byte, reparse.BufferSize)
	reply, err := m.exchange(link, ports.AccessRead, ports.CommandGet, out, len(out))
	if err != nil {
		return nil, false, m.failure(op, link, msgReadFailed, err)
	}
	if reply.Status == ports.StatusNotReparsePoint {
		return nil, false, nil
	}
	return reply.Data, true, nil
}

// supported fails every operation up front on a host without reparse
// points, before the filesystem is inspected or changed.
func (m *Manager) supported(op, path string) error {
	if err := m.dc.Supported(); err != nil {
		return newError(ErrCodeNotSupported, op, path, msgNotSupported, err)
	}
	return nil
}

// exchange opens link, sends one request and closes the handle on every path.
func (m *Manager) exchange(link string, access ports.Access, cmd ports.Command, buf []byte, size int) (ports.Reply, error) {
	h, err := m.dc.Open(link, access)
	if err != nil {
		return ports.Reply{}, err
	}
	defer func() {
		if cerr := h.Close(); cerr != nil {
			m.warn("closing reparse point handle", ports.F("link", link), ports.F("error", cerr.Error()))
		}
	}()

	m.debug("sending control request", ports.F("link", link), ports.F("command", cmd.String()), ports.F("size", size))
	return h.Send(cmd, buf, size)
}

func (m *Manager) failure(op, path, message string, err error) *Error {
	if errors.Is(err, ports.ErrNotSupported) {
		return newError(ErrCodeNotSupported, op, path, msgNotSupported, err)
	}
	return newError(ErrCodeOperationFailed, op, path, message, err)
}

func (m *Manager) debug(msg string, fields ...ports.Field) {
	if m.log != nil {
		m.log.Debug(context.Background(), msg, fields...)
	}
}

func (m *Manager) info(msg string, fields ...ports.Field) {
	if m.log != nil {
		m.log.Info(context.Background(), msg, fields...)
	}
}

func (m *Manager) warn(msg string, fields ...ports.Field) {
	if m.log != nil {
		m.log.Warn(context.Background(), msg, fields...)
	}
}
