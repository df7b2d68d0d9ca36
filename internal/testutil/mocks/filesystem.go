package mocks

import (
	"os"
	"path/filepath"
	"strings"
	"sync"
	"syscall"

	"github.com/felixgeelhaar/junction/internal/ports"
)

// DefaultWorkingDir is the directory relative paths are resolved against.
const DefaultWorkingDir = "/work"

// FileSystem is a thread-safe test double for ports.FileSystem.
// Paths are cleaned before use, so "/a/b/" and "/a/b" name the same entry.
// Reparse data attached to a directory lives here as well, which keeps it
// in step with Remove the way the kernel does.
type FileSystem struct {
	mu      sync.RWMutex
	files   map[string][]byte
	dirs    map[string]bool
	reparse map[string][]byte
	errs    map[string]error
	cwd     string
}

// NewFileSystem creates a new FileSystem mock.
func NewFileSystem() *FileSystem {
	return &FileSystem{
		files:   make(map[string][]byte),
		dirs:    make(map[string]bool),
		reparse: make(map[string][]byte),
		errs:    make(map[string]error),
		cwd:     DefaultWorkingDir,
	}
}

func key(path string) string {
	return filepath.Clean(path)
}

func isRooted(path string) bool {
	return filepath.IsAbs(path) || strings.HasPrefix(path, "/") || strings.HasPrefix(path, `\`)
}

// AddFile adds a file, creating its parent directories.
func (fs *FileSystem) AddFile(path string, content string) {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	p := key(path)
	fs.addParents(p)
	fs.files[p] = []byte(content)
}

// AddDir adds a directory and its parents.
func (fs *FileSystem) AddDir(path string) {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	p := key(path)
	fs.addParents(p)
	fs.dirs[p] = true
}

func (fs *FileSystem) addParents(p string) {
	for dir := filepath.Dir(p); dir != p; p, dir = dir, filepath.Dir(dir) {
		fs.dirs[dir] = true
	}
}

// SetReparseData attaches raw reparse data to an existing directory,
// bypassing the validation the device-control double performs.
func (fs *FileSystem) SetReparseData(path string, data []byte) {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	fs.reparse[key(path)] = append([]byte(nil), data...)
}

// ReparseData returns a copy of the reparse data attached to path.
func (fs *FileSystem) ReparseData(path string) ([]byte, bool) {
	fs.mu.RLock()
	defer fs.mu.RUnlock()
	data, ok := fs.reparse[key(path)]
	if !ok {
		return nil, false
	}
	return append([]byte(nil), data...), true
}

// SetWorkingDir changes the directory Abs resolves relative paths against.
func (fs *FileSystem) SetWorkingDir(dir string) {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	fs.cwd = key(dir)
}

// InjectError makes the named operation ("abs", "mkdir", "remove", "read")
// fail with err until cleared with a nil err.
func (fs *FileSystem) InjectError(op string, err error) {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	if err == nil {
		delete(fs.errs, op)
		return
	}
	fs.errs[op] = err
}

// ReadFile reads a file from the mock filesystem.
func (fs *FileSystem) ReadFile(path string) ([]byte, error) {
	fs.mu.RLock()
	defer fs.mu.RUnlock()
	if err := fs.errs["read"]; err != nil {
		return nil, err
	}
	if content, ok := fs.files[key(path)]; ok {
		return content, nil
	}
	return nil, &os.PathError{Op: "open", Path: path, Err: syscall.ENOENT}
}

// Exists checks if a file or directory exists in the mock filesystem.
func (fs *FileSystem) Exists(path string) bool {
	fs.mu.RLock()
	defer fs.mu.RUnlock()
	p := key(path)
	_, fileExists := fs.files[p]
	return fileExists || fs.dirs[p]
}

// IsDir checks if a path is a directory in the mock filesystem.
func (fs *FileSystem) IsDir(path string) bool {
	fs.mu.RLock()
	defer fs.mu.RUnlock()
	return fs.dirs[key(path)]
}

// HasChildren reports whether any entry lives directly below path.
func (fs *FileSystem) HasChildren(path string) bool {
	fs.mu.RLock()
	defer fs.mu.RUnlock()
	return fs.hasChildren(key(path))
}

func (fs *FileSystem) hasChildren(p string) bool {
	for f := range fs.files {
		if f != p && filepath.Dir(f) == p {
			return true
		}
	}
	for d := range fs.dirs {
		if d != p && filepath.Dir(d) == p {
			return true
		}
	}
	return false
}

// MkdirAll creates a directory and its parents. It fails when a file is in
// the way, like the real call.
func (fs *FileSystem) MkdirAll(path string, _ os.FileMode) error {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	if err := fs.errs["mkdir"]; err != nil {
		return err
	}
	p := key(path)
	for cur := p; ; cur = filepath.Dir(cur) {
		if _, ok := fs.files[cur]; ok {
			return &os.PathError{Op: "mkdir", Path: path, Err: syscall.ENOTDIR}
		}
		if filepath.Dir(cur) == cur {
			break
		}
	}
	fs.addParents(p)
	fs.dirs[p] = true
	return nil
}

// Remove removes a file or an empty directory. Reparse data goes with it.
func (fs *FileSystem) Remove(path string) error {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	if err := fs.errs["remove"]; err != nil {
		return err
	}
	p := key(path)
	if _, ok := fs.files[p]; ok {
		delete(fs.files, p)
		return nil
	}
	if !fs.dirs[p] {
		return &os.PathError{Op: "remove", Path: path, Err: syscall.ENOENT}
	}
	if fs.hasChildren(p) {
		return &os.PathError{Op: "remove", Path: path, Err: syscall.ENOTEMPTY}
	}
	delete(fs.dirs, p)
	delete(fs.reparse, p)
	return nil
}

// Abs resolves path against the working directory.
func (fs *FileSystem) Abs(path string) (string, error) {
	fs.mu.RLock()
	defer fs.mu.RUnlock()
	if err := fs.errs["abs"]; err != nil {
		return "", err
	}
	if isRooted(path) {
		return key(path), nil
	}
	return filepath.Join(fs.cwd, path), nil
}

// Reset clears all files, directories and reparse data.
func (fs *FileSystem) Reset() {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	fs.files = make(map[string][]byte)
	fs.dirs = make(map[string]bool)
	fs.reparse = make(map[string][]byte)
	fs.errs = make(map[string]error)
}

// setReparse validates and stores data the way the kernel does for a set
// request arriving on a directory handle.
func (fs *FileSystem) setReparse(path string, data []byte, tag uint32) error {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	p := key(path)
	if !fs.dirs[p] {
		return ErrnoDirectory
	}
	if existing, ok := fs.reparse[p]; ok {
		if t, _ := tagOf(existing); t != tag {
			return ErrnoReparseTagMismatch
		}
	} else if fs.hasChildren(p) {
		return ErrnoDirNotEmpty
	}
	fs.reparse[p] = append([]byte(nil), data...)
	return nil
}

func (fs *FileSystem) clearReparse(path string, tag uint32) error {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	p := key(path)
	existing, ok := fs.reparse[p]
	if !ok {
		return ErrnoNotAReparsePoint
	}
	if t, _ := tagOf(existing); t != tag {
		return ErrnoReparseTagMismatch
	}
	delete(fs.reparse, p)
	return nil
}

// Ensure FileSystem implements ports.FileSystem.
var _ ports.FileSystem = (*FileSystem)(nil)
