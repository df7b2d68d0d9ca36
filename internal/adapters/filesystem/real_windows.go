//go:build windows

package filesystem

import (
	"golang.org/x/sys/windows"
)

// attributes returns the attributes of the entry at path itself. Unlike
// os.Stat it does not traverse a junction, so a dangling junction is still
// reported as a directory.
func attributes(path string) (uint32, bool) {
	name, err := windows.UTF16PtrFromString(path)
	if err != nil {
		return 0, false
	}
	attrs, err := windows.GetFileAttributes(name)
	if err != nil {
		return 0, false
	}
	return attrs, true
}

// Exists checks if a file, directory or junction exists.
func (fs *RealFileSystem) Exists(path string) bool {
	_, ok := attributes(path)
	return ok
}

// IsDir checks if a path is a directory or a directory junction.
func (fs *RealFileSystem) IsDir(path string) bool {
	attrs, ok := attributes(path)
	return ok && attrs&windows.FILE_ATTRIBUTE_DIRECTORY != 0
}

