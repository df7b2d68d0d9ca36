package ports

import (
	"os"
	"path/filepath"
	"strings"
)

// FileSystem provides the file system operations junction management needs
// besides the reparse control channel.
type FileSystem interface {
	ReadFile(path string) ([]byte, error)
	// Exists reports whether anything, including a dangling junction, is at path.
	Exists(path string) bool
	// IsDir reports whether path is a directory. A junction is a directory
	// regardless of whether its target exists.
	IsDir(path string) bool
	MkdirAll(path string, perm os.FileMode) error
	// Remove removes a file or an empty directory entry without following it.
	Remove(path string) error
	Abs(path string) (string, error)
}

// ExpandPath expands ~ to the user's home directory.
func ExpandPath(path string) string {
	if strings.HasPrefix(path, "~/") || strings.HasPrefix(path, `~\`) {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(home, path[2:])
	}
	return path
}

// IsPathWithinRoot reports whether path, once cleaned, is root or lies below it.
// The check is lexical; junctions inside root are not followed.
func IsPathWithinRoot(root, path string) bool {
	if path == "" || root == "" {
		return false
	}
	rel, err := filepath.Rel(filepath.Clean(root), filepath.Clean(path))
	if err != nil {
		return false
	}
	if rel == "." {
		return true
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}
