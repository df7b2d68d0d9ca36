// Package junction creates, deletes, detects and resolves NTFS directory
// junctions.
//
// Every Manager call re-queries the filesystem and holds no state between
// calls. Nothing is locked: another process may change a path between the
// existence check and the device-control request, and the request then fails
// with whatever the kernel reports. Junctions are always created with an
// empty print name, so tools that display the print name show nothing.
package junction

// State is the kind of filesystem entry found at a link path.
type State int

const (
	// StateAbsent means nothing exists at the path.
	StateAbsent State = iota
	// StateFile means a non-directory entry exists at the path.
	StateFile
	// StatePlainDirectory means a directory that is not a mount point,
	// including directories carrying another reparse tag.
	StatePlainDirectory
	// StateJunction means a directory with a mount-point reparse point.
	StateJunction
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case StateAbsent:
		return "absent"
	case StateFile:
		return "file"
	case StatePlainDirectory:
		return "directory"
	case StateJunction:
		return "junction"
	default:
		return "unknown"
	}
}

// MarshalText encodes the state as its name.
func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Link describes what was found at a path.
type Link struct {
	Path   string `json:"path" yaml:"path"`
	State  State  `json:"state" yaml:"state"`
	Target string `json:"target,omitempty" yaml:"target,omitempty"`
}

// IsJunction reports whether the link is a junction.
func (l Link) IsJunction() bool {
	return l.State == StateJunction
}
