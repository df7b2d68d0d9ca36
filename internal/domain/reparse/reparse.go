// Package reparse encodes and decodes the mount-point REPARSE_DATA_BUFFER
// exchanged with the filesystem driver when setting, reading, or clearing a
// directory junction.
//
// The layout is fixed and little-endian:
//
//	offset  size  field
//	0       4     ReparseTag
//	4       2     ReparseDataLength
//	6       2     Reserved
//	8       2     SubstituteNameOffset
//	10      2     SubstituteNameLength
//	12      2     PrintNameOffset
//	14      2     PrintNameLength
//	16      16368 PathBuffer
//
// Encoding and decoding are pure functions over byte slices and do not depend
// on the host platform.
package reparse

import "errors"

const (
	// TagMountPoint is IO_REPARSE_TAG_MOUNT_POINT, the only tag produced or accepted.
	TagMountPoint uint32 = 0xA0000003
	// TagSymlink is IO_REPARSE_TAG_SYMLINK. Buffers carrying it are not junctions.
	TagSymlink uint32 = 0xA000000C

	// NonInterpretedPrefix marks a substitute name the object manager must not reparse.
	NonInterpretedPrefix = `\??\`

	// HeaderSize is the size of the tag, data length and reserved fields.
	HeaderSize = 8
	// MountPointHeaderSize adds the four name offset/length fields.
	MountPointHeaderSize = 16
	// PathBufferCapacity is the fixed capacity of the trailing name buffer.
	PathBufferCapacity = 16368
	// BufferSize is MAXIMUM_REPARSE_DATA_BUFFER_SIZE.
	BufferSize = MountPointHeaderSize + PathBufferCapacity

	// nameTerminators is room for the NUL after the substitute name and the
	// NUL that makes up the empty print name.
	nameTerminators = 4
	// dataLengthOverhead is the four offset/length fields plus the terminators.
	dataLengthOverhead = 8 + nameTerminators
	// setSizeOverhead is the header plus dataLengthOverhead.
	setSizeOverhead = HeaderSize + dataLengthOverhead
)

// Codec errors.
var (
	ErrEmptyTarget   = errors.New("junction target path is empty")
	ErrInvalidTarget = errors.New("junction target path contains a NUL character or invalid UTF-8")
	ErrNameTooLong   = errors.New("junction target path does not fit in the reparse buffer")
	ErrMalformed     = errors.New("malformed reparse data buffer")
)
