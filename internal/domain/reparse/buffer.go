package reparse

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/NVIDIA/cstruct"
	"golang.org/x/text/encoding/unicode"
)

var utf16le = unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM)

// Header is the fixed part of a mount-point reparse buffer. Field order is
// the wire order; cstruct packs it without padding.
type Header struct {
	Tag                  uint32
	DataLength           uint16
	Reserved             uint16
	SubstituteNameOffset uint16
	SubstituteNameLength uint16
	PrintNameOffset      uint16
	PrintNameLength      uint16
}

// genericHeader is the tag-only prefix shared by every reparse buffer.
type genericHeader struct {
	Tag        uint32
	DataLength uint16
	Reserved   uint16
}

// Buffer is an encoded mount-point reparse buffer.
type Buffer struct {
	header Header
	raw    []byte
}

// Header returns the encoded header fields.
func (b *Buffer) Header() Header {
	return b.header
}

// Bytes returns the full fixed-capacity buffer.
func (b *Buffer) Bytes() []byte {
	return b.raw
}

// Size is the byte count handed to the driver when setting the reparse point.
func (b *Buffer) Size() int {
	return int(b.header.SubstituteNameLength) + setSizeOverhead
}

// Payload returns the first Size bytes of the buffer.
func (b *Buffer) Payload() []byte {
	return b.raw[:b.Size()]
}

// Encode lays out a mount-point buffer whose substitute name is target with
// the non-interpreted prefix. The print name is left empty. target must be
// valid UTF-8 so that Decode returns it unchanged.
func Encode(target string) (*Buffer, error) {
	if target == "" {
		return nil, ErrEmptyTarget
	}
	if strings.ContainsRune(target, 0) || !utf8.ValidString(target) {
		return nil, ErrInvalidTarget
	}

	name, err := utf16le.NewEncoder().Bytes([]byte(NonInterpretedPrefix + target))
	if err != nil {
		return nil, fmt.Errorf("failed to encode junction target %q: %w", target, err)
	}
	if len(name)+nameTerminators > PathBufferCapacity {
		return nil, fmt.Errorf("%w: %d bytes, capacity %d", ErrNameTooLong, len(name), PathBufferCapacity-nameTerminators)
	}

	h := Header{
		Tag:                  TagMountPoint,
		DataLength:           uint16(len(name) + dataLengthOverhead),
		SubstituteNameOffset: 0,
		SubstituteNameLength: uint16(len(name)),
		PrintNameOffset:      uint16(len(name) + 2),
		PrintNameLength:      0,
	}
	packed, err := cstruct.Pack(h, cstruct.LittleEndian)
	if err != nil {
		return nil, fmt.Errorf("failed to pack reparse header: %w", err)
	}

	raw := make([]byte, BufferSize)
	copy(raw, packed)
	copy(raw[MountPointHeaderSize:], name)

	return &Buffer{header: h, raw: raw}, nil
}

// EmptyHeader returns the header-only buffer used to clear a mount point.
func EmptyHeader() []byte {
	packed, err := cstruct.Pack(genericHeader{Tag: TagMountPoint}, cstruct.LittleEndian)
	if err != nil {
		// genericHeader holds only fixed-size integers.
		panic(err)
	}
	return packed
}

// ParseHeader reads the fixed mount-point header from raw.
func ParseHeader(raw []byte) (Header, error) {
	var h Header
	if len(raw) < MountPointHeaderSize {
		return h, fmt.Errorf("%w: %d bytes is shorter than the header", ErrMalformed, len(raw))
	}
	if _, err := cstruct.Unpack(raw[:MountPointHeaderSize], &h, cstruct.LittleEndian); err != nil {
		return h, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	return h, nil
}

// Tag returns the reparse tag of raw, or false when raw is too short to carry one.
func Tag(raw []byte) (uint32, bool) {
	var g genericHeader
	if len(raw) < HeaderSize {
		return 0, false
	}
	if _, err := cstruct.Unpack(raw[:HeaderSize], &g, cstruct.LittleEndian); err != nil {
		return 0, false
	}
	return g.Tag, true
}

// Decode returns the substitute name of a mount-point buffer with the
// non-interpreted prefix stripped. ok is false when raw is not a mount point.
func Decode(raw []byte) (target string, ok bool, err error) {
	tag, ok := Tag(raw)
	if !ok || tag != TagMountPoint {
		return "", false, nil
	}

	h, err := ParseHeader(raw)
	if err != nil {
		return "", false, err
	}

	start := MountPointHeaderSize + int(h.SubstituteNameOffset)
	end := start + int(h.SubstituteNameLength)
	if end > len(raw) || h.SubstituteNameLength%2 != 0 {
		return "", false, fmt.Errorf("%w: substitute name [%d,%d) exceeds %d bytes", ErrMalformed, start, end, len(raw))
	}

	name, err := utf16le.NewDecoder().Bytes(raw[start:end])
	if err != nil {
		return "", false, fmt.Errorf("%w: %v", ErrMalformed, err)
	}

	return strings.TrimPrefix(string(name), NonInterpretedPrefix), true, nil
}
