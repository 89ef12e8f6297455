package fsblob

import (
	"bytes"
	"encoding/binary"
	"fmt"
)

const (
	// HeaderSize is the size of an entry header and the constant added to
	// the payload size in the length field.
	HeaderSize = 0x10

	// NameSize is the width of the name field.
	NameSize = 12

	// Sentinel is the length value that marks the end of the archive.
	Sentinel uint32 = 0xFFFFFFFF

	// FillByte pads an archive up to its minimum size.
	FillByte byte = 0xFF

	// MaxPayloadSize is the largest payload whose length field stays below Sentinel.
	MaxPayloadSize = int64(Sentinel) - 1 - HeaderSize
)

// Header is the fixed-size record preceding each payload.
type Header struct {
	// Length is the payload size plus HeaderSize.
	Length uint32

	// Name is the stored name, NUL-padded on the right. A name of exactly
	// NameSize bytes or longer carries no terminator.
	Name [NameSize]byte
}

// NewHeader returns the header for a payload of size bytes stored under name.
// Names longer than NameSize are truncated to their first NameSize bytes.
func NewHeader(name string, size int) (Header, error) {
	if size < 0 || int64(size) > MaxPayloadSize {
		return Header{}, fmt.Errorf("%w: payload of %d bytes for %q", ErrSizeOverflow, size, name)
	}
	h := Header{Length: uint32(size) + HeaderSize} //nolint:gosec // bounded by MaxPayloadSize
	copy(h.Name[:], name)
	return h, nil
}

// PayloadSize returns the number of payload bytes following the header.
// It is only meaningful when Length >= HeaderSize.
func (h Header) PayloadSize() int64 {
	return int64(h.Length) - HeaderSize
}

// StoredName returns the name field up to its first NUL, or all NameSize
// bytes when no NUL is present. A NUL-free 12-byte name is ambiguous with a
// longer name that was truncated on build.
func (h Header) StoredName() string {
	if i := bytes.IndexByte(h.Name[:], 0); i >= 0 {
		return string(h.Name[:i])
	}
	return string(h.Name[:])
}

// EncodeTo writes the header to buf, which must be at least HeaderSize bytes.
func (h Header) EncodeTo(buf []byte) {
	binary.BigEndian.PutUint32(buf[0:4], h.Length)
	copy(buf[4:HeaderSize], h.Name[:])
}

// AppendTo appends the encoded header to buf.
func (h Header) AppendTo(buf []byte) []byte {
	buf = binary.BigEndian.AppendUint32(buf, h.Length)
	return append(buf, h.Name[:]...)
}

// DecodeHeader parses a header from the first HeaderSize bytes of buf.
// The caller guarantees len(buf) >= HeaderSize.
func DecodeHeader(buf []byte) Header {
	var h Header
	h.Length = binary.BigEndian.Uint32(buf[0:4])
	copy(h.Name[:], buf[4:HeaderSize])
	return h
}

// appendFill pads buf with FillByte until it is at least minSize bytes long.
func appendFill(buf []byte, minSize int) []byte {
	if len(buf) >= minSize {
		return buf
	}
	return append(buf, bytes.Repeat([]byte{FillByte}, minSize-len(buf))...)
}
