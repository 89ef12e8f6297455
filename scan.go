package fsblob

import (
	"fmt"
	"os"

	"github.com/opencontainers/go-digest"
)

// Termination records why an archive scan stopped.
type Termination uint8

const (
	// TerminatedEnd means fewer than HeaderSize bytes were left.
	TerminatedEnd Termination = iota

	// TerminatedSentinel means a header carried the Sentinel length.
	TerminatedSentinel

	// TerminatedShortLength means a header declared a length below HeaderSize.
	TerminatedShortLength
)

// String returns a human-readable name for the termination reason.
func (t Termination) String() string {
	switch t {
	case TerminatedEnd:
		return "end"
	case TerminatedSentinel:
		return "sentinel"
	case TerminatedShortLength:
		return "short-length"
	default:
		return "unknown"
	}
}

// EntryInfo describes one entry found in an archive.
type EntryInfo struct {
	// Name is the stored name as it would be extracted.
	Name string

	// RawName is the name field exactly as stored.
	RawName [NameSize]byte

	// Offset is the position of the entry header in the archive.
	Offset int64

	// Length is the raw length field (payload size plus HeaderSize).
	Length uint32

	// PayloadSize is the number of encoded payload bytes.
	PayloadSize int64

	// Digest is the SHA-256 digest of the encoded payload.
	Digest digest.Digest
}

// Listing is the result of scanning an archive without decoding payloads.
type Listing struct {
	// Entries are in on-disk order.
	Entries []EntryInfo

	// End is the offset just past the last entry.
	End int64

	// Size is the total archive size.
	Size int64

	// Termination is why the scan stopped.
	Termination Termination
}

// TrailingBytes returns the number of bytes after the last entry, including
// any sentinel header and fill.
func (l *Listing) TrailingBytes() int64 {
	return l.Size - l.End
}

// Inspect reads the archive at path and lists its entries.
func Inspect(path string) (*Listing, error) {
	if err := requireRegularFile(path); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read archive: %w", err)
	}
	return Scan(data)
}

// Scan lists the entries of an in-memory archive.
func Scan(data []byte) (*Listing, error) {
	l := &Listing{Size: int64(len(data))}
	s := scanner{data: data}
	for {
		e, ok, err := s.next()
		if err != nil {
			return nil, err
		}
		if !ok {
			break
		}
		l.Entries = append(l.Entries, EntryInfo{
			Name:        e.header.StoredName(),
			RawName:     e.header.Name,
			Offset:      e.offset,
			Length:      e.header.Length,
			PayloadSize: e.header.PayloadSize(),
			Digest:      digest.FromBytes(e.payload),
		})
	}
	l.End = int64(s.off)
	l.Termination = s.term
	return l, nil
}

// rawEntry is an entry header with its still-encoded payload.
type rawEntry struct {
	header  Header
	payload []byte
	offset  int64
}

// scanner walks the entries of an archive buffer in order.
type scanner struct {
	data []byte
	off  int
	term Termination
	done bool
}

// next returns the next entry. ok is false once the scan has terminated;
// the reason is left in s.term. A payload that runs past the end of data is
// an ErrTruncated error.
func (s *scanner) next() (e rawEntry, ok bool, err error) {
	if s.done {
		return rawEntry{}, false, nil
	}
	if len(s.data)-s.off < HeaderSize {
		s.stop(TerminatedEnd)
		return rawEntry{}, false, nil
	}

	h := DecodeHeader(s.data[s.off:])
	switch {
	case h.Length == Sentinel:
		s.stop(TerminatedSentinel)
		return rawEntry{}, false, nil
	case h.Length < HeaderSize:
		s.stop(TerminatedShortLength)
		return rawEntry{}, false, nil
	}

	start := s.off + HeaderSize
	size := h.PayloadSize()
	if size > int64(len(s.data)-start) {
		s.done = true
		return rawEntry{}, false, fmt.Errorf("%w: %q at offset %d declares %d payload bytes, %d remain",
			ErrTruncated, h.StoredName(), s.off, size, len(s.data)-start)
	}

	e = rawEntry{
		header:  h,
		payload: s.data[start : start+int(size)],
		offset:  int64(s.off),
	}
	s.off = start + int(size)
	return e, true, nil
}

func (s *scanner) stop(t Termination) {
	s.term = t
	s.done = true
}
