package fsblob

import "errors"

// Sentinel errors for archive operations.
var (
	// ErrNotRegularFile is returned when an input path is missing or is not a regular file.
	ErrNotRegularFile = errors.New("fsblob: not a regular file")

	// ErrOutputNotFile is returned when the build output path exists and is not a regular file.
	ErrOutputNotFile = errors.New("fsblob: output exists and is not a file")

	// ErrOutputNotDir is returned when the extract output path exists and is not a directory.
	ErrOutputNotDir = errors.New("fsblob: output exists and is not a directory")

	// ErrTruncated is returned when an entry declares more payload than the archive holds.
	ErrTruncated = errors.New("fsblob: truncated entry")

	// ErrSizeOverflow is returned when a payload is too large for the length field.
	ErrSizeOverflow = errors.New("fsblob: size overflow")

	// ErrInvalidName is returned when a stored name cannot be used as an output file name.
	ErrInvalidName = errors.New("fsblob: invalid entry name")
)
