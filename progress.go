package fsblob

// ProgressEvent reports the state of a build or extraction.
type ProgressEvent struct {
	// Stage identifies the current phase of the operation.
	Stage ProgressStage

	// Name is the stored name of the entry just processed, if any.
	Name string

	// BytesDone is the number of archive bytes produced or consumed so far.
	BytesDone uint64

	// FilesDone is the number of entries completed.
	FilesDone int

	// FilesTotal is the total number of entries.
	// Zero indicates the total is unknown, as during extraction.
	FilesTotal int
}

// ProgressStage identifies the current phase of an operation.
type ProgressStage uint8

const (
	// StageEncoding indicates files are being read and encoded into entries.
	StageEncoding ProgressStage = iota

	// StageWriting indicates the assembled archive is being written.
	StageWriting

	// StageExtracting indicates entries are being decoded and written out.
	StageExtracting
)

// String returns the string representation of the stage.
func (s ProgressStage) String() string {
	switch s {
	case StageEncoding:
		return "encoding"
	case StageWriting:
		return "writing"
	case StageExtracting:
		return "extracting"
	default:
		return "unknown"
	}
}

// ProgressFunc receives progress updates. Calls are made synchronously from
// the goroutine running the operation.
type ProgressFunc func(ProgressEvent)
