package fsblob

import "log/slog"

// buildConfig holds configuration for archive building.
type buildConfig struct {
	minSize         int
	referenceQuirks bool
	logger          *slog.Logger
	progress        ProgressFunc
}

// BuildOption configures archive building.
type BuildOption func(*buildConfig)

// BuildWithMinSize pads the archive with FillByte up to n bytes.
// Archives already at least n bytes long are left as is. Zero disables padding.
func BuildWithMinSize(n int) BuildOption {
	return func(cfg *buildConfig) {
		cfg.minSize = n
	}
}

// BuildWithReferenceQuirks reproduces the reference tool's byte-exact output,
// including its non-standard name field for tile1.tg~. Enable it when the
// archive must match one produced with the external LZARI compressor.
func BuildWithReferenceQuirks(enabled bool) BuildOption {
	return func(cfg *buildConfig) {
		cfg.referenceQuirks = enabled
	}
}

// BuildWithLogger sets the logger for build progress. A nil logger discards output.
func BuildWithLogger(logger *slog.Logger) BuildOption {
	return func(cfg *buildConfig) {
		cfg.logger = logger
	}
}

// BuildWithProgress sets a callback invoked after each entry is encoded and
// once before the archive is written.
func BuildWithProgress(fn ProgressFunc) BuildOption {
	return func(cfg *buildConfig) {
		cfg.progress = fn
	}
}
