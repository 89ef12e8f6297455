package fsblob

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/meigma/fsblob/codec"
)

// ExtractStats reports what Extract wrote.
type ExtractStats struct {
	// Files is the number of files written.
	Files int

	// Bytes is the total decoded size of the files written.
	Bytes uint64
}

// Extract decodes every entry of the archive at inPath into outDir.
//
// outDir is created if missing and must be a directory if present. Entries are
// processed in on-disk order until end of data, a Sentinel header, or a header
// whose length is below HeaderSize. Each entry is written to outDir/<name>,
// replacing any existing file.
//
// An entry whose payload runs past the end of the archive aborts extraction
// with ErrTruncated; files written for earlier entries are kept and no file is
// created for the truncated one.
func Extract(ctx context.Context, inPath, outDir string, c codec.Codec, opts ...ExtractOption) (ExtractStats, error) {
	cfg := extractConfig{}
	for _, opt := range opts {
		opt(&cfg)
	}
	x := &extractor{cfg: cfg, codec: c}

	if err := requireRegularFile(inPath); err != nil {
		return ExtractStats{}, err
	}
	if err := prepareOutputDir(outDir); err != nil {
		return ExtractStats{}, err
	}

	data, err := os.ReadFile(inPath)
	if err != nil {
		return ExtractStats{}, fmt.Errorf("read archive: %w", err)
	}

	root, err := os.OpenRoot(outDir)
	if err != nil {
		return ExtractStats{}, err
	}
	defer root.Close()

	x.log().Info("extracting archive", "input", inPath, "output", outDir, "size", len(data))

	stats, err := x.extractAll(ctx, data, root)
	if err != nil {
		return stats, err
	}

	x.log().Info("archive extracted", "files", stats.Files, "bytes", stats.Bytes)
	return stats, nil
}

// extractor holds state for a single Extract call.
type extractor struct {
	cfg   extractConfig
	codec codec.Codec
}

// log returns the logger, falling back to a discard logger if nil.
func (x *extractor) log() *slog.Logger {
	if x.cfg.logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return x.cfg.logger
}

// reportProgress sends a progress event if a callback is configured.
func (x *extractor) reportProgress(name string, bytesDone uint64, filesDone int) {
	if x.cfg.progress == nil {
		return
	}
	x.cfg.progress(ProgressEvent{
		Stage:     StageExtracting,
		Name:      name,
		BytesDone: bytesDone,
		FilesDone: filesDone,
	})
}

func (x *extractor) extractAll(ctx context.Context, data []byte, root *os.Root) (ExtractStats, error) {
	var stats ExtractStats
	s := scanner{data: data}
	for {
		if err := ctx.Err(); err != nil {
			return stats, err
		}

		e, ok, err := s.next()
		if err != nil {
			return stats, err
		}
		if !ok {
			x.log().Debug("end of archive", "reason", s.term.String(), "offset", s.off)
			return stats, nil
		}

		n, err := x.extractEntry(ctx, root, e)
		if err != nil {
			return stats, err
		}
		stats.Files++
		stats.Bytes += uint64(n)
		x.reportProgress(e.header.StoredName(), uint64(s.off), stats.Files)
	}
}

// extractEntry decodes one entry and writes it under root.
func (x *extractor) extractEntry(ctx context.Context, root *os.Root, e rawEntry) (int, error) {
	name := e.header.StoredName()
	if err := validateOutputName(name); err != nil {
		return 0, err
	}

	decoded, err := x.codec.Decode(ctx, e.payload)
	if err != nil {
		return 0, fmt.Errorf("decode %q: %w", name, err)
	}

	if err := root.WriteFile(name, decoded, 0o644); err != nil {
		return 0, fmt.Errorf("write %q: %w", name, err)
	}

	x.log().Debug("extracted entry", "name", name, "offset", e.offset,
		"payload_size", len(e.payload), "size", len(decoded))
	return len(decoded), nil
}

// validateOutputName rejects stored names that would not land directly in
// the output directory.
func validateOutputName(name string) error {
	if name == "" || name == "." || name == ".." || strings.ContainsAny(name, `/\`) {
		return fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	return nil
}
