package fsblob

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/meigma/fsblob/codec"
	"github.com/meigma/fsblob/internal/refname"
)

// Build packs the files named by refs into a new archive at outPath.
//
// Each reference is a path, stored under its base name, or "path@name" where
// name may be shell-quoted. Entries are written in reference order. Names
// longer than NameSize bytes are truncated.
//
// All references are resolved and every source is checked to be a regular
// file before anything is written. An existing outPath must be a regular file
// and is replaced; missing parent directories are created. The archive is
// assembled in memory and written once, so on error outPath is left untouched.
func Build(ctx context.Context, refs []string, outPath string, c codec.Codec, opts ...BuildOption) error {
	cfg := buildConfig{}
	for _, opt := range opts {
		opt(&cfg)
	}
	b := &builder{cfg: cfg, codec: c}

	resolved, err := refname.ResolveAll(refs)
	if err != nil {
		return err
	}
	for _, r := range resolved {
		if err := requireRegularFile(r.Source); err != nil {
			return err
		}
	}
	if err := prepareOutputFile(outPath); err != nil {
		return err
	}

	b.log().Info("building archive", "output", outPath, "files", len(resolved), "min_size", cfg.minSize)

	data, err := b.assemble(ctx, resolved)
	if err != nil {
		return err
	}

	b.reportProgress(StageWriting, "", uint64(len(data)), len(resolved), len(resolved))

	if err := writeFileAtomic(outPath, data); err != nil {
		return fmt.Errorf("write archive: %w", err)
	}

	b.log().Info("archive written", "output", outPath, "size", len(data))
	return nil
}

// builder holds state for a single Build call.
type builder struct {
	cfg   buildConfig
	codec codec.Codec
}

// log returns the logger, falling back to a discard logger if nil.
func (b *builder) log() *slog.Logger {
	if b.cfg.logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return b.cfg.logger
}

// reportProgress sends a progress event if a callback is configured.
func (b *builder) reportProgress(stage ProgressStage, name string, bytesDone uint64, filesDone, filesTotal int) {
	if b.cfg.progress == nil {
		return
	}
	b.cfg.progress(ProgressEvent{
		Stage:      stage,
		Name:       name,
		BytesDone:  bytesDone,
		FilesDone:  filesDone,
		FilesTotal: filesTotal,
	})
}

// assemble encodes every source and returns the complete archive bytes.
func (b *builder) assemble(ctx context.Context, refs []refname.Ref) ([]byte, error) {
	var out []byte
	for i, r := range refs {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		var err error
		out, err = b.appendEntry(ctx, out, r)
		if err != nil {
			return nil, err
		}
		b.reportProgress(StageEncoding, r.Name, uint64(len(out)), i+1, len(refs))
	}

	contentSize := len(out)
	out = appendFill(out, b.cfg.minSize)
	if len(out) > contentSize {
		b.log().Debug("padded archive", "content_size", contentSize, "fill", len(out)-contentSize)
	}
	return out, nil
}

// appendEntry reads, encodes and appends a single file to buf.
func (b *builder) appendEntry(ctx context.Context, buf []byte, r refname.Ref) ([]byte, error) {
	raw, err := os.ReadFile(r.Source)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", r.Source, err)
	}

	encoded, err := b.codec.Encode(ctx, raw)
	if err != nil {
		return nil, fmt.Errorf("encode %s: %w", r.Source, err)
	}

	h, err := NewHeader(r.Name, len(encoded))
	if err != nil {
		return nil, err
	}
	if len(r.Name) > NameSize {
		b.log().Warn("stored name truncated", "name", r.Name, "stored", h.StoredName())
	}
	if b.cfg.referenceQuirks && applyReferenceQuirk(&h, r.Name) {
		b.log().Debug("applied reference name quirk", "name", r.Name)
	}

	b.log().Debug("added entry", "source", r.Source, "name", r.Name,
		"offset", len(buf), "original_size", len(raw), "payload_size", len(encoded))

	buf = h.AppendTo(buf)
	return append(buf, encoded...), nil
}
