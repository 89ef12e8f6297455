// Package codec provides the compression capabilities used for archive
// payloads.
//
// A [Codec] is chosen once per run and handed to the archive builder and
// extractor, which only ever call Encode and Decode. [Exec] drives an external
// compressor executable through temporary files; [Zstd], [LZ4] and [None]
// work on in-memory buffers.
package codec

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
)

// Codec compresses and decompresses a single stored file.
type Codec interface {
	// Encode returns the compressed form of raw.
	Encode(ctx context.Context, raw []byte) ([]byte, error)

	// Decode returns the original bytes for compressed.
	Decode(ctx context.Context, compressed []byte) ([]byte, error)
}

// Codec names accepted by New.
const (
	NameExec = "exec"
	NameZstd = "zstd"
	NameLZ4  = "lz4"
	NameNone = "none"
)

// Sentinel errors for codec operations.
var (
	// ErrDecompression is returned when an in-process codec rejects its input.
	ErrDecompression = errors.New("codec: decompression failed")

	// ErrCodecFailed is returned when a strict subprocess codec exits abnormally.
	ErrCodecFailed = errors.New("codec: compressor exited with failure")

	// ErrUnknownCodec is returned by New for an unrecognized codec name.
	ErrUnknownCodec = errors.New("codec: unknown codec")
)

// Config selects and configures a codec by name.
type Config struct {
	// Name is one of NameExec, NameZstd, NameLZ4 or NameNone.
	Name string

	// Executable is the compressor path used by NameExec.
	Executable string

	// StrictExit makes NameExec fail on a non-zero exit status.
	StrictExit bool

	Logger *slog.Logger
}

// New returns the codec described by cfg.
func New(cfg Config) (Codec, error) {
	switch cfg.Name {
	case NameExec, "":
		opts := []ExecOption{ExecWithLogger(cfg.Logger)}
		if cfg.StrictExit {
			opts = append(opts, ExecWithStrictExit())
		}
		e, err := NewExec(cfg.Executable, opts...)
		if err != nil {
			return nil, err
		}
		return e, nil
	case NameZstd:
		z, err := NewZstd()
		if err != nil {
			return nil, err
		}
		return z, nil
	case NameLZ4:
		return NewLZ4(), nil
	case NameNone:
		return None{}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownCodec, cfg.Name)
	}
}
