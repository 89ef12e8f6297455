package codec

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"github.com/pierrec/lz4/v4"
)

// LZ4 compresses payloads in-process using the LZ4 frame format.
type LZ4 struct {
	level lz4.CompressionLevel
}

// NewLZ4 returns an LZ4 codec using the fast compression level.
func NewLZ4() *LZ4 {
	return &LZ4{level: lz4.Fast}
}

// Encode implements Codec.
func (l *LZ4) Encode(ctx context.Context, raw []byte) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	zw := lz4.NewWriter(&buf)
	if err := zw.Apply(lz4.CompressionLevelOption(l.level)); err != nil {
		return nil, fmt.Errorf("configure lz4 writer: %w", err)
	}
	if _, err := zw.Write(raw); err != nil {
		return nil, fmt.Errorf("lz4 compress: %w", err)
	}
	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("close lz4 writer: %w", err)
	}
	return buf.Bytes(), nil
}

// Decode implements Codec.
func (l *LZ4) Decode(ctx context.Context, compressed []byte) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	zr := lz4.NewReader(bytes.NewReader(compressed))
	out, err := io.ReadAll(zr)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDecompression, err)
	}
	return out, nil
}
