package codec

import (
	"context"
	"fmt"

	"github.com/klauspost/compress/zstd"
)

// Zstd compresses payloads in-process with zstd.
type Zstd struct {
	enc *zstd.Encoder
	dec *zstd.Decoder

	level            zstd.EncoderLevel
	maxDecoderMemory uint64
}

// ZstdOption configures a Zstd codec.
type ZstdOption func(*Zstd)

// ZstdWithLevel sets the encoder level (default: zstd.SpeedDefault).
func ZstdWithLevel(level zstd.EncoderLevel) ZstdOption {
	return func(z *Zstd) {
		z.level = level
	}
}

// ZstdWithMaxDecoderMemory limits the memory the decoder may allocate for a
// single payload. Set limit to 0 to disable the limit.
func ZstdWithMaxDecoderMemory(limit uint64) ZstdOption {
	return func(z *Zstd) {
		z.maxDecoderMemory = limit
	}
}

// NewZstd creates a zstd codec. Call Close to release the decoder.
func NewZstd(opts ...ZstdOption) (*Zstd, error) {
	z := &Zstd{level: zstd.SpeedDefault}
	for _, opt := range opts {
		opt(z)
	}

	enc, err := zstd.NewWriter(nil,
		zstd.WithEncoderLevel(z.level),
		zstd.WithEncoderConcurrency(1),
		zstd.WithLowerEncoderMem(true),
	)
	if err != nil {
		return nil, fmt.Errorf("create zstd encoder: %w", err)
	}

	dopts := []zstd.DOption{zstd.WithDecoderConcurrency(1)}
	if z.maxDecoderMemory != 0 {
		dopts = append(dopts, zstd.WithDecoderMaxMemory(z.maxDecoderMemory))
	}
	dec, err := zstd.NewReader(nil, dopts...)
	if err != nil {
		enc.Close()
		return nil, fmt.Errorf("create zstd decoder: %w", err)
	}

	z.enc = enc
	z.dec = dec
	return z, nil
}

// Encode implements Codec.
func (z *Zstd) Encode(ctx context.Context, raw []byte) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return z.enc.EncodeAll(raw, nil), nil
}

// Decode implements Codec.
func (z *Zstd) Decode(ctx context.Context, compressed []byte) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	out, err := z.dec.DecodeAll(compressed, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDecompression, err)
	}
	return out, nil
}

// Close releases the encoder and decoder.
func (z *Zstd) Close() error {
	z.dec.Close()
	return z.enc.Close()
}
