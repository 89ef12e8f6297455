package codec

import (
	"bytes"
	"context"
)

// None stores payloads uncompressed.
type None struct{}

// Encode implements Codec.
func (None) Encode(ctx context.Context, raw []byte) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return bytes.Clone(raw), nil
}

// Decode implements Codec.
func (None) Decode(ctx context.Context, compressed []byte) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return bytes.Clone(compressed), nil
}
