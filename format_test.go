package fsblob

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewHeaderNameField(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		input     string
		wantField string
		wantName  string
	}{
		{"short name padded", "a.txt", "a.txt\x00\x00\x00\x00\x00\x00\x00", "a.txt"},
		{"exact width has no terminator", "abcdefghijkl", "abcdefghijkl", "abcdefghijkl"},
		{"long name truncated", "abcdefghijklmnop", "abcdefghijkl", "abcdefghijkl"},
		{"utf8 bytes truncated", "ééééééé", "éééééé", "éééééé"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			h, err := NewHeader(tt.input, 0)
			require.NoError(t, err)
			assert.Equal(t, tt.wantField, string(h.Name[:]))
			assert.Equal(t, tt.wantName, h.StoredName())
		})
	}
}

func TestNewHeaderLength(t *testing.T) {
	t.Parallel()

	h, err := NewHeader("x", 0)
	require.NoError(t, err)
	assert.Equal(t, uint32(HeaderSize), h.Length)
	assert.Equal(t, int64(0), h.PayloadSize())

	h, err = NewHeader("x", 100)
	require.NoError(t, err)
	assert.Equal(t, uint32(116), h.Length)
	assert.Equal(t, int64(100), h.PayloadSize())

	maxSize := MaxPayloadSize
	h, err = NewHeader("x", int(maxSize))
	require.NoError(t, err)
	assert.Equal(t, Sentinel-1, h.Length)

	_, err = NewHeader("x", int(maxSize)+1)
	require.ErrorIs(t, err, ErrSizeOverflow)

	_, err = NewHeader("x", -1)
	require.ErrorIs(t, err, ErrSizeOverflow)
}

func TestHeaderEncoding(t *testing.T) {
	t.Parallel()

	h, err := NewHeader("fs.bin", 0x0102)
	require.NoError(t, err)

	want := []byte{
		0x00, 0x00, 0x01, 0x12,
		'f', 's', '.', 'b', 'i', 'n', 0, 0, 0, 0, 0, 0,
	}
	assert.Equal(t, want, h.AppendTo(nil))

	buf := make([]byte, HeaderSize)
	h.EncodeTo(buf)
	assert.Equal(t, want, buf)

	assert.Equal(t, h, DecodeHeader(buf))
}

func TestAppendFill(t *testing.T) {
	t.Parallel()

	assert.Equal(t, []byte{1, 2, 0xFF, 0xFF}, appendFill([]byte{1, 2}, 4))
	assert.Equal(t, []byte{1, 2, 3}, appendFill([]byte{1, 2, 3}, 2))
	assert.Equal(t, []byte{1}, appendFill([]byte{1}, 0))
}

func TestApplyReferenceQuirk(t *testing.T) {
	t.Parallel()

	h, err := NewHeader("tile1.tg~", 4)
	require.NoError(t, err)
	require.True(t, applyReferenceQuirk(&h, "tile1.tg~"))
	assert.Equal(t, "tile1.tg~\x00\x6c\x00", string(h.Name[:]))
	assert.Equal(t, "tile1.tg~", h.StoredName())

	other, err := NewHeader("tile2.tg~", 4)
	require.NoError(t, err)
	before := other
	assert.False(t, applyReferenceQuirk(&other, "tile2.tg~"))
	assert.Equal(t, before, other)
}
