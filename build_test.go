package fsblob

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meigma/fsblob/codec"
	"github.com/meigma/fsblob/internal/testutil"
)

// failingCodec returns err from every call.
type failingCodec struct {
	err error
}

func (c failingCodec) Encode(context.Context, []byte) ([]byte, error) { return nil, c.err }
func (c failingCodec) Decode(context.Context, []byte) ([]byte, error) { return nil, c.err }

func TestBuildLayout(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	paths := testutil.WriteFiles(t, dir, map[string][]byte{
		"a.txt":    []byte("alpha"),
		"sub/b.gz": []byte("bravo!"),
	})
	out := filepath.Join(dir, "fs.bin")

	err := Build(context.Background(), []string{paths["a.txt"], paths["sub/b.gz"]}, out, codec.None{})
	require.NoError(t, err)

	var want []byte
	want = append(want, testutil.Entry(HeaderSize+5, "a.txt", []byte("alpha"))...)
	want = append(want, testutil.Entry(HeaderSize+6, "b.gz", []byte("bravo!"))...)

	got, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestBuildPreservesOrder(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	paths := testutil.WriteFiles(t, dir, map[string][]byte{
		"z": []byte("1"),
		"a": []byte("2"),
		"m": []byte("3"),
	})
	out := filepath.Join(dir, "fs.bin")

	require.NoError(t, Build(context.Background(), []string{paths["z"], paths["a"], paths["m"]}, out, codec.None{}))

	l, err := Inspect(out)
	require.NoError(t, err)
	require.Len(t, l.Entries, 3)
	assert.Equal(t, "z", l.Entries[0].Name)
	assert.Equal(t, "a", l.Entries[1].Name)
	assert.Equal(t, "m", l.Entries[2].Name)
}

func TestBuildPadding(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	src := testutil.WriteFile(t, dir, "a.txt", []byte("alpha"))
	natural := HeaderSize + 5

	t.Run("pads to min size", func(t *testing.T) {
		t.Parallel()
		out := filepath.Join(t.TempDir(), "fs.bin")
		require.NoError(t, Build(context.Background(), []string{src}, out, codec.None{}, BuildWithMinSize(64)))

		got, err := os.ReadFile(out)
		require.NoError(t, err)
		require.Len(t, got, 64)
		assert.Equal(t, bytes.Repeat([]byte{FillByte}, 64-natural), got[natural:])
	})

	t.Run("min size smaller than content", func(t *testing.T) {
		t.Parallel()
		out := filepath.Join(t.TempDir(), "fs.bin")
		require.NoError(t, Build(context.Background(), []string{src}, out, codec.None{}, BuildWithMinSize(4)))

		got, err := os.ReadFile(out)
		require.NoError(t, err)
		assert.Len(t, got, natural)
	})

	t.Run("padded archive extracts cleanly", func(t *testing.T) {
		t.Parallel()
		out := filepath.Join(t.TempDir(), "fs.bin")
		require.NoError(t, Build(context.Background(), []string{src}, out, codec.None{}, BuildWithMinSize(0x100)))

		l, err := Inspect(out)
		require.NoError(t, err)
		require.Len(t, l.Entries, 1)
		assert.Equal(t, TerminatedSentinel, l.Termination)
		assert.Equal(t, int64(0x100-natural), l.TrailingBytes())
	})
}

func TestBuildNames(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	src := testutil.WriteFile(t, dir, filepath.Join("data", "a.txt"), []byte("x"))

	tests := []struct {
		name      string
		ref       string
		wantField string
	}{
		{"base name", src, "a.txt\x00\x00\x00\x00\x00\x00\x00"},
		{"escaped display name", src + "@my file.bin", "my file.bin\x00"},
		{"quoted display name", src + `@"q\"x"`, "q\"x\x00\x00\x00\x00\x00\x00\x00\x00\x00"},
		{"long display name truncated", src + "@abcdefghijklmnop", "abcdefghijkl"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			out := filepath.Join(t.TempDir(), "fs.bin")
			require.NoError(t, Build(context.Background(), []string{tt.ref}, out, codec.None{}))

			got, err := os.ReadFile(out)
			require.NoError(t, err)
			require.GreaterOrEqual(t, len(got), HeaderSize)
			assert.Equal(t, tt.wantField, string(got[4:HeaderSize]))
		})
	}
}

func TestBuildReferenceQuirk(t *testing.T) {
	exe := testutil.FakeCompressor(t, testutil.ScriptFraming)
	c, err := codec.NewExec(exe)
	require.NoError(t, err)

	dir := t.TempDir()
	tile := testutil.WriteFile(t, dir, "tile1.tg~", []byte("tiles"))
	other := testutil.WriteFile(t, dir, "tile2.tg~", []byte("tiles"))

	out := filepath.Join(dir, "quirk.bin")
	require.NoError(t, Build(context.Background(), []string{tile, other}, out, c, BuildWithReferenceQuirks(true)))

	got, err := os.ReadFile(out)
	require.NoError(t, err)

	payload := testutil.FakeMagic + "tiles"
	entryLen := HeaderSize + len(payload)
	require.Len(t, got, 2*entryLen)

	first := got[:entryLen]
	assert.Equal(t, []byte{0x00, 0x00, 0x00, byte(entryLen)}, first[:4])
	assert.Equal(t, "tile1.tg~\x00\x6c\x00", string(first[4:HeaderSize]))
	assert.Equal(t, byte(0x6C), first[4+10])
	assert.Equal(t, byte(0x00), first[4+11])
	assert.Equal(t, payload, string(first[HeaderSize:]))

	second := got[entryLen:]
	assert.Equal(t, "tile2.tg~\x00\x00\x00", string(second[4:HeaderSize]))

	// The patched name still extracts under its real name.
	outDir := filepath.Join(dir, "fs")
	_, err = Extract(context.Background(), out, outDir, c)
	require.NoError(t, err)
	content, err := os.ReadFile(filepath.Join(outDir, "tile1.tg~"))
	require.NoError(t, err)
	assert.Equal(t, "tiles", string(content))
}

func TestBuildWithoutReferenceQuirk(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	tile := testutil.WriteFile(t, dir, "tile1.tg~", []byte("tiles"))
	out := filepath.Join(dir, "plain.bin")
	require.NoError(t, Build(context.Background(), []string{tile}, out, codec.None{}))

	got, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, "tile1.tg~\x00\x00\x00", string(got[4:HeaderSize]))
}

func TestBuildPreconditions(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	src := testutil.WriteFile(t, dir, "a.txt", []byte("alpha"))
	require.NoError(t, os.Mkdir(filepath.Join(dir, "adir"), 0o755))

	t.Run("missing source", func(t *testing.T) {
		t.Parallel()
		out := filepath.Join(t.TempDir(), "fs.bin")
		err := Build(context.Background(), []string{src, filepath.Join(dir, "missing")}, out, codec.None{})
		require.ErrorIs(t, err, ErrNotRegularFile)
		assert.NoFileExists(t, out)
	})

	t.Run("source is directory", func(t *testing.T) {
		t.Parallel()
		out := filepath.Join(t.TempDir(), "fs.bin")
		err := Build(context.Background(), []string{filepath.Join(dir, "adir")}, out, codec.None{})
		require.ErrorIs(t, err, ErrNotRegularFile)
		assert.NoFileExists(t, out)
	})

	t.Run("output is directory", func(t *testing.T) {
		t.Parallel()
		out := t.TempDir()
		err := Build(context.Background(), []string{src}, out, codec.None{})
		require.ErrorIs(t, err, ErrOutputNotFile)
	})

	t.Run("bad reference", func(t *testing.T) {
		t.Parallel()
		out := filepath.Join(t.TempDir(), "fs.bin")
		err := Build(context.Background(), []string{src + `@"open`}, out, codec.None{})
		require.Error(t, err)
		assert.NoFileExists(t, out)
	})

	t.Run("creates parent directory", func(t *testing.T) {
		t.Parallel()
		out := filepath.Join(t.TempDir(), "nested", "deeper", "fs.bin")
		require.NoError(t, Build(context.Background(), []string{src}, out, codec.None{}))
		assert.FileExists(t, out)
	})

	t.Run("replaces existing output", func(t *testing.T) {
		t.Parallel()
		out := filepath.Join(t.TempDir(), "fs.bin")
		require.NoError(t, os.WriteFile(out, bytes.Repeat([]byte("old"), 100), 0o644))
		require.NoError(t, Build(context.Background(), []string{src}, out, codec.None{}))

		got, err := os.ReadFile(out)
		require.NoError(t, err)
		assert.Len(t, got, HeaderSize+5)
	})
}

func TestBuildCodecFailureLeavesOutputUntouched(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	src := testutil.WriteFile(t, dir, "a.txt", []byte("alpha"))
	out := filepath.Join(dir, "fs.bin")
	require.NoError(t, os.WriteFile(out, []byte("previous"), 0o644))

	boom := errors.New("boom")
	err := Build(context.Background(), []string{src}, out, failingCodec{err: boom})
	require.ErrorIs(t, err, boom)

	got, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, "previous", string(got))

	// No stray temp files next to the output.
	left, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, left, 2)
}

func TestBuildCanceled(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	src := testutil.WriteFile(t, dir, "a.txt", []byte("alpha"))
	out := filepath.Join(dir, "fs.bin")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := Build(ctx, []string{src}, out, codec.None{})
	require.ErrorIs(t, err, context.Canceled)
	assert.NoFileExists(t, out)
}
