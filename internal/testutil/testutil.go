// Package testutil provides fixtures shared by fsblob tests.
package testutil

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/require"
)

// FakeMagic is prepended by the fake compressor script.
const FakeMagic = "LZ"

// Script bodies for FakeCompressor.
const (
	// ScriptFraming prefixes FakeMagic on encode and strips it on decode.
	ScriptFraming = `case "$1" in
e) { printf '` + FakeMagic + `'; cat "$2"; } > "$3" ;;
d) tail -c +3 "$2" > "$3" ;;
*) exit 2 ;;
esac
`

	// ScriptFailNoOutput exits with failure without writing output.
	ScriptFailNoOutput = `exit 3
`

	// ScriptFailWithOutput writes framed output and then exits with failure.
	ScriptFailWithOutput = `{ printf '` + FakeMagic + `'; cat "$2"; } > "$3"
exit 1
`
)

// FakeCompressor writes an executable /bin/sh script with body to a temp
// directory and returns its path. Tests are skipped on Windows.
func FakeCompressor(t *testing.T, body string) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("fake compressor requires /bin/sh")
	}
	path := filepath.Join(t.TempDir(), "lzari")
	require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\n"+body), 0o755)) //nolint:gosec // test executable
	return path
}

// WriteFiles creates files in dir from a map of relative path to content and
// returns the created paths keyed the same way.
func WriteFiles(t *testing.T, dir string, files map[string][]byte) map[string]string {
	t.Helper()
	paths := make(map[string]string, len(files))
	for name, content := range files {
		paths[name] = WriteFile(t, dir, name, content)
	}
	return paths
}

// WriteFile creates a single file under dir, creating parent directories.
func WriteFile(t *testing.T, dir, name string, content []byte) string {
	t.Helper()
	path := filepath.Join(dir, filepath.FromSlash(name))
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, content, 0o644))
	return path
}

// Entry builds raw archive bytes for one entry without going through a codec.
func Entry(length uint32, name string, payload []byte) []byte {
	buf := []byte{byte(length >> 24), byte(length >> 16), byte(length >> 8), byte(length)}
	field := make([]byte, 12)
	copy(field, name)
	buf = append(buf, field...)
	return append(buf, payload...)
}
