// Package manifest loads YAML build manifests for the fsblob command.
package manifest

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// ErrInvalidSize is returned when a size literal cannot be parsed.
var ErrInvalidSize = errors.New("manifest: invalid size")

// Manifest describes one archive build.
//
//	output: build/fs.bin
//	pad: 0x20000
//	files:
//	  - data/tile1.tg~
//	  - 'data/a.txt@"my file.bin"'
type Manifest struct {
	Output string   `yaml:"output"`
	Pad    string   `yaml:"pad"`
	Files  []string `yaml:"files"`
}

// Load reads the manifest at path. Relative output and file paths are
// resolved against the manifest's directory.
func Load(path string) (*Manifest, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var m Manifest
	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	if err := dec.Decode(&m); err != nil {
		return nil, fmt.Errorf("decode manifest %s: %w", path, err)
	}

	baseDir := filepath.Dir(path)
	if m.Output != "" {
		m.Output = resolvePath(baseDir, m.Output)
	}
	for i, ref := range m.Files {
		source, name, combined := strings.Cut(ref, "@")
		source = resolvePath(baseDir, source)
		if combined {
			source += "@" + name
		}
		m.Files[i] = source
	}
	if _, err := m.PadSize(); err != nil {
		return nil, err
	}
	return &m, nil
}

// PadSize returns the parsed pad size, or 0 when none is set.
func (m *Manifest) PadSize() (int, error) {
	if strings.TrimSpace(m.Pad) == "" {
		return 0, nil
	}
	return ParseSize(m.Pad)
}

// ParseSize parses a decimal or 0x-prefixed hexadecimal size.
func ParseSize(s string) (int, error) {
	s = strings.TrimSpace(s)
	var (
		v   uint64
		err error
	)
	if hex, ok := strings.CutPrefix(strings.ToLower(s), "0x"); ok {
		v, err = strconv.ParseUint(hex, 16, strconv.IntSize-1)
	} else {
		v, err = strconv.ParseUint(s, 10, strconv.IntSize-1)
	}
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidSize, s)
	}
	return int(v), nil
}

func resolvePath(baseDir, p string) string {
	p = strings.TrimSpace(p)
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(baseDir, p)
}
