// Package refname maps user-supplied file references to the pair of source
// path and stored archive name.
//
// A reference is either a plain path, stored under its base name, or
// "path@name" where name may use shell-style quoting so it can carry spaces,
// '@' or other characters that are awkward on a command line.
package refname

import (
	"errors"
	"path/filepath"
	"strings"
)

// Sentinel errors for reference resolution.
var (
	// ErrInvalidEscape is returned when a display name is not validly quoted.
	ErrInvalidEscape = errors.New("refname: invalid escape")

	// ErrEmptyName is returned when a reference yields an empty stored name.
	ErrEmptyName = errors.New("refname: empty stored name")

	// ErrEmptyPath is returned when a reference has no source path.
	ErrEmptyPath = errors.New("refname: empty source path")
)

// Ref is a resolved file reference.
type Ref struct {
	// Source is the filesystem path to read.
	Source string

	// Name is the name recorded in the archive, before any truncation.
	Name string
}

// Resolve parses ref. The reference is split on its first '@'; everything
// after it is unescaped to form the stored name. Without '@' the stored name
// is the base name of the path. Resolve does not touch the filesystem.
func Resolve(ref string) (Ref, error) {
	source, display, combined := strings.Cut(ref, "@")
	if source == "" {
		return Ref{}, ErrEmptyPath
	}

	if !combined {
		name := filepath.Base(source)
		if name == "." || name == string(filepath.Separator) {
			return Ref{}, ErrEmptyName
		}
		return Ref{Source: source, Name: name}, nil
	}

	name, err := Unescape(display)
	if err != nil {
		return Ref{}, err
	}
	if name == "" {
		return Ref{}, ErrEmptyName
	}
	return Ref{Source: source, Name: name}, nil
}

// ResolveAll resolves every reference in order, stopping at the first error.
func ResolveAll(refs []string) ([]Ref, error) {
	out := make([]Ref, 0, len(refs))
	for _, ref := range refs {
		r, err := Resolve(ref)
		if err != nil {
			return nil, &Error{Ref: ref, Err: err}
		}
		out = append(out, r)
	}
	return out, nil
}

// Error records the reference that failed to resolve.
type Error struct {
	Ref string
	Err error
}

func (e *Error) Error() string {
	return "resolve " + e.Ref + ": " + e.Err.Error()
}

func (e *Error) Unwrap() error {
	return e.Err
}
