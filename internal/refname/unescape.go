package refname

import (
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"
)

// Unescape removes shell-style quoting from s.
//
// Double-quoted sections and unquoted text accept backslash escapes;
// single-quoted sections are taken literally. Whitespace is kept as is, so
// `my file.bin` and `"my file.bin"` both yield "my file.bin".
//
// Recognized escapes are \" \\ \' \$ \` \@ and an escaped space, the control
// escapes \n \t \r \0, and \u{XXXX} for a Unicode code point.
func Unescape(s string) (string, error) {
	var b strings.Builder
	b.Grow(len(s))

	const (
		plain = iota
		double
		single
	)
	state := plain

	for i := 0; i < len(s); {
		c := s[i]
		switch state {
		case single:
			if c == '\'' {
				state = plain
			} else {
				b.WriteByte(c)
			}
			i++
		case double, plain:
			switch {
			case c == '\\':
				r, n, err := unescapeAt(s, i)
				if err != nil {
					return "", err
				}
				b.WriteRune(r)
				i += n
			case c == '"':
				if state == double {
					state = plain
				} else {
					state = double
				}
				i++
			case c == '\'' && state == plain:
				state = single
				i++
			default:
				b.WriteByte(c)
				i++
			}
		}
	}

	switch state {
	case double:
		return "", fmt.Errorf("%w: unterminated double quote in %q", ErrInvalidEscape, s)
	case single:
		return "", fmt.Errorf("%w: unterminated single quote in %q", ErrInvalidEscape, s)
	}
	return b.String(), nil
}

// unescapeAt decodes the escape sequence starting with the backslash at s[i].
// It returns the decoded rune and the number of bytes consumed.
func unescapeAt(s string, i int) (rune, int, error) {
	if i+1 >= len(s) {
		return 0, 0, fmt.Errorf("%w: trailing backslash in %q", ErrInvalidEscape, s)
	}
	switch c := s[i+1]; c {
	case '"', '\\', '\'', '$', '`', '@', ' ':
		return rune(c), 2, nil
	case 'n':
		return '\n', 2, nil
	case 't':
		return '\t', 2, nil
	case 'r':
		return '\r', 2, nil
	case '0':
		return 0, 2, nil
	case 'u':
		return unescapeUnicode(s, i)
	default:
		return 0, 0, fmt.Errorf("%w: unknown escape \\%c in %q", ErrInvalidEscape, c, s)
	}
}

// unescapeUnicode decodes \u{XXXX} starting at s[i].
func unescapeUnicode(s string, i int) (rune, int, error) {
	rest := s[i+2:]
	if !strings.HasPrefix(rest, "{") {
		return 0, 0, fmt.Errorf("%w: expected '{' after \\u in %q", ErrInvalidEscape, s)
	}
	end := strings.IndexByte(rest, '}')
	if end < 2 || end > 7 {
		return 0, 0, fmt.Errorf("%w: malformed \\u{} escape in %q", ErrInvalidEscape, s)
	}
	v, err := strconv.ParseUint(rest[1:end], 16, 32)
	if err != nil || !utf8.ValidRune(rune(v)) {
		return 0, 0, fmt.Errorf("%w: invalid code point %q", ErrInvalidEscape, rest[1:end])
	}
	// backslash, 'u' and the braced digits
	return rune(v), 2 + end + 1, nil
}
