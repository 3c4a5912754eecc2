package numeric

import (
	"errors"
	"fmt"
	"strings"
)

// ErrBadEscape reports a malformed \XX sequence.
var ErrBadEscape = errors.New("malformed string escape")

const hexDigits = "0123456789ABCDEF"

// IsPrintable reports bytes that are written verbatim inside c"...".
func IsPrintable(b byte) bool {
	return b >= 0x20 && b <= 0x7E && b != '"' && b != '\\'
}

// EscapeString renders a c"..." string constant. When the array is longer
// than the data, the implicit terminator is written as \00.
func EscapeString(data []byte, arrayLen uint64) string {
	var sb strings.Builder
	sb.Grow(len(data) + 4)
	sb.WriteString(`c"`)
	writeEscaped(&sb, data)
	if arrayLen > uint64(len(data)) {
		sb.WriteString(`\00`)
	}
	sb.WriteByte('"')
	return sb.String()
}

// EscapeBytes escapes data without the c"..." wrapper; used for inline
// assembly and metadata strings.
func EscapeBytes(data []byte) string {
	var sb strings.Builder
	writeEscaped(&sb, data)
	return sb.String()
}

func writeEscaped(sb *strings.Builder, data []byte) {
	for _, b := range data {
		if IsPrintable(b) {
			sb.WriteByte(b)
			continue
		}
		sb.WriteByte('\\')
		sb.WriteByte(hexDigits[b>>4])
		sb.WriteByte(hexDigits[b&0xF])
	}
}

// UnescapeString reverses EscapeString. The c prefix and quotes are
// optional.
func UnescapeString(s string) ([]byte, error) {
	s = strings.TrimPrefix(s, "c")
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		s = s[1 : len(s)-1]
	}
	out := make([]byte, 0, len(s))
	for i := 0; i < len(s); i++ {
		if s[i] != '\\' {
			out = append(out, s[i])
			continue
		}
		if i+2 >= len(s) {
			return nil, fmt.Errorf("%w at offset %d", ErrBadEscape, i)
		}
		hi, okHi := fromHex(s[i+1])
		lo, okLo := fromHex(s[i+2])
		if !okHi || !okLo {
			return nil, fmt.Errorf("%w at offset %d", ErrBadEscape, i)
		}
		out = append(out, hi<<4|lo)
		i += 2
	}
	return out, nil
}

func fromHex(c byte) (byte, bool) {
	switch {
	case c >= '0' && c <= '9':
		return c - '0', true
	case c >= 'A' && c <= 'F':
		return c - 'A' + 10, true
	case c >= 'a' && c <= 'f':
		return c - 'a' + 10, true
	default:
		return 0, false
	}
}
