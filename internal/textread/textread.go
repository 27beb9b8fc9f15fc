// Package textread turns raw repository file bytes into text.
//
// Repository files are read under an explicit leniency policy: Lenient drops
// bytes that are not valid UTF-8, Strict reports them as a DecodeError. A
// leading byte order mark selects UTF-8 or UTF-16 decoding and is removed.
package textread

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"strings"
	"unicode"
	"unicode/utf16"
	"unicode/utf8"

	"golang.org/x/text/cases"
	xunicode "golang.org/x/text/encoding/unicode"
	"golang.org/x/text/language"
	"golang.org/x/text/transform"
)

// Mode selects how undecodable input is handled.
type Mode string

const (
	Lenient Mode = "lenient"
	Strict  Mode = "strict"
)

// ParseMode normalizes a user supplied decoding mode. The empty string maps to Lenient.
func ParseMode(raw string) (Mode, error) {
	switch Mode(strings.ToLower(strings.TrimSpace(raw))) {
	case "", Lenient:
		return Lenient, nil
	case Strict:
		return Strict, nil
	default:
		return "", fmt.Errorf("unsupported decode mode %q (must be one of: lenient, strict)", raw)
	}
}

// DecodeError reports the first byte that could not be decoded.
type DecodeError struct {
	// Encoding is "UTF-8" or "UTF-16".
	Encoding string
	Offset   int
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("invalid %s at byte offset %d", e.Encoding, e.Offset)
}

var (
	bomUTF8    = []byte{0xEF, 0xBB, 0xBF}
	bomUTF16LE = []byte{0xFF, 0xFE}
	bomUTF16BE = []byte{0xFE, 0xFF}
)

// Decode converts raw file content to a string according to mode.
func Decode(raw []byte, mode Mode) (string, error) {
	if bytes.HasPrefix(raw, bomUTF16LE) || bytes.HasPrefix(raw, bomUTF16BE) {
		if mode == Strict {
			if off := firstInvalidUTF16(raw); off >= 0 {
				return "", &DecodeError{Encoding: "UTF-16", Offset: off}
			}
		}
		dec := xunicode.UTF16(xunicode.LittleEndian, xunicode.ExpectBOM).NewDecoder()
		out, _, err := transform.Bytes(dec, raw)
		if err == nil {
			return string(out), nil
		}
	}

	offset := 0
	if bytes.HasPrefix(raw, bomUTF8) {
		raw = raw[len(bomUTF8):]
		offset = len(bomUTF8)
	}
	if utf8.Valid(raw) {
		return string(raw), nil
	}
	if mode == Strict {
		return "", &DecodeError{Encoding: "UTF-8", Offset: offset + firstInvalid(raw)}
	}
	return strings.ToValidUTF8(string(raw), ""), nil
}

func firstInvalid(b []byte) int {
	for i := 0; i < len(b); {
		r, size := utf8.DecodeRune(b[i:])
		if r == utf8.RuneError && size <= 1 {
			return i
		}
		i += size
	}
	return len(b)
}

// firstInvalidUTF16 returns the offset of the first code unit in a
// BOM-prefixed UTF-16 buffer that is an unpaired surrogate or a truncated
// unit, or -1 when the buffer is well formed.
func firstInvalidUTF16(raw []byte) int {
	var order binary.ByteOrder = binary.LittleEndian
	if bytes.HasPrefix(raw, bomUTF16BE) {
		order = binary.BigEndian
	}
	for i := 2; i < len(raw); i += 2 {
		if i+1 >= len(raw) {
			return i
		}
		u := rune(order.Uint16(raw[i:]))
		if !utf16.IsSurrogate(u) {
			continue
		}
		if u >= 0xDC00 || i+3 >= len(raw) {
			return i
		}
		if next := rune(order.Uint16(raw[i+2:])); next < 0xDC00 || next > 0xDFFF {
			return i
		}
		i += 2
	}
	return -1
}

// NormalizeNewlines rewrites "\r\n" and lone "\r" as "\n".
func NormalizeNewlines(s string) string {
	return newlines.Replace(s)
}

var newlines = strings.NewReplacer("\r\n", "\n", "\r", "\n")

// isSpace matches the whitespace set stripped by common scripting runtimes,
// which also treat the ASCII file/group/record/unit separators as space.
func isSpace(r rune) bool {
	return unicode.IsSpace(r) || (r >= 0x1c && r <= 0x1f)
}

// TrimSpace removes leading and trailing whitespace.
func TrimSpace(s string) string {
	return strings.TrimFunc(s, isSpace)
}

// CharCount counts code points, not bytes.
func CharCount(s string) int {
	return utf8.RuneCountInString(s)
}

func isLineBreak(r rune) bool {
	switch r {
	case '\n', '\r', '\v', '\f', 0x1c, 0x1d, 0x1e, 0x85, 0x2028, 0x2029:
		return true
	}
	return false
}

// SplitLines splits s on every line boundary, treating "\r\n" as one break.
// A trailing line break does not produce an empty final line.
func SplitLines(s string) []string {
	var lines []string
	start := 0
	for i := 0; i < len(s); {
		r, size := utf8.DecodeRuneInString(s[i:])
		if !isLineBreak(r) {
			i += size
			continue
		}
		lines = append(lines, s[start:i])
		i += size
		if r == '\r' && i < len(s) && s[i] == '\n' {
			i++
		}
		start = i
	}
	if start < len(s) {
		lines = append(lines, s[start:])
	}
	return lines
}

// Upper applies full Unicode upper-casing (for example "ß" becomes "SS").
func Upper(s string) string {
	return cases.Upper(language.Und).String(s)
}
