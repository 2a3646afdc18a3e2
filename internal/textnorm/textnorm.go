// Package textnorm cleans extracted document text and detects garbled
// parser output. Cleaning is idempotent and never fails; unusable input
// yields an empty string.
package textnorm

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/encoding/korean"

	"github.com/hanmaru-labs/hanrag/internal/core/domain"
)

// DefaultGarbledThreshold is the minimum fraction of recognisable
// characters below which text counts as garbled.
const DefaultGarbledThreshold = 0.30

// Clean repairs mis-decoded byte sequences, strips control characters
// except newline and tab, replaces characters outside the allow-list
// with spaces, and collapses whitespace runs.
//
// The allow-list covers word characters (letters, digits, underscore),
// Hangul syllables and jamo, CJK ideographs, Japanese kana, whitespace,
// and common punctuation. Everything else, including replacement runes
// from permissive decoding, is spaced out and collapsed away.
func Clean(raw string) string {
	if raw == "" {
		return ""
	}

	text := decodeToUTF8(raw)

	var b strings.Builder
	b.Grow(len(text))
	for _, r := range text {
		switch {
		case isStrippedControl(r):
			// dropped entirely, like \x00-\x08, \x0b, \x0c, \x0e-\x1f, \x7f
		case isAllowed(r):
			b.WriteRune(r)
		default:
			b.WriteRune(' ')
		}
	}

	// Collapse whitespace runs (including newlines) and trim the edges.
	return strings.Join(strings.Fields(b.String()), " ")
}

// IsGarbled reports whether text is unusable parser output at the
// default threshold.
func IsGarbled(text string) bool {
	return IsGarbledAt(text, DefaultGarbledThreshold)
}

// IsGarbledAt reports whether the fraction of recognisable characters
// (Hangul syllables, ASCII letters, digits) over the total rune count
// falls below threshold. Empty text is always garbled.
func IsGarbledAt(text string, threshold float64) bool {
	if text == "" {
		return true
	}
	return ValidCharRatio(text) < threshold
}

// ValidCharRatio returns the fraction of recognisable characters in text.
func ValidCharRatio(text string) float64 {
	total := utf8.RuneCountInString(text)
	if total == 0 {
		return 0
	}

	good := 0
	for _, r := range text {
		if domain.IsHangulSyllable(r) || domain.IsLatinLetter(r) || (r >= '0' && r <= '9') {
			good++
		}
	}
	return float64(good) / float64(total)
}

// decodeToUTF8 recovers a usable UTF-8 string from possibly mis-decoded
// input: valid UTF-8 passes through, otherwise a CP949 decode is tried
// (Korean Windows encoding), otherwise invalid sequences are replaced.
func decodeToUTF8(s string) string {
	if utf8.ValidString(s) {
		return s
	}

	if decoded, err := korean.EUCKR.NewDecoder().String(s); err == nil && utf8.ValidString(decoded) {
		return decoded
	}

	return strings.ToValidUTF8(s, string(utf8.RuneError))
}

// isStrippedControl reports whether r is a control character that is
// removed outright. Newline, carriage return, and tab survive until
// whitespace collapsing.
func isStrippedControl(r rune) bool {
	if r == '\n' || r == '\r' || r == '\t' {
		return false
	}
	return r < 0x20 || r == 0x7f
}

// allowedPunct is the punctuation kept by cleaning.
const allowedPunct = `.,!?;:()[]{}'"%-`

func isAllowed(r rune) bool {
	switch {
	case unicode.IsSpace(r):
		return true
	case unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_':
		// Covers Latin, Hangul syllables and jamo, CJK ideographs, kana.
		return true
	case strings.ContainsRune(allowedPunct, r):
		return true
	}
	return false
}
