package parsers

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/korean"
	xunicode "golang.org/x/text/encoding/unicode"

	"github.com/hanmaru-labs/hanrag/internal/core/ports/driven"
)

const priorityText = 10

var utf8BOM = []byte{0xef, 0xbb, 0xbf}

// TextStrategy reads plain text files, trying encodings in order:
// UTF-16 when a byte order mark says so, UTF-8, CP949, and Latin-1 as
// the unconditional last resort. The garbled check downstream catches
// wrong guesses.
type TextStrategy struct {
	exts []string
}

var _ driven.ParseStrategy = (*TextStrategy)(nil)

// NewText creates the strategy for known plain text extensions.
func NewText() *TextStrategy {
	return &TextStrategy{exts: []string{"txt", "md", "rst"}}
}

// NewTextCatchAll creates a best-effort text strategy for unknown
// extensions.
func NewTextCatchAll() *TextStrategy {
	return &TextStrategy{}
}

func (s *TextStrategy) Name() string         { return "text" }
func (s *TextStrategy) Extensions() []string { return s.exts }
func (s *TextStrategy) Priority() int        { return priorityText }

func (s *TextStrategy) Parse(_ context.Context, path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read file: %w", err)
	}
	return decodeText(data), nil
}

// decodeText picks the first encoding that decodes data without
// replacement runes. Latin-1 accepts any byte sequence, so the chain
// always yields something.
func decodeText(data []byte) string {
	if len(data) >= 2 {
		switch {
		case data[0] == 0xff && data[1] == 0xfe, data[0] == 0xfe && data[1] == 0xff:
			utf16 := xunicode.UTF16(xunicode.LittleEndian, xunicode.UseBOM)
			if text, ok := decodeWith(utf16, data); ok {
				return text
			}
		}
	}

	if utf8.Valid(data) {
		return string(bytes.TrimPrefix(data, utf8BOM))
	}

	if text, ok := decodeWith(korean.EUCKR, data); ok {
		return text
	}

	text, _ := decodeWith(charmap.ISO8859_1, data)
	return text
}

func decodeWith(enc encoding.Encoding, data []byte) (string, bool) {
	decoded, err := enc.NewDecoder().Bytes(data)
	if err != nil {
		return "", false
	}
	text := string(decoded)
	return text, !strings.ContainsRune(text, utf8.RuneError)
}
