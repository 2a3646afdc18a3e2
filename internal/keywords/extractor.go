package keywords

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/hanmaru-labs/hanrag/internal/core/domain"
)

// tokenRe matches keyword-bearing tokens: Hangul or Latin runs of two
// or more characters.
var tokenRe = regexp.MustCompile(`[가-힣a-zA-Z]{2,}`)

// occurrences locates term in text case-insensitively and returns up to
// domain.MaxKeywordPositions rune offsets together with the total
// non-overlapping occurrence count.
func occurrences(text, term string) ([]int, int) {
	lowerText := strings.ToLower(text)
	lowerTerm := strings.ToLower(term)
	if lowerTerm == "" {
		return nil, 0
	}

	var positions []int
	count := 0
	runeOffset := 0
	for start := 0; ; {
		idx := strings.Index(lowerText[start:], lowerTerm)
		if idx < 0 {
			break
		}
		runeOffset += utf8.RuneCountInString(lowerText[start : start+idx])
		if count < domain.MaxKeywordPositions {
			positions = append(positions, runeOffset)
		}
		count++
		runeOffset += utf8.RuneCountInString(lowerTerm)
		start += idx + len(lowerTerm)
	}
	return positions, count
}
