package keywords

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/hanmaru-labs/hanrag/internal/core/domain"
)

// Category marker substrings, checked in order. The first category with
// a matching marker wins.
var (
	technicalMarkers    = []string{"api", "system", "data", "model", "algorithm", "tech"}
	organizationMarkers = []string{"company", "corp", "inc", "회사", "기업", "단체"}
	locationMarkers     = []string{"city", "country", "시", "구", "동", "로", "국"}
)

// hangulNameRe matches the shape of a Korean person name: two to four
// Hangul syllables and nothing else.
var hangulNameRe = regexp.MustCompile(`^[가-힣]{2,4}$`)

// maxDescriptionRunes caps generated keyword descriptions.
const maxDescriptionRunes = 200

// sentenceEndRe splits text into rough sentences.
var sentenceEndRe = regexp.MustCompile(`[.!?]\s+`)

// Classify assigns a category to a term: marker substrings first, then
// the person-name shape, then general.
func Classify(term string) domain.KeywordCategory {
	lower := strings.ToLower(term)

	for _, m := range technicalMarkers {
		if strings.Contains(lower, m) {
			return domain.CategoryTechnical
		}
	}
	for _, m := range organizationMarkers {
		if strings.Contains(lower, m) {
			return domain.CategoryOrganization
		}
	}
	for _, m := range locationMarkers {
		if strings.Contains(lower, m) {
			return domain.CategoryLocation
		}
	}
	if hangulNameRe.MatchString(term) {
		return domain.CategoryPerson
	}
	return domain.CategoryGeneral
}

// Describe returns the first sentence of text containing term, capped
// at maxDescriptionRunes, or a generic template when the term never
// appears inside a sentence.
func Describe(term, text string) string {
	lowerTerm := strings.ToLower(term)
	for _, sent := range sentenceEndRe.Split(text, -1) {
		if strings.Contains(strings.ToLower(sent), lowerTerm) {
			sent = strings.TrimSpace(sent)
			if utf8.RuneCountInString(sent) > maxDescriptionRunes {
				sent = string([]rune(sent)[:maxDescriptionRunes])
			}
			return sent
		}
	}
	return fmt.Sprintf("'%s'는 문서에서 중요한 개념입니다.", term)
}
