package analyze

import (
	"context"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/hanmaru-labs/hanrag/internal/core/domain"
	"github.com/hanmaru-labs/hanrag/internal/core/ports/driven"
)

// Language thresholds over the Hangul fraction of Hangul plus Latin
// letters.
const (
	koreanRatioFloor = 0.3
	englishRatioCeil = 0.1
)

// Header detection bounds.
const (
	headerMaxRunes   = 50
	headerUpperRatio = 0.3
)

// wordRe matches words across scripts for the raw statistics.
var wordRe = regexp.MustCompile(`[\p{L}\p{N}_]+`)

// sentenceRe splits text into rough sentences.
var sentenceRe = regexp.MustCompile(`[.!?]+`)

// listItemRe matches numbered or bulleted list lines.
var listItemRe = regexp.MustCompile(`^(\d+\.|[*\-•])`)

// domainVocabularies score subject domains by hit count. Slice order
// breaks ties.
var domainVocabularies = []struct {
	name  string
	terms []string
}{
	{domain.DomainTechnology, []string{"api", "system", "software", "algorithm", "data", "ai", "ml", "인공지능"}},
	{domain.DomainFinance, []string{"money", "investment", "financial", "budget", "예산", "투자", "금융"}},
	{domain.DomainLegal, []string{"law", "regulation", "legal", "court", "법률", "규정", "법원"}},
	{domain.DomainMedical, []string{"health", "medical", "patient", "treatment", "의료", "환자", "치료"}},
	{domain.DomainBusiness, []string{"business", "management", "strategy", "market", "비즈니스", "경영", "전략"}},
	{domain.DomainAcademic, []string{"research", "study", "analysis", "theory", "연구", "분석", "이론"}},
}

// Metadata infers the per-document classification. The entity
// recogniser is optional; without one, every document gets an empty
// entity list.
type Metadata struct {
	recognizer driven.EntityRecognizer
	log        *zap.Logger
}

// NewMetadata creates the metadata extractor.
func NewMetadata(recognizer driven.EntityRecognizer, log *zap.Logger) *Metadata {
	if log == nil {
		log = zap.NewNop()
	}
	return &Metadata{recognizer: recognizer, log: log}
}

// Extract classifies text and source into document metadata. Entity
// recognition failures degrade to an empty entity list.
func (m *Metadata) Extract(ctx context.Context, text, source string) domain.DocumentMetadata {
	md := domain.DocumentMetadata{
		Language:        DetectLanguage(text),
		DocumentType:    EstimateDocumentType(text, source),
		EstimatedDomain: EstimateDomain(text),
		TextStats:       Statistics(text),
		Structure:       AnalyzeStructure(text),
	}

	if m.recognizer != nil && m.recognizer.Available() {
		entities, err := m.recognizer.Recognize(ctx, text)
		if err != nil {
			m.log.Warn("entity recognition failed", zap.Error(err))
		} else {
			md.Entities = entities
		}
	}
	return md
}

// Statistics computes the raw text statistics.
func Statistics(text string) domain.TextStatistics {
	stats := domain.TextStatistics{
		CharCount: utf8.RuneCountInString(text),
	}

	words := wordRe.FindAllString(text, -1)
	stats.WordCount = len(words)

	for _, sent := range sentenceRe.Split(text, -1) {
		if strings.TrimSpace(sent) != "" {
			stats.SentenceCount++
		}
	}

	for _, r := range text {
		switch {
		case domain.IsHangulSyllable(r):
			stats.KoreanChars++
		case domain.IsLatinLetter(r):
			stats.EnglishChars++
		}
	}

	if len(words) > 0 {
		total := 0
		for _, w := range words {
			total += utf8.RuneCountInString(w)
		}
		stats.AvgWordLength = float64(total) / float64(len(words))
	}
	if stats.SentenceCount > 0 {
		stats.AvgSentenceLength = float64(stats.WordCount) / float64(stats.SentenceCount)
	}
	return stats
}

// DetectLanguage classifies the dominant script by the Hangul fraction
// of Hangul plus Latin letters.
func DetectLanguage(text string) domain.Language {
	korean, english := 0, 0
	for _, r := range text {
		switch {
		case domain.IsHangulSyllable(r):
			korean++
		case domain.IsLatinLetter(r):
			english++
		}
	}

	total := korean + english
	if total == 0 {
		return domain.LanguageUnknown
	}

	ratio := float64(korean) / float64(total)
	switch {
	case ratio > koreanRatioFloor:
		return domain.LanguageKorean
	case ratio < englishRatioCeil:
		return domain.LanguageEnglish
	default:
		return domain.LanguageMixed
	}
}

// EstimateDocumentType infers a coarse document kind from filename
// tokens first, then content tokens.
func EstimateDocumentType(text, source string) string {
	sourceLower := strings.ToLower(source)
	switch {
	case containsAny(sourceLower, "계약", "contract"):
		return "contract"
	case containsAny(sourceLower, "보고", "report"):
		return "report"
	case containsAny(sourceLower, "매뉴얼", "manual", "가이드", "guide"):
		return "manual"
	}

	textLower := strings.ToLower(text)
	switch {
	case containsAny(textLower, "제1조", "계약 조건"):
		return "legal"
	case containsAny(textLower, "연구", "분석 결과"):
		return "academic"
	case containsAny(textLower, "절차", "단계"):
		return "procedure"
	}
	return "general"
}

// EstimateDomain scores each domain vocabulary by occurrence count and
// returns the best, with ties broken by vocabulary order.
func EstimateDomain(text string) string {
	textLower := strings.ToLower(text)

	best := domain.DomainGeneral
	bestScore := 0
	for _, vocab := range domainVocabularies {
		score := 0
		for _, term := range vocab.terms {
			score += strings.Count(textLower, term)
		}
		if score > bestScore {
			best = vocab.name
			bestScore = score
		}
	}
	return best
}

// AnalyzeStructure counts layout heuristics: header-like lines, list
// items, and blank-line-separated paragraphs.
func AnalyzeStructure(text string) domain.StructureInfo {
	var info domain.StructureInfo

	inParagraph := false
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			inParagraph = false
			continue
		}
		if !inParagraph {
			info.ParagraphCount++
			inParagraph = true
		}

		if isHeaderLine(line) {
			info.HeaderCount++
		}
		if listItemRe.MatchString(line) {
			info.ListItemCount++
		}
	}
	return info
}

// isHeaderLine reports whether line is short with a high uppercase
// ratio among its letters.
func isHeaderLine(line string) bool {
	if utf8.RuneCountInString(line) >= headerMaxRunes {
		return false
	}

	letters, uppers := 0, 0
	for _, r := range line {
		if unicode.IsLetter(r) {
			letters++
			if unicode.IsUpper(r) {
				uppers++
			}
		}
	}
	if letters == 0 {
		return false
	}
	return float64(uppers)/float64(letters) > headerUpperRatio
}

func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
