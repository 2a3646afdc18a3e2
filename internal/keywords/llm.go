package keywords

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/hanmaru-labs/hanrag/internal/core/domain"
	"github.com/hanmaru-labs/hanrag/internal/core/ports/driven"
)

// Generation parameters. Low temperature keeps term lists stable
// across runs.
const (
	llmSystemPrompt = "너는 한국어 문서 분석 전문가이자 키워드 요약기다."
	llmMaxTokens    = 500
	llmTemperature  = 0.3
	llmTopP         = 0.9
)

// maxPromptRunes caps how much document text enters the prompt.
const maxPromptRunes = 3000

// maxExistingTerms caps how many prior keywords the prompt mentions.
const maxExistingTerms = 10

var _ driven.KeywordExtractor = (*LLM)(nil)

// LLM asks a generation model for keywords with descriptions and
// categories. Every failure, from an unreachable server to unparseable
// output, yields zero keywords rather than an error: the strategy is
// strictly best-effort on top of the statistical baseline.
type LLM struct {
	generator driven.Generator
	log       *zap.Logger
}

// NewLLM creates the LLM extractor.
func NewLLM(generator driven.Generator, log *zap.Logger) *LLM {
	if log == nil {
		log = zap.NewNop()
	}
	return &LLM{generator: generator, log: log}
}

// Method identifies the strategy.
func (l *LLM) Method() domain.ExtractionMethod {
	return domain.MethodLLM
}

// llmKeyword is the response item shape the prompt demands.
type llmKeyword struct {
	Term        string `json:"term"`
	Description string `json:"description"`
	Category    string `json:"category"`
}

// Extract prompts the generator and parses its JSON array reply.
func (l *LLM) Extract(ctx context.Context, text string, existing []domain.Keyword, topK int) ([]domain.Keyword, error) {
	if topK <= 0 || strings.TrimSpace(text) == "" {
		return nil, nil
	}

	raw, err := l.generator.Generate(ctx, buildPrompt(text, existing, topK), driven.GenerateOptions{
		System:      llmSystemPrompt,
		MaxTokens:   llmMaxTokens,
		Temperature: llmTemperature,
		TopP:        llmTopP,
	})
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		l.log.Warn("llm keyword extraction failed", zap.Error(err))
		return nil, nil
	}

	items, ok := parseKeywordArray(raw)
	if !ok {
		l.log.Warn("llm reply held no keyword array", zap.Int("reply_bytes", len(raw)))
		return nil, nil
	}

	keywords := make([]domain.Keyword, 0, len(items))
	for _, item := range items {
		term := strings.TrimSpace(item.Term)
		if term == "" {
			continue
		}
		kw := domain.Keyword{
			Term:        term,
			Score:       1.0,
			Frequency:   1,
			Category:    parseCategory(item.Category, term),
			Description: strings.TrimSpace(item.Description),
			Method:      domain.MethodLLM,
		}
		// The model may invent terms; ground frequency and positions in
		// the source when the term actually occurs.
		if positions, count := occurrences(text, term); count > 0 {
			kw.Frequency = count
			kw.Positions = positions
		}
		keywords = append(keywords, kw)
		if len(keywords) == topK {
			break
		}
	}
	return keywords, nil
}

// buildPrompt asks for a JSON array of term, description, category
// objects, listing earlier keywords as context and capping the
// document text.
func buildPrompt(text string, existing []domain.Keyword, topK int) string {
	var b strings.Builder
	b.WriteString("다음 문서를 분석하여 중요 키워드를 추출하세요.\n")
	fmt.Fprintf(&b, "최대 %d개, 각 키워드마다 설명과 카테고리를 포함해주세요.\n", topK)
	b.WriteString("출력은 JSON 배열로 하세요. 형식:\n")
	b.WriteString("[\n")
	b.WriteString(`  { "term": "키워드", "description": "간단한 설명", "category": "technical|person|organization|location|general" },`)
	b.WriteString("\n  ...\n]\n")

	if len(existing) > 0 {
		terms := make([]string, 0, maxExistingTerms)
		for _, kw := range existing {
			terms = append(terms, kw.Term)
			if len(terms) == maxExistingTerms {
				break
			}
		}
		fmt.Fprintf(&b, "\n기존 키워드 (참고용): %s\n", strings.Join(terms, ", "))
	}

	body := text
	if utf8.RuneCountInString(body) > maxPromptRunes {
		body = string([]rune(body)[:maxPromptRunes]) + "\n...(생략됨)"
	}
	fmt.Fprintf(&b, "\n문서 내용:\n%s", body)
	return b.String()
}

// parseKeywordArray tolerantly decodes a JSON array from model output,
// skipping surrounding prose and markdown fences.
func parseKeywordArray(raw string) ([]llmKeyword, bool) {
	start := strings.Index(raw, "[")
	end := strings.LastIndex(raw, "]")
	if start < 0 || end <= start {
		return nil, false
	}

	var items []llmKeyword
	if err := json.Unmarshal([]byte(raw[start:end+1]), &items); err != nil {
		return nil, false
	}
	return items, true
}

// parseCategory maps a model-supplied category to a known value,
// reclassifying locally when the model invents one.
func parseCategory(raw, term string) domain.KeywordCategory {
	switch domain.KeywordCategory(strings.ToLower(strings.TrimSpace(raw))) {
	case domain.CategoryTechnical:
		return domain.CategoryTechnical
	case domain.CategoryPerson:
		return domain.CategoryPerson
	case domain.CategoryOrganization:
		return domain.CategoryOrganization
	case domain.CategoryLocation:
		return domain.CategoryLocation
	case domain.CategoryGeneral:
		return domain.CategoryGeneral
	}
	return Classify(term)
}
