package keywords

import (
	"context"
	"sort"
	"strings"

	"github.com/hanmaru-labs/hanrag/internal/core/domain"
	"github.com/hanmaru-labs/hanrag/internal/core/ports/driven"
)

// DefaultMinFrequency is the occurrence floor below which a token is
// not kept as a statistical keyword.
const DefaultMinFrequency = 2

var _ driven.KeywordExtractor = (*Statistical)(nil)

// Statistical extracts keywords by raw token frequency. It is the
// cheapest strategy and runs first to seed the context for the others.
type Statistical struct {
	minFrequency int
}

// NewStatistical creates the frequency extractor. minFrequency <= 0
// selects the default floor.
func NewStatistical(minFrequency int) *Statistical {
	if minFrequency <= 0 {
		minFrequency = DefaultMinFrequency
	}
	return &Statistical{minFrequency: minFrequency}
}

// Method identifies the strategy.
func (s *Statistical) Method() domain.ExtractionMethod {
	return domain.MethodStatistical
}

// Extract counts tokens in the lowercased text and keeps the topK most
// frequent ones above the frequency floor, scored by token frequency
// over the total token count.
func (s *Statistical) Extract(_ context.Context, text string, _ []domain.Keyword, topK int) ([]domain.Keyword, error) {
	if topK <= 0 {
		return nil, nil
	}
	tokens := tokenRe.FindAllString(strings.ToLower(text), -1)
	if len(tokens) == 0 {
		return nil, nil
	}

	freq := make(map[string]int, len(tokens))
	firstSeen := make(map[string]int, len(tokens))
	for i, tok := range tokens {
		if _, ok := freq[tok]; !ok {
			firstSeen[tok] = i
		}
		freq[tok]++
	}

	terms := make([]string, 0, len(freq))
	for tok, n := range freq {
		if n >= s.minFrequency {
			terms = append(terms, tok)
		}
	}
	// Most frequent first, earliest appearance breaking ties.
	sort.Slice(terms, func(i, j int) bool {
		if freq[terms[i]] != freq[terms[j]] {
			return freq[terms[i]] > freq[terms[j]]
		}
		return firstSeen[terms[i]] < firstSeen[terms[j]]
	})
	if len(terms) > topK {
		terms = terms[:topK]
	}

	total := float64(len(tokens))
	keywords := make([]domain.Keyword, 0, len(terms))
	for _, term := range terms {
		positions, _ := occurrences(text, term)
		keywords = append(keywords, domain.Keyword{
			Term:        term,
			Score:       float64(freq[term]) / total,
			Frequency:   freq[term],
			Category:    Classify(term),
			Positions:   positions,
			Description: Describe(term, text),
			Method:      domain.MethodStatistical,
		})
	}
	return keywords, nil
}
