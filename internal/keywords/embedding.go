package keywords

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/hanmaru-labs/hanrag/internal/core/domain"
	"github.com/hanmaru-labs/hanrag/internal/core/ports/driven"
)

// minTextRunes is the shortest text worth embedding for candidates.
const minTextRunes = 10

var _ driven.KeywordExtractor = (*Embedding)(nil)

// Embedding ranks candidate phrases by cosine similarity against the
// whole-document embedding. Candidates are token n-grams of one to
// three words; longer phrases get smaller shares of the budget.
type Embedding struct {
	embedder driven.Embedder
}

// NewEmbedding creates the embedding-phrase extractor.
func NewEmbedding(embedder driven.Embedder) *Embedding {
	return &Embedding{embedder: embedder}
}

// Method identifies the strategy.
func (e *Embedding) Method() domain.ExtractionMethod {
	return domain.MethodEmbedding
}

// Extract embeds the document and every candidate phrase, then keeps
// the highest-similarity candidates per phrase length. Candidates whose
// joined form never occurs literally in the text are discarded.
func (e *Embedding) Extract(ctx context.Context, text string, _ []domain.Keyword, topK int) ([]domain.Keyword, error) {
	if topK <= 0 || utf8.RuneCountInString(strings.TrimSpace(text)) < minTextRunes {
		return nil, nil
	}

	tokens := tokenRe.FindAllString(strings.ToLower(text), -1)
	budgets := []int{topK / 2, topK / 3, topK / 6}

	// Unique candidates per phrase length, in first-appearance order.
	candidatesByLen := make([][]string, len(budgets))
	var all []string
	for n := 1; n <= len(budgets); n++ {
		if budgets[n-1] <= 0 || len(tokens) < n {
			continue
		}
		seen := make(map[string]struct{})
		for i := 0; i+n <= len(tokens); i++ {
			phrase := strings.Join(tokens[i:i+n], " ")
			if _, ok := seen[phrase]; ok {
				continue
			}
			seen[phrase] = struct{}{}
			candidatesByLen[n-1] = append(candidatesByLen[n-1], phrase)
			all = append(all, phrase)
		}
	}
	if len(all) == 0 {
		return nil, nil
	}

	docVecs, err := e.embedder.Embed(ctx, []string{text}, driven.PrefixPassage)
	if err != nil {
		return nil, fmt.Errorf("embedding document: %w", err)
	}
	candVecs, err := e.embedder.Embed(ctx, all, driven.PrefixQuery)
	if err != nil {
		return nil, fmt.Errorf("embedding %d candidates: %w", len(all), err)
	}
	if len(docVecs) != 1 || len(candVecs) != len(all) {
		return nil, fmt.Errorf("embedder returned %d document and %d candidate vectors: %w",
			len(docVecs), len(candVecs), domain.ErrEmbeddingUnavailable)
	}

	scores := make(map[string]float64, len(all))
	for i, phrase := range all {
		scores[phrase] = cosineSimilarity(docVecs[0], candVecs[i])
	}

	//nolint:prealloc // zero-frequency candidates shrink the result
	var keywords []domain.Keyword
	for n, cands := range candidatesByLen {
		budget := budgets[n]
		if budget <= 0 || len(cands) == 0 {
			continue
		}

		ranked := make([]string, len(cands))
		copy(ranked, cands)
		sort.SliceStable(ranked, func(i, j int) bool {
			return scores[ranked[i]] > scores[ranked[j]]
		})
		if len(ranked) > budget {
			ranked = ranked[:budget]
		}

		for _, phrase := range ranked {
			positions, count := occurrences(text, phrase)
			if count == 0 {
				continue
			}
			keywords = append(keywords, domain.Keyword{
				Term:        phrase,
				Score:       scores[phrase],
				Frequency:   count,
				Category:    Classify(phrase),
				Positions:   positions,
				Description: Describe(phrase, text),
				Method:      domain.MethodEmbedding,
			})
		}
	}
	return keywords, nil
}

func cosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
