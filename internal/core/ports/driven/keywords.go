package driven

import (
	"context"

	"github.com/hanmaru-labs/hanrag/internal/core/domain"
)

// KeywordExtractor is one keyword extraction strategy. The set of
// strategies is closed (embedding, statistical, llm); callers select
// them by method name through the extractor registry.
type KeywordExtractor interface {
	// Method identifies the strategy for selection and merge priority.
	Method() domain.ExtractionMethod

	// Extract returns up to topK keywords from text. existing carries
	// keywords already found by earlier strategies as context; strategies
	// that cannot use context ignore it. A strategy that finds nothing
	// returns an empty slice, not an error.
	Extract(ctx context.Context, text string, existing []domain.Keyword, topK int) ([]domain.Keyword, error)
}
