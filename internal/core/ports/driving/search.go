package driving

import (
	"context"

	"github.com/hanmaru-labs/hanrag/internal/core/domain"
)

// SearchService provides retrieval to external actors.
type SearchService interface {
	// Search embeds the query and ranks results according to opts.Mode:
	// vector similarity, hybrid boosting, or rerank scoring.
	// Empty result sets return an empty slice, not an error.
	Search(ctx context.Context, query string, opts domain.SearchOptions) ([]domain.SearchHit, error)

	// SearchSimilarChunks returns chunks nearest to a stored chunk,
	// excluding the chunk itself.
	SearchSimilarChunks(ctx context.Context, chunkID string, topK int) ([]domain.SearchHit, error)
}
