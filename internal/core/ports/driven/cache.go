package driven

import "context"

// EmbeddingCache memoises embedding vectors. Keys are derived from
// model, prefix, and text content by the caching embedder wrapper.
//
// Implementations: Redis (shared across processes) and an in-process LRU.
type EmbeddingCache interface {
	// Get returns the cached vector for key, or domain.ErrCacheMiss.
	Get(ctx context.Context, key string) ([]float32, error)

	// Set stores a vector under key. Implementations may evict or expire.
	Set(ctx context.Context, key string, vector []float32) error

	// Close releases resources.
	Close() error
}
