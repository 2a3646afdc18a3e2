// Package memory provides an in-process LRU embedding cache.
package memory

import (
	"context"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/hanmaru-labs/hanrag/internal/core/domain"
	"github.com/hanmaru-labs/hanrag/internal/core/ports/driven"
)

// Ensure Cache implements the interface.
var _ driven.EmbeddingCache = (*Cache)(nil)

// DefaultMaxEntries bounds the cache. At 1024-dimensional float32
// vectors this is roughly 16 MiB.
const DefaultMaxEntries = 4096

// Cache is an in-process LRU implementation of driven.EmbeddingCache.
type Cache struct {
	entries *lru.Cache[string, []float32]
}

// NewCache creates an LRU cache holding up to maxEntries vectors.
// maxEntries <= 0 selects the default.
func NewCache(maxEntries int) *Cache {
	if maxEntries <= 0 {
		maxEntries = DefaultMaxEntries
	}
	entries, _ := lru.New[string, []float32](maxEntries)
	return &Cache{entries: entries}
}

// Get returns the cached vector for key, or domain.ErrCacheMiss.
func (c *Cache) Get(_ context.Context, key string) ([]float32, error) {
	vector, ok := c.entries.Get(key)
	if !ok {
		return nil, domain.ErrCacheMiss
	}
	return vector, nil
}

// Set stores a vector under key, evicting the least recently used
// entry when full.
func (c *Cache) Set(_ context.Context, key string, vector []float32) error {
	c.entries.Add(key, vector)
	return nil
}

// Close releases all entries.
func (c *Cache) Close() error {
	c.entries.Purge()
	return nil
}
