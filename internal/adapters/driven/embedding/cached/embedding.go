// Package cached wraps an embedder with a vector cache.
package cached

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/hanmaru-labs/hanrag/internal/core/domain"
	"github.com/hanmaru-labs/hanrag/internal/core/ports/driven"
)

// Ensure Embedder implements the interface.
var _ driven.Embedder = (*Embedder)(nil)

// Embedder memoises vectors produced by an inner embedder. Cache keys
// cover model, direction prefix, and text, so the same text embedded as
// a query and as a passage occupies two entries. Cache failures are
// logged and treated as misses; they never fail an Embed call.
type Embedder struct {
	inner driven.Embedder
	cache driven.EmbeddingCache
	log   *zap.Logger
}

// New creates a caching wrapper around inner.
func New(inner driven.Embedder, cache driven.EmbeddingCache, log *zap.Logger) *Embedder {
	if log == nil {
		log = zap.NewNop()
	}
	return &Embedder{
		inner: inner,
		cache: cache,
		log:   log,
	}
}

// Embed returns cached vectors where available and delegates the rest
// to the inner embedder in one batch. Output order matches input order.
func (e *Embedder) Embed(ctx context.Context, texts []string, prefix driven.EmbedPrefix) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	embeddings := make([][]float32, len(texts))
	var missingTexts []string
	var missingIdx []int

	for i, text := range texts {
		vector, err := e.cache.Get(ctx, e.key(text, prefix))
		if err == nil {
			embeddings[i] = vector
			continue
		}
		if !errors.Is(err, domain.ErrCacheMiss) {
			e.log.Warn("embedding cache lookup failed", zap.Error(err))
		}
		missingTexts = append(missingTexts, text)
		missingIdx = append(missingIdx, i)
	}

	if len(missingTexts) == 0 {
		return embeddings, nil
	}

	computed, err := e.inner.Embed(ctx, missingTexts, prefix)
	if err != nil {
		return nil, err
	}
	if len(computed) != len(missingTexts) {
		return nil, fmt.Errorf("embedder returned %d vectors for %d texts", len(computed), len(missingTexts))
	}

	for j, vector := range computed {
		embeddings[missingIdx[j]] = vector
		if err := e.cache.Set(ctx, e.key(missingTexts[j], prefix), vector); err != nil {
			e.log.Warn("embedding cache store failed", zap.Error(err))
		}
	}
	return embeddings, nil
}

// key derives the cache key from model, prefix, and text content.
func (e *Embedder) key(text string, prefix driven.EmbedPrefix) string {
	sum := sha256.Sum256([]byte(e.inner.ModelName() + "|" + string(prefix) + "|" + text))
	return "emb:" + hex.EncodeToString(sum[:])
}

// Dimensions returns the inner embedder's vector size.
func (e *Embedder) Dimensions() int {
	return e.inner.Dimensions()
}

// ModelName returns the inner embedder's model name.
func (e *Embedder) ModelName() string {
	return e.inner.ModelName()
}

// Ping validates the inner embedder is reachable. The cache is not
// pinged; an unreachable cache only costs recomputation.
func (e *Embedder) Ping(ctx context.Context) error {
	return e.inner.Ping(ctx)
}

// Close releases the inner embedder and the cache.
func (e *Embedder) Close() error {
	return errors.Join(e.inner.Close(), e.cache.Close())
}
