package memory

import (
	"context"
	"fmt"
	"math"
	"sort"
	"sync"

	"github.com/hanmaru-labs/hanrag/internal/core/domain"
	"github.com/hanmaru-labs/hanrag/internal/core/ports/driven"
)

// Ensure ChunkIndex implements the interface.
var _ driven.ChunkIndex = (*ChunkIndex)(nil)

// ChunkIndex is an in-memory implementation of driven.ChunkIndex.
// Search is a linear cosine scan, which is fine for the corpus sizes
// the memory backend is meant for.
type ChunkIndex struct {
	mu         sync.RWMutex
	points     map[string]driven.ChunkPoint
	dimensions int
}

// NewChunkIndex creates an in-memory chunk index for vectors of the
// given dimensionality.
func NewChunkIndex(dimensions int) *ChunkIndex {
	return &ChunkIndex{
		points:     make(map[string]driven.ChunkPoint),
		dimensions: dimensions,
	}
}

// EnsureReady is a no-op; the in-memory collection always exists.
func (s *ChunkIndex) EnsureReady(_ context.Context) error {
	return nil
}

// Upsert stores chunk points, overwriting existing ids.
func (s *ChunkIndex) Upsert(_ context.Context, points []driven.ChunkPoint) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range points {
		if len(p.Vector) != s.dimensions {
			return fmt.Errorf("chunk %s has %d dimensions, expected %d: %w", p.Chunk.ID, len(p.Vector), s.dimensions, domain.ErrInvalidInput)
		}
		s.points[p.Chunk.ID] = p
	}
	return nil
}

// Search returns the nearest chunks to the query vector, best first.
func (s *ChunkIndex) Search(_ context.Context, vector []float32, q driven.ChunkQuery) ([]domain.SearchHit, error) {
	if len(vector) != s.dimensions {
		return nil, fmt.Errorf("query vector has %d dimensions, expected %d: %w", len(vector), s.dimensions, domain.ErrInvalidInput)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	var hits []domain.SearchHit
	for _, p := range s.points {
		if !matchesChunkFilter(p.Chunk, q.Filter) {
			continue
		}
		score := cosine(vector, p.Vector)
		if q.ScoreThreshold > 0 && score < q.ScoreThreshold {
			continue
		}
		hits = append(hits, domain.SearchHit{ID: p.Chunk.ID, Score: score, Chunk: p.Chunk})
	}

	sort.Slice(hits, func(a, b int) bool {
		if hits[a].Score != hits[b].Score {
			return hits[a].Score > hits[b].Score
		}
		return hits[a].ID < hits[b].ID
	})
	if q.Limit > 0 && len(hits) > q.Limit {
		hits = hits[:q.Limit]
	}
	return hits, nil
}

// Retrieve fetches a stored point by chunk id, including its vector.
func (s *ChunkIndex) Retrieve(_ context.Context, chunkID string) (*driven.ChunkPoint, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.points[chunkID]
	if !ok {
		return nil, fmt.Errorf("chunk %s: %w", chunkID, domain.ErrNotFound)
	}
	return &p, nil
}

// ScrollByDoc returns up to limit chunks of one document in index order.
func (s *ChunkIndex) ScrollByDoc(_ context.Context, docID string, limit int) ([]domain.Chunk, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var chunks []domain.Chunk
	for _, p := range s.points {
		if p.Chunk.DocID == docID {
			chunks = append(chunks, p.Chunk)
		}
	}
	sort.Slice(chunks, func(a, b int) bool { return chunks[a].Index < chunks[b].Index })
	if limit > 0 && len(chunks) > limit {
		chunks = chunks[:limit]
	}
	return chunks, nil
}

// DeleteByDoc removes every chunk belonging to the document.
func (s *ChunkIndex) DeleteByDoc(_ context.Context, docID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, p := range s.points {
		if p.Chunk.DocID == docID {
			delete(s.points, id)
		}
	}
	return nil
}

// Count returns the number of stored chunks.
func (s *ChunkIndex) Count(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.points), nil
}

// Info describes the chunk collection.
func (s *ChunkIndex) Info(_ context.Context) (driven.CollectionInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return driven.CollectionInfo{
		Name:       "chunks",
		PointCount: len(s.points),
		Dimensions: s.dimensions,
	}, nil
}

// Close releases resources.
func (s *ChunkIndex) Close() error {
	return nil
}

func matchesChunkFilter(c domain.Chunk, f driven.ChunkFilter) bool {
	if f.HasKorean != nil && c.HasKorean != *f.HasKorean {
		return false
	}
	if f.HasEnglish != nil && c.HasEnglish != *f.HasEnglish {
		return false
	}
	if f.Source != "" && c.Source != f.Source {
		return false
	}
	if f.FileType != "" && c.FileType != f.FileType {
		return false
	}
	if f.DocID != "" && c.DocID != f.DocID {
		return false
	}
	if !f.DateFrom.IsZero() && c.UploadedAt.Before(f.DateFrom) {
		return false
	}
	for _, id := range f.ExcludeIDs {
		if c.ID == id {
			return false
		}
	}
	return true
}

// cosine returns the cosine similarity of two equal-length vectors.
func cosine(a, b []float32) float64 {
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
