package memory

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"sync"

	"github.com/hanmaru-labs/hanrag/internal/core/domain"
	"github.com/hanmaru-labs/hanrag/internal/core/ports/driven"
)

// Ensure OntologyIndex implements the interface.
var _ driven.OntologyIndex = (*OntologyIndex)(nil)

type ontologyEntry struct {
	rec    domain.OntologyRecord
	vector []float32
}

type keywordEntry struct {
	seq    int64
	rec    domain.KeywordRecord
	vector []float32
}

// OntologyIndex is an in-memory implementation of driven.OntologyIndex.
// Document scrolls page by doc id order; keyword scrolls page by
// insertion order, with the insertion sequence number as the offset.
type OntologyIndex struct {
	mu         sync.RWMutex
	docs       map[string]ontologyEntry
	keywords   []keywordEntry
	nextSeq    int64
	dimensions int
}

// NewOntologyIndex creates an in-memory ontology index for vectors of
// the given dimensionality.
func NewOntologyIndex(dimensions int) *OntologyIndex {
	return &OntologyIndex{
		docs:       make(map[string]ontologyEntry),
		dimensions: dimensions,
	}
}

// EnsureReady is a no-op; the in-memory collections always exist.
func (s *OntologyIndex) EnsureReady(_ context.Context) error {
	return nil
}

// UpsertDocument stores the document-level record with its vector.
func (s *OntologyIndex) UpsertDocument(_ context.Context, rec domain.OntologyRecord, vector []float32) error {
	if len(vector) != s.dimensions {
		return fmt.Errorf("ontology vector has %d dimensions, expected %d: %w", len(vector), s.dimensions, domain.ErrInvalidInput)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.docs[rec.DocID] = ontologyEntry{rec: rec, vector: vector}
	return nil
}

// UpsertKeywords stores keyword records with their vectors.
func (s *OntologyIndex) UpsertKeywords(_ context.Context, recs []domain.KeywordRecord, vectors [][]float32) error {
	if len(recs) != len(vectors) {
		return fmt.Errorf("%d keyword records with %d vectors: %w", len(recs), len(vectors), domain.ErrInvalidInput)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, rec := range recs {
		if len(vectors[i]) != s.dimensions {
			return fmt.Errorf("keyword vector has %d dimensions, expected %d: %w", len(vectors[i]), s.dimensions, domain.ErrInvalidInput)
		}
		s.keywords = append(s.keywords, keywordEntry{seq: s.nextSeq, rec: rec, vector: vectors[i]})
		s.nextSeq++
	}
	return nil
}

// GetDocument returns the document-level record for a doc id.
func (s *OntologyIndex) GetDocument(_ context.Context, docID string) (*domain.OntologyRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	entry, ok := s.docs[docID]
	if !ok {
		return nil, fmt.Errorf("ontology for %s: %w", docID, domain.ErrNotFound)
	}
	rec := entry.rec
	return &rec, nil
}

// SearchDocuments returns document records nearest to the vector.
func (s *OntologyIndex) SearchDocuments(_ context.Context, vector []float32, limit int, threshold float64, excludeDocID string) ([]domain.OntologyHit, error) {
	if len(vector) != s.dimensions {
		return nil, fmt.Errorf("query vector has %d dimensions, expected %d: %w", len(vector), s.dimensions, domain.ErrInvalidInput)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	var hits []domain.OntologyHit
	for docID, entry := range s.docs {
		if excludeDocID != "" && docID == excludeDocID {
			continue
		}
		score := cosine(vector, entry.vector)
		if threshold > 0 && score < threshold {
			continue
		}
		hits = append(hits, domain.OntologyHit{Score: score, Record: entry.rec})
	}

	sort.Slice(hits, func(a, b int) bool {
		if hits[a].Score != hits[b].Score {
			return hits[a].Score > hits[b].Score
		}
		return hits[a].Record.DocID < hits[b].Record.DocID
	})
	if limit > 0 && len(hits) > limit {
		hits = hits[:limit]
	}
	return hits, nil
}

// SearchKeywords returns keyword records nearest to the vector.
func (s *OntologyIndex) SearchKeywords(_ context.Context, vector []float32, limit int, threshold float64) ([]domain.KeywordHit, error) {
	if len(vector) != s.dimensions {
		return nil, fmt.Errorf("query vector has %d dimensions, expected %d: %w", len(vector), s.dimensions, domain.ErrInvalidInput)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	var hits []domain.KeywordHit
	for _, entry := range s.keywords {
		score := cosine(vector, entry.vector)
		if threshold > 0 && score < threshold {
			continue
		}
		hits = append(hits, domain.KeywordHit{Score: score, Record: entry.rec})
	}

	sort.SliceStable(hits, func(a, b int) bool { return hits[a].Score > hits[b].Score })
	if limit > 0 && len(hits) > limit {
		hits = hits[:limit]
	}
	return hits, nil
}

// ScrollDocuments pages through document records in doc id order.
// The returned offset is the last doc id of the page.
func (s *OntologyIndex) ScrollDocuments(_ context.Context, estimatedDomain string, limit int, offset string) ([]domain.OntologyRecord, string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := make([]string, 0, len(s.docs))
	for docID, entry := range s.docs {
		if estimatedDomain != "" && entry.rec.EstimatedDomain != estimatedDomain {
			continue
		}
		if offset != "" && docID <= offset {
			continue
		}
		ids = append(ids, docID)
	}
	sort.Strings(ids)

	more := limit > 0 && len(ids) > limit
	if more {
		ids = ids[:limit]
	}

	recs := make([]domain.OntologyRecord, len(ids))
	for i, docID := range ids {
		recs[i] = s.docs[docID].rec
	}
	next := ""
	if more {
		next = ids[len(ids)-1]
	}
	return recs, next, nil
}

// ScrollKeywords pages through keyword records in insertion order.
func (s *OntologyIndex) ScrollKeywords(_ context.Context, limit int, offset string) ([]domain.KeywordRecord, string, error) {
	after := int64(-1)
	if offset != "" {
		parsed, err := strconv.ParseInt(offset, 10, 64)
		if err != nil {
			return nil, "", fmt.Errorf("scroll offset %q: %w", offset, domain.ErrInvalidInput)
		}
		after = parsed
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	var (
		recs []domain.KeywordRecord
		last int64
		more bool
	)
	for _, entry := range s.keywords {
		if entry.seq <= after {
			continue
		}
		if limit > 0 && len(recs) == limit {
			more = true
			break
		}
		recs = append(recs, entry.rec)
		last = entry.seq
	}

	next := ""
	if more {
		next = strconv.FormatInt(last, 10)
	}
	return recs, next, nil
}

// DeleteKeywordsByDoc removes every keyword record carrying the doc id.
func (s *OntologyIndex) DeleteKeywordsByDoc(_ context.Context, docID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	kept := s.keywords[:0]
	for _, entry := range s.keywords {
		if entry.rec.DocID != docID {
			kept = append(kept, entry)
		}
	}
	s.keywords = kept
	return nil
}

// DeleteDocumentByDoc removes the document-level record.
func (s *OntologyIndex) DeleteDocumentByDoc(_ context.Context, docID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.docs, docID)
	return nil
}

// CountDocuments returns the number of document-level records.
func (s *OntologyIndex) CountDocuments(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.docs), nil
}

// CountKeywords returns the number of keyword records.
func (s *OntologyIndex) CountKeywords(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.keywords), nil
}

// Clear drops both collections.
func (s *OntologyIndex) Clear(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.docs = make(map[string]ontologyEntry)
	s.keywords = nil
	return nil
}

// Close releases resources.
func (s *OntologyIndex) Close() error {
	return nil
}
