package driven

import (
	"context"

	"github.com/hanmaru-labs/hanrag/internal/core/domain"
)

// OntologyIndex stores the two ontology collections: one document-level
// record per document and one record per extracted keyword. Both are
// created lazily with cosine distance and the embedder's dimensionality.
//
// The index is deliberately dumb storage: summary synthesis, score
// thresholds, and aggregation policy live in the ontology service.
type OntologyIndex interface {
	// EnsureReady creates both collections if they do not exist.
	EnsureReady(ctx context.Context) error

	// UpsertDocument stores the document-level record with its vector.
	UpsertDocument(ctx context.Context, rec domain.OntologyRecord, vector []float32) error

	// UpsertKeywords stores keyword records with their vectors.
	// vectors[i] belongs to recs[i]. Large inputs are written in batches.
	UpsertKeywords(ctx context.Context, recs []domain.KeywordRecord, vectors [][]float32) error

	// GetDocument returns the document-level record for a doc id.
	// Returns domain.ErrNotFound when absent.
	GetDocument(ctx context.Context, docID string) (*domain.OntologyRecord, error)

	// SearchDocuments returns document records nearest to the vector,
	// excluding excludeDocID when non-empty, dropping hits below threshold.
	SearchDocuments(ctx context.Context, vector []float32, limit int, threshold float64, excludeDocID string) ([]domain.OntologyHit, error)

	// SearchKeywords returns keyword records nearest to the vector,
	// dropping hits below threshold.
	SearchKeywords(ctx context.Context, vector []float32, limit int, threshold float64) ([]domain.KeywordHit, error)

	// ScrollDocuments pages through document records, optionally
	// restricted to one estimated domain. offset "" starts from the
	// beginning; the returned offset is "" when exhausted.
	ScrollDocuments(ctx context.Context, estimatedDomain string, limit int, offset string) ([]domain.OntologyRecord, string, error)

	// ScrollKeywords pages through keyword records.
	ScrollKeywords(ctx context.Context, limit int, offset string) ([]domain.KeywordRecord, string, error)

	// DeleteKeywordsByDoc removes every keyword record carrying the doc id.
	// Idempotent.
	DeleteKeywordsByDoc(ctx context.Context, docID string) error

	// DeleteDocumentByDoc removes the document-level record. Idempotent.
	DeleteDocumentByDoc(ctx context.Context, docID string) error

	// CountDocuments returns the number of document-level records.
	CountDocuments(ctx context.Context) (int, error)

	// CountKeywords returns the number of keyword records.
	CountKeywords(ctx context.Context) (int, error)

	// Clear drops both collections. They are recreated lazily.
	Clear(ctx context.Context) error

	// Close releases resources.
	Close() error
}
