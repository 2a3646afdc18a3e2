package driving

import (
	"context"

	"github.com/hanmaru-labs/hanrag/internal/core/domain"
)

// OntologyService provides ontology extraction and ontology-collection
// queries to external actors.
type OntologyService interface {
	// ExtractAndStore extracts a document's ontology from its stored
	// chunks and persists it, fully replacing any prior result.
	// methods selects keyword strategies by name; nil uses the configured
	// default set.
	ExtractAndStore(ctx context.Context, docID string, methods []string) (*domain.OntologyResult, error)

	// ExtractBatch extracts ontologies for many documents, skipping ones
	// that already have results unless force is set. Per-item failures
	// never abort the batch.
	ExtractBatch(ctx context.Context, docIDs []string, methods []string, force bool) (*domain.BatchResult, error)

	// GetDocumentOntology returns the stored record for a document,
	// or domain.ErrNotFound.
	GetDocumentOntology(ctx context.Context, docID string) (*domain.OntologyRecord, error)

	// SearchByKeyword performs semantic keyword search: near-synonym
	// queries can surface hits, exact spelling is not required.
	SearchByKeyword(ctx context.Context, term string, topK int) ([]domain.KeywordHit, error)

	// SearchByDomain lists document records in one estimated domain.
	SearchByDomain(ctx context.Context, estimatedDomain string, topK int) ([]domain.OntologyRecord, error)

	// GetSimilarDocuments returns documents whose summaries embed near
	// the given document's, excluding the document itself.
	GetSimilarDocuments(ctx context.Context, docID string, topK int) ([]domain.OntologyHit, error)

	// GetTopKeywords aggregates keyword records by term across documents.
	GetTopKeywords(ctx context.Context, limit int) ([]domain.KeywordAggregate, error)

	// Statistics summarises the ontology collections.
	Statistics(ctx context.Context) (*domain.OntologyStatistics, error)

	// DeleteDocumentOntology removes a document's ontology and keyword
	// records. The two deletes are not atomic; both are idempotent and
	// the keyword delete runs first so a partial failure is retryable.
	DeleteDocumentOntology(ctx context.Context, docID string) error

	// ClearAll drops both ontology collections.
	ClearAll(ctx context.Context) error
}
