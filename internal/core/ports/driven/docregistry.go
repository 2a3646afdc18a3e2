package driven

import (
	"context"
	"time"

	"github.com/hanmaru-labs/hanrag/internal/core/domain"
)

// OntologyRun is a registry record of one completed extraction.
type OntologyRun struct {
	DocID        string
	ExtractedAt  time.Time
	KeywordCount int
	EntityCount  int
	TopicCount   int
	Duration     time.Duration
}

// DocumentRegistry persists document metadata outside the vector store.
// It backs document listing, batch-extraction id resolution, and stats.
type DocumentRegistry interface {
	// SaveDocument stores or updates a document record.
	SaveDocument(ctx context.Context, doc domain.Document) error

	// GetDocument returns a document by id, or domain.ErrNotFound.
	GetDocument(ctx context.Context, id string) (*domain.Document, error)

	// GetByFilename returns the most recent document with the filename,
	// or domain.ErrNotFound.
	GetByFilename(ctx context.Context, filename string) (*domain.Document, error)

	// ListDocuments returns all documents, most recent first.
	ListDocuments(ctx context.Context) ([]domain.Document, error)

	// DeleteDocument removes a document record. Idempotent.
	DeleteDocument(ctx context.Context, id string) error

	// RecordOntologyRun stores or replaces the extraction record for a doc.
	RecordOntologyRun(ctx context.Context, run OntologyRun) error

	// GetOntologyRun returns the extraction record, or domain.ErrNotFound.
	GetOntologyRun(ctx context.Context, docID string) (*OntologyRun, error)

	// CountDocuments returns the number of registered documents.
	CountDocuments(ctx context.Context) (int, error)

	// Close releases resources.
	Close() error
}
