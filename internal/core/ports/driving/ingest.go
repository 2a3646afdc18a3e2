package driving

import (
	"context"

	"github.com/hanmaru-labs/hanrag/internal/core/domain"
)

// IngestResult reports one completed file ingestion.
type IngestResult struct {
	// DocID is the id assigned to the document.
	DocID string

	// Filename is the ingested file's name.
	Filename string

	// ChunkCount is the number of chunks stored.
	ChunkCount int

	// CharCount is the rune count of the cleaned text.
	CharCount int

	// Fallback reports that parsing failed and a placeholder chunk was
	// stored instead of real content.
	Fallback bool
}

// IngestService turns files into stored, embedded chunks.
type IngestService interface {
	// IngestFile parses, cleans, chunks, embeds, and stores one file.
	// Parse failures still succeed with a fallback placeholder chunk;
	// only infrastructure failures (embedder, vector store) return errors.
	IngestFile(ctx context.Context, path string) (*IngestResult, error)

	// DeleteDocument removes a document's chunks, its registry record,
	// and its ontology records.
	DeleteDocument(ctx context.Context, docID string) error

	// ListDocuments returns all registered documents, most recent first.
	ListDocuments(ctx context.Context) ([]domain.Document, error)

	// SupportedExtensions returns the file extensions ingestion accepts.
	SupportedExtensions() []string
}
