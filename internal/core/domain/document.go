package domain

import "time"

// DocumentStatus describes the lifecycle state of an ingested document.
type DocumentStatus string

// Document lifecycle states.
const (
	// StatusIndexed means all chunks are embedded and stored.
	StatusIndexed DocumentStatus = "indexed"

	// StatusFallback means parsing failed and only a placeholder chunk exists.
	StatusFallback DocumentStatus = "fallback"
)

// Document is the registry record for one ingested file.
type Document struct {
	// ID is the unique identifier for the document.
	ID string

	// Filename is the original file name, without directory.
	Filename string

	// FileType is the lowercased extension without the dot ("pdf", "docx", "txt").
	FileType string

	// SizeBytes is the size of the source file.
	SizeBytes int64

	// ChunkCount is the number of chunks stored for this document.
	ChunkCount int

	// CharCount is the total rune count of the cleaned text.
	CharCount int

	// Status is the ingestion outcome.
	Status DocumentStatus

	// UploadedAt is when ingestion completed.
	UploadedAt time.Time
}

// Chunk content types.
const (
	// ChunkTypeText marks real extracted document content.
	ChunkTypeText = "text"

	// ChunkTypeFallback marks a placeholder emitted when every parse
	// strategy failed. Downstream consumers must not treat it as content.
	ChunkTypeFallback = "fallback"
)

// Chunk is the atomic retrievable unit of document text.
// Chunks are immutable once embedded and are destroyed with their document.
type Chunk struct {
	// ID is the unique identifier for the chunk. It doubles as the
	// vector point id in the chunk collection.
	ID string

	// DocID links to the owning Document.
	DocID string

	// Content is the cleaned chunk text. Non-empty for stored chunks.
	Content string

	// Source is the original filename the chunk came from.
	Source string

	// FileType is the owning document's file type.
	FileType string

	// Index is the zero-based position of the chunk within its document.
	Index int

	// TotalChunks is the number of chunks the document produced.
	// Backfilled once the full chunk list is known.
	TotalChunks int

	// StartOffset is the rune offset of the chunk within the cleaned text.
	StartOffset int

	// Type is ChunkTypeText or ChunkTypeFallback.
	Type string

	// HasKorean reports whether the content contains Hangul.
	HasKorean bool

	// HasEnglish reports whether the content contains Latin letters.
	HasEnglish bool

	// UploadedAt is when the chunk was stored.
	UploadedAt time.Time

	// Meta carries parser diagnostics, e.g. failure details on fallback chunks.
	Meta map[string]string
}

// IsFallback reports whether the chunk is a parse-failure placeholder.
func (c Chunk) IsFallback() bool {
	return c.Type == ChunkTypeFallback
}
