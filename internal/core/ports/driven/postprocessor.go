package driven

import (
	"context"

	"github.com/hanmaru-labs/hanrag/internal/core/domain"
)

// ParsedText is the pipeline's working unit: cleaned text plus the
// source metadata chunks inherit.
type ParsedText struct {
	// DocID is the owning document id.
	DocID string

	// Source is the original filename.
	Source string

	// FileType is the lowercased extension without the dot.
	FileType string

	// Text is the document text. The cleaner stage rewrites it in place.
	Text string
}

// PostProcessor is one stage of the ingestion pipeline (cleaning,
// chunking). A stage that creates chunks receives nil and returns new
// chunks; a stage that adjusts text or chunks passes them through.
type PostProcessor interface {
	// Name returns the stage name for logging and configuration.
	Name() string

	// Process runs the stage. Stages run in pipeline order; the chunk
	// slice starts nil and is handed from stage to stage.
	Process(ctx context.Context, text *ParsedText, chunks []domain.Chunk) ([]domain.Chunk, error)
}

// PostProcessorPipeline chains PostProcessors over parsed text.
type PostProcessorPipeline interface {
	// Process runs the text through all stages in order and returns the
	// final chunks.
	Process(ctx context.Context, text *ParsedText) ([]domain.Chunk, error)
}
