// Package cleaner provides the text normalisation stage of the
// ingestion pipeline.
package cleaner

import (
	"context"

	"github.com/hanmaru-labs/hanrag/internal/core/domain"
	"github.com/hanmaru-labs/hanrag/internal/core/ports/driven"
	"github.com/hanmaru-labs/hanrag/internal/textnorm"
)

// Processor rewrites the parsed text with the cleaning rules: encoding
// repair, control character removal, allow-list filtering, whitespace
// collapsing. It implements the PostProcessor interface.
//
// Cleaning is idempotent, so running the stage twice is harmless.
type Processor struct{}

var _ driven.PostProcessor = (*Processor)(nil)

// New creates the cleaning stage.
func New() *Processor {
	return &Processor{}
}

// Name returns the stage name.
func (p *Processor) Name() string {
	return "cleaner"
}

// Process rewrites text.Text in place. Chunks pass through untouched;
// this stage runs before any chunks exist.
func (p *Processor) Process(_ context.Context, text *driven.ParsedText, chunks []domain.Chunk) ([]domain.Chunk, error) {
	text.Text = textnorm.Clean(text.Text)
	return chunks, nil
}
