package driven

import (
	"context"

	"github.com/hanmaru-labs/hanrag/internal/core/domain"
)

// EntityRecognizer extracts named entities. It is optional: when no
// recogniser is configured, ontology extraction records an empty entity
// list, which is a supported configuration rather than an error.
type EntityRecognizer interface {
	// Available reports whether the recogniser can actually run.
	Available() bool

	// Recognize returns the entities found in text.
	Recognize(ctx context.Context, text string) ([]domain.Entity, error)
}
