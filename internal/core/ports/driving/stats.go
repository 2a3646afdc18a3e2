package driving

import (
	"context"

	"github.com/hanmaru-labs/hanrag/internal/core/domain"
)

// ComponentHealth reports one collaborator's reachability.
type ComponentHealth struct {
	// Name identifies the component ("embedder", "vector-store", "llm").
	Name string

	// OK reports whether the component responded.
	OK bool

	// Detail carries the model name on success or the error on failure.
	Detail string
}

// SystemStats summarises the whole deployment.
type SystemStats struct {
	// Documents is the registry document count.
	Documents int

	// Chunks is the chunk collection point count.
	Chunks int

	// EmbeddingModel is the active embedding model name.
	EmbeddingModel string

	// Dimensions is the embedding dimensionality.
	Dimensions int

	// Ontology summarises the ontology collections.
	Ontology domain.OntologyStatistics
}

// StatsService provides health and statistics surfaces.
type StatsService interface {
	// Health pings each configured collaborator.
	Health(ctx context.Context) []ComponentHealth

	// Stats gathers system-wide counts.
	Stats(ctx context.Context) (*SystemStats, error)
}
