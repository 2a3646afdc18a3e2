package mcp

import (
	"github.com/hanmaru-labs/hanrag/internal/core/ports/driving"
)

// Ports aggregates all driving port interfaces required by the MCP server.
// This provides a single injection point for dependency injection.
type Ports struct {
	// Search provides retrieval over the chunk index.
	Search driving.SearchService

	// Ingest stores new documents.
	Ingest driving.IngestService

	// Ontology extracts and queries per-document ontologies.
	Ontology driving.OntologyService

	// Stats reports collection statistics.
	Stats driving.StatsService
}

// Validate ensures all required ports are set.
// Returns an error if any required port is nil.
func (p *Ports) Validate() error {
	if p.Search == nil {
		return ErrMissingSearchService
	}
	// Ingest, Ontology, and Stats are optional; their tools and
	// resources are only registered when present.
	return nil
}
