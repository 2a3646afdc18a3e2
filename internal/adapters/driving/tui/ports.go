// Package tui provides an interactive terminal user interface for hanrag.
// It implements a driving adapter following hexagonal architecture principles.
package tui

import (
	"github.com/hanmaru-labs/hanrag/internal/core/ports/driving"
)

// Ports aggregates all driving port interfaces required by the TUI.
// This provides a single injection point for dependency injection.
type Ports struct {
	// Search provides chunk retrieval.
	Search driving.SearchService

	// Ingest provides the document registry.
	Ingest driving.IngestService

	// Ontology provides stored document ontologies. Optional; the
	// ontology pane shows a hint when absent.
	Ontology driving.OntologyService

	// Stats provides system statistics and health. Optional.
	Stats driving.StatsService
}

// NewPorts creates a new Ports aggregate with the given services.
func NewPorts(
	search driving.SearchService,
	ingest driving.IngestService,
	ontology driving.OntologyService,
	stats driving.StatsService,
) *Ports {
	return &Ports{
		Search:   search,
		Ingest:   ingest,
		Ontology: ontology,
		Stats:    stats,
	}
}

// Validate ensures all required ports are set.
// Returns an error if any required port is nil.
func (p *Ports) Validate() error {
	if p.Search == nil {
		return ErrMissingSearchService
	}
	if p.Ingest == nil {
		return ErrMissingIngestService
	}
	return nil
}
