package services

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/hanmaru-labs/hanrag/internal/core/domain"
	"github.com/hanmaru-labs/hanrag/internal/core/ports/driven"
	"github.com/hanmaru-labs/hanrag/internal/core/ports/driving"
)

// Ensure StatsService implements the interface.
var _ driving.StatsService = (*StatsService)(nil)

// StatsService reports collaborator health and system-wide counts.
type StatsService struct {
	embedder  driven.Embedder
	chunks    driven.ChunkIndex
	registry  driven.DocumentRegistry
	generator driven.Generator
	ontology  driving.OntologyService
	log       *zap.Logger
}

// NewStatsService creates the stats service. The generator and ontology
// service are optional (can be nil): without a generator the llm
// component is omitted from health, without the ontology service the
// ontology section of stats stays zero.
func NewStatsService(
	embedder driven.Embedder,
	chunks driven.ChunkIndex,
	registry driven.DocumentRegistry,
	generator driven.Generator,
	ontology driving.OntologyService,
	log *zap.Logger,
) *StatsService {
	if log == nil {
		log = zap.NewNop()
	}
	return &StatsService{
		embedder:  embedder,
		chunks:    chunks,
		registry:  registry,
		generator: generator,
		ontology:  ontology,
		log:       log,
	}
}

// Health pings each configured collaborator. It never fails; failures
// are reported per component.
func (s *StatsService) Health(ctx context.Context) []driving.ComponentHealth {
	var components []driving.ComponentHealth

	if err := s.embedder.Ping(ctx); err != nil {
		components = append(components, driving.ComponentHealth{
			Name: "embedder", OK: false, Detail: err.Error(),
		})
	} else {
		components = append(components, driving.ComponentHealth{
			Name: "embedder", OK: true, Detail: s.embedder.ModelName(),
		})
	}

	info, err := s.chunks.Info(ctx)
	switch {
	case err == nil:
		components = append(components, driving.ComponentHealth{
			Name: "vector-store", OK: true,
			Detail: fmt.Sprintf("%s: %d points", info.Name, info.PointCount),
		})
	case errors.Is(err, domain.ErrCollectionMissing):
		// Reachable but empty; the collection appears on first ingest.
		components = append(components, driving.ComponentHealth{
			Name: "vector-store", OK: true, Detail: "empty",
		})
	default:
		components = append(components, driving.ComponentHealth{
			Name: "vector-store", OK: false, Detail: err.Error(),
		})
	}

	if s.generator != nil {
		if err := s.generator.Ping(ctx); err != nil {
			components = append(components, driving.ComponentHealth{
				Name: "llm", OK: false, Detail: err.Error(),
			})
		} else {
			components = append(components, driving.ComponentHealth{
				Name: "llm", OK: true, Detail: s.generator.ModelName(),
			})
		}
	}

	return components
}

// Stats gathers system-wide counts. Ontology statistics degrade to zero
// values when the collections are unreachable.
func (s *StatsService) Stats(ctx context.Context) (*driving.SystemStats, error) {
	stats := &driving.SystemStats{
		EmbeddingModel: s.embedder.ModelName(),
		Dimensions:     s.embedder.Dimensions(),
	}

	docs, err := s.registry.CountDocuments(ctx)
	if err != nil {
		return nil, fmt.Errorf("count documents: %w", err)
	}
	stats.Documents = docs

	chunks, err := s.chunks.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("count chunks: %w", err)
	}
	stats.Chunks = chunks

	if s.ontology != nil {
		onto, err := s.ontology.Statistics(ctx)
		if err != nil {
			s.log.Warn("ontology statistics unavailable", zap.Error(err))
		} else {
			stats.Ontology = *onto
		}
	}

	return stats, nil
}
