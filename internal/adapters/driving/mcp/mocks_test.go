package mcp

import (
	"context"

	"github.com/hanmaru-labs/hanrag/internal/core/domain"
	"github.com/hanmaru-labs/hanrag/internal/core/ports/driving"
)

// mockSearchService is a mock implementation of driving.SearchService.
type mockSearchService struct {
	hits []domain.SearchHit
	err  error

	gotQuery string
	gotOpts  domain.SearchOptions
}

func (m *mockSearchService) Search(
	_ context.Context,
	query string,
	opts domain.SearchOptions,
) ([]domain.SearchHit, error) {
	m.gotQuery = query
	m.gotOpts = opts
	return m.hits, m.err
}

func (m *mockSearchService) SearchSimilarChunks(_ context.Context, _ string, _ int) ([]domain.SearchHit, error) {
	return m.hits, m.err
}

// mockIngestService is a mock implementation of driving.IngestService.
type mockIngestService struct {
	result    *driving.IngestResult
	documents []domain.Document
	err       error
}

func (m *mockIngestService) IngestFile(_ context.Context, _ string) (*driving.IngestResult, error) {
	return m.result, m.err
}

func (m *mockIngestService) DeleteDocument(_ context.Context, _ string) error {
	return m.err
}

func (m *mockIngestService) ListDocuments(_ context.Context) ([]domain.Document, error) {
	return m.documents, m.err
}

func (m *mockIngestService) SupportedExtensions() []string {
	return []string{"pdf", "docx", "txt"}
}

// mockOntologyService is a mock implementation of driving.OntologyService.
type mockOntologyService struct {
	result      *domain.OntologyResult
	batch       *domain.BatchResult
	record      *domain.OntologyRecord
	keywordHits []domain.KeywordHit
	records     []domain.OntologyRecord
	similar     []domain.OntologyHit
	aggregates  []domain.KeywordAggregate
	stats       *domain.OntologyStatistics
	err         error

	gotDocID   string
	gotMethods []string
}

func (m *mockOntologyService) ExtractAndStore(_ context.Context, docID string, methods []string) (*domain.OntologyResult, error) {
	m.gotDocID = docID
	m.gotMethods = methods
	return m.result, m.err
}

func (m *mockOntologyService) ExtractBatch(_ context.Context, _ []string, _ []string, _ bool) (*domain.BatchResult, error) {
	return m.batch, m.err
}

func (m *mockOntologyService) GetDocumentOntology(_ context.Context, docID string) (*domain.OntologyRecord, error) {
	m.gotDocID = docID
	return m.record, m.err
}

func (m *mockOntologyService) SearchByKeyword(_ context.Context, _ string, _ int) ([]domain.KeywordHit, error) {
	return m.keywordHits, m.err
}

func (m *mockOntologyService) SearchByDomain(_ context.Context, _ string, _ int) ([]domain.OntologyRecord, error) {
	return m.records, m.err
}

func (m *mockOntologyService) GetSimilarDocuments(_ context.Context, _ string, _ int) ([]domain.OntologyHit, error) {
	return m.similar, m.err
}

func (m *mockOntologyService) GetTopKeywords(_ context.Context, _ int) ([]domain.KeywordAggregate, error) {
	return m.aggregates, m.err
}

func (m *mockOntologyService) Statistics(_ context.Context) (*domain.OntologyStatistics, error) {
	return m.stats, m.err
}

func (m *mockOntologyService) DeleteDocumentOntology(_ context.Context, _ string) error {
	return m.err
}

func (m *mockOntologyService) ClearAll(_ context.Context) error {
	return m.err
}

// mockStatsService is a mock implementation of driving.StatsService.
type mockStatsService struct {
	health []driving.ComponentHealth
	stats  *driving.SystemStats
	err    error
}

func (m *mockStatsService) Health(_ context.Context) []driving.ComponentHealth {
	return m.health
}

func (m *mockStatsService) Stats(_ context.Context) (*driving.SystemStats, error) {
	return m.stats, m.err
}
