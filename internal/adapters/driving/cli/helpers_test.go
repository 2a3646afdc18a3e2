package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/hanmaru-labs/hanrag/internal/core/domain"
	"github.com/hanmaru-labs/hanrag/internal/core/ports/driving"
)

// setupTestServices installs mock services and returns a cleanup that
// restores whatever was wired before. Tests that execute commands
// through rootCmd call this first.
func setupTestServices() func() {
	prevSearch := searchService
	prevIngest := ingestService
	prevOntology := ontologyService
	prevStats := statsService
	prevConfig := configStore

	searchService = &mockSearchService{hits: testSearchHits()}
	ingestService = &mockIngestService{
		result:    testIngestResult(),
		documents: testDocuments(),
	}
	ontologyService = &mockOntologyService{
		result:     testOntologyResult(),
		batch:      &domain.BatchResult{Successful: 2, Skipped: 1, ProcessingTime: 40 * time.Millisecond},
		record:     testOntologyRecord(),
		keywords:   testKeywordHits(),
		similar:    testOntologyHits(),
		domainRecs: []domain.OntologyRecord{*testOntologyRecord()},
		aggregates: testKeywordAggregates(),
		stats: &domain.OntologyStatistics{
			DocumentRecords: 3,
			KeywordRecords:  57,
			ByDomain:        map[string]int{"legal": 2, "technical": 1},
			ByLanguage:      map[string]int{"korean": 3},
			ByCategory:      map[string]int{"general": 40, "technical": 17},
		},
	}
	statsService = &mockStatsService{
		health: []driving.ComponentHealth{
			{Name: "embedder", OK: true, Detail: "bge-m3"},
			{Name: "vector-store", OK: true, Detail: "qdrant"},
		},
		stats: &driving.SystemStats{
			Documents:      3,
			Chunks:         42,
			EmbeddingModel: "bge-m3",
			Dimensions:     1024,
			Ontology:       domain.OntologyStatistics{DocumentRecords: 3, KeywordRecords: 57},
		},
	}
	configStore = newMockConfigStore()

	return func() {
		searchService = prevSearch
		ingestService = prevIngest
		ontologyService = prevOntology
		statsService = prevStats
		configStore = prevConfig
	}
}

func testSearchHits() []domain.SearchHit {
	return []domain.SearchHit{
		{
			ID:    "chunk-1",
			Score: 0.92,
			Chunk: domain.Chunk{
				ID:       "chunk-1",
				DocID:    "doc-1",
				Content:  "제1조 계약의 목적은 다음과 같다.",
				Source:   "계약서.pdf",
				FileType: "pdf",
				Index:    0,
			},
		},
		{
			ID:    "chunk-2",
			Score: 0.81,
			Chunk: domain.Chunk{
				ID:       "chunk-2",
				DocID:    "doc-1",
				Content:  "제2조 용어의 정의",
				Source:   "계약서.pdf",
				FileType: "pdf",
				Index:    1,
			},
		},
	}
}

func testIngestResult() *driving.IngestResult {
	return &driving.IngestResult{
		DocID:      "doc-1",
		Filename:   "계약서.pdf",
		ChunkCount: 4,
		CharCount:  1200,
	}
}

func testDocuments() []domain.Document {
	return []domain.Document{
		{
			ID:         "doc-1",
			Filename:   "계약서.pdf",
			FileType:   "pdf",
			SizeBytes:  2048,
			ChunkCount: 4,
			CharCount:  1200,
			Status:     domain.StatusIndexed,
			UploadedAt: time.Date(2025, 6, 1, 9, 30, 0, 0, time.UTC),
		},
		{
			ID:         "doc-2",
			Filename:   "scan.pdf",
			FileType:   "pdf",
			ChunkCount: 1,
			Status:     domain.StatusFallback,
			UploadedAt: time.Date(2025, 6, 2, 14, 0, 0, 0, time.UTC),
		},
	}
}

func testOntologyResult() *domain.OntologyResult {
	return &domain.OntologyResult{
		DocID:  "doc-1",
		Source: "계약서.pdf",
		Keywords: []domain.Keyword{
			{Term: "계약", Score: 0.91, Frequency: 12, Category: domain.CategoryGeneral, Method: "embedding"},
			{Term: "하도급", Score: 0.84, Frequency: 7, Category: domain.CategoryTechnical, Method: "embedding"},
		},
		Metadata: domain.DocumentMetadata{
			Language:        domain.LanguageKorean,
			DocumentType:    "contract",
			EstimatedDomain: "legal",
			Entities:        []domain.Entity{{Text: "한마루건설", Label: "ORG"}},
		},
		Context: domain.ContextInfo{
			MainTopics: []string{"계약 조건"},
		},
		ExtractedAt: time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC),
		Stats:       domain.ProcessingStats{TotalTime: 120 * time.Millisecond},
	}
}

func testOntologyRecord() *domain.OntologyRecord {
	return &domain.OntologyRecord{
		DocID:           "doc-1",
		Source:          "계약서.pdf",
		ExtractedAt:     time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC),
		Language:        domain.LanguageKorean,
		DocumentType:    "contract",
		EstimatedDomain: "legal",
		KeywordCount:    2,
		TopKeywords: []domain.Keyword{
			{Term: "계약", Score: 0.91, Category: domain.CategoryGeneral},
			{Term: "하도급", Score: 0.84, Category: domain.CategoryTechnical},
		},
		MainTopics: []string{"계약 조건"},
		Entities:   []domain.Entity{{Text: "한마루건설", Label: "ORG"}},
	}
}

func testKeywordHits() []domain.KeywordHit {
	return []domain.KeywordHit{
		{
			Score: 0.88,
			Record: domain.KeywordRecord{
				Term:   "쿠버네티스",
				Score:  0.9,
				DocID:  "doc-3",
				Source: "배포가이드.md",
			},
		},
	}
}

func testOntologyHits() []domain.OntologyHit {
	return []domain.OntologyHit{
		{
			Score: 0.77,
			Record: domain.OntologyRecord{
				DocID:           "doc-2",
				Source:          "하도급계약.pdf",
				EstimatedDomain: "legal",
			},
		},
	}
}

func testKeywordAggregates() []domain.KeywordAggregate {
	return []domain.KeywordAggregate{
		{Term: "계약", TotalFrequency: 19, AvgScore: 0.87, DocumentCount: 2},
		{Term: "쿠버네티스", TotalFrequency: 11, AvgScore: 0.82, DocumentCount: 1},
	}
}

// mockSearchService implements driving.SearchService with canned hits.
type mockSearchService struct {
	hits       []domain.SearchHit
	err        error
	gotQuery   string
	gotOpts    domain.SearchOptions
	gotChunkID string
	gotTopK    int
}

func (m *mockSearchService) Search(_ context.Context, query string, opts domain.SearchOptions) ([]domain.SearchHit, error) {
	m.gotQuery = query
	m.gotOpts = opts
	return m.hits, m.err
}

func (m *mockSearchService) SearchSimilarChunks(_ context.Context, chunkID string, topK int) ([]domain.SearchHit, error) {
	m.gotChunkID = chunkID
	m.gotTopK = topK
	return m.hits, m.err
}

// mockIngestService implements driving.IngestService.
type mockIngestService struct {
	result    *driving.IngestResult
	documents []domain.Document
	err       error
	gotPath   string
	deletedID string
}

func (m *mockIngestService) IngestFile(_ context.Context, path string) (*driving.IngestResult, error) {
	m.gotPath = path
	return m.result, m.err
}

func (m *mockIngestService) DeleteDocument(_ context.Context, docID string) error {
	m.deletedID = docID
	return m.err
}

func (m *mockIngestService) ListDocuments(_ context.Context) ([]domain.Document, error) {
	return m.documents, m.err
}

func (m *mockIngestService) SupportedExtensions() []string {
	return []string{"docx", "md", "pdf", "txt"}
}

// mockOntologyService implements driving.OntologyService.
type mockOntologyService struct {
	result     *domain.OntologyResult
	batch      *domain.BatchResult
	record     *domain.OntologyRecord
	keywords   []domain.KeywordHit
	similar    []domain.OntologyHit
	domainRecs []domain.OntologyRecord
	aggregates []domain.KeywordAggregate
	stats      *domain.OntologyStatistics
	err        error

	gotDocID   string
	gotDocIDs  []string
	gotMethods []string
	gotForce   bool
	gotTerm    string
	gotDomain  string
	gotLimit   int
	cleared    bool
}

func (m *mockOntologyService) ExtractAndStore(_ context.Context, docID string, methods []string) (*domain.OntologyResult, error) {
	m.gotDocID = docID
	m.gotMethods = methods
	return m.result, m.err
}

func (m *mockOntologyService) ExtractBatch(_ context.Context, docIDs []string, methods []string, force bool) (*domain.BatchResult, error) {
	m.gotDocIDs = docIDs
	m.gotMethods = methods
	m.gotForce = force
	return m.batch, m.err
}

func (m *mockOntologyService) GetDocumentOntology(_ context.Context, docID string) (*domain.OntologyRecord, error) {
	m.gotDocID = docID
	return m.record, m.err
}

func (m *mockOntologyService) SearchByKeyword(_ context.Context, term string, topK int) ([]domain.KeywordHit, error) {
	m.gotTerm = term
	m.gotLimit = topK
	return m.keywords, m.err
}

func (m *mockOntologyService) SearchByDomain(_ context.Context, estimatedDomain string, topK int) ([]domain.OntologyRecord, error) {
	m.gotDomain = estimatedDomain
	m.gotLimit = topK
	return m.domainRecs, m.err
}

func (m *mockOntologyService) GetSimilarDocuments(_ context.Context, docID string, topK int) ([]domain.OntologyHit, error) {
	m.gotDocID = docID
	m.gotLimit = topK
	return m.similar, m.err
}

func (m *mockOntologyService) GetTopKeywords(_ context.Context, limit int) ([]domain.KeywordAggregate, error) {
	m.gotLimit = limit
	return m.aggregates, m.err
}

func (m *mockOntologyService) Statistics(_ context.Context) (*domain.OntologyStatistics, error) {
	return m.stats, m.err
}

func (m *mockOntologyService) DeleteDocumentOntology(_ context.Context, docID string) error {
	m.gotDocID = docID
	return m.err
}

func (m *mockOntologyService) ClearAll(_ context.Context) error {
	m.cleared = true
	return m.err
}

// mockStatsService implements driving.StatsService.
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

// mockConfigStore implements driven.ConfigStore over a plain map.
type mockConfigStore struct {
	values map[string]any
	saved  int
}

func newMockConfigStore() *mockConfigStore {
	return &mockConfigStore{values: map[string]any{
		"ollama.base_url":        "http://localhost:11434",
		"ollama.embedding_model": "bge-m3",
		"openai.api_key":         "sk-test-1234567890abcdef",
		"search.mode":            "vector",
		"search.top_k":           int64(5),
		"search.min_score":       0.3,
		"ontology.use_llm":       false,
	}}
}

func (m *mockConfigStore) Get(key string) (any, bool) {
	v, ok := m.values[key]
	return v, ok
}

func (m *mockConfigStore) GetString(key string) string {
	if s, ok := m.values[key].(string); ok {
		return s
	}
	return ""
}

func (m *mockConfigStore) GetInt(key string) int {
	switch v := m.values[key].(type) {
	case int:
		return v
	case int64:
		return int(v)
	}
	return 0
}

func (m *mockConfigStore) GetFloat(key string) float64 {
	switch v := m.values[key].(type) {
	case float64:
		return v
	case int64:
		return float64(v)
	}
	return 0
}

func (m *mockConfigStore) GetBool(key string) bool {
	b, _ := m.values[key].(bool)
	return b
}

func (m *mockConfigStore) GetStringSlice(key string) []string {
	s, _ := m.values[key].([]string)
	return s
}

func (m *mockConfigStore) GetDuration(key string) time.Duration {
	switch v := m.values[key].(type) {
	case string:
		d, _ := time.ParseDuration(v)
		return d
	case int64:
		return time.Duration(v) * time.Second
	}
	return 0
}

func (m *mockConfigStore) Set(key string, value any) error {
	m.values[key] = value
	return nil
}

func (m *mockConfigStore) Save() error {
	m.saved++
	return nil
}

func (m *mockConfigStore) Load() error { return nil }

func (m *mockConfigStore) Path() string { return "/tmp/hanrag-test/config.toml" }

// failingConfigStore returns an error from Set.
type failingConfigStore struct {
	mockConfigStore
}

func (f *failingConfigStore) Set(key string, _ any) error {
	return fmt.Errorf("write %s: disk full", key)
}
