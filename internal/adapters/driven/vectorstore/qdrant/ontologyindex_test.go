package qdrant

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hanmaru-labs/hanrag/internal/core/domain"
)

func sampleOntologyRecord() domain.OntologyRecord {
	return domain.OntologyRecord{
		DocID:           "doc-1",
		Source:          "계약서.pdf",
		ExtractedAt:     time.Date(2026, 8, 20, 10, 0, 0, 0, time.UTC),
		Language:        domain.LanguageKorean,
		DocumentType:    "contract",
		EstimatedDomain: domain.DomainLegal,
		TextStats:       domain.TextStatistics{CharCount: 1200, WordCount: 300, SentenceCount: 40, KoreanChars: 900},
		Structure:       domain.StructureInfo{HeaderCount: 3, ListItemCount: 7, ParagraphCount: 12},
		KeywordCount:    15,
		TopKeywords: []domain.Keyword{
			{Term: "계약", Score: 0.9, Category: domain.CategoryGeneral},
			{Term: "위약금", Score: 0.7, Category: domain.CategoryTechnical},
		},
		CategoryCounts:    map[string]int{"general": 10, "technical": 5},
		EntityCount:       2,
		EntityTypes:       map[string]int{"ORG": 2},
		Entities:          []domain.Entity{{Text: "한마루", Label: "ORG"}},
		MainTopics:        []string{"계약 조건 위약금"},
		RelatedConcepts:   []string{"계약 해지"},
		DomainIndicators:  []string{"legal:제1조"},
		ClusterCount:      2,
		Stats:             domain.ProcessingStats{TotalTime: 1500 * time.Millisecond, KeywordsTime: 800 * time.Millisecond, KeywordCount: 15},
		SearchableContent: "문서: 계약서.pdf | 유형: contract | 도메인: legal",
	}
}

func sampleOntologyPayloadMap(docID string) map[string]any {
	return map[string]any{
		"doc_id":             docID,
		"source":             "계약서.pdf",
		"extracted_at":       "2026-08-20T10:00:00Z",
		"type":               "ontology_main",
		"language":           "korean",
		"document_type":      "contract",
		"estimated_domain":   "legal",
		"text_statistics":    map[string]any{"char_count": 1200, "korean_chars": 900},
		"structure_info":     map[string]any{"header_count": 3},
		"keyword_count":      15,
		"top_keywords":       []any{map[string]any{"term": "계약", "score": 0.9, "category": "general"}},
		"keyword_categories": map[string]any{"general": 10},
		"entity_count":       2,
		"entities":           []any{map[string]any{"text": "한마루", "label": "ORG"}},
		"main_topics":        []any{"계약 조건 위약금"},
		"cluster_count":      2,
		"processing_stats":   map[string]any{"total_seconds": 1.5, "keyword_count": 15},
		"searchable_content": "문서: 계약서.pdf | 유형: contract | 도메인: legal",
	}
}

func sampleKeywordPayloadMap(term, docID string) map[string]any {
	return map[string]any{
		"keyword":          term,
		"score":            0.8,
		"frequency":        4,
		"category":         "technical",
		"positions":        []any{10, 250},
		"doc_id":           docID,
		"source":           "계약서.pdf",
		"document_type":    "contract",
		"estimated_domain": "legal",
		"language":         "korean",
		"type":             "keyword",
		"extracted_at":     "2026-08-20T10:00:00Z",
	}
}

func TestOntologyIndex_EnsureReady_CreatesBothCollections(t *testing.T) {
	fake := newFakeQdrant(t)
	fake.failWith(http.MethodGet, "/collections/ontology", http.StatusNotFound)
	fake.failWith(http.MethodGet, "/collections/keywords", http.StatusNotFound)
	index := NewOntologyIndex(fake.client(), "", "", 1024)

	require.NoError(t, index.EnsureReady(context.Background()))

	require.Len(t, fake.requestsTo(http.MethodPut, "/collections/ontology"), 1)
	require.Len(t, fake.requestsTo(http.MethodPut, "/collections/keywords"), 1)
}

func TestOntologyIndex_UpsertDocument_StablePointID(t *testing.T) {
	fake := newFakeQdrant(t)
	index := NewOntologyIndex(fake.client(), "", "", 4)
	rec := sampleOntologyRecord()
	vector := []float32{1, 0, 0, 0}

	require.NoError(t, index.UpsertDocument(context.Background(), rec, vector))
	require.NoError(t, index.UpsertDocument(context.Background(), rec, vector))

	reqs := fake.requestsTo(http.MethodPut, "/collections/ontology/points")
	require.Len(t, reqs, 2)
	first := reqs[0].Body["points"].([]any)[0].(map[string]any)
	second := reqs[1].Body["points"].([]any)[0].(map[string]any)
	assert.Equal(t, first["id"], second["id"], "same doc id must map to the same point id")

	payload := first["payload"].(map[string]any)
	assert.Equal(t, "ontology_main", payload["type"])
	assert.Equal(t, "doc-1", payload["doc_id"])
	assert.Equal(t, "legal", payload["estimated_domain"])
	assert.Equal(t, "2026-08-20T10:00:00Z", payload["extracted_at"])

	stats := payload["processing_stats"].(map[string]any)
	assert.InDelta(t, 1.5, stats["total_seconds"], 1e-9)
}

func TestOntologyIndex_UpsertDocument_DistinctDocsDistinctIDs(t *testing.T) {
	fake := newFakeQdrant(t)
	index := NewOntologyIndex(fake.client(), "", "", 4)
	rec := sampleOntologyRecord()

	require.NoError(t, index.UpsertDocument(context.Background(), rec, []float32{1, 0, 0, 0}))
	rec.DocID = "doc-2"
	require.NoError(t, index.UpsertDocument(context.Background(), rec, []float32{1, 0, 0, 0}))

	reqs := fake.requestsTo(http.MethodPut, "/collections/ontology/points")
	first := reqs[0].Body["points"].([]any)[0].(map[string]any)
	second := reqs[1].Body["points"].([]any)[0].(map[string]any)
	assert.NotEqual(t, first["id"], second["id"])
}

func TestOntologyIndex_UpsertKeywords_Batches(t *testing.T) {
	fake := newFakeQdrant(t)
	index := NewOntologyIndex(fake.client(), "", "", 4)

	recs := make([]domain.KeywordRecord, 230)
	vectors := make([][]float32, 230)
	for i := range recs {
		recs[i] = domain.KeywordRecord{
			Term:     fmt.Sprintf("키워드%d", i),
			Score:    0.5,
			DocID:    "doc-1",
			Category: domain.CategoryGeneral,
		}
		vectors[i] = []float32{float32(i), 0, 0, 0}
	}

	require.NoError(t, index.UpsertKeywords(context.Background(), recs, vectors))

	reqs := fake.requestsTo(http.MethodPut, "/collections/keywords/points")
	require.Len(t, reqs, 3)
	assert.Len(t, reqs[0].Body["points"].([]any), 100)
	assert.Len(t, reqs[1].Body["points"].([]any), 100)
	assert.Len(t, reqs[2].Body["points"].([]any), 30)

	p := reqs[0].Body["points"].([]any)[0].(map[string]any)
	payload := p["payload"].(map[string]any)
	assert.Equal(t, "키워드0", payload["keyword"])
	assert.Equal(t, "keyword", payload["type"])
	assert.Equal(t, "doc-1", payload["doc_id"])
}

func TestOntologyIndex_UpsertKeywords_LengthMismatch(t *testing.T) {
	fake := newFakeQdrant(t)
	index := NewOntologyIndex(fake.client(), "", "", 4)

	err := index.UpsertKeywords(context.Background(), make([]domain.KeywordRecord, 2), make([][]float32, 1))

	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestOntologyIndex_GetDocument(t *testing.T) {
	fake := newFakeQdrant(t)
	fake.respond(http.MethodPost, "/collections/ontology/points/scroll", map[string]any{
		"result": map[string]any{
			"points":           []any{map[string]any{"id": "p1", "payload": sampleOntologyPayloadMap("doc-1")}},
			"next_page_offset": nil,
		},
	})
	index := NewOntologyIndex(fake.client(), "", "", 4)

	rec, err := index.GetDocument(context.Background(), "doc-1")

	require.NoError(t, err)
	assert.Equal(t, "doc-1", rec.DocID)
	assert.Equal(t, domain.LanguageKorean, rec.Language)
	assert.Equal(t, "contract", rec.DocumentType)
	assert.Equal(t, 1200, rec.TextStats.CharCount)
	assert.Equal(t, 1500*time.Millisecond, rec.Stats.TotalTime)
	require.Len(t, rec.TopKeywords, 1)
	assert.Equal(t, "계약", rec.TopKeywords[0].Term)

	reqs := fake.requestsTo(http.MethodPost, "/collections/ontology/points/scroll")
	require.Len(t, reqs, 1)
	assert.Equal(t, float64(1), reqs[0].Body["limit"])
	filterJSON, err := json.Marshal(reqs[0].Body["filter"])
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"must": [
			{"key": "doc_id", "match": {"value": "doc-1"}},
			{"key": "type", "match": {"value": "ontology_main"}}
		]
	}`, string(filterJSON))
}

func TestOntologyIndex_GetDocument_NotFound(t *testing.T) {
	fake := newFakeQdrant(t)
	fake.respond(http.MethodPost, "/collections/ontology/points/scroll", map[string]any{
		"result": map[string]any{"points": []any{}, "next_page_offset": nil},
	})
	index := NewOntologyIndex(fake.client(), "", "", 4)

	_, err := index.GetDocument(context.Background(), "missing")

	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestOntologyIndex_GetDocument_MissingCollection(t *testing.T) {
	fake := newFakeQdrant(t)
	fake.failWith(http.MethodPost, "/collections/ontology/points/scroll", http.StatusNotFound)
	index := NewOntologyIndex(fake.client(), "", "", 4)

	_, err := index.GetDocument(context.Background(), "doc-1")

	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestOntologyIndex_SearchDocuments_ExcludesSourceDoc(t *testing.T) {
	fake := newFakeQdrant(t)
	fake.respond(http.MethodPost, "/collections/ontology/points/search", map[string]any{
		"result": []any{
			map[string]any{"id": "p2", "score": 0.71, "payload": sampleOntologyPayloadMap("doc-2")},
		},
	})
	index := NewOntologyIndex(fake.client(), "", "", 4)

	hits, err := index.SearchDocuments(context.Background(), []float32{1, 0, 0, 0}, 5, 0.6, "doc-1")

	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, "doc-2", hits[0].Record.DocID)
	assert.InDelta(t, 0.71, hits[0].Score, 1e-9)

	reqs := fake.requestsTo(http.MethodPost, "/collections/ontology/points/search")
	require.Len(t, reqs, 1)
	assert.Equal(t, 0.6, reqs[0].Body["score_threshold"])
	filterJSON, err := json.Marshal(reqs[0].Body["filter"])
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"must":     [{"key": "type", "match": {"value": "ontology_main"}}],
		"must_not": [{"key": "doc_id", "match": {"value": "doc-1"}}]
	}`, string(filterJSON))
}

func TestOntologyIndex_SearchKeywords(t *testing.T) {
	fake := newFakeQdrant(t)
	fake.respond(http.MethodPost, "/collections/keywords/points/search", map[string]any{
		"result": []any{
			map[string]any{"id": "k1", "score": 0.91, "payload": sampleKeywordPayloadMap("위약금", "doc-1")},
		},
	})
	index := NewOntologyIndex(fake.client(), "", "", 4)

	hits, err := index.SearchKeywords(context.Background(), []float32{1, 0, 0, 0}, 10, 0.7)

	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, "위약금", hits[0].Record.Term)
	assert.Equal(t, domain.CategoryTechnical, hits[0].Record.Category)
	assert.Equal(t, []int{10, 250}, hits[0].Record.Positions)

	reqs := fake.requestsTo(http.MethodPost, "/collections/keywords/points/search")
	require.Len(t, reqs, 1)
	assert.Equal(t, 0.7, reqs[0].Body["score_threshold"])
}

func TestOntologyIndex_ScrollDocuments_DomainFilter(t *testing.T) {
	fake := newFakeQdrant(t)
	fake.respond(http.MethodPost, "/collections/ontology/points/scroll", map[string]any{
		"result": map[string]any{
			"points":           []any{map[string]any{"id": "p1", "payload": sampleOntologyPayloadMap("doc-1")}},
			"next_page_offset": "p9",
		},
	})
	index := NewOntologyIndex(fake.client(), "", "", 4)

	recs, next, err := index.ScrollDocuments(context.Background(), "legal", 20, "")

	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, "p9", next)

	reqs := fake.requestsTo(http.MethodPost, "/collections/ontology/points/scroll")
	filterJSON, err := json.Marshal(reqs[0].Body["filter"])
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"must": [
			{"key": "type", "match": {"value": "ontology_main"}},
			{"key": "estimated_domain", "match": {"value": "legal"}}
		]
	}`, string(filterJSON))
}

func TestOntologyIndex_ScrollKeywords_MissingCollectionIsEmpty(t *testing.T) {
	fake := newFakeQdrant(t)
	fake.failWith(http.MethodPost, "/collections/keywords/points/scroll", http.StatusNotFound)
	index := NewOntologyIndex(fake.client(), "", "", 4)

	recs, next, err := index.ScrollKeywords(context.Background(), 50, "")

	require.NoError(t, err)
	assert.Empty(t, recs)
	assert.Empty(t, next)
}

func TestOntologyIndex_DeleteKeywordsByDoc(t *testing.T) {
	fake := newFakeQdrant(t)
	index := NewOntologyIndex(fake.client(), "", "", 4)

	require.NoError(t, index.DeleteKeywordsByDoc(context.Background(), "doc-1"))

	reqs := fake.requestsTo(http.MethodPost, "/collections/keywords/points/delete")
	require.Len(t, reqs, 1)
	filterJSON, err := json.Marshal(reqs[0].Body["filter"])
	require.NoError(t, err)
	assert.JSONEq(t, `{"must": [{"key": "doc_id", "match": {"value": "doc-1"}}]}`, string(filterJSON))
}

func TestOntologyIndex_Deletes_MissingCollectionIsNoError(t *testing.T) {
	fake := newFakeQdrant(t)
	fake.failWith(http.MethodPost, "/collections/keywords/points/delete", http.StatusNotFound)
	fake.failWith(http.MethodPost, "/collections/ontology/points/delete", http.StatusNotFound)
	index := NewOntologyIndex(fake.client(), "", "", 4)

	assert.NoError(t, index.DeleteKeywordsByDoc(context.Background(), "doc-1"))
	assert.NoError(t, index.DeleteDocumentByDoc(context.Background(), "doc-1"))
}

func TestOntologyIndex_Counts(t *testing.T) {
	fake := newFakeQdrant(t)
	fake.respond(http.MethodPost, "/collections/ontology/points/count", map[string]any{
		"result": map[string]any{"count": 3},
	})
	fake.failWith(http.MethodPost, "/collections/keywords/points/count", http.StatusNotFound)
	index := NewOntologyIndex(fake.client(), "", "", 4)

	docs, err := index.CountDocuments(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, docs)

	keywords, err := index.CountKeywords(context.Background())
	require.NoError(t, err)
	assert.Zero(t, keywords)
}

func TestOntologyIndex_Clear_DropsBothCollections(t *testing.T) {
	fake := newFakeQdrant(t)
	index := NewOntologyIndex(fake.client(), "", "", 4)

	require.NoError(t, index.Clear(context.Background()))

	require.Len(t, fake.requestsTo(http.MethodDelete, "/collections/keywords"), 1)
	require.Len(t, fake.requestsTo(http.MethodDelete, "/collections/ontology"), 1)
}
