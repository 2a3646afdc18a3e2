package qdrant

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/hanmaru-labs/hanrag/internal/core/domain"
	"github.com/hanmaru-labs/hanrag/internal/core/ports/driven"
)

// Ontology collection names and record type tags.
const (
	DefaultOntologyCollection = "ontology"
	DefaultKeywordCollection  = "keywords"

	recordTypeMain    = "ontology_main"
	recordTypeKeyword = "keyword"
)

// keywordBatchSize bounds one keyword upsert request.
const keywordBatchSize = 100

// Ensure OntologyIndex implements the interface.
var _ driven.OntologyIndex = (*OntologyIndex)(nil)

// OntologyIndex stores document-level ontology records and per-keyword
// records in two Qdrant collections. The document record's point id is
// derived from the doc id, so re-storing a document overwrites its main
// record; keyword records get fresh ids and are deleted by filter.
type OntologyIndex struct {
	client     *Client
	docCol     string
	keywordCol string
	dimensions int
}

// NewOntologyIndex creates an ontology index over the given client.
// Empty collection names select the defaults.
func NewOntologyIndex(client *Client, docCollection, keywordCollection string, dimensions int) *OntologyIndex {
	if docCollection == "" {
		docCollection = DefaultOntologyCollection
	}
	if keywordCollection == "" {
		keywordCollection = DefaultKeywordCollection
	}
	return &OntologyIndex{
		client:     client,
		docCol:     docCollection,
		keywordCol: keywordCollection,
		dimensions: dimensions,
	}
}

// textStatsPayload mirrors domain.TextStatistics.
type textStatsPayload struct {
	CharCount         int     `json:"char_count"`
	WordCount         int     `json:"word_count"`
	SentenceCount     int     `json:"sentence_count"`
	KoreanChars       int     `json:"korean_chars"`
	EnglishChars      int     `json:"english_chars"`
	AvgWordLength     float64 `json:"avg_word_length"`
	AvgSentenceLength float64 `json:"avg_sentence_length"`
}

// structurePayload mirrors domain.StructureInfo.
type structurePayload struct {
	HeaderCount    int `json:"header_count"`
	ListItemCount  int `json:"list_item_count"`
	ParagraphCount int `json:"paragraph_count"`
}

// statsPayload mirrors domain.ProcessingStats with durations in seconds.
type statsPayload struct {
	TotalSeconds    float64 `json:"total_seconds"`
	KeywordsSeconds float64 `json:"keywords_seconds"`
	MetadataSeconds float64 `json:"metadata_seconds"`
	ContextSeconds  float64 `json:"context_seconds"`
	KeywordCount    int     `json:"keyword_count"`
	EntityCount     int     `json:"entity_count"`
	TopicCount      int     `json:"topic_count"`
}

type topKeywordPayload struct {
	Term     string  `json:"term"`
	Score    float64 `json:"score"`
	Category string  `json:"category"`
}

type entityPayload struct {
	Text  string `json:"text"`
	Label string `json:"label"`
}

// ontologyPayload is the stored form of a document-level record.
type ontologyPayload struct {
	DocID       string `json:"doc_id"`
	Source      string `json:"source"`
	ExtractedAt string `json:"extracted_at"`
	Type        string `json:"type"`

	Language        string `json:"language"`
	DocumentType    string `json:"document_type"`
	EstimatedDomain string `json:"estimated_domain"`

	TextStatistics textStatsPayload `json:"text_statistics"`
	StructureInfo  structurePayload `json:"structure_info"`

	KeywordCount      int                 `json:"keyword_count"`
	TopKeywords       []topKeywordPayload `json:"top_keywords"`
	KeywordCategories map[string]int      `json:"keyword_categories"`

	EntityCount int             `json:"entity_count"`
	EntityTypes map[string]int  `json:"entity_types"`
	Entities    []entityPayload `json:"entities"`

	MainTopics       []string `json:"main_topics"`
	RelatedConcepts  []string `json:"related_concepts"`
	DomainIndicators []string `json:"domain_indicators"`
	ClusterCount     int      `json:"cluster_count"`

	ProcessingStats statsPayload `json:"processing_stats"`

	SearchableContent string `json:"searchable_content"`
}

// keywordPayload is the stored form of a keyword record.
type keywordPayload struct {
	Keyword   string  `json:"keyword"`
	Score     float64 `json:"score"`
	Frequency int     `json:"frequency"`
	Category  string  `json:"category"`
	Positions []int   `json:"positions"`

	DocID           string `json:"doc_id"`
	Source          string `json:"source"`
	DocumentType    string `json:"document_type"`
	EstimatedDomain string `json:"estimated_domain"`
	Language        string `json:"language"`

	RelatedTopics   []string `json:"related_topics"`
	RelatedConcepts []string `json:"related_concepts"`

	Type        string `json:"type"`
	ExtractedAt string `json:"extracted_at"`
}

func encodeOntology(rec domain.OntologyRecord) ontologyPayload {
	top := make([]topKeywordPayload, len(rec.TopKeywords))
	for i, kw := range rec.TopKeywords {
		top[i] = topKeywordPayload{
			Term:     kw.Term,
			Score:    kw.Score,
			Category: string(kw.Category),
		}
	}
	entities := make([]entityPayload, len(rec.Entities))
	for i, ent := range rec.Entities {
		entities[i] = entityPayload{Text: ent.Text, Label: ent.Label}
	}

	return ontologyPayload{
		DocID:           rec.DocID,
		Source:          rec.Source,
		ExtractedAt:     rec.ExtractedAt.UTC().Format(time.RFC3339),
		Type:            recordTypeMain,
		Language:        string(rec.Language),
		DocumentType:    rec.DocumentType,
		EstimatedDomain: rec.EstimatedDomain,
		TextStatistics: textStatsPayload{
			CharCount:         rec.TextStats.CharCount,
			WordCount:         rec.TextStats.WordCount,
			SentenceCount:     rec.TextStats.SentenceCount,
			KoreanChars:       rec.TextStats.KoreanChars,
			EnglishChars:      rec.TextStats.EnglishChars,
			AvgWordLength:     rec.TextStats.AvgWordLength,
			AvgSentenceLength: rec.TextStats.AvgSentenceLength,
		},
		StructureInfo: structurePayload{
			HeaderCount:    rec.Structure.HeaderCount,
			ListItemCount:  rec.Structure.ListItemCount,
			ParagraphCount: rec.Structure.ParagraphCount,
		},
		KeywordCount:      rec.KeywordCount,
		TopKeywords:       top,
		KeywordCategories: rec.CategoryCounts,
		EntityCount:       rec.EntityCount,
		EntityTypes:       rec.EntityTypes,
		Entities:          entities,
		MainTopics:        rec.MainTopics,
		RelatedConcepts:   rec.RelatedConcepts,
		DomainIndicators:  rec.DomainIndicators,
		ClusterCount:      rec.ClusterCount,
		ProcessingStats: statsPayload{
			TotalSeconds:    rec.Stats.TotalTime.Seconds(),
			KeywordsSeconds: rec.Stats.KeywordsTime.Seconds(),
			MetadataSeconds: rec.Stats.MetadataTime.Seconds(),
			ContextSeconds:  rec.Stats.ContextTime.Seconds(),
			KeywordCount:    rec.Stats.KeywordCount,
			EntityCount:     rec.Stats.EntityCount,
			TopicCount:      rec.Stats.TopicCount,
		},
		SearchableContent: rec.SearchableContent,
	}
}

func (p ontologyPayload) decode() domain.OntologyRecord {
	extractedAt, _ := time.Parse(time.RFC3339, p.ExtractedAt)
	top := make([]domain.Keyword, len(p.TopKeywords))
	for i, kw := range p.TopKeywords {
		top[i] = domain.Keyword{
			Term:     kw.Term,
			Score:    kw.Score,
			Category: domain.KeywordCategory(kw.Category),
		}
	}
	entities := make([]domain.Entity, len(p.Entities))
	for i, ent := range p.Entities {
		entities[i] = domain.Entity{Text: ent.Text, Label: ent.Label}
	}

	return domain.OntologyRecord{
		DocID:           p.DocID,
		Source:          p.Source,
		ExtractedAt:     extractedAt,
		Language:        domain.Language(p.Language),
		DocumentType:    p.DocumentType,
		EstimatedDomain: p.EstimatedDomain,
		TextStats: domain.TextStatistics{
			CharCount:         p.TextStatistics.CharCount,
			WordCount:         p.TextStatistics.WordCount,
			SentenceCount:     p.TextStatistics.SentenceCount,
			KoreanChars:       p.TextStatistics.KoreanChars,
			EnglishChars:      p.TextStatistics.EnglishChars,
			AvgWordLength:     p.TextStatistics.AvgWordLength,
			AvgSentenceLength: p.TextStatistics.AvgSentenceLength,
		},
		Structure: domain.StructureInfo{
			HeaderCount:    p.StructureInfo.HeaderCount,
			ListItemCount:  p.StructureInfo.ListItemCount,
			ParagraphCount: p.StructureInfo.ParagraphCount,
		},
		KeywordCount:     p.KeywordCount,
		TopKeywords:      top,
		CategoryCounts:   p.KeywordCategories,
		EntityCount:      p.EntityCount,
		EntityTypes:      p.EntityTypes,
		Entities:         entities,
		MainTopics:       p.MainTopics,
		RelatedConcepts:  p.RelatedConcepts,
		DomainIndicators: p.DomainIndicators,
		ClusterCount:     p.ClusterCount,
		Stats: domain.ProcessingStats{
			TotalTime:    secondsToDuration(p.ProcessingStats.TotalSeconds),
			KeywordsTime: secondsToDuration(p.ProcessingStats.KeywordsSeconds),
			MetadataTime: secondsToDuration(p.ProcessingStats.MetadataSeconds),
			ContextTime:  secondsToDuration(p.ProcessingStats.ContextSeconds),
			KeywordCount: p.ProcessingStats.KeywordCount,
			EntityCount:  p.ProcessingStats.EntityCount,
			TopicCount:   p.ProcessingStats.TopicCount,
		},
		SearchableContent: p.SearchableContent,
	}
}

func encodeKeyword(rec domain.KeywordRecord) keywordPayload {
	return keywordPayload{
		Keyword:         rec.Term,
		Score:           rec.Score,
		Frequency:       rec.Frequency,
		Category:        string(rec.Category),
		Positions:       rec.Positions,
		DocID:           rec.DocID,
		Source:          rec.Source,
		DocumentType:    rec.DocumentType,
		EstimatedDomain: rec.EstimatedDomain,
		Language:        string(rec.Language),
		RelatedTopics:   rec.RelatedTopics,
		RelatedConcepts: rec.RelatedConcepts,
		Type:            recordTypeKeyword,
		ExtractedAt:     rec.ExtractedAt.UTC().Format(time.RFC3339),
	}
}

func (p keywordPayload) decode() domain.KeywordRecord {
	extractedAt, _ := time.Parse(time.RFC3339, p.ExtractedAt)
	return domain.KeywordRecord{
		Term:            p.Keyword,
		Score:           p.Score,
		Frequency:       p.Frequency,
		Category:        domain.KeywordCategory(p.Category),
		Positions:       p.Positions,
		DocID:           p.DocID,
		Source:          p.Source,
		DocumentType:    p.DocumentType,
		EstimatedDomain: p.EstimatedDomain,
		Language:        domain.Language(p.Language),
		RelatedTopics:   p.RelatedTopics,
		RelatedConcepts: p.RelatedConcepts,
		ExtractedAt:     extractedAt,
	}
}

func secondsToDuration(s float64) time.Duration {
	return time.Duration(s * float64(time.Second))
}

// docPointID derives a stable point id from the doc id so the main
// record upserts in place.
func docPointID(docID string) string {
	return uuid.NewSHA1(uuid.NameSpaceOID, []byte(docID)).String()
}

// EnsureReady creates both collections if they do not exist.
func (i *OntologyIndex) EnsureReady(ctx context.Context) error {
	if err := i.client.EnsureCollection(ctx, i.docCol, i.dimensions); err != nil {
		return err
	}
	return i.client.EnsureCollection(ctx, i.keywordCol, i.dimensions)
}

// UpsertDocument stores the document-level record with its vector.
func (i *OntologyIndex) UpsertDocument(ctx context.Context, rec domain.OntologyRecord, vector []float32) error {
	p := point{
		ID:      docPointID(rec.DocID),
		Vector:  vector,
		Payload: encodeOntology(rec),
	}
	if err := i.client.Upsert(ctx, i.docCol, []point{p}); err != nil {
		return fmt.Errorf("upsert ontology record %s: %w", rec.DocID, err)
	}
	return nil
}

// UpsertKeywords stores keyword records with their vectors in batches.
func (i *OntologyIndex) UpsertKeywords(ctx context.Context, recs []domain.KeywordRecord, vectors [][]float32) error {
	if len(recs) != len(vectors) {
		return fmt.Errorf("%d keyword records with %d vectors: %w", len(recs), len(vectors), domain.ErrInvalidInput)
	}
	if len(recs) == 0 {
		return nil
	}

	points := make([]point, len(recs))
	for n, rec := range recs {
		points[n] = point{
			ID:      uuid.NewString(),
			Vector:  vectors[n],
			Payload: encodeKeyword(rec),
		}
	}

	for start := 0; start < len(points); start += keywordBatchSize {
		end := start + keywordBatchSize
		if end > len(points) {
			end = len(points)
		}
		if err := i.client.Upsert(ctx, i.keywordCol, points[start:end]); err != nil {
			return fmt.Errorf("upsert keywords %d-%d: %w", start, end, err)
		}
	}
	return nil
}

// GetDocument returns the document-level record for a doc id.
func (i *OntologyIndex) GetDocument(ctx context.Context, docID string) (*domain.OntologyRecord, error) {
	f := &filter{Must: []condition{
		matchCond("doc_id", docID),
		matchCond("type", recordTypeMain),
	}}
	stored, _, err := i.client.Scroll(ctx, i.docCol, f, 1, "")
	if errors.Is(err, domain.ErrCollectionMissing) {
		return nil, fmt.Errorf("ontology for %s: %w", docID, domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get ontology record: %w", err)
	}
	if len(stored) == 0 {
		return nil, fmt.Errorf("ontology for %s: %w", docID, domain.ErrNotFound)
	}

	var payload ontologyPayload
	if err := json.Unmarshal(stored[0].Payload, &payload); err != nil {
		return nil, fmt.Errorf("decode ontology payload: %w", err)
	}
	rec := payload.decode()
	return &rec, nil
}

// SearchDocuments returns document records nearest to the vector.
func (i *OntologyIndex) SearchDocuments(ctx context.Context, vector []float32, limit int, threshold float64, excludeDocID string) ([]domain.OntologyHit, error) {
	f := &filter{Must: []condition{matchCond("type", recordTypeMain)}}
	if excludeDocID != "" {
		f.MustNot = append(f.MustNot, matchCond("doc_id", excludeDocID))
	}

	scored, err := i.client.Search(ctx, i.docCol, vector, limit, threshold, f)
	if err != nil {
		return nil, fmt.Errorf("search ontology records: %w", err)
	}

	hits := make([]domain.OntologyHit, 0, len(scored))
	for _, sp := range scored {
		var payload ontologyPayload
		if err := json.Unmarshal(sp.Payload, &payload); err != nil {
			return nil, fmt.Errorf("decode ontology payload %s: %w", sp.ID, err)
		}
		hits = append(hits, domain.OntologyHit{Score: sp.Score, Record: payload.decode()})
	}
	return hits, nil
}

// SearchKeywords returns keyword records nearest to the vector.
func (i *OntologyIndex) SearchKeywords(ctx context.Context, vector []float32, limit int, threshold float64) ([]domain.KeywordHit, error) {
	f := &filter{Must: []condition{matchCond("type", recordTypeKeyword)}}

	scored, err := i.client.Search(ctx, i.keywordCol, vector, limit, threshold, f)
	if err != nil {
		return nil, fmt.Errorf("search keyword records: %w", err)
	}

	hits := make([]domain.KeywordHit, 0, len(scored))
	for _, sp := range scored {
		var payload keywordPayload
		if err := json.Unmarshal(sp.Payload, &payload); err != nil {
			return nil, fmt.Errorf("decode keyword payload %s: %w", sp.ID, err)
		}
		hits = append(hits, domain.KeywordHit{Score: sp.Score, Record: payload.decode()})
	}
	return hits, nil
}

// ScrollDocuments pages through document records, optionally restricted
// to one estimated domain.
func (i *OntologyIndex) ScrollDocuments(ctx context.Context, estimatedDomain string, limit int, offset string) ([]domain.OntologyRecord, string, error) {
	f := &filter{Must: []condition{matchCond("type", recordTypeMain)}}
	if estimatedDomain != "" {
		f.Must = append(f.Must, matchCond("estimated_domain", estimatedDomain))
	}

	stored, next, err := i.client.Scroll(ctx, i.docCol, f, limit, offset)
	if errors.Is(err, domain.ErrCollectionMissing) {
		return nil, "", nil
	}
	if err != nil {
		return nil, "", fmt.Errorf("scroll ontology records: %w", err)
	}

	recs := make([]domain.OntologyRecord, 0, len(stored))
	for _, sp := range stored {
		var payload ontologyPayload
		if err := json.Unmarshal(sp.Payload, &payload); err != nil {
			return nil, "", fmt.Errorf("decode ontology payload %s: %w", sp.ID, err)
		}
		recs = append(recs, payload.decode())
	}
	return recs, next, nil
}

// ScrollKeywords pages through keyword records.
func (i *OntologyIndex) ScrollKeywords(ctx context.Context, limit int, offset string) ([]domain.KeywordRecord, string, error) {
	f := &filter{Must: []condition{matchCond("type", recordTypeKeyword)}}

	stored, next, err := i.client.Scroll(ctx, i.keywordCol, f, limit, offset)
	if errors.Is(err, domain.ErrCollectionMissing) {
		return nil, "", nil
	}
	if err != nil {
		return nil, "", fmt.Errorf("scroll keyword records: %w", err)
	}

	recs := make([]domain.KeywordRecord, 0, len(stored))
	for _, sp := range stored {
		var payload keywordPayload
		if err := json.Unmarshal(sp.Payload, &payload); err != nil {
			return nil, "", fmt.Errorf("decode keyword payload %s: %w", sp.ID, err)
		}
		recs = append(recs, payload.decode())
	}
	return recs, next, nil
}

// DeleteKeywordsByDoc removes every keyword record carrying the doc id.
func (i *OntologyIndex) DeleteKeywordsByDoc(ctx context.Context, docID string) error {
	f := &filter{Must: []condition{matchCond("doc_id", docID)}}
	err := i.client.DeleteByFilter(ctx, i.keywordCol, f)
	if errors.Is(err, domain.ErrCollectionMissing) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("delete keywords of %s: %w", docID, err)
	}
	return nil
}

// DeleteDocumentByDoc removes the document-level record.
func (i *OntologyIndex) DeleteDocumentByDoc(ctx context.Context, docID string) error {
	f := &filter{Must: []condition{matchCond("doc_id", docID)}}
	err := i.client.DeleteByFilter(ctx, i.docCol, f)
	if errors.Is(err, domain.ErrCollectionMissing) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("delete ontology record of %s: %w", docID, err)
	}
	return nil
}

// CountDocuments returns the number of document-level records.
func (i *OntologyIndex) CountDocuments(ctx context.Context) (int, error) {
	count, err := i.client.Count(ctx, i.docCol, nil)
	if errors.Is(err, domain.ErrCollectionMissing) {
		return 0, nil
	}
	return count, err
}

// CountKeywords returns the number of keyword records.
func (i *OntologyIndex) CountKeywords(ctx context.Context) (int, error) {
	count, err := i.client.Count(ctx, i.keywordCol, nil)
	if errors.Is(err, domain.ErrCollectionMissing) {
		return 0, nil
	}
	return count, err
}

// Clear drops both collections. They are recreated on the next
// EnsureReady.
func (i *OntologyIndex) Clear(ctx context.Context) error {
	if err := i.client.DropCollection(ctx, i.keywordCol); err != nil {
		return fmt.Errorf("drop %s: %w", i.keywordCol, err)
	}
	if err := i.client.DropCollection(ctx, i.docCol); err != nil {
		return fmt.Errorf("drop %s: %w", i.docCol, err)
	}
	return nil
}

// Close releases resources. The shared HTTP client needs no cleanup.
func (i *OntologyIndex) Close() error {
	return nil
}
