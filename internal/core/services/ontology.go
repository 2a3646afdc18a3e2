package services

import (
	"context"
	"fmt"
	"slices"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/hanmaru-labs/hanrag/internal/analyze"
	"github.com/hanmaru-labs/hanrag/internal/core/domain"
	"github.com/hanmaru-labs/hanrag/internal/core/ports/driven"
	"github.com/hanmaru-labs/hanrag/internal/core/ports/driving"
	"github.com/hanmaru-labs/hanrag/internal/keywords"
)

// Ensure OntologyService implements the interface.
var _ driving.OntologyService = (*OntologyService)(nil)

// Ontology tuning defaults.
const (
	// DefaultOntologyTopK caps the merged keyword list per document.
	DefaultOntologyTopK = 20

	// DefaultSeedTopK is how many statistical keywords seed the other
	// extraction strategies.
	DefaultSeedTopK = 15

	// DefaultKeywordThreshold is the semantic keyword search score floor.
	DefaultKeywordThreshold = 0.7

	// DefaultSimilarThreshold is the similar-documents score floor.
	DefaultSimilarThreshold = 0.6
)

// defaultQueryLimit is the result count for ontology queries when the
// caller passes none.
const defaultQueryLimit = 10

// chunkScrollLimit bounds how many chunks one extraction loads.
const chunkScrollLimit = 10000

// statsScanLimit bounds how many records the statistics tally scans
// per collection.
const statsScanLimit = 10000

// topKeywordsWindow is the scan-window multiplier for the top-keywords
// aggregation: limit results are folded from limit*window records.
const topKeywordsWindow = 5

// Stored-record truncation caps. The full keyword list lives in the
// keyword collection; the document record only carries a preview.
const (
	recordTopKeywords = 10
	recordEntities    = 20
	keywordConcepts   = 5

	summaryKeywords = 15
	summaryEntities = 10
	summaryConcepts = 10
)

// OntologyConfig tunes extraction and ontology queries. Zero values
// take defaults.
type OntologyConfig struct {
	// TopK caps the merged keyword list per document.
	TopK int

	// SeedTopK is the statistical seed keyword count.
	SeedTopK int

	// Methods is the default strategy set when a caller passes none.
	Methods []string

	// KeywordThreshold is the semantic keyword search score floor.
	KeywordThreshold float64

	// SimilarThreshold is the similar-documents score floor.
	SimilarThreshold float64
}

// OntologyService extracts per-document ontologies (keywords, metadata,
// topical context) and serves queries over the stored records.
type OntologyService struct {
	extractors       *keywords.Registry
	metadata         *analyze.Metadata
	contextExtractor *analyze.ContextExtractor
	embedder         driven.Embedder
	index            driven.OntologyIndex
	chunks           driven.ChunkIndex
	registry         driven.DocumentRegistry
	cfg              OntologyConfig
	log              *zap.Logger
}

// NewOntologyService creates the ontology service.
func NewOntologyService(
	extractors *keywords.Registry,
	metadata *analyze.Metadata,
	contextExtractor *analyze.ContextExtractor,
	embedder driven.Embedder,
	index driven.OntologyIndex,
	chunks driven.ChunkIndex,
	registry driven.DocumentRegistry,
	cfg OntologyConfig,
	log *zap.Logger,
) *OntologyService {
	if cfg.TopK <= 0 {
		cfg.TopK = DefaultOntologyTopK
	}
	if cfg.SeedTopK <= 0 {
		cfg.SeedTopK = DefaultSeedTopK
	}
	if len(cfg.Methods) == 0 {
		cfg.Methods = []string{string(domain.MethodEmbedding), string(domain.MethodStatistical)}
	}
	if cfg.KeywordThreshold <= 0 {
		cfg.KeywordThreshold = DefaultKeywordThreshold
	}
	if cfg.SimilarThreshold <= 0 {
		cfg.SimilarThreshold = DefaultSimilarThreshold
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &OntologyService{
		extractors:       extractors,
		metadata:         metadata,
		contextExtractor: contextExtractor,
		embedder:         embedder,
		index:            index,
		chunks:           chunks,
		registry:         registry,
		cfg:              cfg,
		log:              log,
	}
}

// ExtractAndStore extracts a document's ontology from its stored chunks
// and persists it, fully replacing any prior result.
func (s *OntologyService) ExtractAndStore(ctx context.Context, docID string, methods []string) (*domain.OntologyResult, error) {
	doc, err := s.registry.GetDocument(ctx, docID)
	if err != nil {
		return nil, fmt.Errorf("get document %s: %w", docID, err)
	}
	chunkList, err := s.chunks.ScrollByDoc(ctx, docID, chunkScrollLimit)
	if err != nil {
		return nil, fmt.Errorf("load chunks: %w", err)
	}
	if len(chunkList) == 0 {
		return nil, fmt.Errorf("document %s has no chunks", docID)
	}

	contents := make([]string, len(chunkList))
	for i, c := range chunkList {
		contents[i] = c.Content
	}
	text := strings.Join(contents, "\n\n")

	if len(methods) == 0 {
		methods = s.cfg.Methods
	}
	result, err := s.extract(ctx, docID, doc.Filename, text, contents, methods)
	if err != nil {
		return nil, err
	}
	if err := s.store(ctx, result); err != nil {
		return nil, err
	}

	// The run record is bookkeeping; the ontology itself is already stored.
	if err := s.registry.RecordOntologyRun(ctx, driven.OntologyRun{
		DocID:        docID,
		ExtractedAt:  result.ExtractedAt,
		KeywordCount: result.Stats.KeywordCount,
		EntityCount:  result.Stats.EntityCount,
		TopicCount:   result.Stats.TopicCount,
		Duration:     result.Stats.TotalTime,
	}); err != nil {
		s.log.Warn("record extraction run", zap.String("doc_id", docID), zap.Error(err))
	}

	s.log.Info("extracted ontology",
		zap.String("doc_id", docID),
		zap.String("file", doc.Filename),
		zap.Int("keywords", result.Stats.KeywordCount),
		zap.Int("entities", result.Stats.EntityCount),
		zap.Duration("took", result.Stats.TotalTime))
	return result, nil
}

// ExtractBatch extracts ontologies for many documents. Per-item failures
// never abort the batch; cancellation returns the partial result.
func (s *OntologyService) ExtractBatch(ctx context.Context, docIDs []string, methods []string, force bool) (*domain.BatchResult, error) {
	start := time.Now()
	result := &domain.BatchResult{}

	for _, docID := range docIDs {
		select {
		case <-ctx.Done():
			result.ProcessingTime = time.Since(start)
			return result, ctx.Err()
		default:
		}

		if !force && s.hasOntology(ctx, docID) {
			result.Skipped++
			continue
		}

		if _, err := s.ExtractAndStore(ctx, docID, methods); err != nil {
			if ctx.Err() != nil {
				result.Failed++
				result.FailedDocIDs = append(result.FailedDocIDs, docID)
				result.ProcessingTime = time.Since(start)
				return result, ctx.Err()
			}
			s.log.Warn("batch extraction failed", zap.String("doc_id", docID), zap.Error(err))
			result.Failed++
			result.FailedDocIDs = append(result.FailedDocIDs, docID)
			continue
		}
		result.Successful++
	}

	result.ProcessingTime = time.Since(start)
	return result, nil
}

// hasOntology reports whether a stored record exists. Lookup failures
// count as absent; extraction's own store step surfaces real outages.
func (s *OntologyService) hasOntology(ctx context.Context, docID string) bool {
	_, err := s.index.GetDocument(ctx, docID)
	return err == nil
}

// GetDocumentOntology returns the stored record for a document.
func (s *OntologyService) GetDocumentOntology(ctx context.Context, docID string) (*domain.OntologyRecord, error) {
	rec, err := s.index.GetDocument(ctx, docID)
	if err != nil {
		return nil, fmt.Errorf("get ontology %s: %w", docID, err)
	}
	return rec, nil
}

// SearchByKeyword performs semantic keyword search: the term is embedded
// and matched against stored keyword vectors, so near-synonyms can hit.
func (s *OntologyService) SearchByKeyword(ctx context.Context, term string, topK int) ([]domain.KeywordHit, error) {
	term = strings.TrimSpace(term)
	if term == "" {
		return []domain.KeywordHit{}, nil
	}
	if topK <= 0 {
		topK = defaultQueryLimit
	}

	vectors, err := s.embedder.Embed(ctx, []string{term}, driven.PrefixQuery)
	if err != nil {
		return nil, fmt.Errorf("embed keyword: %w", err)
	}
	if len(vectors) != 1 {
		return nil, fmt.Errorf("embed keyword: %w", domain.ErrEmbeddingUnavailable)
	}

	hits, err := s.index.SearchKeywords(ctx, vectors[0], topK, s.cfg.KeywordThreshold)
	if err != nil {
		return nil, fmt.Errorf("search keywords: %w", err)
	}
	if hits == nil {
		hits = []domain.KeywordHit{}
	}
	return hits, nil
}

// SearchByDomain lists document records in one estimated domain.
func (s *OntologyService) SearchByDomain(ctx context.Context, estimatedDomain string, topK int) ([]domain.OntologyRecord, error) {
	if topK <= 0 {
		topK = defaultQueryLimit
	}
	recs, _, err := s.index.ScrollDocuments(ctx, estimatedDomain, topK, "")
	if err != nil {
		return nil, fmt.Errorf("scroll domain %s: %w", estimatedDomain, err)
	}
	if recs == nil {
		recs = []domain.OntologyRecord{}
	}
	return recs, nil
}

// GetSimilarDocuments returns documents whose summaries embed near the
// given document's, excluding the document itself.
func (s *OntologyService) GetSimilarDocuments(ctx context.Context, docID string, topK int) ([]domain.OntologyHit, error) {
	if topK <= 0 {
		topK = defaultQueryLimit
	}
	rec, err := s.index.GetDocument(ctx, docID)
	if err != nil {
		return nil, fmt.Errorf("get ontology %s: %w", docID, err)
	}

	vectors, err := s.embedder.Embed(ctx, []string{rec.SearchableContent}, driven.PrefixPassage)
	if err != nil {
		return nil, fmt.Errorf("embed summary: %w", err)
	}
	if len(vectors) != 1 {
		return nil, fmt.Errorf("embed summary: %w", domain.ErrEmbeddingUnavailable)
	}

	hits, err := s.index.SearchDocuments(ctx, vectors[0], topK, s.cfg.SimilarThreshold, docID)
	if err != nil {
		return nil, fmt.Errorf("search similar documents: %w", err)
	}
	if hits == nil {
		hits = []domain.OntologyHit{}
	}
	return hits, nil
}

// GetTopKeywords folds keyword records into per-term aggregates across
// documents. Terms fold case-insensitively; the first-seen spelling is
// displayed.
func (s *OntologyService) GetTopKeywords(ctx context.Context, limit int) ([]domain.KeywordAggregate, error) {
	if limit <= 0 {
		limit = defaultQueryLimit
	}

	recs, _, err := s.index.ScrollKeywords(ctx, limit*topKeywordsWindow, "")
	if err != nil {
		return nil, fmt.Errorf("scroll keywords: %w", err)
	}

	type aggregate struct {
		term       string
		frequency  int
		scoreSum   float64
		records    int
		docs       map[string]struct{}
		sources    []string
		categories map[string]struct{}
		domains    map[string]struct{}
	}
	byTerm := make(map[string]*aggregate)
	var order []string

	for _, rec := range recs {
		key := strings.ToLower(rec.Term)
		agg, ok := byTerm[key]
		if !ok {
			agg = &aggregate{
				term:       rec.Term,
				docs:       make(map[string]struct{}),
				categories: make(map[string]struct{}),
				domains:    make(map[string]struct{}),
			}
			byTerm[key] = agg
			order = append(order, key)
		}
		agg.frequency += rec.Frequency
		agg.scoreSum += rec.Score
		agg.records++
		if rec.DocID != "" {
			agg.docs[rec.DocID] = struct{}{}
		}
		if rec.Source != "" && len(agg.sources) < 5 && !slices.Contains(agg.sources, rec.Source) {
			agg.sources = append(agg.sources, rec.Source)
		}
		if rec.Category != "" {
			agg.categories[string(rec.Category)] = struct{}{}
		}
		if rec.EstimatedDomain != "" {
			agg.domains[rec.EstimatedDomain] = struct{}{}
		}
	}

	rows := make([]domain.KeywordAggregate, 0, len(byTerm))
	for _, key := range order {
		agg := byTerm[key]
		rows = append(rows, domain.KeywordAggregate{
			Term:           agg.term,
			TotalFrequency: agg.frequency,
			AvgScore:       agg.scoreSum / float64(agg.records),
			DocumentCount:  len(agg.docs),
			Categories:     sortedKeys(agg.categories),
			Domains:        sortedKeys(agg.domains),
			SampleSources:  agg.sources,
		})
	}
	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].DocumentCount != rows[j].DocumentCount {
			return rows[i].DocumentCount > rows[j].DocumentCount
		}
		return rows[i].TotalFrequency > rows[j].TotalFrequency
	})
	if len(rows) > limit {
		rows = rows[:limit]
	}
	return rows, nil
}

// Statistics summarises the ontology collections.
func (s *OntologyService) Statistics(ctx context.Context) (*domain.OntologyStatistics, error) {
	stats := &domain.OntologyStatistics{
		ByCategory: make(map[string]int),
		ByDomain:   make(map[string]int),
		ByLanguage: make(map[string]int),
	}

	var err error
	stats.DocumentRecords, err = s.index.CountDocuments(ctx)
	if err != nil {
		return nil, fmt.Errorf("count ontology records: %w", err)
	}
	stats.KeywordRecords, err = s.index.CountKeywords(ctx)
	if err != nil {
		return nil, fmt.Errorf("count keyword records: %w", err)
	}

	docs, _, err := s.index.ScrollDocuments(ctx, "", statsScanLimit, "")
	if err != nil {
		return nil, fmt.Errorf("scan ontology records: %w", err)
	}
	for _, rec := range docs {
		if rec.EstimatedDomain != "" {
			stats.ByDomain[rec.EstimatedDomain]++
		}
		if rec.Language != "" {
			stats.ByLanguage[string(rec.Language)]++
		}
	}

	kws, _, err := s.index.ScrollKeywords(ctx, statsScanLimit, "")
	if err != nil {
		return nil, fmt.Errorf("scan keyword records: %w", err)
	}
	for _, rec := range kws {
		if rec.Category != "" {
			stats.ByCategory[string(rec.Category)]++
		}
	}

	return stats, nil
}

// DeleteDocumentOntology removes a document's ontology and keyword
// records. The keyword delete runs first so a partial failure leaves a
// re-deletable main record rather than orphaned keywords.
func (s *OntologyService) DeleteDocumentOntology(ctx context.Context, docID string) error {
	if err := s.index.DeleteKeywordsByDoc(ctx, docID); err != nil {
		return fmt.Errorf("delete keyword records: %w", err)
	}
	if err := s.index.DeleteDocumentByDoc(ctx, docID); err != nil {
		return fmt.Errorf("delete ontology record: %w", err)
	}
	s.log.Info("deleted ontology", zap.String("doc_id", docID))
	return nil
}

// ClearAll drops both ontology collections. They are recreated lazily on
// the next store.
func (s *OntologyService) ClearAll(ctx context.Context) error {
	if err := s.index.Clear(ctx); err != nil {
		return fmt.Errorf("clear ontology collections: %w", err)
	}
	s.log.Info("cleared ontology collections")
	return nil
}

// extract runs the three extraction stages over the assembled text and
// times each one.
func (s *OntologyService) extract(ctx context.Context, docID, source, text string, chunkContents []string, methods []string) (*domain.OntologyResult, error) {
	start := time.Now()

	kwStart := time.Now()
	seeds := s.statisticalSeeds(ctx, text)

	byMethod := make(map[domain.ExtractionMethod][]domain.Keyword)
	for _, name := range methods {
		method := domain.ExtractionMethod(name)
		if method == domain.MethodStatistical {
			byMethod[method] = seeds
			continue
		}
		extractor, ok := s.extractors.Get(method)
		if !ok {
			s.log.Warn("unknown extraction method", zap.String("method", name))
			continue
		}
		kws, err := extractor.Extract(ctx, text, seeds, s.cfg.TopK)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			s.log.Warn("keyword extraction failed", zap.String("method", name), zap.Error(err))
			continue
		}
		byMethod[method] = kws
	}
	merged := keywords.Merge(byMethod, s.cfg.TopK)
	keywordsTime := time.Since(kwStart)

	metaStart := time.Now()
	meta := s.metadata.Extract(ctx, text, source)
	metadataTime := time.Since(metaStart)

	ctxStart := time.Now()
	info := s.contextExtractor.Extract(ctx, text, chunkContents)
	contextTime := time.Since(ctxStart)

	return &domain.OntologyResult{
		DocID:       docID,
		Source:      source,
		Keywords:    merged,
		Metadata:    meta,
		Context:     info,
		ExtractedAt: time.Now().UTC(),
		Stats: domain.ProcessingStats{
			TotalTime:    time.Since(start),
			KeywordsTime: keywordsTime,
			MetadataTime: metadataTime,
			ContextTime:  contextTime,
			KeywordCount: len(merged),
			EntityCount:  len(meta.Entities),
			TopicCount:   len(info.MainTopics),
		},
	}, nil
}

// statisticalSeeds runs the statistical strategy ahead of the requested
// methods so every strategy sees the same frequency-based context.
func (s *OntologyService) statisticalSeeds(ctx context.Context, text string) []domain.Keyword {
	extractor, ok := s.extractors.Get(domain.MethodStatistical)
	if !ok {
		return nil
	}
	seeds, err := extractor.Extract(ctx, text, nil, s.cfg.SeedTopK)
	if err != nil {
		s.log.Warn("statistical seed extraction failed", zap.Error(err))
		return nil
	}
	return seeds
}

// store persists one extraction result, fully replacing prior records.
func (s *OntologyService) store(ctx context.Context, result *domain.OntologyResult) error {
	if err := s.index.EnsureReady(ctx); err != nil {
		return fmt.Errorf("prepare ontology collections: %w", err)
	}
	if err := s.index.DeleteKeywordsByDoc(ctx, result.DocID); err != nil {
		return fmt.Errorf("clear keyword records: %w", err)
	}
	if err := s.index.DeleteDocumentByDoc(ctx, result.DocID); err != nil {
		return fmt.Errorf("clear ontology record: %w", err)
	}

	rec := buildRecord(result)
	vectors, err := s.embedder.Embed(ctx, []string{rec.SearchableContent}, driven.PrefixPassage)
	if err != nil {
		return fmt.Errorf("embed summary: %w", err)
	}
	if len(vectors) != 1 {
		return fmt.Errorf("embed summary: %w", domain.ErrEmbeddingUnavailable)
	}
	if err := s.index.UpsertDocument(ctx, rec, vectors[0]); err != nil {
		return fmt.Errorf("store ontology record: %w", err)
	}

	keywordRecs := buildKeywordRecords(result)
	if len(keywordRecs) == 0 {
		return nil
	}
	terms := make([]string, len(keywordRecs))
	for i, kr := range keywordRecs {
		terms[i] = kr.Term
	}
	// One embedding call for all terms; the index batches the upsert.
	termVecs, err := s.embedder.Embed(ctx, terms, driven.PrefixQuery)
	if err != nil {
		return fmt.Errorf("embed keywords: %w", err)
	}
	if len(termVecs) != len(keywordRecs) {
		return fmt.Errorf("embed keywords: got %d vectors for %d terms: %w",
			len(termVecs), len(keywordRecs), domain.ErrEmbeddingUnavailable)
	}
	if err := s.index.UpsertKeywords(ctx, keywordRecs, termVecs); err != nil {
		return fmt.Errorf("store keyword records: %w", err)
	}
	return nil
}

// buildRecord shapes an extraction result into the stored document-level
// record.
func buildRecord(result *domain.OntologyResult) domain.OntologyRecord {
	categoryCounts := make(map[string]int)
	for _, kw := range result.Keywords {
		categoryCounts[string(kw.Category)]++
	}
	entityTypes := make(map[string]int)
	for _, e := range result.Metadata.Entities {
		entityTypes[e.Label]++
	}

	return domain.OntologyRecord{
		DocID:       result.DocID,
		Source:      result.Source,
		ExtractedAt: result.ExtractedAt,

		Language:        result.Metadata.Language,
		DocumentType:    result.Metadata.DocumentType,
		EstimatedDomain: result.Metadata.EstimatedDomain,

		TextStats: result.Metadata.TextStats,
		Structure: result.Metadata.Structure,

		KeywordCount:   len(result.Keywords),
		TopKeywords:    result.Keywords[:min(recordTopKeywords, len(result.Keywords))],
		CategoryCounts: categoryCounts,

		EntityCount: len(result.Metadata.Entities),
		EntityTypes: entityTypes,
		Entities:    result.Metadata.Entities[:min(recordEntities, len(result.Metadata.Entities))],

		MainTopics:       result.Context.MainTopics,
		RelatedConcepts:  result.Context.RelatedConcepts,
		DomainIndicators: result.Context.DomainIndicators,
		ClusterCount:     len(result.Context.Clusters),

		Stats: result.Stats,

		SearchableContent: summaryContent(result),
	}
}

// buildKeywordRecords shapes merged keywords into stored keyword records.
func buildKeywordRecords(result *domain.OntologyResult) []domain.KeywordRecord {
	concepts := result.Context.RelatedConcepts
	concepts = concepts[:min(keywordConcepts, len(concepts))]

	recs := make([]domain.KeywordRecord, 0, len(result.Keywords))
	for _, kw := range result.Keywords {
		recs = append(recs, domain.KeywordRecord{
			Term:      kw.Term,
			Score:     kw.Score,
			Frequency: kw.Frequency,
			Category:  kw.Category,
			Positions: kw.Positions,

			DocID:           result.DocID,
			Source:          result.Source,
			DocumentType:    result.Metadata.DocumentType,
			EstimatedDomain: result.Metadata.EstimatedDomain,
			Language:        result.Metadata.Language,

			RelatedTopics:   result.Context.MainTopics,
			RelatedConcepts: concepts,

			ExtractedAt: result.ExtractedAt,
		})
	}
	return recs
}

// summaryContent synthesises the Korean summary string whose embedding
// becomes the document record's vector. Absent sections are omitted.
func summaryContent(result *domain.OntologyResult) string {
	parts := []string{"문서: " + result.Source}

	if result.Metadata.DocumentType != "" {
		parts = append(parts, "유형: "+result.Metadata.DocumentType)
	}
	if result.Metadata.EstimatedDomain != "" {
		parts = append(parts, "도메인: "+result.Metadata.EstimatedDomain)
	}
	if len(result.Keywords) > 0 {
		kws := result.Keywords[:min(summaryKeywords, len(result.Keywords))]
		terms := make([]string, len(kws))
		for i, kw := range kws {
			terms[i] = kw.Term
		}
		parts = append(parts, "키워드: "+strings.Join(terms, ", "))
	}
	if len(result.Metadata.Entities) > 0 {
		ents := result.Metadata.Entities[:min(summaryEntities, len(result.Metadata.Entities))]
		texts := make([]string, len(ents))
		for i, e := range ents {
			texts[i] = e.Text
		}
		parts = append(parts, "개체명: "+strings.Join(texts, ", "))
	}
	if len(result.Context.MainTopics) > 0 {
		parts = append(parts, "주제: "+strings.Join(result.Context.MainTopics, ", "))
	}
	if len(result.Context.RelatedConcepts) > 0 {
		concepts := result.Context.RelatedConcepts
		concepts = concepts[:min(summaryConcepts, len(concepts))]
		parts = append(parts, "관련개념: "+strings.Join(concepts, ", "))
	}

	return strings.Join(parts, " | ")
}

// sortedKeys returns a set's members in sorted order.
func sortedKeys(set map[string]struct{}) []string {
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
