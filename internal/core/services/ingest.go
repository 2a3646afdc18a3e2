package services

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/hanmaru-labs/hanrag/internal/core/domain"
	"github.com/hanmaru-labs/hanrag/internal/core/ports/driven"
	"github.com/hanmaru-labs/hanrag/internal/core/ports/driving"
)

// Ensure IngestService implements the interface.
var _ driving.IngestService = (*IngestService)(nil)

// IngestService turns files into stored, embedded chunks and keeps the
// document registry in step with the chunk collection.
type IngestService struct {
	parser   driven.FileParser
	pipeline driven.PostProcessorPipeline
	embedder driven.Embedder
	chunks   driven.ChunkIndex
	registry driven.DocumentRegistry
	ontology driven.OntologyIndex
	log      *zap.Logger
}

// NewIngestService creates the ingestion service.
// The ontology index is optional (can be nil); without it, deletes skip
// the ontology collections.
func NewIngestService(
	parser driven.FileParser,
	pipeline driven.PostProcessorPipeline,
	embedder driven.Embedder,
	chunks driven.ChunkIndex,
	registry driven.DocumentRegistry,
	ontology driven.OntologyIndex,
	log *zap.Logger,
) *IngestService {
	if log == nil {
		log = zap.NewNop()
	}
	return &IngestService{
		parser:   parser,
		pipeline: pipeline,
		embedder: embedder,
		chunks:   chunks,
		registry: registry,
		ontology: ontology,
		log:      log,
	}
}

// IngestFile parses, cleans, chunks, embeds, and stores one file.
// A parse failure still succeeds with a single fallback chunk so the
// document remains visible; only infrastructure failures return errors.
func (s *IngestService) IngestFile(ctx context.Context, path string) (*driving.IngestResult, error) {
	outcome, err := s.parser.Parse(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}

	docID := uuid.New().String()
	filename := filepath.Base(path)
	now := time.Now().UTC()

	var (
		chunkList []domain.Chunk
		charCount int
	)
	if outcome.Fallback {
		s.log.Warn("parse failed, storing fallback chunk",
			zap.String("file", filename),
			zap.String("reason", outcome.FailureReason))
		chunkList = []domain.Chunk{fallbackChunk(docID, filename, outcome)}
		charCount = utf8.RuneCountInString(outcome.Text)
	} else {
		parsed := &driven.ParsedText{
			DocID:    docID,
			Source:   filename,
			FileType: outcome.FileType,
			Text:     outcome.Text,
		}
		chunkList, err = s.pipeline.Process(ctx, parsed)
		if err != nil {
			return nil, fmt.Errorf("process %s: %w", filename, err)
		}
		if len(chunkList) == 0 {
			return nil, fmt.Errorf("%s produced no chunks: %w", filename, domain.ErrInvalidInput)
		}
		// The cleaner stage rewrites parsed.Text in place; count after.
		charCount = utf8.RuneCountInString(parsed.Text)
	}

	for i := range chunkList {
		chunkList[i].UploadedAt = now
	}

	texts := make([]string, len(chunkList))
	for i, c := range chunkList {
		texts[i] = c.Content
	}
	vectors, err := s.embedder.Embed(ctx, texts, driven.PrefixPassage)
	if err != nil {
		return nil, fmt.Errorf("embed chunks: %w", err)
	}
	if len(vectors) != len(chunkList) {
		return nil, fmt.Errorf("embed chunks: got %d vectors for %d chunks: %w",
			len(vectors), len(chunkList), domain.ErrEmbeddingUnavailable)
	}

	if err := s.chunks.EnsureReady(ctx); err != nil {
		return nil, fmt.Errorf("prepare chunk collection: %w", err)
	}
	points := make([]driven.ChunkPoint, len(chunkList))
	for i, c := range chunkList {
		points[i] = driven.ChunkPoint{Chunk: c, Vector: vectors[i]}
	}
	if err := s.chunks.Upsert(ctx, points); err != nil {
		return nil, fmt.Errorf("store chunks: %w", err)
	}

	doc := domain.Document{
		ID:         docID,
		Filename:   filename,
		FileType:   outcome.FileType,
		SizeBytes:  fileSize(path),
		ChunkCount: len(chunkList),
		CharCount:  charCount,
		Status:     domain.StatusIndexed,
		UploadedAt: now,
	}
	if outcome.Fallback {
		doc.Status = domain.StatusFallback
	}
	if err := s.registry.SaveDocument(ctx, doc); err != nil {
		return nil, fmt.Errorf("register document: %w", err)
	}

	s.log.Info("ingested file",
		zap.String("doc_id", docID),
		zap.String("file", filename),
		zap.Int("chunks", len(chunkList)),
		zap.Bool("fallback", outcome.Fallback))

	return &driving.IngestResult{
		DocID:      docID,
		Filename:   filename,
		ChunkCount: len(chunkList),
		CharCount:  charCount,
		Fallback:   outcome.Fallback,
	}, nil
}

// DeleteDocument removes a document's chunks, ontology records, and
// registry entry. The registry record goes last so a partial failure
// leaves the document listed and the delete retryable.
func (s *IngestService) DeleteDocument(ctx context.Context, docID string) error {
	doc, err := s.registry.GetDocument(ctx, docID)
	if err != nil {
		return fmt.Errorf("get document %s: %w", docID, err)
	}

	if err := s.chunks.DeleteByDoc(ctx, docID); err != nil {
		return fmt.Errorf("delete chunks: %w", err)
	}
	if s.ontology != nil {
		if err := s.ontology.DeleteKeywordsByDoc(ctx, docID); err != nil {
			return fmt.Errorf("delete keyword records: %w", err)
		}
		if err := s.ontology.DeleteDocumentByDoc(ctx, docID); err != nil {
			return fmt.Errorf("delete ontology record: %w", err)
		}
	}
	if err := s.registry.DeleteDocument(ctx, docID); err != nil {
		return fmt.Errorf("deregister document: %w", err)
	}

	s.log.Info("deleted document",
		zap.String("doc_id", docID),
		zap.String("file", doc.Filename))
	return nil
}

// ListDocuments returns all registered documents, most recent first.
func (s *IngestService) ListDocuments(ctx context.Context) ([]domain.Document, error) {
	return s.registry.ListDocuments(ctx)
}

// SupportedExtensions returns the file extensions ingestion accepts.
func (s *IngestService) SupportedExtensions() []string {
	return s.parser.Supported()
}

// fallbackChunk wraps the parser's placeholder text as the document's
// single stored chunk. It is embedded and indexed like real content so
// the document stays discoverable, but carries the fallback type so
// consumers can tell it apart.
func fallbackChunk(docID, filename string, outcome driven.ParseOutcome) domain.Chunk {
	return domain.Chunk{
		ID:          uuid.New().String(),
		DocID:       docID,
		Content:     outcome.Text,
		Source:      filename,
		FileType:    outcome.FileType,
		Index:       0,
		TotalChunks: 1,
		Type:        domain.ChunkTypeFallback,
		HasKorean:   domain.HasHangul(outcome.Text),
		HasEnglish:  domain.HasLatin(outcome.Text),
		Meta:        map[string]string{"failure_reason": outcome.FailureReason},
	}
}

// fileSize returns the source file size, zero when unreadable.
func fileSize(path string) int64 {
	info, err := os.Stat(path)
	if err != nil {
		return 0
	}
	return info.Size()
}
