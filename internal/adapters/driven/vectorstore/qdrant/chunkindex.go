package qdrant

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/hanmaru-labs/hanrag/internal/core/domain"
	"github.com/hanmaru-labs/hanrag/internal/core/ports/driven"
)

// DefaultChunkCollection is the chunk collection name.
const DefaultChunkCollection = "chunks"

// scrollPageSize bounds one scroll request.
const scrollPageSize = 256

// Ensure ChunkIndex implements the interface.
var _ driven.ChunkIndex = (*ChunkIndex)(nil)

// ChunkIndex stores chunk vectors in a Qdrant collection. Chunk ids are
// the point ids, so re-upserting a chunk overwrites it.
type ChunkIndex struct {
	client     *Client
	collection string
	dimensions int
}

// NewChunkIndex creates a chunk index over the given client.
// collection "" selects DefaultChunkCollection.
func NewChunkIndex(client *Client, collection string, dimensions int) *ChunkIndex {
	if collection == "" {
		collection = DefaultChunkCollection
	}
	return &ChunkIndex{
		client:     client,
		collection: collection,
		dimensions: dimensions,
	}
}

// chunkPayload is the stored form of a chunk.
type chunkPayload struct {
	Content     string            `json:"content"`
	DocID       string            `json:"doc_id"`
	Source      string            `json:"source"`
	FileType    string            `json:"file_type"`
	ChunkIndex  int               `json:"chunk_index"`
	TotalChunks int               `json:"total_chunks"`
	StartOffset int               `json:"start_offset"`
	ChunkType   string            `json:"chunk_type"`
	HasKorean   bool              `json:"has_korean"`
	HasEnglish  bool              `json:"has_english"`
	UploadedAt  string            `json:"uploaded_at"`
	Meta        map[string]string `json:"meta,omitempty"`
}

func encodeChunk(ch domain.Chunk) chunkPayload {
	uploaded := ""
	if !ch.UploadedAt.IsZero() {
		uploaded = ch.UploadedAt.UTC().Format(time.RFC3339)
	}
	return chunkPayload{
		Content:     ch.Content,
		DocID:       ch.DocID,
		Source:      ch.Source,
		FileType:    ch.FileType,
		ChunkIndex:  ch.Index,
		TotalChunks: ch.TotalChunks,
		StartOffset: ch.StartOffset,
		ChunkType:   ch.Type,
		HasKorean:   ch.HasKorean,
		HasEnglish:  ch.HasEnglish,
		UploadedAt:  uploaded,
		Meta:        ch.Meta,
	}
}

func (p chunkPayload) decode(id string) domain.Chunk {
	uploaded, _ := time.Parse(time.RFC3339, p.UploadedAt)
	return domain.Chunk{
		ID:          id,
		DocID:       p.DocID,
		Content:     p.Content,
		Source:      p.Source,
		FileType:    p.FileType,
		Index:       p.ChunkIndex,
		TotalChunks: p.TotalChunks,
		StartOffset: p.StartOffset,
		Type:        p.ChunkType,
		HasKorean:   p.HasKorean,
		HasEnglish:  p.HasEnglish,
		UploadedAt:  uploaded,
		Meta:        p.Meta,
	}
}

func buildChunkFilter(cf driven.ChunkFilter) *filter {
	f := &filter{}
	if cf.HasKorean != nil {
		f.Must = append(f.Must, matchCond("has_korean", *cf.HasKorean))
	}
	if cf.HasEnglish != nil {
		f.Must = append(f.Must, matchCond("has_english", *cf.HasEnglish))
	}
	if cf.Source != "" {
		f.Must = append(f.Must, matchCond("source", cf.Source))
	}
	if cf.FileType != "" {
		f.Must = append(f.Must, matchCond("file_type", cf.FileType))
	}
	if cf.DocID != "" {
		f.Must = append(f.Must, matchCond("doc_id", cf.DocID))
	}
	if !cf.DateFrom.IsZero() {
		f.Must = append(f.Must, condition{
			Key:   "uploaded_at",
			Range: &rangeValue{GTE: cf.DateFrom.UTC().Format(time.RFC3339)},
		})
	}
	if len(cf.ExcludeIDs) > 0 {
		f.MustNot = append(f.MustNot, condition{HasID: cf.ExcludeIDs})
	}
	return f
}

// EnsureReady creates the chunk collection if it does not exist.
func (i *ChunkIndex) EnsureReady(ctx context.Context) error {
	return i.client.EnsureCollection(ctx, i.collection, i.dimensions)
}

// Upsert stores chunk points, overwriting existing ids.
func (i *ChunkIndex) Upsert(ctx context.Context, points []driven.ChunkPoint) error {
	if len(points) == 0 {
		return nil
	}
	qpoints := make([]point, len(points))
	for n, p := range points {
		qpoints[n] = point{
			ID:      p.Chunk.ID,
			Vector:  p.Vector,
			Payload: encodeChunk(p.Chunk),
		}
	}
	if err := i.client.Upsert(ctx, i.collection, qpoints); err != nil {
		return fmt.Errorf("upsert %d chunks: %w", len(points), err)
	}
	return nil
}

// Search returns the nearest chunks to the query vector.
func (i *ChunkIndex) Search(ctx context.Context, vector []float32, q driven.ChunkQuery) ([]domain.SearchHit, error) {
	scored, err := i.client.Search(ctx, i.collection, vector, q.Limit, q.ScoreThreshold, buildChunkFilter(q.Filter))
	if err != nil {
		return nil, fmt.Errorf("search chunks: %w", err)
	}

	hits := make([]domain.SearchHit, 0, len(scored))
	for _, sp := range scored {
		var payload chunkPayload
		if err := json.Unmarshal(sp.Payload, &payload); err != nil {
			return nil, fmt.Errorf("decode chunk payload %s: %w", sp.ID, err)
		}
		hits = append(hits, domain.SearchHit{
			ID:    sp.ID,
			Score: sp.Score,
			Chunk: payload.decode(sp.ID),
		})
	}
	return hits, nil
}

// Retrieve fetches a stored point by chunk id, including its vector.
func (i *ChunkIndex) Retrieve(ctx context.Context, chunkID string) (*driven.ChunkPoint, error) {
	stored, err := i.client.Retrieve(ctx, i.collection, []string{chunkID}, true)
	if err != nil {
		return nil, fmt.Errorf("retrieve chunk: %w", err)
	}
	if len(stored) == 0 {
		return nil, fmt.Errorf("chunk %s: %w", chunkID, domain.ErrNotFound)
	}

	var payload chunkPayload
	if err := json.Unmarshal(stored[0].Payload, &payload); err != nil {
		return nil, fmt.Errorf("decode chunk payload %s: %w", chunkID, err)
	}
	return &driven.ChunkPoint{
		Chunk:  payload.decode(stored[0].ID),
		Vector: stored[0].Vector,
	}, nil
}

// ScrollByDoc returns up to limit chunks of one document in index order.
func (i *ChunkIndex) ScrollByDoc(ctx context.Context, docID string, limit int) ([]domain.Chunk, error) {
	f := buildChunkFilter(driven.ChunkFilter{DocID: docID})

	var chunks []domain.Chunk
	offset := ""
	for len(chunks) < limit {
		page := limit - len(chunks)
		if page > scrollPageSize {
			page = scrollPageSize
		}
		stored, next, err := i.client.Scroll(ctx, i.collection, f, page, offset)
		if err != nil {
			return nil, fmt.Errorf("scroll chunks: %w", err)
		}
		for _, sp := range stored {
			var payload chunkPayload
			if err := json.Unmarshal(sp.Payload, &payload); err != nil {
				return nil, fmt.Errorf("decode chunk payload %s: %w", sp.ID, err)
			}
			chunks = append(chunks, payload.decode(sp.ID))
		}
		if next == "" {
			break
		}
		offset = next
	}

	// Scroll order follows point ids; restore document order.
	sort.Slice(chunks, func(a, b int) bool { return chunks[a].Index < chunks[b].Index })
	return chunks, nil
}

// DeleteByDoc removes every chunk belonging to the document. Deleting
// from a missing collection is a no-op.
func (i *ChunkIndex) DeleteByDoc(ctx context.Context, docID string) error {
	err := i.client.DeleteByFilter(ctx, i.collection, buildChunkFilter(driven.ChunkFilter{DocID: docID}))
	if errors.Is(err, domain.ErrCollectionMissing) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("delete chunks of %s: %w", docID, err)
	}
	return nil
}

// Count returns the number of stored chunks. A missing collection
// counts as zero.
func (i *ChunkIndex) Count(ctx context.Context) (int, error) {
	count, err := i.client.Count(ctx, i.collection, nil)
	if errors.Is(err, domain.ErrCollectionMissing) {
		return 0, nil
	}
	return count, err
}

// Info describes the chunk collection. Returns
// domain.ErrCollectionMissing before first ingestion.
func (i *ChunkIndex) Info(ctx context.Context) (driven.CollectionInfo, error) {
	points, dims, err := i.client.CollectionInfo(ctx, i.collection)
	if err != nil {
		return driven.CollectionInfo{}, err
	}
	return driven.CollectionInfo{
		Name:       i.collection,
		PointCount: points,
		Dimensions: dims,
	}, nil
}

// Close releases resources. The shared HTTP client needs no cleanup.
func (i *ChunkIndex) Close() error {
	return nil
}
