package driven

import (
	"context"
	"time"

	"github.com/hanmaru-labs/hanrag/internal/core/domain"
)

// ChunkPoint pairs a chunk with its embedding for storage.
type ChunkPoint struct {
	Chunk  domain.Chunk
	Vector []float32
}

// ChunkFilter restricts a chunk search or scroll. Zero values mean
// "no restriction". Services build filters; adapters translate them
// into their backend's filter syntax exactly once.
type ChunkFilter struct {
	// HasKorean, when set, requires the chunk language flag to match.
	HasKorean *bool

	// HasEnglish, when set, requires the chunk language flag to match.
	HasEnglish *bool

	// Source restricts to chunks from one source filename.
	Source string

	// FileType restricts to one file type.
	FileType string

	// DocID restricts to one document's chunks.
	DocID string

	// DateFrom restricts to chunks uploaded at or after this time.
	DateFrom time.Time

	// ExcludeIDs removes specific chunk ids from the results.
	ExcludeIDs []string
}

// ChunkQuery configures a vector search against the chunk collection.
type ChunkQuery struct {
	Filter ChunkFilter

	// Limit is the maximum number of hits to return.
	Limit int

	// ScoreThreshold drops hits scoring below it when > 0.
	ScoreThreshold float64
}

// CollectionInfo describes a vector collection.
type CollectionInfo struct {
	Name       string
	PointCount int
	Dimensions int
}

// ChunkIndex stores and searches chunk vectors.
// The collection is created lazily with cosine distance and the
// embedder's dimensionality.
type ChunkIndex interface {
	// EnsureReady creates the chunk collection if it does not exist.
	EnsureReady(ctx context.Context) error

	// Upsert stores chunk points, overwriting existing ids.
	Upsert(ctx context.Context, points []ChunkPoint) error

	// Search returns the nearest chunks to the query vector under the
	// given filter, best first. Empty result sets are not an error.
	Search(ctx context.Context, vector []float32, q ChunkQuery) ([]domain.SearchHit, error)

	// Retrieve fetches a stored point by chunk id, including its vector.
	// Returns domain.ErrNotFound when absent.
	Retrieve(ctx context.Context, chunkID string) (*ChunkPoint, error)

	// ScrollByDoc returns up to limit chunks of one document in index order.
	ScrollByDoc(ctx context.Context, docID string, limit int) ([]domain.Chunk, error)

	// DeleteByDoc removes every chunk belonging to the document.
	DeleteByDoc(ctx context.Context, docID string) error

	// Count returns the number of stored chunks.
	Count(ctx context.Context) (int, error)

	// Info describes the chunk collection.
	Info(ctx context.Context) (CollectionInfo, error)

	// Close releases resources.
	Close() error
}
