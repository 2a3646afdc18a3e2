package driven

import "context"

// EmbedPrefix tags the direction of an embedding request. E5-family
// models encode queries and passages differently; the adapter rewrites
// the input accordingly ("query: ...", "passage: ...").
type EmbedPrefix string

// Embedding direction prefixes.
const (
	// PrefixPassage marks stored document content.
	PrefixPassage EmbedPrefix = "passage"

	// PrefixQuery marks search input.
	PrefixQuery EmbedPrefix = "query"
)

// Embedder generates vector embeddings from text.
//
// Implementations may include:
//   - Ollama-hosted multilingual E5 models (prefix-aware)
//   - OpenAI-compatible embedding endpoints
//   - A caching wrapper around either
type Embedder interface {
	// Embed generates embeddings for the given texts with the given
	// direction prefix. Output order matches input order and the vector
	// dimensionality is fixed per model.
	Embed(ctx context.Context, texts []string, prefix EmbedPrefix) ([][]float32, error)

	// Dimensions returns the embedding vector size (e.g. 1024).
	// This must match the vector collections' configured dimension.
	Dimensions() int

	// ModelName returns the name of the embedding model being used.
	ModelName() string

	// Ping validates the service is reachable with a lightweight request.
	Ping(ctx context.Context) error

	// Close releases resources.
	Close() error
}
