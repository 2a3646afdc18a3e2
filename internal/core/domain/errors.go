package domain

import "errors"

// Sentinel errors for the core domain. Adapters translate their backend
// failures into these; services and driving surfaces match them with
// errors.Is rather than inspecting messages.
var (
	// ErrNotFound indicates the requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrAlreadyExists indicates an entity with the same identity exists.
	ErrAlreadyExists = errors.New("already exists")

	// ErrInvalidInput indicates the input failed validation.
	ErrInvalidInput = errors.New("invalid input")

	// ErrUnsupportedType indicates the file type has no parser strategy.
	ErrUnsupportedType = errors.New("unsupported file type")

	// ErrEmbeddingUnavailable indicates the embedding provider cannot be reached.
	ErrEmbeddingUnavailable = errors.New("embedding service unavailable")

	// ErrVectorStoreUnavailable indicates the vector store cannot be reached.
	ErrVectorStoreUnavailable = errors.New("vector store unavailable")

	// ErrLLMUnavailable indicates the text-generation provider cannot be
	// reached. Keyword extraction treats this as best-effort and yields
	// zero keywords rather than failing the pipeline.
	ErrLLMUnavailable = errors.New("llm service unavailable")

	// ErrCacheMiss indicates a cache lookup found no entry.
	ErrCacheMiss = errors.New("cache miss")

	// ErrCollectionMissing indicates a vector collection does not exist yet.
	ErrCollectionMissing = errors.New("collection missing")
)
