// Package ai assembles the provider-backed adapters: embedding,
// generation, and the vector indexes that store the embeddings.
package ai

import (
	"fmt"

	"go.uber.org/zap"

	cachememory "github.com/hanmaru-labs/hanrag/internal/adapters/driven/cache/memory"
	cacheredis "github.com/hanmaru-labs/hanrag/internal/adapters/driven/cache/redis"
	"github.com/hanmaru-labs/hanrag/internal/adapters/driven/embedding/cached"
	ollamaembed "github.com/hanmaru-labs/hanrag/internal/adapters/driven/embedding/ollama"
	openaiembed "github.com/hanmaru-labs/hanrag/internal/adapters/driven/embedding/openai"
	ollamallm "github.com/hanmaru-labs/hanrag/internal/adapters/driven/llm/ollama"
	openaillm "github.com/hanmaru-labs/hanrag/internal/adapters/driven/llm/openai"
	vectormemory "github.com/hanmaru-labs/hanrag/internal/adapters/driven/vectorstore/memory"
	"github.com/hanmaru-labs/hanrag/internal/adapters/driven/vectorstore/qdrant"
	"github.com/hanmaru-labs/hanrag/internal/config"
	"github.com/hanmaru-labs/hanrag/internal/core/ports/driven"
)

// Components bundles the provider-backed adapters the core services
// depend on. Construction does not require the providers to be up:
// only a configured Redis is probed, and that falls back to the
// in-process cache. Everything else surfaces connectivity problems on
// first use or through a health check.
type Components struct {
	// Embedder is the configured embedding provider wrapped in the
	// vector cache.
	Embedder driven.Embedder

	// Generator backs the LLM keyword strategy. Nil when
	// ontology.use_llm is off.
	Generator driven.Generator

	// Chunks is the chunk vector index.
	Chunks driven.ChunkIndex

	// Ontology is the two-collection ontology index.
	Ontology driven.OntologyIndex
}

// Close releases all resources held by the components.
func (c *Components) Close() {
	if c.Embedder != nil {
		c.Embedder.Close() //nolint:errcheck
	}
	if c.Generator != nil {
		c.Generator.Close() //nolint:errcheck
	}
}

// Init builds the components the configuration selects: OpenAI
// adapters when an API key is set and local Ollama otherwise, Qdrant
// indexes when a base URL is set and in-memory otherwise.
func Init(cfg *config.Config, log *zap.Logger) (*Components, error) {
	if log == nil {
		log = zap.NewNop()
	}

	embedder, err := newEmbedder(cfg, log)
	if err != nil {
		return nil, err
	}

	generator, err := newGenerator(cfg, log)
	if err != nil {
		embedder.Close() //nolint:errcheck
		return nil, err
	}

	chunks, ontology := newVectorStores(cfg, embedder.Dimensions(), log)

	return &Components{
		Embedder:  embedder,
		Generator: generator,
		Chunks:    chunks,
		Ontology:  ontology,
	}, nil
}

// newEmbedder selects the embedding provider and wraps it in the
// vector cache.
func newEmbedder(cfg *config.Config, log *zap.Logger) (driven.Embedder, error) {
	var base driven.Embedder
	if cfg.UseOpenAI() {
		svc, err := openaiembed.NewEmbeddingService(openaiembed.Config{
			APIKey:  cfg.OpenAI.APIKey,
			BaseURL: cfg.OpenAI.BaseURL,
			Model:   cfg.OpenAI.EmbeddingModel,
		})
		if err != nil {
			return nil, fmt.Errorf("init openai embedder: %w", err)
		}
		base = svc
	} else {
		base = ollamaembed.NewEmbeddingService(ollamaembed.Config{
			BaseURL: cfg.Ollama.BaseURL,
			Model:   cfg.Ollama.EmbeddingModel,
			Timeout: cfg.Ollama.Timeout,
		})
	}

	return cached.New(base, newCache(cfg, log), log), nil
}

// newCache connects to Redis when configured, falling back to the
// in-process LRU on any connection failure.
func newCache(cfg *config.Config, log *zap.Logger) driven.EmbeddingCache {
	if !cfg.UseRedis() {
		return cachememory.NewCache(0)
	}

	redisCache, err := cacheredis.NewCache(cacheredis.Config{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
		TTL:      cfg.Redis.TTL,
	})
	if err != nil {
		log.Warn("redis unreachable, using in-process cache", zap.Error(err))
		return cachememory.NewCache(0)
	}
	return redisCache
}

// newGenerator returns the text generator backing the LLM keyword
// strategy, or nil when ontology.use_llm is off.
func newGenerator(cfg *config.Config, log *zap.Logger) (driven.Generator, error) {
	if !cfg.Ontology.UseLLM {
		return nil, nil
	}

	if cfg.UseOpenAI() {
		gen, err := openaillm.NewGenerator(openaillm.Config{
			APIKey:  cfg.OpenAI.APIKey,
			BaseURL: cfg.OpenAI.BaseURL,
			Model:   cfg.OpenAI.LLMModel,
		})
		if err != nil {
			return nil, fmt.Errorf("init openai generator: %w", err)
		}
		return gen, nil
	}

	return ollamallm.NewGenerator(ollamallm.Config{
		BaseURL: cfg.Ollama.BaseURL,
		Model:   cfg.Ollama.LLMModel,
	}, log), nil
}

// newVectorStores returns the chunk and ontology indexes, backed by
// Qdrant when configured and in-memory otherwise.
func newVectorStores(cfg *config.Config, dimensions int, log *zap.Logger) (driven.ChunkIndex, driven.OntologyIndex) {
	if !cfg.UseQdrant() {
		log.Info("no qdrant configured, using in-memory vector store")
		return vectormemory.NewChunkIndex(dimensions), vectormemory.NewOntologyIndex(dimensions)
	}

	client := qdrant.NewClient(qdrant.Config{
		BaseURL: cfg.Qdrant.BaseURL,
		APIKey:  cfg.Qdrant.APIKey,
	}, log)

	var chunkCol, ontologyCol, keywordCol string
	if cfg.Qdrant.Collection != "" {
		chunkCol = cfg.Qdrant.Collection
		ontologyCol = cfg.Qdrant.Collection + "_ontology"
		keywordCol = cfg.Qdrant.Collection + "_keywords"
	}

	return qdrant.NewChunkIndex(client, chunkCol, dimensions),
		qdrant.NewOntologyIndex(client, ontologyCol, keywordCol, dimensions)
}
