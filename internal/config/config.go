// Package config resolves the typed runtime configuration.
//
// Values layer as: environment variable, then persisted config store,
// then zero. Adapters apply their own defaults to zero values, so the
// config file only needs the settings the operator actually changed.
package config

import (
	"os"
	"time"

	"github.com/hanmaru-labs/hanrag/internal/core/ports/driven"
)

// Ollama configures the local Ollama adapters.
type Ollama struct {
	BaseURL        string
	EmbeddingModel string
	LLMModel       string
	Timeout        time.Duration
}

// OpenAI configures the OpenAI-compatible adapters. Setting an API key
// switches embedding and generation from Ollama to this provider.
type OpenAI struct {
	APIKey         string
	BaseURL        string
	EmbeddingModel string
	LLMModel       string
}

// Qdrant configures the vector store connection. With no base URL the
// application falls back to the in-memory store.
type Qdrant struct {
	BaseURL    string
	Collection string
	APIKey     string
}

// Redis configures the embedding cache. With no address the
// application falls back to the in-process LRU cache.
type Redis struct {
	Addr     string
	Password string
	DB       int
	TTL      time.Duration
}

// SQLite configures the document registry location.
type SQLite struct {
	// Path is the data directory holding registry.db, not the file
	// itself. Empty selects ~/.hanrag/data.
	Path string
}

// Search tunes the retrieval defaults applied when a request carries
// no explicit values.
type Search struct {
	Mode           string
	TopK           int
	MinScore       float64
	RerankMinScore float64
}

// Ontology tunes extraction.
type Ontology struct {
	Methods     []string
	MaxKeywords int
	UseLLM      bool
}

// Chunker tunes document splitting.
type Chunker struct {
	ChunkSize    int
	ChunkOverlap int
}

// Config is the resolved runtime configuration.
type Config struct {
	Ollama   Ollama
	OpenAI   OpenAI
	Qdrant   Qdrant
	Redis    Redis
	SQLite   SQLite
	Search   Search
	Ontology Ontology
	Chunker  Chunker
}

// UseOpenAI reports whether the OpenAI-compatible provider should back
// embedding and generation instead of Ollama.
func (c *Config) UseOpenAI() bool {
	return c.OpenAI.APIKey != ""
}

// UseQdrant reports whether a Qdrant server is configured.
func (c *Config) UseQdrant() bool {
	return c.Qdrant.BaseURL != ""
}

// UseRedis reports whether a Redis server is configured.
func (c *Config) UseRedis() bool {
	return c.Redis.Addr != ""
}

// FromStore builds the configuration from a loaded store plus the
// environment. A nil store resolves from the environment alone.
func FromStore(store driven.ConfigStore) *Config {
	cfg := &Config{}

	if store != nil {
		cfg.Ollama = Ollama{
			BaseURL:        store.GetString("ollama.base_url"),
			EmbeddingModel: store.GetString("ollama.embedding_model"),
			LLMModel:       store.GetString("ollama.llm_model"),
			Timeout:        store.GetDuration("ollama.timeout"),
		}
		cfg.OpenAI = OpenAI{
			APIKey:         store.GetString("openai.api_key"),
			BaseURL:        store.GetString("openai.base_url"),
			EmbeddingModel: store.GetString("openai.model"),
			LLMModel:       store.GetString("openai.llm_model"),
		}
		cfg.Qdrant = Qdrant{
			BaseURL:    store.GetString("qdrant.base_url"),
			Collection: store.GetString("qdrant.collection"),
			APIKey:     store.GetString("qdrant.api_key"),
		}
		cfg.Redis = Redis{
			Addr:     store.GetString("redis.addr"),
			Password: store.GetString("redis.password"),
			DB:       store.GetInt("redis.db"),
			TTL:      store.GetDuration("redis.ttl"),
		}
		cfg.SQLite = SQLite{
			Path: store.GetString("sqlite.path"),
		}
		cfg.Search = Search{
			Mode:           store.GetString("search.mode"),
			TopK:           store.GetInt("search.top_k"),
			MinScore:       store.GetFloat("search.min_score"),
			RerankMinScore: store.GetFloat("search.rerank_min_score"),
		}
		cfg.Ontology = Ontology{
			Methods:     store.GetStringSlice("ontology.methods"),
			MaxKeywords: store.GetInt("ontology.max_keywords"),
			UseLLM:      store.GetBool("ontology.use_llm"),
		}
		cfg.Chunker = Chunker{
			ChunkSize:    store.GetInt("chunker.chunk_size"),
			ChunkOverlap: store.GetInt("chunker.chunk_overlap"),
		}
	}

	applyEnv(cfg)
	return cfg
}

// applyEnv overlays environment variables onto cfg. Only connection
// and credential settings are overridable this way; tunables stay in
// the store.
func applyEnv(cfg *Config) {
	overlay(&cfg.Ollama.BaseURL, "OLLAMA_BASE_URL")
	overlay(&cfg.OpenAI.APIKey, "OPENAI_API_KEY")
	overlay(&cfg.OpenAI.BaseURL, "OPENAI_BASE_URL")
	overlay(&cfg.Qdrant.BaseURL, "QDRANT_BASE_URL")
	overlay(&cfg.Qdrant.APIKey, "QDRANT_API_KEY")
	overlay(&cfg.Redis.Addr, "REDIS_ADDR")
	overlay(&cfg.Redis.Password, "REDIS_PASSWORD")
	overlay(&cfg.SQLite.Path, "HANRAG_DATA_DIR")
}

func overlay(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}
