package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

// stubStore is a minimal in-memory config store for resolution tests.
type stubStore struct {
	data map[string]any
}

func (s *stubStore) Get(key string) (any, bool) {
	v, ok := s.data[key]
	return v, ok
}

func (s *stubStore) GetString(key string) string {
	v, _ := s.data[key].(string)
	return v
}

func (s *stubStore) GetInt(key string) int {
	v, _ := s.data[key].(int)
	return v
}

func (s *stubStore) GetFloat(key string) float64 {
	v, _ := s.data[key].(float64)
	return v
}

func (s *stubStore) GetBool(key string) bool {
	v, _ := s.data[key].(bool)
	return v
}

func (s *stubStore) GetStringSlice(key string) []string {
	v, _ := s.data[key].([]string)
	return v
}

func (s *stubStore) GetDuration(key string) time.Duration {
	v, _ := s.data[key].(time.Duration)
	return v
}

func (s *stubStore) Set(string, any) error { return nil }
func (s *stubStore) Save() error           { return nil }
func (s *stubStore) Load() error           { return nil }
func (s *stubStore) Path() string          { return "/tmp/config.toml" }

func TestFromStore_NilStore(t *testing.T) {
	cfg := FromStore(nil)

	assert.Empty(t, cfg.Ollama.BaseURL)
	assert.Empty(t, cfg.OpenAI.APIKey)
	assert.False(t, cfg.UseOpenAI())
	assert.False(t, cfg.UseQdrant())
	assert.False(t, cfg.UseRedis())
}

func TestFromStore_ReadsSections(t *testing.T) {
	store := &stubStore{data: map[string]any{
		"ollama.base_url":         "http://ollama:11434",
		"ollama.embedding_model":  "bge-m3",
		"ollama.llm_model":        "gemma3n:latest",
		"ollama.timeout":          45 * time.Second,
		"openai.api_key":          "sk-test",
		"openai.model":            "text-embedding-3-small",
		"qdrant.base_url":         "http://qdrant:6333",
		"qdrant.collection":       "hanrag",
		"redis.addr":              "redis:6379",
		"redis.db":                2,
		"redis.ttl":               24 * time.Hour,
		"sqlite.path":             "/var/lib/hanrag",
		"search.mode":             "hybrid",
		"search.top_k":            10,
		"search.min_score":        0.25,
		"search.rerank_min_score": 0.1,
		"ontology.methods":        []string{"embedding", "llm"},
		"ontology.max_keywords":   30,
		"ontology.use_llm":        true,
		"chunker.chunk_size":      800,
		"chunker.chunk_overlap":   80,
	}}

	cfg := FromStore(store)

	assert.Equal(t, "http://ollama:11434", cfg.Ollama.BaseURL)
	assert.Equal(t, "bge-m3", cfg.Ollama.EmbeddingModel)
	assert.Equal(t, "gemma3n:latest", cfg.Ollama.LLMModel)
	assert.Equal(t, 45*time.Second, cfg.Ollama.Timeout)
	assert.Equal(t, "sk-test", cfg.OpenAI.APIKey)
	assert.Equal(t, "text-embedding-3-small", cfg.OpenAI.EmbeddingModel)
	assert.Equal(t, "http://qdrant:6333", cfg.Qdrant.BaseURL)
	assert.Equal(t, "hanrag", cfg.Qdrant.Collection)
	assert.Equal(t, "redis:6379", cfg.Redis.Addr)
	assert.Equal(t, 2, cfg.Redis.DB)
	assert.Equal(t, 24*time.Hour, cfg.Redis.TTL)
	assert.Equal(t, "/var/lib/hanrag", cfg.SQLite.Path)
	assert.Equal(t, "hybrid", cfg.Search.Mode)
	assert.Equal(t, 10, cfg.Search.TopK)
	assert.InDelta(t, 0.25, cfg.Search.MinScore, 0.0001)
	assert.InDelta(t, 0.1, cfg.Search.RerankMinScore, 0.0001)
	assert.Equal(t, []string{"embedding", "llm"}, cfg.Ontology.Methods)
	assert.Equal(t, 30, cfg.Ontology.MaxKeywords)
	assert.True(t, cfg.Ontology.UseLLM)
	assert.Equal(t, 800, cfg.Chunker.ChunkSize)
	assert.Equal(t, 80, cfg.Chunker.ChunkOverlap)
}

func TestFromStore_EnvOverridesStore(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "sk-env")
	t.Setenv("QDRANT_BASE_URL", "http://env-qdrant:6333")

	store := &stubStore{data: map[string]any{
		"openai.api_key":  "sk-file",
		"qdrant.base_url": "http://file-qdrant:6333",
	}}

	cfg := FromStore(store)

	assert.Equal(t, "sk-env", cfg.OpenAI.APIKey)
	assert.Equal(t, "http://env-qdrant:6333", cfg.Qdrant.BaseURL)
}

func TestFromStore_EnvAloneConfigures(t *testing.T) {
	t.Setenv("REDIS_ADDR", "localhost:6380")
	t.Setenv("HANRAG_DATA_DIR", "/data/hanrag")

	cfg := FromStore(nil)

	assert.Equal(t, "localhost:6380", cfg.Redis.Addr)
	assert.Equal(t, "/data/hanrag", cfg.SQLite.Path)
	assert.True(t, cfg.UseRedis())
}

func TestConfig_ProviderPredicates(t *testing.T) {
	cfg := &Config{}
	assert.False(t, cfg.UseOpenAI())

	cfg.OpenAI.APIKey = "sk-x"
	assert.True(t, cfg.UseOpenAI())

	cfg.Qdrant.BaseURL = "http://localhost:6333"
	assert.True(t, cfg.UseQdrant())

	cfg.Redis.Addr = "localhost:6379"
	assert.True(t, cfg.UseRedis())
}
