package ai

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/hanmaru-labs/hanrag/internal/config"
)

func TestComponents_Close_NilFields(t *testing.T) {
	c := &Components{}

	assert.NotPanics(t, func() { c.Close() })
}

func TestInit_Defaults(t *testing.T) {
	c, err := Init(&config.Config{}, zap.NewNop())

	require.NoError(t, err)
	defer c.Close()

	assert.NotNil(t, c.Embedder, "embedder always built")
	assert.Nil(t, c.Generator, "generator off without ontology.use_llm")
	assert.NotNil(t, c.Chunks)
	assert.NotNil(t, c.Ontology)
}

func TestInit_NilLogger(t *testing.T) {
	c, err := Init(&config.Config{}, nil)

	require.NoError(t, err)
	defer c.Close()
	assert.NotNil(t, c.Embedder)
}

func TestInit_OllamaEmbedderModel(t *testing.T) {
	cfg := &config.Config{}
	cfg.Ollama.EmbeddingModel = "bge-m3"

	c, err := Init(cfg, zap.NewNop())

	require.NoError(t, err)
	defer c.Close()
	assert.Equal(t, "bge-m3", c.Embedder.ModelName())
}

func TestInit_OpenAIEmbedder(t *testing.T) {
	cfg := &config.Config{}
	cfg.OpenAI.APIKey = "sk-test"
	cfg.OpenAI.EmbeddingModel = "text-embedding-3-large"

	c, err := Init(cfg, zap.NewNop())

	require.NoError(t, err)
	defer c.Close()
	assert.Equal(t, "text-embedding-3-large", c.Embedder.ModelName())
	assert.Equal(t, 3072, c.Embedder.Dimensions())
}

func TestInit_GeneratorWithUseLLM(t *testing.T) {
	cfg := &config.Config{}
	cfg.Ontology.UseLLM = true
	cfg.Ollama.LLMModel = "gemma3n:latest"

	c, err := Init(cfg, zap.NewNop())

	require.NoError(t, err)
	defer c.Close()
	require.NotNil(t, c.Generator)
	assert.Equal(t, "gemma3n:latest", c.Generator.ModelName())
}

func TestInit_OpenAIGenerator(t *testing.T) {
	cfg := &config.Config{}
	cfg.OpenAI.APIKey = "sk-test"
	cfg.Ontology.UseLLM = true
	cfg.OpenAI.LLMModel = "gpt-4o-mini"

	c, err := Init(cfg, zap.NewNop())

	require.NoError(t, err)
	defer c.Close()
	require.NotNil(t, c.Generator)
	assert.Equal(t, "gpt-4o-mini", c.Generator.ModelName())
}

func TestInit_MemoryVectorStoresByDefault(t *testing.T) {
	c, err := Init(&config.Config{}, zap.NewNop())

	require.NoError(t, err)
	defer c.Close()

	// In-memory indexes are usable immediately.
	info, err := c.Chunks.Info(t.Context())
	require.NoError(t, err)
	assert.Equal(t, 0, info.PointCount)
}

func TestInit_DimensionsFollowEmbedder(t *testing.T) {
	cfg := &config.Config{}
	cfg.OpenAI.APIKey = "sk-test"
	cfg.OpenAI.EmbeddingModel = "text-embedding-3-small"

	c, err := Init(cfg, zap.NewNop())

	require.NoError(t, err)
	defer c.Close()
	assert.Equal(t, 1536, c.Embedder.Dimensions())
}
