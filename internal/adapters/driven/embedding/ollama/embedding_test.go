package ollama

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hanmaru-labs/hanrag/internal/core/ports/driven"
)

// newEmbedServer returns a fake Ollama server that records every prompt
// it receives and answers with a fixed-size vector.
func newEmbedServer(t *testing.T, dims int, prompts *[]string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/embeddings":
			var req embedRequest
			require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
			*prompts = append(*prompts, req.Prompt)

			vec := make([]float64, dims)
			for i := range vec {
				vec[i] = float64(len(*prompts)) + float64(i)/10
			}
			json.NewEncoder(w).Encode(embedResponse{Embedding: vec})
		case "/api/tags":
			w.WriteHeader(http.StatusOK)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
}

func TestNewEmbeddingService_Defaults(t *testing.T) {
	svc := NewEmbeddingService(Config{})

	assert.Equal(t, DefaultModel, svc.ModelName())
	assert.Equal(t, DefaultDimensions, svc.Dimensions())
	assert.True(t, svc.prefixAware)
}

func TestEmbeddingService_Embed_PassagePrefix(t *testing.T) {
	var prompts []string
	server := newEmbedServer(t, 4, &prompts)
	defer server.Close()

	svc := NewEmbeddingService(Config{
		BaseURL:    server.URL,
		Model:      "multilingual-e5-large",
		Dimensions: 4,
	})

	vectors, err := svc.Embed(context.Background(), []string{"안녕하세요", "두 번째 문서"}, driven.PrefixPassage)

	require.NoError(t, err)
	require.Len(t, vectors, 2)
	assert.Len(t, vectors[0], 4)
	assert.Equal(t, []string{"passage: 안녕하세요", "passage: 두 번째 문서"}, prompts)
	// Responses arrive in request order.
	assert.Equal(t, float32(1), vectors[0][0])
	assert.Equal(t, float32(2), vectors[1][0])
}

func TestEmbeddingService_Embed_QueryPrefix(t *testing.T) {
	var prompts []string
	server := newEmbedServer(t, 4, &prompts)
	defer server.Close()

	svc := NewEmbeddingService(Config{
		BaseURL:    server.URL,
		Model:      "multilingual-e5-large",
		Dimensions: 4,
	})

	_, err := svc.Embed(context.Background(), []string{"계약 조건 검색"}, driven.PrefixQuery)

	require.NoError(t, err)
	assert.Equal(t, []string{"query: 계약 조건 검색"}, prompts)
}

func TestEmbeddingService_Embed_NoPrefixForOtherModels(t *testing.T) {
	var prompts []string
	server := newEmbedServer(t, 4, &prompts)
	defer server.Close()

	svc := NewEmbeddingService(Config{
		BaseURL:    server.URL,
		Model:      "nomic-embed-text",
		Dimensions: 4,
	})

	_, err := svc.Embed(context.Background(), []string{"원문 그대로"}, driven.PrefixQuery)

	require.NoError(t, err)
	assert.Equal(t, []string{"원문 그대로"}, prompts)
}

func TestEmbeddingService_Embed_Empty(t *testing.T) {
	svc := NewEmbeddingService(Config{})

	vectors, err := svc.Embed(context.Background(), nil, driven.PrefixPassage)

	require.NoError(t, err)
	assert.Nil(t, vectors)
}

func TestEmbeddingService_Embed_DimensionMismatch(t *testing.T) {
	var prompts []string
	server := newEmbedServer(t, 3, &prompts)
	defer server.Close()

	svc := NewEmbeddingService(Config{
		BaseURL:    server.URL,
		Model:      "multilingual-e5-large",
		Dimensions: 4,
	})

	_, err := svc.Embed(context.Background(), []string{"차원 불일치"}, driven.PrefixPassage)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "expected 4")
}

func TestEmbeddingService_Embed_ServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model not found", http.StatusNotFound)
	}))
	defer server.Close()

	svc := NewEmbeddingService(Config{BaseURL: server.URL, Dimensions: 4})

	_, err := svc.Embed(context.Background(), []string{"실패"}, driven.PrefixPassage)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 404")
}

func TestEmbeddingService_Embed_ContextCancelled(t *testing.T) {
	svc := NewEmbeddingService(Config{BaseURL: "http://localhost:1"})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := svc.Embed(ctx, []string{"취소됨"}, driven.PrefixPassage)

	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestEmbeddingService_Ping(t *testing.T) {
	var prompts []string
	server := newEmbedServer(t, 4, &prompts)
	defer server.Close()

	svc := NewEmbeddingService(Config{BaseURL: server.URL})

	assert.NoError(t, svc.Ping(context.Background()))
	assert.NoError(t, svc.Close())
}

func TestEmbeddingService_Ping_Unreachable(t *testing.T) {
	svc := NewEmbeddingService(Config{BaseURL: "http://localhost:1"})

	err := svc.Ping(context.Background())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "not reachable")
}
