package cli

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func resetSearchFlags() {
	searchMode = "vector"
	searchTopK = 5
	searchMinScore = 0
	searchLang = "auto"
	searchSource = ""
	searchFileType = ""
	searchSimilarTo = ""
	searchJSON = false
}

func TestSearchCmd_Use(t *testing.T) {
	assert.Equal(t, "search [query]", searchCmd.Use)
}

func TestSearchCmd_Short(t *testing.T) {
	assert.Equal(t, "Search indexed documents", searchCmd.Short)
}

func TestSearchCmd_Long(t *testing.T) {
	assert.Contains(t, searchCmd.Long, "vector")
	assert.Contains(t, searchCmd.Long, "hybrid")
	assert.Contains(t, searchCmd.Long, "rerank")
}

func TestSearchCmd_HasModeFlag(t *testing.T) {
	flag := searchCmd.Flags().Lookup("mode")
	require.NotNil(t, flag, "mode flag should exist")
	assert.Equal(t, "m", flag.Shorthand)
	assert.Equal(t, "vector", flag.DefValue)
}

func TestSearchCmd_HasTopKFlag(t *testing.T) {
	flag := searchCmd.Flags().Lookup("top-k")
	require.NotNil(t, flag, "top-k flag should exist")
	assert.Equal(t, "n", flag.Shorthand)
	assert.Equal(t, "5", flag.DefValue)
}

func TestSearchCmd_ExecutesWithQuery(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"search", "계약 해지 조건"})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()

	assert.NoError(t, err)
	assert.Contains(t, buf.String(), "Results:")
	assert.Contains(t, buf.String(), "계약서.pdf")
	assert.Contains(t, buf.String(), "제1조 계약의 목적")
}

func TestSearchCmd_PassesOptionsToService(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{
		"search", "--mode", "rerank", "-n", "7",
		"--min-score", "0.4", "--lang", "ko", "배포 절차",
	})
	defer func() {
		rootCmd.SetArgs(nil)
		resetSearchFlags()
	}()

	err := rootCmd.Execute()
	require.NoError(t, err)

	mock := searchService.(*mockSearchService)
	assert.Equal(t, "배포 절차", mock.gotQuery)
	assert.Equal(t, "rerank", string(mock.gotOpts.Mode))
	assert.Equal(t, 7, mock.gotOpts.TopK)
	assert.InDelta(t, 0.4, mock.gotOpts.MinScore, 0.001)
	assert.Equal(t, "ko", mock.gotOpts.LanguageHint)
}

func TestSearchCmd_SimilarToSkipsQuery(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"search", "--similar-to", "chunk-9"})
	defer func() {
		rootCmd.SetArgs(nil)
		resetSearchFlags()
	}()

	err := rootCmd.Execute()
	require.NoError(t, err)

	mock := searchService.(*mockSearchService)
	assert.Equal(t, "chunk-9", mock.gotChunkID)
	assert.Equal(t, 5, mock.gotTopK)
	assert.Empty(t, mock.gotQuery)
	assert.Contains(t, buf.String(), "Results:")
}

func TestSearchCmd_RequiresQueryWithoutSimilarTo(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs([]string{"search"})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "query argument required")
}

func TestSearchCmd_JSONOutput(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"search", "--json", "계약"})
	defer func() {
		rootCmd.SetArgs(nil)
		resetSearchFlags()
	}()

	err := rootCmd.Execute()

	assert.NoError(t, err)
	assert.Contains(t, buf.String(), "\"Score\"")
	assert.Contains(t, buf.String(), "chunk-1")
}

func TestSearchCmd_NoResults(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()
	searchService = &mockSearchService{}

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"search", "없는 내용"})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()

	assert.NoError(t, err)
	assert.Contains(t, buf.String(), "No results found.")
}

func TestSearchCmd_ServiceError(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()
	searchService = &mockSearchService{err: errors.New("qdrant unreachable")}

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs([]string{"search", "계약"})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "search failed")
}

func TestSearchCmd_ServiceNotConfigured(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()
	searchService = nil

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs([]string{"search", "계약"})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "search service not configured")
}

func TestSnippet(t *testing.T) {
	tests := []struct {
		name  string
		input string
		max   int
		want  string
	}{
		{"short text unchanged", "짧은 문장", 20, "짧은 문장"},
		{"whitespace collapsed", "줄\n바꿈과   공백", 20, "줄 바꿈과 공백"},
		{"long text truncated", "가나다라마바사아자차", 5, "가나다라마..."},
		{"empty", "", 10, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, snippet(tt.input, tt.max))
		})
	}
}
