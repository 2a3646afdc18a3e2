package cli

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigCmd_Use(t *testing.T) {
	assert.Equal(t, "config", configCmd.Use)
	assert.Equal(t, "show", configShowCmd.Use)
	assert.Equal(t, "get [key]", configGetCmd.Use)
	assert.Equal(t, "set [key] [value]", configSetCmd.Use)
	assert.Equal(t, "path", configPathCmd.Use)
}

func TestConfigShowCmd_Executes(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"config", "show"})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, "[Ollama]")
	assert.Contains(t, out, "base_url: http://localhost:11434")
	assert.Contains(t, out, "embedding_model: bge-m3")
	assert.Contains(t, out, "[Search]")
	assert.Contains(t, out, "Config file: /tmp/hanrag-test/config.toml")
}

func TestConfigShowCmd_MasksAPIKeys(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"config", "show"})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()
	require.NoError(t, err)

	out := buf.String()
	assert.NotContains(t, out, "sk-test-1234567890abcdef")
	assert.Contains(t, out, "sk-t...cdef")
}

func TestConfigShowCmd_MarksUnsetKeys(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"config", "show"})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()
	require.NoError(t, err)

	assert.Contains(t, buf.String(), "(not set)")
}

func TestConfigGetCmd_Executes(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"config", "get", "search.top_k"})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()

	assert.NoError(t, err)
	assert.Contains(t, buf.String(), "5")
}

func TestConfigGetCmd_UnknownKey(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs([]string{"config", "get", "nope.missing"})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "not set")
}

func TestConfigSetCmd_StoresTypedValues(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"config", "set", "search.top_k", "10"})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()
	require.NoError(t, err)

	assert.Contains(t, buf.String(), "search.top_k = 10")

	store := configStore.(*mockConfigStore)
	assert.Equal(t, int64(10), store.values["search.top_k"])
}

func TestConfigSetCmd_Error(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()
	configStore = &failingConfigStore{}

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs([]string{"config", "set", "search.top_k", "10"})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "disk full")
}

func TestConfigPathCmd_Executes(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"config", "path"})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()

	assert.NoError(t, err)
	assert.Contains(t, buf.String(), "/tmp/hanrag-test/config.toml")
}

func TestConfigCmd_StoreNotConfigured(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()
	configStore = nil

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs([]string{"config", "show"})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "config store not configured")
}

func TestParseConfigValue(t *testing.T) {
	tests := []struct {
		raw  string
		want any
	}{
		{"true", true},
		{"false", false},
		{"42", int64(42)},
		{"0.75", 0.75},
		{"http://localhost:6333", "http://localhost:6333"},
		{"bge-m3", "bge-m3"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, parseConfigValue(tt.raw), tt.raw)
	}
}

func TestMaskAPIKey(t *testing.T) {
	tests := []struct {
		name string
		key  string
		want string
	}{
		{"short key fully masked", "abc", "****"},
		{"eight chars fully masked", "12345678", "****"},
		{"long key shows edges", "sk-test-1234567890abcdef", "sk-t...cdef"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, maskAPIKey(tt.key))
		})
	}
}

func TestShortKey(t *testing.T) {
	assert.Equal(t, "top_k", shortKey("search.top_k"))
	assert.Equal(t, "plain", shortKey("plain"))
}

func TestDisplayValue(t *testing.T) {
	assert.Equal(t, "vector", displayValue("search.mode", "vector"))
	assert.Equal(t, "(empty)", displayValue("search.mode", ""))
	assert.Equal(t, "****", displayValue("qdrant.api_key", "secret"))
	assert.Equal(t, "****", displayValue("redis.password", "hunter2"))
}
