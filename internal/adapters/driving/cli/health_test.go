package cli

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hanmaru-labs/hanrag/internal/core/ports/driving"
)

func TestHealthCmd_Use(t *testing.T) {
	assert.Equal(t, "health", healthCmd.Use)
}

func TestHealthCmd_AllHealthy(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"health"})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, "embedder")
	assert.Contains(t, out, "OK")
	assert.Contains(t, out, "bge-m3")
	assert.Contains(t, out, "All components healthy.")
}

func TestHealthCmd_ReportsFailure(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()
	statsService = &mockStatsService{health: []driving.ComponentHealth{
		{Name: "embedder", OK: true, Detail: "bge-m3"},
		{Name: "vector-store", OK: false, Detail: "connection refused"},
	}}

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs([]string{"health"})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "1 of 2 components unhealthy")
	assert.Contains(t, buf.String(), "FAIL")
	assert.Contains(t, buf.String(), "connection refused")
}

func TestHealthCmd_ServiceNotConfigured(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()
	statsService = nil

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs([]string{"health"})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "stats service not configured")
}
