package cli

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func resetOntologyFlags() {
	ontologyMethods = nil
	ontologyForce = false
	ontologyAll = false
	ontologyTopK = 10
	ontologyLimit = 10
	ontologyYes = false
	ontologyJSON = false
}

func TestOntologyCmd_Subcommands(t *testing.T) {
	expected := map[string]bool{
		"extract [doc-id]":  false,
		"batch [doc-id...]": false,
		"show [doc-id]":     false,
		"keywords [term]":   false,
		"similar [doc-id]":  false,
		"top":               false,
		"domain [name]":     false,
		"stats":             false,
		"delete [doc-id]":   false,
		"clear":             false,
	}

	for _, sub := range ontologyCmd.Commands() {
		if _, ok := expected[sub.Use]; ok {
			expected[sub.Use] = true
		}
	}

	for use, found := range expected {
		assert.True(t, found, "subcommand %q should be registered", use)
	}
}

func TestOntologyExtractCmd_Executes(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"ontology", "extract", "doc-1"})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, "Ontology for 계약서.pdf (doc-1)")
	assert.Contains(t, out, "Type:     contract")
	assert.Contains(t, out, "Domain:   legal")
	assert.Contains(t, out, "Language: korean")
	assert.Contains(t, out, "계약 (0.91, general, embedding)")
	assert.Contains(t, out, "계약 조건")
	assert.Contains(t, out, "한마루건설 (ORG)")
	assert.Equal(t, "doc-1", ontologyService.(*mockOntologyService).gotDocID)
}

func TestOntologyExtractCmd_PassesMethods(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"ontology", "extract", "--methods", "embedding,llm", "doc-1"})
	defer func() {
		rootCmd.SetArgs(nil)
		resetOntologyFlags()
	}()

	err := rootCmd.Execute()
	require.NoError(t, err)

	assert.Equal(t, []string{"embedding", "llm"}, ontologyService.(*mockOntologyService).gotMethods)
}

func TestOntologyExtractCmd_Error(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()
	ontologyService = &mockOntologyService{err: errors.New("no chunks")}

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs([]string{"ontology", "extract", "doc-404"})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "extraction failed")
}

func TestOntologyBatchCmd_WithIDs(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"ontology", "batch", "doc-1", "doc-2"})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()
	require.NoError(t, err)

	assert.Contains(t, buf.String(), "Extracting ontologies for 2 documents...")
	assert.Contains(t, buf.String(), "2 extracted, 1 skipped, 0 failed.")
	assert.Equal(t, []string{"doc-1", "doc-2"}, ontologyService.(*mockOntologyService).gotDocIDs)
}

func TestOntologyBatchCmd_All(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"ontology", "batch", "--all", "--force"})
	defer func() {
		rootCmd.SetArgs(nil)
		resetOntologyFlags()
	}()

	err := rootCmd.Execute()
	require.NoError(t, err)

	mock := ontologyService.(*mockOntologyService)
	assert.Equal(t, []string{"doc-1", "doc-2"}, mock.gotDocIDs, "ids should come from the registry")
	assert.True(t, mock.gotForce)
}

func TestOntologyBatchCmd_NoDocuments(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs([]string{"ontology", "batch"})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "no documents to process")
}

func TestOntologyShowCmd_Executes(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"ontology", "show", "doc-1"})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, "Ontology: doc-1")
	assert.Contains(t, out, "Source:    계약서.pdf")
	assert.Contains(t, out, "Extracted: 2025-06-01 10:00:00")
	assert.Contains(t, out, "계약 (0.91, general)")
}

func TestOntologyKeywordsCmd_Executes(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"ontology", "keywords", "-n", "3", "컨테이너"})
	defer func() {
		rootCmd.SetArgs(nil)
		resetOntologyFlags()
	}()

	err := rootCmd.Execute()
	require.NoError(t, err)

	mock := ontologyService.(*mockOntologyService)
	assert.Equal(t, "컨테이너", mock.gotTerm)
	assert.Equal(t, 3, mock.gotLimit)
	assert.Contains(t, buf.String(), "쿠버네티스 (0.88)")
	assert.Contains(t, buf.String(), "배포가이드.md, doc-3")
}

func TestOntologySimilarCmd_Executes(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"ontology", "similar", "doc-1"})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()
	require.NoError(t, err)

	assert.Contains(t, buf.String(), "하도급계약.pdf (0.77)")
	assert.Contains(t, buf.String(), "doc-2, domain legal")
}

func TestOntologyTopCmd_Executes(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"ontology", "top"})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()
	require.NoError(t, err)

	assert.Contains(t, buf.String(), "계약: 2 docs, 19 occurrences, avg score 0.87")
}

func TestOntologyDomainCmd_Executes(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"ontology", "domain", "legal"})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()
	require.NoError(t, err)

	assert.Equal(t, "legal", ontologyService.(*mockOntologyService).gotDomain)
	assert.Contains(t, buf.String(), "Documents in domain legal:")
	assert.Contains(t, buf.String(), "계약서.pdf (doc-1)")
}

func TestOntologyStatsCmd_Executes(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"ontology", "stats"})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, "Documents: 3")
	assert.Contains(t, out, "Keywords:  57")
	assert.Contains(t, out, "legal: 2")
	assert.Contains(t, out, "korean: 3")
}

func TestOntologyDeleteCmd_Executes(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"ontology", "delete", "doc-1"})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()

	assert.NoError(t, err)
	assert.Contains(t, buf.String(), "Ontology for doc-1 deleted.")
	assert.Equal(t, "doc-1", ontologyService.(*mockOntologyService).gotDocID)
}

func TestOntologyClearCmd_RequiresYes(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs([]string{"ontology", "clear"})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "--yes")
	assert.False(t, ontologyService.(*mockOntologyService).cleared)
}

func TestOntologyClearCmd_Clears(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"ontology", "clear", "--yes"})
	defer func() {
		rootCmd.SetArgs(nil)
		resetOntologyFlags()
	}()

	err := rootCmd.Execute()

	assert.NoError(t, err)
	assert.Contains(t, buf.String(), "All ontology records cleared.")
	assert.True(t, ontologyService.(*mockOntologyService).cleared)
}

func TestOntologyCmd_ServiceNotConfigured(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()
	ontologyService = nil

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs([]string{"ontology", "extract", "doc-1"})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "ontology service not configured")
}
