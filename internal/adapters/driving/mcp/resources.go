package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/hanmaru-labs/hanrag/internal/core/domain"
)

const (
	// uriScheme is the custom URI scheme for hanrag resources.
	uriScheme = "hanrag://"
)

// registerResources registers all resource handlers with the MCP server.
func (s *Server) registerResources() {
	// Static resource for system statistics.
	s.server.AddResource(&mcp.Resource{
		URI:         uriScheme + "stats",
		Name:        "stats",
		Description: "Document, chunk, and ontology collection statistics",
		MIMEType:    "application/json",
	}, s.handleStatsResource)

	// Static resource for the document registry.
	s.server.AddResource(&mcp.Resource{
		URI:         uriScheme + "documents",
		Name:        "documents",
		Description: "List of all ingested documents",
		MIMEType:    "application/json",
	}, s.handleDocumentsResource)

	// Template for per-document ontology records.
	s.server.AddResourceTemplate(&mcp.ResourceTemplate{
		URITemplate: uriScheme + "documents/{docId}/ontology",
		Name:        "document-ontology",
		Description: "Extracted ontology of a specific document",
		MIMEType:    "application/json",
	}, s.handleOntologyResource)
}

// handleStatsResource returns system-wide counts.
func (s *Server) handleStatsResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	if s.ports.Stats == nil {
		return &mcp.ReadResourceResult{
			Contents: []*mcp.ResourceContents{{
				URI:      req.Params.URI,
				MIMEType: "application/json",
				Text:     "{}",
			}},
		}, nil
	}

	stats, err := s.ports.Stats.Stats(ctx)
	if err != nil {
		return nil, fmt.Errorf("gathering stats: %w", err)
	}

	// Build simplified stats payload.
	type statsInfo struct {
		Documents       int    `json:"documents"`
		Chunks          int    `json:"chunks"`
		EmbeddingModel  string `json:"embedding_model"`
		Dimensions      int    `json:"dimensions"`
		OntologyRecords int    `json:"ontology_records"`
		KeywordRecords  int    `json:"keyword_records"`
	}

	info := statsInfo{
		Documents:       stats.Documents,
		Chunks:          stats.Chunks,
		EmbeddingModel:  stats.EmbeddingModel,
		Dimensions:      stats.Dimensions,
		OntologyRecords: stats.Ontology.DocumentRecords,
		KeywordRecords:  stats.Ontology.KeywordRecords,
	}

	data, err := json.MarshalIndent(info, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshalling stats: %w", err)
	}

	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      req.Params.URI,
			MIMEType: "application/json",
			Text:     string(data),
		}},
	}, nil
}

// handleDocumentsResource returns the document registry.
func (s *Server) handleDocumentsResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	if s.ports.Ingest == nil {
		return &mcp.ReadResourceResult{
			Contents: []*mcp.ResourceContents{{
				URI:      req.Params.URI,
				MIMEType: "application/json",
				Text:     "[]",
			}},
		}, nil
	}

	docs, err := s.ports.Ingest.ListDocuments(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing documents: %w", err)
	}

	// Build simplified document list.
	type docInfo struct {
		ID         string `json:"id"`
		Filename   string `json:"filename"`
		FileType   string `json:"file_type"`
		ChunkCount int    `json:"chunk_count"`
		Status     string `json:"status"`
		UploadedAt string `json:"uploaded_at"`
	}

	infos := make([]docInfo, len(docs))
	for i := range docs {
		infos[i] = docInfo{
			ID:         docs[i].ID,
			Filename:   docs[i].Filename,
			FileType:   docs[i].FileType,
			ChunkCount: docs[i].ChunkCount,
			Status:     string(docs[i].Status),
			UploadedAt: docs[i].UploadedAt.Format(time.RFC3339),
		}
	}

	data, err := json.MarshalIndent(infos, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshalling documents: %w", err)
	}

	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      req.Params.URI,
			MIMEType: "application/json",
			Text:     string(data),
		}},
	}, nil
}

// handleOntologyResource returns the stored ontology of one document.
func (s *Server) handleOntologyResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	if s.ports.Ontology == nil {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	// Extract docId from URI: hanrag://documents/{docId}/ontology
	docID := extractOntologyDocID(req.Params.URI)
	if docID == "" {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	rec, err := s.ports.Ontology.GetDocumentOntology(ctx, docID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, mcp.ResourceNotFoundError(req.Params.URI)
		}
		return nil, fmt.Errorf("getting ontology: %w", err)
	}

	// Build simplified ontology payload.
	type ontologyInfo struct {
		DocID        string   `json:"doc_id"`
		Source       string   `json:"source"`
		DocumentType string   `json:"document_type"`
		Domain       string   `json:"domain"`
		Language     string   `json:"language"`
		Keywords     []string `json:"keywords"`
		MainTopics   []string `json:"main_topics,omitempty"`
		EntityCount  int      `json:"entity_count"`
		ExtractedAt  string   `json:"extracted_at"`
	}

	info := ontologyInfo{
		DocID:        rec.DocID,
		Source:       rec.Source,
		DocumentType: rec.DocumentType,
		Domain:       rec.EstimatedDomain,
		Language:     string(rec.Language),
		Keywords:     make([]string, len(rec.TopKeywords)),
		MainTopics:   rec.MainTopics,
		EntityCount:  rec.EntityCount,
		ExtractedAt:  rec.ExtractedAt.Format(time.RFC3339),
	}
	for i := range rec.TopKeywords {
		info.Keywords[i] = rec.TopKeywords[i].Term
	}

	data, err := json.MarshalIndent(info, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshalling ontology: %w", err)
	}

	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      req.Params.URI,
			MIMEType: "application/json",
			Text:     string(data),
		}},
	}, nil
}

// extractOntologyDocID extracts the document ID from a URI like
// hanrag://documents/{docId}/ontology.
func extractOntologyDocID(uri string) string {
	const prefix = uriScheme + "documents/"
	const suffix = "/ontology"

	if !strings.HasPrefix(uri, prefix) {
		return ""
	}

	uri = strings.TrimPrefix(uri, prefix)
	if !strings.HasSuffix(uri, suffix) {
		return ""
	}

	return strings.TrimSuffix(uri, suffix)
}
