package mcp

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/hanmaru-labs/hanrag/internal/core/domain"
)

// SearchInput is the input schema for the search tool.
type SearchInput struct {
	Query    string  `json:"query" jsonschema:"the search query, Korean or English"`
	Mode     string  `json:"mode,omitempty" jsonschema:"ranking mode: vector, hybrid, or rerank (default vector)"`
	TopK     int     `json:"top_k,omitempty" jsonschema:"maximum number of results to return (default 5)"`
	MinScore float64 `json:"min_score,omitempty" jsonschema:"minimum relevance score between 0 and 1"`
	Language string  `json:"language,omitempty" jsonschema:"language filter: ko, en, or auto (default auto)"`
}

// SearchOutput is the output schema for the search tool.
type SearchOutput struct {
	Results []SearchResultOutput `json:"results"`
	Count   int                  `json:"count"`
}

// SearchResultOutput represents a single search result.
type SearchResultOutput struct {
	ChunkID    string  `json:"chunk_id"`
	DocID      string  `json:"doc_id"`
	Source     string  `json:"source"`
	Score      float64 `json:"score"`
	Content    string  `json:"content"`
	ChunkIndex int     `json:"chunk_index"`
	FileType   string  `json:"file_type,omitempty"`
}

// IngestFileInput is the input schema for the ingest_file tool.
type IngestFileInput struct {
	Path            string `json:"path" jsonschema:"path to the local file to ingest"`
	ExtractOntology bool   `json:"extract_ontology,omitempty" jsonschema:"also extract the document ontology after ingestion"`
}

// IngestFileOutput is the output schema for the ingest_file tool.
type IngestFileOutput struct {
	DocID      string   `json:"doc_id"`
	Filename   string   `json:"filename"`
	ChunkCount int      `json:"chunk_count"`
	CharCount  int      `json:"char_count"`
	Fallback   bool     `json:"fallback,omitempty"`
	Keywords   []string `json:"keywords,omitempty"`
}

// ExtractOntologyInput is the input schema for the extract_ontology tool.
type ExtractOntologyInput struct {
	DocID   string   `json:"doc_id" jsonschema:"id of the ingested document to extract"`
	Methods []string `json:"methods,omitempty" jsonschema:"keyword extraction methods: embedding, llm, statistical (default: configured set)"`
}

// ExtractOntologyOutput is the output schema for the extract_ontology tool.
type ExtractOntologyOutput struct {
	DocID        string          `json:"doc_id"`
	Source       string          `json:"source"`
	Keywords     []KeywordOutput `json:"keywords"`
	DocumentType string          `json:"document_type"`
	Domain       string          `json:"domain"`
	Language     string          `json:"language"`
	EntityCount  int             `json:"entity_count"`
	TopicCount   int             `json:"topic_count"`
}

// KeywordOutput represents a single extracted keyword.
type KeywordOutput struct {
	Term     string  `json:"term"`
	Score    float64 `json:"score"`
	Category string  `json:"category"`
	Method   string  `json:"method"`
}

// KeywordSearchInput is the input schema for the keyword_search tool.
type KeywordSearchInput struct {
	Term string `json:"term" jsonschema:"the keyword to search for; near-synonyms also match"`
	TopK int    `json:"top_k,omitempty" jsonschema:"maximum number of matches to return (default 10)"`
}

// KeywordSearchOutput is the output schema for the keyword_search tool.
type KeywordSearchOutput struct {
	Matches []KeywordMatchOutput `json:"matches"`
	Count   int                  `json:"count"`
}

// KeywordMatchOutput represents a single keyword match.
type KeywordMatchOutput struct {
	Term     string  `json:"term"`
	Score    float64 `json:"score"`
	DocID    string  `json:"doc_id"`
	Source   string  `json:"source"`
	Category string  `json:"category"`
	Domain   string  `json:"domain,omitempty"`
}

// SimilarDocumentsInput is the input schema for the similar_documents tool.
type SimilarDocumentsInput struct {
	DocID string `json:"doc_id" jsonschema:"id of the reference document"`
	TopK  int    `json:"top_k,omitempty" jsonschema:"maximum number of documents to return (default 10)"`
}

// SimilarDocumentsOutput is the output schema for the similar_documents tool.
type SimilarDocumentsOutput struct {
	Documents []SimilarDocumentOutput `json:"documents"`
	Count     int                     `json:"count"`
}

// SimilarDocumentOutput represents a single similar document.
type SimilarDocumentOutput struct {
	DocID       string   `json:"doc_id"`
	Source      string   `json:"source"`
	Score       float64  `json:"score"`
	Domain      string   `json:"domain,omitempty"`
	TopKeywords []string `json:"top_keywords,omitempty"`
}

// TopKeywordsInput is the input schema for the top_keywords tool.
type TopKeywordsInput struct {
	Limit int `json:"limit,omitempty" jsonschema:"maximum number of keywords to return (default 10)"`
}

// TopKeywordsOutput is the output schema for the top_keywords tool.
type TopKeywordsOutput struct {
	Keywords []TopKeywordOutput `json:"keywords"`
	Count    int                `json:"count"`
}

// TopKeywordOutput represents one aggregated keyword row.
type TopKeywordOutput struct {
	Term           string   `json:"term"`
	TotalFrequency int      `json:"total_frequency"`
	AvgScore       float64  `json:"avg_score"`
	DocumentCount  int      `json:"document_count"`
	Sources        []string `json:"sources,omitempty"`
}

// registerTools registers all tool handlers with the MCP server.
// Tools backed by optional ports register only when the port is present.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "search",
		Description: "Search indexed documents with vector, hybrid, or rerank ranking",
	}, s.handleSearch)

	if s.ports.Ingest != nil {
		mcp.AddTool(s.server, &mcp.Tool{
			Name:        "ingest_file",
			Description: "Parse, chunk, embed, and store a local file",
		}, s.handleIngestFile)
	}

	if s.ports.Ontology != nil {
		mcp.AddTool(s.server, &mcp.Tool{
			Name:        "extract_ontology",
			Description: "Extract and store keywords, metadata, and topics for an ingested document",
		}, s.handleExtractOntology)

		mcp.AddTool(s.server, &mcp.Tool{
			Name:        "keyword_search",
			Description: "Find documents by keyword across extracted ontologies; near-synonyms also match",
		}, s.handleKeywordSearch)

		mcp.AddTool(s.server, &mcp.Tool{
			Name:        "similar_documents",
			Description: "List documents whose ontology summaries are close to a given document",
		}, s.handleSimilarDocuments)

		mcp.AddTool(s.server, &mcp.Tool{
			Name:        "top_keywords",
			Description: "Aggregate the most frequent keywords across all documents",
		}, s.handleTopKeywords)
	}
}

// handleSearch handles the search tool invocation.
func (s *Server) handleSearch(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input SearchInput,
) (*mcp.CallToolResult, SearchOutput, error) {
	opts := domain.SearchOptions{
		Mode:         domain.SearchMode(input.Mode),
		TopK:         input.TopK,
		LanguageHint: input.Language,
		MinScore:     input.MinScore,
	}

	hits, err := s.ports.Search.Search(ctx, input.Query, opts)
	if err != nil {
		return nil, SearchOutput{}, err
	}

	output := SearchOutput{
		Results: make([]SearchResultOutput, len(hits)),
		Count:   len(hits),
	}

	for i := range hits {
		output.Results[i] = SearchResultOutput{
			ChunkID:    hits[i].ID,
			DocID:      hits[i].Chunk.DocID,
			Source:     hits[i].Chunk.Source,
			Score:      hits[i].Score,
			Content:    hits[i].Chunk.Content,
			ChunkIndex: hits[i].Chunk.Index,
			FileType:   hits[i].Chunk.FileType,
		}
	}

	return nil, output, nil
}

// handleIngestFile handles the ingest_file tool invocation.
func (s *Server) handleIngestFile(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input IngestFileInput,
) (*mcp.CallToolResult, IngestFileOutput, error) {
	res, err := s.ports.Ingest.IngestFile(ctx, input.Path)
	if err != nil {
		return nil, IngestFileOutput{}, err
	}

	output := IngestFileOutput{
		DocID:      res.DocID,
		Filename:   res.Filename,
		ChunkCount: res.ChunkCount,
		CharCount:  res.CharCount,
		Fallback:   res.Fallback,
	}

	if input.ExtractOntology && s.ports.Ontology != nil {
		ont, err := s.ports.Ontology.ExtractAndStore(ctx, res.DocID, nil)
		if err != nil {
			return nil, IngestFileOutput{}, fmt.Errorf("ingested %s but ontology extraction failed: %w", res.DocID, err)
		}
		for i := range ont.Keywords {
			output.Keywords = append(output.Keywords, ont.Keywords[i].Term)
		}
	}

	return nil, output, nil
}

// handleExtractOntology handles the extract_ontology tool invocation.
func (s *Server) handleExtractOntology(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input ExtractOntologyInput,
) (*mcp.CallToolResult, ExtractOntologyOutput, error) {
	res, err := s.ports.Ontology.ExtractAndStore(ctx, input.DocID, input.Methods)
	if err != nil {
		return nil, ExtractOntologyOutput{}, err
	}

	output := ExtractOntologyOutput{
		DocID:        res.DocID,
		Source:       res.Source,
		Keywords:     make([]KeywordOutput, len(res.Keywords)),
		DocumentType: res.Metadata.DocumentType,
		Domain:       res.Metadata.EstimatedDomain,
		Language:     string(res.Metadata.Language),
		EntityCount:  len(res.Metadata.Entities),
		TopicCount:   len(res.Context.MainTopics),
	}

	for i := range res.Keywords {
		output.Keywords[i] = KeywordOutput{
			Term:     res.Keywords[i].Term,
			Score:    res.Keywords[i].Score,
			Category: string(res.Keywords[i].Category),
			Method:   string(res.Keywords[i].Method),
		}
	}

	return nil, output, nil
}

// handleKeywordSearch handles the keyword_search tool invocation.
func (s *Server) handleKeywordSearch(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input KeywordSearchInput,
) (*mcp.CallToolResult, KeywordSearchOutput, error) {
	hits, err := s.ports.Ontology.SearchByKeyword(ctx, input.Term, input.TopK)
	if err != nil {
		return nil, KeywordSearchOutput{}, err
	}

	output := KeywordSearchOutput{
		Matches: make([]KeywordMatchOutput, len(hits)),
		Count:   len(hits),
	}

	for i := range hits {
		output.Matches[i] = KeywordMatchOutput{
			Term:     hits[i].Record.Term,
			Score:    hits[i].Score,
			DocID:    hits[i].Record.DocID,
			Source:   hits[i].Record.Source,
			Category: string(hits[i].Record.Category),
			Domain:   hits[i].Record.EstimatedDomain,
		}
	}

	return nil, output, nil
}

// handleSimilarDocuments handles the similar_documents tool invocation.
func (s *Server) handleSimilarDocuments(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input SimilarDocumentsInput,
) (*mcp.CallToolResult, SimilarDocumentsOutput, error) {
	hits, err := s.ports.Ontology.GetSimilarDocuments(ctx, input.DocID, input.TopK)
	if err != nil {
		return nil, SimilarDocumentsOutput{}, err
	}

	output := SimilarDocumentsOutput{
		Documents: make([]SimilarDocumentOutput, len(hits)),
		Count:     len(hits),
	}

	for i := range hits {
		doc := SimilarDocumentOutput{
			DocID:  hits[i].Record.DocID,
			Source: hits[i].Record.Source,
			Score:  hits[i].Score,
			Domain: hits[i].Record.EstimatedDomain,
		}
		for _, kw := range hits[i].Record.TopKeywords {
			doc.TopKeywords = append(doc.TopKeywords, kw.Term)
		}
		output.Documents[i] = doc
	}

	return nil, output, nil
}

// handleTopKeywords handles the top_keywords tool invocation.
func (s *Server) handleTopKeywords(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input TopKeywordsInput,
) (*mcp.CallToolResult, TopKeywordsOutput, error) {
	rows, err := s.ports.Ontology.GetTopKeywords(ctx, input.Limit)
	if err != nil {
		return nil, TopKeywordsOutput{}, err
	}

	output := TopKeywordsOutput{
		Keywords: make([]TopKeywordOutput, len(rows)),
		Count:    len(rows),
	}

	for i := range rows {
		output.Keywords[i] = TopKeywordOutput{
			Term:           rows[i].Term,
			TotalFrequency: rows[i].TotalFrequency,
			AvgScore:       rows[i].AvgScore,
			DocumentCount:  rows[i].DocumentCount,
			Sources:        rows[i].SampleSources,
		}
	}

	return nil, output, nil
}
