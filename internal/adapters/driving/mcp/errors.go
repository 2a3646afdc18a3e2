// Package mcp provides the Model Context Protocol server adapter.
// It lets AI assistants search the local index, ingest files, and query
// the extracted document ontologies.
package mcp

import "errors"

// ErrMissingSearchService is returned when the search service is not provided.
var ErrMissingSearchService = errors.New("mcp: search service is required")
