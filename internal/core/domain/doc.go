// Package domain defines the core business entities for Hanrag.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - Document: a registry record for one ingested file
//   - Chunk: the atomic retrievable unit of document text
//   - SearchHit: a scored retrieval result
//   - Keyword, Entity: ontology extraction outputs
//   - OntologyResult: the per-document ontology aggregate
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
