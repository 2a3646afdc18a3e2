// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
// These must be provided for the application to function:
//
//   - Embedder: Generates vector embeddings (Ollama/E5, OpenAI-compatible)
//   - ChunkIndex: Chunk vector collection storage and search (Qdrant)
//   - OntologyIndex: Document- and keyword-level ontology collections (Qdrant)
//   - FileParser: Multi-strategy file parsing
//   - PostProcessorPipeline: Cleaning and chunking of parsed text
//   - DocumentRegistry: Document metadata persistence (SQLite)
//   - ConfigStore: Application configuration
//
// # Optional Interfaces
//
// These can be nil - the application degrades gracefully:
//
//   - Generator: Text generation for LLM keyword extraction. Without it,
//     the llm keyword method yields nothing.
//   - EntityRecognizer: Named-entity recognition. Without it, ontology
//     results carry empty entity lists.
//   - EmbeddingCache: Embedding memoisation. Without it, every text is
//     re-embedded.
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter, parser, or postprocessor package
package driven
