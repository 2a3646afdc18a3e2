// Package sqlite provides the SQLite-backed document registry.
//
// The registry uses modernc.org/sqlite, a pure Go SQLite implementation
// that requires no CGO, enabling easy cross-compilation. It records one
// row per ingested document plus one row per completed ontology
// extraction, backing document listing, batch-extraction id resolution,
// and stats. Chunk content and vectors live in the vector store, never
// here.
//
// # Schema
//
// The database schema is managed through versioned migrations stored in
// the migrations/ directory. Each migration is a pair of .up.sql and
// .down.sql files.
//
// # Data Location
//
// By default, the database is stored at ~/.hanrag/data/registry.db
//
// # Thread Safety
//
// All operations are thread-safe. The registry uses database-level
// locking provided by SQLite in WAL mode.
package sqlite
