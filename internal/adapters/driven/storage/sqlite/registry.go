package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/hanmaru-labs/hanrag/internal/adapters/driven/storage/sqlite/migrations"
	"github.com/hanmaru-labs/hanrag/internal/core/domain"
	"github.com/hanmaru-labs/hanrag/internal/core/ports/driven"
)

// Ensure Registry implements the interface.
var _ driven.DocumentRegistry = (*Registry)(nil)

// Registry is a SQLite-backed implementation of driven.DocumentRegistry.
type Registry struct {
	db   *sql.DB
	path string
}

// NewRegistry opens the registry database in dataDir, creating it and
// running pending migrations as needed. If dataDir is empty, defaults
// to ~/.hanrag/data/registry.db.
func NewRegistry(dataDir string) (*Registry, error) {
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		dataDir = filepath.Join(home, ".hanrag", "data")
	}

	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, "registry.db")

	// Open database with WAL mode for better concurrency
	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	r := &Registry{
		db:   db,
		path: dbPath,
	}

	if err := r.migrate(migrations.FS); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return r, nil
}

// Close closes the database connection.
func (r *Registry) Close() error {
	return r.db.Close()
}

// Path returns the database file path.
func (r *Registry) Path() string {
	return r.path
}

// migrate runs all pending migrations.
func (r *Registry) migrate(fsys embed.FS) error {
	_, err := r.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("creating schema_migrations table: %w", err)
	}

	var currentVersion int
	row := r.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations")
	if err := row.Scan(&currentVersion); err != nil {
		return fmt.Errorf("getting current version: %w", err)
	}

	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}

	var upFiles []string
	for _, entry := range entries {
		name := entry.Name()
		if strings.HasSuffix(name, ".up.sql") {
			upFiles = append(upFiles, name)
		}
	}
	sort.Strings(upFiles)

	for _, name := range upFiles {
		// Extract version number (e.g., "001_initial.up.sql" -> 1)
		var version int
		if _, err := fmt.Sscanf(name, "%d_", &version); err != nil {
			continue
		}
		if version <= currentVersion {
			continue
		}

		content, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", name, err)
		}
		if _, err := r.db.Exec(string(content)); err != nil {
			return fmt.Errorf("executing migration %s: %w", name, err)
		}
	}

	return nil
}

// SaveDocument stores or updates a document record.
func (r *Registry) SaveDocument(ctx context.Context, doc domain.Document) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO documents (id, filename, file_type, size_bytes, chunk_count, char_count, status, uploaded_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			filename = excluded.filename,
			file_type = excluded.file_type,
			size_bytes = excluded.size_bytes,
			chunk_count = excluded.chunk_count,
			char_count = excluded.char_count,
			status = excluded.status,
			uploaded_at = excluded.uploaded_at
	`, doc.ID, doc.Filename, doc.FileType, doc.SizeBytes, doc.ChunkCount,
		doc.CharCount, string(doc.Status), doc.UploadedAt.UTC())

	if err != nil {
		return fmt.Errorf("saving document: %w", err)
	}
	return nil
}

// GetDocument returns a document by id.
func (r *Registry) GetDocument(ctx context.Context, id string) (*domain.Document, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, filename, file_type, size_bytes, chunk_count, char_count, status, uploaded_at
		FROM documents WHERE id = ?
	`, id)

	return scanDocument(row)
}

// GetByFilename returns the most recent document with the filename.
func (r *Registry) GetByFilename(ctx context.Context, filename string) (*domain.Document, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, filename, file_type, size_bytes, chunk_count, char_count, status, uploaded_at
		FROM documents WHERE filename = ?
		ORDER BY uploaded_at DESC LIMIT 1
	`, filename)

	return scanDocument(row)
}

// ListDocuments returns all documents, most recent first.
func (r *Registry) ListDocuments(ctx context.Context) ([]domain.Document, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, filename, file_type, size_bytes, chunk_count, char_count, status, uploaded_at
		FROM documents
		ORDER BY uploaded_at DESC, id
	`)
	if err != nil {
		return nil, fmt.Errorf("querying documents: %w", err)
	}
	defer rows.Close()

	var docs []domain.Document //nolint:prealloc // size unknown from query
	for rows.Next() {
		var doc domain.Document
		var status string
		if err := rows.Scan(&doc.ID, &doc.Filename, &doc.FileType, &doc.SizeBytes,
			&doc.ChunkCount, &doc.CharCount, &status, &doc.UploadedAt); err != nil {
			return nil, fmt.Errorf("scanning document: %w", err)
		}
		doc.Status = domain.DocumentStatus(status)
		docs = append(docs, doc)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating documents: %w", err)
	}

	return docs, nil
}

// DeleteDocument removes a document record and its extraction record.
func (r *Registry) DeleteDocument(ctx context.Context, id string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	if _, err := tx.ExecContext(ctx, "DELETE FROM ontology_runs WHERE doc_id = ?", id); err != nil {
		return fmt.Errorf("deleting ontology run: %w", err)
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM documents WHERE id = ?", id); err != nil {
		return fmt.Errorf("deleting document: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

// RecordOntologyRun stores or replaces the extraction record for a doc.
func (r *Registry) RecordOntologyRun(ctx context.Context, run driven.OntologyRun) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO ontology_runs (doc_id, extracted_at, keyword_count, entity_count, topic_count, duration_ms)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(doc_id) DO UPDATE SET
			extracted_at = excluded.extracted_at,
			keyword_count = excluded.keyword_count,
			entity_count = excluded.entity_count,
			topic_count = excluded.topic_count,
			duration_ms = excluded.duration_ms
	`, run.DocID, run.ExtractedAt.UTC(), run.KeywordCount, run.EntityCount,
		run.TopicCount, run.Duration.Milliseconds())

	if err != nil {
		return fmt.Errorf("saving ontology run: %w", err)
	}
	return nil
}

// GetOntologyRun returns the extraction record for a doc.
func (r *Registry) GetOntologyRun(ctx context.Context, docID string) (*driven.OntologyRun, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT doc_id, extracted_at, keyword_count, entity_count, topic_count, duration_ms
		FROM ontology_runs WHERE doc_id = ?
	`, docID)

	var run driven.OntologyRun
	var durationMS int64
	if err := row.Scan(&run.DocID, &run.ExtractedAt, &run.KeywordCount,
		&run.EntityCount, &run.TopicCount, &durationMS); err != nil {
		if err == sql.ErrNoRows {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("scanning ontology run: %w", err)
	}
	run.Duration = time.Duration(durationMS) * time.Millisecond

	return &run, nil
}

// CountDocuments returns the number of registered documents.
func (r *Registry) CountDocuments(ctx context.Context) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM documents").Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("counting documents: %w", err)
	}
	return count, nil
}

// scanDocument scans a single document row.
func scanDocument(row *sql.Row) (*domain.Document, error) {
	var doc domain.Document
	var status string

	if err := row.Scan(&doc.ID, &doc.Filename, &doc.FileType, &doc.SizeBytes,
		&doc.ChunkCount, &doc.CharCount, &status, &doc.UploadedAt); err != nil {
		if err == sql.ErrNoRows {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("scanning document: %w", err)
	}
	doc.Status = domain.DocumentStatus(status)

	return &doc, nil
}
