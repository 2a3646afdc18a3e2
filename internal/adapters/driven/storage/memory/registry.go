// Package memory provides an in-memory document registry for tests and
// ephemeral runs. Nothing survives a restart.
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/hanmaru-labs/hanrag/internal/core/domain"
	"github.com/hanmaru-labs/hanrag/internal/core/ports/driven"
)

// Ensure Registry implements the interface.
var _ driven.DocumentRegistry = (*Registry)(nil)

// Registry is an in-memory implementation of driven.DocumentRegistry.
type Registry struct {
	mu   sync.RWMutex
	docs map[string]domain.Document
	runs map[string]driven.OntologyRun
}

// NewRegistry creates an in-memory document registry.
func NewRegistry() *Registry {
	return &Registry{
		docs: make(map[string]domain.Document),
		runs: make(map[string]driven.OntologyRun),
	}
}

// SaveDocument stores or updates a document record.
func (r *Registry) SaveDocument(_ context.Context, doc domain.Document) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.docs[doc.ID] = doc
	return nil
}

// GetDocument returns a document by id.
func (r *Registry) GetDocument(_ context.Context, id string) (*domain.Document, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	doc, ok := r.docs[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &doc, nil
}

// GetByFilename returns the most recent document with the filename.
func (r *Registry) GetByFilename(_ context.Context, filename string) (*domain.Document, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var matches []domain.Document
	for _, doc := range r.docs {
		if doc.Filename == filename {
			matches = append(matches, doc)
		}
	}
	if len(matches) == 0 {
		return nil, domain.ErrNotFound
	}
	sortNewestFirst(matches)
	return &matches[0], nil
}

// ListDocuments returns all documents, most recent first.
func (r *Registry) ListDocuments(_ context.Context) ([]domain.Document, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]domain.Document, 0, len(r.docs))
	for _, doc := range r.docs {
		result = append(result, doc)
	}
	sortNewestFirst(result)
	return result, nil
}

// DeleteDocument removes a document record and its ontology run.
func (r *Registry) DeleteDocument(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.docs, id)
	delete(r.runs, id)
	return nil
}

// RecordOntologyRun stores or replaces the extraction record for a doc.
func (r *Registry) RecordOntologyRun(_ context.Context, run driven.OntologyRun) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.runs[run.DocID] = run
	return nil
}

// GetOntologyRun returns the extraction record for a doc.
func (r *Registry) GetOntologyRun(_ context.Context, docID string) (*driven.OntologyRun, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	run, ok := r.runs[docID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &run, nil
}

// CountDocuments returns the number of registered documents.
func (r *Registry) CountDocuments(_ context.Context) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.docs), nil
}

// Close is a no-op.
func (r *Registry) Close() error {
	return nil
}

// sortNewestFirst orders documents by upload time descending, with ids
// breaking ties so map iteration order never leaks out.
func sortNewestFirst(docs []domain.Document) {
	sort.Slice(docs, func(i, j int) bool {
		if !docs[i].UploadedAt.Equal(docs[j].UploadedAt) {
			return docs[i].UploadedAt.After(docs[j].UploadedAt)
		}
		return docs[i].ID > docs[j].ID
	})
}
