// Package keywords implements keyword extraction strategies behind a
// method-name registry. Embedding-phrase ranking, token frequency, and
// LLM prompting each produce scored keywords with in-document
// positions; Merge combines per-method results by fixed priority.
package keywords

import (
	"github.com/hanmaru-labs/hanrag/internal/core/domain"
	"github.com/hanmaru-labs/hanrag/internal/core/ports/driven"
)

// Registry holds the closed set of extraction strategies keyed by
// method name.
type Registry struct {
	byMethod map[domain.ExtractionMethod]driven.KeywordExtractor
	order    []domain.ExtractionMethod
}

// NewRegistry creates a registry for the given extractors. A later
// extractor replaces an earlier one with the same method.
func NewRegistry(extractors ...driven.KeywordExtractor) *Registry {
	r := &Registry{
		byMethod: make(map[domain.ExtractionMethod]driven.KeywordExtractor, len(extractors)),
	}
	for _, e := range extractors {
		if _, ok := r.byMethod[e.Method()]; !ok {
			r.order = append(r.order, e.Method())
		}
		r.byMethod[e.Method()] = e
	}
	return r
}

// Get returns the extractor registered for method.
func (r *Registry) Get(method domain.ExtractionMethod) (driven.KeywordExtractor, bool) {
	e, ok := r.byMethod[method]
	return e, ok
}

// Methods lists registered methods in registration order.
func (r *Registry) Methods() []domain.ExtractionMethod {
	out := make([]domain.ExtractionMethod, len(r.order))
	copy(out, r.order)
	return out
}
