package keywords

import (
	"strings"

	"github.com/hanmaru-labs/hanrag/internal/core/domain"
)

// mergePriority orders strategies for merging. An earlier strategy
// keeps its version of a term when a later one repeats it.
var mergePriority = []domain.ExtractionMethod{
	domain.MethodEmbedding,
	domain.MethodLLM,
	domain.MethodStatistical,
}

// Merge combines per-method extraction results. The first method in
// priority order to produce a term owns it regardless of score; the
// combined list is capped at topK.
func Merge(byMethod map[domain.ExtractionMethod][]domain.Keyword, topK int) []domain.Keyword {
	if topK <= 0 {
		return nil
	}

	seen := make(map[string]struct{})
	var merged []domain.Keyword
	for _, method := range mergePriority {
		for _, kw := range byMethod[method] {
			key := strings.ToLower(strings.TrimSpace(kw.Term))
			if key == "" {
				continue
			}
			if _, ok := seen[key]; ok {
				continue
			}
			seen[key] = struct{}{}
			merged = append(merged, kw)
			if len(merged) == topK {
				return merged
			}
		}
	}
	return merged
}
