package ai

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/hanmaru-labs/hanrag/internal/config"
)

// knownMethods are the registered keyword strategy names.
var knownMethods = map[string]bool{
	"embedding":   true,
	"statistical": true,
	"llm":         true,
}

// knownModes are the accepted search ranking modes.
var knownModes = map[string]bool{
	"vector": true,
	"hybrid": true,
	"rerank": true,
}

// ValidateConfig checks the resolved configuration for settings that
// would fail later or silently do nothing. It returns human-readable
// warnings; an empty slice means the configuration is sound.
func ValidateConfig(cfg *config.Config) []string {
	var warnings []string

	warnings = appendURLWarning(warnings, "ollama.base_url", cfg.Ollama.BaseURL)
	warnings = appendURLWarning(warnings, "openai.base_url", cfg.OpenAI.BaseURL)
	warnings = appendURLWarning(warnings, "qdrant.base_url", cfg.Qdrant.BaseURL)

	if cfg.Search.Mode != "" && !knownModes[cfg.Search.Mode] {
		warnings = append(warnings, fmt.Sprintf(
			"search.mode %q is not one of vector, hybrid, rerank", cfg.Search.Mode))
	}
	if cfg.Search.MinScore < 0 || cfg.Search.MinScore > 1 {
		warnings = append(warnings, fmt.Sprintf(
			"search.min_score %.2f is outside [0, 1]", cfg.Search.MinScore))
	}
	if cfg.Search.RerankMinScore < 0 || cfg.Search.RerankMinScore > 1 {
		warnings = append(warnings, fmt.Sprintf(
			"search.rerank_min_score %.2f is outside [0, 1]", cfg.Search.RerankMinScore))
	}

	for _, method := range cfg.Ontology.Methods {
		if !knownMethods[method] {
			warnings = append(warnings, fmt.Sprintf(
				"ontology.methods entry %q is not a registered strategy", method))
		}
		if method == "llm" && !cfg.Ontology.UseLLM {
			warnings = append(warnings,
				"ontology.methods includes llm but ontology.use_llm is off; the strategy will be skipped")
		}
	}

	if cfg.Chunker.ChunkSize > 0 && cfg.Chunker.ChunkOverlap >= cfg.Chunker.ChunkSize {
		warnings = append(warnings, fmt.Sprintf(
			"chunker.chunk_overlap %d must be smaller than chunker.chunk_size %d",
			cfg.Chunker.ChunkOverlap, cfg.Chunker.ChunkSize))
	}

	return warnings
}

// appendURLWarning validates a base URL setting when present.
func appendURLWarning(warnings []string, key, value string) []string {
	if value == "" {
		return warnings
	}
	u, err := url.Parse(value)
	if err != nil || u.Host == "" || !strings.HasPrefix(u.Scheme, "http") {
		return append(warnings, fmt.Sprintf("%s %q is not a valid http(s) URL", key, value))
	}
	return warnings
}
