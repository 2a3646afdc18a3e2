package domain

import "time"

// SearchMode selects the ranking strategy for a search.
type SearchMode string

// Search modes.
const (
	// SearchModeVector ranks purely by vector similarity.
	SearchModeVector SearchMode = "vector"

	// SearchModeHybrid boosts vector scores with lexical and language signals.
	SearchModeHybrid SearchMode = "hybrid"

	// SearchModeRerank rescores a wider candidate pool with keyword,
	// language, and length signals.
	SearchModeRerank SearchMode = "rerank"
)

// Language hints for search filtering.
const (
	// LangAuto applies no language filter.
	LangAuto = "auto"

	// LangKorean restricts results to chunks flagged has_korean.
	LangKorean = "ko"

	// LangEnglish restricts results to chunks flagged has_english.
	LangEnglish = "en"
)

// SearchOptions configures a retrieval operation.
type SearchOptions struct {
	// Mode is the ranking strategy. Defaults to SearchModeVector.
	Mode SearchMode

	// TopK is the maximum number of results.
	TopK int

	// LanguageHint is LangKorean, LangEnglish, LangAuto, or empty.
	LanguageHint string

	// MinScore overrides the mode's default score floor when > 0.
	MinScore float64

	// Source restricts results to chunks from one source filename.
	Source string

	// FileType restricts results to one file type.
	FileType string

	// DateFrom restricts results to chunks uploaded at or after this time.
	DateFrom time.Time
}

// SearchHit is a single scored retrieval result.
type SearchHit struct {
	// ID is the matched chunk's id.
	ID string

	// Score is the relevance score, normalised to 0-1. Hybrid and rerank
	// passes overwrite it in place before the final sort.
	Score float64

	// Chunk is the full matched chunk payload.
	Chunk Chunk
}
