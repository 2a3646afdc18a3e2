package domain

// KeywordCategory classifies what kind of concept a keyword names.
type KeywordCategory string

// Keyword categories.
const (
	CategoryTechnical    KeywordCategory = "technical"
	CategoryPerson       KeywordCategory = "person"
	CategoryOrganization KeywordCategory = "organization"
	CategoryLocation     KeywordCategory = "location"
	CategoryGeneral      KeywordCategory = "general"
	CategoryStatistical  KeywordCategory = "statistical"
)

// ExtractionMethod identifies which strategy produced a keyword.
type ExtractionMethod string

// Keyword extraction methods, in merge-priority order (highest first).
const (
	MethodEmbedding   ExtractionMethod = "embedding"
	MethodLLM         ExtractionMethod = "llm"
	MethodStatistical ExtractionMethod = "statistical"
)

// MaxKeywordPositions caps the number of sample character offsets
// recorded per keyword.
const MaxKeywordPositions = 5

// Keyword is a term extracted from a document together with its
// importance and surrounding context.
type Keyword struct {
	// Term is the keyword text as extracted.
	Term string

	// Score is the importance score assigned by the extraction method.
	Score float64

	// Frequency is the number of occurrences in the source text.
	Frequency int

	// Category classifies the keyword.
	Category KeywordCategory

	// Positions holds up to MaxKeywordPositions rune offsets of
	// occurrences in the source text.
	Positions []int

	// Description is an optional human-readable gloss.
	Description string

	// Method is the strategy that produced this record.
	Method ExtractionMethod
}

// Entity is a recognised named entity. Entities are produced only when
// an entity recogniser is configured; their absence is not an error.
type Entity struct {
	// Text is the entity span as it occurs in the source.
	Text string

	// Label is the entity type (PER, ORG, LOC, ...).
	Label string

	// Start and End are rune offsets of the span.
	Start int
	End   int

	// Confidence is the recogniser's confidence, 0-1.
	Confidence float64
}
