package domain

import "time"

// Language classifies a document's dominant script.
type Language string

// Document languages.
const (
	LanguageKorean  Language = "korean"
	LanguageEnglish Language = "english"
	LanguageMixed   Language = "mixed"
	LanguageUnknown Language = "unknown"
)

// Estimated document domains. DomainGeneral is the zero-score fallback;
// the others are scored by vocabulary overlap in enumeration order, which
// also breaks ties.
const (
	DomainTechnology = "technology"
	DomainFinance    = "finance"
	DomainLegal      = "legal"
	DomainMedical    = "medical"
	DomainBusiness   = "business"
	DomainAcademic   = "academic"
	DomainGeneral    = "general"
)

// TextStatistics summarises the raw text of a document.
type TextStatistics struct {
	CharCount     int
	WordCount     int
	SentenceCount int

	// KoreanChars counts Hangul syllables, EnglishChars Latin letters.
	KoreanChars  int
	EnglishChars int

	AvgWordLength     float64
	AvgSentenceLength float64
}

// StructureInfo summarises document layout heuristics.
type StructureInfo struct {
	// HeaderCount counts short lines with a high uppercase ratio.
	HeaderCount int

	// ListItemCount counts lines starting with numbering or bullets.
	ListItemCount int

	// ParagraphCount counts blank-line-separated blocks.
	ParagraphCount int
}

// DocumentMetadata is the inferred per-document classification.
type DocumentMetadata struct {
	// Language is the dominant-script classification.
	Language Language

	// DocumentType is a coarse kind: contract, report, manual, legal,
	// academic, procedure, or general.
	DocumentType string

	// EstimatedDomain is the best-scoring subject domain.
	EstimatedDomain string

	// Entities are recognised named entities; empty when no recogniser
	// is configured.
	Entities []Entity

	TextStats TextStatistics
	Structure StructureInfo
}

// SemanticCluster groups chunks by embedding proximity.
// Clusters are recomputed fully on each extraction, never incrementally.
type SemanticCluster struct {
	// ID is the cluster index within one extraction run.
	ID int

	// Size is the number of member chunks.
	Size int

	// Representative is a truncated preview of the chunk closest to the
	// cluster centroid.
	Representative string

	// AvgSimilarity is the mean cosine similarity of members to the centroid.
	AvgSimilarity float64

	// ChunkIndices are the member positions in the extraction's chunk list.
	ChunkIndices []int
}

// ContextInfo captures document-level topical context.
type ContextInfo struct {
	// MainTopics are human-readable topic labels from TF-IDF clustering.
	MainTopics []string

	// Clusters are embedding-space semantic clusters.
	Clusters []SemanticCluster

	// RelatedConcepts are recurring multi-word phrases.
	RelatedConcepts []string

	// DomainIndicators are "{domain}:{term}" tags from pattern matches.
	DomainIndicators []string
}

// ProcessingStats records per-stage timings of one extraction run.
type ProcessingStats struct {
	TotalTime    time.Duration
	KeywordsTime time.Duration
	MetadataTime time.Duration
	ContextTime  time.Duration

	KeywordCount int
	EntityCount  int
	TopicCount   int
}

// OntologyResult is the per-document extraction aggregate. A re-extraction
// fully replaces the prior result; there is no versioning or merge.
type OntologyResult struct {
	DocID    string
	Source   string
	Keywords []Keyword
	Metadata DocumentMetadata
	Context  ContextInfo

	ExtractedAt time.Time
	Stats       ProcessingStats
}

// OntologyRecord is the stored document-level ontology payload. It is the
// typed form of what the document collection persists per document.
type OntologyRecord struct {
	DocID       string
	Source      string
	ExtractedAt time.Time

	Language        Language
	DocumentType    string
	EstimatedDomain string

	TextStats TextStatistics
	Structure StructureInfo

	KeywordCount   int
	TopKeywords    []Keyword
	CategoryCounts map[string]int

	EntityCount int
	EntityTypes map[string]int
	Entities    []Entity

	MainTopics       []string
	RelatedConcepts  []string
	DomainIndicators []string
	ClusterCount     int

	Stats ProcessingStats

	// SearchableContent is the synthesised summary string whose embedding
	// is the record's vector.
	SearchableContent string
}

// KeywordRecord is the stored keyword-level payload. It is a weak
// reference back to its owning document via DocID.
type KeywordRecord struct {
	Term      string
	Score     float64
	Frequency int
	Category  KeywordCategory
	Positions []int

	DocID           string
	Source          string
	DocumentType    string
	EstimatedDomain string
	Language        Language

	RelatedTopics   []string
	RelatedConcepts []string

	ExtractedAt time.Time
}

// OntologyHit is a scored document-level record.
type OntologyHit struct {
	Score  float64
	Record OntologyRecord
}

// KeywordHit is a scored keyword-level record.
type KeywordHit struct {
	Score  float64
	Record KeywordRecord
}

// KeywordAggregate is one row of the top-keywords aggregation: all
// keyword records sharing a lower-cased term folded together.
type KeywordAggregate struct {
	Term           string
	TotalFrequency int
	AvgScore       float64
	DocumentCount  int
	Categories     []string
	Domains        []string

	// SampleSources holds up to 5 distinct source names.
	SampleSources []string
}

// OntologyStatistics summarises the ontology collections.
type OntologyStatistics struct {
	DocumentRecords int
	KeywordRecords  int
	ByCategory      map[string]int
	ByDomain        map[string]int
	ByLanguage      map[string]int
}

// BatchResult reports a batch extraction run. Per-item failures never
// abort the batch; they are accumulated here.
type BatchResult struct {
	Successful int
	Failed     int
	Skipped    int

	FailedDocIDs []string

	ProcessingTime time.Duration
}
