package driven

import "context"

// ParseStrategy extracts raw text from one family of file formats.
// Strategies for the same extension are tried in priority order; output
// is validated (cleaned, garbled-checked) by the orchestrating parser,
// not by the strategy itself.
type ParseStrategy interface {
	// Name identifies the strategy in diagnostics ("pdf-rows", "docx", ...).
	Name() string

	// Extensions returns the lowercased extensions this strategy handles,
	// without dots. An empty slice marks a catch-all strategy.
	Extensions() []string

	// Priority orders strategies for the same extension (higher first).
	Priority() int

	// Parse extracts raw text from the file. The text may still be dirty;
	// cleaning happens downstream.
	Parse(ctx context.Context, path string) (string, error)
}

// ParseOutcome is the uniform result of multi-strategy parsing.
// Parsing never fails outright: when every strategy fails or produces
// garbled output, Fallback is true and Text holds a human-readable
// placeholder for the single fallback chunk.
type ParseOutcome struct {
	// Text is the cleaned extracted text, or the placeholder on fallback.
	Text string

	// FileType is the lowercased extension without the dot.
	FileType string

	// Strategy names the strategy that produced Text (empty on fallback).
	Strategy string

	// Fallback reports that no strategy produced usable text.
	Fallback bool

	// FailureReason summarises why parsing fell back, for diagnostics.
	FailureReason string
}

// FileParser orchestrates parse strategies over one file.
type FileParser interface {
	// Parse runs the strategy chain for the file's extension.
	// The returned error is non-nil only for context cancellation;
	// every other failure surfaces as a fallback outcome.
	Parse(ctx context.Context, path string) (ParseOutcome, error)

	// Supported returns the extensions with at least one registered strategy.
	Supported() []string
}
