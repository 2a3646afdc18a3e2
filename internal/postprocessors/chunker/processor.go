// Package chunker provides a boundary-aware text chunking stage tuned
// for Korean prose.
package chunker

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/hanmaru-labs/hanrag/internal/core/domain"
	"github.com/hanmaru-labs/hanrag/internal/core/ports/driven"
)

// DefaultChunkSize is the default number of characters per chunk.
const DefaultChunkSize = 500

// DefaultChunkOverlap is the default number of overlapping characters.
const DefaultChunkOverlap = 50

// DefaultMinChunkSize is the minimum character count a split chunk must
// exceed to be kept. Final fragments at or below this length are dropped.
const DefaultMinChunkSize = 10

// boundaryWindow caps how far back from the cut point the boundary
// search looks, independent of chunk size.
const boundaryWindow = 100

// koreanEndings are sentence-final syllables that, followed by
// whitespace, make an acceptable cut point.
var koreanEndings = map[rune]bool{
	'다': true, '요': true, '죠': true, '네': true,
	'라': true, '까': true, '야': true,
}

// Processor splits document text into chunks, preferring sentence and
// word boundaries over hard cuts. The overlap setting bounds the
// minimum stride between chunk starts (size minus overlap); the next
// chunk never starts before the current one ends. All offsets and
// sizes are in runes, so Korean text is never split mid-character.
// It implements the PostProcessor interface.
type Processor struct {
	chunkSize int
	overlap   int
	minSize   int
}

var _ driven.PostProcessor = (*Processor)(nil)

// Option configures the chunker stage.
type Option func(*Processor)

// WithChunkSize sets the chunk size in characters.
func WithChunkSize(size int) Option {
	return func(p *Processor) {
		if size > 0 {
			p.chunkSize = size
		}
	}
}

// WithOverlap sets the overlap between chunks in characters.
func WithOverlap(overlap int) Option {
	return func(p *Processor) {
		if overlap >= 0 {
			p.overlap = overlap
		}
	}
}

// WithMinChunkSize sets the minimum length a split chunk must exceed.
func WithMinChunkSize(size int) Option {
	return func(p *Processor) {
		if size > 0 {
			p.minSize = size
		}
	}
}

// New creates a new chunker stage with the given options.
func New(opts ...Option) *Processor {
	p := &Processor{
		chunkSize: DefaultChunkSize,
		overlap:   DefaultChunkOverlap,
		minSize:   DefaultMinChunkSize,
	}

	for _, opt := range opts {
		opt(p)
	}

	// Ensure overlap doesn't exceed chunk size
	if p.overlap >= p.chunkSize {
		p.overlap = p.chunkSize / 4
	}

	return p
}

// Name returns the stage name.
func (p *Processor) Name() string {
	return "chunker"
}

// Process splits the text into chunks. Input chunks are ignored; this
// stage creates new chunks from the (already cleaned) text.
//
// Text no longer than the chunk size becomes a single chunk. Longer
// text is cut at the best boundary found within the trailing window:
// sentence punctuation first, then a Korean sentence ending followed
// by whitespace, then any whitespace, then a hard cut. Split chunks
// shorter than the minimum size are discarded.
func (p *Processor) Process(_ context.Context, text *driven.ParsedText, _ []domain.Chunk) ([]domain.Chunk, error) {
	runes := []rune(strings.TrimSpace(text.Text))
	if len(runes) == 0 {
		return nil, nil
	}

	var chunks []domain.Chunk

	if len(runes) <= p.chunkSize {
		chunks = append(chunks, p.newChunk(text, string(runes), 0, 0))
	} else {
		start := 0
		index := 0

		for start < len(runes) {
			end := start + p.chunkSize
			if end < len(runes) {
				end = p.findBoundary(runes, start, end)
			} else {
				end = len(runes)
			}

			content := strings.TrimSpace(string(runes[start:end]))
			if len([]rune(content)) > p.minSize {
				chunks = append(chunks, p.newChunk(text, content, index, start))
				index++
			}

			// The next start is at least size-overlap past the current
			// one, and never before the current end.
			next := start + p.chunkSize - p.overlap
			if end > next {
				next = end
			}
			start = next
		}
	}

	for i := range chunks {
		chunks[i].TotalChunks = len(chunks)
	}

	return chunks, nil
}

// findBoundary searches backward from end for the best cut point and
// returns an index in (floor, end]. The search floor is the later of
// the chunk midpoint and the trailing window; when nothing matches,
// the hard cut at end stands.
func (p *Processor) findBoundary(runes []rune, start, end int) int {
	floor := start + p.chunkSize/2
	if w := end - boundaryWindow; w > floor {
		floor = w
	}

	// Sentence punctuation wins.
	for i := end - 1; i > floor; i-- {
		if isSentencePunct(runes[i]) {
			return i + 1
		}
	}

	// Then a Korean sentence-final syllable followed by whitespace.
	for i := end - 1; i > floor; i-- {
		if koreanEndings[runes[i]] && isBoundarySpace(runes[i+1]) {
			return i + 1
		}
	}

	// Then any whitespace.
	for i := end - 1; i > floor; i-- {
		if isBoundarySpace(runes[i]) {
			return i + 1
		}
	}

	return end
}

func (p *Processor) newChunk(text *driven.ParsedText, content string, index, offset int) domain.Chunk {
	return domain.Chunk{
		ID:          uuid.New().String(),
		DocID:       text.DocID,
		Content:     content,
		Source:      text.Source,
		FileType:    text.FileType,
		Index:       index,
		StartOffset: offset,
		Type:        domain.ChunkTypeText,
		HasKorean:   domain.HasHangul(content),
		HasEnglish:  domain.HasLatin(content),
	}
}

func isSentencePunct(r rune) bool {
	switch r {
	case '.', '!', '?', '。', '！', '？', '\n':
		return true
	}
	return false
}

func isBoundarySpace(r rune) bool {
	return r == ' ' || r == '\n' || r == '\t'
}
