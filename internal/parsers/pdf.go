package parsers

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/ledongthuc/pdf"

	"github.com/hanmaru-labs/hanrag/internal/core/ports/driven"
)

// Strategy priorities for PDF parsing. Row-ordered extraction keeps
// Korean layout best; the plain-text walk is the coarsest.
const (
	priorityPDFRows    = 30
	priorityPDFContent = 20
	priorityPDFPlain   = 10
)

// PDFRowsStrategy extracts text row by row per page, preserving line
// order. This is the most faithful extraction for Korean documents
// with mixed layout.
type PDFRowsStrategy struct{}

var _ driven.ParseStrategy = (*PDFRowsStrategy)(nil)

// NewPDFRows creates the row-ordered PDF strategy.
func NewPDFRows() *PDFRowsStrategy { return &PDFRowsStrategy{} }

func (s *PDFRowsStrategy) Name() string         { return "pdf-rows" }
func (s *PDFRowsStrategy) Extensions() []string { return []string{"pdf"} }
func (s *PDFRowsStrategy) Priority() int        { return priorityPDFRows }

// Parse walks every page and joins row text top to bottom.
func (s *PDFRowsStrategy) Parse(ctx context.Context, path string) (string, error) {
	f, reader, err := pdf.Open(path)
	if err != nil {
		return "", fmt.Errorf("open pdf: %w", err)
	}
	defer f.Close()

	var pages []string
	for i := 1; i <= reader.NumPage(); i++ {
		if err := ctx.Err(); err != nil {
			return "", err
		}

		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}

		rows, err := page.GetTextByRow()
		if err != nil {
			continue
		}

		var lines []string
		for _, row := range rows {
			var line strings.Builder
			for _, word := range row.Content {
				line.WriteString(word.S)
			}
			if text := strings.TrimSpace(line.String()); text != "" {
				lines = append(lines, text)
			}
		}
		if len(lines) > 0 {
			pages = append(pages, strings.Join(lines, "\n"))
		}
	}

	if len(pages) == 0 {
		return "", fmt.Errorf("no extractable text")
	}
	return strings.Join(pages, "\n\n"), nil
}

// PDFContentStrategy extracts raw content-stream text fragments and
// reassembles lines by position. It recovers text from documents where
// the row grouping comes out empty.
type PDFContentStrategy struct{}

var _ driven.ParseStrategy = (*PDFContentStrategy)(nil)

// NewPDFContent creates the fragment-reassembly PDF strategy.
func NewPDFContent() *PDFContentStrategy { return &PDFContentStrategy{} }

func (s *PDFContentStrategy) Name() string         { return "pdf-content" }
func (s *PDFContentStrategy) Extensions() []string { return []string{"pdf"} }
func (s *PDFContentStrategy) Priority() int        { return priorityPDFContent }

// Parse sorts each page's text fragments top-to-bottom, left-to-right
// and joins fragments sharing a baseline into one line.
func (s *PDFContentStrategy) Parse(ctx context.Context, path string) (string, error) {
	f, reader, err := pdf.Open(path)
	if err != nil {
		return "", fmt.Errorf("open pdf: %w", err)
	}
	defer f.Close()

	var pages []string
	for i := 1; i <= reader.NumPage(); i++ {
		if err := ctx.Err(); err != nil {
			return "", err
		}

		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}

		texts := page.Content().Text
		if len(texts) == 0 {
			continue
		}

		// PDF y grows upward, so descending y is top to bottom.
		sort.SliceStable(texts, func(a, b int) bool {
			if texts[a].Y != texts[b].Y {
				return texts[a].Y > texts[b].Y
			}
			return texts[a].X < texts[b].X
		})

		var lines []string
		var line strings.Builder
		baseline := texts[0].Y
		for _, t := range texts {
			if t.Y != baseline {
				if text := strings.TrimSpace(line.String()); text != "" {
					lines = append(lines, text)
				}
				line.Reset()
				baseline = t.Y
			}
			line.WriteString(t.S)
		}
		if text := strings.TrimSpace(line.String()); text != "" {
			lines = append(lines, text)
		}

		if len(lines) > 0 {
			pages = append(pages, strings.Join(lines, "\n"))
		}
	}

	if len(pages) == 0 {
		return "", fmt.Errorf("no extractable text")
	}
	return strings.Join(pages, "\n\n"), nil
}

// PDFPlainStrategy reads the document's plain text in one pass. It is
// the last resort: ordering and spacing are at the mercy of the
// content stream.
type PDFPlainStrategy struct{}

var _ driven.ParseStrategy = (*PDFPlainStrategy)(nil)

// NewPDFPlain creates the whole-document plain text PDF strategy.
func NewPDFPlain() *PDFPlainStrategy { return &PDFPlainStrategy{} }

func (s *PDFPlainStrategy) Name() string         { return "pdf-plain" }
func (s *PDFPlainStrategy) Extensions() []string { return []string{"pdf"} }
func (s *PDFPlainStrategy) Priority() int        { return priorityPDFPlain }

func (s *PDFPlainStrategy) Parse(_ context.Context, path string) (string, error) {
	f, reader, err := pdf.Open(path)
	if err != nil {
		return "", fmt.Errorf("open pdf: %w", err)
	}
	defer f.Close()

	r, err := reader.GetPlainText()
	if err != nil {
		return "", fmt.Errorf("plain text: %w", err)
	}

	data, err := io.ReadAll(r)
	if err != nil {
		return "", fmt.Errorf("read text: %w", err)
	}
	return string(data), nil
}
