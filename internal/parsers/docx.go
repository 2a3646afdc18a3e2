package parsers

import (
	"archive/zip"
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"strings"

	"github.com/hanmaru-labs/hanrag/internal/core/ports/driven"
)

const priorityDocx = 10

// DocxStrategy extracts text from Word documents: body paragraphs
// first, then table rows with cells joined by " | ". Legacy .doc files
// are routed here too and fail at the archive open, falling through to
// the fallback outcome.
type DocxStrategy struct{}

var _ driven.ParseStrategy = (*DocxStrategy)(nil)

// NewDocx creates the Word document strategy.
func NewDocx() *DocxStrategy { return &DocxStrategy{} }

func (s *DocxStrategy) Name() string         { return "docx" }
func (s *DocxStrategy) Extensions() []string { return []string{"docx", "doc"} }
func (s *DocxStrategy) Priority() int        { return priorityDocx }

func (s *DocxStrategy) Parse(_ context.Context, path string) (string, error) {
	zr, err := zip.OpenReader(path)
	if err != nil {
		return "", fmt.Errorf("open docx: %w", err)
	}
	defer zr.Close()

	var doc *zip.File
	for _, f := range zr.File {
		if f.Name == "word/document.xml" {
			doc = f
			break
		}
	}
	if doc == nil {
		return "", fmt.Errorf("word/document.xml not found")
	}

	r, err := doc.Open()
	if err != nil {
		return "", fmt.Errorf("open document.xml: %w", err)
	}
	defer r.Close()

	text, err := extractDocxText(r)
	if err != nil {
		return "", err
	}
	if text == "" {
		return "", fmt.Errorf("no extractable text")
	}
	return text, nil
}

// extractDocxText walks the WordprocessingML token stream. Paragraph
// text inside tables goes to the enclosing cell, not the body.
func extractDocxText(r io.Reader) (string, error) {
	dec := xml.NewDecoder(r)

	var (
		paragraphs []string
		tableRows  []string
		para       strings.Builder
		cell       strings.Builder
		row        []string
		tableDepth int
	)

	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", fmt.Errorf("decode document.xml: %w", err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "tbl":
				tableDepth++
			case "tc":
				if tableDepth == 1 {
					cell.Reset()
				}
			case "tr":
				if tableDepth == 1 {
					row = row[:0]
				}
			case "tab":
				writeRun(&para, &cell, tableDepth, "\t")
			case "br", "cr":
				writeRun(&para, &cell, tableDepth, "\n")
			case "t":
				var text string
				if err := dec.DecodeElement(&text, &t); err != nil {
					return "", fmt.Errorf("decode text run: %w", err)
				}
				writeRun(&para, &cell, tableDepth, text)
			}

		case xml.EndElement:
			switch t.Name.Local {
			case "tbl":
				tableDepth--
			case "p":
				if tableDepth > 0 {
					cell.WriteString("\n")
					break
				}
				if text := strings.TrimSpace(para.String()); text != "" {
					paragraphs = append(paragraphs, text)
				}
				para.Reset()
			case "tc":
				if tableDepth == 1 {
					row = append(row, strings.TrimSpace(cell.String()))
				}
			case "tr":
				if tableDepth != 1 {
					break
				}
				cells := make([]string, 0, len(row))
				for _, c := range row {
					if c != "" {
						cells = append(cells, c)
					}
				}
				if len(cells) > 0 {
					tableRows = append(tableRows, strings.Join(cells, " | "))
				}
			}
		}
	}

	sections := append(paragraphs, tableRows...)
	return strings.Join(sections, "\n\n"), nil
}

func writeRun(para, cell *strings.Builder, tableDepth int, text string) {
	if tableDepth > 0 {
		cell.WriteString(text)
		return
	}
	para.WriteString(text)
}
