// Package ontology provides the document ontology view for the TUI.
package ontology

import (
	"context"
	"errors"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/hanmaru-labs/hanrag/internal/adapters/driving/tui/messages"
	"github.com/hanmaru-labs/hanrag/internal/adapters/driving/tui/styles"
	"github.com/hanmaru-labs/hanrag/internal/core/domain"
	"github.com/hanmaru-labs/hanrag/internal/core/ports/driving"
)

// ErrNoOntologyService indicates that no ontology service was provided.
var ErrNoOntologyService = errors.New("ontology service is required")

// View shows one document's stored ontology.
type View struct {
	styles          *styles.Styles
	ontologyService driving.OntologyService
	ctx             context.Context

	document *domain.Document
	record   *domain.OntologyRecord
	width    int
	height   int
	ready    bool
	err      error
	loading  bool
}

// NewView creates a new ontology view.
func NewView(s *styles.Styles, ontologyService driving.OntologyService) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}

	return &View{
		styles:          s,
		ontologyService: ontologyService,
		ctx:             context.Background(),
		width:           80,
		height:          24,
	}
}

// WithContext sets the context for the view.
func (v *View) WithContext(ctx context.Context) *View {
	v.ctx = ctx
	return v
}

// Init initialises the view.
func (v *View) Init() tea.Cmd {
	return nil
}

// SetDocument sets the document and loads its ontology.
func (v *View) SetDocument(doc domain.Document) tea.Cmd {
	v.document = &doc
	v.record = nil
	v.err = nil
	v.loading = true
	return v.loadOntology(doc.ID)
}

// loadOntology returns a command that loads the stored record.
func (v *View) loadOntology(docID string) tea.Cmd {
	return func() tea.Msg {
		if v.ontologyService == nil {
			return messages.OntologyLoaded{DocID: docID, Err: ErrNoOntologyService}
		}

		rec, err := v.ontologyService.GetDocumentOntology(v.ctx, docID)
		return messages.OntologyLoaded{DocID: docID, Record: rec, Err: err}
	}
}

// Update handles messages for the ontology view.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.width = msg.Width
		v.height = msg.Height
		v.ready = true
		return v, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "esc":
			return v, func() tea.Msg {
				return messages.ViewChanged{View: messages.ViewDocuments}
			}
		case "r":
			if v.document != nil {
				v.loading = true
				return v, v.loadOntology(v.document.ID)
			}
		}
		return v, nil

	case messages.OntologyLoaded:
		v.loading = false
		if msg.Err != nil {
			v.record = nil
			v.err = msg.Err
		} else {
			v.record = msg.Record
			v.err = nil
		}
		return v, nil

	case messages.ErrorOccurred:
		v.err = msg.Err
		return v, nil
	}

	return v, nil
}

// View renders the ontology view.
func (v *View) View() string {
	if !v.ready {
		return "Initialising..."
	}

	var b strings.Builder

	title := "Ontology"
	if v.document != nil {
		title = "Ontology: " + v.document.Filename
	}
	b.WriteString(v.styles.Title.Render(title))
	b.WriteString("\n\n")

	switch {
	case v.loading:
		b.WriteString(v.styles.Muted.Render("Loading..."))
	case v.err != nil:
		if errors.Is(v.err, domain.ErrNotFound) {
			b.WriteString(v.styles.Muted.Render("No ontology extracted for this document yet."))
			b.WriteString("\n")
			b.WriteString(v.styles.Help.Render("Run: hanrag ontology extract <doc-id>"))
		} else {
			b.WriteString(v.styles.Error.Render("Error: " + v.err.Error()))
		}
	case v.record == nil:
		b.WriteString(v.styles.Muted.Render("No ontology loaded."))
	default:
		b.WriteString(v.renderRecord())
	}

	b.WriteString("\n\n")
	b.WriteString(v.styles.Help.Render("[r] refresh  [esc] back"))

	return b.String()
}

// renderRecord formats the loaded ontology record.
func (v *View) renderRecord() string {
	rec := v.record

	var b strings.Builder
	b.WriteString(v.styles.Normal.Render(fmt.Sprintf("Type:     %s", rec.DocumentType)))
	b.WriteString("\n")
	b.WriteString(v.styles.Normal.Render(fmt.Sprintf("Domain:   %s", rec.EstimatedDomain)))
	b.WriteString("\n")
	b.WriteString(v.styles.Normal.Render(fmt.Sprintf("Language: %s", rec.Language)))
	b.WriteString("\n")
	b.WriteString(v.styles.Muted.Render(fmt.Sprintf("Extracted %s", rec.ExtractedAt.Format("2006-01-02 15:04"))))
	b.WriteString("\n")

	if len(rec.TopKeywords) > 0 {
		b.WriteString("\n")
		b.WriteString(v.styles.Subtitle.Render("Keywords"))
		b.WriteString("\n")
		for _, kw := range rec.TopKeywords {
			b.WriteString(v.styles.Normal.Render(fmt.Sprintf("  %s", kw.Term)))
			b.WriteString(v.styles.Muted.Render(fmt.Sprintf("  %.2f %s", kw.Score, kw.Category)))
			b.WriteString("\n")
		}
	}

	if len(rec.MainTopics) > 0 {
		b.WriteString("\n")
		b.WriteString(v.styles.Subtitle.Render("Topics"))
		b.WriteString("\n")
		for _, topic := range rec.MainTopics {
			b.WriteString(v.styles.Normal.Render("  " + topic))
			b.WriteString("\n")
		}
	}

	if len(rec.Entities) > 0 {
		b.WriteString("\n")
		b.WriteString(v.styles.Subtitle.Render("Entities"))
		b.WriteString("\n")
		for _, e := range rec.Entities {
			b.WriteString(v.styles.Normal.Render(fmt.Sprintf("  %s", e.Text)))
			b.WriteString(v.styles.Muted.Render(fmt.Sprintf("  %s", e.Label)))
			b.WriteString("\n")
		}
	}

	return b.String()
}

// SetDimensions sets the view dimensions.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
	v.ready = true
}

// Record returns the loaded record, if any.
func (v *View) Record() *domain.OntologyRecord {
	return v.record
}

// Document returns the current document, if any.
func (v *View) Document() *domain.Document {
	return v.document
}

// Err returns the current error, if any.
func (v *View) Err() error {
	return v.err
}

// Loading returns whether a load is in flight.
func (v *View) Loading() bool {
	return v.loading
}
