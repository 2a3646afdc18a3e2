// Package documents provides the document registry view for the TUI.
package documents

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

// ErrNoIngestService indicates that no ingest service was provided.
var ErrNoIngestService = errors.New("ingest service is required")

// View is the document registry view.
type View struct {
	styles        *styles.Styles
	ingestService driving.IngestService
	ctx           context.Context

	documents []domain.Document
	selected  int
	width     int
	height    int
	ready     bool
	err       error
	loading   bool
}

// NewView creates a new documents view.
func NewView(s *styles.Styles, ingestService driving.IngestService) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}

	return &View{
		styles:        s,
		ingestService: ingestService,
		ctx:           context.Background(),
		documents:     []domain.Document{},
		width:         80,
		height:        24,
	}
}

// WithContext sets the context for the view.
func (v *View) WithContext(ctx context.Context) *View {
	v.ctx = ctx
	return v
}

// Init initialises the view and loads the registry.
func (v *View) Init() tea.Cmd {
	v.loading = true
	return v.loadDocuments()
}

// loadDocuments returns a command that loads the document registry.
func (v *View) loadDocuments() tea.Cmd {
	return func() tea.Msg {
		if v.ingestService == nil {
			return messages.DocumentsLoaded{Err: ErrNoIngestService}
		}

		docs, err := v.ingestService.ListDocuments(v.ctx)
		return messages.DocumentsLoaded{Documents: docs, Err: err}
	}
}

// deleteSelected returns a command that deletes the selected document.
func (v *View) deleteSelected() tea.Cmd {
	doc := v.SelectedDocument()
	if doc == nil {
		return nil
	}
	id := doc.ID
	return func() tea.Msg {
		if v.ingestService == nil {
			return messages.DocumentDeleted{ID: id, Err: ErrNoIngestService}
		}
		err := v.ingestService.DeleteDocument(v.ctx, id)
		return messages.DocumentDeleted{ID: id, Err: err}
	}
}

// Update handles messages for the documents view.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.width = msg.Width
		v.height = msg.Height
		v.ready = true
		return v, nil

	case tea.KeyMsg:
		return v.handleKeyMsg(msg)

	case messages.DocumentsLoaded:
		v.loading = false
		if msg.Err != nil {
			v.err = msg.Err
		} else {
			v.documents = msg.Documents
			v.err = nil
			if v.selected >= len(v.documents) {
				v.selected = 0
			}
		}
		return v, nil

	case messages.DocumentDeleted:
		if msg.Err != nil {
			v.err = msg.Err
			return v, nil
		}
		// Reload after deletion
		return v, v.loadDocuments()

	case messages.ErrorOccurred:
		v.err = msg.Err
		return v, nil
	}

	return v, nil
}

// handleKeyMsg handles key presses.
func (v *View) handleKeyMsg(msg tea.KeyMsg) (*View, tea.Cmd) {
	switch msg.String() {
	case "esc":
		return v, func() tea.Msg {
			return messages.ViewChanged{View: messages.ViewMenu}
		}

	case "up", "k":
		if v.selected > 0 {
			v.selected--
		}
		return v, nil

	case "down", "j":
		if v.selected < len(v.documents)-1 {
			v.selected++
		}
		return v, nil

	case "enter", "o":
		doc := v.SelectedDocument()
		if doc == nil {
			return v, nil
		}
		selected := *doc
		return v, func() tea.Msg {
			return messages.DocumentSelected{Document: selected}
		}

	case "d":
		return v, v.deleteSelected()

	case "r":
		v.loading = true
		return v, v.loadDocuments()
	}

	return v, nil
}

// View renders the documents view.
func (v *View) View() string {
	if !v.ready {
		return "Initialising..."
	}

	var b strings.Builder

	b.WriteString(v.styles.Title.Render("Documents"))
	b.WriteString("\n\n")

	if v.err != nil {
		b.WriteString(v.styles.Error.Render("Error: " + v.err.Error()))
		b.WriteString("\n\n")
	}

	switch {
	case v.loading:
		b.WriteString(v.styles.Muted.Render("Loading..."))
	case len(v.documents) == 0:
		b.WriteString(v.styles.Muted.Render("No documents ingested."))
	default:
		for i := range v.documents {
			b.WriteString(v.renderDocument(i))
			b.WriteString("\n")
		}
	}

	b.WriteString("\n")
	footer := v.styles.Help.Render("[o/enter] ontology  [d] delete  [r] refresh  [esc] back")
	b.WriteString(footer)

	return b.String()
}

// renderDocument formats one registry row.
func (v *View) renderDocument(index int) string {
	doc := &v.documents[index]

	indicator := "  "
	if index == v.selected {
		indicator = "> "
	}

	status := string(doc.Status)
	line := fmt.Sprintf("%s%s  %d chunks  %s  %s",
		indicator, doc.Filename, doc.ChunkCount, status,
		doc.UploadedAt.Format("2006-01-02 15:04"))

	if index == v.selected {
		return v.styles.Selected.Render(line)
	}
	if doc.Status == domain.StatusFallback {
		return v.styles.Warning.Render(line)
	}
	return v.styles.Normal.Render(line)
}

// SetDimensions sets the view dimensions.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
	v.ready = true
}

// Documents returns the loaded documents.
func (v *View) Documents() []domain.Document {
	return v.documents
}

// Selected returns the selected index.
func (v *View) Selected() int {
	return v.selected
}

// SelectedDocument returns the selected document, or nil if none.
func (v *View) SelectedDocument() *domain.Document {
	if len(v.documents) == 0 || v.selected < 0 || v.selected >= len(v.documents) {
		return nil
	}
	return &v.documents[v.selected]
}

// Err returns the current error, if any.
func (v *View) Err() error {
	return v.err
}

// Loading returns whether a load is in flight.
func (v *View) Loading() bool {
	return v.loading
}
