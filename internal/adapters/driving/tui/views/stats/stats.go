// Package stats provides the system statistics view for the TUI.
package stats

import (
	"context"
	"errors"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/hanmaru-labs/hanrag/internal/adapters/driving/tui/messages"
	"github.com/hanmaru-labs/hanrag/internal/adapters/driving/tui/styles"
	"github.com/hanmaru-labs/hanrag/internal/core/ports/driving"
)

// ErrNoStatsService indicates that no stats service was provided.
var ErrNoStatsService = errors.New("stats service is required")

// View shows system statistics and component health.
type View struct {
	styles       *styles.Styles
	statsService driving.StatsService
	ctx          context.Context

	stats   *driving.SystemStats
	health  []driving.ComponentHealth
	width   int
	height  int
	ready   bool
	err     error
	loading bool
}

// NewView creates a new stats view.
func NewView(s *styles.Styles, statsService driving.StatsService) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}

	return &View{
		styles:       s,
		statsService: statsService,
		ctx:          context.Background(),
		width:        80,
		height:       24,
	}
}

// WithContext sets the context for the view.
func (v *View) WithContext(ctx context.Context) *View {
	v.ctx = ctx
	return v
}

// Init initialises the view and loads statistics.
func (v *View) Init() tea.Cmd {
	v.loading = true
	return v.loadStats()
}

// loadStats returns a command that gathers stats and health.
func (v *View) loadStats() tea.Cmd {
	return func() tea.Msg {
		if v.statsService == nil {
			return messages.StatsLoaded{Err: ErrNoStatsService}
		}

		health := v.statsService.Health(v.ctx)
		st, err := v.statsService.Stats(v.ctx)
		return messages.StatsLoaded{Stats: st, Health: health, Err: err}
	}
}

// Update handles messages for the stats view.
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
				return messages.ViewChanged{View: messages.ViewMenu}
			}
		case "r":
			v.loading = true
			return v, v.loadStats()
		}
		return v, nil

	case messages.StatsLoaded:
		v.loading = false
		v.health = msg.Health
		if msg.Err != nil {
			v.err = msg.Err
		} else {
			v.stats = msg.Stats
			v.err = nil
		}
		return v, nil

	case messages.ErrorOccurred:
		v.err = msg.Err
		return v, nil
	}

	return v, nil
}

// View renders the stats view.
func (v *View) View() string {
	if !v.ready {
		return "Initialising..."
	}

	var b strings.Builder

	b.WriteString(v.styles.Title.Render("System"))
	b.WriteString("\n\n")

	if v.loading {
		b.WriteString(v.styles.Muted.Render("Loading..."))
		return b.String()
	}

	if v.err != nil {
		b.WriteString(v.styles.Error.Render("Error: " + v.err.Error()))
		b.WriteString("\n\n")
	}

	if v.stats != nil {
		b.WriteString(v.styles.Subtitle.Render("Statistics"))
		b.WriteString("\n")
		b.WriteString(v.styles.Normal.Render(fmt.Sprintf("  Documents:  %d", v.stats.Documents)))
		b.WriteString("\n")
		b.WriteString(v.styles.Normal.Render(fmt.Sprintf("  Chunks:     %d", v.stats.Chunks)))
		b.WriteString("\n")
		b.WriteString(v.styles.Normal.Render(fmt.Sprintf("  Embedding:  %s (%d dims)", v.stats.EmbeddingModel, v.stats.Dimensions)))
		b.WriteString("\n")
		b.WriteString(v.styles.Normal.Render(fmt.Sprintf("  Ontologies: %d documents, %d keywords",
			v.stats.Ontology.DocumentRecords, v.stats.Ontology.KeywordRecords)))
		b.WriteString("\n\n")
	}

	if len(v.health) > 0 {
		b.WriteString(v.styles.Subtitle.Render("Components"))
		b.WriteString("\n")
		for _, c := range v.health {
			b.WriteString(v.renderComponent(c))
			b.WriteString("\n")
		}
	}

	b.WriteString("\n")
	b.WriteString(v.styles.Help.Render("[r] refresh  [esc] back"))

	return b.String()
}

// renderComponent formats one health row.
func (v *View) renderComponent(c driving.ComponentHealth) string {
	name := fmt.Sprintf("  %-14s", c.Name)
	if c.OK {
		return v.styles.Normal.Render(name) + v.styles.Success.Render("OK") +
			v.styles.Muted.Render("  "+c.Detail)
	}
	return v.styles.Normal.Render(name) + v.styles.Error.Render("FAIL") +
		v.styles.Muted.Render("  "+c.Detail)
}

// SetDimensions sets the view dimensions.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
	v.ready = true
}

// Stats returns the loaded statistics, if any.
func (v *View) Stats() *driving.SystemStats {
	return v.stats
}

// Health returns the loaded component health.
func (v *View) Health() []driving.ComponentHealth {
	return v.health
}

// Err returns the current error, if any.
func (v *View) Err() error {
	return v.err
}

// Loading returns whether a load is in flight.
func (v *View) Loading() bool {
	return v.loading
}
