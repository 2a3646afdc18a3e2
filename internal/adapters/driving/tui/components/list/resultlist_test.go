package list

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hanmaru-labs/hanrag/internal/adapters/driving/tui/styles"
	"github.com/hanmaru-labs/hanrag/internal/core/domain"
)

func sampleHits() []domain.SearchHit {
	return []domain.SearchHit{
		{
			ID:    "chunk-1",
			Score: 0.95,
			Chunk: domain.Chunk{
				ID:      "chunk-1",
				Content: "제1조 계약의 목적은 다음과 같다.",
				Source:  "계약서.pdf",
				Index:   0,
			},
		},
		{
			ID:    "chunk-2",
			Score: 0.85,
			Chunk: domain.Chunk{
				ID:      "chunk-2",
				Content: "제2조 하도급 대금은 매월 말일에 지급한다.",
				Source:  "계약서.pdf",
				Index:   1,
			},
		},
		{
			ID:    "chunk-3",
			Score: 0.75,
			Chunk: domain.Chunk{
				ID:      "chunk-3",
				Content: "Deployment requires kubectl and a valid kubeconfig.",
				Source:  "배포가이드.md",
				Index:   0,
			},
		},
	}
}

func TestNewResultList(t *testing.T) {
	s := styles.DefaultStyles()
	list := NewResultList(s)

	require.NotNil(t, list)
	assert.Equal(t, 0, list.Selected())
	assert.True(t, list.IsEmpty())
}

func TestNewResultList_NilStyles(t *testing.T) {
	list := NewResultList(nil)

	require.NotNil(t, list)
	assert.NotNil(t, list.styles)
}

func TestResultList_Init(t *testing.T) {
	list := NewResultList(nil)

	cmd := list.Init()

	assert.Nil(t, cmd)
}

func TestResultList_SetHits(t *testing.T) {
	list := NewResultList(nil)
	hits := sampleHits()

	list.SetHits(hits)

	assert.Equal(t, 3, list.Count())
	assert.False(t, list.IsEmpty())
	assert.Equal(t, 0, list.Selected())
}

func TestResultList_SetHits_ResetsSelection(t *testing.T) {
	list := NewResultList(nil)
	list.SetHits(sampleHits())
	list.SetSelected(2)

	list.SetHits(sampleHits()[:1])

	assert.Equal(t, 0, list.Selected())
}

func TestResultList_Hits(t *testing.T) {
	list := NewResultList(nil)
	hits := sampleHits()
	list.SetHits(hits)

	got := list.Hits()

	assert.Equal(t, hits, got)
}

func TestResultList_SetSelected_Valid(t *testing.T) {
	list := NewResultList(nil)
	list.SetHits(sampleHits())

	list.SetSelected(2)

	assert.Equal(t, 2, list.Selected())
}

func TestResultList_SetSelected_OutOfBounds(t *testing.T) {
	list := NewResultList(nil)
	list.SetHits(sampleHits())

	list.SetSelected(99)

	assert.Equal(t, 0, list.Selected()) // Unchanged
}

func TestResultList_SetSelected_Negative(t *testing.T) {
	list := NewResultList(nil)
	list.SetHits(sampleHits())

	list.SetSelected(-1)

	assert.Equal(t, 0, list.Selected()) // Unchanged
}

func TestResultList_SelectedHit(t *testing.T) {
	list := NewResultList(nil)
	list.SetHits(sampleHits())

	hit := list.SelectedHit()

	require.NotNil(t, hit)
	assert.Equal(t, "chunk-1", hit.ID)
}

func TestResultList_SelectedHit_Empty(t *testing.T) {
	list := NewResultList(nil)

	hit := list.SelectedHit()

	assert.Nil(t, hit)
}

func TestResultList_MoveUp(t *testing.T) {
	list := NewResultList(nil)
	list.SetHits(sampleHits())
	list.SetSelected(1)

	list.MoveUp()

	assert.Equal(t, 0, list.Selected())
}

func TestResultList_MoveUp_AtTop(t *testing.T) {
	list := NewResultList(nil)
	list.SetHits(sampleHits())

	list.MoveUp()

	assert.Equal(t, 0, list.Selected()) // Stays at 0
}

func TestResultList_MoveDown(t *testing.T) {
	list := NewResultList(nil)
	list.SetHits(sampleHits())

	list.MoveDown()

	assert.Equal(t, 1, list.Selected())
}

func TestResultList_MoveDown_AtBottom(t *testing.T) {
	list := NewResultList(nil)
	list.SetHits(sampleHits())
	list.SetSelected(2)

	list.MoveDown()

	assert.Equal(t, 2, list.Selected()) // Stays at 2
}

func TestResultList_Update_KeyUp(t *testing.T) {
	list := NewResultList(nil)
	list.SetHits(sampleHits())
	list.SetSelected(1)

	msg := tea.KeyMsg{Type: tea.KeyUp}
	updated, cmd := list.Update(msg)

	assert.Equal(t, list, updated)
	assert.Nil(t, cmd)
	assert.Equal(t, 0, list.Selected())
}

func TestResultList_Update_KeyDown(t *testing.T) {
	list := NewResultList(nil)
	list.SetHits(sampleHits())

	msg := tea.KeyMsg{Type: tea.KeyDown}
	updated, cmd := list.Update(msg)

	assert.Equal(t, list, updated)
	assert.Nil(t, cmd)
	assert.Equal(t, 1, list.Selected())
}

func TestResultList_Update_KeyK(t *testing.T) {
	list := NewResultList(nil)
	list.SetHits(sampleHits())
	list.SetSelected(1)

	msg := tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'k'}}
	list.Update(msg)

	assert.Equal(t, 0, list.Selected())
}

func TestResultList_Update_KeyJ(t *testing.T) {
	list := NewResultList(nil)
	list.SetHits(sampleHits())

	msg := tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'j'}}
	list.Update(msg)

	assert.Equal(t, 1, list.Selected())
}

func TestResultList_View_Empty(t *testing.T) {
	list := NewResultList(nil)

	view := list.View()

	assert.Contains(t, view, "No results")
}

func TestResultList_View_WithHits(t *testing.T) {
	list := NewResultList(nil)
	list.SetHits(sampleHits())

	view := list.View()

	assert.Contains(t, view, "Results (3)")
	assert.Contains(t, view, "계약서.pdf #1")
	assert.Contains(t, view, "0.95")
}

func TestResultList_View_ShowsContentPreview(t *testing.T) {
	list := NewResultList(nil)
	list.SetHits(sampleHits())

	view := list.View()

	assert.Contains(t, view, "제1조 계약의 목적은 다음과 같다.")
}

func TestResultList_View_SelectedIndicator(t *testing.T) {
	list := NewResultList(nil)
	list.SetHits(sampleHits())

	view := list.View()

	assert.Contains(t, view, ">") // Selected indicator
}

func TestResultList_View_UnknownSource(t *testing.T) {
	list := NewResultList(nil)
	list.SetHits([]domain.SearchHit{
		{ID: "chunk-1", Score: 0.5, Chunk: domain.Chunk{Content: "text"}},
	})

	view := list.View()

	assert.Contains(t, view, "(unknown source)")
}

func TestResultList_View_CollapsesWhitespace(t *testing.T) {
	list := NewResultList(nil)
	list.SetHits([]domain.SearchHit{
		{ID: "chunk-1", Score: 0.5, Chunk: domain.Chunk{
			Source:  "a.txt",
			Content: "first\n\nsecond\t third",
		}},
	})

	view := list.View()

	assert.Contains(t, view, "first second third")
}

func TestResultList_View_LongContent(t *testing.T) {
	list := NewResultList(nil)
	long := strings.Repeat("하도급 계약 ", 40)
	list.SetHits([]domain.SearchHit{
		{ID: "chunk-1", Score: 0.5, Chunk: domain.Chunk{Source: "a.pdf", Content: long}},
	})

	view := list.View()

	// Should be truncated with ellipsis
	assert.Contains(t, view, "...")
}

func TestResultList_SetDimensions(t *testing.T) {
	list := NewResultList(nil)

	list.SetDimensions(100, 20)

	assert.Equal(t, 100, list.Width())
	assert.Equal(t, 20, list.Height())
}

func TestResultList_Width(t *testing.T) {
	list := NewResultList(nil)

	assert.Equal(t, 80, list.Width()) // Default
}

func TestResultList_Height(t *testing.T) {
	list := NewResultList(nil)

	assert.Equal(t, 10, list.Height()) // Default
}

func TestResultList_Count(t *testing.T) {
	list := NewResultList(nil)

	assert.Equal(t, 0, list.Count())

	list.SetHits(sampleHits())
	assert.Equal(t, 3, list.Count())
}

func TestResultList_IsEmpty(t *testing.T) {
	list := NewResultList(nil)

	assert.True(t, list.IsEmpty())

	list.SetHits(sampleHits())
	assert.False(t, list.IsEmpty())
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		max      int
		expected string
	}{
		{"shorter than max", "hello", 10, "hello"},
		{"exactly max", "hello", 5, "hello"},
		{"longer than max", "hello world", 8, "hello..."},
		{"hangul under max", "가나다", 5, "가나다"},
		{"hangul over max", "가나다라마바사아자차", 8, "가나다라마..."},
		{"tiny max", "hello", 2, "he"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, truncate(tt.input, tt.max))
		})
	}
}
