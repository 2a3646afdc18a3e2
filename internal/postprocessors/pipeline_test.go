package postprocessors

import (
	"context"
	"errors"
	"testing"

	"github.com/hanmaru-labs/hanrag/internal/core/domain"
	"github.com/hanmaru-labs/hanrag/internal/core/ports/driven"
)

// mockProcessor is a test stage that returns predefined chunks.
type mockProcessor struct {
	name   string
	chunks []domain.Chunk
	err    error
}

func (m *mockProcessor) Name() string {
	return m.name
}

func (m *mockProcessor) Process(_ context.Context, _ *driven.ParsedText, chunks []domain.Chunk) ([]domain.Chunk, error) {
	if m.err != nil {
		return nil, m.err
	}
	if m.chunks != nil {
		return m.chunks, nil
	}
	return chunks, nil
}

func TestNewPipeline(t *testing.T) {
	p := NewPipeline()
	if p == nil {
		t.Fatal("expected non-nil pipeline")
	}
	if p.Len() != 0 {
		t.Errorf("expected 0 processors, got %d", p.Len())
	}
}

func TestPipeline_Add(t *testing.T) {
	p := NewPipeline()
	p.Add(&mockProcessor{name: "test"})

	if p.Len() != 1 {
		t.Errorf("expected 1 processor, got %d", p.Len())
	}
}

func TestPipeline_Process_NilText(t *testing.T) {
	p := NewPipeline()

	_, err := p.Process(context.Background(), nil)
	if err == nil {
		t.Error("expected error for nil text")
	}
}

func TestPipeline_Process_EmptyPipeline(t *testing.T) {
	p := NewPipeline()
	text := &driven.ParsedText{DocID: "doc-1", Text: "내용"}

	chunks, err := p.Process(context.Background(), text)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if chunks != nil {
		t.Errorf("expected nil chunks from empty pipeline, got %v", chunks)
	}
}

func TestPipeline_Process_SingleProcessor(t *testing.T) {
	expectedChunks := []domain.Chunk{
		{ID: "chunk-1", Content: "test"},
	}
	p := NewPipeline(&mockProcessor{name: "creator", chunks: expectedChunks})
	text := &driven.ParsedText{DocID: "doc-1", Text: "내용"}

	chunks, err := p.Process(context.Background(), text)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(chunks) != 1 || chunks[0].ID != "chunk-1" {
		t.Errorf("expected chunks from processor, got %v", chunks)
	}
}

func TestPipeline_Process_StagesRunInOrder(t *testing.T) {
	var order []string
	first := &orderedProcessor{name: "first", order: &order}
	second := &orderedProcessor{name: "second", order: &order}

	p := NewPipeline(first, second)
	_, err := p.Process(context.Background(), &driven.ParsedText{Text: "x"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(order) != 2 || order[0] != "first" || order[1] != "second" {
		t.Errorf("expected stages in declared order, got %v", order)
	}
}

func TestPipeline_Process_StageError(t *testing.T) {
	stageErr := errors.New("boom")
	p := NewPipeline(
		&mockProcessor{name: "ok"},
		&mockProcessor{name: "broken", err: stageErr},
	)

	_, err := p.Process(context.Background(), &driven.ParsedText{Text: "x"})
	if !errors.Is(err, stageErr) {
		t.Errorf("expected wrapped stage error, got %v", err)
	}
}

// orderedProcessor records the order stages ran in.
type orderedProcessor struct {
	name  string
	order *[]string
}

func (o *orderedProcessor) Name() string { return o.name }
func (o *orderedProcessor) Process(_ context.Context, _ *driven.ParsedText, chunks []domain.Chunk) ([]domain.Chunk, error) {
	*o.order = append(*o.order, o.name)
	return chunks, nil
}
