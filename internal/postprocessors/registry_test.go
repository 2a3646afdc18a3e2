package postprocessors

import (
	"context"
	"testing"

	"github.com/hanmaru-labs/hanrag/internal/core/domain"
	"github.com/hanmaru-labs/hanrag/internal/core/ports/driven"
	"github.com/hanmaru-labs/hanrag/internal/postprocessors/chunker"
)

// registryMockProcessor is a simple mock for testing registry functionality.
type registryMockProcessor struct {
	name string
}

func (m *registryMockProcessor) Name() string { return m.name }
func (m *registryMockProcessor) Process(_ context.Context, _ *driven.ParsedText, chunks []domain.Chunk) ([]domain.Chunk, error) {
	return chunks, nil
}

func TestNewRegistry(t *testing.T) {
	r := NewRegistry()
	if r == nil {
		t.Fatal("NewRegistry returned nil")
	}
	if len(r.builders) != 0 {
		t.Errorf("expected empty builders, got %d", len(r.builders))
	}
}

func TestRegistry_Register(t *testing.T) {
	r := NewRegistry()

	builder := func(_ map[string]any) (driven.PostProcessor, error) {
		return &registryMockProcessor{name: "test"}, nil
	}

	r.Register("test", builder)

	if !r.Has("test") {
		t.Error("expected 'test' to be registered")
	}
}

func TestRegistry_Build_UnknownProcessor(t *testing.T) {
	r := NewRegistry()

	_, err := r.Build("missing", nil)
	if err == nil {
		t.Error("expected error for unknown processor")
	}
}

func TestRegisterDefaults(t *testing.T) {
	r := NewRegistry()
	RegisterDefaults(r)

	for _, name := range []string{"cleaner", "chunker"} {
		if !r.Has(name) {
			t.Errorf("expected %q to be registered", name)
		}
	}
}

func TestRegisterDefaults_BuildCleaner(t *testing.T) {
	r := NewRegistry()
	RegisterDefaults(r)

	proc, err := r.Build("cleaner", nil)
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	if proc.Name() != "cleaner" {
		t.Errorf("expected name 'cleaner', got %q", proc.Name())
	}
}

func TestRegisterDefaults_BuildChunkerWithConfig(t *testing.T) {
	r := NewRegistry()
	RegisterDefaults(r)

	proc, err := r.Build("chunker", map[string]any{
		"chunk_size": int64(200),
		"overlap":    float64(30),
	})
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	if proc.Name() != "chunker" {
		t.Errorf("expected name 'chunker', got %q", proc.Name())
	}

	// Config must actually reach the stage: 200-char text with a 200
	// chunk size stays a single chunk.
	text := &driven.ParsedText{DocID: "doc-1", Text: stringOfRunes('가', 200)}
	chunks, err := proc.Process(context.Background(), text, nil)
	if err != nil {
		t.Fatalf("Process failed: %v", err)
	}
	if len(chunks) != 1 {
		t.Errorf("expected 1 chunk at the configured size, got %d", len(chunks))
	}
}

func TestRegisterDefaults_ChunkerDefaultsWhenUnconfigured(t *testing.T) {
	r := NewRegistry()
	RegisterDefaults(r)

	proc, err := r.Build("chunker", map[string]any{})
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	// Missing overlap key must leave the default in place rather than
	// zeroing it. A boundary just inside the minimum stride window is
	// only honoured as the next start when the default overlap survives.
	boundary := chunker.DefaultChunkSize - 20
	text := &driven.ParsedText{
		DocID: "doc-1",
		Text:  stringOfRunes('가', boundary) + ". " + stringOfRunes('나', 200),
	}
	chunks, err := proc.Process(context.Background(), text, nil)
	if err != nil {
		t.Fatalf("Process failed: %v", err)
	}
	if len(chunks) != 2 {
		t.Fatalf("expected 2 chunks, got %d", len(chunks))
	}
	if got := chunks[1].StartOffset; got != boundary+1 {
		t.Errorf("expected second chunk to start at %d, got %d", boundary+1, got)
	}
}

func stringOfRunes(r rune, n int) string {
	runes := make([]rune, n)
	for i := range runes {
		runes[i] = r
	}
	return string(runes)
}
