package postprocessors

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/custodia-labs/docqa/internal/core/domain"
	"github.com/custodia-labs/docqa/internal/core/ports/driven"
	"github.com/custodia-labs/docqa/internal/postprocessors/chunker"
)

// registryMockProcessor is a simple mock for testing registry functionality.
type registryMockProcessor struct {
	name string
}

func (m *registryMockProcessor) Name() string { return m.name }
func (m *registryMockProcessor) Process(_ context.Context, _ *domain.Document, chunks []domain.Chunk) ([]domain.Chunk, error) {
	return chunks, nil
}

func TestRegistry_RegisterAndBuild(t *testing.T) {
	r := NewRegistry()
	r.Register("test", func(cfg map[string]any) (driven.PostProcessor, error) {
		name := "default"
		if n, ok := cfg["name"].(string); ok {
			name = n
		}
		return &registryMockProcessor{name: name}, nil
	})

	if !r.Has("test") {
		t.Fatal("expected 'test' to be registered")
	}
	proc, err := r.Build("test", map[string]any{"name": "custom"})
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	if proc.Name() != "custom" {
		t.Errorf("expected name 'custom', got %q", proc.Name())
	}
}

func TestRegistry_Build_UnknownProcessor(t *testing.T) {
	r := NewRegistry()

	_, err := r.Build("unknown", nil)
	if !errors.Is(err, domain.ErrInvalidConfiguration) {
		t.Errorf("expected ErrInvalidConfiguration, got %v", err)
	}
}

func TestRegistry_Names(t *testing.T) {
	r := NewRegistry()
	r.Register("b", nil)
	r.Register("a", nil)

	if got := r.Names(); !reflect.DeepEqual(got, []string{"a", "b"}) {
		t.Errorf("unexpected names %v", got)
	}
}

func TestRegisterDefaults_Chunker(t *testing.T) {
	r := NewDefaultRegistry()

	proc, err := r.Build("chunker", map[string]any{"method": "paragraphs", "chunk_size": int64(250)})
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	c, ok := proc.(*chunker.Processor)
	if !ok {
		t.Fatalf("expected *chunker.Processor, got %T", proc)
	}
	if c.Method() != domain.ChunkParagraphs || c.ChunkSize() != 250 {
		t.Errorf("unexpected chunker config %s/%d", c.Method(), c.ChunkSize())
	}
}

func TestRegisterDefaults_ChunkerDefaults(t *testing.T) {
	proc, err := NewDefaultRegistry().Build("chunker", nil)
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	c := proc.(*chunker.Processor)
	if c.Method() != chunker.DefaultMethod || c.ChunkSize() != chunker.DefaultChunkSize {
		t.Errorf("unexpected defaults %s/%d", c.Method(), c.ChunkSize())
	}
}

func TestRegisterDefaults_InvalidChunkerConfig(t *testing.T) {
	r := NewDefaultRegistry()

	if _, err := r.Build("chunker", map[string]any{"method": "words"}); !errors.Is(err, domain.ErrInvalidConfiguration) {
		t.Errorf("expected ErrInvalidConfiguration for method, got %v", err)
	}
	if _, err := r.Build("chunker", map[string]any{"chunk_size": 0}); !errors.Is(err, domain.ErrInvalidConfiguration) {
		t.Errorf("expected ErrInvalidConfiguration for size, got %v", err)
	}
}

func TestRegistry_BuildPipeline(t *testing.T) {
	r := NewDefaultRegistry()

	cfg := domain.ChunkingSettings{Method: domain.ChunkParagraphs, ChunkSize: 10}.PipelineConfig()
	pipeline, err := r.BuildPipeline(cfg)
	if err != nil {
		t.Fatalf("BuildPipeline failed: %v", err)
	}

	chunks, err := pipeline.Process(context.Background(), &domain.Document{
		ID:      "doc",
		Content: "alpha beta\n\ngamma",
	})
	if err != nil {
		t.Fatalf("Process failed: %v", err)
	}
	if len(chunks) != 2 || chunks[1].Content != "gamma" || chunks[1].Position != 1 {
		t.Errorf("unexpected chunks %+v", chunks)
	}

	if _, err := r.BuildPipeline(domain.PipelineConfig{}); !errors.Is(err, domain.ErrInvalidConfiguration) {
		t.Errorf("expected ErrInvalidConfiguration for empty pipeline, got %v", err)
	}
}
