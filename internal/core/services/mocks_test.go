package services

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/custodia-labs/docqa/internal/core/domain"
	"github.com/custodia-labs/docqa/internal/core/ports/driven"
)

// --- Mock implementations ---

// mockEmbeddingService implements driven.EmbeddingService for testing.
// Each text maps to a vector whose first component is its length, so
// tests can tell vectors apart after normalisation.
type mockEmbeddingService struct {
	mu        sync.Mutex
	dims      int
	calls     int
	batches   [][]string
	embedErr  error
	block     bool
	wrongDims bool
	short     bool
	vectors   map[string][]float32
}

func (m *mockEmbeddingService) Embed(ctx context.Context, text string) ([]float32, error) {
	vecs, err := m.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vecs[0], nil
}

func (m *mockEmbeddingService) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	m.mu.Lock()
	m.calls++
	m.batches = append(m.batches, append([]string(nil), texts...))
	m.mu.Unlock()

	if m.block {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	if m.embedErr != nil {
		return nil, m.embedErr
	}
	n := len(texts)
	if m.short {
		n--
	}
	out := make([][]float32, n)
	for i := range n {
		if v, ok := m.vectors[texts[i]]; ok {
			out[i] = v
			continue
		}
		dims := m.dims
		if m.wrongDims {
			dims++
		}
		vec := make([]float32, dims)
		vec[0] = float32(len(texts[i]))
		if dims > 1 {
			vec[1] = 1
		}
		out[i] = vec
	}
	return out, nil
}

func (m *mockEmbeddingService) Dimensions() int {
	return m.dims
}

func (m *mockEmbeddingService) ModelName() string {
	return "mock-embed"
}

func (m *mockEmbeddingService) Ping(_ context.Context) error {
	return nil
}

func (m *mockEmbeddingService) Close() error {
	return nil
}

// mockLLMService implements driven.LLMService for testing.
type mockLLMService struct {
	mu       sync.Mutex
	response string
	err      error
	block    bool
	prompts  []string
	opts     []driven.GenerateOptions
}

func (m *mockLLMService) Generate(ctx context.Context, prompt string, opts driven.GenerateOptions) (string, error) {
	m.mu.Lock()
	m.prompts = append(m.prompts, prompt)
	m.opts = append(m.opts, opts)
	m.mu.Unlock()
	if m.block {
		<-ctx.Done()
		return "", ctx.Err()
	}
	if m.err != nil {
		return "", m.err
	}
	return m.response, nil
}

func (m *mockLLMService) ModelName() string {
	return "mock-llm"
}

func (m *mockLLMService) Ping(_ context.Context) error {
	return nil
}

func (m *mockLLMService) Close() error {
	return nil
}

// mockNormaliserRegistry implements driven.NormaliserRegistry for testing.
// It returns the raw content as the document body.
type mockNormaliserRegistry struct {
	err error
}

func (m *mockNormaliserRegistry) Normalise(_ context.Context, raw *domain.RawDocument) (*driven.NormaliseResult, error) {
	if m.err != nil {
		return nil, m.err
	}
	return &driven.NormaliseResult{Document: domain.Document{
		ID:      "doc-1",
		URI:     raw.URI,
		Content: string(raw.Content),
	}}, nil
}

func (m *mockNormaliserRegistry) Register(_ driven.Normaliser) {}

func (m *mockNormaliserRegistry) SupportedMIMETypes() []string {
	return []string{"text/plain", "application/pdf"}
}

// lineSplitter implements driven.PostProcessorPipeline, one chunk per line.
type lineSplitter struct {
	err error
}

func (l *lineSplitter) Process(_ context.Context, doc *domain.Document) ([]domain.Chunk, error) {
	if l.err != nil {
		return nil, l.err
	}
	var chunks []domain.Chunk
	for _, line := range strings.Split(doc.Content, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		chunks = append(chunks, domain.Chunk{
			DocumentID: doc.ID,
			Content:    line,
			Position:   len(chunks),
		})
	}
	return chunks, nil
}

// mockPromptStore implements driven.PromptStore for testing.
type mockPromptStore struct {
	prompts map[string]string
}

func (m *mockPromptStore) Load(name string) (string, error) {
	p, ok := m.prompts[name]
	if !ok {
		return "", domain.ErrNotFound
	}
	return p, nil
}

func (m *mockPromptStore) Reload() {}

// failingIndex implements driven.VectorIndex, failing the configured call.
type failingIndex struct {
	ensureErr error
	upsertErr error
	searchErr error
	block     bool
	matches   []domain.Match
}

func (f *failingIndex) EnsureIndex(_ context.Context, _ int, _ domain.DistanceMetric) error {
	return f.ensureErr
}

func (f *failingIndex) Upsert(_ context.Context, _ []string, _ [][]float32) error {
	return f.upsertErr
}

func (f *failingIndex) Search(ctx context.Context, _ []float32, _ int) ([]domain.Match, error) {
	if f.block {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	if f.searchErr != nil {
		return nil, f.searchErr
	}
	return f.matches, nil
}

func (f *failingIndex) Reset(_ context.Context) error {
	return nil
}

func (f *failingIndex) Close() error {
	return nil
}

var errBackend = errors.New("backend exploded")
