package cli

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/custodia-labs/docqa/internal/core/domain"
)

// mockRAGService implements driving.RAGService for testing.
type mockRAGService struct {
	state domain.PipelineState

	prepareFunc  func(ctx context.Context, path string) (*domain.PrepareReport, error)
	previewFunc  func(ctx context.Context, path string) (*domain.Document, []domain.Chunk, error)
	restoreErr   error
	queryFunc    func(ctx context.Context, question string, opts domain.QueryOptions) (*domain.Answer, error)
	retrieveFunc func(ctx context.Context, question string, k int) ([]domain.Chunk, []domain.Match, error)
	resetErr     error

	restored     bool
	prepared     []string
	resetDone    bool
	indexDeleted bool
}

func (m *mockRAGService) Prepare(ctx context.Context, path string) (*domain.PrepareReport, error) {
	m.prepared = append(m.prepared, path)
	if m.prepareFunc != nil {
		return m.prepareFunc(ctx, path)
	}
	m.state = domain.StatePrepared
	return &domain.PrepareReport{URI: path, Characters: 120, Chunks: 3, Dimensions: 384}, nil
}

func (m *mockRAGService) Preview(ctx context.Context, path string) (*domain.Document, []domain.Chunk, error) {
	if m.previewFunc != nil {
		return m.previewFunc(ctx, path)
	}
	return &domain.Document{URI: path, Content: "One. Two."},
		[]domain.Chunk{{Position: 0, Content: "One."}, {Position: 1, Content: "Two."}}, nil
}

func (m *mockRAGService) Restore(_ context.Context) error {
	if m.restoreErr != nil {
		return m.restoreErr
	}
	m.restored = true
	m.state = domain.StatePrepared
	return nil
}

func (m *mockRAGService) Query(ctx context.Context, question string, opts domain.QueryOptions) (*domain.Answer, error) {
	if m.queryFunc != nil {
		return m.queryFunc(ctx, question, opts)
	}
	return &domain.Answer{Question: question, Text: "An answer."}, nil
}

func (m *mockRAGService) Retrieve(ctx context.Context, question string, k int) ([]domain.Chunk, []domain.Match, error) {
	if m.retrieveFunc != nil {
		return m.retrieveFunc(ctx, question, k)
	}
	return nil, nil, nil
}

func (m *mockRAGService) Reset(_ context.Context) error {
	m.resetDone = true
	return m.resetErr
}

func (m *mockRAGService) DeleteIndex(_ context.Context) error {
	m.indexDeleted = true
	return m.resetErr
}

func (m *mockRAGService) State() domain.PipelineState {
	if m.state == "" {
		return domain.StateUninitialized
	}
	return m.state
}

func (m *mockRAGService) Chunks() []domain.Chunk {
	return nil
}

// mockEvaluator implements driving.Evaluator for testing.
type mockEvaluator struct {
	gotMetrics []string
	err        error
}

func (m *mockEvaluator) Evaluate(_, _ string, metrics []string) (domain.EvaluationResult, error) {
	m.gotMetrics = metrics
	if m.err != nil {
		return nil, m.err
	}
	return domain.EvaluationResult{"bleu": 0.5, "rouge1": 0.75}, nil
}

// mockSettingsService implements driving.SettingsService for testing.
type mockSettingsService struct {
	settings    domain.AppSettings
	validateErr error
	setErr      error
	sets        map[string]string

	embeddingProvider domain.AIProvider
	llmProvider       domain.AIProvider
	apiKey            string
}

func newMockSettingsService() *mockSettingsService {
	return &mockSettingsService{
		settings: domain.DefaultAppSettings(),
		sets:     map[string]string{},
	}
}

func (m *mockSettingsService) Get() (*domain.AppSettings, error) {
	s := m.settings
	return &s, nil
}

func (m *mockSettingsService) Save(settings *domain.AppSettings) error {
	m.settings = *settings
	return nil
}

func (m *mockSettingsService) Set(key, value string) error {
	if m.setErr != nil {
		return m.setErr
	}
	m.sets[key] = value
	return nil
}

func (m *mockSettingsService) SetEmbeddingProvider(provider domain.AIProvider, model, apiKey string) error {
	m.embeddingProvider = provider
	m.settings.Embedding.Provider = provider
	m.settings.Embedding.Model = model
	m.apiKey = apiKey
	return nil
}

func (m *mockSettingsService) SetLLMProvider(provider domain.AIProvider, model, apiKey string) error {
	m.llmProvider = provider
	m.settings.LLM.Provider = provider
	m.settings.LLM.Model = model
	m.apiKey = apiKey
	return nil
}

func (m *mockSettingsService) Validate() error {
	return m.validateErr
}

func (m *mockSettingsService) GetDefaults() domain.AppSettings {
	return domain.DefaultAppSettings()
}

// setupTestServices installs mocks as the command services and restores
// the previous ones when the test ends.
func setupTestServices(t *testing.T, s *Services) {
	t.Helper()
	old := &Services{
		RAG:            ragService,
		Evaluator:      evaluator,
		Settings:       settingsService,
		CheckEmbedding: checkEmbedding,
		CheckLLM:       checkLLM,
		Close:          closeServices,
	}
	oldBootstrap := bootstrap
	bootstrap = nil
	setServices(s)
	t.Cleanup(func() {
		setServices(old)
		bootstrap = oldBootstrap
	})
}

// execute runs the root command with args and stdin, returning all output.
func execute(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()

	verbose, configDir, ephemeral = false, "", false
	askReference, askTopK, askMetrics, askShowChunk = "", 0, nil, true
	evalCandidate, evalReference, evalMetrics = "", "", nil
	retrieveTopK, chatTopK, chatReference = 0, 0, ""
	resetIndex = false

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetIn(strings.NewReader(stdin))
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetArgs(nil)
		rootCmd.SetIn(nil)
	})

	err := rootCmd.Execute()
	return buf.String(), err
}
