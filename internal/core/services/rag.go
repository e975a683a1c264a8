package services

import (
	"context"
	"errors"
	"fmt"
	"mime"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/custodia-labs/docqa/internal/core/domain"
	"github.com/custodia-labs/docqa/internal/core/ports/driven"
	"github.com/custodia-labs/docqa/internal/core/ports/driving"
	"github.com/custodia-labs/docqa/internal/logger"
)

// Ensure RAGService implements the interface.
var _ driving.RAGService = (*RAGService)(nil)

// NoAnswerText is returned as the answer text when no chunk is relevant.
const NoAnswerText = "No relevant information was found in the document."

// DefaultAnswerPrompt is the answer template used when the prompt store
// has none or holds an unusable one.
const DefaultAnswerPrompt = driven.DefaultAnswerPrompt

// contextSeparator joins retrieved chunk texts into the context block.
const contextSeparator = "\n"

// RAGConfig holds the tunables the orchestrator needs from settings.
type RAGConfig struct {
	TopK        int
	Metric      domain.DistanceMetric
	CallTimeout time.Duration
	MaxTokens   int
	Temperature float64
}

// RAGConfigFromSettings extracts the orchestrator tunables from settings.
func RAGConfigFromSettings(s *domain.AppSettings) RAGConfig {
	return RAGConfig{
		TopK:        s.VectorStore.TopK,
		Metric:      s.VectorStore.Metric,
		CallTimeout: s.Pipeline.CallTimeout,
		MaxTokens:   s.LLM.MaxTokens,
		Temperature: s.LLM.Temperature,
	}
}

// RAGService answers questions about a single prepared document.
//
// Prepare runs extraction, chunking, embedding and indexing in that order.
// Query embeds the question, retrieves the closest chunks and asks the LLM
// to answer from them. The chunk list is only replaced under the write
// lock; queries hold the read lock for their whole duration.
type RAGService struct {
	registry   driven.NormaliserRegistry
	pipeline   driven.PostProcessorPipeline
	embedder   *Embedder
	index      driven.VectorIndex
	llm        driven.LLMService
	evaluator  driving.Evaluator
	chunkStore driven.ChunkStore
	prompts    driven.PromptStore
	cfg        RAGConfig

	mu         sync.RWMutex
	state      domain.PipelineState
	generation uint64
	doc        *domain.Document
	chunks     []domain.Chunk
}

// NewRAGService creates a new orchestrator.
// The llm and evaluator parameters are optional (can be nil); without an
// LLM only retrieval works, without an evaluator references are ignored.
func NewRAGService(
	registry driven.NormaliserRegistry,
	pipeline driven.PostProcessorPipeline,
	embedder *Embedder,
	index driven.VectorIndex,
	llm driven.LLMService,
	evaluator driving.Evaluator,
	cfg RAGConfig,
) *RAGService {
	if cfg.TopK < 1 {
		cfg.TopK = 5
	}
	if !cfg.Metric.IsValid() {
		cfg.Metric = domain.MetricEuclidean
	}
	return &RAGService{
		registry:  registry,
		pipeline:  pipeline,
		embedder:  embedder,
		index:     index,
		llm:       llm,
		evaluator: evaluator,
		cfg:       cfg,
		state:     domain.StateUninitialized,
	}
}

// SetChunkStore sets the store the chunk list is persisted to, so a later
// process can Restore it.
func (s *RAGService) SetChunkStore(store driven.ChunkStore) {
	s.chunkStore = store
}

// SetPromptStore sets the store answer templates are loaded from.
func (s *RAGService) SetPromptStore(store driven.PromptStore) {
	s.prompts = store
}

// State returns the current pipeline state.
func (s *RAGService) State() domain.PipelineState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// Chunks returns a copy of the current chunk list.
func (s *RAGService) Chunks() []domain.Chunk {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]domain.Chunk(nil), s.chunks...)
}

// Prepare ingests the document at path and replaces the indexed content.
//
// Failures before the index is touched leave the previous state intact.
// Once the index has been reset, any failure leaves the pipeline
// uninitialized; vectors already written are not rolled back.
func (s *RAGService) Prepare(ctx context.Context, path string) (*domain.PrepareReport, error) {
	logger.Section("Prepare")
	logger.Debug("Document: %s", path)
	start := time.Now()

	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.extract(ctx, path)
	if err != nil {
		return nil, domain.WrapStage(domain.StageExtract, err)
	}

	done := logger.Timed("chunking")
	chunks, err := s.pipeline.Process(ctx, doc)
	done()
	if err != nil {
		return nil, domain.WrapStage(domain.StageChunk, err)
	}
	logger.Debug("Produced %d chunks", len(chunks))

	vectors, err := s.embedder.Embed(ctx, domain.ChunkContents(chunks))
	if err != nil {
		return nil, domain.WrapStage(domain.StageEmbed, err)
	}

	if err := s.store(ctx, doc, chunks, vectors); err != nil {
		s.clear()
		return nil, domain.WrapStage(domain.StageIndex, err)
	}

	s.doc = doc
	s.chunks = chunks
	s.state = domain.StatePrepared
	s.generation++

	report := &domain.PrepareReport{
		DocumentID: doc.ID,
		URI:        doc.URI,
		Characters: utf8.RuneCountInString(doc.Content),
		Chunks:     len(chunks),
		Dimensions: s.embedder.Dimensions(),
		Duration:   time.Since(start),
	}
	logger.Debug("Prepared %d chunks in %s", report.Chunks, report.Duration)
	return report, nil
}

// Preview extracts and chunks the document at path without embedding or
// indexing it. The pipeline state is not changed.
func (s *RAGService) Preview(ctx context.Context, path string) (*domain.Document, []domain.Chunk, error) {
	doc, err := s.extract(ctx, path)
	if err != nil {
		return nil, nil, domain.WrapStage(domain.StageExtract, err)
	}
	chunks, err := s.pipeline.Process(ctx, doc)
	if err != nil {
		return nil, nil, domain.WrapStage(domain.StageChunk, err)
	}
	return doc, chunks, nil
}

func (s *RAGService) extract(ctx context.Context, path string) (*domain.Document, error) {
	defer logger.Timed("extraction")()

	content, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", domain.ErrNotFound, path)
		}
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}
	raw := &domain.RawDocument{
		URI:      abs,
		MIMEType: DetectMIMEType(path),
		Content:  content,
	}

	result, err := s.registry.Normalise(ctx, raw)
	if err != nil {
		return nil, err
	}

	doc := result.Document
	if doc.ID == "" {
		doc.ID = uuid.NewString()
	}
	if doc.URI == "" {
		doc.URI = abs
	}
	if doc.CreatedAt.IsZero() {
		doc.CreatedAt = time.Now()
	}
	return &doc, nil
}

// store replaces the index contents with vectors and persists the chunk list.
func (s *RAGService) store(ctx context.Context, doc *domain.Document, chunks []domain.Chunk, vectors [][]float32) error {
	defer logger.Timed("indexing")()

	err := s.call(ctx, domain.ErrRetrieval, func(ctx context.Context) error {
		return s.index.EnsureIndex(ctx, s.embedder.Dimensions(), s.cfg.Metric)
	})
	if err != nil {
		return err
	}

	err = s.call(ctx, domain.ErrRetrieval, func(ctx context.Context) error {
		return s.index.Reset(ctx)
	})
	if err != nil {
		return err
	}

	if len(chunks) > 0 {
		err = s.call(ctx, domain.ErrRetrieval, func(ctx context.Context) error {
			return s.index.Upsert(ctx, domain.VectorIDs(chunks), vectors)
		})
		if err != nil {
			return err
		}
	}

	if s.chunkStore != nil {
		if err := s.chunkStore.SaveChunks(ctx, doc, chunks); err != nil {
			return fmt.Errorf("persisting chunks: %w", err)
		}
	}
	return nil
}

// clear drops the chunk list. Callers must hold the write lock.
func (s *RAGService) clear() {
	s.doc = nil
	s.chunks = nil
	s.state = domain.StateUninitialized
	s.generation++
}

// Restore reloads the chunk list persisted by an earlier Prepare.
// It fails with domain.ErrNotFound when nothing has been prepared.
func (s *RAGService) Restore(ctx context.Context) error {
	if s.chunkStore == nil {
		return fmt.Errorf("%w: no chunk store configured", domain.ErrNotFound)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	doc, chunks, err := s.chunkStore.LoadChunks(ctx)
	if err != nil {
		return err
	}

	err = s.call(ctx, domain.ErrRetrieval, func(ctx context.Context) error {
		return s.index.EnsureIndex(ctx, s.embedder.Dimensions(), s.cfg.Metric)
	})
	if err != nil {
		return domain.WrapStage(domain.StageIndex, err)
	}

	s.doc = doc
	s.chunks = chunks
	s.state = domain.StatePrepared
	s.generation++
	logger.Debug("Restored %d chunks from %s", len(chunks), doc.URI)
	return nil
}

// Reset empties the index and the persisted chunk list.
func (s *RAGService) Reset(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	err := s.call(ctx, domain.ErrRetrieval, func(ctx context.Context) error {
		return s.index.Reset(ctx)
	})
	if err != nil {
		return domain.WrapStage(domain.StageIndex, err)
	}
	if s.chunkStore != nil {
		if err := s.chunkStore.ClearChunks(ctx); err != nil {
			return domain.WrapStage(domain.StageIndex, err)
		}
	}
	s.clear()
	return nil
}

// DeleteIndex drops the vector index itself and forgets the prepared
// chunks. The next Prepare recreates the index with the current
// dimension and metric. Indexes that cannot be dropped are emptied.
func (s *RAGService) DeleteIndex(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	err := s.call(ctx, domain.ErrRetrieval, func(ctx context.Context) error {
		if d, ok := s.index.(driven.IndexDeleter); ok {
			return d.DeleteIndex(ctx)
		}
		return s.index.Reset(ctx)
	})
	if err != nil {
		return domain.WrapStage(domain.StageIndex, err)
	}
	if s.chunkStore != nil {
		if err := s.chunkStore.ClearChunks(ctx); err != nil {
			return domain.WrapStage(domain.StageIndex, err)
		}
	}
	s.clear()
	logger.Debug("Deleted vector index")
	return nil
}

// Retrieve returns the chunks most relevant to question, best first,
// together with the raw index matches.
func (s *RAGService) Retrieve(ctx context.Context, question string, k int) ([]domain.Chunk, []domain.Match, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return nil, nil, fmt.Errorf("%w: empty question", domain.ErrInvalidInput)
	}
	if k < 1 {
		k = s.cfg.TopK
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.state.CanQuery() {
		return nil, nil, domain.ErrNotReady
	}
	return s.retrieve(ctx, question, k)
}

// retrieve embeds question and resolves the top k matches to chunks.
// Callers must hold the read lock.
func (s *RAGService) retrieve(ctx context.Context, question string, k int) ([]domain.Chunk, []domain.Match, error) {
	defer logger.Timed("retrieval")()

	var query []float32
	err := s.call(ctx, domain.ErrRetrieval, func(ctx context.Context) error {
		var err error
		query, err = s.embedder.EmbedQuery(ctx, question)
		return err
	})
	if err != nil {
		return nil, nil, domain.WrapStage(domain.StageEmbed, err)
	}

	var matches []domain.Match
	err = s.call(ctx, domain.ErrRetrieval, func(ctx context.Context) error {
		var err error
		matches, err = s.index.Search(ctx, query, k)
		return err
	})
	if err != nil {
		return nil, nil, domain.WrapStage(domain.StageRetrieve, asKind(domain.ErrRetrieval, err))
	}
	logger.Debug("Index returned %d matches", len(matches))

	chunks := make([]domain.Chunk, 0, len(matches))
	for _, m := range matches {
		pos, err := domain.ParseVectorID(m.ID, len(s.chunks))
		if err != nil {
			return nil, nil, domain.WrapStage(domain.StageRetrieve, err)
		}
		chunks = append(chunks, s.chunks[pos])
	}
	return chunks, matches, nil
}

// Query answers question from the prepared document.
// When no chunk is relevant the answer is the NoAnswerText sentinel and
// the LLM is not called.
func (s *RAGService) Query(ctx context.Context, question string, opts domain.QueryOptions) (*domain.Answer, error) {
	logger.Section("Query")
	logger.Debug("Question: %q", question)
	start := time.Now()

	question = strings.TrimSpace(question)
	if question == "" {
		return nil, fmt.Errorf("%w: empty question", domain.ErrInvalidInput)
	}
	k := opts.TopK
	if k < 1 {
		k = s.cfg.TopK
	}

	answer, gen, err := s.answer(ctx, question, k, opts)
	if err != nil {
		return nil, err
	}
	s.markReady(gen)

	answer.Duration = time.Since(start)
	return answer, nil
}

func (s *RAGService) answer(
	ctx context.Context, question string, k int, opts domain.QueryOptions,
) (*domain.Answer, uint64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.state.CanQuery() {
		return nil, 0, domain.ErrNotReady
	}

	chunks, matches, err := s.retrieve(ctx, question, k)
	if err != nil {
		return nil, 0, err
	}

	answer := &domain.Answer{
		Question: question,
		Chunks:   chunks,
		Matches:  matches,
	}
	if len(chunks) == 0 {
		logger.Debug("No relevant chunks, skipping generation")
		answer.Text = NoAnswerText
		answer.NoAnswer = true
		return answer, s.generation, nil
	}

	text, err := s.generate(ctx, s.buildPrompt(chunks, question))
	if err != nil {
		return nil, 0, domain.WrapStage(domain.StageGenerate, err)
	}
	answer.Text = text

	if opts.Reference != "" && s.evaluator != nil {
		scores, err := s.evaluator.Evaluate(text, opts.Reference, opts.Metrics)
		if err != nil {
			return nil, 0, domain.WrapStage(domain.StageEvaluate, err)
		}
		answer.Evaluation = scores
	}
	return answer, s.generation, nil
}

func (s *RAGService) generate(ctx context.Context, prompt string) (string, error) {
	if s.llm == nil {
		return "", fmt.Errorf("%w: %w", domain.ErrGeneration, domain.ErrLLMUnavailable)
	}
	defer logger.Timed("generation")()

	var text string
	err := s.call(ctx, domain.ErrGeneration, func(ctx context.Context) error {
		var err error
		text, err = s.llm.Generate(ctx, prompt, driven.GenerateOptions{
			MaxTokens:   s.cfg.MaxTokens,
			Temperature: s.cfg.Temperature,
		})
		return err
	})
	if err != nil {
		return "", asKind(domain.ErrGeneration, err)
	}
	return strings.TrimSpace(text), nil
}

// buildPrompt fills the answer template with the joined chunk texts and
// the question.
func (s *RAGService) buildPrompt(chunks []domain.Chunk, question string) string {
	tmpl := DefaultAnswerPrompt
	if s.prompts != nil {
		if p, err := s.prompts.Load(driven.PromptAnswer); err == nil {
			if strings.Count(p, "%s") == 2 {
				tmpl = p
			} else {
				logger.Warn("answer prompt needs exactly two %%s placeholders, using default")
			}
		}
	}
	block := strings.Join(domain.ChunkContents(chunks), contextSeparator)
	return fmt.Sprintf(tmpl, block, question)
}

// markReady moves a prepared pipeline to ready after its first answer,
// unless the chunk list changed since the answer was produced.
func (s *RAGService) markReady(gen uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == domain.StatePrepared && s.generation == gen {
		s.state = domain.StateReady
	}
}

// call runs fn under the configured per-call timeout. A timeout is
// reported as kind.
func (s *RAGService) call(ctx context.Context, kind error, fn func(context.Context) error) error {
	if s.cfg.CallTimeout <= 0 {
		return fn(ctx)
	}
	ctx, cancel := context.WithTimeout(ctx, s.cfg.CallTimeout)
	defer cancel()

	err := fn(ctx)
	if err != nil && errors.Is(ctx.Err(), context.DeadlineExceeded) && !errors.Is(err, kind) {
		return fmt.Errorf("%w: timed out after %s: %w", kind, s.cfg.CallTimeout, err)
	}
	return err
}

// asKind marks err as kind unless it already is one.
func asKind(kind, err error) error {
	if errors.Is(err, kind) {
		return err
	}
	return fmt.Errorf("%w: %w", kind, err)
}

// DetectMIMEType guesses a document's MIME type from its file extension.
func DetectMIMEType(path string) string {
	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".pdf":
		return "application/pdf"
	case ".txt", ".text", "":
		return "text/plain"
	case ".md", ".markdown":
		return "text/markdown"
	case ".html", ".htm":
		return "text/html"
	}
	if t := mime.TypeByExtension(ext); t != "" {
		if mt, _, err := mime.ParseMediaType(t); err == nil {
			return mt
		}
	}
	return "application/octet-stream"
}
