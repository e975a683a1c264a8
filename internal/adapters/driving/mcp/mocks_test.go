package mcp

import (
	"context"

	"github.com/custodia-labs/docqa/internal/core/domain"
)

// mockRAGService is a mock implementation of driving.RAGService.
type mockRAGService struct {
	answer    *domain.Answer
	chunks    []domain.Chunk
	matches   []domain.Match
	state     domain.PipelineState
	err       error
	lastOpts  domain.QueryOptions
	lastTopK  int
	questions []string
}

func (m *mockRAGService) Prepare(_ context.Context, _ string) (*domain.PrepareReport, error) {
	return &domain.PrepareReport{Chunks: len(m.chunks)}, m.err
}

func (m *mockRAGService) Preview(_ context.Context, _ string) (*domain.Document, []domain.Chunk, error) {
	return &domain.Document{}, m.chunks, m.err
}

func (m *mockRAGService) Restore(_ context.Context) error {
	return m.err
}

func (m *mockRAGService) Query(_ context.Context, question string, opts domain.QueryOptions) (*domain.Answer, error) {
	m.questions = append(m.questions, question)
	m.lastOpts = opts
	if m.err != nil {
		return nil, m.err
	}
	return m.answer, nil
}

func (m *mockRAGService) Retrieve(_ context.Context, question string, k int) ([]domain.Chunk, []domain.Match, error) {
	m.questions = append(m.questions, question)
	m.lastTopK = k
	if m.err != nil {
		return nil, nil, m.err
	}
	return m.chunks, m.matches, nil
}

func (m *mockRAGService) Reset(_ context.Context) error {
	return m.err
}

func (m *mockRAGService) DeleteIndex(_ context.Context) error {
	return m.err
}

func (m *mockRAGService) State() domain.PipelineState {
	if m.state == "" {
		return domain.StateUninitialized
	}
	return m.state
}

func (m *mockRAGService) Chunks() []domain.Chunk {
	return m.chunks
}

// mockEvaluator is a mock implementation of driving.Evaluator.
type mockEvaluator struct {
	result domain.EvaluationResult
	err    error
}

func (m *mockEvaluator) Evaluate(_, _ string, _ []string) (domain.EvaluationResult, error) {
	return m.result, m.err
}
