package tui

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/docqa/internal/core/domain"
)

// MockRAGService implements driving.RAGService for testing.
type MockRAGService struct {
	QueryFunc func(ctx context.Context, question string, opts domain.QueryOptions) (*domain.Answer, error)
}

func (m *MockRAGService) Prepare(_ context.Context, _ string) (*domain.PrepareReport, error) {
	return &domain.PrepareReport{}, nil
}

func (m *MockRAGService) Preview(_ context.Context, _ string) (*domain.Document, []domain.Chunk, error) {
	return &domain.Document{}, nil, nil
}

func (m *MockRAGService) Restore(_ context.Context) error {
	return nil
}

func (m *MockRAGService) Query(ctx context.Context, question string, opts domain.QueryOptions) (*domain.Answer, error) {
	if m.QueryFunc != nil {
		return m.QueryFunc(ctx, question, opts)
	}
	return &domain.Answer{Question: question, Text: "answer"}, nil
}

func (m *MockRAGService) Retrieve(_ context.Context, _ string, _ int) ([]domain.Chunk, []domain.Match, error) {
	return nil, nil, nil
}

func (m *MockRAGService) Reset(_ context.Context) error {
	return nil
}

func (m *MockRAGService) DeleteIndex(_ context.Context) error {
	return nil
}

func (m *MockRAGService) State() domain.PipelineState {
	return domain.StatePrepared
}

func (m *MockRAGService) Chunks() []domain.Chunk {
	return nil
}

func TestNewPorts(t *testing.T) {
	rag := &MockRAGService{}

	ports := NewPorts(rag)

	require.NotNil(t, ports)
	assert.Equal(t, rag, ports.RAG)
	assert.NoError(t, ports.Validate())
}

func TestPorts_Validate(t *testing.T) {
	var nilPorts *Ports
	assert.ErrorIs(t, nilPorts.Validate(), ErrInvalidPorts)

	assert.ErrorIs(t, (&Ports{}).Validate(), ErrMissingRAGService)
}
