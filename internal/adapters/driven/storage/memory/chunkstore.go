package memory

import (
	"context"
	"sync"

	"github.com/custodia-labs/docqa/internal/core/domain"
	"github.com/custodia-labs/docqa/internal/core/ports/driven"
)

// Ensure ChunkStore implements the interface.
var _ driven.ChunkStore = (*ChunkStore)(nil)

// ChunkStore is an in-memory implementation of driven.ChunkStore.
type ChunkStore struct {
	mu     sync.RWMutex
	doc    *domain.Document
	chunks []domain.Chunk
}

// NewChunkStore creates a new in-memory chunk store.
func NewChunkStore() *ChunkStore {
	return &ChunkStore{}
}

// SaveChunks replaces the stored chunk list.
func (s *ChunkStore) SaveChunks(_ context.Context, doc *domain.Document, chunks []domain.Chunk) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	d := *doc
	s.doc = &d
	s.chunks = append([]domain.Chunk(nil), chunks...)
	return nil
}

// LoadChunks returns the stored document and chunks.
func (s *ChunkStore) LoadChunks(_ context.Context) (*domain.Document, []domain.Chunk, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.doc == nil {
		return nil, nil, domain.ErrNotFound
	}
	d := *s.doc
	return &d, append([]domain.Chunk(nil), s.chunks...), nil
}

// ClearChunks removes the stored chunk list.
func (s *ChunkStore) ClearChunks(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.doc = nil
	s.chunks = nil
	return nil
}
