package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/custodia-labs/docqa/internal/adapters/driven/vector/bruteforce"
	"github.com/custodia-labs/docqa/internal/core/domain"
	"github.com/custodia-labs/docqa/internal/core/ports/driven"
)

// Ensure VectorIndex implements the interfaces.
var (
	_ driven.VectorIndex  = (*VectorIndex)(nil)
	_ driven.IndexDeleter = (*VectorIndex)(nil)
)

// VectorIndex is an in-memory implementation of driven.VectorIndex.
// Contents are lost when the process exits.
type VectorIndex struct {
	mu        sync.RWMutex
	created   bool
	dimension int
	metric    domain.DistanceMetric
	ids       []string
	vectors   [][]float32
	positions map[string]int
}

// NewVectorIndex creates an empty in-memory vector index.
func NewVectorIndex() *VectorIndex {
	return &VectorIndex{positions: make(map[string]int)}
}

// EnsureIndex records the dimension and metric on first call.
// A later call with different parameters fails with ErrInvalidConfiguration.
func (v *VectorIndex) EnsureIndex(_ context.Context, dimension int, metric domain.DistanceMetric) error {
	if dimension < 1 {
		return fmt.Errorf("%w: dimension must be positive, got %d", domain.ErrInvalidConfiguration, dimension)
	}
	if !metric.IsValid() {
		return fmt.Errorf("%w: unknown distance metric %q", domain.ErrInvalidConfiguration, metric)
	}
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.created {
		if v.dimension != dimension || v.metric != metric {
			return fmt.Errorf("%w: index exists with dimension %d and metric %s",
				domain.ErrInvalidConfiguration, v.dimension, v.metric)
		}
		return nil
	}
	v.created = true
	v.dimension = dimension
	v.metric = metric
	return nil
}

// Upsert writes vectors under ids, replacing existing entries.
func (v *VectorIndex) Upsert(_ context.Context, ids []string, vectors [][]float32) error {
	if len(ids) != len(vectors) {
		return fmt.Errorf("%w: %d ids for %d vectors", domain.ErrInvalidInput, len(ids), len(vectors))
	}
	v.mu.Lock()
	defer v.mu.Unlock()
	if !v.created {
		return fmt.Errorf("%w: index not created", domain.ErrVectorIndexUnavailable)
	}
	for i, id := range ids {
		if len(vectors[i]) != v.dimension {
			return fmt.Errorf("%w: vector %s has dimension %d, index has %d",
				domain.ErrInvalidInput, id, len(vectors[i]), v.dimension)
		}
		vec := append([]float32(nil), vectors[i]...)
		if pos, ok := v.positions[id]; ok {
			v.vectors[pos] = vec
			continue
		}
		v.positions[id] = len(v.ids)
		v.ids = append(v.ids, id)
		v.vectors = append(v.vectors, vec)
	}
	return nil
}

// Search returns at most k matches in descending score order.
func (v *VectorIndex) Search(_ context.Context, query []float32, k int) ([]domain.Match, error) {
	if k < 1 {
		return nil, fmt.Errorf("%w: k must be positive, got %d", domain.ErrInvalidInput, k)
	}
	v.mu.RLock()
	defer v.mu.RUnlock()
	if !v.created || len(v.ids) == 0 {
		return []domain.Match{}, nil
	}
	matches, err := bruteforce.Rank(v.metric, query, v.ids, v.vectors, k)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrRetrieval, err)
	}
	return matches, nil
}

// Reset removes every stored vector.
func (v *VectorIndex) Reset(_ context.Context) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.ids = nil
	v.vectors = nil
	v.positions = make(map[string]int)
	return nil
}

// DeleteIndex removes the index and its contents.
func (v *VectorIndex) DeleteIndex(ctx context.Context) error {
	_ = v.Reset(ctx)
	v.mu.Lock()
	defer v.mu.Unlock()
	v.created = false
	v.dimension = 0
	v.metric = ""
	return nil
}

// Len returns the number of stored vectors.
func (v *VectorIndex) Len() int {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return len(v.ids)
}

// Close releases resources.
func (v *VectorIndex) Close() error {
	return nil
}
