package driven

import (
	"context"

	"github.com/custodia-labs/docqa/internal/core/domain"
)

// VectorIndex stores chunk vectors and answers similarity queries.
// Implementations: Pinecone (hosted), SQLite (local file), memory.
type VectorIndex interface {
	// EnsureIndex creates the index if it does not exist.
	// Calling it again with the same parameters is a no-op.
	EnsureIndex(ctx context.Context, dimension int, metric domain.DistanceMetric) error

	// Upsert writes vectors under the given ids, replacing existing entries.
	// ids and vectors must have the same length.
	Upsert(ctx context.Context, ids []string, vectors [][]float32) error

	// Search returns at most k matches in descending score order.
	// An index with no entries returns an empty slice and no error.
	Search(ctx context.Context, query []float32, k int) ([]domain.Match, error)

	// Reset removes every stored vector, keeping the index itself.
	Reset(ctx context.Context) error

	// Close releases resources.
	Close() error
}

// IndexDeleter is implemented by vector indexes that can drop the
// index entirely, not only its contents.
type IndexDeleter interface {
	// DeleteIndex removes the index. A missing index is not an error.
	DeleteIndex(ctx context.Context) error
}
