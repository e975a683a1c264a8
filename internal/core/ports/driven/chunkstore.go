package driven

import (
	"context"

	"github.com/custodia-labs/docqa/internal/core/domain"
)

// ChunkStore persists the ordered chunk list of the prepared document.
// Chunk positions must survive a round trip unchanged, since vector ids
// are derived from them.
type ChunkStore interface {
	// SaveChunks replaces the stored chunk list.
	SaveChunks(ctx context.Context, doc *domain.Document, chunks []domain.Chunk) error

	// LoadChunks returns the stored document and its chunks in position order.
	// Returns domain.ErrNotFound when nothing has been prepared.
	LoadChunks(ctx context.Context) (*domain.Document, []domain.Chunk, error)

	// ClearChunks removes the stored chunk list.
	ClearChunks(ctx context.Context) error
}
