package memory

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/docqa/internal/core/domain"
)

func TestChunkStore_RoundTrip(t *testing.T) {
	ctx := context.Background()
	store := NewChunkStore()

	_, _, err := store.LoadChunks(ctx)
	assert.True(t, errors.Is(err, domain.ErrNotFound))

	doc := &domain.Document{ID: "doc-1", URI: "/tmp/a.pdf"}
	chunks := []domain.Chunk{
		{DocumentID: "doc-1", Content: "first", Position: 0},
		{DocumentID: "doc-1", Content: "second", Position: 1},
	}
	require.NoError(t, store.SaveChunks(ctx, doc, chunks))

	gotDoc, gotChunks, err := store.LoadChunks(ctx)
	require.NoError(t, err)
	assert.Equal(t, "doc-1", gotDoc.ID)
	assert.Equal(t, chunks, gotChunks)

	// Mutating the returned slice must not affect the store.
	gotChunks[0].Content = "changed"
	_, again, err := store.LoadChunks(ctx)
	require.NoError(t, err)
	assert.Equal(t, "first", again[0].Content)

	require.NoError(t, store.ClearChunks(ctx))
	_, _, err = store.LoadChunks(ctx)
	assert.True(t, errors.Is(err, domain.ErrNotFound))
}
