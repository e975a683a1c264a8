package local

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/docqa/internal/core/domain"
)

func TestNewEmbeddingService(t *testing.T) {
	svc, err := NewEmbeddingService(Config{})

	require.NoError(t, err)
	assert.Equal(t, DefaultDimensions, svc.Dimensions())
	assert.Equal(t, DefaultModel, svc.ModelName())
	assert.NoError(t, svc.Ping(context.Background()))
	assert.NoError(t, svc.Close())
}

func TestNewEmbeddingService_InvalidDimensions(t *testing.T) {
	_, err := NewEmbeddingService(Config{Dimensions: -1})

	assert.ErrorIs(t, err, domain.ErrInvalidConfiguration)
}

func TestTokens(t *testing.T) {
	assert.Equal(t, []string{"cat", "run", "garden"}, Tokens("The cats are running in the garden."))
	assert.Empty(t, Tokens("  the of and "))
}

func TestEmbeddingService_Embed_CountsTokens(t *testing.T) {
	svc, err := NewEmbeddingService(Config{Dimensions: 64})
	require.NoError(t, err)

	vec, err := svc.Embed(context.Background(), "cat cats CAT the")

	require.NoError(t, err)
	require.Len(t, vec, 64)
	var total float32
	var nonZero int
	for _, v := range vec {
		total += v
		if v != 0 {
			nonZero++
		}
	}
	assert.InDelta(t, 3, total, 1e-9)
	assert.Equal(t, 1, nonZero)
}

func TestEmbeddingService_Embed_Deterministic(t *testing.T) {
	svc, err := NewEmbeddingService(Config{})
	require.NoError(t, err)

	a, err := svc.Embed(context.Background(), "vector databases store embeddings")
	require.NoError(t, err)
	b, err := svc.Embed(context.Background(), "vector databases store embeddings")
	require.NoError(t, err)

	assert.Equal(t, a, b)
}

func TestEmbeddingService_EmbedBatch(t *testing.T) {
	svc, err := NewEmbeddingService(Config{Dimensions: 16})
	require.NoError(t, err)

	vecs, err := svc.EmbedBatch(context.Background(), []string{"alpha", "", "beta gamma"})

	require.NoError(t, err)
	require.Len(t, vecs, 3)
	for _, v := range vecs {
		assert.Len(t, v, 16)
	}
	assert.Equal(t, make([]float32, 16), vecs[1])
}

func TestEmbeddingService_Embed_CancelledContext(t *testing.T) {
	svc, err := NewEmbeddingService(Config{})
	require.NoError(t, err)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = svc.Embed(ctx, "text")

	assert.ErrorIs(t, err, context.Canceled)
}
