package memory

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/docqa/internal/core/domain"
)

func TestVectorIndex_EnsureIndex_Idempotent(t *testing.T) {
	ctx := context.Background()
	idx := NewVectorIndex()

	require.NoError(t, idx.EnsureIndex(ctx, 2, domain.MetricEuclidean))
	require.NoError(t, idx.EnsureIndex(ctx, 2, domain.MetricEuclidean))

	err := idx.EnsureIndex(ctx, 3, domain.MetricEuclidean)
	assert.True(t, errors.Is(err, domain.ErrInvalidConfiguration))
}

func TestVectorIndex_EnsureIndex_Invalid(t *testing.T) {
	ctx := context.Background()
	idx := NewVectorIndex()

	assert.True(t, errors.Is(idx.EnsureIndex(ctx, 0, domain.MetricCosine), domain.ErrInvalidConfiguration))
	assert.True(t, errors.Is(idx.EnsureIndex(ctx, 2, "manhattan"), domain.ErrInvalidConfiguration))
}

func TestVectorIndex_UpsertAndSearch(t *testing.T) {
	ctx := context.Background()
	idx := NewVectorIndex()
	require.NoError(t, idx.EnsureIndex(ctx, 2, domain.MetricCosine))

	require.NoError(t, idx.Upsert(ctx, []string{"0", "1", "2"}, [][]float32{{1, 0}, {0, 1}, {0.7, 0.7}}))
	assert.Equal(t, 3, idx.Len())

	matches, err := idx.Search(ctx, []float32{1, 0.1}, 2)
	require.NoError(t, err)
	require.Len(t, matches, 2)
	assert.Equal(t, "0", matches[0].ID)
	assert.Equal(t, "2", matches[1].ID)
}

func TestVectorIndex_Upsert_Replaces(t *testing.T) {
	ctx := context.Background()
	idx := NewVectorIndex()
	require.NoError(t, idx.EnsureIndex(ctx, 2, domain.MetricCosine))

	require.NoError(t, idx.Upsert(ctx, []string{"0"}, [][]float32{{1, 0}}))
	require.NoError(t, idx.Upsert(ctx, []string{"0"}, [][]float32{{0, 1}}))
	assert.Equal(t, 1, idx.Len())

	matches, err := idx.Search(ctx, []float32{0, 1}, 1)
	require.NoError(t, err)
	assert.InDelta(t, 1.0, matches[0].Score, 1e-6)
}

func TestVectorIndex_Upsert_Errors(t *testing.T) {
	ctx := context.Background()
	idx := NewVectorIndex()

	err := idx.Upsert(ctx, []string{"0"}, [][]float32{{1, 0}})
	assert.True(t, errors.Is(err, domain.ErrVectorIndexUnavailable))

	require.NoError(t, idx.EnsureIndex(ctx, 2, domain.MetricCosine))
	assert.True(t, errors.Is(idx.Upsert(ctx, []string{"0", "1"}, [][]float32{{1, 0}}), domain.ErrInvalidInput))
	assert.True(t, errors.Is(idx.Upsert(ctx, []string{"0"}, [][]float32{{1, 0, 0}}), domain.ErrInvalidInput))
}

func TestVectorIndex_Search_Empty(t *testing.T) {
	ctx := context.Background()
	idx := NewVectorIndex()

	matches, err := idx.Search(ctx, []float32{1, 0}, 5)
	require.NoError(t, err)
	assert.Empty(t, matches)

	_, err = idx.Search(ctx, []float32{1, 0}, 0)
	assert.True(t, errors.Is(err, domain.ErrInvalidInput))
}

func TestVectorIndex_Search_DimensionMismatch(t *testing.T) {
	ctx := context.Background()
	idx := NewVectorIndex()
	require.NoError(t, idx.EnsureIndex(ctx, 2, domain.MetricCosine))
	require.NoError(t, idx.Upsert(ctx, []string{"0"}, [][]float32{{1, 0}}))

	_, err := idx.Search(ctx, []float32{1, 0, 0}, 1)
	assert.True(t, errors.Is(err, domain.ErrRetrieval))
}

func TestVectorIndex_ResetAndDelete(t *testing.T) {
	ctx := context.Background()
	idx := NewVectorIndex()
	require.NoError(t, idx.EnsureIndex(ctx, 2, domain.MetricCosine))
	require.NoError(t, idx.Upsert(ctx, []string{"0"}, [][]float32{{1, 0}}))

	require.NoError(t, idx.Reset(ctx))
	assert.Equal(t, 0, idx.Len())
	require.NoError(t, idx.Upsert(ctx, []string{"0"}, [][]float32{{1, 0}}))

	require.NoError(t, idx.DeleteIndex(ctx))
	require.NoError(t, idx.EnsureIndex(ctx, 3, domain.MetricEuclidean))
	assert.NoError(t, idx.Close())
}
