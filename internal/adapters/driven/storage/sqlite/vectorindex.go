package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/custodia-labs/docqa/internal/adapters/driven/vector/bruteforce"
	"github.com/custodia-labs/docqa/internal/core/domain"
	"github.com/custodia-labs/docqa/internal/core/ports/driven"
)

// Ensure VectorIndex implements the interfaces.
var (
	_ driven.VectorIndex  = (*VectorIndex)(nil)
	_ driven.IndexDeleter = (*VectorIndex)(nil)
)

// VectorIndex implements driven.VectorIndex on the vectors table.
type VectorIndex struct {
	store *Store
}

// EnsureIndex records the index parameters on first call.
// A later call with different parameters fails with ErrInvalidConfiguration;
// run `docqa reset --index` to recreate it.
func (v *VectorIndex) EnsureIndex(ctx context.Context, dimension int, metric domain.DistanceMetric) error {
	if dimension < 1 {
		return fmt.Errorf("%w: dimension must be positive, got %d", domain.ErrInvalidConfiguration, dimension)
	}
	if !metric.IsValid() {
		return fmt.Errorf("%w: unknown distance metric %q", domain.ErrInvalidConfiguration, metric)
	}

	dim, existing, err := v.describe(ctx)
	switch {
	case errors.Is(err, domain.ErrNotFound):
		_, err = v.store.db.ExecContext(ctx,
			`INSERT INTO vector_index (id, dimension, metric) VALUES (1, ?, ?)`, dimension, string(metric))
		if err != nil {
			return fmt.Errorf("creating vector index: %w", err)
		}
		return nil
	case err != nil:
		return err
	}

	if dim != dimension || existing != metric {
		return fmt.Errorf("%w: index exists with dimension %d and metric %s",
			domain.ErrInvalidConfiguration, dim, existing)
	}
	return nil
}

func (v *VectorIndex) describe(ctx context.Context) (int, domain.DistanceMetric, error) {
	var dim int
	var metric string
	err := v.store.db.QueryRowContext(ctx,
		`SELECT dimension, metric FROM vector_index WHERE id = 1`).Scan(&dim, &metric)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, "", domain.ErrNotFound
	}
	if err != nil {
		return 0, "", fmt.Errorf("reading vector index: %w", err)
	}
	return dim, domain.DistanceMetric(metric), nil
}

// Upsert writes vectors under ids in a single transaction.
func (v *VectorIndex) Upsert(ctx context.Context, ids []string, vectors [][]float32) error {
	if len(ids) != len(vectors) {
		return fmt.Errorf("%w: %d ids for %d vectors", domain.ErrInvalidInput, len(ids), len(vectors))
	}
	dim, _, err := v.describe(ctx)
	if errors.Is(err, domain.ErrNotFound) {
		return fmt.Errorf("%w: index not created", domain.ErrVectorIndexUnavailable)
	}
	if err != nil {
		return err
	}

	tx, err := v.store.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	var seq int
	if err := tx.QueryRowContext(ctx, `SELECT COALESCE(MAX(seq), 0) FROM vectors`).Scan(&seq); err != nil {
		return fmt.Errorf("reading sequence: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO vectors (id, embedding, seq) VALUES (?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET embedding = excluded.embedding
	`)
	if err != nil {
		return fmt.Errorf("preparing statement: %w", err)
	}
	defer stmt.Close()

	for i, id := range ids {
		if len(vectors[i]) != dim {
			return fmt.Errorf("%w: vector %s has dimension %d, index has %d",
				domain.ErrInvalidInput, id, len(vectors[i]), dim)
		}
		seq++
		if _, err := stmt.ExecContext(ctx, id, float32SliceToBytes(vectors[i]), seq); err != nil {
			return fmt.Errorf("saving vector %s: %w", id, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

// Search scans every stored vector and returns the best k.
func (v *VectorIndex) Search(ctx context.Context, query []float32, k int) ([]domain.Match, error) {
	if k < 1 {
		return nil, fmt.Errorf("%w: k must be positive, got %d", domain.ErrInvalidInput, k)
	}
	_, metric, err := v.describe(ctx)
	if errors.Is(err, domain.ErrNotFound) {
		return []domain.Match{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrRetrieval, err)
	}

	rows, err := v.store.db.QueryContext(ctx, `SELECT id, embedding FROM vectors ORDER BY seq`)
	if err != nil {
		return nil, fmt.Errorf("%w: querying vectors: %w", domain.ErrRetrieval, err)
	}
	defer rows.Close()

	var ids []string
	var vectors [][]float32
	for rows.Next() {
		var id string
		var blob []byte
		if err := rows.Scan(&id, &blob); err != nil {
			return nil, fmt.Errorf("%w: scanning vector: %w", domain.ErrRetrieval, err)
		}
		ids = append(ids, id)
		vectors = append(vectors, bytesToFloat32Slice(blob))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrRetrieval, err)
	}
	if len(ids) == 0 {
		return []domain.Match{}, nil
	}

	matches, err := bruteforce.Rank(metric, query, ids, vectors, k)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrRetrieval, err)
	}
	return matches, nil
}

// Reset removes every stored vector.
func (v *VectorIndex) Reset(ctx context.Context) error {
	if _, err := v.store.db.ExecContext(ctx, `DELETE FROM vectors`); err != nil {
		return fmt.Errorf("clearing vectors: %w", err)
	}
	return nil
}

// DeleteIndex removes the vectors and the index parameters.
func (v *VectorIndex) DeleteIndex(ctx context.Context) error {
	if err := v.Reset(ctx); err != nil {
		return err
	}
	if _, err := v.store.db.ExecContext(ctx, `DELETE FROM vector_index`); err != nil {
		return fmt.Errorf("deleting vector index: %w", err)
	}
	return nil
}

// Count returns the number of stored vectors.
func (v *VectorIndex) Count(ctx context.Context) (int, error) {
	var n int
	if err := v.store.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM vectors`).Scan(&n); err != nil {
		return 0, fmt.Errorf("counting vectors: %w", err)
	}
	return n, nil
}

// Close is a no-op; the owning Store closes the database.
func (v *VectorIndex) Close() error {
	return nil
}
