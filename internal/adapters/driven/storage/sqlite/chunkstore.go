package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/custodia-labs/docqa/internal/core/domain"
	"github.com/custodia-labs/docqa/internal/core/ports/driven"
)

// chunkStore implements driven.ChunkStore.
type chunkStore struct {
	store *Store
}

var _ driven.ChunkStore = (*chunkStore)(nil)

// SaveChunks replaces the stored document and chunk list in one transaction.
func (s *chunkStore) SaveChunks(ctx context.Context, doc *domain.Document, chunks []domain.Chunk) error {
	metadataJSON, err := json.Marshal(doc.Metadata)
	if err != nil {
		return fmt.Errorf("marshalling metadata: %w", err)
	}
	createdAt := doc.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	tx, err := s.store.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	if _, err := tx.ExecContext(ctx, `DELETE FROM chunks`); err != nil {
		return fmt.Errorf("clearing chunks: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM documents`); err != nil {
		return fmt.Errorf("clearing documents: %w", err)
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO documents (id, uri, title, content, metadata, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, doc.ID, doc.URI, doc.Title, doc.Content, string(metadataJSON), createdAt)
	if err != nil {
		return fmt.Errorf("saving document: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO chunks (position, document_id, content) VALUES (?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("preparing statement: %w", err)
	}
	defer stmt.Close()

	for _, chunk := range chunks {
		if _, err := stmt.ExecContext(ctx, chunk.Position, doc.ID, chunk.Content); err != nil {
			return fmt.Errorf("saving chunk %d: %w", chunk.Position, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

// LoadChunks returns the stored document and its chunks in position order.
func (s *chunkStore) LoadChunks(ctx context.Context) (*domain.Document, []domain.Chunk, error) {
	var doc domain.Document
	var metadataJSON string
	err := s.store.db.QueryRowContext(ctx, `
		SELECT id, uri, title, content, metadata, created_at FROM documents LIMIT 1
	`).Scan(&doc.ID, &doc.URI, &doc.Title, &doc.Content, &metadataJSON, &doc.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, nil, fmt.Errorf("scanning document: %w", err)
	}
	if metadataJSON != "" && metadataJSON != "null" {
		if err := json.Unmarshal([]byte(metadataJSON), &doc.Metadata); err != nil {
			return nil, nil, fmt.Errorf("unmarshalling metadata: %w", err)
		}
	}

	rows, err := s.store.db.QueryContext(ctx, `
		SELECT position, content FROM chunks WHERE document_id = ? ORDER BY position
	`, doc.ID)
	if err != nil {
		return nil, nil, fmt.Errorf("querying chunks: %w", err)
	}
	defer rows.Close()

	var chunks []domain.Chunk
	for rows.Next() {
		c := domain.Chunk{DocumentID: doc.ID}
		if err := rows.Scan(&c.Position, &c.Content); err != nil {
			return nil, nil, fmt.Errorf("scanning chunk: %w", err)
		}
		chunks = append(chunks, c)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, fmt.Errorf("iterating chunks: %w", err)
	}
	return &doc, chunks, nil
}

// ClearChunks removes the stored document and chunk list.
func (s *chunkStore) ClearChunks(ctx context.Context) error {
	if _, err := s.store.db.ExecContext(ctx, `DELETE FROM chunks`); err != nil {
		return fmt.Errorf("clearing chunks: %w", err)
	}
	if _, err := s.store.db.ExecContext(ctx, `DELETE FROM documents`); err != nil {
		return fmt.Errorf("clearing documents: %w", err)
	}
	return nil
}
