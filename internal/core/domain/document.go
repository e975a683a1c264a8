package domain

import (
	"fmt"
	"strconv"
	"time"
)

// Document represents the text extracted from a source file.
// It is the canonical representation after normalisation.
type Document struct {
	// ID is the unique identifier for the document.
	ID string

	// URI is the original location of the file.
	URI string

	// Title is the human-readable title.
	Title string

	// Content is the full text content after extraction.
	// This is the complete document text before chunking.
	Content string

	// Metadata contains arbitrary key-value pairs.
	Metadata map[string]any

	// CreatedAt is when the document was extracted.
	CreatedAt time.Time
}

// Chunk represents a retrievable span of a document.
// Its position in the ordered chunk list is its only identity.
type Chunk struct {
	// DocumentID links to the parent Document.
	DocumentID string

	// Content is the text content of this chunk.
	Content string

	// Position is the zero-based index within the chunk list.
	Position int
}

// VectorID returns the identifier under which the chunk's vector is stored.
func (c Chunk) VectorID() string {
	return strconv.Itoa(c.Position)
}

// ParseVectorID converts a vector identifier back into a chunk position.
// It fails with ErrRetrieval when the id is not an integer in [0, n).
func ParseVectorID(id string, n int) (int, error) {
	pos, err := strconv.Atoi(id)
	if err != nil {
		return 0, fmt.Errorf("%w: non-numeric chunk id %q", ErrRetrieval, id)
	}
	if pos < 0 || pos >= n {
		return 0, fmt.Errorf("%w: chunk id %d out of range [0,%d)", ErrRetrieval, pos, n)
	}
	return pos, nil
}

// VectorIDs returns the vector identifiers for chunks, in order.
func VectorIDs(chunks []Chunk) []string {
	ids := make([]string, len(chunks))
	for i, c := range chunks {
		ids[i] = c.VectorID()
	}
	return ids
}

// ChunkContents returns the text of every chunk, in order.
func ChunkContents(chunks []Chunk) []string {
	out := make([]string, len(chunks))
	for i, c := range chunks {
		out[i] = c.Content
	}
	return out
}
