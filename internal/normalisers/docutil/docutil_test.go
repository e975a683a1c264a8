package docutil

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/docqa/internal/core/domain"
)

func TestNewDocument(t *testing.T) {
	raw := &domain.RawDocument{
		URI:      "/docs/relevo.pdf",
		MIMEType: "application/pdf",
		Metadata: map[string]any{"pages": 3},
	}

	doc := NewDocument(raw, "Relevo", "text", "pdf")

	assert.NotEmpty(t, doc.ID)
	assert.Equal(t, "/docs/relevo.pdf", doc.URI)
	assert.Equal(t, "Relevo", doc.Title)
	assert.Equal(t, "text", doc.Content)
	assert.Equal(t, "application/pdf", doc.Metadata["mime_type"])
	assert.Equal(t, "pdf", doc.Metadata["format"])
	assert.Equal(t, 3, doc.Metadata["pages"])
	assert.False(t, doc.CreatedAt.IsZero())

	// The raw metadata is not modified.
	_, ok := raw.Metadata["mime_type"]
	assert.False(t, ok)
}

func TestNewDocument_NoFormat(t *testing.T) {
	doc := NewDocument(&domain.RawDocument{MIMEType: "text/plain"}, "", "", "")

	require.NotNil(t, doc.Metadata)
	_, ok := doc.Metadata["format"]
	assert.False(t, ok)
}

func TestTitleFromURI(t *testing.T) {
	assert.Equal(t, "relevo brasileiro", TitleFromURI("/data/pdfs/relevo-brasileiro.pdf"))
	assert.Equal(t, "my notes", TitleFromURI("my_notes.txt"))
	assert.Equal(t, "README", TitleFromURI("README"))
}

func TestTitleFromText(t *testing.T) {
	tests := []struct {
		name     string
		content  string
		uri      string
		expected string
	}{
		{name: "first line", content: "Document Title\n\nBody.", uri: "/doc.pdf", expected: "Document Title"},
		{name: "skip empty lines", content: "\n\n\n  Actual Title \nBody", uri: "/doc.pdf", expected: "Actual Title"},
		{name: "fallback to filename", content: "", uri: "/path/to/my_document.pdf", expected: "my document"},
		{
			name:     "skip very long first line",
			content:  strings.Repeat("x", 250) + "\nShort Title\nBody",
			uri:      "/doc.pdf",
			expected: "Short Title",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, TitleFromText(tc.content, tc.uri))
		})
	}
}

func TestMetadataTitle(t *testing.T) {
	title, ok := MetadataTitle(&domain.RawDocument{Metadata: map[string]any{"title": "Report"}})
	assert.True(t, ok)
	assert.Equal(t, "Report", title)

	_, ok = MetadataTitle(&domain.RawDocument{Metadata: map[string]any{"title": ""}})
	assert.False(t, ok)

	_, ok = MetadataTitle(&domain.RawDocument{})
	assert.False(t, ok)
}

func TestCopyMetadata(t *testing.T) {
	assert.Nil(t, CopyMetadata(nil))

	src := map[string]any{"key1": "value1", "key2": 42}
	dst := CopyMetadata(src)
	assert.Equal(t, src, dst)

	dst["key3"] = true
	assert.Len(t, src, 2)
}
