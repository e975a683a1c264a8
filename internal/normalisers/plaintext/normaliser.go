package plaintext

import (
	"context"
	"strings"
	"unicode/utf8"

	"github.com/custodia-labs/docqa/internal/core/domain"
	"github.com/custodia-labs/docqa/internal/core/ports/driven"
	"github.com/custodia-labs/docqa/internal/normalisers/docutil"
)

// Ensure Normaliser implements the interface.
var _ driven.Normaliser = (*Normaliser)(nil)

// Normaliser handles plain text and other text-based formats that are read
// as-is.
type Normaliser struct{}

// New creates a new plain text normaliser.
func New() *Normaliser {
	return &Normaliser{}
}

// SupportedMIMETypes returns the MIME types this normaliser handles.
func (n *Normaliser) SupportedMIMETypes() []string {
	return []string{
		"text/plain",
		"text/csv",
		"text/x-go",
		"text/x-python",
		"text/yaml",
		"text/toml",
		"text/xml",
		"application/json",
		"application/xml",
		"application/x-yaml",
	}
}

// Priority returns the selection priority.
func (n *Normaliser) Priority() int {
	return 5 // Fallback normaliser
}

// Normalise returns the text unchanged apart from line ending cleanup.
// Invalid UTF-8 sequences are replaced so later stages only see valid text.
func (n *Normaliser) Normalise(_ context.Context, raw *domain.RawDocument) (*driven.NormaliseResult, error) {
	if raw == nil {
		return nil, domain.ErrInvalidInput
	}

	content := string(raw.Content)
	if !utf8.ValidString(content) {
		content = strings.ToValidUTF8(content, "�")
	}
	content = strings.ReplaceAll(content, "\r\n", "\n")

	title, ok := docutil.MetadataTitle(raw)
	if !ok {
		title = docutil.TitleFromURI(raw.URI)
	}

	return &driven.NormaliseResult{
		Document: docutil.NewDocument(raw, title, content, ""),
	}, nil
}
