package markdown

import (
	"context"
	"regexp"
	"strings"

	"github.com/custodia-labs/docqa/internal/core/domain"
	"github.com/custodia-labs/docqa/internal/core/ports/driven"
	"github.com/custodia-labs/docqa/internal/normalisers/docutil"
)

// Ensure Normaliser implements the interface.
var _ driven.Normaliser = (*Normaliser)(nil)

// Rewrites applied in order by stripMarkdown. Block structure goes first so
// that list bullets are not mistaken for emphasis. Line patterns match
// spaces and tabs only, so blank lines between paragraphs survive.
var rewrites = []struct {
	re   *regexp.Regexp
	repl string
}{
	{regexp.MustCompile("(?s)```[^`]*```"), ""},
	{regexp.MustCompile("`[^`]+`"), ""},
	{regexp.MustCompile(`!\[[^\]]*\]\([^)]+\)`), ""},
	{regexp.MustCompile(`\[([^\]]+)\]\([^)]+\)`), "$1"},
	{regexp.MustCompile(`(?m)^#{1,6}[ \t]+`), ""},
	{regexp.MustCompile(`(?m)^>[ \t]?`), ""},
	{regexp.MustCompile(`(?m)^[-*_]{3,}[ \t]*$`), ""},
	{regexp.MustCompile(`(?m)^[ \t]*[-*+][ \t]+`), ""},
	{regexp.MustCompile(`(?m)^[ \t]*\d+\.[ \t]+`), ""},
	{regexp.MustCompile(`\*\*(.+?)\*\*`), "$1"},
	{regexp.MustCompile(`__(.+?)__`), "$1"},
	{regexp.MustCompile(`\*([^*\n]+)\*`), "$1"},
	{regexp.MustCompile(`\b_([^_\n]+)_\b`), "$1"},
	{regexp.MustCompile(`\n{3,}`), "\n\n"},
}

var h1 = regexp.MustCompile(`(?m)^\s*#\s+(.+?)\s*#*\s*$`)

// Normaliser handles Markdown documents.
type Normaliser struct{}

// New creates a new Markdown normaliser.
func New() *Normaliser {
	return &Normaliser{}
}

// SupportedMIMETypes returns the MIME types this normaliser handles.
func (n *Normaliser) SupportedMIMETypes() []string {
	return []string{"text/markdown", "text/x-markdown"}
}

// Priority returns the selection priority.
func (n *Normaliser) Priority() int {
	return 50 // Higher than plaintext
}

// Normalise converts a markdown document to plain text. Paragraph breaks
// survive so the chunker can still see them.
func (n *Normaliser) Normalise(_ context.Context, raw *domain.RawDocument) (*driven.NormaliseResult, error) {
	if raw == nil {
		return nil, domain.ErrInvalidInput
	}

	source := string(raw.Content)

	title, ok := docutil.MetadataTitle(raw)
	if !ok {
		title = markdownTitle(source, raw.URI)
	}

	return &driven.NormaliseResult{
		Document: docutil.NewDocument(raw, title, stripMarkdown(source), "markdown"),
	}, nil
}

// markdownTitle returns the first level-one heading, or a title derived
// from the file name.
func markdownTitle(content, uri string) string {
	if m := h1.FindStringSubmatch(content); m != nil {
		return m[1]
	}
	return docutil.TitleFromURI(uri)
}

// stripMarkdown removes common markdown formatting.
func stripMarkdown(content string) string {
	for _, rw := range rewrites {
		content = rw.re.ReplaceAllString(content, rw.repl)
	}
	return strings.TrimSpace(content)
}
