package html

import (
	"context"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/custodia-labs/docqa/internal/core/domain"
	"github.com/custodia-labs/docqa/internal/core/ports/driven"
	"github.com/custodia-labs/docqa/internal/normalisers/docutil"
)

// Ensure Normaliser implements the interface.
var _ driven.Normaliser = (*Normaliser)(nil)

// Elements whose content is never readable text.
var skipped = map[atom.Atom]bool{
	atom.Head:     true,
	atom.Script:   true,
	atom.Style:    true,
	atom.Noscript: true,
	atom.Svg:      true,
	atom.Template: true,
}

// Elements that start a new line of text.
var blocks = map[atom.Atom]bool{
	atom.P: true, atom.Div: true, atom.Li: true, atom.Tr: true,
	atom.H1: true, atom.H2: true, atom.H3: true, atom.H4: true, atom.H5: true, atom.H6: true,
	atom.Blockquote: true, atom.Pre: true, atom.Table: true, atom.Section: true,
	atom.Article: true, atom.Header: true, atom.Footer: true, atom.Nav: true, atom.Main: true,
	atom.Ul: true, atom.Ol: true, atom.Dt: true, atom.Dd: true,
}

// Normaliser handles HTML documents.
type Normaliser struct{}

// New creates a new HTML normaliser.
func New() *Normaliser {
	return &Normaliser{}
}

// SupportedMIMETypes returns the MIME types this normaliser handles.
func (n *Normaliser) SupportedMIMETypes() []string {
	return []string{"text/html", "application/xhtml+xml"}
}

// Priority returns the selection priority.
func (n *Normaliser) Priority() int {
	return 50 // Higher than plaintext
}

// Normalise extracts the readable text of an HTML document, one block
// element per line.
func (n *Normaliser) Normalise(_ context.Context, raw *domain.RawDocument) (*driven.NormaliseResult, error) {
	if raw == nil {
		return nil, domain.ErrInvalidInput
	}

	title, content := extract(string(raw.Content))
	if title == "" {
		title = docutil.TitleFromURI(raw.URI)
	}

	return &driven.NormaliseResult{
		Document: docutil.NewDocument(raw, title, content, "html"),
	}, nil
}

// stripHTML returns the readable text of content.
func stripHTML(content string) string {
	_, text := extract(content)
	return text
}

// extract walks the token stream once, collecting the <title> text and the
// body text. Entities are decoded by the tokenizer.
func extract(content string) (string, string) {
	z := html.NewTokenizer(strings.NewReader(content))

	var title, text strings.Builder
	inTitle := false
	depth := 0 // nesting inside skipped elements

	for {
		tt := z.Next()
		switch tt {
		case html.ErrorToken:
			return strings.Join(strings.Fields(title.String()), " "), tidy(text.String())

		case html.TextToken:
			switch {
			case inTitle:
				title.Write(z.Text())
			case depth == 0:
				text.Write(z.Text())
			}

		case html.StartTagToken, html.SelfClosingTagToken:
			name, _ := z.TagName()
			tag := atom.Lookup(name)
			switch {
			case tag == atom.Title:
				inTitle = tt == html.StartTagToken
			case skipped[tag]:
				if tt == html.StartTagToken {
					depth++
				}
			case depth > 0:
			case tag == atom.Br || tag == atom.Hr || blocks[tag]:
				text.WriteByte('\n')
			case tag == atom.Td || tag == atom.Th:
				text.WriteByte(' ')
			}

		case html.EndTagToken:
			name, _ := z.TagName()
			tag := atom.Lookup(name)
			switch {
			case tag == atom.Title:
				inTitle = false
			case skipped[tag]:
				if depth > 0 {
					depth--
				}
			case depth > 0:
			case blocks[tag]:
				text.WriteByte('\n')
			}
		}
	}
}

// tidy collapses runs of spaces and drops empty lines.
func tidy(s string) string {
	lines := strings.Split(s, "\n")
	out := lines[:0]
	for _, line := range lines {
		if line = strings.Join(strings.Fields(line), " "); line != "" {
			out = append(out, line)
		}
	}
	return strings.Join(out, "\n")
}
