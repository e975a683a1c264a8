// Package pdf extracts the text of PDF documents with the pdftotext tool
// from poppler.
package pdf

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/custodia-labs/docqa/internal/core/domain"
	"github.com/custodia-labs/docqa/internal/core/ports/driven"
	"github.com/custodia-labs/docqa/internal/logger"
	"github.com/custodia-labs/docqa/internal/normalisers/docutil"
)

// Ensure Normaliser implements the interface.
var _ driven.Normaliser = (*Normaliser)(nil)

// toolName is the external binary used for extraction.
const toolName = "pdftotext"

// ErrPDFToolNotFound indicates pdftotext is not installed.
var ErrPDFToolNotFound = errors.New("pdftotext not found in PATH")

// CommandRunner runs an external command and returns its standard output.
type CommandRunner interface {
	Run(ctx context.Context, name string, args ...string) ([]byte, error)
}

// execRunner runs commands with os/exec.
type execRunner struct{}

func (execRunner) Run(ctx context.Context, name string, args ...string) ([]byte, error) {
	var stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stderr = &stderr
	out, err := cmd.Output()
	if err != nil && stderr.Len() > 0 {
		return nil, fmt.Errorf("%w: %s", err, strings.TrimSpace(stderr.String()))
	}
	return out, err
}

// Normaliser handles PDF documents.
type Normaliser struct {
	runner   CommandRunner
	lookPath func(string) (string, error)
}

// New creates a PDF normaliser that shells out to pdftotext.
func New() *Normaliser {
	return NewWithRunner(execRunner{})
}

// NewWithRunner creates a PDF normaliser with a custom command runner.
func NewWithRunner(runner CommandRunner) *Normaliser {
	return &Normaliser{runner: runner, lookPath: exec.LookPath}
}

// CheckAvailable returns ErrPDFToolNotFound when pdftotext is not installed.
func CheckAvailable() error {
	if _, err := exec.LookPath(toolName); err != nil {
		return ErrPDFToolNotFound
	}
	return nil
}

// InstallInstructions explains how to install pdftotext.
func InstallInstructions() string {
	return `PDF support needs pdftotext from poppler:
  macOS:          brew install poppler
  Debian/Ubuntu:  sudo apt install poppler-utils
  Fedora:         sudo dnf install poppler-utils`
}

// SupportedMIMETypes returns the MIME types this normaliser handles.
func (n *Normaliser) SupportedMIMETypes() []string {
	return []string{"application/pdf"}
}

// Priority returns the selection priority.
func (n *Normaliser) Priority() int {
	return 50
}

// Normalise extracts the text of every page. Pages without text are
// skipped; the rest are joined with a newline.
func (n *Normaliser) Normalise(ctx context.Context, raw *domain.RawDocument) (*driven.NormaliseResult, error) {
	if raw == nil {
		return nil, domain.ErrInvalidInput
	}
	if _, err := n.lookPath(toolName); err != nil {
		return nil, fmt.Errorf("%w\n%s", ErrPDFToolNotFound, InstallInstructions())
	}

	// pdftotext reads from a file, so spill the bytes when the URI is not one.
	path := raw.URI
	if _, err := os.Stat(path); err != nil {
		tmp, err := os.CreateTemp("", "docqa-*.pdf")
		if err != nil {
			return nil, fmt.Errorf("create temp file: %w", err)
		}
		defer os.Remove(tmp.Name())
		if _, err := tmp.Write(raw.Content); err != nil {
			tmp.Close()
			return nil, fmt.Errorf("write temp file: %w", err)
		}
		if err := tmp.Close(); err != nil {
			return nil, fmt.Errorf("write temp file: %w", err)
		}
		path = tmp.Name()
	}

	out, err := n.runner.Run(ctx, toolName, "-enc", "UTF-8", path, "-")
	if err != nil {
		return nil, fmt.Errorf("pdftotext failed on %s: %w", raw.URI, err)
	}

	content, pages := joinPages(string(out))
	logger.Debug("pdf: %s has %d pages, %d with text", raw.URI, len(pages), countNonEmpty(pages))

	title, ok := docutil.MetadataTitle(raw)
	if !ok {
		title = docutil.TitleFromText(content, raw.URI)
	}
	doc := docutil.NewDocument(raw, title, content, "pdf")
	doc.Metadata["pages"] = len(pages)

	return &driven.NormaliseResult{Document: doc}, nil
}

// joinPages splits pdftotext output on form feeds, drops pages with no
// text and joins the rest with newlines.
func joinPages(out string) (string, []string) {
	pages := strings.Split(out, "\f")
	// pdftotext ends the last page with a form feed too.
	if len(pages) > 1 && strings.TrimSpace(pages[len(pages)-1]) == "" {
		pages = pages[:len(pages)-1]
	}

	var b strings.Builder
	for i, page := range pages {
		if strings.TrimSpace(page) == "" {
			logger.Debug("pdf: page %d has no text", i+1)
			continue
		}
		b.WriteString(page)
		b.WriteString("\n")
	}
	return strings.TrimSpace(b.String()), pages
}

func countNonEmpty(pages []string) int {
	n := 0
	for _, p := range pages {
		if strings.TrimSpace(p) != "" {
			n++
		}
	}
	return n
}
