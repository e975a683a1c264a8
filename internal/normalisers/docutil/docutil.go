// Package docutil holds the document construction helpers shared by the
// format normalisers.
package docutil

import (
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/custodia-labs/docqa/internal/core/domain"
)

// maxTitleLength bounds titles taken from document text.
const maxTitleLength = 200

// NewDocument builds the extracted document for raw. The MIME type and
// format are recorded in the metadata.
func NewDocument(raw *domain.RawDocument, title, content, format string) domain.Document {
	meta := CopyMetadata(raw.Metadata)
	if meta == nil {
		meta = make(map[string]any)
	}
	meta["mime_type"] = raw.MIMEType
	if format != "" {
		meta["format"] = format
	}

	return domain.Document{
		ID:        uuid.NewString(),
		URI:       raw.URI,
		Title:     title,
		Content:   content,
		Metadata:  meta,
		CreatedAt: time.Now(),
	}
}

// TitleFromURI turns a file name into a title: the extension is dropped
// and underscores and dashes become spaces.
func TitleFromURI(uri string) string {
	filename := filepath.Base(uri)
	filename = strings.TrimSuffix(filename, filepath.Ext(filename))
	filename = strings.ReplaceAll(filename, "_", " ")
	filename = strings.ReplaceAll(filename, "-", " ")
	return filename
}

// TitleFromText returns the first non-empty line of content that is short
// enough to be a title, falling back to TitleFromURI.
func TitleFromText(content, uri string) string {
	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(line)
		if line != "" && len(line) <= maxTitleLength && !strings.ContainsRune(line, 0) {
			return line
		}
	}
	return TitleFromURI(uri)
}

// MetadataTitle returns raw.Metadata["title"] when it is a non-empty string.
func MetadataTitle(raw *domain.RawDocument) (string, bool) {
	if raw.Metadata == nil {
		return "", false
	}
	title, ok := raw.Metadata["title"].(string)
	return title, ok && title != ""
}

// CopyMetadata creates a shallow copy of metadata.
func CopyMetadata(src map[string]any) map[string]any {
	if src == nil {
		return nil
	}
	dst := make(map[string]any, len(src))
	for k, v := range src {
		dst[k] = v
	}
	return dst
}
