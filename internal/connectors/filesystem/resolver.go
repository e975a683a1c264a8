// Package filesystem resolves user-supplied document locations to local paths.
package filesystem

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/custodia-labs/docqa/internal/core/domain"
)

// ResolvePath converts a document location to a cleaned local path.
// It accepts file:// URIs, paths starting with ~/ and bare paths.
func ResolvePath(uri string) (string, error) {
	uri = strings.TrimSpace(uri)
	if uri == "" {
		return "", fmt.Errorf("%w: empty document path", domain.ErrInvalidInput)
	}

	path := uri
	if strings.HasPrefix(uri, "file://") {
		u, err := url.Parse(uri)
		if err != nil {
			return "", fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
		}
		if u.Host != "" && u.Host != "localhost" {
			return "", fmt.Errorf("%w: remote file host %q", domain.ErrInvalidInput, u.Host)
		}
		path = u.Path
	}

	if path == "~" || strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		path = filepath.Join(home, strings.TrimPrefix(path, "~"))
	}

	return filepath.Clean(path), nil
}

// ResolveFile resolves uri and checks it names an existing regular file.
func ResolveFile(uri string) (string, error) {
	path, err := ResolvePath(uri)
	if err != nil {
		return "", err
	}
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", fmt.Errorf("%w: %s", domain.ErrNotFound, path)
		}
		return "", err
	}
	if info.IsDir() {
		return "", fmt.Errorf("%w: %s is a directory", domain.ErrInvalidInput, path)
	}
	return path, nil
}
