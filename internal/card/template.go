// Package card turns repository metadata into the HTML document of a social card.
package card

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/naka-gawa/github-social-card/internal/domain"
)

// DefaultTemplatePath is the template file name looked up in the working directory.
const DefaultTemplatePath = "index.html"

// TemplateStore reads the card template from disk. The file is read again on
// every Load so each request works on its own copy.
type TemplateStore struct {
	path string
}

// NewTemplateStore resolves path against the current working directory once.
func NewTemplateStore(path string) (*TemplateStore, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve template path %q: %w", path, err)
	}
	return &TemplateStore{path: abs}, nil
}

// Path returns the absolute template path.
func (s *TemplateStore) Path() string {
	return s.path
}

// Load returns the template text.
func (s *TemplateStore) Load() (string, error) {
	b, err := os.ReadFile(s.path)
	if err != nil {
		return "", fmt.Errorf("%w: %w", domain.ErrTemplateUnavailable, err)
	}
	return string(b), nil
}
