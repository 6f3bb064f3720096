package card

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/naka-gawa/github-social-card/internal/domain"
)

func TestTemplateStore_Load(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "index.html")
	require.NoError(t, os.WriteFile(path, []byte("<p>first</p>"), 0o644))

	store, err := NewTemplateStore(path)
	require.NoError(t, err)

	got, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, "<p>first</p>", got)

	// Each load reads the file again.
	require.NoError(t, os.WriteFile(path, []byte("<p>second</p>"), 0o644))
	got, err = store.Load()
	require.NoError(t, err)
	assert.Equal(t, "<p>second</p>", got)
}

func TestTemplateStore_ResolvesRelativePath(t *testing.T) {
	store, err := NewTemplateStore(filepath.Join("testdata", "card.html"))
	require.NoError(t, err)
	assert.True(t, filepath.IsAbs(store.Path()))

	got, err := store.Load()
	require.NoError(t, err)
	assert.Contains(t, got, `id="footer"`)
}

func TestTemplateStore_Missing(t *testing.T) {
	store, err := NewTemplateStore(filepath.Join(t.TempDir(), "missing.html"))
	require.NoError(t, err)

	_, err = store.Load()
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrTemplateUnavailable))
	assert.True(t, errors.Is(err, os.ErrNotExist))
}
