package util

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nvr-ai/go-detaug/images"
)

func TestListImageFiles(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"b.png", "a.JPG", "notes.txt", "c.webp"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), nil, 0o644))
	}
	require.NoError(t, os.Mkdir(filepath.Join(dir, "d.png"), 0o755))

	files, err := ListImageFiles(dir)
	require.NoError(t, err)

	assert.Equal(t, []ImageFile{
		{Path: filepath.Join(dir, "a.JPG"), Format: images.FormatJPEG},
		{Path: filepath.Join(dir, "b.png"), Format: images.FormatPNG},
		{Path: filepath.Join(dir, "c.webp"), Format: images.FormatWebP},
	}, files)

	_, err = ListImageFiles(filepath.Join(dir, "missing"))
	assert.Error(t, err)
}
