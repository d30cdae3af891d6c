package ingest

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}

func TestLoadPages(t *testing.T) {
	dir := t.TempDir()
	// Written out of order on purpose; zero-padded names sort correctly.
	writeFile(t, dir, "page_002.txt", "Trennseite TS")
	writeFile(t, dir, "page_001.txt", "Unser Zeichen: 151/25")
	writeFile(t, dir, "page_003.txt", "Sehr geehrte Damen und Herren")
	writeFile(t, dir, "scan.pdf", "%PDF")
	writeFile(t, dir, ".hidden.txt", "x")
	require.NoError(t, os.Mkdir(filepath.Join(dir, "sub"), 0o755))

	pages, stats, err := LoadPages(dir, nil)
	require.NoError(t, err)
	require.Len(t, pages, 3)

	assert.Equal(t, 0, pages[0].Index)
	assert.Equal(t, "Unser Zeichen: 151/25", pages[0].Text)
	assert.Equal(t, "Trennseite TS", pages[1].Text)
	assert.Equal(t, "Sehr geehrte Damen und Herren", pages[2].Text)

	assert.Equal(t, 6, stats.Scanned)
	assert.Equal(t, 3, stats.Matched)
	assert.Equal(t, 3, stats.Loaded)
	assert.Equal(t, 3, stats.Skipped)
}

func TestLoadPages_EmptyDir(t *testing.T) {
	pages, stats, err := LoadPages(t.TempDir(), nil)
	require.NoError(t, err)
	assert.Empty(t, pages)
	assert.Equal(t, 0, stats.Loaded)
}

func TestLoadPages_MissingDir(t *testing.T) {
	_, _, err := LoadPages(filepath.Join(t.TempDir(), "nope"), nil)
	assert.Error(t, err)

	_, _, err = LoadPages("  ", nil)
	assert.Error(t, err)
}
