package ingest

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSanitizeUTF8Printable(t *testing.T) {
	cases := map[string]string{
		"\uFEFFhello":      "hello",
		"keep\nnew\tlines": "keep\nnew\tlines",
		"strip\x00control": "stripcontrol",
		"  trimmed  ":      "trimmed",
		"café stays":       "café stays",
		"drop�replaced":    "dropreplaced",
	}
	for in, want := range cases {
		assert.Equal(t, want, sanitizeUTF8Printable(in))
	}
}

func TestExtractPagesPlainTextFallback(t *testing.T) {
	path := filepath.Join(t.TempDir(), "doc.txt")
	require.NoError(t, os.WriteFile(path, []byte("First sentence. Second sentence."), 0o644))

	pages, err := ExtractPages(path)
	require.NoError(t, err)
	require.Len(t, pages, 1)
	assert.Equal(t, 1, pages[0].Number)
	assert.Equal(t, "First sentence. Second sentence.", pages[0].Text)
}

func TestExtractPagesEmptyFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.txt")
	require.NoError(t, os.WriteFile(path, []byte("   \n  "), 0o644))

	_, err := ExtractPages(path)
	require.Error(t, err)
}

func TestExtractPagesMissingFile(t *testing.T) {
	_, err := ExtractPages(filepath.Join(t.TempDir(), "nope.pdf"))
	require.Error(t, err)
}
