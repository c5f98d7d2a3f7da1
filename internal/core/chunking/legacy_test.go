package chunking

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLegacyChunksShortPageSingleChunk(t *testing.T) {
	pages := []Page{{Number: 1, Text: "  short text  "}}
	chunks := legacyChunks(pages, 600, 80)
	require.Len(t, chunks, 1)
	assert.Equal(t, "short text", chunks[0].Text)
	assert.Equal(t, 1, chunks[0].PageNumber)
}

func TestLegacyChunksSkipsEmptyPages(t *testing.T) {
	pages := []Page{
		{Number: 1, Text: "something"},
		{Number: 2, Text: "   "},
		{Number: 3, Text: "else"},
	}
	chunks := legacyChunks(pages, 600, 0)
	require.Len(t, chunks, 2)
	assert.Equal(t, 1, chunks[0].PageNumber)
	assert.Equal(t, 3, chunks[1].PageNumber)
}

func TestLegacyChunksWindowAndOverlap(t *testing.T) {
	// 16 runes, 2-token (8-rune) window, 1-token (4-rune) overlap:
	// windows at 0, 4 and 8.
	pages := []Page{{Number: 1, Text: "abcdefghijklmnop"}}
	chunks := legacyChunks(pages, 2, 1)
	require.Len(t, chunks, 3)
	assert.Equal(t, "abcdefgh", chunks[0].Text)
	assert.Equal(t, "efghijkl", chunks[1].Text)
	assert.Equal(t, "ijklmnop", chunks[2].Text)
}

func TestLegacyChunksAlwaysAdvances(t *testing.T) {
	// Overlap >= window must not stall the walk.
	pages := []Page{{Number: 1, Text: strings.Repeat("x", 40)}}
	chunks := legacyChunks(pages, 2, 2)
	require.NotEmpty(t, chunks)
	total := 0
	for _, ch := range chunks {
		total += len(ch.Text)
	}
	assert.Equal(t, 40, total)
}

func TestLegacyChunksMultibyteSafe(t *testing.T) {
	pages := []Page{{Number: 1, Text: strings.Repeat("héllo wörld ", 10)}}
	chunks := legacyChunks(pages, 4, 1)
	require.NotEmpty(t, chunks)
	for _, ch := range chunks {
		assert.True(t, len([]rune(ch.Text)) <= 16)
	}
}

func TestLegacyChunksDefaultsOnBadConfig(t *testing.T) {
	pages := []Page{{Number: 1, Text: "some text"}}
	chunks := legacyChunks(pages, 0, -5)
	require.Len(t, chunks, 1)
	assert.Equal(t, "some text", chunks[0].Text)
}
