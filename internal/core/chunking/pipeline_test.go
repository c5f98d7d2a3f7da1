package chunking

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() Config {
	return Config{TargetTokens: 1000, OverlapTokens: 0, MaxWorkers: 4}
}

func newTestPipeline() *Pipeline {
	// Approximation only: hermetic, no encoder download, still deterministic.
	return &Pipeline{tokenizer: &BatchTokenizer{providers: []tokenProvider{approxProvider{}}}}
}

func TestChunkPagesSmallPageSingleChunk(t *testing.T) {
	pages := []Page{{Number: 1, Text: "Sentence one. Sentence two. Sentence three."}}

	chunks, err := newTestPipeline().ChunkPages(context.Background(), pages, testConfig())
	require.NoError(t, err)
	require.Len(t, chunks, 1)
	assert.Equal(t, "Sentence one. Sentence two. Sentence three.", chunks[0].Text)
	assert.Equal(t, 1, chunks[0].PageNumber)
}

func TestChunkPagesEmptyPageAmongValidOnes(t *testing.T) {
	pages := []Page{
		{Number: 1, Text: "Page one has text. It chunks normally."},
		{Number: 2, Text: ""},
		{Number: 3, Text: "Page three has text too."},
	}

	chunks, err := newTestPipeline().ChunkPages(context.Background(), pages, testConfig())
	require.NoError(t, err)
	require.Len(t, chunks, 2)
	assert.Equal(t, 1, chunks[0].PageNumber)
	assert.Equal(t, 3, chunks[1].PageNumber)
}

func TestChunkPagesNoInput(t *testing.T) {
	chunks, err := newTestPipeline().ChunkPages(context.Background(), nil, testConfig())
	require.NoError(t, err)
	assert.Empty(t, chunks)
}

func TestChunkPagesInvalidConfig(t *testing.T) {
	p := newTestPipeline()
	pages := []Page{{Number: 1, Text: "Some text."}}

	for _, cfg := range []Config{
		{TargetTokens: 0, MaxWorkers: 1},
		{TargetTokens: 100, OverlapTokens: 100, MaxWorkers: 1},
		{TargetTokens: 100, OverlapTokens: 120, MaxWorkers: 1},
		{TargetTokens: 100, OverlapTokens: 0, MaxWorkers: 0},
	} {
		_, err := p.ChunkPages(context.Background(), pages, cfg)
		assert.Error(t, err, "config %+v", cfg)
	}
}

func TestChunkPagesDeterministicAcrossWorkerCounts(t *testing.T) {
	var pages []Page
	text := strings.TrimSpace(strings.Repeat("The quick brown fox jumps over the lazy dog near the river bank today. ", 40))
	for i := 1; i <= 6; i++ {
		pages = append(pages, Page{Number: i, Text: text})
	}
	cfg := Config{TargetTokens: 120, OverlapTokens: 30, MaxWorkers: 1}

	p := newTestPipeline()
	baseline, err := p.ChunkPages(context.Background(), pages, cfg)
	require.NoError(t, err)
	require.NotEmpty(t, baseline)

	for _, workers := range []int{2, 5, 32} {
		cfg.MaxWorkers = workers
		chunks, err := p.ChunkPages(context.Background(), pages, cfg)
		require.NoError(t, err)
		assert.Equal(t, baseline, chunks, "workers=%d", workers)
	}
}

func TestChunkPagesTokenBoundHolds(t *testing.T) {
	text := strings.TrimSpace(strings.Repeat("Short sentences pile up here. They keep arriving one by one. ", 60))
	pages := []Page{{Number: 1, Text: text}}
	cfg := Config{TargetTokens: 80, OverlapTokens: 20, MaxWorkers: 2}

	chunks, err := newTestPipeline().ChunkPages(context.Background(), pages, cfg)
	require.NoError(t, err)
	require.Greater(t, len(chunks), 1)
	for _, ch := range chunks {
		assert.LessOrEqual(t, ch.Tokens, cfg.TargetTokens)
	}
}

func TestChunkPagesStandardTierMatchesOptimized(t *testing.T) {
	text := strings.TrimSpace(strings.Repeat("Fallback tiers must agree on output. Their assembler is shared. ", 30))
	pages := []Page{
		{Number: 1, Text: text},
		{Number: 2, Text: text},
	}
	cfg := Config{TargetTokens: 90, OverlapTokens: 25, MaxWorkers: 4}

	p := newTestPipeline()
	optimized, err := p.ChunkPages(context.Background(), pages, cfg)
	require.NoError(t, err)

	cfg.DisableOptimized = true
	standard, err := p.ChunkPages(context.Background(), pages, cfg)
	require.NoError(t, err)

	assert.Equal(t, optimized, standard)
}

func TestChunkPagesForceLegacy(t *testing.T) {
	pages := []Page{{Number: 1, Text: "Legacy tier slices by characters, not sentences."}}
	cfg := testConfig()
	cfg.ForceLegacy = true

	chunks, err := newTestPipeline().ChunkPages(context.Background(), pages, cfg)
	require.NoError(t, err)
	require.Len(t, chunks, 1)
	assert.Equal(t, "Legacy tier slices by characters, not sentences.", chunks[0].Text)
	assert.Equal(t, 1, chunks[0].PageNumber)
}

func TestChunkPagesFallsBackWhenTokenizationFails(t *testing.T) {
	// A pipeline whose every token backend fails must still produce chunks
	// through the legacy tier.
	p := &Pipeline{tokenizer: &BatchTokenizer{providers: []tokenProvider{
		&stubProvider{name: "broken", avail: true, err: assert.AnError},
	}}}
	pages := []Page{{Number: 1, Text: "Non-empty input must yield chunks. The floor tier guarantees it."}}

	chunks, err := p.ChunkPages(context.Background(), pages, testConfig())
	require.NoError(t, err)
	require.NotEmpty(t, chunks)
	assert.Equal(t, 1, chunks[0].PageNumber)
}

func TestChunkPagesCancelledBeforeStart(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := newTestPipeline().ChunkPages(ctx, []Page{{Number: 1, Text: "text."}}, testConfig())
	require.ErrorIs(t, err, context.Canceled)
}
