package chunking

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func makePages(n int) []Page {
	pages := make([]Page, 0, n)
	for i := 1; i <= n; i++ {
		pages = append(pages, Page{
			Number: i,
			Text:   fmt.Sprintf("Page %d starts here. It has a second sentence. And a third one.", i),
		})
	}
	return pages
}

func TestProcessPagesCollectsAllPages(t *testing.T) {
	pages := makePages(5)
	results, skipped, err := ProcessPages(context.Background(), pages, 3)
	require.NoError(t, err)
	assert.Empty(t, skipped)
	require.Len(t, results, 5)
	for n, sents := range results {
		require.Len(t, sents, 3)
		for _, s := range sents {
			assert.Equal(t, n, s.PageNumber)
		}
	}
}

func TestProcessPagesDeterministicAcrossWorkerCounts(t *testing.T) {
	pages := makePages(8)
	baseline, _, err := ProcessPages(context.Background(), pages, 1)
	require.NoError(t, err)

	for _, workers := range []int{2, 4, 16} {
		results, _, err := ProcessPages(context.Background(), pages, workers)
		require.NoError(t, err)
		assert.Equal(t, baseline, results, "workers=%d", workers)
	}
}

func TestProcessPagesEmptyInput(t *testing.T) {
	results, skipped, err := ProcessPages(context.Background(), nil, 4)
	require.NoError(t, err)
	assert.Empty(t, results)
	assert.Empty(t, skipped)
}

func TestProcessPagesEmptyPageYieldsNoSentences(t *testing.T) {
	pages := []Page{
		{Number: 1, Text: "A real sentence lives here."},
		{Number: 2, Text: ""},
		{Number: 3, Text: "   \n  "},
	}
	results, skipped, err := ProcessPages(context.Background(), pages, 2)
	require.NoError(t, err)
	assert.Empty(t, skipped)
	require.Len(t, results, 3)
	assert.Len(t, results[1], 1)
	assert.Empty(t, results[2])
	assert.Empty(t, results[3])
}

func TestProcessPagesCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, _, err := ProcessPages(ctx, makePages(4), 2)
	require.ErrorIs(t, err, context.Canceled)
}
