package chunking

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSegmentEmptyInput(t *testing.T) {
	for _, input := range []string{"", "   ", "\n\t\n"} {
		sents, err := Segment(input)
		require.NoError(t, err)
		assert.Empty(t, sents)
	}
}

func TestSegmentSplitsProse(t *testing.T) {
	sents, err := Segment("Sentence one. Sentence two. Sentence three.")
	require.NoError(t, err)
	require.Len(t, sents, 3)
	assert.Equal(t, "Sentence one.", sents[0])
	assert.Equal(t, "Sentence two.", sents[1])
	assert.Equal(t, "Sentence three.", sents[2])
}

func TestSegmentKeepsAbbreviationsWhole(t *testing.T) {
	sents, err := Segment("Dr. Smith examined the patient. The results were clear.")
	require.NoError(t, err)
	require.Len(t, sents, 2)
	assert.Equal(t, "Dr. Smith examined the patient.", sents[0])
}

func TestSegmentTrimsWhitespace(t *testing.T) {
	sents, err := Segment("  First sentence here.   Second sentence here.  ")
	require.NoError(t, err)
	require.Len(t, sents, 2)
	for _, s := range sents {
		assert.Equal(t, strings.TrimSpace(s), s)
		assert.NotEmpty(t, s)
	}
}

func TestSegmenterReady(t *testing.T) {
	assert.True(t, SegmenterReady())
}
