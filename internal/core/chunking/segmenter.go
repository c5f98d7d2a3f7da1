package chunking

import (
	"fmt"
	"strings"
	"sync"

	"github.com/neurosnap/sentences"
	"github.com/neurosnap/sentences/english"
)

var (
	segmenterOnce sync.Once
	segmenter     *sentences.DefaultSentenceTokenizer
	segmenterErr  error
)

// initSegmenter loads the English Punkt model exactly once. Concurrent first
// callers block on the single load instead of racing to construct duplicates.
func initSegmenter() (*sentences.DefaultSentenceTokenizer, error) {
	segmenterOnce.Do(func() {
		segmenter, segmenterErr = english.NewSentenceTokenizer(nil)
	})
	if segmenterErr != nil {
		return nil, fmt.Errorf("%w: %v", ErrSegmentationUnavailable, segmenterErr)
	}
	return segmenter, nil
}

// SegmenterReady reports whether the segmentation model has been loaded
// successfully.
func SegmenterReady() bool {
	_, err := initSegmenter()
	return err == nil
}

// Segment splits one page's text into trimmed, non-empty sentences in
// document order. Empty or whitespace-only input yields an empty slice, not
// an error. The model is abbreviation-aware, so "Dr. Smith" stays whole.
func Segment(pageText string) ([]string, error) {
	tok, err := initSegmenter()
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(pageText) == "" {
		return []string{}, nil
	}
	raw := tok.Tokenize(pageText)
	out := make([]string, 0, len(raw))
	for _, s := range raw {
		t := strings.TrimSpace(s.Text)
		if t != "" {
			out = append(out, t)
		}
	}
	return out, nil
}
