package chunking

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"golang.org/x/sync/errgroup"

	"rag-ingest/pkg/logger"
)

// ProcessPages segments every page on a bounded worker pool and returns the
// per-page sentence lists keyed by page number. Completion order is
// irrelevant: callers iterate page numbers in ascending order afterward, so
// output is deterministic for any worker count.
//
// Per-page segmentation failures are recorded as skips rather than aborting
// the batch; the call errors only when the model is unavailable, the context
// is cancelled, or every page fails.
func ProcessPages(ctx context.Context, pages []Page, maxWorkers int) (map[int][]Sentence, []*PageError, error) {
	if len(pages) == 0 {
		return map[int][]Sentence{}, nil, nil
	}
	if maxWorkers < 1 {
		maxWorkers = 1
	}
	if maxWorkers > len(pages) {
		maxWorkers = len(pages)
	}

	// Load the model before fan-out so workers never hit first-use
	// initialization concurrently.
	if _, err := initSegmenter(); err != nil {
		return nil, nil, err
	}

	var (
		mu      sync.Mutex
		results = make(map[int][]Sentence, len(pages))
		skipped []*PageError
	)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxWorkers)
	for _, page := range pages {
		g.Go(func() error {
			// Cancellation checkpoint between pages.
			if err := gctx.Err(); err != nil {
				return err
			}
			texts, err := Segment(page.Text)
			if err != nil {
				mu.Lock()
				skipped = append(skipped, &PageError{PageNumber: page.Number, Err: err})
				mu.Unlock()
				return nil
			}
			sents := make([]Sentence, 0, len(texts))
			for _, t := range texts {
				sents = append(sents, Sentence{Text: t, PageNumber: page.Number})
			}
			mu.Lock()
			results[page.Number] = sents
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}

	sort.Slice(skipped, func(i, j int) bool { return skipped[i].PageNumber < skipped[j].PageNumber })
	for _, pe := range skipped {
		logger.WithFields(map[string]interface{}{
			"page":  pe.PageNumber,
			"error": pe.Err.Error(),
		}).Warnf("chunking: page skipped")
	}
	if len(results) == 0 && len(skipped) > 0 {
		return nil, skipped, fmt.Errorf("chunking: segmentation failed for all %d pages: %w", len(pages), skipped[0].Err)
	}
	return results, skipped, nil
}
