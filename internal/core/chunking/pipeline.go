package chunking

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"rag-ingest/pkg/logger"
)

// tier is one state of the pipeline's fallback chain. Transitions are
// one-directional: a tier left downward is never re-entered.
type tier int

const (
	tierOptimized tier = iota
	tierStandard
	tierLegacy
	tierDone
)

func (t tier) String() string {
	switch t {
	case tierOptimized:
		return "optimized"
	case tierStandard:
		return "standard"
	case tierLegacy:
		return "legacy"
	default:
		return "done"
	}
}

// Pipeline supervises the three-tier chunking chain. Construct once and
// reuse across documents; the tokenizer's encoder cache is shared.
type Pipeline struct {
	tokenizer *BatchTokenizer
}

// NewPipeline builds a pipeline with the given tokenizer chain options.
// remote may be nil.
func NewPipeline(encoding string, remote *RemoteTokenClient) *Pipeline {
	return &Pipeline{tokenizer: NewBatchTokenizer(encoding, remote)}
}

// ChunkPages converts a document's pages into ordered, overlapping,
// token-bounded chunks.
//
// The optimized tier segments pages on a worker pool and counts tokens in a
// single batch. If it fails, the standard tier redoes the work sequentially
// with per-sentence counting. If that also fails, the legacy character
// chunker runs; it cannot fail, so non-empty input always yields chunks
// unless the context is cancelled. Partial state from a failed tier is
// discarded; each tier starts from the original pages.
func (p *Pipeline) ChunkPages(ctx context.Context, pages []Page, cfg Config) ([]Chunk, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("chunking: invalid config: %w", err)
	}
	if len(pages) == 0 {
		return []Chunk{}, nil
	}

	state := tierOptimized
	if cfg.DisableOptimized {
		state = tierStandard
	}
	if cfg.ForceLegacy {
		state = tierLegacy
	}

	var tierErrs []error
	for state != tierDone {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		start := time.Now()
		chunks, err := p.runTier(ctx, state, pages, cfg)
		if err == nil {
			logger.WithFields(map[string]interface{}{
				"tier":    state.String(),
				"pages":   len(pages),
				"chunks":  len(chunks),
				"elapsed": time.Since(start).String(),
			}).Info("chunking: pipeline done")
			return chunks, nil
		}
		if errors.Is(err, context.Canceled) || errors.Is(ctx.Err(), context.Canceled) {
			return nil, err
		}
		logger.WithFields(map[string]interface{}{
			"tier":  state.String(),
			"error": err.Error(),
		}).Warnf("chunking: tier failed; falling back")
		tierErrs = append(tierErrs, fmt.Errorf("%s: %w", state.String(), err))
		state++
	}
	return nil, fmt.Errorf("%w: %v", ErrPipelineExhausted, errors.Join(tierErrs...))
}

func (p *Pipeline) runTier(ctx context.Context, state tier, pages []Page, cfg Config) ([]Chunk, error) {
	if cfg.StageTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.StageTimeout)
		defer cancel()
	}
	switch state {
	case tierOptimized:
		return p.runOptimized(ctx, pages, cfg)
	case tierStandard:
		return p.runStandard(ctx, pages, cfg)
	case tierLegacy:
		return legacyChunks(pages, cfg.TargetTokens, cfg.OverlapTokens), nil
	default:
		return nil, fmt.Errorf("chunking: unknown tier %d", state)
	}
}

// runOptimized is the parallel + single-batch-count configuration.
func (p *Pipeline) runOptimized(ctx context.Context, pages []Page, cfg Config) ([]Chunk, error) {
	byPage, _, err := ProcessPages(ctx, pages, cfg.MaxWorkers)
	if err != nil {
		return nil, err
	}
	index, approx, err := p.tokenizer.BuildTokenIndex(ctx, flatten(byPage))
	if err != nil {
		return nil, err
	}
	if approx {
		logger.Warn("chunking: token counts are whitespace approximations")
	}
	return Assemble(byPage, index, cfg)
}

// runStandard redoes segmentation sequentially and counts sentences one at a
// time through the same backend chain, feeding the same assembler.
func (p *Pipeline) runStandard(ctx context.Context, pages []Page, cfg Config) ([]Chunk, error) {
	byPage := make(map[int][]Sentence, len(pages))
	index := make(TokenCountIndex)
	failed := 0
	for _, page := range pages {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		texts, err := Segment(page.Text)
		if err != nil {
			failed++
			logger.WithFields(map[string]interface{}{
				"page":  page.Number,
				"error": err.Error(),
			}).Warnf("chunking: page skipped")
			continue
		}
		sents := make([]Sentence, 0, len(texts))
		for _, t := range texts {
			if _, ok := index[t]; !ok {
				count, err := p.tokenizer.CountOne(ctx, t)
				if err != nil {
					return nil, err
				}
				index[t] = count
			}
			sents = append(sents, Sentence{Text: t, PageNumber: page.Number})
		}
		byPage[page.Number] = sents
	}
	if len(byPage) == 0 && failed > 0 {
		return nil, fmt.Errorf("chunking: segmentation failed for all %d pages: %w", len(pages), ErrSegmentationUnavailable)
	}
	return Assemble(byPage, index, cfg)
}

// flatten returns all sentences in ascending page order.
func flatten(byPage map[int][]Sentence) []Sentence {
	numbers := make([]int, 0, len(byPage))
	total := 0
	for n, sents := range byPage {
		numbers = append(numbers, n)
		total += len(sents)
	}
	sort.Ints(numbers)
	out := make([]Sentence, 0, total)
	for _, n := range numbers {
		out = append(out, byPage[n]...)
	}
	return out
}
