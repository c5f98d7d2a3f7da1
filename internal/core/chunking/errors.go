package chunking

import (
	"errors"
	"fmt"
)

var (
	// ErrSegmentationUnavailable means the sentence model could not be loaded.
	ErrSegmentationUnavailable = errors.New("chunking: sentence segmentation model unavailable")
	// ErrTokenizationUnavailable means every token counting backend failed.
	ErrTokenizationUnavailable = errors.New("chunking: all token counting backends exhausted")
	// ErrAssemblyInvariant guards internal assembly bugs; it should never
	// surface past the pipeline's fallback chain.
	ErrAssemblyInvariant = errors.New("chunking: assembly invariant violated")
	// ErrPipelineExhausted means every pipeline tier failed.
	ErrPipelineExhausted = errors.New("chunking: all pipeline tiers failed")
)

// PageError records one page whose segmentation failed. The page is skipped;
// the run continues unless every page fails.
type PageError struct {
	PageNumber int
	Err        error
}

func (e *PageError) Error() string {
	return fmt.Sprintf("chunking: page %d segmentation failed: %v", e.PageNumber, e.Err)
}

func (e *PageError) Unwrap() error { return e.Err }
