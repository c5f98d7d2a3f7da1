package chunking

import (
	"time"

	"github.com/go-playground/validator/v10"
)

// Page is one page of extracted document text. Page numbers are 1..N
// contiguous as produced by the document reader; pages are read once and
// consumed by segmentation.
type Page struct {
	Number int
	Text   string
}

// Sentence is a segmented unit of one page. Tokens is zero until the batch
// tokenizer fills it in from the token index.
type Sentence struct {
	Text       string
	PageNumber int
	Tokens     int
}

// Chunk is a contiguous, token-bounded span of sentences assembled for
// embedding. PageNumber is the page the chunk starts on.
type Chunk struct {
	Text       string
	PageNumber int
	Tokens     int
}

// TokenCountIndex maps sentence text to its token count. Built once per
// document from the full sentence set; byte-identical texts share one entry.
type TokenCountIndex map[string]int

// Config is the per-ingestion chunking policy. Supplied once per call and
// never mutated.
type Config struct {
	TargetTokens  int `validate:"required,gt=0"`
	OverlapTokens int `validate:"gte=0,ltfield=TargetTokens"`
	MaxWorkers    int `validate:"required,gte=1"`

	// DisableOptimized starts the pipeline at the standard sequential tier.
	DisableOptimized bool
	// ForceLegacy starts the pipeline at the character-window floor tier.
	ForceLegacy bool
	// StageTimeout bounds each tier attempt; zero means no timeout.
	StageTimeout time.Duration
}

var validate = validator.New()

// Validate checks the config invariants (positive target, overlap below
// target, at least one worker).
func (c Config) Validate() error {
	return validate.Struct(c)
}
