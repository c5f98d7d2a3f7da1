package chunking

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	openai "github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"github.com/pkoukk/tiktoken-go"

	"rag-ingest/pkg/logger"
)

// tokenProvider is one token-counting backend. Providers are tried in order;
// a failure on any element of a batch fails the whole call through to the
// next provider, so a result never mixes backends.
type tokenProvider interface {
	Name() string
	Available() bool
	CountBatch(ctx context.Context, texts []string) ([]int, error)
}

// BatchResult carries the counts of one CountBatch call. Approximate is set
// when the whitespace fallback produced the counts.
type BatchResult struct {
	Counts      []int
	Provider    string
	Approximate bool
}

// BatchTokenizer resolves token counts through an ordered provider chain:
// local BPE, then an optional remote batch endpoint, then whitespace
// approximation as the floor.
type BatchTokenizer struct {
	providers []tokenProvider
}

// NewBatchTokenizer builds the provider chain. remote may be nil, in which
// case the chain is local BPE followed by approximation only.
func NewBatchTokenizer(encoding string, remote *RemoteTokenClient) *BatchTokenizer {
	ps := []tokenProvider{newLocalBPEProvider(encoding)}
	if remote != nil {
		ps = append(ps, remote)
	}
	ps = append(ps, approxProvider{})
	return &BatchTokenizer{providers: ps}
}

// CountBatch returns one count per input text, same length and order, from
// the first provider that can serve the whole batch.
func (b *BatchTokenizer) CountBatch(ctx context.Context, texts []string) (BatchResult, error) {
	if len(texts) == 0 {
		return BatchResult{Counts: []int{}}, nil
	}
	var errs []error
	for _, p := range b.providers {
		if !p.Available() {
			logger.Debug("chunking: token backend %s unavailable; trying next", p.Name())
			continue
		}
		counts, err := p.CountBatch(ctx, texts)
		if err != nil {
			logger.WithFields(map[string]interface{}{
				"provider": p.Name(),
				"texts":    len(texts),
				"error":    err.Error(),
			}).Warnf("chunking: token backend failed; trying next")
			errs = append(errs, fmt.Errorf("%s: %w", p.Name(), err))
			continue
		}
		_, approx := p.(approxProvider)
		return BatchResult{Counts: counts, Provider: p.Name(), Approximate: approx}, nil
	}
	return BatchResult{}, fmt.Errorf("%w: %v", ErrTokenizationUnavailable, errors.Join(errs...))
}

// CountOne counts a single text through the same chain.
func (b *BatchTokenizer) CountOne(ctx context.Context, text string) (int, error) {
	res, err := b.CountBatch(ctx, []string{text})
	if err != nil {
		return 0, err
	}
	return res.Counts[0], nil
}

// BuildTokenIndex counts every distinct sentence text in a single batch call
// and returns the lookup index. Duplicate sentence text is counted once and
// shared by all matching sentences.
func (b *BatchTokenizer) BuildTokenIndex(ctx context.Context, sents []Sentence) (TokenCountIndex, bool, error) {
	distinct := make([]string, 0, len(sents))
	seen := make(map[string]struct{}, len(sents))
	for _, s := range sents {
		if _, ok := seen[s.Text]; ok {
			continue
		}
		seen[s.Text] = struct{}{}
		distinct = append(distinct, s.Text)
	}
	res, err := b.CountBatch(ctx, distinct)
	if err != nil {
		return nil, false, err
	}
	index := make(TokenCountIndex, len(distinct))
	for i, text := range distinct {
		index[text] = res.Counts[i]
	}
	logger.WithFields(map[string]interface{}{
		"sentences":   len(sents),
		"distinct":    len(distinct),
		"provider":    res.Provider,
		"approximate": res.Approximate,
	}).Info("chunking: token index built")
	return index, res.Approximate, nil
}

// localBPEProvider counts with an in-process BPE encoder. The encoder is
// loaded lazily and cached; counting is a plain loop, no network involved.
type localBPEProvider struct {
	encoding string
	once     sync.Once
	enc      *tiktoken.Tiktoken
	err      error
}

func newLocalBPEProvider(encoding string) *localBPEProvider {
	if encoding == "" {
		encoding = "cl100k_base"
	}
	return &localBPEProvider{encoding: encoding}
}

func (p *localBPEProvider) load() {
	p.once.Do(func() {
		p.enc, p.err = tiktoken.GetEncoding(p.encoding)
	})
}

func (p *localBPEProvider) Name() string { return "local-bpe/" + p.encoding }

func (p *localBPEProvider) Available() bool {
	p.load()
	return p.err == nil
}

func (p *localBPEProvider) CountBatch(_ context.Context, texts []string) ([]int, error) {
	p.load()
	if p.err != nil {
		return nil, fmt.Errorf("load encoder %s: %w", p.encoding, p.err)
	}
	counts := make([]int, len(texts))
	for i, t := range texts {
		counts[i] = len(p.enc.Encode(t, nil, nil))
	}
	return counts, nil
}

// RemoteTokenClient counts tokens via a remote endpoint that accepts the
// whole batch in one request. A backend that needs one round trip per text
// must never sit in this chain; this client always posts all texts at once.
type RemoteTokenClient struct {
	client openai.Client
	model  string
}

// NewRemoteTokenClient returns nil when no base URL is configured, keeping
// the remote tier out of the chain entirely.
func NewRemoteTokenClient(baseURL, apiKey, model string) *RemoteTokenClient {
	if strings.TrimSpace(baseURL) == "" {
		return nil
	}
	return &RemoteTokenClient{
		client: openai.NewClient(
			option.WithAPIKey(apiKey),
			option.WithBaseURL(baseURL),
		),
		model: model,
	}
}

type remoteCountRequest struct {
	Model string   `json:"model"`
	Input []string `json:"input"`
}

type remoteCountResponse struct {
	Counts []int `json:"counts"`
	Error  *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error"`
}

func (r *RemoteTokenClient) Name() string { return "remote-batch" }

func (r *RemoteTokenClient) Available() bool { return true }

func (r *RemoteTokenClient) CountBatch(ctx context.Context, texts []string) ([]int, error) {
	req := remoteCountRequest{Model: r.model, Input: texts}
	var out remoteCountResponse
	if err := r.client.Post(ctx, "/tokenize/batch", req, &out); err != nil {
		return nil, err
	}
	if out.Error != nil {
		return nil, errors.New(out.Error.Message)
	}
	if len(out.Counts) != len(texts) {
		return nil, fmt.Errorf("remote returned %d counts for %d texts", len(out.Counts), len(texts))
	}
	return out.Counts, nil
}

// approxProvider estimates counts from whitespace words (~4 tokens per 3
// words of English prose). Last resort; results are flagged approximate.
type approxProvider struct{}

func (approxProvider) Name() string { return "whitespace-approx" }

func (approxProvider) Available() bool { return true }

func (approxProvider) CountBatch(_ context.Context, texts []string) ([]int, error) {
	counts := make([]int, len(texts))
	for i, t := range texts {
		words := len(strings.Fields(t))
		counts[i] = (words*4 + 2) / 3
	}
	return counts, nil
}
