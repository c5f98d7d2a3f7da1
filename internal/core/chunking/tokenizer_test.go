package chunking

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubProvider struct {
	name   string
	avail  bool
	counts []int
	err    error
	calls  int
}

func (s *stubProvider) Name() string    { return s.name }
func (s *stubProvider) Available() bool { return s.avail }
func (s *stubProvider) CountBatch(_ context.Context, texts []string) ([]int, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return s.counts[:len(texts)], nil
}

func TestCountBatchUsesFirstAvailableProvider(t *testing.T) {
	first := &stubProvider{name: "first", avail: true, counts: []int{3, 7}}
	second := &stubProvider{name: "second", avail: true, counts: []int{99, 99}}
	b := &BatchTokenizer{providers: []tokenProvider{first, second}}

	res, err := b.CountBatch(context.Background(), []string{"a", "b"})
	require.NoError(t, err)
	assert.Equal(t, []int{3, 7}, res.Counts)
	assert.Equal(t, "first", res.Provider)
	assert.False(t, res.Approximate)
	assert.Zero(t, second.calls)
}

func TestCountBatchFallsThroughOnFailure(t *testing.T) {
	first := &stubProvider{name: "first", avail: true, err: errors.New("boom")}
	unavailable := &stubProvider{name: "second", avail: false, counts: []int{1}}
	third := &stubProvider{name: "third", avail: true, counts: []int{5}}
	b := &BatchTokenizer{providers: []tokenProvider{first, unavailable, third}}

	res, err := b.CountBatch(context.Background(), []string{"a"})
	require.NoError(t, err)
	assert.Equal(t, []int{5}, res.Counts)
	assert.Equal(t, 1, first.calls)
	assert.Zero(t, unavailable.calls)
}

func TestCountBatchExhaustedBackends(t *testing.T) {
	failing := &stubProvider{name: "only", avail: true, err: errors.New("down")}
	b := &BatchTokenizer{providers: []tokenProvider{failing}}

	_, err := b.CountBatch(context.Background(), []string{"a"})
	require.ErrorIs(t, err, ErrTokenizationUnavailable)
}

func TestCountBatchEmptyInput(t *testing.T) {
	b := &BatchTokenizer{providers: []tokenProvider{&stubProvider{name: "x", avail: true}}}
	res, err := b.CountBatch(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, res.Counts)
}

func TestApproxProviderFlagsResult(t *testing.T) {
	b := &BatchTokenizer{providers: []tokenProvider{approxProvider{}}}
	res, err := b.CountBatch(context.Background(), []string{"one two three"})
	require.NoError(t, err)
	assert.True(t, res.Approximate)
	// 3 words -> 4 tokens
	assert.Equal(t, []int{4}, res.Counts)
}

func TestApproxProviderCounts(t *testing.T) {
	counts, err := approxProvider{}.CountBatch(context.Background(), []string{
		"",
		"word",
		"two words",
		"one two three four five six",
	})
	require.NoError(t, err)
	assert.Equal(t, []int{0, 2, 3, 8}, counts)
}

func TestBuildTokenIndexCountsDistinctTextOnce(t *testing.T) {
	stub := &stubProvider{name: "stub", avail: true, counts: []int{3, 9}}
	b := &BatchTokenizer{providers: []tokenProvider{stub}}

	sents := []Sentence{
		{Text: "dup.", PageNumber: 1},
		{Text: "other.", PageNumber: 1},
		{Text: "dup.", PageNumber: 2},
	}
	idx, approx, err := b.BuildTokenIndex(context.Background(), sents)
	require.NoError(t, err)
	assert.False(t, approx)
	assert.Equal(t, 1, stub.calls)
	require.Len(t, idx, 2)
	assert.Equal(t, 3, idx["dup."])
	assert.Equal(t, 9, idx["other."])
}

func TestCountOne(t *testing.T) {
	b := &BatchTokenizer{providers: []tokenProvider{approxProvider{}}}
	n, err := b.CountOne(context.Background(), "alpha beta gamma")
	require.NoError(t, err)
	assert.Equal(t, 4, n)
}

func TestRemoteTokenClientRequiresBaseURL(t *testing.T) {
	assert.Nil(t, NewRemoteTokenClient("", "key", "model"))
	assert.NotNil(t, NewRemoteTokenClient("http://localhost:9999", "key", "model"))
}
