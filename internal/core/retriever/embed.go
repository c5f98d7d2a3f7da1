package retriever

import (
	"context"
	"errors"
	"strings"

	coreingest "rag-ingest/internal/core/ingest"
)

// EmbedQuestion embeds a single question for vector search using the same
// model the ingestion path embeds chunks with.
func EmbedQuestion(ctx context.Context, question string) ([]float32, error) {
	q := strings.TrimSpace(question)
	if q == "" {
		return nil, errors.New("retriever: empty question")
	}
	vectors, err := coreingest.EmbedOpenAI(ctx, []string{q})
	if err != nil {
		return nil, err
	}
	if len(vectors) != 1 {
		return nil, errors.New("retriever: unexpected embedding count")
	}
	return vectors[0], nil
}
