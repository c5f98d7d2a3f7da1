package apperror

import (
	"errors"
	"fmt"
	"testing"

	"rag-ingest/pkg/apperror/status"

	"github.com/stretchr/testify/assert"
)

func TestErrorCodePlainError(t *testing.T) {
	assert.Equal(t, "RI-9000", errorCode(errors.New("boom")))
}

func TestErrorCodeCodedError(t *testing.T) {
	err := status.New(status.SearchEmbedFailed, errors.New("embed refused"))
	assert.Equal(t, "RI-3001", errorCode(err))
}

func TestErrorCodeWrappedCodedError(t *testing.T) {
	err := fmt.Errorf("search: %w", status.New(status.SearchMilvusFailed, errors.New("timeout")))
	assert.Equal(t, "RI-3002", errorCode(err))
}
