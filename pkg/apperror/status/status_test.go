package status_test

import (
	"errors"
	"testing"

	"rag-ingest/pkg/apperror/status"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewNilError(t *testing.T) {
	assert.Nil(t, status.New(status.IngestInternal, nil))
}

func TestNewPreservesCodeAndCause(t *testing.T) {
	base := errors.New("segmentation crashed")
	err := status.New(status.IngestChunkingFailed, base)

	assert.ErrorIs(t, err, base)
	assert.Equal(t, base.Error(), err.Error())

	var coded status.CodedError
	require.ErrorAs(t, err, &coded)
	assert.Equal(t, status.IngestChunkingFailed, coded.ErrorCode())
}
