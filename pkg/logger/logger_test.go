package logger_test

import (
	"testing"

	"rag-ingest/pkg/logger"

	"github.com/stretchr/testify/assert"
)

func TestSetLevel(t *testing.T) {
	assert.NoError(t, logger.SetLevel("debug"))
	assert.Error(t, logger.SetLevel("whisper"))
	assert.NoError(t, logger.SetLevel("info"))
}
