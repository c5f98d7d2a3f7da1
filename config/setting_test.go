package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEnvKeyMapper(t *testing.T) {
	cases := map[string]string{
		"APP_SERVER_PORT":             "server.port",
		"APP_SERVER_BODY_LIMIT":       "server.body_limit",
		"APP_SERVER_APP_NAME":         "server.app_name",
		"APP_DATABASE_MAX_OPEN_CONNS": "database.max_open_conns",
		"APP_OPENAI_EMBEDDING_MODEL":  "openai.embedding_model",
		"APP_S3_ACCESS_KEY":           "s3.access_key",
		"APP_MILVUS_ADDRESS":          "milvus.address",
		"APP_CHUNKING_TARGET_TOKENS":  "chunking.target_tokens",
		"APP_CHUNKING_OVERLAP_TOKENS": "chunking.overlap_tokens",
		"APP_CHUNKING_MAX_WORKERS":    "chunking.max_workers",
		"APP_CHUNKING_FORCE_LEGACY":   "chunking.force_legacy",
		"APP_LOG_LEVEL":               "log_level",
		"APP_DNS":                     "dns",
	}
	for in, want := range cases {
		assert.Equal(t, want, envKeyMapper(in), in)
	}
}
