package config

import (
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3/log"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

type serverConfig struct {
	Port        int    `koanf:"port" validate:"required"`
	Mode        string `koanf:"mode" validate:"required"`
	Concurrency int    `koanf:"concurrency"`
	BodyLimit   int    `koanf:"body_limit"`
	AppName     string `koanf:"app_name"`
}

type logLevel string

const (
	Debug logLevel = "debug"
	Info  logLevel = "info"
	Warn  logLevel = "warn"
	Error logLevel = "error"
	Fatal logLevel = "fatal"
	Panic logLevel = "panic"
)

type Module string

const (
	ModuleMilvus    Module = "milvus"
	ModuleIngest    Module = "ingest"
	ModuleChunking  Module = "chunking"
	ModuleDatabase  Module = "database"
	ModuleOpenAI    Module = "openai"
	ModuleS3        Module = "s3"
	ModuleServer    Module = "server"
	ModuleSetting   Module = "setting"
	ModuleUpload    Module = "upload"
	ModuleRetriever Module = "retriever"
)

type databaseConfig struct {
	Host         string   `koanf:"host" validate:"required"`
	Port         int      `koanf:"port" validate:"required"`
	User         string   `koanf:"user" validate:"required"`
	Password     string   `koanf:"password"`
	Name         string   `koanf:"name" validate:"required"`
	MaxIdleConns int      `koanf:"max_idle_conns"`
	MaxOpenConns int      `koanf:"max_open_conns"`
	MaxLifetime  int      `koanf:"max_lifetime"`
	ReplicaDSNs  []string `koanf:"replica_dsns"`
}

type openaiConfig struct {
	Key            string `koanf:"key"`
	EmbeddingModel string `koanf:"embedding_model" validate:"required"`
}

type corsConfig struct {
	AllowOrigins []string `koanf:"allow_origins"`
	AllowMethods []string `koanf:"allow_methods"`
	AllowHeaders []string `koanf:"allow_headers"`
}

type milvusConfig struct {
	Address         string          `koanf:"address" validate:"required"`
	Collection      string          `koanf:"collection" validate:"required"`
	IndexHNSWConfig indexHNSWConfig `koanf:"index_hnsw_config"`
}

type indexHNSWConfig struct {
	MetricType     string `koanf:"metric_type"`
	M              int    `koanf:"m"`
	EfConstruction int    `koanf:"ef_construction"`
}

type s3Config struct {
	Endpoint  string `koanf:"endpoint"`
	AccessKey string `koanf:"access_key"`
	SecretKey string `koanf:"secret_key"`
	Region    string `koanf:"region"`
	UseSSL    bool   `koanf:"use_ssl"`
	Bucket    string `koanf:"bucket"`
}

// chunkingConfig holds the chunking pipeline defaults. The pipeline itself
// receives these as explicit values and never reads config directly.
type chunkingConfig struct {
	TargetTokens        int    `koanf:"target_tokens" validate:"required,gt=0"`
	OverlapTokens       int    `koanf:"overlap_tokens" validate:"gte=0,ltfield=TargetTokens"`
	MaxWorkers          int    `koanf:"max_workers" validate:"required,gte=1"`
	DisableOptimized    bool   `koanf:"disable_optimized"`
	ForceLegacy         bool   `koanf:"force_legacy"`
	StageTimeoutSeconds int    `koanf:"stage_timeout_seconds"`
	Encoding            string `koanf:"encoding" validate:"required"`
	RemoteTokenizerURL  string `koanf:"remote_tokenizer_url"`
}

type config struct {
	Server   serverConfig   `koanf:"server"`
	Database databaseConfig `koanf:"database"`
	OpenAI   openaiConfig   `koanf:"openai"`
	LogLevel logLevel       `koanf:"log_level"`
	Dns      string         `koanf:"dns"`
	S3       s3Config       `koanf:"s3"`
	Cors     corsConfig     `koanf:"cors"`
	Milvus   milvusConfig   `koanf:"milvus"`
	Chunking chunkingConfig `koanf:"chunking"`
}

func buildMySQLDSN(cfg databaseConfig) string {
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=utf8mb4&parseTime=True&loc=Local",
		cfg.User,
		cfg.Password,
		cfg.Host,
		cfg.Port,
		cfg.Name,
	)
}

var defaultConfig = config{
	Server: serverConfig{
		Port:        8000,
		Mode:        "release",
		Concurrency: 256,
		AppName:     "rag-ingest",
	},
	Database: databaseConfig{
		Host:         "127.0.0.1",
		Port:         3306,
		User:         "root",
		Password:     "",
		Name:         "ragingest",
		MaxIdleConns: 4,
		MaxOpenConns: 16,
		MaxLifetime:  30,
	},
	OpenAI: openaiConfig{
		Key:            "",
		EmbeddingModel: "text-embedding-3-small",
	},
	LogLevel: Info,
	S3: s3Config{
		Endpoint:  "http://localhost:9000",
		AccessKey: "minioadmin",
		SecretKey: "minioadmin",
		Region:    "us-east-1",
		UseSSL:    false,
		Bucket:    "uploads",
	},
	Milvus: milvusConfig{
		Address:    "localhost:19530",
		Collection: "chunks",
		IndexHNSWConfig: indexHNSWConfig{
			MetricType:     "IP",
			M:              16,
			EfConstruction: 200,
		},
	},
	Chunking: chunkingConfig{
		TargetTokens:        600,
		OverlapTokens:       80,
		MaxWorkers:          8,
		StageTimeoutSeconds: 120,
		Encoding:            "cl100k_base",
	},
}

var (
	Cfg  = defaultConfig
	once sync.Once
)

// configSections are the top-level config groups an env var can address.
var configSections = []string{
	"server", "database", "openai", "cors", "milvus", "s3", "chunking",
}

// envKeyMapper translates APP_SECTION_SOME_KEY to section.some_key. Only the
// section prefix becomes a dot so multi-word field names like target_tokens
// or body_limit stay intact; keys outside a known section (log_level, dns)
// map as-is.
func envKeyMapper(s string) string {
	key := strings.ToLower(strings.TrimPrefix(s, "APP_"))
	for _, section := range configSections {
		if strings.HasPrefix(key, section+"_") {
			return section + "." + strings.TrimPrefix(key, section+"_")
		}
	}
	return key
}

// Init loads configuration from the given yaml file (a missing file falls back
// to defaults), applies APP_ environment overrides, validates and caches the
// result. Subsequent calls are no-ops.
func Init(path string) error {
	var initErr error
	once.Do(func() {
		k := koanf.New(".")

		validate := validator.New()
		Cfg = defaultConfig

		if e := k.Load(file.Provider(path), yaml.Parser()); e != nil && !os.IsNotExist(e) {
			initErr = fmt.Errorf("load config file: %w", e)
			return
		}

		// env APP_SERVER_PORT -> server.port
		if e := k.Load(env.Provider("APP_", ".", envKeyMapper), nil); e != nil {
			initErr = fmt.Errorf("load env config: %w", e)
			return
		}

		if e := k.Unmarshal("", &Cfg); e != nil {
			log.Errorf("failed to unmarshal config: %v", e)
			initErr = e
			return
		}

		if Cfg.Dns == "" {
			Cfg.Dns = buildMySQLDSN(Cfg.Database)
		}

		if err := validate.Struct(Cfg); err != nil {
			if errs, ok := err.(validator.ValidationErrors); ok {
				var sb strings.Builder
				sb.WriteString(fmt.Sprintf("%v config validation failed:\n", ModuleSetting))
				for _, e := range errs {
					sb.WriteString(
						fmt.Sprintf("  - %s: failed '%s' (value: %v)\n", e.Field(), e.Tag(), e.Value()),
					)
				}
				log.Error(sb.String())
			} else {
				log.Errorf("config validation failed: %v", err)
			}
			initErr = err
		}
	})
	return initErr
}

func init() {
	_ = Init("config.yaml")
}
