package config

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Registry  RegistryConfig  `yaml:"registry" mapstructure:"registry"`
	Search    SearchConfig    `yaml:"search" mapstructure:"search"`
	Anthropic AnthropicConfig `yaml:"anthropic" mapstructure:"anthropic"`
	Index     IndexConfig     `yaml:"index" mapstructure:"index"`
	Pipeline  PipelineConfig  `yaml:"pipeline" mapstructure:"pipeline"`
	Upload    UploadConfig    `yaml:"upload" mapstructure:"upload"`
	Batch     BatchConfig     `yaml:"batch" mapstructure:"batch"`
	Server    ServerConfig    `yaml:"server" mapstructure:"server"`
	Log       LogConfig       `yaml:"log" mapstructure:"log"`
}

// RegistryConfig configures the company-registry lookup client.
type RegistryConfig struct {
	Providers     []string `yaml:"providers" mapstructure:"providers"`
	ReceitaWSURL  string   `yaml:"receitaws_url" mapstructure:"receitaws_url"`
	BrasilAPIURL  string   `yaml:"brasilapi_url" mapstructure:"brasilapi_url"`
	TimeoutSecs   int      `yaml:"timeout_secs" mapstructure:"timeout_secs"`
	LookupRetries int      `yaml:"lookup_retries" mapstructure:"lookup_retries"`
}

// SearchConfig configures the web-search client.
type SearchConfig struct {
	Key          string   `yaml:"key" mapstructure:"key"`
	BaseURL      string   `yaml:"base_url" mapstructure:"base_url"`
	MaxResults   int      `yaml:"max_results" mapstructure:"max_results"`
	LegalDomains []string `yaml:"legal_domains" mapstructure:"legal_domains"`
}

// AnthropicConfig holds Anthropic API settings.
type AnthropicConfig struct {
	Key       string `yaml:"key" mapstructure:"key"`
	Model     string `yaml:"model" mapstructure:"model"`
	MaxTokens int64  `yaml:"max_tokens" mapstructure:"max_tokens"`
}

// IndexConfig configures the document retrieval index.
type IndexConfig struct {
	ChunkSize           int     `yaml:"chunk_size" mapstructure:"chunk_size"`
	ChunkOverlap        int     `yaml:"chunk_overlap" mapstructure:"chunk_overlap"`
	SimilarityThreshold float64 `yaml:"similarity_threshold" mapstructure:"similarity_threshold"`
	TopK                int     `yaml:"top_k" mapstructure:"top_k"`
}

// PipelineConfig configures orchestration behavior.
type PipelineConfig struct {
	MaxRetries   int    `yaml:"max_retries" mapstructure:"max_retries"`
	StageRetries int    `yaml:"stage_retries" mapstructure:"stage_retries"`
	TimeoutSecs  int    `yaml:"timeout_secs" mapstructure:"timeout_secs"`
	LexiconPath  string `yaml:"lexicon_path" mapstructure:"lexicon_path"`
}

// UploadConfig bounds inbound documents.
type UploadConfig struct {
	MaxFileBytes int64    `yaml:"max_file_bytes" mapstructure:"max_file_bytes"`
	AllowedExts  []string `yaml:"allowed_exts" mapstructure:"allowed_exts"`
}

// BatchConfig configures batch processing.
type BatchConfig struct {
	MaxConcurrent int `yaml:"max_concurrent" mapstructure:"max_concurrent"`
}

// ServerConfig configures the HTTP server.
type ServerConfig struct {
	Port          int     `yaml:"port" mapstructure:"port"`
	RatePerMinute float64 `yaml:"rate_per_minute" mapstructure:"rate_per_minute"`
	RateBurst     int     `yaml:"rate_burst" mapstructure:"rate_burst"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("CREDIT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.rate_per_minute", 60.0)
	v.SetDefault("server.rate_burst", 5)
	v.SetDefault("batch.max_concurrent", 5)
	v.SetDefault("registry.providers", []string{"receitaws", "brasilapi"})
	v.SetDefault("registry.receitaws_url", "https://www.receitaws.com.br/v1")
	v.SetDefault("registry.brasilapi_url", "https://brasilapi.com.br/api/cnpj/v1")
	v.SetDefault("registry.timeout_secs", 30)
	v.SetDefault("registry.lookup_retries", 2)
	v.SetDefault("search.base_url", "https://api.tavily.com")
	v.SetDefault("search.max_results", 5)
	v.SetDefault("search.legal_domains", []string{
		"jusbrasil.com.br", "g1.globo.com", "folha.uol.com.br", "estadao.com.br",
	})
	v.SetDefault("anthropic.model", "claude-sonnet-4-5-20250929")
	v.SetDefault("anthropic.max_tokens", 1024)
	v.SetDefault("index.chunk_size", 1000)
	v.SetDefault("index.chunk_overlap", 200)
	v.SetDefault("index.similarity_threshold", 0.7)
	v.SetDefault("index.top_k", 3)
	v.SetDefault("pipeline.max_retries", 3)
	v.SetDefault("pipeline.stage_retries", 2)
	v.SetDefault("pipeline.timeout_secs", 300)
	v.SetDefault("upload.max_file_bytes", 10*1024*1024)
	v.SetDefault("upload.allowed_exts", []string{
		".pdf", ".docx", ".png", ".jpg", ".jpeg", ".tiff", ".txt",
	})

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
