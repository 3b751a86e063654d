package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/samber/lo"
	"github.com/spf13/viper"

	"github.com/dshills/fpml-mcp/internal/embedder"
	"github.com/dshills/fpml-mcp/internal/generator"
	"github.com/dshills/fpml-mcp/internal/indexer"
	"github.com/dshills/fpml-mcp/internal/storage"
	"github.com/dshills/fpml-mcp/pkg/types"
)

// EnvPrefix is prepended to every environment override, e.g. FPML_SOURCE
const EnvPrefix = "FPML"

// ConfigName is the config file looked up in the working directory (fpml.yaml)
const ConfigName = "fpml"

// Config represents the fpml configuration
type Config struct {
	Source          string          `mapstructure:"source"`
	Output          string          `mapstructure:"output"`
	DB              string          `mapstructure:"db"`
	Namespace       string          `mapstructure:"namespace"`
	EnvelopeVersion string          `mapstructure:"envelope_version"`
	MaxDepth        int             `mapstructure:"max_depth"`
	Verbose         bool            `mapstructure:"verbose"`
	Minimal         MinimalConfig   `mapstructure:"minimal"`
	Index           IndexConfig     `mapstructure:"index"`
	Embedding       EmbeddingConfig `mapstructure:"embedding"`
}

// MinimalConfig configures the minimal instance generator
type MinimalConfig struct {
	MaxDepth         int    `mapstructure:"max_depth"`
	DefaultMinOccurs string `mapstructure:"default_min_occurs"`
}

// IndexConfig configures the index builder
type IndexConfig struct {
	DefaultOccurs string `mapstructure:"default_occurs"`
}

// EmbeddingConfig configures the embedding provider
type EmbeddingConfig struct {
	Provider  string `mapstructure:"provider"`
	APIKey    string `mapstructure:"api_key"`
	Endpoint  string `mapstructure:"endpoint"`
	Model     string `mapstructure:"model"`
	CacheSize int    `mapstructure:"cache_size"`
	BatchSize int    `mapstructure:"batch_size"`
	Workers   int    `mapstructure:"workers"`
}

// New returns a viper instance with defaults and environment overrides set.
// Callers may bind command-line flags to it before calling Load.
func New() *viper.Viper {
	v := viper.New()

	v.SetDefault("source", indexer.DefaultSourceFile)
	v.SetDefault("output", storage.DefaultOutputFile)
	v.SetDefault("db", "")
	v.SetDefault("namespace", generator.DefaultNamespace)
	v.SetDefault("envelope_version", generator.DefaultEnvelopeVersion)
	v.SetDefault("max_depth", generator.DefaultMaxDepth)
	v.SetDefault("verbose", false)
	v.SetDefault("minimal.max_depth", generator.DefaultMinimalMaxDepth)
	v.SetDefault("minimal.default_min_occurs", string(generator.DefaultMinOccurs))
	v.SetDefault("index.default_occurs", string(types.DefaultOccurs))
	v.SetDefault("embedding.provider", "")
	v.SetDefault("embedding.api_key", "")
	v.SetDefault("embedding.endpoint", "")
	v.SetDefault("embedding.model", "")
	v.SetDefault("embedding.cache_size", embedder.DefaultCacheSize)
	v.SetDefault("embedding.batch_size", embedder.DefaultBatchSize)
	v.SetDefault("embedding.workers", embedder.DefaultWorkers)

	v.SetConfigName(ConfigName)
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	return v
}

// Load reads the config file if present and decodes v.
// An explicit configFile must exist; the default fpml.yaml is optional.
func Load(v *viper.Viper, configFile string) (*Config, error) {
	if v == nil {
		v = New()
	}
	if configFile != "" {
		v.SetConfigFile(configFile)
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		// Config file not found - use defaults
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validateConfig(&config); err != nil {
		return nil, err
	}

	return &config, nil
}

// IndexerConfig returns the index builder settings
func (c *Config) IndexerConfig() *indexer.Config {
	return &indexer.Config{DefaultOccurs: types.Occurs(c.Index.DefaultOccurs)}
}

// GeneratorConfig returns the generator settings
func (c *Config) GeneratorConfig() *generator.Config {
	return &generator.Config{
		Namespace:        c.Namespace,
		EnvelopeVersion:  c.EnvelopeVersion,
		MinimalMaxDepth:  c.Minimal.MaxDepth,
		DefaultMinOccurs: types.Occurs(c.Minimal.DefaultMinOccurs),
	}
}

// EmbedderConfig returns the embedding provider settings
func (c *Config) EmbedderConfig() embedder.Config {
	return embedder.Config{
		Provider:  c.Embedding.Provider,
		APIKey:    c.Embedding.APIKey,
		Endpoint:  c.Embedding.Endpoint,
		Model:     c.Embedding.Model,
		CacheSize: c.Embedding.CacheSize,
		BatchSize: c.Embedding.BatchSize,
		Workers:   c.Embedding.Workers,
	}
}

var providers = []string{"", embedder.ProviderLocal, embedder.ProviderJina, embedder.ProviderOpenAI}

// validateConfig validates the configuration
func validateConfig(cfg *Config) error {
	if cfg.Source == "" {
		return fmt.Errorf("source must not be empty")
	}
	if cfg.MaxDepth < 0 {
		return fmt.Errorf("max_depth must be >= 0, got: %d", cfg.MaxDepth)
	}
	if cfg.Minimal.MaxDepth < 1 {
		return fmt.Errorf("minimal.max_depth must be >= 1, got: %d", cfg.Minimal.MaxDepth)
	}
	if _, err := types.Occurs(cfg.Minimal.DefaultMinOccurs).Int(); err != nil {
		return fmt.Errorf("minimal.default_min_occurs: %w", err)
	}
	if _, err := types.Occurs(cfg.Index.DefaultOccurs).Int(); err != nil {
		return fmt.Errorf("index.default_occurs: %w", err)
	}

	cfg.Embedding.Provider = strings.ToLower(strings.TrimSpace(cfg.Embedding.Provider))
	if !lo.Contains(providers, cfg.Embedding.Provider) {
		return fmt.Errorf("embedding.provider must be one of local, jina, openai, got: %s", cfg.Embedding.Provider)
	}
	if cfg.Embedding.BatchSize < 1 || cfg.Embedding.BatchSize > embedder.MaxBatchSize {
		return fmt.Errorf("embedding.batch_size must be between 1 and %d, got: %d", embedder.MaxBatchSize, cfg.Embedding.BatchSize)
	}
	if cfg.Embedding.Workers < 1 {
		return fmt.Errorf("embedding.workers must be >= 1, got: %d", cfg.Embedding.Workers)
	}
	return nil
}
