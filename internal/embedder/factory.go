package embedder

import (
	"fmt"
	"os"
	"strings"
)

// Config holds embedder configuration
type Config struct {
	Provider  string // jina, openai, local; empty auto-detects
	APIKey    string
	Endpoint  string
	Model     string
	CacheSize int
	BatchSize int
	Workers   int
}

// New creates an embedder from configuration.
// An empty Provider is resolved by DetectProvider.
func New(cfg Config) (Embedder, error) {
	var cache *Cache
	if cfg.CacheSize > 0 {
		cache = NewCache(cfg.CacheSize)
	}

	provider := strings.ToLower(strings.TrimSpace(cfg.Provider))
	if provider == "" {
		provider = DetectProvider()
	}

	opts := []Option{
		WithEndpoint(cfg.Endpoint),
		WithModel(cfg.Model),
		WithBatchSize(cfg.BatchSize),
		WithWorkers(cfg.Workers),
	}

	switch provider {
	case ProviderJina:
		return NewJinaProvider(cfg.APIKey, cache, opts...)
	case ProviderOpenAI:
		return NewOpenAIProvider(cfg.APIKey, cache, opts...)
	case ProviderLocal:
		return NewLocalProvider(cache)
	default:
		return nil, fmt.Errorf("%w: unknown provider %s", ErrUnknownProvider, cfg.Provider)
	}
}

// DetectProvider picks a provider from the API keys present in the environment.
// Jina wins over OpenAI; with neither set the local provider is used.
func DetectProvider() string {
	if os.Getenv(EnvJinaAPIKey) != "" {
		return ProviderJina
	}
	if os.Getenv(EnvOpenAIAPIKey) != "" {
		return ProviderOpenAI
	}
	return ProviderLocal
}
