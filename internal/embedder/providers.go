package embedder

import (
	"bytes"
	"context"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"hash/fnv"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/samber/lo"
	"golang.org/x/sync/errgroup"
)

// Provider configuration
const (
	ProviderJina   = "jina"
	ProviderOpenAI = "openai"
	ProviderLocal  = "local"

	// Default models
	DefaultJinaModel   = "jina-embeddings-v3"
	DefaultOpenAIModel = "text-embedding-3-small"
	DefaultLocalModel  = "local-hashed-words"

	// Endpoints
	JinaEndpoint   = "https://api.jina.ai/v1/embeddings"
	OpenAIEndpoint = "https://api.openai.com/v1/embeddings"

	// Dimensions
	JinaDimension   = 1024
	OpenAIDimension = 1536
	LocalDimension  = 384

	// Batch limits
	DefaultBatchSize = 50
	MaxBatchSize     = 100
	DefaultWorkers   = 4
	DefaultCacheSize = 10000

	// Retry configuration
	MaxRetries        = 3
	InitialBackoffMs  = 100
	MaxBackoffMs      = 5000
	BackoffMultiplier = 2.0

	// API key environment variables
	EnvJinaAPIKey   = "JINA_API_KEY"
	EnvOpenAIAPIKey = "OPENAI_API_KEY"
)

// Option configures an HTTP embedding provider
type Option func(*apiProvider)

// WithEndpoint overrides the embeddings URL
func WithEndpoint(url string) Option {
	return func(p *apiProvider) {
		if url != "" {
			p.endpoint = url
		}
	}
}

// WithModel overrides the default model
func WithModel(model string) Option {
	return func(p *apiProvider) {
		if model != "" {
			p.model = model
		}
	}
}

// WithBatchSize sets how many texts are sent per HTTP request
func WithBatchSize(n int) Option {
	return func(p *apiProvider) {
		if n > 0 {
			p.batchSize = n
		}
	}
}

// WithWorkers bounds the number of concurrent HTTP requests per batch
func WithWorkers(n int) Option {
	return func(p *apiProvider) {
		if n > 0 {
			p.workers = n
		}
	}
}

// WithHTTPClient replaces the HTTP client
func WithHTTPClient(c *http.Client) Option {
	return func(p *apiProvider) {
		if c != nil {
			p.httpClient = c
		}
	}
}

// WithRetryConfig replaces the retry policy
func WithRetryConfig(cfg RetryConfig) Option {
	return func(p *apiProvider) {
		p.retry = cfg
	}
}

// apiProvider implements Embedder over an OpenAI-compatible embeddings endpoint.
// Large batches are split into sub-batches sent concurrently; results are
// placed by input index so output order always equals input order.
type apiProvider struct {
	name       string
	endpoint   string
	apiKey     string
	model      string
	dimension  int
	batchSize  int
	workers    int
	httpClient *http.Client
	cache      *Cache
	retry      RetryConfig
}

func newAPIProvider(name, envKey, apiKey, endpoint, model string, dimension int, cache *Cache, opts []Option) (*apiProvider, error) {
	if apiKey == "" {
		apiKey = os.Getenv(envKey)
	}
	if apiKey == "" {
		return nil, fmt.Errorf("%w: %s not set", ErrNoProviderEnabled, envKey)
	}

	p := &apiProvider{
		name:      name,
		endpoint:  endpoint,
		apiKey:    apiKey,
		model:     model,
		dimension: dimension,
		batchSize: DefaultBatchSize,
		workers:   DefaultWorkers,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		cache: cache,
		retry: DefaultRetryConfig(),
	}
	for _, opt := range opts {
		opt(p)
	}

	if p.batchSize > MaxBatchSize {
		return nil, fmt.Errorf("%w: batch size %d, max %d", ErrBatchTooLarge, p.batchSize, MaxBatchSize)
	}
	return p, nil
}

// JinaProvider implements Embedder using Jina AI API
type JinaProvider struct {
	*apiProvider
}

// NewJinaProvider creates a new Jina AI embedder. An empty apiKey falls back to JINA_API_KEY.
func NewJinaProvider(apiKey string, cache *Cache, opts ...Option) (*JinaProvider, error) {
	p, err := newAPIProvider(ProviderJina, EnvJinaAPIKey, apiKey, JinaEndpoint, DefaultJinaModel, JinaDimension, cache, opts)
	if err != nil {
		return nil, err
	}
	return &JinaProvider{apiProvider: p}, nil
}

// OpenAIProvider implements Embedder using OpenAI API
type OpenAIProvider struct {
	*apiProvider
}

// NewOpenAIProvider creates a new OpenAI embedder. An empty apiKey falls back to OPENAI_API_KEY.
func NewOpenAIProvider(apiKey string, cache *Cache, opts ...Option) (*OpenAIProvider, error) {
	p, err := newAPIProvider(ProviderOpenAI, EnvOpenAIAPIKey, apiKey, OpenAIEndpoint, DefaultOpenAIModel, OpenAIDimension, cache, opts)
	if err != nil {
		return nil, err
	}
	return &OpenAIProvider{apiProvider: p}, nil
}

func (p *apiProvider) EmbedPrompts(ctx context.Context, prompts []string) (*Batch, error) {
	if err := validatePrompts(prompts); err != nil {
		return nil, err
	}

	embeddings := make([]Embedding, len(prompts))
	missing := make([]int, 0, len(prompts))
	for i, prompt := range prompts {
		if vec, ok := p.cache.lookup(p.model, prompt); ok {
			embeddings[i] = p.embedding(vec)
			continue
		}
		missing = append(missing, i)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.workers)
	for _, chunk := range lo.Chunk(missing, p.batchSize) {
		g.Go(func() error {
			texts := lo.Map(chunk, func(idx int, _ int) string {
				return prompts[idx]
			})
			vectors, err := retryWithBackoff(gctx, p.retry, func() ([][]float32, error) {
				return p.callAPI(gctx, texts)
			})
			if err != nil {
				return err
			}
			for j, idx := range chunk {
				embeddings[idx] = p.embedding(vectors[j])
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrProviderFailed, err)
	}

	for _, idx := range missing {
		p.cache.store(p.model, prompts[idx], embeddings[idx].Vector)
	}

	return &Batch{
		Embeddings: embeddings,
		Provider:   p.name,
		Model:      p.model,
	}, nil
}

func (p *apiProvider) embedding(vec []float32) Embedding {
	return Embedding{Vector: vec, Provider: p.name, Model: p.model}
}

// callAPI sends one request and returns vectors ordered by their response index
func (p *apiProvider) callAPI(ctx context.Context, texts []string) ([][]float32, error) {
	reqBody := map[string]interface{}{
		"input": texts,
		"model": p.model,
	}

	body, err := json.Marshal(reqBody)
	if err != nil {
		return nil, permanent(fmt.Errorf("marshal request: %w", err))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, permanent(fmt.Errorf("create request: %w", err))
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+p.apiKey)

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("api call: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		bodyBytes, _ := io.ReadAll(resp.Body)
		err := fmt.Errorf("api error %d: %s", resp.StatusCode, strings.TrimSpace(string(bodyBytes)))
		if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
			return nil, err
		}
		return nil, permanent(err)
	}

	var apiResp struct {
		Data []struct {
			Embedding []float32 `json:"embedding"`
			Index     int       `json:"index"`
		} `json:"data"`
		Model string `json:"model"`
	}

	if err := json.NewDecoder(resp.Body).Decode(&apiResp); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	if len(apiResp.Data) != len(texts) {
		return nil, fmt.Errorf("api returned %d embeddings for %d texts", len(apiResp.Data), len(texts))
	}

	vectors := make([][]float32, len(texts))
	for _, data := range apiResp.Data {
		if data.Index < 0 || data.Index >= len(texts) || vectors[data.Index] != nil {
			return nil, fmt.Errorf("api returned invalid index %d", data.Index)
		}
		vectors[data.Index] = data.Embedding
	}

	return vectors, nil
}

func (p *apiProvider) Dimension() int {
	return p.dimension
}

func (p *apiProvider) Provider() string {
	return p.name
}

func (p *apiProvider) Model() string {
	return p.model
}

func (p *apiProvider) Close() error {
	p.httpClient.CloseIdleConnections()
	return nil
}

// LocalProvider embeds text offline by feature-hashing its words into a
// fixed number of buckets. Output is deterministic and needs no network.
type LocalProvider struct {
	model string
	cache *Cache
}

// NewLocalProvider creates a new local embedder
func NewLocalProvider(cache *Cache) (*LocalProvider, error) {
	return &LocalProvider{
		model: DefaultLocalModel,
		cache: cache,
	}, nil
}

func (l *LocalProvider) EmbedPrompts(ctx context.Context, prompts []string) (*Batch, error) {
	if err := validatePrompts(prompts); err != nil {
		return nil, err
	}

	embeddings := make([]Embedding, len(prompts))
	for i, prompt := range prompts {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		vec, ok := l.cache.lookup(l.model, prompt)
		if !ok {
			vec = hashedWords(prompt, LocalDimension)
			l.cache.store(l.model, prompt, vec)
		}
		embeddings[i] = Embedding{Vector: vec, Provider: ProviderLocal, Model: l.model}
	}

	return &Batch{
		Embeddings: embeddings,
		Provider:   ProviderLocal,
		Model:      l.model,
	}, nil
}

func (l *LocalProvider) Dimension() int {
	return LocalDimension
}

func (l *LocalProvider) Provider() string {
	return ProviderLocal
}

func (l *LocalProvider) Model() string {
	return l.model
}

func (l *LocalProvider) Close() error {
	return nil
}

// hashedWords adds +1 or -1 to one bucket per lowercased word
func hashedWords(text string, dim int) []float32 {
	vector := make([]float32, dim)
	for _, w := range Words(strings.ToLower(text)) {
		h := fnv.New64a()
		_, _ = h.Write([]byte(w))
		var sum [8]byte
		binary.LittleEndian.PutUint64(sum[:], h.Sum64())

		bucket := binary.LittleEndian.Uint32(sum[:4]) % uint32(dim)
		if sum[4]&1 == 1 {
			vector[bucket]--
		} else {
			vector[bucket]++
		}
	}
	return vector
}
