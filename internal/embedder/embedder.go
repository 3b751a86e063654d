package embedder

import (
	"context"
	"crypto/sha256"
	"errors"
	"fmt"
	"math"

	lru "github.com/hashicorp/golang-lru/v2"
)

// Errors returned by embedders
var (
	ErrEmptyBatch        = errors.New("no prompts to embed")
	ErrEmptyPrompt       = errors.New("prompt cannot be empty")
	ErrProviderFailed    = errors.New("embedding provider failed")
	ErrUnknownProvider   = errors.New("unknown embedding provider")
	ErrBatchTooLarge     = errors.New("batch size exceeds limit")
	ErrNoProviderEnabled = errors.New("no embedding provider configured")
)

// Embedding is the vector one provider produced for one prompt
type Embedding struct {
	Vector   []float32
	Provider string
	Model    string
}

// Batch holds one embedding per prompt, in prompt order
type Batch struct {
	Embeddings []Embedding
	Provider   string
	Model      string
}

// Embedder turns element prompts into fixed-dimension vectors
type Embedder interface {
	// EmbedPrompts returns exactly one embedding per prompt, in prompt order.
	// A failure for any prompt fails the whole call.
	EmbedPrompts(ctx context.Context, prompts []string) (*Batch, error)

	// Dimension returns the vector length the provider produces
	Dimension() int

	// Provider returns the provider name
	Provider() string

	// Model returns the model name
	Model() string

	// Close releases any resources held by the embedder
	Close() error
}

type cacheKey struct {
	model  string
	prompt [sha256.Size]byte
}

// Cache remembers prompt vectors per model, so providers sharing one cache
// never see each other's vectors. A nil *Cache caches nothing.
type Cache struct {
	vectors *lru.Cache[cacheKey, []float32]
}

// NewCache creates a cache holding at most size vectors
func NewCache(size int) *Cache {
	if size <= 0 {
		size = DefaultCacheSize
	}
	vectors, err := lru.New[cacheKey, []float32](size)
	if err != nil {
		vectors, _ = lru.New[cacheKey, []float32](DefaultCacheSize)
	}
	return &Cache{vectors: vectors}
}

// lookup returns a private copy of the vector model produced for prompt
func (c *Cache) lookup(model, prompt string) ([]float32, bool) {
	if c == nil {
		return nil, false
	}
	vec, ok := c.vectors.Get(cacheKey{model: model, prompt: sha256.Sum256([]byte(prompt))})
	if !ok {
		return nil, false
	}
	return append([]float32(nil), vec...), true
}

// store keeps a copy of vec, so callers remain free to modify theirs
func (c *Cache) store(model, prompt string, vec []float32) {
	if c == nil {
		return
	}
	c.vectors.Add(cacheKey{model: model, prompt: sha256.Sum256([]byte(prompt))}, append([]float32(nil), vec...))
}

// validatePrompts rejects an empty batch and empty prompts before any work is done
func validatePrompts(prompts []string) error {
	if len(prompts) == 0 {
		return ErrEmptyBatch
	}
	for i, prompt := range prompts {
		if prompt == "" {
			return fmt.Errorf("%w: prompt %d", ErrEmptyPrompt, i)
		}
	}
	return nil
}

// unitVector returns v scaled to length 1. A zero vector is returned as is.
func unitVector(v []float32) []float32 {
	var sq float64
	for _, x := range v {
		sq += float64(x) * float64(x)
	}
	if sq == 0 {
		return v
	}

	norm := math.Sqrt(sq)
	out := make([]float32, len(v))
	for i, x := range v {
		out[i] = float32(float64(x) / norm)
	}
	return out
}
