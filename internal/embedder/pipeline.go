package embedder

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/dshills/fpml-mcp/internal/storage"
	"github.com/dshills/fpml-mcp/pkg/types"
)

var (
	// ErrNoPrompts is returned when the source has no documented top-level elements
	ErrNoPrompts = errors.New("no documented elements to embed")
	// ErrCountMismatch is returned when the embedder returns a different number of vectors than prompts
	ErrCountMismatch = errors.New("embedding count does not match prompt count")
)

// Pipeline extracts prompts from a schema source, embeds them in one batch and
// hands the key to vector mapping to a sink. Nothing reaches the sink unless
// every prompt produced a vector.
type Pipeline struct {
	embedder Embedder
	sink     storage.EmbeddingSink
	logger   *zap.Logger

	// SourceName is recorded on the run, usually the source file path
	SourceName string
}

// Result summarizes a completed run
type Result struct {
	RunID      string
	Count      int
	Dimension  int
	Provider   string
	Model      string
	Words      int
	Duplicates int
	Keys       []string
	Duration   time.Duration
}

// NewPipeline creates a pipeline. A nil logger discards output.
func NewPipeline(emb Embedder, sink storage.EmbeddingSink, logger *zap.Logger) *Pipeline {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Pipeline{
		embedder: emb,
		sink:     sink,
		logger:   logger,
	}
}

// Run embeds every documented top-level element of src
func (p *Pipeline) Run(ctx context.Context, src *types.SchemaSource) (*Result, error) {
	start := time.Now()

	prompts := ExtractPrompts(src)
	if prompts.Len() == 0 {
		p.logger.Warn("no elements with documentation found to generate embeddings")
		return nil, ErrNoPrompts
	}
	if prompts.Duplicates() > 0 {
		p.logger.Debug("skipped duplicate prompt keys", zap.Int("duplicates", prompts.Duplicates()))
	}

	p.logger.Info("starting batch embedding",
		zap.Int("prompts", prompts.Len()),
		zap.String("provider", p.embedder.Provider()),
		zap.String("model", p.embedder.Model()))

	batch, err := p.embedder.EmbedPrompts(ctx, prompts.Prompts)
	if err != nil {
		p.logger.Error("embedding generation failed", zap.Error(err))
		return nil, fmt.Errorf("generate embeddings: %w", err)
	}

	records, err := zipRecords(prompts, batch.Embeddings)
	if err != nil {
		p.logger.Error("embedding response rejected", zap.Error(err))
		return nil, err
	}

	run := &storage.Run{
		Source:    p.SourceName,
		Provider:  batch.Provider,
		Model:     batch.Model,
		Dimension: len(records[0].Vector),
	}
	if err := p.sink.SaveEmbeddings(ctx, run, records); err != nil {
		p.logger.Error("failed to persist embeddings", zap.Error(err))
		return nil, fmt.Errorf("persist embeddings: %w", err)
	}

	result := &Result{
		RunID:      run.ID,
		Count:      len(records),
		Dimension:  run.Dimension,
		Provider:   run.Provider,
		Model:      run.Model,
		Words:      prompts.TotalWords(),
		Duplicates: prompts.Duplicates(),
		Keys:       prompts.Keys,
		Duration:   time.Since(start),
	}
	p.logger.Info("embeddings generated",
		zap.Int("count", result.Count),
		zap.Int("dimension", result.Dimension),
		zap.Duration("duration", result.Duration))

	return result, nil
}

// zipRecords pairs the i-th key with the i-th vector, normalized to unit length
func zipRecords(prompts *PromptSet, embeddings []Embedding) ([]storage.EmbeddingRecord, error) {
	if len(embeddings) != prompts.Len() {
		return nil, fmt.Errorf("%w: got %d, want %d", ErrCountMismatch, len(embeddings), prompts.Len())
	}

	records := make([]storage.EmbeddingRecord, prompts.Len())
	for i, key := range prompts.Keys {
		emb := embeddings[i]
		if len(emb.Vector) == 0 {
			return nil, fmt.Errorf("%w: no vector for %s", ErrCountMismatch, key)
		}
		records[i] = storage.EmbeddingRecord{
			Key:       key,
			Prompt:    prompts.Prompts[i],
			Vector:    unitVector(emb.Vector),
			WordCount: prompts.WordCount(i),
		}
	}
	return records, nil
}
