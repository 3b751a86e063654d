package storage

import (
	"context"
	"errors"
	"fmt"
	"time"
)

var (
	// ErrNotFound is returned when a requested embedding doesn't exist
	ErrNotFound = errors.New("not found")
	// ErrEmptyRun is returned when a run carries no records
	ErrEmptyRun = errors.New("run has no embeddings")
	// ErrDimensionMismatch is returned when a record's vector length differs from the run dimension
	ErrDimensionMismatch = errors.New("vector dimension mismatch")
)

// EmbeddingSink persists the result of one embedding run.
// Implementations write all records or none.
type EmbeddingSink interface {
	SaveEmbeddings(ctx context.Context, run *Run, records []EmbeddingRecord) error
}

// EmbeddingStore is an EmbeddingSink that can also be read back.
type EmbeddingStore interface {
	EmbeddingSink

	GetEmbedding(ctx context.Context, key string) (*StoredEmbedding, error)
	CountEmbeddings(ctx context.Context) (int, error)
	ListKeys(ctx context.Context) ([]string, error)
	LatestRun(ctx context.Context) (*Run, error)
	Close() error
}

// Run describes one pass of the embedding pipeline
type Run struct {
	ID        string
	Source    string
	Provider  string
	Model     string
	Dimension int
	Count     int
	CreatedAt time.Time
}

// EmbeddingRecord is one tag's prompt and vector, keyed "{file}/{name}"
type EmbeddingRecord struct {
	Key       string
	Prompt    string
	Vector    []float32
	WordCount int
}

// StoredEmbedding is an EmbeddingRecord read back from the database
type StoredEmbedding struct {
	EmbeddingRecord
	RunID     string
	Dimension int
	Provider  string
	Model     string
	CreatedAt time.Time
}

// MultiSink fans a run out to several sinks in order, stopping at the first failure.
// All-or-nothing holds per sink only: when a later sink fails, earlier sinks keep
// the run. Put the sink most likely to fail first.
type MultiSink []EmbeddingSink

// SaveEmbeddings saves the run to each non-nil sink in turn and returns the first error
func (m MultiSink) SaveEmbeddings(ctx context.Context, run *Run, records []EmbeddingRecord) error {
	for _, sink := range m {
		if sink == nil {
			continue
		}
		if err := sink.SaveEmbeddings(ctx, run, records); err != nil {
			return err
		}
	}
	return nil
}

// validateRun checks that every record matches the run dimension
func validateRun(run *Run, records []EmbeddingRecord) error {
	if run == nil || len(records) == 0 {
		return ErrEmptyRun
	}
	for _, rec := range records {
		if run.Dimension > 0 && len(rec.Vector) != run.Dimension {
			return fmt.Errorf("%w: %s has %d, run has %d", ErrDimensionMismatch, rec.Key, len(rec.Vector), run.Dimension)
		}
	}
	return nil
}
