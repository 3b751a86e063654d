package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// DefaultOutputFile is the embeddings file written when no path is configured
const DefaultOutputFile = "generated_embeddings.json"

const jsonIndent = "    "

// JSONFileSink writes embeddings as a single JSON object mapping key to vector.
// Keys are written in record order. The file is replaced atomically.
type JSONFileSink struct {
	path string
}

// NewJSONFileSink creates a sink writing to path
func NewJSONFileSink(path string) *JSONFileSink {
	if path == "" {
		path = DefaultOutputFile
	}
	return &JSONFileSink{path: path}
}

// Path returns the destination file
func (s *JSONFileSink) Path() string {
	return s.path
}

func (s *JSONFileSink) SaveEmbeddings(ctx context.Context, run *Run, records []EmbeddingRecord) error {
	if err := validateRun(run, records); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	out := orderedmap.New[string, []float32]()
	for _, rec := range records {
		out.Set(rec.Key, rec.Vector)
	}

	data, err := json.MarshalIndent(out, "", jsonIndent)
	if err != nil {
		return fmt.Errorf("failed to encode embeddings: %w", err)
	}

	return writeFileAtomic(s.path, data)
}

// writeFileAtomic writes to a temp file in the destination directory, then renames it into place
func writeFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpName := tmp.Name()
	cleanup := func() {
		_ = os.Remove(tmpName)
	}

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		cleanup()
		return fmt.Errorf("failed to write %s: %w", tmpName, err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		cleanup()
		return fmt.Errorf("failed to sync %s: %w", tmpName, err)
	}
	if err := tmp.Close(); err != nil {
		cleanup()
		return fmt.Errorf("failed to close %s: %w", tmpName, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		cleanup()
		return fmt.Errorf("failed to replace %s: %w", path, err)
	}
	return nil
}

// LoadEmbeddingsFile reads an embeddings file back, preserving key order
func LoadEmbeddingsFile(path string) (*orderedmap.OrderedMap[string, []float32], error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	out := orderedmap.New[string, []float32]()
	if err := json.Unmarshal(data, out); err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", path, err)
	}
	return out, nil
}
