package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// SQLiteStorage implements EmbeddingStore using SQLite
type SQLiteStorage struct {
	db *sql.DB
}

var _ EmbeddingStore = (*SQLiteStorage)(nil)

// openDatabase opens a SQLite database with appropriate settings
func openDatabase(dbPath string) (*sql.DB, error) {
	db, err := sql.Open(DriverName, dbPath)
	if err != nil {
		return nil, err
	}

	// Enable WAL mode for better concurrency
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}

	db.SetMaxOpenConns(1) // SQLite benefits from single writer
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	return db, nil
}

// NewSQLiteStorage creates a new SQLite storage instance
func NewSQLiteStorage(dbPath string) (*SQLiteStorage, error) {
	db, err := openDatabase(dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := ApplyMigrations(context.Background(), db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to apply migrations: %w", err)
	}

	return &SQLiteStorage{db: db}, nil
}

// Close closes the database connection
func (s *SQLiteStorage) Close() error {
	return s.db.Close()
}

// querier is an interface that both *sql.DB and *sql.Tx implement
type querier interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

// SaveEmbeddings records the run and upserts every record in a single transaction.
// A run without an ID is assigned a random UUID.
func (s *SQLiteStorage) SaveEmbeddings(ctx context.Context, run *Run, records []EmbeddingRecord) error {
	if err := validateRun(run, records); err != nil {
		return err
	}

	if run.ID == "" {
		run.ID = uuid.NewString()
	}
	if run.CreatedAt.IsZero() {
		run.CreatedAt = time.Now().UTC()
	}
	run.Count = len(records)
	if run.Dimension == 0 {
		run.Dimension = len(records[0].Vector)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if err := insertRunWithQuerier(ctx, tx, run); err != nil {
		return err
	}
	for i := range records {
		if err := upsertEmbeddingWithQuerier(ctx, tx, run, &records[i]); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit run %s: %w", run.ID, err)
	}
	return nil
}

func insertRunWithQuerier(ctx context.Context, q querier, run *Run) error {
	query := `
		INSERT INTO embedding_runs (id, source_path, provider, model, dimension, embedding_count, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`
	_, err := q.ExecContext(ctx, query,
		run.ID, run.Source, run.Provider, run.Model, run.Dimension, run.Count, run.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert run: %w", err)
	}
	return nil
}

func upsertEmbeddingWithQuerier(ctx context.Context, q querier, run *Run, rec *EmbeddingRecord) error {
	query := `
		INSERT INTO tag_embeddings (tag_key, run_id, prompt, vector, dimension, word_count, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(tag_key) DO UPDATE SET
			run_id = excluded.run_id,
			prompt = excluded.prompt,
			vector = excluded.vector,
			dimension = excluded.dimension,
			word_count = excluded.word_count,
			created_at = excluded.created_at
	`
	_, err := q.ExecContext(ctx, query,
		rec.Key, run.ID, rec.Prompt, serializeVector(rec.Vector), len(rec.Vector), rec.WordCount, run.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to upsert embedding %s: %w", rec.Key, err)
	}
	return nil
}

// GetEmbedding returns the latest vector stored for a tag key
func (s *SQLiteStorage) GetEmbedding(ctx context.Context, key string) (*StoredEmbedding, error) {
	query := `
		SELECT e.tag_key, e.run_id, e.prompt, e.vector, e.dimension, e.word_count, e.created_at,
		       r.provider, r.model
		FROM tag_embeddings e
		JOIN embedding_runs r ON e.run_id = r.id
		WHERE e.tag_key = ?
	`
	var (
		emb  StoredEmbedding
		blob []byte
	)
	err := s.db.QueryRowContext(ctx, query, key).Scan(
		&emb.Key, &emb.RunID, &emb.Prompt, &blob, &emb.Dimension, &emb.WordCount, &emb.CreatedAt,
		&emb.Provider, &emb.Model)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("embedding %s: %w", key, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get embedding: %w", err)
	}

	emb.Vector, err = deserializeVector(blob)
	if err != nil {
		return nil, fmt.Errorf("embedding %s: %w", key, err)
	}
	return &emb, nil
}

// CountEmbeddings returns the number of stored tag keys
func (s *SQLiteStorage) CountEmbeddings(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM tag_embeddings").Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count embeddings: %w", err)
	}
	return n, nil
}

// ListKeys returns every stored tag key in ascending order
func (s *SQLiteStorage) ListKeys(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT tag_key FROM tag_embeddings ORDER BY tag_key")
	if err != nil {
		return nil, fmt.Errorf("failed to list keys: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	keys := make([]string, 0)
	for rows.Next() {
		var k string
		if err := rows.Scan(&k); err != nil {
			return nil, err
		}
		keys = append(keys, k)
	}
	return keys, rows.Err()
}

// LatestRun returns the most recently recorded run
func (s *SQLiteStorage) LatestRun(ctx context.Context) (*Run, error) {
	query := `
		SELECT id, source_path, provider, model, dimension, embedding_count, created_at
		FROM embedding_runs
		ORDER BY created_at DESC, rowid DESC
		LIMIT 1
	`
	var run Run
	err := s.db.QueryRowContext(ctx, query).Scan(
		&run.ID, &run.Source, &run.Provider, &run.Model, &run.Dimension, &run.Count, &run.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("run: %w", ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get latest run: %w", err)
	}
	return &run, nil
}
