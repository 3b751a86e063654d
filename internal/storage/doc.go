// Package storage persists generated tag embeddings.
//
// Two sinks implement EmbeddingSink:
//
//   - JSONFileSink writes a single JSON object mapping "{file}/{name}" to its
//     vector, in extraction order. The file is written to a temp file in the
//     destination directory and renamed into place, so readers never observe
//     a partial result.
//   - SQLiteStorage records each run in embedding_runs and upserts vectors into
//     tag_embeddings inside one transaction. Vectors are little-endian float32
//     blobs.
//
// MultiSink writes the same run to several sinks in order and stops at the
// first failure. Sinks before the failing one keep the run.
//
// # Basic Usage
//
//	db, err := storage.NewSQLiteStorage("embeddings.db")
//	if err != nil {
//	    return err
//	}
//	defer db.Close()
//
//	sink := storage.MultiSink{db, storage.NewJSONFileSink("generated_embeddings.json")}
//	err = sink.SaveEmbeddings(ctx, &storage.Run{Provider: "local", Model: "m", Dimension: 384}, records)
//
// # Drivers
//
// The default build uses modernc.org/sqlite. Build with -tags sqlite_cgo to
// use github.com/mattn/go-sqlite3 instead.
//
// # Migrations
//
// Schema changes are listed in AllMigrations and applied in semantic version
// order when a database is opened.
package storage
