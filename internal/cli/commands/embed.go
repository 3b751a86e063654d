package commands

import (
	"fmt"
	"os"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/dshills/fpml-mcp/internal/cli/ui"
	"github.com/dshills/fpml-mcp/internal/embedder"
	"github.com/dshills/fpml-mcp/internal/indexer"
	"github.com/dshills/fpml-mcp/internal/storage"
)

func newEmbedCommand(e *env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "embed",
		Short: "Embed the documentation of top-level elements",
		Long: `Build one prompt per documented top-level element, embed all prompts in one
batch and write the key to vector mapping to --output (JSON) and, when --db is
set, to a SQLite database. Nothing is written unless every prompt was embedded.

The provider defaults to jina when JINA_API_KEY is set, then openai when
OPENAI_API_KEY is set, and otherwise to the offline local provider.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			src, err := indexer.LoadSource(e.cfg.Source)
			if err != nil {
				return err
			}

			emb, err := embedder.New(e.cfg.EmbedderConfig())
			if err != nil {
				return fmt.Errorf("failed to create embedder: %w", err)
			}
			defer func() { _ = emb.Close() }()

			sinks, jsonSink, closeSinks, err := e.embedSinks()
			if err != nil {
				return err
			}
			defer closeSinks()

			pipeline := embedder.NewPipeline(emb, sinks, e.logger)
			pipeline.SourceName = e.cfg.Source

			result, err := pipeline.Run(cmd.Context(), src)
			if err != nil {
				return err
			}

			size := "?"
			if info, err := os.Stat(jsonSink.Path()); err == nil {
				size = humanize.Bytes(uint64(info.Size()))
			} else {
				e.logger.Debug("stat output file", zap.Error(err))
			}

			out := cmd.OutOrStdout()
			ui.WriteSuccess(out, fmt.Sprintf("Embedded %s elements in %s",
				humanize.Comma(int64(result.Count)), result.Duration.Round(time.Millisecond)), color.NoColor)
			ui.WriteField(out, "Provider", result.Provider+"/"+result.Model)
			ui.WriteField(out, "Dimension", result.Dimension)
			ui.WriteField(out, "Prompt words", humanize.Comma(int64(result.Words)))
			if result.Duplicates > 0 {
				ui.WriteField(out, "Duplicates", result.Duplicates)
			}
			ui.WriteField(out, "Output", fmt.Sprintf("%s (%s)", jsonSink.Path(), size))
			if e.cfg.DB != "" {
				ui.WriteField(out, "Database", fmt.Sprintf("%s (run %s)", e.cfg.DB, result.RunID))
			}
			return nil
		},
	}

	cmd.Flags().StringP("output", "o", storage.DefaultOutputFile, "embeddings JSON file")
	cmd.Flags().String("db", "", "also store embeddings in this SQLite database")
	cmd.Flags().String("provider", "", "embedding provider: local, jina or openai")
	cmd.Flags().String("model", "", "provider model (default per provider)")
	return cmd
}

// embedSinks builds the run's sinks, database first, so a failed database
// write leaves the JSON output untouched
func (e *env) embedSinks() (storage.MultiSink, *storage.JSONFileSink, func(), error) {
	jsonSink := storage.NewJSONFileSink(e.cfg.Output)
	if e.cfg.DB == "" {
		return storage.MultiSink{jsonSink}, jsonSink, func() {}, nil
	}

	db, err := storage.NewSQLiteStorage(e.cfg.DB)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to open embedding database: %w", err)
	}
	return storage.MultiSink{db, jsonSink}, jsonSink, func() { _ = db.Close() }, nil
}
