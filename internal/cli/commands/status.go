package commands

import (
	"errors"
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/dshills/fpml-mcp/internal/cli/ui"
	"github.com/dshills/fpml-mcp/internal/storage"
)

func newStatusCommand(e *env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show index statistics and stored embeddings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			idx, err := e.loadIndex()
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			stats := idx.Stats()
			ui.WriteField(out, "Source", e.cfg.Source)
			ui.WriteField(out, "Files", humanize.Comma(int64(stats.Files)))
			ui.WriteField(out, "Tags", humanize.Comma(int64(stats.Tags)))
			ui.WriteField(out, "Top-level", humanize.Comma(int64(stats.TopLevel)))
			ui.WriteField(out, "Nested", humanize.Comma(int64(stats.Nested)))

			if e.cfg.DB == "" {
				ui.WriteField(out, "Embeddings", "no database configured")
				return nil
			}

			store, err := storage.NewSQLiteStorage(e.cfg.DB)
			if err != nil {
				return fmt.Errorf("failed to open embedding database: %w", err)
			}
			defer func() { _ = store.Close() }()

			count, err := store.CountEmbeddings(cmd.Context())
			if err != nil {
				return err
			}
			ui.WriteField(out, "Embeddings", humanize.Comma(int64(count)))

			run, err := store.LatestRun(cmd.Context())
			if errors.Is(err, storage.ErrNotFound) {
				return nil
			}
			if err != nil {
				return err
			}
			ui.WriteField(out, "Latest run", fmt.Sprintf("%s (%s/%s, %d dims, %s)",
				run.ID, run.Provider, run.Model, run.Dimension, humanize.Time(run.CreatedAt)))
			return nil
		},
	}

	cmd.Flags().String("db", "", "SQLite embedding database")
	return cmd
}
