package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/dshills/fpml-mcp/internal/mcp"
	"github.com/dshills/fpml-mcp/internal/storage"
)

func newServeCommand(e *env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the schema tools over MCP (stdio)",
		Long: `Start a Model Context Protocol server on stdin/stdout exposing the
lookup_tag, generate_template, generate_minimal, list_tags and get_status tools.

Logs go to stderr; stdout is reserved for the protocol.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e.logger.Info("fpml MCP server starting",
				zap.String("version", Version),
				zap.String("build_mode", storage.BuildMode),
				zap.String("driver", storage.DriverName))

			server, err := mcp.NewServer(e.cfg, e.logger)
			if err != nil {
				return fmt.Errorf("failed to create MCP server: %w", err)
			}

			ctx, cancel := context.WithCancel(cmd.Context())
			defer cancel()

			sigChan := make(chan os.Signal, 1)
			signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
			defer signal.Stop(sigChan)

			errChan := make(chan error, 1)
			go func() {
				errChan <- server.Serve(ctx)
			}()

			select {
			case sig := <-sigChan:
				e.logger.Info("shutting down", zap.String("signal", sig.String()))
				cancel()
				err = <-errChan
			case err = <-errChan:
			}
			if err != nil {
				return fmt.Errorf("server error: %w", err)
			}

			e.logger.Info("server stopped")
			return nil
		},
	}

	cmd.Flags().String("db", "", "SQLite embedding database reported by get_status")
	return cmd
}
