// Package commands implements the fpml command-line interface.
package commands

import (
	"errors"
	"fmt"
	"runtime"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/dshills/fpml-mcp/internal/config"
	"github.com/dshills/fpml-mcp/internal/indexer"
	"github.com/dshills/fpml-mcp/internal/storage"
)

var (
	// Version information - set at build time
	Version   = "dev"
	BuildTime = "unknown"
)

// errReported marks a failure whose message has already been written
var errReported = errors.New("reported")

// flagKeys maps command-line flags onto configuration keys. Only flags of the
// command being executed are bound, so subcommands may share flag names.
var flagKeys = map[string]string{
	"source":    "source",
	"verbose":   "verbose",
	"output":    "output",
	"db":        "db",
	"provider":  "embedding.provider",
	"model":     "embedding.model",
	"max-depth": "max_depth",
}

// env is the state shared by every subcommand of one invocation
type env struct {
	v          *viper.Viper
	configFile string
	cfg        *config.Config
	logger     *zap.Logger
}

// NewRootCommand creates the root command
func NewRootCommand() *cobra.Command {
	e := &env{v: config.New(), logger: zap.NewNop()}

	rootCmd := &cobra.Command{
		Use:   "fpml",
		Short: "FpML schema lookup, XML template generation and embeddings",
		Long: color.CyanString(`fpml - FpML Schema Assistant

Indexes an ingested FpML schema family (all_xsd_data.json) and answers
questions about it:
  • Look up any tag by name
  • Generate placeholder XML documents for a tag
  • Generate the minimal skeleton of a message
  • Embed element documentation for semantic search
  • Serve all of the above to AI assistants over MCP`),
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: e.setup,
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			_ = e.logger.Sync()
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVarP(&e.configFile, "config", "c", "", "config file (default ./fpml.yaml)")
	flags.StringP("source", "s", indexer.DefaultSourceFile, "schema source JSON file")
	flags.BoolP("verbose", "v", false, "debug logging on stderr")

	rootCmd.AddCommand(NewVersionCommand())
	rootCmd.AddCommand(newLookupCommand(e))
	rootCmd.AddCommand(newGenerateCommand(e))
	rootCmd.AddCommand(newTagsCommand(e))
	rootCmd.AddCommand(newStatusCommand(e))
	rootCmd.AddCommand(newEmbedCommand(e))
	rootCmd.AddCommand(newServeCommand(e))

	return rootCmd
}

// setup binds the executing command's flags, loads configuration and builds the logger
func (e *env) setup(cmd *cobra.Command, args []string) error {
	for name, key := range flagKeys {
		if f := cmd.Flags().Lookup(name); f != nil {
			if err := e.v.BindPFlag(key, f); err != nil {
				return err
			}
		}
	}

	cfg, err := config.Load(e.v, e.configFile)
	if err != nil {
		return err
	}
	e.cfg = cfg

	logger, err := newLogger(cfg.Verbose)
	if err != nil {
		return err
	}
	e.logger = logger
	return nil
}

// newLogger logs to stderr only; stdout carries command output and the MCP protocol.
// Without verbose only warnings and errors are shown.
func newLogger(verbose bool) (*zap.Logger, error) {
	if verbose {
		cfg := zap.NewDevelopmentConfig()
		cfg.OutputPaths = []string{"stderr"}
		return cfg.Build()
	}
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(zapcore.WarnLevel)
	cfg.OutputPaths = []string{"stderr"}
	return cfg.Build()
}

// loadIndex builds the index for the configured source
func (e *env) loadIndex() (*indexer.Index, error) {
	idx := indexer.New(e.logger, e.cfg.IndexerConfig()).Load(e.cfg.Source)
	if err := idx.Err(); err != nil {
		return nil, err
	}
	return idx, nil
}

// NewVersionCommand creates the version command
func NewVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		// version needs no configuration
		PersistentPreRun: func(cmd *cobra.Command, args []string) {},
		Run: func(cmd *cobra.Command, args []string) {
			out := cmd.OutOrStdout()
			title := color.New(color.FgCyan, color.Bold)

			title.Fprint(out, "fpml version: ")
			fmt.Fprintln(out, Version)
			title.Fprint(out, "Build time: ")
			fmt.Fprintln(out, BuildTime)
			title.Fprint(out, "Build mode: ")
			fmt.Fprintln(out, storage.BuildMode)
			title.Fprint(out, "SQLite driver: ")
			fmt.Fprintln(out, storage.DriverName)
			title.Fprint(out, "Go version: ")
			fmt.Fprintln(out, runtime.Version())
		},
	}
}

// Execute runs the root command
func Execute() error {
	rootCmd := NewRootCommand()
	if err := rootCmd.Execute(); err != nil {
		if !errors.Is(err, errReported) {
			errorColor := color.New(color.FgRed, color.Bold)
			errorColor.Fprintf(rootCmd.ErrOrStderr(), "Error: %v\n", err)
		}
		return err
	}
	return nil
}
