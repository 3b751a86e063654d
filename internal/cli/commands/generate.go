package commands

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/dshills/fpml-mcp/internal/cli/ui"
	"github.com/dshills/fpml-mcp/internal/generator"
	"github.com/dshills/fpml-mcp/internal/indexer"
)

// newGenerateCommand creates the generate command
func newGenerateCommand(e *env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate placeholder XML documents",
		Long: `Generate XML documents from the schema index.

Available subcommands:
  template - Every declared child of a tag, to a depth limit, in a dataDocument envelope
  minimal  - Only the required children of a top-level message`,
	}

	cmd.AddCommand(newGenerateTemplateCommand(e))
	cmd.AddCommand(newGenerateMinimalCommand(e))

	return cmd
}

func newGenerateTemplateCommand(e *env) *cobra.Command {
	var check bool

	cmd := &cobra.Command{
		Use:   "template <root>",
		Short: "Generate a full placeholder template for a tag",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			idx, err := e.loadIndex()
			if err != nil {
				return err
			}

			gen := generator.New(idx, e.logger, e.cfg.GeneratorConfig())
			doc, err := gen.Template(args[0], e.cfg.MaxDepth)
			if err != nil {
				return reportGenerationError(cmd, idx, args[0], err)
			}
			return writeDocument(cmd, doc, check)
		},
	}

	cmd.Flags().Int("max-depth", generator.DefaultMaxDepth, "levels to render, counting the root as 1")
	cmd.Flags().BoolVar(&check, "check", false, "verify the output is well-formed XML")
	return cmd
}

func newGenerateMinimalCommand(e *env) *cobra.Command {
	var (
		namespace string
		check     bool
	)

	cmd := &cobra.Command{
		Use:   "minimal <root>",
		Short: "Generate the minimal skeleton of a top-level message",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			idx, err := e.loadIndex()
			if err != nil {
				return err
			}

			gen := generator.New(idx, e.logger, e.cfg.GeneratorConfig())
			doc, err := gen.Minimal(args[0], namespace)
			if err != nil {
				return reportGenerationError(cmd, idx, args[0], err)
			}
			return writeDocument(cmd, doc, check)
		},
	}

	cmd.Flags().StringVar(&namespace, "namespace", "", "default namespace of the root element (default from config)")
	cmd.Flags().BoolVar(&check, "check", false, "verify the output is well-formed XML")
	return cmd
}

// writeDocument prints doc on stdout; the well-formedness verdict goes to stderr
func writeDocument(cmd *cobra.Command, doc string, check bool) error {
	out := cmd.OutOrStdout()
	if _, err := io.WriteString(out, doc); err != nil {
		return err
	}
	if !strings.HasSuffix(doc, "\n") {
		fmt.Fprintln(out)
	}

	if !check {
		return nil
	}
	root, err := generator.CheckWellFormed(doc)
	if err != nil {
		return fmt.Errorf("generated document is not well-formed: %w", err)
	}
	ui.WriteSuccess(cmd.ErrOrStderr(), fmt.Sprintf("well-formed (document element %s)", root), color.NoColor)
	return nil
}

// reportGenerationError prints misses with suggestions and passes other errors through
func reportGenerationError(cmd *cobra.Command, idx *indexer.Index, root string, err error) error {
	var notFound *generator.RootNotFoundError
	switch {
	case errors.As(err, &notFound):
		fmt.Fprint(cmd.ErrOrStderr(), ui.TagNotFound(err.Error(),
			idx.Suggest(root, suggestionCount), color.NoColor))
		return errReported
	case errors.Is(err, generator.ErrNotApplicable):
		suggestions := indexer.FindSimilar(root, idx.TopLevel(),
			&indexer.FuzzyMatchOptions{MaxSuggestions: suggestionCount})
		fmt.Fprint(cmd.ErrOrStderr(), ui.NotApplicable(err.Error(), suggestions, color.NoColor))
		return errReported
	default:
		return err
	}
}
