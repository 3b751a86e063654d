package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/dshills/fpml-mcp/internal/cli/ui"
	"github.com/dshills/fpml-mcp/internal/indexer"
)

// suggestionCount is how many near matches a miss prints
const suggestionCount = 3

func newLookupCommand(e *env) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "lookup <tag>",
		Short: "Describe a tag by exact name",
		Long: `Look up a tag by its exact, case-sensitive name and print its source file,
data type, location, description, attributes and the first children.

A miss prints close names as suggestions; suggestions never change what matches.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			idx, err := e.loadIndex()
			if err != nil {
				return err
			}

			result := idx.Lookup(args[0])
			if !result.Found {
				fmt.Fprint(cmd.ErrOrStderr(), ui.TagNotFound(result.Status(),
					idx.Suggest(args[0], suggestionCount), color.NoColor))
				return errReported
			}

			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(result.Summary)
			}
			writeSummary(cmd.OutOrStdout(), result)
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print the summary as JSON")
	return cmd
}

func writeSummary(w io.Writer, result indexer.LookupResult) {
	s := result.Summary
	ui.WriteSuccess(w, result.Status(), color.NoColor)
	ui.WriteField(w, "Source XSD", s.SourceXSD)
	ui.WriteField(w, "Data type", s.DataType)
	ui.WriteField(w, "Location", s.Location)
	ui.WriteField(w, "Description", s.Description)

	var attrs []string
	for pair := s.Attributes.Oldest(); pair != nil; pair = pair.Next() {
		if pair.Value.Required() {
			attrs = append(attrs, pair.Key+" (required)")
		} else {
			attrs = append(attrs, pair.Key)
		}
	}
	if len(attrs) == 0 {
		ui.WriteField(w, "Attributes", "none")
	} else {
		ui.WriteField(w, "Attributes", strings.Join(attrs, ", "))
	}

	ui.WriteField(w, "Children", fmt.Sprintf("%s (showing %d)",
		humanize.Comma(int64(s.ChildrenCount)), len(s.ChildrenSample)))
	for _, child := range s.ChildrenSample {
		line := "    - " + child.Name
		if child.Type != "" {
			line += " (" + child.Type + ")"
		}
		fmt.Fprintln(w, line)
	}
}
