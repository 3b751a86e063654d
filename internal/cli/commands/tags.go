package commands

import (
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
)

const (
	orderName   = "name"
	orderSource = "source"
)

func newTagsCommand(e *env) *cobra.Command {
	var (
		topLevel bool
		prefix   string
		order    string
	)

	cmd := &cobra.Command{
		Use:   "tags",
		Short: "List indexed tag names",
		Long: `List indexed tag names, one per line.

--order name (default) sorts names ascending; --order source lists them in the
order they were indexed, which is the order lookups resolve duplicates in.
--top-level lists only elements that can root a message (valid minimal roots).`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			idx, err := e.loadIndex()
			if err != nil {
				return err
			}

			var names []string
			switch order {
			case orderName:
				names = idx.WithPrefix(prefix)
			case orderSource:
				names = lo.Filter(idx.InsertionOrder(), func(name string, _ int) bool {
					return strings.HasPrefix(name, prefix)
				})
			default:
				return fmt.Errorf("invalid --order %q: want %s or %s", order, orderName, orderSource)
			}
			if topLevel {
				names = lo.Filter(names, func(name string, _ int) bool {
					d, _ := idx.Get(name)
					return d.IsTopLevel()
				})
			}

			out := cmd.OutOrStdout()
			for _, name := range names {
				fmt.Fprintln(out, name)
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "%s of %s tags\n",
				humanize.Comma(int64(len(names))), humanize.Comma(int64(idx.Len())))
			return nil
		},
	}

	cmd.Flags().BoolVar(&topLevel, "top-level", false, "only list top-level elements")
	cmd.Flags().StringVar(&prefix, "prefix", "", "only list names starting with prefix")
	cmd.Flags().StringVar(&order, "order", orderName, "listing order: name or source")
	return cmd
}
