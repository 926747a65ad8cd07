// Package search implements the search command for querying recipes from
// the command line.
package search

import (
	"fmt"
	"os"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/jonesrussell/cocktail-search/cmd/common"
	"github.com/jonesrussell/cocktail-search/internal/search"
)

// Command returns the search command for use in the root command.
func Command() *cobra.Command {
	var offset int

	cmd := &cobra.Command{
		Use:   "search [ingredient...]",
		Short: "Search indexed recipes by ingredient",
		Long: `Searches the index for cocktails matching the given ingredient
phrases and prints the grouped results as a table.

Examples:
  # Cocktails containing gin and vermouth
  cocktail-search search gin vermouth

  # Scope a phrase to a specific field
  cocktail-search search "bitters:orange"`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			deps, err := common.NewCommandDeps(cmd)
			if err != nil {
				return err
			}
			defer func() { _ = deps.Logger.Sync() }()

			client, err := deps.NewStorageClient()
			if err != nil {
				return err
			}

			ctx, stop := common.SignalContext(cmd.Context())
			defer stop()

			service := search.NewService(client, deps.Logger,
				search.WithTimeout(deps.Config.Server.SearchTimeout))
			result, err := service.Search(ctx, args, offset)
			if err != nil {
				return fmt.Errorf("search failed: %w", err)
			}
			if len(result.Cocktails) == 0 {
				fmt.Println("No cocktails found.")
				return nil
			}

			renderResults(result)
			return nil
		},
	}

	cmd.Flags().IntVar(&offset, "offset", 0, "group offset for pagination")
	return cmd
}

func renderResults(result *search.Result) {
	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"#", "Title", "Ingredients", "Source", "URL"})

	for i, cocktail := range result.Cocktails {
		for _, r := range cocktail.Recipes {
			t.AppendRow(table.Row{
				i + 1,
				r.Title,
				strings.Join(r.Ingredients, "; "),
				r.Source,
				r.URL,
			})
		}
		t.AppendSeparator()
	}
	t.Render()
}
