// Package sources implements commands for inspecting the site-rule
// configuration.
package sources

import (
	"fmt"
	"os"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/jonesrussell/cocktail-search/cmd/common"
	internalsources "github.com/jonesrussell/cocktail-search/internal/sources"
)

// Command returns the sources command for use in the root command.
func Command() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sources",
		Short: "Manage crawl sources",
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}
	cmd.AddCommand(listCommand())
	cmd.AddCommand(validateCommand())
	return cmd
}

func listCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List configured sources",
		RunE: func(cmd *cobra.Command, args []string) error {
			deps, err := common.NewCommandDeps(cmd)
			if err != nil {
				return err
			}
			defer func() { _ = deps.Logger.Sync() }()

			rules, err := internalsources.Load(deps.Config.Crawler.SourcesFile)
			if err != nil {
				return fmt.Errorf("loading sources: %w", err)
			}

			t := table.NewWriter()
			t.SetOutputMirror(os.Stdout)
			t.SetStyle(table.StyleLight)
			t.AppendHeader(table.Row{"Name", "Kind", "Domains", "Seeds", "Rate Limit"})
			for _, rule := range rules {
				t.AppendRow(table.Row{
					rule.Name,
					rule.Extractor.Kind,
					strings.Join(rule.AllowedDomains, ", "),
					len(rule.StartURLs),
					rule.RateLimit,
				})
			}
			t.Render()
			return nil
		},
	}
}

func validateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Validate the source configuration file",
		RunE: func(cmd *cobra.Command, args []string) error {
			deps, err := common.NewCommandDeps(cmd)
			if err != nil {
				return err
			}
			defer func() { _ = deps.Logger.Sync() }()

			path := deps.Config.Crawler.SourcesFile
			rules, err := internalsources.Load(path)
			if err != nil {
				return fmt.Errorf("%s is invalid: %w", path, err)
			}
			fmt.Printf("%s is valid (%d sources)\n", path, len(rules))
			return nil
		},
	}
}
