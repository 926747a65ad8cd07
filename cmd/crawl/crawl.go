// Package crawl implements the crawl command for harvesting recipe
// records from configured sources.
package crawl

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jonesrussell/cocktail-search/cmd/common"
	"github.com/jonesrussell/cocktail-search/internal/crawler"
	"github.com/jonesrussell/cocktail-search/internal/logger"
	"github.com/jonesrussell/cocktail-search/internal/recipe"
	"github.com/jonesrussell/cocktail-search/internal/sources"
)

// Command returns the crawl command for use in the root command.
func Command() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "crawl [source]",
		Short: "Crawl recipe sites into a record file",
		Long: `Crawls every configured source (or just the named one) and appends
one JSON record per recipe to the output file.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			deps, err := common.NewCommandDeps(cmd)
			if err != nil {
				return err
			}
			defer func() { _ = deps.Logger.Sync() }()

			rules, err := sources.Load(deps.Config.Crawler.SourcesFile)
			if err != nil {
				return fmt.Errorf("loading sources: %w", err)
			}
			if len(args) == 1 {
				rule := sources.FindByName(rules, args[0])
				if rule == nil {
					return fmt.Errorf("unknown source %q", args[0])
				}
				rules = []*sources.Rule{rule}
			}

			if output == "" {
				output = deps.Config.Crawler.RecordsFile
			}
			f, err := os.Create(output)
			if err != nil {
				return fmt.Errorf("creating output file: %w", err)
			}
			defer f.Close()
			writer := recipe.NewWriter(f)

			ctx, stop := common.SignalContext(cmd.Context())
			defer stop()

			c := crawler.New(deps.Config.Crawler, deps.Logger, writer)
			if err := c.Crawl(ctx, rules); err != nil {
				return fmt.Errorf("crawl failed: %w", err)
			}
			if err := writer.Flush(); err != nil {
				return fmt.Errorf("flushing records: %w", err)
			}

			stats := c.Stats()
			deps.Logger.Info("crawl finished",
				logger.String("output", output),
				logger.Int64("pages_fetched", stats.PagesFetched.Load()),
				logger.Int64("records_emitted", stats.RecordsEmitted.Load()),
				logger.Int64("requests_failed", stats.RequestsFailed.Load()),
				logger.Int64("retries", stats.Retries.Load()))
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "record file to write (defaults to crawler.records_file)")
	return cmd
}
