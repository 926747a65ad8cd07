// Package feed implements the feed command that loads crawled records
// into the index.
package feed

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jonesrussell/cocktail-search/cmd/common"
	"github.com/jonesrussell/cocktail-search/internal/indexer"
	"github.com/jonesrussell/cocktail-search/internal/logger"
)

// Command returns the feed command for use in the root command.
func Command() *cobra.Command {
	var (
		dedupe bool
		format string
		output string
	)

	cmd := &cobra.Command{
		Use:   "feed [file...]",
		Short: "Load crawled record files into the search index",
		Long: `Reads one or more newline-delimited record files, optionally runs
global deduplication across all of them, expands ingredient synonyms
and loads the result into Elasticsearch.

With --format xmlpipe the documents are written as an XML docset to
--output (or stdout) instead of being indexed.`,
		Args: cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			deps, err := common.NewCommandDeps(cmd)
			if err != nil {
				return err
			}
			defer func() { _ = deps.Logger.Sync() }()

			paths := args
			if len(paths) == 0 {
				paths = []string{deps.Config.Crawler.RecordsFile}
			}

			table, err := deps.LoadSynonyms()
			if err != nil {
				return err
			}

			opts := indexer.Options{
				Dedupe: dedupe,
				Format: indexer.Format(format),
			}

			var feeder *indexer.Feeder
			switch opts.Format {
			case indexer.FormatXMLPipe:
				out := os.Stdout
				if output != "" {
					f, createErr := os.Create(output)
					if createErr != nil {
						return fmt.Errorf("creating output file: %w", createErr)
					}
					defer f.Close()
					out = f
				}
				opts.Output = out
				feeder = indexer.New(nil, table, deps.Logger)
			case indexer.FormatElastic:
				client, clientErr := deps.NewStorageClient()
				if clientErr != nil {
					return clientErr
				}
				feeder = indexer.New(client, table, deps.Logger)
			default:
				return fmt.Errorf("unknown format %q (want es or xmlpipe)", format)
			}

			ctx, stop := common.SignalContext(cmd.Context())
			defer stop()

			stats, err := feeder.Feed(ctx, paths, opts)
			if err != nil {
				return fmt.Errorf("feed failed: %w", err)
			}
			deps.Logger.Info("feed finished",
				logger.Int("read", stats.Read),
				logger.Int("dropped", stats.Dropped),
				logger.Int("indexed", stats.Indexed))
			return nil
		},
	}

	cmd.Flags().BoolVar(&dedupe, "dedupe", false, "deduplicate across the concatenation of all input files")
	cmd.Flags().StringVar(&format, "format", string(indexer.FormatElastic), "output format: es or xmlpipe")
	cmd.Flags().StringVarP(&output, "output", "o", "", "docset output file for --format xmlpipe (default stdout)")
	return cmd
}
