// Package cmd implements the cocktail-search command-line interface.
package cmd

import (
	"context"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/jonesrussell/cocktail-search/cmd/crawl"
	"github.com/jonesrussell/cocktail-search/cmd/feed"
	"github.com/jonesrussell/cocktail-search/cmd/httpd"
	cmdindex "github.com/jonesrussell/cocktail-search/cmd/index"
	"github.com/jonesrussell/cocktail-search/cmd/search"
	cmdsources "github.com/jonesrussell/cocktail-search/cmd/sources"
)

var rootCmd = &cobra.Command{
	Use:   "cocktail-search",
	Short: "Crawl, index and search cocktail recipes",
	Long: `cocktail-search crawls recipe sites into a newline-delimited record
stream, normalizes and deduplicates the records, loads them into a
full-text index with synonym expansion, and serves ingredient search
over HTTP.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return cmd.Help()
	},
}

// Execute runs the root command.
func Execute() error {
	// Load .env early so environment overrides are visible to viper.
	_ = godotenv.Load()
	return rootCmd.ExecuteContext(context.Background())
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "config file (default is ./config.yaml or ./config/config.yaml)")
	rootCmd.PersistentFlags().Bool("debug", false, "enable debug logging")

	rootCmd.AddCommand(crawl.Command())
	rootCmd.AddCommand(feed.Command())
	rootCmd.AddCommand(httpd.Command())
	rootCmd.AddCommand(search.Command())
	rootCmd.AddCommand(cmdsources.Command())
	rootCmd.AddCommand(cmdindex.Command())
}
