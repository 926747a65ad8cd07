// Package common holds dependency wiring shared by every subcommand.
package common

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/jonesrussell/cocktail-search/internal/config"
	"github.com/jonesrussell/cocktail-search/internal/logger"
	"github.com/jonesrussell/cocktail-search/internal/storage"
	"github.com/jonesrussell/cocktail-search/internal/synonyms"
)

// Deps bundles the dependencies every command starts from.
type Deps struct {
	Config *config.Config
	Logger logger.Logger
}

// NewCommandDeps loads configuration and builds the logger from the root
// command's persistent flags.
func NewCommandDeps(cmd *cobra.Command) (*Deps, error) {
	cfgFile, _ := cmd.Root().PersistentFlags().GetString("config")
	debug, _ := cmd.Root().PersistentFlags().GetBool("debug")

	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("loading configuration: %w", err)
	}
	if debug {
		cfg.App.Debug = true
		cfg.Logging.Level = "debug"
		cfg.Logging.Development = true
	}

	log, err := logger.New(cfg.Logging)
	if err != nil {
		return nil, fmt.Errorf("creating logger: %w", err)
	}
	return &Deps{Config: cfg, Logger: log}, nil
}

// NewStorageClient connects to the index engine configured in cfg.
func (d *Deps) NewStorageClient() (*storage.Client, error) {
	client, err := storage.NewClient(d.Config.Elasticsearch, d.Logger)
	if err != nil {
		return nil, fmt.Errorf("connecting to elasticsearch: %w", err)
	}
	return client, nil
}

// LoadSynonyms loads the synonym table configured in cfg. A missing file
// is not an error; expansion is simply disabled.
func (d *Deps) LoadSynonyms() (*synonyms.Table, error) {
	path := d.Config.Elasticsearch.SynonymsFile
	if path == "" {
		return nil, nil
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		d.Logger.Warn("synonyms file not found, expansion disabled",
			logger.String("path", path))
		return nil, nil
	}
	table, err := synonyms.Load(path)
	if err != nil {
		return nil, fmt.Errorf("loading synonyms: %w", err)
	}
	d.Logger.Info("loaded synonym table",
		logger.String("path", path),
		logger.Int("phrases", table.Len()))
	return table, nil
}

// SignalContext returns a context cancelled on SIGINT or SIGTERM.
func SignalContext(parent context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
}
