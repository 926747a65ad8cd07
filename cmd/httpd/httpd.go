// Package httpd implements the httpd command that serves the search API.
package httpd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jonesrussell/cocktail-search/cmd/common"
	"github.com/jonesrussell/cocktail-search/internal/api"
	"github.com/jonesrussell/cocktail-search/internal/search"
)

// Command returns the httpd command for use in the root command.
func Command() *cobra.Command {
	var port int

	cmd := &cobra.Command{
		Use:   "httpd",
		Short: "Serve the recipe search HTTP API",
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

			service := search.NewService(client, deps.Logger,
				search.WithTimeout(deps.Config.Server.SearchTimeout))
			handler := api.NewHandler(service, deps.Logger)

			if port == 0 {
				port = deps.Config.Server.Port
			}
			server := api.NewServer(handler, api.ServerConfig{
				Port:         port,
				ReadTimeout:  deps.Config.Server.ReadTimeout,
				WriteTimeout: deps.Config.Server.WriteTimeout,
				Debug:        deps.Config.App.Debug,
			}, deps.Logger)

			ctx, stop := common.SignalContext(cmd.Context())
			defer stop()

			if err := server.Start(ctx); err != nil {
				return fmt.Errorf("server failed: %w", err)
			}
			return nil
		},
	}

	cmd.Flags().IntVarP(&port, "port", "p", 0, "listen port (defaults to server.port)")
	return cmd
}
