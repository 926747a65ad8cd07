// Package index implements admin commands for the search index.
package index

import (
	"errors"
	"fmt"
	"os"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/jonesrussell/cocktail-search/cmd/common"
	"github.com/jonesrussell/cocktail-search/internal/storage"
)

// Command returns the index command for use in the root command.
func Command() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "index",
		Short: "Manage the search index",
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}
	cmd.AddCommand(createCommand())
	cmd.AddCommand(deleteCommand())
	cmd.AddCommand(listCommand())
	return cmd
}

func createCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "create [name]",
		Short: "Create the recipe index with its mapping",
		Args:  cobra.MaximumNArgs(1),
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
			name := client.Index()
			if len(args) == 1 {
				name = args[0]
			}

			ctx, stop := common.SignalContext(cmd.Context())
			defer stop()

			exists, err := client.IndexExists(ctx, name)
			if err != nil {
				return err
			}
			if exists {
				fmt.Printf("Index %s already exists\n", name)
				return nil
			}
			if err := client.CreateIndex(ctx, name); err != nil {
				return fmt.Errorf("creating index: %w", err)
			}
			fmt.Printf("Created index %s\n", name)
			return nil
		},
	}
}

func deleteCommand() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "delete [name]",
		Short: "Delete an index",
		Args:  cobra.MaximumNArgs(1),
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
			name := client.Index()
			if len(args) == 1 {
				name = args[0]
			}

			if !force {
				fmt.Printf("Delete index %s? [y/N] ", name)
				var answer string
				_, _ = fmt.Scanln(&answer)
				if answer != "y" && answer != "Y" {
					fmt.Println("Aborted.")
					return nil
				}
			}

			ctx, stop := common.SignalContext(cmd.Context())
			defer stop()

			if err := client.DeleteIndex(ctx, name); err != nil {
				if errors.Is(err, storage.ErrIndexNotFound) {
					fmt.Printf("Index %s does not exist\n", name)
					return nil
				}
				return fmt.Errorf("deleting index: %w", err)
			}
			fmt.Printf("Deleted index %s\n", name)
			return nil
		},
	}

	cmd.Flags().BoolVarP(&force, "force", "f", false, "skip the confirmation prompt")
	return cmd
}

func listCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List indices",
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

			indices, err := client.ListIndices(ctx)
			if err != nil {
				return fmt.Errorf("listing indices: %w", err)
			}

			t := table.NewWriter()
			t.SetOutputMirror(os.Stdout)
			t.SetStyle(table.StyleLight)
			t.AppendHeader(table.Row{"Name", "Health", "Docs", "Size"})
			for _, info := range indices {
				t.AppendRow(table.Row{info.Name, info.Health, info.DocCount, info.Size})
			}
			t.Render()
			return nil
		},
	}
}
