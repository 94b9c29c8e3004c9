package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"compendium/internal/config"
)

func querySearchCmd() *cobra.Command {
	var category string
	cmd := &cobra.Command{
		Use:   "search <text>",
		Short: "Search entry names and bodies using the full-text index",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runQuerySearch(cmd, args[0], category)
		},
	}
	cmd.Flags().StringVar(&category, "category", "", "Category to filter")
	return cmd
}

func runQuerySearch(cmd *cobra.Command, query, category string) error {
	ctx := context.Background()

	cfg, err := config.Load("compendium.yaml")
	if err != nil {
		return err
	}

	db, err := openDB(ctx, cfg)
	if err != nil {
		return err
	}
	defer db.Close(ctx)

	results, err := db.Search(ctx, query, category)
	if err != nil {
		return err
	}
	if len(results) == 0 {
		fmt.Fprintln(os.Stdout, "No matches found.")
		return nil
	}

	for _, result := range results {
		fmt.Fprintf(os.Stdout, "%s (%s/%s)\n", result.Name, result.Category, result.ID)
		if result.Snippet != "" {
			fmt.Fprintf(os.Stdout, "  %s\n", result.Snippet)
		}
	}
	return nil
}
