package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"compendium/internal/config"
	"compendium/internal/resolve"
)

func queryLookupCmd() *cobra.Command {
	var category string
	cmd := &cobra.Command{
		Use:   "lookup <name>",
		Short: "Resolve a display name to a canonical id",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runQueryLookup(cmd, args[0], category)
		},
	}
	cmd.Flags().StringVar(&category, "category", "", "Category to restrict the lookup")
	return cmd
}

func runQueryLookup(cmd *cobra.Command, name, category string) error {
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

	hit, err := resolve.Lookup(ctx, db, name, category)
	if err != nil {
		return err
	}
	if hit == nil {
		fmt.Fprintf(os.Stdout, "No entry found for %q.\n", name)
		return nil
	}

	fmt.Fprintf(os.Stdout, "%s/%s", hit.Category, hit.ID)
	if hit.Variant != "" {
		fmt.Fprintf(os.Stdout, " (matched %q)", hit.Variant)
	}
	fmt.Fprintln(os.Stdout)
	return nil
}
