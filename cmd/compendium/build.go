package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"compendium/internal/config"
	"compendium/internal/ingest"
)

func buildCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "build",
		Short: "Rebuild the canonical store from the scraped data tree",
		RunE:  runBuild,
	}
	return cmd
}

func runBuild(cmd *cobra.Command, args []string) error {
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

	result, err := ingest.Run(ctx, cfg, db)
	if err != nil {
		return err
	}

	fmt.Fprintln(os.Stdout, "Build complete.")
	fmt.Fprintf(os.Stdout, "  Categories loaded: %d\n", result.Categories)
	fmt.Fprintf(os.Stdout, "  Entries stored:    %d\n", result.Entries)
	fmt.Fprintf(os.Stdout, "  Names indexed:     %d\n", result.NamesIndexed)
	fmt.Fprintf(os.Stdout, "  Parse log lines:   %d\n", result.ParseLogLines)
	fmt.Fprintf(os.Stdout, "  Rows skipped:      %d\n", result.SkippedRows)

	if len(result.Errors) > 0 {
		fmt.Fprintf(os.Stdout, "\nErrors (%d):\n", len(result.Errors))
		for _, item := range result.Errors {
			fmt.Fprintf(os.Stdout, "  - %v\n", item)
		}
		return fmt.Errorf("build completed with errors")
	}

	return nil
}
