package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"compendium/internal/config"
	"compendium/internal/ingest"
)

func extractCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "extract",
		Short: "Rebuild the rule graph from the authoring XML export",
		RunE:  runExtract,
	}
	return cmd
}

func runExtract(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	cfg, err := config.Load("compendium.yaml")
	if err != nil {
		return err
	}
	if cfg.Rules.XML == "" {
		return fmt.Errorf("rules.xml path is not configured")
	}

	db, err := openDB(ctx, cfg)
	if err != nil {
		return err
	}
	defer db.Close(ctx)

	result, err := ingest.ExtractRules(ctx, cfg, db)
	if err != nil {
		return err
	}

	fmt.Fprintln(os.Stdout, "Extraction complete.")
	fmt.Fprintf(os.Stdout, "  Elements scanned: %d\n", result.Elements)
	fmt.Fprintf(os.Stdout, "  Grants:           %d\n", result.Grants)
	fmt.Fprintf(os.Stdout, "  Stat additions:   %d\n", result.StatAdditions)
	fmt.Fprintf(os.Stdout, "  Modifications:    %d\n", result.Modifications)

	if len(result.Skipped) > 0 {
		fmt.Fprintf(os.Stdout, "\nSkipped (%d):\n", len(result.Skipped))
		for _, item := range result.Skipped {
			fmt.Fprintf(os.Stdout, "  - %v\n", item)
		}
	}

	return nil
}
