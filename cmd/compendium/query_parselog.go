package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"compendium/internal/config"
)

func queryParseLogCmd() *cobra.Command {
	var field string
	var confidence string
	cmd := &cobra.Command{
		Use:   "parselog",
		Short: "Show derived-field extraction decisions from the last build",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runQueryParseLog(cmd, field, confidence)
		},
	}
	cmd.Flags().StringVar(&field, "field", "", "Derived field to filter")
	cmd.Flags().StringVar(&confidence, "confidence", "", "Confidence level to filter")
	return cmd
}

func runQueryParseLog(cmd *cobra.Command, field, confidence string) error {
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

	entries, err := db.ParseLog(ctx, field, confidence)
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		fmt.Fprintln(os.Stdout, "No parse log entries.")
		return nil
	}

	for _, e := range entries {
		fmt.Fprintf(os.Stdout, "%s/%s %s=%q [%s] from %q\n",
			e.Category, e.EntryID, e.Field, e.Value, e.Confidence, e.Source)
	}
	return nil
}
