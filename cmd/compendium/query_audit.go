package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"compendium/internal/config"
)

func queryAuditCmd() *cobra.Command {
	var showNotFound bool
	cmd := &cobra.Command{
		Use:   "audit",
		Short: "Show the outcome of the last resolution run",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runQueryAudit(cmd, showNotFound)
		},
	}
	cmd.Flags().BoolVar(&showNotFound, "not-found", false, "List every unresolved reference")
	return cmd
}

func runQueryAudit(cmd *cobra.Command, showNotFound bool) error {
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

	summary, err := db.ResolutionSummary(ctx)
	if err != nil {
		return err
	}
	if len(summary) == 0 {
		fmt.Fprintln(os.Stdout, "No resolution run recorded.")
		return nil
	}

	for _, status := range statusOrder {
		if count, ok := summary[status]; ok {
			fmt.Fprintf(os.Stdout, "%-20s %d\n", string(status)+":", count)
		}
	}

	if !showNotFound {
		return nil
	}

	refs, err := db.NotFoundRefs(ctx)
	if err != nil {
		return err
	}
	if len(refs) == 0 {
		fmt.Fprintln(os.Stdout, "\nNo unresolved references.")
		return nil
	}

	fmt.Fprintln(os.Stdout, "\nUnresolved references:")
	for _, r := range refs {
		line := fmt.Sprintf("  %s (tried %s, %d uses)", r.ExternalRef, r.AttemptedID, r.Occurrences)
		if r.Name != "" {
			line += fmt.Sprintf(" %q", r.Name)
		}
		fmt.Fprintln(os.Stdout, line)
	}
	return nil
}
