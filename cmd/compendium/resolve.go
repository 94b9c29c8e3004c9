package main

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"compendium/internal/config"
	"compendium/internal/resolve"
	"compendium/internal/store"
)

var statusOrder = []store.ResolutionStatus{
	store.StatusMatched,
	store.StatusMatchedNameSearch,
	store.StatusMatchedManual,
	store.StatusNotFound,
	store.StatusUnmappable,
}

func resolveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "resolve",
		Short: "Resolve rule-graph references against the canonical store",
		RunE:  runResolve,
	}
	return cmd
}

func runResolve(cmd *cobra.Command, args []string) error {
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

	resolver, err := resolve.New(ctx, db, cfg.Rules.ManualMappings)
	if err != nil {
		return err
	}

	result, err := resolver.Run(ctx)
	if err != nil {
		return err
	}

	fmt.Fprintln(os.Stdout, "Resolution complete.")
	fmt.Fprintf(os.Stdout, "  Distinct refs: %d\n", result.Refs)
	for _, status := range statusOrder {
		fmt.Fprintf(os.Stdout, "  %-20s %d\n", string(status)+":", result.ByStatus[status])
	}
	fmt.Fprintf(os.Stdout, "  Edges updated: %d granter, %d granted, %d stat, %d modify\n",
		result.Updates.Granters, result.Updates.Granted, result.Updates.StatAdds, result.Updates.Modifies)

	notFound := result.ByStatus[store.StatusNotFound]
	if notFound == 0 {
		return nil
	}

	refs, err := db.NotFoundRefs(ctx)
	if err != nil {
		return err
	}
	if err := exportNotFound(cfg.Rules.NotFoundExport, refs); err != nil {
		return err
	}
	fmt.Fprintf(os.Stdout, "\n%d refs need manual review, exported to %s\n", notFound, cfg.Rules.NotFoundExport)
	return fmt.Errorf("resolution completed with %d unresolved refs", notFound)
}

// exportNotFound writes the manual-review worklist. Rows arrive ordered by
// occurrence count descending, most impactful first.
func exportNotFound(path string, refs []store.ResolutionRecord) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating export file: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write([]string{"xml_id", "attempted_compendium_id", "compendium_table", "occurrence_count", "name"}); err != nil {
		return err
	}
	for _, r := range refs {
		table := ""
		if ref, reason := resolve.DecodeRef(r.ExternalRef); reason == "" {
			table = ref.Category
		}
		row := []string{r.ExternalRef, r.AttemptedID, table, strconv.Itoa(r.Occurrences), r.Name}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}
