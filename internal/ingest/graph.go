package ingest

import (
	"context"
	"fmt"

	"compendium/internal/config"
	"compendium/internal/rulegraph"
	"compendium/internal/store"
)

type GraphResult struct {
	Elements      int
	Grants        int
	StatAdditions int
	Modifications int
	Skipped       []error
}

// ExtractRules rebuilds the rule-graph tables from the authoring export. The
// resolved id columns start empty; the resolver fills them in a later step.
func ExtractRules(ctx context.Context, cfg *config.ProjectConfig, db store.Store) (*GraphResult, error) {
	extracted, err := rulegraph.ExtractFile(cfg.Rules.XML)
	if err != nil {
		return nil, err
	}

	if err := db.ResetRuleGraph(ctx); err != nil {
		return nil, fmt.Errorf("resetting rule graph: %w", err)
	}

	for _, g := range extracted.Grants {
		if err := db.PutGrant(ctx, g); err != nil {
			return nil, fmt.Errorf("storing grant: %w", err)
		}
	}
	for _, s := range extracted.StatAdditions {
		if err := db.PutStatAddition(ctx, s); err != nil {
			return nil, fmt.Errorf("storing stat addition: %w", err)
		}
	}
	for _, m := range extracted.Modifications {
		if err := db.PutModification(ctx, m); err != nil {
			return nil, fmt.Errorf("storing modification: %w", err)
		}
	}

	return &GraphResult{
		Elements:      extracted.ElementsProcessed,
		Grants:        len(extracted.Grants),
		StatAdditions: len(extracted.StatAdditions),
		Modifications: len(extracted.Modifications),
		Skipped:       extracted.Skipped,
	}, nil
}
