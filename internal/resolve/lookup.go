package resolve

import (
	"context"
	"fmt"
)

// NameSearcher is the slice of the store the standalone lookup needs.
type NameSearcher interface {
	IDsForName(ctx context.Context, nameLower string) ([]string, error)
	EntryIDByName(ctx context.Context, category, nameLower string) (string, error)
}

// Hit is one name-lookup result.
type Hit struct {
	ID       string
	Category string
	Variant  string
}

// Lookup resolves a display name to a canonical id using the same variant
// cascade the rule-graph resolver uses, without requiring an external
// reference. A non-empty categoryHint restricts hits to that category;
// otherwise the first index hit wins and the table search probes every
// direct-search category.
func Lookup(ctx context.Context, db NameSearcher, name, categoryHint string) (*Hit, error) {
	allowed := directSearchCategories
	if categoryHint != "" {
		allowed = []string{categoryHint}
	}

	for _, key := range Variants(name) {
		ids, err := db.IDsForName(ctx, key)
		if err != nil {
			return nil, fmt.Errorf("querying name index: %w", err)
		}
		for _, id := range ids {
			cat := categoryOf(id)
			if cat == "" {
				continue
			}
			if categoryHint != "" && cat != categoryHint {
				continue
			}
			return &Hit{ID: id, Category: cat, Variant: key}, nil
		}
		for _, cat := range allowed {
			id, err := db.EntryIDByName(ctx, cat, key)
			if err != nil {
				return nil, fmt.Errorf("searching %s by name: %w", cat, err)
			}
			if id != "" {
				return &Hit{ID: id, Category: cat, Variant: key}, nil
			}
		}
	}
	return nil, nil
}
