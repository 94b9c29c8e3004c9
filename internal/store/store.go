package store

import "context"

// Store is the canonical relational store. Both backends implement full
// rebuild semantics: Reset discards prior contents, and a rebuild over
// identical input produces identical contents.
type Store interface {
	Close(ctx context.Context) error

	// Reset drops and recreates the entry-side schema (full rebuild).
	Reset(ctx context.Context) error
	// ResetRuleGraph drops and recreates the rule-graph tables.
	ResetRuleGraph(ctx context.Context) error
	// ResetResolutionLog clears the resolution audit trail for a new run.
	ResetResolutionLog(ctx context.Context) error

	PutEntry(ctx context.Context, e Entry) error
	PutNameIndex(ctx context.Context, nameLower, entryID string) error
	AppendParseLog(ctx context.Context, entries []ParseLogEntry) error
	SetCategoryCount(ctx context.Context, category string, count int) error
	SetMeta(ctx context.Context, key, value string) error

	PutGrant(ctx context.Context, g Grant) error
	PutStatAddition(ctx context.Context, s StatAddition) error
	PutModification(ctx context.Context, m Modification) error

	// CategoryIDs returns every entry id in one category. An error is returned
	// only for storage failures; an absent category yields an empty set.
	CategoryIDs(ctx context.Context, category string) (map[string]struct{}, error)
	// NameIndex returns the full name_lower -> entry ids mapping. Non-unique:
	// one name may map to several ids across or within categories.
	NameIndex(ctx context.Context) (map[string][]string, error)
	// IDsForName returns the index rows for one lowercased name.
	IDsForName(ctx context.Context, nameLower string) ([]string, error)
	// EntryIDByName is the direct equality search against one category table,
	// used when the name index lacks full or compound names.
	EntryIDByName(ctx context.Context, category, nameLower string) (string, error)
	// RuleRefs returns every distinct external ref in the rule graph with its
	// role counts and captured display name.
	RuleRefs(ctx context.Context) (map[string]RefUsage, error)
	// HasEntries reports whether any canonical entries exist at all; the
	// resolver refuses to run against an unbuilt store.
	HasEntries(ctx context.Context) (bool, error)

	AppendResolutionLog(ctx context.Context, records []ResolutionRecord) error
	// ApplyResolved writes resolved ids onto rule-graph edges in place.
	// Unresolved edges keep their original refs untouched.
	ApplyResolved(ctx context.Context, resolved ResolvedSet) (RuleUpdateCounts, error)
	ResolutionSummary(ctx context.Context) (map[ResolutionStatus]int, error)
	NotFoundRefs(ctx context.Context) ([]ResolutionRecord, error)

	GetEntry(ctx context.Context, category, id string) (*Entry, error)
	Search(ctx context.Context, query, category string) ([]SearchResult, error)
	ParseLog(ctx context.Context, field, confidence string) ([]ParseLogEntry, error)
}
