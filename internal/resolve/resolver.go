package resolve

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"compendium/internal/category"
	"compendium/internal/store"
)

// ErrEmptyStore is returned by New when the canonical store holds no entries.
// Resolving against an unbuilt store would log every reference as not_found.
var ErrEmptyStore = errors.New("canonical store has no entries")

// directSearchCategories are the categories probed by equality search against
// the entry tables when the name index lacks a full or compound name. Order
// matters: the first category with a hit wins.
var directSearchCategories = []string{"weapon", "item", "armor", "implement", "power", "feat", "poison"}

// Resolver holds one rebuild's worth of lookup state. All store reads happen
// up front in New; Run itself only writes.
type Resolver struct {
	db        store.Store
	ids       map[string]map[string]struct{}
	nameIndex map[string][]string
	overrides map[string]string
	cache     map[string]string
}

// Result summarizes one resolution run.
type Result struct {
	Refs     int
	ByStatus map[store.ResolutionStatus]int
	Updates  store.RuleUpdateCounts
}

// New loads the id sets, the name index, and the manual overrides. Overrides
// pointing at ids absent from the store are discarded.
func New(ctx context.Context, db store.Store, overridesPath string) (*Resolver, error) {
	ok, err := db.HasEntries(ctx)
	if err != nil {
		return nil, fmt.Errorf("checking store contents: %w", err)
	}
	if !ok {
		return nil, ErrEmptyStore
	}

	ids := make(map[string]map[string]struct{}, len(category.All))
	for _, cat := range category.All {
		set, err := db.CategoryIDs(ctx, cat.Name)
		if err != nil {
			return nil, fmt.Errorf("loading %s ids: %w", cat.Name, err)
		}
		ids[cat.Name] = set
	}

	names, err := db.NameIndex(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading name index: %w", err)
	}

	overrides, err := LoadOverrides(overridesPath)
	if err != nil {
		return nil, err
	}
	for ref, id := range overrides {
		if !validID(ids, id) {
			delete(overrides, ref)
		}
	}

	return &Resolver{
		db:        db,
		ids:       ids,
		nameIndex: names,
		overrides: overrides,
		cache:     make(map[string]string),
	}, nil
}

func validID(ids map[string]map[string]struct{}, id string) bool {
	cat, ok := category.Of(id)
	if !ok {
		return false
	}
	_, ok = ids[cat.Name][id]
	return ok
}

// categoryOf is Of with the miss collapsed to the empty string, for audit
// fields that tolerate absence.
func categoryOf(id string) string {
	cat, ok := category.Of(id)
	if !ok {
		return ""
	}
	return cat.Name
}

// Run resolves every distinct external reference in the rule graph, rewrites
// the audit log, and writes resolved ids back onto the edges. Each reference
// is decided once; edges sharing a reference share its outcome.
func (r *Resolver) Run(ctx context.Context) (Result, error) {
	refs, err := r.db.RuleRefs(ctx)
	if err != nil {
		return Result{}, fmt.Errorf("loading rule refs: %w", err)
	}
	if err := r.db.ResetResolutionLog(ctx); err != nil {
		return Result{}, fmt.Errorf("resetting resolution log: %w", err)
	}

	raws := make([]string, 0, len(refs))
	for raw := range refs {
		raws = append(raws, raw)
	}
	sort.Strings(raws)

	records := make([]store.ResolutionRecord, 0, len(raws))
	resolved := make(store.ResolvedSet)
	byStatus := make(map[store.ResolutionStatus]int)

	for _, raw := range raws {
		usage := refs[raw]
		rec := r.resolveOne(ctx, raw, usage)
		rec.Name = usage.Name
		rec.Occurrences = usage.Occurrences()
		rec.AsGranter = usage.AsGranter
		rec.AsGranted = usage.AsGranted
		rec.InStatAdds = usage.InStatAdds
		rec.InModifies = usage.InModifies
		records = append(records, rec)
		byStatus[rec.Status]++
		if rec.ResolvedID != "" {
			resolved[raw] = rec.ResolvedID
			r.cache[raw] = rec.ResolvedID
		} else {
			r.cache[raw] = ""
		}
	}

	if err := r.db.AppendResolutionLog(ctx, records); err != nil {
		return Result{}, fmt.Errorf("writing resolution log: %w", err)
	}
	updates, err := r.db.ApplyResolved(ctx, resolved)
	if err != nil {
		return Result{}, fmt.Errorf("applying resolved ids: %w", err)
	}

	return Result{Refs: len(raws), ByStatus: byStatus, Updates: updates}, nil
}

// resolveOne runs the cascade for a single reference. Unmappable references
// never reach the later stages: there is nothing to attempt.
func (r *Resolver) resolveOne(ctx context.Context, raw string, usage store.RefUsage) store.ResolutionRecord {
	ref, reason := DecodeRef(raw)
	if reason != "" {
		return store.ResolutionRecord{
			ExternalRef:      raw,
			Status:           store.StatusUnmappable,
			UnmappableReason: reason,
		}
	}

	attempted := ref.CandidateID()
	rec := store.ResolutionRecord{ExternalRef: raw, AttemptedID: attempted}

	if _, ok := r.ids[ref.Category][attempted]; ok {
		rec.Status = store.StatusMatched
		rec.Method = "id"
		rec.ResolvedID = attempted
		rec.ResolvedCategory = ref.Category
		return rec
	}

	if id, ok := r.overrides[raw]; ok {
		rec.Status = store.StatusMatchedManual
		rec.Method = "manual"
		rec.ResolvedID = id
		rec.ResolvedCategory = categoryOf(id)
		return rec
	}

	if id := r.searchByName(ctx, usage.Name, ref.AllowedCategories()); id != "" {
		rec.Status = store.StatusMatchedNameSearch
		rec.Method = "name_search"
		rec.ResolvedID = id
		rec.ResolvedCategory = categoryOf(id)
		return rec
	}

	rec.Status = store.StatusNotFound
	return rec
}

// searchByName tries each name variant in order; within a variant the name
// index is consulted first, then equality search against the entry tables.
// The first acceptable hit wins and later variants are not tried.
func (r *Resolver) searchByName(ctx context.Context, name string, allowed []string) string {
	if name == "" {
		return ""
	}
	for _, key := range Variants(name) {
		if id := r.indexHit(key, allowed); id != "" {
			return id
		}
		if len(allowed) == 0 {
			continue
		}
		if id := r.tableHit(ctx, key, allowed); id != "" {
			return id
		}
	}
	return ""
}

func (r *Resolver) indexHit(key string, allowed []string) string {
	var valid []string
	for _, id := range r.nameIndex[key] {
		if validID(r.ids, id) {
			valid = append(valid, id)
		}
	}
	if len(valid) == 0 {
		return ""
	}
	if len(allowed) == 0 {
		return valid[0]
	}
	for _, id := range valid {
		cat := categoryOf(id)
		for _, a := range allowed {
			if cat == a {
				return id
			}
		}
	}
	return ""
}

func (r *Resolver) tableHit(ctx context.Context, key string, allowed []string) string {
	for _, cat := range directSearchCategories {
		permitted := false
		for _, a := range allowed {
			if a == cat {
				permitted = true
				break
			}
		}
		if !permitted {
			continue
		}
		id, err := r.db.EntryIDByName(ctx, cat, key)
		if err != nil || id == "" {
			continue
		}
		if validID(r.ids, id) {
			return id
		}
	}
	return ""
}

// Resolved reports the cached outcome for one reference after Run.
func (r *Resolver) Resolved(raw string) (string, bool) {
	id, ok := r.cache[raw]
	if !ok || id == "" {
		return "", false
	}
	return id, true
}
