package sqlite

import (
	"context"
	"reflect"
	"testing"

	"compendium/internal/store"
)

func newTestClient(t *testing.T) *Client {
	t.Helper()
	ctx := context.Background()
	c, err := New(ctx, "sqlite://:memory:")
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	t.Cleanup(func() { c.Close(ctx) })
	if err := c.Reset(ctx); err != nil {
		t.Fatalf("Reset() error = %v", err)
	}
	if err := c.ResetRuleGraph(ctx); err != nil {
		t.Fatalf("ResetRuleGraph() error = %v", err)
	}
	if err := c.ResetResolutionLog(ctx); err != nil {
		t.Fatalf("ResetResolutionLog() error = %v", err)
	}
	return c
}

func TestPutEntryDeduplicatesTags(t *testing.T) {
	ctx := context.Background()
	c := newTestClient(t)

	err := c.PutEntry(ctx, store.Entry{
		Category: "power",
		ID:       "power1",
		Name:     "Flame Strike",
		Fields:   map[string]string{},
		Keywords: []string{"Fire", "Fire", "Implement"},
	})
	if err != nil {
		t.Fatalf("PutEntry() error = %v", err)
	}

	entry, err := c.GetEntry(ctx, "power", "power1")
	if err != nil {
		t.Fatalf("GetEntry() error = %v", err)
	}
	want := []string{"Fire", "Implement"}
	if !reflect.DeepEqual(entry.Keywords, want) {
		t.Errorf("Keywords = %v, want %v", entry.Keywords, want)
	}
}

func TestSearchNegatedTerm(t *testing.T) {
	ctx := context.Background()
	c := newTestClient(t)

	entries := []store.Entry{
		{Category: "power", ID: "power1", Name: "Flame Strike", SearchText: "fire damage to one target"},
		{Category: "power", ID: "power2", Name: "Rimefire Bolt", SearchText: "fire and cold damage"},
	}
	for _, e := range entries {
		if err := c.PutEntry(ctx, e); err != nil {
			t.Fatalf("PutEntry(%s) error = %v", e.ID, err)
		}
	}

	results, err := c.Search(ctx, "fire -cold", "")
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if len(results) != 1 || results[0].ID != "power1" {
		t.Errorf("results = %+v, want only power1", results)
	}
}

// rebuild writes one fixed data set: two entries, their name-index rows, a
// rule-graph edge, and a resolution log. Only the meta value differs per run.
func rebuild(t *testing.T, c *Client, buildDate string) {
	t.Helper()
	ctx := context.Background()

	if err := c.Reset(ctx); err != nil {
		t.Fatalf("Reset() error = %v", err)
	}
	if err := c.ResetRuleGraph(ctx); err != nil {
		t.Fatalf("ResetRuleGraph() error = %v", err)
	}
	if err := c.ResetResolutionLog(ctx); err != nil {
		t.Fatalf("ResetResolutionLog() error = %v", err)
	}

	level := 1
	entries := []store.Entry{
		{
			Category: "power", ID: "power1", Name: "Flame Strike",
			Fields: map[string]string{"class_name": "Wizard"}, Level: &level,
			Usage: "Encounter", Keywords: []string{"Fire", "Implement"},
			SearchText: "fire damage",
		},
		{
			Category: "feat", ID: "feat1", Name: "Alertness",
			Fields: map[string]string{"tier": "Heroic"}, SearchText: "no surprise",
		},
	}
	for _, e := range entries {
		if err := c.PutEntry(ctx, e); err != nil {
			t.Fatalf("PutEntry(%s) error = %v", e.ID, err)
		}
	}
	for name, id := range map[string]string{"flame strike": "power1", "alertness": "feat1"} {
		if err := c.PutNameIndex(ctx, name, id); err != nil {
			t.Fatalf("PutNameIndex(%s) error = %v", name, err)
		}
	}
	if err := c.SetCategoryCount(ctx, "power", 1); err != nil {
		t.Fatalf("SetCategoryCount() error = %v", err)
	}
	if err := c.SetMeta(ctx, "build_date", buildDate); err != nil {
		t.Fatalf("SetMeta() error = %v", err)
	}

	grant := store.Grant{
		GranterRef: "ID_FMP_FEAT_1", GranterType: "FEAT", GranterName: "Alertness",
		GrantedRef: "ID_FMP_POWER_1", GrantedType: "POWER", GrantedName: "Flame Strike",
		Ordinal: 0,
	}
	if err := c.PutGrant(ctx, grant); err != nil {
		t.Fatalf("PutGrant() error = %v", err)
	}

	records := []store.ResolutionRecord{
		{
			ExternalRef: "ID_FMP_FEAT_1", AttemptedID: "feat1", ResolvedID: "feat1",
			ResolvedCategory: "feat", Status: store.StatusMatched, Method: "id",
			Occurrences: 1, AsGranter: 1,
		},
		{
			ExternalRef: "ID_FMP_POWER_999", AttemptedID: "power999",
			Status: store.StatusNotFound, Occurrences: 1, AsGranted: 1,
		},
	}
	if err := c.AppendResolutionLog(ctx, records); err != nil {
		t.Fatalf("AppendResolutionLog() error = %v", err)
	}
}

type snapshot struct {
	powerIDs map[string]struct{}
	featIDs  map[string]struct{}
	names    map[string][]string
	entry    *store.Entry
	refs     map[string]store.RefUsage
	statuses map[store.ResolutionStatus]int
}

func takeSnapshot(t *testing.T, c *Client) snapshot {
	t.Helper()
	ctx := context.Background()

	var s snapshot
	var err error
	if s.powerIDs, err = c.CategoryIDs(ctx, "power"); err != nil {
		t.Fatalf("CategoryIDs(power) error = %v", err)
	}
	if s.featIDs, err = c.CategoryIDs(ctx, "feat"); err != nil {
		t.Fatalf("CategoryIDs(feat) error = %v", err)
	}
	if s.names, err = c.NameIndex(ctx); err != nil {
		t.Fatalf("NameIndex() error = %v", err)
	}
	if s.entry, err = c.GetEntry(ctx, "power", "power1"); err != nil {
		t.Fatalf("GetEntry() error = %v", err)
	}
	if s.refs, err = c.RuleRefs(ctx); err != nil {
		t.Fatalf("RuleRefs() error = %v", err)
	}
	if s.statuses, err = c.ResolutionSummary(ctx); err != nil {
		t.Fatalf("ResolutionSummary() error = %v", err)
	}
	return s
}

func TestRebuildIsIdempotent(t *testing.T) {
	c := newTestClient(t)

	rebuild(t, c, "2026-01-01T00:00:00Z")
	first := takeSnapshot(t, c)

	rebuild(t, c, "2026-01-02T00:00:00Z")
	second := takeSnapshot(t, c)

	if !reflect.DeepEqual(first.powerIDs, second.powerIDs) || !reflect.DeepEqual(first.featIDs, second.featIDs) {
		t.Errorf("category ids differ between rebuilds")
	}
	if !reflect.DeepEqual(first.names, second.names) {
		t.Errorf("name index differs: %v vs %v", first.names, second.names)
	}
	if !reflect.DeepEqual(first.entry, second.entry) {
		t.Errorf("entry differs: %+v vs %+v", first.entry, second.entry)
	}
	if !reflect.DeepEqual(first.refs, second.refs) {
		t.Errorf("rule refs differ: %v vs %v", first.refs, second.refs)
	}
	if !reflect.DeepEqual(first.statuses, second.statuses) {
		t.Errorf("resolution statuses differ: %v vs %v", first.statuses, second.statuses)
	}
	if first.entry == nil || len(first.statuses) == 0 {
		t.Fatalf("snapshot is empty, rebuild stored nothing")
	}
}
