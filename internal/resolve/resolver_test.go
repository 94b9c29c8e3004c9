package resolve

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"compendium/internal/store"
)

// fakeStore is an in-memory Store for resolver tests. Only the read side and
// the resolution write side are meaningful; ingest methods populate the maps.
type fakeStore struct {
	entries  map[string]map[string]store.Entry
	nameIdx  map[string][]string
	ruleRefs map[string]store.RefUsage

	logged     []store.ResolutionRecord
	applied    store.ResolvedSet
	logsReset  int
	applyCount store.RuleUpdateCounts
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		entries:  make(map[string]map[string]store.Entry),
		nameIdx:  make(map[string][]string),
		ruleRefs: make(map[string]store.RefUsage),
	}
}

func (f *fakeStore) addEntry(category, id, name string) {
	if f.entries[category] == nil {
		f.entries[category] = make(map[string]store.Entry)
	}
	f.entries[category][id] = store.Entry{Category: category, ID: id, Name: name}
}

func (f *fakeStore) addName(nameLower string, ids ...string) {
	f.nameIdx[nameLower] = append(f.nameIdx[nameLower], ids...)
}

func (f *fakeStore) addRef(raw, name string) {
	u := f.ruleRefs[raw]
	u.Name = name
	u.AsGranter++
	f.ruleRefs[raw] = u
}

func (f *fakeStore) Close(context.Context) error              { return nil }
func (f *fakeStore) Reset(context.Context) error              { return nil }
func (f *fakeStore) ResetRuleGraph(context.Context) error     { return nil }
func (f *fakeStore) ResetResolutionLog(context.Context) error { f.logsReset++; return nil }

func (f *fakeStore) PutEntry(context.Context, store.Entry) error                 { return nil }
func (f *fakeStore) PutNameIndex(context.Context, string, string) error          { return nil }
func (f *fakeStore) AppendParseLog(context.Context, []store.ParseLogEntry) error { return nil }
func (f *fakeStore) SetCategoryCount(context.Context, string, int) error         { return nil }
func (f *fakeStore) SetMeta(context.Context, string, string) error               { return nil }
func (f *fakeStore) PutGrant(context.Context, store.Grant) error                 { return nil }
func (f *fakeStore) PutStatAddition(context.Context, store.StatAddition) error   { return nil }
func (f *fakeStore) PutModification(context.Context, store.Modification) error   { return nil }

func (f *fakeStore) CategoryIDs(_ context.Context, category string) (map[string]struct{}, error) {
	ids := make(map[string]struct{}, len(f.entries[category]))
	for id := range f.entries[category] {
		ids[id] = struct{}{}
	}
	return ids, nil
}

func (f *fakeStore) NameIndex(context.Context) (map[string][]string, error) {
	return f.nameIdx, nil
}

func (f *fakeStore) IDsForName(_ context.Context, nameLower string) ([]string, error) {
	return f.nameIdx[nameLower], nil
}

func (f *fakeStore) EntryIDByName(_ context.Context, category, nameLower string) (string, error) {
	for id, e := range f.entries[category] {
		if e.Name != "" && strings.EqualFold(e.Name, nameLower) {
			return id, nil
		}
	}
	return "", nil
}

func (f *fakeStore) RuleRefs(context.Context) (map[string]store.RefUsage, error) {
	return f.ruleRefs, nil
}

func (f *fakeStore) HasEntries(context.Context) (bool, error) {
	for _, m := range f.entries {
		if len(m) > 0 {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeStore) AppendResolutionLog(_ context.Context, records []store.ResolutionRecord) error {
	f.logged = append(f.logged, records...)
	return nil
}

func (f *fakeStore) ApplyResolved(_ context.Context, resolved store.ResolvedSet) (store.RuleUpdateCounts, error) {
	f.applied = resolved
	return f.applyCount, nil
}

func (f *fakeStore) ResolutionSummary(context.Context) (map[store.ResolutionStatus]int, error) {
	out := make(map[store.ResolutionStatus]int)
	for _, r := range f.logged {
		out[r.Status]++
	}
	return out, nil
}

func (f *fakeStore) NotFoundRefs(context.Context) ([]store.ResolutionRecord, error) {
	var out []store.ResolutionRecord
	for _, r := range f.logged {
		if r.Status == store.StatusNotFound {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeStore) GetEntry(context.Context, string, string) (*store.Entry, error) {
	return nil, nil
}

func (f *fakeStore) Search(context.Context, string, string) ([]store.SearchResult, error) {
	return nil, nil
}

func (f *fakeStore) ParseLog(context.Context, string, string) ([]store.ParseLogEntry, error) {
	return nil, nil
}

func (f *fakeStore) recordFor(t *testing.T, raw string) store.ResolutionRecord {
	t.Helper()
	for _, r := range f.logged {
		if r.ExternalRef == raw {
			return r
		}
	}
	t.Fatalf("no resolution record for %q", raw)
	return store.ResolutionRecord{}
}

func noOverrides(t *testing.T) string {
	t.Helper()
	return filepath.Join(t.TempDir(), "absent.csv")
}

func TestNewRefusesEmptyStore(t *testing.T) {
	_, err := New(context.Background(), newFakeStore(), noOverrides(t))
	if !errors.Is(err, ErrEmptyStore) {
		t.Fatalf("New() error = %v, want ErrEmptyStore", err)
	}
}

func TestRunCascade(t *testing.T) {
	ctx := context.Background()
	db := newFakeStore()
	db.addEntry("power", "power435", "Twin Strike")
	db.addEntry("feat", "feat12", "Improved Initiative")
	db.addEntry("armor", "armor7", "Shield")
	db.addEntry("power", "power7", "Shield")
	db.addName("twin strike", "power435")
	db.addName("improved initiative", "feat12")
	db.addName("shield", "power7", "armor7")

	db.addRef("ID_X_POWER_435", "Twin Strike")
	db.addRef("ID_X_FEAT_9001", "Improved Initiative")
	db.addRef("ID_FMP_MAGIC_ITEM_77", "Shield")
	db.addRef("ID_INTERNAL_BOOKKEEPING_1", "")
	db.addRef("ID_FMP_RITUAL_999", "No Such Ritual")

	r, err := New(ctx, db, noOverrides(t))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	res, err := r.Run(ctx)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if res.Refs != 5 {
		t.Fatalf("Refs = %d, want 5", res.Refs)
	}
	if db.logsReset != 1 {
		t.Errorf("resolution log reset %d times, want 1", db.logsReset)
	}

	t.Run("direct id", func(t *testing.T) {
		rec := db.recordFor(t, "ID_X_POWER_435")
		if rec.Status != store.StatusMatched || rec.Method != "id" {
			t.Fatalf("status/method = %s/%s", rec.Status, rec.Method)
		}
		if rec.ResolvedID != "power435" || rec.ResolvedCategory != "power" {
			t.Errorf("resolved = %s/%s", rec.ResolvedID, rec.ResolvedCategory)
		}
	})

	t.Run("name search fallback", func(t *testing.T) {
		rec := db.recordFor(t, "ID_X_FEAT_9001")
		if rec.Status != store.StatusMatchedNameSearch || rec.Method != "name_search" {
			t.Fatalf("status/method = %s/%s", rec.Status, rec.Method)
		}
		if rec.AttemptedID != "feat9001" {
			t.Errorf("AttemptedID = %q, want feat9001", rec.AttemptedID)
		}
		if rec.ResolvedID != "feat12" || rec.ResolvedCategory != "feat" {
			t.Errorf("resolved = %s/%s", rec.ResolvedID, rec.ResolvedCategory)
		}
	})

	t.Run("category filter on ambiguous name", func(t *testing.T) {
		rec := db.recordFor(t, "ID_FMP_MAGIC_ITEM_77")
		if rec.Status != store.StatusMatchedNameSearch {
			t.Fatalf("status = %s", rec.Status)
		}
		// power7 comes first in the index but an item-like ref must not
		// resolve into the power category.
		if rec.ResolvedID != "armor7" || rec.ResolvedCategory != "armor" {
			t.Errorf("resolved = %s/%s, want armor7/armor", rec.ResolvedID, rec.ResolvedCategory)
		}
	})

	t.Run("unmappable skips attempts", func(t *testing.T) {
		rec := db.recordFor(t, "ID_INTERNAL_BOOKKEEPING_1")
		if rec.Status != store.StatusUnmappable {
			t.Fatalf("status = %s", rec.Status)
		}
		if rec.AttemptedID != "" {
			t.Errorf("AttemptedID = %q, want empty", rec.AttemptedID)
		}
		if rec.UnmappableReason != "non-authoring prefix (ID_INTERNAL)" {
			t.Errorf("UnmappableReason = %q", rec.UnmappableReason)
		}
	})

	t.Run("not found keeps attempted id", func(t *testing.T) {
		rec := db.recordFor(t, "ID_FMP_RITUAL_999")
		if rec.Status != store.StatusNotFound {
			t.Fatalf("status = %s", rec.Status)
		}
		if rec.AttemptedID != "ritual999" {
			t.Errorf("AttemptedID = %q, want ritual999", rec.AttemptedID)
		}
		if rec.ResolvedID != "" {
			t.Errorf("ResolvedID = %q, want empty", rec.ResolvedID)
		}
	})

	t.Run("applied set", func(t *testing.T) {
		want := store.ResolvedSet{
			"ID_X_POWER_435":       "power435",
			"ID_X_FEAT_9001":       "feat12",
			"ID_FMP_MAGIC_ITEM_77": "armor7",
		}
		if len(db.applied) != len(want) {
			t.Fatalf("applied = %v, want %v", db.applied, want)
		}
		for ref, id := range want {
			if db.applied[ref] != id {
				t.Errorf("applied[%s] = %q, want %q", ref, db.applied[ref], id)
			}
		}
	})

	t.Run("cached outcomes", func(t *testing.T) {
		if id, ok := r.Resolved("ID_X_POWER_435"); !ok || id != "power435" {
			t.Errorf("Resolved(ID_X_POWER_435) = %q, %v", id, ok)
		}
		if _, ok := r.Resolved("ID_FMP_RITUAL_999"); ok {
			t.Error("unresolved ref reported as resolved")
		}
	})
}

func TestRunManualOverride(t *testing.T) {
	ctx := context.Background()
	db := newFakeStore()
	db.addEntry("power", "power435", "Twin Strike")
	db.addEntry("power", "power900", "Stand-In")
	db.addRef("ID_X_POWER_435", "Twin Strike")
	db.addRef("ID_FMP_POWER_555", "Unknown Power")

	dir := t.TempDir()
	path := filepath.Join(dir, "manual_id_mappings.csv")
	content := "xml_id,compendium_id\n" +
		"ID_X_POWER_435,power900\n" + // must lose to direct id
		"ID_FMP_POWER_555,power900\n" +
		"ID_FMP_POWER_555_BAD,missing123\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	r, err := New(ctx, db, path)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if _, err := r.Run(ctx); err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	rec := db.recordFor(t, "ID_X_POWER_435")
	if rec.Status != store.StatusMatched || rec.ResolvedID != "power435" {
		t.Errorf("direct id must beat manual override, got %s/%s", rec.Status, rec.ResolvedID)
	}

	rec = db.recordFor(t, "ID_FMP_POWER_555")
	if rec.Status != store.StatusMatchedManual || rec.Method != "manual" {
		t.Fatalf("status/method = %s/%s", rec.Status, rec.Method)
	}
	if rec.ResolvedID != "power900" || rec.ResolvedCategory != "power" {
		t.Errorf("resolved = %s/%s", rec.ResolvedID, rec.ResolvedCategory)
	}
}

func TestRunVariantNameSearch(t *testing.T) {
	ctx := context.Background()
	db := newFakeStore()
	db.addEntry("armor", "armor42", "Black Iron Armor")
	db.addName("black iron armor", "armor42")
	db.addRef("ID_FMP_MAGIC_ITEM_9999", "Black Iron Armor +2")

	r, err := New(ctx, db, noOverrides(t))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if _, err := r.Run(ctx); err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	rec := db.recordFor(t, "ID_FMP_MAGIC_ITEM_9999")
	if rec.Status != store.StatusMatchedNameSearch || rec.ResolvedID != "armor42" {
		t.Errorf("got %s/%s, want matched_name_search/armor42", rec.Status, rec.ResolvedID)
	}
}

func TestLookup(t *testing.T) {
	ctx := context.Background()
	db := newFakeStore()
	db.addEntry("armor", "armor7", "Shield")
	db.addEntry("power", "power7", "Shield")
	db.addName("shield", "power7", "armor7")

	t.Run("hint restricts category", func(t *testing.T) {
		hit, err := Lookup(ctx, db, "Shield", "armor")
		if err != nil {
			t.Fatal(err)
		}
		if hit == nil || hit.ID != "armor7" || hit.Category != "armor" {
			t.Fatalf("hit = %+v, want armor7", hit)
		}
	})

	t.Run("no hint takes first index hit", func(t *testing.T) {
		hit, err := Lookup(ctx, db, "Shield", "")
		if err != nil {
			t.Fatal(err)
		}
		if hit == nil || hit.ID != "power7" {
			t.Fatalf("hit = %+v, want power7", hit)
		}
	})

	t.Run("miss returns nil", func(t *testing.T) {
		hit, err := Lookup(ctx, db, "No Such Thing", "")
		if err != nil {
			t.Fatal(err)
		}
		if hit != nil {
			t.Fatalf("hit = %+v, want nil", hit)
		}
	})
}
