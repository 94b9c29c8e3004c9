// Package ingest rebuilds the canonical store from a scraped export tree:
// one directory per category holding a listing, batched HTML bodies, and a
// search-text index, plus a global name index at the root.
package ingest

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"compendium/internal/category"
	"compendium/internal/config"
	"compendium/internal/jsonp"
	"compendium/internal/store"
)

// bodies for one category arrive in at most this many batch files.
const maxBatchFiles = 20

type Result struct {
	Categories    int
	Entries       int
	NamesIndexed  int
	ParseLogLines int
	SkippedRows   int
	Errors        []error
}

// Run rebuilds the entry side of the store from cfg.Data.Path. The rebuild is
// destructive and deterministic: identical input produces identical contents,
// apart from the build metadata. Malformed units are skipped and reported in
// Result.Errors; only storage failures abort the run.
func Run(ctx context.Context, cfg *config.ProjectConfig, db store.Store) (*Result, error) {
	if info, err := os.Stat(cfg.Data.Path); err != nil || !info.IsDir() {
		return nil, fmt.Errorf("data path %s is not a directory", cfg.Data.Path)
	}

	if err := db.Reset(ctx); err != nil {
		return nil, fmt.Errorf("resetting store: %w", err)
	}

	result := &Result{}
	dataPath := cfg.Data.Path

	catalogCount := loadCatalog(dataPath, result)

	for _, cat := range category.All {
		dir := filepath.Join(dataPath, cat.Name)
		if _, err := os.Stat(dir); os.IsNotExist(err) {
			continue
		}

		columns, rows, err := loadListing(dir)
		if err != nil {
			result.Errors = append(result.Errors, fmt.Errorf("loading %s listing: %w", cat.Name, err))
			continue
		}
		if len(rows) == 0 {
			continue
		}

		bodies := loadBodies(dir, result)
		searchTexts := loadSearchTexts(dir, result)

		entries, logEntries, errs := category.Normalize(cat, columns, rows, bodies, searchTexts)
		for _, err := range errs {
			result.Errors = append(result.Errors, fmt.Errorf("%s: %w", cat.Name, err))
		}
		result.SkippedRows += len(errs)

		for _, e := range entries {
			if err := db.PutEntry(ctx, e); err != nil {
				return nil, fmt.Errorf("storing %s entry %s: %w", cat.Name, e.ID, err)
			}
		}
		if err := db.AppendParseLog(ctx, logEntries); err != nil {
			return nil, fmt.Errorf("storing %s parse log: %w", cat.Name, err)
		}
		if err := db.SetCategoryCount(ctx, cat.Name, len(entries)); err != nil {
			return nil, fmt.Errorf("recording %s count: %w", cat.Name, err)
		}

		result.Categories++
		result.Entries += len(entries)
		result.ParseLogLines += len(logEntries)
	}

	n, err := loadNameIndex(ctx, dataPath, db, result)
	if err != nil {
		return nil, err
	}
	result.NamesIndexed = n

	meta := map[string]string{
		"build_id":      uuid.NewString(),
		"build_date":    time.Now().UTC().Format(time.RFC3339),
		"total_entries": fmt.Sprintf("%d", result.Entries),
		"version":       "1.0",
	}
	if catalogCount >= 0 {
		meta["catalog_categories"] = fmt.Sprintf("%d", catalogCount)
	}
	for key, value := range meta {
		if err := db.SetMeta(ctx, key, value); err != nil {
			return nil, fmt.Errorf("recording meta %s: %w", key, err)
		}
	}

	return result, nil
}

// loadCatalog reads the optional export catalog. Returns -1 when absent or
// unreadable; the catalog is informational only.
func loadCatalog(dataPath string, result *Result) int {
	content, err := os.ReadFile(filepath.Join(dataPath, "catalog.js"))
	if err != nil {
		return -1
	}
	obj, err := jsonp.Object(string(content))
	if err != nil {
		result.Errors = append(result.Errors, fmt.Errorf("parsing catalog: %w", err))
		return -1
	}
	return len(obj)
}

func loadListing(dir string) ([]string, [][]any, error) {
	content, err := os.ReadFile(filepath.Join(dir, "_listing.js"))
	if err != nil {
		return nil, nil, err
	}
	return jsonp.Listing(string(content))
}

// loadBodies merges every batch file present. A malformed batch loses only
// its own bodies.
func loadBodies(dir string, result *Result) map[string]string {
	bodies := make(map[string]string)
	for i := 0; i < maxBatchFiles; i++ {
		path := filepath.Join(dir, fmt.Sprintf("data%d.js", i))
		content, err := os.ReadFile(path)
		if os.IsNotExist(err) {
			continue
		}
		if err != nil {
			result.Errors = append(result.Errors, fmt.Errorf("reading %s: %w", path, err))
			continue
		}
		obj, err := jsonp.Object(string(content))
		if err != nil {
			result.Errors = append(result.Errors, fmt.Errorf("parsing %s: %w", path, err))
			continue
		}
		for id, v := range obj {
			bodies[id] = jsonp.Display(v)
		}
	}
	return bodies
}

func loadSearchTexts(dir string, result *Result) map[string]string {
	path := filepath.Join(dir, "_index.js")
	content, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		result.Errors = append(result.Errors, fmt.Errorf("reading %s: %w", path, err))
		return nil
	}
	obj, err := jsonp.Object(string(content))
	if err != nil {
		result.Errors = append(result.Errors, fmt.Errorf("parsing %s: %w", path, err))
		return nil
	}
	texts := make(map[string]string, len(obj))
	for id, v := range obj {
		texts[id] = jsonp.Display(v)
	}
	return texts
}

// loadNameIndex ingests the global index. A value is one entry id or a list
// of ids when a name is shared across categories.
func loadNameIndex(ctx context.Context, dataPath string, db store.Store, result *Result) (int, error) {
	path := filepath.Join(dataPath, "index.js")
	content, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return 0, nil
	}
	if err != nil {
		result.Errors = append(result.Errors, fmt.Errorf("reading name index: %w", err))
		return 0, nil
	}
	obj, err := jsonp.Object(string(content))
	if err != nil {
		result.Errors = append(result.Errors, fmt.Errorf("parsing name index: %w", err))
		return 0, nil
	}

	count := 0
	for name, v := range obj {
		nameLower := strings.ToLower(name)
		ids, ok := v.([]any)
		if !ok {
			ids = []any{v}
		}
		for _, raw := range ids {
			id := jsonp.Display(raw)
			if id == "" {
				continue
			}
			if err := db.PutNameIndex(ctx, nameLower, id); err != nil {
				return count, fmt.Errorf("storing name index: %w", err)
			}
			count++
		}
	}
	return count, nil
}
