package category

import (
	"fmt"
	"strconv"
	"strings"

	"compendium/internal/htmltext"
	"compendium/internal/jsonp"
	"compendium/internal/store"
)

// Normalize converts one category's listing columns and rows, plus the
// auxiliary id -> HTML body and id -> search text maps, into canonical
// entries. A malformed row yields an error in the returned slice and is
// skipped; it never aborts the category.
func Normalize(cat Category, columns []string, rows [][]any, bodies, searchTexts map[string]string) ([]store.Entry, []store.ParseLogEntry, []error) {
	positions := make(map[string]int, len(columns))
	for i, name := range columns {
		positions[name] = i
	}
	cell := func(row []any, name string, fallback int) any {
		idx, ok := positions[name]
		if !ok {
			idx = fallback
		}
		if idx < 0 || idx >= len(row) {
			return nil
		}
		return row[idx]
	}

	var (
		entries  []store.Entry
		parseLog []store.ParseLogEntry
		errs     []error
	)

	for i, row := range rows {
		id := jsonp.Display(cell(row, "ID", 0))
		if id == "" {
			errs = append(errs, fmt.Errorf("normalizing %s row %d: missing id", cat.Name, i))
			continue
		}
		name := jsonp.Display(cell(row, "Name", 1))

		entry := store.Entry{
			Category:   cat.Name,
			ID:         id,
			Name:       name,
			Fields:     make(map[string]string, len(cat.Columns)),
			HTMLBody:   bodies[id],
			SearchText: searchTexts[id],
		}
		if entry.SearchText == "" && entry.HTMLBody != "" {
			entry.SearchText = htmltext.Extract(entry.HTMLBody)
		}

		var levelRaw any
		for _, col := range cat.Columns {
			raw := cell(row, col.Name, col.Index)
			if col.Field == "level" {
				levelRaw = raw
			}
			entry.Fields[col.Field] = jsonp.Display(raw)
		}

		if levelRaw != nil {
			if level := ParseLevel(levelRaw); level != nil {
				entry.Level = level
				parseLog = append(parseLog, store.ParseLogEntry{
					Category: cat.Name, EntryID: id,
					Field: "level", Value: strconv.Itoa(*level),
					Source: "listing", Confidence: ConfidenceHigh,
				})
			}
		}

		if cat.Name == "power" {
			parseLog = append(parseLog, derivePower(&entry)...)
		}

		entries = append(entries, entry)
	}

	return entries, parseLog, errs
}

// derivePower applies the attack-entry derivation rules: usage tier, targeted
// defense, range shape, damage types, and inflicted conditions.
func derivePower(entry *store.Entry) []store.ParseLogEntry {
	var log []store.ParseLogEntry
	logHit := func(field, value, source, confidence string) {
		log = append(log, store.ParseLogEntry{
			Category: entry.Category, EntryID: entry.ID,
			Field: field, Value: value, Source: source, Confidence: confidence,
		})
	}

	if usage := UsageTier(entry.Fields["type"]); usage != "" {
		entry.Usage = usage
		logHit("usage", usage, "type_text", ConfidenceHigh)
	}

	text := entry.SearchText
	if text == "" {
		text = htmltext.Extract(entry.HTMLBody)
	}

	if defense := DefenseTargeted(text); defense != "" {
		entry.Defense = defense
		logHit("defense_targeted", defense, "regex", ConfidenceHigh)
	}

	rangeType, rangeValue, areaType, areaSize := RangeInfo(text)
	if rangeType != "" {
		entry.RangeType = rangeType
		entry.RangeValue = rangeValue
		entry.AreaType = areaType
		entry.AreaSize = areaSize
		logHit("range_type", rangeType, "keyword", ConfidenceHigh)
	}

	if keywordsRaw := entry.Fields["keywords"]; keywordsRaw != "" {
		seen := make(map[string]struct{})
		for _, kw := range strings.Split(keywordsRaw, ",") {
			kw = strings.TrimSpace(kw)
			if kw == "" {
				continue
			}
			if _, ok := seen[kw]; ok {
				continue
			}
			seen[kw] = struct{}{}
			entry.Keywords = append(entry.Keywords, kw)
		}
		damage, hits := DamageTypes(keywordsRaw)
		entry.DamageTypes = damage
		for _, hit := range hits {
			logHit("damage_type", hit.Value, hit.Source, hit.Confidence)
		}
	}

	conditions, hits := Conditions(text)
	entry.Conditions = conditions
	for _, hit := range hits {
		logHit("condition", hit.Value, hit.Source, hit.Confidence)
	}

	return log
}
