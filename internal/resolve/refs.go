// Package resolve maps external rule-authoring references onto canonical
// entry ids. The cascade is strict and first-success-wins: direct id
// derivation, then the manual override table, then name search over
// progressively normalized variants. Every distinct reference gets exactly
// one audit record per rebuild.
package resolve

import (
	"fmt"
	"strings"

	"compendium/internal/category"
)

// authoringPrefixes are the reference families minted by the rule-authoring
// source itself. Refs under other families (ID_INTERNAL_, ID_CDJ_, ID_HF_)
// are internal bookkeeping with no derivable canonical category, so they are
// unmappable by shape.
var authoringPrefixes = []string{"ID_FMP_", "ID_X_"}

// typeCategories maps an external type tag to the canonical category its
// numeric suffix derives into: a POWER ref numbered 435 derives "power435".
var typeCategories = map[string]string{
	"POWER":        "power",
	"FEAT":         "feat",
	"CLASS":        "class",
	"RACE":         "race",
	"MAGIC_ITEM":   "item",
	"ITEM":         "item",
	"PARAGON_PATH": "paragonpath",
	"EPIC_DESTINY": "epicdestiny",
	"THEME":        "theme",
	"RITUAL":       "ritual",
	"BACKGROUND":   "background",
	"DEITY":        "deity",
	"COMPANION":    "companion",
}

// typeGroups widens name search for external types that legitimately resolve
// into several canonical categories: an equipment ref may land in any of the
// equipment-like tables.
var typeGroups = map[string][]string{
	"MAGIC_ITEM": {"item", "implement", "armor", "weapon", "poison"},
	"ITEM":       {"item", "implement", "armor", "weapon", "poison"},
	"COMPANION":  {"companion"},
	"FAMILIAR":   {"companion"},
	"ASSOCIATE":  {"companion"},
}

// Ref is one decoded external reference.
type Ref struct {
	Raw      string
	Type     string
	Num      string
	Category string
}

// CandidateID is the canonical id the reference derives into directly.
func (r Ref) CandidateID() string {
	return r.Category + r.Num
}

// AllowedCategories is the category set a reference of this type may resolve
// into via name search.
func (r Ref) AllowedCategories() []string {
	return allowedCategories(r.Type)
}

func allowedCategories(typeTag string) []string {
	if group, ok := typeGroups[typeTag]; ok {
		return group
	}
	if cat, ok := typeCategories[typeTag]; ok {
		return []string{cat}
	}
	return nil
}

// DecodeRef decodes an external reference's type tag and numeric suffix. A
// non-empty reason means the reference is unmappable by shape and must not
// proceed to name search.
func DecodeRef(raw string) (Ref, string) {
	if strings.TrimSpace(raw) == "" {
		return Ref{}, "empty_or_invalid"
	}

	var rest string
	recognized := false
	for _, prefix := range authoringPrefixes {
		if strings.HasPrefix(raw, prefix) {
			rest = strings.TrimPrefix(raw, prefix)
			recognized = true
			break
		}
	}
	if !recognized {
		return Ref{Raw: raw}, fmt.Sprintf("non-authoring prefix (%s)", familyOf(raw))
	}

	idx := strings.LastIndex(rest, "_")
	if idx <= 0 {
		return Ref{Raw: raw}, "unparseable format"
	}
	typePart, numPart := rest[:idx], rest[idx+1:]
	if !allDigits(numPart) {
		return Ref{Raw: raw}, "no numeric suffix"
	}

	cat, ok := typeCategories[typePart]
	if !ok {
		return Ref{Raw: raw}, fmt.Sprintf("unknown type (%s)", typePart)
	}
	if _, ok := category.ByName(cat); !ok {
		return Ref{Raw: raw}, fmt.Sprintf("unknown type (%s)", typePart)
	}

	return Ref{Raw: raw, Type: typePart, Num: numPart, Category: cat}, ""
}

// familyOf trims a reference down to its family marker (e.g. "ID_INTERNAL")
// for the unmappable reason.
func familyOf(raw string) string {
	parts := strings.SplitN(raw, "_", 3)
	if len(parts) >= 2 {
		return parts[0] + "_" + parts[1]
	}
	if len(raw) > 30 {
		return raw[:30] + "..."
	}
	return raw
}

func allDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
