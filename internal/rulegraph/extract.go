// Package rulegraph walks the rule-authoring XML export and extracts the
// three relation kinds the rule blocks carry: grants, stat additions, and
// modifications. Directive order within a rule block is preserved as an
// ordinal, since consumers apply rules in sequence.
package rulegraph

import (
	"encoding/xml"
	"fmt"
	"io"
	"os"
	"strings"

	"compendium/internal/store"
)

// Result is everything one extraction pass produces. Display names for refs
// are denormalized onto the edges themselves; the resolver's name-search
// fallback reads them back from the stored edge tables.
type Result struct {
	Grants        []store.Grant
	StatAdditions []store.StatAddition
	Modifications []store.Modification

	ElementsProcessed int
	Skipped           []error
}

type document struct {
	Elements []rulesElement `xml:"RulesElement"`
}

type rulesElement struct {
	InternalID string     `xml:"internal-id,attr"`
	Type       string     `xml:"type,attr"`
	Name       string     `xml:"name,attr"`
	Rules      *rulesNode `xml:"rules"`
}

type rulesNode struct {
	Directives []directive `xml:",any"`
}

type directive struct {
	XMLName xml.Name
	Attrs   []xml.Attr `xml:",any,attr"`
}

// attr returns a trimmed attribute value, matching the name
// case-insensitively: the export is inconsistent about attribute casing
// ("Field" vs "field", "Level" vs "level").
func (d directive) attr(name string) string {
	for _, a := range d.Attrs {
		if strings.EqualFold(a.Name.Local, name) {
			return strings.TrimSpace(a.Value)
		}
	}
	return ""
}

func ExtractFile(path string) (*Result, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening rules export: %w", err)
	}
	defer f.Close()
	return Extract(f)
}

// Extract parses the export and emits one edge per well-formed directive. A
// directive missing a required attribute is skipped and recorded; it never
// aborts its siblings or other elements.
func Extract(r io.Reader) (*Result, error) {
	var doc document
	if err := xml.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("parsing rules export: %w", err)
	}

	// First pass: ref -> display name for every authoring element, so grant
	// targets can carry a denormalized name.
	idToName := make(map[string]string, len(doc.Elements))
	for _, elem := range doc.Elements {
		id := strings.TrimSpace(elem.InternalID)
		name := strings.TrimSpace(elem.Name)
		if id != "" && name != "" {
			idToName[id] = name
		}
	}

	result := &Result{}
	for _, elem := range doc.Elements {
		result.extractElement(elem, idToName)
	}
	return result, nil
}

func (r *Result) extractElement(elem rulesElement, idToName map[string]string) {
	granterRef := strings.TrimSpace(elem.InternalID)
	granterType := strings.TrimSpace(elem.Type)
	granterName := strings.TrimSpace(elem.Name)

	if granterRef == "" || granterType == "" || elem.Rules == nil {
		return
	}
	r.ElementsProcessed++

	ordinal := 0
	for i, d := range elem.Rules.Directives {
		switch strings.ToLower(d.XMLName.Local) {
		case "grant":
			grantedRef := d.attr("name")
			grantedType := d.attr("type")
			if grantedRef == "" || grantedType == "" {
				r.skip(granterRef, i, "grant missing name or type")
				continue
			}
			r.Grants = append(r.Grants, store.Grant{
				GranterRef:  granterRef,
				GranterType: granterType,
				GranterName: granterName,
				GrantedRef:  grantedRef,
				GrantedType: grantedType,
				GrantedName: idToName[grantedRef],
				Requires:    d.attr("requires"),
				Level:       d.attr("Level"),
				Ordinal:     ordinal,
			})
			ordinal++

		case "statadd":
			statName := d.attr("name")
			value := d.attr("value")
			if statName == "" || value == "" {
				r.skip(granterRef, i, "statadd missing name or value")
				continue
			}
			r.StatAdditions = append(r.StatAdditions, store.StatAddition{
				GranterRef:  granterRef,
				GranterType: granterType,
				GranterName: granterName,
				StatName:    statName,
				Value:       value,
				BonusType:   d.attr("type"),
				Requires:    d.attr("requires"),
				Ordinal:     ordinal,
			})
			ordinal++

		case "modify":
			targetName := d.attr("name")
			field := d.attr("Field")
			if targetName == "" || field == "" {
				r.skip(granterRef, i, "modify missing name or field")
				continue
			}
			r.Modifications = append(r.Modifications, store.Modification{
				GranterRef:   granterRef,
				GranterType:  granterType,
				GranterName:  granterName,
				TargetName:   targetName,
				TargetType:   d.attr("type"),
				Field:        field,
				Value:        d.attr("value"),
				ListAddition: d.attr("list-addition"),
				Requires:     d.attr("requires"),
				Ordinal:      ordinal,
			})
			ordinal++
		}
	}
}

func (r *Result) skip(granterRef string, directiveIdx int, reason string) {
	r.Skipped = append(r.Skipped, fmt.Errorf("extracting rules of %s: directive %d: %s", granterRef, directiveIdx, reason))
}
