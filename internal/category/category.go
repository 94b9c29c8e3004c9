// Package category normalizes the per-category listing records into uniform
// canonical entries, deriving typed fields with per-extraction confidence
// logging.
package category

import "strings"

// Column maps one declared listing column to a stored field key. Index is the
// positional fallback used when an export renames or drops the column header.
type Column struct {
	Name  string
	Index int
	Field string
}

// Category is one kind of compendium entry. Table is the relation the store
// keeps for it; entry ids are formed as Name + numeric suffix.
type Category struct {
	Name    string
	Table   string
	Columns []Column
}

// All lists every category in fixed processing order. The set is closed: the
// scrape produces exactly these twenty.
var All = []Category{
	{Name: "power", Table: "powers", Columns: cols("ClassName:class_name", "Level:level", "Type:type", "Action:action", "Keywords:keywords", "SourceBook:source_book")},
	{Name: "feat", Table: "feats", Columns: cols("Tier:tier", "Prerequisite:prerequisite", "SourceBook:source_book")},
	{Name: "monster", Table: "monsters", Columns: cols("Level:level", "CombatRole:combat_role", "GroupRole:group_role", "Size:size", "CreatureType:creature_type", "SourceBook:source_book")},
	{Name: "item", Table: "items", Columns: cols("Category:category", "Type:type", "Level:level", "Cost:cost", "Rarity:rarity", "SourceBook:source_book")},
	{Name: "ritual", Table: "rituals", Columns: cols("Level:level", "ComponentCost:component_cost", "Price:price", "KeySkillDescription:key_skill", "SourceBook:source_book")},
	{Name: "class", Table: "classes", Columns: cols("RoleName:role", "PowerSourceText:power_source", "KeyAbilities:key_abilities", "SourceBook:source_book")},
	{Name: "race", Table: "races", Columns: cols("Origin:origin", "DescriptionAttribute:description", "Size:size", "SourceBook:source_book")},
	{Name: "paragonpath", Table: "paragon_paths", Columns: cols("Prerequisite:prerequisite", "SourceBook:source_book")},
	{Name: "epicdestiny", Table: "epic_destinies", Columns: cols("Prerequisite:prerequisite", "SourceBook:source_book")},
	{Name: "theme", Table: "themes", Columns: cols("Prerequisite:prerequisite", "SourceBook:source_book")},
	{Name: "background", Table: "backgrounds", Columns: cols("Type:type", "Campaign:campaign", "Skills:skills", "SourceBook:source_book")},
	{Name: "armor", Table: "armor", Columns: cols("Type:type", "ArmorBonus:armor_bonus", "MinEnhancementBonus:min_enhancement_bonus", "Check:armor_check", "Speed:speed", "Price:price", "Weight:weight", "SourceBook:source_book")},
	{Name: "weapon", Table: "weapons", Columns: cols("WeaponCategory:weapon_category", "HandsRequired:hands_required", "ProficiencyBonus:proficiency_bonus", "Damage:damage", "Range:range", "Price:price", "Weight:weight", "Group:weapon_group", "Properties:properties", "SourceBook:source_book")},
	{Name: "implement", Table: "implements", Columns: cols("SourceBook:source_book")},
	{Name: "trap", Table: "traps", Columns: cols("Type:type", "Level:level", "Role:role", "XP:xp", "SourceBook:source_book")},
	{Name: "disease", Table: "diseases", Columns: cols("Level:level", "SourceBook:source_book")},
	{Name: "poison", Table: "poisons", Columns: cols("Level:level", "Cost:cost", "SourceBook:source_book")},
	{Name: "deity", Table: "deities", Columns: cols("Alignment:alignment", "SourceBook:source_book")},
	{Name: "companion", Table: "companions", Columns: cols("Type:type", "SourceBook:source_book")},
	{Name: "glossary", Table: "glossary", Columns: cols("Category:category", "Type:type", "SourceBook:source_book")},
}

// cols expands "Name:field" specs into Columns. Positions 0 and 1 of every
// listing are ID and Name, so declared columns start at index 2.
func cols(specs ...string) []Column {
	out := make([]Column, 0, len(specs))
	for i, spec := range specs {
		name, field, _ := strings.Cut(spec, ":")
		out = append(out, Column{Name: name, Index: i + 2, Field: field})
	}
	return out
}

func ByName(name string) (Category, bool) {
	for _, c := range All {
		if c.Name == name {
			return c, true
		}
	}
	return Category{}, false
}

// Of returns the category owning a canonical id, determined by its longest
// matching category-name prefix ("paragonpath3" is a paragonpath, not a
// hypothetical "par"). Returns false when no category prefix matches.
func Of(id string) (Category, bool) {
	var best Category
	found := false
	for _, c := range All {
		if strings.HasPrefix(id, c.Name) && len(id) > len(c.Name) {
			if !found || len(c.Name) > len(best.Name) {
				best = c
				found = true
			}
		}
	}
	return best, found
}
