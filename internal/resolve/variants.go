package resolve

import (
	"regexp"
	"strings"
)

// The canonical store and the rule-authoring export disagree about names in
// predictable ways: the export decorates names with tier and type suffixes,
// enhancement bonuses, parenthetical qualifiers, and compound words the store
// splits or drops. Variants generates lowercased search keys in a fixed
// order, the raw name first and progressively more normalized forms after,
// deduplicated, each meant to be tried in full before the next.

var (
	parenSuffixRe   = regexp.MustCompile(`\s*\([^)]*\)\s*$`)
	bracketSuffixRe = regexp.MustCompile(`\s*\[[^\]]*\]\s*$`)
	plusSuffixRe    = regexp.MustCompile(`\s*\+\d+\s*$`)
	camelBoundaryRe = regexp.MustCompile(`([a-z])([A-Z])`)
	whitespaceRe    = regexp.MustCompile(`\s+`)

	attackSuffixRe    = regexp.MustCompile(`(?i)\s+attack\s*$`)
	secondaryPowerRe  = regexp.MustCompile(`(?i)\s+secondary\s+power\s*$`)
	secondaryAttackRe = regexp.MustCompile(`(?i)\s+secondary\s+attack\s*$`)
)

// Trailing generic type words the canonical store tends to omit.
var typeSuffixRes = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\s+attack\s*$`),
	regexp.MustCompile(`(?i)\s+power\s*$`),
	regexp.MustCompile(`(?i)\s+\(daily\)\s*$`),
	regexp.MustCompile(`(?i)\s+\(encounter\)\s*$`),
	regexp.MustCompile(`(?i)\s+flight\s*$`),
	regexp.MustCompile(`(?i)\s+teleport\s*$`),
	regexp.MustCompile(`(?i)\s+strike\s*$`),
	regexp.MustCompile(`(?i)\s+buffet\s*$`),
}

var tierWordRes = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\bepic\b`),
	regexp.MustCompile(`(?i)\bheroic\b`),
	regexp.MustCompile(`(?i)\bparagon\b`),
}

var equipmentSuffixRes = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\s+armor\s*$`),
	regexp.MustCompile(`(?i)\s+weapon\s*$`),
	regexp.MustCompile(`(?i)\s+shield\s*$`),
	regexp.MustCompile(`(?i)\s+ring\s*$`),
	regexp.MustCompile(`(?i)\s+boots\s*$`),
	regexp.MustCompile(`(?i)\s+cloak\s*$`),
}

var implementSuffixRes = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\s+rod\s*$`),
	regexp.MustCompile(`(?i)\s+staff\s*$`),
	regexp.MustCompile(`(?i)\s+orb\s*$`),
	regexp.MustCompile(`(?i)\s+wand\s*$`),
}

// compoundWords are equipment substrings the export sometimes fuses into one
// word ("soulsword" for "soul sword").
var compoundWords = []string{"sword", "blade", "armor", "shield", "weapon", "staff", "rod", "orb", "cloak"}

// implementTypes are the concrete implements substituted for a generic
// trailing "Implement" qualifier.
var implementTypes = []string{"orb", "rod", "staff", "wand", "tome", "totem", "holy symbol", "ki focus"}

// Variants returns the ordered, deduplicated list of lowercased name keys to
// try against the name index. Empty input yields no variants.
func Variants(name string) []string {
	s := strings.ToLower(strings.TrimSpace(name))
	if s == "" {
		return nil
	}

	seen := map[string]struct{}{s: {}}
	variants := []string{s}
	add := func(v string) {
		v = strings.TrimSpace(whitespaceRe.ReplaceAllString(v, " "))
		if v == "" {
			return
		}
		if _, ok := seen[v]; ok {
			return
		}
		seen[v] = struct{}{}
		variants = append(variants, v)
	}

	// Parenthetical and bracketed qualifiers: "(heroic tier)", "[Attack Technique]".
	base := strings.TrimSpace(parenSuffixRe.ReplaceAllString(s, ""))
	add(base)
	add(bracketSuffixRe.ReplaceAllString(s, ""))
	add(bracketSuffixRe.ReplaceAllString(base, ""))

	// Enhancement bonus: "Black Iron Armor +2".
	add(plusSuffixRe.ReplaceAllString(base, ""))
	add(plusSuffixRe.ReplaceAllString(s, ""))

	// Camel-case split on the original casing: "SoulSword" -> "soul sword".
	spaced := strings.ToLower(camelBoundaryRe.ReplaceAllString(strings.TrimSpace(name), "$1 $2"))
	add(spaced)
	if spaced != base {
		add(parenSuffixRe.ReplaceAllString(spaced, ""))
	}

	// Fused compound: "soulsword" -> "soul sword".
	for _, word := range compoundWords {
		if !strings.Contains(s, word) {
			continue
		}
		if strings.Contains(s, " "+word) || strings.Contains(s, word+" ") {
			continue
		}
		if idx := strings.Index(s, word); idx > 0 {
			add(s[:idx] + " " + s[idx:])
		}
	}

	// Trailing generic type words the store drops.
	for _, re := range typeSuffixRes {
		add(re.ReplaceAllString(s, ""))
	}

	// "X Attack" secondary powers usually belong to "Form of the X".
	attackStripped := strings.TrimSpace(attackSuffixRe.ReplaceAllString(s, ""))
	if attackStripped != s && !strings.HasPrefix(attackStripped, "form of") {
		add("form of the " + attackStripped)
		add("form of " + attackStripped)
	}

	// Tier words anywhere: "Wayfinder Epic Badge" -> "wayfinder badge".
	for _, re := range tierWordRes {
		add(re.ReplaceAllString(s, ""))
	}

	// Equipment type suffixes: "Anakore Armor" is stored as just "Anakore".
	basePlain := strings.TrimSpace(plusSuffixRe.ReplaceAllString(s, ""))
	for _, re := range equipmentSuffixRes {
		add(re.ReplaceAllString(s, ""))
		add(re.ReplaceAllString(basePlain, ""))
	}

	add(secondaryPowerRe.ReplaceAllString(s, ""))
	add(secondaryAttackRe.ReplaceAllString(s, ""))

	// "X Form Y Attack" truncates to "X form".
	if idx := strings.Index(s, " form "); idx != -1 {
		add(s[:idx] + " form")
	}

	// Implement type suffixes: "Chaos Shard Rod +1" -> "chaos shard".
	for _, re := range implementSuffixRes {
		add(re.ReplaceAllString(s, ""))
		add(re.ReplaceAllString(basePlain, ""))
	}

	// "X - Y" compounds keep the full name minus the bonus; the index often
	// holds only the head word, but the category tables hold the full name.
	if strings.Contains(s, " - ") {
		add(basePlain)
	}

	// Generic "Implement" qualifier: one store entry exists per concrete type.
	if strings.HasSuffix(basePlain, " implement") {
		prefix := strings.TrimSpace(strings.TrimSuffix(basePlain, " implement"))
		for _, impl := range implementTypes {
			add(prefix + " " + impl)
		}
	}

	return variants
}
