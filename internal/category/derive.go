package category

import (
	"regexp"
	"sort"
	"strconv"
	"strings"
)

// Confidence tiers for derived fields. High means the value came from a
// structured field or an unambiguous pattern; medium means a phrase heuristic
// that warrants review.
const (
	ConfidenceHigh   = "high"
	ConfidenceMedium = "medium"
)

// TagHit is one vocabulary match, logged alongside the tag it produced.
type TagHit struct {
	Value      string
	Source     string
	Confidence string
}

var damageTypeVocab = map[string]struct{}{
	"fire": {}, "cold": {}, "lightning": {}, "thunder": {}, "radiant": {},
	"necrotic": {}, "psychic": {}, "poison": {}, "acid": {}, "force": {},
}

var conditionVocab = map[string]struct{}{
	"dazed": {}, "stunned": {}, "prone": {}, "immobilized": {}, "slowed": {},
	"dominated": {}, "blinded": {}, "deafened": {}, "weakened": {},
	"petrified": {}, "unconscious": {}, "restrained": {}, "grabbed": {},
	"marked": {}, "surprised": {}, "helpless": {}, "dying": {}, "dead": {},
	"bloodied": {},
}

var (
	leadingIntRe = regexp.MustCompile(`^(\d+)`)
	defenseRe    = regexp.MustCompile(`(?i)vs\.?\s*(AC|Fortitude|Reflex|Will)`)
	meleeRe      = regexp.MustCompile(`(?i)\bMelee\b`)
	meleeValRe   = regexp.MustCompile(`Melee\s+(\d+)`)
	rangedRe     = regexp.MustCompile(`(?i)\bRanged\b`)
	rangedValRe  = regexp.MustCompile(`Ranged\s+(\d+)`)
	closeRe      = regexp.MustCompile(`(?i)\bClose\b`)
	closeAreaRe  = regexp.MustCompile(`(?i)Close\s+(burst|blast)\s+(\d+)`)
	areaRe       = regexp.MustCompile(`(?i)\bArea\b`)
	areaShapeRe  = regexp.MustCompile(`(?i)Area\s+(burst|blast|wall)\s+(\d+)`)
)

var conditionPatterns = []*regexp.Regexp{
	regexp.MustCompile(`target is (\w+)`),
	regexp.MustCompile(`targets? (?:are|is) (\w+)`),
	regexp.MustCompile(`(\w+) \(save ends\)`),
	regexp.MustCompile(`and (?:is |the target is )?(\w+)`),
	regexp.MustCompile(`knocked (\w+)`),
}

// ParseLevel derives an integer level from a raw listing cell: a leading
// numeral in string form, or the second element of a list form like
// ["5+", 5, 30] when integral. Anything else is nil.
func ParseLevel(raw any) *int {
	switch v := raw.(type) {
	case nil:
		return nil
	case float64:
		return intIfIntegral(v)
	case []any:
		if len(v) >= 2 {
			if f, ok := v[1].(float64); ok {
				return intIfIntegral(f)
			}
		}
		return nil
	case string:
		if m := leadingIntRe.FindStringSubmatch(strings.TrimSpace(v)); m != nil {
			n, err := strconv.Atoi(m[1])
			if err == nil {
				return &n
			}
		}
		return nil
	default:
		return nil
	}
}

// UsageTier classifies a power's raw type text into its usage tier by
// case-insensitive substring match, first match in fixed priority order.
func UsageTier(typeRaw string) string {
	t := strings.ToLower(typeRaw)
	switch {
	case strings.Contains(t, "at-will") || strings.Contains(t, "atwill"):
		return "At-Will"
	case strings.Contains(t, "enc"):
		return "Encounter"
	case strings.Contains(t, "daily"):
		return "Daily"
	default:
		return ""
	}
}

// DefenseTargeted extracts the defense an attack targets from descriptive
// text, case-normalized against the closed four-defense set.
func DefenseTargeted(text string) string {
	m := defenseRe.FindStringSubmatch(text)
	if m == nil {
		return ""
	}
	defense := m[1]
	if strings.EqualFold(defense, "ac") {
		return "AC"
	}
	return strings.ToUpper(defense[:1]) + strings.ToLower(defense[1:])
}

// RangeInfo extracts the range shape from descriptive text with fixed keyword
// priority: melee > ranged > close > area. Close and area shapes additionally
// carry a shape word and an integer size.
func RangeInfo(text string) (rangeType string, rangeValue *int, areaType string, areaSize *int) {
	switch {
	case meleeRe.MatchString(text):
		rangeType = "Melee"
		if m := meleeValRe.FindStringSubmatch(text); m != nil {
			rangeValue = atoiPtr(m[1])
		}
	case rangedRe.MatchString(text):
		rangeType = "Ranged"
		if m := rangedValRe.FindStringSubmatch(text); m != nil {
			rangeValue = atoiPtr(m[1])
		}
	case closeRe.MatchString(text):
		rangeType = "Close"
		if m := closeAreaRe.FindStringSubmatch(text); m != nil {
			areaType = strings.ToLower(m[1])
			areaSize = atoiPtr(m[2])
		}
	case areaRe.MatchString(text):
		rangeType = "Area"
		if m := areaShapeRe.FindStringSubmatch(text); m != nil {
			areaType = strings.ToLower(m[1])
			areaSize = atoiPtr(m[2])
		}
	}
	return rangeType, rangeValue, areaType, areaSize
}

// DamageTypes scans the structured keyword text for the damage-type
// vocabulary. Keyword hits are high confidence.
func DamageTypes(keywordsRaw string) ([]string, []TagHit) {
	if keywordsRaw == "" {
		return nil, nil
	}
	found := make(map[string]struct{})
	var hits []TagHit
	lower := strings.ToLower(keywordsRaw)
	for dt := range damageTypeVocab {
		if strings.Contains(lower, dt) {
			if _, seen := found[dt]; !seen {
				found[dt] = struct{}{}
				hits = append(hits, TagHit{Value: dt, Source: "keyword", Confidence: ConfidenceHigh})
			}
		}
	}
	return sortedKeys(found), sortHits(hits)
}

// Conditions scans descriptive text for inflicted conditions using the
// high-precision phrase patterns. Phrase hits are medium confidence. Every
// pattern hit is logged; only the tag set is deduplicated.
func Conditions(text string) ([]string, []TagHit) {
	if text == "" {
		return nil, nil
	}
	lower := strings.ToLower(text)
	found := make(map[string]struct{})
	var hits []TagHit
	for _, pattern := range conditionPatterns {
		for _, m := range pattern.FindAllStringSubmatch(lower, -1) {
			word := m[1]
			if _, ok := conditionVocab[word]; !ok {
				continue
			}
			found[word] = struct{}{}
			hits = append(hits, TagHit{Value: word, Source: "pattern", Confidence: ConfidenceMedium})
		}
	}
	return sortedKeys(found), sortHits(hits)
}

func intIfIntegral(f float64) *int {
	n := int(f)
	if float64(n) != f {
		return nil
	}
	return &n
}

func atoiPtr(s string) *int {
	n, err := strconv.Atoi(s)
	if err != nil {
		return nil
	}
	return &n
}

func sortedKeys(set map[string]struct{}) []string {
	if len(set) == 0 {
		return nil
	}
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func sortHits(hits []TagHit) []TagHit {
	sort.Slice(hits, func(i, j int) bool { return hits[i].Value < hits[j].Value })
	return hits
}
