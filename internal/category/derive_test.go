package category

import (
	"reflect"
	"testing"
)

func intPtr(n int) *int { return &n }

func TestParseLevel(t *testing.T) {
	tests := []struct {
		name string
		raw  any
		want *int
	}{
		{name: "plain string", raw: "12", want: intPtr(12)},
		{name: "leading numeral with suffix", raw: "5+", want: intPtr(5)},
		{name: "numeral in range text", raw: "11-20", want: intPtr(11)},
		{name: "list form second element", raw: []any{"5+", float64(5), float64(30)}, want: intPtr(5)},
		{name: "list form non-integral", raw: []any{"5+", float64(5.5)}, want: nil},
		{name: "short list", raw: []any{"5+"}, want: nil},
		{name: "integral float", raw: float64(7), want: intPtr(7)},
		{name: "no leading numeral", raw: "Heroic", want: nil},
		{name: "nil", raw: nil, want: nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseLevel(tt.raw)
			if (got == nil) != (tt.want == nil) {
				t.Fatalf("ParseLevel(%#v) = %v, want %v", tt.raw, got, tt.want)
			}
			if got != nil && *got != *tt.want {
				t.Fatalf("ParseLevel(%#v) = %d, want %d", tt.raw, *got, *tt.want)
			}
		})
	}
}

func TestUsageTier(t *testing.T) {
	tests := []struct {
		raw  string
		want string
	}{
		{raw: "At-Will Attack", want: "At-Will"},
		{raw: "atwill", want: "At-Will"},
		{raw: "Encounter (Special)", want: "Encounter"},
		{raw: "Enc.", want: "Encounter"},
		{raw: "Daily Utility", want: "Daily"},
		// Priority order: at-will wins even when later tiers also appear.
		{raw: "At-Will, replaces Daily", want: "At-Will"},
		{raw: "Passive", want: ""},
		{raw: "", want: ""},
	}
	for _, tt := range tests {
		if got := UsageTier(tt.raw); got != tt.want {
			t.Errorf("UsageTier(%q) = %q, want %q", tt.raw, got, tt.want)
		}
	}
}

func TestDefenseTargeted(t *testing.T) {
	tests := []struct {
		text string
		want string
	}{
		{text: "Strength vs. AC", want: "AC"},
		{text: "Wisdom vs Will", want: "Will"},
		{text: "Charisma vs. REFLEX; the target", want: "Reflex"},
		{text: "vs.Fortitude", want: "Fortitude"},
		{text: "no attack line here", want: ""},
	}
	for _, tt := range tests {
		if got := DefenseTargeted(tt.text); got != tt.want {
			t.Errorf("DefenseTargeted(%q) = %q, want %q", tt.text, got, tt.want)
		}
	}
}

func TestRangeInfo(t *testing.T) {
	tests := []struct {
		name      string
		text      string
		rangeType string
		value     *int
		areaType  string
		areaSize  *int
	}{
		{name: "melee weapon", text: "Melee weapon", rangeType: "Melee"},
		{name: "melee reach", text: "Melee 2", rangeType: "Melee", value: intPtr(2)},
		{name: "ranged", text: "Ranged 20", rangeType: "Ranged", value: intPtr(20)},
		{name: "close burst", text: "Close burst 5", rangeType: "Close", areaType: "burst", areaSize: intPtr(5)},
		{name: "area wall", text: "Area wall 8 within 10 squares", rangeType: "Area", areaType: "wall", areaSize: intPtr(8)},
		// Melee outranks an Area mention later in the text.
		{name: "priority", text: "Melee 1; Area burst 2 on a hit", rangeType: "Melee", value: intPtr(1)},
		{name: "none", text: "Personal", rangeType: ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rangeType, value, areaType, areaSize := RangeInfo(tt.text)
			if rangeType != tt.rangeType || areaType != tt.areaType {
				t.Fatalf("RangeInfo(%q) = (%q, %q), want (%q, %q)", tt.text, rangeType, areaType, tt.rangeType, tt.areaType)
			}
			if !intPtrEq(value, tt.value) || !intPtrEq(areaSize, tt.areaSize) {
				t.Fatalf("RangeInfo(%q) values = (%v, %v), want (%v, %v)", tt.text, value, areaSize, tt.value, tt.areaSize)
			}
		})
	}
}

func TestDamageTypes(t *testing.T) {
	types, hits := DamageTypes("Arcane, Fire, Implement, Psychic")
	if !reflect.DeepEqual(types, []string{"fire", "psychic"}) {
		t.Fatalf("unexpected types: %#v", types)
	}
	for _, hit := range hits {
		if hit.Source != "keyword" || hit.Confidence != ConfidenceHigh {
			t.Fatalf("keyword hits must be high confidence: %#v", hit)
		}
	}

	types, hits = DamageTypes("Martial, Weapon")
	if types != nil || hits != nil {
		t.Fatalf("expected no hits, got %#v / %#v", types, hits)
	}
}

func TestConditions(t *testing.T) {
	t.Run("phrase patterns", func(t *testing.T) {
		text := "Hit: 2d8 damage and the target is dazed (save ends). The target is knocked prone."
		conditions, hits := Conditions(text)
		if !reflect.DeepEqual(conditions, []string{"dazed", "prone"}) {
			t.Fatalf("unexpected conditions: %#v", conditions)
		}
		for _, hit := range hits {
			if hit.Source != "pattern" || hit.Confidence != ConfidenceMedium {
				t.Fatalf("pattern hits must be medium confidence: %#v", hit)
			}
		}
	})

	t.Run("repeated hits log each match, tag stored once", func(t *testing.T) {
		text := "target is stunned. The target is stunned (save ends)."
		conditions, hits := Conditions(text)
		if !reflect.DeepEqual(conditions, []string{"stunned"}) {
			t.Fatalf("unexpected conditions: %#v", conditions)
		}
		if len(hits) < 2 {
			t.Fatalf("expected every pattern hit logged, got %d", len(hits))
		}
		for _, hit := range hits {
			if hit.Value != "stunned" {
				t.Fatalf("unexpected hit value: %#v", hit)
			}
		}
	})

	t.Run("non-vocabulary words ignored", func(t *testing.T) {
		conditions, _ := Conditions("the target is pushed 3 squares")
		if conditions != nil {
			t.Fatalf("expected no conditions, got %#v", conditions)
		}
	})
}

func intPtrEq(a, b *int) bool {
	if (a == nil) != (b == nil) {
		return false
	}
	return a == nil || *a == *b
}
