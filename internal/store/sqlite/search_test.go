package sqlite

import (
	"testing"
)

func TestToFTSQuery(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "simple term",
			input:    "dragon",
			expected: `"dragon"`,
		},
		{
			name:     "multiple terms",
			input:    "fire breath",
			expected: `"fire" AND "breath"`,
		},
		{
			name:     "negation trails the expression",
			input:    "dragon -undead",
			expected: `"dragon" NOT "undead"`,
		},
		{
			name:     "negation between terms",
			input:    "fire -cold breath",
			expected: `"fire" AND "breath" NOT "cold"`,
		},
		{
			name:     "multiple negations",
			input:    "dragon -undead -construct",
			expected: `"dragon" NOT "undead" NOT "construct"`,
		},
		{
			name:     "phrase",
			input:    `"twin strike"`,
			expected: `"twin strike"`,
		},
		{
			name:     "phrase with term",
			input:    `"twin strike" ranger`,
			expected: `"twin strike" AND "ranger"`,
		},
		{
			name:     "punctuation stays quoted",
			input:    "black-iron",
			expected: `"black-iron"`,
		},
		{
			name:     "leading negation cannot stand alone",
			input:    "-undead",
			expected: `"undead"`,
		},
		{
			name:     "only negations",
			input:    "-undead -construct",
			expected: `"undead" NOT "construct"`,
		},
		{
			name:     "embedded quote escaped",
			input:    `foot"s`,
			expected: `"foot" AND "s"`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := toFTSQuery(tt.input); got != tt.expected {
				t.Errorf("toFTSQuery(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}
