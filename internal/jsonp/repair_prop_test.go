package jsonp

import (
	"encoding/json"
	"reflect"
	"strings"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

// Property tests for the repair path: well-formed payloads must round-trip
// unchanged, and the specific malformations Repair targets must decode to the
// same tree as their well-formed originals.
func TestRepairProperties(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	alphaMap := gen.MapOf(gen.AlphaString(), gen.AlphaString())

	properties.Property("strict payloads decode unchanged", prop.ForAll(
		func(m map[string]string) bool {
			data, err := json.Marshal(m)
			if err != nil {
				return false
			}
			v, err := Decode(string(data))
			if err != nil {
				return false
			}
			got, ok := v.(map[string]any)
			if !ok || len(got) != len(m) {
				return false
			}
			for k, want := range m {
				if got[k] != want {
					return false
				}
			}
			return true
		},
		alphaMap,
	))

	properties.Property("trailing comma before close decodes to the clean tree", prop.ForAll(
		func(m map[string]string) bool {
			if len(m) == 0 {
				return true
			}
			data, err := json.Marshal(m)
			if err != nil {
				return false
			}
			clean, err := Decode(string(data))
			if err != nil {
				return false
			}
			mangled := strings.TrimSuffix(string(data), "}") + ",}"
			repaired, err := Decode(mangled)
			if err != nil {
				return false
			}
			return reflect.DeepEqual(clean, repaired)
		},
		alphaMap,
	))

	properties.Property("repair leaves strict payloads untouched", prop.ForAll(
		func(m map[string]string) bool {
			data, err := json.Marshal(m)
			if err != nil {
				return false
			}
			return Repair(string(data)) == string(data)
		},
		alphaMap,
	))

	properties.TestingRun(t)
}
