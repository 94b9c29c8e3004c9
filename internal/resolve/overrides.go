package resolve

import (
	"bufio"
	"fmt"
	"os"
	"strings"
)

// LoadOverrides reads the manual mapping file: one "external_ref,entry_id"
// pair per line, a header line starting with "xml_id" tolerated. A missing
// file is not an error; manual mappings are optional.
func LoadOverrides(path string) (map[string]string, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]string{}, nil
		}
		return nil, fmt.Errorf("opening manual mappings: %w", err)
	}
	defer f.Close()

	overrides := make(map[string]string)
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "xml_id") {
			continue
		}
		ref, id, ok := strings.Cut(line, ",")
		if !ok {
			continue
		}
		ref, id = strings.TrimSpace(ref), strings.TrimSpace(id)
		if ref != "" && id != "" {
			overrides[ref] = id
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("reading manual mappings: %w", err)
	}
	return overrides, nil
}
