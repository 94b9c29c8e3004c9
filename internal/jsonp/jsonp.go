// Package jsonp repairs and decodes the callback-wrapped payloads the
// compendium scrape produces. The payloads are JSON in spirit only: trailing
// commas and invalid escape sequences are common, so decoding is strict-first
// with a repair-and-retry fallback. A unit that still fails to decode yields
// ErrNoData rather than aborting the run.
package jsonp

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
)

var ErrNoData = errors.New("no parseable payload")

var (
	trailingCommaRe = regexp.MustCompile(`,(\s*[}\]])`)
	invalidEscapeRe = regexp.MustCompile(`\\([^"\\/bfnrtu])`)
)

// Args isolates the argument text of a callback-wrapped unit, i.e. everything
// between the first '(' and the last ')'. A leading BOM is tolerated.
func Args(content string) (string, error) {
	content = strings.TrimSpace(strings.TrimPrefix(content, "\uFEFF"))

	start := strings.Index(content, "(")
	if start == -1 {
		return "", fmt.Errorf("isolating callback arguments: %w", ErrNoData)
	}
	end := strings.LastIndex(content, ")")
	if end == -1 || end < start {
		return "", fmt.Errorf("isolating callback arguments: %w", ErrNoData)
	}
	return content[start+1 : end], nil
}

// Repair rewrites the common malformations: a trailing comma before a closing
// bracket is dropped, and a backslash followed by a letter that is not a valid
// JSON escape becomes a literal backslash plus that letter.
func Repair(s string) string {
	s = trailingCommaRe.ReplaceAllString(s, "$1")
	s = invalidEscapeRe.ReplaceAllString(s, `\\$1`)
	return s
}

// Decode parses a JSON fragment into an untyped tree, strictly first and via
// Repair on failure.
func Decode(s string) (any, error) {
	var v any
	if err := json.Unmarshal([]byte(s), &v); err == nil {
		return v, nil
	}
	if err := json.Unmarshal([]byte(Repair(s)), &v); err != nil {
		return nil, fmt.Errorf("decoding payload: %w", ErrNoData)
	}
	return v, nil
}

// Object returns the trailing map payload of a unit. Used for the catalog,
// batch HTML bodies, per-category search indexes, and the global name index,
// all of which share the shape callback(timestamp, ..., {object}).
func Object(content string) (map[string]any, error) {
	args, err := Args(content)
	if err != nil {
		return nil, err
	}
	start := strings.Index(args, "{")
	if start == -1 {
		return nil, fmt.Errorf("locating object payload: %w", ErrNoData)
	}
	v, err := Decode(args[start:])
	if err != nil {
		return nil, err
	}
	m, ok := v.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("object payload is %T: %w", v, ErrNoData)
	}
	return m, nil
}

// Listing splits a listing unit into its column and row lists. The two lists
// share one argument region, so the boundary is found by matching bracket
// depth (column values may themselves contain brackets, and bracket
// characters inside string literals are skipped).
func Listing(content string) ([]string, [][]any, error) {
	args, err := Args(content)
	if err != nil {
		return nil, nil, err
	}

	start := strings.Index(args, "[")
	if start == -1 {
		return nil, nil, fmt.Errorf("locating column list: %w", ErrNoData)
	}
	rest := args[start:]

	columnsEnd := matchBracket(rest)
	if columnsEnd == -1 {
		return nil, nil, fmt.Errorf("unbalanced column list: %w", ErrNoData)
	}
	columnsPart := rest[:columnsEnd+1]

	remaining := rest[columnsEnd+1:]
	rowsStart := strings.Index(remaining, "[")
	if rowsStart == -1 {
		return nil, nil, fmt.Errorf("locating row list: %w", ErrNoData)
	}
	rowsPart := remaining[rowsStart:]

	colsValue, err := Decode(columnsPart)
	if err != nil {
		return nil, nil, err
	}
	rowsValue, err := Decode(rowsPart)
	if err != nil {
		return nil, nil, err
	}

	columns, err := stringList(colsValue)
	if err != nil {
		return nil, nil, err
	}

	rawRows, ok := rowsValue.([]any)
	if !ok {
		return nil, nil, fmt.Errorf("row payload is %T: %w", rowsValue, ErrNoData)
	}
	rows := make([][]any, 0, len(rawRows))
	for _, raw := range rawRows {
		row, ok := raw.([]any)
		if !ok {
			continue
		}
		rows = append(rows, row)
	}

	return columns, rows, nil
}

// matchBracket returns the index of the ']' closing the '[' that opens s, or
// -1 if the brackets never balance. Bracket characters inside double-quoted
// strings do not count toward the depth.
func matchBracket(s string) int {
	depth := 0
	inString := false
	escaped := false
	for i := 0; i < len(s); i++ {
		ch := s[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case ch == '\\':
				escaped = true
			case ch == '"':
				inString = false
			}
			continue
		}
		switch ch {
		case '"':
			inString = true
		case '[':
			depth++
		case ']':
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}

// Display normalizes a scalar-or-list cell value to its display string. A
// list form like ["360+ gp", 360, 225000] yields its first element.
func Display(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case []any:
		if len(t) == 0 {
			return ""
		}
		return Display(t[0])
	case float64:
		if t == math.Trunc(t) {
			return strconv.FormatInt(int64(t), 10)
		}
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	default:
		return fmt.Sprintf("%v", t)
	}
}

func stringList(v any) ([]string, error) {
	raw, ok := v.([]any)
	if !ok {
		return nil, fmt.Errorf("column payload is %T: %w", v, ErrNoData)
	}
	out := make([]string, 0, len(raw))
	for _, item := range raw {
		s, ok := item.(string)
		if !ok {
			return nil, fmt.Errorf("non-string column name: %w", ErrNoData)
		}
		out = append(out, s)
	}
	return out, nil
}
