// Package htmltext reduces the compendium's descriptive HTML bodies to plain
// text, used both for stored search text and as input to the field
// derivation rules.
package htmltext

import (
	"strings"

	"golang.org/x/net/html"
)

// Extract returns the text content of an HTML fragment with tags removed and
// runs of whitespace collapsed to single spaces. The tokenizer tolerates the
// malformed markup the scrape contains; script and style bodies are dropped.
func Extract(fragment string) string {
	if fragment == "" {
		return ""
	}

	var parts []string
	skipDepth := 0

	z := html.NewTokenizer(strings.NewReader(fragment))
	for {
		switch z.Next() {
		case html.ErrorToken:
			return strings.Join(parts, " ")
		case html.StartTagToken:
			name, _ := z.TagName()
			if isSkipped(string(name)) {
				skipDepth++
			}
		case html.EndTagToken:
			name, _ := z.TagName()
			if isSkipped(string(name)) && skipDepth > 0 {
				skipDepth--
			}
		case html.TextToken:
			if skipDepth > 0 {
				continue
			}
			text := strings.TrimSpace(string(z.Text()))
			if text == "" {
				continue
			}
			parts = append(parts, strings.Join(strings.Fields(text), " "))
		}
	}
}

func isSkipped(tag string) bool {
	return tag == "script" || tag == "style"
}
