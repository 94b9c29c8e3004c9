package sqlite

import (
	"context"
	"fmt"
	"strings"

	"compendium/internal/store"
)

func (c *Client) Search(ctx context.Context, query, cat string) ([]store.SearchResult, error) {
	if strings.TrimSpace(query) == "" {
		return nil, fmt.Errorf("query must not be empty")
	}

	var rows []struct {
		Category string `db:"category"`
		EntryID  string `db:"entry_id"`
		Name     string `db:"name"`
		Snippet  string `db:"snippet"`
	}
	fts := toFTSQuery(query)
	if err := c.selectAll(ctx, &rows, "search", fts, cat, cat); err != nil {
		return nil, err
	}

	results := make([]store.SearchResult, 0, len(rows))
	for _, r := range rows {
		results = append(results, store.SearchResult{
			Category: r.Category,
			ID:       r.EntryID,
			Name:     r.Name,
			Snippet:  r.Snippet,
		})
	}
	return results, nil
}

// toFTSQuery turns a loose user query into FTS5 syntax: quoted phrases pass
// through, a leading '-' negates a term, everything else is AND-joined.
// Bare terms are quoted so punctuation cannot break the match expression.
// FTS5's NOT is binary, so negated terms trail the expression as
// `... NOT "term"` clauses rather than joining with AND.
func toFTSQuery(query string) string {
	var include []string
	var exclude []string
	for _, token := range tokenize(query) {
		if !token.phrase && strings.HasPrefix(token.text, "-") && len(token.text) > 1 {
			exclude = append(exclude, quoteTerm(token.text[1:]))
			continue
		}
		include = append(include, quoteTerm(token.text))
	}
	// A negation needs a left operand; with nothing to include, the first
	// excluded term is searched for instead.
	if len(include) == 0 && len(exclude) > 0 {
		include, exclude = exclude[:1], exclude[1:]
	}
	expr := strings.Join(include, " AND ")
	for _, term := range exclude {
		expr += " NOT " + term
	}
	return expr
}

func quoteTerm(text string) string {
	return `"` + strings.ReplaceAll(text, `"`, `""`) + `"`
}

type token struct {
	text   string
	phrase bool
}

func tokenize(query string) []token {
	var tokens []token
	var current strings.Builder
	inQuote := false

	flush := func(phrase bool) {
		if current.Len() == 0 {
			return
		}
		tokens = append(tokens, token{text: current.String(), phrase: phrase})
		current.Reset()
	}

	for _, ch := range query {
		switch {
		case ch == '"':
			flush(inQuote)
			inQuote = !inQuote
		case !inQuote && (ch == ' ' || ch == '\t'):
			flush(false)
		default:
			current.WriteRune(ch)
		}
	}
	flush(inQuote)
	return tokens
}
