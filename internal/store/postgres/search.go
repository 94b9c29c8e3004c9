package postgres

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

	sql := `
SELECT category, entry_id, name,
    CASE WHEN body <> '' THEN
        ts_headline('english', body, websearch_to_tsquery('english', $1),
            'MaxFragments=2, MaxWords=40, MinWords=20, StartSel=**, StopSel=**')
    ELSE '' END AS snippet
FROM search_docs
WHERE search_vector @@ websearch_to_tsquery('english', $1)
  AND ($2 = '' OR category = $2)
ORDER BY ts_rank(search_vector, websearch_to_tsquery('english', $1)) DESC, name ASC
LIMIT 50
`

	rows, err := c.pool.Query(ctx, sql, query, cat)
	if err != nil {
		return nil, fmt.Errorf("searching entries: %w", err)
	}
	defer rows.Close()

	var results []store.SearchResult
	for rows.Next() {
		var r store.SearchResult
		if err := rows.Scan(&r.Category, &r.ID, &r.Name, &r.Snippet); err != nil {
			return nil, fmt.Errorf("scanning search result: %w", err)
		}
		results = append(results, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating search results: %w", err)
	}
	return results, nil
}
