package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"compendium/internal/category"
	"compendium/internal/store"
)

func tableFor(cat string) (string, error) {
	c, ok := category.ByName(cat)
	if !ok {
		return "", fmt.Errorf("unknown category %q", cat)
	}
	return c.Table, nil
}

func (c *Client) PutEntry(ctx context.Context, e store.Entry) error {
	table, err := tableFor(e.Category)
	if err != nil {
		return err
	}

	fieldsJSON, err := json.Marshal(e.Fields)
	if err != nil {
		return fmt.Errorf("marshaling fields: %w", err)
	}

	query := fmt.Sprintf(`
INSERT INTO %q (id, name, fields, level, usage, defense_targeted, range_type, range_value, area_type, area_size, html_body, search_text)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
ON CONFLICT (id) DO UPDATE SET
	name = EXCLUDED.name,
	fields = EXCLUDED.fields,
	level = EXCLUDED.level,
	usage = EXCLUDED.usage,
	defense_targeted = EXCLUDED.defense_targeted,
	range_type = EXCLUDED.range_type,
	range_value = EXCLUDED.range_value,
	area_type = EXCLUDED.area_type,
	area_size = EXCLUDED.area_size,
	html_body = EXCLUDED.html_body,
	search_text = EXCLUDED.search_text
`, table)

	_, err = c.pool.Exec(ctx, query,
		e.ID, e.Name, string(fieldsJSON), e.Level, e.Usage, e.Defense,
		e.RangeType, e.RangeValue, e.AreaType, e.AreaSize, e.HTMLBody, e.SearchText,
	)
	if err != nil {
		return fmt.Errorf("upserting %s entry: %w", e.Category, err)
	}

	for table, tags := range map[string][]string{
		"keywords":     e.Keywords,
		"damage_types": e.DamageTypes,
		"conditions":   e.Conditions,
	} {
		if err := c.putTags(ctx, e.Category, e.ID, table, tags); err != nil {
			return err
		}
	}

	_, err = c.pool.Exec(ctx, `
INSERT INTO search_docs (category, entry_id, name, body) VALUES ($1, $2, $3, $4)
ON CONFLICT (category, entry_id) DO UPDATE SET name = EXCLUDED.name, body = EXCLUDED.body
`, e.Category, e.ID, e.Name, e.SearchText)
	if err != nil {
		return fmt.Errorf("upserting search doc: %w", err)
	}
	return nil
}

func (c *Client) putTags(ctx context.Context, cat, id, table string, tags []string) error {
	del := fmt.Sprintf("DELETE FROM %q WHERE category = $1 AND entry_id = $2", table)
	if _, err := c.pool.Exec(ctx, del, cat, id); err != nil {
		return fmt.Errorf("clearing %s: %w", table, err)
	}
	ins := fmt.Sprintf("INSERT INTO %q (category, entry_id, tag) VALUES ($1, $2, $3) ON CONFLICT DO NOTHING", table)
	for _, tag := range tags {
		if _, err := c.pool.Exec(ctx, ins, cat, id, tag); err != nil {
			return fmt.Errorf("inserting %s: %w", table, err)
		}
	}
	return nil
}

func (c *Client) PutNameIndex(ctx context.Context, nameLower, entryID string) error {
	_, err := c.pool.Exec(ctx,
		"INSERT INTO name_index (name_lower, entry_id) VALUES ($1, $2) ON CONFLICT DO NOTHING",
		nameLower, entryID)
	if err != nil {
		return fmt.Errorf("inserting name index: %w", err)
	}
	return nil
}

func (c *Client) AppendParseLog(ctx context.Context, entries []store.ParseLogEntry) error {
	for _, e := range entries {
		_, err := c.pool.Exec(ctx, `
INSERT INTO _parse_log (category, entry_id, field, value, source, confidence)
VALUES ($1, $2, $3, $4, $5, $6)`,
			e.Category, e.EntryID, e.Field, e.Value, e.Source, e.Confidence)
		if err != nil {
			return fmt.Errorf("appending parse log: %w", err)
		}
	}
	return nil
}

func (c *Client) SetCategoryCount(ctx context.Context, cat string, count int) error {
	_, err := c.pool.Exec(ctx, `
INSERT INTO _categories (name, entry_count) VALUES ($1, $2)
ON CONFLICT (name) DO UPDATE SET entry_count = EXCLUDED.entry_count`, cat, count)
	if err != nil {
		return fmt.Errorf("setting category count: %w", err)
	}
	return nil
}

func (c *Client) SetMeta(ctx context.Context, key, value string) error {
	_, err := c.pool.Exec(ctx, `
INSERT INTO _meta (key, value) VALUES ($1, $2)
ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value`, key, value)
	if err != nil {
		return fmt.Errorf("setting meta: %w", err)
	}
	return nil
}

func (c *Client) CategoryIDs(ctx context.Context, cat string) (map[string]struct{}, error) {
	table, err := tableFor(cat)
	if err != nil {
		return nil, err
	}
	rows, err := c.pool.Query(ctx, fmt.Sprintf("SELECT id FROM %q", table))
	if err != nil {
		return nil, fmt.Errorf("listing %s ids: %w", cat, err)
	}
	defer rows.Close()

	out := make(map[string]struct{})
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scanning id: %w", err)
		}
		out[id] = struct{}{}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating ids: %w", err)
	}
	return out, nil
}

func (c *Client) NameIndex(ctx context.Context) (map[string][]string, error) {
	rows, err := c.pool.Query(ctx, "SELECT name_lower, entry_id FROM name_index")
	if err != nil {
		return nil, fmt.Errorf("loading name index: %w", err)
	}
	defer rows.Close()

	out := make(map[string][]string)
	for rows.Next() {
		var name, id string
		if err := rows.Scan(&name, &id); err != nil {
			return nil, fmt.Errorf("scanning name index row: %w", err)
		}
		out[name] = append(out[name], id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating name index: %w", err)
	}
	return out, nil
}

func (c *Client) IDsForName(ctx context.Context, nameLower string) ([]string, error) {
	rows, err := c.pool.Query(ctx,
		"SELECT entry_id FROM name_index WHERE name_lower = $1 ORDER BY entry_id", nameLower)
	if err != nil {
		return nil, fmt.Errorf("querying name index: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scanning entry id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating entry ids: %w", err)
	}
	return ids, nil
}

func (c *Client) EntryIDByName(ctx context.Context, cat, nameLower string) (string, error) {
	table, err := tableFor(cat)
	if err != nil {
		return "", err
	}
	var id string
	query := fmt.Sprintf("SELECT id FROM %q WHERE LOWER(name) = $1 ORDER BY id LIMIT 1", table)
	err = c.pool.QueryRow(ctx, query, nameLower).Scan(&id)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("searching %s by name: %w", cat, err)
	}
	return id, nil
}

func (c *Client) HasEntries(ctx context.Context) (bool, error) {
	for _, cat := range category.All {
		var n int
		query := fmt.Sprintf("SELECT COUNT(*) FROM %q", cat.Table)
		if err := c.pool.QueryRow(ctx, query).Scan(&n); err != nil {
			return false, fmt.Errorf("counting %s: %w", cat.Name, err)
		}
		if n > 0 {
			return true, nil
		}
	}
	return false, nil
}

func (c *Client) GetEntry(ctx context.Context, cat, id string) (*store.Entry, error) {
	table, err := tableFor(cat)
	if err != nil {
		return nil, err
	}

	query := fmt.Sprintf(`
SELECT id, name, fields, level, usage, defense_targeted, range_type, range_value,
       area_type, area_size, html_body, search_text
FROM %q WHERE id = $1`, table)

	e := &store.Entry{Category: cat}
	var fieldsJSON []byte
	var usage, defense, rangeType, areaType, htmlBody, searchText *string
	err = c.pool.QueryRow(ctx, query, id).Scan(
		&e.ID, &e.Name, &fieldsJSON, &e.Level, &usage, &defense,
		&rangeType, &e.RangeValue, &areaType, &e.AreaSize, &htmlBody, &searchText,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting %s entry: %w", cat, err)
	}

	e.Usage = deref(usage)
	e.Defense = deref(defense)
	e.RangeType = deref(rangeType)
	e.AreaType = deref(areaType)
	e.HTMLBody = deref(htmlBody)
	e.SearchText = deref(searchText)

	if len(fieldsJSON) > 0 {
		if err := json.Unmarshal(fieldsJSON, &e.Fields); err != nil {
			return nil, fmt.Errorf("unmarshaling fields: %w", err)
		}
	}
	if e.Fields == nil {
		e.Fields = map[string]string{}
	}

	if e.Keywords, err = c.tagsFor(ctx, cat, id, "keywords"); err != nil {
		return nil, err
	}
	if e.DamageTypes, err = c.tagsFor(ctx, cat, id, "damage_types"); err != nil {
		return nil, err
	}
	if e.Conditions, err = c.tagsFor(ctx, cat, id, "conditions"); err != nil {
		return nil, err
	}
	return e, nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func (c *Client) tagsFor(ctx context.Context, cat, id, table string) ([]string, error) {
	query := fmt.Sprintf("SELECT tag FROM %q WHERE category = $1 AND entry_id = $2 ORDER BY tag", table)
	rows, err := c.pool.Query(ctx, query, cat, id)
	if err != nil {
		return nil, fmt.Errorf("loading %s: %w", table, err)
	}
	defer rows.Close()

	var tags []string
	for rows.Next() {
		var tag string
		if err := rows.Scan(&tag); err != nil {
			return nil, fmt.Errorf("scanning tag: %w", err)
		}
		tags = append(tags, tag)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating tags: %w", err)
	}
	return tags, nil
}

func (c *Client) ParseLog(ctx context.Context, field, confidence string) ([]store.ParseLogEntry, error) {
	rows, err := c.pool.Query(ctx, `
SELECT category, entry_id, field, value, source, confidence
FROM _parse_log
WHERE ($1 = '' OR field = $1) AND ($2 = '' OR confidence = $2)
ORDER BY category, entry_id, field`, field, confidence)
	if err != nil {
		return nil, fmt.Errorf("querying parse log: %w", err)
	}
	defer rows.Close()

	var out []store.ParseLogEntry
	for rows.Next() {
		var e store.ParseLogEntry
		if err := rows.Scan(&e.Category, &e.EntryID, &e.Field, &e.Value, &e.Source, &e.Confidence); err != nil {
			return nil, fmt.Errorf("scanning parse log row: %w", err)
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating parse log: %w", err)
	}
	return out, nil
}
