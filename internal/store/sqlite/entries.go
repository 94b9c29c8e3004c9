package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"compendium/internal/category"
	"compendium/internal/store"
)

// tableFor resolves a category to its relation. The category set is closed,
// so a miss is a caller bug, never user input reaching SQL.
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
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	ON CONFLICT (id) DO UPDATE SET
		name = excluded.name,
		fields = excluded.fields,
		level = excluded.level,
		usage = excluded.usage,
		defense_targeted = excluded.defense_targeted,
		range_type = excluded.range_type,
		range_value = excluded.range_value,
		area_type = excluded.area_type,
		area_size = excluded.area_size,
		html_body = excluded.html_body,
		search_text = excluded.search_text
	`, table)

	_, err = c.db.ExecContext(ctx, query,
		e.ID,
		e.Name,
		string(fieldsJSON),
		e.Level,
		e.Usage,
		e.Defense,
		e.RangeType,
		e.RangeValue,
		e.AreaType,
		e.AreaSize,
		e.HTMLBody,
		e.SearchText,
	)
	if err != nil {
		return fmt.Errorf("upserting %s entry: %w", e.Category, err)
	}

	if err := c.putTags(ctx, e.Category, e.ID, "keywords", e.Keywords); err != nil {
		return err
	}
	if err := c.putTags(ctx, e.Category, e.ID, "damage_types", e.DamageTypes); err != nil {
		return err
	}
	if err := c.putTags(ctx, e.Category, e.ID, "conditions", e.Conditions); err != nil {
		return err
	}

	if _, err := c.exec(ctx, "put-search-doc", e.Category, e.ID, e.Name, e.SearchText); err != nil {
		return err
	}
	return nil
}

// putTags replaces the rows for one entry in one tag table. The three tag
// tables share a shape, so the table name is the enum here.
func (c *Client) putTags(ctx context.Context, cat, id, table string, tags []string) error {
	del := fmt.Sprintf("DELETE FROM %q WHERE category = ? AND entry_id = ?", table)
	if _, err := c.db.ExecContext(ctx, del, cat, id); err != nil {
		return fmt.Errorf("clearing %s: %w", table, err)
	}
	ins := fmt.Sprintf("INSERT OR IGNORE INTO %q (category, entry_id, tag) VALUES (?, ?, ?)", table)
	for _, tag := range tags {
		if _, err := c.db.ExecContext(ctx, ins, cat, id, tag); err != nil {
			return fmt.Errorf("inserting %s: %w", table, err)
		}
	}
	return nil
}

func (c *Client) PutNameIndex(ctx context.Context, nameLower, entryID string) error {
	_, err := c.exec(ctx, "put-name-index", nameLower, entryID)
	return err
}

func (c *Client) AppendParseLog(ctx context.Context, entries []store.ParseLogEntry) error {
	for _, e := range entries {
		if _, err := c.exec(ctx, "append-parse-log", e.Category, e.EntryID, e.Field, e.Value, e.Source, e.Confidence); err != nil {
			return err
		}
	}
	return nil
}

func (c *Client) SetCategoryCount(ctx context.Context, cat string, count int) error {
	_, err := c.exec(ctx, "set-category-count", cat, count)
	return err
}

func (c *Client) SetMeta(ctx context.Context, key, value string) error {
	_, err := c.exec(ctx, "set-meta", key, value)
	return err
}

func (c *Client) CategoryIDs(ctx context.Context, cat string) (map[string]struct{}, error) {
	table, err := tableFor(cat)
	if err != nil {
		return nil, err
	}
	var ids []string
	query := fmt.Sprintf("SELECT id FROM %q", table)
	if err := c.db.SelectContext(ctx, &ids, query); err != nil {
		return nil, fmt.Errorf("listing %s ids: %w", cat, err)
	}
	out := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		out[id] = struct{}{}
	}
	return out, nil
}

func (c *Client) NameIndex(ctx context.Context) (map[string][]string, error) {
	var rows []struct {
		NameLower string `db:"name_lower"`
		EntryID   string `db:"entry_id"`
	}
	if err := c.selectAll(ctx, &rows, "name-index-all"); err != nil {
		return nil, err
	}
	out := make(map[string][]string, len(rows))
	for _, r := range rows {
		out[r.NameLower] = append(out[r.NameLower], r.EntryID)
	}
	return out, nil
}

func (c *Client) IDsForName(ctx context.Context, nameLower string) ([]string, error) {
	var ids []string
	if err := c.selectAll(ctx, &ids, "ids-for-name", nameLower); err != nil {
		return nil, err
	}
	return ids, nil
}

func (c *Client) EntryIDByName(ctx context.Context, cat, nameLower string) (string, error) {
	table, err := tableFor(cat)
	if err != nil {
		return "", err
	}
	var id string
	query := fmt.Sprintf("SELECT id FROM %q WHERE LOWER(name) = ? ORDER BY id LIMIT 1", table)
	err = c.db.GetContext(ctx, &id, query, nameLower)
	if errors.Is(err, sql.ErrNoRows) {
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
		if err := c.db.GetContext(ctx, &n, query); err != nil {
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

	var row struct {
		ID         string         `db:"id"`
		Name       string         `db:"name"`
		Fields     string         `db:"fields"`
		Level      *int           `db:"level"`
		Usage      sql.NullString `db:"usage"`
		Defense    sql.NullString `db:"defense_targeted"`
		RangeType  sql.NullString `db:"range_type"`
		RangeValue *int           `db:"range_value"`
		AreaType   sql.NullString `db:"area_type"`
		AreaSize   *int           `db:"area_size"`
		HTMLBody   sql.NullString `db:"html_body"`
		SearchText sql.NullString `db:"search_text"`
	}
	query := fmt.Sprintf("SELECT * FROM %q WHERE id = ?", table)
	err = c.db.GetContext(ctx, &row, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting %s entry: %w", cat, err)
	}

	e := &store.Entry{
		Category:   cat,
		ID:         row.ID,
		Name:       row.Name,
		Level:      row.Level,
		Usage:      row.Usage.String,
		Defense:    row.Defense.String,
		RangeType:  row.RangeType.String,
		RangeValue: row.RangeValue,
		AreaType:   row.AreaType.String,
		AreaSize:   row.AreaSize,
		HTMLBody:   row.HTMLBody.String,
		SearchText: row.SearchText.String,
	}
	if row.Fields != "" {
		if err := json.Unmarshal([]byte(row.Fields), &e.Fields); err != nil {
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

func (c *Client) tagsFor(ctx context.Context, cat, id, table string) ([]string, error) {
	var tags []string
	query := fmt.Sprintf("SELECT tag FROM %q WHERE category = ? AND entry_id = ? ORDER BY rowid", table)
	if err := c.db.SelectContext(ctx, &tags, query, cat, id); err != nil {
		return nil, fmt.Errorf("loading %s: %w", table, err)
	}
	return tags, nil
}

func (c *Client) ParseLog(ctx context.Context, field, confidence string) ([]store.ParseLogEntry, error) {
	var rows []struct {
		Category   string `db:"category"`
		EntryID    string `db:"entry_id"`
		Field      string `db:"field"`
		Value      string `db:"value"`
		Source     string `db:"source"`
		Confidence string `db:"confidence"`
	}
	if err := c.selectAll(ctx, &rows, "parse-log", field, field, confidence, confidence); err != nil {
		return nil, err
	}
	out := make([]store.ParseLogEntry, 0, len(rows))
	for _, r := range rows {
		out = append(out, store.ParseLogEntry{
			Category:   r.Category,
			EntryID:    r.EntryID,
			Field:      r.Field,
			Value:      r.Value,
			Source:     r.Source,
			Confidence: r.Confidence,
		})
	}
	return out, nil
}
