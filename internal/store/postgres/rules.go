package postgres

import (
	"context"
	"fmt"
	"sort"

	"compendium/internal/store"
)

func (c *Client) PutGrant(ctx context.Context, g store.Grant) error {
	_, err := c.pool.Exec(ctx, `
INSERT INTO grants (
	granter_xml_id, granter_compendium_id, granter_type, granter_name,
	granted_xml_id, granted_compendium_id, granted_type, granted_name,
	requires, level, ordinal
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		g.GranterRef, nullable(g.GranterResolvedID), g.GranterType, g.GranterName,
		g.GrantedRef, nullable(g.GrantedResolvedID), g.GrantedType, g.GrantedName,
		g.Requires, g.Level, g.Ordinal)
	if err != nil {
		return fmt.Errorf("inserting grant: %w", err)
	}
	return nil
}

func (c *Client) PutStatAddition(ctx context.Context, s store.StatAddition) error {
	_, err := c.pool.Exec(ctx, `
INSERT INTO stat_additions (
	granter_xml_id, granter_compendium_id, granter_type, granter_name,
	stat_name, value, bonus_type, requires, ordinal
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		s.GranterRef, nullable(s.GranterResolvedID), s.GranterType, s.GranterName,
		s.StatName, s.Value, s.BonusType, s.Requires, s.Ordinal)
	if err != nil {
		return fmt.Errorf("inserting stat addition: %w", err)
	}
	return nil
}

func (c *Client) PutModification(ctx context.Context, m store.Modification) error {
	_, err := c.pool.Exec(ctx, `
INSERT INTO modifies (
	granter_xml_id, granter_compendium_id, granter_type, granter_name,
	target_name, target_type, field, value, list_addition, requires, ordinal
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		m.GranterRef, nullable(m.GranterResolvedID), m.GranterType, m.GranterName,
		m.TargetName, m.TargetType, m.Field, m.Value, m.ListAddition, m.Requires, m.Ordinal)
	if err != nil {
		return fmt.Errorf("inserting modification: %w", err)
	}
	return nil
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func (c *Client) RuleRefs(ctx context.Context) (map[string]store.RefUsage, error) {
	out := make(map[string]store.RefUsage)

	collect := func(query string, assign func(u *store.RefUsage, n int)) error {
		rows, err := c.pool.Query(ctx, query)
		if err != nil {
			return fmt.Errorf("aggregating rule refs: %w", err)
		}
		defer rows.Close()
		for rows.Next() {
			var ref, name string
			var n int
			if err := rows.Scan(&ref, &name, &n); err != nil {
				return fmt.Errorf("scanning ref row: %w", err)
			}
			u := out[ref]
			if u.Name == "" {
				u.Name = name
			}
			assign(&u, n)
			out[ref] = u
		}
		return rows.Err()
	}

	steps := []struct {
		query  string
		assign func(u *store.RefUsage, n int)
	}{
		{"SELECT granter_xml_id, MAX(granter_name), COUNT(*) FROM grants WHERE granter_xml_id <> '' GROUP BY granter_xml_id",
			func(u *store.RefUsage, n int) { u.AsGranter += n }},
		{"SELECT granted_xml_id, MAX(granted_name), COUNT(*) FROM grants WHERE granted_xml_id <> '' GROUP BY granted_xml_id",
			func(u *store.RefUsage, n int) { u.AsGranted += n }},
		{"SELECT granter_xml_id, MAX(granter_name), COUNT(*) FROM stat_additions WHERE granter_xml_id <> '' GROUP BY granter_xml_id",
			func(u *store.RefUsage, n int) { u.InStatAdds += n }},
		{"SELECT granter_xml_id, MAX(granter_name), COUNT(*) FROM modifies WHERE granter_xml_id <> '' GROUP BY granter_xml_id",
			func(u *store.RefUsage, n int) { u.InModifies += n }},
	}
	for _, step := range steps {
		if err := collect(step.query, step.assign); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func (c *Client) ApplyResolved(ctx context.Context, resolved store.ResolvedSet) (store.RuleUpdateCounts, error) {
	refs := make([]string, 0, len(resolved))
	for ref := range resolved {
		refs = append(refs, ref)
	}
	sort.Strings(refs)

	var counts store.RuleUpdateCounts
	for _, ref := range refs {
		id := resolved[ref]

		tag, err := c.pool.Exec(ctx,
			"UPDATE grants SET granter_compendium_id = $1 WHERE granter_xml_id = $2", id, ref)
		if err != nil {
			return counts, fmt.Errorf("updating grant granters: %w", err)
		}
		counts.Granters += int(tag.RowsAffected())

		tag, err = c.pool.Exec(ctx,
			"UPDATE grants SET granted_compendium_id = $1 WHERE granted_xml_id = $2", id, ref)
		if err != nil {
			return counts, fmt.Errorf("updating grant granted: %w", err)
		}
		counts.Granted += int(tag.RowsAffected())

		tag, err = c.pool.Exec(ctx,
			"UPDATE stat_additions SET granter_compendium_id = $1 WHERE granter_xml_id = $2", id, ref)
		if err != nil {
			return counts, fmt.Errorf("updating stat additions: %w", err)
		}
		counts.StatAdds += int(tag.RowsAffected())

		tag, err = c.pool.Exec(ctx,
			"UPDATE modifies SET granter_compendium_id = $1 WHERE granter_xml_id = $2", id, ref)
		if err != nil {
			return counts, fmt.Errorf("updating modifies: %w", err)
		}
		counts.Modifies += int(tag.RowsAffected())
	}
	return counts, nil
}
