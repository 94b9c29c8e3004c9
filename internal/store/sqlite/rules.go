package sqlite

import (
	"context"
	"fmt"
	"sort"

	"compendium/internal/store"
)

func (c *Client) PutGrant(ctx context.Context, g store.Grant) error {
	_, err := c.exec(ctx, "put-grant",
		g.GranterRef, nullable(g.GranterResolvedID), g.GranterType, g.GranterName,
		g.GrantedRef, nullable(g.GrantedResolvedID), g.GrantedType, g.GrantedName,
		g.Requires, g.Level, g.Ordinal,
	)
	return err
}

func (c *Client) PutStatAddition(ctx context.Context, s store.StatAddition) error {
	_, err := c.exec(ctx, "put-stat-addition",
		s.GranterRef, nullable(s.GranterResolvedID), s.GranterType, s.GranterName,
		s.StatName, s.Value, s.BonusType, s.Requires, s.Ordinal,
	)
	return err
}

func (c *Client) PutModification(ctx context.Context, m store.Modification) error {
	_, err := c.exec(ctx, "put-modification",
		m.GranterRef, nullable(m.GranterResolvedID), m.GranterType, m.GranterName,
		m.TargetName, m.TargetType, m.Field, m.Value, m.ListAddition, m.Requires, m.Ordinal,
	)
	return err
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}

type refRow struct {
	Ref  string `db:"ref"`
	Name string `db:"name"`
	N    int    `db:"n"`
}

// RuleRefs aggregates every distinct external ref across the three edge
// tables with its role counts. The display name captured at extraction time
// rides along; any role's non-empty name wins.
func (c *Client) RuleRefs(ctx context.Context) (map[string]store.RefUsage, error) {
	out := make(map[string]store.RefUsage)

	collect := func(query string, assign func(u *store.RefUsage, n int)) error {
		var rows []refRow
		if err := c.selectAll(ctx, &rows, query); err != nil {
			return err
		}
		for _, r := range rows {
			u := out[r.Ref]
			if u.Name == "" {
				u.Name = r.Name
			}
			assign(&u, r.N)
			out[r.Ref] = u
		}
		return nil
	}

	if err := collect("refs-grant-granter", func(u *store.RefUsage, n int) { u.AsGranter += n }); err != nil {
		return nil, err
	}
	if err := collect("refs-grant-granted", func(u *store.RefUsage, n int) { u.AsGranted += n }); err != nil {
		return nil, err
	}
	if err := collect("refs-statadd-granter", func(u *store.RefUsage, n int) { u.InStatAdds += n }); err != nil {
		return nil, err
	}
	if err := collect("refs-modify-granter", func(u *store.RefUsage, n int) { u.InModifies += n }); err != nil {
		return nil, err
	}
	return out, nil
}

// ApplyResolved writes resolved ids onto every edge carrying a resolved ref.
// Edges with unresolved refs keep NULL. Refs are applied in sorted order so
// reruns touch rows identically.
func (c *Client) ApplyResolved(ctx context.Context, resolved store.ResolvedSet) (store.RuleUpdateCounts, error) {
	refs := make([]string, 0, len(resolved))
	for ref := range resolved {
		refs = append(refs, ref)
	}
	sort.Strings(refs)

	var counts store.RuleUpdateCounts
	apply := func(query, ref, id string) (int, error) {
		res, err := c.exec(ctx, query, id, ref)
		if err != nil {
			return 0, err
		}
		n, err := res.RowsAffected()
		if err != nil {
			return 0, fmt.Errorf("counting updated rows: %w", err)
		}
		return int(n), nil
	}

	for _, ref := range refs {
		id := resolved[ref]

		n, err := apply("resolve-grant-granter", ref, id)
		if err != nil {
			return counts, err
		}
		counts.Granters += n

		if n, err = apply("resolve-grant-granted", ref, id); err != nil {
			return counts, err
		}
		counts.Granted += n

		if n, err = apply("resolve-statadd-granter", ref, id); err != nil {
			return counts, err
		}
		counts.StatAdds += n

		if n, err = apply("resolve-modify-granter", ref, id); err != nil {
			return counts, err
		}
		counts.Modifies += n
	}
	return counts, nil
}
