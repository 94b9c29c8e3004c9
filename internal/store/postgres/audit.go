package postgres

import (
	"context"
	"fmt"

	"compendium/internal/store"
)

func (c *Client) AppendResolutionLog(ctx context.Context, records []store.ResolutionRecord) error {
	for _, r := range records {
		_, err := c.pool.Exec(ctx, `
INSERT INTO _id_resolution_log (
	xml_id, attempted_compendium_id, resolved_compendium_id, compendium_category,
	status, resolution_method, unmappable_reason, occurrence_count,
	as_granter_in_grants, as_granted_in_grants, in_statadd_count, in_modify_count
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
			r.ExternalRef,
			nullable(r.AttemptedID),
			nullable(r.ResolvedID),
			nullable(r.ResolvedCategory),
			string(r.Status),
			nullable(r.Method),
			nullable(r.UnmappableReason),
			r.Occurrences, r.AsGranter, r.AsGranted, r.InStatAdds, r.InModifies)
		if err != nil {
			return fmt.Errorf("appending resolution log: %w", err)
		}
	}
	return nil
}

func (c *Client) ResolutionSummary(ctx context.Context) (map[store.ResolutionStatus]int, error) {
	rows, err := c.pool.Query(ctx,
		"SELECT status, COUNT(*) FROM _id_resolution_log GROUP BY status")
	if err != nil {
		return nil, fmt.Errorf("summarizing resolution log: %w", err)
	}
	defer rows.Close()

	out := make(map[store.ResolutionStatus]int)
	for rows.Next() {
		var status string
		var n int
		if err := rows.Scan(&status, &n); err != nil {
			return nil, fmt.Errorf("scanning summary row: %w", err)
		}
		out[store.ResolutionStatus(status)] = n
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating summary: %w", err)
	}
	return out, nil
}

func (c *Client) NotFoundRefs(ctx context.Context) ([]store.ResolutionRecord, error) {
	rows, err := c.pool.Query(ctx, `
SELECT l.xml_id, COALESCE(l.attempted_compendium_id, ''), l.occurrence_count,
       l.as_granter_in_grants, l.as_granted_in_grants, l.in_statadd_count, l.in_modify_count,
       COALESCE((
           SELECT name FROM (
               SELECT granted_name AS name FROM grants WHERE granted_xml_id = l.xml_id
               UNION ALL
               SELECT granter_name FROM grants WHERE granter_xml_id = l.xml_id
               UNION ALL
               SELECT granter_name FROM stat_additions WHERE granter_xml_id = l.xml_id
               UNION ALL
               SELECT granter_name FROM modifies WHERE granter_xml_id = l.xml_id
           ) names WHERE name <> '' LIMIT 1
       ), '')
FROM _id_resolution_log l
WHERE l.status = 'not_found'
ORDER BY l.occurrence_count DESC, l.xml_id`)
	if err != nil {
		return nil, fmt.Errorf("querying not-found refs: %w", err)
	}
	defer rows.Close()

	var out []store.ResolutionRecord
	for rows.Next() {
		r := store.ResolutionRecord{Status: store.StatusNotFound}
		if err := rows.Scan(&r.ExternalRef, &r.AttemptedID, &r.Occurrences,
			&r.AsGranter, &r.AsGranted, &r.InStatAdds, &r.InModifies, &r.Name); err != nil {
			return nil, fmt.Errorf("scanning not-found row: %w", err)
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating not-found refs: %w", err)
	}
	return out, nil
}
