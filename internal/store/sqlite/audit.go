package sqlite

import (
	"context"
	"database/sql"
	"errors"

	"compendium/internal/store"
)

func (c *Client) AppendResolutionLog(ctx context.Context, records []store.ResolutionRecord) error {
	for _, r := range records {
		_, err := c.exec(ctx, "append-resolution-log",
			r.ExternalRef,
			nullable(r.AttemptedID),
			nullable(r.ResolvedID),
			nullable(r.ResolvedCategory),
			string(r.Status),
			nullable(r.Method),
			nullable(r.UnmappableReason),
			r.Occurrences,
			r.AsGranter,
			r.AsGranted,
			r.InStatAdds,
			r.InModifies,
		)
		if err != nil {
			return err
		}
	}
	return nil
}

func (c *Client) ResolutionSummary(ctx context.Context) (map[store.ResolutionStatus]int, error) {
	var rows []struct {
		Status string `db:"status"`
		N      int    `db:"n"`
	}
	if err := c.selectAll(ctx, &rows, "resolution-summary"); err != nil {
		return nil, err
	}
	out := make(map[store.ResolutionStatus]int, len(rows))
	for _, r := range rows {
		out[store.ResolutionStatus(r.Status)] = r.N
	}
	return out, nil
}

// NotFoundRefs returns the manual-review queue: refs that decoded cleanly but
// matched nothing, most frequent first. The display name is recovered from
// whichever edge table still carries it.
func (c *Client) NotFoundRefs(ctx context.Context) ([]store.ResolutionRecord, error) {
	var rows []struct {
		XMLID       string         `db:"xml_id"`
		AttemptedID sql.NullString `db:"attempted_compendium_id"`
		Occurrences int            `db:"occurrence_count"`
		AsGranter   int            `db:"as_granter_in_grants"`
		AsGranted   int            `db:"as_granted_in_grants"`
		InStatAdds  int            `db:"in_statadd_count"`
		InModifies  int            `db:"in_modify_count"`
	}
	if err := c.selectAll(ctx, &rows, "not-found-refs"); err != nil {
		return nil, err
	}

	out := make([]store.ResolutionRecord, 0, len(rows))
	for _, r := range rows {
		var name string
		err := c.getOne(ctx, &name, "not-found-name", r.XMLID, r.XMLID, r.XMLID, r.XMLID)
		if err != nil && !errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		out = append(out, store.ResolutionRecord{
			ExternalRef: r.XMLID,
			AttemptedID: r.AttemptedID.String,
			Status:      store.StatusNotFound,
			Name:        name,
			Occurrences: r.Occurrences,
			AsGranter:   r.AsGranter,
			AsGranted:   r.AsGranted,
			InStatAdds:  r.InStatAdds,
			InModifies:  r.InModifies,
		})
	}
	return out, nil
}
