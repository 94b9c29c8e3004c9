package sqlite

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"

	"github.com/qustavo/dotsql"
)

//go:embed queries.sql
var queriesSQL string

// queries holds the named statements for the fixed tables. Per-category
// tables have dynamic names and build their SQL in place instead.
type queries struct {
	dot *dotsql.DotSql
}

func loadQueries() (*queries, error) {
	dot, err := dotsql.LoadFromString(queriesSQL)
	if err != nil {
		return nil, fmt.Errorf("parsing embedded queries: %w", err)
	}
	return &queries{dot: dot}, nil
}

func (q *queries) raw(name string) (string, error) {
	stmt, err := q.dot.Raw(name)
	if err != nil {
		return "", fmt.Errorf("query not found: %s", name)
	}
	return stmt, nil
}

func (c *Client) exec(ctx context.Context, name string, args ...any) (sql.Result, error) {
	stmt, err := c.q.raw(name)
	if err != nil {
		return nil, err
	}
	res, err := c.db.ExecContext(ctx, stmt, args...)
	if err != nil {
		return nil, fmt.Errorf("executing %s: %w", name, err)
	}
	return res, nil
}

func (c *Client) selectAll(ctx context.Context, dest any, name string, args ...any) error {
	stmt, err := c.q.raw(name)
	if err != nil {
		return err
	}
	if err := c.db.SelectContext(ctx, dest, stmt, args...); err != nil {
		return fmt.Errorf("executing %s: %w", name, err)
	}
	return nil
}

func (c *Client) getOne(ctx context.Context, dest any, name string, args ...any) error {
	stmt, err := c.q.raw(name)
	if err != nil {
		return err
	}
	if err := c.db.GetContext(ctx, dest, stmt, args...); err != nil {
		return fmt.Errorf("executing %s: %w", name, err)
	}
	return nil
}
