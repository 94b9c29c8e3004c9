package postgres

import (
	"context"
	"fmt"
	"strings"

	"compendium/internal/category"
)

func (c *Client) Reset(ctx context.Context) error {
	var ddl strings.Builder

	for _, cat := range category.All {
		fmt.Fprintf(&ddl, "DROP TABLE IF EXISTS %q CASCADE;\n", cat.Table)
		fmt.Fprintf(&ddl, `
CREATE TABLE %q (
	id               TEXT PRIMARY KEY,
	name             TEXT NOT NULL,
	fields           JSONB NOT NULL DEFAULT '{}',
	level            INTEGER,
	usage            TEXT,
	defense_targeted TEXT,
	range_type       TEXT,
	range_value      INTEGER,
	area_type        TEXT,
	area_size        INTEGER,
	html_body        TEXT DEFAULT '',
	search_text      TEXT DEFAULT ''
);
CREATE INDEX idx_%s_name ON %q (LOWER(name));
`, cat.Table, cat.Table, cat.Table)
	}

	ddl.WriteString(`
DROP TABLE IF EXISTS keywords;
DROP TABLE IF EXISTS damage_types;
DROP TABLE IF EXISTS conditions;
DROP TABLE IF EXISTS name_index;
DROP TABLE IF EXISTS _parse_log;
DROP TABLE IF EXISTS _categories;
DROP TABLE IF EXISTS _meta;
DROP TABLE IF EXISTS search_docs;

CREATE TABLE keywords (
	category TEXT NOT NULL,
	entry_id TEXT NOT NULL,
	tag      TEXT NOT NULL,
	PRIMARY KEY (category, entry_id, tag)
);
CREATE INDEX idx_keywords_tag ON keywords (tag);

CREATE TABLE damage_types (
	category TEXT NOT NULL,
	entry_id TEXT NOT NULL,
	tag      TEXT NOT NULL,
	PRIMARY KEY (category, entry_id, tag)
);
CREATE INDEX idx_damage_types_tag ON damage_types (tag);

CREATE TABLE conditions (
	category TEXT NOT NULL,
	entry_id TEXT NOT NULL,
	tag      TEXT NOT NULL,
	PRIMARY KEY (category, entry_id, tag)
);
CREATE INDEX idx_conditions_tag ON conditions (tag);

CREATE TABLE name_index (
	name_lower TEXT NOT NULL,
	entry_id   TEXT NOT NULL,
	CONSTRAINT uq_name_entry UNIQUE (name_lower, entry_id)
);
CREATE INDEX idx_name_index_name ON name_index (name_lower);

CREATE TABLE _parse_log (
	category   TEXT NOT NULL,
	entry_id   TEXT NOT NULL,
	field      TEXT NOT NULL,
	value      TEXT NOT NULL,
	source     TEXT NOT NULL,
	confidence TEXT NOT NULL
);
CREATE INDEX idx_parse_log_field ON _parse_log (field);
CREATE INDEX idx_parse_log_confidence ON _parse_log (confidence);

CREATE TABLE _categories (
	name        TEXT PRIMARY KEY,
	entry_count INTEGER NOT NULL
);

CREATE TABLE _meta (
	key   TEXT PRIMARY KEY,
	value TEXT NOT NULL
);

CREATE TABLE search_docs (
	category      TEXT NOT NULL,
	entry_id      TEXT NOT NULL,
	name          TEXT NOT NULL,
	body          TEXT NOT NULL DEFAULT '',
	search_vector TSVECTOR GENERATED ALWAYS AS (
		setweight(to_tsvector('english', name), 'A') ||
		setweight(to_tsvector('english', body), 'B')
	) STORED,
	CONSTRAINT uq_search_doc UNIQUE (category, entry_id)
);
CREATE INDEX idx_search_docs_vector ON search_docs USING GIN (search_vector);
`)

	return c.execDDL(ctx, ddl.String())
}

func (c *Client) ResetRuleGraph(ctx context.Context) error {
	ddl := `
DROP TABLE IF EXISTS grants;
DROP TABLE IF EXISTS stat_additions;
DROP TABLE IF EXISTS modifies;

CREATE TABLE grants (
	id                    BIGINT GENERATED ALWAYS AS IDENTITY PRIMARY KEY,
	granter_xml_id        TEXT NOT NULL DEFAULT '',
	granter_compendium_id TEXT,
	granter_type          TEXT NOT NULL DEFAULT '',
	granter_name          TEXT NOT NULL DEFAULT '',
	granted_xml_id        TEXT NOT NULL DEFAULT '',
	granted_compendium_id TEXT,
	granted_type          TEXT NOT NULL DEFAULT '',
	granted_name          TEXT NOT NULL DEFAULT '',
	requires              TEXT NOT NULL DEFAULT '',
	level                 TEXT NOT NULL DEFAULT '',
	ordinal               INTEGER NOT NULL
);
CREATE INDEX idx_grants_granter ON grants (granter_xml_id);
CREATE INDEX idx_grants_granted ON grants (granted_xml_id);

CREATE TABLE stat_additions (
	id                    BIGINT GENERATED ALWAYS AS IDENTITY PRIMARY KEY,
	granter_xml_id        TEXT NOT NULL DEFAULT '',
	granter_compendium_id TEXT,
	granter_type          TEXT NOT NULL DEFAULT '',
	granter_name          TEXT NOT NULL DEFAULT '',
	stat_name             TEXT NOT NULL,
	value                 TEXT NOT NULL DEFAULT '',
	bonus_type            TEXT NOT NULL DEFAULT '',
	requires              TEXT NOT NULL DEFAULT '',
	ordinal               INTEGER NOT NULL
);
CREATE INDEX idx_statadd_granter ON stat_additions (granter_xml_id);
CREATE INDEX idx_statadd_stat ON stat_additions (stat_name);

CREATE TABLE modifies (
	id                    BIGINT GENERATED ALWAYS AS IDENTITY PRIMARY KEY,
	granter_xml_id        TEXT NOT NULL DEFAULT '',
	granter_compendium_id TEXT,
	granter_type          TEXT NOT NULL DEFAULT '',
	granter_name          TEXT NOT NULL DEFAULT '',
	target_name           TEXT NOT NULL,
	target_type           TEXT NOT NULL DEFAULT '',
	field                 TEXT NOT NULL,
	value                 TEXT NOT NULL DEFAULT '',
	list_addition         TEXT NOT NULL DEFAULT '',
	requires              TEXT NOT NULL DEFAULT '',
	ordinal               INTEGER NOT NULL
);
CREATE INDEX idx_modifies_granter ON modifies (granter_xml_id);
CREATE INDEX idx_modifies_target ON modifies (target_name);
`
	return c.execDDL(ctx, ddl)
}

func (c *Client) ResetResolutionLog(ctx context.Context) error {
	ddl := `
DROP TABLE IF EXISTS _id_resolution_log;

CREATE TABLE _id_resolution_log (
	xml_id                  TEXT NOT NULL,
	attempted_compendium_id TEXT,
	resolved_compendium_id  TEXT,
	compendium_category     TEXT,
	status                  TEXT NOT NULL,
	resolution_method       TEXT,
	unmappable_reason       TEXT,
	occurrence_count        INTEGER NOT NULL,
	as_granter_in_grants    INTEGER DEFAULT 0,
	as_granted_in_grants    INTEGER DEFAULT 0,
	in_statadd_count        INTEGER DEFAULT 0,
	in_modify_count         INTEGER DEFAULT 0
);
CREATE INDEX idx_resolution_status ON _id_resolution_log (status);
CREATE INDEX idx_resolution_xml_id ON _id_resolution_log (xml_id);
`
	return c.execDDL(ctx, ddl)
}

func (c *Client) execDDL(ctx context.Context, ddl string) error {
	tx, err := c.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, ddl); err != nil {
		return fmt.Errorf("executing DDL: %w", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("committing schema transaction: %w", err)
	}
	return nil
}
