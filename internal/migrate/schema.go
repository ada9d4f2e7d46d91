package migrate

import "github.com/costbase/costbase/pkg/driver"

// Core table DDL. Both renditions keep the same column names and semantics;
// only the key/serial syntax differs between engines. Every statement is
// written to be safe against a database already carrying it.

func idColumn(caps driver.Capabilities) string {
	if caps.ClientServer {
		return "id BIGSERIAL PRIMARY KEY"
	}
	return "id INTEGER PRIMARY KEY AUTOINCREMENT"
}

// bootstrapScript returns the foundational DDL: all core tables plus their
// foreign-key indexes. On the client-server path the script is split and the
// CREATE TABLE statements run as a prioritized sub-pass before everything
// else, because later statements reference tables created earlier in the
// same batch.
func bootstrapScript(caps driver.Capabilities) string {
	id := idColumn(caps)
	return `
CREATE TABLE IF NOT EXISTS projects (
	` + id + `,
	name TEXT NOT NULL,
	client TEXT,
	status TEXT NOT NULL DEFAULT 'active',
	created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS categories (
	code TEXT PRIMARY KEY,
	label TEXT NOT NULL,
	display_order INTEGER NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS cost_items (
	` + id + `,
	project_id BIGINT NOT NULL REFERENCES projects(id),
	category_code TEXT NOT NULL DEFAULT 'other',
	label TEXT NOT NULL,
	amount_cents BIGINT NOT NULL DEFAULT 0,
	created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS app_settings (
	id INTEGER PRIMARY KEY CHECK (id = 1),
	currency TEXT NOT NULL DEFAULT 'USD',
	locale TEXT NOT NULL DEFAULT 'en-US',
	updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS prompt_templates (
	` + id + `,
	slug TEXT NOT NULL UNIQUE,
	title TEXT NOT NULL,
	body TEXT NOT NULL,
	display_order INTEGER NOT NULL DEFAULT 0
);

CREATE INDEX IF NOT EXISTS idx_cost_items_project ON cost_items(project_id);
`
}

// addColumn returns the ALTER TABLE statement for a phase that introduces a
// column. Engines that support it carry IF NOT EXISTS; for the rest the
// caller probes the catalog first and tolerates duplicate-column errors.
func addColumn(caps driver.Capabilities, table, column, definition string) string {
	if caps.AddColumnIfNotExists {
		return "ALTER TABLE " + table + " ADD COLUMN IF NOT EXISTS " + column + " " + definition
	}
	return "ALTER TABLE " + table + " ADD COLUMN " + column + " " + definition
}

// indexStatements returns the secondary indexes added after bootstrap.
// The legacy-expenses index is optional: its target table only exists on
// databases that predate the rename, so a missing relation is benign.
func indexStatements() []string {
	return []string{
		"CREATE INDEX IF NOT EXISTS idx_projects_name_key ON projects(name_key)",
		"CREATE INDEX IF NOT EXISTS idx_cost_items_category ON cost_items(category_code)",
		"CREATE INDEX IF NOT EXISTS idx_prompt_templates_slug ON prompt_templates(slug)",
		"CREATE INDEX IF NOT EXISTS idx_expenses_project ON expenses(project_id)",
	}
}
