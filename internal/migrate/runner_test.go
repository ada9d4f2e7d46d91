package migrate

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/costbase/costbase/internal/db"
	"github.com/costbase/costbase/internal/seed"
	"github.com/costbase/costbase/pkg/driver"
)

func capsFor(t *testing.T, clientServer bool) driver.Capabilities {
	t.Helper()
	if clientServer {
		return driver.Capabilities{
			Name:                 "postgres",
			ClientServer:         true,
			NeedsReturning:       true,
			AddColumnIfNotExists: true,
		}
	}
	return driver.Capabilities{Name: "sqlite", Embedded: true}
}

func newTestDB(t *testing.T) *db.DB {
	t.Helper()
	drv, err := driver.Open(driver.Config{Type: "sqlite", Path: ":memory:"}, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = drv.Close() })
	return db.Wrap(drv, nil)
}

func writeCatalog(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "catalog.yaml")
	content := `kind: template
slug: kickoff
title: Project kickoff
body: Estimate the kickoff costs.
display_order: 1
---
kind: template
slug: closeout
title: Project closeout
body: Summarize the final costs.
display_order: 2
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func newTestRunner(t *testing.T) (*Runner, *db.DB) {
	t.Helper()
	database := newTestDB(t)
	engine := seed.NewEngine(database, writeCatalog(t), nil)
	return NewRunner(database, engine, nil), database
}

func TestRunner_Phases(t *testing.T) {
	r, _ := newTestRunner(t)

	names := r.Phases()
	assert.Equal(t, []string{
		"display-order-columns",
		"project-name-key",
		"indexes",
		"default-settings",
		"legacy-expenses",
		"backfill-name-keys",
		"seed-catalogs",
	}, names)
}

func TestRunner_Run_FreshDatabase(t *testing.T) {
	r, database := newTestRunner(t)
	ctx := context.Background()
	caps := database.Capabilities()

	require.NoError(t, r.Run(ctx))

	for _, table := range []string{"projects", "categories", "cost_items", "app_settings", "prompt_templates"} {
		exists, err := db.TableExists(ctx, database, caps, table)
		require.NoError(t, err)
		assert.True(t, exists, "table %s should exist after migration", table)
	}

	for _, table := range []string{"projects", "cost_items", "prompt_templates"} {
		exists, err := db.ColumnExists(ctx, database, caps, table, "display_order")
		require.NoError(t, err)
		assert.True(t, exists, "%s.display_order should exist after migration", table)
	}

	exists, err := db.ColumnExists(ctx, database, caps, "projects", "name_key")
	require.NoError(t, err)
	assert.True(t, exists, "projects.name_key should exist after migration")

	settings, err := db.CountRows(ctx, database, "app_settings")
	require.NoError(t, err)
	assert.Equal(t, int64(1), settings, "exactly one settings row")

	stmt, err := database.Prepare("SELECT id, currency FROM app_settings")
	require.NoError(t, err)
	defer func() { _ = stmt.Close() }()

	row, err := stmt.Get(ctx)
	require.NoError(t, err)
	require.NotNil(t, row)
	assert.EqualValues(t, 1, row["id"])
	assert.Equal(t, "USD", row["currency"])

	categories, err := db.CountRows(ctx, database, "categories")
	require.NoError(t, err)
	assert.Equal(t, int64(6), categories)

	templates, err := db.CountRows(ctx, database, "prompt_templates")
	require.NoError(t, err)
	assert.Equal(t, int64(2), templates)
}

func TestRunner_Run_Idempotent(t *testing.T) {
	r, database := newTestRunner(t)
	ctx := context.Background()

	require.NoError(t, r.Run(ctx))

	before := map[string]int64{}
	for _, table := range []string{"app_settings", "categories", "prompt_templates", "projects", "cost_items"} {
		n, err := db.CountRows(ctx, database, table)
		require.NoError(t, err)
		before[table] = n
	}

	require.NoError(t, r.Run(ctx), "a second run must succeed")

	for table, want := range before {
		n, err := db.CountRows(ctx, database, table)
		require.NoError(t, err)
		assert.Equal(t, want, n, "second run must leave %s untouched", table)
	}
}

func TestRunner_Run_ExistingDataSurvives(t *testing.T) {
	r, database := newTestRunner(t)
	ctx := context.Background()

	require.NoError(t, r.Run(ctx))

	ins, err := database.Prepare("INSERT INTO projects (name, name_key) VALUES (?, ?)")
	require.NoError(t, err)
	defer func() { _ = ins.Close() }()

	res, err := ins.Run(ctx, "Harbor Bridge", "harbor bridge")
	require.NoError(t, err)
	require.True(t, res.LastInsertID.Valid)

	require.NoError(t, r.Run(ctx))

	n, err := db.CountRows(ctx, database, "projects")
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}

func TestAddColumn(t *testing.T) {
	pg := capsFor(t, true)
	assert.Equal(t,
		"ALTER TABLE projects ADD COLUMN IF NOT EXISTS name_key TEXT",
		addColumn(pg, "projects", "name_key", "TEXT"))

	lite := capsFor(t, false)
	assert.Equal(t,
		"ALTER TABLE projects ADD COLUMN name_key TEXT",
		addColumn(lite, "projects", "name_key", "TEXT"))
}

func TestIDColumn(t *testing.T) {
	assert.Contains(t, idColumn(capsFor(t, true)), "BIGSERIAL")
	assert.Contains(t, idColumn(capsFor(t, false)), "AUTOINCREMENT")
}
