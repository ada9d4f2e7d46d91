package seed

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/costbase/costbase/internal/db"
	"github.com/costbase/costbase/pkg/driver"
)

// Category is one row of the built-in cost category catalog.
type Category struct {
	Code         string
	Label        string
	DisplayOrder int
}

// builtinCategories is the canonical cost category set. Its length is the
// expected cardinality of the categories table.
var builtinCategories = []Category{
	{Code: "labor", Label: "Labor", DisplayOrder: 1},
	{Code: "materials", Label: "Materials", DisplayOrder: 2},
	{Code: "equipment", Label: "Equipment", DisplayOrder: 3},
	{Code: "travel", Label: "Travel", DisplayOrder: 4},
	{Code: "software", Label: "Software & Licenses", DisplayOrder: 5},
	{Code: "other", Label: "Other", DisplayOrder: 99},
}

// TemplateRecord is one record of the external catalog file. Records are
// stored as a YAML document stream; only kind "template" records seed the
// prompt_templates table.
type TemplateRecord struct {
	Kind         string `yaml:"kind"`
	Slug         string `yaml:"slug"`
	Title        string `yaml:"title"`
	Body         string `yaml:"body"`
	DisplayOrder int    `yaml:"display_order"`
}

// catalogCandidates are the paths tried in order when no explicit catalog
// path is configured. First existing path wins.
var catalogCandidates = []string{
	"catalog.yaml",
	filepath.Join("seeds", "catalog.yaml"),
}

// findCatalogFile resolves the catalog file location. The returned bool is
// false when no candidate exists; absence is non-fatal for the caller.
func (e *Engine) findCatalogFile() (string, bool) {
	if e.catalogPath != "" {
		if _, err := os.Stat(e.catalogPath); err == nil {
			return e.catalogPath, true
		}
		return "", false
	}
	for _, p := range catalogCandidates {
		if _, err := os.Stat(p); err == nil {
			return p, true
		}
	}
	return "", false
}

// loadTemplates reads the catalog file as a YAML document stream and returns
// the template records in file order.
func loadTemplates(path string) ([]TemplateRecord, error) {
	f, err := os.Open(path) //nolint:gosec // operator-supplied catalog path
	if err != nil {
		return nil, fmt.Errorf("failed to open catalog file: %w", err)
	}
	defer func() { _ = f.Close() }()

	var records []TemplateRecord
	dec := yaml.NewDecoder(f)
	for {
		var rec TemplateRecord
		if err := dec.Decode(&rec); err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, fmt.Errorf("failed to parse catalog file %s: %w", path, err)
		}
		if rec.Kind != "" && rec.Kind != "template" {
			continue
		}
		if rec.Slug == "" {
			continue
		}
		records = append(records, rec)
	}
	return records, nil
}

// SeedCatalogs converges every reference table to its expected cardinality.
// Per table: count >= expected leaves it untouched (extra user rows are
// respected), 0 < count < expected is treated as a stale partial seed and
// fully replaced, count = 0 inserts the canonical set.
func (e *Engine) SeedCatalogs(ctx context.Context) error {
	if err := e.seedCategories(ctx); err != nil {
		return err
	}
	return e.seedTemplates(ctx)
}

func (e *Engine) seedCategories(ctx context.Context) error {
	return e.converge(ctx, "categories", len(builtinCategories), func(q driver.Querier) error {
		// categories is keyed by code; there is no surrogate id to read back.
		ins, err := q.Prepare(`INSERT INTO categories (code, label, display_order) VALUES (?, ?, ?)`,
			driver.WithoutInsertID())
		if err != nil {
			return err
		}
		defer func() { _ = ins.Close() }()

		for _, c := range builtinCategories {
			if _, err := ins.Run(ctx, c.Code, c.Label, c.DisplayOrder); err != nil {
				return err
			}
		}
		return nil
	})
}

func (e *Engine) seedTemplates(ctx context.Context) error {
	path, ok := e.findCatalogFile()
	if !ok {
		e.logger.Warn("catalog file not found, skipping template seeding")
		return nil
	}

	records, err := loadTemplates(path)
	if err != nil {
		return err
	}
	if len(records) == 0 {
		e.logger.Warn("catalog file carries no template records", slog.String("path", path))
		return nil
	}

	return e.converge(ctx, "prompt_templates", len(records), func(q driver.Querier) error {
		ins, err := q.Prepare(`INSERT INTO prompt_templates (slug, title, body, display_order) VALUES (?, ?, ?, ?)`)
		if err != nil {
			return err
		}
		defer func() { _ = ins.Close() }()

		for _, r := range records {
			if _, err := ins.Run(ctx, r.Slug, r.Title, r.Body, r.DisplayOrder); err != nil {
				return err
			}
		}
		return nil
	})
}

// converge applies the cardinality rule to one reference table. The delete
// and reinsert of the stale-partial case share a transaction so a failure
// never leaves the table emptier than it started.
func (e *Engine) converge(ctx context.Context, table string, expected int, insert func(driver.Querier) error) error {
	current, err := db.CountRows(ctx, e.db, table)
	if err != nil {
		return err
	}

	switch {
	case current >= int64(expected):
		e.logger.Debug("catalog already seeded",
			slog.String("table", table),
			slog.Int64("rows", current),
		)
		return nil

	case current > 0:
		e.logger.Info("replacing stale partial catalog seed",
			slog.String("table", table),
			slog.Int64("current", current),
			slog.Int("expected", expected),
		)
		apply := e.db.Transaction(func(q driver.Querier) error {
			if err := q.Exec(ctx, "DELETE FROM "+table); err != nil {
				return err
			}
			return insert(q)
		})
		if err := apply(ctx); err != nil {
			return fmt.Errorf("failed to reseed %s: %w", table, err)
		}
		return nil

	default:
		apply := e.db.Transaction(insert)
		if err := apply(ctx); err != nil {
			return fmt.Errorf("failed to seed %s: %w", table, err)
		}
		e.logger.Info("seeded catalog",
			slog.String("table", table),
			slog.Int("rows", expected),
		)
		return nil
	}
}
