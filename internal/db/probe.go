package db

import (
	"context"
	"fmt"
	"strconv"

	"github.com/costbase/costbase/pkg/driver"
)

// Schema probes. Whether a migration phase has already been applied is
// detected structurally, by catalog introspection, never by a version
// marker: the embedded engine is asked through sqlite_master and
// pragma_table_info, the client-server engine through information_schema.

// TableExists reports whether a table is present in the active schema.
func TableExists(ctx context.Context, q driver.Querier, caps driver.Capabilities, table string) (bool, error) {
	query := `SELECT table_name FROM information_schema.tables WHERE table_schema = 'public' AND table_name = ?`
	if caps.Embedded {
		query = `SELECT name FROM sqlite_master WHERE type = 'table' AND name = ?`
	}

	stmt, err := q.Prepare(query)
	if err != nil {
		return false, fmt.Errorf("failed to prepare table probe: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	row, err := stmt.Get(ctx, table)
	if err != nil {
		return false, fmt.Errorf("failed to probe table %s: %w", table, err)
	}
	return row != nil, nil
}

// ColumnExists reports whether a column is present on a table.
func ColumnExists(ctx context.Context, q driver.Querier, caps driver.Capabilities, table, column string) (bool, error) {
	query := `SELECT column_name FROM information_schema.columns WHERE table_schema = 'public' AND table_name = ? AND column_name = ?`
	if caps.Embedded {
		query = `SELECT name FROM pragma_table_info(?) WHERE name = ?`
	}

	stmt, err := q.Prepare(query)
	if err != nil {
		return false, fmt.Errorf("failed to prepare column probe: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	row, err := stmt.Get(ctx, table, column)
	if err != nil {
		return false, fmt.Errorf("failed to probe column %s.%s: %w", table, column, err)
	}
	return row != nil, nil
}

// CountRows returns the row count of a table. The table name comes from the
// fixed schema catalog, never from user input.
func CountRows(ctx context.Context, q driver.Querier, table string) (int64, error) {
	stmt, err := q.Prepare(fmt.Sprintf("SELECT COUNT(*) AS n FROM %s", table)) //nolint:gosec // fixed schema table names
	if err != nil {
		return 0, fmt.Errorf("failed to prepare count for %s: %w", table, err)
	}
	defer func() { _ = stmt.Close() }()

	row, err := stmt.Get(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to count rows in %s: %w", table, err)
	}
	if row == nil {
		return 0, nil
	}
	return AsInt64(row["n"]), nil
}

// AsInt64 coerces a scanned column value into an int64. Engines disagree on
// the Go type a COUNT(*) scans into.
func AsInt64(v any) int64 {
	switch n := v.(type) {
	case int64:
		return n
	case int:
		return int64(n)
	case int32:
		return int64(n)
	case float64:
		return int64(n)
	case string:
		parsed, err := strconv.ParseInt(n, 10, 64)
		if err != nil {
			return 0
		}
		return parsed
	default:
		return 0
	}
}

// AsString coerces a scanned column value into a string.
func AsString(v any) string {
	switch s := v.(type) {
	case string:
		return s
	case []byte:
		return string(s)
	case nil:
		return ""
	default:
		return fmt.Sprintf("%v", s)
	}
}
