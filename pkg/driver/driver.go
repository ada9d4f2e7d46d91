// Package driver defines the backend driver contract shared by the embedded
// and client-server database engines, plus the registry used to select one
// at process start.
package driver

import (
	"context"
	"database/sql"
)

// Config holds the configuration for connecting to a database backend.
type Config struct {
	// Type specifies the backend type ("sqlite" or "postgres").
	Type string

	// Path is the file path for the embedded engine.
	// Use ":memory:" for an in-memory database.
	Path string

	// URL is the connection string for the client-server engine.
	URL string

	// MaxConns bounds the client-server connection pool.
	// Zero means the backend default.
	MaxConns int
}

// PlaceholderStyle identifies the positional marker syntax a backend expects.
type PlaceholderStyle int

const (
	// PlaceholderQuestion is the `?` marker style used by all call sites.
	PlaceholderQuestion PlaceholderStyle = iota

	// PlaceholderDollar is the `$1..$n` indexed style the client-server
	// engine requires; markers are rewritten left-to-right before execution.
	PlaceholderDollar
)

// Capabilities describes the active backend and the behavioral flags derived
// from it. Created once at process start; immutable for the process lifetime.
type Capabilities struct {
	// Name is the registered backend name ("sqlite" or "postgres").
	Name string

	// Embedded is true for the in-process single-file engine.
	Embedded bool

	// ClientServer is true for the network pooled engine.
	ClientServer bool

	// Placeholder is the marker style the engine executes natively.
	Placeholder PlaceholderStyle

	// NeedsReturning is true when an INSERT must carry an explicit
	// RETURNING clause to read back the generated primary key.
	NeedsReturning bool

	// AddColumnIfNotExists is true when ALTER TABLE ... ADD COLUMN
	// IF NOT EXISTS is available.
	AddColumnIfNotExists bool
}

// Row is a single result row keyed by column name.
type Row map[string]any

// Result reports the outcome of a data-modifying statement.
type Result struct {
	// Changes is the number of rows affected.
	Changes int64

	// LastInsertID is the generated primary key of an INSERT, when the
	// statement produced one.
	LastInsertID sql.NullInt64
}

// Statement is a prepared statement. All statements are authored with `?`
// positional markers regardless of backend.
type Statement interface {
	// All executes the statement and returns every matching row.
	All(ctx context.Context, args ...any) ([]Row, error)

	// Get executes the statement and returns the first row, or nil when
	// no row matches.
	Get(ctx context.Context, args ...any) (Row, error)

	// Run executes a data-modifying statement.
	Run(ctx context.Context, args ...any) (Result, error)

	// Close releases the prepared statement.
	Close() error
}

// prepareConfig collects the options applied at statement compilation.
type prepareConfig struct {
	noInsertID bool
}

// PrepareOpt adjusts how a statement is compiled.
type PrepareOpt func(*prepareConfig)

// WithoutInsertID disables generated-key recovery for an INSERT. Required for
// tables keyed naturally, without a surrogate id column: backends that read
// the key back through a RETURNING clause would otherwise reference a column
// that does not exist.
func WithoutInsertID() PrepareOpt {
	return func(c *prepareConfig) { c.noInsertID = true }
}

// Querier is the statement surface shared by a Driver and an open
// transaction. Statements prepared through a transaction's Querier are bound
// to that transaction's connection.
type Querier interface {
	// Prepare compiles a statement for later execution. Bare INSERTs
	// arrange generated-key recovery unless WithoutInsertID is given.
	Prepare(query string, opts ...PrepareOpt) (Statement, error)

	// Exec executes raw statement text that returns no rows, such as DDL.
	Exec(ctx context.Context, script string) error
}

// TxFunc is a deferred transactional callable produced by Transaction.
// Invoking it runs the wrapped work under a begin/commit/rollback envelope.
type TxFunc func(ctx context.Context) error

// Driver is the contract every backend implements: prepare, exec,
// transaction, and pragma, with engine differences hidden behind it.
type Driver interface {
	Querier

	// Transaction wraps work so that, when the returned TxFunc is invoked,
	// every statement issued through the supplied Querier shares one
	// physical connection until commit or rollback. The connection is
	// released on every exit path.
	Transaction(work func(Querier) error) TxFunc

	// Pragma reads an engine pragma on the embedded backend. On the
	// client-server backend it is a no-op returning an invalid NullString.
	Pragma(ctx context.Context, name string) (sql.NullString, error)

	// Capabilities reports the backend capability descriptor.
	Capabilities() Capabilities

	// Close releases the underlying connections.
	Close() error
}
