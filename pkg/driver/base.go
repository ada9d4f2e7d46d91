package driver

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"
)

// InsertIDMode controls how a prepared statement recovers the generated
// primary key of an INSERT.
type InsertIDMode int

const (
	// InsertIDNone means the statement produces no insert id.
	InsertIDNone InsertIDMode = iota

	// InsertIDNative reads the id from the engine's last-insert-rowid.
	InsertIDNative

	// InsertIDReturning reads the id from an appended RETURNING clause.
	InsertIDReturning
)

// TranslateFunc rewrites authored statement text into the form the backend
// executes, and reports how the insert id is recovered for it. recoverID is
// false when the caller opted out of generated-key recovery.
type TranslateFunc func(query string, recoverID bool) (string, InsertIDMode)

// BaseSQLDriver provides common database/sql functionality for drivers.
// Embed this struct in concrete driver implementations to get standard
// Prepare, Exec, Transaction, and Close implementations.
type BaseSQLDriver struct {
	DB        *sql.DB
	Caps      Capabilities
	Logger    *slog.Logger
	Translate TranslateFunc
}

// Prepare compiles a statement after backend translation.
func (b *BaseSQLDriver) Prepare(query string, opts ...PrepareOpt) (Statement, error) {
	if b.DB == nil {
		return nil, fmt.Errorf("database connection not established")
	}
	translated, mode := b.translate(query, recoverInsertID(opts))
	stmt, err := b.DB.PrepareContext(context.Background(), translated)
	if err != nil {
		return nil, fmt.Errorf("failed to prepare statement: %w", err)
	}
	return &sqlStatement{stmt: stmt, mode: mode}, nil
}

// Exec executes raw statement text that returns no rows.
func (b *BaseSQLDriver) Exec(ctx context.Context, script string) error {
	if b.DB == nil {
		return fmt.Errorf("database connection not established")
	}
	if _, err := b.DB.ExecContext(ctx, script); err != nil {
		return fmt.Errorf("failed to execute SQL: %w", err)
	}
	return nil
}

// Transaction wraps work in a begin/commit/rollback envelope on a single
// connection checked out from the pool. The connection is released on every
// exit path.
func (b *BaseSQLDriver) Transaction(work func(Querier) error) TxFunc {
	return func(ctx context.Context) error {
		if b.DB == nil {
			return fmt.Errorf("database connection not established")
		}
		tx, err := b.DB.BeginTx(ctx, nil)
		if err != nil {
			return fmt.Errorf("failed to begin transaction: %w", err)
		}
		committed := false
		defer func() {
			if !committed {
				_ = tx.Rollback()
			}
		}()

		if err := work(&txQuerier{ctx: ctx, tx: tx, translate: b.translate}); err != nil {
			return err
		}

		if err := tx.Commit(); err != nil {
			return fmt.Errorf("failed to commit transaction: %w", err)
		}
		committed = true
		return nil
	}
}

// Capabilities reports the backend capability descriptor.
func (b *BaseSQLDriver) Capabilities() Capabilities {
	return b.Caps
}

// Close closes the database connection.
func (b *BaseSQLDriver) Close() error {
	if b.DB != nil {
		if b.Logger != nil {
			b.Logger.Debug("closing database connection")
		}
		return b.DB.Close()
	}
	return nil
}

func (b *BaseSQLDriver) translate(query string, recoverID bool) (string, InsertIDMode) {
	if b.Translate == nil {
		return query, InsertIDNone
	}
	return b.Translate(query, recoverID)
}

// recoverInsertID resolves the prepare options into the translate flag.
func recoverInsertID(opts []PrepareOpt) bool {
	var c prepareConfig
	for _, o := range opts {
		o(&c)
	}
	return !c.noInsertID
}

// txQuerier binds prepared statements to one open transaction so that all
// statements issued through it share the transaction's connection.
type txQuerier struct {
	ctx       context.Context
	tx        *sql.Tx
	translate TranslateFunc
}

func (q *txQuerier) Prepare(query string, opts ...PrepareOpt) (Statement, error) {
	translated, mode := q.translate(query, recoverInsertID(opts))
	stmt, err := q.tx.PrepareContext(q.ctx, translated)
	if err != nil {
		return nil, fmt.Errorf("failed to prepare statement: %w", err)
	}
	return &sqlStatement{stmt: stmt, mode: mode}, nil
}

func (q *txQuerier) Exec(ctx context.Context, script string) error {
	if _, err := q.tx.ExecContext(ctx, script); err != nil {
		return fmt.Errorf("failed to execute SQL: %w", err)
	}
	return nil
}

// sqlStatement implements Statement over a prepared *sql.Stmt.
type sqlStatement struct {
	stmt *sql.Stmt
	mode InsertIDMode
}

func (s *sqlStatement) All(ctx context.Context, args ...any) ([]Row, error) {
	rows, err := s.stmt.QueryContext(ctx, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to execute query: %w", err)
	}
	defer func() { _ = rows.Close() }()
	return scanRows(rows)
}

func (s *sqlStatement) Get(ctx context.Context, args ...any) (Row, error) {
	all, err := s.All(ctx, args...)
	if err != nil {
		return nil, err
	}
	if len(all) == 0 {
		return nil, nil
	}
	return all[0], nil
}

func (s *sqlStatement) Run(ctx context.Context, args ...any) (Result, error) {
	if s.mode == InsertIDReturning {
		return s.runReturning(ctx, args...)
	}

	res, err := s.stmt.ExecContext(ctx, args...)
	if err != nil {
		return Result{}, fmt.Errorf("failed to execute statement: %w", err)
	}

	out := Result{}
	if changes, err := res.RowsAffected(); err == nil {
		out.Changes = changes
	}
	if s.mode == InsertIDNative {
		if id, err := res.LastInsertId(); err == nil {
			out.LastInsertID = sql.NullInt64{Int64: id, Valid: true}
		}
	}
	return out, nil
}

// runReturning executes an INSERT carrying a RETURNING clause and reads the
// generated ids back, so the client-server engine matches the embedded
// engine's native last-insert-id behavior.
func (s *sqlStatement) runReturning(ctx context.Context, args ...any) (Result, error) {
	rows, err := s.stmt.QueryContext(ctx, args...)
	if err != nil {
		return Result{}, fmt.Errorf("failed to execute statement: %w", err)
	}
	defer func() { _ = rows.Close() }()

	out := Result{}
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return Result{}, fmt.Errorf("failed to scan returned id: %w", err)
		}
		out.Changes++
		out.LastInsertID = sql.NullInt64{Int64: id, Valid: true}
	}
	if err := rows.Err(); err != nil {
		return Result{}, fmt.Errorf("error iterating returned ids: %w", err)
	}
	return out, nil
}

func (s *sqlStatement) Close() error {
	return s.stmt.Close()
}

// scanRows converts sql.Rows into column-keyed maps. Byte slices are
// converted to strings so both engines yield comparable values.
func scanRows(rows *sql.Rows) ([]Row, error) {
	cols, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("failed to read columns: %w", err)
	}

	var out []Row
	for rows.Next() {
		values := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}

		row := make(Row, len(cols))
		for i, col := range cols {
			v := values[i]
			if b, ok := v.([]byte); ok {
				v = string(b)
			}
			row[col] = v
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}
	return out, nil
}

// IsInsert reports whether the statement text is an INSERT, ignoring leading
// whitespace and comments.
func IsInsert(query string) bool {
	return strings.HasPrefix(strings.ToUpper(leadingKeyword(query)), "INSERT")
}

// leadingKeyword returns the first token of a statement, skipping line and
// block comments.
func leadingKeyword(query string) string {
	s := strings.TrimSpace(query)
	for {
		switch {
		case strings.HasPrefix(s, "--"):
			idx := strings.IndexByte(s, '\n')
			if idx < 0 {
				return ""
			}
			s = strings.TrimSpace(s[idx+1:])
		case strings.HasPrefix(s, "/*"):
			idx := strings.Index(s, "*/")
			if idx < 0 {
				return ""
			}
			s = strings.TrimSpace(s[idx+2:])
		default:
			if idx := strings.IndexFunc(s, func(r rune) bool {
				return r == ' ' || r == '\t' || r == '\n' || r == '\r' || r == '('
			}); idx >= 0 {
				return s[:idx]
			}
			return s
		}
	}
}
