package migrate

import (
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
)

// Postgres error codes treated as proof of prior application.
const (
	pgDuplicateTable  = "42P07"
	pgDuplicateColumn = "42701"
	pgDuplicateObject = "42710"
	pgUndefinedTable  = "42P01"
	pgUniqueViolation = "23505"
)

// benignSignatures are substrings of error text, across both engines, that
// mean the statement's effect is already present (or its optional target is
// absent). They replace a migration-version ledger: hitting one is treated
// as evidence the change was applied before.
var benignSignatures = []string{
	"already exists",
	"duplicate column",
	"does not exist",
	"no such table",
	"no such column",
	"unique constraint",
}

// IsBenign classifies an error as a known idempotency signature. Benign
// errors are logged at informational level and execution continues.
func IsBenign(err error) bool {
	if err == nil {
		return false
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgDuplicateTable, pgDuplicateColumn, pgDuplicateObject,
			pgUndefinedTable, pgUniqueViolation:
			return true
		}
	}

	msg := strings.ToLower(err.Error())
	for _, sig := range benignSignatures {
		if strings.Contains(msg, sig) {
			return true
		}
	}
	return false
}
