package migrate

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/costbase/costbase/internal/db"
	"github.com/costbase/costbase/internal/seed"
	"github.com/costbase/costbase/pkg/drivers/postgres"
)

func newPostgresRunner(t *testing.T) (*Runner, sqlmock.Sqlmock) {
	t.Helper()
	mockdb, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherEqual))
	require.NoError(t, err)
	t.Cleanup(func() { _ = mockdb.Close() })

	database := db.Wrap(postgres.New(mockdb, nil), nil)
	return NewRunner(database, seed.NewEngine(database, "", nil), nil), mock
}

func TestDefaultSettings_PostgresInsertsMissingRow(t *testing.T) {
	r, mock := newPostgresRunner(t)

	probe := "SELECT id FROM app_settings WHERE id = 1"
	mock.ExpectPrepare(probe)
	mock.ExpectQuery(probe).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	ins := "INSERT INTO app_settings (id) VALUES (1) RETURNING id"
	mock.ExpectPrepare(ins)
	mock.ExpectQuery(ins).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(1)))

	require.NoError(t, r.defaultSettings(context.Background(), slog.New(slog.NewTextHandler(io.Discard, nil))))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDefaultSettings_PostgresSkipsPresentRow(t *testing.T) {
	r, mock := newPostgresRunner(t)

	probe := "SELECT id FROM app_settings WHERE id = 1"
	mock.ExpectPrepare(probe)
	mock.ExpectQuery(probe).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(1)))

	require.NoError(t, r.defaultSettings(context.Background(), slog.New(slog.NewTextHandler(io.Discard, nil))))
	assert.NoError(t, mock.ExpectationsWereMet())
}
