package postgres

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/costbase/costbase/pkg/driver"
)

func newMockDriver(t *testing.T) (*Driver, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherEqual))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return New(db, nil), mock
}

func TestOpen_MissingURL(t *testing.T) {
	_, err := Open(driver.Config{}, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection URL")
}

func TestCapabilities(t *testing.T) {
	d, _ := newMockDriver(t)

	caps := d.Capabilities()
	assert.Equal(t, "postgres", caps.Name)
	assert.True(t, caps.ClientServer)
	assert.False(t, caps.Embedded)
	assert.Equal(t, driver.PlaceholderDollar, caps.Placeholder)
	assert.True(t, caps.NeedsReturning)
	assert.True(t, caps.AddColumnIfNotExists)
}

func TestTranslate(t *testing.T) {
	tests := []struct {
		name      string
		query     string
		recoverID bool
		want      string
		wantMode  driver.InsertIDMode
	}{
		{
			name:      "bare insert gains returning",
			query:     "INSERT INTO projects (name) VALUES (?)",
			recoverID: true,
			want:      "INSERT INTO projects (name) VALUES ($1) RETURNING id",
			wantMode:  driver.InsertIDReturning,
		},
		{
			name:      "insert without id recovery stays bare",
			query:     "INSERT INTO categories (code, label, display_order) VALUES (?, ?, ?)",
			recoverID: false,
			want:      "INSERT INTO categories (code, label, display_order) VALUES ($1, $2, $3)",
			wantMode:  driver.InsertIDNone,
		},
		{
			name:      "explicit returning left to the caller",
			query:     "INSERT INTO projects (name) VALUES (?) RETURNING name",
			recoverID: true,
			want:      "INSERT INTO projects (name) VALUES ($1) RETURNING name",
			wantMode:  driver.InsertIDNone,
		},
		{
			name:      "select only rewrites markers",
			query:     "SELECT * FROM projects WHERE id = ? AND status = ?",
			recoverID: true,
			want:      "SELECT * FROM projects WHERE id = $1 AND status = $2",
			wantMode:  driver.InsertIDNone,
		},
		{
			name:      "update has no insert id",
			query:     "UPDATE projects SET name = ? WHERE id = ?",
			recoverID: true,
			want:      "UPDATE projects SET name = $1 WHERE id = $2",
			wantMode:  driver.InsertIDNone,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, mode := translate(tt.query, tt.recoverID)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.wantMode, mode)
		})
	}
}

func TestRun_InsertWithoutIDRecovery(t *testing.T) {
	d, mock := newMockDriver(t)

	translated := "INSERT INTO categories (code, label, display_order) VALUES ($1, $2, $3)"
	mock.ExpectPrepare(translated)
	mock.ExpectExec(translated).
		WithArgs("labor", "Labor", 1).
		WillReturnResult(sqlmock.NewResult(0, 1))

	stmt, err := d.Prepare("INSERT INTO categories (code, label, display_order) VALUES (?, ?, ?)",
		driver.WithoutInsertID())
	require.NoError(t, err)
	defer func() { _ = stmt.Close() }()

	res, err := stmt.Run(context.Background(), "labor", "Labor", 1)
	require.NoError(t, err)
	assert.Equal(t, int64(1), res.Changes)
	assert.False(t, res.LastInsertID.Valid, "no generated key to recover on a natural-key table")

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRun_InsertReadsGeneratedID(t *testing.T) {
	d, mock := newMockDriver(t)

	translated := "INSERT INTO projects (name) VALUES ($1) RETURNING id"
	mock.ExpectPrepare(translated)
	mock.ExpectQuery(translated).
		WithArgs("Alpha").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(7)))

	stmt, err := d.Prepare("INSERT INTO projects (name) VALUES (?)")
	require.NoError(t, err)
	defer func() { _ = stmt.Close() }()

	res, err := stmt.Run(context.Background(), "Alpha")
	require.NoError(t, err)
	assert.Equal(t, int64(1), res.Changes)
	require.True(t, res.LastInsertID.Valid)
	assert.Equal(t, int64(7), res.LastInsertID.Int64)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTransaction_Commit(t *testing.T) {
	d, mock := newMockDriver(t)

	translated := "UPDATE projects SET name_key = $1 WHERE id = $2"
	mock.ExpectBegin()
	mock.ExpectPrepare(translated)
	mock.ExpectExec(translated).
		WithArgs("alpha", int64(1)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	apply := d.Transaction(func(q driver.Querier) error {
		stmt, err := q.Prepare("UPDATE projects SET name_key = ? WHERE id = ?")
		if err != nil {
			return err
		}
		defer func() { _ = stmt.Close() }()

		res, err := stmt.Run(context.Background(), "alpha", int64(1))
		if err != nil {
			return err
		}
		assert.Equal(t, int64(1), res.Changes)
		return nil
	})

	require.NoError(t, apply(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTransaction_RollbackOnError(t *testing.T) {
	d, mock := newMockDriver(t)

	mock.ExpectBegin()
	mock.ExpectRollback()

	boom := errors.New("boom")
	apply := d.Transaction(func(_ driver.Querier) error {
		return boom
	})

	err := apply(context.Background())
	require.ErrorIs(t, err, boom)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPragma_NoOp(t *testing.T) {
	d, _ := newMockDriver(t)

	v, err := d.Pragma(context.Background(), "journal_mode")
	require.NoError(t, err)
	assert.False(t, v.Valid)
}
