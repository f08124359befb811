package pg

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	apperrors "pos-migrate/internal/app/errors"
	"pos-migrate/internal/app/model"
	"pos-migrate/internal/app/repository"
)

// TestPostgresDB_Interface verifies PostgresDB implements TargetDAO
func TestPostgresDB_Interface(t *testing.T) {
	var _ repository.TargetDAO = (*PostgresDB)(nil)
}

var saleTable = model.Table{
	Name: "Sale",
	Columns: []model.Column{
		{Name: "id", PrimaryKey: true},
		{Name: "total"},
		{Name: "createdAt"},
	},
}

const saleInsert = `INSERT INTO "Sale" ("id", "total", "createdAt") VALUES ($1, $2, $3) ON CONFLICT ("id") DO NOTHING`

func newMock(t *testing.T) (*PostgresDB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return &PostgresDB{db: db}, mock
}

func TestInsertQuery(t *testing.T) {
	assert.Equal(t, saleInsert, InsertQuery(saleTable, "id"))

	user := model.Table{Name: "User", Columns: []model.Column{{Name: "username"}, {Name: "password"}}}
	assert.Equal(t,
		`INSERT INTO "User" ("username", "password") VALUES ($1, $2) ON CONFLICT ("username") DO NOTHING`,
		InsertQuery(user, "username"))
}

func TestPostgresDB_BeginTable_InsertAndCommit(t *testing.T) {
	pdb, mock := newMock(t)
	ctx := context.Background()
	createdAt := time.Unix(1700000000, 0).UTC()

	mock.ExpectBegin()
	mock.ExpectPrepare(regexp.QuoteMeta(saleInsert))
	mock.ExpectExec(regexp.QuoteMeta(saleInsert)).
		WithArgs(int64(1), 9.5, createdAt).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta(saleInsert)).
		WithArgs(int64(2), 3.0, createdAt).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()

	writer, err := pdb.BeginTable(ctx, saleTable, "id")
	require.NoError(t, err)

	inserted, err := writer.Insert(ctx, model.Row{int64(1), 9.5, createdAt})
	require.NoError(t, err)
	assert.True(t, inserted)

	inserted, err = writer.Insert(ctx, model.Row{int64(2), 3.0, createdAt})
	require.NoError(t, err)
	assert.False(t, inserted, "conflicting row must be reported as skipped")

	require.NoError(t, writer.Commit())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresDB_BeginTable_InsertErrorRollsBack(t *testing.T) {
	pdb, mock := newMock(t)
	ctx := context.Background()

	mock.ExpectBegin()
	mock.ExpectPrepare(regexp.QuoteMeta(saleInsert))
	mock.ExpectExec(regexp.QuoteMeta(saleInsert)).
		WithArgs(int64(1), "oops", nil).
		WillReturnError(&pq.Error{Code: "22P02", Message: "invalid input syntax for type numeric"})
	mock.ExpectRollback()

	writer, err := pdb.BeginTable(ctx, saleTable, "id")
	require.NoError(t, err)

	_, err = writer.Insert(ctx, model.Row{int64(1), "oops", nil})
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrInsertFailed))

	require.NoError(t, writer.Rollback())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresDB_BeginTable_MissingTable(t *testing.T) {
	pdb, mock := newMock(t)

	mock.ExpectBegin()
	mock.ExpectPrepare(regexp.QuoteMeta(saleInsert)).
		WillReturnError(&pq.Error{Code: codeUndefinedTable, Message: `relation "Sale" does not exist`})
	mock.ExpectRollback()

	_, err := pdb.BeginTable(context.Background(), saleTable, "id")
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrTableNotFound))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresDB_BeginTable_BeginFails(t *testing.T) {
	pdb, mock := newMock(t)

	mock.ExpectBegin().WillReturnError(errors.New("connection refused"))

	_, err := pdb.BeginTable(context.Background(), saleTable, "id")
	assert.True(t, errors.Is(err, apperrors.ErrTransaction))
}

func TestPostgresDB_Sequence(t *testing.T) {
	tests := []struct {
		name      string
		setupMock func(mock sqlmock.Sqlmock)
		wantMax   any
		wantSet   bool
	}{
		{
			name: "numeric_key_with_sequence",
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(regexp.QuoteMeta(`SELECT MAX("id") FROM "Sale"`)).
					WillReturnRows(sqlmock.NewRows([]string{"max"}).AddRow(int64(41)))
				mock.ExpectQuery(regexp.QuoteMeta(`SELECT setval(pg_get_serial_sequence($1, $2), $3, false)`)).
					WithArgs(`"Sale"`, "id", int64(42)).
					WillReturnRows(sqlmock.NewRows([]string{"setval"}).AddRow(int64(42)))
			},
			wantMax: int64(41),
			wantSet: true,
		},
		{
			name: "column_without_sequence",
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(regexp.QuoteMeta(`SELECT MAX("id") FROM "Sale"`)).
					WillReturnRows(sqlmock.NewRows([]string{"max"}).AddRow(int64(41)))
				mock.ExpectQuery(regexp.QuoteMeta(`SELECT setval(pg_get_serial_sequence($1, $2), $3, false)`)).
					WithArgs(`"Sale"`, "id", int64(42)).
					WillReturnRows(sqlmock.NewRows([]string{"setval"}).AddRow(nil))
			},
			wantMax: int64(41),
			wantSet: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pdb, mock := newMock(t)
			ctx := context.Background()

			mock.ExpectBegin()
			tt.setupMock(mock)
			mock.ExpectCommit()

			tx, err := pdb.BeginSequence(ctx)
			require.NoError(t, err)

			max, err := tx.MaxKey(ctx, "Sale", "id")
			require.NoError(t, err)
			assert.Equal(t, tt.wantMax, max)

			set, err := tx.SetSequence(ctx, "Sale", "id", 42)
			require.NoError(t, err)
			assert.Equal(t, tt.wantSet, set)

			require.NoError(t, tx.Commit())
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestPostgresDB_Sequence_EmptyTable(t *testing.T) {
	pdb, mock := newMock(t)
	ctx := context.Background()

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT MAX("id") FROM "Session"`)).
		WillReturnRows(sqlmock.NewRows([]string{"max"}).AddRow(nil))
	mock.ExpectRollback()

	tx, err := pdb.BeginSequence(ctx)
	require.NoError(t, err)

	max, err := tx.MaxKey(ctx, "Session", "id")
	require.NoError(t, err)
	assert.Nil(t, max)

	require.NoError(t, tx.Rollback())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresDB_CountRows(t *testing.T) {
	pdb, mock := newMock(t)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT COUNT(*) FROM "Category"`)).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(int64(3)))
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT COUNT(*) FROM "Missing"`)).
		WillReturnError(&pq.Error{Code: codeUndefinedTable})

	count, err := pdb.CountRows(context.Background(), "Category")
	require.NoError(t, err)
	assert.Equal(t, int64(3), count)

	_, err = pdb.CountRows(context.Background(), "Missing")
	assert.True(t, errors.Is(err, apperrors.ErrTableNotFound))
	assert.NoError(t, mock.ExpectationsWereMet())
}

// TestPostgresDB_Close_Unit tests the Close method with mock
func TestPostgresDB_Close_Unit(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	postgresDB := &PostgresDB{db: db}
	mock.ExpectClose()

	assert.NoError(t, postgresDB.Close())
	assert.NoError(t, mock.ExpectationsWereMet())
}
