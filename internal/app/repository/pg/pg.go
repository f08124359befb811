package pg

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/lib/pq"
	apperrors "pos-migrate/internal/app/errors"
	"pos-migrate/internal/app/model"
	"pos-migrate/internal/app/repository"
)

// undefined_table
const codeUndefinedTable = "42P01"

type PostgresDB struct {
	db *sql.DB
}

// NewPostgresDB opens the target database and verifies it is reachable.
func NewPostgresDB(ctx context.Context, connectionString string) (*PostgresDB, error) {
	db, err := sql.Open("postgres", connectionString)
	if err != nil {
		return nil, apperrors.Mark(err, apperrors.ErrDatabaseConnection)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, apperrors.Mark(err, apperrors.ErrDatabaseConnection)
	}
	return &PostgresDB{db: db}, nil
}

func (pdb *PostgresDB) Close() error {
	return pdb.db.Close()
}

// InsertQuery builds the conflict-skipping insert for a table.
func InsertQuery(table model.Table, conflictKey string) string {
	columns := make([]string, len(table.Columns))
	placeholders := make([]string, len(table.Columns))
	for i, c := range table.Columns {
		columns[i] = pq.QuoteIdentifier(c.Name)
		placeholders[i] = fmt.Sprintf("$%d", i+1)
	}
	return fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s) ON CONFLICT (%s) DO NOTHING",
		pq.QuoteIdentifier(table.Name),
		strings.Join(columns, ", "),
		strings.Join(placeholders, ", "),
		pq.QuoteIdentifier(conflictKey))
}

func (pdb *PostgresDB) BeginTable(ctx context.Context, table model.Table, conflictKey string) (repository.TableWriter, error) {
	tx, err := pdb.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, apperrors.Mark(err, apperrors.ErrTransaction)
	}
	stmt, err := tx.PrepareContext(ctx, InsertQuery(table, conflictKey))
	if err != nil {
		tx.Rollback()
		return nil, classify(fmt.Errorf("prepare insert into %s: %w", table.Name, err), apperrors.ErrInsertFailed)
	}
	return &tableWriter{tx: tx, stmt: stmt}, nil
}

type tableWriter struct {
	tx   *sql.Tx
	stmt *sql.Stmt
}

func (w *tableWriter) Insert(ctx context.Context, row model.Row) (bool, error) {
	res, err := w.stmt.ExecContext(ctx, row...)
	if err != nil {
		return false, classify(err, apperrors.ErrInsertFailed)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, apperrors.Mark(err, apperrors.ErrInsertFailed)
	}
	return affected > 0, nil
}

func (w *tableWriter) Commit() error {
	w.stmt.Close()
	if err := w.tx.Commit(); err != nil {
		return apperrors.Mark(err, apperrors.ErrTransaction)
	}
	return nil
}

func (w *tableWriter) Rollback() error {
	w.stmt.Close()
	if err := w.tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
		return apperrors.Mark(err, apperrors.ErrTransaction)
	}
	return nil
}

func (pdb *PostgresDB) BeginSequence(ctx context.Context) (repository.SequenceTx, error) {
	tx, err := pdb.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, apperrors.Mark(err, apperrors.ErrTransaction)
	}
	return &sequenceTx{tx: tx}, nil
}

type sequenceTx struct {
	tx *sql.Tx
}

func (s *sequenceTx) MaxKey(ctx context.Context, table, keyColumn string) (any, error) {
	query := fmt.Sprintf("SELECT MAX(%s) FROM %s", pq.QuoteIdentifier(keyColumn), pq.QuoteIdentifier(table))
	var raw any
	if err := s.tx.QueryRowContext(ctx, query).Scan(&raw); err != nil {
		return nil, classify(fmt.Errorf("max %s.%s: %w", table, keyColumn, err), apperrors.ErrQueryFailed)
	}
	return raw, nil
}

func (s *sequenceTx) SetSequence(ctx context.Context, table, keyColumn string, next int64) (bool, error) {
	query := `SELECT setval(pg_get_serial_sequence($1, $2), $3, false)`
	var value sql.NullInt64
	err := s.tx.QueryRowContext(ctx, query, pq.QuoteIdentifier(table), keyColumn, next).Scan(&value)
	if err != nil {
		return false, classify(fmt.Errorf("setval %s: %w", table, err), apperrors.ErrSequenceReset)
	}
	return value.Valid, nil
}

func (s *sequenceTx) Commit() error {
	if err := s.tx.Commit(); err != nil {
		return apperrors.Mark(err, apperrors.ErrTransaction)
	}
	return nil
}

func (s *sequenceTx) Rollback() error {
	if err := s.tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
		return apperrors.Mark(err, apperrors.ErrTransaction)
	}
	return nil
}

func (pdb *PostgresDB) CountRows(ctx context.Context, table string) (int64, error) {
	var count int64
	query := "SELECT COUNT(*) FROM " + pq.QuoteIdentifier(table)
	if err := pdb.db.QueryRowContext(ctx, query).Scan(&count); err != nil {
		return 0, classify(fmt.Errorf("count %s: %w", table, err), apperrors.ErrQueryFailed)
	}
	return count, nil
}

func classify(err error, fallback *apperrors.Error) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == codeUndefinedTable {
		return apperrors.Mark(err, apperrors.ErrTableNotFound)
	}
	return apperrors.Mark(err, fallback)
}
