package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"strings"

	_ "github.com/mattn/go-sqlite3"
	apperrors "pos-migrate/internal/app/errors"
	"pos-migrate/internal/app/model"
)

type SQLiteDB struct {
	db *sql.DB
}

// NewSQLiteDB opens the source database read-only. The file must exist.
func NewSQLiteDB(ctx context.Context, dbPath string) (*SQLiteDB, error) {
	if _, err := os.Stat(dbPath); err != nil {
		return nil, apperrors.Mark(fmt.Errorf("sqlite database %s: %w", dbPath, err), apperrors.ErrDatabaseConnection)
	}

	db, err := sql.Open("sqlite3", fmt.Sprintf("file:%s?mode=ro", dbPath))
	if err != nil {
		return nil, apperrors.Mark(err, apperrors.ErrDatabaseConnection)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, apperrors.Mark(err, apperrors.ErrDatabaseConnection)
	}
	return &SQLiteDB{db: db}, nil
}

func (s *SQLiteDB) Close() error {
	return s.db.Close()
}

func (s *SQLiteDB) DescribeTable(ctx context.Context, table string) (model.Table, error) {
	query := `SELECT name, type, "notnull", pk FROM pragma_table_info(?) ORDER BY cid`
	rows, err := s.db.QueryContext(ctx, query, table)
	if err != nil {
		return model.Table{}, apperrors.Mark(fmt.Errorf("describe %s: %w", table, err), apperrors.ErrQueryFailed)
	}
	defer rows.Close()

	described := model.Table{Name: table}
	for rows.Next() {
		var (
			col     model.Column
			notNull int
			pk      int
		)
		if err := rows.Scan(&col.Name, &col.Type, &notNull, &pk); err != nil {
			return model.Table{}, apperrors.Mark(err, apperrors.ErrScanFailed)
		}
		col.NotNull = notNull != 0
		col.PrimaryKey = pk > 0
		described.Columns = append(described.Columns, col)
	}
	if err := rows.Err(); err != nil {
		return model.Table{}, apperrors.Mark(err, apperrors.ErrQueryFailed)
	}
	return described, nil
}

func (s *SQLiteDB) ReadRows(ctx context.Context, table model.Table) ([]model.Row, error) {
	if len(table.Columns) == 0 {
		return nil, apperrors.Mark(fmt.Errorf("%s has no columns", table.Name), apperrors.ErrTableNotFound)
	}

	query := fmt.Sprintf("SELECT %s FROM %s", rawColumns(table.ColumnNames()), quoteIdentifier(table.Name))
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, classify(fmt.Errorf("read %s: %w", table.Name, err))
	}
	defer rows.Close()

	var result []model.Row
	for rows.Next() {
		values := make([]any, len(table.Columns))
		dest := make([]any, len(values))
		for i := range values {
			dest[i] = &values[i]
		}
		if err := rows.Scan(dest...); err != nil {
			return nil, apperrors.Mark(err, apperrors.ErrScanFailed)
		}
		restoreBooleans(table, values)
		result = append(result, model.Row(values))
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.Mark(err, apperrors.ErrQueryFailed)
	}
	return result, nil
}

func (s *SQLiteDB) CountRows(ctx context.Context, table string) (int64, error) {
	var count int64
	query := "SELECT COUNT(*) FROM " + quoteIdentifier(table)
	if err := s.db.QueryRowContext(ctx, query).Scan(&count); err != nil {
		return 0, classify(fmt.Errorf("count %s: %w", table, err))
	}
	return count, nil
}

func classify(err error) error {
	if strings.Contains(err.Error(), "no such table") {
		return apperrors.Mark(err, apperrors.ErrTableNotFound)
	}
	return apperrors.Mark(err, apperrors.ErrQueryFailed)
}

func quoteIdentifier(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

// rawColumns selects each column as +"col". The expression has no declared
// type, so the driver hands back stored integers and text as is instead of
// decoding DATETIME columns itself.
func rawColumns(names []string) string {
	quoted := make([]string, len(names))
	for i, n := range names {
		quoted[i] = "+" + quoteIdentifier(n)
	}
	return strings.Join(quoted, ", ")
}

// restoreBooleans turns 0/1 back into bool for BOOLEAN columns, which the
// raw projection no longer does.
func restoreBooleans(table model.Table, values []any) {
	for i, col := range table.Columns {
		if !strings.EqualFold(col.Type, "BOOLEAN") {
			continue
		}
		if n, ok := values[i].(int64); ok {
			values[i] = n != 0
		}
	}
}
