package repository

import (
	"context"

	"pos-migrate/internal/app/model"
)

// SourceDAO reads tables out of the embedded source database.
type SourceDAO interface {
	Close() error

	// DescribeTable returns the table with its columns. A table that does not
	// exist comes back with no columns and no error.
	DescribeTable(ctx context.Context, table string) (model.Table, error)

	ReadRows(ctx context.Context, table model.Table) ([]model.Row, error)

	CountRows(ctx context.Context, table string) (int64, error)
}

// TargetDAO writes migrated rows and manages sequences in the hosted database.
type TargetDAO interface {
	Close() error

	// BeginTable opens a unit of work that inserts rows into one table and
	// silently skips rows that conflict on conflictKey.
	BeginTable(ctx context.Context, table model.Table, conflictKey string) (TableWriter, error)

	// BeginSequence opens a unit of work for resetting one table's sequence.
	BeginSequence(ctx context.Context) (SequenceTx, error)

	CountRows(ctx context.Context, table string) (int64, error)
}

// TableWriter inserts rows for a single table inside one transaction.
type TableWriter interface {
	// Insert reports false when the row already existed.
	Insert(ctx context.Context, row model.Row) (bool, error)
	Commit() error
	Rollback() error
}

// SequenceTx resets one sequence inside one transaction.
type SequenceTx interface {
	// MaxKey returns the raw MAX(keyColumn) value; nil for an empty table.
	MaxKey(ctx context.Context, table, keyColumn string) (any, error)

	// SetSequence makes next the value returned by the next nextval call.
	// It reports false when the column has no backing sequence.
	SetSequence(ctx context.Context, table, keyColumn string, next int64) (bool, error)

	Commit() error
	Rollback() error
}
