package testutil

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	"pos-migrate/internal/app/model"
)

// Sample point-of-sale tables shaped like the Prisma SQLite schema.
var (
	CategoryTable = model.Table{Name: "Category", Columns: []model.Column{
		{Name: "id", Type: "INTEGER", PrimaryKey: true, NotNull: true},
		{Name: "name", Type: "TEXT", NotNull: true},
		{Name: "createdAt", Type: "DATETIME", NotNull: true},
	}}

	ProductTable = model.Table{Name: "Product", Columns: []model.Column{
		{Name: "id", Type: "INTEGER", PrimaryKey: true, NotNull: true},
		{Name: "name", Type: "TEXT", NotNull: true},
		{Name: "price", Type: "REAL", NotNull: true},
		{Name: "categoryId", Type: "INTEGER"},
		{Name: "updatedAt", Type: "DATETIME", NotNull: true},
	}}

	// UserTable has no id column; it is keyed by username.
	UserTable = model.Table{Name: "User", Columns: []model.Column{
		{Name: "username", Type: "TEXT", PrimaryKey: true, NotNull: true},
		{Name: "password", Type: "TEXT", NotNull: true},
		{Name: "role", Type: "TEXT", NotNull: true},
		{Name: "createdAt", Type: "DATETIME", NotNull: true},
	}}

	SaleTable = model.Table{Name: "Sale", Columns: []model.Column{
		{Name: "id", Type: "INTEGER", PrimaryKey: true, NotNull: true},
		{Name: "total", Type: "REAL", NotNull: true},
		{Name: "date", Type: "DATETIME", NotNull: true},
		{Name: "createdAt", Type: "DATETIME", NotNull: true},
	}}

	SessionTable = model.Table{Name: "Session", Columns: []model.Column{
		{Name: "id", Type: "TEXT", PrimaryKey: true, NotNull: true},
		{Name: "expiresAt", Type: "DATETIME", NotNull: true},
	}}
)

// CategoryRows returns three categories with millisecond timestamps.
func CategoryRows() []model.Row {
	return []model.Row{
		{int64(1), "Drinks", int64(1700000000000)},
		{int64(2), "Snacks", int64(1700000060000)},
		{int64(3), "Bakery", int64(1700000120000)},
	}
}

func ProductRows() []model.Row {
	return []model.Row{
		{int64(1), "Cola", 1.5, int64(1), int64(1700000000000)},
		{int64(2), "Chips", 2.25, int64(2), int64(1700000000000)},
		{int64(3), "Bread", 3.0, int64(3), int64(1700000000000)},
	}
}

func UserRows() []model.Row {
	return []model.Row{
		{"admin", "hash-1", "ADMIN", int64(1700000000)},
		{"cashier", "hash-2", "CASHIER", int64(1700000000)},
	}
}

func SaleRows() []model.Row {
	return []model.Row{
		{int64(10), 12.5, int64(1700000000000), int64(1700000000000)},
		{int64(11), 4.0, int64(1700003600000), int64(1700003600000)},
	}
}

// NewObservedLogger returns a logger that records every entry at or above
// level for later assertions.
func NewObservedLogger(level zapcore.Level) (*zap.Logger, *observer.ObservedLogs) {
	core, logs := observer.New(level)
	return zap.New(core), logs
}
