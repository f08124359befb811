package model

import "github.com/samber/lo"

// Column describes one source column as reported by PRAGMA table_info.
type Column struct {
	Name       string
	Type       string
	NotNull    bool
	PrimaryKey bool
}

// Table is a table name plus its ordered columns.
type Table struct {
	Name    string
	Columns []Column
}

// Row holds values positionally aligned with Table.Columns.
type Row []any

// ColumnNames returns the column names in declaration order.
func (t Table) ColumnNames() []string {
	return lo.Map(t.Columns, func(c Column, _ int) string {
		return c.Name
	})
}

// HasColumn reports whether the table declares a column with the given name.
func (t Table) HasColumn(name string) bool {
	return lo.ContainsBy(t.Columns, func(c Column) bool {
		return c.Name == name
	})
}
