package testutil

import (
	"context"
	"fmt"
	"sync"

	apperrors "pos-migrate/internal/app/errors"
	"pos-migrate/internal/app/model"
)

// MockSourceDAO is an in-memory repository.SourceDAO.
type MockSourceDAO struct {
	mu     sync.RWMutex
	tables map[string]model.Table
	rows   map[string][]model.Row

	// ErrorMap forces a method ("DescribeTable", "ReadRows", "CountRows")
	// to fail.
	ErrorMap map[string]error
	Closed   bool
}

func NewMockSourceDAO() *MockSourceDAO {
	return &MockSourceDAO{
		tables:   make(map[string]model.Table),
		rows:     make(map[string][]model.Row),
		ErrorMap: make(map[string]error),
	}
}

// AddTable registers a table and its rows.
func (m *MockSourceDAO) AddTable(table model.Table, rows ...model.Row) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tables[table.Name] = table
	m.rows[table.Name] = append([]model.Row(nil), rows...)
}

func (m *MockSourceDAO) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Closed = true
	return m.ErrorMap["Close"]
}

func (m *MockSourceDAO) DescribeTable(ctx context.Context, table string) (model.Table, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if err := m.ErrorMap["DescribeTable"]; err != nil {
		return model.Table{}, err
	}
	t, ok := m.tables[table]
	if !ok {
		return model.Table{Name: table}, nil
	}
	return t, nil
}

func (m *MockSourceDAO) ReadRows(ctx context.Context, table model.Table) ([]model.Row, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if err := m.ErrorMap["ReadRows"]; err != nil {
		return nil, err
	}
	rows := make([]model.Row, len(m.rows[table.Name]))
	for i, r := range m.rows[table.Name] {
		rows[i] = append(model.Row(nil), r...)
	}
	return rows, nil
}

func (m *MockSourceDAO) CountRows(ctx context.Context, table string) (int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if err := m.ErrorMap["CountRows"]; err != nil {
		return 0, err
	}
	if _, ok := m.tables[table]; !ok {
		return 0, apperrors.Mark(fmt.Errorf("no such table: %s", table), apperrors.ErrTableNotFound)
	}
	return int64(len(m.rows[table])), nil
}
