package testutil

import (
	"context"
	"fmt"
	"sync"

	"github.com/samber/lo"
	apperrors "pos-migrate/internal/app/errors"
	"pos-migrate/internal/app/model"
	"pos-migrate/internal/app/repository"
)

// MockTargetDAO is an in-memory repository.TargetDAO. Inserts become visible
// only on Commit, rows that match an existing conflict key are skipped, and
// sequences behave like setval(..., false).
type MockTargetDAO struct {
	mu        sync.Mutex
	tables    map[string]*mockTable
	sequences map[string]int64

	// FailInsert, when set, is consulted before every insert.
	FailInsert func(table string, row model.Row) error
	// ErrorMap forces a method to fail: "BeginTable", "BeginSequence",
	// "MaxKey", "SetSequence", "Commit", "Rollback" (sequence transactions),
	// "CountRows".
	ErrorMap map[string]error
	// NoSequence marks tables whose key column has no backing sequence.
	NoSequence map[string]bool

	Commits   int
	Rollbacks int
	Closed    bool
}

type mockTable struct {
	columns []string
	rows    []model.Row
}

func NewMockTargetDAO() *MockTargetDAO {
	return &MockTargetDAO{
		tables:     make(map[string]*mockTable),
		sequences:  make(map[string]int64),
		ErrorMap:   make(map[string]error),
		NoSequence: make(map[string]bool),
	}
}

// Seed stores committed rows directly, bypassing transactions.
func (m *MockTargetDAO) Seed(table model.Table, rows ...model.Row) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t := m.table(table.Name, table.ColumnNames())
	for _, r := range rows {
		t.rows = append(t.rows, append(model.Row(nil), r...))
	}
}

// Rows returns the committed rows of a table.
func (m *MockTargetDAO) Rows(table string) []model.Row {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.tables[table]
	if !ok {
		return nil
	}
	return lo.Map(t.rows, func(r model.Row, _ int) model.Row {
		return append(model.Row(nil), r...)
	})
}

// Sequence returns the value the next generated key would take, or 0 when
// the sequence was never set.
func (m *MockTargetDAO) Sequence(table string) int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sequences[table]
}

func (m *MockTargetDAO) table(name string, columns []string) *mockTable {
	t, ok := m.tables[name]
	if !ok {
		t = &mockTable{columns: columns}
		m.tables[name] = t
	}
	return t
}

func (m *MockTargetDAO) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Closed = true
	return nil
}

func (m *MockTargetDAO) BeginTable(ctx context.Context, table model.Table, conflictKey string) (repository.TableWriter, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.ErrorMap["BeginTable"]; err != nil {
		return nil, err
	}
	columns := table.ColumnNames()
	keyIndex := lo.IndexOf(columns, conflictKey)
	if keyIndex < 0 {
		return nil, apperrors.Mark(fmt.Errorf("column %q of %s does not exist", conflictKey, table.Name), apperrors.ErrInsertFailed)
	}
	return &mockWriter{dao: m, table: table.Name, columns: columns, keyIndex: keyIndex}, nil
}

type mockWriter struct {
	dao      *MockTargetDAO
	table    string
	columns  []string
	keyIndex int
	pending  []model.Row
}

func (w *mockWriter) Insert(ctx context.Context, row model.Row) (bool, error) {
	w.dao.mu.Lock()
	defer w.dao.mu.Unlock()
	if w.dao.FailInsert != nil {
		if err := w.dao.FailInsert(w.table, row); err != nil {
			return false, apperrors.Mark(err, apperrors.ErrInsertFailed)
		}
	}

	key := fmt.Sprint(row[w.keyIndex])
	if t, ok := w.dao.tables[w.table]; ok {
		idx := lo.IndexOf(t.columns, w.columns[w.keyIndex])
		if idx >= 0 && lo.ContainsBy(t.rows, func(r model.Row) bool { return fmt.Sprint(r[idx]) == key }) {
			return false, nil
		}
	}
	if lo.ContainsBy(w.pending, func(r model.Row) bool { return fmt.Sprint(r[w.keyIndex]) == key }) {
		return false, nil
	}
	w.pending = append(w.pending, append(model.Row(nil), row...))
	return true, nil
}

func (w *mockWriter) Commit() error {
	w.dao.mu.Lock()
	defer w.dao.mu.Unlock()
	if err := w.dao.ErrorMap["Commit"]; err != nil {
		return err
	}
	t := w.dao.table(w.table, w.columns)
	t.rows = append(t.rows, w.pending...)
	w.pending = nil
	w.dao.Commits++
	return nil
}

func (w *mockWriter) Rollback() error {
	w.dao.mu.Lock()
	defer w.dao.mu.Unlock()
	w.pending = nil
	w.dao.Rollbacks++
	return nil
}

func (m *MockTargetDAO) BeginSequence(ctx context.Context) (repository.SequenceTx, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.ErrorMap["BeginSequence"]; err != nil {
		return nil, err
	}
	return &mockSequenceTx{dao: m, pending: make(map[string]int64)}, nil
}

type mockSequenceTx struct {
	dao     *MockTargetDAO
	pending map[string]int64
}

func (s *mockSequenceTx) MaxKey(ctx context.Context, table, keyColumn string) (any, error) {
	s.dao.mu.Lock()
	defer s.dao.mu.Unlock()
	if err := s.dao.ErrorMap["MaxKey"]; err != nil {
		return nil, err
	}
	t, ok := s.dao.tables[table]
	if !ok {
		return nil, apperrors.Mark(fmt.Errorf("relation %q does not exist", table), apperrors.ErrTableNotFound)
	}
	idx := lo.IndexOf(t.columns, keyColumn)
	if idx < 0 {
		return nil, apperrors.Mark(fmt.Errorf("column %q does not exist", keyColumn), apperrors.ErrQueryFailed)
	}

	var max any
	for _, r := range t.rows {
		switch v := r[idx].(type) {
		case int64:
			if cur, ok := max.(int64); !ok || v > cur {
				max = v
			}
		case string:
			if cur, ok := max.(string); !ok || v > cur {
				max = v
			}
		}
	}
	return max, nil
}

func (s *mockSequenceTx) SetSequence(ctx context.Context, table, keyColumn string, next int64) (bool, error) {
	s.dao.mu.Lock()
	defer s.dao.mu.Unlock()
	if err := s.dao.ErrorMap["SetSequence"]; err != nil {
		return false, err
	}
	if s.dao.NoSequence[table] {
		return false, nil
	}
	s.pending[table] = next
	return true, nil
}

func (s *mockSequenceTx) Commit() error {
	s.dao.mu.Lock()
	defer s.dao.mu.Unlock()
	if err := s.dao.ErrorMap["Commit"]; err != nil {
		return err
	}
	for table, next := range s.pending {
		s.dao.sequences[table] = next
	}
	s.dao.Commits++
	return nil
}

func (s *mockSequenceTx) Rollback() error {
	s.dao.mu.Lock()
	defer s.dao.mu.Unlock()
	s.pending = map[string]int64{}
	s.dao.Rollbacks++
	return s.dao.ErrorMap["Rollback"]
}

func (m *MockTargetDAO) CountRows(ctx context.Context, table string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.ErrorMap["CountRows"]; err != nil {
		return 0, err
	}
	t, ok := m.tables[table]
	if !ok {
		return 0, apperrors.Mark(fmt.Errorf("relation %q does not exist", table), apperrors.ErrTableNotFound)
	}
	return int64(len(t.rows)), nil
}
