package store

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/warp/sport-bonus/report"
)

// =============================================================================
// MEMORY STORE - In-memory implementation (for testing/dev)
// =============================================================================

type Memory struct {
	mu     sync.RWMutex
	tables map[string][]report.Row

	// PingErr and ReplaceErr, when set, are returned by the matching calls.
	PingErr    error
	ReplaceErr error

	replaces int
}

func NewMemory() *Memory {
	return &Memory{tables: make(map[string][]report.Row)}
}

func (m *Memory) Ping(context.Context) error { return m.PingErr }

// Replace swaps the whole table. On error the previous table is untouched.
func (m *Memory) Replace(_ context.Context, table string, rows []report.Row) error {
	if err := ValidTable(table); err != nil {
		return err
	}
	if m.ReplaceErr != nil {
		return m.ReplaceErr
	}

	sorted := append([]report.Row(nil), rows...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].EmployeeID < sorted[j].EmployeeID })

	m.mu.Lock()
	defer m.mu.Unlock()
	m.tables[table] = sorted
	m.replaces++
	return nil
}

func (m *Memory) Close() error { return nil }

// Replaces returns how many successful Replace calls happened.
func (m *Memory) Replaces() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.replaces
}

func (m *Memory) ListReport(_ context.Context, table string) ([]report.Row, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	rows, ok := m.tables[table]
	if !ok {
		return nil, ErrNotFound
	}
	return append([]report.Row(nil), rows...), nil
}

func (m *Memory) GetReport(_ context.Context, table, employeeID string) (report.Row, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	rows := m.tables[table]
	id := strings.ToLower(strings.TrimSpace(employeeID))
	i := sort.Search(len(rows), func(i int) bool { return rows[i].EmployeeID >= id })
	if i < len(rows) && rows[i].EmployeeID == id {
		return rows[i], nil
	}
	return report.Row{}, ErrNotFound
}
