/*
Package sqlite provides a SQLite-backed report sink and reader.

PURPOSE:
  Implements store.Sink and store.Reader on a local file. Useful where no
  PostgreSQL server is available; the table layout matches the postgres
  sink column for column.

REPLACE SEMANTICS:
  One transaction: DROP TABLE IF EXISTS, CREATE TABLE, one INSERT per row,
  COMMIT. Any failure rolls the whole thing back and the previous table
  stays readable.

AMOUNTS:
  Amounts are bound as fixed two-decimal strings. SQLite stores DECIMAL
  columns with NUMERIC affinity; they are read back as text and parsed
  with shopspring/decimal, never through float64 arithmetic.

CONCURRENCY:
  Uses sync.RWMutex so that API reads never observe a half-applied
  Replace from the same process.

WAL MODE:
  File databases are opened with WAL so the report API can read while a
  run writes.

USAGE:
  s, err := sqlite.New("./sport_bonus.db")
  if err != nil {
      return err
  }
  defer s.Close()
  err = s.Replace(ctx, "salaires_primes", rows)

SEE ALSO:
  - store/store.go: Interface definitions
  - store/postgres: Default sink
*/
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"sync"

	_ "github.com/mattn/go-sqlite3"

	"github.com/warp/sport-bonus/report"
	"github.com/warp/sport-bonus/store"
)

// Store implements store.Sink and store.Reader using SQLite.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

// New opens the database at dbPath. Use ":memory:" for an in-memory
// database.
func New(dbPath string) (*Store, error) {
	dsn := dbPath + "?_journal_mode=WAL&_busy_timeout=5000"
	if dbPath == ":memory:" {
		dsn = dbPath
	}
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// An in-memory database lives in a single connection.
	db.SetMaxOpenConns(1)
	return NewWithDB(db), nil
}

// NewWithDB wraps an already opened handle.
func NewWithDB(db *sql.DB) *Store {
	return &Store{db: db}
}

func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func createTableSQL(table string) string {
	return fmt.Sprintf(`CREATE TABLE %s (
		employee_id TEXT NOT NULL PRIMARY KEY,
		salary DECIMAL(12,2) NOT NULL,
		total_activities INTEGER NOT NULL,
		eligibility_wellness_days BOOLEAN NOT NULL,
		eligibility_bonus BOOLEAN NOT NULL,
		bonus_amount DECIMAL(12,2) NOT NULL,
		new_salary DECIMAL(12,2) NOT NULL
	)`, quote(table))
}

func insertSQL(table string) string {
	marks := strings.TrimSuffix(strings.Repeat("?, ", len(report.Columns)), ", ")
	return fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		quote(table), strings.Join(report.Columns, ", "), marks)
}

func selectSQL(table string) string {
	return fmt.Sprintf("SELECT %s FROM %s", strings.Join(report.Columns, ", "), quote(table))
}

// =============================================================================
// SINK (store.Sink interface)
// =============================================================================

// Replace drops and recreates table, then inserts rows, atomically.
func (s *Store) Replace(ctx context.Context, table string, rows []report.Row) error {
	if err := store.ValidTable(table); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DROP TABLE IF EXISTS "+quote(table)); err != nil {
		return fmt.Errorf("failed to drop table %s: %w", table, err)
	}
	if _, err := tx.ExecContext(ctx, createTableSQL(table)); err != nil {
		return fmt.Errorf("failed to create table %s: %w", table, err)
	}

	query := insertSQL(table)
	for _, r := range rows {
		if _, err := tx.ExecContext(ctx, query, r.Values()...); err != nil {
			return fmt.Errorf("failed to insert employee %s: %w", r.EmployeeID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit: %w", err)
	}
	return nil
}

// =============================================================================
// READER (store.Reader interface)
// =============================================================================

func (s *Store) ListReport(ctx context.Context, table string) ([]report.Row, error) {
	if err := store.ValidTable(table); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, selectSQL(table)+" ORDER BY employee_id")
	if err != nil {
		if isNoSuchTable(err) {
			return nil, store.ErrNotFound
		}
		return nil, fmt.Errorf("failed to query report: %w", err)
	}
	defer rows.Close()

	var out []report.Row
	for rows.Next() {
		r, err := scanRow(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func (s *Store) GetReport(ctx context.Context, table, employeeID string) (report.Row, error) {
	if err := store.ValidTable(table); err != nil {
		return report.Row{}, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, selectSQL(table)+" WHERE employee_id = ?",
		strings.ToLower(strings.TrimSpace(employeeID)))
	if err != nil {
		if isNoSuchTable(err) {
			return report.Row{}, store.ErrNotFound
		}
		return report.Row{}, fmt.Errorf("failed to query report: %w", err)
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return report.Row{}, err
		}
		return report.Row{}, store.ErrNotFound
	}
	return scanRow(rows)
}

func scanRow(rows *sql.Rows) (report.Row, error) {
	var (
		id, salary, amount, newSalary string
		activities                    int
		wellnessDays, bonus           bool
	)
	if err := rows.Scan(&id, &salary, &activities, &wellnessDays, &bonus, &amount, &newSalary); err != nil {
		return report.Row{}, fmt.Errorf("failed to scan report row: %w", err)
	}
	return report.RowFromStrings(id, salary, activities, wellnessDays, bonus, amount, newSalary)
}

// Helper functions

func quote(table string) string {
	return `"` + table + `"`
}

func isNoSuchTable(err error) bool {
	return err != nil && strings.Contains(err.Error(), "no such table")
}

var _ store.ReadSink = (*Store)(nil)
