/*
Package postgres is the default report sink, backed by a pgx pool.

REPLACE SEMANTICS:
  One transaction: DROP TABLE IF EXISTS, CREATE TABLE, then a single COPY
  of every row. PostgreSQL DDL is transactional, so readers keep seeing
  the previous table until COMMIT.

AMOUNTS:
  numeric(12,2) columns. Values are sent as pgtype.Numeric built from the
  fixed two-decimal string and read back through ::text.

SEE ALSO:
  - store/store.go: Interface definitions
  - store/sqlite: Same contract on a local file
*/
package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/warp/sport-bonus/report"
	"github.com/warp/sport-bonus/store"
)

// undefinedTable is the SQLSTATE for a missing relation.
const undefinedTable = "42P01"

type Store struct {
	pool *pgxpool.Pool
}

// Connect opens a pool on dsn and pings it.
func Connect(ctx context.Context, dsn string, maxConns int32) (*Store, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse postgres dsn: %w", err)
	}
	if maxConns > 0 {
		cfg.MaxConns = maxConns
	}

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return &Store{pool: pool}, nil
}

// NewWithPool wraps an existing pool.
func NewWithPool(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

func (s *Store) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

func (s *Store) Close() error {
	s.pool.Close()
	return nil
}

func createTableSQL(ident string) string {
	return fmt.Sprintf(`CREATE TABLE %s (
		employee_id text PRIMARY KEY,
		salary numeric(12,2) NOT NULL,
		total_activities integer NOT NULL,
		eligibility_wellness_days boolean NOT NULL,
		eligibility_bonus boolean NOT NULL,
		bonus_amount numeric(12,2) NOT NULL,
		new_salary numeric(12,2) NOT NULL
	)`, ident)
}

func (s *Store) Replace(ctx context.Context, table string, rows []report.Row) error {
	if err := store.ValidTable(table); err != nil {
		return err
	}
	ident := pgx.Identifier{table}

	return pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, "DROP TABLE IF EXISTS "+ident.Sanitize()); err != nil {
			return fmt.Errorf("drop table %s: %w", table, err)
		}
		if _, err := tx.Exec(ctx, createTableSQL(ident.Sanitize())); err != nil {
			return fmt.Errorf("create table %s: %w", table, err)
		}

		n, err := tx.CopyFrom(ctx, ident, report.Columns, pgx.CopyFromSlice(len(rows), func(i int) ([]any, error) {
			return copyValues(rows[i])
		}))
		if err != nil {
			return fmt.Errorf("copy into %s: %w", table, err)
		}
		if int(n) != len(rows) {
			return fmt.Errorf("copy into %s: wrote %d of %d rows", table, n, len(rows))
		}
		return nil
	})
}

func copyValues(r report.Row) ([]any, error) {
	salary, err := numeric(r.Salary.StringFixed(2))
	if err != nil {
		return nil, err
	}
	amount, err := numeric(r.BonusAmount.StringFixed(2))
	if err != nil {
		return nil, err
	}
	newSalary, err := numeric(r.NewSalary.StringFixed(2))
	if err != nil {
		return nil, err
	}
	return []any{
		r.EmployeeID, salary, int32(r.TotalActivities),
		r.EligibleWellnessDays, r.EligibleBonus, amount, newSalary,
	}, nil
}

func numeric(s string) (pgtype.Numeric, error) {
	var n pgtype.Numeric
	if err := n.Scan(s); err != nil {
		return n, fmt.Errorf("numeric %q: %w", s, err)
	}
	return n, nil
}

func selectSQL(ident string) string {
	return fmt.Sprintf(`SELECT employee_id, salary::text, total_activities,
		eligibility_wellness_days, eligibility_bonus, bonus_amount::text, new_salary::text
		FROM %s`, ident)
}

func (s *Store) ListReport(ctx context.Context, table string) ([]report.Row, error) {
	if err := store.ValidTable(table); err != nil {
		return nil, err
	}
	rows, err := s.pool.Query(ctx, selectSQL(pgx.Identifier{table}.Sanitize())+" ORDER BY employee_id")
	if err != nil {
		return nil, mapErr(err)
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
	if err := rows.Err(); err != nil {
		return nil, mapErr(err)
	}
	return out, nil
}

func (s *Store) GetReport(ctx context.Context, table, employeeID string) (report.Row, error) {
	if err := store.ValidTable(table); err != nil {
		return report.Row{}, err
	}
	row := s.pool.QueryRow(ctx, selectSQL(pgx.Identifier{table}.Sanitize())+" WHERE employee_id = $1",
		strings.ToLower(strings.TrimSpace(employeeID)))
	r, err := scanRow(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return report.Row{}, store.ErrNotFound
	}
	if err != nil {
		return report.Row{}, mapErr(err)
	}
	return r, nil
}

func scanRow(row pgx.Row) (report.Row, error) {
	var (
		id, salary, amount, newSalary string
		activities                    int32
		wellnessDays, bonus           bool
	)
	if err := row.Scan(&id, &salary, &activities, &wellnessDays, &bonus, &amount, &newSalary); err != nil {
		return report.Row{}, err
	}
	return report.RowFromStrings(id, salary, int(activities), wellnessDays, bonus, amount, newSalary)
}

func mapErr(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == undefinedTable {
		return store.ErrNotFound
	}
	return fmt.Errorf("query report: %w", err)
}

var _ store.ReadSink = (*Store)(nil)
