/*
Package store defines where the report table goes and how it is read back.

PURPOSE:
  The pipeline writes the whole report in one operation: the previous table
  is dropped and recreated with the fixed report schema, then filled. A
  reader sees either the old table or the new one, never a partial load.

IMPLEMENTATIONS:
  store/postgres: pgx pool, COPY into a fresh table (default sink)
  store/sqlite:   database/sql with mattn/go-sqlite3
  Memory:         in-process map, for tests and dry runs

TABLE NAMES:
  Table names are interpolated into DDL, so they are restricted to
  [A-Za-z_][A-Za-z0-9_]* and checked by ValidTable before any statement.

SEE ALSO:
  - report/report.go: Row and column order
  - pipeline/: Wraps sink failures in ConnectionError and LoadError
*/
package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/warp/sport-bonus/report"
)

// ErrNotFound is returned by Reader lookups that match nothing.
var ErrNotFound = errors.New("not found")

// Sink receives the report table.
type Sink interface {
	// Ping checks the sink is reachable before any source is read.
	Ping(ctx context.Context) error
	// Replace drops table if it exists, recreates it and inserts rows,
	// atomically.
	Replace(ctx context.Context, table string, rows []report.Row) error
	Close() error
}

// Reader serves a persisted report table. Rows come back ordered by
// employee id.
type Reader interface {
	ListReport(ctx context.Context, table string) ([]report.Row, error)
	GetReport(ctx context.Context, table, employeeID string) (report.Row, error)
}

// ReadSink is a sink that can also be read back.
type ReadSink interface {
	Sink
	Reader
}

// ValidTable rejects names that are unsafe to interpolate into DDL.
func ValidTable(name string) error {
	if name == "" {
		return errors.New("table name is empty")
	}
	for i, r := range name {
		switch {
		case r == '_', r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
		case r >= '0' && r <= '9' && i > 0:
		default:
			return fmt.Errorf("invalid table name %q", name)
		}
	}
	return nil
}
