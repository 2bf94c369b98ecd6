/*
errors.go - Centralized error types for the pipeline

PURPOSE:
  All error types in one place for consistency and discoverability.
  Stage packages (extract, schema, store, notify) return these so the
  orchestration boundary can decide what is fatal and which exit code
  the process ends with.

ERROR CATEGORIES:
  1. Source errors     - Input table missing (fatal)
  2. Schema errors     - Required canonical field absent (fatal)
  3. Record errors     - A value cannot be used (fatal)
  4. Connection errors - Persistence sink unreachable (fatal)
  5. Load errors       - Write to the sink failed (fatal)
  6. Notification      - Webhook failed or skipped (NOT fatal)

USAGE:
  if errors.Is(err, generic.ErrSchema) {
      var se *generic.SchemaError
      errors.As(err, &se)
      log.Println(se.Found)
  }

SEE ALSO:
  - pipeline/runner.go: The orchestration boundary
  - cmd/sportbonus/main.go: Maps errors to exit codes
*/
package generic

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrSourceNotFound is returned when a required input table does not exist.
	ErrSourceNotFound = errors.New("source not found")

	// ErrSchema is returned when a required canonical field is missing or
	// ambiguous after normalization and renaming.
	ErrSchema = errors.New("schema resolution failed")

	// ErrInvalidRecord is returned when a row carries a value the pipeline
	// cannot use (unparseable or negative amount, duplicate key).
	ErrInvalidRecord = errors.New("invalid record")

	// ErrConnection is returned when the persistence sink cannot be reached.
	ErrConnection = errors.New("sink connection failed")

	// ErrLoad is returned when writing the report to the sink fails.
	ErrLoad = errors.New("load failed")

	// ErrNotification is returned when the summary could not be delivered.
	ErrNotification = errors.New("notification failed")
)

// =============================================================================
// STRUCTURED ERRORS - Carry additional context
// =============================================================================

// SourceNotFoundError names the missing input file.
type SourceNotFoundError struct {
	Source string // logical name, e.g. "hr"
	Path   string
	Err    error
}

func (e *SourceNotFoundError) Error() string {
	return fmt.Sprintf("source %q not found at %s: %v", e.Source, e.Path, e.Err)
}

func (e *SourceNotFoundError) Unwrap() []error { return []error{ErrSourceNotFound, e.Err} }

// SchemaError lists what was missing and what was actually found.
type SchemaError struct {
	Table      string
	Missing    []string
	Collisions map[string][]string // canonical field -> raw headers claiming it
	Found      []string
}

func (e *SchemaError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "table %q:", e.Table)
	if len(e.Missing) > 0 {
		fmt.Fprintf(&b, " missing required field(s) %s;", strings.Join(e.Missing, ", "))
	}
	for _, field := range sortedKeys(e.Collisions) {
		fmt.Fprintf(&b, " field %s claimed by several columns (%s);", field, strings.Join(e.Collisions[field], ", "))
	}
	fmt.Fprintf(&b, " resolved columns found: [%s]", strings.Join(e.Found, ", "))
	return b.String()
}

func (e *SchemaError) Unwrap() error { return ErrSchema }

// RecordError points at a single offending cell.
type RecordError struct {
	Table  string
	Line   int // 1-based line in the source file, header is line 1
	Column string
	Value  string
	Reason string
}

func (e *RecordError) Error() string {
	return fmt.Sprintf("table %q line %d column %s: %s (value %q)",
		e.Table, e.Line, e.Column, e.Reason, e.Value)
}

func (e *RecordError) Unwrap() error { return ErrInvalidRecord }

// ConnectionError wraps a failure to open or ping the sink.
type ConnectionError struct {
	Driver string
	Target string // DSN with credentials stripped, or file path
	Err    error
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("connect %s sink (%s): %v", e.Driver, e.Target, e.Err)
}

func (e *ConnectionError) Unwrap() []error { return []error{ErrConnection, e.Err} }

// LoadError wraps a failure to replace the report table.
type LoadError struct {
	Table string
	Rows  int
	Err   error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("replace table %q with %d rows: %v", e.Table, e.Rows, e.Err)
}

func (e *LoadError) Unwrap() []error { return []error{ErrLoad, e.Err} }

// NotificationError describes why the summary was not delivered.
// Skipped is true when the endpoint is a placeholder and no request was made.
type NotificationError struct {
	Endpoint   string
	StatusCode int
	Skipped    bool
	Err        error
}

func (e *NotificationError) Error() string {
	switch {
	case e.Skipped:
		return "notification skipped: endpoint is a placeholder"
	case e.StatusCode != 0:
		return fmt.Sprintf("notification endpoint returned status %d", e.StatusCode)
	default:
		return fmt.Sprintf("notification failed: %v", e.Err)
	}
}

func (e *NotificationError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrNotification}
	}
	return []error{ErrNotification, e.Err}
}

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsFatal reports whether err must terminate the run.
// Only notification failures are recoverable.
func IsFatal(err error) bool {
	if err == nil {
		return false
	}
	return !errors.Is(err, ErrNotification)
}

// ExitCode maps an error to the process exit status.
func ExitCode(err error) int {
	switch {
	case err == nil, !IsFatal(err):
		return 0
	case errors.Is(err, ErrSourceNotFound):
		return 2
	case errors.Is(err, ErrSchema):
		return 3
	case errors.Is(err, ErrConnection):
		return 4
	case errors.Is(err, ErrLoad):
		return 5
	case errors.Is(err, ErrInvalidRecord):
		return 6
	default:
		return 1
	}
}

func sortedKeys(m map[string][]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
