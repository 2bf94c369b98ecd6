/*
Package generic provides the domain-agnostic building blocks of the pipeline.

PURPOSE:
  This package contains the types every stage shares: a raw string table
  as read from a delimited source, the money rounding rule, and the error
  taxonomy. It knows nothing about wellness days or commute bonuses.

KEY CONCEPTS IN THIS FILE (table.go):
  - Table: named columns plus string rows, in source order
  - Line numbers: each row remembers the source line it came from so that
    errors can point back into the file

DESIGN PRINCIPLES:
  1. Tables are values: renaming or adding a column returns a new Table
  2. Cells stay strings until a domain package parses them
  3. Column lookup is by exact (already normalized) name

USAGE:
  t := generic.NewTable("hr", []string{"employee_id", "salary"})
  t.Append(2, []string{"A1", "3000"})
  idx, ok := t.Index("salary")

SEE ALSO:
  - money.go: Rounding of monetary amounts
  - errors.go: Error taxonomy
  - schema/resolve.go: Renames and validates Table columns
*/
package generic

// =============================================================================
// TABLE - Raw tabular data
// =============================================================================

type Table struct {
	Name    string
	Columns []string
	Rows    [][]string
	Lines   []int // source line per row, same length as Rows
}

func NewTable(name string, columns []string) Table {
	return Table{Name: name, Columns: append([]string(nil), columns...)}
}

// Append adds a row read from the given source line.
// The row must have one cell per column.
func (t *Table) Append(line int, row []string) {
	t.Rows = append(t.Rows, row)
	t.Lines = append(t.Lines, line)
}

func (t Table) Len() int { return len(t.Rows) }

// Index returns the position of the first column with the given name.
func (t Table) Index(name string) (int, bool) {
	for i, c := range t.Columns {
		if c == name {
			return i, true
		}
	}
	return -1, false
}

func (t Table) Has(name string) bool {
	_, ok := t.Index(name)
	return ok
}

// Line returns the source line of row i, or i+2 when lines were not recorded
// (header on line 1).
func (t Table) Line(i int) int {
	if i < len(t.Lines) {
		return t.Lines[i]
	}
	return i + 2
}

// WithColumns returns a copy of t carrying the given header.
// Rows are shared; cols must have the same length as t.Columns.
func (t Table) WithColumns(cols []string) Table {
	out := t
	out.Columns = append([]string(nil), cols...)
	return out
}

// WithConstantColumn returns a copy of t with an extra column holding value
// in every row.
func (t Table) WithConstantColumn(name, value string) Table {
	out := Table{
		Name:    t.Name,
		Columns: append(append([]string(nil), t.Columns...), name),
		Rows:    make([][]string, len(t.Rows)),
		Lines:   append([]int(nil), t.Lines...),
	}
	for i, row := range t.Rows {
		r := make([]string, len(row), len(row)+1)
		copy(r, row)
		out.Rows[i] = append(r, value)
	}
	return out
}
