package wellness

import (
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/warp/sport-bonus/generic"
	"github.com/warp/sport-bonus/schema"
)

// =============================================================================
// RECORDS
// =============================================================================

// Employee is one HR row. ID is already folded by NormalizeID.
type Employee struct {
	ID          string
	Salary      decimal.Decimal
	CommuteMode string
	// DistanceKm is invalid when the cell was empty; a capped commute then
	// fails the distance check.
	DistanceKm decimal.NullDecimal
}

// Activity is one activity log row. Descriptive columns stay in the raw table.
type Activity struct {
	EmployeeID string
	Type       string
}

// Profile is an employee joined with their activity count.
type Profile struct {
	Employee
	TotalActivities int
}

// NormalizeID folds an employee id so keys compare case-insensitively.
func NormalizeID(id string) string {
	return strings.ToLower(strings.TrimSpace(id))
}

// =============================================================================
// TABLE CONVERSION
// =============================================================================

// EmployeesFromTable reads a resolved HR table.
// Empty or duplicate ids, and missing, unparseable or negative salaries or
// distances are reported as *generic.RecordError.
func EmployeesFromTable(t generic.Table) ([]Employee, error) {
	cols, err := columns(t, schema.FieldEmployeeID, schema.FieldSalary, schema.FieldCommuteMode, schema.FieldCommuteDistance)
	if err != nil {
		return nil, err
	}
	idCol, salaryCol, modeCol, distCol := cols[0], cols[1], cols[2], cols[3]

	employees := make([]Employee, 0, t.Len())
	seen := make(map[string]int, t.Len())
	for i, row := range t.Rows {
		line := t.Line(i)
		recErr := func(col, reason string) error {
			idx, _ := t.Index(col)
			return &generic.RecordError{Table: t.Name, Line: line, Column: col, Value: row[idx], Reason: reason}
		}

		id := NormalizeID(row[idCol])
		if id == "" {
			return nil, recErr(schema.FieldEmployeeID, "empty employee id")
		}
		if first, dup := seen[id]; dup {
			return nil, recErr(schema.FieldEmployeeID, "duplicate employee id, first seen on line "+strconv.Itoa(first))
		}
		seen[id] = line

		salary, err := generic.ParseDecimal(row[salaryCol])
		if err != nil {
			return nil, recErr(schema.FieldSalary, "salary is not a number")
		}
		if salary.IsNegative() {
			return nil, recErr(schema.FieldSalary, "salary is negative")
		}

		var dist decimal.NullDecimal
		if raw := strings.TrimSpace(row[distCol]); raw != "" {
			d, err := generic.ParseDecimal(raw)
			if err != nil {
				return nil, recErr(schema.FieldCommuteDistance, "distance is not a number")
			}
			if d.IsNegative() {
				return nil, recErr(schema.FieldCommuteDistance, "distance is negative")
			}
			dist = decimal.NewNullDecimal(d)
		}

		employees = append(employees, Employee{
			ID:          id,
			Salary:      salary,
			CommuteMode: row[modeCol],
			DistanceKm:  dist,
		})
	}
	return employees, nil
}

// ActivitiesFromTable reads a resolved activity table. Rows without an
// employee id cannot be joined and are dropped here.
func ActivitiesFromTable(t generic.Table) ([]Activity, error) {
	cols, err := columns(t, schema.FieldEmployeeID, schema.FieldActivityType)
	if err != nil {
		return nil, err
	}

	acts := make([]Activity, 0, t.Len())
	for _, row := range t.Rows {
		id := NormalizeID(row[cols[0]])
		if id == "" {
			continue
		}
		acts = append(acts, Activity{EmployeeID: id, Type: strings.TrimSpace(row[cols[1]])})
	}
	return acts, nil
}

func columns(t generic.Table, names ...string) ([]int, error) {
	idx := make([]int, len(names))
	var missing []string
	for i, n := range names {
		j, ok := t.Index(n)
		if !ok {
			missing = append(missing, n)
		}
		idx[i] = j
	}
	if len(missing) > 0 {
		return nil, &generic.SchemaError{Table: t.Name, Missing: missing, Found: t.Columns}
	}
	return idx, nil
}
