/*
Package report projects evaluated employees onto the persisted report schema.

PURPOSE:
  The report table is the contract with the persistence sink and with
  anyone reading it afterwards. Its columns and their order are fixed here
  and nowhere else.

COLUMNS (in order):
  employee_id                text     folded employee id
  salary                     numeric  gross salary, 2 decimals
  total_activities           integer  activity count
  eligibility_wellness_days  boolean
  eligibility_bonus          boolean
  bonus_amount               numeric  2 decimals
  new_salary                 numeric  salary + bonus_amount, 2 decimals

SEE ALSO:
  - wellness/bonus.go: Produces the rounded amounts
  - store/: Sinks writing Rows
  - notify/: Sends the Summary
*/
package report

import (
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/warp/sport-bonus/wellness"
)

// DefaultTable is the sink table name.
const DefaultTable = "salaires_primes"

// Column names, in persisted order.
const (
	ColEmployeeID    = "employee_id"
	ColSalary        = "salary"
	ColActivities    = "total_activities"
	ColWellnessDays  = "eligibility_wellness_days"
	ColBonusEligible = "eligibility_bonus"
	ColBonusAmount   = "bonus_amount"
	ColNewSalary     = "new_salary"
)

// Columns is the exact field list and order of a report row.
var Columns = []string{
	ColEmployeeID, ColSalary, ColActivities, ColWellnessDays,
	ColBonusEligible, ColBonusAmount, ColNewSalary,
}

// Row is one persisted report line.
type Row struct {
	EmployeeID           string
	Salary               decimal.Decimal
	TotalActivities      int
	EligibleWellnessDays bool
	EligibleBonus        bool
	BonusAmount          decimal.Decimal
	NewSalary            decimal.Decimal
}

// Values returns the row in Columns order, typed for a SQL driver.
// Amounts are passed as their fixed two-decimal string.
func (r Row) Values() []any {
	return []any{
		r.EmployeeID,
		r.Salary.StringFixed(2),
		r.TotalActivities,
		r.EligibleWellnessDays,
		r.EligibleBonus,
		r.BonusAmount.StringFixed(2),
		r.NewSalary.StringFixed(2),
	}
}

// Project maps evaluation results onto report rows, keeping their order.
func Project(results []wellness.Result) []Row {
	rows := make([]Row, len(results))
	for i, r := range results {
		rows[i] = Row{
			EmployeeID:           r.ID,
			Salary:               r.Payout.Salary,
			TotalActivities:      r.TotalActivities,
			EligibleWellnessDays: r.WellnessDays,
			EligibleBonus:        r.Bonus,
			BonusAmount:          r.Payout.Amount,
			NewSalary:            r.Payout.NewSalary,
		}
	}
	return rows
}

// =============================================================================
// SUMMARY
// =============================================================================

// Summary is the aggregate sent to the notification channel.
type Summary struct {
	Employees        int
	BonusesGranted   int // rows with bonus_amount > 0
	WellnessEligible int
	TotalBonus       decimal.Decimal
	TotalSalary      decimal.Decimal
	TotalNewSalary   decimal.Decimal
}

func Summarize(rows []Row) Summary {
	s := Summary{
		Employees:      len(rows),
		TotalBonus:     decimal.Zero,
		TotalSalary:    decimal.Zero,
		TotalNewSalary: decimal.Zero,
	}
	for _, r := range rows {
		if r.BonusAmount.IsPositive() {
			s.BonusesGranted++
		}
		if r.EligibleWellnessDays {
			s.WellnessEligible++
		}
		s.TotalBonus = s.TotalBonus.Add(r.BonusAmount)
		s.TotalSalary = s.TotalSalary.Add(r.Salary)
		s.TotalNewSalary = s.TotalNewSalary.Add(r.NewSalary)
	}
	return s
}

// Text renders the notification message. currency is appended to the total.
func (s Summary) Text(currency string) string {
	return fmt.Sprintf("Sport bonus pipeline: success\n\n"+
		"*Run statistics:*\n"+
		"• Employees: %d\n"+
		"• Bonuses granted: %d\n"+
		"• Total bonus paid: %s %s",
		s.Employees, s.BonusesGranted, s.TotalBonus.StringFixed(2), currency)
}
