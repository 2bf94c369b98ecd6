package report

import (
	"github.com/shopspring/decimal"
)

// Record is the serialized form of a Row for JSON and YAML output.
// Amounts are fixed two-decimal strings so no float conversion happens.
type Record struct {
	EmployeeID           string `json:"employee_id" yaml:"employee_id"`
	Salary               string `json:"salary" yaml:"salary"`
	TotalActivities      int    `json:"total_activities" yaml:"total_activities"`
	EligibleWellnessDays bool   `json:"eligibility_wellness_days" yaml:"eligibility_wellness_days"`
	EligibleBonus        bool   `json:"eligibility_bonus" yaml:"eligibility_bonus"`
	BonusAmount          string `json:"bonus_amount" yaml:"bonus_amount"`
	NewSalary            string `json:"new_salary" yaml:"new_salary"`
}

// SummaryRecord is the serialized form of a Summary.
type SummaryRecord struct {
	Employees        int    `json:"employees" yaml:"employees"`
	BonusesGranted   int    `json:"bonuses_granted" yaml:"bonuses_granted"`
	WellnessEligible int    `json:"wellness_eligible" yaml:"wellness_eligible"`
	TotalBonus       string `json:"total_bonus" yaml:"total_bonus"`
	TotalSalary      string `json:"total_salary" yaml:"total_salary"`
	TotalNewSalary   string `json:"total_new_salary" yaml:"total_new_salary"`
}

func (r Row) Record() Record {
	return Record{
		EmployeeID:           r.EmployeeID,
		Salary:               r.Salary.StringFixed(2),
		TotalActivities:      r.TotalActivities,
		EligibleWellnessDays: r.EligibleWellnessDays,
		EligibleBonus:        r.EligibleBonus,
		BonusAmount:          r.BonusAmount.StringFixed(2),
		NewSalary:            r.NewSalary.StringFixed(2),
	}
}

func Records(rows []Row) []Record {
	out := make([]Record, len(rows))
	for i, r := range rows {
		out[i] = r.Record()
	}
	return out
}

func (s Summary) Record() SummaryRecord {
	return SummaryRecord{
		Employees:        s.Employees,
		BonusesGranted:   s.BonusesGranted,
		WellnessEligible: s.WellnessEligible,
		TotalBonus:       s.TotalBonus.StringFixed(2),
		TotalSalary:      s.TotalSalary.StringFixed(2),
		TotalNewSalary:   s.TotalNewSalary.StringFixed(2),
	}
}

// RowFromStrings rebuilds a Row from stored text amounts.
func RowFromStrings(id, salary string, activities int, wellnessDays, bonus bool, amount, newSalary string) (Row, error) {
	s, err := decimal.NewFromString(salary)
	if err != nil {
		return Row{}, err
	}
	a, err := decimal.NewFromString(amount)
	if err != nil {
		return Row{}, err
	}
	n, err := decimal.NewFromString(newSalary)
	if err != nil {
		return Row{}, err
	}
	return Row{
		EmployeeID:           id,
		Salary:               s,
		TotalActivities:      activities,
		EligibleWellnessDays: wellnessDays,
		EligibleBonus:        bonus,
		BonusAmount:          a,
		NewSalary:            n,
	}, nil
}
