package wellness

import (
	"github.com/shopspring/decimal"
	"github.com/warp/sport-bonus/generic"
)

// Payout holds the three monetary figures of one employee, rounded to cents.
type Payout struct {
	Salary    decimal.Decimal
	Amount    decimal.Decimal
	NewSalary decimal.Decimal
}

// Calculator turns eligibility into money.
type Calculator struct {
	rate decimal.Decimal
}

func NewCalculator(p Policy) *Calculator {
	return &Calculator{rate: p.PrimeRate}
}

// Compute returns the rounded salary, bonus and new salary.
//
// Salary and bonus are each rounded once from their exact values; the new
// salary is their sum, which is already exact to the cent. This keeps
// sum(new_salary) - sum(salary) == sum(bonus) for any set of rows.
func (c *Calculator) Compute(salary decimal.Decimal, eligible bool) Payout {
	amount := decimal.Zero
	if eligible {
		amount = salary.Mul(c.rate)
	}
	s := generic.RoundMoney(salary)
	a := generic.RoundMoney(amount)
	return Payout{Salary: s, Amount: a, NewSalary: s.Add(a)}
}

// Result is the full evaluation of one employee.
type Result struct {
	Profile
	Eligibility
	Payout Payout
}

// Assess runs the engine and the calculator over every profile.
func Assess(profiles []Profile, policy Policy, workers int) []Result {
	engine := NewEngine(policy)
	calc := NewCalculator(policy)

	elig := engine.EvaluateAll(profiles, workers)
	out := make([]Result, len(profiles))
	for i, p := range profiles {
		out[i] = Result{
			Profile:     p,
			Eligibility: elig[i],
			Payout:      calc.Compute(p.Salary, elig[i].Bonus),
		}
	}
	return out
}
