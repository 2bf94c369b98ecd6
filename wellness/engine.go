package wellness

import (
	"strings"
	"sync"
)

// CommuteClass is the distance cap family a commute mode falls into.
type CommuteClass string

const (
	ClassNotSporty CommuteClass = "not_sporty"
	ClassWalking   CommuteClass = "walking"
	ClassCycling   CommuteClass = "cycling"
	// ClassUncapped is sporty by a token outside both cap lists.
	// TODO: confirm with HR whether such modes should get a cap; today they always pass.
	ClassUncapped CommuteClass = "uncapped"
)

// Eligibility is the per-employee outcome of both rules.
type Eligibility struct {
	WellnessDays      bool
	SportyCommute     bool
	DistanceWithinCap bool
	Bonus             bool
	Class             CommuteClass
}

// Engine evaluates the wellness-day and sport-bonus rules.
type Engine struct {
	policy Policy
}

// NewEngine returns an engine for a normalized copy of p.
func NewEngine(p Policy) *Engine {
	return &Engine{policy: p.Normalized()}
}

func (e *Engine) Policy() Policy { return e.policy }

// Classify cleans a raw commute mode and returns its class.
func (e *Engine) Classify(commuteMode string) CommuteClass {
	mode := strings.ToLower(strings.TrimSpace(commuteMode))
	if !containsAny(mode, e.policy.SportTokens) {
		return ClassNotSporty
	}
	switch {
	case containsAny(mode, e.policy.WalkingTokens):
		return ClassWalking
	case containsAny(mode, e.policy.CyclingTokens):
		return ClassCycling
	default:
		return ClassUncapped
	}
}

// WellnessDays applies the activity threshold (inclusive).
func (e *Engine) WellnessDays(totalActivities int) bool {
	return totalActivities >= e.policy.MinActivities
}

// WithinCap applies the distance cap of the class (inclusive).
func (e *Engine) WithinCap(class CommuteClass, p Profile) bool {
	switch class {
	case ClassWalking:
		return p.DistanceKm.Valid && p.DistanceKm.Decimal.LessThanOrEqual(e.policy.WalkingCapKm)
	case ClassCycling:
		return p.DistanceKm.Valid && p.DistanceKm.Decimal.LessThanOrEqual(e.policy.CyclingCapKm)
	case ClassUncapped:
		return true
	default:
		return false
	}
}

// Evaluate applies both rules to one employee.
func (e *Engine) Evaluate(p Profile) Eligibility {
	class := e.Classify(p.CommuteMode)
	sporty := class != ClassNotSporty
	within := e.WithinCap(class, p)
	return Eligibility{
		WellnessDays:      e.WellnessDays(p.TotalActivities),
		SportyCommute:     sporty,
		DistanceWithinCap: within,
		Bonus:             sporty && within,
		Class:             class,
	}
}

// EvaluateAll evaluates every profile, splitting the slice across at most
// workers goroutines. Output order matches input order.
func (e *Engine) EvaluateAll(profiles []Profile, workers int) []Eligibility {
	out := make([]Eligibility, len(profiles))
	if workers <= 1 || len(profiles) < 2*workers {
		for i, p := range profiles {
			out[i] = e.Evaluate(p)
		}
		return out
	}

	chunk := (len(profiles) + workers - 1) / workers
	var wg sync.WaitGroup
	for start := 0; start < len(profiles); start += chunk {
		end := min(start+chunk, len(profiles))
		wg.Add(1)
		go func(start, end int) {
			defer wg.Done()
			for i := start; i < end; i++ {
				out[i] = e.Evaluate(profiles[i])
			}
		}(start, end)
	}
	wg.Wait()
	return out
}

func containsAny(s string, tokens []string) bool {
	for _, t := range tokens {
		if strings.Contains(s, t) {
			return true
		}
	}
	return false
}
