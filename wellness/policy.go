/*
Package wellness implements the sport and wellness benefit rules.

PURPOSE:
  Employees earn two benefits:
  - Wellness days: granted when they logged enough sport activities
  - Sport commute bonus: a share of gross salary paid to employees who come
    to work by a human-powered mode, within a distance cap for that mode

  Everything here is a pure function of the employee's own data and of an
  explicit Policy value. No package-level knobs.

RULES:
  Wellness days:
    total_activities >= MinActivities (inclusive)

  Sport commute:
    mode := lower(trim(commute_mode))
    sporty := mode contains any SportTokens (substring match)
    if not sporty                      -> no bonus
    if mode contains a WalkingToken    -> distance <= WalkingCapKm
    else if mode contains CyclingToken -> distance <= CyclingCapKm
    else                               -> no cap

  Bonus:
    bonus = eligible ? salary * PrimeRate : 0
    rounded half-to-even to cents once, at the end

SEE ALSO:
  - engine.go: Rule evaluation
  - bonus.go: Monetary computation
  - aggregate.go: Activity counting and the HR left join
*/
package wellness

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Default policy values.
const (
	DefaultMinActivities = 15
	TokenWalking         = "marche/running"
)

var (
	DefaultPrimeRate          = decimal.RequireFromString("0.05")
	DefaultWalkingCapKm       = decimal.NewFromInt(15)
	DefaultCyclingCapKm       = decimal.NewFromInt(25)
	DefaultFallbackDistanceKm = decimal.NewFromInt(5)
)

// Policy holds every tunable of the benefit rules.
type Policy struct {
	MinActivities int
	PrimeRate     decimal.Decimal

	// SportTokens decide whether a commute counts as sporty at all.
	// WalkingTokens and CyclingTokens pick the distance cap. A sporty mode
	// that matches neither list has no cap.
	SportTokens   []string
	WalkingTokens []string
	CyclingTokens []string

	WalkingCapKm decimal.Decimal
	CyclingCapKm decimal.Decimal

	// FallbackDistanceKm is used when the HR source has no distance column.
	FallbackDistanceKm decimal.Decimal
}

// DefaultPolicy returns the company policy.
func DefaultPolicy() Policy {
	return Policy{
		MinActivities:      DefaultMinActivities,
		PrimeRate:          DefaultPrimeRate,
		SportTokens:        []string{"velo", "trottinette", TokenWalking, "autres"},
		WalkingTokens:      []string{TokenWalking},
		CyclingTokens:      []string{"velo", "trottinette", "autres"},
		WalkingCapKm:       DefaultWalkingCapKm,
		CyclingCapKm:       DefaultCyclingCapKm,
		FallbackDistanceKm: DefaultFallbackDistanceKm,
	}
}

// Normalized returns a copy with every token lower-cased and trimmed, and
// empty tokens removed, so matching is case-insensitive.
func (p Policy) Normalized() Policy {
	p.SportTokens = cleanTokens(p.SportTokens)
	p.WalkingTokens = cleanTokens(p.WalkingTokens)
	p.CyclingTokens = cleanTokens(p.CyclingTokens)
	return p
}

// Validate rejects policies that would produce negative amounts or could
// never grant a bonus.
func (p Policy) Validate() error {
	var errs []error
	if p.MinActivities < 0 {
		errs = append(errs, fmt.Errorf("min activities must be >= 0, got %d", p.MinActivities))
	}
	if p.PrimeRate.IsNegative() {
		errs = append(errs, fmt.Errorf("prime rate must be >= 0, got %s", p.PrimeRate))
	}
	if p.WalkingCapKm.IsNegative() || p.CyclingCapKm.IsNegative() {
		errs = append(errs, fmt.Errorf("distance caps must be >= 0, got %s and %s", p.WalkingCapKm, p.CyclingCapKm))
	}
	if p.FallbackDistanceKm.IsNegative() {
		errs = append(errs, fmt.Errorf("fallback distance must be >= 0, got %s", p.FallbackDistanceKm))
	}
	if len(cleanTokens(p.SportTokens)) == 0 {
		errs = append(errs, errors.New("at least one sport commute token is required"))
	}
	if len(errs) > 0 {
		return fmt.Errorf("invalid policy: %w", errors.Join(errs...))
	}
	return nil
}

func cleanTokens(tokens []string) []string {
	out := make([]string, 0, len(tokens))
	for _, t := range tokens {
		if t = strings.ToLower(strings.TrimSpace(t)); t != "" {
			out = append(out, t)
		}
	}
	return out
}
