package wellness_test

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/sport-bonus/generic"
	"github.com/warp/sport-bonus/schema"
	"github.com/warp/sport-bonus/wellness"
)

// =============================================================================
// TEST HELPERS
// =============================================================================

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func km(s string) decimal.NullDecimal {
	return decimal.NewNullDecimal(dec(s))
}

func profile(mode, distance string, activities int) wellness.Profile {
	p := wellness.Profile{
		Employee: wellness.Employee{
			ID:          "emp-1",
			Salary:      dec("2000"),
			CommuteMode: mode,
		},
		TotalActivities: activities,
	}
	if distance != "" {
		p.DistanceKm = km(distance)
	}
	return p
}

func newEngine() *wellness.Engine {
	return wellness.NewEngine(wellness.DefaultPolicy())
}

// =============================================================================
// WELLNESS DAYS RULE
// =============================================================================

func TestWellnessDays_Boundary(t *testing.T) {
	// GIVEN: Default threshold of 15 activities
	// WHEN: Employee has exactly 15, or 14
	// THEN: 15 qualifies (inclusive), 14 does not

	e := newEngine()
	assert.True(t, e.Evaluate(profile("", "", 15)).WellnessDays)
	assert.False(t, e.Evaluate(profile("", "", 14)).WellnessDays)
	assert.False(t, e.Evaluate(profile("", "", 0)).WellnessDays)
	assert.True(t, e.Evaluate(profile("", "", 40)).WellnessDays)
}

func TestWellnessDays_CustomThreshold(t *testing.T) {
	p := wellness.DefaultPolicy()
	p.MinActivities = 3
	e := wellness.NewEngine(p)

	assert.True(t, e.WellnessDays(3))
	assert.False(t, e.WellnessDays(2))
}

// =============================================================================
// COMMUTE CLASSIFICATION
// =============================================================================

func TestClassify(t *testing.T) {
	e := newEngine()

	cases := map[string]wellness.CommuteClass{
		"Vélo":                     wellness.ClassNotSporty, // accent is not folded here
		"velo":                     wellness.ClassCycling,
		"  VELO  ":                 wellness.ClassCycling,
		"velo electrique":          wellness.ClassCycling,
		"Trottinette":              wellness.ClassCycling,
		"Marche/running":           wellness.ClassWalking,
		"Autres":                   wellness.ClassCycling,
		"véhicule thermique/électrique": wellness.ClassNotSporty,
		"Transports en commun":     wellness.ClassNotSporty,
		"":                         wellness.ClassNotSporty,
	}
	for mode, want := range cases {
		assert.Equal(t, want, e.Classify(mode), "mode %q", mode)
	}
}

func TestClassify_WalkingWinsOverCycling(t *testing.T) {
	// A mode mentioning both tokens gets the walking cap.
	e := newEngine()
	assert.Equal(t, wellness.ClassWalking, e.Classify("marche/running puis velo"))
}

func TestClassify_UncappedSportyToken(t *testing.T) {
	// GIVEN: A policy with an extra sport token outside both cap lists
	// THEN: The mode is sporty and passes the distance check at any distance

	p := wellness.DefaultPolicy()
	p.SportTokens = append(p.SportTokens, "Roller")
	e := wellness.NewEngine(p)

	got := e.Evaluate(profile("roller", "80", 0))
	assert.Equal(t, wellness.ClassUncapped, got.Class)
	assert.True(t, got.SportyCommute)
	assert.True(t, got.DistanceWithinCap)
	assert.True(t, got.Bonus)
}

// =============================================================================
// DISTANCE CAP
// =============================================================================

func TestDistanceCap_Walking(t *testing.T) {
	e := newEngine()

	assert.True(t, e.Evaluate(profile("marche/running", "15.0", 0)).Bonus)
	assert.True(t, e.Evaluate(profile("marche/running", "3", 0)).Bonus)
	assert.False(t, e.Evaluate(profile("marche/running", "15.01", 0)).Bonus)
}

func TestDistanceCap_Cycling(t *testing.T) {
	e := newEngine()

	assert.True(t, e.Evaluate(profile("velo", "25.0", 0)).Bonus)
	assert.False(t, e.Evaluate(profile("velo", "25.01", 0)).Bonus)
	assert.True(t, e.Evaluate(profile("trottinette", "20", 0)).Bonus)
	assert.False(t, e.Evaluate(profile("autres", "30", 0)).Bonus)
}

func TestDistanceCap_NotSportyNeverEligible(t *testing.T) {
	got := newEngine().Evaluate(profile("voiture", "1", 30))

	assert.False(t, got.SportyCommute)
	assert.False(t, got.DistanceWithinCap)
	assert.False(t, got.Bonus)
	assert.True(t, got.WellnessDays)
}

func TestDistanceCap_UnknownDistanceFailsCappedModes(t *testing.T) {
	got := newEngine().Evaluate(profile("velo", "", 0))

	assert.True(t, got.SportyCommute)
	assert.False(t, got.DistanceWithinCap)
	assert.False(t, got.Bonus)
}

func TestEvaluateAll_ParallelMatchesSequential(t *testing.T) {
	e := newEngine()
	modes := []string{"velo", "marche/running", "voiture", "autres", "trottinette"}

	var profiles []wellness.Profile
	for i := 0; i < 200; i++ {
		profiles = append(profiles, profile(modes[i%len(modes)], decimal.NewFromInt(int64(i%40)).String(), i%30))
	}

	seq := e.EvaluateAll(profiles, 1)
	par := e.EvaluateAll(profiles, 8)
	assert.Equal(t, seq, par)
}

// =============================================================================
// BONUS CALCULATOR
// =============================================================================

func TestCalculator_EligibleAndNot(t *testing.T) {
	calc := wellness.NewCalculator(wellness.DefaultPolicy())

	got := calc.Compute(dec("2000.00"), true)
	assert.Equal(t, "100.00", got.Amount.StringFixed(2))
	assert.Equal(t, "2100.00", got.NewSalary.StringFixed(2))
	assert.True(t, got.Salary.Equal(dec("2000")))

	got = calc.Compute(dec("2000.00"), false)
	assert.True(t, got.Amount.IsZero())
	assert.Equal(t, "2000.00", got.NewSalary.StringFixed(2))
}

func TestCalculator_RoundsHalfToEven(t *testing.T) {
	calc := wellness.NewCalculator(wellness.DefaultPolicy())

	// 2000.10 * 0.05 = 100.005: half-to-even keeps 100.00, half-up would give 100.01.
	got := calc.Compute(dec("2000.10"), true)
	assert.Equal(t, "100.00", got.Amount.StringFixed(2))
	assert.Equal(t, "2100.10", got.NewSalary.StringFixed(2))

	// 2000.30 * 0.05 = 100.015 rounds up to the even cent.
	got = calc.Compute(dec("2000.30"), true)
	assert.Equal(t, "100.02", got.Amount.StringFixed(2))

	// Salary itself is rounded once.
	got = calc.Compute(dec("1999.995"), false)
	assert.Equal(t, "2000.00", got.Salary.StringFixed(2))
}

func TestCalculator_Conservation(t *testing.T) {
	calc := wellness.NewCalculator(wellness.DefaultPolicy())
	salaries := []string{"1000.005", "2000.10", "2000.30", "3333.333", "0", "2718.28", "1234.565"}

	sumSalary, sumBonus, sumNew := decimal.Zero, decimal.Zero, decimal.Zero
	for i, s := range salaries {
		p := calc.Compute(dec(s), i%2 == 0)
		sumSalary = sumSalary.Add(p.Salary)
		sumBonus = sumBonus.Add(p.Amount)
		sumNew = sumNew.Add(p.NewSalary)
		assert.False(t, p.Amount.IsNegative())
	}

	assert.True(t, sumNew.Sub(sumSalary).Equal(sumBonus), "new %s - salary %s != bonus %s", sumNew, sumSalary, sumBonus)
}

// =============================================================================
// AGGREGATION AND MERGE
// =============================================================================

func TestCountActivities(t *testing.T) {
	agg := wellness.CountActivities([]wellness.Activity{
		{EmployeeID: "a1", Type: "Course"},
		{EmployeeID: "a1", Type: "Vélo"},
		{EmployeeID: "a1", Type: ""},
		{EmployeeID: "b2", Type: "Natation"},
		{EmployeeID: "c3", Type: ""},
	})

	assert.Equal(t, wellness.Aggregate{"a1": 2, "b2": 1, "c3": 0}, agg)
}

func TestMerge_LeftJoin(t *testing.T) {
	// GIVEN: HR has a1 and z9; activities exist for a1 and an orphan x0
	// THEN: Exactly a1 and z9 come out, z9 with zero activities

	employees := []wellness.Employee{{ID: "a1"}, {ID: "z9"}}
	agg := wellness.Aggregate{"a1": 20, "x0": 7}

	profiles := wellness.Merge(employees, agg)
	require.Len(t, profiles, 2)
	assert.Equal(t, "a1", profiles[0].ID)
	assert.Equal(t, 20, profiles[0].TotalActivities)
	assert.Equal(t, "z9", profiles[1].ID)
	assert.Equal(t, 0, profiles[1].TotalActivities)

	assert.Equal(t, []string{"x0"}, wellness.Orphans(employees, agg))
}

func TestAbsentEmployee_NoWellnessDays(t *testing.T) {
	profiles := wellness.Merge([]wellness.Employee{{ID: "ghost", Salary: dec("1000")}}, wellness.Aggregate{})
	results := wellness.Assess(profiles, wellness.DefaultPolicy(), 1)

	require.Len(t, results, 1)
	assert.Equal(t, 0, results[0].TotalActivities)
	assert.False(t, results[0].WellnessDays)
}

// =============================================================================
// TABLE CONVERSION
// =============================================================================

func resolvedHR(rows ...[]string) generic.Table {
	t := generic.NewTable("hr", []string{
		schema.FieldEmployeeID, schema.FieldSalary, schema.FieldCommuteMode, schema.FieldCommuteDistance,
	})
	for i, r := range rows {
		t.Append(i+2, r)
	}
	return t
}

func TestEmployeesFromTable(t *testing.T) {
	table := resolvedHR(
		[]string{" A1 ", "3000", "Velo", "10"},
		[]string{"b2", "2 500,50", "Voiture", ""},
	)

	emps, err := wellness.EmployeesFromTable(table)
	require.NoError(t, err)
	require.Len(t, emps, 2)

	assert.Equal(t, "a1", emps[0].ID)
	assert.True(t, emps[0].DistanceKm.Valid)
	assert.Equal(t, "2500.5", emps[1].Salary.String())
	assert.False(t, emps[1].DistanceKm.Valid)
}

func TestEmployeesFromTable_DuplicateIDIsCaseInsensitive(t *testing.T) {
	table := resolvedHR(
		[]string{"A1", "3000", "Velo", "10"},
		[]string{"a1", "2000", "Velo", "10"},
	)

	_, err := wellness.EmployeesFromTable(table)

	var re *generic.RecordError
	require.True(t, errors.As(err, &re))
	assert.Equal(t, 3, re.Line)
	assert.Equal(t, schema.FieldEmployeeID, re.Column)
	assert.Contains(t, re.Reason, "line 2")
}

func TestEmployeesFromTable_RejectsBadSalary(t *testing.T) {
	for _, salary := range []string{"", "abc", "-10"} {
		_, err := wellness.EmployeesFromTable(resolvedHR([]string{"a1", salary, "velo", "1"}))
		assert.ErrorIs(t, err, generic.ErrInvalidRecord, "salary %q", salary)
	}
}

func TestEmployeesFromTable_RejectsNegativeDistance(t *testing.T) {
	_, err := wellness.EmployeesFromTable(resolvedHR([]string{"a1", "1000", "velo", "-1"}))
	assert.ErrorIs(t, err, generic.ErrInvalidRecord)
}

func TestActivitiesFromTable_SkipsEmptyIDs(t *testing.T) {
	table := generic.NewTable("activities", []string{"date", schema.FieldEmployeeID, schema.FieldActivityType})
	table.Append(2, []string{"2025-01-01", "A1", "Course"})
	table.Append(3, []string{"2025-01-02", "", "Course"})

	acts, err := wellness.ActivitiesFromTable(table)
	require.NoError(t, err)
	assert.Equal(t, []wellness.Activity{{EmployeeID: "a1", Type: "Course"}}, acts)
}

// =============================================================================
// POLICY
// =============================================================================

func TestPolicy_Validate(t *testing.T) {
	require.NoError(t, wellness.DefaultPolicy().Validate())

	p := wellness.DefaultPolicy()
	p.PrimeRate = dec("-0.01")
	p.SportTokens = []string{" "}
	err := p.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "prime rate")
	assert.Contains(t, err.Error(), "sport commute token")
}
