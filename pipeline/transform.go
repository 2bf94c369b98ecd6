/*
Package pipeline runs one extract, transform, load and notify cycle.

STAGES (in order, each completes before the next starts):
  connect    open and ping the sink             ConnectionError, fatal
  extract    read both sources                  SourceNotFoundError, fatal
  transform  resolve, aggregate, evaluate       SchemaError / RecordError, fatal
  load       replace the report table           LoadError, fatal
  notify     post the summary                   NotificationError, logged only
  metrics    push to the Pushgateway            logged only

The sink is connected before any file is read so that a bad database
configuration fails in seconds rather than after a full extraction.

SEE ALSO:
  - schema/: Header resolution
  - wellness/: Rules and money
  - report/: Output table
*/
package pipeline

import (
	"github.com/warp/sport-bonus/generic"
	"github.com/warp/sport-bonus/report"
	"github.com/warp/sport-bonus/schema"
	"github.com/warp/sport-bonus/wellness"
)

// Transformed is the output of the transform stage.
type Transformed struct {
	Rows []report.Row
	// InjectedHR lists canonical HR fields absent from the source and
	// filled with their default.
	InjectedHR []string
	// Orphans are activity employee ids with no HR record.
	Orphans []string
	// Activities counts activity rows that could be joined on an id.
	Activities int
}

// Transform turns the two raw tables into report rows, in HR order.
// It is pure: same inputs, same output.
func Transform(hr, activities generic.Table, policy wellness.Policy, workers int) (Transformed, error) {
	if err := policy.Validate(); err != nil {
		return Transformed{}, err
	}

	hrRes, err := schema.Resolve(hr, schema.HRRules(policy.FallbackDistanceKm))
	if err != nil {
		return Transformed{}, err
	}
	actRes, err := schema.Resolve(activities, schema.ActivityRules())
	if err != nil {
		return Transformed{}, err
	}

	employees, err := wellness.EmployeesFromTable(hrRes.Table)
	if err != nil {
		return Transformed{}, err
	}
	acts, err := wellness.ActivitiesFromTable(actRes.Table)
	if err != nil {
		return Transformed{}, err
	}

	agg := wellness.CountActivities(acts)
	results := wellness.Assess(wellness.Merge(employees, agg), policy, workers)

	return Transformed{
		Rows:       report.Project(results),
		InjectedHR: hrRes.Injected,
		Orphans:    wellness.Orphans(employees, agg),
		Activities: len(acts),
	}, nil
}
