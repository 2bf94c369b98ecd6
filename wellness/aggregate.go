package wellness

import "sort"

// Aggregate is the activity count per employee id. Employees with no
// activity rows are absent; Merge fills them with zero.
type Aggregate map[string]int

// CountActivities groups activities by employee and counts the ones with a
// non-empty type.
func CountActivities(acts []Activity) Aggregate {
	agg := make(Aggregate)
	for _, a := range acts {
		if a.Type == "" {
			if _, ok := agg[a.EmployeeID]; !ok {
				agg[a.EmployeeID] = 0
			}
			continue
		}
		agg[a.EmployeeID]++
	}
	return agg
}

// Merge left-joins the HR employees with the aggregate. The result has
// exactly one profile per employee, in HR order; ids only present in the
// aggregate are dropped.
func Merge(employees []Employee, agg Aggregate) []Profile {
	out := make([]Profile, len(employees))
	for i, e := range employees {
		out[i] = Profile{Employee: e, TotalActivities: agg[e.ID]}
	}
	return out
}

// Orphans returns the aggregate ids with no matching employee, for logging.
func Orphans(employees []Employee, agg Aggregate) []string {
	known := make(map[string]struct{}, len(employees))
	for _, e := range employees {
		known[e.ID] = struct{}{}
	}
	var out []string
	for id := range agg {
		if _, ok := known[id]; !ok {
			out = append(out, id)
		}
	}
	sort.Strings(out)
	return out
}
