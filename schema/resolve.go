package schema

import (
	"sort"

	"github.com/shopspring/decimal"
	"github.com/warp/sport-bonus/generic"
)

// Canonical field names. These are the only names the domain packages read.
const (
	FieldEmployeeID      = "employee_id"
	FieldSalary          = "salary"
	FieldCommuteMode     = "commute_mode"
	FieldCommuteDistance = "commute_distance_km"
	FieldActivityType    = "activity_type"
)

// DefaultFallbackDistanceKm is injected when the HR source has no distance column.
var DefaultFallbackDistanceKm = decimal.NewFromInt(5)

// Synonyms maps a normalized header to its canonical field name.
type Synonyms map[string]string

var employeeIDSynonyms = []string{
	"employee_id", "id_salarie", "id_salari", "id_employe", "id_collaborateur",
	"collaborateur_id", "matricule",
}

// HRSynonyms covers the spellings seen in HR exports, including the ones a
// latin-1 file produces when it was decoded as utf-8 ("id_salari").
var HRSynonyms = merge(
	alias(FieldEmployeeID, employeeIDSynonyms...),
	alias(FieldSalary, "salary", "salaire_brut", "salaire", "gross_salary", "salaire_annuel_brut"),
	alias(FieldCommuteMode, "commute_mode", "moyen_de_deplacement", "moyen_de_d_placement", "moyen_deplacement", "mode_de_transport"),
	alias(FieldCommuteDistance, "commute_distance_km", "distance_domicile_travail_km", "distance_domicile_travail", "distance_domicile_km"),
)

// ActivitySynonyms covers the activity log exports.
var ActivitySynonyms = merge(
	alias(FieldEmployeeID, employeeIDSynonyms...),
	alias(FieldActivityType, "activity_type", "type_d_activite", "type_d_activit", "type_activite", "activite", "sport_type"),
)

// Rules describes how one table is resolved.
type Rules struct {
	Table    string
	Synonyms Synonyms
	Required []string
	// Optional canonical fields and the value injected when they are absent.
	Defaults map[string]string
}

// HRRules requires employee_id and salary and defaults the commute fields.
func HRRules(fallbackDistanceKm decimal.Decimal) Rules {
	return Rules{
		Table:    "hr",
		Synonyms: HRSynonyms,
		Required: []string{FieldEmployeeID, FieldSalary},
		Defaults: map[string]string{
			FieldCommuteDistance: fallbackDistanceKm.String(),
			FieldCommuteMode:     "",
		},
	}
}

// ActivityRules requires employee_id and activity_type.
func ActivityRules() Rules {
	return Rules{
		Table:    "activities",
		Synonyms: ActivitySynonyms,
		Required: []string{FieldEmployeeID, FieldActivityType},
	}
}

// Result is a resolved table plus the canonical fields that had to be injected.
type Result struct {
	Table    generic.Table
	Injected []string
}

// Resolve normalizes the headers of t, applies the synonym renames and checks
// the required fields. Missing or ambiguous fields yield a *generic.SchemaError.
func Resolve(t generic.Table, rules Rules) (Result, error) {
	resolved := make([]string, len(t.Columns))
	claims := make(map[string][]string)
	for i, raw := range t.Columns {
		name := Normalize(raw)
		if canonical, ok := rules.Synonyms[name]; ok {
			name = canonical
		}
		resolved[i] = name
		claims[name] = append(claims[name], raw)
	}

	var missing []string
	for _, field := range rules.Required {
		if len(claims[field]) == 0 {
			missing = append(missing, field)
		}
	}

	collisions := make(map[string][]string)
	for _, field := range rules.fields() {
		if len(claims[field]) > 1 {
			collisions[field] = claims[field]
		}
	}

	if len(missing) > 0 || len(collisions) > 0 {
		return Result{}, &generic.SchemaError{
			Table:      rules.Table,
			Missing:    missing,
			Collisions: collisions,
			Found:      resolved,
		}
	}

	out := Result{Table: t.WithColumns(resolved)}
	for _, field := range sortedFields(rules.Defaults) {
		if len(claims[field]) == 0 {
			out.Table = out.Table.WithConstantColumn(field, rules.Defaults[field])
			out.Injected = append(out.Injected, field)
		}
	}
	return out, nil
}

// fields lists every canonical field the rules read.
func (s Rules) fields() []string {
	out := append([]string(nil), s.Required...)
	return append(out, sortedFields(s.Defaults)...)
}

func alias(canonical string, names ...string) Synonyms {
	s := make(Synonyms, len(names))
	for _, n := range names {
		s[n] = canonical
	}
	return s
}

func merge(all ...Synonyms) Synonyms {
	out := make(Synonyms)
	for _, s := range all {
		for k, v := range s {
			out[k] = v
		}
	}
	return out
}

func sortedFields(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
