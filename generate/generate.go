/*
Package generate writes synthetic HR and activity sources.

PURPOSE:
  Produces a pair of files shaped like the real exports, so that the
  pipeline can be run end to end without production data:
    HR file         ';' separated, latin-1, French headers
    Activity file   ',' separated, utf-8

DISTRIBUTION:
  Targets employees, picked at random, log 15 to 30 activities over the
  last Months months; everyone else logs 0 to 12. With the default
  policy threshold of 15 the targets are exactly the wellness-day winners.

DETERMINISM:
  Everything derives from Options.Seed and Options.Now. Same options,
  same bytes. A zero Seed picks a random one.
*/
package generate

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/shopspring/decimal"
	"golang.org/x/text/encoding"

	"github.com/warp/sport-bonus/extract"
)

// Default options.
const (
	DefaultEmployees = 160
	DefaultTargets   = 20
	DefaultMonths    = 12
)

// File names used by WriteFiles.
const (
	HRFile       = "donnees_rh.csv"
	ActivityFile = "activites_simulees.csv"
)

var (
	hrHeader = []string{
		"ID salarié", "Nom", "Prénom", "Date de naissance", "BU",
		"Salaire brut", "Moyen de déplacement", "Distance domicile-travail (km)",
	}
	activityHeader = []string{
		"ID activité", "ID salarié", "Date", "Type d'activité",
		"Durée (min)", "Distance (km)", "Calories (kcal)", "Description",
	}

	commuteModes = []string{
		"Vélo/Trottinette/Autres", "Marche/running", "Transports en commun",
		"véhicule thermique/électrique", "velo", "trottinette",
	}
	activityTypes = []string{
		"Course à pied", "Vélo", "Marche", "Natation", "Randonnée", "Tennis", "Escalade",
	}
	businessUnits = []string{"Marketing", "R&D", "Finance", "Sales", "Support"}
)

type Options struct {
	Employees int
	Targets   int
	Months    int
	Seed      int64
	Now       time.Time
}

func (o Options) withDefaults() Options {
	if o.Employees <= 0 {
		o.Employees = DefaultEmployees
	}
	if o.Targets < 0 {
		o.Targets = 0
	}
	if o.Targets > o.Employees {
		o.Targets = o.Employees
	}
	if o.Months <= 0 {
		o.Months = DefaultMonths
	}
	if o.Now.IsZero() {
		o.Now = time.Now()
	}
	return o
}

type Employee struct {
	ID          string
	LastName    string
	FirstName   string
	BirthDate   time.Time
	BU          string
	Salary      decimal.Decimal
	CommuteMode string
	DistanceKm  decimal.Decimal
}

type Activity struct {
	ID          string
	EmployeeID  string
	Date        time.Time
	Type        string
	DurationMin int
	DistanceKm  decimal.Decimal
	Calories    int
	Description string
}

type Dataset struct {
	Employees  []Employee
	Activities []Activity
	// Targets holds the ids picked for 15 to 30 activities.
	Targets map[string]bool
}

// Generate builds a dataset from opts.
func Generate(opts Options) Dataset {
	opts = opts.withDefaults()
	f := gofakeit.New(opts.Seed)

	ds := Dataset{Targets: make(map[string]bool, opts.Targets)}
	used := make(map[string]bool, opts.Employees)
	for len(ds.Employees) < opts.Employees {
		id := strconv.Itoa(f.Number(10000, 99999))
		if used[id] {
			continue
		}
		used[id] = true
		ds.Employees = append(ds.Employees, Employee{
			ID:          id,
			LastName:    f.LastName(),
			FirstName:   f.FirstName(),
			BirthDate:   f.DateRange(opts.Now.AddDate(-65, 0, 0), opts.Now.AddDate(-20, 0, 0)),
			BU:          f.RandomString(businessUnits),
			Salary:      decimal.NewFromInt(int64(f.Number(2500000, 7000000))).Shift(-2),
			CommuteMode: f.RandomString(commuteModes),
			DistanceKm:  decimal.NewFromInt(int64(f.Number(100, 4000))).Shift(-2),
		})
	}

	for _, i := range f.Rand.Perm(len(ds.Employees))[:opts.Targets] {
		ds.Targets[ds.Employees[i].ID] = true
	}

	end := opts.Now
	start := end.AddDate(0, -opts.Months, 0)
	for _, e := range ds.Employees {
		n := f.Number(0, 12)
		if ds.Targets[e.ID] {
			n = f.Number(15, 30)
		}
		for k := 0; k < n; k++ {
			ds.Activities = append(ds.Activities, Activity{
				ID:          f.UUID(),
				EmployeeID:  e.ID,
				Date:        f.DateRange(start, end),
				Type:        f.RandomString(activityTypes),
				DurationMin: f.Number(20, 120),
				DistanceKm:  decimal.NewFromInt(int64(f.Number(200, 2500))).Shift(-2),
				Calories:    f.Number(150, 1200),
				Description: f.Sentence(6),
			})
		}
	}
	return ds
}

// =============================================================================
// WRITERS
// =============================================================================

// WriteHR writes the HR file: ';' separated, decimal commas, in enc.
func WriteHR(w io.Writer, employees []Employee, enc encoding.Encoding) error {
	ew := encoding.ReplaceUnsupported(enc.NewEncoder()).Writer(w)
	cw := csv.NewWriter(ew)
	cw.Comma = ';'

	if err := cw.Write(hrHeader); err != nil {
		return err
	}
	for _, e := range employees {
		if err := cw.Write([]string{
			e.ID, e.LastName, e.FirstName, e.BirthDate.Format("02/01/2006"), e.BU,
			frenchDecimal(e.Salary), e.CommuteMode, frenchDecimal(e.DistanceKm),
		}); err != nil {
			return err
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return err
	}
	if c, ok := ew.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

// WriteActivities writes the activity file: ',' separated utf-8.
func WriteActivities(w io.Writer, activities []Activity) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(activityHeader); err != nil {
		return err
	}
	for _, a := range activities {
		if err := cw.Write([]string{
			a.ID, a.EmployeeID, a.Date.Format(time.DateOnly), a.Type,
			strconv.Itoa(a.DurationMin), a.DistanceKm.StringFixed(2),
			strconv.Itoa(a.Calories), a.Description,
		}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// Paths of the files written by WriteFiles.
type Paths struct {
	HR         string
	Activities string
}

// WriteFiles writes both files into dir. hrEncoding names the HR file
// charset, see extract.Encoding.
func WriteFiles(dir string, ds Dataset, hrEncoding string) (Paths, error) {
	enc, err := extract.Encoding(hrEncoding)
	if err != nil {
		return Paths{}, err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return Paths{}, fmt.Errorf("create output dir: %w", err)
	}

	p := Paths{HR: filepath.Join(dir, HRFile), Activities: filepath.Join(dir, ActivityFile)}
	if err := writeFile(p.HR, func(w io.Writer) error { return WriteHR(w, ds.Employees, enc) }); err != nil {
		return Paths{}, err
	}
	if err := writeFile(p.Activities, func(w io.Writer) error { return WriteActivities(w, ds.Activities) }); err != nil {
		return Paths{}, err
	}
	return p, nil
}

func writeFile(path string, write func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := write(f); err != nil {
		f.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	return f.Close()
}

func frenchDecimal(d decimal.Decimal) string {
	s := d.StringFixed(2)
	for i := 0; i < len(s); i++ {
		if s[i] == '.' {
			return s[:i] + "," + s[i+1:]
		}
	}
	return s
}
