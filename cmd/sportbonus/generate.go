package main

import (
	"github.com/spf13/cobra"

	"github.com/warp/sport-bonus/generate"
)

type generateFlags struct {
	out        string
	employees  int
	targets    int
	months     int
	seed       int64
	hrEncoding string
}

func newGenerateCmd(a *app) *cobra.Command {
	var f generateFlags
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Write synthetic HR and activity files",
		Long: `Writes donnees_rh.csv and activites_simulees.csv with fake employees.
A fixed set of target employees gets enough activities for wellness days.`,
		Example: `  sportbonus generate --out ./data --seed 42`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ds := generate.Generate(generate.Options{
				Employees: f.employees,
				Targets:   f.targets,
				Months:    f.months,
				Seed:      f.seed,
			})
			paths, err := generate.WriteFiles(f.out, ds, f.hrEncoding)
			if err != nil {
				return err
			}
			a.log.Info("dataset written",
				"hr", paths.HR, "activities", paths.Activities,
				"employees", len(ds.Employees), "activity_rows", len(ds.Activities))
			successColor.Fprintf(a.stderr, "✓ Wrote %s and %s\n", paths.HR, paths.Activities)
			return nil
		},
	}
	cmd.Flags().StringVar(&f.out, "out", ".", "output directory")
	cmd.Flags().IntVar(&f.employees, "employees", generate.DefaultEmployees, "number of employees")
	cmd.Flags().IntVar(&f.targets, "targets", generate.DefaultTargets, "employees given 15 to 30 activities")
	cmd.Flags().IntVar(&f.months, "months", generate.DefaultMonths, "activity history in months")
	cmd.Flags().Int64Var(&f.seed, "seed", 0, "random seed, 0 picks one")
	cmd.Flags().StringVar(&f.hrEncoding, "hr-encoding", "latin-1", "HR file encoding")
	return cmd
}
