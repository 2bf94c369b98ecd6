package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/fatih/color"
	"gopkg.in/yaml.v3"

	"github.com/warp/sport-bonus/generic"
	"github.com/warp/sport-bonus/pipeline"
	"github.com/warp/sport-bonus/report"
)

const (
	outputTable = "table"
	outputJSON  = "json"
	outputYAML  = "yaml"
	outputNone  = "none"
)

var (
	successColor = color.New(color.FgGreen, color.Bold)
	errorColor   = color.New(color.FgRed, color.Bold)
	warnColor    = color.New(color.FgYellow)
	headerColor  = color.New(color.Bold)
)

func checkOutput(format string) error {
	switch format {
	case outputTable, outputJSON, outputYAML, outputNone:
		return nil
	default:
		return fmt.Errorf("unknown output format %q (want table, json, yaml or none)", format)
	}
}

// runDocument is the JSON/YAML shape of a finished run.
type runDocument struct {
	RunID   string               `json:"run_id" yaml:"run_id"`
	Summary report.SummaryRecord `json:"summary" yaml:"summary"`
	Rows    []report.Record      `json:"rows" yaml:"rows"`
}

func render(w io.Writer, format string, out *pipeline.Outcome) error {
	doc := runDocument{
		RunID:   out.RunID,
		Summary: out.Summary.Record(),
		Rows:    report.Records(out.Rows),
	}
	switch format {
	case outputJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(doc)
	case outputYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(doc); err != nil {
			return err
		}
		return enc.Close()
	case outputNone:
		return nil
	default:
		return renderTable(w, doc.Rows)
	}
}

func renderTable(w io.Writer, rows []report.Record) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	headerColor.Fprintln(tw, strings.Join(report.Columns, "\t")+"\t")
	for _, r := range rows {
		fmt.Fprintf(tw, "%s\t%s\t%d\t%s\t%s\t%s\t%s\t\n",
			r.EmployeeID, r.Salary, r.TotalActivities,
			yesNo(r.EligibleWellnessDays), yesNo(r.EligibleBonus),
			r.BonusAmount, r.NewSalary)
	}
	return tw.Flush()
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

// printOutcome writes the closing banner of a successful run.
func printOutcome(w io.Writer, out *pipeline.Outcome, currency string) {
	s := out.Summary
	successColor.Fprintf(w, "✓ Pipeline finished in %s\n", out.Duration.Round(time.Millisecond))
	fmt.Fprintf(w, "  employees: %d, wellness days: %d, bonuses: %d, total bonus: %s %s\n",
		s.Employees, s.WellnessEligible, s.BonusesGranted, s.TotalBonus.StringFixed(2), currency)
	if n := out.HRStats.Skipped + out.ActivityStats.Skipped; n > 0 {
		warnColor.Fprintf(w, "  %d malformed source lines skipped\n", n)
	}
	if n := len(out.Transformed.Orphans); n > 0 {
		warnColor.Fprintf(w, "  %d activity employee ids not in the HR file\n", n)
	}
	if out.NotifyErr != nil {
		var nerr *generic.NotificationError
		if errors.As(out.NotifyErr, &nerr) && nerr.Skipped {
			warnColor.Fprintln(w, "  notification skipped: webhook is not configured")
		} else {
			warnColor.Fprintf(w, "  notification failed: %v\n", out.NotifyErr)
		}
	}
}

func printError(w io.Writer, err error) {
	errorColor.Fprintf(w, "✗ %v\n", err)
}
