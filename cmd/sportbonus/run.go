package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/warp/sport-bonus/config"
	"github.com/warp/sport-bonus/extract"
	"github.com/warp/sport-bonus/notify"
	"github.com/warp/sport-bonus/observability"
	"github.com/warp/sport-bonus/pipeline"
)

type runFlags struct {
	hr         string
	activities string
	driver     string
	table      string
	output     string
	noNotify   bool
}

func newRunCmd(a *app) *cobra.Command {
	var f runFlags
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the pipeline once",
		Long: `Extracts the HR and activity files, computes eligibility and bonuses,
replaces the report table and posts the summary to the webhook.`,
		Example: `  sportbonus run
  sportbonus run --driver sqlite --output json
  sportbonus run --hr ./data/donnees_rh.csv --activities ./data/activites_simulees.csv`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return a.run(ctx, f)
		},
	}
	cmd.Flags().StringVar(&f.hr, "hr", "", "HR file (overrides sources.hr.path)")
	cmd.Flags().StringVar(&f.activities, "activities", "", "activity file (overrides sources.activities.path)")
	cmd.Flags().StringVar(&f.driver, "driver", "", "sink driver: postgres, sqlite, memory")
	cmd.Flags().StringVar(&f.table, "table", "", "report table name")
	cmd.Flags().StringVarP(&f.output, "output", "o", outputTable, "output format: table, json, yaml, none")
	cmd.Flags().BoolVar(&f.noNotify, "no-notify", false, "skip the webhook notification")
	return cmd
}

func (a *app) run(ctx context.Context, f runFlags) error {
	cfg := *a.cfg
	if f.hr != "" {
		cfg.Sources.HR.Path = f.hr
	}
	if f.activities != "" {
		cfg.Sources.Activities.Path = f.activities
	}
	if f.driver != "" {
		cfg.Database.Driver = f.driver
	}
	if f.table != "" {
		cfg.Database.Table = f.table
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	if err := checkOutput(f.output); err != nil {
		return err
	}

	opts, err := pipelineOptions(&cfg)
	if err != nil {
		return err
	}

	var notifier pipeline.Notifier
	if !f.noNotify {
		notifier = notify.NewWebhook(cfg.Notification.WebhookURL, cfg.Notification.Currency, cfg.Notification.Timeout)
	}

	runner := pipeline.NewRunner(opts, connector(cfg.Database), notifier, observability.New(), a.log)
	out, err := runner.Run(ctx)
	if err != nil {
		return err
	}

	if err := render(a.stdout, f.output, out); err != nil {
		return err
	}
	printOutcome(a.stderr, out, cfg.Notification.Currency)
	return nil
}

// pipelineOptions maps the configuration onto runner options.
func pipelineOptions(cfg *config.Config) (pipeline.Options, error) {
	policy, err := cfg.WellnessPolicy()
	if err != nil {
		return pipeline.Options{}, err
	}
	hr, err := source("hr", cfg.Sources.HR)
	if err != nil {
		return pipeline.Options{}, err
	}
	acts, err := source("activities", cfg.Sources.Activities)
	if err != nil {
		return pipeline.Options{}, err
	}

	instance, _ := os.Hostname()
	return pipeline.Options{
		HR:         hr,
		Activities: acts,
		Policy:     policy,
		Table:      cfg.Database.Table,
		Workers:    cfg.Workers,
		Push: pipeline.PushConfig{
			URL:      cfg.Metrics.PushgatewayURL,
			Job:      cfg.Metrics.Job,
			Instance: instance,
		},
	}, nil
}

func source(name string, sc config.SourceConfig) (extract.Source, error) {
	delim, err := sc.Rune()
	if err != nil {
		return extract.Source{}, fmt.Errorf("sources.%s: %w", name, err)
	}
	return extract.Source{Name: name, Path: sc.Path, Delimiter: delim, Encoding: sc.Encoding}, nil
}
