package main

import (
	"io"

	"github.com/spf13/cobra"

	"github.com/warp/sport-bonus/config"
	"github.com/warp/sport-bonus/logging"
)

// app carries what every subcommand needs once flags are parsed.
type app struct {
	cfgFile   string
	logLevel  string
	logFormat string

	cfg    *config.Config
	log    *logging.Logger
	stdout io.Writer
	stderr io.Writer
}

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	a := &app{stdout: stdout, stderr: stderr}

	root := &cobra.Command{
		Use:   "sportbonus",
		Short: "Sport commute bonus and wellness-day pipeline",
		Long: `sportbonus computes, for every employee of the HR export, whether they
earn wellness days (enough logged sport activities) and the sport commute
bonus (human-powered commute within the distance cap), then replaces the
report table and posts a summary to the configured webhook.`,
		Version:       "1.0.0",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.load()
		},
	}
	root.SetOut(stdout)
	root.SetErr(stderr)

	root.PersistentFlags().StringVar(&a.cfgFile, "config", "", "config file (default: ./sportbonus.yaml)")
	root.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "log level: debug, info, warn, error")
	root.PersistentFlags().StringVar(&a.logFormat, "log-format", "", "log format: text, json")

	root.AddCommand(newRunCmd(a), newGenerateCmd(a), newServeCmd(a))
	return root
}

func (a *app) load() error {
	cfg, err := config.Load(a.cfgFile)
	if err != nil {
		return err
	}
	if a.logLevel != "" {
		cfg.Logging.Level = a.logLevel
	}
	if a.logFormat != "" {
		cfg.Logging.Format = a.logFormat
	}
	a.cfg = cfg
	a.log = logging.NewWriter(a.stderr, logging.ParseLevel(cfg.Logging.Level), cfg.Logging.Format)
	return nil
}
