package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/warp/sport-bonus/extract"
	"github.com/warp/sport-bonus/generic"
	"github.com/warp/sport-bonus/logging"
	"github.com/warp/sport-bonus/observability"
	"github.com/warp/sport-bonus/report"
	"github.com/warp/sport-bonus/store"
	"github.com/warp/sport-bonus/wellness"
)

// Stage names, used in logs and metrics.
const (
	StageConnect   = "connect"
	StageExtract   = "extract"
	StageTransform = "transform"
	StageLoad      = "load"
	StageNotify    = "notify"
	StageMetrics   = "metrics"
)

// Connector opens the sink. Driver and Target describe it in errors.
type Connector struct {
	Driver string
	Target string
	Open   func(ctx context.Context) (store.Sink, error)
}

// Notifier delivers the run summary.
type Notifier interface {
	Send(ctx context.Context, s report.Summary) error
}

// PushConfig enables the Pushgateway push when URL is set.
type PushConfig struct {
	URL      string
	Job      string
	Instance string
}

type Options struct {
	HR         extract.Source
	Activities extract.Source
	Policy     wellness.Policy
	Table      string
	Workers    int
	Push       PushConfig
}

// Outcome describes a finished run.
type Outcome struct {
	RunID         string
	Rows          []report.Row
	Summary       report.Summary
	HRStats       extract.Stats
	ActivityStats extract.Stats
	Transformed   Transformed
	// NotifyErr is the non-fatal notification failure, if any.
	NotifyErr error
	Duration  time.Duration
}

type Runner struct {
	opts     Options
	connect  Connector
	notifier Notifier
	metrics  *observability.Metrics
	log      *logging.Logger
}

func NewRunner(opts Options, connect Connector, notifier Notifier, metrics *observability.Metrics, log *logging.Logger) *Runner {
	if opts.Table == "" {
		opts.Table = report.DefaultTable
	}
	if opts.Workers < 1 {
		opts.Workers = 1
	}
	if metrics == nil {
		metrics = observability.New()
	}
	if log == nil {
		log = logging.Discard()
	}
	return &Runner{opts: opts, connect: connect, notifier: notifier, metrics: metrics, log: log}
}

// Run executes every stage once. The returned error is fatal; a failed
// notification is reported in Outcome.NotifyErr instead.
func (r *Runner) Run(ctx context.Context) (*Outcome, error) {
	started := time.Now()
	out := &Outcome{RunID: uuid.NewString()}
	log := r.log.WithRun(out.RunID)
	log.Info("pipeline started", slog.String("table", r.opts.Table))

	err := r.run(ctx, out, log)
	out.Duration = time.Since(started)
	r.metrics.RunFinished(err)
	r.pushMetrics(ctx, log)

	if err != nil {
		log.Error("pipeline failed", logging.Err(err), slog.Int("exit_code", generic.ExitCode(err)))
		return out, err
	}
	log.Info("pipeline finished",
		slog.Int("employees", out.Summary.Employees),
		slog.Int("bonuses_granted", out.Summary.BonusesGranted),
		slog.String("total_bonus", out.Summary.TotalBonus.StringFixed(2)),
		slog.Duration("duration", out.Duration))
	return out, nil
}

func (r *Runner) run(ctx context.Context, out *Outcome, log *logging.Logger) error {
	// connect
	start := time.Now()
	sink, err := r.connect.Open(ctx)
	if err == nil {
		if err = sink.Ping(ctx); err != nil {
			sink.Close()
		}
	}
	r.metrics.ObserveStage(StageConnect, start)
	if err != nil {
		return &generic.ConnectionError{Driver: r.connect.Driver, Target: r.connect.Target, Err: err}
	}
	defer sink.Close()
	log.WithStage(StageConnect).Info("sink connected", slog.String("driver", r.connect.Driver))

	// extract
	start = time.Now()
	hr, hrStats, err := r.extract(ctx, r.opts.HR, log)
	if err != nil {
		return err
	}
	acts, actStats, err := r.extract(ctx, r.opts.Activities, log)
	if err != nil {
		return err
	}
	out.HRStats, out.ActivityStats = hrStats, actStats
	r.metrics.ObserveStage(StageExtract, start)

	// transform
	start = time.Now()
	tr, err := Transform(hr, acts, r.opts.Policy, r.opts.Workers)
	if err != nil {
		return err
	}
	r.metrics.ObserveStage(StageTransform, start)
	out.Transformed = tr
	out.Rows = tr.Rows
	out.Summary = report.Summarize(tr.Rows)
	r.observeReport(out.Summary)

	tlog := log.WithStage(StageTransform)
	for _, field := range tr.InjectedHR {
		tlog.Warn("hr column missing, default injected", slog.String("field", field))
	}
	if len(tr.Orphans) > 0 {
		tlog.Warn("activities without hr record ignored", slog.Int("employees", len(tr.Orphans)))
	}
	tlog.Info("report computed",
		slog.Int("employees", out.Summary.Employees),
		slog.Int("wellness_eligible", out.Summary.WellnessEligible),
		slog.Int("bonuses_granted", out.Summary.BonusesGranted))

	// load
	start = time.Now()
	if err := sink.Replace(ctx, r.opts.Table, tr.Rows); err != nil {
		return &generic.LoadError{Table: r.opts.Table, Rows: len(tr.Rows), Err: err}
	}
	r.metrics.ObserveStage(StageLoad, start)
	log.WithStage(StageLoad).Info("report table replaced", slog.String("table", r.opts.Table), slog.Int("rows", len(tr.Rows)))

	// notify
	out.NotifyErr = r.notify(ctx, out.Summary, log.WithStage(StageNotify))
	return nil
}

func (r *Runner) extract(ctx context.Context, src extract.Source, log *logging.Logger) (generic.Table, extract.Stats, error) {
	t, stats, err := extract.Read(ctx, src)
	if err != nil {
		return generic.Table{}, stats, err
	}
	r.metrics.ObserveSource(src.Name, stats.Rows, stats.Skipped)

	elog := log.WithStage(StageExtract).With(slog.String(logging.KeySource, src.Name))
	if stats.Skipped > 0 {
		elog.Warn("malformed lines skipped", slog.Int("skipped", stats.Skipped), slog.Any("lines", stats.SkippedLines))
	}
	elog.Info("source read", slog.String("path", src.Path), slog.Int("rows", stats.Rows))
	return t, stats, nil
}

func (r *Runner) notify(ctx context.Context, s report.Summary, log *logging.Logger) error {
	if r.notifier == nil {
		return nil
	}
	start := time.Now()
	defer r.metrics.ObserveStage(StageNotify, start)

	err := r.notifier.Send(ctx, s)
	var nerr *generic.NotificationError
	switch {
	case err == nil:
		log.Info("notification sent")
	case errors.As(err, &nerr) && nerr.Skipped:
		log.Warn("notification skipped, webhook is a placeholder")
	default:
		log.Warn("notification failed", logging.Err(err))
	}
	return err
}

func (r *Runner) observeReport(s report.Summary) {
	r.metrics.Employees.Set(float64(s.Employees))
	r.metrics.Eligible.WithLabelValues(observability.BenefitWellnessDays).Set(float64(s.WellnessEligible))
	r.metrics.Eligible.WithLabelValues(observability.BenefitCommuteBonus).Set(float64(s.BonusesGranted))
	total, _ := s.TotalBonus.Float64()
	r.metrics.BonusTotal.Set(total)
}

func (r *Runner) pushMetrics(ctx context.Context, log *logging.Logger) {
	if r.opts.Push.URL == "" {
		return
	}
	if err := r.metrics.Push(ctx, r.opts.Push.URL, r.opts.Push.Job, r.opts.Push.Instance); err != nil {
		log.WithStage(StageMetrics).Warn("metrics push failed", logging.Err(fmt.Errorf("pushgateway %s: %w", r.opts.Push.URL, err)))
	}
}
