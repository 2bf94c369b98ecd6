/*
Package observability records run metrics for Prometheus.

PURPOSE:
  A run is a batch job, so its figures are gauges describing the last run:
  rows read, lines skipped, eligibility counts, total bonus and stage
  durations. They are pushed to a Pushgateway at the end of a run when one
  is configured, and exposed on /metrics by the report API.

METRICS (namespace sport_bonus):
  source_rows{source}              rows kept per source
  source_skipped_lines{source}     malformed lines dropped per source
  employees                        rows in the report
  eligible_employees{benefit}      wellness_days, commute_bonus
  bonus_total                      sum of bonus_amount
  stage_duration_seconds{stage}    wall time per pipeline stage
  last_success_timestamp_seconds   end of the last successful run
  runs_total{outcome}              success, failure
*/
package observability

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/push"
)

const namespace = "sport_bonus"

// Benefit label values.
const (
	BenefitWellnessDays = "wellness_days"
	BenefitCommuteBonus = "commute_bonus"
)

// Metrics owns its registry so several runs in one process (tests, serve)
// do not collide on the global one.
type Metrics struct {
	Registry *prometheus.Registry

	SourceRows    *prometheus.GaugeVec
	SourceSkipped *prometheus.GaugeVec
	Employees     prometheus.Gauge
	Eligible      *prometheus.GaugeVec
	BonusTotal    prometheus.Gauge
	StageDuration *prometheus.GaugeVec
	LastSuccess   prometheus.Gauge
	Runs          *prometheus.CounterVec
}

func New() *Metrics {
	m := &Metrics{
		Registry: prometheus.NewRegistry(),
		SourceRows: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "source_rows",
			Help:      "Rows kept from each source in the last run.",
		}, []string{"source"}),
		SourceSkipped: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "source_skipped_lines",
			Help:      "Malformed lines dropped from each source in the last run.",
		}, []string{"source"}),
		Employees: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "employees",
			Help:      "Employees in the last report.",
		}),
		Eligible: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "eligible_employees",
			Help:      "Employees eligible for each benefit in the last report.",
		}, []string{"benefit"}),
		BonusTotal: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "bonus_total",
			Help:      "Sum of bonus amounts in the last report.",
		}),
		StageDuration: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "stage_duration_seconds",
			Help:      "Wall time of each pipeline stage in the last run.",
		}, []string{"stage"}),
		LastSuccess: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_success_timestamp_seconds",
			Help:      "Unix time at which the last successful run finished.",
		}),
		Runs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "runs_total",
			Help:      "Pipeline runs by outcome.",
		}, []string{"outcome"}),
	}
	m.Registry.MustRegister(m.SourceRows, m.SourceSkipped, m.Employees, m.Eligible,
		m.BonusTotal, m.StageDuration, m.LastSuccess, m.Runs)
	return m
}

// ObserveStage records how long stage took since start.
func (m *Metrics) ObserveStage(stage string, start time.Time) {
	m.StageDuration.WithLabelValues(stage).Set(time.Since(start).Seconds())
}

func (m *Metrics) ObserveSource(source string, rows, skipped int) {
	m.SourceRows.WithLabelValues(source).Set(float64(rows))
	m.SourceSkipped.WithLabelValues(source).Set(float64(skipped))
}

// RunFinished counts the run and, on success, stamps LastSuccess.
func (m *Metrics) RunFinished(err error) {
	if err != nil {
		m.Runs.WithLabelValues("failure").Inc()
		return
	}
	m.Runs.WithLabelValues("success").Inc()
	m.LastSuccess.SetToCurrentTime()
}

// Push sends every metric to the Pushgateway at url under job, grouped by
// instance.
func (m *Metrics) Push(ctx context.Context, url, job, instance string) error {
	p := push.New(url, job).Gatherer(m.Registry)
	if instance != "" {
		p = p.Grouping("instance", instance)
	}
	return p.PushContext(ctx)
}
