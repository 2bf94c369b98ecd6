/*
scheduler.go - Periodic pipeline runs

PURPOSE:
  Reruns the pipeline on a fixed interval next to the report API, so the
  served table follows the source exports without an external cron.

DESIGN:
  - One background goroutine, one run at a time
  - First run fires immediately on Start
  - A failed run is logged and kept as LastErr; the next tick retries
  - Stop cancels the in-flight run and waits for it

USAGE:
  s := pipeline.NewScheduler(runner.Run, time.Hour, log)
  s.Start(ctx)
  defer s.Stop()

SEE ALSO:
  - runner.go: Runner.Run
  - cmd/sportbonus/serve.go: --every flag
*/
package pipeline

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/warp/sport-bonus/logging"
)

// RunFunc is one pipeline execution, normally Runner.Run.
type RunFunc func(ctx context.Context) (*Outcome, error)

// Scheduler runs a RunFunc every Interval.
type Scheduler struct {
	Interval time.Duration

	run    RunFunc
	log    *logging.Logger
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu      sync.Mutex
	runs    int
	last    *Outcome
	lastErr error
	nextRun time.Time
}

func NewScheduler(run RunFunc, interval time.Duration, log *logging.Logger) *Scheduler {
	if interval <= 0 {
		interval = time.Hour
	}
	if log == nil {
		log = logging.Discard()
	}
	return &Scheduler{Interval: interval, run: run, log: log}
}

// Start launches the loop. Calling Start twice without Stop is a no-op.
func (s *Scheduler) Start(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		return
	}

	ctx, s.cancel = context.WithCancel(ctx)
	s.wg.Add(1)
	go s.loop(ctx)
	s.log.Info("scheduler started", slog.Duration("interval", s.Interval))
}

// Stop cancels the loop and waits for the in-flight run.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	cancel := s.cancel
	s.cancel = nil
	s.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	s.wg.Wait()
	s.log.Info("scheduler stopped")
}

func (s *Scheduler) loop(ctx context.Context) {
	defer s.wg.Done()

	ticker := time.NewTicker(s.Interval)
	defer ticker.Stop()

	s.RunNow(ctx)
	for {
		select {
		case <-ticker.C:
			s.RunNow(ctx)
		case <-ctx.Done():
			return
		}
	}
}

// RunNow executes one run synchronously and records its result.
func (s *Scheduler) RunNow(ctx context.Context) {
	out, err := s.run(ctx)
	if err != nil {
		s.log.Error("scheduled run failed", logging.Err(err))
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.runs++
	s.last = out
	s.lastErr = err
	s.nextRun = time.Now().Add(s.Interval)
}

// Last returns the latest outcome and error. Both are nil before the
// first run.
func (s *Scheduler) Last() (*Outcome, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.last, s.lastErr
}

func (s *Scheduler) Runs() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.runs
}

func (s *Scheduler) NextRun() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.nextRun
}
