package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/warp/sport-bonus/api"
	"github.com/warp/sport-bonus/notify"
	"github.com/warp/sport-bonus/observability"
	"github.com/warp/sport-bonus/pipeline"
	"github.com/warp/sport-bonus/store"
)

type serveFlags struct {
	addr  string
	every time.Duration
}

func newServeCmd(a *app) *cobra.Command {
	var f serveFlags
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the report over HTTP",
		Long: `Serves the persisted report table, /healthz and /metrics. With --every
the pipeline also reruns on that interval in the same process.`,
		Example: `  sportbonus serve --addr :8080
  sportbonus serve --every 1h`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return a.serve(ctx, f)
		},
	}
	cmd.Flags().StringVar(&f.addr, "addr", "", "listen address (overrides api.addr)")
	cmd.Flags().DurationVar(&f.every, "every", 0, "rerun the pipeline on this interval, 0 disables")
	return cmd
}

func (a *app) serve(ctx context.Context, f serveFlags) error {
	cfg := a.cfg
	addr := cfg.API.Addr
	if f.addr != "" {
		addr = f.addr
	}

	db, err := openSink(ctx, cfg.Database)
	if err != nil {
		return fmt.Errorf("open report store (%s): %w", sinkTarget(cfg.Database), err)
	}
	defer db.Close()

	metrics := observability.New()
	metrics.Registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	if f.every > 0 {
		opts, err := pipelineOptions(cfg)
		if err != nil {
			return err
		}
		// The scheduled runs write through the store already opened for reads.
		conn := pipeline.Connector{
			Driver: cfg.Database.Driver,
			Target: sinkTarget(cfg.Database),
			Open:   func(context.Context) (store.Sink, error) { return nopCloser{db}, nil },
		}
		notifier := notify.NewWebhook(cfg.Notification.WebhookURL, cfg.Notification.Currency, cfg.Notification.Timeout)
		runner := pipeline.NewRunner(opts, conn, notifier, metrics, a.log)

		sched := pipeline.NewScheduler(runner.Run, f.every, a.log)
		sched.Start(ctx)
		defer sched.Stop()
	}

	handler := api.NewHandler(db, cfg.Database.Table,
		promhttp.HandlerFor(metrics.Registry, promhttp.HandlerOpts{}))
	srv := &http.Server{
		Addr:         addr,
		Handler:      api.NewRouter(handler, cfg.API.AllowOrigins),
		ReadTimeout:  cfg.API.ReadTimeout,
		WriteTimeout: cfg.API.WriteTimeout,
		IdleTimeout:  60 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		a.log.Info("report API listening", slog.String("addr", addr), slog.String("table", cfg.Database.Table))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errc <- err
		}
		close(errc)
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	a.log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}
	return nil
}

// nopCloser keeps the runner from closing the shared store after each run.
type nopCloser struct{ store.Sink }

func (nopCloser) Close() error { return nil }
