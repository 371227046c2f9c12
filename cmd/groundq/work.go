package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os/signal"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/groundq/groundq/pkg/metrics"
	"github.com/groundq/groundq/pkg/queue"
	"github.com/groundq/groundq/pkg/schedule"
	"github.com/groundq/groundq/pkg/worker"
)

func newWorkCommand(ctx *commandContext) *cobra.Command {
	var queues []string
	var metricsAddr string

	cmd := &cobra.Command{
		Use:   "work",
		Short: "Run workers for the configured job classes",
		Long: `Run workers against the configured database until interrupted.

Each [worker.commands] entry in the configuration binds a job class to a
command; claimed jobs are executed by running that command with the job's
JSON content on stdin. Maintenance sweeps run embedded in each worker.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWork(cmd.Context(), ctx, queues, metricsAddr)
		},
	}

	cmd.Flags().StringSliceVarP(&queues, "queue", "q", nil, "Queue to work (repeatable; default from config)")
	cmd.Flags().StringVar(&metricsAddr, "metrics-addr", "", "Serve Prometheus metrics on this address (overrides config)")
	return cmd
}

func runWork(cmdCtx context.Context, ctx *commandContext, queues []string, metricsAddr string) error {
	cfg, err := ctx.ensureConfig()
	if err != nil {
		return err
	}
	if len(cfg.Worker.Commands) == 0 {
		return errors.New("no worker.commands configured; nothing to run (see `groundq config init`)")
	}

	signalCtx, cancel := signal.NotifyContext(cmdCtx, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	logger := newLogger(cfg)

	if len(queues) == 0 {
		queues = []string{cfg.Queue.Name}
	}
	queues = dedupe(queues)
	if metricsAddr == "" {
		metricsAddr = cfg.Metrics.Addr
	}

	store, err := ctx.openStore(signalCtx)
	if err != nil {
		return err
	}
	defer closeStore(store)

	registry := prometheus.NewRegistry()

	workers := make([]*worker.Worker, 0, len(queues))
	for _, name := range queues {
		m := metrics.New(registry, name)
		q, err := queue.New(store, name,
			queue.WithDeletedRetention(cfg.DeletedRetention()),
			queue.WithBuriedRetention(cfg.BuriedRetention()),
			queue.WithMetrics(m),
		)
		if err != nil {
			return err
		}

		opts := []worker.WorkerOption{
			worker.WithConcurrency(cfg.Worker.Concurrency),
			worker.WithPollInterval(cfg.PollInterval()),
			worker.WithLogger(logger.With("queue", name)),
			worker.WithMetrics(m),
			worker.WithMaintenance(schedule.Every(cfg.SweepEvery())),
			worker.WithRecoverAfter(cfg.RecoverAfter()),
		}
		if cfg.Worker.RateLimit > 0 {
			opts = append(opts, worker.WithRateLimit(cfg.Worker.RateLimit, cfg.Worker.RateBurst))
		}

		w := worker.New(q, opts...)
		for class, argv := range cfg.Worker.Commands {
			w.Register(class, newExecHandler(logger.With("class", class), class, argv))
		}
		workers = append(workers, w)
	}

	if metricsAddr != "" {
		shutdown, err := serveMetrics(registry, metricsAddr, logger)
		if err != nil {
			return err
		}
		defer shutdown()
	}

	logger.Info("workers starting",
		"queues", strings.Join(queues, ","),
		"concurrency", cfg.Worker.Concurrency,
		"classes", len(cfg.Worker.Commands))

	var wg sync.WaitGroup
	errs := make(chan error, len(workers))
	for _, w := range workers {
		wg.Add(1)
		go func(w *worker.Worker) {
			defer wg.Done()
			if err := w.Start(signalCtx); err != nil && !errors.Is(err, context.Canceled) {
				errs <- err
				cancel()
			}
		}(w)
	}
	wg.Wait()
	close(errs)

	if err := <-errs; err != nil {
		return err
	}
	logger.Info("workers stopped")
	return nil
}

func serveMetrics(registry *prometheus.Registry, addr string, logger *slog.Logger) (func(), error) {
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("metrics listener: %w", err)
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	srv := &http.Server{Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		if err := srv.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("metrics server failed", "error", err)
		}
	}()
	logger.Info("serving metrics", "addr", listener.Addr().String())

	return func() {
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()
		_ = srv.Shutdown(shutdownCtx)
	}, nil
}
