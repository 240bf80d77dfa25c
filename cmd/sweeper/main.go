package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"time"

	"rental-ledger/cmd/bootstrap"
	"rental-ledger/internal/pkg/config"
	"rental-ledger/internal/worker"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/fx"
)

func startScheduler(lc fx.Lifecycle, scheduler *worker.Scheduler, cfg config.Config, logger *slog.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	metricsServer := &http.Server{
		Addr:              ":" + cfg.Server.MetricsPort,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	lc.Append(fx.Hook{
		OnStart: func(_ context.Context) error {
			logger.Info("starting sweeper", "spec", cfg.Scheduler.Spec, "metrics_address", metricsServer.Addr)
			go func() {
				if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					logger.Error("metrics server stopped with error", "error", err)
				}
			}()
			scheduler.Start()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			scheduler.Stop()
			return metricsServer.Shutdown(ctx)
		},
	})
}

func main() {
	app := fx.New(
		bootstrap.SweeperModule,
		fx.Invoke(
			startScheduler,
		),
	)

	if err := app.Start(context.Background()); err != nil {
		slog.Error("failed to start sweeper", "error", err)
		os.Exit(1)
	}

	<-app.Done()

	if err := app.Stop(context.Background()); err != nil {
		slog.Error("failed to stop sweeper", "error", err)
	}

	slog.Info("sweeper stopped")
}
