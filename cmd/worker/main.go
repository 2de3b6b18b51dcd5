package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/auditscan/auditscan/internal/bootstrap"
	"github.com/auditscan/auditscan/internal/config"
	"github.com/auditscan/auditscan/internal/core/domain"
)

func main() {
	cfg := config.Load()
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := bootstrap.NewWorker(ctx, cfg)
	if err != nil {
		log.Fatalf("bootstrap error: %v", err)
	}
	defer app.Close()

	metricsSrv := &http.Server{
		Addr:    ":" + cfg.WorkerMetricsPort,
		Handler: app.Metrics.Handler(),
	}
	go func() {
		if err := metricsSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Printf("metrics server error: %v", err)
		}
	}()
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = metricsSrv.Shutdown(shutdownCtx)
	}()

	log.Printf("worker subscribed to %s", cfg.NATSSubject)
	err = app.Queue.SubscribeScanRequested(ctx, func(handlerCtx context.Context, req domain.ScanRequest) error {
		runCtx, cancel := context.WithTimeout(handlerCtx, 30*time.Minute)
		defer cancel()
		return handleScan(runCtx, app, req)
	})
	if err != nil {
		log.Fatalf("worker subscribe error: %v", err)
	}
}

func handleScan(ctx context.Context, app *bootstrap.App, req domain.ScanRequest) error {
	started := time.Now()
	app.Metrics.StartRun()

	docs, err := app.Loader.Load(ctx, req.InputDir)
	if err != nil {
		app.Metrics.FinishRun("auditscan-worker", time.Since(started), err)
		return err
	}

	bundle, err := app.RunUC.Run(ctx, docs)
	if err != nil {
		app.Metrics.FinishRun("auditscan-worker", time.Since(started), err)
		return err
	}
	if req.RunID != "" {
		bundle.RunID = req.RunID
	}

	err = app.RunStore.SaveRun(ctx, bundle)
	app.Metrics.FinishRun("auditscan-worker", time.Since(started), err)
	if err != nil {
		return err
	}
	app.Metrics.ObserveBundle("auditscan-worker", bundle)
	return nil
}
