// Package main is the entry point for the regdoc API server.
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"regdoc/internal/classify"
	"regdoc/internal/config"
	"regdoc/internal/detect"
	"regdoc/internal/extract"
	"regdoc/internal/logger"
	"regdoc/internal/observability"
	"regdoc/internal/pipeline"
	"regdoc/internal/scheduler"
	"regdoc/internal/server"
	"regdoc/internal/status"
	"regdoc/internal/store"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

func main() {
	// Load Config
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	slogger := logger.New()
	ctx := context.Background()

	// Tracing is opt-in: no collector endpoint means no exporter.
	if cfg.OTELEndpoint != "" {
		shutdownTracer, err := observability.InitTracer(ctx, "regdoc-server", cfg.OTELEndpoint)
		if err != nil {
			log.Fatalf("Failed to init tracing: %v", err)
		}
		defer func() {
			if err := shutdownTracer(context.Background()); err != nil {
				log.Printf("Failed to shutdown tracer: %v", err)
			}
		}()
	}

	// Metrics
	metricsHandler, shutdownMetrics, err := observability.InitMetrics()
	if err != nil {
		log.Fatalf("Failed to init metrics: %v", err)
	}
	defer func() {
		if err := shutdownMetrics(context.Background()); err != nil {
			log.Printf("Failed to shutdown metrics: %v", err)
		}
	}()

	jobs := store.New()

	// Use an Observable Gauge (Async) that reads the store only when scraped.
	meter := otel.Meter("regdoc-server")
	_, err = meter.Int64ObservableGauge("regdoc.jobs.active",
		metric.WithDescription("Jobs that are not yet in a terminal state"),
		metric.WithInt64Callback(func(ctx context.Context, obs metric.Int64Observer) error {
			obs.Observe(jobs.CountActive())
			return nil
		}),
	)
	if err != nil {
		log.Printf("Failed to register active jobs metric: %v", err)
	}

	// Assemble the document pipeline and its shared worker pool.
	runner := pipeline.NewRunner(
		jobs,
		extract.NewTextExtractor(extract.DefaultCharsPerPage),
		detect.NewRegexDetector(),
		classify.NewRuleClassifier(),
		slogger,
	)
	sched := scheduler.New(runner, scheduler.Config{
		Workers:   cfg.WorkerConcurrency,
		QueueSize: cfg.QueueSize,
	}, slogger)

	// Start Server
	addr := fmt.Sprintf(":%d", cfg.HTTPPort)
	handlers := server.NewHandlers(jobs, status.New(jobs), sched, slogger, cfg.MaxUploadBytes)
	srv := server.New(addr, handlers, cfg, metricsHandler, slogger)

	go func() {
		log.Printf("RegDoc server starting on %s", addr)
		if err := srv.Run(ctx); err != nil {
			log.Printf("Server stopped: %v", err)
		}
	}()

	// Graceful Shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	// Let in-flight documents finish before exiting.
	sched.Stop()
	log.Println("Server exited properly")
}
