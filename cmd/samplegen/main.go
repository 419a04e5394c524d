package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/couchcryptid/quake-sample-builder/internal/adapter/catalogcsv"
	httpadapter "github.com/couchcryptid/quake-sample-builder/internal/adapter/http"
	"github.com/couchcryptid/quake-sample-builder/internal/adapter/jsonl"
	kafkaadapter "github.com/couchcryptid/quake-sample-builder/internal/adapter/kafka"
	"github.com/couchcryptid/quake-sample-builder/internal/config"
	"github.com/couchcryptid/quake-sample-builder/internal/observability"
	"github.com/couchcryptid/quake-sample-builder/internal/pipeline"
)

type sink interface {
	pipeline.BatchLoader
	Close() error
}

func main() {
	os.Exit(run())
}

func run() int {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		return 1
	}

	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetrics()

	catalog, rowErrs, err := catalogcsv.ReadFile(cfg.CatalogPath, cfg.CatalogTimeLayout)
	if err != nil {
		logger.Error("failed to read catalog", "path", cfg.CatalogPath, "error", err)
		return 1
	}
	for _, rowErr := range rowErrs {
		logger.Warn("catalog row skipped", "error", rowErr)
	}
	if err := catalog.Validate(); err != nil {
		logger.Warn("catalog has integrity problems", "error", err)
	}
	logger.Info("catalog loaded", "path", cfg.CatalogPath, "events", catalog.Len(), "bad_rows", len(rowErrs))

	out, err := openSink(cfg, logger)
	if err != nil {
		logger.Error("failed to open sink", "sink", cfg.Sink, "error", err)
		return 1
	}

	p := pipeline.New(pipeline.NewTransformer(cfg.Params()), out, logger, metrics, pipeline.Options{
		Params:             cfg.Params(),
		TargetMinMagnitude: cfg.TargetMinMagnitude,
		TargetSampleSize:   cfg.TargetSampleSize,
		TargetSeed:         cfg.TargetSeed,
		RemoveAftershocks:  cfg.RemoveAftershocks,
		Workers:            cfg.Workers,
		BatchSize:          cfg.BatchSize,
		LoadMaxAttempts:    cfg.LoadMaxAttempts,
	})

	srv := httpadapter.NewServer(cfg.HTTPAddr, p, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Start HTTP server.
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
		}
	}()

	exitCode := 0
	report, err := p.Run(ctx, catalog)
	if err != nil {
		logger.Error("pipeline error", "error", err)
		exitCode = 1
	} else {
		batch := pipeline.Stack(report.Results)
		logger.Info("samples ready",
			"samples", batch.Len(),
			"positives", batch.Positives(),
			"skipped", report.Skipped,
		)
	}

	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}
	if err := out.Close(); err != nil {
		logger.Error("sink close error", "sink", cfg.Sink, "error", err)
		exitCode = 1
	}

	logger.Info("shutdown complete")
	return exitCode
}

func openSink(cfg *config.Config, logger *slog.Logger) (sink, error) {
	if cfg.Sink == config.SinkKafka {
		logger.Info("writing samples to kafka", "brokers", cfg.KafkaBrokers, "topic", cfg.KafkaSinkTopic)
		return kafkaadapter.NewWriter(cfg, logger), nil
	}
	logger.Info("writing samples as json lines", "path", cfg.OutputPath)
	return jsonl.Open(cfg.OutputPath)
}
