// Command pipeline runs the weather prediction pipeline for one logical
// date, from a start stage through an end stage, validating every stage
// boundary against its declared schema contract.
//
// Usage:
//
//	DATA_DIR=data go run ./cmd/pipeline -date 20240426
//	DATA_DIR=data go run ./cmd/pipeline -start clean -end evaluate -date 20240426
package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	httpadapter "github.com/IsakLindberger/Weather-Predict-Model/internal/adapter/http"
	kafkaadapter "github.com/IsakLindberger/Weather-Predict-Model/internal/adapter/kafka"
	"github.com/IsakLindberger/Weather-Predict-Model/internal/artifact"
	"github.com/IsakLindberger/Weather-Predict-Model/internal/config"
	"github.com/IsakLindberger/Weather-Predict-Model/internal/domain"
	"github.com/IsakLindberger/Weather-Predict-Model/internal/metadata"
	"github.com/IsakLindberger/Weather-Predict-Model/internal/observability"
	"github.com/IsakLindberger/Weather-Predict-Model/internal/pipeline"
	"github.com/IsakLindberger/Weather-Predict-Model/internal/schema"
	"github.com/IsakLindberger/Weather-Predict-Model/internal/stages"
)

func main() {
	start := flag.String("start", "ingest", "first stage to run")
	end := flag.String("end", "survival", "last stage to run")
	date := flag.String("date", artifact.DateStamp(domain.Clock().Now()), "logical date (YYYYMMDD)")
	serve := flag.Bool("serve", false, "keep the HTTP server running after the pipeline finishes")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg.LogLevel, cfg.LogFormat)
	metrics := observability.NewMetrics()

	registry, err := schema.NewRegistry()
	if err != nil {
		logger.Error("failed to load stage schemas", "error", err)
		os.Exit(1)
	}

	store := artifact.NewStore(cfg.DataDir)
	recorder := metadata.NewRecorder(store, cfg.StationID)
	runner := pipeline.NewRunner(registry, store, recorder, logger, metrics)
	bodies := stages.Bodies(store, cfg.Params, *date)

	orch := pipeline.NewOrchestrator(runner, store, bodies, logger, metrics)
	if cfg.KafkaEnabled {
		writer := kafkaadapter.NewWriter(cfg, logger)
		defer func() {
			if err := writer.Close(); err != nil {
				logger.Error("kafka writer close error", "error", err)
			}
		}()
		orch.SetPublisher(writer)
		logger.Info("run event publishing enabled", "topic", cfg.KafkaTopic)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	srv := httpadapter.NewServer(cfg.HTTPAddr, recorder, logger)
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
		}
	}()

	outcomes, err := orch.RunPipeline(ctx, domain.Stage(*start), domain.Stage(*end), *date)
	if err != nil {
		logger.Error("pipeline aborted", "error", err)
		shutdown(srv, cfg, logger)
		os.Exit(1)
	}

	for _, o := range outcomes {
		logger.Info("stage outcome", "stage", o.Stage, "status", o.Status, "run_id", o.Metadata.RunID)
	}

	if *serve {
		<-ctx.Done()
		logger.Info("shutting down")
	}
	shutdown(srv, cfg, logger)

	if !pipeline.Success(outcomes) {
		os.Exit(1)
	}
}

func shutdown(srv *httpadapter.Server, cfg *config.Config, logger *slog.Logger) {
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}
}
