package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/couchcryptid/active-fire-etl/internal/adapter/csvfile"
	"github.com/couchcryptid/active-fire-etl/internal/adapter/firms"
	httpadapter "github.com/couchcryptid/active-fire-etl/internal/adapter/http"
	kafkaadapter "github.com/couchcryptid/active-fire-etl/internal/adapter/kafka"
	"github.com/couchcryptid/active-fire-etl/internal/config"
	"github.com/couchcryptid/active-fire-etl/internal/observability"
	"github.com/couchcryptid/active-fire-etl/internal/pipeline"
)

func main() {
	if err := run(); err != nil {
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		return err
	}

	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetrics()

	client := firms.NewClient(cfg.FeedURL, cfg.UserAgent, cfg.FetchTimeout, metrics, logger)
	csvWriter := csvfile.NewWriter(cfg.OutputPath, metrics, logger)

	// The CSV loader always runs first.
	loaders := pipeline.Loaders{csvWriter}
	if cfg.KafkaEnabled {
		kafkaWriter := kafkaadapter.NewWriter(cfg, metrics, logger)
		defer func() {
			if err := kafkaWriter.Close(); err != nil {
				logger.Error("kafka writer close error", "error", err)
			}
		}()
		loaders = append(loaders, kafkaWriter)
		logger.Info("kafka publishing enabled", "brokers", cfg.KafkaBrokers, "topic", cfg.KafkaTopic)
	}

	p := pipeline.New(client, pipeline.NewTransformer(), loaders, logger, metrics)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.RunInterval > 0 {
		serve(ctx, cfg, p, logger)
		return nil
	}
	return runOnce(ctx, cfg, p, metrics, logger)
}

// runOnce converts the feed a single time. The metrics textfile, when
// configured, is written whether or not the run succeeded.
func runOnce(ctx context.Context, cfg *config.Config, p *pipeline.Pipeline, metrics *observability.Metrics, logger *slog.Logger) error {
	summary, err := p.RunOnce(ctx)

	if cfg.MetricsTextfile != "" {
		if werr := metrics.WriteTextfile(cfg.MetricsTextfile); werr != nil {
			logger.Error("failed to write metrics textfile", "path", cfg.MetricsTextfile, "error", werr)
		}
	}

	if err != nil {
		logger.Error("conversion failed", "url", cfg.FeedURL, "error", err)
		return err
	}

	logger.Info("data extracted and saved",
		"path", cfg.OutputPath,
		"rows", summary.Rows,
		"skipped", summary.Skipped,
	)
	return nil
}

// serve runs the pipeline on a schedule next to the health and metrics server
// until ctx is cancelled.
func serve(ctx context.Context, cfg *config.Config, p *pipeline.Pipeline, logger *slog.Logger) {
	srv := httpadapter.NewServer(cfg.HTTPAddr, p, logger)

	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
		}
	}()

	if err := p.Run(ctx, cfg.RunInterval); err != nil {
		logger.Error("pipeline error", "error", err)
	}

	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}

	logger.Info("shutdown complete")
}
