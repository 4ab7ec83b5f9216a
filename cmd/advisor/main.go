package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/couchcryptid/crop-advisor-service/internal/adapter/httpapi"
	kafkaadapter "github.com/couchcryptid/crop-advisor-service/internal/adapter/kafka"
	"github.com/couchcryptid/crop-advisor-service/internal/adapter/openweather"
	"github.com/couchcryptid/crop-advisor-service/internal/config"
	"github.com/couchcryptid/crop-advisor-service/internal/dataset"
	"github.com/couchcryptid/crop-advisor-service/internal/domain"
	"github.com/couchcryptid/crop-advisor-service/internal/model"
	"github.com/couchcryptid/crop-advisor-service/internal/observability"
	"github.com/couchcryptid/crop-advisor-service/internal/recommend"
	"github.com/couchcryptid/crop-advisor-service/internal/storage"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetrics()

	// The dataset is the ground truth; without it there is nothing to serve.
	raw, err := os.ReadFile(cfg.DatasetPath)
	if err != nil {
		logger.Error("failed to read dataset", "path", cfg.DatasetPath, "error", err)
		os.Exit(1)
	}
	table, err := dataset.Load(cfg.DatasetPath, logger)
	if err != nil {
		logger.Error("failed to load dataset", "path", cfg.DatasetPath, "error", err)
		os.Exit(1)
	}
	cols, err := domain.ResolveColumns(table.Headers)
	if err != nil {
		logger.Error("failed to resolve dataset columns", "error", err)
		os.Exit(1)
	}
	metrics.DatasetRecords.Set(float64(len(table.Rows)))
	logger.Info("dataset loaded", "path", cfg.DatasetPath, "rows", len(table.Rows))

	// Live weather is feature-flagged via OPENWEATHERMAP_API_KEY / WEATHER_ENABLED.
	var weather domain.WeatherProvider
	if cfg.WeatherEnabled {
		client := openweather.NewClient(cfg.WeatherAPIKey, cfg.WeatherBaseURL, cfg.WeatherTimeout, logger, metrics)
		weather = openweather.NewCachedProvider(client, cfg.WeatherCacheTTL, metrics)
		metrics.WeatherEnabled.Set(1)
		logger.Info("live weather enabled", "cache_ttl", cfg.WeatherCacheTTL, "timeout", cfg.WeatherTimeout)
	} else {
		logger.Info("live weather disabled")
	}

	history, err := storage.NewSQLite(cfg.HistoryDBPath, logger)
	if err != nil {
		logger.Error("failed to open history store", "path", cfg.HistoryDBPath, "error", err)
		os.Exit(1)
	}

	var publisher *kafkaadapter.Publisher
	var events recommend.EventPublisher
	if cfg.KafkaEnabled {
		publisher = kafkaadapter.NewPublisher(cfg, logger)
		events = publisher
		logger.Info("kafka events enabled", "topic", cfg.KafkaTopic, "brokers", cfg.KafkaBrokers)
	} else {
		logger.Info("kafka events disabled")
	}

	svc := recommend.New(recommend.Params{
		Table:       table,
		Columns:     cols,
		DatasetHash: model.HashDataset(raw),
		Seed:        cfg.ModelSeed,
		Models:      model.NewFileStore(cfg.ModelPath),
		Weather:     weather,
		History:     history,
		Events:      events,
		Logger:      logger,
		Metrics:     metrics,
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := svc.EnsureModel(ctx); err != nil {
		logger.Error("failed to prepare model", "error", err)
		os.Exit(1)
	}

	srv := httpapi.NewServer(cfg.HTTPAddr, svc, logger)

	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}
	if publisher != nil {
		if err := publisher.Close(); err != nil {
			logger.Error("kafka publisher close error", "error", err)
		}
	}
	if err := history.Close(); err != nil {
		logger.Error("history store close error", "error", err)
	}

	logger.Info("shutdown complete")
}
