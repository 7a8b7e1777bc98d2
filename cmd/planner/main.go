package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/couchcryptid/upkeep-planner-service/internal/adapter/cache"
	httpadapter "github.com/couchcryptid/upkeep-planner-service/internal/adapter/http"
	kafkaadapter "github.com/couchcryptid/upkeep-planner-service/internal/adapter/kafka"
	"github.com/couchcryptid/upkeep-planner-service/internal/adapter/mapbox"
	"github.com/couchcryptid/upkeep-planner-service/internal/adapter/openai"
	"github.com/couchcryptid/upkeep-planner-service/internal/adapter/openmeteo"
	redisadapter "github.com/couchcryptid/upkeep-planner-service/internal/adapter/redis"
	"github.com/couchcryptid/upkeep-planner-service/internal/adapter/sqlite"
	"github.com/couchcryptid/upkeep-planner-service/internal/assistant"
	"github.com/couchcryptid/upkeep-planner-service/internal/config"
	"github.com/couchcryptid/upkeep-planner-service/internal/domain"
	"github.com/couchcryptid/upkeep-planner-service/internal/observability"
	"github.com/couchcryptid/upkeep-planner-service/internal/pipeline"
	"github.com/couchcryptid/upkeep-planner-service/internal/service"
)

func main() {
	if err := config.LoadDotEnv(); err != nil {
		slog.Error("failed to load .env", "error", err)
		os.Exit(1)
	}
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetrics()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, err := sqlite.Open(ctx, cfg.DatabaseURL, logger)
	if err != nil {
		logger.Error("failed to open entity store", "error", err)
		os.Exit(1)
	}
	defer store.Close()

	// Lookups: Open-Meteo always supplies climate data; the geocoder is selectable.
	weather := openmeteo.NewClient(cfg.ClimateTimeout, metrics, logger)
	var geocoder domain.Geocoder = weather
	if cfg.Geocoder == config.GeocoderMapbox {
		geocoder = mapbox.NewClient(cfg.MapboxToken, cfg.ClimateTimeout, metrics, logger)
	}
	geocoder = cache.NewCachedGeocoder(geocoder, cfg.ClimateCacheSize, metrics)
	climate := cache.NewCachedClimateSource(weather, cfg.ClimateCacheSize, metrics)
	logger.Info("climate lookups configured", "geocoder", cfg.Geocoder, "cache_size", cfg.ClimateCacheSize, "timeout", cfg.ClimateTimeout)

	var zoneCache domain.ZoneCache
	var redisZones *redisadapter.ZoneCache
	if cfg.RedisAddr != "" {
		redisZones, err = redisadapter.NewZoneCache(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB, cfg.ZoneCacheTTL, metrics, logger)
		if err != nil {
			logger.Error("failed to connect zone cache", "error", err)
			os.Exit(1)
		}
		defer redisZones.Close()
		zoneCache = redisZones
	} else {
		zoneCache = cache.NewMemoryZoneCache(cfg.ClimateCacheSize, cfg.ZoneCacheTTL, metrics)
		logger.Info("redis not configured, caching zones in memory")
	}

	var generator domain.TextGenerator
	if cfg.OpenAIKey != "" {
		generator = openai.NewClient(cfg.OpenAIKey, cfg.OpenAIModel, 30*time.Second, metrics, logger)
		logger.Info("assistant text generation enabled", "model", cfg.OpenAIModel)
	} else {
		logger.Info("assistant text generation disabled, using template answers")
	}

	predictor := domain.NewLifespanPredictor(geocoder, climate, logger)
	svc := service.New(
		store,
		domain.NewZoneResolver(climate, zoneCache, logger),
		predictor,
		assistant.New(predictor, generator, logger),
		metrics,
		logger,
	)
	svc.AddReadinessCheck("entity store", store)
	if redisZones != nil {
		svc.AddReadinessCheck("zone cache", redisZones)
	}

	var refresh *refreshPipeline
	if cfg.KafkaEnabled {
		refresh = newRefreshPipeline(cfg, svc, metrics, logger)
		svc.AddReadinessCheck("plan refresh pipeline", refresh.pipeline)
	}

	srv := httpadapter.NewServer(cfg.HTTPAddr, svc, svc, metrics, logger)

	// Start HTTP server.
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
			stop()
		}
	}()

	// Start plan refresh pipeline.
	if refresh != nil {
		go func() {
			if err := refresh.pipeline.Run(ctx); err != nil {
				logger.Error("pipeline error", "error", err)
			}
		}()
	}

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}
	if refresh != nil {
		refresh.close(logger)
	}

	logger.Info("shutdown complete")
}

type refreshPipeline struct {
	pipeline *pipeline.Pipeline
	reader   *kafkaadapter.Reader
	writer   *kafkaadapter.Writer
}

func newRefreshPipeline(cfg *config.Config, svc *service.Service, metrics *observability.Metrics, logger *slog.Logger) *refreshPipeline {
	reader := kafkaadapter.NewReader(cfg, logger)
	writer := kafkaadapter.NewWriter(cfg, logger)
	transformer := pipeline.NewTransformer(svc, logger)
	logger.Info("plan refresh pipeline enabled",
		"source_topic", cfg.KafkaSourceTopic,
		"sink_topic", cfg.KafkaSinkTopic,
		"group_id", cfg.KafkaGroupID,
	)
	return &refreshPipeline{
		pipeline: pipeline.New(reader, transformer, writer, logger, metrics, cfg.BatchSize),
		reader:   reader,
		writer:   writer,
	}
}

func (r *refreshPipeline) close(logger *slog.Logger) {
	if err := r.reader.Close(); err != nil {
		logger.Error("kafka reader close error", "error", err)
	}
	if err := r.writer.Close(); err != nil {
		logger.Error("kafka writer close error", "error", err)
	}
}
