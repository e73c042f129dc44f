package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/seoul-transit/service-route-search/internal/application"
	"github.com/seoul-transit/service-route-search/internal/config"
	"github.com/seoul-transit/service-route-search/internal/domain/station"
	"github.com/seoul-transit/service-route-search/internal/events"
	"github.com/seoul-transit/service-route-search/internal/handler"
	"github.com/seoul-transit/service-route-search/internal/logger"
	"github.com/seoul-transit/service-route-search/internal/naver"
	"github.com/seoul-transit/service-route-search/internal/repository"
)

const serviceName = "service-route-search"

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	log, err := logger.NewNamed(cfg.AppEnv, serviceName)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	log.Info("starting service-route-search",
		zap.String("addr", cfg.Addr()),
		zap.Bool("geocoding_configured", cfg.Naver.HasCredentials()),
		zap.Bool("events_enabled", cfg.Kafka.Enabled()),
	)
	if !cfg.Naver.HasCredentials() {
		log.Warn("NAVER_CLIENT_ID / NAVER_CLIENT_SECRET not set; name searches will fail and directions calls are unauthenticated")
	}

	// Load station table
	var extra []station.Station
	if cfg.StationsFile != "" {
		extra, err = repository.LoadStationFile(cfg.StationsFile)
		if err != nil {
			log.Fatal("failed to load station file", zap.String("path", cfg.StationsFile), zap.Error(err))
		}
		log.Info("station file loaded", zap.String("path", cfg.StationsFile), zap.Int("stations", len(extra)))
	}
	stationRepo := repository.NewStaticStationRepository(extra...)

	// Initialize event publisher
	var publisher events.Publisher = events.NopPublisher{}
	if cfg.Kafka.Enabled() {
		producer := events.NewProducer(cfg.Kafka.Brokers, log)
		publisher = events.NewAsyncPublisher(producer, cfg.Kafka.QueueSize, events.DefaultPublishTimeout, log)
		log.Info("search events enabled",
			zap.Strings("brokers", cfg.Kafka.Brokers),
			zap.String("topic", cfg.Kafka.Topic),
			zap.Int("queue_size", cfg.Kafka.QueueSize),
		)
	}
	defer func() { _ = publisher.Close() }()

	// Initialize provider client and application service
	naverClient := naver.NewClient(cfg.Naver, log)
	searchService := application.NewRouteSearchService(
		application.NewStaticResolver(stationRepo),
		application.NewGeocodingResolver(naverClient, log.Named("resolver")),
		naverClient,
		publisher,
		cfg.Kafka.Topic,
		log.Named("search"),
	)

	// Initialize HTTP handlers
	routeHandler := handler.NewRouteHandler(searchService, stationRepo, cfg.Naver.HasCredentials())
	healthHandler := handler.NewHealthHandler(serviceName, cfg.Naver.HasCredentials(), cfg.Kafka.Enabled())

	// Setup Gin router
	if cfg.AppEnv != "development" {
		gin.SetMode(gin.ReleaseMode)
	}
	router, err := handler.NewRouter(log, routeHandler, healthHandler)
	if err != nil {
		log.Fatal("failed to build router", zap.Error(err))
	}

	// Create HTTP server
	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		log.Info("HTTP server starting", zap.String("addr", cfg.Addr()))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("HTTP server error", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down service-route-search...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("HTTP server forced shutdown", zap.Error(err))
	}

	log.Info("service-route-search stopped")
}
