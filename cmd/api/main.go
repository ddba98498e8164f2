package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/nats-io/nats.go"

	"github.com/mjkeller/geosurvey/internal/adapters/classifier"
	"github.com/mjkeller/geosurvey/internal/adapters/fetch"
	"github.com/mjkeller/geosurvey/internal/adapters/http"
	"github.com/mjkeller/geosurvey/internal/adapters/jsonstore"
	natsadapter "github.com/mjkeller/geosurvey/internal/adapters/nats"
	"github.com/mjkeller/geosurvey/internal/adapters/postgres"
	"github.com/mjkeller/geosurvey/internal/adapters/render"
	"github.com/mjkeller/geosurvey/internal/adapters/valkey"
	"github.com/mjkeller/geosurvey/internal/core/ports"
	"github.com/mjkeller/geosurvey/internal/core/usecases"
	"github.com/mjkeller/geosurvey/internal/pkg/config"
	"github.com/mjkeller/geosurvey/internal/pkg/logging"
	"github.com/mjkeller/geosurvey/internal/pkg/telemetry"
)

func main() {
	cfg, err := config.Load("geosurvey-api")
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	// Structured logging
	logLevel := os.Getenv("LOG_LEVEL")
	if logLevel == "" {
		logLevel = "info"
	}
	logging.Setup(logLevel, "json")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Telemetry
	if cfg.Telemetry.Enabled {
		shutdown, err := telemetry.InitTracer(ctx, cfg.Telemetry.ServiceName, cfg.Telemetry.OTLPAddr)
		if err != nil {
			slog.Warn("telemetry init failed", "error", err)
		} else {
			defer shutdown()
		}
	}

	// Storage backend
	var (
		surveyRepo    ports.SurveyRepository
		knowledgeRepo ports.KnowledgeRepository
		db            *postgres.DB
	)
	switch cfg.Storage.Backend {
	case config.BackendPostgres:
		db, err = postgres.New(ctx, cfg.Database.DSN())
		if err != nil {
			log.Fatalf("database: %v", err)
		}
		defer db.Close()
		surveyRepo = postgres.NewSurveyRepo(db)
		knowledgeRepo = postgres.NewKnowledgeRepo(db)
	default:
		surveyRepo, err = jsonstore.NewSurveyRepo(cfg.Storage.DataDir)
		if err != nil {
			log.Fatalf("survey store: %v", err)
		}
		knowledgeRepo, err = jsonstore.NewKnowledgeRepo(cfg.Storage.DataDir)
		if err != nil {
			log.Fatalf("knowledge store: %v", err)
		}
	}

	// Cache
	var (
		cache    *valkey.Cache
		cacheSvc ports.CacheService
	)
	if cfg.Valkey.Enabled {
		cache, err = valkey.New(cfg.Valkey.Addr)
		if err != nil {
			slog.Warn("valkey unavailable", "error", err)
		} else {
			defer cache.Close()
			cacheSvc = cache
		}
	}

	// NATS
	var (
		publisher ports.EventPublisher
		natsConn  *nats.Conn
	)
	if cfg.NATS.Enabled {
		pub, err := natsadapter.NewPublisher(cfg.NATS.URL)
		if err != nil {
			slog.Warn("nats unavailable", "error", err)
		} else {
			defer pub.Close()
			publisher = pub
		}

		// Raw NATS connection for WebSocket relay
		natsConn, err = natsadapter.RawConn(cfg.NATS.URL)
		if err != nil {
			slog.Warn("nats ws conn unavailable", "error", err)
		}
	}

	// Renderer
	renderer, err := render.New(cfg.Storage.OutputDir)
	if err != nil {
		log.Fatalf("renderer: %v", err)
	}

	// Use cases
	knowledgeSvc := usecases.NewKnowledgeService(knowledgeRepo, cacheSvc)
	surveySvc := usecases.NewSurveyService(surveyRepo, knowledgeSvc, usecases.NewKeywordClassifier(), publisher)
	processorSvc := usecases.NewProcessorService(knowledgeSvc)
	mapSvc := usecases.NewMapService(surveySvc, processorSvc, renderer, publisher)
	identifySvc := usecases.NewIdentifyService(classifier.New(), knowledgeSvc)
	source := fetch.NewWikipediaSource(cfg.Updater.MineralSource, cfg.Updater.RockSource)
	updaterSvc := usecases.NewUpdaterService(source, knowledgeSvc)

	deps := &http.Dependencies{
		Surveys:   surveySvc,
		Knowledge: knowledgeSvc,
		Maps:      mapSvc,
		Identify:  identifySvc,
		Updater:   updaterSvc,
		NATS:      natsConn,
		DB:        db,
		Cache:     cache,
	}

	// Fiber
	app := fiber.New(fiber.Config{
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		BodyLimit:    16 * 1024 * 1024, // room for sample image uploads
		AppName:      "GeoSurvey API",
	})
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins:     "http://localhost:3000, http://localhost:5173",
		AllowMethods:     "GET,POST,OPTIONS",
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowCredentials: false,
		MaxAge:           3600,
	}))

	http.SetupRoutes(app, deps)

	// Graceful shutdown
	go func() {
		addr := fmt.Sprintf(":%d", cfg.Server.Port)
		slog.Info("API server starting", "addr", addr, "backend", cfg.Storage.Backend)
		if err := app.Listen(addr); err != nil {
			log.Fatalf("listen: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	slog.Info("shutdown signal received, draining connections...", "signal", sig.String())

	// Give in-flight requests up to 10s to complete
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		slog.Error("forced shutdown", "error", err)
	}

	slog.Info("server stopped")
}
