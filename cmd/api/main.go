package main

import (
	"context"
	"log"
	"os"

	"github.com/gofiber/contrib/otelfiber"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	_ "github.com/joho/godotenv/autoload"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"catalogapi/internal/config"
	"catalogapi/internal/database"
	"catalogapi/internal/database/migration"
	handlers "catalogapi/internal/http/handler"
	"catalogapi/internal/http/middleware"
	"catalogapi/internal/logging"
	"catalogapi/internal/otel"
)

func main() {
	// Load configuration from environment variables (.env auto-loaded if present)
	cfg := config.Load()

	level, err := logging.ParseLevel(cfg.Log.Level)
	if err != nil {
		log.Fatalf("invalid log level: %v", err)
	}
	logger := logging.New(os.Stdout, level)

	ctx := context.Background()

	db, err := database.New(cfg.Database)
	if err != nil {
		logger.Logf(logging.Critical, "failed to connect to database: %v", err)
		os.Exit(1)
	}
	defer db.Close()

	if err := migration.EnsureSchema(ctx, db, logger); err != nil {
		logger.Logf(logging.Critical, "failed to prepare schema: %v", err)
		os.Exit(1)
	}

	shutdownTracing, err := otel.Init(ctx, logger)
	if err != nil {
		logger.Logf(logging.Critical, "failed to initialize tracing: %v", err)
		os.Exit(1)
	}
	defer shutdownTracing(ctx)

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	promMW, err := middleware.NewPrometheusMiddleware(registry)
	if err != nil {
		logger.Logf(logging.Critical, "failed to register metrics: %v", err)
		os.Exit(1)
	}

	app := fiber.New(fiber.Config{
		ErrorHandler: handlers.ErrorHandler(logger),
	})

	// RequestID middleware adds/propagates X-Request-ID and stores it in context
	app.Use(middleware.RequestID())
	app.Use(middleware.Logger(logger))
	app.Use(otelfiber.Middleware())
	app.Use(promMW.Handler())

	app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(registry, promhttp.HandlerOpts{})))

	handlers.RegisterRoutes(app, db, logger)

	addr := cfg.AppHost + ":" + cfg.Port
	logger.WithFields(logging.Fields{"addr": addr}).Info("server starting")

	if err := app.Listen(addr); err != nil {
		logger.Logf(logging.Critical, "failed to start server: %v", err)
		os.Exit(1)
	}
}
