package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/valyala/fasthttp/fasthttpadaptor"
	"go.uber.org/zap"

	"github.com/dtc-labs/orderlens/internal/adapter/datasets"
	"github.com/dtc-labs/orderlens/internal/adapter/export"
	"github.com/dtc-labs/orderlens/internal/adapter/http/fiber/handlers"
	"github.com/dtc-labs/orderlens/internal/adapter/http/fiber/middleware"
	"github.com/dtc-labs/orderlens/internal/observability/telemetry"
	"github.com/dtc-labs/orderlens/internal/service/analytics"
	"github.com/dtc-labs/orderlens/internal/service/health"
	"github.com/dtc-labs/orderlens/pkg/config"
)

const (
	serviceName    = "orderlens"
	serviceVersion = "v1.0.0"
)

func main() {
	// 1. Initialize Logger
	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatal("Failed to initialize logger:", err)
	}
	defer logger.Sync()

	logger.Info("Starting OrderLens",
		zap.String("service", serviceName),
		zap.String("version", serviceVersion),
	)

	// 2. Load Configuration
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Failed to load configuration", zap.Error(err))
	}

	// 3. Initialize OpenTelemetry (Distributed Tracing)
	tracerProvider, err := telemetry.InitTracer(serviceName)
	if err != nil {
		logger.Fatal("Failed to initialize tracer", zap.Error(err))
	}
	defer func() {
		if err := tracerProvider.Shutdown(context.Background()); err != nil {
			logger.Error("Error shutting down tracer provider", zap.Error(err))
		}
	}()

	// 4. Initialize Services (Business Logic Layer)
	analyticsService := analytics.NewService(cfg, logger, time.Now)
	datasetClient := datasets.NewClient(cfg.Datasets, cfg.CircuitBreaker, logger)
	exportBuilder := export.NewBuilder(logger)

	healthService := health.NewService(serviceVersion, logger)
	healthService.RegisterChecker("orders_dataset",
		health.ConfiguredURLChecker("orders_dataset", cfg.Datasets.OrdersURL))
	healthService.RegisterChecker("active_users_dataset",
		health.ConfiguredURLChecker("active_users_dataset", cfg.Datasets.ActiveUsersURL))
	healthService.RegisterChecker("dataset_fetches",
		health.BreakerChecker("dataset_fetches", datasetClient.BreakerStatus))

	// 5. Initialize Fiber HTTP Server
	app := fiber.New(fiber.Config{
		AppName:               serviceName,
		ServerHeader:          serviceName,
		DisableStartupMessage: true,
		BodyLimit:             cfg.HTTP.BodyLimit,
		ReadTimeout:           cfg.HTTP.ReadTimeout,
		WriteTimeout:          cfg.HTTP.WriteTimeout,
		IdleTimeout:           cfg.HTTP.IdleTimeout,
		ErrorHandler:          middleware.ErrorHandler(logger),
	})

	// Global Middleware
	app.Use(recover.New())
	app.Use(fiberlogger.New())
	app.Use(middleware.NewCORS(cfg.CORS))
	app.Use(middleware.CircuitBreaker(cfg.CircuitBreaker, logger))

	// Health Check Endpoints
	healthHandler := health.NewFiberHandler(healthService)
	healthHandler.RegisterRoutes(app)

	// Metrics endpoint for Prometheus
	app.Get("/metrics", func(c *fiber.Ctx) error {
		handler := fasthttpadaptor.NewFastHTTPHandler(promhttp.Handler())
		handler(c.Context())
		return nil
	})

	// API v1 Routes
	v1 := app.Group("/api/v1")

	ordersHandler := handlers.NewOrdersHandler(analyticsService, exportBuilder, logger)
	v1.Post("/orders/compute", ordersHandler.Compute)
	v1.Post("/orders/compute.xlsx", ordersHandler.ComputeWorkbook)

	analyticsHandler := handlers.NewAnalyticsHandler(analyticsService, datasetClient, logger)
	v1.Post("/analytics/compute", analyticsHandler.Compute)
	v1.Get("/analytics", analyticsHandler.Get)
	v1.Get("/users/active", analyticsHandler.ActiveUsers)

	// 6. Start HTTP Server
	go func() {
		logger.Info("Starting HTTP Server", zap.Int("port", cfg.HTTP.Port))
		if err := app.Listen(fmt.Sprintf(":%d", cfg.HTTP.Port)); err != nil {
			logger.Fatal("HTTP Server failed", zap.Error(err))
		}
	}()

	// 7. Graceful Shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(ctx); err != nil {
		logger.Fatal("Server forced to shutdown", zap.Error(err))
	}

	logger.Info("Server exited gracefully")
}
