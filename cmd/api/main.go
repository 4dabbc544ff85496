package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gofiber/contrib/otelfiber"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/swagger"
	_ "github.com/joho/godotenv/autoload"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"catalogapi/docs"
	"catalogapi/internal/config"
	"catalogapi/internal/database"
	"catalogapi/internal/database/migration"
	handlers "catalogapi/internal/http/handler"
	"catalogapi/internal/http/middleware"
	"catalogapi/internal/logger"
	"catalogapi/internal/otel"
	"catalogapi/internal/repository/postgres"
	"catalogapi/internal/service"
	"catalogapi/internal/storage"
	"catalogapi/internal/upload"
)

// @title Catalog API
// @version 1.0
// @BasePath /
func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	// Load configuration from environment variables (.env auto-loaded if present)
	cfg := config.Load()

	log, err := logger.New(cfg.LogLevel)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer log.Sync() //nolint:errcheck

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := otel.Init(ctx, log)
	if err != nil {
		return fmt.Errorf("init tracing: %w", err)
	}
	defer func() {
		sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTracing(sctx); err != nil {
			log.Warn("tracing shutdown failed", zap.Error(err))
		}
	}()

	// Initialize PostgreSQL connection (with pooling via database/sql)
	db, err := database.NewPostgres(ctx, cfg.Database, log)
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	defer db.Close()

	if err := migration.EnsureMigrated(ctx, db, log, cfg.Database.Host); err != nil {
		return fmt.Errorf("migrate database: %w", err)
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		collectors.NewDBStatsCollector(db, "catalog"),
	)

	objStore, err := newStorage(cfg.Storage, reg)
	if err != nil {
		return fmt.Errorf("init object storage: %w", err)
	}
	log.Info("object storage ready",
		zap.String("driver", cfg.Storage.Driver),
		zap.String("bucket", cfg.Storage.Bucket),
	)

	opts := service.Options{
		ListURLTTL:   cfg.Signing.ListTTL,
		DetailURLTTL: cfg.Signing.DetailTTL,
		MaxImages:    cfg.Upload.ProductMaxImages,
	}
	postSvc := service.NewPostService(objStore, postgres.NewPostPostgres(db), log, opts)
	productSvc := service.NewProductService(objStore, postgres.NewProductPostgres(db), log, opts)

	postLimits := upload.Limits{MaxFileSize: cfg.Upload.PostMaxFileSize, MaxFiles: 1}
	productLimits := upload.Limits{MaxFileSize: cfg.Upload.ProductMaxFileSize, MaxFiles: cfg.Upload.ProductMaxImages}

	app := fiber.New(fiber.Config{
		ErrorHandler: handlers.ErrorHandler(log),
		BodyLimit:    bodyLimit(postLimits, productLimits),
		// Bodies past BodyLimit reach the handler as a stream instead of being refused,
		// so oversized uploads still get the intake's FILE_TOO_LARGE response.
		StreamRequestBody: true,
	})

	promMiddleware, err := middleware.NewPrometheusMiddleware(reg)
	if err != nil {
		return fmt.Errorf("init http metrics: %w", err)
	}

	// Register global middleware
	app.Use(otelfiber.Middleware())
	// RequestID middleware adds/propagates X-Request-ID and stores it in context
	app.Use(middleware.RequestID())
	app.Use(middleware.Logger(log))
	app.Use(promMiddleware.Handler())
	app.Use(cors.New(cors.Config{AllowOrigins: cfg.AllowOrigins}))

	app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(reg, promhttp.HandlerOpts{})))

	// Swagger UI with dynamic host and scheme
	app.Get("/swagger/*", func(c *fiber.Ctx) error {
		scheme := c.Protocol()
		if proto := c.Get("X-Forwarded-Proto"); proto != "" {
			scheme = strings.Split(proto, ",")[0]
		}

		docs.SwaggerInfo.Host = c.Get("Host")
		docs.SwaggerInfo.Schemes = []string{scheme}

		return swagger.HandlerDefault(c)
	})

	handlers.RegisterRoutes(app, handlers.Deps{
		DB:            db,
		Posts:         postSvc,
		Products:      productSvc,
		PostLimits:    postLimits,
		ProductLimits: productLimits,
	})

	errCh := make(chan error, 1)
	go func() {
		log.Info("server listening", zap.String("port", cfg.Port))
		errCh <- app.Listen(":" + cfg.Port)
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server stopped: %w", err)
	case <-ctx.Done():
	}

	log.Info("shutting down")
	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		log.Error("graceful shutdown failed", zap.Error(err))
	}
	return nil
}

// newStorage builds the configured driver, then layers metrics and per-call deadlines.
// Metrics wrap the deadline so timed out calls are counted as errors.
func newStorage(cfg config.StorageConfig, reg prometheus.Registerer) (storage.Storage, error) {
	s, err := storage.New(cfg)
	if err != nil {
		return nil, err
	}
	return storage.WithMetrics(storage.WithTimeout(s, cfg.Timeout()), reg)
}

func bodyLimit(limits ...upload.Limits) int {
	largest := int64(upload.FormOverhead)
	for _, l := range limits {
		largest = max(largest, l.MaxBodySize())
	}
	return int(largest)
}
