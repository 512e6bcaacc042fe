package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	echoMiddleware "github.com/labstack/echo/v4/middleware"
	echoSwagger "github.com/swaggo/echo-swagger"
	"go.uber.org/zap"

	"kidspace/docs"
	"kidspace/internal/caching"
	"kidspace/internal/config"
	"kidspace/internal/handlers"
	"kidspace/internal/jobs/background"
	"kidspace/internal/logger"
	"kidspace/internal/middleware"
	"kidspace/internal/repositories"
	"kidspace/internal/services"
	"kidspace/pkg/database"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		// zap is not configured yet
		_, _ = os.Stderr.WriteString("invalid configuration: " + err.Error() + "\n")
		os.Exit(1)
	}

	log, err := logger.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		_, _ = os.Stderr.WriteString("logger: " + err.Error() + "\n")
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()
	zap.ReplaceGlobals(log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Licensing store and tenant registry
	licensing, err := database.NewPool(ctx, cfg.LicensingURL, log)
	if err != nil {
		log.Fatal("failed to connect to licensing database", zap.Error(err))
	}
	defer licensing.Close()

	tenantService, err := services.LoadTenantService(ctx, repositories.NewTenantRepo(licensing), log)
	if err != nil {
		log.Fatal("failed to load tenant registry", zap.Error(err))
	}
	log.Info("tenant registry loaded", zap.Int("tenants", len(tenantService.Tenants())))

	pools := database.NewTenantPools(cfg.TenantDB.TenantDSN, database.PoolOptions{
		MaxConns:        cfg.TenantDB.MaxConns,
		MinConns:        cfg.TenantDB.MinConns,
		MaxConnIdleTime: cfg.TenantDB.IdleTimeout,
	}, log)
	defer pools.Close()

	// Cache and storage
	cache, err := caching.NewCacheService(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, cfg.Redis.L1MaxCost, log)
	if err != nil {
		log.Fatal("failed to create cache", zap.Error(err))
	}
	defer func() { _ = cache.Close() }()

	storage, err := services.NewMinioService(cfg.Minio.Endpoint, cfg.Minio.AccessKey, cfg.Minio.SecretKey, cfg.Minio.Bucket, cfg.Minio.UseSSL)
	if err != nil {
		log.Fatal("failed to create storage client", zap.Error(err))
	}
	if err := storage.EnsureBucket(ctx); err != nil {
		log.Warn("image bucket unavailable, uploads will fail until it is reachable", zap.String("bucket", cfg.Minio.Bucket), zap.Error(err))
	}

	svc := handlers.Services{
		Records:    services.NewRecordService(log),
		Children:   services.NewChildService(log),
		Checkins:   services.NewCheckinService(log),
		Auth:       services.NewAuthService(log),
		CEP:        services.NewCEPService(cfg.ViaCEPBaseURL, cfg.ViaCEPTimeout, cache, cfg.CEPCacheTTL, log),
		Images:     services.NewImageService(storage, log),
		Parameters: services.NewParameterService(),
	}

	scheduler, err := background.NewJobScheduler(pools, cfg.TenantDB.JanitorInterval, cfg.TenantDB.IdleTimeout, log)
	if err != nil {
		log.Fatal("failed to create job scheduler", zap.Error(err))
	}
	scheduler.Start()
	defer func() { _ = scheduler.Stop() }()

	e := echo.New()
	e.HideBanner = true

	e.Pre(echoMiddleware.RemoveTrailingSlash())
	e.Use(echoMiddleware.Recover())
	e.Use(echoMiddleware.CORSWithConfig(echoMiddleware.CORSConfig{
		AllowOrigins: []string{"*"},
		AllowHeaders: []string{"*"},
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
	}))
	e.Use(echoMiddleware.RequestIDWithConfig(echoMiddleware.RequestIDConfig{
		Generator: func() string { return uuid.NewString() },
	}))
	e.Use(middleware.RequestLogger(log))
	e.Use(middleware.TenantMiddleware(tenantService, pools, cfg.RequestTimeout, log))

	health := handlers.NewHealthHandlers(licensing, cache, pools.Databases, len(tenantService.Tenants()))
	e.GET("/health", health.HealthCheck)
	e.GET("/health/live", health.LivenessCheck)
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	handlers.RegisterRoutes(e, svc)
	if err := docs.Register(e); err != nil {
		log.Warn("swagger document not published", zap.Error(err))
	}

	go func() {
		log.Info("server starting", zap.String("addr", cfg.Addr()))
		if err := e.Start(cfg.Addr()); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error("graceful shutdown failed", zap.Error(err))
	}
}
