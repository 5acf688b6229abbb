package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"aiImageStudio/app/echo-server/router"
	"aiImageStudio/business/recommend"
	"aiImageStudio/internal/middleware"
	psqlRepo "aiImageStudio/internal/repository/postgres"
	redisRepo "aiImageStudio/internal/repository/redis"
	"aiImageStudio/internal/rest"
	"aiImageStudio/pkg/config"
	"aiImageStudio/pkg/database"
	redisdb "aiImageStudio/pkg/database/redis"
	"aiImageStudio/pkg/logger"
	"aiImageStudio/pkg/metrics"

	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger.Init(cfg.App.Environment)
	defer logger.Sync()
	logger.Info("Starting AI Image Studio recommender", "version", cfg.App.Version)

	metrics.Init()

	db, err := database.InitPostgres(cfg)
	if err != nil {
		logger.Fatal("Failed to connect to database", "error", err)
	}
	if err := database.Migrate(db); err != nil {
		logger.Fatal("Failed to migrate database", "error", err)
	}

	logger.Info("Database connected successfully")

	redisClient, err := redisdb.NewClient(cfg.Redis)
	if err != nil {
		logger.Fatal("Failed to connect to redis", "error", err)
	}
	defer func() {
		if err := redisdb.Close(redisClient); err != nil {
			logger.Error("Redis close error", "error", err)
		}
	}()

	// Init repo
	candidateRepo := psqlRepo.NewCandidateRepository(db)
	eventRepo := psqlRepo.NewInteractionEventRepository(db)
	cfgRepo := psqlRepo.NewRecommendConfigRepository(db)
	variantRepo := psqlRepo.NewConfigVariantRepository(db)

	// readers may go through the cache; the recorder's read-modify-write
	// always loads from postgres and only invalidates the cache on save
	var profileStore recommend.ProfileStore = psqlRepo.NewUserProfileRepository(db)
	profileWriter := profileStore
	if redisClient != nil {
		cache := redisRepo.NewProfileCache(redisClient, profileStore, cfg.Recommend.ProfileCacheTTL)
		profileStore, profileWriter = cache, cache.Writer()
		logger.Info("Profile cache enabled", "ttl", cfg.Recommend.ProfileCacheTTL)
	}

	// Init service
	defaultCfg := recommend.DefaultConfig()
	recommendService := recommend.NewService(
		candidateRepo,
		profileStore,
		recommend.NoopEligibilityChecker{},
		cfgRepo,
		variantRepo,
		defaultCfg,
		cfg.Recommend.FetchTimeout,
	)
	recorder := recommend.NewRecorder(
		profileWriter,
		candidateRepo,
		eventRepo,
		cfgRepo,
		variantRepo,
		defaultCfg,
		recommend.RecorderOptions{
			Workers:   cfg.Recommend.FeedbackWorkers,
			QueueSize: cfg.Recommend.FeedbackQueueSize,
			Timeout:   cfg.Recommend.FeedbackTimeout,
		},
	)
	recorder.Start()

	// Init handler
	recommendationHandler := rest.NewRecommendationHandler(recommendService, recorder)
	adminHandler := rest.NewRecommendAdminHandler(cfgRepo, variantRepo, defaultCfg)

	// Init echo
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	// HTTP error handler
	e.HTTPErrorHandler = middleware.ErrorHandler

	// Global middleware
	e.Use(echomiddleware.Recover())
	e.Use(middleware.TraceID())
	e.Use(middleware.Metrics())
	e.Use(echomiddleware.CORSWithConfig(echomiddleware.CORSConfig{
		AllowOrigins: []string{"http://localhost:3000", "http://localhost:8080"},
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut},
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization, middleware.HeaderRequestID},
	}))

	authRequired := middleware.AuthMiddleware(cfg.JWT.SecretKey)
	adminOnly := middleware.AdminOnly()

	// Setup routes
	api := e.Group("/api/v1")
	router.SetRecommendationRoutes(api, recommendationHandler, authRequired)
	router.SetRecommendAdminRoutes(api, adminHandler, authRequired, adminOnly)
	router.SetOpsRoutes(e, func() error {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		sqlDB, err := db.DB()
		if err != nil {
			return err
		}
		if err := sqlDB.PingContext(ctx); err != nil {
			return fmt.Errorf("postgres: %w", err)
		}
		if err := redisdb.Ping(ctx, redisClient); err != nil {
			return fmt.Errorf("redis: %w", err)
		}
		return nil
	})

	// Goroutine server
	go func() {
		addr := fmt.Sprintf(":%s", cfg.Server.Port)
		logger.Info("Server starting", "address", addr)
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Failed to start server", "error", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Shutdown server
	if err := e.Shutdown(ctx); err != nil {
		logger.Error("Server shutdown error", "error", err)
	}

	// drain queued feedback after the server stops accepting it
	recorder.Close()

	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}

	logger.Info("Server stopped")
}
