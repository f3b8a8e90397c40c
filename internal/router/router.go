package router

import (
	"fmt"

	"github.com/labstack/echo/v4"
	eMiddleware "github.com/labstack/echo/v4/middleware"
	"gorm.io/gorm"

	"github.com/crosspostx/backend/internal/farcaster"
	"github.com/crosspostx/backend/internal/handlers"
	"github.com/crosspostx/backend/internal/middleware"
	"github.com/crosspostx/backend/internal/models"
	"github.com/crosspostx/backend/internal/pipeline"
	"github.com/crosspostx/backend/internal/repositories"
	"github.com/crosspostx/backend/internal/twitter"
	"github.com/crosspostx/backend/pkg/config"
	"github.com/crosspostx/backend/pkg/logger"
)

// SetupMiddleware configures global Echo middleware
func SetupMiddleware(e *echo.Echo) {
	e.Use(eMiddleware.Recover())
	e.Use(eMiddleware.CORS())
	e.Use(eMiddleware.RequestLoggerWithConfig(eMiddleware.RequestLoggerConfig{
		LogStatus: true,
		LogURI:    true,
		LogMethod: true,
		LogError:  true,
		LogValuesFunc: func(c echo.Context, v eMiddleware.RequestLoggerValues) error {
			logger.Log.Infow("request",
				"method", v.Method,
				"uri", v.URI,
				"status", v.Status,
				"error", v.Error)
			return nil
		},
	}))
}

// SetupRoutes migrates the schema, wires repositories, services and
// handlers, and registers all application routes.
func SetupRoutes(e *echo.Echo, db *gorm.DB, cfg *config.Config, twitterClient *twitter.Client, farcasterClient *farcaster.Client) error {
	if err := db.AutoMigrate(
		&models.User{},
		&models.MonitoredAccount{},
		&models.CrosspostLog{},
	); err != nil {
		return fmt.Errorf("failed to auto migrate models: %w", err)
	}

	// Health check - always accessible
	e.GET("/health", handlers.HealthCheck)

	// --- Repositories ---
	userRepo := repositories.NewGormUserRepository(db)
	accountRepo := repositories.NewGormAccountRepository(db)
	logRepo := repositories.NewGormCrosspostLogRepository(db)

	// --- Services ---
	monitoringService := twitter.NewMonitoringService(twitterClient, accountRepo, logRepo)
	crosspostService := farcaster.NewCrosspostService(logRepo)
	pipelineService := pipeline.NewService(
		monitoringService,
		crosspostService,
		farcasterClient.Publisher(),
		twitterClient.TestConnection,
		farcasterClient.Ping,
		pipeline.StorageProbe(db),
	)

	verificationKey, err := middleware.ParseVerificationKey(cfg.PrivyVerificationKey)
	if err != nil {
		return fmt.Errorf("failed to parse Privy verification key: %w", err)
	}

	// --- Unprotected routes ---
	authGroup := e.Group("/api/v1/auth")
	authHandler := handlers.NewAuthHandler(userRepo, cfg.PrivyAppID, verificationKey)
	authHandler.RegisterAuthRoutes(authGroup)

	// Orchestration endpoints are triggered by the scheduler, not a
	// user session, so they sit outside the auth group.
	api := e.Group("/api/v1")
	handlers.NewPipelineHandler(pipelineService).RegisterPipelineRoutes(api)
	handlers.NewMonitorHandler(monitoringService, twitterClient.TestConnection).RegisterMonitorRoutes(api)
	handlers.NewFarcasterHandler().RegisterFarcasterRoutes(api)

	// --- Protected routes (require a Privy access token) ---
	protected := api.Group("", middleware.PrivyAuthMiddleware(cfg.PrivyAppID, verificationKey))
	handlers.NewAccountHandler(accountRepo, userRepo).RegisterAccountRoutes(protected)
	handlers.NewCrosspostLogHandler(logRepo, userRepo).RegisterCrosspostRoutes(protected)

	logger.Log.Infow("all routes configured")
	return nil
}
