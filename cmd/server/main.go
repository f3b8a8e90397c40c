package main

import (
	"log"

	"github.com/labstack/echo/v4"

	"github.com/crosspostx/backend/internal/farcaster"
	"github.com/crosspostx/backend/internal/router"
	"github.com/crosspostx/backend/internal/twitter"
	"github.com/crosspostx/backend/pkg/config"
	"github.com/crosspostx/backend/pkg/logger"
	"github.com/crosspostx/backend/validators"
)

func main() {
	// Load configuration
	cfg := config.Load()
	logger.Init(cfg.Env)
	defer logger.Sync()

	// Initialize database connection
	db, err := config.InitDB(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer config.CloseDB(db)

	// Platform clients are constructed here and passed down explicitly
	twitterClient := twitter.NewClient(cfg.TwitterAPIBase, cfg.TwitterRefAccount)

	farcasterClient, err := farcaster.NewClient(cfg.FarcasterFID, cfg.FarcasterSignerKey, cfg.FarcasterHubURL)
	if err != nil {
		log.Fatalf("Failed to initialize Farcaster client: %v", err)
	}

	// Create Echo instance
	e := echo.New()

	// Validator
	e.Validator = validators.NewValidator()

	// Setup global middleware
	router.SetupMiddleware(e)

	// Setup routes and dependencies
	if err := router.SetupRoutes(e, db, cfg, twitterClient, farcasterClient); err != nil {
		log.Fatalf("Failed to setup routes: %v", err)
	}

	// Start server
	e.Logger.Fatal(e.Start(":" + cfg.Port))
}
