// Package main is the entry point for the WCIF History API
package main

import (
	"fmt"
	"log"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"

	"github.com/cubetrack/wcifhistoryapi/internal/api"
	"github.com/cubetrack/wcifhistoryapi/internal/api/middleware"
	"github.com/cubetrack/wcifhistoryapi/internal/config"
	"github.com/cubetrack/wcifhistoryapi/internal/repository"
	"github.com/cubetrack/wcifhistoryapi/internal/service"
	"github.com/cubetrack/wcifhistoryapi/internal/storage"
	"github.com/cubetrack/wcifhistoryapi/internal/wca"
	"github.com/cubetrack/wcifhistoryapi/pkg/utils/zaplogger"
)

func main() {
	// Load .env if present, then the configuration
	_ = godotenv.Load()
	cfg, err := config.Get()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Print the configuration
	fmt.Println(cfg.String())

	// Connect to Postgres
	db, err := repository.ConnectPostgres(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to Postgres: %v", err)
	}

	// Connect Redis
	redisClient, err := repository.ConnectRedis(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to Redis: %v", err)
	}

	// Connect the blob store
	blobStore, err := storage.NewMinioStore(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to blob store: %v", err)
	}

	// Init logger
	err = zaplogger.InitLogger(db)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}

	// Setup logger
	defer zaplogger.Sync()
	zaplogger.SetLogLevel(cfg.ServerLogLevel)

	// startUpMessage
	zaplogger.Info(cfg.APIName + " - " + cfg.APIVersion + " initialized")
	zaplogger.Info("Postgres initialized")
	zaplogger.Info("Redis initialized")
	zaplogger.Info("Blob store initialized")

	// Create a new Echo instance
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	// Setup middleware
	middleware.SetupLoggerMiddleware(e)

	// Setup and start cron jobs
	wcaClient := wca.New(wca.Config{
		ClientID:     cfg.WCAClientID,
		ClientSecret: cfg.WCAClientSecret,
		RedirectURI:  cfg.WCARedirectURI,
	})
	cronService := service.NewCronService(cfg, db, blobStore, wcaClient)
	cronService.Start()

	// Setup routes
	api.SetupRoutes(e, cfg, db, redisClient, blobStore, cronService)

	// Start the server
	startServer(e, cfg)
}

// startServer starts the Echo server on the specified port
func startServer(e *echo.Echo, cfg *config.Config) {
	port := cfg.ServerPort
	if port == "" {
		port = "3008"
	}
	startupMessage := fmt.Sprintf("%s %s Server [:%s] started", cfg.APIName, cfg.APIVersion, port)

	zaplogger.Info(config.SingleLine)
	zaplogger.Info(startupMessage)
	zaplogger.Info(config.SingleLine)
	e.Logger.Fatal(e.Start(":" + port))
}
