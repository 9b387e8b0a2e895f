// Package api contains the API routes for the WCIF History API
package api

import (
	"fmt"

	"github.com/labstack/echo/v4"

	"github.com/cubetrack/wcifhistoryapi/internal/api/handlers"
	"github.com/cubetrack/wcifhistoryapi/internal/api/middleware"
	"github.com/cubetrack/wcifhistoryapi/internal/config"
	"github.com/cubetrack/wcifhistoryapi/internal/service"
	"github.com/cubetrack/wcifhistoryapi/internal/storage"
	"github.com/cubetrack/wcifhistoryapi/internal/wca"
	"github.com/cubetrack/wcifhistoryapi/pkg/utils/response"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// SetupRoutes configures the routes for the API
func SetupRoutes(e *echo.Echo, cfg *config.Config, db *gorm.DB, redisClient *redis.Client, blobStore storage.BlobStore, cronService *service.CronService) {
	wcaClient := wca.New(wca.Config{
		ClientID:     cfg.WCAClientID,
		ClientSecret: cfg.WCAClientSecret,
		RedirectURI:  cfg.WCARedirectURI,
	})

	sessionService := service.NewSessionService(db, wcaClient)
	authRequired := middleware.AuthMiddleware(sessionService)

	// Create a group for all API routes
	api := e.Group("/api")

	// Index route
	api.GET("/", func(c echo.Context) error {
		message := fmt.Sprintf("%s %s", cfg.APIName, cfg.APIVersion)
		return response.SuccessResponse(c, message)
	})

	// Auth routes
	authHandler := handlers.NewAuthHandler(sessionService)
	authGroup := api.Group("/auth")
	authGroup.POST("/login", authHandler.Login)
	authGroup.POST("/logout", authHandler.Logout, authRequired)

	// Competition routes (protected)
	competitionService := service.NewCompetitionService(redisClient, wcaClient, sessionService)
	competitionHandler := handlers.NewCompetitionHandler(competitionService)
	competitionGroup := api.Group("/competitions")
	competitionGroup.Use(authRequired)
	competitionGroup.GET("", competitionHandler.GetUpcomingCompetitions)

	// Snapshot routes (protected)
	snapshotService := service.NewSnapshotService(db, blobStore, wcaClient, sessionService)
	snapshotHandler := handlers.NewSnapshotHandler(snapshotService)
	competitionGroup.GET("/:competitionId/saves", snapshotHandler.ListSaves)
	competitionGroup.POST("/:competitionId/saves", snapshotHandler.CreateSave)
	saveGroup := api.Group("/saves")
	saveGroup.Use(authRequired)
	saveGroup.GET("/:saveId", snapshotHandler.GetSave)

	// Cron routes (protected)
	cronHandler := handlers.NewCronHandler(cronService)
	cronGroup := api.Group("/cron")
	cronGroup.Use(authRequired)
	cronGroup.POST("/cleanup", cronHandler.RunCleanup)
}
