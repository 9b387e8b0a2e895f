package handlers

import (
	"github.com/cubetrack/wcifhistoryapi/internal/service"
	"github.com/cubetrack/wcifhistoryapi/pkg/utils/response"
	"github.com/labstack/echo/v4"
)

// CronHandler exposes the maintenance jobs for manual triggering
type CronHandler struct {
	CronService *service.CronService
}

// NewCronHandler creates a new handler for cron operations
func NewCronHandler(cronService *service.CronService) *CronHandler {
	return &CronHandler{
		CronService: cronService,
	}
}

// RunCleanup runs the weekly cleanup job immediately
func (h *CronHandler) RunCleanup(c echo.Context) error {
	h.CronService.WeeklyCleanupJob()
	return response.SuccessResponse(c, "Cleanup completed")
}
