package handlers

import (
	"github.com/cubetrack/wcifhistoryapi/internal/service"
	"github.com/cubetrack/wcifhistoryapi/pkg/utils/response"
	"github.com/labstack/echo/v4"
)

// CompetitionHandler is the handler for competition listings
type CompetitionHandler struct {
	service *service.CompetitionService
}

// NewCompetitionHandler creates a new handler for competition listings
func NewCompetitionHandler(service *service.CompetitionService) *CompetitionHandler {
	return &CompetitionHandler{service: service}
}

// GetUpcomingCompetitions lists the competitions managed by the
// session user
func (h *CompetitionHandler) GetUpcomingCompetitions(c echo.Context) error {
	userID := c.Get("user_id").(uint)
	sessionID := c.Get("session_id").(string)

	competitions, err := h.service.UpcomingCompetitions(c.Request().Context(), sessionID, userID)
	if err != nil {
		return response.AppErrorResponse(c, err)
	}

	return response.SuccessResponse(c, competitions)
}
