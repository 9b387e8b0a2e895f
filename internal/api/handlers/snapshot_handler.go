package handlers

import (
	"net/http"
	"strconv"

	"github.com/cubetrack/wcifhistoryapi/internal/service"
	"github.com/cubetrack/wcifhistoryapi/pkg/utils/response"
	"github.com/labstack/echo/v4"
)

// SnapshotHandler is the handler for the WCIF snapshot API
type SnapshotHandler struct {
	service *service.SnapshotService
}

// NewSnapshotHandler creates a new handler for snapshot operations
func NewSnapshotHandler(service *service.SnapshotService) *SnapshotHandler {
	return &SnapshotHandler{service: service}
}

type createSaveRequest struct {
	Description string `json:"description"`
}

// CreateSave fetches the competition's current WCIF and stores a
// snapshot of it
func (h *SnapshotHandler) CreateSave(c echo.Context) error {
	competitionID := c.Param("competitionId")
	if competitionID == "" {
		return response.ErrorResponse(c, http.StatusBadRequest, "InputException", "`competitionId` is required")
	}

	var req createSaveRequest
	if err := c.Bind(&req); err != nil {
		return response.ErrorResponse(c, http.StatusBadRequest, "InputException", "Invalid request body")
	}

	userID := c.Get("user_id").(uint)
	sessionID := c.Get("session_id").(string)

	snapshot, err := h.service.SaveSnapshot(c.Request().Context(), sessionID, userID, competitionID, req.Description)
	if err != nil {
		return response.AppErrorResponse(c, err)
	}

	return response.SuccessResponse(c, snapshot)
}

// ListSaves lists the stored snapshots for one competition
func (h *SnapshotHandler) ListSaves(c echo.Context) error {
	competitionID := c.Param("competitionId")
	if competitionID == "" {
		return response.ErrorResponse(c, http.StatusBadRequest, "InputException", "`competitionId` is required")
	}

	saves, err := h.service.ListSaves(competitionID)
	if err != nil {
		return response.AppErrorResponse(c, err)
	}

	return response.SuccessResponse(c, saves)
}

// GetSave returns one stored snapshot's metadata and payload
func (h *SnapshotHandler) GetSave(c echo.Context) error {
	saveID, err := strconv.ParseUint(c.Param("saveId"), 10, 32)
	if err != nil {
		return response.ErrorResponse(c, http.StatusBadRequest, "InputException", "Invalid save id")
	}

	save, err := h.service.GetSave(c.Request().Context(), uint(saveID))
	if err != nil {
		return response.AppErrorResponse(c, err)
	}

	return response.SuccessResponse(c, save)
}
