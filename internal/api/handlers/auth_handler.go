// Package handlers contains the handlers for the API
package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/cubetrack/wcifhistoryapi/internal/apperror"
	"github.com/cubetrack/wcifhistoryapi/internal/service"
	"github.com/cubetrack/wcifhistoryapi/pkg/utils/response"
	"github.com/labstack/echo/v4"
)

// AuthHandler is the handler for login and logout
type AuthHandler struct {
	service *service.SessionService
}

// NewAuthHandler creates a new handler for auth operations
func NewAuthHandler(service *service.SessionService) *AuthHandler {
	return &AuthHandler{service: service}
}

type loginRequest struct {
	AccessCode string `json:"accessCode"`
}

type loginResponse struct {
	Success bool    `json:"success"`
	Name    string  `json:"name"`
	WcaID   *string `json:"wcaId"`
}

// Login performs the authorization-code login flow and sets the
// session cookie
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return response.ErrorResponse(c, http.StatusBadRequest, "InputException", "Invalid request body")
	}
	if req.AccessCode == "" {
		return response.ErrorResponse(c, http.StatusBadRequest, "InputException", "`accessCode` is required")
	}

	result, err := h.service.LoginWithAccessCode(c.Request().Context(), req.AccessCode)
	if err != nil {
		if errors.Is(err, apperror.ErrAuth) || errors.Is(err, apperror.ErrUpstream) {
			return response.ErrorResponse(c, http.StatusUnauthorized, "AuthenticationException", err.Error())
		}
		return response.AppErrorResponse(c, err)
	}

	// Set the session cookie: raw credential as value, expiring with
	// the session.
	c.SetCookie(&http.Cookie{
		Name:     service.SessionCookieName,
		Value:    result.Token,
		Path:     "/",
		Expires:  result.Session.ExpiresAt,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	return response.SuccessResponse(c, loginResponse{
		Success: true,
		Name:    result.User.Name,
		WcaID:   result.User.WcaID,
	})
}

// Logout invalidates the session and expires the cookie
func (h *AuthHandler) Logout(c echo.Context) error {
	sessionID, ok := c.Get("session_id").(string)
	if ok && sessionID != "" {
		if err := h.service.InvalidateSession(sessionID); err != nil {
			return response.AppErrorResponse(c, err)
		}
	}

	// Clear the session cookie
	c.SetCookie(&http.Cookie{
		Name:     service.SessionCookieName,
		Value:    "",
		Path:     "/",
		Expires:  time.Now().Add(-1 * time.Hour),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	return response.SuccessResponse(c, true)
}
