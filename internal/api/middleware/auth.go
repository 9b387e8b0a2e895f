package middleware

import (
	"net/http"
	"time"

	"github.com/cubetrack/wcifhistoryapi/internal/service"
	"github.com/cubetrack/wcifhistoryapi/pkg/utils/response"
	"github.com/labstack/echo/v4"
)

// AuthMiddleware resolves the session cookie to a user before the
// request is handled. A valid session re-sets the cookie with the
// (possibly renewed) expiry and stores the user and session id in the
// request context; anything else expires the cookie and returns 401.
func AuthMiddleware(sessionService *service.SessionService) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			cookie, err := c.Cookie(service.SessionCookieName)
			if err != nil || cookie.Value == "" {
				return response.ErrorResponse(c, http.StatusUnauthorized, "AuthorizationException", "Missing session cookie")
			}

			session, user, err := sessionService.ValidateSessionToken(cookie.Value)
			if err != nil {
				return response.AppErrorResponse(c, err)
			}
			if session == nil {
				deleteSessionCookie(c)
				return response.ErrorResponse(c, http.StatusUnauthorized, "AuthorizationException", "Invalid or expired session")
			}

			setSessionCookie(c, cookie.Value, session.ExpiresAt)

			// Add session data to context for use in handlers
			c.Set("user", user)
			c.Set("user_id", user.ID)
			c.Set("session_id", session.SessionID)

			return next(c)
		}
	}
}

func setSessionCookie(c echo.Context, token string, expiresAt time.Time) {
	c.SetCookie(&http.Cookie{
		Name:     service.SessionCookieName,
		Value:    token,
		Path:     "/",
		Expires:  expiresAt,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

func deleteSessionCookie(c echo.Context) {
	c.SetCookie(&http.Cookie{
		Name:     service.SessionCookieName,
		Value:    "",
		Path:     "/",
		Expires:  time.Now().Add(-1 * time.Hour),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}
