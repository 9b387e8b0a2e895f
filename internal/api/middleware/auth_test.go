package middleware

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/cubetrack/wcifhistoryapi/internal/models"
	"github.com/cubetrack/wcifhistoryapi/internal/repository"
	"github.com/cubetrack/wcifhistoryapi/internal/service"
	"github.com/glebarez/sqlite"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, repository.AutoMigrate(db))
	return db
}

func newProtectedEcho(sessionService *service.SessionService) *echo.Echo {
	e := echo.New()
	g := e.Group("/protected")
	g.Use(AuthMiddleware(sessionService))
	g.GET("", func(c echo.Context) error {
		user := c.Get("user").(*models.UserModel)
		return c.String(http.StatusOK, user.Name)
	})
	return e
}

func TestAuthMiddleware(t *testing.T) {
	db := newTestDB(t)
	user := &models.UserModel{WcaUserID: 6427, Name: "Feliks Zemdegs"}
	require.NoError(t, db.Create(user).Error)

	sessionService := service.NewSessionService(db, nil)
	token, err := sessionService.GenerateSessionToken()
	require.NoError(t, err)
	session, err := sessionService.CreateSession(token, user.ID, "access-1", "refresh-1", time.Now().Add(2*time.Hour))
	require.NoError(t, err)

	e := newProtectedEcho(sessionService)

	t.Run("valid cookie resolves the user", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/protected", nil)
		req.AddCookie(&http.Cookie{Name: service.SessionCookieName, Value: token})
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "Feliks Zemdegs", rec.Body.String())

		// cookie is re-set with the session expiry
		cookies := rec.Result().Cookies()
		require.Len(t, cookies, 1)
		assert.Equal(t, token, cookies[0].Value)
		assert.WithinDuration(t, session.ExpiresAt, cookies[0].Expires, 2*time.Second)
	})

	t.Run("missing cookie is rejected", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/protected", nil)
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("unknown credential is rejected and cookie expired", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/protected", nil)
		req.AddCookie(&http.Cookie{Name: service.SessionCookieName, Value: "forged"})
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		cookies := rec.Result().Cookies()
		require.Len(t, cookies, 1)
		assert.Empty(t, cookies[0].Value)
		assert.True(t, cookies[0].Expires.Before(time.Now()))
	})
}

func TestAuthMiddlewareExpiredSession(t *testing.T) {
	db := newTestDB(t)
	user := &models.UserModel{WcaUserID: 6427, Name: "Feliks Zemdegs"}
	require.NoError(t, db.Create(user).Error)

	sessionService := service.NewSessionService(db, nil)
	repo := repository.NewSessionRepository(db)

	token := "expired-credential"
	sessionID := service.HashSessionToken(token)
	require.NoError(t, repo.InsertSession(&models.SessionModel{
		SessionID:      sessionID,
		UserID:         user.ID,
		ExpiresAt:      time.Now().Add(-time.Hour),
		WcaToken:       "stale",
		TokenExpiresAt: time.Now().Add(-time.Hour),
	}))

	e := newProtectedEcho(sessionService)

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.AddCookie(&http.Cookie{Name: service.SessionCookieName, Value: token})
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	// lazy expiry: the encountered row is deleted
	stored, err := repo.GetSessionByID(sessionID)
	require.NoError(t, err)
	assert.Nil(t, stored)
}
