package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/cubetrack/wcifhistoryapi/internal/models"
	"github.com/cubetrack/wcifhistoryapi/internal/repository"
	"github.com/cubetrack/wcifhistoryapi/internal/service"
	"github.com/cubetrack/wcifhistoryapi/internal/wca"
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

// newWcaEndpoint serves the token exchange and /me lookup the login
// flow performs.
func newWcaEndpoint(t *testing.T) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/oauth/token":
			require.NoError(t, r.ParseForm())
			if r.Form.Get("code") != "code-1" {
				w.WriteHeader(http.StatusUnauthorized)
				fmt.Fprint(w, `{"error": "invalid_grant"}`)
				return
			}
			w.Header().Set("Content-Type", "application/json")
			fmt.Fprint(w, `{"access_token": "access-1", "refresh_token": "refresh-1", "token_type": "Bearer", "expires_in": 7200}`)
		case "/api/v0/me":
			assert.Equal(t, "Bearer access-1", r.Header.Get("Authorization"))
			w.Header().Set("Content-Type", "application/json")
			fmt.Fprint(w, `{"me": {"id": 6427, "name": "Feliks Zemdegs", "wca_id": "2009ZEMD01"}}`)
		default:
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
			w.WriteHeader(http.StatusNotFound)
		}
	}))
}

func newLoginHandler(t *testing.T, db *gorm.DB, server *httptest.Server) *AuthHandler {
	t.Helper()
	wcaClient := wca.New(wca.Config{
		ClientID:     "client-id",
		ClientSecret: "client-secret",
		RedirectURI:  "http://localhost/callback",
		WebBaseURL:   server.URL,
		APIBaseURL:   server.URL + "/api/v0",
		HTTPClient:   server.Client(),
	})
	return NewAuthHandler(service.NewSessionService(db, wcaClient))
}

func TestLogin(t *testing.T) {
	db := newTestDB(t)
	server := newWcaEndpoint(t)
	defer server.Close()
	h := newLoginHandler(t, db, server)

	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/api/auth/login", strings.NewReader(`{"accessCode": "code-1"}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()

	require.NoError(t, h.Login(e.NewContext(req, rec)))
	assert.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Status string `json:"status"`
		Data   struct {
			Success bool    `json:"success"`
			Name    string  `json:"name"`
			WcaID   *string `json:"wcaId"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "success", body.Status)
	assert.True(t, body.Data.Success)
	assert.Equal(t, "Feliks Zemdegs", body.Data.Name)
	require.NotNil(t, body.Data.WcaID)
	assert.Equal(t, "2009ZEMD01", *body.Data.WcaID)

	// cookie carries the raw credential, db carries its hash
	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	cookie := cookies[0]
	assert.Equal(t, service.SessionCookieName, cookie.Name)
	assert.NotEmpty(t, cookie.Value)
	assert.True(t, cookie.HttpOnly)

	session, err := repository.NewSessionRepository(db).GetSessionByID(service.HashSessionToken(cookie.Value))
	require.NoError(t, err)
	require.NotNil(t, session)
	assert.Equal(t, "access-1", session.WcaToken)
	assert.Equal(t, "refresh-1", session.WcaRefreshToken)

	var user models.UserModel
	require.NoError(t, db.First(&user, session.UserID).Error)
	assert.Equal(t, int64(6427), user.WcaUserID)
}

func TestLoginReusesExistingUser(t *testing.T) {
	db := newTestDB(t)
	server := newWcaEndpoint(t)
	defer server.Close()
	h := newLoginHandler(t, db, server)

	e := echo.New()
	for i := 0; i < 2; i++ {
		req := httptest.NewRequest(http.MethodPost, "/api/auth/login", strings.NewReader(`{"accessCode": "code-1"}`))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
		rec := httptest.NewRecorder()
		require.NoError(t, h.Login(e.NewContext(req, rec)))
		require.Equal(t, http.StatusOK, rec.Code)
	}

	var userCount int64
	require.NoError(t, db.Model(&models.UserModel{}).Count(&userCount).Error)
	assert.Equal(t, int64(1), userCount)

	var sessionCount int64
	require.NoError(t, db.Model(&models.SessionModel{}).Count(&sessionCount).Error)
	assert.Equal(t, int64(2), sessionCount)
}

func TestLoginMissingAccessCode(t *testing.T) {
	db := newTestDB(t)
	h := NewAuthHandler(service.NewSessionService(db, nil))

	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/api/auth/login", strings.NewReader(`{}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()

	require.NoError(t, h.Login(e.NewContext(req, rec)))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	var body struct {
		Status    string `json:"status"`
		ErrorType string `json:"error_type"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "error", body.Status)
	assert.Equal(t, "InputException", body.ErrorType)
}

func TestLoginRejectedCode(t *testing.T) {
	db := newTestDB(t)
	server := newWcaEndpoint(t)
	defer server.Close()
	h := newLoginHandler(t, db, server)

	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/api/auth/login", strings.NewReader(`{"accessCode": "bogus"}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()

	require.NoError(t, h.Login(e.NewContext(req, rec)))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	var sessionCount int64
	require.NoError(t, db.Model(&models.SessionModel{}).Count(&sessionCount).Error)
	assert.Equal(t, int64(0), sessionCount)
}

func TestLogout(t *testing.T) {
	db := newTestDB(t)
	svc := service.NewSessionService(db, nil)
	h := NewAuthHandler(svc)

	user := &models.UserModel{WcaUserID: 6427, Name: "Feliks Zemdegs"}
	require.NoError(t, db.Create(user).Error)
	token, err := svc.GenerateSessionToken()
	require.NoError(t, err)
	_, err = svc.CreateSession(token, user.ID, "access-1", "refresh-1", time.Now().Add(2*time.Hour))
	require.NoError(t, err)
	sessionID := service.HashSessionToken(token)

	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/api/auth/logout", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.Set("session_id", sessionID)

	require.NoError(t, h.Logout(c))
	assert.Equal(t, http.StatusOK, rec.Code)

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Empty(t, cookies[0].Value)
	assert.True(t, cookies[0].Expires.Before(time.Now()))

	stored, err := repository.NewSessionRepository(db).GetSessionByID(sessionID)
	require.NoError(t, err)
	assert.Nil(t, stored)
}
