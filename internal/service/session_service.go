// Package service contains the service layer for the WCIF History API
package service

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"time"

	"github.com/cubetrack/wcifhistoryapi/internal/apperror"
	"github.com/cubetrack/wcifhistoryapi/internal/models"
	"github.com/cubetrack/wcifhistoryapi/internal/repository"
	"github.com/cubetrack/wcifhistoryapi/internal/wca"
	"gorm.io/gorm"
)

// SessionCookieName is the cookie carrying the raw session credential
const SessionCookieName = "auth-session"

const (
	sessionLength         = 7 * 24 * time.Hour
	sessionRenewThreshold = 24 * time.Hour
	sessionTokenBytes     = 18

	// Fallback lifetime for a WCA access token whose expiry the token
	// endpoint did not report.
	defaultTokenLifetime = 2 * time.Hour
)

// SessionService manages the session lifecycle: creation, validation
// with sliding renewal, invalidation, WCA refresh-token rotation and
// expiry purge.
type SessionService struct {
	repo      *repository.SessionRepository
	users     *repository.UserRepository
	wcaClient *wca.Client
	now       func() time.Time
}

// NewSessionService creates a new service for session operations
func NewSessionService(db *gorm.DB, wcaClient *wca.Client) *SessionService {
	return &SessionService{
		repo:      repository.NewSessionRepository(db),
		users:     repository.NewUserRepository(db),
		wcaClient: wcaClient,
		now:       time.Now,
	}
}

// GenerateSessionToken returns a new high-entropy session credential,
// URL-safe encoded. The raw credential only ever lives in the client's
// cookie; the database stores its hash.
func (s *SessionService) GenerateSessionToken() (string, error) {
	buf := make([]byte, sessionTokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", apperror.Storage("failed to generate session token", err)
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}

// HashSessionToken computes the session id for a credential. The hash
// is the lookup key; the credential cannot be recovered from it.
func HashSessionToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

// CreateSession inserts a session row for the given user and WCA
// tokens, expiring seven days out.
func (s *SessionService) CreateSession(token string, userID uint, wcaToken, wcaRefreshToken string, tokenExpiresAt time.Time) (*models.SessionModel, error) {
	if tokenExpiresAt.IsZero() {
		tokenExpiresAt = s.now().Add(defaultTokenLifetime)
	}

	session := &models.SessionModel{
		SessionID:       HashSessionToken(token),
		UserID:          userID,
		ExpiresAt:       s.now().Add(sessionLength),
		WcaToken:        wcaToken,
		WcaRefreshToken: wcaRefreshToken,
		TokenExpiresAt:  tokenExpiresAt,
	}

	if err := s.repo.InsertSession(session); err != nil {
		return nil, apperror.Storage("failed to insert session", err)
	}
	return session, nil
}

// ValidateSessionToken resolves a cookie credential to its session and
// user. An unknown credential returns (nil, nil, nil). An expired
// session is deleted on sight and also returns (nil, nil, nil). A
// session inside the one-day renewal window has its expiry extended to
// seven days from now before being returned.
//
// The check-then-extend sequence is not atomic across concurrent
// requests for the same session; a double renewal writes the same
// expiry twice, which is harmless.
func (s *SessionService) ValidateSessionToken(token string) (*models.SessionModel, *models.UserModel, error) {
	sessionID := HashSessionToken(token)

	session, err := s.repo.GetSessionByID(sessionID)
	if err != nil {
		return nil, nil, apperror.Storage("failed to look up session", err)
	}
	if session == nil {
		return nil, nil, nil
	}

	now := s.now()

	if !now.Before(session.ExpiresAt) {
		if err := s.repo.DeleteSession(sessionID); err != nil {
			return nil, nil, apperror.Storage("failed to delete expired session", err)
		}
		return nil, nil, nil
	}

	if !now.Before(session.ExpiresAt.Add(-sessionRenewThreshold)) {
		newExpiry := now.Add(sessionLength)
		if err := s.repo.UpdateExpiry(sessionID, newExpiry); err != nil {
			return nil, nil, apperror.Storage("failed to renew session", err)
		}
		session.ExpiresAt = newExpiry
	}

	user, err := s.users.GetUserByID(session.UserID)
	if err != nil {
		return nil, nil, apperror.Storage("failed to load session user", err)
	}

	return session, user, nil
}

// InvalidateSession deletes a session by id. Idempotent.
func (s *SessionService) InvalidateSession(sessionID string) error {
	if err := s.repo.DeleteSession(sessionID); err != nil {
		return apperror.Storage("failed to delete session", err)
	}
	return nil
}

// ResolveWCAToken returns a usable WCA access token for the session.
// While the stored token is unexpired it is returned as is; otherwise
// the refresh token is rotated against the WCA token endpoint and the
// new pair persisted. A rejected refresh propagates as an auth error:
// the user must re-authenticate.
func (s *SessionService) ResolveWCAToken(ctx context.Context, sessionID string) (string, error) {
	session, err := s.repo.GetSessionByID(sessionID)
	if err != nil {
		return "", apperror.Storage("failed to look up session", err)
	}
	if session == nil {
		return "", apperror.Auth("session not found", nil)
	}

	if s.now().Before(session.TokenExpiresAt) {
		return session.WcaToken, nil
	}

	if session.WcaRefreshToken == "" {
		return "", apperror.Auth("WCA token expired and no refresh token stored", nil)
	}

	newToken, err := s.wcaClient.RefreshToken(ctx, session.WcaRefreshToken)
	if err != nil {
		return "", err
	}

	refreshToken := newToken.RefreshToken
	if refreshToken == "" {
		refreshToken = session.WcaRefreshToken
	}
	tokenExpiry := newToken.Expiry
	if tokenExpiry.IsZero() {
		tokenExpiry = s.now().Add(defaultTokenLifetime)
	}

	if err := s.repo.UpdateTokens(sessionID, newToken.AccessToken, refreshToken, tokenExpiry); err != nil {
		return "", apperror.Storage("failed to persist refreshed tokens", err)
	}

	return newToken.AccessToken, nil
}

// PurgeExpiredSessions bulk-deletes all expired sessions. Invoked by
// the weekly cleanup job.
func (s *SessionService) PurgeExpiredSessions() (int64, error) {
	deleted, err := s.repo.DeleteExpiredSessions(s.now())
	if err != nil {
		return 0, apperror.Storage("failed to purge expired sessions", err)
	}
	return deleted, nil
}

// LoginResult is the outcome of a successful login
type LoginResult struct {
	Token   string
	Session *models.SessionModel
	User    *models.UserModel
}

// LoginWithAccessCode performs the authorization-code login flow:
// exchange the code for WCA tokens, fetch the user's identity, create
// the user on first login, then create a session.
func (s *SessionService) LoginWithAccessCode(ctx context.Context, accessCode string) (*LoginResult, error) {
	oauthToken, err := s.wcaClient.ExchangeCode(ctx, accessCode)
	if err != nil {
		return nil, err
	}

	me, err := s.wcaClient.GetMe(ctx, oauthToken.AccessToken)
	if err != nil {
		return nil, err
	}

	user, err := s.findOrCreateUser(me)
	if err != nil {
		return nil, err
	}

	token, err := s.GenerateSessionToken()
	if err != nil {
		return nil, err
	}

	session, err := s.CreateSession(token, user.ID, oauthToken.AccessToken, oauthToken.RefreshToken, oauthToken.Expiry)
	if err != nil {
		return nil, err
	}

	return &LoginResult{Token: token, Session: session, User: user}, nil
}

func (s *SessionService) findOrCreateUser(me *wca.Me) (*models.UserModel, error) {
	if me.WcaID != "" {
		user, err := s.users.GetUserByWcaID(me.WcaID)
		if err != nil {
			return nil, apperror.Storage("failed to look up user", err)
		}
		if user != nil {
			return user, nil
		}
	}

	user := &models.UserModel{
		WcaUserID: me.ID,
		Name:      me.Name,
	}
	if me.WcaID != "" {
		wcaID := me.WcaID
		user.WcaID = &wcaID
	}

	if err := s.users.CreateUser(user); err != nil {
		return nil, apperror.Storage("failed to create user", err)
	}
	return user, nil
}
