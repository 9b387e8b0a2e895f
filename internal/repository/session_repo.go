package repository

import (
	"errors"
	"time"

	"github.com/cubetrack/wcifhistoryapi/internal/models"
	"gorm.io/gorm"
)

type SessionRepository struct {
	DB *gorm.DB
}

// NewSessionRepository creates a new repository for sessions
func NewSessionRepository(db *gorm.DB) *SessionRepository {
	return &SessionRepository{DB: db}
}

// InsertSession inserts a new session row
func (r *SessionRepository) InsertSession(session *models.SessionModel) error {
	return r.DB.Create(session).Error
}

// GetSessionByID gets a session by its hashed id. Returns (nil, nil)
// when no such session exists.
func (r *SessionRepository) GetSessionByID(sessionID string) (*models.SessionModel, error) {
	var session models.SessionModel
	err := r.DB.Where("session_id = ?", sessionID).First(&session).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &session, nil
}

// UpdateExpiry extends the session expiry in place
func (r *SessionRepository) UpdateExpiry(sessionID string, expiresAt time.Time) error {
	return r.DB.Model(&models.SessionModel{}).
		Where("session_id = ?", sessionID).
		Update("expires_at", expiresAt).Error
}

// UpdateTokens replaces the stored WCA tokens and their expiry after a
// refresh-token rotation
func (r *SessionRepository) UpdateTokens(sessionID, wcaToken, wcaRefreshToken string, tokenExpiresAt time.Time) error {
	return r.DB.Model(&models.SessionModel{}).
		Where("session_id = ?", sessionID).
		Updates(map[string]interface{}{
			"wca_token":         wcaToken,
			"wca_refresh_token": wcaRefreshToken,
			"token_expires_at":  tokenExpiresAt,
		}).Error
}

// DeleteSession deletes a session by id. Deleting an absent session is
// not an error.
func (r *SessionRepository) DeleteSession(sessionID string) error {
	return r.DB.Where("session_id = ?", sessionID).Delete(&models.SessionModel{}).Error
}

// DeleteExpiredSessions bulk-deletes all sessions expired as of now
func (r *SessionRepository) DeleteExpiredSessions(now time.Time) (int64, error) {
	result := r.DB.Where("expires_at < ?", now).Delete(&models.SessionModel{})
	return result.RowsAffected, result.Error
}
