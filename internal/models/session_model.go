package models

import (
	"time"
)

const SessionsTableName = "sessions"

// SessionModel maps a hashed session credential to a user and the WCA
// OAuth tokens obtained at login. The session_id column holds the
// sha256 hash of the cookie credential, never the credential itself, so
// a database read cannot yield a usable credential.
//
// ExpiresAt is the session expiry (sliding, renewed near the end of its
// window). TokenExpiresAt is the upstream access-token expiry, a
// distinct timestamp consulted by the refresh-rotation path.
type SessionModel struct {
	SessionID       string    `gorm:"primaryKey;size:64" json:"session_id"`
	UserID          uint      `gorm:"not null;index" json:"user_id"`
	User            UserModel `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
	ExpiresAt       time.Time `gorm:"not null;index" json:"expires_at"`
	WcaToken        string    `gorm:"not null" json:"-"`
	WcaRefreshToken string    `json:"-"`
	TokenExpiresAt  time.Time `gorm:"not null" json:"-"`
	CreatedAt       time.Time `gorm:"autoCreateTime" json:"-"`
	UpdatedAt       time.Time `gorm:"autoUpdateTime" json:"-"`
}

func (SessionModel) TableName() string {
	return SessionsTableName
}
