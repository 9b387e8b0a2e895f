// Package models contains the database models for the WCIF History API
package models

import (
	"time"
)

const UsersTableName = "users"

// UserModel is an identity record created on first successful WCA login.
// Never deleted by this application.
type UserModel struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	WcaUserID int64     `gorm:"not null" json:"wca_user_id"`
	WcaID     *string   `gorm:"size:10;uniqueIndex" json:"wca_id"`
	Name      string    `gorm:"not null" json:"name"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"-"`
}

func (UserModel) TableName() string {
	return UsersTableName
}
