package models

import (
	"time"
)

type User struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	Username       string    `gorm:"uniqueIndex;not null" json:"username"`
	Email          string    `gorm:"uniqueIndex;not null" json:"email"`
	PasswordHash   string    `gorm:"not null" json:"-"` // bcrypt, never serialized
	ProfilePicture *string   `json:"profile_picture,omitempty"`
	RegisteredAt   time.Time `json:"register_date"`
	LastLoginAt    time.Time `json:"last_login"`
}

// PendingRegistration is a signup waiting for its e-mail code. One row per
// email; a new request for the same email replaces the old row.
type PendingRegistration struct {
	Email        string    `gorm:"primaryKey" json:"email"`
	Username     string    `gorm:"not null" json:"username"`
	PasswordHash string    `gorm:"not null" json:"-"`
	Code         string    `gorm:"not null" json:"-"`
	ExpiresAt    time.Time `gorm:"not null" json:"expires_at"`
}
