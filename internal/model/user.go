// Package model contain gorm model for recording data to database
package model

import (
	"time"

	"github.com/google/uuid"
)

const (
	// RoleAdmin can manage every article and its references
	RoleAdmin = "admin"
	// RoleAuthor can only manage articles they wrote
	RoleAuthor = "author"
)

// User is an account that can log in to the admin backend.
type User struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey;default:uuid_generate_v4()" json:"id"`
	Username  string    `gorm:"uniqueIndex;not null" json:"username"`
	Password  string    `json:"-"`
	Role      string    `gorm:"not null;check:role IN ('admin', 'author')" json:"role"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// IsAdmin reports whether user has admin role
func (u User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// LoginResponse is returned by the local login endpoint
type LoginResponse struct {
	User        User   `json:"user"`
	AccessToken string `json:"access_token"`
}
