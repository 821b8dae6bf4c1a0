// Package utilities contain utility code that use across the package
package utilities

import (
	"article-admin-backend/internal/model"
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// ErrorResponse type for swagger docs
type ErrorResponse struct {
	Error string `json:"error"`
}

// MessageResponse type for swagger docs
type MessageResponse struct {
	Message string `json:"message"`
}

// ErrUserNotProvided is returned by ExtractUser when no authenticated user is bound to the context
var ErrUserNotProvided = errors.New("User information not provided")

// ContextGetter is the part of gin.Context ExtractUser needs
type ContextGetter interface {
	Get(key string) (value any, exists bool)
}

// ExtractUser extracts the user model set by the RequireAuth middleware.
func ExtractUser(c ContextGetter) (model.User, error) {
	u, _ := c.Get("user")
	if u == nil {
		return model.User{}, ErrUserNotProvided
	}

	user, ok := u.(model.User)
	if !ok {
		return model.User{}, errors.New("Failed to assert type")
	}
	return user, nil
}

// HashPassword hashes password with bcrypt
func HashPassword(password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

// VerifyPassword reports whether password matches the bcrypt hash
func VerifyPassword(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// CreateUser creates a user with the given role and plain password
func CreateUser(db *gorm.DB, username, password, role string) (model.User, error) {
	hashedPassword, err := HashPassword(password)
	if err != nil {
		return model.User{}, fmt.Errorf("failed to hash password: %w", err)
	}

	user := model.User{
		Username: username,
		Password: hashedPassword,
		Role:     role,
	}
	if err := db.Create(&user).Error; err != nil {
		return model.User{}, fmt.Errorf("failed to create %s: %w", role, err)
	}
	return user, nil
}
