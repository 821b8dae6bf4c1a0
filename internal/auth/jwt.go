// Package auth implements local login, access tokens and the capability checks
// that guard article references.
package auth

import (
	"fmt"
	"os"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"

	// Load env file into environments.
	_ "github.com/joho/godotenv/autoload"
)

// JwtIssuer is the issuer of every access token created by this service
const JwtIssuer = "ArticleAdmin"

var (
	secretKey     = []byte(os.Getenv("SECRET_KEY"))
	tokenDuration = time.Hour
)

// Configure sets the signing key and the lifetime of new access tokens
func Configure(key string, duration time.Duration) {
	secretKey = []byte(key)
	if duration > 0 {
		tokenDuration = duration
	}
}

// GenerateStandardToken creates an access token for user with the configured lifetime
func GenerateStandardToken(userID uuid.UUID) (string, time.Time, error) {
	return GenerateTokenWithDuration(userID, tokenDuration, JwtIssuer)
}

// GenerateTokenWithDuration creates a signed HS256 access token
func GenerateTokenWithDuration(userID uuid.UUID, duration time.Duration, issuer string) (string, time.Time, error) {
	now := time.Now()
	exp := now.Add(duration)

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		ID:        uuid.NewString(),
		Issuer:    issuer,
		Subject:   userID.String(),
		ExpiresAt: jwt.NewNumericDate(exp),
		IssuedAt:  jwt.NewNumericDate(now),
	})

	signedToken, err := token.SignedString(secretKey)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("Failed to sign token: %w", err)
	}

	return signedToken, exp, nil
}

// ValidatedToken parses and verifies encodeToken
func ValidatedToken(encodeToken string) (*jwt.Token, error) {
	return jwt.ParseWithClaims(encodeToken, &jwt.RegisteredClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, isvalid := token.Method.(*jwt.SigningMethodHMAC); !isvalid {
			return nil, fmt.Errorf("Invalid token")
		}
		return secretKey, nil
	})
}
