package auth

import (
	"article-admin-backend/internal/database"
	"article-admin-backend/internal/utilities"
	"fmt"
	"net/http"
	"testing"
)

// GetAccessToken logs in through LocalLoginHandler and returns the access token.
// It is meant for tests of packages that sit behind RequireAuth.
func GetAccessToken(
	t *testing.T,
	db *database.DBinstanceStruct,
	username string,
	password string,
) (string, error) {
	t.Helper()
	handler := NewLocalAuthHandler(db, nil)
	rec, resp, err := utilities.SimulateAPICall(handler.LocalLoginHandler, "/auth/login", http.MethodPost, map[string]string{
		"username": username,
		"password": password,
	})
	if err != nil {
		return "", err
	}
	if rec.Code != http.StatusOK {
		return "", fmt.Errorf("login failed: status %d, body: %s", rec.Code, rec.Body.String())
	}
	token, ok := resp["access_token"].(string)
	if !ok {
		return "", fmt.Errorf("login failed: no access_token in response: %s", rec.Body.String())
	}
	return token, nil
}
