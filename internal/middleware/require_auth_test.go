package middleware

import (
	"article-admin-backend/internal/auth"
	"article-admin-backend/internal/database"
	"article-admin-backend/internal/testutil"
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func protectedEngine() *gin.Engine {
	r := gin.New()
	r.GET("/protected", RequireAuth(testDB), checkUserHandler)
	return r
}

func checkUserHandler(c *gin.Context) {
	u, exist := c.Get("user")
	if !exist {
		c.JSON(http.StatusInternalServerError, gin.H{"ok": false})
		return
	}
	_, hasClaims := c.Get("claims")
	c.JSON(http.StatusOK, gin.H{"ok": true, "user": u, "claims": hasClaims})
}

func TestRequireAuth_Success(t *testing.T) {
	token, err := auth.GetAccessToken(t, testDB, database.TestAuthor1.Username, database.TestSeedPassword)
	require.NoError(t, err)

	rec, body := testutil.MakeJSONRequest(nil, token, protectedEngine(), "/protected", http.MethodGet)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, true, body["ok"])
	assert.Equal(t, true, body["claims"])
	user, ok := body["user"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, database.TestAuthor1.ID.String(), user["id"])
}

func TestRequireAuth_NoHeader(t *testing.T) {
	rec, body := testutil.MakeJSONRequest(nil, "", protectedEngine(), "/protected", http.MethodGet)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Invalid authorization header", body["error"])
}

func TestRequireAuth_ExpiredToken(t *testing.T) {
	token, _, err := auth.GenerateTokenWithDuration(database.TestAuthor1.ID, -1*time.Minute, auth.JwtIssuer)
	require.NoError(t, err)

	rec, body := testutil.MakeJSONRequest(nil, token, protectedEngine(), "/protected", http.MethodGet)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Access token expired", body["error"])
}

func TestRequireAuth_InvalidSignature(t *testing.T) {
	validToken, _, err := auth.GenerateTokenWithDuration(database.TestAuthor1.ID, time.Hour, auth.JwtIssuer)
	require.NoError(t, err)
	corrupted := validToken[:len(validToken)-2] + "xx"

	rec, body := testutil.MakeJSONRequest(nil, corrupted, protectedEngine(), "/protected", http.MethodGet)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, body["error"], "Failed to validate token")
}

func TestRequireAuth_WrongIssuer(t *testing.T) {
	token, _, err := auth.GenerateTokenWithDuration(database.TestAuthor1.ID, time.Hour, "SomeoneElse")
	require.NoError(t, err)

	rec, body := testutil.MakeJSONRequest(nil, token, protectedEngine(), "/protected", http.MethodGet)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Invalid token issuer", body["error"])
}

func TestRequireAuth_UserNotExist(t *testing.T) {
	token, _, err := auth.GenerateTokenWithDuration(uuid.New(), time.Hour, auth.JwtIssuer)
	require.NoError(t, err)

	rec, body := testutil.MakeJSONRequest(nil, token, protectedEngine(), "/protected", http.MethodGet)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "User not exist", body["error"])
}

func TestRequireAuth_MalformedSubject(t *testing.T) {
	claims := jwt.RegisteredClaims{
		Issuer:    auth.JwtIssuer,
		Subject:   "not-a-uuid",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("middleware-test-secret"))
	require.NoError(t, err)

	rec, _ := testutil.MakeJSONRequest(nil, token, protectedEngine(), "/protected", http.MethodGet)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}
