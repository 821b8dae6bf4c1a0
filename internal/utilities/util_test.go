package utilities

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"article-admin-backend/internal/model"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestExtractUser(t *testing.T) {
	c, _ := gin.CreateTestContext(httptest.NewRecorder())

	_, err := ExtractUser(c)
	assert.ErrorIs(t, err, ErrUserNotProvided)

	c.Set("user", "not a user")
	_, err = ExtractUser(c)
	assert.EqualError(t, err, "Failed to assert type")

	c.Set("user", model.User{Username: "alice"})
	user, err := ExtractUser(c)
	require.NoError(t, err)
	assert.Equal(t, "alice", user.Username)
}

func TestPassword(t *testing.T) {
	hash, err := HashPassword("SeedPass123!")
	require.NoError(t, err)
	assert.NotEqual(t, "SeedPass123!", hash)
	assert.True(t, VerifyPassword("SeedPass123!", hash))
	assert.False(t, VerifyPassword("wrong", hash))
}

func TestExtractBearerToken(t *testing.T) {
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request, _ = http.NewRequest(http.MethodGet, "/", nil)

	_, err := ExtractBearerToken(c)
	assert.ErrorIs(t, err, ErrInvalidAuthHeader)

	c.Request.Header.Set("Authorization", "Basic abcdefgh")
	_, err = ExtractBearerToken(c)
	assert.ErrorIs(t, err, ErrInvalidAuthHeader)

	c.Request.Header.Set("Authorization", "Bearer abc.def")
	token, err := ExtractBearerToken(c)
	require.NoError(t, err)
	assert.Equal(t, "abc.def", token)
}

func TestContains(t *testing.T) {
	assert.True(t, Contains([]string{"admin", "author"}, "author"))
	assert.False(t, Contains([]string{"admin"}, "author"))
}
