package server

import (
	"context"
	"encoding/base64"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"article-admin-backend/internal/auth"
	"article-admin-backend/internal/config"
	"article-admin-backend/internal/database"
	"article-admin-backend/internal/storage"
	"article-admin-backend/internal/testutil"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testDB *database.DBinstanceStruct

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)

	var err error
	var teardown func(context.Context) error
	teardown, testDB, err = database.GetTestDB()
	if err != nil {
		os.Exit(1)
	}
	code := m.Run()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if teardown != nil {
		_ = teardown(ctx)
	}
	os.Exit(code)
}

func testConfig() *config.Config {
	return &config.Config{
		Port:               8080,
		AllowOrigins:       []string{"http://localhost:3000"},
		SecretKey:          "server-test-secret",
		TokenDuration:      time.Hour,
		RateLimitPerSecond: 1000,
		Storage:            config.StorageConfig{Driver: config.StorageMemory},
	}
}

func newTestServer(t *testing.T) (*MyServer, *storage.MemoryClient, *gin.Engine) {
	t.Helper()
	store := storage.NewMemoryClient()
	s, err := newServer(testConfig(), testDB, store, nil)
	require.NoError(t, err)
	return s, store, s.RegisterRoutes().(*gin.Engine)
}

func TestHealth(t *testing.T) {
	_, _, r := newTestServer(t)

	rec, resp := testutil.MakeJSONRequest(nil, "", r, "/health", http.MethodGet)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "up", resp["status"])
}

func TestHTTPServer(t *testing.T) {
	s, _, _ := newTestServer(t)

	srv := s.HTTPServer()

	assert.Equal(t, ":8080", srv.Addr)
	assert.Equal(t, 10*time.Second, srv.ReadTimeout)
	assert.Equal(t, 30*time.Second, srv.WriteTimeout)
	assert.Equal(t, time.Minute, srv.IdleTimeout)
}

func TestAdminRoutesRequireToken(t *testing.T) {
	_, _, r := newTestServer(t)

	rec, _ := testutil.MakeJSONRequest(nil, "", r, fmt.Sprintf("/admin/article/%d/references", database.TestArticle1.ID), http.MethodGet)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCreateUserRequiresAdmin(t *testing.T) {
	_, _, r := newTestServer(t)
	token, err := auth.GetAccessToken(t, testDB, database.TestAuthor1.Username, database.TestSeedPassword)
	require.NoError(t, err)

	rec, _ := testutil.MakeJSONRequest(map[string]string{
		"username": "sneaky", "password": "password123", "role": "admin",
	}, token, r, "/admin/users", http.MethodPost)

	assert.Equal(t, http.StatusForbidden, rec.Code)
}

// TestReferenceLifecycle drives the reference endpoints through the full
// middleware chain and checks the storage metrics they record.
func TestReferenceLifecycle(t *testing.T) {
	_, store, r := newTestServer(t)
	token, err := auth.GetAccessToken(t, testDB, database.TestAuthor1.Username, database.TestSeedPassword)
	require.NoError(t, err)

	slug := fmt.Sprintf("lifecycle-%d", time.Now().UnixNano())
	rec, resp := testutil.MakeJSONRequest(map[string]string{"title": "Lifecycle", "slug": slug}, token, r, "/admin/articles", http.MethodPost)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	articleID := uint(resp["id"].(float64))
	refsURL := fmt.Sprintf("/admin/article/%d/references", articleID)

	rec, resp = testutil.MakeJSONRequest(map[string]string{
		"filename": "notes.txt",
		"data":     base64.StdEncoding.EncodeToString([]byte("plain text notes")),
	}, token, r, refsURL, http.MethodPost)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	refID := uint(resp["id"].(float64))
	assert.Equal(t, "text/plain", resp["mimeType"])
	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))

	rec, resp = testutil.MakeJSONRequest(nil, token, r, fmt.Sprintf("/admin/articles/%d", articleID), http.MethodGet)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, resp["references"], 1)

	rec, _ = testutil.MakeJSONRequest(nil, token, r, fmt.Sprintf("/admin/article/references/%d/download", refID), http.MethodGet)
	require.Equal(t, http.StatusFound, rec.Code)
	assert.True(t, strings.HasPrefix(rec.Header().Get("Location"), "memory:///article_reference/"))

	rec, _ = testutil.MakeJSONRequest(nil, token, r, fmt.Sprintf("/admin/article/references/%d", refID), http.MethodDelete)
	require.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, 0, store.Len())

	metrics := httptest.NewRecorder()
	r.ServeHTTP(metrics, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, metrics.Code)
	assert.Contains(t, metrics.Body.String(), "reference_storage_uploaded_bytes_total 16")
	assert.Contains(t, metrics.Body.String(), `reference_storage_operation_duration_seconds_count{operation="delete"} 1`)
}

func TestLogoutRevokesToken(t *testing.T) {
	_, _, r := newTestServer(t)
	token, err := auth.GetAccessToken(t, testDB, database.TestAuthor2.Username, database.TestSeedPassword)
	require.NoError(t, err)

	rec, _ := testutil.MakeJSONRequest(nil, token, r, "/auth/logout", http.MethodPost)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec, resp := testutil.MakeJSONRequest(nil, token, r, fmt.Sprintf("/admin/article/%d/references", database.TestArticle2.ID), http.MethodGet)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Token has been revoked", resp["error"])
}

func TestStartBackground(t *testing.T) {
	s, _, _ := newTestServer(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	s.cfg.OrphanSweepCron = "*/5 * * * *"
	assert.NoError(t, s.StartBackground(ctx))

	s.cfg.OrphanSweepCron = "not a cron"
	assert.Error(t, s.StartBackground(ctx))
}
