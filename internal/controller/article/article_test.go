package article

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"testing"
	"time"

	"article-admin-backend/internal/auth"
	"article-admin-backend/internal/database"
	"article-admin-backend/internal/middleware"
	"article-admin-backend/internal/model"
	"article-admin-backend/internal/testutil"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testDB *database.DBinstanceStruct

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	auth.Configure("article-test-secret", time.Hour)

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

func setupRouter() *gin.Engine {
	ac := NewArticleController(testDB)
	r := gin.Default()
	r.POST("/admin/articles", middleware.RequireAuth(testDB), ac.CreateArticle)
	r.GET("/admin/articles/:id", middleware.RequireAuth(testDB), ac.GetArticle)
	return r
}

func login(t *testing.T, user model.User) string {
	t.Helper()
	token, err := auth.GetAccessToken(t, testDB, user.Username, database.TestSeedPassword)
	require.NoError(t, err)
	return token
}

func TestCreateArticle_Success(t *testing.T) {
	token := login(t, database.TestAuthor2)
	slug := fmt.Sprintf("new-article-%d", time.Now().UnixNano())

	rec, resp := testutil.MakeJSONRequest(model.EditableArticleInfo{
		Title:   "New article",
		Slug:    slug,
		Content: "Body",
	}, token, setupRouter(), "/admin/articles", http.MethodPost)

	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Equal(t, slug, resp["slug"])
	assert.Equal(t, database.TestAuthor2.ID.String(), resp["author_id"])
	assert.Equal(t, []interface{}{}, resp["references"])

	var stored model.Article
	require.NoError(t, testDB.First(&stored, "slug = ?", slug).Error)
	assert.Equal(t, database.TestAuthor2.ID, stored.AuthorID)
}

func TestCreateArticle_InvalidBody(t *testing.T) {
	token := login(t, database.TestAuthor1)

	tests := []struct {
		name string
		body interface{}
	}{
		{"missing slug", map[string]string{"title": "No slug"}},
		{"missing title", map[string]string{"slug": "no-title"}},
		{"empty body", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, _ := testutil.MakeJSONRequest(tt.body, token, setupRouter(), "/admin/articles", http.MethodPost)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
}

func TestCreateArticle_DuplicateSlug(t *testing.T) {
	token := login(t, database.TestAuthor1)

	rec, resp := testutil.MakeJSONRequest(model.EditableArticleInfo{
		Title: "Copy",
		Slug:  database.TestArticle1.Slug,
	}, token, setupRouter(), "/admin/articles", http.MethodPost)

	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "Slug already exist", resp["error"])
}

func TestGetArticle(t *testing.T) {
	tests := []struct {
		name   string
		user   model.User
		url    string
		status int
	}{
		{"owner", database.TestAuthor1, fmt.Sprintf("/admin/articles/%d", database.TestArticle1.ID), http.StatusOK},
		{"admin", database.TestAdminUser, fmt.Sprintf("/admin/articles/%d", database.TestArticle1.ID), http.StatusOK},
		{"other author", database.TestAuthor2, fmt.Sprintf("/admin/articles/%d", database.TestArticle1.ID), http.StatusForbidden},
		{"not found", database.TestAuthor1, "/admin/articles/999999", http.StatusNotFound},
		{"invalid id", database.TestAuthor1, "/admin/articles/abc", http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, resp := testutil.MakeJSONRequest(nil, login(t, tt.user), setupRouter(), tt.url, http.MethodGet)

			assert.Equal(t, tt.status, rec.Code)
			if tt.status == http.StatusOK {
				assert.Equal(t, database.TestArticle1.Slug, resp["slug"])
				assert.NotNil(t, resp["references"])
			}
		})
	}
}
