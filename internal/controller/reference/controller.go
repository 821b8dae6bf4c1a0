// Package reference provides the admin HTTP handlers managing the files
// attached to an article.
package reference

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"article-admin-backend/internal/auth"
	"article-admin-backend/internal/database"
	"article-admin-backend/internal/logging"
	"article-admin-backend/internal/model"
	"article-admin-backend/internal/repository"
	"article-admin-backend/internal/utilities"
	"article-admin-backend/internal/validation"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// DefaultDownloadTTL is how long a download link stays valid
const DefaultDownloadTTL = 30 * time.Minute

// ReferenceStorage stores reference files and signs links to them
type ReferenceStorage interface {
	UploadArticleReference(ctx context.Context, data []byte, name, contentType string) (string, error)
	DeleteFile(ctx context.Context, key string) error
	SignedDownloadURL(ctx context.Context, ref model.ArticleReference, ttl time.Duration) (string, error)
}

// ReferenceController handles article reference endpoints
type ReferenceController struct {
	DB          *database.DBinstanceStruct
	Storage     ReferenceStorage
	Voter       auth.ArticleVoter
	Validator   *validation.Validator
	Log         logging.Logger
	DownloadTTL time.Duration
}

// NewReferenceController creates a new instance of ReferenceController
func NewReferenceController(db *database.DBinstanceStruct, storage ReferenceStorage, log logging.Logger) *ReferenceController {
	if log == nil {
		log = logging.Discard()
	}
	return &ReferenceController{
		DB:          db,
		Storage:     storage,
		Validator:   validation.New(),
		Log:         log,
		DownloadTTL: DefaultDownloadTTL,
	}
}

// violationError aborts a transaction with a client error
type violationError struct {
	violations []validation.Violation
}

func (e *violationError) Error() string {
	return validation.NewProblem(e.violations).Detail
}

func parseID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil || id == 0 {
		return 0, false
	}
	return uint(id), true
}

// resolveArticle loads the article named by the :id param and checks that the
// current user may manage it. It responds and returns false on failure.
func (rc *ReferenceController) resolveArticle(c *gin.Context) (model.Article, bool) {
	user, ok := rc.actor(c)
	if !ok {
		return model.Article{}, false
	}

	id, ok := parseID(c)
	if !ok {
		c.JSON(http.StatusNotFound, utilities.ErrorResponse{Error: "Article not found"})
		return model.Article{}, false
	}

	article, err := repository.FindArticle(rc.DB.WithContext(c.Request.Context()), id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		c.JSON(http.StatusNotFound, utilities.ErrorResponse{Error: "Article not found"})
		return model.Article{}, false
	}
	if err != nil {
		rc.internalError(c, "Failed to retrieve article", err)
		return model.Article{}, false
	}

	if !rc.authorize(c, article, user) {
		return model.Article{}, false
	}
	return article, true
}

// resolveReference loads the reference named by the :id param with its article
// and checks that the current user may manage that article.
func (rc *ReferenceController) resolveReference(c *gin.Context) (model.ArticleReference, bool) {
	user, ok := rc.actor(c)
	if !ok {
		return model.ArticleReference{}, false
	}

	id, ok := parseID(c)
	if !ok {
		c.JSON(http.StatusNotFound, utilities.ErrorResponse{Error: "Article reference not found"})
		return model.ArticleReference{}, false
	}

	ref, err := repository.FindReference(rc.DB.WithContext(c.Request.Context()), id)
	if errors.Is(err, gorm.ErrRecordNotFound) || (err == nil && ref.Article == nil) {
		c.JSON(http.StatusNotFound, utilities.ErrorResponse{Error: "Article reference not found"})
		return model.ArticleReference{}, false
	}
	if err != nil {
		rc.internalError(c, "Failed to retrieve article reference", err)
		return model.ArticleReference{}, false
	}

	if !rc.authorize(c, *ref.Article, user) {
		return model.ArticleReference{}, false
	}
	return ref, true
}

func (rc *ReferenceController) actor(c *gin.Context) (model.User, bool) {
	user, err := utilities.ExtractUser(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, utilities.ErrorResponse{Error: err.Error()})
		return model.User{}, false
	}
	return user, true
}

func (rc *ReferenceController) authorize(c *gin.Context, article model.Article, user model.User) bool {
	if rc.Voter.CanManage(article, user) {
		return true
	}
	c.JSON(http.StatusForbidden, utilities.ErrorResponse{
		Error: "You are not allowed to manage references of this article",
	})
	return false
}

func (rc *ReferenceController) internalError(c *gin.Context, msg string, err error) {
	rc.Log.Error(c.Request.Context(), msg, "error", err, "path", c.Request.URL.Path)
	c.JSON(http.StatusInternalServerError, utilities.ErrorResponse{
		Error: fmt.Sprintf("%s: %s", msg, err.Error()),
	})
}

func badRequest(c *gin.Context, problem validation.Problem) {
	c.JSON(http.StatusBadRequest, problem)
}
