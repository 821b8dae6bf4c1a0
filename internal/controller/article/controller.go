// Package article provides the admin HTTP handlers for articles
package article

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"article-admin-backend/internal/auth"
	"article-admin-backend/internal/database"
	"article-admin-backend/internal/model"
	"article-admin-backend/internal/repository"
	"article-admin-backend/internal/utilities"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

// ArticleController handles article endpoints
type ArticleController struct {
	DB    *database.DBinstanceStruct
	Voter auth.ArticleVoter
}

// NewArticleController creates a new instance of ArticleController
func NewArticleController(db *database.DBinstanceStruct) *ArticleController {
	return &ArticleController{DB: db}
}

// CreateArticle creates an article written by the current user
// @Summary Create an article
// @Tags Article
// @Accept json
// @Produce json
// @Param Authorization header string true "Insert your access token" default(Bearer <your access token>)
// @Param article body model.EditableArticleInfo true "Article information"
// @Success 201 {object} model.ArticleResponse "Created article"
// @Failure 400 {object} utilities.ErrorResponse "Invalid body"
// @Failure 401 {object} utilities.ErrorResponse "Invalid token"
// @Failure 409 {object} utilities.ErrorResponse "Slug already exist"
// @Failure 500 {object} utilities.ErrorResponse "Database error"
// @Router /admin/articles [post]
func (ac *ArticleController) CreateArticle(c *gin.Context) {
	user, err := utilities.ExtractUser(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, utilities.ErrorResponse{Error: err.Error()})
		return
	}

	var info model.EditableArticleInfo
	if err := c.ShouldBindJSON(&info); err != nil {
		c.JSON(http.StatusBadRequest, utilities.ErrorResponse{
			Error: "Title and slug must be provided and be at most 255 characters",
		})
		return
	}

	article := model.Article{
		Title:    info.Title,
		Slug:     info.Slug,
		Content:  info.Content,
		AuthorID: user.ID,
	}
	if err := repository.CreateArticle(ac.DB.WithContext(c.Request.Context()), &article); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			c.JSON(http.StatusConflict, utilities.ErrorResponse{Error: "Slug already exist"})
			return
		}
		c.JSON(http.StatusInternalServerError, utilities.ErrorResponse{
			Error: fmt.Sprintf("Failed to create article: %s", err.Error()),
		})
		return
	}

	c.JSON(http.StatusCreated, model.ArticleResponse{
		Article:    article,
		References: []model.ArticleReferenceResponse{},
	})
}

// GetArticle returns an article with its references in display order
// @Summary Get an article with its references
// @Tags Article
// @Produce json
// @Param Authorization header string true "Insert your access token" default(Bearer <your access token>)
// @Param id path int true "Article ID"
// @Success 200 {object} model.ArticleResponse "Article"
// @Failure 401 {object} utilities.ErrorResponse "Invalid token"
// @Failure 403 {object} utilities.ErrorResponse "Not allowed to manage this article"
// @Failure 404 {object} utilities.ErrorResponse "Article not found"
// @Failure 500 {object} utilities.ErrorResponse "Database error"
// @Router /admin/articles/{id} [get]
func (ac *ArticleController) GetArticle(c *gin.Context) {
	user, err := utilities.ExtractUser(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, utilities.ErrorResponse{Error: err.Error()})
		return
	}

	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil || id == 0 {
		c.JSON(http.StatusNotFound, utilities.ErrorResponse{Error: "Article not found"})
		return
	}

	db := ac.DB.WithContext(c.Request.Context())
	article, err := repository.FindArticle(db, uint(id))
	if errors.Is(err, gorm.ErrRecordNotFound) {
		c.JSON(http.StatusNotFound, utilities.ErrorResponse{Error: "Article not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, utilities.ErrorResponse{
			Error: fmt.Sprintf("Failed to retrieve article: %s", err.Error()),
		})
		return
	}

	if !ac.Voter.CanManage(article, user) {
		c.JSON(http.StatusForbidden, utilities.ErrorResponse{Error: "You are not allowed to manage this article"})
		return
	}

	refs, err := repository.ListReferences(db, article.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, utilities.ErrorResponse{
			Error: fmt.Sprintf("Failed to retrieve article references: %s", err.Error()),
		})
		return
	}

	c.JSON(http.StatusOK, model.ArticleResponse{
		Article:    article,
		References: model.ToResponses(refs),
	})
}
