package reference

import (
	"net/http"

	"article-admin-backend/internal/model"
	"article-admin-backend/internal/repository"
	"article-admin-backend/internal/validation"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// UploadReference stores a new reference file and appends it to the article.
// @Summary Upload a reference file to an article
// @Description Accepts either a multipart form with a "reference" file part or a JSON body
// @Description {"filename": "...", "data": "<base64>"}. Files up to 5 MB of type image/*, pdf,
// @Description office documents or plain text are permitted.
// @Tags Reference
// @Accept mpfd,json
// @Produce json
// @Param Authorization header string true "Insert your access token" default(Bearer <your access token>)
// @Param id path int true "Article ID"
// @Param reference formData file false "Reference file (multipart upload)"
// @Param payload body model.ArticleReferenceUploadAPIModel false "Base64 encoded reference (JSON upload)"
// @Success 201 {object} model.ArticleReferenceResponse "Reference created"
// @Failure 400 {object} validation.Problem "Invalid body or file"
// @Failure 401 {object} utilities.ErrorResponse "Invalid token"
// @Failure 403 {object} utilities.ErrorResponse "Not allowed to manage this article"
// @Failure 404 {object} utilities.ErrorResponse "Article not found"
// @Failure 500 {object} utilities.ErrorResponse "Storage or database error"
// @Router /admin/article/{id}/references [post]
func (rc *ReferenceController) UploadReference(c *gin.Context) {
	article, ok := rc.resolveArticle(c)
	if !ok {
		return
	}

	file, problem, err := sourceFor(c).read(c, rc.Validator)
	if err != nil {
		rc.internalError(c, "Failed to read uploaded file", err)
		return
	}
	if problem != nil {
		badRequest(c, *problem)
		return
	}

	mimeType, violations := validation.ReferenceConstraint.File(file.Data, file.Present)
	violations = append(violations, validation.MaxLength("originalFilename", file.Filename, 255)...)
	if len(violations) > 0 {
		badRequest(c, validation.NewProblem(violations))
		return
	}
	if mimeType == "" {
		mimeType = validation.DefaultMimeType
	}

	ctx := c.Request.Context()
	filename, err := rc.Storage.UploadArticleReference(ctx, file.Data, file.Filename, mimeType)
	if err != nil {
		rc.internalError(c, "Failed to store reference file", err)
		return
	}

	ref := model.ArticleReference{
		ArticleID:        article.ID,
		Filename:         filename,
		OriginalFilename: file.Filename,
		MimeType:         mimeType,
		Size:             int64(len(file.Data)),
	}
	if ref.OriginalFilename == "" {
		ref.OriginalFilename = filename
	}

	err = rc.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := repository.LockArticle(tx, article.ID); err != nil {
			return err
		}
		position, err := repository.NextPosition(tx, article.ID)
		if err != nil {
			return err
		}
		ref.Position = position
		return tx.Omit("Article").Create(&ref).Error
	})
	if err != nil {
		rc.Log.Warn(ctx, "orphaned object", "key", ref.FilePath(), "article_id", article.ID)
		rc.internalError(c, "Failed to save article reference", err)
		return
	}

	c.JSON(http.StatusCreated, ref.ToResponse())
}
