package reference

import (
	"net/http"

	"article-admin-backend/internal/model"
	"article-admin-backend/internal/repository"
	"article-admin-backend/internal/validation"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// ListReferences returns the references of an article in display order
// @Summary List the references of an article
// @Tags Reference
// @Produce json
// @Param Authorization header string true "Insert your access token" default(Bearer <your access token>)
// @Param id path int true "Article ID"
// @Success 200 {array} model.ArticleReferenceResponse "References ordered by position"
// @Failure 401 {object} utilities.ErrorResponse "Invalid token"
// @Failure 403 {object} utilities.ErrorResponse "Not allowed to manage this article"
// @Failure 404 {object} utilities.ErrorResponse "Article not found"
// @Failure 500 {object} utilities.ErrorResponse "Database error"
// @Router /admin/article/{id}/references [get]
func (rc *ReferenceController) ListReferences(c *gin.Context) {
	article, ok := rc.resolveArticle(c)
	if !ok {
		return
	}

	refs, err := repository.ListReferences(rc.DB.WithContext(c.Request.Context()), article.ID)
	if err != nil {
		rc.internalError(c, "Failed to retrieve article references", err)
		return
	}

	c.JSON(http.StatusOK, model.ToResponses(refs))
}

// DownloadReference redirects to a short lived signed link of the stored file
// @Summary Download a reference file
// @Description Redirects to a link valid for 30 minutes serving the file as an attachment
// @Tags Reference
// @Param Authorization header string true "Insert your access token" default(Bearer <your access token>)
// @Param id path int true "Reference ID"
// @Success 302 "Redirect to the signed download link"
// @Failure 401 {object} utilities.ErrorResponse "Invalid token"
// @Failure 403 {object} utilities.ErrorResponse "Not allowed to manage this article"
// @Failure 404 {object} utilities.ErrorResponse "Article reference not found"
// @Failure 500 {object} utilities.ErrorResponse "Failed to sign download link"
// @Router /admin/article/references/{id}/download [get]
func (rc *ReferenceController) DownloadReference(c *gin.Context) {
	ref, ok := rc.resolveReference(c)
	if !ok {
		return
	}

	link, err := rc.Storage.SignedDownloadURL(c.Request.Context(), ref, rc.DownloadTTL)
	if err != nil {
		rc.internalError(c, "Failed to create download link", err)
		return
	}

	c.Redirect(http.StatusFound, link)
}

// DeleteReference removes a reference and its stored file
// @Summary Delete a reference
// @Tags Reference
// @Param Authorization header string true "Insert your access token" default(Bearer <your access token>)
// @Param id path int true "Reference ID"
// @Success 204 "Reference deleted"
// @Failure 401 {object} utilities.ErrorResponse "Invalid token"
// @Failure 403 {object} utilities.ErrorResponse "Not allowed to manage this article"
// @Failure 404 {object} utilities.ErrorResponse "Article reference not found"
// @Failure 500 {object} utilities.ErrorResponse "Database error"
// @Router /admin/article/references/{id} [delete]
func (rc *ReferenceController) DeleteReference(c *gin.Context) {
	ref, ok := rc.resolveReference(c)
	if !ok {
		return
	}

	ctx := c.Request.Context()
	err := rc.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Delete(&model.ArticleReference{}, ref.ID).Error
	})
	if err != nil {
		rc.internalError(c, "Failed to delete article reference", err)
		return
	}

	// The row is gone, a leftover object is collected by the orphan sweeper.
	if err := rc.Storage.DeleteFile(ctx, ref.FilePath()); err != nil {
		rc.Log.Error(ctx, "failed to delete reference file", "key", ref.FilePath(), "error", err)
	}

	c.Status(http.StatusNoContent)
}

// UpdateReference changes the editable fields of a reference
// @Summary Update a reference
// @Description Only originalFilename can be changed, other fields are ignored
// @Tags Reference
// @Accept json
// @Produce json
// @Param Authorization header string true "Insert your access token" default(Bearer <your access token>)
// @Param id path int true "Reference ID"
// @Param reference body model.ArticleReferenceInput true "Fields to change"
// @Success 200 {object} model.ArticleReferenceResponse "Updated reference"
// @Failure 400 {object} validation.Problem "Invalid body or value"
// @Failure 401 {object} utilities.ErrorResponse "Invalid token"
// @Failure 403 {object} utilities.ErrorResponse "Not allowed to manage this article"
// @Failure 404 {object} utilities.ErrorResponse "Article reference not found"
// @Failure 500 {object} utilities.ErrorResponse "Database error"
// @Router /admin/article/references/{id} [put]
func (rc *ReferenceController) UpdateReference(c *gin.Context) {
	ref, ok := rc.resolveReference(c)
	if !ok {
		return
	}
	ref.Article = nil

	var input model.ArticleReferenceInput
	if err := decodeJSON(c.Request.Body, &input); err != nil {
		badRequest(c, validation.InvalidBody())
		return
	}
	input.ApplyTo(&ref)

	violations, err := rc.Validator.Struct(ref)
	if err != nil {
		rc.internalError(c, "Failed to validate article reference", err)
		return
	}
	if len(violations) > 0 {
		badRequest(c, validation.NewProblem(violations))
		return
	}

	err = rc.DB.WithContext(c.Request.Context()).Transaction(func(tx *gorm.DB) error {
		return repository.UpdateReferenceInput(tx, &ref)
	})
	if err != nil {
		rc.internalError(c, "Failed to update article reference", err)
		return
	}

	c.JSON(http.StatusOK, ref.ToResponse())
}
