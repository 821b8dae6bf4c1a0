package reference

import (
	"errors"
	"fmt"
	"net/http"

	"article-admin-backend/internal/model"
	"article-admin-backend/internal/repository"
	"article-admin-backend/internal/validation"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// ReorderReferences rewrites the positions of all references of an article.
// @Summary Reorder the references of an article
// @Description The body lists every reference ID of the article once, the index is the new position
// @Tags Reference
// @Accept json
// @Produce json
// @Param Authorization header string true "Insert your access token" default(Bearer <your access token>)
// @Param id path int true "Article ID"
// @Param order body []int true "Reference IDs in their new order"
// @Success 200 {array} model.ArticleReferenceResponse "References in their new order"
// @Failure 400 {object} validation.Problem "Invalid body or the IDs do not match the article references"
// @Failure 401 {object} utilities.ErrorResponse "Invalid token"
// @Failure 403 {object} utilities.ErrorResponse "Not allowed to manage this article"
// @Failure 404 {object} utilities.ErrorResponse "Article not found"
// @Failure 500 {object} utilities.ErrorResponse "Database error"
// @Router /admin/article/{id}/references/reorder [post]
func (rc *ReferenceController) ReorderReferences(c *gin.Context) {
	article, ok := rc.resolveArticle(c)
	if !ok {
		return
	}

	var ids []uint
	if err := decodeJSON(c.Request.Body, &ids); err != nil || ids == nil {
		badRequest(c, validation.InvalidBody())
		return
	}

	var ordered []model.ArticleReference
	err := rc.DB.WithContext(c.Request.Context()).Transaction(func(tx *gorm.DB) error {
		refs, err := repository.LockReferences(tx, article.ID)
		if err != nil {
			return err
		}

		positions, violations := reorderPositions(refs, ids)
		if len(violations) > 0 {
			return &violationError{violations: violations}
		}
		if err := repository.SetPositions(tx, positions); err != nil {
			return err
		}

		ordered, err = repository.ListReferences(tx, article.ID)
		return err
	})

	var vErr *violationError
	if errors.As(err, &vErr) {
		badRequest(c, validation.NewProblem(vErr.violations))
		return
	}
	if err != nil {
		rc.internalError(c, "Failed to reorder article references", err)
		return
	}

	c.JSON(http.StatusOK, model.ToResponses(ordered))
}

// reorderPositions maps every reference ID to its index in ids. ids must hold
// each ID of refs exactly once.
func reorderPositions(refs []model.ArticleReference, ids []uint) (map[uint]int, []validation.Violation) {
	current := make(map[uint]struct{}, len(refs))
	for _, r := range refs {
		current[r.ID] = struct{}{}
	}

	var violations []validation.Violation
	positions := make(map[uint]int, len(ids))
	for i, id := range ids {
		path := fmt.Sprintf("[%d]", i)
		if _, ok := current[id]; !ok {
			violations = append(violations, validation.InvalidValue(path,
				fmt.Sprintf("Reference %d does not belong to this article.", id)))
			continue
		}
		if _, seen := positions[id]; seen {
			violations = append(violations, validation.InvalidValue(path,
				fmt.Sprintf("Reference %d is listed more than once.", id)))
			continue
		}
		positions[id] = i
	}

	for _, r := range refs {
		if _, ok := positions[r.ID]; !ok {
			violations = append(violations, validation.InvalidValue("",
				fmt.Sprintf("Reference %d is missing from the new order.", r.ID)))
		}
	}

	if len(violations) > 0 {
		return nil, violations
	}
	return positions, nil
}
