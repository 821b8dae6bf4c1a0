// Package repository holds the queries behind articles and their references.
// Every function takes the *gorm.DB it runs on, so callers decide whether it
// runs inside a transaction.
package repository

import (
	"context"
	"time"

	"article-admin-backend/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ListReferences returns the references of an article in display order
func ListReferences(db *gorm.DB, articleID uint) ([]model.ArticleReference, error) {
	refs := []model.ArticleReference{}
	err := db.Where("article_id = ?", articleID).
		Order("position ASC").Order("id ASC").
		Find(&refs).Error
	return refs, err
}

// LockReferences is ListReferences holding a row lock on every returned
// reference until the surrounding transaction ends.
func LockReferences(tx *gorm.DB, articleID uint) ([]model.ArticleReference, error) {
	return ListReferences(tx.Clauses(clause.Locking{Strength: "UPDATE"}), articleID)
}

// NextPosition returns the position a reference appended to the article gets
func NextPosition(tx *gorm.DB, articleID uint) (int, error) {
	var next int
	err := tx.Model(&model.ArticleReference{}).
		Select("COALESCE(MAX(position), -1) + 1").
		Where("article_id = ?", articleID).
		Scan(&next).Error
	return next, err
}

// FindReference loads a reference together with its article.
// It returns gorm.ErrRecordNotFound when no reference has id.
func FindReference(db *gorm.DB, id uint) (model.ArticleReference, error) {
	var ref model.ArticleReference
	err := db.Preload("Article").First(&ref, id).Error
	return ref, err
}

// SetPositions writes position for every reference id in positions
func SetPositions(tx *gorm.DB, positions map[uint]int) error {
	for id, position := range positions {
		err := tx.Model(&model.ArticleReference{}).
			Where("id = ?", id).
			Update("position", position).Error
		if err != nil {
			return err
		}
	}
	return nil
}

// FilenameSource reads the filenames of all stored references
type FilenameSource struct {
	DB *gorm.DB
}

// StoredFilenames returns every reference filename as a set
func (s FilenameSource) StoredFilenames(ctx context.Context) (map[string]struct{}, error) {
	var names []string
	if err := s.DB.WithContext(ctx).Model(&model.ArticleReference{}).Pluck("filename", &names).Error; err != nil {
		return nil, err
	}

	set := make(map[string]struct{}, len(names))
	for _, n := range names {
		set[n] = struct{}{}
	}
	return set, nil
}

// UpdateReferenceInput writes the client editable columns of ref and reloads
// it, so columns changed concurrently (position after a reorder) are kept.
func UpdateReferenceInput(tx *gorm.DB, ref *model.ArticleReference) error {
	err := tx.Model(ref).Updates(map[string]interface{}{
		"original_filename": ref.OriginalFilename,
		"updated_at":        time.Now(),
	}).Error
	if err != nil {
		return err
	}
	return tx.Omit(clause.Associations).First(ref, ref.ID).Error
}
