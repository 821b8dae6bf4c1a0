package repository

import (
	"article-admin-backend/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// FindArticle returns gorm.ErrRecordNotFound when no article has id
func FindArticle(db *gorm.DB, id uint) (model.Article, error) {
	var article model.Article
	err := db.First(&article, id).Error
	return article, err
}

// LockArticle loads the article and holds its row lock until the
// surrounding transaction ends. Uploads to the same article queue on it.
func LockArticle(tx *gorm.DB, id uint) (model.Article, error) {
	return FindArticle(tx.Clauses(clause.Locking{Strength: "UPDATE"}), id)
}

// CreateArticle inserts article
func CreateArticle(db *gorm.DB, article *model.Article) error {
	return db.Omit(clause.Associations).Create(article).Error
}
