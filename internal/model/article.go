package model

import (
	"time"

	"github.com/google/uuid"
)

// Article is the aggregate root that owns an ordered set of ArticleReference.
// References are removed together with the article by the foreign key cascade.
type Article struct {
	ID         uint               `gorm:"primaryKey" json:"id"`
	Title      string             `gorm:"not null" json:"title"`
	Slug       string             `gorm:"uniqueIndex;not null" json:"slug"`
	Content    string             `gorm:"type:text" json:"content"`
	AuthorID   uuid.UUID          `gorm:"type:uuid;not null;index" json:"author_id"`
	Author     User               `gorm:"foreignKey:AuthorID;references:ID;constraint:OnDelete:CASCADE;" json:"-"`
	References []ArticleReference `gorm:"foreignKey:ArticleID;constraint:OnDelete:CASCADE;" json:"-"`
	CreatedAt  time.Time          `json:"created_at"`
	UpdatedAt  time.Time          `json:"updated_at"`
}

// EditableArticleInfo is the part of Article accepted from clients on creation
type EditableArticleInfo struct {
	Title   string `json:"title" binding:"required,max=255"`
	Slug    string `json:"slug" binding:"required,max=255"`
	Content string `json:"content"`
}

// ArticleResponse is an article together with its references in display order
type ArticleResponse struct {
	Article
	References []ArticleReferenceResponse `json:"references"`
}
