package model

import (
	"encoding/base64"
	"path"
	"time"
)

// ArticleReferencePrefix is the object storage folder holding reference files
const ArticleReferencePrefix = "article_reference"

// ArticleReference is one uploaded file attached to an Article.
// Position orders references among siblings of the same article only.
type ArticleReference struct {
	ID               uint     `gorm:"primaryKey"`
	ArticleID        uint     `gorm:"not null;index:idx_reference_article_position,priority:1"`
	Article          *Article `gorm:"foreignKey:ArticleID;constraint:OnDelete:CASCADE;"`
	Filename         string   `gorm:"not null;uniqueIndex" validate:"required"`
	OriginalFilename string   `gorm:"not null" json:"originalFilename" validate:"required,max=255"`
	MimeType         string   `gorm:"not null" validate:"required"`
	Size             int64    `gorm:"not null;default:0"`
	Position         int      `gorm:"not null;default:0;index:idx_reference_article_position,priority:2"`
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// FilePath returns the object key of the stored file
func (r ArticleReference) FilePath() string {
	return path.Join(ArticleReferencePrefix, r.Filename)
}

// ArticleReferenceResponse is the "main" serialization group of ArticleReference
type ArticleReferenceResponse struct {
	ID               uint   `json:"id"`
	ArticleID        uint   `json:"articleId"`
	Filename         string `json:"filename"`
	OriginalFilename string `json:"originalFilename"`
	MimeType         string `json:"mimeType"`
	Size             int64  `json:"size"`
	Position         int    `json:"position"`
}

// ToResponse project reference into the "main" group
func (r ArticleReference) ToResponse() ArticleReferenceResponse {
	return ArticleReferenceResponse{
		ID:               r.ID,
		ArticleID:        r.ArticleID,
		Filename:         r.Filename,
		OriginalFilename: r.OriginalFilename,
		MimeType:         r.MimeType,
		Size:             r.Size,
		Position:         r.Position,
	}
}

// ToResponses keeps the order of refs and never returns nil
func ToResponses(refs []ArticleReference) []ArticleReferenceResponse {
	resp := make([]ArticleReferenceResponse, 0, len(refs))
	for _, r := range refs {
		resp = append(resp, r.ToResponse())
	}
	return resp
}

// ArticleReferenceInput is the "input" serialization group, the only fields
// a client may change on an existing reference.
type ArticleReferenceInput struct {
	OriginalFilename *string `json:"originalFilename"`
}

// ApplyTo copies provided input fields onto ref. Absent fields are left untouched.
func (in ArticleReferenceInput) ApplyTo(ref *ArticleReference) {
	if in.OriginalFilename != nil {
		ref.OriginalFilename = *in.OriginalFilename
	}
}

// ArticleReferenceUploadAPIModel is the JSON upload payload. It is never persisted.
type ArticleReferenceUploadAPIModel struct {
	Filename string `json:"filename" validate:"required,max=255"`
	Data     string `json:"data" validate:"required"`
}

// DecodedData returns the file content carried in Data
func (m ArticleReferenceUploadAPIModel) DecodedData() ([]byte, error) {
	return base64.StdEncoding.DecodeString(m.Data)
}
