package auth

import "article-admin-backend/internal/model"

// ArticleVoter decides who may manage an article and therefore its references.
type ArticleVoter struct{}

// CanManage reports whether actor may manage article. Admins manage every
// article, authors only the ones they wrote.
func (ArticleVoter) CanManage(article model.Article, actor model.User) bool {
	switch actor.Role {
	case model.RoleAdmin:
		return true
	case model.RoleAuthor:
		return article.AuthorID == actor.ID
	default:
		return false
	}
}
