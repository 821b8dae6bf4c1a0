// Package server contain implementation of go-gin-server and each route handlers
package server

import (
	"net/http"

	"article-admin-backend/internal/auth"
	"article-admin-backend/internal/controller/article"
	"article-admin-backend/internal/controller/reference"
	"article-admin-backend/internal/middleware"
	"article-admin-backend/internal/model"
	"article-admin-backend/internal/validation"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	// Init swagger doc
	_ "article-admin-backend/docs"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// RegisterRoutes will register each http endpoint routes to bound Server instance
func (s *MyServer) RegisterRoutes() http.Handler {
	r := gin.New()
	r.Use(gin.Recovery(), middleware.RequestLogger(s.log))

	r.Use(cors.New(cors.Config{
		AllowOrigins:     s.cfg.AllowOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
	}))
	r.Use(middleware.SafeHeader())

	lAuth := auth.NewLocalAuthHandler(s.DB, s.Attempts)
	logout := auth.NewLogoutController(s.Blacklist)
	articles := article.NewArticleController(s.DB)
	references := reference.NewReferenceController(s.DB, s.Uploader, s.log)
	if s.cfg.Storage.DownloadURLTTL > 0 {
		references.DownloadTTL = s.cfg.Storage.DownloadURLTTL
	}

	r.GET("/health", s.healthHandler)
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(s.Registry, promhttp.HandlerOpts{})))

	authRoute := r.Group("/auth")
	{
		authRoute.POST("login", middleware.RateLimiterMiddleware(s.cfg.RateLimitPerSecond), lAuth.LocalLoginHandler)
		authRoute.POST("logout", middleware.RequireAuth(s.DB), middleware.JwtBlacklistCheck(s.Blacklist), logout.LogoutHandler)
	}

	admin := r.Group("/admin")
	{
		admin.Use(
			middleware.RequireAuth(s.DB),
			middleware.JwtBlacklistCheck(s.Blacklist),
			middleware.RateLimiterMiddleware(s.cfg.RateLimitPerSecond),
			middleware.CheckRole(model.RoleAdmin, model.RoleAuthor),
		)

		admin.POST("users", middleware.CheckRole(model.RoleAdmin), lAuth.CreateUserHandler)

		admin.POST("articles", articles.CreateArticle)
		admin.GET("articles/:id", articles.GetArticle)

		admin.POST("article/:id/references", middleware.SizeLimit(validation.MaxReferenceSize), references.UploadReference)
		admin.GET("article/:id/references", references.ListReferences)
		admin.POST("article/:id/references/reorder", references.ReorderReferences)
		admin.GET("article/references/:id/download", references.DownloadReference)
		admin.DELETE("article/references/:id", references.DeleteReference)
		admin.PUT("article/references/:id", references.UpdateReference)
	}

	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	return r
}

func (s *MyServer) healthHandler(c *gin.Context) {
	c.JSON(http.StatusOK, s.DB.Health())
}
