package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/noticedesk/noticedesk-backend/internal/handler"
	"github.com/noticedesk/noticedesk-backend/internal/middleware"
	"github.com/noticedesk/noticedesk-backend/pkg/jwt"
)

// Handlers bundles everything the router mounts
type Handlers struct {
	Events      *handler.EventHandler
	Posts       *handler.PostHandler
	Attachments *handler.AttachmentHandler
	Health      *handler.HealthHandler
}

// Setup configures all API routes. Reads require a valid admin token;
// mutations additionally require admin level.
func Setup(router *gin.Engine, h Handlers, jwtManager *jwt.Manager) {
	router.GET("/healthz", h.Health.Check)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := router.Group("/api/v1")
	api.Use(middleware.JWTAuth(jwtManager))
	admin := middleware.RequireAdmin()

	events := api.Group("/events")
	events.GET("", h.Events.List)
	events.POST("/reload", h.Events.Reload)
	events.POST("", admin, h.Events.Create)
	events.PUT("/:id", admin, h.Events.Update)
	events.DELETE("/:id", admin, h.Events.Delete)
	events.POST("/:id/archive", admin, h.Events.Archive)
	events.POST("/:id/unarchive", admin, h.Events.Unarchive)

	posts := api.Group("/posts")
	posts.GET("", h.Posts.List)
	posts.POST("/reload", h.Posts.Reload)
	posts.POST("", admin, h.Posts.Create)
	posts.PUT("/:id", admin, h.Posts.Update)
	posts.DELETE("/:id", admin, h.Posts.Delete)
	posts.POST("/:id/archive", admin, h.Posts.Archive)
	posts.POST("/:id/unarchive", admin, h.Posts.Unarchive)

	attachments := api.Group("/attachments")
	attachments.GET("", h.Attachments.List)
	attachments.GET("/:id", h.Attachments.Get)
}
