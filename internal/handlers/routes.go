package handlers

import (
	"github.com/alimgiray/codenexus/internal/middleware"
	"github.com/gin-gonic/gin"
)

// SetupRoutes registers the form pages, the JSON API and the health check
func SetupRoutes(router *gin.Engine, home *HomeHandler, github *GitHubHandler, health *HealthHandler, notFound *NotFoundHandler) {
	router.Use(middleware.CredentialMiddleware())

	// Form pages
	router.GET("/", home.Index)
	router.POST("/lookup", home.Lookup)
	router.POST("/repositories", home.CreateRepository)

	api := router.Group("/api")
	{
		api.GET("/users/:username", github.GetUser)
		api.GET("/users/:username/repos", github.ListRepos)
		api.GET("/users/:username/export", github.ExportRepositories)
		api.POST("/repos", github.CreateRepository)
		api.GET("/creations", github.ListCreations)
		api.GET("/creations/:id", github.GetCreation)
		api.POST("/creations/:id/reconcile", github.ReconcileCreation)
		api.GET("/rate-limit", github.RateLimit)
	}

	// Health check endpoint
	router.GET("/health", health.HealthCheck)

	router.NoRoute(notFound.NotFound)
}
