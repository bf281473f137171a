package handlers

import (
	"net/http"
	"strings"

	"github.com/alimgiray/codenexus/internal/services"
	"github.com/gin-gonic/gin"
)

type NotFoundHandler struct{}

func NewNotFoundHandler() *NotFoundHandler {
	return &NotFoundHandler{}
}

// NotFound handles 404 errors for non-existent routes
func (h *NotFoundHandler) NotFound(c *gin.Context) {
	if strings.HasPrefix(c.Request.URL.Path, "/api/") {
		c.JSON(http.StatusNotFound, gin.H{
			"error": gin.H{
				"kind":    services.KindNotFound,
				"message": "no such endpoint",
			},
		})
		return
	}

	data := gin.H{
		"Title":         "404 - Page Not Found",
		"RequestedPath": c.Request.URL.Path,
	}

	c.HTML(http.StatusNotFound, "404", data)
}
