package handlers

import (
	"context"
	"errors"
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/alimgiray/codenexus/internal/services"
	"github.com/alimgiray/codenexus/internal/views"
	"github.com/alimgiray/codenexus/pkg/logger"
	"github.com/gin-gonic/gin"
)

// statusForKind maps an error kind to the HTTP status the API answers with
func statusForKind(kind services.ErrorKind) int {
	switch kind {
	case services.KindInvalidInput:
		return http.StatusBadRequest
	case services.KindUnauthenticated:
		return http.StatusUnauthorized
	case services.KindNotFound:
		return http.StatusNotFound
	case services.KindRateLimited:
		return http.StatusTooManyRequests
	case services.KindConflict:
		return http.StatusConflict
	case services.KindAmbiguous, services.KindMalformedResponse:
		return http.StatusBadGateway
	case services.KindUnavailable:
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}

// respondError writes err as {"error":{"kind","message"}}
func respondError(c *gin.Context, err error) {
	kind := services.KindOf(err)
	status := statusForKind(kind)
	message := views.ErrorMessage(err)

	switch {
	case errors.Is(err, services.ErrCreationNotFound):
		kind, status, message = services.KindNotFound, http.StatusNotFound, err.Error()
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		kind, status = "cancelled", http.StatusGatewayTimeout
	case kind == "":
		logger.WithError(err).WithField("path", c.Request.URL.Path).Error("Request failed")
		kind = "internal"
	}

	if resetAt, ok := services.RetryAt(err); ok {
		seconds := int(math.Ceil(time.Until(resetAt).Seconds()))
		if seconds < 0 {
			seconds = 0
		}
		c.Header("Retry-After", strconv.Itoa(seconds))
	}

	c.JSON(status, gin.H{
		"error": gin.H{
			"kind":    kind,
			"message": message,
		},
	})
}

// invalidInput answers 400 for request problems found by the handler itself
func invalidInput(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, gin.H{
		"error": gin.H{
			"kind":    services.KindInvalidInput,
			"message": message,
		},
	})
}
