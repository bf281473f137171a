package middleware

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/alimgiray/codenexus/pkg/logger"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func newCredentialRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(CredentialMiddleware())

	handler := func(c *gin.Context) {
		c.String(http.StatusOK, GetCredential(c))
	}
	router.GET("/test", handler)
	router.POST("/test", handler)
	return router
}

func TestCredentialMiddleware(t *testing.T) {
	router := newCredentialRouter()

	testCases := []struct {
		name     string
		header   string
		expected string
	}{
		{"Token scheme", "token abc123", "abc123"},
		{"Bearer scheme", "Bearer abc123", "abc123"},
		{"Case insensitive scheme", "BEARER abc123", "abc123"},
		{"Unknown scheme", "Basic dXNlcjpwYXNz", ""},
		{"Missing value", "token", ""},
		{"No header", "", ""},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			req, _ := http.NewRequest("GET", "/test", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			assert.Equal(t, http.StatusOK, w.Code)
			assert.Equal(t, tc.expected, w.Body.String())
		})
	}

	t.Run("Form field", func(t *testing.T) {
		form := url.Values{"token": {"  formtoken  "}}
		req, _ := http.NewRequest("POST", "/test", strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, "formtoken", w.Body.String())
	})

	t.Run("Header wins over form field", func(t *testing.T) {
		form := url.Values{"token": {"formtoken"}}
		req, _ := http.NewRequest("POST", "/test", strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		req.Header.Set("Authorization", "token headertoken")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, "headertoken", w.Body.String())
	})
}

func TestRequestLogger(t *testing.T) {
	var logs bytes.Buffer
	logger.SetOutput(&logs)
	t.Cleanup(func() { logger.Init("info") })

	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(RequestLogger(), CredentialMiddleware())
	router.POST("/api/repos", func(c *gin.Context) {
		c.JSON(http.StatusCreated, gin.H{"request_id": GetRequestID(c)})
	})

	req, _ := http.NewRequest("POST", "/api/repos?token=querysecret", strings.NewReader(`{"name":"x"}`))
	req.Header.Set("Authorization", "token supersecret")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusCreated, w.Code)
	requestID := w.Header().Get("X-Request-ID")
	_, err := uuid.Parse(requestID)
	assert.NoError(t, err)
	assert.Contains(t, w.Body.String(), requestID)

	assert.Contains(t, logs.String(), requestID)
	assert.Contains(t, logs.String(), "/api/repos")
	assert.NotContains(t, logs.String(), "supersecret")
	assert.NotContains(t, logs.String(), "querysecret")

	t.Run("Valid incoming ID is kept", func(t *testing.T) {
		incoming := uuid.New().String()
		req, _ := http.NewRequest("POST", "/api/repos", nil)
		req.Header.Set("X-Request-ID", incoming)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, incoming, w.Header().Get("X-Request-ID"))
	})
}
