package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
)

const credentialKey = "credential"

// CredentialMiddleware reads a GitHub token from the Authorization header
// ("token X" or "Bearer X") and keeps it in the request context. The token is
// never stored or logged.
func CredentialMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if credential := parseAuthorization(c.GetHeader("Authorization")); credential != "" {
			c.Set(credentialKey, credential)
		}
		c.Next()
	}
}

// GetCredential returns the token for the current request. A "token" form
// field is used when no Authorization header was sent.
func GetCredential(c *gin.Context) string {
	if credential := c.GetString(credentialKey); credential != "" {
		return credential
	}
	return strings.TrimSpace(c.PostForm("token"))
}

func parseAuthorization(header string) string {
	scheme, credential, found := strings.Cut(strings.TrimSpace(header), " ")
	if !found {
		return ""
	}
	switch strings.ToLower(scheme) {
	case "token", "bearer":
		return strings.TrimSpace(credential)
	}
	return ""
}
