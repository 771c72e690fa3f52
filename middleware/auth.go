package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/HaiTang-8/content-hub/internal/access"
	"github.com/HaiTang-8/content-hub/internal/apikey"
	"github.com/HaiTang-8/content-hub/internal/model"
	"github.com/gin-gonic/gin"
)

// BearerToken extracts the token from an Authorization header. Empty string
// when the header is absent or malformed.
func BearerToken(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	if header == "" {
		return ""
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return ""
	}
	return parts[1]
}

// NewSessionMiddleware requires a valid session token and sets the
// authenticated user into the context.
func NewSessionMiddleware(f *access.Facade) gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.MustGet("requestID").(string)

		d, err := f.Authorize(c.Request.Context(), access.Credentials{
			SessionToken: BearerToken(c),
		})
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error":     "Invalid or expired session",
				"requestID": requestID,
			})
			return
		}

		setIdentity(c, d.User, "session")
		c.Next()
	}
}

// NewAdminMiddleware rejects non-admin identities. Must run after a
// middleware that set the user.
func NewAdminMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.MustGet("requestID").(string)

		user, ok := c.MustGet("user").(*model.User)
		if !ok || !user.IsAdmin() {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"error":     "Admin privileges required",
				"requestID": requestID,
			})
			return
		}
		c.Next()
	}
}

// NewSessionOrKeyMiddleware accepts either a session token or an X-API-Key
// carrying the required scope. API key requests act as the bound user, so
// downstream ownership checks work the same for both credential kinds.
func NewSessionOrKeyMiddleware(f *access.Facade, scope model.APIScope) gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.MustGet("requestID").(string)

		creds := access.Credentials{Scope: scope}
		mode := "session"
		if token := BearerToken(c); token != "" {
			creds.SessionToken = token
		} else if key := strings.TrimSpace(c.GetHeader("X-API-Key")); key != "" {
			creds.APIKey = key
			mode = "api_key"
		} else {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error":     "Missing Authorization or X-API-Key header",
				"requestID": requestID,
			})
			return
		}

		d, err := f.Authorize(c.Request.Context(), creds)
		if err != nil {
			status := http.StatusUnauthorized
			msg := "Invalid credentials"
			if errors.Is(err, apikey.ErrForbiddenScope) {
				status = http.StatusForbidden
				msg = "API key not authorized for this operation"
			}

			c.AbortWithStatusJSON(status, gin.H{
				"error":     msg,
				"requestID": requestID,
			})
			return
		}

		setIdentity(c, d.User, mode)
		c.Next()
	}
}

func setIdentity(c *gin.Context, user *model.User, mode string) {
	c.Set("user", user)
	c.Set("userID", user.ID)
	c.Set("role", user.Role)
	c.Set("authMode", mode)
}
