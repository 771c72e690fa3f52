package api

import (
	"fmt"
	"net/http"

	"github.com/HaiTang-8/content-hub/internal/access"
	"github.com/HaiTang-8/content-hub/middleware"
	"github.com/gin-gonic/gin"
)

// ShareMeta returns what the preview page needs to render, running every
// policy check but consuming no view quota.
func (a *API) ShareMeta(c *gin.Context) {
	requestID := c.MustGet("requestID").(string)
	token := c.Param("token")

	d, err := a.Access.Authorize(c.Request.Context(), access.Credentials{
		ShareToken:   token,
		SessionToken: middleware.BearerToken(c),
		Peek:         true,
	})
	if err != nil {
		status, msg := shareStatus(err)
		c.AbortWithStatusJSON(status, gin.H{
			"error":     msg,
			"requestID": requestID,
		})
		return
	}

	g := d.Grant
	c.JSON(http.StatusOK, gin.H{
		"token":           g.Share.Token,
		"filename":        g.File.Filename,
		"mime_type":       g.File.MimeType,
		"size":            g.File.Size,
		"description":     g.File.Description,
		"owner":           g.File.Owner.Username,
		"requires_login":  g.Share.RequireLogin,
		"allow_username":  g.Share.AllowUsername,
		"max_views":       g.Share.MaxViews,
		"remaining_views": g.RemainingViews,
		"expires_at":      g.Share.ExpiresAt,
		"created_at":      g.Share.CreatedAt,
		"stream_path":     fmt.Sprintf("/api/shares/%s/stream", g.Share.Token),
	})
}
