package api

import (
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/HaiTang-8/content-hub/internal/access"
	"github.com/HaiTang-8/content-hub/middleware"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ShareStream redeems a view and streams the file inline. The quota is
// consumed before the first byte leaves, so a share that just ran out under
// concurrent access returns 410 instead of over-serving.
func (a *API) ShareStream(c *gin.Context) {
	requestID := c.MustGet("requestID").(string)
	token := c.Param("token")

	d, err := a.Access.Authorize(c.Request.Context(), access.Credentials{
		ShareToken:   token,
		SessionToken: middleware.BearerToken(c),
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
	blob, err := a.Blobs.Open(c.Request.Context(), g.File.StorageKey)
	if err != nil {
		// The view was already counted; better to over-count than to let
		// a disappearing blob mint free retries on a limited share.
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{
			"error":     "The shared file is no longer available",
			"requestID": requestID,
		})

		zap.L().Error("Failed to open shared blob", zap.Error(err), zap.String("requestID", requestID))
		return
	}
	defer blob.Close()

	c.Header("Content-Type", g.File.MimeType)
	c.Header("Content-Disposition", fmt.Sprintf("inline; filename=\"%s\"", url.PathEscape(g.File.Filename)))
	if g.RemainingViews != nil {
		c.Header("X-Remaining-Views", fmt.Sprint(*g.RemainingViews))
	}
	c.Status(http.StatusOK)
	_, _ = io.Copy(c.Writer, blob)
}
