package api

import (
	"net/http"

	"github.com/HaiTang-8/content-hub/middleware"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Logout revokes the presented session. Revoking an unknown or already
// revoked token still returns 200; there is nothing useful to tell apart.
func (a *API) Logout(c *gin.Context) {
	requestID := c.MustGet("requestID").(string)

	err := a.Sessions.Invalidate(c.Request.Context(), middleware.BearerToken(c))
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
			"error":     "Internal server error",
			"requestID": requestID,
		})

		zap.L().Error("Failed to revoke session", zap.Error(err), zap.String("requestID", requestID))
		return
	}

	c.Status(http.StatusOK)
}
