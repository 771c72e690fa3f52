package api

import (
	"errors"
	"io"
	"net/http"

	"github.com/HaiTang-8/content-hub/internal/share"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ShareCleanup runs a sweep over all share records with the requested
// criteria and reports per-criterion match counts. A record matching
// several criteria is deleted once but counted under each.
func (a *API) ShareCleanup(c *gin.Context) {
	requestID := c.MustGet("requestID").(string)

	var criteria share.CleanupCriteria
	if err := c.ShouldBindJSON(&criteria); err != nil && !errors.Is(err, io.EOF) {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
			"error":     "Invalid request body",
			"requestID": requestID,
		})
		return
	}

	res, err := a.Shares.Cleanup(c.Request.Context(), criteria)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
			"error":     "Internal server error",
			"requestID": requestID,
		})

		zap.L().Error("Failed to clean up shares", zap.Error(err), zap.String("requestID", requestID))
		return
	}

	c.JSON(http.StatusOK, res)
}
