package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// APIKeyRevoke soft-deletes a key. Requests already holding a positive
// validation result aren't affected, but any validation that hasn't finished
// reading the record yet will see the revoked flag.
func (a *API) APIKeyRevoke(c *gin.Context) {
	requestID := c.MustGet("requestID").(string)

	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
			"error":     "Invalid API key ID",
			"requestID": requestID,
		})
		return
	}

	if err := a.Keys.Revoke(c.Request.Context(), uint(id)); err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
			"error":     "Internal server error",
			"requestID": requestID,
		})

		zap.L().Error("Failed to revoke API key", zap.Error(err), zap.String("requestID", requestID))
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "API key revoked"})
}
