package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func (a *API) APIKeyList(c *gin.Context) {
	requestID := c.MustGet("requestID").(string)

	keys, err := a.Keys.List(c.Request.Context())
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
			"error":     "Internal server error",
			"requestID": requestID,
		})

		zap.L().Error("Failed to list API keys", zap.Error(err), zap.String("requestID", requestID))
		return
	}

	resp := make([]apiKeyItem, 0, len(keys))
	for i := range keys {
		resp = append(resp, keyItem(&keys[i]))
	}

	c.JSON(http.StatusOK, resp)
}
