package api

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/HaiTang-8/content-hub/internal/model"
	"github.com/HaiTang-8/content-hub/internal/share"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type shareCreateBody struct {
	RequireLogin  *bool  `json:"require_login"`
	AllowUsername string `json:"allow_username"`
	MaxViews      *uint  `json:"max_views"`
	ExpiresInDays *int   `json:"expires_in_days"`
}

// ShareCreate issues a share token for one of the caller's files. Policy
// defaults are conservative: login required, 7 day expiry, no view limit.
func (a *API) ShareCreate(c *gin.Context) {
	requestID := c.MustGet("requestID").(string)

	fileID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
			"error":     "Invalid file ID",
			"requestID": requestID,
		})
		return
	}

	var data shareCreateBody
	if err := c.ShouldBindJSON(&data); err != nil && !errors.Is(err, io.EOF) {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
			"error":     "Invalid request body",
			"requestID": requestID,
		})
		return
	}

	creator := c.MustGet("user").(*model.User)

	record, err := a.Shares.Create(c.Request.Context(), uint(fileID), creator, share.Policy{
		RequireLogin:  data.RequireLogin,
		AllowUsername: data.AllowUsername,
		MaxViews:      data.MaxViews,
		ExpiresInDays: data.ExpiresInDays,
	})
	if err != nil {
		switch {
		case errors.Is(err, share.ErrNotFound):
			c.AbortWithStatusJSON(http.StatusNotFound, gin.H{
				"error":     "File not found",
				"requestID": requestID,
			})
		case errors.Is(err, share.ErrForbidden):
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"error":     "No permission to share this file",
				"requestID": requestID,
			})
		case errors.Is(err, share.ErrBadPolicy):
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
				"error":     err.Error(),
				"requestID": requestID,
			})
		default:
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
				"error":     "Internal server error",
				"requestID": requestID,
			})

			zap.L().Error("Failed to create share", zap.Error(err), zap.String("requestID", requestID))
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"share_token":    record.Token,
		"preview_path":   fmt.Sprintf("/preview/%s", record.Token),
		"requires_login": record.RequireLogin,
		"allow_username": record.AllowUsername,
		"max_views":      record.MaxViews,
		"expires_at":     record.ExpiresAt,
	})
}
