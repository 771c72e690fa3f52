package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/HaiTang-8/content-hub/internal/model"
	"github.com/HaiTang-8/content-hub/internal/store"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// FileDelete removes a file, its blob and every share link pointing at it.
func (a *API) FileDelete(c *gin.Context) {
	requestID := c.MustGet("requestID").(string)
	user := c.MustGet("user").(*model.User)
	ctx := c.Request.Context()

	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
			"error":     "Invalid file ID",
			"requestID": requestID,
		})
		return
	}

	file, err := a.Store.FileByID(ctx, uint(id))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.AbortWithStatusJSON(http.StatusNotFound, gin.H{
				"error":     "File not found. It either doesn't exist or you don't own it",
				"requestID": requestID,
			})
			return
		}

		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
			"error":     "Internal server error",
			"requestID": requestID,
		})

		zap.L().Error("Failed to load file", zap.Error(err), zap.String("requestID", requestID))
		return
	}

	if !user.IsAdmin() && file.OwnerID != user.ID {
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
			"error":     "No permission to delete this file",
			"requestID": requestID,
		})
		return
	}

	if err := a.Store.DeleteSharesForFile(ctx, file.ID); err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
			"error":     "Internal server error",
			"requestID": requestID,
		})

		zap.L().Error("Failed to delete shares of file", zap.Error(err), zap.String("requestID", requestID))
		return
	}

	if err := a.Store.DeleteFile(ctx, file.ID); err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
			"error":     "Internal server error",
			"requestID": requestID,
		})

		zap.L().Error("Failed to delete file record", zap.Error(err), zap.String("requestID", requestID))
		return
	}

	if err := a.Blobs.Delete(ctx, file.StorageKey); err != nil {
		// The record is gone; an orphaned blob is only wasted space
		zap.L().Error("Failed to delete blob", zap.Error(err), zap.String("key", file.StorageKey))
	}

	c.Status(http.StatusOK)
}
