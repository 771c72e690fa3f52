package api

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"

	"github.com/HaiTang-8/content-hub/internal/model"
	"github.com/HaiTang-8/content-hub/internal/store"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// FileDownload streams a file to its owner or an admin. Anyone else goes
// through a share link instead.
func (a *API) FileDownload(c *gin.Context) {
	requestID := c.MustGet("requestID").(string)
	user := c.MustGet("user").(*model.User)

	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
			"error":     "Invalid file ID",
			"requestID": requestID,
		})
		return
	}

	file, err := a.Store.FileByID(c.Request.Context(), uint(id))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.AbortWithStatusJSON(http.StatusNotFound, gin.H{
				"error":     "File not found",
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
			"error":     "No permission to download this file",
			"requestID": requestID,
		})
		return
	}

	blob, err := a.Blobs.Open(c.Request.Context(), file.StorageKey)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{
			"error":     "File content is no longer available",
			"requestID": requestID,
		})

		zap.L().Error("Failed to open blob", zap.Error(err), zap.String("requestID", requestID))
		return
	}
	defer blob.Close()

	c.Header("Content-Type", file.MimeType)
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=\"%s\"", url.PathEscape(file.Filename)))
	c.Status(http.StatusOK)
	_, _ = io.Copy(c.Writer, blob)
}
