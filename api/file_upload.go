package api

import (
	"net/http"

	"github.com/HaiTang-8/content-hub/internal/model"
	"github.com/HaiTang-8/content-hub/util"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// FileUpload stores a multipart upload in the blob store and records its
// metadata. Works for logged-in users and for files:upload API keys; either
// way the file belongs to the acting user.
func (a *API) FileUpload(c *gin.Context) {
	requestID := c.MustGet("requestID").(string)
	userID := c.MustGet("userID").(uint)

	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
			"error":     "No file provided",
			"requestID": requestID,
		})
		return
	}

	src, err := fileHeader.Open()
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
			"error":     "Internal server error",
			"requestID": requestID,
		})

		zap.L().Error("Failed to open uploaded file", zap.Error(err), zap.String("requestID", requestID))
		return
	}
	defer src.Close()

	// Users may upload files with identical names, the blob key is always
	// a fresh random value
	storageKey, err := util.GenerateToken(16)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
			"error":     "Internal server error",
			"requestID": requestID,
		})

		zap.L().Error("Failed to generate storage key", zap.Error(err), zap.String("requestID", requestID))
		return
	}

	mimeType := fileHeader.Header.Get("Content-Type")
	if mimeType == "" {
		mimeType = "application/octet-stream"
	}

	err = a.Blobs.Put(c.Request.Context(), storageKey, src, fileHeader.Size, mimeType)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
			"error":     "Failed to store file",
			"requestID": requestID,
		})

		zap.L().Error("Failed to store blob", zap.Error(err), zap.String("requestID", requestID))
		return
	}

	record := &model.File{
		OwnerID:     userID,
		Filename:    fileHeader.Filename,
		StorageKey:  storageKey,
		Size:        fileHeader.Size,
		MimeType:    mimeType,
		Description: c.PostForm("description"),
	}
	if err := a.Store.CreateFile(c.Request.Context(), record); err != nil {
		// Don't leave the blob orphaned if the metadata write failed
		if derr := a.Blobs.Delete(c.Request.Context(), storageKey); derr != nil {
			zap.L().Error("Failed to remove orphaned blob", zap.Error(derr), zap.String("key", storageKey))
		}

		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
			"error":     "Internal server error",
			"requestID": requestID,
		})

		zap.L().Error("Failed to create file record", zap.Error(err), zap.String("requestID", requestID))
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"id":        record.ID,
		"filename":  record.Filename,
		"size":      record.Size,
		"mime_type": record.MimeType,
	})
}
