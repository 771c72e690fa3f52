package api

import (
	"net/http"

	"github.com/HaiTang-8/content-hub/internal/model"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// FileList returns the caller's files, or every file for admins.
func (a *API) FileList(c *gin.Context) {
	requestID := c.MustGet("requestID").(string)
	user := c.MustGet("user").(*model.User)

	var (
		files []model.File
		err   error
	)
	if user.IsAdmin() {
		files, err = a.Store.ListAllFiles(c.Request.Context())
	} else {
		files, err = a.Store.ListFiles(c.Request.Context(), user.ID)
	}
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
			"error":     "Internal server error",
			"requestID": requestID,
		})

		zap.L().Error("Failed to list files", zap.Error(err), zap.String("requestID", requestID))
		return
	}

	c.JSON(http.StatusOK, files)
}
