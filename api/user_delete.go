package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/HaiTang-8/content-hub/internal/store"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// UserDelete removes an account. The user's sessions and API keys are
// revoked in the same breath; their files and share links stay owned by the
// orphaned ID so audit history survives.
func (a *API) UserDelete(c *gin.Context) {
	requestID := c.MustGet("requestID").(string)
	ctx := c.Request.Context()

	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
			"error":     "Invalid user ID",
			"requestID": requestID,
		})
		return
	}
	targetID := uint(id)

	if c.MustGet("userID").(uint) == targetID {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
			"error":     "You can't delete the account you're logged in with",
			"requestID": requestID,
		})
		return
	}

	target, err := a.Store.UserByID(ctx, targetID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.AbortWithStatusJSON(http.StatusNotFound, gin.H{
				"error":     "User not found",
				"requestID": requestID,
			})
			return
		}

		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
			"error":     "Internal server error",
			"requestID": requestID,
		})

		zap.L().Error("Failed to load user", zap.Error(err), zap.String("requestID", requestID))
		return
	}

	if target.IsAdmin() {
		admins, err := a.Store.CountAdmins(ctx)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
				"error":     "Internal server error",
				"requestID": requestID,
			})

			zap.L().Error("Failed to count admins", zap.Error(err), zap.String("requestID", requestID))
			return
		}
		if admins <= 1 {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
				"error":     "At least one admin must remain",
				"requestID": requestID,
			})
			return
		}
	}

	if err := a.Store.DeleteUser(ctx, target.ID); err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
			"error":     "Internal server error",
			"requestID": requestID,
		})

		zap.L().Error("Failed to delete user", zap.Error(err), zap.String("requestID", requestID))
		return
	}

	// Kill the deleted user's credentials right away. Failures here are
	// logged but don't undo the deletion.
	if err := a.Sessions.InvalidateUser(ctx, target.ID); err != nil {
		zap.L().Error("Failed to revoke sessions of deleted user", zap.Error(err), zap.Uint("userID", target.ID))
	}
	if err := a.Store.RevokeAPIKeysForUser(ctx, target.ID); err != nil {
		zap.L().Error("Failed to revoke API keys of deleted user", zap.Error(err), zap.Uint("userID", target.ID))
	}

	c.JSON(http.StatusOK, gin.H{"id": target.ID})
}
