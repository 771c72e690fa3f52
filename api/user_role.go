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

type userRoleBody struct {
	Role string `json:"role" binding:"required"`
}

// UserRole switches a user between admin and user. Demoting the last admin
// is refused so the instance never locks itself out.
func (a *API) UserRole(c *gin.Context) {
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

	var data userRoleBody
	if err := c.ShouldBindJSON(&data); err != nil || !model.ValidRole(data.Role) {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
			"error":     "Role must be either admin or user",
			"requestID": requestID,
		})
		return
	}

	target, err := a.Store.UserByID(ctx, uint(id))
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

	if target.IsAdmin() && data.Role != model.RoleAdmin {
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

	target.Role = data.Role
	if err := a.Store.SaveUser(ctx, target); err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
			"error":     "Internal server error",
			"requestID": requestID,
		})

		zap.L().Error("Failed to update role", zap.Error(err), zap.String("requestID", requestID))
		return
	}

	c.JSON(http.StatusOK, gin.H{"id": target.ID, "role": target.Role})
}
