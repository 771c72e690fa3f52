package api

import (
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"net/http"
	"strconv"

	"github.com/HaiTang-8/content-hub/internal/store"
	"github.com/HaiTang-8/content-hub/validators"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type resetPasswordBody struct {
	Password string `json:"password"`
}

// UserPassword resets a user's password. Without a password in the body a
// random one is generated and returned once, for the admin to hand over.
// Every live session of the user is revoked either way.
func (a *API) UserPassword(c *gin.Context) {
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

	var data resetPasswordBody
	_ = c.ShouldBindJSON(&data) // empty body means "generate one for me"

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

	password := data.Password
	if password == "" {
		password, err = generatePassword(12)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
				"error":     "Internal server error",
				"requestID": requestID,
			})

			zap.L().Error("Failed to generate password", zap.Error(err), zap.String("requestID", requestID))
			return
		}
	} else if err := validators.PasswordValidator(password); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
			"error":     err.Error(),
			"requestID": requestID,
		})
		return
	}

	hash, err := a.Argon.Hash(password)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
			"error":     "Internal server error",
			"requestID": requestID,
		})

		zap.L().Error("Failed to hash password", zap.Error(err), zap.String("requestID", requestID))
		return
	}

	target.PasswordHash = hash
	if err := a.Store.SaveUser(ctx, target); err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
			"error":     "Internal server error",
			"requestID": requestID,
		})

		zap.L().Error("Failed to save password", zap.Error(err), zap.String("requestID", requestID))
		return
	}

	if err := a.Sessions.InvalidateUser(ctx, target.ID); err != nil {
		zap.L().Error("Failed to revoke sessions after password reset", zap.Error(err), zap.Uint("userID", target.ID))
	}

	c.JSON(http.StatusOK, gin.H{
		"id":       target.ID,
		"username": target.Username,
		"password": password,
	})
}

// generatePassword draws from a charset without lookalike characters.
func generatePassword(length int) (string, error) {
	const charset = "ABCDEFGHJKLMNPQRSTUVWXYZabcdefghijkmnopqrstuvwxyz23456789"
	result := make([]byte, length)
	for i := range result {
		n, err := rand.Int(rand.Reader, big.NewInt(int64(len(charset))))
		if err != nil {
			return "", fmt.Errorf("rand error: %w", err)
		}
		result[i] = charset[n.Int64()]
	}
	return string(result), nil
}
