package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/HaiTang-8/content-hub/internal/apikey"
	"github.com/HaiTang-8/content-hub/internal/model"
	"github.com/HaiTang-8/content-hub/internal/store"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type createKeyBody struct {
	Name          string   `json:"name" binding:"required"`
	Scopes        []string `json:"scopes"`
	BoundUserID   uint     `json:"bound_user_id" binding:"required"`
	ExpiresInDays *int     `json:"expires_in_days"`
}

type apiKeyItem struct {
	ID          uint       `json:"id"`
	Name        string     `json:"name"`
	Scopes      []string   `json:"scopes"`
	KeyPreview  string     `json:"key_preview"`
	Revoked     bool       `json:"revoked"`
	ExpiresAt   *time.Time `json:"expires_at"`
	CreatedAt   time.Time  `json:"created_at"`
	LastUsedAt  *time.Time `json:"last_used_at"`
	BoundUserID uint       `json:"bound_user_id"`
	BoundUser   string     `json:"bound_user"`
}

func keyItem(k *model.APIKey) apiKeyItem {
	return apiKeyItem{
		ID:          k.ID,
		Name:        k.Name,
		Scopes:      k.ScopeList(),
		KeyPreview:  k.KeyPreview,
		Revoked:     k.Revoked,
		ExpiresAt:   k.ExpiresAt,
		CreatedAt:   k.CreatedAt,
		LastUsedAt:  k.LastUsedAt,
		BoundUserID: k.BoundUserID,
		BoundUser:   k.BoundUser.Username,
	}
}

// APIKeyCreate issues a new key. The plain_key field of the response is the
// only place the plaintext ever appears; afterwards only the masked preview
// is available.
func (a *API) APIKeyCreate(c *gin.Context) {
	requestID := c.MustGet("requestID").(string)

	var data createKeyBody
	if err := c.ShouldBindJSON(&data); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
			"error":     "Invalid request body",
			"requestID": requestID,
		})
		return
	}

	if len(data.Scopes) == 0 {
		data.Scopes = []string{string(model.ScopeFilesUpload)}
	}

	key, plain, err := a.Keys.Issue(
		c.Request.Context(),
		data.Name,
		data.BoundUserID,
		c.MustGet("userID").(uint),
		data.Scopes,
		data.ExpiresInDays,
	)
	if err != nil {
		switch {
		case errors.Is(err, apikey.ErrBadScopes), errors.Is(err, apikey.ErrBadExpiry):
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
				"error":     err.Error(),
				"requestID": requestID,
			})
		case errors.Is(err, store.ErrNotFound):
			c.AbortWithStatusJSON(http.StatusNotFound, gin.H{
				"error":     "Bound user does not exist",
				"requestID": requestID,
			})
		default:
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
				"error":     "Internal server error",
				"requestID": requestID,
			})

			zap.L().Error("Failed to issue API key", zap.Error(err), zap.String("requestID", requestID))
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"key":       keyItem(key),
		"plain_key": plain,
	})
}
