package api

import (
	"net/http"
	"strings"

	"github.com/HaiTang-8/content-hub/internal/model"
	"github.com/gin-gonic/gin"
)

type verifyKeyBody struct {
	APIKey string `json:"api_key"`
	Scope  string `json:"scope"`
}

// APIKeyVerify lets a client check a saved key before using it for real.
// The key may arrive in the X-API-Key header or the JSON body; the body
// wins when both are present. A successful verification counts as a use and
// bumps the last-used timestamp.
func (a *API) APIKeyVerify(c *gin.Context) {
	requestID := c.MustGet("requestID").(string)

	var data verifyKeyBody
	_ = c.ShouldBindJSON(&data) // header-only calls have no body

	rawKey := strings.TrimSpace(c.GetHeader("X-API-Key"))
	if data.APIKey != "" {
		rawKey = strings.TrimSpace(data.APIKey)
	}
	if rawKey == "" {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
			"error":     "Missing X-API-Key header or api_key field",
			"requestID": requestID,
		})
		return
	}

	scope := model.APIScope(strings.TrimSpace(data.Scope))
	if scope == "" {
		scope = model.ScopeFilesUpload
	}

	key, err := a.Keys.Validate(c.Request.Context(), rawKey, scope)
	if err != nil {
		status, msg := authStatus(err)
		c.AbortWithStatusJSON(status, gin.H{
			"error":     msg,
			"requestID": requestID,
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"valid":      true,
		"scopes":     key.ScopeList(),
		"expires_at": key.ExpiresAt,
		"bound_user": gin.H{"id": key.BoundUserID, "username": key.BoundUser.Username},
	})
}
