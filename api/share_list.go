package api

import (
	"net/http"
	"time"

	"github.com/HaiTang-8/content-hub/internal/model"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type shareListItem struct {
	Token          string            `json:"token"`
	Filename       string            `json:"filename"`
	FileOwner      string            `json:"file_owner"`
	RequireLogin   bool              `json:"require_login"`
	AllowUsername  string            `json:"allow_username"`
	MaxViews       *uint             `json:"max_views"`
	ViewCount      uint              `json:"view_count"`
	RemainingViews *uint             `json:"remaining_views"`
	Status         model.ShareStatus `json:"status"`
	ExpiresAt      time.Time         `json:"expires_at"`
	CreatedAt      time.Time         `json:"created_at"`
}

// ShareList shows every non-deleted share with its derived status, so the
// admin page can tell apart links that are live, spent or revoked but still
// awaiting cleanup.
func (a *API) ShareList(c *gin.Context) {
	requestID := c.MustGet("requestID").(string)

	shares, err := a.Shares.List(c.Request.Context())
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
			"error":     "Internal server error",
			"requestID": requestID,
		})

		zap.L().Error("Failed to list shares", zap.Error(err), zap.String("requestID", requestID))
		return
	}

	now := time.Now()
	resp := make([]shareListItem, 0, len(shares))
	for i := range shares {
		s := &shares[i]
		resp = append(resp, shareListItem{
			Token:          s.Token,
			Filename:       s.File.Filename,
			FileOwner:      s.File.Owner.Username,
			RequireLogin:   s.RequireLogin,
			AllowUsername:  s.AllowUsername,
			MaxViews:       s.MaxViews,
			ViewCount:      s.ViewCount,
			RemainingViews: s.RemainingViews(),
			Status:         s.Status(now),
			ExpiresAt:      s.ExpiresAt,
			CreatedAt:      s.CreatedAt,
		})
	}

	c.JSON(http.StatusOK, resp)
}
