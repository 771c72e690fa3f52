// Package service holds background jobs that run alongside the API server.
package service

import (
	"context"
	"time"

	"github.com/HaiTang-8/content-hub/internal/share"
	"github.com/HaiTang-8/content-hub/internal/store"
	"go.uber.org/zap"
)

// SessionCleanup periodically deletes session rows that expired before the
// previous day. Expired sessions already fail validation; this just keeps
// the table from growing forever.
func SessionCleanup(t time.Duration, st *store.Store) {
	ticker := time.NewTicker(t)

	zap.L().Debug("Session cleanup attached", zap.Duration("tick_every", t))

	go func() {
		for range ticker.C {
			n, err := st.DeleteDeadSessions(context.Background(), time.Now().Add(-24*time.Hour))
			if err != nil {
				zap.L().Error("Failed to clean up dead sessions", zap.Error(err))
				continue
			}

			if n > 0 {
				zap.L().Debug("Cleaned up dead sessions", zap.Int64("deleted", n))
			}
		}
	}()
}

// ShareCleanup periodically runs the share engine's sweep with the given
// criteria. Admins can also trigger the same sweep on demand through the API.
func ShareCleanup(t time.Duration, engine *share.Engine, criteria share.CleanupCriteria) {
	ticker := time.NewTicker(t)

	zap.L().Debug("Share cleanup attached", zap.Duration("tick_every", t))

	go func() {
		for range ticker.C {
			res, err := engine.Cleanup(context.Background(), criteria)
			if err != nil {
				zap.L().Error("Failed to clean up shares", zap.Error(err))
				continue
			}

			if res.Deleted > 0 {
				zap.L().Debug("Cleaned up shares",
					zap.Int("deleted", res.Deleted),
					zap.Int("expired", res.ExpiredCount),
					zap.Int("missing_file", res.MissingFileCount),
					zap.Int("exhausted", res.ExhaustedCount),
				)
			}
		}
	}()
}
