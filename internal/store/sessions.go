package store

import (
	"context"
	"time"

	"github.com/HaiTang-8/content-hub/internal/model"
)

func (s *Store) CreateSession(ctx context.Context, sess *model.Session) error {
	return wrap(s.ctx(ctx).Create(sess).Error)
}

func (s *Store) SessionByToken(ctx context.Context, token string) (*model.Session, error) {
	var sess model.Session
	err := s.ctx(ctx).Preload("User").Where("token = ?", token).First(&sess).Error
	if err != nil {
		return nil, wrap(err)
	}
	return &sess, nil
}

// RevokeSession is idempotent: revoking an unknown or already revoked token
// affects zero rows and is not an error.
func (s *Store) RevokeSession(ctx context.Context, token string) error {
	return wrap(s.ctx(ctx).
		Model(&model.Session{}).
		Where("token = ?", token).
		Update("revoked", true).
		Error)
}

// RevokeSessionsForUser kills every live session of a user, used on password
// reset and account deletion.
func (s *Store) RevokeSessionsForUser(ctx context.Context, userID uint) error {
	return wrap(s.ctx(ctx).
		Model(&model.Session{}).
		Where("user_id = ? AND revoked = ?", userID, false).
		Update("revoked", true).
		Error)
}

// DeleteDeadSessions drops rows that expired before the cutoff. Revoked rows
// past their expiry go too; they no longer carry any audit value a live
// credential check could need.
func (s *Store) DeleteDeadSessions(ctx context.Context, cutoff time.Time) (int64, error) {
	res := s.ctx(ctx).Where("expires_at < ?", cutoff).Delete(&model.Session{})
	if res.Error != nil {
		return 0, wrap(res.Error)
	}
	return res.RowsAffected, nil
}
