package store

import (
	"context"
	"time"

	"github.com/HaiTang-8/content-hub/internal/model"
	"gorm.io/gorm"
)

func (s *Store) CreateShare(ctx context.Context, share *model.Share) error {
	return wrap(s.ctx(ctx).Create(share).Error)
}

func (s *Store) ShareByToken(ctx context.Context, token string) (*model.Share, error) {
	var share model.Share
	err := s.ctx(ctx).
		Preload("File").
		Preload("File.Owner").
		Where("token = ?", token).
		First(&share).Error
	if err != nil {
		return nil, wrap(err)
	}
	return &share, nil
}

func (s *Store) ListShares(ctx context.Context) ([]model.Share, error) {
	var shares []model.Share
	err := s.ctx(ctx).
		Preload("File").
		Preload("File.Owner").
		Order("created_at DESC").
		Find(&shares).Error
	if err != nil {
		return nil, wrap(err)
	}
	return shares, nil
}

// ConsumeShareView is the single atomic unit behind share redemption. The
// guard re-checks revocation, expiry and quota inside one conditional UPDATE,
// so under N concurrent redemptions of a share with max_views = k exactly
// min(N, k) writers see a row change and a revoke racing a redemption can
// never lose to it. ErrConflict means the guard failed; the caller re-reads
// the record to find out which condition did.
func (s *Store) ConsumeShareView(ctx context.Context, id uint, now time.Time) error {
	res := s.ctx(ctx).
		Model(&model.Share{}).
		Where("id = ? AND revoked = ? AND expires_at > ? AND (max_views IS NULL OR view_count < max_views)",
			id, false, now).
		UpdateColumn("view_count", gorm.Expr("view_count + 1"))
	if res.Error != nil {
		return wrap(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrConflict
	}
	return nil
}

// RevokeShare marks the share unusable while keeping the row until a cleanup
// sweep deletes it. Idempotent.
func (s *Store) RevokeShare(ctx context.Context, token string) error {
	return wrap(s.ctx(ctx).
		Model(&model.Share{}).
		Where("token = ?", token).
		Update("revoked", true).
		Error)
}

// DeleteShares removes the rows for good. Cleanup sweeps are the terminal
// stage of a share's life, nothing audits a swept record.
func (s *Store) DeleteShares(ctx context.Context, ids []uint) error {
	if len(ids) == 0 {
		return nil
	}
	return wrap(s.ctx(ctx).Unscoped().Delete(&model.Share{}, ids).Error)
}

func (s *Store) DeleteSharesForFile(ctx context.Context, fileID uint) error {
	return wrap(s.ctx(ctx).Unscoped().Where("file_id = ?", fileID).Delete(&model.Share{}).Error)
}
