package store

import (
	"context"
	"time"

	"github.com/HaiTang-8/content-hub/internal/model"
)

func (s *Store) CreateAPIKey(ctx context.Context, key *model.APIKey) error {
	return wrap(s.ctx(ctx).Create(key).Error)
}

func (s *Store) APIKeyByID(ctx context.Context, id uint) (*model.APIKey, error) {
	var key model.APIKey
	if err := s.ctx(ctx).Preload("BoundUser").First(&key, id).Error; err != nil {
		return nil, wrap(err)
	}
	return &key, nil
}

func (s *Store) APIKeyByHash(ctx context.Context, hashed string) (*model.APIKey, error) {
	var key model.APIKey
	err := s.ctx(ctx).Preload("BoundUser").Where("hashed_key = ?", hashed).First(&key).Error
	if err != nil {
		return nil, wrap(err)
	}
	return &key, nil
}

func (s *Store) ListAPIKeys(ctx context.Context) ([]model.APIKey, error) {
	var keys []model.APIKey
	err := s.ctx(ctx).Preload("BoundUser").Order("created_at DESC").Find(&keys).Error
	if err != nil {
		return nil, wrap(err)
	}
	return keys, nil
}

// RevokeAPIKey soft-deletes the key. Idempotent, the record stays for audit.
func (s *Store) RevokeAPIKey(ctx context.Context, id uint) error {
	return wrap(s.ctx(ctx).
		Model(&model.APIKey{}).
		Where("id = ?", id).
		Update("revoked", true).
		Error)
}

func (s *Store) RevokeAPIKeysForUser(ctx context.Context, userID uint) error {
	return wrap(s.ctx(ctx).
		Model(&model.APIKey{}).
		Where("bound_user_id = ? AND revoked = ?", userID, false).
		Update("revoked", true).
		Error)
}

// TouchAPIKey records the last successful validation. Last writer wins;
// concurrent validations of the same key never serialize on this column and
// the value is advisory, never consulted for authorization.
func (s *Store) TouchAPIKey(ctx context.Context, id uint, at time.Time) error {
	return wrap(s.ctx(ctx).
		Model(&model.APIKey{}).
		Where("id = ?", id).
		UpdateColumn("last_used_at", at).
		Error)
}
