package store

import (
	"context"

	"github.com/HaiTang-8/content-hub/internal/model"
)

func (s *Store) CreateUser(ctx context.Context, u *model.User) error {
	return wrap(s.ctx(ctx).Create(u).Error)
}

func (s *Store) UserByID(ctx context.Context, id uint) (*model.User, error) {
	var u model.User
	if err := s.ctx(ctx).First(&u, id).Error; err != nil {
		return nil, wrap(err)
	}
	return &u, nil
}

func (s *Store) UserByUsername(ctx context.Context, username string) (*model.User, error) {
	var u model.User
	if err := s.ctx(ctx).Where("username = ?", username).First(&u).Error; err != nil {
		return nil, wrap(err)
	}
	return &u, nil
}

func (s *Store) ListUsers(ctx context.Context) ([]model.User, error) {
	var users []model.User
	if err := s.ctx(ctx).Order("created_at DESC").Find(&users).Error; err != nil {
		return nil, wrap(err)
	}
	return users, nil
}

func (s *Store) SaveUser(ctx context.Context, u *model.User) error {
	return wrap(s.ctx(ctx).Save(u).Error)
}

// DeleteUser removes the account. The caller decides what happens to the
// credentials bound to it; see RevokeSessionsForUser and RevokeAPIKeysForUser.
func (s *Store) DeleteUser(ctx context.Context, id uint) error {
	return wrap(s.ctx(ctx).Delete(&model.User{}, id).Error)
}

func (s *Store) CountAdmins(ctx context.Context) (int64, error) {
	var n int64
	if err := s.ctx(ctx).Model(&model.User{}).Where("role = ?", model.RoleAdmin).Count(&n).Error; err != nil {
		return 0, wrap(err)
	}
	return n, nil
}
