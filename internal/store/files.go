package store

import (
	"context"

	"github.com/HaiTang-8/content-hub/internal/model"
)

func (s *Store) CreateFile(ctx context.Context, f *model.File) error {
	return wrap(s.ctx(ctx).Create(f).Error)
}

func (s *Store) FileByID(ctx context.Context, id uint) (*model.File, error) {
	var f model.File
	if err := s.ctx(ctx).Preload("Owner").First(&f, id).Error; err != nil {
		return nil, wrap(err)
	}
	return &f, nil
}

func (s *Store) ListFiles(ctx context.Context, ownerID uint) ([]model.File, error) {
	var files []model.File
	err := s.ctx(ctx).Where("owner_id = ?", ownerID).Order("created_at DESC").Find(&files).Error
	if err != nil {
		return nil, wrap(err)
	}
	return files, nil
}

func (s *Store) ListAllFiles(ctx context.Context) ([]model.File, error) {
	var files []model.File
	if err := s.ctx(ctx).Order("created_at DESC").Find(&files).Error; err != nil {
		return nil, wrap(err)
	}
	return files, nil
}

func (s *Store) DeleteFile(ctx context.Context, id uint) error {
	return wrap(s.ctx(ctx).Delete(&model.File{}, id).Error)
}
