package store

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/sharanagouda/app-release-tracker/internal/models"
)

// GormStore persists releases through gorm (Postgres in production,
// SQLite in tests).
type GormStore struct {
	db *gorm.DB
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

func (s *GormStore) GetAll(ctx context.Context) ([]models.Release, error) {
	var releases []models.Release
	err := s.db.WithContext(ctx).Order("\"createdAt\" desc").Find(&releases).Error
	if err != nil {
		return nil, err
	}
	return releases, nil
}

func (s *GormStore) GetOne(ctx context.Context, id string) (models.Release, error) {
	var release models.Release
	err := s.db.WithContext(ctx).First(&release, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.Release{}, ErrNotFound
	}
	if err != nil {
		return models.Release{}, err
	}
	return release, nil
}

func (s *GormStore) Put(ctx context.Context, release models.Release) (string, error) {
	if err := s.db.WithContext(ctx).Save(&release).Error; err != nil {
		return "", err
	}
	return release.ID, nil
}

func (s *GormStore) Remove(ctx context.Context, id string) error {
	res := s.db.WithContext(ctx).Delete(&models.Release{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *GormStore) ReplaceAll(ctx context.Context, releases []models.Release) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("1 = 1").Delete(&models.Release{}).Error; err != nil {
			return err
		}
		if len(releases) == 0 {
			return nil
		}
		return tx.CreateInBatches(releases, 100).Error
	})
}
