package repository

import (
	"context"
	"ladder_backend/internal/model"

	"gorm.io/gorm"
)

type LevelRepository struct {
	DB *gorm.DB
}

func NewLevelRepository(db *gorm.DB) *LevelRepository {
	return &LevelRepository{DB: db}
}

func (r *LevelRepository) Create(ctx context.Context, level *model.Level) error {
	return r.DB.WithContext(ctx).Create(level).Error
}

func (r *LevelRepository) FindByID(ctx context.Context, id uint) (*model.Level, error) {
	var level model.Level
	if err := r.DB.WithContext(ctx).First(&level, id).Error; err != nil {
		return nil, err
	}
	return &level, nil
}

// FindActiveByOrderIndex returns the active level at position orderIndex.
func (r *LevelRepository) FindActiveByOrderIndex(ctx context.Context, orderIndex int) (*model.Level, error) {
	var level model.Level
	err := r.DB.WithContext(ctx).
		Where("order_index = ? AND active = ?", orderIndex, true).
		First(&level).Error
	if err != nil {
		return nil, err
	}
	return &level, nil
}

// ListActive returns active levels in ladder order with their tests.
func (r *LevelRepository) ListActive(ctx context.Context) ([]model.Level, error) {
	var levels []model.Level
	err := r.DB.WithContext(ctx).
		Preload("Tests", func(db *gorm.DB) *gorm.DB { return db.Order("id") }).
		Where("active = ?", true).
		Order("order_index").
		Find(&levels).Error
	return levels, err
}

func (r *LevelRepository) CountActiveBoss(ctx context.Context) (int64, error) {
	var count int64
	err := r.DB.WithContext(ctx).Model(&model.Level{}).
		Where("is_boss_level = ? AND active = ?", true, true).
		Count(&count).Error
	return count, err
}
