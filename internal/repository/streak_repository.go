package repository

import (
	"context"
	"ladder_backend/internal/model"

	"gorm.io/gorm"
)

type StreakRepository struct {
	DB *gorm.DB
}

// NewStreakRepository 创建连续记录仓库实例
func NewStreakRepository(db *gorm.DB) *StreakRepository {
	return &StreakRepository{DB: db}
}

func (r *StreakRepository) Find(ctx context.Context, userID uint) (*model.UserStreak, error) {
	var s model.UserStreak
	if err := r.DB.WithContext(ctx).Where("user_id = ?", userID).First(&s).Error; err != nil {
		return nil, err
	}
	return &s, nil
}

// FindOrCreate 获取用户的连续记录，不存在时创建空记录
func (r *StreakRepository) FindOrCreate(ctx context.Context, userID uint) (*model.UserStreak, error) {
	s := model.UserStreak{UserID: userID}
	err := r.DB.WithContext(ctx).Where(model.UserStreak{UserID: userID}).FirstOrCreate(&s).Error
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// The track updates touch only their own columns so they never overwrite total_points.

func (r *StreakRepository) UpdateLoginTrack(ctx context.Context, userID uint, current, longest int, day string) error {
	return r.DB.WithContext(ctx).Model(&model.UserStreak{}).
		Where("user_id = ?", userID).
		Updates(map[string]interface{}{
			"current_login_streak": current,
			"longest_login_streak": longest,
			"last_login_date":      day,
		}).Error
}

func (r *StreakRepository) UpdateTestTrack(ctx context.Context, userID uint, current, longest int, day string) error {
	return r.DB.WithContext(ctx).Model(&model.UserStreak{}).
		Where("user_id = ?", userID).
		Updates(map[string]interface{}{
			"current_test_streak": current,
			"longest_test_streak": longest,
			"last_test_date":      day,
		}).Error
}

func (r *StreakRepository) SetTotalPoints(ctx context.Context, userID uint, total int) error {
	if _, err := r.FindOrCreate(ctx, userID); err != nil {
		return err
	}
	return r.DB.WithContext(ctx).Model(&model.UserStreak{}).
		Where("user_id = ?", userID).
		Update("total_points", total).Error
}
