package repository

import (
	"context"
	"ladder_backend/internal/model"

	"gorm.io/gorm"
)

// ActivityRepository only appends; activity rows are never updated or deleted.
type ActivityRepository struct {
	DB *gorm.DB
}

func NewActivityRepository(db *gorm.DB) *ActivityRepository {
	return &ActivityRepository{DB: db}
}

func (r *ActivityRepository) Append(ctx context.Context, entry *model.ActivityLog) error {
	return r.DB.WithContext(ctx).Create(entry).Error
}

// Exists reports whether an activity of this type was already logged for refID.
func (r *ActivityRepository) Exists(ctx context.Context, userID uint, activityType model.ActivityType, refID uint) (bool, error) {
	var count int64
	err := r.DB.WithContext(ctx).Model(&model.ActivityLog{}).
		Where("user_id = ? AND activity_type = ? AND ref_id = ?", userID, activityType, refID).
		Count(&count).Error
	return count > 0, err
}

func (r *ActivityRepository) ListByUser(ctx context.Context, userID uint, limit int) ([]model.ActivityLog, error) {
	var rows []model.ActivityLog
	err := r.DB.WithContext(ctx).Where("user_id = ?", userID).
		Order("id DESC").Limit(limit).Find(&rows).Error
	return rows, err
}
