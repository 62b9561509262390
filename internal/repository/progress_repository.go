package repository

import (
	"context"
	"ladder_backend/internal/model"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ProgressRepository struct {
	DB *gorm.DB
}

func NewProgressRepository(db *gorm.DB) *ProgressRepository {
	return &ProgressRepository{DB: db}
}

// Find returns gorm.ErrRecordNotFound when the level is still locked for the user.
func (r *ProgressRepository) Find(ctx context.Context, userID, levelID uint) (*model.UserProgress, error) {
	var p model.UserProgress
	err := r.DB.WithContext(ctx).
		Where("user_id = ? AND level_id = ?", userID, levelID).
		First(&p).Error
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *ProgressRepository) Create(ctx context.Context, p *model.UserProgress) error {
	return r.DB.WithContext(ctx).Create(p).Error
}

// CreateIfAbsent inserts p unless a row for (user, level) exists. It reports whether a row was inserted.
func (r *ProgressRepository) CreateIfAbsent(ctx context.Context, p *model.UserProgress) (bool, error) {
	res := r.DB.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(p)
	return res.RowsAffected > 0, res.Error
}

// UpdateStatus moves a row from one status to another; it is a no-op when the row is not in from.
// started_at is stamped when work starts and completed_at when the level completes.
func (r *ProgressRepository) UpdateStatus(ctx context.Context, userID, levelID uint, from, to model.ProgressStatus, at time.Time) (bool, error) {
	updates := map[string]interface{}{"status": to}
	switch {
	case to == model.StatusInProgress && from == model.StatusUnlocked:
		updates["started_at"] = at
	case to == model.StatusCompleted:
		updates["completed_at"] = at
	}
	res := r.DB.WithContext(ctx).Model(&model.UserProgress{}).
		Where("user_id = ? AND level_id = ? AND status = ?", userID, levelID, from).
		Updates(updates)
	return res.RowsAffected > 0, res.Error
}

func (r *ProgressRepository) CountByStatus(ctx context.Context, userID uint, status model.ProgressStatus) (int64, error) {
	var count int64
	err := r.DB.WithContext(ctx).Model(&model.UserProgress{}).
		Where("user_id = ? AND status = ?", userID, status).
		Count(&count).Error
	return count, err
}

func (r *ProgressRepository) CountCompletedBoss(ctx context.Context, userID uint) (int64, error) {
	var count int64
	err := r.DB.WithContext(ctx).Model(&model.UserProgress{}).
		Joins("JOIN levels ON levels.id = user_progress.level_id").
		Where("user_progress.user_id = ? AND user_progress.status = ? AND levels.is_boss_level = ?", userID, model.StatusCompleted, true).
		Count(&count).Error
	return count, err
}

func (r *ProgressRepository) ListByUser(ctx context.Context, userID uint) ([]model.UserProgress, error) {
	var rows []model.UserProgress
	err := r.DB.WithContext(ctx).Where("user_id = ?", userID).Find(&rows).Error
	return rows, err
}
