package repository

import (
	"context"
	"ladder_backend/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type PointRepository struct {
	DB *gorm.DB
}

func NewPointRepository(db *gorm.DB) *PointRepository {
	return &PointRepository{DB: db}
}

// Insert adds a ledger event; a second event with the same (user, key) is ignored and reported as false.
func (r *PointRepository) Insert(ctx context.Context, event *model.PointEvent) (bool, error) {
	res := r.DB.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(event)
	return res.RowsAffected > 0, res.Error
}

func (r *PointRepository) Sum(ctx context.Context, userID uint) (int, error) {
	var total int
	err := r.DB.WithContext(ctx).Model(&model.PointEvent{}).
		Where("user_id = ?", userID).
		Select("COALESCE(SUM(amount), 0)").
		Scan(&total).Error
	return total, err
}

func (r *PointRepository) ListRecent(ctx context.Context, userID uint, limit int) ([]model.PointEvent, error) {
	var events []model.PointEvent
	err := r.DB.WithContext(ctx).Where("user_id = ?", userID).
		Order("id DESC").Limit(limit).Find(&events).Error
	return events, err
}
