package repository

import (
	"context"
	"ladder_backend/internal/model"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type AchievementRepository struct {
	DB *gorm.DB
}

func NewAchievementRepository(db *gorm.DB) *AchievementRepository {
	return &AchievementRepository{DB: db}
}

func (r *AchievementRepository) FindByCode(ctx context.Context, code string) (*model.Achievement, error) {
	var a model.Achievement
	if err := r.DB.WithContext(ctx).Where("code = ?", code).First(&a).Error; err != nil {
		return nil, err
	}
	return &a, nil
}

// Grant records the achievement for the user; false means it was already held.
func (r *AchievementRepository) Grant(ctx context.Context, userID, achievementID uint, at time.Time) (bool, error) {
	ua := model.UserAchievement{UserID: userID, AchievementID: achievementID, EarnedAt: at}
	res := r.DB.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(&ua)
	return res.RowsAffected > 0, res.Error
}

func (r *AchievementRepository) ListEarned(ctx context.Context, userID uint) ([]model.EarnedAchievement, error) {
	var rows []model.EarnedAchievement
	err := r.DB.WithContext(ctx).Table("user_achievements AS ua").
		Select("a.*, ua.earned_at").
		Joins("JOIN achievements a ON a.id = ua.achievement_id").
		Where("ua.user_id = ?", userID).
		Order("ua.earned_at DESC").
		Scan(&rows).Error
	return rows, err
}

func (r *AchievementRepository) ListCatalog(ctx context.Context) ([]model.Achievement, error) {
	var rows []model.Achievement
	err := r.DB.WithContext(ctx).Order("id").Find(&rows).Error
	return rows, err
}
