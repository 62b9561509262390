package repository

import (
	"context"
	"ladder_backend/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type LeaderboardRepository struct {
	DB *gorm.DB
}

func NewLeaderboardRepository(db *gorm.DB) *LeaderboardRepository {
	return &LeaderboardRepository{DB: db}
}

// Upsert writes both cached totals for the user, creating the row on first use.
func (r *LeaderboardRepository) Upsert(ctx context.Context, userID uint, rungs, points int) error {
	entry := model.LeaderboardEntry{UserID: userID, RungsCompleted: rungs, TotalPoints: points, League: model.LeagueBronze}
	return r.DB.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"rungs_completed", "total_points", "updated_at"}),
	}).Create(&entry).Error
}

// SetTotalPoints mirrors the ledger total without touching rungs_completed.
func (r *LeaderboardRepository) SetTotalPoints(ctx context.Context, userID uint, points int) error {
	entry := model.LeaderboardEntry{UserID: userID, TotalPoints: points, League: model.LeagueBronze}
	return r.DB.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"total_points", "updated_at"}),
	}).Create(&entry).Error
}

func (r *LeaderboardRepository) FindByUser(ctx context.Context, userID uint) (*model.LeaderboardEntry, error) {
	var e model.LeaderboardEntry
	if err := r.DB.WithContext(ctx).Where("user_id = ?", userID).First(&e).Error; err != nil {
		return nil, err
	}
	return &e, nil
}

// ListTop returns active users ordered by points then rungs; ranks are assigned by the caller.
func (r *LeaderboardRepository) ListTop(ctx context.Context, limit int) ([]model.RankedEntry, error) {
	var rows []model.RankedEntry
	err := r.DB.WithContext(ctx).Table("leaderboard AS lb").
		Select("lb.user_id, u.name, u.email, lb.rungs_completed, lb.total_points, lb.rank, lb.league").
		Joins("JOIN users u ON u.id = lb.user_id").
		Where("u.active = ? AND u.deleted_at IS NULL AND lb.deleted_at IS NULL", true).
		Order("lb.total_points DESC, lb.rungs_completed DESC, lb.user_id ASC").
		Limit(limit).
		Scan(&rows).Error
	return rows, err
}

func (r *LeaderboardRepository) UpdateRanks(ctx context.Context, ranks map[uint]int) error {
	if len(ranks) == 0 {
		return nil
	}
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for userID, rank := range ranks {
			if err := tx.Model(&model.LeaderboardEntry{}).
				Where("user_id = ?", userID).
				Update("rank", rank).Error; err != nil {
				return err
			}
		}
		return nil
	})
}
