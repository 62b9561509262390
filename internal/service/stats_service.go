package service

import (
	"context"
	"fmt"
	"ladder_backend/internal/model"
)

const pointHistoryLimit = 50

type UserStats struct {
	Streak       *model.UserStreak         `json:"streak"`
	Achievements []model.EarnedAchievement `json:"achievements"`
	Leaderboard  *model.LeaderboardEntry   `json:"leaderboard"`
	Points       []model.PointEvent        `json:"points"`
}

// StatsService 汇总个人统计：连续记录、成就、排行和积分流水
type StatsService struct {
	Streaks      StreakStore
	Points       PointStore
	Achievements *AchievementService
	Leaderboard  *LeaderboardService
}

func NewStatsService(streaks StreakStore, points PointStore, achievements *AchievementService, leaderboard *LeaderboardService) *StatsService {
	return &StatsService{Streaks: streaks, Points: points, Achievements: achievements, Leaderboard: leaderboard}
}

func (s *StatsService) ForUser(ctx context.Context, userID uint) (*UserStats, error) {
	streak, err := s.Streaks.FindOrCreate(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("load streak: %w", err)
	}
	earned, err := s.Achievements.ListEarned(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list achievements: %w", err)
	}
	entry, err := s.Leaderboard.Entry(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("load leaderboard entry: %w", err)
	}
	events, err := s.Points.ListRecent(ctx, userID, pointHistoryLimit)
	if err != nil {
		return nil, fmt.Errorf("list points: %w", err)
	}
	return &UserStats{Streak: streak, Achievements: earned, Leaderboard: entry, Points: events}, nil
}
