package service

import (
	"context"
	"fmt"
	"ladder_backend/internal/model"
	"time"
)

func TestDayKey(day string) string      { return "test_day:" + day }
func AchievementKey(code string) string { return "achievement:" + code }
func BossBonusKey(levelID uint) string  { return fmt.Sprintf("boss_bonus:%d", levelID) }

// PointsLedger is the only writer of point totals. Each grant is an event keyed per user,
// and the totals on the streak and leaderboard rows are rewritten from the event sum.
type PointsLedger struct {
	Points      PointStore
	Streaks     StreakStore
	Leaderboard LeaderboardStore
	Now         func() time.Time
}

func NewPointsLedger(points PointStore, streaks StreakStore, leaderboard LeaderboardStore) *PointsLedger {
	return &PointsLedger{Points: points, Streaks: streaks, Leaderboard: leaderboard, Now: time.Now}
}

// Award pays amount once per (user, key). It reports whether the event is new; the totals are
// re-synced either way so a retried grant repairs a total left stale by an earlier failure.
func (l *PointsLedger) Award(ctx context.Context, userID uint, source model.PointSource, key string, amount int, reason string) (bool, error) {
	inserted, err := l.Points.Insert(ctx, &model.PointEvent{
		UserID:    userID,
		Key:       key,
		Source:    source,
		Amount:    amount,
		Reason:    reason,
		CreatedAt: l.Now(),
	})
	if err != nil {
		return false, fmt.Errorf("insert point event %s: %w", key, err)
	}
	if _, err := l.Sync(ctx, userID); err != nil {
		return inserted, err
	}
	return inserted, nil
}

// Sync writes the ledger sum to the streak row and the leaderboard row.
func (l *PointsLedger) Sync(ctx context.Context, userID uint) (int, error) {
	total, err := l.Points.Sum(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("sum points: %w", err)
	}
	if err := l.Streaks.SetTotalPoints(ctx, userID, total); err != nil {
		return total, fmt.Errorf("set streak total: %w", err)
	}
	if err := l.Leaderboard.SetTotalPoints(ctx, userID, total); err != nil {
		return total, fmt.Errorf("set leaderboard total: %w", err)
	}
	return total, nil
}

func (l *PointsLedger) Total(ctx context.Context, userID uint) (int, error) {
	return l.Points.Sum(ctx, userID)
}
