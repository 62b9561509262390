package service

import (
	"context"
	"errors"
	"fmt"
	"ladder_backend/internal/model"
	"ladder_backend/internal/util"
	"ladder_backend/pkg/logger"
	"ladder_backend/pkg/monitoring"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// CompletionCascade runs the bookkeeping that follows a level reaching completed.
// Every step is idempotent, so re-running Complete after a partial failure converges.
type CompletionCascade struct {
	Levels      LevelStore
	Progress    ProgressStore
	Activity    ActivityStore
	Leaderboard LeaderboardStore
	Ledger      *PointsLedger
	Rules       *RuleSet
	Now         func() time.Time
}

func NewCompletionCascade(
	levels LevelStore,
	progress ProgressStore,
	activity ActivityStore,
	leaderboard LeaderboardStore,
	ledger *PointsLedger,
	rules *RuleSet,
) *CompletionCascade {
	return &CompletionCascade{
		Levels:      levels,
		Progress:    progress,
		Activity:    activity,
		Leaderboard: leaderboard,
		Ledger:      ledger,
		Rules:       rules,
		Now:         time.Now,
	}
}

// Complete marks level completed for userID, coming from the status the caller observed.
func (c *CompletionCascade) Complete(ctx context.Context, userID uint, level *model.Level, from model.ProgressStatus) ([]Outcome, error) {
	now := c.Now()

	repeat, err := c.markCompleted(ctx, userID, level.ID, from, now)
	if err != nil {
		return nil, err
	}

	if err := c.logCompletion(ctx, userID, level.ID, now); err != nil {
		return nil, err
	}

	if err := c.refreshLeaderboard(ctx, userID); err != nil {
		return nil, err
	}

	if level.IsBossLevel {
		reason := fmt.Sprintf("Boss level %q approved", level.Title)
		if _, err := c.Ledger.Award(ctx, userID, model.PointSourceBossBonus, BossBonusKey(level.ID), c.Rules.Load().BossBonusPoints, reason); err != nil {
			return nil, err
		}
	}

	if err := c.unlockNext(ctx, userID, level); err != nil {
		return nil, err
	}

	if !repeat {
		kind := "regular"
		if level.IsBossLevel {
			kind = "boss"
		}
		monitoring.LevelCompletions.WithLabelValues(kind).Inc()
		logger.Log.Info("Level completed",
			zap.Uint("userID", userID),
			zap.Uint("levelID", level.ID),
			zap.Bool("boss", level.IsBossLevel))
	}

	return []Outcome{LevelCompleted{UserID: userID, LevelID: level.ID, Boss: level.IsBossLevel, Repeat: repeat}}, nil
}

// markCompleted reports repeat=true when the row was already completed before this run.
func (c *CompletionCascade) markCompleted(ctx context.Context, userID, levelID uint, from model.ProgressStatus, now time.Time) (bool, error) {
	switch from {
	case model.StatusCompleted:
		return true, nil
	case model.StatusLocked:
		inserted, err := c.Progress.CreateIfAbsent(ctx, &model.UserProgress{
			UserID:      userID,
			LevelID:     levelID,
			Status:      model.StatusCompleted,
			StartedAt:   &now,
			CompletedAt: &now,
		})
		if err != nil {
			return false, fmt.Errorf("create completed progress: %w", err)
		}
		if inserted {
			return false, nil
		}
	default:
		if !from.CanTransition(model.StatusCompleted) {
			return false, fmt.Errorf("cannot complete level %d from %s", levelID, from)
		}
		changed, err := c.Progress.UpdateStatus(ctx, userID, levelID, from, model.StatusCompleted, now)
		if err != nil {
			return false, fmt.Errorf("complete level: %w", err)
		}
		if changed {
			return false, nil
		}
	}

	// the row moved under us; only a concurrent completion is acceptable
	p, err := c.Progress.Find(ctx, userID, levelID)
	if err != nil {
		return false, fmt.Errorf("reload progress: %w", err)
	}
	if p.Status != model.StatusCompleted {
		return false, fmt.Errorf("level %d is %s, expected %s", levelID, p.Status, from)
	}
	return true, nil
}

func (c *CompletionCascade) logCompletion(ctx context.Context, userID, levelID uint, now time.Time) error {
	logged, err := c.Activity.Exists(ctx, userID, model.ActivityLevelComplete, levelID)
	if err != nil {
		return fmt.Errorf("check completion log: %w", err)
	}
	if logged {
		return nil
	}
	ref := levelID
	if err := c.Activity.Append(ctx, &model.ActivityLog{
		UserID:       userID,
		ActivityType: model.ActivityLevelComplete,
		ActivityDate: util.Day(now),
		RefID:        &ref,
		CreatedAt:    now,
	}); err != nil {
		return fmt.Errorf("log completion: %w", err)
	}
	return nil
}

func (c *CompletionCascade) refreshLeaderboard(ctx context.Context, userID uint) error {
	rungs, err := c.Progress.CountByStatus(ctx, userID, model.StatusCompleted)
	if err != nil {
		return fmt.Errorf("count rungs: %w", err)
	}
	points, err := c.Ledger.Total(ctx, userID)
	if err != nil {
		return fmt.Errorf("sum points: %w", err)
	}
	if err := c.Leaderboard.Upsert(ctx, userID, int(rungs), points); err != nil {
		return fmt.Errorf("update leaderboard: %w", err)
	}
	return nil
}

// unlockNext makes the following active level reachable without touching a row that is further along.
func (c *CompletionCascade) unlockNext(ctx context.Context, userID uint, level *model.Level) error {
	next, err := c.Levels.FindActiveByOrderIndex(ctx, level.OrderIndex+1)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("find next level: %w", err)
	}

	inserted, err := c.Progress.CreateIfAbsent(ctx, &model.UserProgress{
		UserID:  userID,
		LevelID: next.ID,
		Status:  model.StatusUnlocked,
	})
	if err != nil {
		return fmt.Errorf("unlock level %d: %w", next.ID, err)
	}
	if inserted {
		logger.Log.Info("Level unlocked", zap.Uint("userID", userID), zap.Uint("levelID", next.ID))
		return nil
	}

	existing, err := c.Progress.Find(ctx, userID, next.ID)
	if err != nil {
		return fmt.Errorf("load next progress: %w", err)
	}
	if existing.Status.Rank() > model.StatusUnlocked.Rank() {
		logger.Log.Warn("Next level already past unlocked, left as is",
			zap.Uint("userID", userID),
			zap.Uint("levelID", next.ID),
			zap.String("status", string(existing.Status)))
	}
	return nil
}
