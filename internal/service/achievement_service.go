package service

import (
	"context"
	"errors"
	"fmt"
	"ladder_backend/internal/model"
	"ladder_backend/pkg/logger"
	"ladder_backend/pkg/monitoring"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Snapshot is what the achievement rules look at: which outcomes just happened plus the user's counters.
type Snapshot struct {
	TestPassed     bool
	PerfectScore   bool
	LevelCompleted bool
	BossReviewed   bool

	PassedTests        int64
	CompletedLevels    int64
	LoginStreak        int64
	CompletedBoss      int64
	RejectedBoss       int64
	ApprovedBossLevels int64
	ActiveBossLevels   int64
}

type achievementRule struct {
	code  string
	check func(s Snapshot) bool
}

// speed_demon, comeback, top_10, top_3 and rank_1 are catalog entries without a rule.
var achievementRules = []achievementRule{
	{"first_test", func(s Snapshot) bool { return s.TestPassed && s.PassedTests >= 1 }},
	{"perfect_score", func(s Snapshot) bool { return s.TestPassed && s.PerfectScore }},
	{"level_10", func(s Snapshot) bool { return s.LevelCompleted && s.CompletedLevels >= 10 }},
	{"level_25", func(s Snapshot) bool { return s.LevelCompleted && s.CompletedLevels >= 25 }},
	{"level_50", func(s Snapshot) bool { return s.LevelCompleted && s.CompletedLevels >= 50 }},
	{"streak_10", func(s Snapshot) bool { return s.LoginStreak >= 10 }},
	{"streak_50", func(s Snapshot) bool { return s.LoginStreak >= 50 }},
	{"streak_100", func(s Snapshot) bool { return s.LoginStreak >= 100 }},
	{"boss_complete", func(s Snapshot) bool { return s.BossReviewed && s.CompletedBoss >= 1 }},
	{"boss_perfect", func(s Snapshot) bool {
		return s.BossReviewed && s.RejectedBoss == 0 && s.ActiveBossLevels > 0 && s.ApprovedBossLevels >= s.ActiveBossLevels
	}},
}

// Qualify returns the codes whose rule holds for s, in catalog order.
func Qualify(s Snapshot) []string {
	var codes []string
	for _, rule := range achievementRules {
		if rule.check(s) {
			codes = append(codes, rule.code)
		}
	}
	return codes
}

type AchievementService struct {
	Achievements AchievementStore
	Attempts     AttemptStore
	Progress     ProgressStore
	Streaks      StreakStore
	Signoffs     SignoffStore
	Levels       LevelStore
	Ledger       *PointsLedger
	Now          func() time.Time
}

func NewAchievementService(
	achievements AchievementStore,
	attempts AttemptStore,
	progress ProgressStore,
	streaks StreakStore,
	signoffs SignoffStore,
	levels LevelStore,
	ledger *PointsLedger,
) *AchievementService {
	return &AchievementService{
		Achievements: achievements,
		Attempts:     attempts,
		Progress:     progress,
		Streaks:      streaks,
		Signoffs:     signoffs,
		Levels:       levels,
		Ledger:       ledger,
		Now:          time.Now,
	}
}

// React evaluates the rules after outcomes for userID and grants what qualifies.
// Held achievements are skipped by the store and their points are keyed in the ledger,
// so calling React again with the same outcomes changes nothing.
func (s *AchievementService) React(ctx context.Context, userID uint, outcomes []Outcome) ([]model.Achievement, error) {
	snap, err := s.snapshot(ctx, userID, outcomes)
	if err != nil {
		return nil, err
	}

	var granted []model.Achievement
	for _, code := range Qualify(snap) {
		a, isNew, err := s.grant(ctx, userID, code)
		if err != nil {
			return granted, err
		}
		if isNew {
			granted = append(granted, *a)
		}
	}
	return granted, nil
}

func (s *AchievementService) snapshot(ctx context.Context, userID uint, outcomes []Outcome) (Snapshot, error) {
	var snap Snapshot
	for _, o := range outcomes {
		switch o := o.(type) {
		case TestPassed:
			snap.TestPassed = true
			snap.PerfectScore = snap.PerfectScore || o.Perfect
		case LevelCompleted:
			snap.LevelCompleted = true
			if o.Boss {
				snap.BossReviewed = true
			}
		case SignoffApproved:
			snap.BossReviewed = true
		}
	}

	var err error
	if snap.TestPassed {
		if snap.PassedTests, err = s.Attempts.CountPassedTests(ctx, userID); err != nil {
			return snap, fmt.Errorf("count passed tests: %w", err)
		}
	}
	if snap.LevelCompleted {
		if snap.CompletedLevels, err = s.Progress.CountByStatus(ctx, userID, model.StatusCompleted); err != nil {
			return snap, fmt.Errorf("count completed levels: %w", err)
		}
	}
	if snap.BossReviewed {
		if snap.CompletedBoss, err = s.Progress.CountCompletedBoss(ctx, userID); err != nil {
			return snap, fmt.Errorf("count completed boss levels: %w", err)
		}
		if snap.RejectedBoss, err = s.Signoffs.CountRejectedBoss(ctx, userID); err != nil {
			return snap, fmt.Errorf("count rejected sign-offs: %w", err)
		}
		if snap.ApprovedBossLevels, err = s.Signoffs.CountApprovedBossLevels(ctx, userID); err != nil {
			return snap, fmt.Errorf("count approved boss levels: %w", err)
		}
		if snap.ActiveBossLevels, err = s.Levels.CountActiveBoss(ctx); err != nil {
			return snap, fmt.Errorf("count boss levels: %w", err)
		}
	}

	streak, err := s.Streaks.Find(ctx, userID)
	switch {
	case err == nil:
		snap.LoginStreak = int64(streak.CurrentLoginStreak)
	case !errors.Is(err, gorm.ErrRecordNotFound):
		return snap, fmt.Errorf("load streak: %w", err)
	}
	return snap, nil
}

func (s *AchievementService) grant(ctx context.Context, userID uint, code string) (*model.Achievement, bool, error) {
	a, err := s.Achievements.FindByCode(ctx, code)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		logger.Log.Warn("Achievement missing from catalog", zap.String("code", code))
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("find achievement %s: %w", code, err)
	}

	isNew, err := s.Achievements.Grant(ctx, userID, a.ID, s.Now())
	if err != nil {
		return nil, false, fmt.Errorf("grant achievement %s: %w", code, err)
	}
	if _, err := s.Ledger.Award(ctx, userID, model.PointSourceAchievement, AchievementKey(code), a.Points, a.Title); err != nil {
		return nil, false, err
	}

	if isNew {
		monitoring.AchievementsGranted.WithLabelValues(code).Inc()
		logger.Log.Info("Achievement granted",
			zap.Uint("userID", userID),
			zap.String("code", code),
			zap.Int("points", a.Points))
	}
	return a, isNew, nil
}

func (s *AchievementService) ListEarned(ctx context.Context, userID uint) ([]model.EarnedAchievement, error) {
	return s.Achievements.ListEarned(ctx, userID)
}
