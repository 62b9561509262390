package service

import (
	"context"
	"fmt"
	"ladder_backend/internal/model"
	"ladder_backend/internal/util"
	"ladder_backend/pkg/logger"
	"time"

	"go.uber.org/zap"
)

// Advance applies the daily continuation rule to one streak track. changed is false when
// the track was already counted today.
func Advance(current, longest int, lastDay, today string) (int, int, bool) {
	if lastDay == today {
		return current, longest, false
	}
	if lastDay != "" && lastDay == util.PreviousDay(today) {
		current++
	} else {
		current = 1
	}
	if current > longest {
		longest = current
	}
	return current, longest, true
}

// StreakService 维护登录和测试两条连续记录
type StreakService struct {
	Streaks  StreakStore
	Activity ActivityStore
	Ledger   *PointsLedger
	Rules    *RuleSet
	Now      func() time.Time
}

func NewStreakService(streaks StreakStore, activity ActivityStore, ledger *PointsLedger, rules *RuleSet) *StreakService {
	return &StreakService{Streaks: streaks, Activity: activity, Ledger: ledger, Rules: rules, Now: time.Now}
}

// RecordLogin advances the login track and logs the login.
func (s *StreakService) RecordLogin(ctx context.Context, userID uint) (LoginRecorded, error) {
	today := util.Day(s.Now())
	streak, err := s.Streaks.FindOrCreate(ctx, userID)
	if err != nil {
		return LoginRecorded{}, fmt.Errorf("load streak: %w", err)
	}

	current, longest, changed := Advance(streak.CurrentLoginStreak, streak.LongestLoginStreak, streak.LastLoginDate, today)
	if changed {
		if err := s.Streaks.UpdateLoginTrack(ctx, userID, current, longest, today); err != nil {
			return LoginRecorded{}, fmt.Errorf("update login streak: %w", err)
		}
	}

	if err := s.Activity.Append(ctx, &model.ActivityLog{
		UserID:       userID,
		ActivityType: model.ActivityLogin,
		ActivityDate: today,
		CreatedAt:    s.Now(),
	}); err != nil {
		return LoginRecorded{}, fmt.Errorf("log login: %w", err)
	}

	return LoginRecorded{UserID: userID, Streak: current}, nil
}

// RecordTestPass advances the test track and pays the daily test points, once per day.
func (s *StreakService) RecordTestPass(ctx context.Context, userID uint) error {
	today := util.Day(s.Now())
	streak, err := s.Streaks.FindOrCreate(ctx, userID)
	if err != nil {
		return fmt.Errorf("load streak: %w", err)
	}

	current, longest, changed := Advance(streak.CurrentTestStreak, streak.LongestTestStreak, streak.LastTestDate, today)
	if changed {
		if err := s.Streaks.UpdateTestTrack(ctx, userID, current, longest, today); err != nil {
			return fmt.Errorf("update test streak: %w", err)
		}
		logger.Log.Debug("Test streak advanced", zap.Uint("userID", userID), zap.Int("streak", current))
	}

	_, err = s.Ledger.Award(ctx, userID, model.PointSourceTestDay, TestDayKey(today), s.Rules.Load().TestDayPoints, "Passed a test on "+today)
	return err
}
