package service

import (
	"context"
	"errors"
	"fmt"
	"ladder_backend/internal/model"
	"ladder_backend/internal/util"
	"ladder_backend/pkg/logger"
	"ladder_backend/pkg/tracing"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// ProgressService owns the per (user, level) state machine.
type ProgressService struct {
	Levels   LevelStore
	Tests    TestStore
	Attempts AttemptStore
	Progress ProgressStore
	Cascade  *CompletionCascade
	Now      func() time.Time
}

func NewProgressService(levels LevelStore, tests TestStore, attempts AttemptStore, progress ProgressStore, cascade *CompletionCascade) *ProgressService {
	return &ProgressService{
		Levels:   levels,
		Tests:    tests,
		Attempts: attempts,
		Progress: progress,
		Cascade:  cascade,
		Now:      time.Now,
	}
}

// LadderRung 天梯中一个关卡及用户在该关卡的状态
type LadderRung struct {
	LevelID     uint                 `json:"levelId"`
	Title       string               `json:"title"`
	Description string               `json:"description"`
	OrderIndex  int                  `json:"orderIndex"`
	IsBossLevel bool                 `json:"isBossLevel"`
	Status      model.ProgressStatus `json:"status"`
	StartedAt   *time.Time           `json:"startedAt,omitempty"`
	CompletedAt *time.Time           `json:"completedAt,omitempty"`
	TestCount   int                  `json:"testCount"`
}

type TestStatus struct {
	model.Test
	Passed bool `json:"passed"`
}

type LevelDetail struct {
	Level     model.Level          `json:"level"`
	Status    model.ProgressStatus `json:"status"`
	Tests     []TestStatus         `json:"tests"`
	CanAccess bool                 `json:"canAccess"`
}

func (s *ProgressService) level(ctx context.Context, levelID uint) (*model.Level, error) {
	level, err := s.Levels.FindByID(ctx, levelID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, util.ErrLevelNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load level: %w", err)
	}
	if !level.Active {
		return nil, util.ErrLevelNotFound
	}
	return level, nil
}

// Status returns StatusLocked when the user has no row for the level.
func (s *ProgressService) Status(ctx context.Context, userID, levelID uint) (model.ProgressStatus, error) {
	p, err := s.Progress.Find(ctx, userID, levelID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.StatusLocked, nil
	}
	if err != nil {
		return "", fmt.Errorf("load progress: %w", err)
	}
	return p.Status, nil
}

// CanAccess reports whether a locked level may be entered: it has no active predecessor,
// or the user completed that predecessor.
func (s *ProgressService) CanAccess(ctx context.Context, userID uint, level *model.Level) (bool, error) {
	prev, err := s.Levels.FindActiveByOrderIndex(ctx, level.OrderIndex-1)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return true, nil
	}
	if err != nil {
		return false, fmt.Errorf("find previous level: %w", err)
	}
	status, err := s.Status(ctx, userID, prev.ID)
	if err != nil {
		return false, err
	}
	return status == model.StatusCompleted, nil
}

// StartLevel moves the level to in_progress. Levels already started or finished are left alone.
func (s *ProgressService) StartLevel(ctx context.Context, userID, levelID uint) (status model.ProgressStatus, err error) {
	ctx, span := tracing.Start(ctx, "ProgressService.StartLevel", userID)
	defer func() { tracing.End(span, err) }()

	level, err := s.level(ctx, levelID)
	if err != nil {
		return "", err
	}
	return s.ensureStarted(ctx, userID, level)
}

func (s *ProgressService) ensureStarted(ctx context.Context, userID uint, level *model.Level) (model.ProgressStatus, error) {
	status, err := s.Status(ctx, userID, level.ID)
	if err != nil {
		return "", err
	}
	now := s.Now()

	switch status {
	case model.StatusLocked:
		ok, err := s.CanAccess(ctx, userID, level)
		if err != nil {
			return "", err
		}
		if !ok {
			return "", util.ErrLevelLocked
		}
		inserted, err := s.Progress.CreateIfAbsent(ctx, &model.UserProgress{
			UserID:    userID,
			LevelID:   level.ID,
			Status:    model.StatusInProgress,
			StartedAt: &now,
		})
		if err != nil {
			return "", fmt.Errorf("start level: %w", err)
		}
		if !inserted {
			return s.Status(ctx, userID, level.ID)
		}
		logger.Log.Info("Level started", zap.Uint("userID", userID), zap.Uint("levelID", level.ID))
		return model.StatusInProgress, nil

	case model.StatusUnlocked:
		if _, err := s.Progress.UpdateStatus(ctx, userID, level.ID, model.StatusUnlocked, model.StatusInProgress, now); err != nil {
			return "", fmt.Errorf("start level: %w", err)
		}
		logger.Log.Info("Level started", zap.Uint("userID", userID), zap.Uint("levelID", level.ID))
		return s.Status(ctx, userID, level.ID)
	}
	return status, nil
}

// AllTestsPassed is vacuously true for a level without tests.
func (s *ProgressService) AllTestsPassed(ctx context.Context, userID, levelID uint) (bool, error) {
	tests, err := s.Tests.ListByLevel(ctx, levelID)
	if err != nil {
		return false, fmt.Errorf("list tests: %w", err)
	}
	for _, t := range tests {
		passed, err := s.Attempts.HasPassed(ctx, userID, t.ID)
		if err != nil {
			return false, fmt.Errorf("check test %d: %w", t.ID, err)
		}
		if !passed {
			return false, nil
		}
	}
	return true, nil
}

// EvaluateLevel advances the level once every test has a passing attempt. Boss levels stop at
// awaiting_signoff; other levels complete. On a completed level the cascade is re-run as a repair.
func (s *ProgressService) EvaluateLevel(ctx context.Context, userID uint, level *model.Level) ([]Outcome, error) {
	passed, err := s.AllTestsPassed(ctx, userID, level.ID)
	if err != nil || !passed {
		return nil, err
	}

	status, err := s.Status(ctx, userID, level.ID)
	if err != nil {
		return nil, err
	}

	switch status {
	case model.StatusInProgress:
		if level.IsBossLevel {
			return s.awaitSignoff(ctx, userID, level.ID)
		}
		return s.Cascade.Complete(ctx, userID, level, status)
	case model.StatusCompleted:
		return s.Cascade.Complete(ctx, userID, level, status)
	}
	return nil, nil
}

// awaitSignoff parks a boss level until a sign-off decision.
func (s *ProgressService) awaitSignoff(ctx context.Context, userID, levelID uint) ([]Outcome, error) {
	changed, err := s.Progress.UpdateStatus(ctx, userID, levelID, model.StatusInProgress, model.StatusAwaitingSignoff, s.Now())
	if err != nil {
		return nil, fmt.Errorf("await sign-off: %w", err)
	}
	if !changed {
		return nil, nil
	}
	logger.Log.Info("Boss level awaiting sign-off", zap.Uint("userID", userID), zap.Uint("levelID", levelID))
	return []Outcome{LevelAwaitingSignoff{UserID: userID, LevelID: levelID}}, nil
}

// Ladder lists every active level in order with the user's status.
func (s *ProgressService) Ladder(ctx context.Context, userID uint) ([]LadderRung, error) {
	levels, err := s.Levels.ListActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("list levels: %w", err)
	}
	rows, err := s.Progress.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list progress: %w", err)
	}
	byLevel := make(map[uint]model.UserProgress, len(rows))
	for _, p := range rows {
		byLevel[p.LevelID] = p
	}

	ladder := make([]LadderRung, 0, len(levels))
	for _, l := range levels {
		rung := LadderRung{
			LevelID:     l.ID,
			Title:       l.Title,
			Description: l.Description,
			OrderIndex:  l.OrderIndex,
			IsBossLevel: l.IsBossLevel,
			Status:      model.StatusLocked,
			TestCount:   len(l.Tests),
		}
		if p, ok := byLevel[l.ID]; ok {
			rung.Status = p.Status
			rung.StartedAt = p.StartedAt
			rung.CompletedAt = p.CompletedAt
		}
		ladder = append(ladder, rung)
	}
	return ladder, nil
}

func (s *ProgressService) LevelDetail(ctx context.Context, userID, levelID uint) (*LevelDetail, error) {
	level, err := s.level(ctx, levelID)
	if err != nil {
		return nil, err
	}
	status, err := s.Status(ctx, userID, levelID)
	if err != nil {
		return nil, err
	}
	canAccess := status != model.StatusLocked
	if !canAccess {
		if canAccess, err = s.CanAccess(ctx, userID, level); err != nil {
			return nil, err
		}
	}

	tests, err := s.Tests.ListByLevel(ctx, levelID)
	if err != nil {
		return nil, fmt.Errorf("list tests: %w", err)
	}
	detail := &LevelDetail{Level: *level, Status: status, CanAccess: canAccess, Tests: make([]TestStatus, 0, len(tests))}
	for _, t := range tests {
		passed, err := s.Attempts.HasPassed(ctx, userID, t.ID)
		if err != nil {
			return nil, fmt.Errorf("check test %d: %w", t.ID, err)
		}
		detail.Tests = append(detail.Tests, TestStatus{Test: t, Passed: passed})
	}
	return detail, nil
}
