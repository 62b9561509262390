package service

import (
	"context"
	"errors"
	"fmt"
	"ladder_backend/internal/model"
	"ladder_backend/internal/util"
	"ladder_backend/pkg/logger"
	"ladder_backend/pkg/monitoring"
	"ladder_backend/pkg/tracing"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

const signoffListLimit = 100

// SignoffInput 顾问提交的签核证据
type SignoffInput struct {
	BossID        uint   `json:"bossId"`
	EvidenceNotes string `json:"evidenceNotes" validate:"max=5000"`
	EvidenceURL   string `json:"evidenceUrl" validate:"omitempty,url,max=512"`
}

type SignoffDetail struct {
	Request  model.SignoffView      `json:"request"`
	Attempts []model.AttemptSummary `json:"attempts"`
}

type SignoffDecision struct {
	Request         *model.SignoffRequest `json:"request"`
	NewAchievements []model.Achievement   `json:"newAchievements,omitempty"`
}

type SignoffService struct {
	Signoffs     SignoffStore
	Users        UserStore
	Levels       LevelStore
	Attempts     AttemptStore
	Progress     *ProgressService
	Achievements *AchievementService
	Now          func() time.Time
}

func NewSignoffService(
	signoffs SignoffStore,
	users UserStore,
	levels LevelStore,
	attempts AttemptStore,
	progress *ProgressService,
	achievements *AchievementService,
) *SignoffService {
	return &SignoffService{
		Signoffs:     signoffs,
		Users:        users,
		Levels:       levels,
		Attempts:     attempts,
		Progress:     progress,
		Achievements: achievements,
		Now:          time.Now,
	}
}

// Request opens a sign-off request for a boss level whose tests are all passed.
// The level must be reachable; it is started if needed and parked at awaiting_signoff.
func (s *SignoffService) Request(ctx context.Context, userID, levelID uint, in SignoffInput) (req *model.SignoffRequest, err error) {
	ctx, span := tracing.Start(ctx, "SignoffService.Request", userID)
	defer func() { tracing.End(span, err) }()

	level, err := s.Progress.level(ctx, levelID)
	if err != nil {
		return nil, err
	}
	if !level.IsBossLevel {
		return nil, util.ErrNotBossLevel
	}

	status, err := s.Progress.Status(ctx, userID, levelID)
	if err != nil {
		return nil, err
	}
	switch status {
	case model.StatusCompleted:
		return nil, util.ErrLevelCompleted
	case model.StatusLocked:
		ok, err := s.Progress.CanAccess(ctx, userID, level)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, util.ErrLevelLocked
		}
	}

	passed, err := s.Progress.AllTestsPassed(ctx, userID, levelID)
	if err != nil {
		return nil, err
	}
	if !passed {
		return nil, util.ErrTestsNotPassed
	}

	_, err = s.Signoffs.FindPending(ctx, userID, levelID)
	if err == nil {
		return nil, util.ErrSignoffPending
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("check pending request: %w", err)
	}

	bossID, err := s.pickBoss(ctx, userID, in.BossID)
	if err != nil {
		return nil, err
	}

	if status, err = s.Progress.ensureStarted(ctx, userID, level); err != nil {
		return nil, err
	}
	// a re-request after rejection, or a level without tests, parks the level here
	if status == model.StatusInProgress {
		if _, err := s.Progress.Progress.UpdateStatus(ctx, userID, levelID, model.StatusInProgress, model.StatusAwaitingSignoff, s.Now()); err != nil {
			return nil, fmt.Errorf("await sign-off: %w", err)
		}
	}

	req = &model.SignoffRequest{
		UserID:        userID,
		LevelID:       levelID,
		BossID:        bossID,
		EvidenceNotes: strings.TrimSpace(in.EvidenceNotes),
		EvidenceURL:   strings.TrimSpace(in.EvidenceURL),
		Status:        model.SignoffPending,
		RequestedAt:   s.Now(),
	}
	if err := s.Signoffs.Create(ctx, req); err != nil {
		return nil, fmt.Errorf("create sign-off request: %w", err)
	}
	logger.Log.Info("Sign-off requested",
		zap.Uint("userID", userID),
		zap.Uint("levelID", levelID),
		zap.Uint("bossID", bossID))
	return req, nil
}

// pickBoss validates the chosen boss, or picks the only one the consultant has.
func (s *SignoffService) pickBoss(ctx context.Context, userID, requested uint) (uint, error) {
	bosses, err := s.Users.ListBossesOf(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("list bosses: %w", err)
	}
	if len(bosses) == 0 {
		return 0, util.ErrNoBossAssigned
	}
	if requested != 0 {
		for _, b := range bosses {
			if b.ID == requested {
				return requested, nil
			}
		}
		return 0, util.ErrInvalidBoss
	}
	if len(bosses) == 1 {
		return bosses[0].ID, nil
	}
	return 0, util.ErrBossRequired
}

func (s *SignoffService) ownedBy(ctx context.Context, requestID, bossID uint) (*model.SignoffRequest, error) {
	req, err := s.Signoffs.FindByID(ctx, requestID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, util.ErrRequestNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load request: %w", err)
	}
	if req.BossID != bossID {
		return nil, util.ErrNotRequestOwner
	}
	return req, nil
}

func (s *SignoffService) pendingFor(ctx context.Context, requestID, bossID uint) (*model.SignoffRequest, error) {
	req, err := s.ownedBy(ctx, requestID, bossID)
	if err != nil {
		return nil, err
	}
	if req.Status != model.SignoffPending {
		return nil, util.ErrRequestProcessed
	}
	return req, nil
}

// Approve completes the level through the cascade, then closes the request and grants
// the boss achievements. The request stays pending until the cascade has gone through,
// so a failed approval is retried by approving again. Approving an already approved
// request re-runs the idempotent steps and changes nothing once they have all landed.
func (s *SignoffService) Approve(ctx context.Context, requestID, bossID uint, feedback string) (decision *SignoffDecision, err error) {
	ctx, span := tracing.Start(ctx, "SignoffService.Approve", bossID)
	defer func() { tracing.End(span, err) }()

	req, err := s.ownedBy(ctx, requestID, bossID)
	if err != nil {
		return nil, err
	}
	if req.Status == model.SignoffRejected {
		return nil, util.ErrRequestProcessed
	}
	level, err := s.Levels.FindByID(ctx, req.LevelID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, util.ErrLevelNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load level: %w", err)
	}

	status, err := s.Progress.Status(ctx, req.UserID, req.LevelID)
	if err != nil {
		return nil, err
	}
	if status != model.StatusAwaitingSignoff && status != model.StatusCompleted {
		return nil, util.ErrNotAwaitingSignoff
	}
	outcomes, err := s.Progress.Cascade.Complete(ctx, req.UserID, level, status)
	if err != nil {
		return nil, err
	}

	if req.Status == model.SignoffPending {
		now := s.Now()
		feedback = strings.TrimSpace(feedback)
		closed, err := s.Signoffs.Decide(ctx, req.ID, model.SignoffApproved, feedback, now)
		if err != nil {
			return nil, fmt.Errorf("approve request: %w", err)
		}
		if !closed {
			return nil, util.ErrRequestProcessed
		}
		req.Status, req.BossFeedback, req.ReviewedAt = model.SignoffApproved, feedback, &now
		monitoring.SignoffDecisions.WithLabelValues(string(model.SignoffApproved)).Inc()
		logger.Log.Info("Sign-off approved",
			zap.Uint("requestID", req.ID),
			zap.Uint("userID", req.UserID),
			zap.Uint("levelID", req.LevelID))
	}
	outcomes = append(outcomes, SignoffApproved{UserID: req.UserID, LevelID: req.LevelID, RequestID: req.ID})

	granted, err := s.Achievements.React(ctx, req.UserID, outcomes)
	if err != nil {
		return nil, err
	}
	return &SignoffDecision{Request: req, NewAchievements: granted}, nil
}

// Reject needs feedback; the level goes back to in_progress and passed tests stay passed.
func (s *SignoffService) Reject(ctx context.Context, requestID, bossID uint, feedback string) (req *model.SignoffRequest, err error) {
	ctx, span := tracing.Start(ctx, "SignoffService.Reject", bossID)
	defer func() { tracing.End(span, err) }()

	feedback = strings.TrimSpace(feedback)
	if feedback == "" {
		return nil, util.ErrFeedbackRequired
	}
	req, err = s.pendingFor(ctx, requestID, bossID)
	if err != nil {
		return nil, err
	}
	// an approval that failed part way has already completed the level
	status, err := s.Progress.Status(ctx, req.UserID, req.LevelID)
	if err != nil {
		return nil, err
	}
	if status == model.StatusCompleted {
		return nil, util.ErrLevelCompleted
	}

	now := s.Now()
	closed, err := s.Signoffs.Decide(ctx, req.ID, model.SignoffRejected, feedback, now)
	if err != nil {
		return nil, fmt.Errorf("reject request: %w", err)
	}
	if !closed {
		return nil, util.ErrRequestProcessed
	}
	req.Status, req.BossFeedback, req.ReviewedAt = model.SignoffRejected, feedback, &now
	monitoring.SignoffDecisions.WithLabelValues(string(model.SignoffRejected)).Inc()

	if _, err := s.Progress.Progress.UpdateStatus(ctx, req.UserID, req.LevelID, model.StatusAwaitingSignoff, model.StatusInProgress, now); err != nil {
		return nil, fmt.Errorf("reopen level: %w", err)
	}
	logger.Log.Info("Sign-off rejected",
		zap.Uint("requestID", req.ID),
		zap.Uint("userID", req.UserID),
		zap.Uint("levelID", req.LevelID))
	return req, nil
}

func (s *SignoffService) ListMine(ctx context.Context, userID uint) ([]model.SignoffView, error) {
	return s.Signoffs.ListByUser(ctx, userID)
}

func (s *SignoffService) ListPending(ctx context.Context, bossID uint) ([]model.SignoffView, error) {
	return s.Signoffs.ListByBoss(ctx, bossID, model.SignoffPending, -1)
}

func (s *SignoffService) ListAll(ctx context.Context, bossID uint) ([]model.SignoffView, error) {
	return s.Signoffs.ListByBoss(ctx, bossID, "", signoffListLimit)
}

// Detail shows a request to its boss along with the passing attempts behind it.
func (s *SignoffService) Detail(ctx context.Context, requestID, bossID uint) (*SignoffDetail, error) {
	view, err := s.Signoffs.FindView(ctx, requestID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, util.ErrRequestNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load request: %w", err)
	}
	if view.BossID != bossID {
		return nil, util.ErrNotRequestOwner
	}
	attempts, err := s.Attempts.ListPassedForLevel(ctx, view.UserID, view.LevelID)
	if err != nil {
		return nil, fmt.Errorf("list attempts: %w", err)
	}
	return &SignoffDetail{Request: *view, Attempts: attempts}, nil
}

func (s *SignoffService) MyBosses(ctx context.Context, userID uint) ([]model.User, error) {
	return s.Users.ListBossesOf(ctx, userID)
}
