package service

import (
	"context"
	"errors"
	"fmt"
	"ladder_backend/internal/model"
	"ladder_backend/internal/util"
	"ladder_backend/pkg/logger"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

type EnrollmentInput struct {
	Note string `json:"note" validate:"max=2000"`
}

type CohortAssignInput struct {
	PathwayID uint       `json:"pathwayId" validate:"required"`
	Deadline  *time.Time `json:"deadline"`
}

// EnrollmentService puts users on pathways, either on request or through a cohort.
// Both routes unlock the pathway's first level with insert-or-ignore.
type EnrollmentService struct {
	Pathways PathwayStore
	Cohorts  CohortStore
	Users    UserStore
	Progress ProgressStore
	Now      func() time.Time
}

func NewEnrollmentService(pathways PathwayStore, cohorts CohortStore, users UserStore, progress ProgressStore) *EnrollmentService {
	return &EnrollmentService{Pathways: pathways, Cohorts: cohorts, Users: users, Progress: progress, Now: time.Now}
}

func (s *EnrollmentService) pathway(ctx context.Context, id uint) (*model.Pathway, error) {
	p, err := s.Pathways.FindByID(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, util.ErrPathwayNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load pathway: %w", err)
	}
	if !p.Active {
		return nil, util.ErrPathwayNotFound
	}
	return p, nil
}

// Request creates a pending enrollment for the consultant.
func (s *EnrollmentService) Request(ctx context.Context, userID, pathwayID uint, in EnrollmentInput) (*model.PathwayEnrollment, error) {
	if _, err := s.pathway(ctx, pathwayID); err != nil {
		return nil, err
	}

	enrolled, err := s.Pathways.HasEnrollment(ctx, userID, pathwayID, model.EnrollmentApproved)
	if err != nil {
		return nil, fmt.Errorf("check enrollment: %w", err)
	}
	if enrolled {
		return nil, util.ErrAlreadyEnrolled
	}
	pending, err := s.Pathways.HasEnrollment(ctx, userID, pathwayID, model.EnrollmentPending)
	if err != nil {
		return nil, fmt.Errorf("check enrollment: %w", err)
	}
	if pending {
		return nil, util.ErrEnrollmentPending
	}

	e := &model.PathwayEnrollment{
		UserID:      userID,
		PathwayID:   pathwayID,
		Status:      model.EnrollmentPending,
		RequestNote: strings.TrimSpace(in.Note),
		RequestedAt: s.Now(),
	}
	if err := s.Pathways.CreateEnrollment(ctx, e); err != nil {
		return nil, fmt.Errorf("create enrollment: %w", err)
	}
	return e, nil
}

// reviewable loads a pending enrollment the reviewer may decide. Bosses only decide for their direct reports.
func (s *EnrollmentService) reviewable(ctx context.Context, reviewerID uint, role model.UserRole, enrollmentID uint) (*model.PathwayEnrollment, error) {
	e, err := s.Pathways.FindEnrollmentByID(ctx, enrollmentID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, util.ErrEnrollmentNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load enrollment: %w", err)
	}
	if role != model.Admin {
		ok, err := s.Users.IsDirectReport(ctx, reviewerID, e.UserID)
		if err != nil {
			return nil, fmt.Errorf("check relationship: %w", err)
		}
		if !ok {
			return nil, util.ErrNotPathwayMember
		}
	}
	if e.Status != model.EnrollmentPending {
		return nil, util.ErrRequestProcessed
	}
	return e, nil
}

func (s *EnrollmentService) Approve(ctx context.Context, reviewerID uint, role model.UserRole, enrollmentID uint, note string) (*model.PathwayEnrollment, error) {
	e, err := s.reviewable(ctx, reviewerID, role, enrollmentID)
	if err != nil {
		return nil, err
	}
	now := s.Now()
	closed, err := s.Pathways.DecideEnrollment(ctx, e.ID, model.EnrollmentApproved, strings.TrimSpace(note), reviewerID, now)
	if err != nil {
		return nil, fmt.Errorf("approve enrollment: %w", err)
	}
	if !closed {
		return nil, util.ErrRequestProcessed
	}
	e.Status, e.ResponseNote, e.ReviewedBy, e.ReviewedAt = model.EnrollmentApproved, strings.TrimSpace(note), &reviewerID, &now

	if err := s.unlockFirstLevel(ctx, e.UserID, e.PathwayID); err != nil {
		return nil, err
	}
	return e, nil
}

func (s *EnrollmentService) Reject(ctx context.Context, reviewerID uint, role model.UserRole, enrollmentID uint, note string) (*model.PathwayEnrollment, error) {
	e, err := s.reviewable(ctx, reviewerID, role, enrollmentID)
	if err != nil {
		return nil, err
	}
	now := s.Now()
	closed, err := s.Pathways.DecideEnrollment(ctx, e.ID, model.EnrollmentRejected, strings.TrimSpace(note), reviewerID, now)
	if err != nil {
		return nil, fmt.Errorf("reject enrollment: %w", err)
	}
	if !closed {
		return nil, util.ErrRequestProcessed
	}
	e.Status, e.ResponseNote, e.ReviewedBy, e.ReviewedAt = model.EnrollmentRejected, strings.TrimSpace(note), &reviewerID, &now
	return e, nil
}

// ListPending returns the pending enrollments the reviewer may decide.
func (s *EnrollmentService) ListPending(ctx context.Context, reviewerID uint, role model.UserRole) ([]model.PathwayEnrollment, error) {
	all, err := s.Pathways.ListPendingEnrollments(ctx)
	if err != nil || role == model.Admin {
		return all, err
	}
	mine := make([]model.PathwayEnrollment, 0, len(all))
	for _, e := range all {
		ok, err := s.Users.IsDirectReport(ctx, reviewerID, e.UserID)
		if err != nil {
			return nil, fmt.Errorf("check relationship: %w", err)
		}
		if ok {
			mine = append(mine, e)
		}
	}
	return mine, nil
}

// AssignCohort links a pathway to a cohort and unlocks its first level for every member.
// It returns how many members gained a new unlocked level.
func (s *EnrollmentService) AssignCohort(ctx context.Context, adminID, cohortID uint, in CohortAssignInput) (int, error) {
	if _, err := s.Cohorts.FindByID(ctx, cohortID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, util.ErrCohortNotFound
		}
		return 0, fmt.Errorf("load cohort: %w", err)
	}
	if _, err := s.pathway(ctx, in.PathwayID); err != nil {
		return 0, err
	}

	assigned, err := s.Cohorts.AssignPathway(ctx, &model.CohortPathway{
		CohortID:   cohortID,
		PathwayID:  in.PathwayID,
		Deadline:   in.Deadline,
		AssignedBy: adminID,
	})
	if err != nil {
		return 0, fmt.Errorf("assign pathway: %w", err)
	}
	if !assigned {
		return 0, util.ErrPathwayAssigned
	}

	members, err := s.Cohorts.ListMemberIDs(ctx, cohortID)
	if err != nil {
		return 0, fmt.Errorf("list members: %w", err)
	}
	levelID, err := s.firstLevel(ctx, in.PathwayID)
	if err != nil || levelID == 0 {
		return 0, err
	}

	unlocked := 0
	for _, userID := range members {
		inserted, err := s.unlock(ctx, userID, levelID, in.PathwayID)
		if err != nil {
			return unlocked, err
		}
		if inserted {
			unlocked++
		}
	}
	logger.Log.Info("Pathway assigned to cohort",
		zap.Uint("cohortID", cohortID),
		zap.Uint("pathwayID", in.PathwayID),
		zap.Int("members", len(members)),
		zap.Int("unlocked", unlocked))
	return unlocked, nil
}

// firstLevel returns 0 for a pathway without active levels.
func (s *EnrollmentService) firstLevel(ctx context.Context, pathwayID uint) (uint, error) {
	levelID, err := s.Pathways.FirstLevelID(ctx, pathwayID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		logger.Log.Warn("Pathway has no active levels", zap.Uint("pathwayID", pathwayID))
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("find first pathway level: %w", err)
	}
	return levelID, nil
}

func (s *EnrollmentService) unlockFirstLevel(ctx context.Context, userID, pathwayID uint) error {
	levelID, err := s.firstLevel(ctx, pathwayID)
	if err != nil || levelID == 0 {
		return err
	}
	_, err = s.unlock(ctx, userID, levelID, pathwayID)
	return err
}

func (s *EnrollmentService) unlock(ctx context.Context, userID, levelID, pathwayID uint) (bool, error) {
	pid := pathwayID
	inserted, err := s.Progress.CreateIfAbsent(ctx, &model.UserProgress{
		UserID:    userID,
		LevelID:   levelID,
		PathwayID: &pid,
		Status:    model.StatusUnlocked,
	})
	if err != nil {
		return false, fmt.Errorf("unlock level %d: %w", levelID, err)
	}
	return inserted, nil
}
