package service

import (
	"context"
	"ladder_backend/internal/model"
	"time"
)

// The engine depends on these narrow stores; internal/repository provides the gorm versions.

type LevelStore interface {
	FindByID(ctx context.Context, id uint) (*model.Level, error)
	FindActiveByOrderIndex(ctx context.Context, orderIndex int) (*model.Level, error)
	ListActive(ctx context.Context) ([]model.Level, error)
	CountActiveBoss(ctx context.Context) (int64, error)
}

type TestStore interface {
	FindByID(ctx context.Context, id uint) (*model.Test, error)
	ListByLevel(ctx context.Context, levelID uint) ([]model.Test, error)
	ListQuestions(ctx context.Context, testID uint) ([]model.Question, error)
}

type AttemptStore interface {
	Create(ctx context.Context, attempt *model.TestAttempt) error
	HasPassed(ctx context.Context, userID, testID uint) (bool, error)
	CountPassedTests(ctx context.Context, userID uint) (int64, error)
	ListRecent(ctx context.Context, userID uint, limit int) ([]model.AttemptSummary, error)
	ListPassedForLevel(ctx context.Context, userID, levelID uint) ([]model.AttemptSummary, error)
}

type ProgressStore interface {
	Find(ctx context.Context, userID, levelID uint) (*model.UserProgress, error)
	CreateIfAbsent(ctx context.Context, p *model.UserProgress) (bool, error)
	UpdateStatus(ctx context.Context, userID, levelID uint, from, to model.ProgressStatus, at time.Time) (bool, error)
	CountByStatus(ctx context.Context, userID uint, status model.ProgressStatus) (int64, error)
	CountCompletedBoss(ctx context.Context, userID uint) (int64, error)
	ListByUser(ctx context.Context, userID uint) ([]model.UserProgress, error)
}

type StreakStore interface {
	Find(ctx context.Context, userID uint) (*model.UserStreak, error)
	FindOrCreate(ctx context.Context, userID uint) (*model.UserStreak, error)
	UpdateLoginTrack(ctx context.Context, userID uint, current, longest int, day string) error
	UpdateTestTrack(ctx context.Context, userID uint, current, longest int, day string) error
	SetTotalPoints(ctx context.Context, userID uint, total int) error
}

type ActivityStore interface {
	Append(ctx context.Context, entry *model.ActivityLog) error
	Exists(ctx context.Context, userID uint, activityType model.ActivityType, refID uint) (bool, error)
}

type PointStore interface {
	Insert(ctx context.Context, event *model.PointEvent) (bool, error)
	Sum(ctx context.Context, userID uint) (int, error)
	ListRecent(ctx context.Context, userID uint, limit int) ([]model.PointEvent, error)
}

type AchievementStore interface {
	FindByCode(ctx context.Context, code string) (*model.Achievement, error)
	Grant(ctx context.Context, userID, achievementID uint, at time.Time) (bool, error)
	ListEarned(ctx context.Context, userID uint) ([]model.EarnedAchievement, error)
}

type LeaderboardStore interface {
	Upsert(ctx context.Context, userID uint, rungs, points int) error
	SetTotalPoints(ctx context.Context, userID uint, points int) error
	FindByUser(ctx context.Context, userID uint) (*model.LeaderboardEntry, error)
	ListTop(ctx context.Context, limit int) ([]model.RankedEntry, error)
	UpdateRanks(ctx context.Context, ranks map[uint]int) error
}

type SignoffStore interface {
	Create(ctx context.Context, req *model.SignoffRequest) error
	FindByID(ctx context.Context, id uint) (*model.SignoffRequest, error)
	FindPending(ctx context.Context, userID, levelID uint) (*model.SignoffRequest, error)
	Decide(ctx context.Context, id uint, status model.SignoffStatus, feedback string, at time.Time) (bool, error)
	CountRejectedBoss(ctx context.Context, userID uint) (int64, error)
	CountApprovedBossLevels(ctx context.Context, userID uint) (int64, error)
	ListByBoss(ctx context.Context, bossID uint, status model.SignoffStatus, limit int) ([]model.SignoffView, error)
	ListByUser(ctx context.Context, userID uint) ([]model.SignoffView, error)
	FindView(ctx context.Context, id uint) (*model.SignoffView, error)
}

type UserStore interface {
	Create(ctx context.Context, user *model.User) error
	FindByID(ctx context.Context, id uint) (*model.User, error)
	FindByEmail(ctx context.Context, email string) (*model.User, error)
	TouchLastLogin(ctx context.Context, id uint, at time.Time) error
	ListBossesOf(ctx context.Context, consultantID uint) ([]model.User, error)
	IsDirectReport(ctx context.Context, bossID, consultantID uint) (bool, error)
	ListTeam(ctx context.Context, bossID uint) ([]model.User, error)
}

type PathwayStore interface {
	FindByID(ctx context.Context, id uint) (*model.Pathway, error)
	FirstLevelID(ctx context.Context, pathwayID uint) (uint, error)
	CreateEnrollment(ctx context.Context, e *model.PathwayEnrollment) error
	FindEnrollmentByID(ctx context.Context, id uint) (*model.PathwayEnrollment, error)
	HasEnrollment(ctx context.Context, userID, pathwayID uint, status model.EnrollmentStatus) (bool, error)
	DecideEnrollment(ctx context.Context, id uint, status model.EnrollmentStatus, note string, reviewer uint, at time.Time) (bool, error)
	ListPendingEnrollments(ctx context.Context) ([]model.PathwayEnrollment, error)
}

type CohortStore interface {
	FindByID(ctx context.Context, id uint) (*model.Cohort, error)
	ListMemberIDs(ctx context.Context, cohortID uint) ([]uint, error)
	AssignPathway(ctx context.Context, cp *model.CohortPathway) (bool, error)
}

// PageCache stores rendered read models; a nil PageCache disables caching.
type PageCache interface {
	GetJSON(ctx context.Context, key string, dst interface{}) (bool, error)
	SetJSON(ctx context.Context, key string, v interface{}, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
}
