package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"ladder_backend/internal/grading"
	"ladder_backend/internal/model"
	"ladder_backend/internal/util"
	"ladder_backend/pkg/logger"
	"ladder_backend/pkg/monitoring"
	"ladder_backend/pkg/tracing"
	"time"

	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const testHistoryLimit = 50

type TestService struct {
	Tests        TestStore
	Attempts     AttemptStore
	Activity     ActivityStore
	Progress     *ProgressService
	Streaks      *StreakService
	Achievements *AchievementService
	Rules        *RuleSet
	Now          func() time.Time
}

func NewTestService(
	tests TestStore,
	attempts AttemptStore,
	activity ActivityStore,
	progress *ProgressService,
	streaks *StreakService,
	achievements *AchievementService,
	rules *RuleSet,
) *TestService {
	return &TestService{
		Tests:        tests,
		Attempts:     attempts,
		Activity:     activity,
		Progress:     progress,
		Streaks:      streaks,
		Achievements: achievements,
		Rules:        rules,
		Now:          time.Now,
	}
}

// PublicOption is an answer option without its correctness flag.
type PublicOption struct {
	ID         uint   `json:"id"`
	OptionText string `json:"optionText"`
	OrderIndex int    `json:"orderIndex"`
}

type PublicQuestion struct {
	ID           uint               `json:"id"`
	QuestionText string             `json:"questionText"`
	QuestionType model.QuestionType `json:"questionType"`
	OrderIndex   int                `json:"orderIndex"`
	Points       int                `json:"points"`
	Options      []PublicOption     `json:"options,omitempty"`
	Prompt       *grading.Prompt    `json:"prompt,omitempty"`
}

type TestView struct {
	model.Test
	Questions []PublicQuestion `json:"questions"`
}

// SubmitResult is the grading result plus what the submission changed.
type SubmitResult struct {
	grading.Result
	AttemptID       uint                 `json:"attemptId"`
	LevelStatus     model.ProgressStatus `json:"levelStatus"`
	NewAchievements []model.Achievement  `json:"newAchievements"`
}

func (s *TestService) test(ctx context.Context, testID uint) (*model.Test, error) {
	test, err := s.Tests.FindByID(ctx, testID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, util.ErrTestNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load test: %w", err)
	}
	return test, nil
}

// GetTest returns the test with every answer key stripped.
func (s *TestService) GetTest(ctx context.Context, testID uint) (*TestView, error) {
	test, err := s.test(ctx, testID)
	if err != nil {
		return nil, err
	}
	questions, err := s.Tests.ListQuestions(ctx, testID)
	if err != nil {
		return nil, fmt.Errorf("list questions: %w", err)
	}

	view := &TestView{Test: *test, Questions: make([]PublicQuestion, 0, len(questions))}
	for i := range questions {
		q := &questions[i]
		pq := PublicQuestion{
			ID:           q.ID,
			QuestionText: q.QuestionText,
			QuestionType: q.QuestionType,
			OrderIndex:   q.OrderIndex,
			Points:       q.Points,
			Prompt:       grading.PublicPrompt(q),
		}
		if q.QuestionType.UsesOptions() && q.QuestionType != model.QuestionOpenText {
			for _, opt := range q.Options {
				pq.Options = append(pq.Options, PublicOption{ID: opt.ID, OptionText: opt.OptionText, OrderIndex: opt.OrderIndex})
			}
		}
		view.Questions = append(view.Questions, pq)
	}
	return view, nil
}

// SubmitTest grades answers, stores the attempt and drives the level forward on a pass.
func (s *TestService) SubmitTest(ctx context.Context, userID, testID uint, answers map[uint]json.RawMessage) (result *SubmitResult, err error) {
	ctx, span := tracing.Start(ctx, "TestService.SubmitTest", userID)
	defer func() { tracing.End(span, err) }()

	test, err := s.test(ctx, testID)
	if err != nil {
		return nil, err
	}
	level, err := s.Progress.level(ctx, test.LevelID)
	if err != nil {
		return nil, err
	}
	if _, err := s.Progress.ensureStarted(ctx, userID, level); err != nil {
		return nil, err
	}

	questions, err := s.Tests.ListQuestions(ctx, testID)
	if err != nil {
		return nil, fmt.Errorf("list questions: %w", err)
	}

	rules := s.Rules.Load()
	passPercentage := test.PassPercentage
	if passPercentage <= 0 {
		passPercentage = rules.DefaultPassPercentage
	}
	graded := grading.Evaluator{HotspotTolerance: rules.HotspotTolerance}.GradeTest(questions, answers, passPercentage)

	now := s.Now()
	attempt := &model.TestAttempt{
		UserID:      userID,
		TestID:      testID,
		Score:       graded.Score,
		MaxScore:    graded.MaxScore,
		Percentage:  graded.Percentage,
		Passed:      graded.Passed,
		StartedAt:   now,
		CompletedAt: now,
		Answers:     make([]model.UserAnswer, 0, len(graded.Results)),
	}
	for _, r := range graded.Results {
		attempt.Answers = append(attempt.Answers, model.UserAnswer{
			QuestionID:     r.QuestionID,
			AnswerOptionID: r.SelectedOptionID,
			Payload:        datatypes.JSON(r.UserAnswer),
			IsCorrect:      r.IsCorrect,
			PointsEarned:   r.PointsEarned,
		})
	}
	if err := s.Attempts.Create(ctx, attempt); err != nil {
		return nil, fmt.Errorf("save attempt: %w", err)
	}

	ref := attempt.ID
	if err := s.Activity.Append(ctx, &model.ActivityLog{
		UserID:       userID,
		ActivityType: model.ActivityTestAttempt,
		ActivityDate: util.Day(now),
		RefID:        &ref,
		CreatedAt:    now,
	}); err != nil {
		return nil, fmt.Errorf("log attempt: %w", err)
	}

	monitoring.GradedSubmissions.WithLabelValues(monitoring.Verdict(graded.Passed)).Inc()
	logger.Log.Info("Test graded",
		zap.Uint("userID", userID),
		zap.Uint("testID", testID),
		zap.Int("score", graded.Score),
		zap.Int("maxScore", graded.MaxScore),
		zap.Bool("passed", graded.Passed))

	result = &SubmitResult{Result: graded, AttemptID: attempt.ID}

	if graded.Passed {
		if err := s.Streaks.RecordTestPass(ctx, userID); err != nil {
			return nil, err
		}
		outcomes := []Outcome{TestPassed{UserID: userID, TestID: testID, Perfect: graded.Perfect()}}
		levelOutcomes, err := s.Progress.EvaluateLevel(ctx, userID, level)
		if err != nil {
			return nil, err
		}
		outcomes = append(outcomes, levelOutcomes...)

		if result.NewAchievements, err = s.Achievements.React(ctx, userID, outcomes); err != nil {
			return nil, err
		}
	}

	if result.LevelStatus, err = s.Progress.Status(ctx, userID, level.ID); err != nil {
		return nil, err
	}
	return result, nil
}

// History returns the latest attempts with test and level titles.
func (s *TestService) History(ctx context.Context, userID uint) ([]model.AttemptSummary, error) {
	return s.Attempts.ListRecent(ctx, userID, testHistoryLimit)
}
