package repository

import (
	"context"
	"ladder_backend/internal/model"

	"gorm.io/gorm"
)

type AttemptRepository struct {
	DB *gorm.DB
}

func NewAttemptRepository(db *gorm.DB) *AttemptRepository {
	return &AttemptRepository{DB: db}
}

// Create persists the attempt and its answer rows atomically.
func (r *AttemptRepository) Create(ctx context.Context, attempt *model.TestAttempt) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		answers := attempt.Answers
		attempt.Answers = nil
		if err := tx.Create(attempt).Error; err != nil {
			return err
		}
		for i := range answers {
			answers[i].AttemptID = attempt.ID
		}
		if len(answers) > 0 {
			if err := tx.Create(&answers).Error; err != nil {
				return err
			}
		}
		attempt.Answers = answers
		return nil
	})
}

func (r *AttemptRepository) HasPassed(ctx context.Context, userID, testID uint) (bool, error) {
	var count int64
	err := r.DB.WithContext(ctx).Model(&model.TestAttempt{}).
		Where("user_id = ? AND test_id = ? AND passed = ?", userID, testID, true).
		Count(&count).Error
	return count > 0, err
}

// CountPassedTests counts distinct tests with at least one passing attempt.
func (r *AttemptRepository) CountPassedTests(ctx context.Context, userID uint) (int64, error) {
	var count int64
	err := r.DB.WithContext(ctx).Model(&model.TestAttempt{}).
		Where("user_id = ? AND passed = ?", userID, true).
		Distinct("test_id").
		Count(&count).Error
	return count, err
}

func (r *AttemptRepository) summaries(ctx context.Context) *gorm.DB {
	return r.DB.WithContext(ctx).Table("test_attempts AS ta").
		Select("ta.*, t.title AS test_title, t.level_id AS level_id, l.title AS level_title").
		Joins("JOIN tests t ON t.id = ta.test_id").
		Joins("JOIN levels l ON l.id = t.level_id").
		Where("ta.deleted_at IS NULL")
}

// ListRecent returns the user's latest attempts, newest first.
func (r *AttemptRepository) ListRecent(ctx context.Context, userID uint, limit int) ([]model.AttemptSummary, error) {
	var rows []model.AttemptSummary
	err := r.summaries(ctx).
		Where("ta.user_id = ?", userID).
		Order("ta.completed_at DESC, ta.id DESC").
		Limit(limit).
		Scan(&rows).Error
	return rows, err
}

// ListPassedForLevel returns the user's passing attempts on tests of one level.
func (r *AttemptRepository) ListPassedForLevel(ctx context.Context, userID, levelID uint) ([]model.AttemptSummary, error) {
	var rows []model.AttemptSummary
	err := r.summaries(ctx).
		Where("ta.user_id = ? AND t.level_id = ? AND ta.passed = ?", userID, levelID, true).
		Order("ta.completed_at DESC").
		Scan(&rows).Error
	return rows, err
}
