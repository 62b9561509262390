package repository

import (
	"context"
	"ladder_backend/internal/model"

	"gorm.io/gorm"
)

type TestRepository struct {
	DB *gorm.DB
}

func NewTestRepository(db *gorm.DB) *TestRepository {
	return &TestRepository{DB: db}
}

// Create stores a test together with its questions and options.
func (r *TestRepository) Create(ctx context.Context, test *model.Test) error {
	return r.DB.WithContext(ctx).Create(test).Error
}

func (r *TestRepository) FindByID(ctx context.Context, id uint) (*model.Test, error) {
	var test model.Test
	if err := r.DB.WithContext(ctx).First(&test, id).Error; err != nil {
		return nil, err
	}
	return &test, nil
}

func (r *TestRepository) ListByLevel(ctx context.Context, levelID uint) ([]model.Test, error) {
	var tests []model.Test
	err := r.DB.WithContext(ctx).Where("level_id = ?", levelID).Order("id").Find(&tests).Error
	return tests, err
}

// ListQuestions loads a test's questions in order with their answer options.
func (r *TestRepository) ListQuestions(ctx context.Context, testID uint) ([]model.Question, error) {
	var questions []model.Question
	err := r.DB.WithContext(ctx).
		Preload("Options", func(db *gorm.DB) *gorm.DB { return db.Order("order_index, id") }).
		Where("test_id = ?", testID).
		Order("order_index, id").
		Find(&questions).Error
	return questions, err
}
