package model

import (
	"time"

	"gorm.io/datatypes"
)

// TestAttempt is written once per grading pass and never updated.
// swagger:model TestAttempt
type TestAttempt struct {
	BaseModel
	UserID      uint      `gorm:"index:idx_attempt_user_test;not null" json:"userId"`
	TestID      uint      `gorm:"index:idx_attempt_user_test;not null" json:"testId"`
	Score       int       `json:"score"`
	MaxScore    int       `json:"maxScore"`
	Percentage  float64   `json:"percentage"`
	Passed      bool      `gorm:"index" json:"passed"`
	StartedAt   time.Time `json:"startedAt"`
	CompletedAt time.Time `json:"completedAt"`

	Answers []UserAnswer `gorm:"foreignKey:AttemptID;constraint:OnDelete:CASCADE" json:"answers,omitempty"`
}

func (TestAttempt) TableName() string {
	return "test_attempts"
}

// swagger:model UserAnswer
type UserAnswer struct {
	BaseModel
	AttemptID      uint           `gorm:"index;not null" json:"attemptId"`
	QuestionID     uint           `gorm:"index;not null" json:"questionId"`
	AnswerOptionID *uint          `json:"answerOptionId,omitempty"`
	Payload        datatypes.JSON `json:"payload,omitempty"`
	IsCorrect      bool           `json:"isCorrect"`
	PointsEarned   int            `json:"pointsEarned"`
}

func (UserAnswer) TableName() string {
	return "user_answers"
}

// AttemptSummary is a history row joined with test and level titles.
type AttemptSummary struct {
	TestAttempt
	TestTitle  string `json:"testTitle"`
	LevelID    uint   `json:"levelId"`
	LevelTitle string `json:"levelTitle"`
}
