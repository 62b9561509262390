package model

import "gorm.io/datatypes"

type QuestionType string

const (
	QuestionMultipleChoice   QuestionType = "multiple_choice"
	QuestionTrueFalse        QuestionType = "true_false"
	QuestionMultipleResponse QuestionType = "multiple_response"
	QuestionOpenText         QuestionType = "open_text"
	QuestionMatching         QuestionType = "matching"
	QuestionFillBlank        QuestionType = "fill_blank"
	QuestionRanking          QuestionType = "ranking"
	QuestionOddOneOut        QuestionType = "odd_one_out"
	QuestionHotspot          QuestionType = "hotspot"
)

// UsesOptions reports whether the correct answer lives on AnswerOption rows rather than in AnswerData.
func (t QuestionType) UsesOptions() bool {
	switch t {
	case QuestionMultipleChoice, QuestionTrueFalse, QuestionMultipleResponse, QuestionOpenText:
		return true
	}
	return false
}

// swagger:model Question
type Question struct {
	BaseModel
	TestID       uint           `gorm:"index;not null" json:"testId"`
	QuestionText string         `gorm:"type:text;not null" json:"questionText"`
	QuestionType QuestionType   `gorm:"size:32;not null" json:"questionType"`
	OrderIndex   int            `gorm:"default:0" json:"orderIndex"`
	Points       int            `gorm:"default:1" json:"points"`
	AnswerData   datatypes.JSON `json:"answerData,omitempty"`

	Options []AnswerOption `gorm:"foreignKey:QuestionID;constraint:OnDelete:CASCADE" json:"options,omitempty"`
}

func (Question) TableName() string {
	return "questions"
}

// swagger:model AnswerOption
type AnswerOption struct {
	BaseModel
	QuestionID uint   `gorm:"index;not null" json:"questionId"`
	OptionText string `gorm:"type:text;not null" json:"optionText"`
	IsCorrect  bool   `gorm:"default:false" json:"isCorrect"`
	OrderIndex int    `gorm:"default:0" json:"orderIndex"`
}

func (AnswerOption) TableName() string {
	return "answer_options"
}
