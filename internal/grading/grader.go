package grading

import (
	"encoding/json"
	"math"

	"ladder_backend/internal/model"
)

type QuestionResult struct {
	QuestionID       uint            `json:"questionId"`
	IsCorrect        bool            `json:"isCorrect"`
	PointsEarned     int             `json:"pointsEarned"`
	UserAnswer       json.RawMessage `json:"userAnswer"`
	SelectedOptionID *uint           `json:"selectedOptionId"`
}

// Result is the outcome of grading one submission against every question of a test.
type Result struct {
	Passed     bool             `json:"passed"`
	Score      int              `json:"score"`
	MaxScore   int              `json:"maxScore"`
	Percentage float64          `json:"percentage"`
	Results    []QuestionResult `json:"results"`
}

// Perfect reports a full score on a test that has something to score.
func (r Result) Perfect() bool {
	return r.MaxScore > 0 && r.Score == r.MaxScore
}

// GradeTest is a pure function of its inputs. A test with no points scores 0%.
func (e Evaluator) GradeTest(questions []model.Question, answers map[uint]json.RawMessage, passPercentage float64) Result {
	res := Result{Results: make([]QuestionResult, 0, len(questions))}

	for i := range questions {
		q := &questions[i]
		sub := answers[q.ID]
		res.MaxScore += q.Points

		qr := QuestionResult{QuestionID: q.ID, UserAnswer: sub}
		if q.QuestionType == model.QuestionMultipleChoice || q.QuestionType == model.QuestionTrueFalse {
			if id, ok := optionID(sub); ok {
				qr.SelectedOptionID = &id
			}
		}
		if e.Evaluate(q, sub) {
			qr.IsCorrect = true
			qr.PointsEarned = q.Points
			res.Score += q.Points
		}
		res.Results = append(res.Results, qr)
	}

	if res.MaxScore > 0 {
		res.Percentage = math.Round(float64(res.Score)*10000/float64(res.MaxScore)) / 100
		// verdict uses the exact ratio, not the rounded percentage
		res.Passed = float64(res.Score)*100 >= passPercentage*float64(res.MaxScore)
	} else {
		res.Passed = passPercentage <= 0
	}
	return res
}
