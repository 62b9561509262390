package grading

import (
	"encoding/json"
	"reflect"
	"testing"

	"ladder_backend/internal/model"

	"gorm.io/datatypes"
)

func sampleTest() []model.Question {
	mc := model.Question{QuestionType: model.QuestionMultipleChoice, Points: 5, Options: []model.AnswerOption{
		option(100, "right", true, 1),
		option(101, "wrong", false, 2),
	}}
	mc.ID = 1
	fill := model.Question{QuestionType: model.QuestionFillBlank, Points: 3, AnswerData: datatypes.JSON(`{"blanks":["Paris"," France "]}`)}
	fill.ID = 2
	rank := model.Question{QuestionType: model.QuestionRanking, Points: 2, AnswerData: datatypes.JSON(`{"items":[{"text":"a"},{"text":"b"}]}`)}
	rank.ID = 3
	return []model.Question{mc, fill, rank}
}

func TestGradeTestScoresAndPercentage(t *testing.T) {
	ev := Evaluator{}
	answers := map[uint]json.RawMessage{
		1: json.RawMessage(`100`),
		2: json.RawMessage(`["paris","france"]`),
		3: json.RawMessage(`["b","a"]`),
	}

	res := ev.GradeTest(sampleTest(), answers, 80)
	if res.Score != 8 || res.MaxScore != 10 {
		t.Fatalf("score = %d/%d, want 8/10", res.Score, res.MaxScore)
	}
	if res.Percentage != 80 {
		t.Errorf("percentage = %v, want 80", res.Percentage)
	}
	if !res.Passed {
		t.Error("80% should pass an 80% threshold")
	}
	if res.Perfect() {
		t.Error("8/10 is not perfect")
	}
	if len(res.Results) != 3 {
		t.Fatalf("results = %d, want 3", len(res.Results))
	}
	if r := res.Results[0]; !r.IsCorrect || r.PointsEarned != 5 || r.SelectedOptionID == nil || *r.SelectedOptionID != 100 {
		t.Errorf("unexpected multiple choice result %+v", r)
	}
	if r := res.Results[2]; r.IsCorrect || r.PointsEarned != 0 {
		t.Errorf("ranking should be wrong: %+v", r)
	}
}

func TestGradeTestUnansweredQuestionsCountTowardMax(t *testing.T) {
	res := Evaluator{}.GradeTest(sampleTest(), map[uint]json.RawMessage{1: json.RawMessage(`100`)}, 80)
	if res.Score != 5 || res.MaxScore != 10 || res.Passed {
		t.Fatalf("got %+v, want 5/10 failed", res)
	}
	if res.Results[1].UserAnswer != nil {
		t.Errorf("missing answer should stay nil, got %s", res.Results[1].UserAnswer)
	}
}

func TestGradeTestPerfectScore(t *testing.T) {
	answers := map[uint]json.RawMessage{
		1: json.RawMessage(`"100"`),
		2: json.RawMessage(`["PARIS"," france"]`),
		3: json.RawMessage(`["a","b"]`),
	}
	res := Evaluator{}.GradeTest(sampleTest(), answers, 80)
	if !res.Perfect() || res.Percentage != 100 || !res.Passed {
		t.Fatalf("expected perfect pass, got %+v", res)
	}
}

func TestGradeTestZeroMaxScore(t *testing.T) {
	res := Evaluator{}.GradeTest(nil, nil, 80)
	if res.Percentage != 0 || res.Passed || res.MaxScore != 0 {
		t.Fatalf("empty test: %+v", res)
	}
	if !(Evaluator{}).GradeTest(nil, nil, 0).Passed {
		t.Error("a 0% threshold is met by 0%")
	}
}

func TestGradeTestThresholdUsesExactRatio(t *testing.T) {
	qs := make([]model.Question, 3)
	for i := range qs {
		qs[i] = model.Question{QuestionType: model.QuestionOddOneOut, Points: 1, AnswerData: datatypes.JSON(`{"oddIndex":0}`)}
		qs[i].ID = uint(i + 1)
	}
	answers := map[uint]json.RawMessage{1: json.RawMessage(`0`), 2: json.RawMessage(`0`)}

	// 2/3 = 66.666..% displays as 66.67 but must not pass a 66.67 threshold
	res := Evaluator{}.GradeTest(qs, answers, 66.67)
	if res.Percentage != 66.67 {
		t.Errorf("percentage = %v, want 66.67", res.Percentage)
	}
	if res.Passed {
		t.Error("2/3 should not meet 66.67")
	}
}

func TestGradeTestIsDeterministic(t *testing.T) {
	answers := map[uint]json.RawMessage{
		1: json.RawMessage(`101`),
		2: json.RawMessage(`["paris","france"]`),
		3: json.RawMessage(`["a","b"]`),
	}
	ev := Evaluator{}
	first := ev.GradeTest(sampleTest(), answers, 80)
	second := ev.GradeTest(sampleTest(), answers, 80)
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("grading differs between runs:\n%+v\n%+v", first, second)
	}
}

func TestPublicPromptHidesKeys(t *testing.T) {
	q := dataQuestion(model.QuestionMatching, `{"pairs":[{"left":"b","right":"2"},{"left":"a","right":"1"}]}`)
	p := PublicPrompt(q)
	if p == nil || !reflect.DeepEqual(p.Lefts, []string{"a", "b"}) || !reflect.DeepEqual(p.Rights, []string{"1", "2"}) {
		t.Fatalf("matching prompt = %+v", p)
	}

	p = PublicPrompt(dataQuestion(model.QuestionOddOneOut, `{"items":["x",{"text":"y"},3],"oddIndex":1}`))
	if p == nil || !reflect.DeepEqual(p.Items, []string{"x", "y", "3"}) {
		t.Fatalf("odd one out prompt = %+v", p)
	}

	p = PublicPrompt(dataQuestion(model.QuestionFillBlank, `{"blanks":["a","b","c"]}`))
	if p == nil || p.BlankCount != 3 {
		t.Fatalf("fill blank prompt = %+v", p)
	}

	if PublicPrompt(optionQuestion(model.QuestionMultipleChoice, option(1, "a", true, 1))) != nil {
		t.Error("option based questions carry no prompt")
	}
}
