package grading

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
	"unicode/utf8"

	"ladder_backend/internal/model"
)

// DefaultHotspotTolerance is used when a hotspot question does not set its own tolerance.
const DefaultHotspotTolerance = 50.0

var (
	ErrUnknownType  = errors.New("unknown question type")
	ErrMalformedKey = errors.New("malformed answer data")
)

// Answer-data payloads stored on questions.
type (
	MatchPair struct {
		Left  string `json:"left"`
		Right string `json:"right"`
	}
	MatchingData struct {
		Pairs []MatchPair `json:"pairs"`
	}
	FillBlankData struct {
		Blanks []string `json:"blanks"`
	}
	RankingItem struct {
		Text string `json:"text"`
	}
	RankingData struct {
		Items []RankingItem `json:"items"`
	}
	OddOneOutData struct {
		Items    []json.RawMessage `json:"items,omitempty"`
		OddIndex *int              `json:"oddIndex"`
	}
	Placement struct {
		Label string  `json:"label"`
		X     float64 `json:"x"`
		Y     float64 `json:"y"`
	}
	HotspotData struct {
		ImageURL   string      `json:"imageUrl,omitempty"`
		Placements []Placement `json:"placements"`
		Tolerance  float64     `json:"tolerance,omitempty"`
	}
)

// Key is the correct-answer side of one question. Each question type has its own variant;
// Grade never fails, a submission it cannot read is simply wrong.
type Key interface {
	Type() model.QuestionType
	Grade(submission json.RawMessage) bool
}

// ChoiceKey grades multiple_choice and true_false by the selected option's flag.
type ChoiceKey struct {
	QuestionType model.QuestionType
	Correct      map[uint]bool
}

func (k ChoiceKey) Type() model.QuestionType { return k.QuestionType }

func (k ChoiceKey) Grade(sub json.RawMessage) bool {
	id, ok := optionID(sub)
	return ok && k.Correct[id]
}

// MultiResponseKey requires exactly the set of correct options.
type MultiResponseKey struct {
	Correct map[string]struct{}
}

func (MultiResponseKey) Type() model.QuestionType { return model.QuestionMultipleResponse }

func (k MultiResponseKey) Grade(sub json.RawMessage) bool {
	selected, ok := idSet(sub)
	if !ok || len(selected) != len(k.Correct) {
		return false
	}
	for id := range k.Correct {
		if _, hit := selected[id]; !hit {
			return false
		}
	}
	return true
}

// OpenTextKey accepts a submission containing every reference word longer than three characters.
type OpenTextKey struct {
	Reference string
}

func (OpenTextKey) Type() model.QuestionType { return model.QuestionOpenText }

func (k OpenTextKey) Grade(sub json.RawMessage) bool {
	text := normalize(freeText(sub))
	for _, word := range strings.Fields(normalize(k.Reference)) {
		if utf8.RuneCountInString(word) > 3 && !strings.Contains(text, word) {
			return false
		}
	}
	return true
}

type MatchingKey struct {
	Pairs []MatchPair
}

func (MatchingKey) Type() model.QuestionType { return model.QuestionMatching }

func (k MatchingKey) Grade(sub json.RawMessage) bool {
	var matches map[string]string
	if !decodeInto(sub, &matches) {
		return false
	}
	for _, pair := range k.Pairs {
		if got, ok := matches[pair.Left]; !ok || got != pair.Right {
			return false
		}
	}
	return true
}

type FillBlankKey struct {
	Blanks []string
}

func (FillBlankKey) Type() model.QuestionType { return model.QuestionFillBlank }

func (k FillBlankKey) Grade(sub json.RawMessage) bool {
	var blanks []string
	if !decodeInto(sub, &blanks) || len(blanks) != len(k.Blanks) {
		return false
	}
	for i, want := range k.Blanks {
		if normalize(blanks[i]) != normalize(want) {
			return false
		}
	}
	return true
}

type RankingKey struct {
	Items []string
}

func (RankingKey) Type() model.QuestionType { return model.QuestionRanking }

func (k RankingKey) Grade(sub json.RawMessage) bool {
	var order []string
	if !decodeInto(sub, &order) || len(order) != len(k.Items) {
		return false
	}
	for i, want := range k.Items {
		if order[i] != want {
			return false
		}
	}
	return true
}

type OddOneOutKey struct {
	OddIndex int
}

func (OddOneOutKey) Type() model.QuestionType { return model.QuestionOddOneOut }

func (k OddOneOutKey) Grade(sub json.RawMessage) bool {
	s, ok := scalarString(sub)
	if !ok {
		return false
	}
	idx, err := strconv.Atoi(strings.TrimSpace(s))
	return err == nil && idx == k.OddIndex
}

type HotspotKey struct {
	Placements []Placement
	Tolerance  float64
}

func (HotspotKey) Type() model.QuestionType { return model.QuestionHotspot }

type submittedPlacement struct {
	Label string   `json:"label"`
	X     *float64 `json:"x"`
	Y     *float64 `json:"y"`
}

func (k HotspotKey) Grade(sub json.RawMessage) bool {
	var placed []submittedPlacement
	if !decodeInto(sub, &placed) || len(placed) != len(k.Placements) {
		return false
	}
	for _, p := range placed {
		if p.X == nil || p.Y == nil {
			return false
		}
		ref, ok := k.find(p.Label)
		if !ok {
			return false
		}
		if math.Hypot(*p.X-ref.X, *p.Y-ref.Y) > k.Tolerance {
			return false
		}
	}
	return true
}

func (k HotspotKey) find(label string) (Placement, bool) {
	for _, p := range k.Placements {
		if p.Label == label {
			return p, true
		}
	}
	return Placement{}, false
}

// Evaluator builds keys from stored questions and grades submissions against them.
type Evaluator struct {
	// HotspotTolerance applies to hotspot questions that store no tolerance; zero means DefaultHotspotTolerance.
	HotspotTolerance float64
}

// KeyFor decodes the correct answer of q. Options must be loaded for option-based types.
func (e Evaluator) KeyFor(q *model.Question) (Key, error) {
	switch q.QuestionType {
	case model.QuestionMultipleChoice, model.QuestionTrueFalse:
		if len(q.Options) == 0 {
			return nil, fmt.Errorf("%w: question %d has no options", ErrMalformedKey, q.ID)
		}
		correct := make(map[uint]bool, len(q.Options))
		for _, opt := range q.Options {
			correct[opt.ID] = opt.IsCorrect
		}
		return ChoiceKey{QuestionType: q.QuestionType, Correct: correct}, nil

	case model.QuestionMultipleResponse:
		correct := make(map[string]struct{})
		for _, opt := range q.Options {
			if opt.IsCorrect {
				correct[strconv.FormatUint(uint64(opt.ID), 10)] = struct{}{}
			}
		}
		if len(correct) == 0 {
			return nil, fmt.Errorf("%w: question %d has no correct options", ErrMalformedKey, q.ID)
		}
		return MultiResponseKey{Correct: correct}, nil

	case model.QuestionOpenText:
		ref, ok := referenceText(q.Options)
		if !ok {
			return nil, fmt.Errorf("%w: question %d has no reference answer", ErrMalformedKey, q.ID)
		}
		return OpenTextKey{Reference: ref}, nil

	case model.QuestionMatching:
		var data MatchingData
		if !decodeInto(q.AnswerData, &data) || len(data.Pairs) == 0 {
			return nil, fmt.Errorf("%w: question %d", ErrMalformedKey, q.ID)
		}
		return MatchingKey{Pairs: data.Pairs}, nil

	case model.QuestionFillBlank:
		var data FillBlankData
		if !decodeInto(q.AnswerData, &data) || len(data.Blanks) == 0 {
			return nil, fmt.Errorf("%w: question %d", ErrMalformedKey, q.ID)
		}
		return FillBlankKey{Blanks: data.Blanks}, nil

	case model.QuestionRanking:
		var data RankingData
		if !decodeInto(q.AnswerData, &data) || len(data.Items) == 0 {
			return nil, fmt.Errorf("%w: question %d", ErrMalformedKey, q.ID)
		}
		items := make([]string, len(data.Items))
		for i, item := range data.Items {
			items[i] = item.Text
		}
		return RankingKey{Items: items}, nil

	case model.QuestionOddOneOut:
		var data struct {
			OddIndex *int `json:"oddIndex"`
		}
		if !decodeInto(q.AnswerData, &data) || data.OddIndex == nil {
			return nil, fmt.Errorf("%w: question %d", ErrMalformedKey, q.ID)
		}
		return OddOneOutKey{OddIndex: *data.OddIndex}, nil

	case model.QuestionHotspot:
		var data HotspotData
		if !decodeInto(q.AnswerData, &data) || len(data.Placements) == 0 {
			return nil, fmt.Errorf("%w: question %d", ErrMalformedKey, q.ID)
		}
		tolerance := data.Tolerance
		if tolerance == 0 {
			tolerance = e.defaultTolerance()
		}
		return HotspotKey{Placements: data.Placements, Tolerance: tolerance}, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownType, q.QuestionType)
}

func (e Evaluator) defaultTolerance() float64 {
	if e.HotspotTolerance > 0 {
		return e.HotspotTolerance
	}
	return DefaultHotspotTolerance
}

// Evaluate grades one submission. Unknown types and malformed data are incorrect.
func (e Evaluator) Evaluate(q *model.Question, submission json.RawMessage) bool {
	key, err := e.KeyFor(q)
	if err != nil {
		return false
	}
	return key.Grade(submission)
}

func referenceText(options []model.AnswerOption) (string, bool) {
	sorted := make([]model.AnswerOption, len(options))
	copy(sorted, options)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].OrderIndex < sorted[j].OrderIndex })
	for _, opt := range sorted {
		if opt.IsCorrect {
			return opt.OptionText, true
		}
	}
	return "", false
}
