package grading

import (
	"encoding/json"
	"sort"

	"ladder_backend/internal/model"
)

// Prompt is the part of a question's answer data a test taker may see.
type Prompt struct {
	Lefts      []string `json:"lefts,omitempty"`
	Rights     []string `json:"rights,omitempty"`
	BlankCount int      `json:"blankCount,omitempty"`
	Items      []string `json:"items,omitempty"`
	Labels     []string `json:"labels,omitempty"`
	ImageURL   string   `json:"imageUrl,omitempty"`
}

// PublicPrompt strips the answer key from q's answer data. It returns nil for option-based
// types and for answer data it cannot read.
func PublicPrompt(q *model.Question) *Prompt {
	switch q.QuestionType {
	case model.QuestionMatching:
		var data MatchingData
		if !decodeInto(q.AnswerData, &data) {
			return nil
		}
		p := &Prompt{}
		for _, pair := range data.Pairs {
			p.Lefts = append(p.Lefts, pair.Left)
			p.Rights = append(p.Rights, pair.Right)
		}
		sort.Strings(p.Lefts)
		sort.Strings(p.Rights)
		return p

	case model.QuestionFillBlank:
		var data FillBlankData
		if !decodeInto(q.AnswerData, &data) {
			return nil
		}
		return &Prompt{BlankCount: len(data.Blanks)}

	case model.QuestionRanking:
		var data RankingData
		if !decodeInto(q.AnswerData, &data) {
			return nil
		}
		p := &Prompt{}
		for _, item := range data.Items {
			p.Items = append(p.Items, item.Text)
		}
		sort.Strings(p.Items)
		return p

	case model.QuestionOddOneOut:
		var data OddOneOutData
		if !decodeInto(q.AnswerData, &data) {
			return nil
		}
		p := &Prompt{}
		for _, raw := range data.Items {
			p.Items = append(p.Items, itemLabel(raw))
		}
		return p

	case model.QuestionHotspot:
		var data HotspotData
		if !decodeInto(q.AnswerData, &data) {
			return nil
		}
		p := &Prompt{ImageURL: data.ImageURL}
		for _, pl := range data.Placements {
			p.Labels = append(p.Labels, pl.Label)
		}
		sort.Strings(p.Labels)
		return p
	}
	return nil
}

// itemLabel accepts "label", 3 or {"text": "label"}.
func itemLabel(raw json.RawMessage) string {
	if s, ok := scalarString(raw); ok {
		return s
	}
	var item RankingItem
	if json.Unmarshal(raw, &item) == nil {
		return item.Text
	}
	return ""
}
