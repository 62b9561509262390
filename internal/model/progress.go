package model

import "time"

type ProgressStatus string

const (
	StatusLocked          ProgressStatus = "locked"
	StatusUnlocked        ProgressStatus = "unlocked"
	StatusInProgress      ProgressStatus = "in_progress"
	StatusAwaitingSignoff ProgressStatus = "awaiting_signoff"
	StatusCompleted       ProgressStatus = "completed"
)

var progressTransitions = map[ProgressStatus][]ProgressStatus{
	StatusLocked:          {StatusUnlocked, StatusInProgress},
	StatusUnlocked:        {StatusInProgress},
	StatusInProgress:      {StatusCompleted, StatusAwaitingSignoff},
	StatusAwaitingSignoff: {StatusCompleted, StatusInProgress},
}

// CanTransition reports whether the ladder allows moving from s to next. Completed is terminal.
func (s ProgressStatus) CanTransition(next ProgressStatus) bool {
	for _, allowed := range progressTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Rank orders statuses by how far along the level is; used to avoid regressing a row.
func (s ProgressStatus) Rank() int {
	switch s {
	case StatusUnlocked:
		return 1
	case StatusInProgress:
		return 2
	case StatusAwaitingSignoff:
		return 3
	case StatusCompleted:
		return 4
	}
	return 0
}

// UserProgress is stored once a level becomes reachable; a missing row reads as StatusLocked.
// swagger:model UserProgress
type UserProgress struct {
	BaseModel
	UserID      uint           `gorm:"uniqueIndex:idx_progress_user_level;not null" json:"userId"`
	LevelID     uint           `gorm:"uniqueIndex:idx_progress_user_level;not null" json:"levelId"`
	PathwayID   *uint          `gorm:"index" json:"pathwayId,omitempty"`
	Status      ProgressStatus `gorm:"size:32;not null;index" json:"status"`
	StartedAt   *time.Time     `json:"startedAt,omitempty"`
	CompletedAt *time.Time     `json:"completedAt,omitempty"`
}

func (UserProgress) TableName() string {
	return "user_progress"
}
