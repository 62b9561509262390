package model

import "time"

type ActivityType string

const (
	ActivityLogin         ActivityType = "login"
	ActivityTestAttempt   ActivityType = "test_attempt"
	ActivityLevelComplete ActivityType = "level_complete"
)

// ActivityLog rows are append-only; streaks are never recomputed from them.
// swagger:model ActivityLog
type ActivityLog struct {
	ID           uint         `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID       uint         `gorm:"index:idx_activity_user_type;not null" json:"userId"`
	ActivityType ActivityType `gorm:"size:32;index:idx_activity_user_type;not null" json:"activityType"`
	ActivityDate string       `gorm:"size:10;index;not null" json:"activityDate"`
	RefID        *uint        `json:"refId,omitempty"`
	CreatedAt    time.Time    `json:"createdAt"`
}

func (ActivityLog) TableName() string {
	return "activity_log"
}
