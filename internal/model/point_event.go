package model

import "time"

type PointSource string

const (
	PointSourceTestDay     PointSource = "test_day"
	PointSourceAchievement PointSource = "achievement"
	PointSourceBossBonus   PointSource = "boss_bonus"
)

// PointEvent is one entry of the points ledger. (UserID, Key) is unique so a grant is paid at most once;
// a user's total is the sum of Amount.
// swagger:model PointEvent
type PointEvent struct {
	ID        uint        `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID    uint        `gorm:"uniqueIndex:idx_point_user_key;not null" json:"userId"`
	Key       string      `gorm:"size:128;uniqueIndex:idx_point_user_key;not null" json:"key"`
	Source    PointSource `gorm:"size:32;not null" json:"source"`
	Amount    int         `gorm:"not null" json:"amount"`
	Reason    string      `gorm:"size:255" json:"reason"`
	CreatedAt time.Time   `json:"createdAt"`
}

func (PointEvent) TableName() string {
	return "point_events"
}
