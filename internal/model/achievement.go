package model

import "time"

// Achievement 成就目录，按 Code 唯一
type Achievement struct {
	BaseModel
	Code        string `gorm:"size:64;uniqueIndex;not null" json:"code"`
	Title       string `gorm:"size:100;not null" json:"title"`
	Description string `gorm:"size:255" json:"description"`
	Icon        string `gorm:"size:32" json:"icon"`
	Points      int    `gorm:"default:0" json:"points"`
}

func (Achievement) TableName() string {
	return "achievements"
}

type UserAchievement struct {
	ID            uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID        uint      `gorm:"uniqueIndex:idx_user_achievement;not null" json:"userId"`
	AchievementID uint      `gorm:"uniqueIndex:idx_user_achievement;not null" json:"achievementId"`
	EarnedAt      time.Time `json:"earnedAt"`
}

func (UserAchievement) TableName() string {
	return "user_achievements"
}

// EarnedAchievement is a catalog entry joined with the time the user earned it.
type EarnedAchievement struct {
	Achievement
	EarnedAt time.Time `json:"earnedAt"`
}
