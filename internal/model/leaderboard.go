package model

const LeagueBronze = "bronze"

// LeaderboardEntry caches per-user totals; Rank is derived at read time.
// swagger:model LeaderboardEntry
type LeaderboardEntry struct {
	BaseModel
	UserID         uint   `gorm:"uniqueIndex;not null" json:"userId"`
	RungsCompleted int    `gorm:"default:0" json:"rungsCompleted"`
	TotalPoints    int    `gorm:"default:0;index" json:"totalPoints"`
	Rank           int    `gorm:"default:0" json:"rank"`
	League         string `gorm:"size:32;default:'bronze'" json:"league"`
}

func (LeaderboardEntry) TableName() string {
	return "leaderboard"
}

// RankedEntry is a leaderboard row with the user's display fields.
type RankedEntry struct {
	UserID         uint   `json:"userId"`
	Name           string `json:"name"`
	Email          string `json:"email"`
	RungsCompleted int    `json:"rungsCompleted"`
	TotalPoints    int    `json:"totalPoints"`
	Rank           int    `json:"rank"`
	League         string `json:"league"`
}
