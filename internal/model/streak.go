package model

// UserStreak 用户连续登录/测试记录；日期以 YYYY-MM-DD 存储
// swagger:model UserStreak
type UserStreak struct {
	BaseModel
	UserID             uint   `gorm:"uniqueIndex;not null" json:"userId"`
	CurrentLoginStreak int    `gorm:"default:0" json:"currentLoginStreak"`
	LongestLoginStreak int    `gorm:"default:0" json:"longestLoginStreak"`
	LastLoginDate      string `gorm:"size:10" json:"lastLoginDate"`
	CurrentTestStreak  int    `gorm:"default:0" json:"currentTestStreak"`
	LongestTestStreak  int    `gorm:"default:0" json:"longestTestStreak"`
	LastTestDate       string `gorm:"size:10" json:"lastTestDate"`
	TotalPoints        int    `gorm:"default:0" json:"totalPoints"`
}

func (UserStreak) TableName() string {
	return "user_streaks"
}
