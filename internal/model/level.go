package model

// Level is one rung of the ladder. OrderIndex is dense and unique among active levels.
// swagger:model Level
type Level struct {
	BaseModel
	Title       string `gorm:"size:255;not null" json:"title"`
	Description string `gorm:"type:text" json:"description"`
	OrderIndex  int    `gorm:"index;not null" json:"orderIndex"`
	IsBossLevel bool   `gorm:"default:false" json:"isBossLevel"`
	Active      bool   `gorm:"default:true;index" json:"active"`

	Tests []Test `gorm:"foreignKey:LevelID;constraint:OnDelete:CASCADE" json:"tests,omitempty"`
}

func (Level) TableName() string {
	return "levels"
}

// swagger:model Test
type Test struct {
	BaseModel
	LevelID          uint    `gorm:"index;not null" json:"levelId"`
	Title            string  `gorm:"size:255;not null" json:"title"`
	Description      string  `gorm:"type:text" json:"description"`
	PassPercentage   float64 `gorm:"default:80" json:"passPercentage"`
	TimeLimitMinutes int     `gorm:"default:0" json:"timeLimitMinutes"`

	Questions []Question `gorm:"foreignKey:TestID;constraint:OnDelete:CASCADE" json:"questions,omitempty"`
}

func (Test) TableName() string {
	return "tests"
}
