package model

import "time"

type SignoffStatus string

const (
	SignoffPending  SignoffStatus = "pending"
	SignoffApproved SignoffStatus = "approved"
	SignoffRejected SignoffStatus = "rejected"
)

// SignoffRequest asks a boss to approve a boss level. Approved and rejected are terminal.
// swagger:model SignoffRequest
type SignoffRequest struct {
	BaseModel
	UserID        uint          `gorm:"index:idx_signoff_user_level;not null" json:"userId"`
	LevelID       uint          `gorm:"index:idx_signoff_user_level;not null" json:"levelId"`
	BossID        uint          `gorm:"index;not null" json:"bossId"`
	EvidenceNotes string        `gorm:"type:text" json:"evidenceNotes"`
	EvidenceURL   string        `gorm:"size:512" json:"evidenceUrl"`
	Status        SignoffStatus `gorm:"size:16;default:'pending';index" json:"status"`
	BossFeedback  string        `gorm:"type:text" json:"bossFeedback"`
	RequestedAt   time.Time     `json:"requestedAt"`
	ReviewedAt    *time.Time    `json:"reviewedAt,omitempty"`
}

func (SignoffRequest) TableName() string {
	return "signoff_requests"
}

// SignoffView is a request joined with consultant, boss and level names.
type SignoffView struct {
	SignoffRequest
	ConsultantName  string `json:"consultantName"`
	ConsultantEmail string `json:"consultantEmail"`
	BossName        string `json:"bossName"`
	LevelTitle      string `json:"levelTitle"`
}
