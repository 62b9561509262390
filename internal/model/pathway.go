package model

import "time"

// swagger:model Pathway
type Pathway struct {
	BaseModel
	Name        string `gorm:"size:255;not null" json:"name"`
	Description string `gorm:"type:text" json:"description"`
	Active      bool   `gorm:"default:true" json:"active"`
}

func (Pathway) TableName() string {
	return "pathways"
}

type PathwayLevel struct {
	BaseModel
	PathwayID  uint `gorm:"uniqueIndex:idx_pathway_level;not null" json:"pathwayId"`
	LevelID    uint `gorm:"uniqueIndex:idx_pathway_level;not null" json:"levelId"`
	OrderIndex int  `gorm:"default:0" json:"orderIndex"`
}

func (PathwayLevel) TableName() string {
	return "pathway_levels"
}

type EnrollmentStatus string

const (
	EnrollmentPending  EnrollmentStatus = "pending"
	EnrollmentApproved EnrollmentStatus = "approved"
	EnrollmentRejected EnrollmentStatus = "rejected"
)

// swagger:model PathwayEnrollment
type PathwayEnrollment struct {
	BaseModel
	UserID       uint             `gorm:"index;not null" json:"userId"`
	PathwayID    uint             `gorm:"index;not null" json:"pathwayId"`
	Status       EnrollmentStatus `gorm:"size:16;default:'pending'" json:"status"`
	RequestNote  string           `gorm:"type:text" json:"requestNote"`
	ResponseNote string           `gorm:"type:text" json:"responseNote"`
	ReviewedBy   *uint            `json:"reviewedBy,omitempty"`
	RequestedAt  time.Time        `json:"requestedAt"`
	ReviewedAt   *time.Time       `json:"reviewedAt,omitempty"`
}

func (PathwayEnrollment) TableName() string {
	return "pathway_enrollments"
}
