package model

import "time"

// swagger:model Cohort
type Cohort struct {
	BaseModel
	Name        string `gorm:"size:255;not null" json:"name"`
	Description string `gorm:"type:text" json:"description"`
}

func (Cohort) TableName() string {
	return "cohorts"
}

type CohortMember struct {
	ID       uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	CohortID uint      `gorm:"uniqueIndex:idx_cohort_member;not null" json:"cohortId"`
	UserID   uint      `gorm:"uniqueIndex:idx_cohort_member;not null" json:"userId"`
	JoinedAt time.Time `json:"joinedAt"`
}

func (CohortMember) TableName() string {
	return "cohort_members"
}

type CohortPathway struct {
	BaseModel
	CohortID   uint       `gorm:"uniqueIndex:idx_cohort_pathway;not null" json:"cohortId"`
	PathwayID  uint       `gorm:"uniqueIndex:idx_cohort_pathway;not null" json:"pathwayId"`
	Deadline   *time.Time `json:"deadline,omitempty"`
	AssignedBy uint       `json:"assignedBy"`
}

func (CohortPathway) TableName() string {
	return "cohort_pathways"
}
