package model

import (
	"time"
)

type UserRole string

const (
	Consultant UserRole = "consultant"
	Boss       UserRole = "boss"
	Admin      UserRole = "admin"
)

// swagger:model User
type User struct {
	BaseModel
	Name      string     `gorm:"size:100;not null" json:"name"`
	Email     string     `gorm:"size:100;uniqueIndex;not null" json:"email"`
	Password  string     `gorm:"size:100;not null" json:"-"`
	Role      UserRole   `gorm:"size:32;default:'consultant'" json:"role"`
	Active    bool       `gorm:"default:true" json:"active"`
	LastLogin *time.Time `json:"lastLogin,omitempty"`
}

func (User) TableName() string {
	return "users"
}

// BossRelationship 主管与顾问的多对多关系
type BossRelationship struct {
	BaseModel
	BossID       uint   `gorm:"index;not null" json:"bossId"`
	ConsultantID uint   `gorm:"index;not null" json:"consultantId"`
	ProjectName  string `gorm:"size:255" json:"projectName"`
	Active       bool   `gorm:"default:true" json:"active"`
}

func (BossRelationship) TableName() string {
	return "boss_consultant_relationships"
}
