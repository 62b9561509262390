package repository

import (
	"context"
	"ladder_backend/internal/model"
	"time"

	"gorm.io/gorm"
)

type UserRepository struct {
	DB *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{DB: db}
}

func (r *UserRepository) Create(ctx context.Context, user *model.User) error {
	return r.DB.WithContext(ctx).Create(user).Error
}

func (r *UserRepository) FindByID(ctx context.Context, id uint) (*model.User, error) {
	var user model.User
	if err := r.DB.WithContext(ctx).First(&user, id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	var user model.User
	if err := r.DB.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *UserRepository) TouchLastLogin(ctx context.Context, id uint, at time.Time) error {
	return r.DB.WithContext(ctx).Model(&model.User{}).Where("id = ?", id).Update("last_login", at).Error
}

// CreateRelationship 建立主管与顾问的汇报关系
func (r *UserRepository) CreateRelationship(ctx context.Context, rel *model.BossRelationship) error {
	return r.DB.WithContext(ctx).Create(rel).Error
}

// ListBossesOf returns the active bosses a consultant reports to.
func (r *UserRepository) ListBossesOf(ctx context.Context, consultantID uint) ([]model.User, error) {
	var users []model.User
	err := r.DB.WithContext(ctx).
		Joins("JOIN boss_consultant_relationships r ON r.boss_id = users.id").
		Where("r.consultant_id = ? AND r.active = ? AND r.deleted_at IS NULL", consultantID, true).
		Where("users.active = ?", true).
		Order("users.name").
		Find(&users).Error
	return users, err
}

func (r *UserRepository) IsDirectReport(ctx context.Context, bossID, consultantID uint) (bool, error) {
	var count int64
	err := r.DB.WithContext(ctx).Model(&model.BossRelationship{}).
		Where("boss_id = ? AND consultant_id = ? AND active = ?", bossID, consultantID, true).
		Count(&count).Error
	return count > 0, err
}

// ListTeam 获取主管下属的所有在职顾问
func (r *UserRepository) ListTeam(ctx context.Context, bossID uint) ([]model.User, error) {
	var users []model.User
	err := r.DB.WithContext(ctx).
		Joins("JOIN boss_consultant_relationships r ON r.consultant_id = users.id").
		Where("r.boss_id = ? AND r.active = ? AND r.deleted_at IS NULL", bossID, true).
		Where("users.active = ?", true).
		Order("users.name").
		Find(&users).Error
	return users, err
}
