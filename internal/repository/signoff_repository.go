package repository

import (
	"context"
	"ladder_backend/internal/model"
	"time"

	"gorm.io/gorm"
)

type SignoffRepository struct {
	DB *gorm.DB
}

func NewSignoffRepository(db *gorm.DB) *SignoffRepository {
	return &SignoffRepository{DB: db}
}

func (r *SignoffRepository) Create(ctx context.Context, req *model.SignoffRequest) error {
	return r.DB.WithContext(ctx).Create(req).Error
}

func (r *SignoffRepository) FindByID(ctx context.Context, id uint) (*model.SignoffRequest, error) {
	var req model.SignoffRequest
	if err := r.DB.WithContext(ctx).First(&req, id).Error; err != nil {
		return nil, err
	}
	return &req, nil
}

// FindPending returns the open request for (user, level), if any.
func (r *SignoffRepository) FindPending(ctx context.Context, userID, levelID uint) (*model.SignoffRequest, error) {
	var req model.SignoffRequest
	err := r.DB.WithContext(ctx).
		Where("user_id = ? AND level_id = ? AND status = ?", userID, levelID, model.SignoffPending).
		First(&req).Error
	if err != nil {
		return nil, err
	}
	return &req, nil
}

// Decide closes a pending request. It returns false when the request was no longer pending.
func (r *SignoffRepository) Decide(ctx context.Context, id uint, status model.SignoffStatus, feedback string, at time.Time) (bool, error) {
	res := r.DB.WithContext(ctx).Model(&model.SignoffRequest{}).
		Where("id = ? AND status = ?", id, model.SignoffPending).
		Updates(map[string]interface{}{
			"status":        status,
			"boss_feedback": feedback,
			"reviewed_at":   at,
		})
	return res.RowsAffected > 0, res.Error
}

func (r *SignoffRepository) CountRejectedBoss(ctx context.Context, userID uint) (int64, error) {
	var count int64
	err := r.DB.WithContext(ctx).Model(&model.SignoffRequest{}).
		Joins("JOIN levels ON levels.id = signoff_requests.level_id").
		Where("signoff_requests.user_id = ? AND signoff_requests.status = ? AND levels.is_boss_level = ?", userID, model.SignoffRejected, true).
		Count(&count).Error
	return count, err
}

// CountApprovedBossLevels counts distinct active boss levels with an approved request.
func (r *SignoffRepository) CountApprovedBossLevels(ctx context.Context, userID uint) (int64, error) {
	var count int64
	err := r.DB.WithContext(ctx).Model(&model.SignoffRequest{}).
		Joins("JOIN levels ON levels.id = signoff_requests.level_id").
		Where("signoff_requests.user_id = ? AND signoff_requests.status = ?", userID, model.SignoffApproved).
		Where("levels.is_boss_level = ? AND levels.active = ?", true, true).
		Distinct("signoff_requests.level_id").
		Count(&count).Error
	return count, err
}

func (r *SignoffRepository) views(ctx context.Context) *gorm.DB {
	return r.DB.WithContext(ctx).Table("signoff_requests AS sr").
		Select("sr.*, c.name AS consultant_name, c.email AS consultant_email, b.name AS boss_name, l.title AS level_title").
		Joins("JOIN users c ON c.id = sr.user_id").
		Joins("JOIN users b ON b.id = sr.boss_id").
		Joins("JOIN levels l ON l.id = sr.level_id").
		Where("sr.deleted_at IS NULL")
}

// ListByBoss lists requests addressed to bossID; an empty status lists every status.
func (r *SignoffRepository) ListByBoss(ctx context.Context, bossID uint, status model.SignoffStatus, limit int) ([]model.SignoffView, error) {
	var rows []model.SignoffView
	q := r.views(ctx).Where("sr.boss_id = ?", bossID)
	if status != "" {
		q = q.Where("sr.status = ?", status)
	}
	err := q.Order("sr.requested_at DESC, sr.id DESC").Limit(limit).Scan(&rows).Error
	return rows, err
}

func (r *SignoffRepository) ListByUser(ctx context.Context, userID uint) ([]model.SignoffView, error) {
	var rows []model.SignoffView
	err := r.views(ctx).Where("sr.user_id = ?", userID).
		Order("sr.requested_at DESC, sr.id DESC").
		Scan(&rows).Error
	return rows, err
}

func (r *SignoffRepository) FindView(ctx context.Context, id uint) (*model.SignoffView, error) {
	var rows []model.SignoffView
	if err := r.views(ctx).Where("sr.id = ?", id).Limit(1).Scan(&rows).Error; err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, gorm.ErrRecordNotFound
	}
	return &rows[0], nil
}
