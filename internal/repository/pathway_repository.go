package repository

import (
	"context"
	"ladder_backend/internal/model"
	"time"

	"gorm.io/gorm"
)

type PathwayRepository struct {
	DB *gorm.DB
}

func NewPathwayRepository(db *gorm.DB) *PathwayRepository {
	return &PathwayRepository{DB: db}
}

func (r *PathwayRepository) Create(ctx context.Context, p *model.Pathway) error {
	return r.DB.WithContext(ctx).Create(p).Error
}

func (r *PathwayRepository) FindByID(ctx context.Context, id uint) (*model.Pathway, error) {
	var p model.Pathway
	if err := r.DB.WithContext(ctx).First(&p, id).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *PathwayRepository) AddLevel(ctx context.Context, pl *model.PathwayLevel) error {
	return r.DB.WithContext(ctx).Create(pl).Error
}

// FirstLevelID returns the active level with the lowest pathway order.
func (r *PathwayRepository) FirstLevelID(ctx context.Context, pathwayID uint) (uint, error) {
	var pl model.PathwayLevel
	err := r.DB.WithContext(ctx).
		Joins("JOIN levels ON levels.id = pathway_levels.level_id").
		Where("pathway_levels.pathway_id = ? AND levels.active = ?", pathwayID, true).
		Order("pathway_levels.order_index, pathway_levels.id").
		First(&pl).Error
	if err != nil {
		return 0, err
	}
	return pl.LevelID, nil
}

func (r *PathwayRepository) CreateEnrollment(ctx context.Context, e *model.PathwayEnrollment) error {
	return r.DB.WithContext(ctx).Create(e).Error
}

func (r *PathwayRepository) FindEnrollmentByID(ctx context.Context, id uint) (*model.PathwayEnrollment, error) {
	var e model.PathwayEnrollment
	if err := r.DB.WithContext(ctx).First(&e, id).Error; err != nil {
		return nil, err
	}
	return &e, nil
}

// HasEnrollment reports whether the user has an enrollment in the given status.
func (r *PathwayRepository) HasEnrollment(ctx context.Context, userID, pathwayID uint, status model.EnrollmentStatus) (bool, error) {
	var count int64
	err := r.DB.WithContext(ctx).Model(&model.PathwayEnrollment{}).
		Where("user_id = ? AND pathway_id = ? AND status = ?", userID, pathwayID, status).
		Count(&count).Error
	return count > 0, err
}

// DecideEnrollment closes a pending enrollment; false means it was already decided.
func (r *PathwayRepository) DecideEnrollment(ctx context.Context, id uint, status model.EnrollmentStatus, note string, reviewer uint, at time.Time) (bool, error) {
	res := r.DB.WithContext(ctx).Model(&model.PathwayEnrollment{}).
		Where("id = ? AND status = ?", id, model.EnrollmentPending).
		Updates(map[string]interface{}{
			"status":        status,
			"response_note": note,
			"reviewed_by":   reviewer,
			"reviewed_at":   at,
		})
	return res.RowsAffected > 0, res.Error
}

func (r *PathwayRepository) ListPendingEnrollments(ctx context.Context) ([]model.PathwayEnrollment, error) {
	var rows []model.PathwayEnrollment
	err := r.DB.WithContext(ctx).Where("status = ?", model.EnrollmentPending).
		Order("requested_at").Find(&rows).Error
	return rows, err
}
