package repository

import (
	"context"
	"ladder_backend/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type CohortRepository struct {
	DB *gorm.DB
}

func NewCohortRepository(db *gorm.DB) *CohortRepository {
	return &CohortRepository{DB: db}
}

func (r *CohortRepository) Create(ctx context.Context, c *model.Cohort) error {
	return r.DB.WithContext(ctx).Create(c).Error
}

func (r *CohortRepository) FindByID(ctx context.Context, id uint) (*model.Cohort, error) {
	var c model.Cohort
	if err := r.DB.WithContext(ctx).First(&c, id).Error; err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *CohortRepository) AddMember(ctx context.Context, m *model.CohortMember) error {
	return r.DB.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(m).Error
}

func (r *CohortRepository) ListMemberIDs(ctx context.Context, cohortID uint) ([]uint, error) {
	var ids []uint
	err := r.DB.WithContext(ctx).Model(&model.CohortMember{}).
		Where("cohort_id = ?", cohortID).
		Order("user_id").
		Pluck("user_id", &ids).Error
	return ids, err
}

// AssignPathway links a pathway to a cohort; false means it was already assigned.
func (r *CohortRepository) AssignPathway(ctx context.Context, cp *model.CohortPathway) (bool, error) {
	res := r.DB.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(cp)
	return res.RowsAffected > 0, res.Error
}
