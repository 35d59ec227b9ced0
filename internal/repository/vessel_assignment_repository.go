package repository

import (
	"context"

	"github.com/harbourbee/harbourbee-backend/internal/model"
	"gorm.io/gorm"
)

type VesselAssignmentRepository interface {
	FindActiveByUser(ctx context.Context, userUID string) (*model.VesselAssignment, error)
	Create(ctx context.Context, a *model.VesselAssignment) error
}

type vesselAssignmentRepository struct {
	db *gorm.DB
}

func NewVesselAssignmentRepository(db *gorm.DB) VesselAssignmentRepository {
	return &vesselAssignmentRepository{db: db}
}

// FindActiveByUser returns the user's current assignment, skipping
// unassigned rows. Newest first in case historic data holds several.
func (r *vesselAssignmentRepository) FindActiveByUser(ctx context.Context, userUID string) (*model.VesselAssignment, error) {
	var a model.VesselAssignment
	err := r.db.WithContext(ctx).
		Where("user_uid = ? AND status <> ?", userUID, model.AssignmentStatusUnassigned).
		Order("started_at DESC").
		First(&a).Error
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *vesselAssignmentRepository) Create(ctx context.Context, a *model.VesselAssignment) error {
	return r.db.WithContext(ctx).Create(a).Error
}
