package repository

import (
	"context"
	"errors"

	"github.com/harbourbee/harbourbee-backend/internal/model"
	"gorm.io/gorm"
)

// ExceptionFilter mirrors NotificationFilter with severity and workflow
// status in place of priority and read state.
type ExceptionFilter struct {
	Severity   string
	Status     string
	ObjectType string
	ObjectID   string
	VesselIMO  string
	VendorID   string
}

type ExceptionRepository interface {
	Create(ctx context.Context, e *model.Exception) error
	ListAfter(ctx context.Context, f ExceptionFilter, cursorID uint64, fetchLimit int) ([]model.Exception, error)
	FindByID(ctx context.Context, id uint64) (*model.Exception, error)
	UpdateStatus(ctx context.Context, id uint64, status model.ExceptionStatus) error
}

type exceptionRepository struct {
	db *gorm.DB
}

func NewExceptionRepository(db *gorm.DB) ExceptionRepository {
	return &exceptionRepository{db: db}
}

func (r *exceptionRepository) Create(ctx context.Context, e *model.Exception) error {
	if e.SeverityWeight == 0 {
		e.SeverityWeight = model.SeverityWeightFor(e.Severity)
	}
	return r.db.WithContext(ctx).Create(e).Error
}

func (r *exceptionRepository) applyFilter(q *gorm.DB, f ExceptionFilter) *gorm.DB {
	q = q.Where("archived_at IS NULL")
	if f.Severity != "" {
		q = q.Where("severity = ?", f.Severity)
	}
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	if f.ObjectType != "" {
		q = q.Where("object_type = ?", f.ObjectType)
	}
	if f.ObjectID != "" {
		q = q.Where("object_id = ?", f.ObjectID)
	}
	if f.VesselIMO != "" {
		q = q.Where("vessel_imo = ?", f.VesselIMO)
	}
	if f.VendorID != "" {
		q = q.Where("vendor_id = ?", f.VendorID)
	}
	return q
}

func (r *exceptionRepository) ListAfter(ctx context.Context, f ExceptionFilter, cursorID uint64, fetchLimit int) ([]model.Exception, error) {
	q := r.applyFilter(r.db.WithContext(ctx).Model(&model.Exception{}), f)

	if cursorID != 0 {
		var cur model.Exception
		err := r.db.WithContext(ctx).First(&cur, "id = ? AND archived_at IS NULL", cursorID).Error
		switch {
		case err == nil:
			q = q.Where(
				`(severity_weight < ?)
				 OR (severity_weight = ? AND detected_at < ?)
				 OR (severity_weight = ? AND detected_at = ? AND id < ?)`,
				cur.SeverityWeight,
				cur.SeverityWeight, cur.DetectedAt,
				cur.SeverityWeight, cur.DetectedAt, cur.ID,
			)
		case errors.Is(err, gorm.ErrRecordNotFound):
			// Stale cursor: fail open to the first page.
		default:
			return nil, err
		}
	}

	var list []model.Exception
	err := q.Order("severity_weight DESC, detected_at DESC, id DESC").
		Limit(fetchLimit).
		Find(&list).Error
	if err != nil {
		return nil, err
	}
	return list, nil
}

func (r *exceptionRepository) FindByID(ctx context.Context, id uint64) (*model.Exception, error) {
	var e model.Exception
	if err := r.db.WithContext(ctx).First(&e, "id = ? AND archived_at IS NULL", id).Error; err != nil {
		return nil, err
	}
	return &e, nil
}

func (r *exceptionRepository) UpdateStatus(ctx context.Context, id uint64, status model.ExceptionStatus) error {
	return r.db.WithContext(ctx).
		Model(&model.Exception{}).
		Where("id = ?", id).
		Update("status", status).Error
}
