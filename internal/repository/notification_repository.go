package repository

import (
	"context"
	"errors"

	"github.com/harbourbee/harbourbee-backend/internal/model"
	"gorm.io/gorm"
)

// NotificationFilter carries the equality filters of a listing after
// security scoping has been applied. Zero values mean "no filter".
// ReadStatus is a pointer so "unread only", "read only" and "all" are
// distinguishable.
type NotificationFilter struct {
	Priority   string
	ObjectType string
	ObjectID   string
	ReadStatus *bool
	VesselIMO  string
	VendorID   string
}

type NotificationRepository interface {
	Create(ctx context.Context, n *model.Notification) error
	// ListAfter fetches up to fetchLimit unarchived rows ordered by
	// priority weight, positioned after the cursor row when cursorID is
	// non-zero. An unknown cursor falls back to the first page.
	ListAfter(ctx context.Context, f NotificationFilter, cursorID uint64, fetchLimit int) ([]model.Notification, error)
	FindByID(ctx context.Context, id uint64) (*model.Notification, error)
	MarkRead(ctx context.Context, id uint64) error
}

type notificationRepository struct {
	db *gorm.DB
}

func NewNotificationRepository(db *gorm.DB) NotificationRepository {
	return &notificationRepository{db: db}
}

func (r *notificationRepository) Create(ctx context.Context, n *model.Notification) error {
	if n.PriorityWeight == 0 {
		n.PriorityWeight = model.PriorityWeightFor(n.Priority)
	}
	return r.db.WithContext(ctx).Create(n).Error
}

func (r *notificationRepository) applyFilter(q *gorm.DB, f NotificationFilter) *gorm.DB {
	// Archived rows never surface, regardless of role or filter.
	q = q.Where("archived_at IS NULL")
	if f.Priority != "" {
		q = q.Where("priority = ?", f.Priority)
	}
	if f.ObjectType != "" {
		q = q.Where("object_type = ?", f.ObjectType)
	}
	if f.ObjectID != "" {
		q = q.Where("object_id = ?", f.ObjectID)
	}
	if f.ReadStatus != nil {
		q = q.Where("is_read = ?", *f.ReadStatus)
	}
	if f.VesselIMO != "" {
		q = q.Where("vessel_imo = ?", f.VesselIMO)
	}
	if f.VendorID != "" {
		q = q.Where("vendor_id = ?", f.VendorID)
	}
	return q
}

func (r *notificationRepository) ListAfter(ctx context.Context, f NotificationFilter, cursorID uint64, fetchLimit int) ([]model.Notification, error) {
	q := r.applyFilter(r.db.WithContext(ctx).Model(&model.Notification{}), f)

	if cursorID != 0 {
		var cur model.Notification
		err := r.db.WithContext(ctx).First(&cur, "id = ? AND archived_at IS NULL", cursorID).Error
		switch {
		case err == nil:
			// Keyset over the deterministic order: weight DESC, unread
			// first, newest first, id as final tiebreak.
			q = q.Where(
				`(priority_weight < ?)
				 OR (priority_weight = ? AND is_read > ?)
				 OR (priority_weight = ? AND is_read = ? AND created_at < ?)
				 OR (priority_weight = ? AND is_read = ? AND created_at = ? AND id < ?)`,
				cur.PriorityWeight,
				cur.PriorityWeight, cur.IsRead,
				cur.PriorityWeight, cur.IsRead, cur.CreatedAt,
				cur.PriorityWeight, cur.IsRead, cur.CreatedAt, cur.ID,
			)
		case errors.Is(err, gorm.ErrRecordNotFound):
			// Stale cursor: fail open to the first page.
		default:
			return nil, err
		}
	}

	var list []model.Notification
	err := q.Order("priority_weight DESC, is_read ASC, created_at DESC, id DESC").
		Limit(fetchLimit).
		Find(&list).Error
	if err != nil {
		return nil, err
	}
	return list, nil
}

func (r *notificationRepository) FindByID(ctx context.Context, id uint64) (*model.Notification, error) {
	var n model.Notification
	if err := r.db.WithContext(ctx).First(&n, "id = ? AND archived_at IS NULL", id).Error; err != nil {
		return nil, err
	}
	return &n, nil
}

// MarkRead is idempotent; marking an already-read row is a no-op update.
func (r *notificationRepository) MarkRead(ctx context.Context, id uint64) error {
	return r.db.WithContext(ctx).
		Model(&model.Notification{}).
		Where("id = ?", id).
		Update("is_read", true).Error
}
