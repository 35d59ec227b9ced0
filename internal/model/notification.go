package model

import "time"

type NotificationPriority string

const (
	NotificationPriorityCritical      NotificationPriority = "critical"
	NotificationPriorityImportant     NotificationPriority = "important"
	NotificationPriorityInformational NotificationPriority = "informational"
)

// PriorityWeightFor maps the human-facing priority label to the numeric
// score backing the primary sort.
func PriorityWeightFor(p NotificationPriority) int {
	switch p {
	case NotificationPriorityCritical:
		return 30
	case NotificationPriorityImportant:
		return 20
	default:
		return 10
	}
}

// Notification is an alert tied to a domain object. Rows are never deleted;
// ArchivedAt is set instead, and archived rows are excluded from every
// listing.
type Notification struct {
	ID             uint64               `gorm:"primaryKey;autoIncrement"`
	RecipientUID   string               `gorm:"column:recipient_uid;size:128;index"`
	Title          string               `gorm:"size:255;not null"`
	Message        string               `gorm:"type:text"`
	ObjectType     string               `gorm:"column:object_type;size:32;index;not null"`
	ObjectID       string               `gorm:"column:object_id;size:64;index"`
	Priority       NotificationPriority `gorm:"size:32;not null"`
	PriorityWeight int                  `gorm:"column:priority_weight;not null;index"`
	IsRead         bool                 `gorm:"column:is_read;not null;default:false;index"`
	VesselIMO      string               `gorm:"column:vessel_imo;size:16;index"`
	VendorID       string               `gorm:"column:vendor_id;size:64;index"`
	ArchivedAt     *time.Time           `gorm:"column:archived_at;index"`
	CreatedAt      time.Time            `gorm:"autoCreateTime;index"`
}

func (Notification) TableName() string {
	return "notifications"
}

// Object types a notification or exception may reference.
const (
	ObjectTypeOrder       = "order"
	ObjectTypePool        = "pool"
	ObjectTypeDelivery    = "delivery"
	ObjectTypeVendorOrder = "vendor_order"
	ObjectTypeFinance     = "finance"
	ObjectTypeSystem      = "system"
)
