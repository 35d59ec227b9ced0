package model

import "time"

type ExceptionSeverity string

const (
	ExceptionSeverityCritical ExceptionSeverity = "critical"
	ExceptionSeverityHigh     ExceptionSeverity = "high"
	ExceptionSeverityMedium   ExceptionSeverity = "medium"
	ExceptionSeverityLow      ExceptionSeverity = "low"
)

func SeverityWeightFor(s ExceptionSeverity) int {
	switch s {
	case ExceptionSeverityCritical:
		return 40
	case ExceptionSeverityHigh:
		return 30
	case ExceptionSeverityMedium:
		return 20
	default:
		return 10
	}
}

type ExceptionStatus string

const (
	ExceptionStatusOpen             ExceptionStatus = "open"
	ExceptionStatusAcknowledged     ExceptionStatus = "acknowledged"
	ExceptionStatusInvestigating    ExceptionStatus = "investigating"
	ExceptionStatusAwaitingExternal ExceptionStatus = "awaiting_external"
	ExceptionStatusResolved         ExceptionStatus = "resolved"
	ExceptionStatusClosed           ExceptionStatus = "closed"
	ExceptionStatusDismissed        ExceptionStatus = "dismissed"
)

// exceptionStatusRank orders the workflow. Status only moves to a higher
// rank; resolved, closed and dismissed are terminal.
var exceptionStatusRank = map[ExceptionStatus]int{
	ExceptionStatusOpen:             0,
	ExceptionStatusAcknowledged:     1,
	ExceptionStatusInvestigating:    2,
	ExceptionStatusAwaitingExternal: 3,
	ExceptionStatusResolved:         4,
	ExceptionStatusClosed:           5,
	ExceptionStatusDismissed:        5,
}

func (e *Exception) CanAdvanceTo(to ExceptionStatus) bool {
	fromRank, ok := exceptionStatusRank[e.Status]
	if !ok {
		return false
	}
	toRank, ok := exceptionStatusRank[to]
	if !ok || to == e.Status {
		return false
	}
	switch e.Status {
	case ExceptionStatusResolved, ExceptionStatusClosed, ExceptionStatusDismissed:
		return false
	}
	return toRank > fromRank
}

// Exception is an operational incident. Severity is fixed at detection time
// and has no update path.
type Exception struct {
	ID             uint64            `gorm:"primaryKey;autoIncrement"`
	Title          string            `gorm:"size:255;not null"`
	Description    string            `gorm:"type:text"`
	ObjectType     string            `gorm:"column:object_type;size:32;index;not null"`
	ObjectID       string            `gorm:"column:object_id;size:64;index"`
	Severity       ExceptionSeverity `gorm:"size:32;not null"`
	SeverityWeight int               `gorm:"column:severity_weight;not null;index"`
	Status         ExceptionStatus   `gorm:"size:32;not null;index"`
	DetectedAt     time.Time         `gorm:"column:detected_at;not null;index"`
	VesselIMO      string            `gorm:"column:vessel_imo;size:16;index"`
	VendorID       string            `gorm:"column:vendor_id;size:64;index"`
	ArchivedAt     *time.Time        `gorm:"column:archived_at;index"`
	CreatedAt      time.Time         `gorm:"autoCreateTime"`
	UpdatedAt      time.Time         `gorm:"autoUpdateTime"`
}

func (Exception) TableName() string {
	return "exceptions"
}
