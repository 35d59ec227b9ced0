package model

import "time"

type AssignmentStatus string

const (
	AssignmentStatusActive     AssignmentStatus = "active"
	AssignmentStatusUnassigned AssignmentStatus = "unassigned"
)

// VesselAssignment links a crew user to the vessel they currently serve on.
// A user has at most one active assignment; historic rows are kept as
// unassigned.
type VesselAssignment struct {
	ID        uint64           `gorm:"primaryKey;autoIncrement"`
	UserUID   string           `gorm:"column:user_uid;size:128;index;not null"`
	VesselIMO string           `gorm:"column:vessel_imo;size:16;index;not null"`
	Status    AssignmentStatus `gorm:"size:32;not null"`
	StartedAt time.Time        `gorm:"column:started_at"`
	EndedAt   *time.Time       `gorm:"column:ended_at"`
	CreatedAt time.Time        `gorm:"autoCreateTime"`
}

func (VesselAssignment) TableName() string {
	return "vessel_assignments"
}
