package model

import "time"

type PoolStatus string

const (
	PoolStatusOpen       PoolStatus = "open"
	PoolStatusLocked     PoolStatus = "locked"
	PoolStatusInDelivery PoolStatus = "in_delivery"
	PoolStatusDelivered  PoolStatus = "delivered"
	PoolStatusCancelled  PoolStatus = "cancelled"
)

// Pool groups vessel orders bound for the same port so they share one
// delivery run and its fee. Created when the first order for a port is
// submitted; order_count grows as vessels join.
type Pool struct {
	ID         uint64     `gorm:"primaryKey;autoIncrement"`
	Port       string     `gorm:"size:64;index;not null"`
	Status     PoolStatus `gorm:"size:32;not null;index"`
	OrderCount int        `gorm:"column:order_count;not null;default:0"`
	TargetDate time.Time  `gorm:"column:target_date"`
	TotalValue float64    `gorm:"column:total_value"`
	DeliveryID string     `gorm:"column:delivery_id;size:64"`
	CreatedAt  time.Time  `gorm:"autoCreateTime"`
	UpdatedAt  time.Time  `gorm:"autoUpdateTime"`
}

func (Pool) TableName() string {
	return "pools"
}

// poolTransitions is the full lifecycle: open → locked → in_delivery →
// delivered, with cancelled reachable from open or locked only.
var poolTransitions = map[PoolStatus][]PoolStatus{
	PoolStatusOpen:       {PoolStatusLocked, PoolStatusCancelled},
	PoolStatusLocked:     {PoolStatusInDelivery, PoolStatusCancelled},
	PoolStatusInDelivery: {PoolStatusDelivered},
}

func (p *Pool) CanTransition(to PoolStatus) bool {
	for _, s := range poolTransitions[p.Status] {
		if s == to {
			return true
		}
	}
	return false
}
