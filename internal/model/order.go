package model

import "time"

type OrderStatus string

const (
	OrderStatusDraft      OrderStatus = "draft"
	OrderStatusSubmitted  OrderStatus = "submitted"
	OrderStatusConfirmed  OrderStatus = "confirmed"
	OrderStatusPooled     OrderStatus = "pooled"
	OrderStatusInDelivery OrderStatus = "in_delivery"
	OrderStatusDelivered  OrderStatus = "delivered"
	OrderStatusCancelled  OrderStatus = "cancelled"
	OrderStatusDisputed   OrderStatus = "disputed"
)

type PaymentStatus string

const (
	PaymentStatusUnpaid   PaymentStatus = "unpaid"
	PaymentStatusPaid     PaymentStatus = "paid"
	PaymentStatusWaived   PaymentStatus = "waived"
	PaymentStatusRefunded PaymentStatus = "refunded"
)

// Order is a single vessel's purchase. DeliveryFeeProvisional carries the
// unrounded accounting value; rounding to two decimals happens only at the
// response layer.
type Order struct {
	ID                     uint64        `gorm:"primaryKey;autoIncrement"`
	BuyerUID               string        `gorm:"column:buyer_uid;size:128;index;not null"`
	VesselIMO              string        `gorm:"column:vessel_imo;size:16;index;not null"`
	Port                   string        `gorm:"size:64;index;not null"`
	PoolID                 *uint64       `gorm:"column:pool_id;index"`
	Status                 OrderStatus   `gorm:"size:32;not null;index"`
	Items                  []OrderItem   `gorm:"foreignKey:OrderID"`
	Subtotal               float64       `gorm:"not null"`
	DeliveryFeeProvisional float64       `gorm:"column:delivery_fee_provisional"`
	DeliveryFeeFinal       *float64      `gorm:"column:delivery_fee_final"`
	PaymentStatus          PaymentStatus `gorm:"column:payment_status;size:32;not null"`
	ChargedAmount          float64       `gorm:"column:charged_amount"`
	ChargeRef              string        `gorm:"column:charge_ref;size:64"`
	RefundRef              string        `gorm:"column:refund_ref;size:64"`
	Priority               string        `gorm:"size:32"`
	CreatedAt              time.Time     `gorm:"autoCreateTime"`
	UpdatedAt              time.Time     `gorm:"autoUpdateTime"`
}

func (Order) TableName() string {
	return "orders"
}

type OrderItem struct {
	ID        uint64  `gorm:"primaryKey;autoIncrement"`
	OrderID   uint64  `gorm:"column:order_id;index;not null"`
	ProductID string  `gorm:"column:product_id;size:64;not null"`
	Quantity  int     `gorm:"not null"`
	UnitPrice float64 `gorm:"column:unit_price;not null"`
}

func (OrderItem) TableName() string {
	return "order_items"
}
