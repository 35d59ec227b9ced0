package model

import "time"

type User struct {
	UID         string    `gorm:"primaryKey;size:128"`
	Email       string    `gorm:"size:255;uniqueIndex"`
	DisplayName string    `gorm:"size:120"`
	Role        string    `gorm:"size:32;not null;index"`
	VendorID    string    `gorm:"column:vendor_id;size:64;index"`
	CreatedAt   time.Time `gorm:"autoCreateTime"`
	UpdatedAt   time.Time `gorm:"autoUpdateTime"`
}

func (User) TableName() string {
	return "users"
}
