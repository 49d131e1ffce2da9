package models

import "time"

// LicenseKey is a pre-provisioned credential for a product. Assignment is
// one-way: once IsAssigned flips to true the key is never handed out again.
type LicenseKey struct {
	ID         string    `gorm:"column:id;type:uuid;primary_key" json:"id"`
	ProductID  string    `gorm:"column:product_id;type:uuid;not null;index:idx_product_assigned,priority:1" json:"product_id"`
	Key        string    `gorm:"column:key;type:varchar(255);not null" json:"key"`
	IsAssigned bool      `gorm:"column:is_assigned;not null;default:false;index:idx_product_assigned,priority:2" json:"is_assigned"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

func (LicenseKey) TableName() string { return "license_key" }
