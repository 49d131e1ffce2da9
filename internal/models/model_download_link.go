package models

import "time"

// DownloadLink grants time-boxed, usage-capped access to the files of a
// fulfilled order item. Token is the only identifier ever exposed to
// customers; the row id stays internal.
type DownloadLink struct {
	ID          string    `gorm:"column:id;type:uuid;primary_key" json:"id"`
	OrderItemID string    `gorm:"column:order_item_id;type:uuid;not null;index" json:"order_item_id"`
	Token       string    `gorm:"column:token;type:varchar(64);not null;uniqueIndex" json:"token"`
	URL         string    `gorm:"column:url;type:varchar(1024);not null" json:"url"`
	ExpiresAt   time.Time `gorm:"column:expires_at;not null" json:"expires_at"`
	// DownloadCount only moves through the gateway's conditional update, so it
	// cannot pass the product's max-downloads policy.
	DownloadCount int       `gorm:"column:download_count;not null;default:0" json:"download_count"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

func (DownloadLink) TableName() string { return "download_link" }

// AssignedLicenseKey records a license grant to an order item. Immutable.
type AssignedLicenseKey struct {
	ID           string    `gorm:"column:id;type:uuid;primary_key" json:"id"`
	OrderItemID  string    `gorm:"column:order_item_id;type:uuid;not null;index" json:"order_item_id"`
	LicenseKeyID string    `gorm:"column:license_key_id;type:uuid;not null;uniqueIndex" json:"license_key_id"`
	AssignedAt   time.Time `gorm:"column:assigned_at;not null" json:"assigned_at"`
}

func (AssignedLicenseKey) TableName() string { return "assigned_license_key" }
