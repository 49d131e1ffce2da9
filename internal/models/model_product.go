package models

import "time"

// Product mirrors one storefront product variant. The external pair identifies
// the line items arriving on order webhooks; the per-product policy fields
// govern download links issued during fulfillment.
type Product struct {
	ID                string `gorm:"column:id;type:uuid;primary_key" json:"id"`
	StoreID           string `gorm:"column:store_id;type:uuid;not null;uniqueIndex:unique_store_external_variant,priority:1;index" json:"store_id"`
	ExternalProductID int64  `gorm:"column:external_product_id;type:bigint;not null;uniqueIndex:unique_store_external_variant,priority:2" json:"external_product_id"`
	ExternalVariantID int64  `gorm:"column:external_variant_id;type:bigint;not null;uniqueIndex:unique_store_external_variant,priority:3" json:"external_variant_id"`
	Name              string `gorm:"column:name;type:varchar(255);not null" json:"name"`
	IsDigital         bool   `gorm:"column:is_digital;not null;default:true" json:"is_digital"`
	// MaxDownloadsPerLink is read live at download time, so raising it also
	// revives links that were already capped out.
	MaxDownloadsPerLink int       `gorm:"column:max_downloads_per_link;not null;default:5" json:"max_downloads_per_link"`
	LinkExpirationHours int       `gorm:"column:link_expiration_hours;not null;default:72" json:"link_expiration_hours"`
	CreatedAt           time.Time `json:"created_at"`
	UpdatedAt           time.Time `json:"updated_at"`
}

func (Product) TableName() string { return "product" }
