package models

import "time"

// Plan is a subscription tier. Rows are reference data managed by operators;
// tenants only ever read them. A nil cap means unlimited.
type Plan struct {
	ID            string `gorm:"column:id;type:uuid;primary_key" json:"id"`
	Name          string `gorm:"column:name;type:varchar(100);not null;uniqueIndex" json:"name"`
	PriceMonthly  int64  `gorm:"column:price_monthly;type:bigint;not null" json:"price_monthly"`
	PriceAnnually *int64 `gorm:"column:price_annually;type:bigint" json:"price_annually"`
	// MaxProducts caps how many products a store may create.
	MaxProducts *int `gorm:"column:max_products" json:"max_products"`
	// MaxOrdersPerMonth caps webhook order fulfillment per billing month.
	MaxOrdersPerMonth *int `gorm:"column:max_orders_per_month" json:"max_orders_per_month"`
	// MaxStorageGB caps uploaded file bytes; converted with StorageLimitBytes.
	MaxStorageGB             *int      `gorm:"column:max_storage_gb" json:"max_storage_gb"`
	AllowCustomEmailTemplate bool      `gorm:"column:allow_custom_email_template;not null;default:false" json:"allow_custom_email_template"`
	IsActive                 bool      `gorm:"column:is_active;not null;default:true" json:"is_active"`
	CreatedAt                time.Time `json:"created_at"`
	UpdatedAt                time.Time `json:"updated_at"`
}

func (Plan) TableName() string { return "plan" }

// StorageLimitBytes returns the storage cap in bytes, or nil when unlimited.
func (p *Plan) StorageLimitBytes() *int64 {
	if p == nil || p.MaxStorageGB == nil {
		return nil
	}
	limit := int64(*p.MaxStorageGB) << 30
	return &limit
}
